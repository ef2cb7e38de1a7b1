package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/RouteFleet/RouteFleet/internal/common/apperr"
)

// errorBody 统一的错误响应结构。
type errorBody struct {
	Code   string             `json:"code"`
	Error  string             `json:"error"`
	Fields []apperr.FieldError `json:"fields,omitempty"`
}

// WriteJSON 输出 JSON 响应。
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// WriteError 将业务错误映射为 HTTP 状态码：
// - ValidationError        -> 400 validation_error（带字段列表）
// - NotFoundError          -> 404 not_found
// - ConflictError          -> 409 conflict
// - InvalidTransitionError -> 409 invalid_transition
// - 其他                   -> 500 internal
func WriteError(w http.ResponseWriter, err error) {
	if err == nil {
		WriteJSON(w, http.StatusInternalServerError, errorBody{Code: "internal", Error: "unknown error"})
		return
	}

	var ve *apperr.ValidationError
	switch {
	case errors.As(err, &ve):
		WriteJSON(w, http.StatusBadRequest, errorBody{Code: "validation_error", Error: err.Error(), Fields: ve.Fields})
	case apperr.IsNotFound(err):
		WriteJSON(w, http.StatusNotFound, errorBody{Code: "not_found", Error: err.Error()})
	case apperr.IsConflict(err):
		WriteJSON(w, http.StatusConflict, errorBody{Code: "conflict", Error: err.Error()})
	case apperr.IsInvalidTransition(err):
		WriteJSON(w, http.StatusConflict, errorBody{Code: "invalid_transition", Error: err.Error()})
	default:
		WriteJSON(w, http.StatusInternalServerError, errorBody{Code: "internal", Error: err.Error()})
	}
}

// DecodeJSON 解析请求体；失败时返回 false 并已写出 400。
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		WriteJSON(w, http.StatusBadRequest, errorBody{Code: "bad_request", Error: "invalid json body: " + err.Error()})
		return false
	}
	return true
}
