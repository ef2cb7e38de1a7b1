package assignment

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/RouteFleet/RouteFleet/internal/common/server"
)

// HTTPHandler 调度与执行记录的 HTTP 入口。
type HTTPHandler struct {
	svc *Service
}

func NewHTTPHandler(svc *Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/assignments", h.list)
	mux.HandleFunc("POST /api/assignments", h.create)
	mux.HandleFunc("GET /api/assignments/{id}", h.get)
	mux.HandleFunc("PUT /api/assignments/{id}", h.update)
	mux.HandleFunc("DELETE /api/assignments/{id}", h.delete)
	mux.HandleFunc("POST /api/assignments/{id}/cancel", h.cancel)

	mux.HandleFunc("GET /api/assignments/{id}/executions", h.listExecutions)
	mux.HandleFunc("POST /api/assignments/{id}/executions", h.startExecution)
	mux.HandleFunc("POST /api/executions/{id}/complete", h.completeExecution)
}

func (h *HTTPHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("page_size"))
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 200 {
		size = 20
	}

	f := ListFilter{
		DriverID: strings.TrimSpace(q.Get("driver_id")),
		Status:   Status(strings.TrimSpace(q.Get("status"))),
		Offset:   (page - 1) * size,
		Limit:    size,
	}
	assignments, total, err := h.svc.List(r.Context(), f)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, map[string]any{
		"assignments": assignments,
		"total":       total,
	})
}

func (h *HTTPHandler) create(w http.ResponseWriter, r *http.Request) {
	var in Input
	if !server.DecodeJSON(w, r, &in) {
		return
	}
	a, err := h.svc.Create(r.Context(), in)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusCreated, a)
}

func (h *HTTPHandler) get(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	a, err := h.svc.Get(r.Context(), id)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, a)
}

func (h *HTTPHandler) update(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	var in Input
	if !server.DecodeJSON(w, r, &in) {
		return
	}
	a, err := h.svc.Update(r.Context(), id, in)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, a)
}

func (h *HTTPHandler) delete(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if err := h.svc.Delete(r.Context(), id); err != nil {
		server.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) cancel(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	a, err := h.svc.Cancel(r.Context(), id)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, a)
}

func (h *HTTPHandler) listExecutions(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	logs, err := h.svc.ListExecutions(r.Context(), id)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, map[string]any{
		"executions": logs,
		"total":      len(logs),
	})
}

func (h *HTTPHandler) startExecution(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	var in StartInput
	if !server.DecodeJSON(w, r, &in) {
		return
	}
	l, err := h.svc.StartExecution(r.Context(), id, in)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusCreated, l)
}

func (h *HTTPHandler) completeExecution(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	var in CompleteInput
	if !server.DecodeJSON(w, r, &in) {
		return
	}
	l, err := h.svc.CompleteExecution(r.Context(), id, in)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, l)
}
