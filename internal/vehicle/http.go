package vehicle

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/RouteFleet/RouteFleet/internal/common/server"
)

// HTTPHandler 车辆目录的只读 HTTP 入口。
type HTTPHandler struct {
	repo *Repo
}

func NewHTTPHandler(repo *Repo) *HTTPHandler {
	return &HTTPHandler{repo: repo}
}

func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/vehicles", h.list)
	mux.HandleFunc("GET /api/vehicles/{id}", h.get)
}

func (h *HTTPHandler) list(w http.ResponseWriter, r *http.Request) {
	offset, limit := pagination(r)
	vehicles, total, err := h.repo.List(r.Context(), offset, limit)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, map[string]any{
		"vehicles": vehicles,
		"total":    total,
	})
}

func (h *HTTPHandler) get(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	v, err := h.repo.FindByID(r.Context(), id)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, v)
}

func pagination(r *http.Request) (offset, limit int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 200 {
		size = 20
	}
	return (page - 1) * size, size
}
