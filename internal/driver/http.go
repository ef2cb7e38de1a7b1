package driver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/RouteFleet/RouteFleet/internal/common/server"
)

// HTTPHandler 司机目录的只读 HTTP 入口。
type HTTPHandler struct {
	repo *Repo
}

func NewHTTPHandler(repo *Repo) *HTTPHandler {
	return &HTTPHandler{repo: repo}
}

func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/drivers", h.list)
	mux.HandleFunc("GET /api/drivers/{id}", h.get)
}

func (h *HTTPHandler) list(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 200 {
		size = 20
	}
	drivers, total, err := h.repo.List(r.Context(), (page-1)*size, size)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, map[string]any{
		"drivers": drivers,
		"total":   total,
	})
}

func (h *HTTPHandler) get(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	d, err := h.repo.FindByID(r.Context(), id)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, d)
}
