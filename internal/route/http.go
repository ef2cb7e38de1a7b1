package route

import (
	"net/http"
	"strings"

	"github.com/RouteFleet/RouteFleet/internal/common/server"
)

// HTTPHandler 线路目录 HTTP 入口。
// GET /api/routes 返回常规 + 组合的统一目录；写操作按种类拆分路径。
type HTTPHandler struct {
	svc *Service
}

func NewHTTPHandler(svc *Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/routes", h.listCatalog)
	mux.HandleFunc("POST /api/routes", h.createRoute)
	mux.HandleFunc("GET /api/routes/{id}", h.getRoute)
	mux.HandleFunc("PUT /api/routes/{id}", h.updateRoute)
	mux.HandleFunc("DELETE /api/routes/{id}", h.deleteRoute)

	mux.HandleFunc("POST /api/combined-routes", h.createCombined)
	mux.HandleFunc("GET /api/combined-routes/{id}", h.getCombined)
	mux.HandleFunc("PUT /api/combined-routes/{id}", h.updateCombined)
	mux.HandleFunc("DELETE /api/combined-routes/{id}", h.deleteCombined)
}

func (h *HTTPHandler) listCatalog(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.ListCatalog(r.Context())
	if err != nil {
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, map[string]any{
		"routes": entries,
		"total":  len(entries),
	})
}

func (h *HTTPHandler) createRoute(w http.ResponseWriter, r *http.Request) {
	var in RouteInput
	if !server.DecodeJSON(w, r, &in) {
		return
	}
	rt, err := h.svc.CreateRoute(r.Context(), in)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusCreated, rt)
}

func (h *HTTPHandler) getRoute(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	e, err := h.svc.GetEntry(r.Context(), KindRegular, id)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, e)
}

func (h *HTTPHandler) updateRoute(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	var in RouteInput
	if !server.DecodeJSON(w, r, &in) {
		return
	}
	rt, err := h.svc.UpdateRoute(r.Context(), id, in)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, rt)
}

func (h *HTTPHandler) deleteRoute(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if err := h.svc.DeleteRoute(r.Context(), id); err != nil {
		server.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) createCombined(w http.ResponseWriter, r *http.Request) {
	var in CombinedInput
	if !server.DecodeJSON(w, r, &in) {
		return
	}
	c, err := h.svc.CreateCombined(r.Context(), in)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusCreated, c)
}

func (h *HTTPHandler) getCombined(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	e, err := h.svc.GetEntry(r.Context(), KindCombined, id)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, e)
}

func (h *HTTPHandler) updateCombined(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	var in CombinedInput
	if !server.DecodeJSON(w, r, &in) {
		return
	}
	c, err := h.svc.UpdateCombined(r.Context(), id, in)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, c)
}

func (h *HTTPHandler) deleteCombined(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if err := h.svc.DeleteCombined(r.Context(), id); err != nil {
		server.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
