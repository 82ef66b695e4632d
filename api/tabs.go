package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

func (h *handler) listTabs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.tabs.List())
}

func (h *handler) tabURL(w http.ResponseWriter, r *http.Request) {
	u, err := h.tabs.CurrentURL(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": u})
}

func (h *handler) tabUpdateSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Keywords string `json:"keywords"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Keywords) == "" {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.tabs.UpdateSearch(r.Context(), chi.URLParam(r, "id"), req.Keywords); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
