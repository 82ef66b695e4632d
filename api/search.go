package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"search-launcher/profile"
	"search-launcher/search"
)

type searchResponse struct {
	search.Result
	PersistError string `json:"persistError,omitempty"`
}

// searchProfile runs a search for the profile. A navigation that succeeded
// is reported with 200 even if recording the active profile failed.
func (h *handler) searchProfile(w http.ResponseWriter, r *http.Request) {
	res, err := h.dispatcher.Search(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	resp := searchResponse{Result: res}
	if res.PersistErr != nil {
		resp.PersistError = res.PersistErr.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) searchURL(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	writeJSON(w, http.StatusOK, map[string]string{"url": h.dispatcher.Builder.URL(q)})
}

func (h *handler) palette(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, profile.Palette)
}

func (h *handler) templates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, profile.Templates)
}
