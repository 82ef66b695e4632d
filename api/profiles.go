package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"search-launcher/profile"
)

func (h *handler) listProfiles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.State())
}

func (h *handler) getProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, ok := h.store.Get(id)
	if !ok {
		http.Error(w, "profile not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handler) saveProfile(w http.ResponseWriter, r *http.Request) {
	var p profile.Profile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	h.save(w, r, p)
}

func (h *handler) putProfile(w http.ResponseWriter, r *http.Request) {
	var p profile.Profile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	p.ID = chi.URLParam(r, "id")
	h.save(w, r, p)
}

func (h *handler) save(w http.ResponseWriter, r *http.Request, p profile.Profile) {
	_, existed := h.store.Get(p.ID)
	saved, err := h.store.Save(r.Context(), p)
	if err != nil {
		h.fail(w, err)
		return
	}
	status := http.StatusOK
	if !existed {
		status = http.StatusCreated
	}
	writeJSON(w, status, saved)
}

func (h *handler) deleteProfile(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) newProfile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Create())
}

func (h *handler) editProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.Edit(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handler) getEditing(w http.ResponseWriter, r *http.Request) {
	p, ok := h.store.Editing()
	if !ok {
		http.Error(w, "not editing", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handler) cancelEditing(w http.ResponseWriter, r *http.Request) {
	h.store.Cancel()
	w.WriteHeader(http.StatusNoContent)
}
