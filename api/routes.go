package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"search-launcher/kv"
	"search-launcher/profile"
	"search-launcher/search"
	"search-launcher/tab"
)

// RegisterRoutes wires the profile, search and relay endpoints. dispatcher
// should drive tabs (directly or through a search.FallbackHost) for relay
// navigation to take effect.
func RegisterRoutes(store *profile.Store, dispatcher *search.Dispatcher, tabs *tab.Manager, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)

	h := &handler{store: store, dispatcher: dispatcher, tabs: tabs, log: log}

	// Profiles
	r.Get("/api/profiles", h.listProfiles)
	r.Post("/api/profiles", h.saveProfile)
	r.Post("/api/profiles/new", h.newProfile)
	r.Get("/api/profiles/editing", h.getEditing)
	r.Delete("/api/profiles/editing", h.cancelEditing)
	r.Get("/api/profiles/{id}", h.getProfile)
	r.Put("/api/profiles/{id}", h.putProfile)
	r.Delete("/api/profiles/{id}", h.deleteProfile)
	r.Post("/api/profiles/{id}/edit", h.editProfile)

	// Search
	r.Post("/api/profiles/{id}/search", h.searchProfile)
	r.Get("/api/search-url", h.searchURL)
	r.Get("/api/palette", h.palette)
	r.Get("/api/templates", h.templates)

	// Relay tabs
	r.Get("/api/tabs", h.listTabs)
	r.Get("/api/tabs/{id}/url", h.tabURL)
	r.Post("/api/tabs/{id}/update-search", h.tabUpdateSearch)

	// WebSocket
	r.Get("/api/relay", h.handleRelay)

	return r
}

type handler struct {
	store      *profile.Store
	dispatcher *search.Dispatcher
	tabs       *tab.Manager
	log        *zap.Logger
}

// requestLogger is middleware.Logger writing through zap.
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.Debug("request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("took", time.Since(start)),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, profile.ErrInvalidProfile):
		return http.StatusBadRequest
	case errors.Is(err, profile.ErrNotFound), errors.Is(err, tab.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, tab.ErrTabGone):
		return http.StatusGone
	case errors.Is(err, tab.ErrBusy):
		return http.StatusTooManyRequests
	case errors.Is(err, tab.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, search.ErrNavigationUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, kv.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (h *handler) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Warn("request failed", zap.Int("status", status), zap.Error(err))
	}
	http.Error(w, err.Error(), status)
}
