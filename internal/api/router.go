package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with the JSON API routes, meant to be
// mounted under /api. sseHandler, if non-nil, is mounted at GET /events.
func NewRouter(svc Service, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Get("/healthcheck", h.Healthcheck)

	// Links CRUD and search.
	r.Get("/links", h.ListLinks)
	r.Post("/links", h.CreateLink)
	r.Get("/links/{id}", h.GetLink)
	r.Put("/links/{id}", h.UpdateLink)
	r.Delete("/links/{id}", h.DeleteLink)

	r.Get("/search/{alias}", h.SearchOrFind)
	r.Get("/resolve/{source}", h.Resolve)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}

// NewRedirectRouter serves the short-link redirects, meant to be mounted
// under /go.
func NewRedirectRouter(svc Service) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Get("/", h.Redirect)
	r.Get("/{source}", h.Redirect)
	return r
}
