package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/onboard/internal/pageservice"
)

// NewRouter creates a chi router with all API routes mounted.
// sseHandler, if non-nil, is mounted at GET /events.
func NewRouter(svc *pageservice.Service, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()

	r.Get("/welcome", h.Welcome)
	r.Get("/pages", h.ListPages)
	r.Get("/pages/*", h.GetPage)
	r.Post("/toc", h.FormatTOC)
	r.Get("/capabilities", h.Capabilities)
	r.Get("/search", h.Search)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
