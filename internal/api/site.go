package api

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/onboard/internal/page"
	"github.com/starford/onboard/internal/pageservice"
	"github.com/starford/onboard/internal/render"
)

// Site serves pages as HTML documents.
type Site struct {
	svc      *pageservice.Service
	renderer *render.Renderer
}

// NewSite creates the HTML handlers.
func NewSite(svc *pageservice.Service, renderer *render.Renderer) *Site {
	return &Site{svc: svc, renderer: renderer}
}

// Mount registers GET / (welcome) and GET /view/* (content pages) on r.
func (s *Site) Mount(r chi.Router) {
	r.Get("/", s.Welcome)
	r.Get("/view/*", s.Page)
}

// Welcome handles GET /.
func (s *Site) Welcome(w http.ResponseWriter, r *http.Request) {
	s.write(w, r, s.svc.Welcome(r.Context()))
}

// Page handles GET /view/*.
func (s *Site) Page(w http.ResponseWriter, r *http.Request) {
	path := pagePath(r)
	p, err := s.svc.GetPage(r.Context(), path)
	if err != nil {
		writePageError(w, path, err)
		return
	}
	s.write(w, r, &p.View)
}

func (s *Site) write(w http.ResponseWriter, r *http.Request, v *page.View) {
	if notModified(w, r, v.Checksum) {
		return
	}
	var buf bytes.Buffer
	if err := s.renderer.Page(&buf, v); err != nil {
		slog.Error("render page failed", slog.String("path", v.Path), slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
