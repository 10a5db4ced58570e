// Package api implements the onboarding JSON API and HTML pages using chi.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/onboard/internal/apperr"
	"github.com/starford/onboard/internal/checksum"
	"github.com/starford/onboard/internal/pageservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *pageservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *pageservice.Service) *Handler {
	return &Handler{svc: svc}
}

// pagePath extracts the page path from the wildcard segment. Encoded
// slashes (guides%2Fdeploy.md) are accepted.
func pagePath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// notModified sets the ETag and reports whether the client copy is current.
func notModified(w http.ResponseWriter, r *http.Request, sum string) bool {
	etag := checksum.ETag(sum)
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return true
	}
	return false
}

// Welcome handles GET /api/welcome.
//
//	@Summary	Get the quick-start page with its table of contents
//	@Tags		pages
//	@Produce	json
//	@Success	200	{object}	page.View
//	@Router		/welcome [get]
func (h *Handler) Welcome(w http.ResponseWriter, r *http.Request) {
	v := h.svc.Welcome(r.Context())
	if notModified(w, r, v.Checksum) {
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// ListPages handles GET /api/pages.
//
//	@Summary	List content pages in display order
//	@Tags		pages
//	@Produce	json
//	@Success	200	{object}	PageListResponse
//	@Router		/pages [get]
func (h *Handler) ListPages(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListPages(r.Context())
	if err != nil {
		slog.Error("list pages failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, PageListResponse{Pages: items, Total: len(items)})
}

// GetPage handles GET /api/pages/*.
//
//	@Summary	Get a content page with its table of contents
//	@Tags		pages
//	@Produce	json
//	@Param		path			path		string	true	"Page path"
//	@Param		If-None-Match	header		string	false	"ETag from a previous response"
//	@Success	200				{object}	PageDetail
//	@Success	304				"Not modified"
//	@Failure	400				{object}	errResponse
//	@Failure	404				{object}	errResponse
//	@Router		/pages/{path} [get]
func (h *Handler) GetPage(w http.ResponseWriter, r *http.Request) {
	path := pagePath(r)
	if path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}
	p, err := h.svc.GetPage(r.Context(), path)
	if err != nil {
		writePageError(w, path, err)
		return
	}
	if notModified(w, r, p.Checksum) {
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func writePageError(w http.ResponseWriter, path string, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, apperr.ErrInvalidPath):
		writeError(w, http.StatusBadRequest, "invalid path")
	default:
		slog.Error("get page failed", slog.String("path", path), slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// FormatTOC handles POST /api/toc.
//
//	@Summary	Build a table of contents for arbitrary markdown
//	@Tags		toc
//	@Accept		json
//	@Produce	json
//	@Param		body	body		FormatRequest	true	"Markdown to format"
//	@Success	200		{object}	FormatResponse
//	@Failure	400		{object}	errResponse
//	@Router		/toc [post]
func (h *Handler) FormatTOC(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req FormatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.svc.Format(r.Context(), req.Content, req.markerRune())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, FormatResponse{TOC: res.TOC, Content: res.Content})
}

// Capabilities handles GET /api/capabilities.
//
//	@Summary	List the packages apps can import
//	@Tags		capabilities
//	@Produce	json
//	@Success	200	{object}	CapabilitiesResponse
//	@Router		/capabilities [get]
func (h *Handler) Capabilities(w http.ResponseWriter, r *http.Request) {
	caps := h.svc.Capabilities(r.Context())
	writeJSON(w, http.StatusOK, CapabilitiesResponse{
		Capabilities: caps.Names(),
		Text:         caps.Text(),
	})
}

// Search handles GET /api/search.
//
//	@Summary	Search headings across content pages
//	@Tags		search
//	@Produce	json
//	@Param		q		query		string	true	"Search query"
//	@Param		limit	query		int		false	"Max results"
//	@Success	200		{object}	SearchResponse
//	@Failure	400		{object}	errResponse
//	@Router		/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	hits, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: hits})
}
