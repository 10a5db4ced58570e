// Package pageservice serves onboarding pages: the built-in welcome page and
// the markdown pages of the content directory.
package pageservice

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/starford/onboard/internal/apperr"
	"github.com/starford/onboard/internal/capability"
	"github.com/starford/onboard/internal/index"
	"github.com/starford/onboard/internal/page"
	"github.com/starford/onboard/internal/parser"
	"github.com/starford/onboard/internal/storage"
	"github.com/starford/onboard/internal/toc"
)

// PageDetail is a formatted content page.
type PageDetail struct {
	page.View
	Headings []toc.Heading `json:"headings"`
}

// PageListItem is a lightweight item in a list response.
type PageListItem struct {
	Path      string    `json:"path"`
	Title     string    `json:"title"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Service coordinates storage, index and the formatter.
type Service struct {
	store   storage.Provider
	db      index.PageIndex
	f       *toc.Formatter
	caps    *capability.Registry
	welcome *page.View
}

// NewService creates a page service. The welcome page is built once here;
// it depends only on the formatter and the capability list.
func NewService(store storage.Provider, db index.PageIndex, f *toc.Formatter, caps *capability.Registry) *Service {
	return &Service{
		store:   store,
		db:      db,
		f:       f,
		caps:    caps,
		welcome: page.Build(page.Welcome(caps), f),
	}
}

// Formatter returns the configured formatter.
func (s *Service) Formatter() *toc.Formatter {
	return s.f
}

// Welcome returns the quick-start page view.
func (s *Service) Welcome(_ context.Context) *page.View {
	return s.welcome
}

// GetPage reads, parses and formats a content page.
func (s *Service) GetPage(_ context.Context, path string) (*PageDetail, error) {
	if !strings.HasSuffix(path, storage.PageExt) {
		return nil, apperr.ErrNotFound
	}
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	res, err := parser.Parse(data, s.f)
	if err != nil {
		return nil, err
	}

	title := res.Title
	if title == "" {
		title = strings.TrimSuffix(path[strings.LastIndex(path, "/")+1:], storage.PageExt)
	}
	v := page.Build(page.FromMarkdown(path, title, res.Body), s.f)

	return &PageDetail{
		View:     *v,
		Headings: nonNil(s.f.Headings(strings.Split(res.Body, "\n"))),
	}, nil
}

// ListPages returns every indexed page in display order.
func (s *Service) ListPages(_ context.Context) ([]PageListItem, error) {
	rows, err := s.db.ListPages()
	if err != nil {
		return nil, err
	}
	items := make([]PageListItem, len(rows))
	for i, r := range rows {
		items[i] = PageListItem{
			Path:      r.Path,
			Title:     r.Title,
			Checksum:  r.Checksum,
			UpdatedAt: r.UpdatedAt,
		}
	}
	return items, nil
}

// Format runs the formatter over text. A non-zero marker overrides the
// configured one for this call only.
func (s *Service) Format(_ context.Context, text string, marker rune) (toc.Result, error) {
	f := s.f
	if marker != 0 && marker != f.Options().Marker {
		opts := f.Options()
		opts.Marker = marker
		var err error
		if f, err = toc.New(opts); err != nil {
			return toc.Result{}, err
		}
	}
	return f.FormatText(text), nil
}

// Search finds headings across indexed pages.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.HeadingHit, error) {
	hits, err := s.db.SearchHeadings(query, limit)
	return nonNil(hits), err
}

// Capabilities returns the supported package names.
func (s *Service) Capabilities(_ context.Context) *capability.Registry {
	return s.caps
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
