package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/onboard/internal/index"
	"github.com/starford/onboard/internal/pageservice"
)

const (
	// maxFormatRunes bounds the text accepted by POST /toc.
	maxFormatRunes = 1 << 20
	// maxBodyBytes leaves room for every rune escaped as \uXXXX plus the
	// JSON envelope.
	maxBodyBytes = 6*maxFormatRunes + 4<<10
)

// FormatRequest is the request body for POST /toc.
type FormatRequest struct {
	Content string `json:"content" example:"# Title\n## Section"`
	Marker  string `json:"marker,omitempty" example:"#"`
}

// Validate validates the request.
func (r FormatRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Content, validation.RuneLength(0, maxFormatRunes)),
		validation.Field(&r.Marker, validation.RuneLength(0, 1)),
	)
}

// markerRune returns the requested marker, or 0 for the configured one.
func (r FormatRequest) markerRune() rune {
	for _, c := range r.Marker {
		return c
	}
	return 0
}

// FormatResponse is the formatter output.
type FormatResponse struct {
	TOC     string `json:"toc" example:"[Section](#Section)"`
	Content string `json:"content" example:"# Title\n## Section ¶<a name=\"Section\"></a>"`
}

// PageDetail is a formatted content page (aliased from the domain layer).
type PageDetail = pageservice.PageDetail

// PageListItem is a lightweight item in a list response.
type PageListItem = pageservice.PageListItem

// PageListResponse wraps the page listing.
type PageListResponse struct {
	Pages []PageListItem `json:"pages"`
	Total int            `json:"total" example:"3"`
}

// SearchResponse wraps heading search results.
type SearchResponse struct {
	Results []index.HeadingHit `json:"results"`
}

// CapabilitiesResponse lists supported packages.
type CapabilitiesResponse struct {
	Capabilities []string `json:"capabilities"`
	Text         string   `json:"text" example:"pywebio\nrequests"`
}
