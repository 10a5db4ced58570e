// Package models defines the domain types shared by storage and index.
package models

import "time"

// PageMetadata describes a markdown file in the content directory.
type PageMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
