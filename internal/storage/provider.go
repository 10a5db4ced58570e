// Package storage reads onboarding pages from the content directory.
package storage

import "github.com/starford/onboard/internal/models"

// Provider is the interface for content directory access. Paths are
// relative to the content root.
type Provider interface {
	// List returns metadata for every .md file under dir.
	List(dir string) ([]models.PageMetadata, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
}
