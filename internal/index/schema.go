package index

import "github.com/starford/onboard/internal/toc"

// PageIndex is the index surface used by services and tools.
type PageIndex interface {
	UpsertPage(p PageRow, headings []toc.Heading) error
	DeletePage(path string) error
	GetPage(path string) (*PageRow, error)
	ListPages() ([]PageRow, error)
	Headings(path string) ([]toc.Heading, error)
	SearchHeadings(query string, limit int) ([]HeadingHit, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

var _ PageIndex = (*DB)(nil)
