// Package capability lists the optional packages an app on the platform can
// import. The list is static configuration; nothing is discovered at runtime.
package capability

import (
	"slices"
	"strings"
)

// hidden are characters that mark a name as a submodule or a private module.
const hidden = "._"

// Filter returns the displayable names sorted lexicographically. Empty,
// dotted, and underscored names are dropped, as are repeats.
func Filter(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" || strings.ContainsAny(n, hidden) {
			continue
		}
		out = append(out, n)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Join renders names one per line.
func Join(names []string) string {
	return strings.Join(names, "\n")
}

// Registry is an immutable, filtered capability list.
type Registry struct {
	names []string
}

// New builds a Registry from the configured names.
func New(names []string) *Registry {
	return &Registry{names: Filter(names)}
}

// Names returns a copy of the filtered, sorted names.
func (r *Registry) Names() []string {
	return slices.Clone(r.names)
}

// Text returns the names as a single display string.
func (r *Registry) Text() string {
	return Join(r.names)
}

// Len reports the number of listed capabilities.
func (r *Registry) Len() int {
	return len(r.names)
}
