// Package parser splits content files into YAML frontmatter and a markdown
// body and derives the page title and ordering.
package parser

import (
	"bytes"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/onboard/internal/toc"
)

// Result holds the output of parsing a content file.
type Result struct {
	Frontmatter map[string]any
	Body        string
	Title       string
	Order       int
}

// Parse extracts frontmatter, body, title and order from raw markdown bytes.
// The title heading is recognised with f, or the default formatter when f is
// nil. It never fails on malformed frontmatter: such files are all body.
func Parse(data []byte, f *toc.Formatter) (*Result, error) {
	if f == nil {
		f = toc.Default()
	}
	fm, body := splitFrontmatter(data)
	return &Result{
		Frontmatter: fm,
		Body:        body,
		Title:       deriveTitle(fm, body, f),
		Order:       deriveOrder(fm),
	}, nil
}

// splitFrontmatter separates YAML frontmatter between leading --- fences
// from the body.
func splitFrontmatter(data []byte) (map[string]any, string) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data)
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data)
	}

	var fm map[string]any
	if err := yaml.Unmarshal(rest[:idx], &fm); err != nil {
		return nil, string(data)
	}

	body := strings.TrimLeft(string(rest[idx+1+len(delim):]), "\n\r")
	return fm, body
}

// deriveTitle prefers the frontmatter title, then the first non-empty title
// heading.
func deriveTitle(fm map[string]any, body string, f *toc.Formatter) string {
	if s, ok := fm["title"].(string); ok && s != "" {
		return s
	}
	for _, line := range strings.Split(body, "\n") {
		if !f.IsTitle(line) {
			continue
		}
		if t := strings.TrimSpace(f.Title(line)); t != "" {
			return t
		}
	}
	return ""
}

func deriveOrder(fm map[string]any) int {
	if n, ok := fm["order"].(int); ok {
		return n
	}
	return 0
}
