// Package page models onboarding pages as ordered display blocks and builds
// their navigable views.
package page

import (
	"strings"

	"github.com/starford/onboard/internal/checksum"
	"github.com/starford/onboard/internal/toc"
)

// Block kinds.
const (
	KindMarkdown   = "markdown"
	KindCode       = "code"
	KindImage      = "image"
	KindScrollable = "scrollable"
)

// Block is one unit handed to the display surface.
type Block struct {
	Kind       string `json:"kind"`
	Text       string `json:"text,omitempty"`
	Language   string `json:"language,omitempty"`
	URL        string `json:"url,omitempty"`
	Width      string `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	KeepBottom bool   `json:"keep_bottom,omitempty"`
}

// Markdown returns a markdown block.
func Markdown(text string) Block { return Block{Kind: KindMarkdown, Text: text} }

// Code returns a code block highlighted as language.
func Code(text, language string) Block {
	return Block{Kind: KindCode, Text: text, Language: language}
}

// Image returns an image block.
func Image(url, width string) Block { return Block{Kind: KindImage, URL: url, Width: width} }

// Scrollable returns a fixed-height text panel.
func Scrollable(text string, height int, keepBottom bool) Block {
	return Block{Kind: KindScrollable, Text: text, Height: height, KeepBottom: keepBottom}
}

// Page is an ordered sequence of blocks.
type Page struct {
	Path   string  `json:"path"`
	Title  string  `json:"title"`
	Blocks []Block `json:"blocks"`
}

// View is a page ready for display: markdown blocks carry anchor targets and
// TOC links to them.
type View struct {
	Path     string  `json:"path"`
	Title    string  `json:"title"`
	TOC      string  `json:"toc"`
	Blocks   []Block `json:"blocks"`
	Checksum string  `json:"checksum"`
}

// FromMarkdown wraps a markdown document in a single-block page.
func FromMarkdown(path, title, body string) *Page {
	return &Page{Path: path, Title: title, Blocks: []Block{Markdown(body)}}
}

// Build formats every markdown block of p with f. TOC fragments are joined in
// block order; blocks without headings contribute nothing. The checksum
// covers the formatted output, so it changes with the formatter options too.
func Build(p *Page, f *toc.Formatter) *View {
	blocks := make([]Block, len(p.Blocks))
	var (
		entries []string
		sum     strings.Builder
	)
	for i, b := range p.Blocks {
		if b.Kind == KindMarkdown {
			res := f.FormatText(b.Text)
			b.Text = res.Content
			if res.TOC != "" {
				entries = append(entries, res.TOC)
			}
		}
		blocks[i] = b
		for _, field := range []string{b.Kind, b.Text, b.URL} {
			sum.WriteString(field)
			sum.WriteByte(0)
		}
	}

	tocText := strings.Join(entries, "\n")
	sum.WriteString(p.Title)
	sum.WriteString(tocText)

	return &View{
		Path:     p.Path,
		Title:    p.Title,
		TOC:      tocText,
		Blocks:   blocks,
		Checksum: checksum.Sum([]byte(sum.String())),
	}
}

// Markdown returns the markdown blocks of v joined by blank lines.
func (v *View) Markdown() string {
	var parts []string
	for _, b := range v.Blocks {
		if b.Kind == KindMarkdown {
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, "\n\n")
}
