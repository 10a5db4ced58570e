// Package toc builds a table of contents from markdown heading lines and
// annotates the headings with anchor targets the entries link to.
package toc

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Headings at this level or above are document titles. They are rendered by
// the caller and never listed in their own table of contents.
const titleLevel = 1

// Defaults used by Default and DefaultOptions.
const (
	DefaultMarker         = '#'
	DefaultSeparatorWidth = 1
	DefaultIndent         = "  "
	DefaultGlyph          = "¶"
)

// Options configures heading detection and output layout.
type Options struct {
	// Marker is the heading character counted at the start of a line.
	Marker rune
	// SeparatorWidth is the number of characters skipped after the marker
	// run before the title starts. Whatever those characters are, they are
	// dropped.
	SeparatorWidth int
	// Indent is one indentation unit of a nested entry.
	Indent string
	// Glyph is the visible anchor sign appended to annotated headings.
	Glyph string
}

// DefaultOptions returns markdown ATX settings: "#" markers, one separator
// character, two-space indent.
func DefaultOptions() Options {
	return Options{
		Marker:         DefaultMarker,
		SeparatorWidth: DefaultSeparatorWidth,
		Indent:         DefaultIndent,
		Glyph:          DefaultGlyph,
	}
}

// Validate validates the options.
func (o Options) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.Marker, validation.Required, validation.NotIn(' ', '\t', '\n', '\r')),
		validation.Field(&o.SeparatorWidth, validation.Min(0)),
		validation.Field(&o.Indent, validation.Required),
	)
}

// Heading is a qualifying heading line of a document.
type Heading struct {
	Level  int    `json:"level"`
	Title  string `json:"title"`
	Anchor string `json:"anchor"`
	Line   int    `json:"line"` // 0-based
}

// Result is the output of a formatting pass.
type Result struct {
	TOC     string `json:"toc"`
	Content string `json:"content"`
}

// Formatter is safe for concurrent use.
type Formatter struct {
	opts Options
}

// New returns a Formatter for opts.
func New(opts Options) (*Formatter, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("toc: invalid options: %w", err)
	}
	return &Formatter{opts: opts}, nil
}

// Default returns a Formatter using DefaultOptions.
func Default() *Formatter {
	return &Formatter{opts: DefaultOptions()}
}

// Options returns the formatter configuration.
func (f *Formatter) Options() Options {
	return f.opts
}

// Level counts the consecutive markers at the very start of line. A line
// that starts with anything else, whitespace included, has level 0.
func (f *Formatter) Level(line string) int {
	n := 0
	for _, r := range line {
		if r != f.opts.Marker {
			break
		}
		n++
	}
	return n
}

// Title returns the text of line after its marker run and separator, or ""
// when the line is not longer than that.
func (f *Formatter) Title(line string) string {
	skip := f.Level(line) + f.opts.SeparatorWidth
	if rs := []rune(line); len(rs) > skip {
		return string(rs[skip:])
	}
	return ""
}

// IsTitle reports whether line is a document title heading, the kind never
// listed in a table of contents.
func (f *Formatter) IsTitle(line string) bool {
	return f.Level(line) == titleLevel
}

// heading parses line. Lines at or above the title level are rejected.
func (f *Formatter) heading(line string, idx int) (Heading, bool) {
	level := f.Level(line)
	if level <= titleLevel {
		return Heading{}, false
	}
	title := f.Title(line)
	return Heading{
		Level:  level,
		Title:  title,
		Anchor: strings.ReplaceAll(title, " ", ""),
		Line:   idx,
	}, true
}

// Headings returns the headings of lines that belong in a table of contents,
// in document order. Anchors are not made unique: equal titles collide.
func (f *Formatter) Headings(lines []string) []Heading {
	var out []Heading
	for i, line := range lines {
		if h, ok := f.heading(line, i); ok {
			out = append(out, h)
		}
	}
	return out
}

// Entry renders the table of contents line for h.
func (f *Formatter) Entry(h Heading) string {
	return strings.Repeat(f.opts.Indent, h.Level-titleLevel-1) + "[" + h.Title + "](#" + h.Anchor + ")"
}

// Annotate appends the anchor glyph and an anchor target to a heading line.
func (f *Formatter) Annotate(line, anchor string) string {
	return line + " " + f.opts.Glyph + `<a name="` + anchor + `"></a>`
}

// Format builds the table of contents for lines and returns it along with
// the annotated document. Non-heading lines are passed through untouched.
func (f *Formatter) Format(lines []string) Result {
	content := make([]string, len(lines))
	copy(content, lines)

	headings := f.Headings(lines)
	entries := make([]string, 0, len(headings))
	for _, h := range headings {
		content[h.Line] = f.Annotate(lines[h.Line], h.Anchor)
		entries = append(entries, f.Entry(h))
	}

	return Result{
		TOC:     strings.Join(entries, "\n"),
		Content: strings.Join(content, "\n"),
	}
}

// FormatText splits text on newlines and formats it.
func (f *Formatter) FormatText(text string) Result {
	return f.Format(strings.Split(text, "\n"))
}

// Format formats lines with the default options.
func Format(lines []string) Result {
	return Default().Format(lines)
}

// FormatText formats text with the default options.
func FormatText(text string) Result {
	return Default().FormatText(text)
}
