// Package render turns page views into standalone HTML documents.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/starford/onboard/internal/page"
)

// Renderer converts markdown with goldmark and sanitises the output with
// bluemonday. Raw HTML is let through goldmark because annotated headings
// carry inline anchor targets; the policy then strips everything else.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	tmpl   *template.Template
}

// New returns a Renderer.
func New() *Renderer {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("name", "id").OnElements("a")

	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
		policy: policy,
		tmpl:   template.Must(template.New("page").Parse(pageTemplate)),
	}
}

// Markdown converts src to sanitised HTML.
func (r *Renderer) Markdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render: convert markdown: %w", err)
	}
	return template.HTML(r.policy.SanitizeBytes(buf.Bytes())), nil //nolint:gosec // sanitised above
}

// untitled is the link text shown for TOC entries of headings without a title.
const untitled = "(untitled)"

type blockView struct {
	page.Block
	HTML template.HTML
}

// tocLine is one TOC entry. Entries are converted one at a time so that
// deep indentation is never read as an indented code block.
type tocLine struct {
	Pad  int
	HTML template.HTML
}

type pageView struct {
	Title  string
	TOC    []tocLine
	Blocks []blockView
}

// Page writes v as a complete HTML document.
func (r *Renderer) Page(w io.Writer, v *page.View) error {
	pv := pageView{Title: v.Title, Blocks: make([]blockView, len(v.Blocks))}

	if v.TOC != "" {
		for _, line := range strings.Split(v.TOC, "\n") {
			entry := strings.TrimLeft(line, " \t")
			pad := len(line) - len(entry)
			if rest, ok := strings.CutPrefix(entry, "[]("); ok {
				entry = "[" + untitled + "](" + rest
			}
			h, err := r.Markdown(entry)
			if err != nil {
				return err
			}
			pv.TOC = append(pv.TOC, tocLine{Pad: pad, HTML: h})
		}
	}
	for i, b := range v.Blocks {
		pv.Blocks[i] = blockView{Block: b}
		if b.Kind != page.KindMarkdown {
			continue
		}
		h, err := r.Markdown(b.Text)
		if err != nil {
			return err
		}
		pv.Blocks[i].HTML = h
	}

	if err := r.tmpl.Execute(w, pv); err != nil {
		return fmt.Errorf("render: execute template: %w", err)
	}
	return nil
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
</head>
<body>
<main>
{{- if .TOC}}
<details class="toc" open><summary>Contents</summary>
{{- range .TOC}}
<div style="padding-left: {{.Pad}}ch">{{.HTML}}</div>
{{- end}}
</details>
{{- end}}
{{- range .Blocks}}
{{template "block" .}}
{{- end}}
</main>
<script>document.querySelectorAll(".keep-bottom").forEach(function (e) { e.scrollTop = e.scrollHeight; });</script>
</body>
</html>
{{define "block" -}}
{{- if eq .Kind "markdown"}}<section class="markdown">{{.HTML}}</section>
{{- else if eq .Kind "code"}}<pre><code class="language-{{.Language}}">{{.Text}}</code></pre>
{{- else if eq .Kind "image"}}<img src="{{.URL}}"{{if .Width}} width="{{.Width}}"{{end}} alt="">
{{- else if eq .Kind "scrollable"}}<div class="scrollable{{if .KeepBottom}} keep-bottom{{end}}" style="height: {{.Height}}px; overflow-y: auto"><pre>{{.Text}}</pre></div>
{{- end}}
{{- end}}`
