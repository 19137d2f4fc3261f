package report

import (
	"bytes"
	"fmt"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Markdown renders the report as a markdown document
func Markdown(r Report) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s: %s\n\n", r.Result.Experiment, r.Label)
	if r.Source != "" {
		fmt.Fprintf(&buf, "Data source: %s\n\n", r.Source)
	}

	buf.WriteString("| Field | Value |\n|---|---|\n")
	for _, row := range rows(r.Result, r.Label) {
		fmt.Fprintf(&buf, "| %s | %s |\n", row[0], row[1])
	}

	if r.Result.Distribution != nil {
		bins := r.Bins
		if bins <= 0 {
			bins = DefaultBins
		}
		buf.WriteString("\n## Null distribution\n\n```\n")
		buf.WriteString(textBlock(r.Result.Distribution, bins))
		buf.WriteString("```\n")
	}
	return buf.Bytes()
}

// HTML renders the markdown report as a standalone page
func HTML(r Report) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Title: fmt.Sprintf("%s significance report", r.Result.Experiment),
		Flags: html.CommonFlags | html.CompletePage,
	})
	return markdown.ToHTML(Markdown(r), p, renderer)
}
