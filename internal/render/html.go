package render

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"dimpact/internal/symbol"
)

// HTML renders a self-contained impact report: a list of seeds, then one
// table per impacted file with a row per impacted symbol, followed by an
// edge table when edges are given. No external assets or scripts, so the file opens standalone in
// a browser or is easy to attach to a PR comment.
func HTML(title string, seeds []symbol.ID, byFile map[string][]symbol.Symbol, edges []symbol.Reference) string {
	var b strings.Builder

	b.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(title))
	b.WriteString(`<style>
body { font-family: -apple-system, sans-serif; margin: 2rem; }
h1 { font-size: 1.25rem; }
h2 { font-size: 1rem; margin-top: 1.5rem; }
table { border-collapse: collapse; width: 100%; }
td, th { border: 1px solid #ccc; padding: 4px 8px; text-align: left; font-size: 0.85rem; }
code { font-family: monospace; }
</style>
</head><body>
`)
	fmt.Fprintf(&b, "<h1>%s</h1>\n", html.EscapeString(title))

	b.WriteString("<h2>Seeds</h2>\n<ul>\n")
	sortedSeeds := append([]symbol.ID(nil), seeds...)
	sort.Slice(sortedSeeds, func(i, j int) bool { return sortedSeeds[i] < sortedSeeds[j] })
	for _, s := range sortedSeeds {
		fmt.Fprintf(&b, "<li><code>%s</code></li>\n", html.EscapeString(string(s)))
	}
	b.WriteString("</ul>\n")

	files := make([]string, 0, len(byFile))
	for f := range byFile {
		files = append(files, f)
	}
	sort.Strings(files)

	b.WriteString("<h2>Impacted files</h2>\n")
	for _, file := range files {
		fmt.Fprintf(&b, "<h3><code>%s</code></h3>\n<table><tr><th>Symbol</th><th>Kind</th><th>Lines</th></tr>\n", html.EscapeString(file))
		syms := byFile[file]
		sort.Slice(syms, func(i, j int) bool { return syms[i].ID < syms[j].ID })
		for _, s := range syms {
			fmt.Fprintf(&b, "<tr><td><code>%s</code></td><td>%s</td><td>%d-%d</td></tr>\n",
				html.EscapeString(s.Name), html.EscapeString(string(s.Kind)), s.Range.Start, s.Range.End)
		}
		b.WriteString("</table>\n")
	}

	if len(edges) > 0 {
		sortedEdges := append([]symbol.Reference(nil), edges...)
		sort.Slice(sortedEdges, func(i, j int) bool {
			if sortedEdges[i].From != sortedEdges[j].From {
				return sortedEdges[i].From < sortedEdges[j].From
			}
			return sortedEdges[i].To < sortedEdges[j].To
		})
		b.WriteString("<h2>Edges</h2>\n<table><tr><th>From</th><th>To</th><th>File</th><th>Line</th></tr>\n")
		for _, e := range sortedEdges {
			fmt.Fprintf(&b, "<tr><td><code>%s</code></td><td><code>%s</code></td><td><code>%s</code></td><td>%d</td></tr>\n",
				html.EscapeString(string(e.From)), html.EscapeString(string(e.To)), html.EscapeString(e.File), e.Line)
		}
		b.WriteString("</table>\n")
	}

	b.WriteString("</body></html>\n")
	return b.String()
}
