package render

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"dimpact/internal/symbol"
)

func TestDOT_RendersSeedsImpactedAndEdges(t *testing.T) {
	seedID := symbol.NewID("go", "main.go", symbol.KindFunction, "Caller", 3)
	calleeID := symbol.NewID("go", "main.go", symbol.KindFunction, "Helper", 1)

	impacted := []symbol.Symbol{
		{ID: calleeID, Name: "Helper", Kind: symbol.KindFunction, File: "main.go", Range: symbol.TextRange{Start: 1, End: 1}},
	}
	edges := []symbol.Reference{
		{From: seedID, To: calleeID, File: "main.go", Line: 4},
	}

	out := DOT([]symbol.ID{seedID}, impacted, edges)

	assert.True(t, strings.HasPrefix(out, "digraph impact {\n"))
	assert.Contains(t, out, "shape=doublecircle", "seeds render in a distinct shape")
	assert.Contains(t, out, string(seedID))
	assert.Contains(t, out, string(calleeID))
	assert.True(t, strings.HasSuffix(out, "}\n"))
}

func TestDOT_SeedThatIsAlsoImpactedRendersOnce(t *testing.T) {
	seedID := symbol.NewID("go", "main.go", symbol.KindFunction, "Helper", 1)
	impacted := []symbol.Symbol{
		{ID: seedID, Name: "Helper", Kind: symbol.KindFunction, File: "main.go", Range: symbol.TextRange{Start: 1, End: 1}},
	}

	out := DOT([]symbol.ID{seedID}, impacted, nil)

	assert.Equal(t, 1, strings.Count(out, string(seedID)), "a symbol that is both a seed and impacted must not get two node declarations")
}

func TestDOT_EmptyGraphStillWellFormed(t *testing.T) {
	out := DOT(nil, nil, nil)
	assert.Equal(t, "digraph impact {\n  rankdir=LR;\n  node [shape=box, fontname=\"monospace\"];\n}\n", out)
}

// TestDOT_HighlightsShortestPathEdges covers the path-highlighting
// supplement grounded on render.rs's compute_path_pairs: the edges on the
// shortest path from a seed to an impacted symbol are colored, and the
// impacted symbol D, which no edge reaches, adds no colored edge.
func TestDOT_HighlightsShortestPathEdges(t *testing.T) {
	seed := symbol.NewID("go", "a.go", symbol.KindFunction, "A", 1)
	mid := symbol.NewID("go", "a.go", symbol.KindFunction, "B", 2)
	leaf := symbol.NewID("go", "a.go", symbol.KindFunction, "C", 3)
	unrelated := symbol.NewID("go", "a.go", symbol.KindFunction, "D", 4)

	impacted := []symbol.Symbol{
		{ID: mid, Name: "B", Kind: symbol.KindFunction, File: "a.go", Range: symbol.TextRange{Start: 2, End: 2}},
		{ID: leaf, Name: "C", Kind: symbol.KindFunction, File: "a.go", Range: symbol.TextRange{Start: 3, End: 3}},
		{ID: unrelated, Name: "D", Kind: symbol.KindFunction, File: "a.go", Range: symbol.TextRange{Start: 4, End: 4}},
	}
	edges := []symbol.Reference{
		{From: seed, To: mid, File: "a.go", Line: 1},
		{From: mid, To: leaf, File: "a.go", Line: 2},
	}

	out := DOT([]symbol.ID{seed}, impacted, edges)

	assert.Contains(t, out, fmt.Sprintf("%s -> %s [color=\"#e33\"", nodeLabelFor(out, seed), nodeLabelFor(out, mid)))
	assert.Equal(t, 2, strings.Count(out, "#e33"), "both edges on the seed->mid->leaf path are highlighted")
}

// nodeLabelFor extracts the synthetic node identifier DOT assigned to id by
// locating its quoted label declaration, since node names (n0, n1, ...) are
// allocated in emission order rather than being predictable from the id.
func nodeLabelFor(dot string, id symbol.ID) string {
	marker := fmt.Sprintf("label=%q", string(id))
	idx := strings.Index(dot, marker)
	if idx < 0 {
		return ""
	}
	lineStart := strings.LastIndex(dot[:idx], "\n") + 1
	line := dot[lineStart:idx]
	return strings.TrimSpace(strings.Fields(line)[0])
}
