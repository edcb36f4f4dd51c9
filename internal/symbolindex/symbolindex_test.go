package symbolindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dimpact/internal/symbol"
)

func sym(name string, kind symbol.Kind, file string, start, end int) symbol.Symbol {
	return symbol.Symbol{
		ID:    symbol.NewID("go", file, kind, name, start),
		Name:  name,
		Kind:  kind,
		File:  file,
		Range: symbol.TextRange{Start: start, End: end},
	}
}

func TestBuild_ByNameAndByFile(t *testing.T) {
	a := sym("Run", symbol.KindFunction, "main.go", 1, 5)
	b := sym("Run", symbol.KindMethod, "other.go", 10, 20)
	c := sym("Helper", symbol.KindFunction, "main.go", 7, 9)

	idx := Build([]symbol.Symbol{a, b, c})

	assert.ElementsMatch(t, []symbol.Symbol{a, b}, idx.ByName("Run"))
	assert.Equal(t, []symbol.Symbol{a, c}, idx.ByFile("main.go"))
	assert.Empty(t, idx.ByFile("missing.go"))
	assert.Len(t, idx.All(), 3)
}

func TestByID(t *testing.T) {
	a := sym("Run", symbol.KindFunction, "main.go", 1, 5)
	idx := Build([]symbol.Symbol{a})

	got, ok := idx.ByID(a.ID)
	require.True(t, ok)
	assert.Equal(t, a, got)

	_, ok = idx.ByID(symbol.ID("nonexistent"))
	assert.False(t, ok)
}

// TestEnclosingSymbol_SmallestRangeWins exercises the nesting tie-break: a
// method nested inside a struct's line range is reported as the enclosing
// symbol over the wider-ranged struct.
func TestEnclosingSymbol_SmallestRangeWins(t *testing.T) {
	outer := sym("Widget", symbol.KindStruct, "widget.go", 1, 50)
	inner := sym("Resize", symbol.KindMethod, "widget.go", 10, 20)

	idx := Build([]symbol.Symbol{outer, inner})

	got, ok := idx.EnclosingSymbol("widget.go", 15)
	require.True(t, ok)
	assert.Equal(t, inner.ID, got.ID)
}

func TestEnclosingSymbol_NoMatch(t *testing.T) {
	outer := sym("Widget", symbol.KindStruct, "widget.go", 1, 50)
	idx := Build([]symbol.Symbol{outer})

	_, ok := idx.EnclosingSymbol("widget.go", 100)
	assert.False(t, ok)

	_, ok = idx.EnclosingSymbol("missing.go", 1)
	assert.False(t, ok)
}

// TestEnclosingSymbol_EqualRangeTieBreak covers the final tie-break: when
// two candidates have identical ranges, the first one in emission
// (ByFile) order wins.
func TestEnclosingSymbol_EqualRangeTieBreak(t *testing.T) {
	first := sym("First", symbol.KindFunction, "f.go", 1, 10)
	second := sym("Second", symbol.KindFunction, "f.go", 1, 10)

	idx := Build([]symbol.Symbol{first, second})
	got, ok := idx.EnclosingSymbol("f.go", 5)
	require.True(t, ok)
	assert.Equal(t, first.ID, got.ID)
}

func TestSortedByID(t *testing.T) {
	a := sym("B", symbol.KindFunction, "a.go", 1, 2)
	b := sym("A", symbol.KindFunction, "a.go", 3, 4)

	sorted := SortedByID([]symbol.Symbol{a, b})
	require.Len(t, sorted, 2)
	assert.True(t, sorted[0].ID < sorted[1].ID)
}
