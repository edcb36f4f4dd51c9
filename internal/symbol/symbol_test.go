package symbol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewID_Deterministic exercises P1: two symbols with identical
// (language, file, kind, name, start_line) always produce byte-equal ids,
// and the id is a pure function of those inputs alone.
func TestNewID_Deterministic(t *testing.T) {
	a := NewID("go", "main.go", KindFunction, "Run", 10)
	b := NewID("go", "main.go", KindFunction, "Run", 10)
	assert.Equal(t, a, b)

	variants := []ID{
		NewID("python", "main.go", KindFunction, "Run", 10),
		NewID("go", "other.go", KindFunction, "Run", 10),
		NewID("go", "main.go", KindMethod, "Run", 10),
		NewID("go", "main.go", KindFunction, "Other", 10),
		NewID("go", "main.go", KindFunction, "Run", 11),
	}
	for _, v := range variants {
		assert.NotEqual(t, a, v, "changing one component must change the id")
	}
}

func TestKind_Valid(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		want bool
	}{
		{"function valid", KindFunction, true},
		{"method valid", KindMethod, true},
		{"struct valid", KindStruct, true},
		{"unknown invalid", Kind("bogus"), false},
		{"empty invalid", Kind(""), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.Valid())
		})
	}
}

func TestKind_IsCallable(t *testing.T) {
	assert.True(t, KindFunction.IsCallable())
	assert.True(t, KindMethod.IsCallable())
	assert.False(t, KindStruct.IsCallable())
	assert.False(t, KindModule.IsCallable())
}

func TestParseKindTag(t *testing.T) {
	tests := []struct {
		tag     string
		want    Kind
		wantOK  bool
	}{
		{"fn", KindFunction, true},
		{"mod", KindModule, true},
		{"function", KindFunction, true},
		{"struct", KindStruct, true},
		{"bogus", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, ok := ParseKindTag(tt.tag)
			require.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestTextRange(t *testing.T) {
	r := TextRange{Start: 10, End: 20}
	assert.True(t, r.Contains(10))
	assert.True(t, r.Contains(20))
	assert.True(t, r.Contains(15))
	assert.False(t, r.Contains(9))
	assert.False(t, r.Contains(21))
	assert.Equal(t, 11, r.Len())

	assert.True(t, r.Intersects(TextRange{Start: 15, End: 30}))
	assert.True(t, r.Intersects(TextRange{Start: 1, End: 10}))
	assert.False(t, r.Intersects(TextRange{Start: 21, End: 30}))
}

func TestImportMap_Alias(t *testing.T) {
	im := NewImportMap()
	im.SetAlias("fmt", "fmt")
	v, ok := im.Alias("fmt")
	require.True(t, ok)
	assert.Equal(t, "fmt", v)

	_, ok = im.Alias("missing")
	assert.False(t, ok)
}

func TestImportMap_Globs(t *testing.T) {
	im := NewImportMap()
	im.SetGlob("pkg/a")
	im.SetGlob("pkg/b")
	im.SetAlias("x", "pkg/x")

	globs := im.Globs()
	assert.ElementsMatch(t, []string{"pkg/a", "pkg/b"}, globs)
}

func TestImportMap_Export(t *testing.T) {
	im := NewImportMap()
	im.SetExport("Widget", "pkg/models", "Widget")

	module, orig, ok := im.Export("Widget")
	require.True(t, ok)
	assert.Equal(t, "pkg/models", module)
	assert.Equal(t, "Widget", orig)

	_, _, ok = im.Export("Missing")
	assert.False(t, ok)
}

func TestImportMap_ExportGlobs(t *testing.T) {
	im := NewImportMap()
	im.SetExportGlob("pkg/sub")
	im.SetAlias("x", "pkg/x")

	globs := im.ExportGlobs()
	assert.Equal(t, []string{"pkg/sub"}, globs)
}

func TestImportMap_KeyFamiliesAreDisjoint(t *testing.T) {
	im := NewImportMap()
	im.SetAlias("name", "alias/target")
	im.SetGlob("name")
	im.SetExport("name", "export/module", "orig")
	im.SetExportGlob("name")

	alias, ok := im.Alias("name")
	require.True(t, ok)
	assert.Equal(t, "alias/target", alias)

	module, orig, ok := im.Export("name")
	require.True(t, ok)
	assert.Equal(t, "export/module", module)
	assert.Equal(t, "orig", orig)

	assert.Contains(t, im.Globs(), "name")
	assert.Contains(t, im.ExportGlobs(), "name")
}
