package walker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel string) {
	t.Helper()
	full := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte("content"), 0o644))
}

func supportsGo(path string) bool {
	return filepath.Ext(path) == ".go"
}

func TestWalk_SkipsAlwaysIgnoredDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go")
	writeFile(t, root, "vendor/dep.go")
	writeFile(t, root, "node_modules/pkg/index.go")
	writeFile(t, root, ".git/HEAD")

	got, err := Walk(root, nil, supportsGo)
	require.NoError(t, err)
	assert.Equal(t, []string{"main.go"}, got)
}

func TestWalk_SkipsDotDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go")
	writeFile(t, root, ".dimpact/cache/index.go")

	got, err := Walk(root, nil, supportsGo)
	require.NoError(t, err)
	assert.Equal(t, []string{"main.go"}, got)
}

func TestWalk_CustomIgnoreDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go")
	writeFile(t, root, "testdata/fixture.go")
	writeFile(t, root, "pkg/sub/extra.go")

	got, err := Walk(root, []string{"testdata", "pkg/sub"}, supportsGo)
	require.NoError(t, err)
	assert.Equal(t, []string{"main.go"}, got)
}

func TestWalk_FiltersByExtension(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go")
	writeFile(t, root, "README.md")

	got, err := Walk(root, nil, supportsGo)
	require.NoError(t, err)
	assert.Equal(t, []string{"main.go"}, got)
}

func TestWalk_SortedOutput(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "z.go")
	writeFile(t, root, "a.go")
	writeFile(t, root, "m.go")

	got, err := Walk(root, nil, supportsGo)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.go", "m.go", "z.go"}, got)
}

func TestMatchesIgnoredDir(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		ignoreDirs []string
		want       bool
	}{
		{"exact dir prefix", "vendor/pkg/file.go", []string{"vendor"}, true},
		{"exact path match", "testdata", []string{"testdata"}, true},
		{"nested component match", "a/dist/b.js", []string{"dist"}, true},
		{"no match", "src/main.go", []string{"vendor"}, false},
		{"empty ignore list", "src/main.go", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchesIgnoredDir(tt.path, tt.ignoreDirs))
		})
	}
}
