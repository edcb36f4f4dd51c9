package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dimpact/internal/config"
	"dimpact/internal/dimpacterr"
	"dimpact/internal/symbol"
)

func TestParseSeedID_WellFormed(t *testing.T) {
	id, err := parseSeedID("go:main.go:fn:Run:10")
	require.NoError(t, err)
	assert.Equal(t, symbol.NewID("go", "main.go", symbol.KindFunction, "Run", 10), id)
}

func TestParseSeedID_RejectsWrongFieldCount(t *testing.T) {
	_, err := parseSeedID("go:main.go:fn:Run")
	require.Error(t, err)
	kind, ok := dimpacterr.Code(err)
	require.True(t, ok)
	assert.Equal(t, dimpacterr.KindInputFormat, kind)
}

func TestParseSeedID_RejectsUnknownKindTag(t *testing.T) {
	_, err := parseSeedID("go:main.go:bogus:Run:10")
	require.Error(t, err)
	kind, ok := dimpacterr.Code(err)
	require.True(t, ok)
	assert.Equal(t, dimpacterr.KindInputFormat, kind)
}

func TestParseSeedID_RejectsNonNumericLine(t *testing.T) {
	_, err := parseSeedID("go:main.go:fn:Run:abc")
	require.Error(t, err)
}

func TestParseSeedID_AcceptsModAlias(t *testing.T) {
	id, err := parseSeedID("rust:lib.rs:mod:shapes:1")
	require.NoError(t, err)
	assert.Equal(t, symbol.NewID("rust", "lib.rs", symbol.KindModule, "shapes", 1), id)
}

func TestParseDiffInput_EmptyInputYieldsEmptyDiff(t *testing.T) {
	parsed, err := parseDiffInput("")
	require.NoError(t, err)
	assert.Empty(t, parsed.Files)
}

func TestParseDiffInput_MalformedNonEmptyInputPropagates(t *testing.T) {
	_, err := parseDiffInput("--- not a real diff header at all ---\nfoo\n")
	if err == nil {
		t.Skip("go-diff tolerated this malformed input as a degenerate diff")
	}
	assert.Error(t, err)
}

func TestMergedIgnoreDirs_UnionsConfigAndFlagsDeduped(t *testing.T) {
	cfg := &config.Config{IgnoreDirs: []string{"vendor", "dist"}}
	got := mergedIgnoreDirs(cfg, []string{"dist", "node_modules"})
	assert.Equal(t, []string{"vendor", "dist", "node_modules"}, got)
}

func TestMergedIgnoreDirs_EmptyConfigAndFlags(t *testing.T) {
	cfg := &config.Config{}
	assert.Empty(t, mergedIgnoreDirs(cfg, nil))
}
