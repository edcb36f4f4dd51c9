package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"dimpact/internal/analyzer"
	"dimpact/internal/analyzer/golang"
	"dimpact/internal/analyzer/python"
	"dimpact/internal/config"
	"dimpact/internal/diffparser"
	"dimpact/internal/dimpacterr"
	"dimpact/internal/logging"
	"dimpact/internal/render"
	"dimpact/internal/store"
	"dimpact/internal/symbol"
)

// parseDiffInput parses a unified-diff text stream, treating the
// empty-input/missing-header case as an empty parsed diff rather than a
// fatal error (§6.2: "treated by the caller as an empty change set"). Any
// other parse failure propagates.
func parseDiffInput(input string) (*diffparser.ParsedDiff, error) {
	parsed, err := diffparser.Parse(input)
	if err == nil {
		return parsed, nil
	}
	if de, ok := err.(*dimpacterr.DimpactError); ok && de.Code == dimpacterr.KindInputFormat && de.Hint == "missing-header" {
		return parsed, nil
	}
	return nil, err
}

// mustGetRepoRoot returns the current working directory, the repo root for
// every command: dimpact has no repo registry like SimplyLiz-CodeMCP's MCP
// server, so "the directory the user invoked us from" is the only root.
func mustGetRepoRoot() string {
	root, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return root
}

// newLogger builds the process's single structured logger. Logs always go
// to stderr to keep stdout clean for command payloads. Verbosity is -v/-q
// first, falling back to the config file's logging.level.
func newLogger(cfg *config.Config) *slog.Logger {
	level := logging.LevelFromVerbosity(verbosity, quiet)
	if verbosity == 0 && !quiet && cfg != nil {
		level = logging.LevelFromString(cfg.Logging.Level)
	}
	format := logging.FormatText
	if cfg != nil && cfg.Logging.Format == "json" {
		format = logging.FormatJSON
	}
	return logging.New(logging.Config{Format: format, Level: level, Output: os.Stderr})
}

// mustLoadConfig loads repo configuration, exiting the process on a hard
// read failure (a malformed file, not its absence).
func mustLoadConfig(repoRoot string) *config.Config {
	cfg, err := config.Load(repoRoot)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// buildRegistry returns the analyzer registry with every shipped language
// adapter registered, forcing language onto every path if non-empty
// (§6.3's language-override option group). Adding a language here is the
// only wiring a new adapter needs (§4.1).
func buildRegistry(language string) *analyzer.Registry {
	reg := analyzer.NewRegistry()
	reg.Register(func() analyzer.Analyzer { return golang.New() }, ".go")
	reg.Register(func() analyzer.Analyzer { return python.New() }, ".py")
	return reg.WithLanguageOverride(language)
}

// mergedIgnoreDirs combines the config file's ignore_dirs with --ignore-dirs
// flag values. CLI flags win in spirit by being appended last, but since
// both lists are simple prefix sets the union is what actually matters
// (§11's "merged (CLI flags win)" is about precedence when the same
// directory appears with conflicting intent, which cannot happen for a pure
// ignore-list).
func mergedIgnoreDirs(cfg *config.Config, flagValues []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, d := range cfg.IgnoreDirs {
		if d != "" && !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	for _, d := range flagValues {
		if d != "" && !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	return out
}

// mustOpenStore opens the persistent store for repoRoot, exiting the
// process on failure.
func mustOpenStore(repoRoot string, cfg *config.Config, reg *analyzer.Registry, ignoreDirs []string, logger *slog.Logger) *store.Handle {
	scope := store.Scope(cfg.CacheScope)
	if cacheScope != "" {
		scope = store.Scope(cacheScope)
	}
	h, err := store.Open(repoRoot, scope, cacheDir, reg, ignoreDirs, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		os.Exit(1)
	}
	return h
}

// readStdinAll reads stdin to completion, used by diff/changed/impact when
// a diff is being piped in rather than an explicit seed list.
func readStdinAll() (string, error) {
	var b strings.Builder
	buf := make([]byte, 32*1024)
	for {
		n, err := os.Stdin.Read(buf)
		if n > 0 {
			b.Write(buf[:n])
		}
		if err != nil {
			break
		}
	}
	return b.String(), nil
}

// parseSeedID parses one seed-id string of the grammar
// language:path:kind-tag:name:start-line (§6.3), including the fn/mod
// aliases, into a symbol.ID built the same way the store does (so it
// compares equal to an ID produced by analysis).
func parseSeedID(raw string) (symbol.ID, error) {
	parts := strings.SplitN(raw, ":", 5)
	if len(parts) != 5 {
		return "", dimpacterr.New(dimpacterr.KindInputFormat, "malformed seed id: "+raw).WithHint("expected language:path:kind-tag:name:start-line")
	}
	language, path, kindTag, name, lineStr := parts[0], parts[1], parts[2], parts[3], parts[4]

	kind, ok := symbol.ParseKindTag(kindTag)
	if !ok {
		return "", dimpacterr.New(dimpacterr.KindInputFormat, "unknown kind tag: "+kindTag).WithHint("valid tags: function, fn, method, struct, enum, trait, module, mod")
	}

	line, err := strconv.Atoi(lineStr)
	if err != nil {
		return "", dimpacterr.Wrap(dimpacterr.KindInputFormat, err, "malformed start-line in seed id: "+raw)
	}

	return symbol.NewID(language, path, kind, name, line), nil
}

// writeOutput renders v in the requested format and prints it to stdout.
// Only JSON and YAML are valid for generic payloads; DOT/HTML are rendered
// directly by the impact command, which owns the symbol/edge data they need.
func writeOutput(v interface{}, format string) error {
	switch render.Format(format) {
	case render.FormatYAML:
		out, err := render.YAML(v)
		if err != nil {
			return dimpacterr.Wrap(dimpacterr.KindInternal, err, "rendering yaml")
		}
		fmt.Print(out)
	default:
		out, err := render.JSON(v)
		if err != nil {
			return dimpacterr.Wrap(dimpacterr.KindInternal, err, "rendering json")
		}
		fmt.Println(out)
	}
	return nil
}
