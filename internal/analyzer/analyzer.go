// Package analyzer defines the per-language extraction contract consumed by
// the core (§4.1, §6.1) and a registry mapping file extensions to analyzer
// factories.
package analyzer

import (
	"path/filepath"
	"strings"
	"sync"

	"dimpact/internal/symbol"
)

// Analyzer is the capability set a language contributes to the core. Every
// method is a pure function of (path, source): deterministic, no shared
// state, and never panics on malformed input — it returns the best partial
// result instead.
type Analyzer interface {
	// Language identifies the analyzer's language tag, used in SymbolId and
	// in the seed-id grammar.
	Language() string

	// SymbolsInFile returns the closed set of top-level and nested declared
	// symbols. Methods nested in a class/impl container are emitted
	// individually with their own range.
	SymbolsInFile(path string, source []byte) []symbol.Symbol

	// UnresolvedRefsInFile returns every call site visible in source,
	// including member-style calls.
	UnresolvedRefsInFile(path string, source []byte) []symbol.UnresolvedRef

	// ImportsInFile returns the file's import map, including re-exports and
	// glob/wildcard forms.
	ImportsInFile(path string, source []byte) symbol.ImportMap
}

// Factory constructs a fresh Analyzer instance. Adapters that wrap a
// tree-sitter parser return a new instance per call so that each worker in
// the concurrency model (§5) owns its own non-thread-safe parser.
type Factory func() Analyzer

// Registry maps file extensions to analyzer factories. Registration is by
// extension; adding a language is purely additive and never requires
// touching an existing registration.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	// forced, when set, overrides extension dispatch entirely: every path
	// is treated as supported and handed to this factory. Set via
	// WithLanguageOverride, the registry-level home for the CLI's
	// --language flag (§6.3).
	forced Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register associates one or more file extensions (with or without a
// leading dot) with a factory.
func (r *Registry) Register(factory Factory, extensions ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ext := range extensions {
		r.factories[normalizeExt(ext)] = factory
	}
}

// New returns a fresh analyzer instance for path: the forced override
// factory if one is set via WithLanguageOverride, else based on its
// extension; nil if no analyzer is registered for it.
func (r *Registry) New(path string) Analyzer {
	r.mu.RLock()
	forced := r.forced
	factory, ok := r.factories[normalizeExt(filepath.Ext(path))]
	r.mu.RUnlock()
	if forced != nil {
		return forced()
	}
	if !ok {
		return nil
	}
	return factory()
}

// Supports reports whether path's extension maps to a registered analyzer,
// or unconditionally true when a language override is forced.
func (r *Registry) Supports(path string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.forced != nil {
		return true
	}
	_, ok := r.factories[normalizeExt(filepath.Ext(path))]
	return ok
}

// WithLanguageOverride returns a shallow copy of r that dispatches every
// path to the single analyzer matching language, regardless of extension.
// If no registered factory reports that language, the override is a no-op
// and normal extension dispatch is kept (the caller is expected to have
// validated language against a known set before calling this).
func (r *Registry) WithLanguageOverride(language string) *Registry {
	if language == "" {
		return r
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, factory := range r.factories {
		if factory().Language() == language {
			return &Registry{factories: r.factories, forced: factory}
		}
	}
	return r
}

// ForLanguage returns a fresh analyzer instance whose Language() tag equals
// language, or nil when no registered factory reports that tag. The CLI's
// --language flag (§6.3) goes through WithLanguageOverride, not this method.
func (r *Registry) ForLanguage(language string) Analyzer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, factory := range r.factories {
		a := factory()
		if a.Language() == language {
			return a
		}
	}
	return nil
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && ext[0] != '.' {
		ext = "." + ext
	}
	return ext
}
