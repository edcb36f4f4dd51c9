// Package symbol defines the language-agnostic symbol and reference data
// model shared by every analyzer adapter, the resolver, and the persistent
// store.
package symbol

import "fmt"

// Kind is the closed set of declaration kinds the core understands. Only
// Function and Method are eligible as call-edge endpoints; the rest
// participate only as change-mapper seeds.
type Kind string

const (
	KindFunction Kind = "function"
	KindMethod   Kind = "method"
	KindStruct   Kind = "struct"
	KindEnum     Kind = "enum"
	KindTrait    Kind = "trait"
	KindModule   Kind = "module"
)

// validKinds is the closed set of Kind values; a Kind's string is also its
// on-disk/id tag. ParseKindTag maps the seed-id grammar's aliases (fn, mod)
// onto this set without touching the Kind values themselves.
var validKinds = map[Kind]bool{
	KindFunction: true,
	KindMethod:   true,
	KindStruct:   true,
	KindEnum:     true,
	KindTrait:    true,
	KindModule:   true,
}

// Valid reports whether k is one of the six closed kinds.
func (k Kind) Valid() bool {
	return validKinds[k]
}

// IsCallable reports whether a symbol of this kind may be the target of a
// resolved Reference.
func (k Kind) IsCallable() bool {
	return k == KindFunction || k == KindMethod
}

// ParseKindTag resolves a seed-id kind tag, including the two aliases the
// command surface recognizes (fn for function, mod for module), to a Kind.
func ParseKindTag(tag string) (Kind, bool) {
	switch tag {
	case "fn":
		return KindFunction, true
	case "mod":
		return KindModule, true
	}
	k := Kind(tag)
	if !k.Valid() {
		return "", false
	}
	return k, true
}

// TextRange is an inclusive, 1-based line interval.
type TextRange struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Contains reports whether line falls within the range, inclusive.
func (r TextRange) Contains(line int) bool {
	return line >= r.Start && line <= r.End
}

// Len returns the number of lines spanned by the range. Used to break
// enclosing-symbol ties in favor of the smallest (most specific) range.
func (r TextRange) Len() int {
	return r.End - r.Start + 1
}

// Intersects reports whether r shares at least one line with other.
func (r TextRange) Intersects(other TextRange) bool {
	return r.Start <= other.End && other.Start <= r.End
}

// idSeparator joins the SymbolId components. Chosen to be unlikely to occur
// inside a name, a kind tag, or a path on any supported platform.
const idSeparator = "\x1f"

// ID is the opaque stable key of a Symbol: a pure, unhashed function of its
// inputs. Two symbols with identical (language, file, kind, name,
// start_line) always produce byte-equal ids, in this run and in any other.
type ID string

// NewID builds a SymbolId from its defining components. It never consults
// index state or any counter, satisfying P1 (symbol-id determinism).
func NewID(language, file string, kind Kind, name string, startLine int) ID {
	return ID(fmt.Sprintf("%s%s%s%s%s%s%s%s%d", language, idSeparator, file, idSeparator, kind, idSeparator, name, idSeparator, startLine))
}

// Symbol is a named, ranged declaration owned by exactly one file.
type Symbol struct {
	ID       ID        `json:"id" yaml:"id"`
	Name     string    `json:"name" yaml:"name"`
	Kind     Kind      `json:"kind" yaml:"kind"`
	File     string    `json:"file" yaml:"file"`
	Range    TextRange `json:"range" yaml:"range"`
	Language string    `json:"language" yaml:"language"`
}

// UnresolvedRef is a syntactic call site observed by an analyzer adapter,
// not yet bound to a target symbol.
type UnresolvedRef struct {
	Name      string
	File      string
	Line      int
	Qualifier string // dotted/path prefix preceding Name at the call site, if any
	IsMethod  bool   // whether the site is a member/receiver call
}

// HasQualifier reports whether the call site carried an explicit qualifier.
func (u UnresolvedRef) HasQualifier() bool {
	return u.Qualifier != ""
}

// Import map reserved key family prefixes (§3). These three families and
// plain alias entries are disjoint namespaces within a single ImportMap.
const (
	globPrefix        = "__glob__"
	exportPrefix      = "__export__"
	exportGlobPrefix  = "__export_glob__"
)

// ImportMap is a per-file mapping from in-file identifier to a normalized
// external path, augmented with glob and re-export key families.
type ImportMap map[string]string

// NewImportMap returns an empty, ready-to-populate ImportMap.
func NewImportMap() ImportMap {
	return make(ImportMap)
}

// SetAlias records a named or aliased import: alias -> canonical::path.
func (m ImportMap) SetAlias(alias, canonicalPath string) {
	m[alias] = canonicalPath
}

// SetGlob records a wildcard import contributing a candidate prefix.
func (m ImportMap) SetGlob(prefix string) {
	m[globPrefix+prefix] = prefix
}

// SetExport records a re-export: name published by this file resolves to
// module::original_name.
func (m ImportMap) SetExport(name, module, originalName string) {
	m[exportPrefix+name] = module + "::" + originalName
}

// SetExportGlob records an aggregator's blanket re-export of every name
// under prefix.
func (m ImportMap) SetExportGlob(prefix string) {
	m[exportGlobPrefix+prefix] = prefix
}

// Alias looks up a plain alias entry, ignoring glob/export families.
func (m ImportMap) Alias(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

// Globs returns every candidate prefix contributed by wildcard imports.
func (m ImportMap) Globs() []string {
	var out []string
	for k, v := range m {
		if len(k) > len(globPrefix) && k[:len(globPrefix)] == globPrefix {
			out = append(out, v)
		}
	}
	return out
}

// Export looks up a re-export entry for name, returning (module,
// originalName, true) on a hit.
func (m ImportMap) Export(name string) (module, originalName string, ok bool) {
	v, present := m[exportPrefix+name]
	if !present {
		return "", "", false
	}
	for i := 0; i+1 < len(v); i++ {
		if v[i] == ':' && v[i+1] == ':' {
			return v[:i], v[i+2:], true
		}
	}
	return "", v, true
}

// ExportGlobs returns every prefix this file blanket-re-exports.
func (m ImportMap) ExportGlobs() []string {
	var out []string
	for k, v := range m {
		if len(k) > len(exportGlobPrefix) && k[:len(exportGlobPrefix)] == exportGlobPrefix {
			out = append(out, v)
		}
	}
	return out
}

// Reference is a resolved call edge between two identified symbols.
type Reference struct {
	From ID     `json:"from" yaml:"from"`
	To   ID     `json:"to" yaml:"to"`
	File string `json:"file" yaml:"file"`
	Line int    `json:"line" yaml:"line"`
}

const ReferenceKindCall = "call"

// FileRecord is the persistent record of one workspace file.
type FileRecord struct {
	Path            string
	Language        string
	ContentDigest   string
	ModificationTime int64
	Present         bool
}
