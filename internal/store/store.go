// Package store implements the persistent index (§4.5, §6.4): a locked,
// schema-versioned sqlite file per scope directory holding the files,
// symbols, and edges tables, plus a compressed graph snapshot used to make
// load_graph fast on the common case of nothing having changed.
//
// Grounded on internal/storage/db.go and internal/storage/repositories.go in
// SimplyLiz-CodeMCP for the open/transaction/repository shape, and on
// internal/backends/orchestrator.go's fan-out pattern (there a
// sync.WaitGroup, generalized here to an errgroup for first-error
// propagation across the parallel analyzer workers of §5).
package store

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"dimpact/internal/analyzer"
	"dimpact/internal/dimpacterr"
	"dimpact/internal/resolver"
	"dimpact/internal/symbol"
	"dimpact/internal/symbolindex"
	"dimpact/internal/walker"
)

// maxParallelAnalyzers bounds the per-file analyzer worker pool (§5): each
// worker owns its own analyzer instance (tree-sitter parsers are not
// thread-safe), capped to avoid unbounded goroutine fan-out on large trees.
const maxParallelAnalyzers = 8

// Handle is an open persistent store: a locked sqlite connection under a
// resolved scope directory, plus what's needed to (re)build it against a
// workspace.
type Handle struct {
	db         *sql.DB
	dir        string
	root       string
	registry   *analyzer.Registry
	ignoreDirs []string
	logger     *slog.Logger
	lock       *fileLock
}

// Open resolves the store directory for scope, acquires its exclusive lock,
// and opens (creating or rebuilding on schema mismatch) its sqlite file.
func Open(root string, scope Scope, override string, registry *analyzer.Registry, ignoreDirs []string, logger *slog.Logger) (*Handle, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dir, err := ResolveDir(scope, root, override)
	if err != nil {
		return nil, dimpacterr.Wrap(dimpacterr.KindIO, err, "resolving store directory")
	}

	lock, err := acquireLock(dir)
	if err != nil {
		return nil, dimpacterr.Wrap(dimpacterr.KindIO, err, "acquiring store lock")
	}

	db, err := openDB(dir)
	if err != nil {
		lock.release()
		return nil, err
	}

	return &Handle{
		db:         db,
		dir:        dir,
		root:       root,
		registry:   registry,
		ignoreDirs: ignoreDirs,
		logger:     logger,
		lock:       lock,
	}, nil
}

// Dir returns the resolved, on-disk store directory.
func (h *Handle) Dir() string { return h.dir }

// Close releases the store's lock and closes its sqlite connection.
func (h *Handle) Close() error {
	err := h.db.Close()
	h.lock.release()
	return err
}

// Stats summarizes the store's current contents (the `cache stats` command,
// SPEC_FULL §11).
type Stats struct {
	FilesPresent  int    `json:"files_present" yaml:"files_present"`
	SymbolCount   int    `json:"symbol_count" yaml:"symbol_count"`
	EdgeCount     int    `json:"edge_count" yaml:"edge_count"`
	LastRunID     string `json:"last_run_id" yaml:"last_run_id"`
	SchemaVersion int    `json:"schema_version" yaml:"schema_version"`
}

// Stats reports row counts and the last recorded run id.
func (h *Handle) Stats() (Stats, error) {
	st := Stats{SchemaVersion: SchemaVersion}
	if err := h.db.QueryRow(`SELECT count(*) FROM files WHERE present = 1`).Scan(&st.FilesPresent); err != nil {
		return st, dimpacterr.Wrap(dimpacterr.KindIO, err, "counting files")
	}
	if err := h.db.QueryRow(`SELECT count(*) FROM symbols`).Scan(&st.SymbolCount); err != nil {
		return st, dimpacterr.Wrap(dimpacterr.KindIO, err, "counting symbols")
	}
	if err := h.db.QueryRow(`SELECT count(*) FROM edges`).Scan(&st.EdgeCount); err != nil {
		return st, dimpacterr.Wrap(dimpacterr.KindIO, err, "counting edges")
	}
	_ = h.db.QueryRow(`SELECT value FROM meta WHERE key = 'last_run_id'`).Scan(&st.LastRunID)
	return st, nil
}

// Clear removes the store file (and any WAL sidecars), leaving the
// directory and lock in place, then reinitializes an empty schema so the
// handle stays usable for whatever operation follows in the same process.
func (h *Handle) Clear() error {
	if err := h.db.Close(); err != nil {
		return dimpacterr.Wrap(dimpacterr.KindIO, err, "closing store before clear")
	}
	for _, suffix := range []string{"", "-wal", "-shm"} {
		path := filepath.Join(h.dir, storeFileName+suffix)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return dimpacterr.Wrap(dimpacterr.KindIO, err, "removing store file")
		}
	}
	db, err := openDB(h.dir)
	if err != nil {
		return err
	}
	h.db = db
	return nil
}

// fileAnalysis is one file's extraction result, the unit of work the
// parallel analyzer pool produces.
type fileAnalysis struct {
	path     string
	language string
	digest   string
	mtime    int64
	present  bool
	symbols  []symbol.Symbol
	refs     []symbol.UnresolvedRef
	imports  symbol.ImportMap
}

// analyzeFiles runs the registered analyzer over every path concurrently,
// bounded to maxParallelAnalyzers, stopping at the first hard error.
func (h *Handle) analyzeFiles(paths []string) ([]fileAnalysis, error) {
	results := make([]fileAnalysis, len(paths))
	g := new(errgroup.Group)
	g.SetLimit(maxParallelAnalyzers)

	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			fa, err := h.analyzeOne(p)
			if err != nil {
				return err
			}
			results[i] = fa
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (h *Handle) analyzeOne(relPath string) (fileAnalysis, error) {
	fa := fileAnalysis{path: relPath}
	full := filepath.Join(h.root, relPath)

	data, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return fa, nil // present=false: a path that vanished between walk and read
		}
		return fa, dimpacterr.Wrap(dimpacterr.KindIO, err, "reading "+relPath)
	}

	fa.present = true
	fa.digest = digestContent(data)
	if info, statErr := os.Stat(full); statErr == nil {
		fa.mtime = info.ModTime().Unix()
	}

	a := h.registry.New(relPath)
	if a == nil {
		return fa, nil
	}
	fa.language = a.Language()
	fa.symbols = a.SymbolsInFile(relPath, data)
	fa.refs = a.UnresolvedRefsInFile(relPath, data)
	fa.imports = a.ImportsInFile(relPath, data)
	return fa, nil
}

// BuildAll performs a full rebuild (`cache build`, §4.5): walk the
// workspace, analyze every eligible file in parallel, resolve references
// across the whole symbol set, and atomically replace the store's
// files/symbols/edges tables.
func (h *Handle) BuildAll(ctx context.Context) error {
	paths, err := walker.Walk(h.root, h.ignoreDirs, h.registry.Supports)
	if err != nil {
		return dimpacterr.Wrap(dimpacterr.KindIO, err, "walking workspace")
	}

	results, err := h.analyzeFiles(paths)
	if err != nil {
		return dimpacterr.Wrap(dimpacterr.KindAnalyzerInternal, err, "analyzing workspace")
	}

	var allSymbols []symbol.Symbol
	var allRefs []symbol.UnresolvedRef
	fileImports := make(resolver.FileImports, len(results))
	for _, fa := range results {
		allSymbols = append(allSymbols, fa.symbols...)
		allRefs = append(allRefs, fa.refs...)
		if fa.imports != nil {
			fileImports[fa.path] = fa.imports
		}
	}

	idx := symbolindex.Build(allSymbols)
	refs := resolver.Resolve(idx, allRefs, fileImports)
	runID := uuid.NewString()

	err = withTx(h.db, func(tx *sql.Tx) error {
		for _, stmt := range []string{`DELETE FROM files`, `DELETE FROM symbols`, `DELETE FROM edges`} {
			if _, err := tx.Exec(stmt); err != nil {
				return dimpacterr.Wrap(dimpacterr.KindIO, err, "clearing store for rebuild")
			}
		}
		for _, fa := range results {
			if err := insertFile(tx, fa); err != nil {
				return err
			}
		}
		if err := insertSymbols(tx, allSymbols); err != nil {
			return err
		}
		if err := insertEdges(tx, refs); err != nil {
			return err
		}
		return setMeta(tx, "last_run_id", runID)
	})
	if err != nil {
		return err
	}

	h.logger.Info("build_all complete", "run_id", runID, "files", len(paths), "symbols", len(allSymbols), "edges", len(refs))
	return h.refreshSnapshot(idx)
}

// UpdatePaths incrementally updates the store for exactly the given
// workspace-relative paths. It runs as a two-phase commit, per the "cross
// file edges as a late binding" design note (§9): phase one replaces each
// path's file row and its own symbols, making them immediately queryable;
// phase two re-resolves references for the touched paths against the full,
// now-current symbol set and inserts the newly resolved edges. A reader
// racing between the phases sees the new symbols with stale or missing
// outgoing edges, never a torn symbol table.
func (h *Handle) UpdatePaths(paths []string) error {
	if len(paths) == 0 {
		return nil
	}

	results, err := h.analyzeFiles(paths)
	if err != nil {
		return dimpacterr.Wrap(dimpacterr.KindAnalyzerInternal, err, "analyzing changed paths")
	}

	err = withTx(h.db, func(tx *sql.Tx) error {
		for _, fa := range results {
			if err := deleteForPath(tx, fa.path); err != nil {
				return err
			}
			if err := insertFile(tx, fa); err != nil {
				return err
			}
			if fa.present {
				if err := insertSymbols(tx, fa.symbols); err != nil {
					return err
				}
			}
		}
		return invalidateSnapshot(tx)
	})
	if err != nil {
		return err
	}

	allSymbols, err := h.loadAllSymbols()
	if err != nil {
		return err
	}
	idx := symbolindex.Build(allSymbols)

	fileImports := make(resolver.FileImports, len(results))
	var touchedRefs []symbol.UnresolvedRef
	for _, fa := range results {
		if fa.imports != nil {
			fileImports[fa.path] = fa.imports
		}
		touchedRefs = append(touchedRefs, fa.refs...)
	}
	refs := resolver.Resolve(idx, touchedRefs, fileImports)
	runID := uuid.NewString()

	err = withTx(h.db, func(tx *sql.Tx) error {
		if err := insertEdges(tx, refs); err != nil {
			return err
		}
		return setMeta(tx, "last_run_id", runID)
	})
	if err != nil {
		return err
	}

	h.logger.Info("update_paths complete", "run_id", runID, "paths", len(paths), "resolved_edges", len(refs))
	return h.refreshSnapshot(idx)
}

// Verify reconciles the store against the current workspace: files with a
// changed or missing content digest, a changed language tag, newly appeared
// files, and files that vanished from disk are all routed through
// UpdatePaths, the same two-phase incremental path a direct update uses
// (§4.5: "enqueues updates for files whose digest, language tag, or
// presence differs"). It returns the set of paths it found to be out of
// date.
func (h *Handle) Verify(ctx context.Context) ([]string, error) {
	current, err := walker.Walk(h.root, h.ignoreDirs, h.registry.Supports)
	if err != nil {
		return nil, dimpacterr.Wrap(dimpacterr.KindIO, err, "walking workspace")
	}
	currentSet := make(map[string]bool, len(current))
	for _, p := range current {
		currentSet[p] = true
	}

	stored, err := h.loadFileRecords()
	if err != nil {
		return nil, err
	}

	var toUpdate []string
	seen := make(map[string]bool, len(current))
	for _, p := range current {
		seen[p] = true
		rec, known := stored[p]
		if !known {
			toUpdate = append(toUpdate, p)
			continue
		}
		data, readErr := os.ReadFile(filepath.Join(h.root, p))
		if readErr != nil {
			toUpdate = append(toUpdate, p)
			continue
		}
		if !rec.Present || rec.ContentDigest != digestContent(data) || rec.Language != currentLanguage(h.registry, p) {
			toUpdate = append(toUpdate, p)
		}
	}
	for p, rec := range stored {
		if !seen[p] && rec.Present {
			toUpdate = append(toUpdate, p)
		}
	}

	sort.Strings(toUpdate)
	if len(toUpdate) == 0 {
		return nil, nil
	}
	return toUpdate, h.UpdatePaths(toUpdate)
}

// currentLanguage returns the language tag the registry would currently
// assign to p (empty if no analyzer claims it), used by Verify to detect a
// path reassigned to a different analyzer without any content change (e.g.
// a --language override, or an extension remap) that a digest comparison
// alone would miss.
func currentLanguage(registry *analyzer.Registry, p string) string {
	a := registry.New(p)
	if a == nil {
		return ""
	}
	return a.Language()
}

// LoadGraph returns the full in-memory symbol index and reference set,
// preferring the compressed graph_snapshot blob when valid and falling back
// to reconstructing from the relational tables otherwise, opportunistically
// rewriting the snapshot afterward so the next call is fast again.
func (h *Handle) LoadGraph() (*symbolindex.SymbolIndex, []symbol.Reference, error) {
	if symbols, refs, ok, err := readSnapshot(h.db); err != nil {
		return nil, nil, err
	} else if ok {
		return symbolindex.Build(symbols), refs, nil
	}

	symbols, err := h.loadAllSymbols()
	if err != nil {
		return nil, nil, err
	}
	refs, err := h.loadAllEdges()
	if err != nil {
		return nil, nil, err
	}

	idx := symbolindex.Build(symbols)
	if err := h.refreshSnapshot(idx); err != nil {
		h.logger.Warn("failed to refresh graph snapshot", "error", err)
	}
	return idx, refs, nil
}

func (h *Handle) refreshSnapshot(idx *symbolindex.SymbolIndex) error {
	edges, err := h.loadAllEdges()
	if err != nil {
		return err
	}
	return writeSnapshot(h.db, idx.All(), edges)
}

func (h *Handle) loadAllSymbols() ([]symbol.Symbol, error) {
	rows, err := h.db.Query(`SELECT id, name, kind, file, start_line, end_line, language FROM symbols`)
	if err != nil {
		return nil, dimpacterr.Wrap(dimpacterr.KindIO, err, "loading symbols")
	}
	defer rows.Close()

	var out []symbol.Symbol
	for rows.Next() {
		var s symbol.Symbol
		var id, kind string
		if err := rows.Scan(&id, &s.Name, &kind, &s.File, &s.Range.Start, &s.Range.End, &s.Language); err != nil {
			return nil, dimpacterr.Wrap(dimpacterr.KindIO, err, "scanning symbol row")
		}
		s.ID = symbol.ID(id)
		s.Kind = symbol.Kind(kind)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (h *Handle) loadAllEdges() ([]symbol.Reference, error) {
	rows, err := h.db.Query(`SELECT from_id, to_id, file, line FROM edges`)
	if err != nil {
		return nil, dimpacterr.Wrap(dimpacterr.KindIO, err, "loading edges")
	}
	defer rows.Close()

	var out []symbol.Reference
	for rows.Next() {
		var r symbol.Reference
		var from, to string
		if err := rows.Scan(&from, &to, &r.File, &r.Line); err != nil {
			return nil, dimpacterr.Wrap(dimpacterr.KindIO, err, "scanning edge row")
		}
		r.From, r.To = symbol.ID(from), symbol.ID(to)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (h *Handle) loadFileRecords() (map[string]symbol.FileRecord, error) {
	rows, err := h.db.Query(`SELECT path, language, content_digest, modification_time, present FROM files`)
	if err != nil {
		return nil, dimpacterr.Wrap(dimpacterr.KindIO, err, "loading file records")
	}
	defer rows.Close()

	out := make(map[string]symbol.FileRecord)
	for rows.Next() {
		var rec symbol.FileRecord
		var present int
		if err := rows.Scan(&rec.Path, &rec.Language, &rec.ContentDigest, &rec.ModificationTime, &present); err != nil {
			return nil, dimpacterr.Wrap(dimpacterr.KindIO, err, "scanning file row")
		}
		rec.Present = present != 0
		out[rec.Path] = rec
	}
	return out, rows.Err()
}

func insertFile(tx *sql.Tx, fa fileAnalysis) error {
	present := 0
	if fa.present {
		present = 1
	}
	_, err := tx.Exec(`INSERT INTO files(path, language, content_digest, modification_time, present)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			language = excluded.language,
			content_digest = excluded.content_digest,
			modification_time = excluded.modification_time,
			present = excluded.present`,
		fa.path, fa.language, fa.digest, fa.mtime, present)
	if err != nil {
		return dimpacterr.Wrap(dimpacterr.KindIO, err, "writing file record for "+fa.path)
	}
	return nil
}

func insertSymbols(tx *sql.Tx, symbols []symbol.Symbol) error {
	if len(symbols) == 0 {
		return nil
	}
	stmt, err := tx.Prepare(`INSERT INTO symbols(id, name, kind, file, start_line, end_line, language)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return dimpacterr.Wrap(dimpacterr.KindIO, err, "preparing symbol insert")
	}
	defer stmt.Close()

	for _, s := range symbols {
		if _, err := stmt.Exec(string(s.ID), s.Name, string(s.Kind), s.File, s.Range.Start, s.Range.End, s.Language); err != nil {
			return dimpacterr.Wrap(dimpacterr.KindIO, err, "inserting symbol "+string(s.ID))
		}
	}
	return nil
}

func insertEdges(tx *sql.Tx, refs []symbol.Reference) error {
	if len(refs) == 0 {
		return nil
	}
	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO edges(from_id, to_id, file, line) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return dimpacterr.Wrap(dimpacterr.KindIO, err, "preparing edge insert")
	}
	defer stmt.Close()

	for _, r := range refs {
		if _, err := stmt.Exec(string(r.From), string(r.To), r.File, r.Line); err != nil {
			return dimpacterr.Wrap(dimpacterr.KindIO, err, "inserting edge")
		}
	}
	return nil
}

// deleteForPath removes a file's own row and every symbol/edge it owns,
// the "delete old symbols and edges tied to that file" half of phase one.
func deleteForPath(tx *sql.Tx, path string) error {
	if _, err := tx.Exec(`DELETE FROM files WHERE path = ?`, path); err != nil {
		return dimpacterr.Wrap(dimpacterr.KindIO, err, "deleting file row for "+path)
	}
	if _, err := tx.Exec(`DELETE FROM edges WHERE file = ?`, path); err != nil {
		return dimpacterr.Wrap(dimpacterr.KindIO, err, "deleting edges for "+path)
	}
	if _, err := tx.Exec(`DELETE FROM symbols WHERE file = ?`, path); err != nil {
		return dimpacterr.Wrap(dimpacterr.KindIO, err, "deleting symbols for "+path)
	}
	return nil
}

func setMeta(tx *sql.Tx, key, value string) error {
	_, err := tx.Exec(`INSERT INTO meta(key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return dimpacterr.Wrap(dimpacterr.KindIO, err, "writing meta key "+key)
	}
	return nil
}
