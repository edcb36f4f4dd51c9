// Package traverse implements the impact traversal (§4.7): a bounded
// breadth-first walk over the directed symbol-reference graph from a seed
// set, with direction and depth controls.
//
// Grounded on internal/backends/scip/callgraph.go's BuildCallGraph in the
// teacher: the same bounded-BFS shape (direction-selected adjacency, a
// depth ceiling that stops expansion rather than discovery), generalized from that file's caller/callee convenience
// slices to the seeds/impacted_symbols/impacted_files/edges output shape
// §4.7 specifies.
package traverse

import (
	"sort"

	"dimpact/internal/symbol"
	"dimpact/internal/symbolindex"
	"dimpact/internal/walker"
)

// Direction selects which adjacency the traversal walks.
type Direction string

const (
	DirectionCallers Direction = "callers"
	DirectionCallees Direction = "callees"
	DirectionBoth    Direction = "both"
)

// Options configures one traversal run (§6.3's impact option group).
type Options struct {
	Direction Direction
	// MaxDepth bounds expansion: a node reached at depth == *MaxDepth is
	// included but its neighbors are not enqueued. nil means unbounded.
	MaxDepth   *int
	WithEdges  bool
	IgnoreDirs []string
}

// Result is the impact traversal's output shape (§4.7).
type Result struct {
	ImpactedSymbols []symbol.Symbol            `json:"impacted_symbols" yaml:"impacted_symbols"`
	ImpactedFiles   []string                   `json:"impacted_files" yaml:"impacted_files"`
	ImpactedByFile  map[string][]symbol.Symbol `json:"impacted_by_file" yaml:"impacted_by_file"`
	Edges           []symbol.Reference         `json:"edges,omitempty" yaml:"edges,omitempty"`
}

// adjacency is a directed symbol-id graph built once per traversal run from
// the reference set.
type adjacency struct {
	forward map[symbol.ID][]symbol.ID // from -> to  (callees)
	reverse map[symbol.ID][]symbol.ID // to -> from  (callers)
}

func buildAdjacency(refs []symbol.Reference) *adjacency {
	adj := &adjacency{
		forward: make(map[symbol.ID][]symbol.ID),
		reverse: make(map[symbol.ID][]symbol.ID),
	}
	for _, r := range refs {
		adj.forward[r.From] = append(adj.forward[r.From], r.To)
		adj.reverse[r.To] = append(adj.reverse[r.To], r.From)
	}
	return adj
}

func (adj *adjacency) neighbors(id symbol.ID, dir Direction) []symbol.ID {
	switch dir {
	case DirectionCallers:
		return adj.reverse[id]
	case DirectionCallees:
		return adj.forward[id]
	default: // both
		out := make([]symbol.ID, 0, len(adj.forward[id])+len(adj.reverse[id]))
		out = append(out, adj.forward[id]...)
		out = append(out, adj.reverse[id]...)
		return out
	}
}

// Traverse runs the bounded BFS over idx/refs from seeds. Traversal never
// fails: a seed or neighbor id missing from idx is silently skipped, and a
// seed whose file matches ignore_dirs is dropped before traversal (P9) and
// so contributes nothing to the impacted set.
func Traverse(seeds []symbol.ID, idx *symbolindex.SymbolIndex, refs []symbol.Reference, opts Options) Result {
	adj := buildAdjacency(refs)

	seedSet := make(map[symbol.ID]bool)
	visited := make(map[symbol.ID]int) // id -> discovery depth
	var queue []symbol.ID

	for _, s := range seeds {
		sym, ok := idx.ByID(s)
		if !ok {
			continue
		}
		if walker.MatchesIgnoredDir(sym.File, opts.IgnoreDirs) {
			continue
		}
		if seedSet[s] {
			continue
		}
		seedSet[s] = true
		visited[s] = 0
		queue = append(queue, s)
	}

	for head := 0; head < len(queue); head++ {
		cur := queue[head]
		depth := visited[cur]
		if opts.MaxDepth != nil && depth >= *opts.MaxDepth {
			continue // reached but not expanded
		}

		for _, nb := range adj.neighbors(cur, opts.Direction) {
			nbSym, ok := idx.ByID(nb)
			if !ok {
				continue // a shifted/stale edge endpoint: silently skipped
			}
			if walker.MatchesIgnoredDir(nbSym.File, opts.IgnoreDirs) {
				continue
			}
			if _, seen := visited[nb]; seen {
				continue
			}
			visited[nb] = depth + 1
			queue = append(queue, nb)
		}
	}

	var impacted []symbol.Symbol
	for id, depth := range visited {
		if depth == 0 {
			continue // seeds are never themselves reported as impacted
		}
		sym, ok := idx.ByID(id)
		if !ok {
			continue
		}
		impacted = append(impacted, sym)
	}
	impacted = symbolindex.SortedByID(impacted)

	result := Result{
		ImpactedSymbols: impacted,
		ImpactedByFile:  groupByFile(impacted),
	}
	result.ImpactedFiles = sortedFiles(result.ImpactedByFile)

	if opts.WithEdges {
		inScope := make(map[symbol.ID]bool, len(visited))
		for id := range visited {
			inScope[id] = true
		}
		for _, r := range refs {
			if inScope[r.From] || inScope[r.To] {
				result.Edges = append(result.Edges, r)
			}
		}
	}

	return result
}

func groupByFile(symbols []symbol.Symbol) map[string][]symbol.Symbol {
	out := make(map[string][]symbol.Symbol)
	for _, s := range symbols {
		out[s.File] = append(out[s.File], s)
	}
	return out
}

func sortedFiles(byFile map[string][]symbol.Symbol) []string {
	out := make([]string, 0, len(byFile))
	for f := range byFile {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
