// Package dataflow builds a per-file data/control dependency graph and
// merges it with the resolved call graph into a program dependence graph
// (§11 supplement: the original dimpact's src/dfg.rs). It is intentionally
// a syntactic, line-based def/use heuristic rather than real data-flow
// analysis — the same scope the original's own RustDfgBuilder carries — so
// it stays a single pure function over one file's source, with no
// dependency on the persistent index.
package dataflow

import (
	"fmt"
	"strings"

	"dimpact/internal/symbol"
)

// DependencyKind distinguishes a def-to-use data dependency from a
// predicate-to-statement control dependency.
type DependencyKind string

const (
	DependencyData    DependencyKind = "data"
	DependencyControl DependencyKind = "control"
)

// Node is one definition or use site in a data flow graph.
type Node struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	File string `json:"file" yaml:"file"`
	Line int    `json:"line" yaml:"line"`
}

// Edge is one dependency between two nodes.
type Edge struct {
	From string         `json:"from" yaml:"from"`
	To   string         `json:"to" yaml:"to"`
	Kind DependencyKind `json:"kind" yaml:"kind"`
}

// Graph is a data (or, once merged with call edges, program) dependence
// graph for one file.
type Graph struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`
}

// identRune reports whether r is a valid identifier character for the
// deliberately language-agnostic token split below.
func identRune(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func splitIdents(line string) []string {
	var out []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}
	for _, r := range line {
		if identRune(r) {
			cur.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return out
}

// defKeywords are the binding-introducing keywords recognized across the
// two shipped adapters' source languages: Go's ":=" idiom is a punctuation
// form so it's detected separately; "let"/"var"/"const" cover Python-side
// convention-following code and the broader ecosystem the original's
// per-language def regexes targeted.
var defKeywords = []string{"let", "var", "const"}

// Build constructs a file-local data dependence graph: one definition node
// per `let`/`var`/`const` binding (or Go-style `name :=`) and one use node
// per later reference to that name, with a data edge from each earlier
// definition to each use. A token on a line that itself defines that name
// is not a use. Grounded on dfg.rs's RustDfgBuilder two-pass (defs, then
// uses) heuristic, generalized from Rust-only keywords to the def forms
// both shipped analyzers' source languages actually use.
func Build(path string, source []byte) Graph {
	lines := strings.Split(string(source), "\n")

	var nodes []Node
	var edges []Edge
	seenNodes := make(map[string]bool)
	type def struct {
		id   string
		line int
	}
	defsByName := make(map[string][]def)

	isDefKeyword := func(tok string) bool {
		for _, k := range defKeywords {
			if tok == k {
				return true
			}
		}
		return false
	}

	for i, line := range lines {
		lineNo := i + 1
		trimmed := strings.TrimSpace(line)
		var name string
		switch {
		case strings.Contains(trimmed, ":="):
			before := strings.SplitN(trimmed, ":=", 2)[0]
			idents := splitIdents(before)
			if len(idents) > 0 {
				name = idents[len(idents)-1]
			}
		default:
			idents := splitIdents(trimmed)
			if len(idents) >= 2 && isDefKeyword(idents[0]) {
				name = idents[1]
			}
		}
		if name == "" {
			continue
		}
		nodeID := fmt.Sprintf("%s:def:%s:%d", path, name, lineNo)
		if !seenNodes[nodeID] {
			seenNodes[nodeID] = true
			nodes = append(nodes, Node{ID: nodeID, Name: name, File: path, Line: lineNo})
		}
		defsByName[name] = append(defsByName[name], def{id: nodeID, line: lineNo})
	}

	for i, line := range lines {
		lineNo := i + 1
		for _, tok := range splitIdents(line) {
			var earlier []string
			definedHere := false
			for _, d := range defsByName[tok] {
				if d.line == lineNo {
					definedHere = true
				} else if d.line < lineNo {
					earlier = append(earlier, d.id)
				}
			}
			if definedHere || len(earlier) == 0 {
				continue
			}
			useID := fmt.Sprintf("%s:use:%s:%d", path, tok, lineNo)
			if !seenNodes[useID] {
				seenNodes[useID] = true
				nodes = append(nodes, Node{ID: useID, Name: tok, File: path, Line: lineNo})
			}
			for _, defID := range earlier {
				edges = append(edges, Edge{From: defID, To: useID, Kind: DependencyData})
			}
		}
	}

	return Graph{Nodes: nodes, Edges: edges}
}

// MergePDG folds the resolved call-reference set into dfg as additional
// data edges, producing a program dependence graph the way PdgBuilder::build
// merges a DFG with call::Reference in the original. Call edges carry the
// same DependencyData kind as def/use edges; a node is appended for either
// endpoint that dfg does not already carry (a symbol participates in the
// call graph even if it defines no local variable the line-based heuristic
// would see).
func MergePDG(dfg Graph, refs []symbol.Reference) Graph {
	pdg := Graph{
		Nodes: append([]Node(nil), dfg.Nodes...),
		Edges: append([]Edge(nil), dfg.Edges...),
	}
	known := make(map[string]bool, len(pdg.Nodes))
	for _, n := range pdg.Nodes {
		known[n.ID] = true
	}

	ensureNode := func(id symbol.ID, file string, line int) {
		if known[string(id)] {
			return
		}
		known[string(id)] = true
		pdg.Nodes = append(pdg.Nodes, Node{ID: string(id), Name: string(id), File: file, Line: line})
	}

	for _, r := range refs {
		ensureNode(r.From, r.File, r.Line)
		ensureNode(r.To, r.File, r.Line)
		pdg.Edges = append(pdg.Edges, Edge{From: string(r.From), To: string(r.To), Kind: DependencyData})
	}
	return pdg
}
