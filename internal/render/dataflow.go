package render

import (
	"fmt"
	"sort"
	"strings"

	"dimpact/internal/dataflow"
)

// DataflowDOT renders a data/program dependence graph as a Graphviz digraph,
// data edges solid and control edges dashed. Grounded on render.rs's
// dfg_to_dot: oval nodes labeled "name\nfile:line", one edge style per
// DependencyKind.
func DataflowDOT(graph dataflow.Graph) string {
	var b strings.Builder
	b.WriteString("digraph pdg {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=oval, fontname=\"monospace\"];\n")

	nodes := append([]dataflow.Node(nil), graph.Nodes...)
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	for _, n := range nodes {
		label := fmt.Sprintf("%s\n%s:%d", n.Name, n.File, n.Line)
		fmt.Fprintf(&b, "  %q [label=%q];\n", n.ID, label)
	}

	edges := append([]dataflow.Edge(nil), graph.Edges...)
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	for _, e := range edges {
		style := "solid"
		if e.Kind == dataflow.DependencyControl {
			style = "dashed"
		}
		fmt.Fprintf(&b, "  %q -> %q [style=%s];\n", e.From, e.To, style)
	}

	b.WriteString("}\n")
	return b.String()
}
