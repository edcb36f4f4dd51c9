package render

import (
	"fmt"
	"sort"
	"strings"

	"dimpact/internal/symbol"
)

// DOT renders a Graphviz digraph of the impact subgraph: one node per seed
// and impacted symbol, one edge per reference whose endpoints are both in
// that node set. Seeds are rendered in a distinct shape so a reader can
// immediately see the blast-radius origin, and the edges of one shortest
// path from a seed to each impacted symbol are highlighted (grounded
// on render.rs's compute_path_pairs/to_dot "#e33" path highlighting), so a
// reader can trace the actual propagation route rather than just the full
// edge set.
func DOT(seeds []symbol.ID, impacted []symbol.Symbol, edges []symbol.Reference) string {
	var b strings.Builder
	b.WriteString("digraph impact {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box, fontname=\"monospace\"];\n")

	sortedSeeds := append([]symbol.ID(nil), seeds...)
	sort.Slice(sortedSeeds, func(i, j int) bool { return sortedSeeds[i] < sortedSeeds[j] })
	seedSet := make(map[symbol.ID]bool, len(sortedSeeds))
	for _, s := range sortedSeeds {
		seedSet[s] = true
	}

	sortedImpacted := append([]symbol.Symbol(nil), impacted...)
	sort.Slice(sortedImpacted, func(i, j int) bool { return sortedImpacted[i].ID < sortedImpacted[j].ID })

	inGraph := make(map[symbol.ID]bool, len(sortedSeeds)+len(sortedImpacted))
	for _, s := range sortedSeeds {
		inGraph[s] = true
	}
	for _, s := range sortedImpacted {
		inGraph[s.ID] = true
	}
	sortedEdges := make([]symbol.Reference, 0, len(edges))
	for _, e := range edges {
		if inGraph[e.From] && inGraph[e.To] {
			sortedEdges = append(sortedEdges, e)
		}
	}
	sort.Slice(sortedEdges, func(i, j int) bool {
		if sortedEdges[i].From != sortedEdges[j].From {
			return sortedEdges[i].From < sortedEdges[j].From
		}
		return sortedEdges[i].To < sortedEdges[j].To
	})

	nodeIDs := make(map[symbol.ID]string, len(sortedImpacted)+len(sortedSeeds))
	nextNode := 0
	nodeName := func(id symbol.ID) string {
		if n, ok := nodeIDs[id]; ok {
			return n
		}
		n := fmt.Sprintf("n%d", nextNode)
		nextNode++
		nodeIDs[id] = n
		return n
	}

	for _, id := range sortedSeeds {
		b.WriteString(fmt.Sprintf("  %s [label=%q, shape=doublecircle];\n", nodeName(id), string(id)))
	}
	for _, s := range sortedImpacted {
		if seedSet[s.ID] {
			continue
		}
		b.WriteString(fmt.Sprintf("  %s [label=%q];\n", nodeName(s.ID), string(s.ID)))
	}

	pathPairs := computePathPairs(seedSet, sortedImpacted, sortedEdges)
	for _, e := range sortedEdges {
		if pathPairs[edgePair{e.From, e.To}] {
			b.WriteString(fmt.Sprintf("  %s -> %s [color=\"#e33\", penwidth=2];\n", nodeName(e.From), nodeName(e.To)))
		} else {
			b.WriteString(fmt.Sprintf("  %s -> %s;\n", nodeName(e.From), nodeName(e.To)))
		}
	}

	b.WriteString("}\n")
	return b.String()
}

type edgePair struct{ from, to symbol.ID }

// computePathPairs marks, for each impacted symbol reachable from a seed,
// the edges of one shortest path back to the seed set: a multi-source BFS
// from the seeds over the undirected edge adjacency, then a walk along the
// BFS parent chain. Other shortest paths of equal length are not marked.
// Grounded on
// render.rs's compute_path_pairs.
func computePathPairs(seeds map[symbol.ID]bool, impacted []symbol.Symbol, edges []symbol.Reference) map[edgePair]bool {
	result := make(map[edgePair]bool)
	if len(edges) == 0 {
		return result
	}

	adj := make(map[symbol.ID][]symbol.ID)
	for _, e := range edges {
		adj[e.From] = append(adj[e.From], e.To)
		adj[e.To] = append(adj[e.To], e.From)
	}

	targets := make(map[symbol.ID]bool, len(impacted))
	for _, s := range impacted {
		targets[s.ID] = true
	}

	parent := make(map[symbol.ID]symbol.ID)
	visited := make(map[symbol.ID]bool)
	var queue []symbol.ID
	for id := range seeds {
		if !visited[id] {
			visited[id] = true
			queue = append(queue, id)
		}
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adj[cur] {
			if visited[next] {
				continue
			}
			visited[next] = true
			parent[next] = cur
			queue = append(queue, next)
		}
	}

	for id := range targets {
		if seeds[id] || !visited[id] {
			continue
		}
		cur := id
		for {
			prev, ok := parent[cur]
			if !ok {
				break
			}
			result[edgePair{prev, cur}] = true
			result[edgePair{cur, prev}] = true
			if seeds[prev] {
				break
			}
			cur = prev
		}
	}
	return result
}
