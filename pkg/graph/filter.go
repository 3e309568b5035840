package graph

import (
	"strings"

	"github.com/vanderheijden86/conceptweave/pkg/model"
)

// Filter derives the visible sub-graph for a search query: nodes whose
// display name contains the query (case-insensitive) form the seed set, the
// result expands to their direct neighbors in either direction, and the edge
// set is exactly those edges with both endpoints inside the expanded set.
//
// The expansion is bounded at one hop from the seeds. It deliberately does
// not flood the connected component, so result size stays predictable on
// large graphs. An empty or whitespace query returns the canonical graph
// unchanged. Node values (size, importance) are carried through untouched;
// sizing is a property of the canonical graph, not of what is visible.
func Filter(g *model.Graph, query string) *model.Graph {
	if g == nil {
		return nil
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return g
	}

	needle := strings.ToLower(query)
	seeds := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if strings.Contains(strings.ToLower(n.DisplayName), needle) {
			seeds[n.ID] = true
		}
	}

	// Expand exactly one hop from the seed set. Neighbors of neighbors stay
	// out; expanding from the seed snapshot (not from visible) is what keeps
	// the bound.
	visible := make(map[string]bool, len(seeds)*2)
	for id := range seeds {
		visible[id] = true
	}
	for _, e := range g.Edges {
		if seeds[e.SourceID] {
			visible[e.TargetID] = true
		}
		if seeds[e.TargetID] {
			visible[e.SourceID] = true
		}
	}

	sub := &model.Graph{
		Nodes: make([]model.ConceptNode, 0, len(visible)),
	}
	for _, n := range g.Nodes {
		if visible[n.ID] {
			sub.Nodes = append(sub.Nodes, n)
		}
	}
	for _, e := range g.Edges {
		if visible[e.SourceID] && visible[e.TargetID] {
			sub.Edges = append(sub.Edges, e)
		}
	}
	return sub
}
