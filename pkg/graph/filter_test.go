package graph

import (
	"testing"

	"github.com/vanderheijden86/conceptweave/pkg/model"
)

func twoNodeGraph(t *testing.T) *model.Graph {
	t.Helper()
	return FromRecords([]model.RawConceptRecord{
		{Name: "A", Incoming: []string{}, Outgoing: []string{"B"}},
		{Name: "B", Incoming: []string{"A"}, Outgoing: []string{}},
	})
}

func chainGraph(t *testing.T) *model.Graph {
	t.Helper()
	// alpha -> beta -> gamma -> delta, plus isolated "omega"
	return FromRecords([]model.RawConceptRecord{
		{Name: "alpha", Outgoing: []string{"beta"}},
		{Name: "beta", Outgoing: []string{"gamma"}},
		{Name: "gamma", Outgoing: []string{"delta"}},
		{Name: "omega"},
	})
}

func TestFilterEmptyQueryReturnsFullGraph(t *testing.T) {
	g := chainGraph(t)
	for _, q := range []string{"", "   ", "\t"} {
		sub := Filter(g, q)
		if len(sub.Nodes) != len(g.Nodes) || len(sub.Edges) != len(g.Edges) {
			t.Errorf("query %q: expected full graph back, got %d/%d nodes, %d/%d edges",
				q, len(sub.Nodes), len(g.Nodes), len(sub.Edges), len(g.Edges))
		}
	}
}

func TestFilterSeedPlusNeighbors(t *testing.T) {
	g := twoNodeGraph(t)
	sub := Filter(g, "A")
	if len(sub.Nodes) != 2 {
		t.Fatalf("expected A and its neighbor B, got %d nodes", len(sub.Nodes))
	}
	if len(sub.Edges) != 1 {
		t.Errorf("expected the single edge retained, got %d", len(sub.Edges))
	}
}

func TestFilterOneHopBound(t *testing.T) {
	g := chainGraph(t)
	sub := Filter(g, "beta")

	want := map[string]bool{"alpha": true, "beta": true, "gamma": true}
	if len(sub.Nodes) != len(want) {
		t.Fatalf("expected %d nodes, got %d", len(want), len(sub.Nodes))
	}
	for _, n := range sub.Nodes {
		if !want[n.ID] {
			t.Errorf("node %q should not be visible (beyond one hop)", n.ID)
		}
	}
	// delta is two hops from the seed and must be excluded, so the
	// gamma->delta edge has a missing endpoint and drops too.
	for _, e := range sub.Edges {
		if e.TargetID == "delta" || e.SourceID == "delta" {
			t.Errorf("edge %v should have been excluded", e)
		}
	}
}

func TestFilterCaseInsensitiveSubstring(t *testing.T) {
	g := chainGraph(t)
	sub := Filter(g, "ALPH")
	found := false
	for _, n := range sub.Nodes {
		if n.ID == "alpha" {
			found = true
		}
	}
	if !found {
		t.Error("expected case-insensitive substring match on 'alpha'")
	}
}

func TestFilterIdempotent(t *testing.T) {
	g := chainGraph(t)
	once := Filter(g, "beta")
	twice := Filter(once, "beta")

	if len(once.Nodes) != len(twice.Nodes) || len(once.Edges) != len(twice.Edges) {
		t.Fatalf("filter not idempotent: %d/%d nodes, %d/%d edges",
			len(once.Nodes), len(twice.Nodes), len(once.Edges), len(twice.Edges))
	}
	for i := range once.Nodes {
		if once.Nodes[i].ID != twice.Nodes[i].ID {
			t.Errorf("node order changed on re-filter: %q vs %q", once.Nodes[i].ID, twice.Nodes[i].ID)
		}
	}
}

func TestFilterNoMatchYieldsEmpty(t *testing.T) {
	g := chainGraph(t)
	sub := Filter(g, "nonexistent")
	if len(sub.Nodes) != 0 || len(sub.Edges) != 0 {
		t.Errorf("expected empty sub-graph, got %d nodes %d edges", len(sub.Nodes), len(sub.Edges))
	}
	if sub == nil {
		t.Error("no-match result should be an empty graph, not nil")
	}
}

func TestFilterPreservesNodeValues(t *testing.T) {
	g := twoNodeGraph(t)
	sub := Filter(g, "A")
	for _, n := range sub.Nodes {
		if n.Size != 70 || n.Importance != 1.0 {
			t.Errorf("node %q: sizing must come from the canonical graph, got size %f importance %f",
				n.ID, n.Size, n.Importance)
		}
	}
}

func TestFilterNilGraph(t *testing.T) {
	if Filter(nil, "x") != nil {
		t.Error("filtering a not-yet-loaded graph should stay nil")
	}
}
