// Package model defines the core data types for conceptweave: concepts,
// their directed relationships, and the canonical graph derived from them.
//
// A concept's name doubles as its identifier. Uniqueness of the id within a
// graph is a hard invariant; builders collapse duplicate names into one node.
package model

import "time"

// Size bounds for rendered nodes. Importance in [0,1] maps linearly into
// [SizeMin, SizeMax].
const (
	SizeMin = 25.0
	SizeMax = 70.0
)

// ConceptNode is a single concept in the canonical graph.
type ConceptNode struct {
	ID              string  `json:"id"`
	DisplayName     string  `json:"name"`
	Size            float64 `json:"size"`
	ConnectionCount int     `json:"connection_count"`
	Importance      float64 `json:"importance"`

	// User annotations, carried from the project store. Nil when unset.
	Notes      *string `json:"notes,omitempty"`
	Confidence *int    `json:"confidence,omitempty"` // mastery rating 1-5
}

// ConceptEdge is a directed relationship between two concepts. The pair
// (SourceID, TargetID) appears at most once in a canonical edge set.
type ConceptEdge struct {
	SourceID string `json:"source"`
	TargetID string `json:"target"`
}

// RawConceptRecord is the neighbor-list input form produced by the external
// extraction pipeline. Neighbor names referenced here but never declared as
// their own record still materialize as nodes.
type RawConceptRecord struct {
	Name       string   `json:"name"`
	Incoming   []string `json:"incoming"`
	Outgoing   []string `json:"outgoing"`
	Notes      string   `json:"notes,omitempty"`
	Confidence *int     `json:"confidence,omitempty"`
}

// Graph is the canonical node/edge model derived once per input load. It is
// immutable between rebuilds; filtered and positioned views are derived from
// it and never own the data.
type Graph struct {
	Nodes []ConceptNode `json:"nodes"`
	Edges []ConceptEdge `json:"edges"`
}

// NodeByID returns the node with the given id, or nil.
func (g *Graph) NodeByID(id string) *ConceptNode {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i]
		}
	}
	return nil
}

// Neighbors returns ids of every node sharing an edge with id, in either
// direction, each at most once.
func (g *Graph) Neighbors(id string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range g.Edges {
		var other string
		switch id {
		case e.SourceID:
			other = e.TargetID
		case e.TargetID:
			other = e.SourceID
		default:
			continue
		}
		if !seen[other] {
			seen[other] = true
			out = append(out, other)
		}
	}
	return out
}

// IsEmpty reports whether the graph has no nodes. An empty graph is a valid
// loaded state, distinct from a nil *Graph ("not yet loaded").
func (g *Graph) IsEmpty() bool {
	return g == nil || len(g.Nodes) == 0
}

// Project identifies a stored project in the local database.
type Project struct {
	ID        string    `json:"project_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// ValidConfidence reports whether c is an acceptable confidence rating:
// nil (clear) or 1 through 5.
func ValidConfidence(c *int) bool {
	return c == nil || (*c >= 1 && *c <= 5)
}
