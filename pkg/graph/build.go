// Package graph builds the canonical concept graph from external input and
// derives importance scores and search-filtered sub-graphs from it.
//
// The canonical graph is rebuilt whenever the input changes and is immutable
// between rebuilds. Everything downstream (layout, rendering, exports) works
// on views derived from it.
package graph

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/graph/simple"

	"github.com/vanderheijden86/conceptweave/pkg/model"
)

// Document is the decoded union of the two accepted input forms. Exactly one
// form is populated; the loader detects which by the presence of neighbor
// fields on the first record.
type Document struct {
	Nodes   []model.ConceptNode
	Edges   []model.ConceptEdge
	Records []model.RawConceptRecord
}

// Build normalizes either input form into a canonical graph: unique node ids,
// a deduplicated directed edge set with no dangling endpoints, and
// degree-based importance attached to every node.
func Build(doc Document) (*model.Graph, error) {
	if len(doc.Records) > 0 {
		return FromRecords(doc.Records), nil
	}
	return FromPrebuilt(doc.Nodes, doc.Edges)
}

// builder accumulates nodes and edges with idempotent, order-preserving
// insertion. Edge dedup is backed by a gonum directed graph so an ordered
// (source, target) pair exists at most once regardless of how many
// declarations express it.
type builder struct {
	dg    *simple.DirectedGraph
	ids   map[string]int64 // concept name -> gonum node id
	names []string         // insertion order, becomes canonical node order
	notes map[string]string
	conf  map[string]*int
	edges []model.ConceptEdge // insertion order of first occurrence
}

func newBuilder() *builder {
	return &builder{
		dg:    simple.NewDirectedGraph(),
		ids:   make(map[string]int64),
		notes: make(map[string]string),
		conf:  make(map[string]*int),
	}
}

// addNode inserts name if unseen and returns its internal id. Duplicate
// names collapse into the existing node.
func (b *builder) addNode(name string) int64 {
	if id, ok := b.ids[name]; ok {
		return id
	}
	n := b.dg.NewNode()
	b.dg.AddNode(n)
	b.ids[name] = n.ID()
	b.names = append(b.names, name)
	return n.ID()
}

// addEdge records the directed edge source->target once. Self-references are
// dropped: a concept cannot relate to itself in this model, and keeping them
// would double-count degree.
func (b *builder) addEdge(source, target string) {
	if source == target || source == "" || target == "" {
		return
	}
	from := b.addNode(source)
	to := b.addNode(target)
	if b.dg.HasEdgeFromTo(from, to) {
		return
	}
	b.dg.SetEdge(b.dg.NewEdge(b.dg.Node(from), b.dg.Node(to)))
	b.edges = append(b.edges, model.ConceptEdge{SourceID: source, TargetID: target})
}

// finish computes degree, importance and size for every node and assembles
// the canonical graph. Importance is degree normalized by the maximum degree
// over the whole graph, floored at 1 so an edgeless graph scores all zeros
// instead of dividing by zero.
func (b *builder) finish() *model.Graph {
	degree := make(map[string]int, len(b.names))
	maxDegree := 0
	for name, id := range b.ids {
		d := b.dg.From(id).Len() + b.dg.To(id).Len()
		degree[name] = d
		if d > maxDegree {
			maxDegree = d
		}
	}
	if maxDegree < 1 {
		maxDegree = 1
	}

	nodes := make([]model.ConceptNode, 0, len(b.names))
	for _, name := range b.names {
		importance := float64(degree[name]) / float64(maxDegree)
		node := model.ConceptNode{
			ID:              name,
			DisplayName:     name,
			ConnectionCount: degree[name],
			Importance:      importance,
			Size:            model.SizeMin + importance*(model.SizeMax-model.SizeMin),
		}
		if text, ok := b.notes[name]; ok && text != "" {
			node.Notes = &text
		}
		if c, ok := b.conf[name]; ok && c != nil {
			node.Confidence = c
		}
		nodes = append(nodes, node)
	}

	return &model.Graph{Nodes: nodes, Edges: b.edges}
}

// FromRecords builds the canonical graph from neighbor-list records. First
// pass materializes a node for every record name and every referenced
// neighbor; second pass emits one edge per unique ordered pair. An incoming
// declaration "B.incoming contains A" and an outgoing declaration
// "A.outgoing contains B" both express the edge A->B and merge.
func FromRecords(records []model.RawConceptRecord) *model.Graph {
	b := newBuilder()

	for _, rec := range records {
		if rec.Name == "" {
			continue
		}
		b.addNode(rec.Name)
		if rec.Notes != "" {
			b.notes[rec.Name] = rec.Notes
		}
		if model.ValidConfidence(rec.Confidence) && rec.Confidence != nil {
			b.conf[rec.Name] = rec.Confidence
		}
		for _, neighbor := range rec.Incoming {
			if neighbor != "" {
				b.addNode(neighbor)
			}
		}
		for _, neighbor := range rec.Outgoing {
			if neighbor != "" {
				b.addNode(neighbor)
			}
		}
	}

	for _, rec := range records {
		if rec.Name == "" {
			continue
		}
		for _, neighbor := range rec.Incoming {
			b.addEdge(neighbor, rec.Name)
		}
		for _, neighbor := range rec.Outgoing {
			b.addEdge(rec.Name, neighbor)
		}
	}

	return b.finish()
}

// FromPrebuilt validates and normalizes an already node/edge shaped input.
// Duplicate node ids collapse into the first occurrence; edge endpoints that
// reference unknown ids are synthesized as nodes rather than dropped.
// Importance and size are recomputed from the canonical edge set, even when
// the input carries its own values.
func FromPrebuilt(nodes []model.ConceptNode, edges []model.ConceptEdge) (*model.Graph, error) {
	b := newBuilder()

	for _, n := range nodes {
		name := n.ID
		if name == "" {
			name = n.DisplayName
		}
		if name == "" {
			return nil, fmt.Errorf("node with empty id and display name")
		}
		b.addNode(name)
		if n.Notes != nil && *n.Notes != "" {
			b.notes[name] = *n.Notes
		}
		if model.ValidConfidence(n.Confidence) && n.Confidence != nil {
			b.conf[name] = n.Confidence
		}
	}

	for _, e := range edges {
		b.addEdge(strings.TrimSpace(e.SourceID), strings.TrimSpace(e.TargetID))
	}

	return b.finish(), nil
}
