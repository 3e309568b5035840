// Package layout runs the iterative force simulation that assigns 2D
// coordinates to the visible sub-graph.
//
// The engine is the single owner of node positions. Everything else reads
// them through Positions or the OnTick callback; the only external writer is
// the drag interaction, which goes through Pin/Drag/Release so ownership
// transfers explicitly and comes back when the drag ends.
package layout

import (
	"math"

	"github.com/vanderheijden86/conceptweave/pkg/model"
)

// Options tunes the simulation. Zero values fall back to defaults.
type Options struct {
	AlphaDecay    float64 // energy decay per iteration, default 0.02
	AlphaMin      float64 // rest threshold, default 0.02
	VelocityDecay float64 // velocity damping per iteration, default 0.25
	Gravity       float64 // centering pull, default 0.03
	MaxIterations int     // hard cap, default 300
	CollideMargin float64 // extra collision radius, default 6
	Width         float64 // surface size, default 1200x800
	Height        float64
}

func (o Options) withDefaults() Options {
	d := Options{
		AlphaDecay:    0.02,
		AlphaMin:      0.02,
		VelocityDecay: 0.25,
		Gravity:       0.03,
		MaxIterations: 300,
		CollideMargin: 6,
		Width:         1200,
		Height:        800,
	}
	if o.AlphaDecay > 0 {
		d.AlphaDecay = o.AlphaDecay
	}
	if o.AlphaMin > 0 {
		d.AlphaMin = o.AlphaMin
	}
	if o.VelocityDecay > 0 {
		d.VelocityDecay = o.VelocityDecay
	}
	if o.Gravity > 0 {
		d.Gravity = o.Gravity
	}
	if o.MaxIterations > 0 {
		d.MaxIterations = o.MaxIterations
	}
	if o.CollideMargin > 0 {
		d.CollideMargin = o.CollideMargin
	}
	if o.Width > 0 {
		d.Width = o.Width
	}
	if o.Height > 0 {
		d.Height = o.Height
	}
	return d
}

// params are the size-adaptive force constants. They are re-derived every
// iteration rather than fixed at start, because the visible node count
// changes whenever the search filter changes.
type params struct {
	targetSep float64 // desired edge length
	repulsion float64 // pairwise push strength
}

// adaptiveParams scales spacing and repulsion with the visible node count so
// a handful of nodes and a few thousand both stay legible. Separation grows
// with count up to a cap; repulsion grows into the high-hundreds so dense
// graphs do not collapse into overlap, without launching sparse graphs off
// the surface.
func adaptiveParams(nodeCount int) params {
	sep := 120 + float64(nodeCount)*1.5
	if sep > 350 {
		sep = 350
	}
	if sep < 120 {
		sep = 120
	}
	rep := 300 + float64(nodeCount)*4
	if rep > 1200 {
		rep = 1200
	}
	return params{targetSep: sep, repulsion: rep}
}

type simNode struct {
	id     string
	x, y   float64
	vx, vy float64
	radius float64 // collision radius: rendered radius plus margin
	pinned bool
}

// Engine is the force simulation over the currently visible sub-graph.
// It is not safe for concurrent use; the UI drives it from one goroutine.
type Engine struct {
	opts     Options
	nodes    []*simNode
	index    map[string]*simNode
	edges    [][2]*simNode
	alpha    float64
	iter     int
	onTick   func()
	disposed bool
}

// New returns an engine with no nodes. SetNodes starts it hot.
func New(opts Options) *Engine {
	return &Engine{
		opts:  opts.withDefaults(),
		index: make(map[string]*simNode),
	}
}

// SetNodes replaces the simulated node set. Nodes that survive from the
// previous set keep their positions and pin state so a search-filter change
// does not scramble the layout; new nodes are seeded on a deterministic
// phyllotaxis spiral around the surface center. The simulation reheats.
func (e *Engine) SetNodes(nodes []model.ConceptNode) {
	if e.disposed {
		return
	}
	cx, cy := e.opts.Width/2, e.opts.Height/2
	next := make([]*simNode, 0, len(nodes))
	nextIndex := make(map[string]*simNode, len(nodes))
	for i, n := range nodes {
		sn, ok := e.index[n.ID]
		if !ok {
			// Same spiral d3 uses for initial placement: deterministic, so
			// repeated runs on the same input start identically.
			r := 18 * math.Sqrt(float64(i)+0.5)
			a := float64(i) * 2.399963229728653 // golden angle
			sn = &simNode{
				id: n.ID,
				x:  cx + r*math.Cos(a),
				y:  cy + r*math.Sin(a),
			}
		}
		sn.radius = n.Size/2 + e.opts.CollideMargin
		next = append(next, sn)
		nextIndex[n.ID] = sn
	}
	e.nodes = next
	e.index = nextIndex
	e.edges = nil
	e.Reheat()
}

// SetEdges replaces the simulated edge set. Edges with endpoints outside the
// current node set are ignored.
func (e *Engine) SetEdges(edges []model.ConceptEdge) {
	if e.disposed {
		return
	}
	e.edges = e.edges[:0]
	for _, edge := range edges {
		from, okF := e.index[edge.SourceID]
		to, okT := e.index[edge.TargetID]
		if okF && okT && from != to {
			e.edges = append(e.edges, [2]*simNode{from, to})
		}
	}
}

// OnTick registers a callback invoked after every completed iteration.
func (e *Engine) OnTick(fn func()) { e.onTick = fn }

// Reheat restarts the warm-up/cool-down cycle at full energy.
func (e *Engine) Reheat() {
	e.alpha = 1.0
	e.iter = 0
}

// Settled reports whether the simulation has reached its rest state, either
// by energy decay or by hitting the iteration cap. A settled engine stays
// settled until reheated.
func (e *Engine) Settled() bool {
	return e.disposed || e.alpha < e.opts.AlphaMin || e.iter >= e.opts.MaxIterations
}

// Dispose permanently stops the engine. Further Steps are no-ops; callers
// dispose when the owning view is dismissed so no periodic work leaks.
func (e *Engine) Dispose() { e.disposed = true }

// Step advances the simulation one iteration and reports whether it is still
// running. The force parameters are re-derived from the current node count
// on every call.
func (e *Engine) Step() bool {
	if e.Settled() || len(e.nodes) == 0 {
		return false
	}
	p := adaptiveParams(len(e.nodes))

	// Pairwise repulsion, inverse-square with a distance floor so
	// coincident nodes do not produce infinite force.
	for i, a := range e.nodes {
		for _, b := range e.nodes[i+1:] {
			dx := b.x - a.x
			dy := b.y - a.y
			distSq := dx*dx + dy*dy
			if distSq < 1 {
				distSq = 1
				dx, dy = 1, 0
			}
			dist := math.Sqrt(distSq)
			f := p.repulsion / distSq * e.alpha
			fx := dx / dist * f
			fy := dy / dist * f
			a.vx -= fx
			a.vy -= fy
			b.vx += fx
			b.vy += fy
		}
	}

	// Springs pull connected pairs toward the target separation.
	const stiffness = 0.05
	for _, edge := range e.edges {
		a, b := edge[0], edge[1]
		dx := b.x - a.x
		dy := b.y - a.y
		dist := math.Hypot(dx, dy)
		if dist < 1 {
			dist = 1
		}
		f := (dist - p.targetSep) * stiffness * e.alpha
		fx := dx / dist * f
		fy := dy / dist * f
		a.vx += fx
		a.vy += fy
		b.vx -= fx
		b.vy -= fy
	}

	// Weak centering keeps the cloud from drifting off-surface.
	cx, cy := e.opts.Width/2, e.opts.Height/2
	for _, n := range e.nodes {
		n.vx += (cx - n.x) * e.opts.Gravity * e.alpha
		n.vy += (cy - n.y) * e.opts.Gravity * e.alpha
	}

	// Integrate with velocity damping. Pinned nodes hold position and shed
	// accumulated velocity.
	for _, n := range e.nodes {
		if n.pinned {
			n.vx, n.vy = 0, 0
			continue
		}
		n.vx *= 1 - e.opts.VelocityDecay
		n.vy *= 1 - e.opts.VelocityDecay
		n.x += n.vx
		n.y += n.vy
	}

	e.resolveCollisions()

	e.alpha *= 1 - e.opts.AlphaDecay
	e.iter++
	if e.onTick != nil {
		e.onTick()
	}
	return !e.Settled()
}

// resolveCollisions pushes overlapping node bodies apart by positional
// correction, split evenly unless one side is pinned.
func (e *Engine) resolveCollisions() {
	for i, a := range e.nodes {
		for _, b := range e.nodes[i+1:] {
			dx := b.x - a.x
			dy := b.y - a.y
			dist := math.Hypot(dx, dy)
			minDist := a.radius + b.radius
			if dist >= minDist {
				continue
			}
			if dist < 1 {
				dist = 1
				dx, dy = 1, 0
			}
			overlap := (minDist - dist) / 2
			ux := dx / dist * overlap
			uy := dy / dist * overlap
			switch {
			case a.pinned && b.pinned:
				// both held by the user; leave them
			case a.pinned:
				b.x += 2 * ux
				b.y += 2 * uy
			case b.pinned:
				a.x -= 2 * ux
				a.y -= 2 * uy
			default:
				a.x -= ux
				a.y -= uy
				b.x += ux
				b.y += uy
			}
		}
	}
}

// Run steps the simulation to rest. Convenience for non-interactive callers
// (snapshot export, tests); the TUI steps incrementally instead.
func (e *Engine) Run() {
	for e.Step() {
	}
}

// Point is a node position on the layout surface.
type Point struct {
	X, Y float64
}

// Positions returns a snapshot of current node coordinates.
func (e *Engine) Positions() map[string]Point {
	out := make(map[string]Point, len(e.nodes))
	for _, n := range e.nodes {
		out[n.id] = Point{X: n.x, Y: n.y}
	}
	return out
}

// Pin fixes a node at its current position, taking it out of the
// simulation. Used at drag start.
func (e *Engine) Pin(id string) {
	if n, ok := e.index[id]; ok {
		n.pinned = true
		n.vx, n.vy = 0, 0
	}
}

// Drag moves a pinned node to the pointer position. Dragging an unpinned
// node pins it first.
func (e *Engine) Drag(id string, x, y float64) {
	n, ok := e.index[id]
	if !ok {
		return
	}
	n.pinned = true
	n.x, n.y = x, y
	n.vx, n.vy = 0, 0
	// a drag injects energy; let the rest of the graph respond
	if e.alpha < 0.3 {
		e.alpha = 0.3
		if e.iter >= e.opts.MaxIterations {
			e.iter = e.opts.MaxIterations - 30
		}
	}
}

// Release returns a dragged node to simulation ownership.
func (e *Engine) Release(id string) {
	if n, ok := e.index[id]; ok {
		n.pinned = false
	}
}

// NodeCount returns the number of simulated nodes.
func (e *Engine) NodeCount() int { return len(e.nodes) }
