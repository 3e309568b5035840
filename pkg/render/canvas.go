// Package render draws the positioned sub-graph: raster frames for the live
// view and SVG snapshots for export.
//
// The frame renderer is defensive about mid-simulation state: any node or
// edge with a non-finite coordinate is skipped for that frame only, never
// removed from the model. The simulation self-heals on later frames.
package render

import (
	"image"
	"math"

	"git.sr.ht/~sbinet/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/conceptweave/pkg/layout"
	"github.com/vanderheijden86/conceptweave/pkg/model"
)

const (
	// edgeCurvature offsets the quadratic control point perpendicular to
	// the chord, as a fraction of chord length.
	edgeCurvature = 0.15
	// curve subdivision count for the fading edge stroke
	edgeSegments = 12
	// particles per edge and their travel speed in curve-fractions per tick
	particlesPerEdge = 2
	particleSpeed    = 0.02

	// labels appear on hover or for nodes at least this big
	labelSizeThreshold = 45.0
	labelMaxRunes      = 18
	// orbital ring decoration for prominent nodes
	orbitSizeThreshold = 55.0
)

// FrameState is everything the renderer needs beyond the graph itself.
type FrameState struct {
	Positions map[string]layout.Point
	Viewport  layout.Viewport
	HoverID   string // empty when nothing hovered
	Tick      int    // global animation tick, wall-clock cadence
	Particles bool
}

// Renderer owns a persistent raster surface and redraws it every frame.
type Renderer struct {
	dc     *gg.Context
	width  int
	height int
}

// NewRenderer allocates a surface of the given pixel size.
func NewRenderer(width, height int) *Renderer {
	r := &Renderer{}
	r.Resize(width, height)
	return r
}

// Resize reallocates the surface to match its container.
func (r *Renderer) Resize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	r.width, r.height = width, height
	r.dc = gg.NewContext(width, height)
	r.dc.SetFontFace(basicfont.Face7x13)
}

// Image returns the current surface contents.
func (r *Renderer) Image() image.Image { return r.dc.Image() }

// SavePNG writes the current surface to disk.
func (r *Renderer) SavePNG(path string) error { return r.dc.SavePNG(path) }

// Frame clears the surface and draws the positioned sub-graph. Edges go
// first so nodes paint over them; particles ride on top of their edge but
// under the node bodies.
func (r *Renderer) Frame(g *model.Graph, st FrameState) {
	dc := r.dc
	dc.SetColor(colorBackdrop)
	dc.Clear()

	if g.IsEmpty() {
		dc.SetColor(colorLabelLight)
		dc.DrawStringAnchored("No concepts to display", float64(r.width)/2, float64(r.height)/2, 0.5, 0.5)
		return
	}

	for _, e := range g.Edges {
		from, okF := screenPoint(st, e.SourceID)
		to, okT := screenPoint(st, e.TargetID)
		if !okF || !okT {
			continue // not placeable this frame
		}
		r.drawEdge(e, from, to, st)
	}

	for _, n := range g.Nodes {
		p, ok := screenPoint(st, n.ID)
		if !ok {
			continue
		}
		r.drawNode(n, p, st)
	}
}

// screenPoint maps a node's layout position through the viewport, rejecting
// anything not yet finite.
func screenPoint(st FrameState, id string) (layout.Point, bool) {
	p, ok := st.Positions[id]
	if !ok || !finite(p.X) || !finite(p.Y) {
		return layout.Point{}, false
	}
	x, y := st.Viewport.Apply(p.X, p.Y)
	if !finite(x) || !finite(y) {
		return layout.Point{}, false
	}
	return layout.Point{X: x, Y: y}, true
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// curvePoint evaluates the edge's quadratic at t in [0,1].
func curvePoint(from, ctrl, to layout.Point, t float64) layout.Point {
	mt := 1 - t
	return layout.Point{
		X: mt*mt*from.X + 2*mt*t*ctrl.X + t*t*to.X,
		Y: mt*mt*from.Y + 2*mt*t*ctrl.Y + t*t*to.Y,
	}
}

// controlPoint offsets the chord midpoint perpendicular to the segment by
// the fixed curvature factor.
func controlPoint(from, to layout.Point) layout.Point {
	mx := (from.X + to.X) / 2
	my := (from.Y + to.Y) / 2
	dx := to.X - from.X
	dy := to.Y - from.Y
	return layout.Point{
		X: mx - dy*edgeCurvature,
		Y: my + dx*edgeCurvature,
	}
}

// drawEdge strokes the quadratic in short segments whose alpha fades from
// the source node's color toward the target. Edges have no color identity of
// their own; they inherit the source hue. gg has no stroke gradients, so the
// fade is piecewise.
func (r *Renderer) drawEdge(e model.ConceptEdge, from, to layout.Point, st FrameState) {
	dc := r.dc
	c := NodeColor(e.SourceID)
	ctrl := controlPoint(from, to)

	dc.SetLineWidth(1.5)
	prev := from
	for i := 1; i <= edgeSegments; i++ {
		t := float64(i) / edgeSegments
		next := curvePoint(from, ctrl, to, t)
		alpha := 0.85 - 0.70*t // full near source, low near target
		dc.SetRGBA255(int(c.R), int(c.G), int(c.B), int(alpha*255))
		dc.DrawLine(prev.X, prev.Y, next.X, next.Y)
		dc.Stroke()
		prev = next
	}

	if !st.Particles {
		return
	}
	phase := EdgePhase(e.SourceID, e.TargetID)
	for k := 0; k < particlesPerEdge; k++ {
		t := float64(st.Tick)*particleSpeed + phase + float64(k)/particlesPerEdge
		t -= math.Floor(t)
		p := curvePoint(from, ctrl, to, t)
		dc.SetRGBA255(int(c.R), int(c.G), int(c.B), 230)
		dc.DrawCircle(p.X, p.Y, 2.2)
		dc.Fill()
	}
}

// drawNode renders the full node encoding: glow rings, optional orbital
// ring, body, specular highlight, border, label.
func (r *Renderer) drawNode(n model.ConceptNode, p layout.Point, st FrameState) {
	dc := r.dc
	c := NodeColor(n.ID)
	radius := n.Size / 2 * st.Viewport.Scale
	if radius < 2 {
		radius = 2
	}
	hovered := st.HoverID == n.ID

	// Soft glow: three widening rings behind the body, brighter on hover.
	glowAlpha := 28
	if hovered {
		glowAlpha = 60
	}
	for ring := 3; ring >= 1; ring-- {
		dc.SetRGBA255(int(c.R), int(c.G), int(c.B), glowAlpha/ring)
		dc.DrawCircle(p.X, p.Y, radius*(1+0.35*float64(ring)))
		dc.Fill()
	}

	// Dashed orbital ring for prominent concepts.
	if n.Size >= orbitSizeThreshold {
		dc.SetRGBA255(int(c.R), int(c.G), int(c.B), 110)
		dc.SetLineWidth(1)
		dc.SetDash(4, 5)
		dc.DrawCircle(p.X, p.Y, radius*1.55)
		dc.Stroke()
		dc.SetDash()
	}

	// Body.
	dc.SetColor(c)
	dc.DrawCircle(p.X, p.Y, radius)
	dc.Fill()

	// Specular highlight, upper-left.
	dc.SetRGBA255(255, 255, 255, 70)
	dc.DrawCircle(p.X-radius*0.3, p.Y-radius*0.3, radius*0.4)
	dc.Fill()

	// Border, thicker and whiter on hover.
	if hovered {
		dc.SetRGBA255(255, 255, 255, 240)
		dc.SetLineWidth(2.5)
	} else {
		dc.SetRGBA255(255, 255, 255, 120)
		dc.SetLineWidth(1.2)
	}
	dc.DrawCircle(p.X, p.Y, radius)
	dc.Stroke()

	if hovered || n.Size >= labelSizeThreshold {
		r.drawLabel(n.DisplayName, p, radius)
	}
}

// drawLabel draws a dark shadow pass under the light pass so the text reads
// over any background.
func (r *Renderer) drawLabel(text string, p layout.Point, radius float64) {
	dc := r.dc
	label := truncateLabel(text, labelMaxRunes)
	y := p.Y + radius + 12

	dc.SetColor(colorLabelDark)
	dc.DrawStringAnchored(label, p.X+1, y+1, 0.5, 0.5)
	dc.SetColor(colorLabelLight)
	dc.DrawStringAnchored(label, p.X, y, 0.5, 0.5)
}

func truncateLabel(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 1 {
		return string(runes[:max])
	}
	return string(runes[:max-1]) + "…"
}
