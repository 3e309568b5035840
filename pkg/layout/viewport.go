package layout

import "math"

// Viewport maps layout-surface coordinates into a target drawing area.
type Viewport struct {
	OffsetX float64
	OffsetY float64
	Scale   float64
}

// Apply transforms a surface point into viewport coordinates.
func (v Viewport) Apply(x, y float64) (float64, float64) {
	return (x-v.OffsetX)*v.Scale, (y-v.OffsetY)*v.Scale
}

// Fit computes the viewport that frames the settled bounding box of all
// current nodes (including their radii) inside a width x height area with
// the given padding. Non-finite positions are ignored; if nothing is
// placeable yet the identity viewport comes back. Callers re-run Fit after
// the simulation settles and whenever the visible node count changes.
func (e *Engine) Fit(width, height, padding float64) Viewport {
	identity := Viewport{Scale: 1}
	if width <= 0 || height <= 0 {
		return identity
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range e.nodes {
		if !finite(n.x) || !finite(n.y) {
			continue
		}
		minX = math.Min(minX, n.x-n.radius)
		minY = math.Min(minY, n.y-n.radius)
		maxX = math.Max(maxX, n.x+n.radius)
		maxY = math.Max(maxY, n.y+n.radius)
	}
	if minX > maxX || minY > maxY {
		return identity
	}

	spanX := maxX - minX
	spanY := maxY - minY
	if spanX < 1 {
		spanX = 1
	}
	if spanY < 1 {
		spanY = 1
	}

	scale := math.Min((width-2*padding)/spanX, (height-2*padding)/spanY)
	if scale <= 0 || !finite(scale) {
		return identity
	}
	// Never zoom a tiny graph in past 1:1; a two-node graph at 4x is noise.
	if scale > 1.5 {
		scale = 1.5
	}

	// Center the content box inside the target area.
	cx := (minX + maxX) / 2
	cy := (minY + maxY) / 2
	return Viewport{
		OffsetX: cx - width/(2*scale),
		OffsetY: cy - height/(2*scale),
		Scale:   scale,
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
