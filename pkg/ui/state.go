// Package ui is the terminal front end: the network canvas, the timeline
// listing, search, and the concept detail panel. All state lives on the
// bubbletea update loop; nothing here touches goroutines directly.
package ui

import (
	"math"

	"github.com/vanderheijden86/conceptweave/pkg/layout"
	"github.com/vanderheijden86/conceptweave/pkg/model"
)

// ViewMode represents the active graph presentation.
type ViewMode int

const (
	ViewNetwork ViewMode = iota
	ViewTimeline
)

// String returns a human-readable label for the view mode.
func (v ViewMode) String() string {
	switch v {
	case ViewTimeline:
		return "Timeline"
	default:
		return "Network"
	}
}

// ParseViewMode maps a config value onto a ViewMode. Unknown values fall
// back to the network view.
func ParseViewMode(s string) ViewMode {
	if s == "timeline" {
		return ViewTimeline
	}
	return ViewNetwork
}

// Interaction is the pointer interaction state.
type Interaction int

const (
	InteractionNone Interaction = iota
	InteractionHovered
	InteractionSelected
)

// hitSlop widens the clickable disc around each node.
const hitSlop = 8.0

// InteractionState tracks hover and selection independently. Selection
// outlives hover: moving the pointer never deselects, and search changes
// invalidate hover only.
type InteractionState struct {
	HoverID    string
	SelectedID string
}

// State reports the dominant interaction state. Selection wins over hover.
func (s *InteractionState) State() Interaction {
	switch {
	case s.SelectedID != "":
		return InteractionSelected
	case s.HoverID != "":
		return InteractionHovered
	default:
		return InteractionNone
	}
}

// Hover sets the hovered node; empty clears hover. Selection is untouched.
func (s *InteractionState) Hover(id string) {
	s.HoverID = id
}

// Click applies the click transition: a node click selects it, an empty
// click deselects.
func (s *InteractionState) Click(id string) {
	s.SelectedID = id
}

// Deselect clears the selection, keeping hover.
func (s *InteractionState) Deselect() {
	s.SelectedID = ""
}

// InvalidateHover drops hover when the hovered node is no longer visible.
// Called after every filter change.
func (s *InteractionState) InvalidateHover(visible func(id string) bool) {
	if s.HoverID != "" && !visible(s.HoverID) {
		s.HoverID = ""
	}
}

// HitTest returns the id of the node whose disc (radius = size/2 + slop)
// contains the world-space point, or "". Overlapping discs resolve to the
// nearest centre.
func HitTest(nodes []model.ConceptNode, positions map[string]layout.Point, x, y float64) string {
	best := ""
	bestDist := math.Inf(1)
	for _, n := range nodes {
		p, ok := positions[n.ID]
		if !ok {
			continue
		}
		dx, dy := x-p.X, y-p.Y
		dist := math.Hypot(dx, dy)
		r := n.Size/2 + hitSlop
		if dist <= r && dist < bestDist {
			best = n.ID
			bestDist = dist
		}
	}
	return best
}
