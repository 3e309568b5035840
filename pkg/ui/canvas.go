package ui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/conceptweave/pkg/render"
)

// Node glyph thresholds, mirroring the raster renderer's size encoding.
const (
	largeNodeSize  = 45.0
	particleSpeed  = 0.02
	labelMaxWidth  = 18
	edgeSampleStep = 1.0
)

type cell struct {
	ch    rune
	color string
}

// networkView projects the positioned sub-graph onto a character grid.
// Entities with non-finite coordinates are skipped for the frame without
// being removed from the layout.
func (m *Model) networkView() string {
	w, h := m.canvasSize()
	if w <= 0 || h <= 0 || m.visible == nil {
		return ""
	}

	grid := make([][]cell, h)
	for y := range grid {
		grid[y] = make([]cell, w)
		for x := range grid[y] {
			grid[y][x] = cell{ch: ' '}
		}
	}

	positions := m.engine.Positions()

	screen := func(id string) (int, int, bool) {
		p, ok := positions[id]
		if !ok || !isFinite(p.X) || !isFinite(p.Y) {
			return 0, 0, false
		}
		sx, sy := m.vp.Apply(p.X, p.Y)
		if !isFinite(sx) || !isFinite(sy) {
			return 0, 0, false
		}
		return int(math.Round(sx)), int(math.Round(sy)), true
	}

	put := func(x, y int, ch rune, color string) {
		if x < 0 || x >= w || y < 0 || y >= h {
			return
		}
		grid[y][x] = cell{ch: ch, color: color}
	}

	// Edges first so nodes draw over them.
	for _, e := range m.visible.Edges {
		x1, y1, ok1 := screen(e.SourceID)
		x2, y2, ok2 := screen(e.TargetID)
		if !ok1 || !ok2 {
			continue
		}
		color := render.CSS(render.NodeColor(e.SourceID))
		plotLine(x1, y1, x2, y2, func(x, y int) {
			put(x, y, '·', "240")
		})
		if m.particles {
			phase := render.EdgePhase(e.SourceID, e.TargetID)
			for k := 0; k < 2; k++ {
				t := fract(float64(m.tick)*particleSpeed + phase + float64(k)/2)
				px := int(math.Round(float64(x1) + t*float64(x2-x1)))
				py := int(math.Round(float64(y1) + t*float64(y2-y1)))
				put(px, py, '•', color)
			}
		}
	}

	for _, n := range m.visible.Nodes {
		x, y, ok := screen(n.ID)
		if !ok {
			continue
		}
		color := render.CSS(render.NodeColor(n.ID))
		glyph := '•'
		if n.Size >= largeNodeSize {
			glyph = '●'
		}
		switch n.ID {
		case m.interaction.SelectedID:
			glyph = '◎'
		case m.interaction.HoverID:
			glyph = '◉'
		}
		put(x, y, glyph, color)

		if n.ID == m.interaction.HoverID || n.ID == m.interaction.SelectedID || n.Size >= largeNodeSize {
			label := runewidth.Truncate(n.DisplayName, labelMaxWidth, "…")
			for i, r := range label {
				put(x+2+i, y, r, color)
			}
		}
	}

	var sb strings.Builder
	for y := 0; y < h; y++ {
		var line strings.Builder
		run := strings.Builder{}
		runColor := ""
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if runColor == "" {
				line.WriteString(run.String())
			} else {
				line.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(runColor)).Render(run.String()))
			}
			run.Reset()
		}
		for x := 0; x < w; x++ {
			c := grid[y][x]
			if c.color != runColor {
				flush()
				runColor = c.color
			}
			run.WriteRune(c.ch)
		}
		flush()
		sb.WriteString(line.String())
		if y < h-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// plotLine rasterizes the segment with Bresenham's algorithm.
func plotLine(x1, y1, x2, y2 int, plot func(x, y int)) {
	dx := abs(x2 - x1)
	dy := -abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx + dy
	x, y := x1, y1
	for {
		plot(x, y)
		if x == x2 && y == y2 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func fract(f float64) float64 {
	return f - math.Floor(f)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
