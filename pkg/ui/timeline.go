package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/conceptweave/pkg/render"
)

var (
	timelineCursorStyle = lipgloss.NewStyle().Bold(true).Background(lipgloss.Color("236"))
	timelineMetaStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// timelineView lists the visible concepts in canonical order: color swatch,
// name, connection count and importance. The cursor row is the hovered
// node; selecting an entry behaves exactly like clicking it on the canvas.
func (m *Model) timelineView() string {
	if m.visible == nil || len(m.visible.Nodes) == 0 {
		return dimStyle.Render("No concepts match the current search.")
	}

	_, h := m.canvasSize()
	rows := len(m.visible.Nodes)
	// Window the list around the cursor when it overflows the canvas.
	start := 0
	if rows > h && h > 0 {
		start = m.cursor - h/2
		if start < 0 {
			start = 0
		}
		if start+h > rows {
			start = rows - h
		}
	}
	end := rows
	if h > 0 && start+h < rows {
		end = start + h
	}

	nameWidth := 28
	var sb strings.Builder
	for i := start; i < end; i++ {
		n := m.visible.Nodes[i]
		swatch := lipgloss.NewStyle().
			Foreground(lipgloss.Color(render.CSS(render.NodeColor(n.ID)))).
			Render("■")

		name := runewidth.Truncate(n.DisplayName, nameWidth, "…")
		name = name + strings.Repeat(" ", nameWidth-runewidth.StringWidth(name))

		meta := timelineMetaStyle.Render(
			fmt.Sprintf("%3d connections  %3.0f%%", n.ConnectionCount, n.Importance*100))

		marker := "  "
		if n.ID == m.interaction.SelectedID {
			marker = "▶ "
		}

		line := fmt.Sprintf("%s%s %s %s", marker, swatch, name, meta)
		if i == m.cursor {
			line = timelineCursorStyle.Render(line)
		}
		sb.WriteString(line)
		if i < end-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
