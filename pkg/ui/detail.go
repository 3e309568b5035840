package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/conceptweave/pkg/insight"
	"github.com/vanderheijden86/conceptweave/pkg/model"
)

// fetchState tracks one async lookup for the detail panel.
type fetchState int

const (
	fetchIdle fetchState = iota
	fetchLoading
	fetchReady
	fetchFailed
	fetchUnavailable // no lookup service configured
)

var detailPanelStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("240")).
	Padding(0, 1).
	Width(detailPanelWidth - 2)

type detailState struct {
	concept string

	defState fetchState
	def      insight.Definition
	defErr   string

	insState fetchState
	bundle   insight.Bundle
	insErr   string

	editingNotes bool
	notesInput   textinput.Model

	markdown *glamour.TermRenderer
}

func newDetailState() detailState {
	notes := textinput.New()
	notes.Placeholder = "notes"
	notes.CharLimit = 500
	notes.Width = detailPanelWidth - 8
	return detailState{notesInput: notes}
}

// begin resets the panel for a newly selected concept and marks both
// lookups as in flight.
func (d *detailState) begin(concept string) {
	d.concept = concept
	d.defState = fetchLoading
	d.insState = fetchLoading
	d.def = insight.Definition{}
	d.bundle = insight.Bundle{}
	d.defErr = ""
	d.insErr = ""
	d.editingNotes = false
}

func (d *detailState) reset() {
	d.concept = ""
	d.defState = fetchIdle
	d.insState = fetchIdle
	d.editingNotes = false
}

func (d *detailState) markUnavailable() {
	d.defState = fetchUnavailable
	d.insState = fetchUnavailable
}

func (d *detailState) applyDefinition(msg definitionMsg) {
	if msg.err != nil {
		d.defState = fetchFailed
		d.defErr = msg.err.Error()
		return
	}
	d.defState = fetchReady
	d.def = msg.def
}

func (d *detailState) applyInsights(msg insightsMsg) {
	if msg.err != nil {
		d.insState = fetchFailed
		d.insErr = msg.err.Error()
		return
	}
	d.insState = fetchReady
	d.bundle = msg.bundle
}

func (d *detailState) needsRetry() bool {
	return d.defState == fetchFailed || d.insState == fetchFailed ||
		(d.insState == fetchReady && !d.bundle.Success)
}

func (d *detailState) beginNotesEdit(node *model.ConceptNode) {
	d.editingNotes = true
	if node != nil && node.Notes != nil {
		d.notesInput.SetValue(*node.Notes)
	} else {
		d.notesInput.SetValue("")
	}
	d.notesInput.Focus()
}

func (d *detailState) cancelNotesEdit() {
	d.editingNotes = false
	d.notesInput.Blur()
}

func (d *detailState) finishNotesEdit() string {
	d.editingNotes = false
	d.notesInput.Blur()
	return strings.TrimSpace(d.notesInput.Value())
}

// renderMarkdown renders insight markdown for the panel width, falling back
// to the raw text when the renderer cannot be built.
func (d *detailState) renderMarkdown(md string) string {
	if d.markdown == nil {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(detailPanelWidth-6),
		)
		if err != nil {
			return md
		}
		d.markdown = r
	}
	out, err := d.markdown.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}

// detailView renders the side panel for the selected concept.
func (m *Model) detailView() string {
	node := m.selectedNode()
	if node == nil {
		return ""
	}
	d := &m.detail

	var sb strings.Builder
	sb.WriteString(headerStyle.Render(node.DisplayName))
	sb.WriteString("\n")
	sb.WriteString(statusStyle.Render(fmt.Sprintf("%d connections · %.0f%% importance",
		node.ConnectionCount, node.Importance*100)))
	sb.WriteString("\n\n")

	// Definition block.
	switch d.defState {
	case fetchLoading:
		sb.WriteString(dimStyle.Render("Loading definition…"))
	case fetchFailed:
		sb.WriteString(errorStyle.Render("Definition failed: " + d.defErr))
		sb.WriteString("\n")
		sb.WriteString(dimStyle.Render("press r to retry"))
	case fetchUnavailable:
		sb.WriteString(dimStyle.Render("Lookups disabled."))
	case fetchReady:
		if d.def.Definition == "" {
			sb.WriteString(dimStyle.Render("No definition available."))
		} else {
			sb.WriteString(d.def.Definition)
		}
	}
	sb.WriteString("\n\n")

	// Insight block.
	switch d.insState {
	case fetchLoading:
		sb.WriteString(dimStyle.Render("Loading insights…"))
	case fetchFailed:
		sb.WriteString(errorStyle.Render("Insights failed: " + d.insErr))
		sb.WriteString("\n")
		sb.WriteString(dimStyle.Render("press r to retry"))
	case fetchReady:
		if !d.bundle.Success {
			msg := d.bundle.Error
			if msg == "" {
				msg = "insight service could not answer"
			}
			sb.WriteString(errorStyle.Render(msg))
			sb.WriteString("\n")
			sb.WriteString(dimStyle.Render("press r to retry"))
		} else {
			if d.bundle.Overview != "" {
				sb.WriteString(d.renderMarkdown(d.bundle.Overview))
				sb.WriteString("\n")
			}
			if len(d.bundle.Formulas) > 0 {
				sb.WriteString(headerStyle.Render("Formulas"))
				sb.WriteString("\n")
				for _, f := range d.bundle.Formulas {
					sb.WriteString("  " + f + "\n")
				}
			}
			if len(d.bundle.Theorems) > 0 {
				sb.WriteString(headerStyle.Render("Theorems"))
				sb.WriteString("\n")
				for _, th := range d.bundle.Theorems {
					sb.WriteString("  " + th + "\n")
				}
			}
			if len(d.bundle.RelatedConcepts) > 0 {
				sb.WriteString(dimStyle.Render("Related: " + strings.Join(d.bundle.RelatedConcepts, ", ")))
				sb.WriteString("\n")
			}
		}
	}
	sb.WriteString("\n")

	// Annotations.
	if d.editingNotes {
		sb.WriteString("Notes: " + d.notesInput.View())
		sb.WriteString("\n")
		sb.WriteString(dimStyle.Render("enter: save  esc: cancel"))
	} else {
		if node.Notes != nil {
			sb.WriteString("Notes: " + *node.Notes)
			sb.WriteString("\n")
		}
		if node.Confidence != nil {
			sb.WriteString(fmt.Sprintf("Mastery: %d/5\n", *node.Confidence))
		}
		sb.WriteString(dimStyle.Render("n: notes  1-5: rate  0: clear  y: copy"))
	}

	return detailPanelStyle.Render(sb.String())
}
