package ui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/conceptweave/pkg/config"
	"github.com/vanderheijden86/conceptweave/pkg/debug"
	"github.com/vanderheijden86/conceptweave/pkg/graph"
	"github.com/vanderheijden86/conceptweave/pkg/insight"
	"github.com/vanderheijden86/conceptweave/pkg/layout"
	"github.com/vanderheijden86/conceptweave/pkg/model"
	"github.com/vanderheijden86/conceptweave/pkg/store"
	"github.com/vanderheijden86/conceptweave/pkg/watcher"
)

// Layout thresholds for the detail side panel.
const (
	detailPanelWidth    = 42
	detailPanelMinTotal = 100 // hide the panel below this terminal width
	simStepsPerTick     = 3
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#a855f7"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444"))
	searchStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#22d3ee"))
)

// Options configures the program model.
type Options struct {
	ProjectPath string
	Config      config.Config
	Store       *store.Store    // optional; nil disables annotations
	Insight     *insight.Client // optional; nil disables lookups
	Watcher     *watcher.Watcher
}

// Model is the bubbletea program state.
type Model struct {
	opts Options

	// Canonical graph and the filtered view currently on screen. graph is
	// nil until the first load completes; an empty graph after load is a
	// valid state with its own message.
	graph   *model.Graph
	visible *model.Graph

	projectMeta model.Project
	subject     string

	engine    *layout.Engine
	vp        layout.Viewport
	lastCount int

	view        ViewMode
	interaction InteractionState
	cursor      int // keyboard cursor into visible.Nodes, drives hover
	dragging    string

	search    textinput.Model
	searching bool

	detail detailState

	particles bool
	tick      int

	width, height int
	statusMsg     string
	loadErr       error
	quitting      bool
}

// New builds the program model. The project is loaded asynchronously by
// Init; the engine exists from the start so ticks always have a target.
func New(opts Options) *Model {
	search := textinput.New()
	search.Placeholder = "search concepts"
	search.CharLimit = 80
	search.Width = 30

	m := &Model{
		opts:      opts,
		engine:    layout.New(layout.Options{}),
		vp:        layout.Viewport{Scale: 1},
		view:      ParseViewMode(opts.Config.UI.DefaultView),
		search:    search,
		particles: opts.Config.ParticlesEnabled(),
		detail:    newDetailState(),
	}
	return m
}

// Init starts the project load and the particle clock.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		loadProjectCmd(m.opts.ProjectPath),
		particleTickCmd(),
	}
	if cmd := watchChangedCmd(m.opts.Watcher); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// teardown releases everything the update loop owns. Called once on quit.
func (m *Model) teardown() {
	m.engine.Dispose()
	if m.opts.Watcher != nil {
		m.opts.Watcher.Stop()
	}
	if m.opts.Store != nil {
		m.opts.Store.Close()
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.refit()
		return m, nil

	case projectLoadedMsg:
		return m.handleProjectLoaded(msg)

	case fileChangedMsg:
		debug.Log("project file changed, reloading")
		return m, tea.Batch(loadProjectCmd(m.opts.ProjectPath), watchChangedCmd(m.opts.Watcher))

	case particleTickMsg:
		m.tick++
		return m, particleTickCmd()

	case simTickMsg:
		return m.handleSimTick()

	case definitionMsg:
		// Stale guard: the selection may have moved on while the fetch
		// was in flight.
		if msg.concept != m.interaction.SelectedID {
			debug.Log("discarding stale definition for %s", msg.concept)
			return m, nil
		}
		m.detail.applyDefinition(msg)
		return m, nil

	case insightsMsg:
		if msg.concept != m.interaction.SelectedID {
			debug.Log("discarding stale insights for %s", msg.concept)
			return m, nil
		}
		m.detail.applyInsights(msg)
		return m, nil

	case annotationSavedMsg:
		if msg.err != nil {
			m.statusMsg = errorStyle.Render("annotation save failed: " + msg.err.Error())
		} else {
			m.statusMsg = "annotation saved"
		}
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleProjectLoaded(msg projectLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.loadErr = msg.err
		return m, nil
	}
	m.loadErr = nil
	m.graph = msg.graph
	m.projectMeta = msg.project.Meta
	m.subject = msg.project.Subject

	// Persist the project so annotations have a row to land on.
	if m.opts.Store != nil && len(msg.project.Doc.Records) > 0 {
		if err := m.opts.Store.SaveProject(m.projectMeta, msg.project.Doc.Records); err != nil {
			debug.Log("store save failed: %v", err)
		}
	}

	m.applyFilter()
	return m, simTickCmd()
}

func (m *Model) handleSimTick() (tea.Model, tea.Cmd) {
	if m.engine.Settled() {
		return m, nil
	}
	for i := 0; i < simStepsPerTick; i++ {
		if !m.engine.Step() {
			break
		}
	}
	if m.engine.Settled() {
		m.refit()
		return m, nil
	}
	return m, simTickCmd()
}

func (m *Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.view != ViewNetwork || m.visible == nil {
		return m, nil
	}
	wx, wy := m.cellToWorld(msg.X, msg.Y-canvasTop)

	switch msg.Action {
	case tea.MouseActionMotion:
		if m.dragging != "" && msg.Button == tea.MouseButtonLeft {
			m.engine.Drag(m.dragging, wx, wy)
			return m, simTickCmd()
		}
		m.interaction.Hover(HitTest(m.visible.Nodes, m.engine.Positions(), wx, wy))
		m.syncCursorToHover()

	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		id := HitTest(m.visible.Nodes, m.engine.Positions(), wx, wy)
		m.interaction.Click(id)
		if id != "" {
			m.dragging = id
			m.engine.Pin(id)
			return m, m.startDetailFetch(id)
		}
		m.detail.reset()

	case tea.MouseActionRelease:
		if m.dragging != "" {
			m.engine.Release(m.dragging)
			m.dragging = ""
			return m, simTickCmd()
		}
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Notes editing captures all input first.
	if m.detail.editingNotes {
		return m.handleNotesKey(msg)
	}

	if m.searching {
		switch msg.String() {
		case "esc":
			m.searching = false
			m.search.Blur()
			return m, nil
		case "enter":
			m.searching = false
			m.search.Blur()
			return m, nil
		default:
			var cmd tea.Cmd
			m.search, cmd = m.search.Update(msg)
			m.applyFilter()
			return m, tea.Batch(cmd, simTickCmd())
		}
	}

	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		m.teardown()
		return m, tea.Quit

	case "tab":
		if m.view == ViewNetwork {
			m.view = ViewTimeline
		} else {
			m.view = ViewNetwork
		}
		return m, nil

	case "/":
		m.searching = true
		m.search.Focus()
		return m, textinput.Blink

	case "esc":
		if m.search.Value() != "" {
			m.search.SetValue("")
			m.applyFilter()
			return m, simTickCmd()
		}
		m.interaction.Deselect()
		m.detail.reset()
		return m, nil

	case "up", "k":
		m.moveCursor(-1)
		return m, nil
	case "down", "j":
		m.moveCursor(1)
		return m, nil

	case "enter", " ":
		id := m.cursorID()
		if id == "" {
			return m, nil
		}
		m.interaction.Click(id)
		return m, m.startDetailFetch(id)

	case "y":
		if id := m.interaction.SelectedID; id != "" {
			if err := clipboard.WriteAll(id); err != nil {
				m.statusMsg = errorStyle.Render("clipboard: " + err.Error())
			} else {
				m.statusMsg = "copied " + id
			}
		}
		return m, nil

	case "n":
		if m.interaction.SelectedID != "" && m.opts.Store != nil {
			m.detail.beginNotesEdit(m.selectedNode())
			return m, textinput.Blink
		}
		return m, nil

	case "0", "1", "2", "3", "4", "5":
		return m, m.setConfidence(int(msg.String()[0] - '0'))

	case "r":
		if id := m.interaction.SelectedID; id != "" && m.detail.needsRetry() {
			return m, m.startDetailFetch(id)
		}
		return m, nil

	case "f":
		m.refit()
		return m, nil
	}
	return m, nil
}

func (m *Model) handleNotesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.detail.cancelNotesEdit()
		return m, nil
	case "enter":
		text := m.detail.finishNotesEdit()
		return m, m.saveNotes(text)
	default:
		var cmd tea.Cmd
		m.detail.notesInput, cmd = m.detail.notesInput.Update(msg)
		return m, cmd
	}
}

// applyFilter recomputes the visible sub-graph from the search query and
// hands the result to the engine. Selection survives filtering; hover is
// invalidated when its node disappears.
func (m *Model) applyFilter() {
	if m.graph == nil {
		return
	}
	m.visible = graph.Filter(m.graph, m.search.Value())
	m.engine.SetNodes(m.visible.Nodes)
	m.engine.SetEdges(m.visible.Edges)
	m.interaction.InvalidateHover(func(id string) bool {
		return m.visible.NodeByID(id) != nil
	})
	if m.cursor >= len(m.visible.Nodes) {
		m.cursor = 0
	}
	if len(m.visible.Nodes) != m.lastCount {
		m.refit()
	}
}

// refit frames the current layout in the canvas area.
func (m *Model) refit() {
	w, h := m.canvasSize()
	if w <= 0 || h <= 0 {
		return
	}
	m.vp = m.engine.Fit(float64(w), float64(h), 2)
	if m.visible != nil {
		m.lastCount = len(m.visible.Nodes)
	}
}

func (m *Model) moveCursor(delta int) {
	n := m.nodeListLen()
	if n == 0 {
		return
	}
	m.cursor = (m.cursor + delta + n) % n
	m.interaction.Hover(m.cursorID())
}

func (m *Model) nodeListLen() int {
	if m.visible == nil {
		return 0
	}
	return len(m.visible.Nodes)
}

func (m *Model) cursorID() string {
	if m.visible == nil || m.cursor < 0 || m.cursor >= len(m.visible.Nodes) {
		return ""
	}
	return m.visible.Nodes[m.cursor].ID
}

func (m *Model) syncCursorToHover() {
	if m.visible == nil || m.interaction.HoverID == "" {
		return
	}
	for i := range m.visible.Nodes {
		if m.visible.Nodes[i].ID == m.interaction.HoverID {
			m.cursor = i
			return
		}
	}
}

func (m *Model) selectedNode() *model.ConceptNode {
	if m.graph == nil {
		return nil
	}
	return m.graph.NodeByID(m.interaction.SelectedID)
}

// startDetailFetch kicks off the async definition and insight lookups for
// the newly selected concept.
func (m *Model) startDetailFetch(id string) tea.Cmd {
	m.detail.begin(id)
	if m.opts.Insight == nil {
		m.detail.markUnavailable()
		return nil
	}
	data := insight.ContextData{
		Subject:         m.subject,
		Title:           m.projectMeta.Title,
		RelatedConcepts: m.graph.Neighbors(id),
	}
	return tea.Batch(
		fetchDefinitionCmd(m.opts.Insight, id, m.projectMeta.ID),
		fetchInsightsCmd(m.opts.Insight, id, data),
	)
}

// saveNotes writes the notes annotation through the store and reflects it
// on the canonical node immediately.
func (m *Model) saveNotes(text string) tea.Cmd {
	id := m.interaction.SelectedID
	if id == "" || m.opts.Store == nil {
		return nil
	}
	if node := m.graph.NodeByID(id); node != nil {
		if text == "" {
			node.Notes = nil
		} else {
			t := text
			node.Notes = &t
		}
	}
	st, projectID := m.opts.Store, m.projectMeta.ID
	return func() tea.Msg {
		err := st.SetNotes(projectID, id, text)
		return annotationSavedMsg{concept: id, err: err}
	}
}

// setConfidence writes the mastery rating (1-5, 0 clears) for the selected
// concept.
func (m *Model) setConfidence(v int) tea.Cmd {
	id := m.interaction.SelectedID
	if id == "" || m.opts.Store == nil {
		return nil
	}
	var conf *int
	if v != 0 {
		conf = &v
	}
	if node := m.graph.NodeByID(id); node != nil {
		node.Confidence = conf
	}
	st, projectID := m.opts.Store, m.projectMeta.ID
	return func() tea.Msg {
		err := st.SetConfidence(projectID, id, conf)
		return annotationSavedMsg{concept: id, err: err}
	}
}

// canvas geometry: header + search occupy the top rows, status the bottom.
const canvasTop = 2

func (m *Model) canvasSize() (int, int) {
	w := m.width
	if m.showDetailPanel() {
		w -= detailPanelWidth
	}
	h := m.height - canvasTop - 1
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return w, h
}

func (m *Model) showDetailPanel() bool {
	return m.interaction.SelectedID != "" && m.width >= detailPanelMinTotal
}

func (m *Model) cellToWorld(cx, cy int) (float64, float64) {
	if m.vp.Scale == 0 {
		return float64(cx), float64(cy)
	}
	return float64(cx)/m.vp.Scale + m.vp.OffsetX, float64(cy)/m.vp.Scale + m.vp.OffsetY
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(m.headerLine())
	sb.WriteString("\n")
	sb.WriteString(m.searchLine())
	sb.WriteString("\n")

	var body string
	switch {
	case m.loadErr != nil:
		body = errorStyle.Render(fmt.Sprintf("cannot load project: %v", m.loadErr))
	case m.graph == nil:
		body = dimStyle.Render("Loading project…")
	case m.graph.IsEmpty():
		body = dimStyle.Render("No concepts in this project yet.")
	case m.view == ViewTimeline:
		body = m.timelineView()
	default:
		body = m.networkView()
	}

	if m.showDetailPanel() {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.detailView())
	}
	sb.WriteString(body)
	sb.WriteString("\n")
	sb.WriteString(m.statusLine())
	return sb.String()
}

func (m *Model) headerLine() string {
	title := m.projectMeta.Title
	if title == "" {
		title = "conceptweave"
	}
	left := headerStyle.Render(title)
	right := dimStyle.Render(fmt.Sprintf("[%s] tab: switch view  /: search  q: quit", m.view))
	return left + "  " + right
}

func (m *Model) searchLine() string {
	if m.searching || m.search.Value() != "" {
		return searchStyle.Render("search: ") + m.search.View()
	}
	return dimStyle.Render("press / to search")
}

func (m *Model) statusLine() string {
	if m.statusMsg != "" {
		return statusStyle.Render(m.statusMsg)
	}
	if m.visible == nil {
		return ""
	}
	settled := "settling"
	if m.engine.Settled() {
		settled = "settled"
	}
	return statusStyle.Render(fmt.Sprintf("%d concepts  %d relationships  layout %s",
		len(m.visible.Nodes), len(m.visible.Edges), settled))
}
