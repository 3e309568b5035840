package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/conceptweave/pkg/graph"
	"github.com/vanderheijden86/conceptweave/pkg/insight"
	"github.com/vanderheijden86/conceptweave/pkg/loader"
	"github.com/vanderheijden86/conceptweave/pkg/model"
	"github.com/vanderheijden86/conceptweave/pkg/watcher"
)

// Tick cadences. Particles advance on wall clock regardless of simulation
// state; the simulation ticks only until it settles.
const (
	particleTickInterval = 50 * time.Millisecond
	simTickInterval      = 33 * time.Millisecond
	fetchTimeout         = 30 * time.Second
)

type particleTickMsg time.Time

type simTickMsg time.Time

type fileChangedMsg struct{}

type projectLoadedMsg struct {
	project *loader.Project
	graph   *model.Graph
	err     error
}

// definitionMsg and insightsMsg carry the concept name they were fetched
// for; results for a concept that is no longer selected are discarded.
type definitionMsg struct {
	concept string
	def     insight.Definition
	err     error
}

type insightsMsg struct {
	concept string
	bundle  insight.Bundle
	err     error
}

type annotationSavedMsg struct {
	concept string
	err     error
}

func particleTickCmd() tea.Cmd {
	return tea.Tick(particleTickInterval, func(t time.Time) tea.Msg {
		return particleTickMsg(t)
	})
}

func simTickCmd() tea.Cmd {
	return tea.Tick(simTickInterval, func(t time.Time) tea.Msg {
		return simTickMsg(t)
	})
}

func loadProjectCmd(path string) tea.Cmd {
	return func() tea.Msg {
		p, err := loader.Load(path)
		if err != nil {
			return projectLoadedMsg{err: err}
		}
		g, err := graph.Build(p.Doc)
		if err != nil {
			return projectLoadedMsg{err: err}
		}
		return projectLoadedMsg{project: p, graph: g}
	}
}

func watchChangedCmd(w *watcher.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		<-w.Changed()
		return fileChangedMsg{}
	}
}

func fetchDefinitionCmd(client *insight.Client, concept, projectID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		def, err := client.Definition(ctx, concept, projectID)
		return definitionMsg{concept: concept, def: def, err: err}
	}
}

func fetchInsightsCmd(client *insight.Client, concept string, data insight.ContextData) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		bundle, err := client.Insights(ctx, concept, data)
		return insightsMsg{concept: concept, bundle: bundle, err: err}
	}
}
