// Package loader reads concept project files from disk. A project file is
// JSON in one of two forms: a prebuilt {nodes, edges} document, or the
// extraction pipeline's concept records with incoming/outgoing neighbor
// lists. Either form may be wrapped in a project envelope carrying id, title
// and subject, or stand alone as a bare array of records.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/conceptweave/pkg/graph"
	"github.com/vanderheijden86/conceptweave/pkg/model"
)

// Project is a decoded project file: metadata plus the input document for
// the graph builder.
type Project struct {
	Meta    model.Project
	Subject string
	Doc     graph.Document
}

type envelope struct {
	ProjectID string                   `json:"project_id"`
	Title     string                   `json:"title"`
	Subject   string                   `json:"subject"`
	Nodes     []model.ConceptNode      `json:"nodes"`
	Edges     []model.ConceptEdge      `json:"edges"`
	Concepts  []model.RawConceptRecord `json:"concepts"`
	CreatedAt time.Time                `json:"created_at"`
}

// Load reads and parses the project file at path. Missing metadata is filled
// from the filename.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read project file: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if p.Meta.ID == "" {
		p.Meta.ID = base
	}
	if p.Meta.Title == "" {
		p.Meta.Title = base
	}
	return p, nil
}

// Parse decodes project JSON in any accepted form.
func Parse(data []byte) (*Project, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, fmt.Errorf("empty project file")
	}

	// Bare array form: a list of concept records with no envelope.
	if strings.HasPrefix(trimmed, "[") {
		var records []model.RawConceptRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("decode concept records: %w", err)
		}
		return &Project{Doc: graph.Document{Records: records}}, nil
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode project: %w", err)
	}

	p := &Project{
		Meta: model.Project{
			ID:        env.ProjectID,
			Title:     env.Title,
			CreatedAt: env.CreatedAt,
		},
		Subject: env.Subject,
	}

	// Records win over a prebuilt section when both are present; they are
	// the pipeline's source form and a prebuilt section is derived output.
	switch {
	case len(env.Concepts) > 0:
		p.Doc.Records = env.Concepts
	case len(env.Nodes) > 0 || len(env.Edges) > 0:
		p.Doc.Nodes = env.Nodes
		p.Doc.Edges = env.Edges
	}
	return p, nil
}
