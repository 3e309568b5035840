// Package insight talks to the external concept lookup service: short
// definitions and richer AI-generated insight bundles.
//
// Failures here are displayable states, never fatal: an absent definition is
// a valid response ("no definition available"), and success=false in an
// insight bundle is shown with a retry affordance. Nothing in this package
// can take down the graph surface.
package insight

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
)

// ContextData accompanies an insight request so the service can ground its
// answer in the project the concept came from.
type ContextData struct {
	Subject         string   `json:"subject"`
	Title           string   `json:"title"`
	RelatedConcepts []string `json:"related_concepts"`
}

// Definition is the short textual definition of a concept. An empty
// Definition with Success=true means the service had nothing to say, which
// is valid and displayable.
type Definition struct {
	ConceptName string `json:"concept_name"`
	Definition  string `json:"definition"`
	Success     bool   `json:"success"`
	Error       string `json:"error,omitempty"`
}

// Bundle is the structured insight response for a concept.
type Bundle struct {
	ConceptName     string   `json:"concept_name"`
	Overview        string   `json:"overview"`
	RelatedConcepts []string `json:"related_concepts"`
	Formulas        []string `json:"important_formulas"`
	Theorems        []string `json:"key_theorems"`
	Success         bool     `json:"success"`
	Error           string   `json:"error,omitempty"`
}

// Client is a thin HTTP client for the lookup service.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient substitutes the underlying HTTP client (tests).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpc = h }
}

// NewClient returns a client for the service at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type definitionRequest struct {
	ConceptName string `json:"concept_name"`
	ProjectID   string `json:"project_id"`
}

type insightsRequest struct {
	ConceptName string      `json:"concept_name"`
	ContextData ContextData `json:"context_data"`
}

// Definition fetches the short definition for a concept within a project.
func (c *Client) Definition(ctx context.Context, concept, projectID string) (Definition, error) {
	var out Definition
	err := c.post(ctx, "/concept-definition", definitionRequest{
		ConceptName: concept,
		ProjectID:   projectID,
	}, &out)
	if err != nil {
		return Definition{}, err
	}
	// Normalize: a missing name in the response still belongs to the
	// concept we asked about. Callers match results to the current
	// selection by this field.
	if out.ConceptName == "" {
		out.ConceptName = concept
	}
	return out, nil
}

// Insights fetches the structured insight bundle for a concept.
func (c *Client) Insights(ctx context.Context, concept string, data ContextData) (Bundle, error) {
	var out Bundle
	err := c.post(ctx, "/concept-insights", insightsRequest{
		ConceptName: concept,
		ContextData: data,
	}, &out)
	if err != nil {
		return Bundle{}, err
	}
	if out.ConceptName == "" {
		out.ConceptName = concept
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("lookup service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain a little of the body for the error message; the service
		// reports failures as JSON but we only need something readable.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("lookup service: status %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
