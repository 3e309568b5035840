package export

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/conceptweave/pkg/graph"
	"github.com/vanderheijden86/conceptweave/pkg/model"
)

func testGraph(t *testing.T) *model.Graph {
	t.Helper()
	notes := "fundamental"
	g := graph.FromRecords([]model.RawConceptRecord{
		{Name: "Limit", Outgoing: []string{"Derivative", "Continuity"}, Notes: notes},
		{Name: "Derivative", Outgoing: []string{"Integral"}},
		{Name: "Continuity"},
		{Name: "Integral"},
		{Name: "Notation"},
	})
	return g
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
		ok    bool
	}{
		{"outline", FormatOutline, true},
		{"Flashcards", FormatFlashcards, true},
		{" study-guide ", FormatStudyGuide, true},
		{"pdf", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		if tt.ok && (err != nil || got != tt.want) {
			t.Errorf("ParseFormat(%q) = %v, %v, want %v", tt.input, got, err, tt.want)
		}
		if !tt.ok && err == nil {
			t.Errorf("ParseFormat(%q) expected error", tt.input)
		}
	}
}

func TestOutlineStructure(t *testing.T) {
	out := Outline(testGraph(t), "Calculus")

	if !strings.HasPrefix(out, "# Calculus\n") {
		t.Errorf("expected title heading, got %q", firstLine(out))
	}
	// Limit is the hub: importance 1.0, gets its own section.
	if !strings.Contains(out, "## Limit\n") {
		t.Error("expected Limit section")
	}
	// Its notes appear as a blockquote.
	if !strings.Contains(out, "> fundamental") {
		t.Error("expected notes blockquote")
	}
	// Neighbors are nested under it.
	if !strings.Contains(out, "- Derivative\n") {
		t.Error("expected Derivative nested under Limit")
	}
	// The isolated concept falls into the flat list.
	if !strings.Contains(out, "## Other Concepts") || !strings.Contains(out, "- Notation\n") {
		t.Error("expected Notation under Other Concepts")
	}
}

func TestFlashcardsContent(t *testing.T) {
	out := Flashcards(testGraph(t), "Calculus")

	if !strings.Contains(out, "Q: Limit\n") {
		t.Error("expected a card for Limit")
	}
	if !strings.Contains(out, "A: Related to ") {
		t.Error("expected connected answer text")
	}
	if !strings.Contains(out, "A: Standalone concept.") {
		t.Error("expected standalone answer for isolated concept")
	}
	if !strings.Contains(out, "Notes: fundamental") {
		t.Error("expected notes carried onto card")
	}
	// Hubs come first; names break importance ties.
	if !strings.Contains(out, "Card 1\nQ: Derivative") {
		t.Error("expected Derivative as first card")
	}
}

func TestStudyGuideContent(t *testing.T) {
	out := StudyGuide(testGraph(t), "Calculus")

	if !strings.Contains(out, "5 concepts, 3 relationships.") {
		t.Errorf("expected summary line, got %q", out)
	}
	if !strings.Contains(out, "## Derivative\nConnections: 2 | Importance: 100%") {
		t.Error("expected Derivative stats")
	}
	if !strings.Contains(out, "Builds on: Limit") {
		t.Error("expected Derivative builds on Limit")
	}
	if !strings.Contains(out, "Leads to: Integral") {
		t.Error("expected Derivative leads to Integral")
	}
}

func TestStudyGuideConfidence(t *testing.T) {
	conf := 3
	g := graph.FromRecords([]model.RawConceptRecord{
		{Name: "Limit", Confidence: &conf},
	})
	out := StudyGuide(g, "")
	if !strings.Contains(out, "Mastery: 3/5") {
		t.Error("expected mastery line for rated concept")
	}
}

func TestRenderEmptyGraph(t *testing.T) {
	for _, f := range Formats {
		if _, err := Render(f, &model.Graph{}, "x"); err == nil {
			t.Errorf("expected error rendering %s for empty graph", f)
		}
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	if _, err := Render(Format("pdf"), testGraph(t), "x"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestWriteFileCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.md")
	if err := WriteFile(path, "content"); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Calculus I", "Calculus-I"},
		{"a/b\\c", "abc"},
		{"", "concepts"},
		{"///", "concepts"},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.input); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
