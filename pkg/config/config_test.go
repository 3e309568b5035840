package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.UI.DefaultView != "network" {
		t.Errorf("expected default view 'network', got %q", cfg.UI.DefaultView)
	}
	if !cfg.ParticlesEnabled() {
		t.Error("expected particles enabled by default")
	}
	if cfg.Insight.BaseURL != "http://localhost:8000" {
		t.Errorf("expected default insight base url, got %q", cfg.Insight.BaseURL)
	}
}

func TestLoadFrom_NonExistent(t *testing.T) {
	cfg, err := LoadFrom("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if cfg.UI.DefaultView != "network" {
		t.Errorf("expected default config, got view %q", cfg.UI.DefaultView)
	}
}

func TestLoadFrom_ValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
projects:
  - name: calculus
    path: ~/notes/calculus.json
  - name: other
    path: /absolute/path.json

ui:
  default_view: timeline
  particles: false

insight:
  base_url: http://insight.local:9000
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(cfg.Projects) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(cfg.Projects))
	}
	if cfg.Projects[0].Name != "calculus" {
		t.Errorf("expected project name 'calculus', got %q", cfg.Projects[0].Name)
	}
	// Path should have ~ expanded
	home, _ := os.UserHomeDir()
	expectedPath := filepath.Join(home, "notes/calculus.json")
	if cfg.Projects[0].Path != expectedPath {
		t.Errorf("expected expanded path %q, got %q", expectedPath, cfg.Projects[0].Path)
	}
	if cfg.Projects[1].Path != "/absolute/path.json" {
		t.Errorf("expected absolute path preserved, got %q", cfg.Projects[1].Path)
	}

	if cfg.UI.DefaultView != "timeline" {
		t.Errorf("expected default_view 'timeline', got %q", cfg.UI.DefaultView)
	}
	if cfg.ParticlesEnabled() {
		t.Error("expected particles disabled")
	}
	if cfg.Insight.BaseURL != "http://insight.local:9000" {
		t.Errorf("expected insight base url overridden, got %q", cfg.Insight.BaseURL)
	}
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(path, []byte("{{invalid yaml"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFrom(path)
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	particles := false
	cfg := Config{
		Projects: []Project{
			{Name: "proj1", Path: "/path/to/proj1.json"},
			{Name: "proj2", Path: "/path/to/proj2.json"},
		},
		UI: UIConfig{
			DefaultView: "timeline",
			Particles:   &particles,
		},
	}

	if err := SaveTo(cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Load after save failed: %v", err)
	}

	if len(loaded.Projects) != 2 {
		t.Errorf("expected 2 projects, got %d", len(loaded.Projects))
	}
	if loaded.Projects[0].Name != "proj1" {
		t.Errorf("expected 'proj1', got %q", loaded.Projects[0].Name)
	}
	if loaded.UI.DefaultView != "timeline" {
		t.Errorf("expected 'timeline', got %q", loaded.UI.DefaultView)
	}
	if loaded.ParticlesEnabled() {
		t.Error("expected particles disabled after round trip")
	}
}

func TestFindProject(t *testing.T) {
	cfg := Config{
		Projects: []Project{
			{Name: "alpha", Path: "/a"},
			{Name: "Beta", Path: "/b"},
		},
	}

	p := cfg.FindProject("alpha")
	if p == nil || p.Name != "alpha" {
		t.Error("expected to find 'alpha'")
	}

	// Case-insensitive
	p = cfg.FindProject("BETA")
	if p == nil || p.Name != "Beta" {
		t.Error("expected to find 'Beta' case-insensitively")
	}

	p = cfg.FindProject("nonexistent")
	if p != nil {
		t.Error("expected nil for nonexistent project")
	}
}

func TestRegisterProject(t *testing.T) {
	var cfg Config

	cfg.RegisterProject("calc", "/notes/calc.json")
	if len(cfg.Projects) != 1 {
		t.Fatalf("expected 1 project, got %d", len(cfg.Projects))
	}

	// Registering the same name updates the path.
	cfg.RegisterProject("CALC", "/notes/calc-v2.json")
	if len(cfg.Projects) != 1 {
		t.Fatalf("expected update not append, got %d projects", len(cfg.Projects))
	}
	if cfg.Projects[0].Path != "/notes/calc-v2.json" {
		t.Errorf("expected updated path, got %q", cfg.Projects[0].Path)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home dir")
	}

	tests := []struct {
		input    string
		expected string
	}{
		{"~/foo", filepath.Join(home, "foo")},
		{"~/", filepath.Join(home, "")},
		{"/absolute", "/absolute"},
		{"relative", "relative"},
	}

	for _, tt := range tests {
		got := expandHome(tt.input)
		if got != tt.expected {
			t.Errorf("expandHome(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestConfigDir_XDGOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	got := ConfigDir()
	expected := filepath.Join(dir, "cv")
	if got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

func TestDataDir_XDGOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)

	got := DataDir()
	expected := filepath.Join(dir, "cv")
	if got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
	if DefaultStorePath() != filepath.Join(dir, "cv", "projects.db") {
		t.Errorf("unexpected store path %q", DefaultStorePath())
	}
}
