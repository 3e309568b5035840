// Package config handles loading and saving cv configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config: ~/.config/cv/config.yaml
//   - Data:   ~/.local/share/cv/ (project database)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Project represents a registered project file in the config.
type Project struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// UIConfig holds view preference settings.
type UIConfig struct {
	DefaultView string `yaml:"default_view,omitempty"` // network, timeline
	Particles   *bool  `yaml:"particles,omitempty"`    // flow particle animation
	Palette     string `yaml:"palette,omitempty"`      // reserved for alternate palettes
}

// InsightConfig points at the external concept lookup service.
type InsightConfig struct {
	BaseURL string `yaml:"base_url,omitempty"`
}

// Config is the top-level configuration for cv.
type Config struct {
	Projects []Project     `yaml:"projects,omitempty"`
	UI       UIConfig      `yaml:"ui,omitempty"`
	Insight  InsightConfig `yaml:"insight,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	particles := true
	return Config{
		UI: UIConfig{
			DefaultView: "network",
			Particles:   &particles,
		},
		Insight: InsightConfig{
			BaseURL: "http://localhost:8000",
		},
	}
}

// ConfigDir returns the XDG config directory for cv.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "cv")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "cv")
}

// DataDir returns the XDG data directory for cv.
func DataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "cv")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", "cv")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// DefaultStorePath returns the default project database location.
func DefaultStorePath() string {
	dir := DataDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "projects.db")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	// Expand ~ in project paths
	for i := range cfg.Projects {
		cfg.Projects[i].Path = expandHome(cfg.Projects[i].Path)
	}

	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// FindProject returns the registered project with the given name, or nil.
func (c Config) FindProject(name string) *Project {
	for i := range c.Projects {
		if strings.EqualFold(c.Projects[i].Name, name) {
			return &c.Projects[i]
		}
	}
	return nil
}

// RegisterProject adds or updates a registered project by name.
func (c *Config) RegisterProject(name, path string) {
	for i := range c.Projects {
		if strings.EqualFold(c.Projects[i].Name, name) {
			c.Projects[i].Path = path
			return
		}
	}
	c.Projects = append(c.Projects, Project{Name: name, Path: path})
}

// ParticlesEnabled reports whether flow particle animation is on. Defaults
// to on when unset.
func (c Config) ParticlesEnabled() bool {
	if c.UI.Particles == nil {
		return true
	}
	return *c.UI.Particles
}

// ResolvedPath returns the project path with ~ expanded.
func (p Project) ResolvedPath() string {
	return expandHome(p.Path)
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
