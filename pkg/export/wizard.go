package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/vanderheijden86/conceptweave/pkg/model"
)

// WizardResult is the collected wizard selection.
type WizardResult struct {
	Format     Format
	OutputPath string
}

// isTerminal checks if stdin is connected to a terminal
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// newForm creates a form with appropriate settings based on TTY detection
func newForm(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
	if !isTerminal() {
		form = form.WithAccessible(true)
	}
	return form
}

// RunWizard interactively picks an export format and destination, then
// writes the rendered artifact. projectTitle seeds the suggested filename.
func RunWizard(g *model.Graph, projectTitle string) (*WizardResult, error) {
	if g.IsEmpty() {
		return nil, fmt.Errorf("nothing to export: graph is empty")
	}

	format := FormatOutline
	form := newForm(
		huh.NewGroup(
			huh.NewSelect[Format]().
				Title("Export format").
				Options(
					huh.NewOption("Outline (markdown hierarchy)", FormatOutline),
					huh.NewOption("Flashcards (question/answer pairs)", FormatFlashcards),
					huh.NewOption("Study guide (per-concept sections)", FormatStudyGuide),
				).
				Value(&format),
		),
	)
	if err := form.Run(); err != nil {
		return nil, err
	}

	suggested := suggestPath(projectTitle, format)
	outputPath := suggested
	pathForm := newForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Output file").
				Value(&outputPath).
				Placeholder(suggested),
		),
	)
	if err := pathForm.Run(); err != nil {
		return nil, err
	}
	if outputPath == "" {
		outputPath = suggested
	}

	content, err := Render(format, g, projectTitle)
	if err != nil {
		return nil, err
	}
	if err := WriteFile(outputPath, content); err != nil {
		return nil, err
	}

	return &WizardResult{Format: format, OutputPath: outputPath}, nil
}

// WriteFile writes a rendered artifact, creating parent directories.
func WriteFile(path, content string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	return nil
}

func suggestPath(title string, format Format) string {
	base := "concepts"
	if title != "" {
		base = sanitizeFilename(title)
	}
	return fmt.Sprintf("%s-%s.md", base, format)
}

func sanitizeFilename(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			out = append(out, r)
		case r == ' ', r == '-', r == '_':
			out = append(out, '-')
		}
	}
	if len(out) == 0 {
		return "concepts"
	}
	return string(out)
}
