// Package export turns the canonical concept graph into study artifacts:
// a hierarchy outline, flashcard pairs, and a study guide. All transforms
// are pure and synchronous; they read the graph and return text.
package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vanderheijden86/conceptweave/pkg/model"
)

// Format identifies an export transform.
type Format string

const (
	FormatOutline    Format = "outline"
	FormatFlashcards Format = "flashcards"
	FormatStudyGuide Format = "study-guide"
)

// Formats lists every supported format in wizard display order.
var Formats = []Format{FormatOutline, FormatFlashcards, FormatStudyGuide}

// ParseFormat maps a user-supplied name onto a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatOutline:
		return FormatOutline, nil
	case FormatFlashcards:
		return FormatFlashcards, nil
	case FormatStudyGuide:
		return FormatStudyGuide, nil
	}
	return "", fmt.Errorf("unknown export format: %q", s)
}

// Render runs the transform for format against the graph.
func Render(format Format, g *model.Graph, title string) (string, error) {
	if g.IsEmpty() {
		return "", fmt.Errorf("nothing to export: graph is empty")
	}
	switch format {
	case FormatOutline:
		return Outline(g, title), nil
	case FormatFlashcards:
		return Flashcards(g, title), nil
	case FormatStudyGuide:
		return StudyGuide(g, title), nil
	}
	return "", fmt.Errorf("unknown export format: %q", format)
}

// byImportance returns the nodes sorted by importance descending, name
// ascending for equal scores. Canonical order is load order; exports want
// the hubs first.
func byImportance(g *model.Graph) []model.ConceptNode {
	nodes := make([]model.ConceptNode, len(g.Nodes))
	copy(nodes, g.Nodes)
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].Importance != nodes[j].Importance {
			return nodes[i].Importance > nodes[j].Importance
		}
		return nodes[i].DisplayName < nodes[j].DisplayName
	})
	return nodes
}

// Outline renders a markdown hierarchy: core concepts (importance >= 0.6)
// as top-level sections with their neighbors nested, remaining concepts in
// a flat list.
func Outline(g *model.Graph, title string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", headingOr(title, "Concept Outline"))

	covered := make(map[string]bool)
	var supporting []model.ConceptNode

	for _, node := range byImportance(g) {
		if node.Importance < 0.6 {
			supporting = append(supporting, node)
			continue
		}
		fmt.Fprintf(&sb, "## %s\n", node.DisplayName)
		if node.Notes != nil {
			fmt.Fprintf(&sb, "> %s\n", *node.Notes)
		}
		for _, id := range g.Neighbors(node.ID) {
			fmt.Fprintf(&sb, "- %s\n", id)
			covered[id] = true
		}
		sb.WriteString("\n")
		covered[node.ID] = true
	}

	var rest []string
	for _, node := range supporting {
		if !covered[node.ID] {
			rest = append(rest, node.DisplayName)
		}
	}
	if len(rest) > 0 {
		sb.WriteString("## Other Concepts\n")
		for _, name := range rest {
			fmt.Fprintf(&sb, "- %s\n", name)
		}
	}
	return sb.String()
}

// Flashcards renders front/back pairs: the concept name on the front, its
// connections and notes on the back. One card per node, hubs first.
func Flashcards(g *model.Graph, title string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s — Flashcards\n\n", headingOr(title, "Concepts"))

	for i, node := range byImportance(g) {
		fmt.Fprintf(&sb, "Card %d\n", i+1)
		fmt.Fprintf(&sb, "Q: %s\n", node.DisplayName)
		neighbors := g.Neighbors(node.ID)
		if len(neighbors) > 0 {
			fmt.Fprintf(&sb, "A: Related to %s.\n", strings.Join(neighbors, ", "))
		} else {
			sb.WriteString("A: Standalone concept.\n")
		}
		if node.Notes != nil {
			fmt.Fprintf(&sb, "   Notes: %s\n", *node.Notes)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// StudyGuide renders sections per concept ordered by importance, each with
// connection count, importance percentage, relationships and annotations.
func StudyGuide(g *model.Graph, title string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s — Study Guide\n\n", headingOr(title, "Concepts"))
	fmt.Fprintf(&sb, "%d concepts, %d relationships.\n\n", len(g.Nodes), len(g.Edges))

	for _, node := range byImportance(g) {
		fmt.Fprintf(&sb, "## %s\n", node.DisplayName)
		fmt.Fprintf(&sb, "Connections: %d | Importance: %.0f%%\n",
			node.ConnectionCount, node.Importance*100)
		if node.Confidence != nil {
			fmt.Fprintf(&sb, "Mastery: %d/5\n", *node.Confidence)
		}
		if node.Notes != nil {
			fmt.Fprintf(&sb, "\n%s\n", *node.Notes)
		}
		var leadsTo, buildsOn []string
		for _, e := range g.Edges {
			switch node.ID {
			case e.SourceID:
				leadsTo = append(leadsTo, e.TargetID)
			case e.TargetID:
				buildsOn = append(buildsOn, e.SourceID)
			}
		}
		if len(buildsOn) > 0 {
			fmt.Fprintf(&sb, "\nBuilds on: %s\n", strings.Join(buildsOn, ", "))
		}
		if len(leadsTo) > 0 {
			fmt.Fprintf(&sb, "Leads to: %s\n", strings.Join(leadsTo, ", "))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func headingOr(title, fallback string) string {
	if strings.TrimSpace(title) == "" {
		return fallback
	}
	return title
}
