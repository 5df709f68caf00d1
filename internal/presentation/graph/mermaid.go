// Package graph draws the name cycle as a Mermaid flowchart.
package graph

import (
	"fmt"
	"strings"
	"time"
)

// Timing labels the edges of the cycle. Zero durations are left unlabeled.
type Timing struct {
	Delay time.Duration
	Hold  time.Duration
}

// GraphOverlay contains dynamic state data to visualize on the graph.
type GraphOverlay struct {
	// Current is the index of the displayed name.
	Current int
	// Animating marks the current name as mid-transition.
	Animating bool
}

// GenerateMermaid produces a Mermaid flowchart of one activation:
// - Activation: ((Circle))
// - Name: [Rectangle]
// - Rest after the wrap: (((Double circle)))
// Hold edges are solid; the wrap back to the first name is dotted.
func GenerateMermaid(names []string, timing Timing, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	sb.WriteString("    activate((\"activate\"))\n")

	if len(names) == 0 {
		sb.WriteString("    activate --> current[\"current text\"]\n")
		return sb.String()
	}

	for i, name := range names {
		fmt.Fprintf(&sb, "    %s[\"%s\"]\n", nodeID(i), escapeLabel(name))
	}
	sb.WriteString("    activate --> " + nodeID(0) + "\n")

	if len(names) > 1 {
		for i := 1; i < len(names); i++ {
			label := "hold"
			if i == 1 {
				label = "delay"
			}
			fmt.Fprintf(&sb, "    %s %s %s\n", nodeID(i-1), edge(label, timing.durationFor(label)), nodeID(i))
		}
		sb.WriteString("    rest(((\"rest\")))\n")
		fmt.Fprintf(&sb, "    %s -. \"hold, wrap\" .-> rest\n", nodeID(len(names)-1))
		fmt.Fprintf(&sb, "    rest -.- %s\n", nodeID(0))
	}

	if overlay != nil && overlay.Current >= 0 && overlay.Current < len(names) {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		sb.WriteString("    classDef animating fill:#e1f5fe,stroke:#01579b,stroke-width:4px,stroke-dasharray:4,color:#000;\n")
		class := "current"
		if overlay.Animating {
			class = "animating"
		}
		fmt.Fprintf(&sb, "    class %s %s;\n", nodeID(overlay.Current), class)
	}

	return sb.String()
}

func (t Timing) durationFor(label string) time.Duration {
	if label == "delay" {
		return t.Delay
	}
	return t.Hold
}

func edge(label string, d time.Duration) string {
	if d <= 0 {
		return "-->"
	}
	return fmt.Sprintf("-- \"%s %s\" -->", label, d)
}

func nodeID(i int) string {
	return fmt.Sprintf("name_%d", i)
}

// escapeLabel keeps a name from closing the quoted Mermaid label.
func escapeLabel(s string) string {
	s = strings.ReplaceAll(s, "\"", "'")
	return strings.ReplaceAll(s, "\n", " ")
}
