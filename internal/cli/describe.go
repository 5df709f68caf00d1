package cli

import (
	"fmt"
	"strings"

	"github.com/aretw0/scramble/internal/config"
	"github.com/aretw0/scramble/internal/presentation/graph"
	"github.com/aretw0/scramble/pkg/domain"
)

// Describe summarizes the effective configuration as Markdown.
func Describe(cfg config.Config) string {
	var b strings.Builder
	b.WriteString("# Scramble\n\n")

	b.WriteString("## Names\n\n")
	if len(cfg.Names) == 0 {
		b.WriteString("_None configured: the current text is shown without cycling._\n\n")
	}
	for i, n := range cfg.Names {
		fmt.Fprintf(&b, "%d. %s\n", i+1, n)
	}
	if len(cfg.Names) > 0 {
		b.WriteString("\n")
	}

	b.WriteString("## Timing\n\n")
	b.WriteString("| Setting | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Initial delay | %s |\n", cfg.Delay)
	fmt.Fprintf(&b, "| Hold | %s |\n", cfg.Hold)
	fmt.Fprintf(&b, "| Frame rate | %d fps |\n", cfg.FrameRate)
	fmt.Fprintf(&b, "| Longest reveal | %d frames |\n", cfg.StartSpread+cfg.SettleSpread-1)

	b.WriteString("\n## Glyphs\n\n")
	fmt.Fprintf(&b, "`%s` (%d glyphs, reroll chance %g)\n", cfg.Glyphs, len([]rune(cfg.Glyphs)), cfg.RerollChance)

	if cfg.Card != "" {
		fmt.Fprintf(&b, "\nCompanion card `%s` starts facing %s.\n", cfg.Card, domain.OrientationFront)
	}

	b.WriteString("\n## Cycle\n\n```mermaid\n")
	b.WriteString(graph.GenerateMermaid(cfg.Names, graph.Timing{Delay: cfg.Delay.Std(), Hold: cfg.Hold.Std()}, nil))
	b.WriteString("```\n")
	return b.String()
}
