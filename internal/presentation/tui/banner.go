package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the ASCII art banner followed by the version.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	p := out.Profile
	lines := []struct {
		text  string
		color string
	}{
		{"  ___  ___ _ __ __ _ _ __ ___ | |__ | | ___ ", "#34d399"},
		{" / __|/ __| '__/ _` | '_ ` _ \\| '_ \\| |/ _ \\", "#2dd4bf"},
		{" \\__ \\ (__| | | (_| | | | | | | |_) | |  __/", "#22d3ee"},
		{" |___/\\___|_|  \\__,_|_| |_| |_|_.__/|_|\\___|", "#38bdf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, p.String(l.text).Foreground(p.Color(l.color)))
	}
	if v := strings.TrimSpace(version); v != "" {
		fmt.Fprintln(w, p.String("  v"+v).Faint())
	}
	fmt.Fprintln(w)
}
