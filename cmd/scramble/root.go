package main

import (
	"fmt"
	"os"

	"github.com/aretw0/scramble/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "scramble",
	Short: "Scramble is a text reveal animation engine",
	Long: `Scramble animates text changes: every character flickers through random
glyphs before settling on its new value, and a list of names can be cycled
automatically in a terminal, over HTTP, over MCP or into a GIF.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	f := rootCmd.PersistentFlags()
	f.StringP("config", "c", "", "Config file (default ./"+config.DefaultFile+")")
	f.StringSlice("names", nil, "Names to cycle through, comma separated")
	f.String("card", "", "Companion card id flipped on every advance")
	f.String("delay", "", "Pause before the first automatic transition (e.g. 500ms or 500)")
	f.String("hold", "", "Pause on each settled name (e.g. 1.8s or 1800)")
	f.String("glyphs", "", "Scramble alphabet")
	f.Int("fps", 0, "Frames per second")
	f.Uint64("seed", 0, "Seed for reproducible animations (0 is random)")
	f.String("markup", "", "Glyph decoration: ansi, html or plain")
	f.String("state-dir", "", "Directory persisting the last settled text")
	f.String("db", "", "SQLite database persisting the last settled text and its history")
	f.String("log-level", "", "Log level: debug, info, warn, error")
	f.String("log-format", "", "Log format: text or json")
}

// loadConfig resolves the configuration for cmd. Flags the user set
// override the file and the environment.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path, cmd.Flags())
}
