package main

import (
	"os"
	"strings"

	"github.com/aretw0/scramble"
	"github.com/aretw0/scramble/internal/cli"
	"github.com/aretw0/scramble/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [text]",
	Short: "Animate names on the terminal",
	Long: `Cycles through the configured names on a single terminal line.
With a text argument, reveals that text once and exits. When stdout is not a
terminal, only settled texts are printed, one per line.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		once, _ := cmd.Flags().GetBool("once")
		quiet, _ := cmd.Flags().GetBool("quiet")

		interactive := tui.IsTerminal(os.Stdout)
		if interactive && !quiet {
			tui.PrintBanner(os.Stdout, scramble.Version)
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		opts := cli.RunOptions{
			Output:      os.Stdout,
			Logger:      cli.NewLogger(cfg.Log),
			Once:        once,
			Interactive: interactive,
		}
		if len(args) > 0 {
			opts.Text = strings.TrimSpace(args[0])
		}
		return cli.Run(ctx, cfg, opts)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Bool("once", false, "Exit after one full cycle")
	runCmd.Flags().BoolP("quiet", "q", false, "Do not print the banner")
}
