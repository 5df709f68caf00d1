package main

import (
	"fmt"
	"os"

	"github.com/aretw0/scramble/internal/cli"
	"github.com/aretw0/scramble/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Describe the effective animation settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		md := cli.Describe(cfg)

		raw, _ := cmd.Flags().GetBool("raw")
		if raw || !tui.IsTerminal(os.Stdout) {
			fmt.Fprint(cmd.OutOrStdout(), md)
			return nil
		}

		render, err := tui.NewRenderer(tui.Width(os.Stdout))
		if err != nil {
			return fmt.Errorf("create renderer: %w", err)
		}
		out, err := render(md)
		if err != nil {
			return fmt.Errorf("render: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().Bool("raw", false, "Print Markdown without styling")
}
