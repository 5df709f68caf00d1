package main

import (
	"github.com/aretw0/scramble/internal/cli"
	"github.com/aretw0/scramble/internal/presentation/interactive"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Run the full-screen interactive view",
	Long: `Opens a full-screen view of the cycling names.
Keys: n/space next name, e edit the text (ctrl+v pastes), y copy the text,
r restart the cycle, q quit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		// Logs would corrupt the alternate screen, so the view runs without them.
		return interactive.Run(ctx, interactive.Options{
			Names:     cfg.Names,
			FrameRate: cfg.FrameRate,
			Engine:    cfg.EngineOptions(),
			Sequencer: cfg.SequencerOptions(),
		})
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
