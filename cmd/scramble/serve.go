package main

import (
	"github.com/aretw0/scramble/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP control server",
	Long: `Runs the scrambler in the background and exposes it over HTTP:

  GET  /health, /info, /text, /metrics
  POST /text {"text": "...", "wait": true}
  POST /next
  GET  /events?topic=frames|settled  (Server-Sent Events)

With --redis, every frame is also published on the configured channel and the
last settled text is kept in Redis.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		return cli.Serve(ctx, cfg, cli.NewLogger(cfg.Log))
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Address to listen on (default :8080)")
	serveCmd.Flags().String("redis", "", "Redis address for frame broadcast and persistence")
}
