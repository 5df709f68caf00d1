package main

import (
	"fmt"
	"os"

	"github.com/aretw0/scramble/internal/cli"
	"github.com/aretw0/scramble/internal/presentation/film"
	"github.com/spf13/cobra"
)

var gifCmd = &cobra.Command{
	Use:   "gif [text]",
	Short: "Record the animation as an animated GIF",
	Long: `Plays one full cycle of the configured names on virtual time and encodes
every frame into a looping GIF. With a text argument, records a single reveal
from the first name to that text instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		out, _ := cmd.Flags().GetString("output")
		pngOut, _ := cmd.Flags().GetString("png")
		size, _ := cmd.Flags().GetFloat64("font-size")

		var text string
		if len(args) > 0 {
			text = args[0]
		}

		opts := film.DefaultOptions()
		if size > 0 {
			opts.FontSize = size
		}

		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create %s: %w", out, err)
		}
		defer f.Close()

		stills, err := cli.WriteFilm(f, cfg, text, opts)
		if err != nil {
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close %s: %w", out, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d frames to %s\n", len(stills), out)

		if pngOut != "" && len(stills) > 0 {
			pf, err := os.Create(pngOut)
			if err != nil {
				return fmt.Errorf("create %s: %w", pngOut, err)
			}
			defer pf.Close()
			if err := film.WritePNG(pf, stills[len(stills)-1].Frame, opts); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote final frame to %s\n", pngOut)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(gifCmd)
	gifCmd.Flags().StringP("output", "o", "scramble.gif", "GIF output path")
	gifCmd.Flags().String("png", "", "Also write the final frame as a PNG")
	gifCmd.Flags().Float64("font-size", 0, "Font size in points")
}
