package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/scramble"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of scramble",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "scramble version %s\n", strings.TrimSpace(scramble.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
