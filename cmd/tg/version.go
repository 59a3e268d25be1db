package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is stamped at build time via -ldflags.
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the tg version",
	RunE: func(_ *cobra.Command, _ []string) error {
		if jsonOutput {
			return outputJSON(map[string]string{"version": version})
		}
		fmt.Printf("tg version %s\n", version)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
