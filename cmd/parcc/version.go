package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"surge/internal/version"
)

const versionString = "0.1.0-dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show parcc build fingerprints",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "parcc %s (surge toolchain %s)\n", versionString, version.Version)
		return nil
	},
}
