// Command parcc runs the precise-reference-counting pass over Core IR
// snapshots, standalone from any particular front end.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var rootCmd = &cobra.Command{
	Use:   "parcc",
	Short: "Precise automatic reference counting pass runner",
	Long:  `parcc runs the PARC pass over Core IR modules and reports or snapshots the result.`,
}

func main() {
	rootCmd.Version = versionString

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("trace", false, "render dup/drop trace spans")
	rootCmd.PersistentFlags().String("newtypes", "", "path to a parcc.toml newtype registry")
	rootCmd.PersistentFlags().Int("jobs", 0, "max concurrent files (0 = GOMAXPROCS)")
	runCmd.Flags().Bool("dry-run", false, "skip the PARC pass and report each module unchanged, regardless of PARC_ENABLE")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
