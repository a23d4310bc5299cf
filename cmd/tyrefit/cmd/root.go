package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tyrefit",
	Short: "Decode, encode and export FIT activity files",
	Long: `tyrefit works with Garmin FIT activity files: it decodes them into
readable summaries, encodes YAML/JSON activity documents back into FIT
binaries, and exports consolidated sensor-record bundles.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
