package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abramovychmax-cpu/under-preassure-tyre/export"
)

var (
	exportOut        string
	exportFormat     string
	exportOverwrite  bool
	exportCopySource bool
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <file.fit>",
	Short: "Export a consolidated sensor-record bundle",
	Long: `Export a FIT file as a bundle: manifest.json, sensor_records.jsonl
and canonical samples in parquet or CSV.

Example:
  tyrefit export ride.fit --out ride_export --format csv`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outDir := exportOut
		if strings.TrimSpace(outDir) == "" {
			outDir = strings.TrimSuffix(args[0], ".fit") + "_export"
		}

		result, err := export.Export(args[0], outDir, export.Options{
			Overwrite:  exportOverwrite,
			CopySource: exportCopySource,
			Format:     exportFormat,
		})
		if err != nil {
			return err
		}

		fmt.Printf("output dir:         %s\n", result.OutputDir)
		fmt.Printf("manifest:           %s\n", result.ManifestPath)
		fmt.Printf("sensor records:     %s (%d rows)\n", result.SensorRecordsPath, result.RecordCount)
		fmt.Printf("canonical samples:  %s\n", result.CanonicalSamplesPath)
		if result.SourceCopyPath != "" {
			fmt.Printf("source copy:        %s\n", result.SourceCopyPath)
		}
		if !result.CRCValid {
			fmt.Fprintln(os.Stderr, "warning: source file CRC mismatch, see manifest.json")
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output directory (default <input>_export)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "parquet", "Canonical sample format: parquet|csv")
	exportCmd.Flags().BoolVar(&exportOverwrite, "overwrite", true, "Allow writing into non-empty output directories")
	exportCmd.Flags().BoolVar(&exportCopySource, "copy-source", false, "Copy the input FIT file into the bundle")
	rootCmd.AddCommand(exportCmd)
}
