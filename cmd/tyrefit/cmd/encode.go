package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abramovychmax-cpu/under-preassure-tyre/export"
	"github.com/abramovychmax-cpu/under-preassure-tyre/fitfile"
)

// encodeCmd represents the encode command
var encodeCmd = &cobra.Command{
	Use:   "encode <activity.yaml|json> <out.fit>",
	Short: "Encode an activity document into a FIT file",
	Long: `Encode a YAML or JSON activity document into a FIT binary.

Example:
  tyrefit encode ride.yaml ride.fit`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := export.LoadDocument(args[0])
		if err != nil {
			return err
		}
		msgs, err := doc.Messages()
		if err != nil {
			return err
		}
		data, err := fitfile.Encode(msgs)
		if err != nil {
			return fmt.Errorf("encode fit file: %w", err)
		}
		if err := os.WriteFile(args[1], data, 0o644); err != nil {
			return fmt.Errorf("write fit file: %w", err)
		}
		fmt.Printf("wrote %s (%d messages, %d bytes)\n", args[1], len(msgs), len(data))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(encodeCmd)
}
