package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abramovychmax-cpu/under-preassure-tyre/fitfile"
)

var decodeJSON bool

// decodeCmd represents the decode command
var decodeCmd = &cobra.Command{
	Use:   "decode <file.fit>",
	Short: "Decode a FIT file and print its contents",
	Long: `Decode a FIT file and print a per-message-type summary.

A trailing-CRC mismatch is reported on stderr but the messages decoded
before the check still print.

Example:
  tyrefit decode ride.fit --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read fit file: %w", err)
		}

		file, err := fitfile.Decode(data)
		if err != nil {
			var crcErr *fitfile.CRCMismatchError
			if !errors.As(err, &crcErr) || file == nil {
				return fmt.Errorf("decode fit file: %w", err)
			}
			fmt.Fprintf(os.Stderr, "warning: %v\n", crcErr)
		}

		if decodeJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			for _, m := range file.Messages {
				if err := enc.Encode(messageEnvelope(m)); err != nil {
					return err
				}
			}
			return nil
		}

		printSummary(file)
		return nil
	},
}

type envelope struct {
	Global  uint16          `json:"global"`
	Name    string          `json:"name"`
	Message fitfile.Message `json:"message"`
}

func messageEnvelope(m fitfile.Message) envelope {
	return envelope{Global: m.GlobalNumber(), Name: messageName(m), Message: m}
}

func messageName(m fitfile.Message) string {
	switch m.(type) {
	case fitfile.FileID:
		return "file_id"
	case fitfile.Record:
		return "record"
	case fitfile.Lap:
		return "lap"
	case fitfile.Session:
		return "session"
	case fitfile.Event:
		return "event"
	case fitfile.DeviceInfo:
		return "device_info"
	case fitfile.Activity:
		return "activity"
	default:
		return "unknown"
	}
}

func printSummary(file *fitfile.File) {
	counts := make(map[string]int)
	for _, m := range file.Messages {
		counts[messageName(m)]++
	}
	fmt.Printf("protocol version:  0x%02X\n", file.Header.ProtocolVersion)
	fmt.Printf("profile version:   %d\n", file.Header.ProfileVersion)
	fmt.Printf("data size:         %d bytes\n", file.Header.DataSize)
	fmt.Printf("messages:          %d\n", len(file.Messages))
	for _, name := range []string{"file_id", "device_info", "event", "record", "lap", "session", "activity", "unknown"} {
		if counts[name] > 0 {
			fmt.Printf("  %-13s %d\n", name+":", counts[name])
		}
	}
}

func init() {
	decodeCmd.Flags().BoolVar(&decodeJSON, "json", false, "Dump every message as JSON lines")
	rootCmd.AddCommand(decodeCmd)
}
