package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abramovychmax-cpu/under-preassure-tyre/fitfile"
)

const testDoc = `
file_id:
  type: 4
  manufacturer: 1
  product: 2337
records:
  - time: 2024-11-09T13:20:00Z
    speed_mps: 3.34
    cadence: 77
    power: 180
  - time: 2024-11-09T13:20:01Z
    speed_mps: 3.40
    cadence: 78
    power: 182
`

func TestEncodeCommand(t *testing.T) {
	tmpDir := t.TempDir()
	docPath := filepath.Join(tmpDir, "ride.yaml")
	fitPath := filepath.Join(tmpDir, "ride.fit")
	require.NoError(t, os.WriteFile(docPath, []byte(testDoc), 0o644))

	rootCmd.SetArgs([]string{"encode", docPath, fitPath})
	require.NoError(t, rootCmd.Execute())

	data, err := os.ReadFile(fitPath)
	require.NoError(t, err)
	file, err := fitfile.Decode(data)
	require.NoError(t, err)

	records := 0
	for _, m := range file.Messages {
		if _, ok := m.(fitfile.Record); ok {
			records++
		}
	}
	assert.Equal(t, 2, records)
	_, ok := file.Messages[0].(fitfile.FileID)
	assert.True(t, ok, "first message must be file_id")
}

func TestExportCommand(t *testing.T) {
	tmpDir := t.TempDir()
	docPath := filepath.Join(tmpDir, "ride.yaml")
	fitPath := filepath.Join(tmpDir, "ride.fit")
	outDir := filepath.Join(tmpDir, "bundle")
	require.NoError(t, os.WriteFile(docPath, []byte(testDoc), 0o644))

	rootCmd.SetArgs([]string{"encode", docPath, fitPath})
	require.NoError(t, rootCmd.Execute())

	rootCmd.SetArgs([]string{"export", fitPath, "--out", outDir, "--format", "csv"})
	require.NoError(t, rootCmd.Execute())

	assert.FileExists(t, filepath.Join(outDir, "manifest.json"))
	assert.FileExists(t, filepath.Join(outDir, "sensor_records.jsonl"))
	assert.FileExists(t, filepath.Join(outDir, "canonical_samples.csv"))
}

func TestEncodeCommandRejectsBadDocument(t *testing.T) {
	tmpDir := t.TempDir()
	docPath := filepath.Join(tmpDir, "empty.yaml")
	require.NoError(t, os.WriteFile(docPath, []byte("records: []\n"), 0o644))

	rootCmd.SetArgs([]string{"encode", docPath, filepath.Join(tmpDir, "out.fit")})
	require.Error(t, rootCmd.Execute())
}
