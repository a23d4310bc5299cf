package export

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/abramovychmax-cpu/under-preassure-tyre/fitfile"
)

// Export decodes a FIT file and writes a bundle into outDir:
//
//   - manifest.json
//   - sensor_records.jsonl
//   - canonical_samples.parquet (or .csv)
//   - source.fit (optional copy)
//
// A trailing-CRC mismatch is not fatal: the decoded messages are still
// exported and the manifest records the failure.
func Export(inputPath, outDir string, opts Options) (*Result, error) {
	if strings.TrimSpace(inputPath) == "" {
		return nil, fmt.Errorf("input path is required")
	}
	if strings.TrimSpace(outDir) == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "parquet"
	}
	if format != "parquet" && format != "csv" {
		return nil, fmt.Errorf("unsupported format %q (expected parquet|csv)", format)
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, fmt.Errorf("read fit file: %w", err)
	}
	sum := sha256.Sum256(data)

	file, decErr := fitfile.Decode(data)
	crcValid := true
	crcMessage := ""
	if decErr != nil {
		var crcErr *fitfile.CRCMismatchError
		if !errors.As(decErr, &crcErr) || file == nil {
			return nil, fmt.Errorf("decode fit file: %w", decErr)
		}
		crcValid = false
		crcMessage = crcErr.Error()
	}

	if err := ensureOutputDir(outDir, opts.Overwrite); err != nil {
		return nil, err
	}

	rows := Consolidate(file.Messages)
	recordsPath := filepath.Join(outDir, "sensor_records.jsonl")
	if err := writeJSONL(recordsPath, rows); err != nil {
		return nil, fmt.Errorf("write sensor_records.jsonl: %w", err)
	}

	canonicalPath := filepath.Join(outDir, "canonical_samples."+format)
	switch format {
	case "csv":
		err = writeSensorCSV(canonicalPath, rows)
	case "parquet":
		err = writeSensorParquet(canonicalPath, rows)
	}
	if err != nil {
		return nil, fmt.Errorf("write canonical samples: %w", err)
	}

	lapCount := 0
	for _, m := range file.Messages {
		if _, ok := m.(fitfile.Lap); ok {
			lapCount++
		}
	}
	manifest := Manifest{
		FormatVersion:     FormatVersion,
		GeneratedAt:       time.Now().UTC(),
		SourceFile:        filepath.Base(inputPath),
		SourceSHA256:      hex.EncodeToString(sum[:]),
		SourceSizeBytes:   int64(len(data)),
		ProtocolVersion:   file.Header.ProtocolVersion,
		ProfileVersion:    file.Header.ProfileVersion,
		DataSizeBytes:     file.Header.DataSize,
		CRCValid:          crcValid,
		CRCError:          crcMessage,
		MessageCount:      len(file.Messages),
		RecordCount:       len(rows),
		LapCount:          lapCount,
		SensorRecordsPath: filepath.Base(recordsPath),
		CanonicalPath:     filepath.Base(canonicalPath),
	}
	manifestPath := filepath.Join(outDir, "manifest.json")
	if err := writeJSON(manifestPath, manifest); err != nil {
		return nil, fmt.Errorf("write manifest.json: %w", err)
	}

	sourceCopyPath := ""
	if opts.CopySource {
		sourceCopyPath = filepath.Join(outDir, "source.fit")
		if err := copyFile(inputPath, sourceCopyPath); err != nil {
			return nil, fmt.Errorf("copy source fit file: %w", err)
		}
	}

	return &Result{
		OutputDir:            outDir,
		ManifestPath:         manifestPath,
		SensorRecordsPath:    recordsPath,
		CanonicalSamplesPath: canonicalPath,
		SourceCopyPath:       sourceCopyPath,
		RecordCount:          len(rows),
		MessageCount:         len(file.Messages),
		CRCValid:             crcValid,
	}, nil
}

func ensureOutputDir(path string, overwrite bool) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("read output directory: %w", err)
	}
	if len(entries) > 0 && !overwrite {
		return fmt.Errorf("output directory is not empty: %s (set overwrite=true to allow)", path)
	}
	return nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeJSONL(path string, rows []SensorRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	buf := bufio.NewWriterSize(f, 1<<20)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			return err
		}
	}
	return buf.Flush()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
