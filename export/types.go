package export

import "time"

// FormatVersion identifies the bundle layout written by Export.
const FormatVersion = "tyrefit-export/1"

// Options controls what Export writes beside the sensor records.
type Options struct {
	// Overwrite allows writing into a non-empty output directory.
	Overwrite bool
	// CopySource copies the input FIT file into the bundle as source.fit.
	CopySource bool
	// Format selects the canonical sample encoding: "parquet" (default) or "csv".
	Format string
}

// Result reports what Export produced.
type Result struct {
	OutputDir            string
	ManifestPath         string
	SensorRecordsPath    string
	CanonicalSamplesPath string
	SourceCopyPath       string
	RecordCount          int
	MessageCount         int
	CRCValid             bool
}

// Manifest is the bundle descriptor written as manifest.json.
type Manifest struct {
	FormatVersion     string    `json:"format_version"`
	GeneratedAt       time.Time `json:"generated_at"`
	SourceFile        string    `json:"source_file"`
	SourceSHA256      string    `json:"source_sha256"`
	SourceSizeBytes   int64     `json:"source_size_bytes"`
	ProtocolVersion   uint8     `json:"protocol_version"`
	ProfileVersion    uint16    `json:"profile_version"`
	DataSizeBytes     uint32    `json:"data_size_bytes"`
	CRCValid          bool      `json:"crc_valid"`
	CRCError          string    `json:"crc_error,omitempty"`
	MessageCount      int       `json:"message_count"`
	RecordCount       int       `json:"record_count"`
	LapCount          int       `json:"lap_count"`
	SensorRecordsPath string    `json:"sensor_records_path"`
	CanonicalPath     string    `json:"canonical_samples_path"`
}

// SensorRecord is one consolidated per-second row: every record message that
// shares a timestamp is merged, and the row carries the index of the lap whose
// window contains it.
type SensorRecord struct {
	LapIndex  int      `json:"lapIndex"`
	Timestamp string   `json:"timestamp"`
	SpeedKMH  float64  `json:"speed_kmh"`
	Cadence   int      `json:"cadence"`
	Power     int      `json:"power"`
	DistanceM float64  `json:"distance"`
	AltitudeM float64  `json:"altitude"`
	Lat       *float64 `json:"lat,omitempty"`
	Lon       *float64 `json:"lon,omitempty"`
}
