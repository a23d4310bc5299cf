package export

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abramovychmax-cpu/under-preassure-tyre/fitfile"
)

const sampleYAML = `
file_id:
  type: 4
  manufacturer: 1
  product: 2337
  serial_number: 9876
device_info:
  device_index: 0
  manufacturer: 1
  product: 2337
  serial_number: 9876
records:
  - time: 2024-11-09T13:20:00Z
    lat: 52.254397
    lon: 20.986851
    speed_mps: 3.34
    cadence: 77
    power: 180
  - time: 2024-11-09T13:20:01Z
    speed_mps: 3.40
    cadence: 78
laps:
  - start: 2024-11-09T13:20:00Z
    end: 2024-11-09T13:20:01Z
    distance_m: 6.7
    avg_speed_mps: 3.37
    max_speed_mps: 3.40
    avg_cadence: 77
    max_cadence: 78
    avg_power: 180
    max_power: 180
session:
  sport: 2
  distance_m: 6.7
  avg_speed_mps: 3.37
  max_speed_mps: 3.40
  avg_cadence: 77
  max_cadence: 78
  avg_power: 180
  max_power: 180
`

const sampleJSON = `{
  "file_id": {"type": 4, "manufacturer": 1, "product": 2337},
  "records": [
    {"time": "2024-11-09T13:20:00Z", "speed_mps": 3.34, "cadence": 77}
  ]
}`

func TestLoadDocumentYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	doc, err := LoadDocument(path)
	require.NoError(t, err)
	assert.Equal(t, uint8(4), doc.FileID.Type)
	assert.Equal(t, uint16(2337), doc.FileID.Product)
	require.Len(t, doc.Records, 2)
	require.NotNil(t, doc.Records[0].Lat)
	assert.InDelta(t, 52.254397, *doc.Records[0].Lat, 1e-9)
	require.Len(t, doc.Laps, 1)
	require.NotNil(t, doc.Session)
}

func TestLoadDocumentJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleJSON), 0o644))

	doc, err := LoadDocument(path)
	require.NoError(t, err)
	require.Len(t, doc.Records, 1)
	assert.Equal(t, uint8(77), *doc.Records[0].Cadence)
}

func TestDocumentMessages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))
	doc, err := LoadDocument(path)
	require.NoError(t, err)

	msgs, err := doc.Messages()
	require.NoError(t, err)

	// file_id, device_info, start event, 2 records, lap, session, stop event, activity
	require.Len(t, msgs, 9)

	fileID, ok := msgs[0].(fitfile.FileID)
	require.True(t, ok, "first message must be file_id")
	assert.Equal(t, uint8(4), fileID.Type)

	start := time.Date(2024, 11, 9, 13, 20, 0, 0, time.UTC)
	assert.Equal(t, fitfile.TimeToFIT(start), fileID.TimeCreated)

	rec, ok := msgs[3].(fitfile.Record)
	require.True(t, ok)
	assert.InDelta(t, 52.254397, fitfile.SemicirclesToDegrees(rec.PositionLat), 1e-6)
	assert.Equal(t, fitfile.InvalidUint16, rec.Altitude)
	assert.Equal(t, uint8(77), rec.Cadence)

	rec2 := msgs[4].(fitfile.Record)
	assert.Equal(t, fitfile.InvalidSint32, rec2.PositionLat)

	session, ok := msgs[6].(fitfile.Session)
	require.True(t, ok)
	assert.Equal(t, uint16(1), session.NumLaps)
	assert.Equal(t, uint8(2), session.Sport)

	activity, ok := msgs[8].(fitfile.Activity)
	require.True(t, ok)
	assert.Equal(t, uint16(1), activity.NumSessions)
	assert.Equal(t, uint32(1000), activity.TotalTimerTime)

	// the sequence must also survive a full wire round trip
	data, err := fitfile.Encode(msgs)
	require.NoError(t, err)
	decoded, err := fitfile.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, msgs, decoded.Messages)
}

func TestDocumentValidation(t *testing.T) {
	doc := &Document{}
	_, err := doc.Messages()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no records")

	doc = &Document{Records: []DocumentRecord{
		{Time: Timestamp{time.Date(2024, 11, 9, 13, 20, 1, 0, time.UTC)}},
		{Time: Timestamp{time.Date(2024, 11, 9, 13, 20, 0, 0, time.UTC)}},
	}}
	_, err = doc.Messages()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of order")
}
