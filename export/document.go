package export

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/abramovychmax-cpu/under-preassure-tyre/fitfile"
)

// Timestamp accepts both native YAML timestamps and RFC3339 strings, so JSON
// documents parse the same as YAML ones.
type Timestamp struct{ time.Time }

func (t *Timestamp) UnmarshalYAML(value *yaml.Node) error {
	var raw time.Time
	if err := value.Decode(&raw); err == nil {
		t.Time = raw
		return nil
	}
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("invalid time %q: %w", s, err)
	}
	t.Time = parsed
	return nil
}

func (t Timestamp) MarshalYAML() (any, error) {
	return t.Format(time.RFC3339), nil
}

// Document is a human-editable activity description. It loads from YAML or
// JSON (yaml.v3 reads both) and converts to the message sequence an encoder
// can write out as a FIT file.
type Document struct {
	FileID     DocumentFileID      `yaml:"file_id"`
	DeviceInfo *DocumentDeviceInfo `yaml:"device_info,omitempty"`
	Records    []DocumentRecord    `yaml:"records"`
	Laps       []DocumentLap       `yaml:"laps,omitempty"`
	Session    *DocumentSession    `yaml:"session,omitempty"`
}

type DocumentFileID struct {
	Type         uint8     `yaml:"type"`
	Manufacturer uint16    `yaml:"manufacturer"`
	Product      uint16    `yaml:"product"`
	SerialNumber uint32    `yaml:"serial_number"`
	TimeCreated  Timestamp `yaml:"time_created"`
}

type DocumentDeviceInfo struct {
	DeviceIndex  uint8  `yaml:"device_index"`
	Manufacturer uint16 `yaml:"manufacturer"`
	Product      uint16 `yaml:"product"`
	SerialNumber uint32 `yaml:"serial_number"`
}

// DocumentRecord holds one sample in human units. Nil fields stay unset on
// the wire.
type DocumentRecord struct {
	Time         Timestamp `yaml:"time"`
	Lat          *float64  `yaml:"lat,omitempty"`
	Lon          *float64  `yaml:"lon,omitempty"`
	AltitudeM    *float64  `yaml:"altitude_m,omitempty"`
	HeartRate    *uint8    `yaml:"heart_rate,omitempty"`
	Cadence      *uint8    `yaml:"cadence,omitempty"`
	DistanceM    *float64  `yaml:"distance_m,omitempty"`
	SpeedMPS     *float64  `yaml:"speed_mps,omitempty"`
	Power        *uint16   `yaml:"power,omitempty"`
	TemperatureC *int8     `yaml:"temperature_c,omitempty"`
}

type DocumentLap struct {
	Start      Timestamp `yaml:"start"`
	End        Timestamp `yaml:"end"`
	DistanceM  float64   `yaml:"distance_m"`
	AvgSpeed   float64   `yaml:"avg_speed_mps"`
	MaxSpeed   float64   `yaml:"max_speed_mps"`
	AvgCadence uint8     `yaml:"avg_cadence"`
	MaxCadence uint8     `yaml:"max_cadence"`
	AvgPower   uint16    `yaml:"avg_power"`
	MaxPower   uint16    `yaml:"max_power"`
}

type DocumentSession struct {
	Sport      uint8   `yaml:"sport"`
	SubSport   uint8   `yaml:"sub_sport"`
	DistanceM  float64 `yaml:"distance_m"`
	AvgSpeed   float64 `yaml:"avg_speed_mps"`
	MaxSpeed   float64 `yaml:"max_speed_mps"`
	AvgCadence uint8   `yaml:"avg_cadence"`
	MaxCadence uint8   `yaml:"max_cadence"`
	AvgPower   uint16  `yaml:"avg_power"`
	MaxPower   uint16  `yaml:"max_power"`
}

// LoadDocument reads a YAML or JSON activity document.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &doc, nil
}

// Messages converts the document into the encodable message sequence:
// file_id, device_info, a timer-start event, the records, the laps, the
// session, a timer-stop event, and the closing activity message.
func (d *Document) Messages() ([]fitfile.Message, error) {
	if len(d.Records) == 0 {
		return nil, fmt.Errorf("document has no records")
	}
	for i := 1; i < len(d.Records); i++ {
		if d.Records[i].Time.Before(d.Records[i-1].Time.Time) {
			return nil, fmt.Errorf("record %d is out of order", i)
		}
	}

	start := d.Records[0].Time.Time
	end := d.Records[len(d.Records)-1].Time.Time

	fileID := fitfile.FileID{
		Type:         d.FileID.Type,
		Manufacturer: d.FileID.Manufacturer,
		Product:      d.FileID.Product,
		SerialNumber: d.FileID.SerialNumber,
		TimeCreated:  fitfile.TimeToFIT(start),
	}
	if fileID.Type == 0 {
		fileID.Type = 4 // activity
	}
	if fileID.Manufacturer == 0 {
		fileID.Manufacturer = 1
	}
	if !d.FileID.TimeCreated.IsZero() {
		fileID.TimeCreated = fitfile.TimeToFIT(d.FileID.TimeCreated.Time)
	}

	msgs := make([]fitfile.Message, 0, len(d.Records)+len(d.Laps)+6)
	msgs = append(msgs, fileID)

	if d.DeviceInfo != nil {
		msgs = append(msgs, fitfile.DeviceInfo{
			Timestamp:    fitfile.TimeToFIT(start),
			DeviceIndex:  d.DeviceInfo.DeviceIndex,
			Manufacturer: d.DeviceInfo.Manufacturer,
			Product:      d.DeviceInfo.Product,
			SerialNumber: d.DeviceInfo.SerialNumber,
		})
	}

	msgs = append(msgs, fitfile.Event{
		Timestamp: fitfile.TimeToFIT(start),
		Event:     0, // timer
		EventType: 0, // start
	})

	for _, r := range d.Records {
		msgs = append(msgs, recordMessage(r))
	}

	for _, lap := range d.Laps {
		if lap.End.Before(lap.Start.Time) {
			return nil, fmt.Errorf("lap ends before it starts: %v", lap.Start)
		}
		elapsed := lap.End.Sub(lap.Start.Time).Seconds()
		msgs = append(msgs, fitfile.Lap{
			Timestamp:        fitfile.TimeToFIT(lap.End.Time),
			StartTime:        fitfile.TimeToFIT(lap.Start.Time),
			TotalElapsedTime: fitfile.DurationToWire(elapsed),
			TotalTimerTime:   fitfile.DurationToWire(elapsed),
			TotalDistance:    fitfile.DistanceToWire(lap.DistanceM),
			AvgSpeed:         fitfile.SpeedToWire(lap.AvgSpeed),
			MaxSpeed:         fitfile.SpeedToWire(lap.MaxSpeed),
			AvgCadence:       lap.AvgCadence,
			MaxCadence:       lap.MaxCadence,
			AvgPower:         lap.AvgPower,
			MaxPower:         lap.MaxPower,
		})
	}

	elapsed := end.Sub(start).Seconds()
	if d.Session != nil {
		msgs = append(msgs, fitfile.Session{
			Timestamp:        fitfile.TimeToFIT(end),
			StartTime:        fitfile.TimeToFIT(start),
			Sport:            d.Session.Sport,
			SubSport:         d.Session.SubSport,
			TotalElapsedTime: fitfile.DurationToWire(elapsed),
			TotalTimerTime:   fitfile.DurationToWire(elapsed),
			TotalDistance:    fitfile.DistanceToWire(d.Session.DistanceM),
			AvgSpeed:         fitfile.SpeedToWire(d.Session.AvgSpeed),
			MaxSpeed:         fitfile.SpeedToWire(d.Session.MaxSpeed),
			AvgCadence:       d.Session.AvgCadence,
			MaxCadence:       d.Session.MaxCadence,
			AvgPower:         d.Session.AvgPower,
			MaxPower:         d.Session.MaxPower,
			NumLaps:          uint16(len(d.Laps)),
		})
	}

	msgs = append(msgs, fitfile.Event{
		Timestamp: fitfile.TimeToFIT(end),
		Event:     0, // timer
		EventType: 4, // stop_all
	})

	numSessions := uint16(0)
	if d.Session != nil {
		numSessions = 1
	}
	msgs = append(msgs, fitfile.Activity{
		Timestamp:      fitfile.TimeToFIT(end),
		TotalTimerTime: fitfile.DurationToWire(elapsed),
		NumSessions:    numSessions,
		Type:           0,  // manual
		Event:          26, // activity
		EventType:      1,  // stop
		LocalTimestamp: fitfile.TimeToFIT(end),
	})

	return msgs, nil
}

func recordMessage(r DocumentRecord) fitfile.Record {
	rec := fitfile.Record{
		Timestamp:    fitfile.TimeToFIT(r.Time.Time),
		PositionLat:  fitfile.InvalidSint32,
		PositionLong: fitfile.InvalidSint32,
		Altitude:     fitfile.InvalidUint16,
		HeartRate:    fitfile.InvalidUint8,
		Cadence:      fitfile.InvalidUint8,
		Distance:     fitfile.InvalidUint32,
		Speed:        fitfile.InvalidUint16,
		Power:        fitfile.InvalidUint16,
		Temperature:  fitfile.InvalidSint8,
	}
	if r.Lat != nil {
		rec.PositionLat = fitfile.DegreesToSemicircles(*r.Lat)
	}
	if r.Lon != nil {
		rec.PositionLong = fitfile.DegreesToSemicircles(*r.Lon)
	}
	if r.AltitudeM != nil {
		rec.Altitude = fitfile.AltitudeToWire(*r.AltitudeM)
	}
	if r.HeartRate != nil {
		rec.HeartRate = *r.HeartRate
	}
	if r.Cadence != nil {
		rec.Cadence = *r.Cadence
	}
	if r.DistanceM != nil {
		rec.Distance = fitfile.DistanceToWire(*r.DistanceM)
	}
	if r.SpeedMPS != nil {
		rec.Speed = fitfile.SpeedToWire(*r.SpeedMPS)
	}
	if r.Power != nil {
		rec.Power = *r.Power
	}
	if r.TemperatureC != nil {
		rec.Temperature = *r.TemperatureC
	}
	return rec
}
