package fitfile

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"
)

func sampleActivity() []Message {
	msgs := []Message{
		FileID{Type: 4, Manufacturer: 1, Product: 2337, SerialNumber: 9876, TimeCreated: 1_100_000_000},
		DeviceInfo{Timestamp: 1_100_000_000, DeviceIndex: 0, Manufacturer: 1, Product: 2337, SerialNumber: 9876},
		Event{Timestamp: 1_100_000_000, Event: 0, EventType: 0},
	}
	for i := uint32(0); i < 5; i++ {
		msgs = append(msgs, Record{
			Timestamp:    1_100_000_000 + i,
			PositionLat:  623_419_239 + int32(i)*100,
			PositionLong: 156_789_012,
			Altitude:     (120 + 500) * 5,
			HeartRate:    140 + uint8(i),
			Cadence:      90,
			Distance:     i * 800,
			Speed:        8000,
			Power:        250 + uint16(i),
			Temperature:  21,
		})
	}
	msgs = append(msgs,
		Lap{
			Timestamp: 1_100_000_004, StartTime: 1_100_000_000,
			TotalElapsedTime: 4000, TotalTimerTime: 4000, TotalDistance: 3200,
			AvgSpeed: 8000, MaxSpeed: 8000, AvgCadence: 90, MaxCadence: 90,
			AvgPower: 252, MaxPower: 254,
		},
		Session{
			Timestamp: 1_100_000_004, StartTime: 1_100_000_000, Sport: 2,
			TotalElapsedTime: 4000, TotalTimerTime: 4000, TotalDistance: 3200,
			AvgSpeed: 8000, MaxSpeed: 8000, AvgCadence: 90, MaxCadence: 90,
			AvgPower: 252, MaxPower: 254, NumLaps: 1,
		},
		Event{Timestamp: 1_100_000_004, Event: 0, EventType: 4},
		Activity{
			Timestamp: 1_100_000_004, TotalTimerTime: 4000, NumSessions: 1,
			Type: 0, Event: 26, EventType: 1, LocalTimestamp: 1_100_007_200,
		},
	)
	return msgs
}

func TestRoundTripActivitySequence(t *testing.T) {
	msgs := sampleActivity()
	data, err := Encode(msgs)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	file, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if !reflect.DeepEqual(file.Messages, msgs) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", file.Messages, msgs)
	}
	if int(file.Header.DataSize) != len(data)-headerSizeCRC-2 {
		t.Fatalf("header data size %d does not match body length %d",
			file.Header.DataSize, len(data)-headerSizeCRC-2)
	}
}

func TestCorruptTrailerStillYieldsMessages(t *testing.T) {
	msgs := sampleActivity()
	data, err := Encode(msgs)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	clean, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}

	corrupt := append([]byte(nil), data...)
	corrupt[len(corrupt)-1] ^= 0xFF
	file, err := Decode(corrupt)
	var crcErr *CRCMismatchError
	if !errors.As(err, &crcErr) {
		t.Fatalf("expected CRCMismatchError, got %v", err)
	}
	if crcErr.Scope != "file" {
		t.Fatalf("scope = %q, want file", crcErr.Scope)
	}
	if file == nil {
		t.Fatal("expected the decoded file alongside the CRC error")
	}
	if !reflect.DeepEqual(file.Messages, clean.Messages) {
		t.Fatal("message list differs from the clean decode")
	}
}

func TestSemicircleConversion(t *testing.T) {
	got := DegreesToSemicircles(52.254397)
	const want = 623_419_239
	if got < want-1 || got > want+1 {
		t.Fatalf("DegreesToSemicircles(52.254397) = %d, want %d±1", got, want)
	}
	back := SemicirclesToDegrees(got)
	if math.Abs(back-52.254397) > 1e-6 {
		t.Fatalf("inverse conversion drifted: %v", back)
	}
	if DegreesToSemicircles(0) != 0 || SemicirclesToDegrees(0) != 0 {
		t.Fatal("zero should map to zero")
	}
	if DegreesToSemicircles(-180) != math.MinInt32 {
		t.Fatalf("DegreesToSemicircles(-180) = %d", DegreesToSemicircles(-180))
	}
}

func TestTimeConversion(t *testing.T) {
	epoch := time.Date(1989, time.December, 31, 0, 0, 0, 0, time.UTC)
	if TimeToFIT(epoch) != 0 {
		t.Fatalf("epoch should map to 0, got %d", TimeToFIT(epoch))
	}
	if !FITToTime(0).Equal(epoch) {
		t.Fatalf("FITToTime(0) = %v", FITToTime(0))
	}
	ref := time.Date(2024, time.November, 9, 13, 20, 0, 0, time.UTC)
	if back := FITToTime(TimeToFIT(ref)); !back.Equal(ref) {
		t.Fatalf("time round trip: %v != %v", back, ref)
	}
}

func TestUnitConversions(t *testing.T) {
	if AltitudeToWire(120) != (120+500)*5 {
		t.Fatalf("AltitudeToWire(120) = %d", AltitudeToWire(120))
	}
	if WireToAltitude(3100) != 120 {
		t.Fatalf("WireToAltitude(3100) = %v", WireToAltitude(3100))
	}
	if SpeedToWire(8.0) != 8000 {
		t.Fatalf("SpeedToWire(8.0) = %d", SpeedToWire(8.0))
	}
	if WireToSpeed(8000) != 8.0 {
		t.Fatalf("WireToSpeed(8000) = %v", WireToSpeed(8000))
	}
	if DistanceToWire(32.5) != 3250 {
		t.Fatalf("DistanceToWire(32.5) = %d", DistanceToWire(32.5))
	}
	if WireToDistance(3250) != 32.5 {
		t.Fatalf("WireToDistance(3250) = %v", WireToDistance(3250))
	}
	if DurationToWire(4.0) != 4000 {
		t.Fatalf("DurationToWire(4.0) = %d", DurationToWire(4.0))
	}
	if WireToDuration(4000) != 4.0 {
		t.Fatalf("WireToDuration(4000) = %v", WireToDuration(4000))
	}
}
