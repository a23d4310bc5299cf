package fitfile

import (
	"math"
	"time"
)

// Global message numbers used by activity files.
const (
	GlobalFileID     uint16 = 0
	GlobalSession    uint16 = 18
	GlobalLap        uint16 = 19
	GlobalRecord     uint16 = 20
	GlobalEvent      uint16 = 21
	GlobalDeviceInfo uint16 = 23
	GlobalActivity   uint16 = 34
)

// Invalid sentinels per base type. A field left at its sentinel is "not set"
// on the wire and round-trips unchanged.
const (
	InvalidUint8  uint8  = 0xFF
	InvalidSint8  int8   = 0x7F
	InvalidUint16 uint16 = 0xFFFF
	InvalidUint32 uint32 = 0xFFFFFFFF
	InvalidSint32 int32  = 0x7FFFFFFF
)

// Message is one logical FIT message. Concrete types carry wire-scale values;
// order within a file is significant and preserved by Decode and Encode.
type Message interface {
	GlobalNumber() uint16
}

// FileID is global message 0.
type FileID struct {
	Type         uint8  // 4 = activity
	Manufacturer uint16 // 1 = garmin
	Product      uint16
	SerialNumber uint32 // uint32z, zero means unset
	TimeCreated  uint32 // seconds since the FIT epoch
}

func (FileID) GlobalNumber() uint16 { return GlobalFileID }

// Record is global message 20, one sensor sample.
type Record struct {
	Timestamp    uint32 // seconds since the FIT epoch
	PositionLat  int32  // semicircles
	PositionLong int32  // semicircles
	Altitude     uint16 // (meters + 500) * 5
	HeartRate    uint8  // bpm
	Cadence      uint8  // rpm
	Distance     uint32 // centimeters
	Speed        uint16 // mm/s
	Power        uint16 // watts
	Temperature  int8   // degrees C
}

func (Record) GlobalNumber() uint16 { return GlobalRecord }

// Lap is global message 19. Elapsed and timer times are milliseconds,
// distance centimeters, speeds mm/s.
type Lap struct {
	Timestamp        uint32
	StartTime        uint32
	TotalElapsedTime uint32
	TotalTimerTime   uint32
	TotalDistance    uint32
	AvgSpeed         uint16
	MaxSpeed         uint16
	AvgCadence       uint8
	MaxCadence       uint8
	AvgPower         uint16
	MaxPower         uint16
}

func (Lap) GlobalNumber() uint16 { return GlobalLap }

// Session is global message 18, the whole-activity aggregate.
type Session struct {
	Timestamp        uint32
	StartTime        uint32
	Sport            uint8 // 2 = cycling
	SubSport         uint8
	TotalElapsedTime uint32 // ms
	TotalTimerTime   uint32 // ms
	TotalDistance    uint32 // cm
	AvgSpeed         uint16 // mm/s
	MaxSpeed         uint16 // mm/s
	AvgCadence       uint8
	MaxCadence       uint8
	AvgPower         uint16
	MaxPower         uint16
	NumLaps          uint16
}

func (Session) GlobalNumber() uint16 { return GlobalSession }

// Event is global message 21 (timer start/stop, lap markers).
type Event struct {
	Timestamp uint32
	Event     uint8
	EventType uint8
	Data      uint32
}

func (Event) GlobalNumber() uint16 { return GlobalEvent }

// DeviceInfo is global message 23.
type DeviceInfo struct {
	Timestamp    uint32
	DeviceIndex  uint8
	Manufacturer uint16
	Product      uint16
	SerialNumber uint32 // uint32z
}

func (DeviceInfo) GlobalNumber() uint16 { return GlobalDeviceInfo }

// Activity is global message 34.
type Activity struct {
	Timestamp      uint32
	TotalTimerTime uint32 // ms
	NumSessions    uint16
	Type           uint8
	Event          uint8
	EventType      uint8
	LocalTimestamp uint32
}

func (Activity) GlobalNumber() uint16 { return GlobalActivity }

// UnknownField is one raw field of an unmodeled message. Data holds the wire
// bytes under the byte order of the definition that produced them.
type UnknownField struct {
	Num  uint8
	Type BaseType
	Data []byte
}

// Unknown preserves a data message whose global number this codec does not
// model. Decoding never fails on unknown globals; the raw fields round-trip
// as long as the encoder keeps the same architecture.
type Unknown struct {
	Global uint16
	Fields []UnknownField
}

func (u Unknown) GlobalNumber() uint16 { return u.Global }

// fitEpoch is 1989-12-31T00:00:00Z, 631065600 seconds after the Unix epoch.
var fitEpoch = time.Date(1989, 12, 31, 0, 0, 0, 0, time.UTC)

// TimeToFIT converts a wall-clock time to FIT-epoch seconds.
func TimeToFIT(t time.Time) uint32 {
	return uint32(t.Unix() - fitEpoch.Unix())
}

// FITToTime converts FIT-epoch seconds to UTC wall-clock time.
func FITToTime(ts uint32) time.Time {
	return fitEpoch.Add(time.Duration(ts) * time.Second)
}

const semicirclesPerDegree = float64(1<<31) / 180.0

// DegreesToSemicircles converts decimal degrees to the FIT fixed-point GPS
// unit, degrees * 2^31 / 180.
func DegreesToSemicircles(deg float64) int32 {
	return int32(math.Round(deg * semicirclesPerDegree))
}

// SemicirclesToDegrees is the inverse of DegreesToSemicircles.
func SemicirclesToDegrees(s int32) float64 {
	return float64(s) / semicirclesPerDegree
}

// AltitudeToWire converts meters to the record altitude encoding,
// (meters + 500) * 5.
func AltitudeToWire(meters float64) uint16 {
	return uint16(math.Round((meters + 500) * 5))
}

// WireToAltitude converts the record altitude encoding to meters.
func WireToAltitude(raw uint16) float64 {
	return float64(raw)/5 - 500
}

// SpeedToWire converts m/s to mm/s.
func SpeedToWire(mps float64) uint16 {
	return uint16(math.Round(mps * 1000))
}

// WireToSpeed converts mm/s to m/s.
func WireToSpeed(raw uint16) float64 {
	return float64(raw) / 1000
}

// DistanceToWire converts meters to centimeters.
func DistanceToWire(meters float64) uint32 {
	return uint32(math.Round(meters * 100))
}

// WireToDistance converts centimeters to meters.
func WireToDistance(raw uint32) float64 {
	return float64(raw) / 100
}

// DurationToWire converts seconds to the millisecond scale used by lap,
// session and activity timer fields.
func DurationToWire(seconds float64) uint32 {
	return uint32(math.Round(seconds * 1000))
}

// WireToDuration converts milliseconds to seconds.
func WireToDuration(raw uint32) float64 {
	return float64(raw) / 1000
}
