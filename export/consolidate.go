package export

import (
	"math"
	"sort"
	"time"

	"github.com/abramovychmax-cpu/under-preassure-tyre/fitfile"
)

type lapWindow struct {
	start uint32
	end   uint32
}

// Consolidate merges decoded record messages into per-second sensor rows.
// Records sharing a timestamp collapse into one row, rows are ordered by time,
// and each row gets the index of the lap whose [start, end] window holds its
// timestamp. Rows with neither speed nor cadence are dropped.
func Consolidate(msgs []fitfile.Message) []SensorRecord {
	laps := make([]lapWindow, 0, 4)
	for _, m := range msgs {
		if lap, ok := m.(fitfile.Lap); ok {
			laps = append(laps, lapWindow{start: lap.StartTime, end: lap.Timestamp})
		}
	}
	sort.Slice(laps, func(i, j int) bool { return laps[i].start < laps[j].start })

	byTS := make(map[uint32]*SensorRecord)
	order := make([]uint32, 0, 1024)
	for _, m := range msgs {
		rec, ok := m.(fitfile.Record)
		if !ok {
			continue
		}
		if rec.Timestamp == fitfile.InvalidUint32 {
			continue
		}
		row, seen := byTS[rec.Timestamp]
		if !seen {
			row = &SensorRecord{
				LapIndex:  lapIndexFor(laps, rec.Timestamp),
				Timestamp: fitfile.FITToTime(rec.Timestamp).Format(time.RFC3339),
			}
			byTS[rec.Timestamp] = row
			order = append(order, rec.Timestamp)
		}
		mergeRecord(row, rec)
	}

	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })
	out := make([]SensorRecord, 0, len(order))
	for _, ts := range order {
		row := byTS[ts]
		if row.SpeedKMH <= 0 && row.Cadence <= 0 {
			continue
		}
		out = append(out, *row)
	}
	return out
}

// lapIndexFor returns the index of the lap window containing ts. Timestamps
// past the last window keep the last lap's index, matching how trailing
// records belong to the lap that just closed.
func lapIndexFor(laps []lapWindow, ts uint32) int {
	idx := 0
	for i, w := range laps {
		if ts >= w.start && ts <= w.end {
			return i
		}
		if ts > w.end {
			idx = i
		}
	}
	return idx
}

func mergeRecord(row *SensorRecord, rec fitfile.Record) {
	if rec.Speed != fitfile.InvalidUint16 {
		row.SpeedKMH = round2(fitfile.WireToSpeed(rec.Speed) * 3.6)
	}
	if rec.Cadence != fitfile.InvalidUint8 {
		row.Cadence = int(rec.Cadence)
	}
	if rec.Power != fitfile.InvalidUint16 {
		row.Power = int(rec.Power)
	}
	if rec.Distance != fitfile.InvalidUint32 {
		row.DistanceM = round1(fitfile.WireToDistance(rec.Distance))
	}
	if rec.Altitude != fitfile.InvalidUint16 {
		row.AltitudeM = round1(fitfile.WireToAltitude(rec.Altitude))
	}
	if rec.PositionLat != fitfile.InvalidSint32 {
		lat := round6(fitfile.SemicirclesToDegrees(rec.PositionLat))
		row.Lat = &lat
	}
	if rec.PositionLong != fitfile.InvalidSint32 {
		lon := round6(fitfile.SemicirclesToDegrees(rec.PositionLong))
		row.Lon = &lon
	}
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round6(v float64) float64 { return math.Round(v*1e6) / 1e6 }
