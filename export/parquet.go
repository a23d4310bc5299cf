package export

import (
	"encoding/csv"
	"math"
	"os"
	"strconv"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

type sensorParquetRow struct {
	LapIndex  int64   `parquet:"name=lap_index, type=INT64"`
	Timestamp string  `parquet:"name=timestamp, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	SpeedKMH  float64 `parquet:"name=speed_kmh, type=DOUBLE"`
	Cadence   int64   `parquet:"name=cadence, type=INT64"`
	Power     int64   `parquet:"name=power, type=INT64"`
	DistanceM float64 `parquet:"name=distance_m, type=DOUBLE"`
	AltitudeM float64 `parquet:"name=altitude_m, type=DOUBLE"`
	Lat       float64 `parquet:"name=lat, type=DOUBLE"`
	Lon       float64 `parquet:"name=lon, type=DOUBLE"`
}

func writeSensorParquet(path string, rows []SensorRecord) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	pw, err := writer.NewParquetWriter(fw, new(sensorParquetRow), 4)
	if err != nil {
		return err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, r := range rows {
		row := sensorParquetRow{
			LapIndex:  int64(r.LapIndex),
			Timestamp: r.Timestamp,
			SpeedKMH:  r.SpeedKMH,
			Cadence:   int64(r.Cadence),
			Power:     int64(r.Power),
			DistanceM: r.DistanceM,
			AltitudeM: r.AltitudeM,
			Lat:       valueOrNaN(r.Lat),
			Lon:       valueOrNaN(r.Lon),
		}
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			_ = fw.Close()
			return err
		}
	}
	if err := pw.WriteStop(); err != nil {
		_ = fw.Close()
		return err
	}
	return fw.Close()
}

func writeSensorCSV(path string, rows []SensorRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"lap_index", "timestamp", "speed_kmh", "cadence", "power",
		"distance_m", "altitude_m", "lat", "lon",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		row := []string{
			strconv.Itoa(r.LapIndex),
			r.Timestamp,
			formatFloat(r.SpeedKMH),
			strconv.Itoa(r.Cadence),
			strconv.Itoa(r.Power),
			formatFloat(r.DistanceM),
			formatFloat(r.AltitudeM),
			formatFloatPtr(r.Lat),
			formatFloatPtr(r.Lon),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func valueOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
