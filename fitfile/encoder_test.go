package fitfile

import (
	"bytes"
	"encoding/binary"
	"reflect"
	"testing"
)

func TestEncodeFileIDRoundTrip(t *testing.T) {
	want := FileID{
		Type:         4,
		Manufacturer: 1,
		Product:      1,
		SerialNumber: 12345,
		TimeCreated:  1_100_000_000,
	}

	data, err := Encode([]Message{want})
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	file, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if len(file.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(file.Messages))
	}
	got, ok := file.Messages[0].(FileID)
	if !ok {
		t.Fatalf("expected FileID, got %T", file.Messages[0])
	}
	if got != want {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestEncodeEmitsDefinitionOncePerLayout(t *testing.T) {
	rec := Record{Timestamp: 1000, Speed: 5000, Power: 250}
	data, err := Encode([]Message{rec, rec, rec})
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	defCount := 0
	dataSize := 0
	body := data[headerSizeCRC : len(data)-2]
	for pos := 0; pos < len(body); {
		hb := body[pos]
		pos++
		if hb&definitionMask != 0 {
			defCount++
			nfields := int(body[pos+4])
			dataSize = 0
			for i := 0; i < nfields; i++ {
				dataSize += int(body[pos+5+3*i+1])
			}
			pos += 5 + 3*nfields
			continue
		}
		pos += dataSize
	}
	if defCount != 1 {
		t.Fatalf("expected exactly one definition record, got %d", defCount)
	}

	file, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if len(file.Messages) != 3 {
		t.Fatalf("expected 3 records, got %d messages", len(file.Messages))
	}
}

func TestEncodeSizeInvariant(t *testing.T) {
	data, err := Encode([]Message{
		FileID{Type: 4, Manufacturer: 1, Product: 1, TimeCreated: 1},
		Record{Timestamp: 2},
	})
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	size := int(data[0])
	dataSize := int(binary.LittleEndian.Uint32(data[4:8]))
	if size+dataSize+2 != len(data) {
		t.Fatalf("size invariant broken: %d + %d + 2 != %d", size, dataSize, len(data))
	}
}

func TestEncodeEmptyMessageList(t *testing.T) {
	data, err := Encode(nil)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	if len(data) != headerSizeCRC+2 {
		t.Fatalf("expected a bare envelope of %d bytes, got %d", headerSizeCRC+2, len(data))
	}
	file, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if len(file.Messages) != 0 {
		t.Fatalf("expected no messages, got %d", len(file.Messages))
	}
}

func TestEncodeSlotEviction(t *testing.T) {
	// 17 distinct layouts force the encoder past the 16 local type slots.
	msgs := make([]Message, 0, 17)
	for i := 0; i < 17; i++ {
		msgs = append(msgs, Unknown{
			Global: uint16(100 + i),
			Fields: []UnknownField{{Num: 0, Type: BaseUint8, Data: []byte{byte(i)}}},
		})
	}

	data, err := Encode(msgs)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	file, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if !reflect.DeepEqual(file.Messages, msgs) {
		t.Fatalf("slot eviction broke the stream:\n got %+v\nwant %+v", file.Messages, msgs)
	}
}

func TestEncodeUnknownFieldValidation(t *testing.T) {
	_, err := Encode([]Message{Unknown{
		Global: 200,
		Fields: []UnknownField{{Num: 0, Type: BaseType(0x1F), Data: []byte{1}}},
	}})
	if err == nil {
		t.Fatal("expected an error for an unknown base type")
	}

	_, err = Encode([]Message{Unknown{
		Global: 200,
		Fields: []UnknownField{{Num: 0, Type: BaseUint8, Data: nil}},
	}})
	if err == nil {
		t.Fatal("expected an error for an empty field")
	}
}

func TestEncodeBigEndianArchitecture(t *testing.T) {
	e := NewEncoder()
	e.SetArchitecture(binary.BigEndian)
	if err := e.Add(Record{Timestamp: 0x01020304, Speed: 0x1234}); err != nil {
		t.Fatalf("Add error: %v", err)
	}
	data := e.Finalize()

	body := data[headerSizeCRC : len(data)-2]
	if body[2] != 1 {
		t.Fatalf("architecture byte = %d, want 1", body[2])
	}
	// timestamp is the first data field after the definition and record header
	defLen := 6 + 3*len(recordLayout)
	ts := body[defLen+1 : defLen+5]
	if !bytes.Equal(ts, []byte{0x01, 0x02, 0x03, 0x04}) {
		t.Fatalf("timestamp bytes = % X, want 01 02 03 04", ts)
	}

	file, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	rec := file.Messages[0].(Record)
	if rec.Timestamp != 0x01020304 || rec.Speed != 0x1234 {
		t.Fatalf("big-endian round trip broke: %+v", rec)
	}
}
