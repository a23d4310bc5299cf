package fitfile

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Record header byte layout.
const (
	compressedHeaderMask = 0x80
	definitionMask       = 0x40
	devDataMask          = 0x20
	localTypeMask        = 0x0F
)

// File is one fully decoded FIT file.
type File struct {
	Header   FileHeader
	Messages []Message
}

// Decode parses data as a complete FIT file. On a header or trailer CRC
// mismatch the decoded file is returned together with a *CRCMismatchError so
// callers keep partial visibility into malformed files; every other failure
// returns a nil file.
func Decode(data []byte) (*File, error) {
	return NewDecoder(data).Decode()
}

// Decoder decodes a single FIT byte stream. Each Decoder owns its own
// definition registry, so decoding different files concurrently needs one
// Decoder per file.
type Decoder struct {
	data     []byte
	registry *Registry
}

func NewDecoder(data []byte) *Decoder {
	return &Decoder{data: data, registry: NewRegistry()}
}

// Decode runs the full envelope: header, record stream, trailer CRC.
func (d *Decoder) Decode() (*File, error) {
	header, headerErr := parseHeader(d.data)
	var crcErr *CRCMismatchError
	if headerErr != nil {
		if !errors.As(headerErr, &crcErr) {
			return nil, headerErr
		}
	}

	total := int(header.Size) + int(header.DataSize) + 2
	if len(d.data) != total {
		return nil, fmt.Errorf("%w: header %d + data %d + 2 != %d",
			ErrSizeInvariant, header.Size, header.DataSize, len(d.data))
	}

	msgs, err := d.parseRecords(d.data[header.Size:total-2], int(header.Size))
	if err != nil {
		return nil, err
	}
	file := &File{Header: header, Messages: msgs}

	stored := binary.LittleEndian.Uint16(d.data[total-2:])
	if computed := Checksum(d.data[:total-2]); stored != computed && crcErr == nil {
		crcErr = &CRCMismatchError{Scope: "file", Stored: stored, Computed: computed}
	}
	if crcErr != nil {
		return file, crcErr
	}
	return file, nil
}

func (d *Decoder) parseRecords(body []byte, base int) ([]Message, error) {
	msgs := []Message{}
	pos := 0
	for pos < len(body) {
		offset := base + pos
		hb := body[pos]
		pos++

		switch {
		case hb&compressedHeaderMask != 0:
			return nil, fmt.Errorf("%w: header byte 0x%02X at offset %d", ErrCompressedTimestamp, hb, offset)
		case hb&definitionMask != 0:
			def, n, err := parseDefinition(hb, body[pos:], offset)
			if err != nil {
				return nil, err
			}
			pos += n
			d.registry.Define(def)
		default:
			def, ok := d.registry.Resolve(hb & localTypeMask)
			if !ok {
				return nil, &UndefinedLocalTypeError{Local: hb & localTypeMask, Offset: offset}
			}
			need := def.DataSize()
			if pos+need > len(body) {
				return nil, fmt.Errorf("%w: %d bytes declared at offset %d, %d remain",
					ErrTruncatedMessage, need, offset, len(body)-pos)
			}
			msgs = append(msgs, decodeMessage(def, body[pos:pos+need]))
			pos += need
		}
	}
	return msgs, nil
}

func parseDefinition(hb byte, buf []byte, offset int) (*Definition, int, error) {
	if hb&devDataMask != 0 {
		return nil, 0, fmt.Errorf("%w: header byte 0x%02X at offset %d", ErrDeveloperFields, hb, offset)
	}
	if len(buf) < 5 {
		return nil, 0, fmt.Errorf("%w: definition at offset %d", ErrTruncatedMessage, offset)
	}

	archByte := buf[1]
	if archByte > 1 {
		return nil, 0, fmt.Errorf("fitfile: invalid architecture byte %d at offset %d", archByte, offset)
	}

	// The global message number is big-endian no matter what the architecture
	// byte says; that byte governs data field values only.
	global := binary.BigEndian.Uint16(buf[2:4])

	nfields := int(buf[4])
	need := 5 + 3*nfields
	if len(buf) < need {
		return nil, 0, fmt.Errorf("%w: definition at offset %d declares %d fields",
			ErrTruncatedMessage, offset, nfields)
	}

	fields := make([]FieldDef, 0, nfields)
	for i := 0; i < nfields; i++ {
		raw := buf[5+3*i : 8+3*i]
		bt := BaseType(raw[2])
		if !bt.Known() {
			return nil, 0, fmt.Errorf("fitfile: definition at offset %d, field %d: %w",
				offset, raw[0], &UnknownBaseTypeError{Code: raw[2]})
		}
		fields = append(fields, FieldDef{Num: raw[0], Size: raw[1], Type: bt})
	}

	return &Definition{
		LocalType: hb & localTypeMask,
		ArchByte:  archByte,
		Global:    global,
		Fields:    fields,
	}, need, nil
}

// decodeMessage interprets a data message body against its definition.
// Globals beyond this application's profile slice become Unknown; fields of
// known globals that the profile slice does not model are skipped, never an
// error.
func decodeMessage(def *Definition, body []byte) Message {
	arch := def.Arch()
	switch def.Global {
	case GlobalFileID:
		return decodeFileID(def, body, arch)
	case GlobalSession:
		return decodeSession(def, body, arch)
	case GlobalLap:
		return decodeLap(def, body, arch)
	case GlobalRecord:
		return decodeRecord(def, body, arch)
	case GlobalEvent:
		return decodeEvent(def, body, arch)
	case GlobalDeviceInfo:
		return decodeDeviceInfo(def, body, arch)
	case GlobalActivity:
		return decodeActivity(def, body, arch)
	default:
		return decodeUnknown(def, body)
	}
}

type fieldValue struct {
	num uint8
	raw []byte
}

func splitFields(def *Definition, body []byte) []fieldValue {
	out := make([]fieldValue, 0, len(def.Fields))
	pos := 0
	for _, fd := range def.Fields {
		out = append(out, fieldValue{num: fd.Num, raw: body[pos : pos+int(fd.Size)]})
		pos += int(fd.Size)
	}
	return out
}

// The setters assign only when the wire width matches the modeled width, so
// array-valued or oddly sized fields leave the sentinel in place.

func setU8(dst *uint8, f fieldValue) {
	if len(f.raw) == 1 {
		*dst = f.raw[0]
	}
}

func setS8(dst *int8, f fieldValue) {
	if len(f.raw) == 1 {
		*dst = int8(f.raw[0])
	}
}

func setU16(dst *uint16, f fieldValue, arch binary.ByteOrder) {
	if len(f.raw) == 2 {
		*dst = arch.Uint16(f.raw)
	}
}

func setU32(dst *uint32, f fieldValue, arch binary.ByteOrder) {
	if len(f.raw) == 4 {
		*dst = arch.Uint32(f.raw)
	}
}

func setS32(dst *int32, f fieldValue, arch binary.ByteOrder) {
	if len(f.raw) == 4 {
		*dst = int32(arch.Uint32(f.raw))
	}
}

func decodeFileID(def *Definition, body []byte, arch binary.ByteOrder) Message {
	m := FileID{
		Type:         InvalidUint8,
		Manufacturer: InvalidUint16,
		Product:      InvalidUint16,
		TimeCreated:  InvalidUint32,
	}
	for _, f := range splitFields(def, body) {
		switch f.num {
		case 0:
			setU8(&m.Type, f)
		case 1:
			setU16(&m.Manufacturer, f, arch)
		case 2:
			setU16(&m.Product, f, arch)
		case 3:
			setU32(&m.SerialNumber, f, arch)
		case 4:
			setU32(&m.TimeCreated, f, arch)
		}
	}
	return m
}

func decodeRecord(def *Definition, body []byte, arch binary.ByteOrder) Message {
	m := Record{
		Timestamp:    InvalidUint32,
		PositionLat:  InvalidSint32,
		PositionLong: InvalidSint32,
		Altitude:     InvalidUint16,
		HeartRate:    InvalidUint8,
		Cadence:      InvalidUint8,
		Distance:     InvalidUint32,
		Speed:        InvalidUint16,
		Power:        InvalidUint16,
		Temperature:  InvalidSint8,
	}
	for _, f := range splitFields(def, body) {
		switch f.num {
		case 253:
			setU32(&m.Timestamp, f, arch)
		case 0:
			setS32(&m.PositionLat, f, arch)
		case 1:
			setS32(&m.PositionLong, f, arch)
		case 2:
			setU16(&m.Altitude, f, arch)
		case 3:
			setU8(&m.HeartRate, f)
		case 4:
			setU8(&m.Cadence, f)
		case 5:
			setU32(&m.Distance, f, arch)
		case 6:
			setU16(&m.Speed, f, arch)
		case 7:
			setU16(&m.Power, f, arch)
		case 13:
			setS8(&m.Temperature, f)
		}
	}
	return m
}

func decodeLap(def *Definition, body []byte, arch binary.ByteOrder) Message {
	m := Lap{
		Timestamp:        InvalidUint32,
		StartTime:        InvalidUint32,
		TotalElapsedTime: InvalidUint32,
		TotalTimerTime:   InvalidUint32,
		TotalDistance:    InvalidUint32,
		AvgSpeed:         InvalidUint16,
		MaxSpeed:         InvalidUint16,
		AvgCadence:       InvalidUint8,
		MaxCadence:       InvalidUint8,
		AvgPower:         InvalidUint16,
		MaxPower:         InvalidUint16,
	}
	for _, f := range splitFields(def, body) {
		switch f.num {
		case 253:
			setU32(&m.Timestamp, f, arch)
		case 2:
			setU32(&m.StartTime, f, arch)
		case 7:
			setU32(&m.TotalElapsedTime, f, arch)
		case 8:
			setU32(&m.TotalTimerTime, f, arch)
		case 9:
			setU32(&m.TotalDistance, f, arch)
		case 13:
			setU16(&m.AvgSpeed, f, arch)
		case 14:
			setU16(&m.MaxSpeed, f, arch)
		case 17:
			setU8(&m.AvgCadence, f)
		case 18:
			setU8(&m.MaxCadence, f)
		case 19:
			setU16(&m.AvgPower, f, arch)
		case 20:
			setU16(&m.MaxPower, f, arch)
		}
	}
	return m
}

func decodeSession(def *Definition, body []byte, arch binary.ByteOrder) Message {
	m := Session{
		Timestamp:        InvalidUint32,
		StartTime:        InvalidUint32,
		Sport:            InvalidUint8,
		SubSport:         InvalidUint8,
		TotalElapsedTime: InvalidUint32,
		TotalTimerTime:   InvalidUint32,
		TotalDistance:    InvalidUint32,
		AvgSpeed:         InvalidUint16,
		MaxSpeed:         InvalidUint16,
		AvgCadence:       InvalidUint8,
		MaxCadence:       InvalidUint8,
		AvgPower:         InvalidUint16,
		MaxPower:         InvalidUint16,
		NumLaps:          InvalidUint16,
	}
	for _, f := range splitFields(def, body) {
		switch f.num {
		case 253:
			setU32(&m.Timestamp, f, arch)
		case 2:
			setU32(&m.StartTime, f, arch)
		case 5:
			setU8(&m.Sport, f)
		case 6:
			setU8(&m.SubSport, f)
		case 7:
			setU32(&m.TotalElapsedTime, f, arch)
		case 8:
			setU32(&m.TotalTimerTime, f, arch)
		case 9:
			setU32(&m.TotalDistance, f, arch)
		case 14:
			setU16(&m.AvgSpeed, f, arch)
		case 15:
			setU16(&m.MaxSpeed, f, arch)
		case 18:
			setU8(&m.AvgCadence, f)
		case 19:
			setU8(&m.MaxCadence, f)
		case 20:
			setU16(&m.AvgPower, f, arch)
		case 21:
			setU16(&m.MaxPower, f, arch)
		case 26:
			setU16(&m.NumLaps, f, arch)
		}
	}
	return m
}

func decodeEvent(def *Definition, body []byte, arch binary.ByteOrder) Message {
	m := Event{
		Timestamp: InvalidUint32,
		Event:     InvalidUint8,
		EventType: InvalidUint8,
		Data:      InvalidUint32,
	}
	for _, f := range splitFields(def, body) {
		switch f.num {
		case 253:
			setU32(&m.Timestamp, f, arch)
		case 0:
			setU8(&m.Event, f)
		case 1:
			setU8(&m.EventType, f)
		case 3:
			setU32(&m.Data, f, arch)
		}
	}
	return m
}

func decodeDeviceInfo(def *Definition, body []byte, arch binary.ByteOrder) Message {
	m := DeviceInfo{
		Timestamp:    InvalidUint32,
		DeviceIndex:  InvalidUint8,
		Manufacturer: InvalidUint16,
		Product:      InvalidUint16,
	}
	for _, f := range splitFields(def, body) {
		switch f.num {
		case 253:
			setU32(&m.Timestamp, f, arch)
		case 0:
			setU8(&m.DeviceIndex, f)
		case 2:
			setU16(&m.Manufacturer, f, arch)
		case 3:
			setU32(&m.SerialNumber, f, arch)
		case 4:
			setU16(&m.Product, f, arch)
		}
	}
	return m
}

func decodeActivity(def *Definition, body []byte, arch binary.ByteOrder) Message {
	m := Activity{
		Timestamp:      InvalidUint32,
		TotalTimerTime: InvalidUint32,
		NumSessions:    InvalidUint16,
		Type:           InvalidUint8,
		Event:          InvalidUint8,
		EventType:      InvalidUint8,
		LocalTimestamp: InvalidUint32,
	}
	for _, f := range splitFields(def, body) {
		switch f.num {
		case 253:
			setU32(&m.Timestamp, f, arch)
		case 0:
			setU32(&m.TotalTimerTime, f, arch)
		case 1:
			setU16(&m.NumSessions, f, arch)
		case 2:
			setU8(&m.Type, f)
		case 3:
			setU8(&m.Event, f)
		case 4:
			setU8(&m.EventType, f)
		case 5:
			setU32(&m.LocalTimestamp, f, arch)
		}
	}
	return m
}

func decodeUnknown(def *Definition, body []byte) Message {
	u := Unknown{Global: def.Global, Fields: make([]UnknownField, 0, len(def.Fields))}
	pos := 0
	for _, fd := range def.Fields {
		data := make([]byte, fd.Size)
		copy(data, body[pos:pos+int(fd.Size)])
		u.Fields = append(u.Fields, UnknownField{Num: fd.Num, Type: fd.Type, Data: data})
		pos += int(fd.Size)
	}
	return u
}
