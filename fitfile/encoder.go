package fitfile

import (
	"encoding/binary"
	"fmt"
)

// Canonical field layouts emitted by the encoder, one per message variant.
// Field numbers follow the FIT profile slice this application uses.
var (
	fileIDLayout = []FieldDef{
		{Num: 0, Size: 1, Type: BaseEnum},
		{Num: 1, Size: 2, Type: BaseUint16},
		{Num: 2, Size: 2, Type: BaseUint16},
		{Num: 3, Size: 4, Type: BaseUint32z},
		{Num: 4, Size: 4, Type: BaseUint32},
	}
	recordLayout = []FieldDef{
		{Num: 253, Size: 4, Type: BaseUint32},
		{Num: 0, Size: 4, Type: BaseSint32},
		{Num: 1, Size: 4, Type: BaseSint32},
		{Num: 2, Size: 2, Type: BaseUint16},
		{Num: 3, Size: 1, Type: BaseUint8},
		{Num: 4, Size: 1, Type: BaseUint8},
		{Num: 5, Size: 4, Type: BaseUint32},
		{Num: 6, Size: 2, Type: BaseUint16},
		{Num: 7, Size: 2, Type: BaseUint16},
		{Num: 13, Size: 1, Type: BaseSint8},
	}
	lapLayout = []FieldDef{
		{Num: 253, Size: 4, Type: BaseUint32},
		{Num: 2, Size: 4, Type: BaseUint32},
		{Num: 7, Size: 4, Type: BaseUint32},
		{Num: 8, Size: 4, Type: BaseUint32},
		{Num: 9, Size: 4, Type: BaseUint32},
		{Num: 13, Size: 2, Type: BaseUint16},
		{Num: 14, Size: 2, Type: BaseUint16},
		{Num: 17, Size: 1, Type: BaseUint8},
		{Num: 18, Size: 1, Type: BaseUint8},
		{Num: 19, Size: 2, Type: BaseUint16},
		{Num: 20, Size: 2, Type: BaseUint16},
	}
	sessionLayout = []FieldDef{
		{Num: 253, Size: 4, Type: BaseUint32},
		{Num: 2, Size: 4, Type: BaseUint32},
		{Num: 5, Size: 1, Type: BaseEnum},
		{Num: 6, Size: 1, Type: BaseEnum},
		{Num: 7, Size: 4, Type: BaseUint32},
		{Num: 8, Size: 4, Type: BaseUint32},
		{Num: 9, Size: 4, Type: BaseUint32},
		{Num: 14, Size: 2, Type: BaseUint16},
		{Num: 15, Size: 2, Type: BaseUint16},
		{Num: 18, Size: 1, Type: BaseUint8},
		{Num: 19, Size: 1, Type: BaseUint8},
		{Num: 20, Size: 2, Type: BaseUint16},
		{Num: 21, Size: 2, Type: BaseUint16},
		{Num: 26, Size: 2, Type: BaseUint16},
	}
	eventLayout = []FieldDef{
		{Num: 253, Size: 4, Type: BaseUint32},
		{Num: 0, Size: 1, Type: BaseEnum},
		{Num: 1, Size: 1, Type: BaseEnum},
		{Num: 3, Size: 4, Type: BaseUint32},
	}
	deviceInfoLayout = []FieldDef{
		{Num: 253, Size: 4, Type: BaseUint32},
		{Num: 0, Size: 1, Type: BaseUint8},
		{Num: 2, Size: 2, Type: BaseUint16},
		{Num: 3, Size: 4, Type: BaseUint32z},
		{Num: 4, Size: 2, Type: BaseUint16},
	}
	activityLayout = []FieldDef{
		{Num: 253, Size: 4, Type: BaseUint32},
		{Num: 0, Size: 4, Type: BaseUint32},
		{Num: 1, Size: 2, Type: BaseUint16},
		{Num: 2, Size: 1, Type: BaseEnum},
		{Num: 3, Size: 1, Type: BaseEnum},
		{Num: 4, Size: 1, Type: BaseEnum},
		{Num: 5, Size: 4, Type: BaseUint32},
	}
)

// Encoder builds one FIT file from an ordered message sequence. A definition
// record is emitted only when a message's layout has no live slot yet.
type Encoder struct {
	arch            binary.ByteOrder
	archByte        uint8
	registry        *Registry
	body            []byte
	protocolVersion uint8
	profileVersion  uint16
}

// NewEncoder returns an encoder writing little-endian field values under a
// 14-byte header.
func NewEncoder() *Encoder {
	return &Encoder{
		arch:            binary.LittleEndian,
		registry:        NewRegistry(),
		protocolVersion: defaultProtocolVersion,
		profileVersion:  defaultProfileVersion,
	}
}

// SetArchitecture selects the byte order for data field values. The header,
// the trailer CRC, and every definition's global message number stay at their
// fixed endianness either way.
func (e *Encoder) SetArchitecture(order binary.ByteOrder) {
	e.arch = order
	e.archByte = 0
	if order == binary.ByteOrder(binary.BigEndian) {
		e.archByte = 1
	}
}

// Add appends one message, lazily emitting its definition record first.
func (e *Encoder) Add(msg Message) error {
	fields, err := layoutFor(msg)
	if err != nil {
		return err
	}
	global := msg.GlobalNumber()
	local, ok := e.registry.Lookup(global, fields)
	if !ok {
		local = e.registry.Assign()
		e.body = append(e.body, definitionMask|local, 0x00, e.archByte)
		e.body = binary.BigEndian.AppendUint16(e.body, global)
		e.body = append(e.body, uint8(len(fields)))
		for _, f := range fields {
			e.body = append(e.body, f.Num, f.Size, uint8(f.Type))
		}
		e.registry.Define(&Definition{
			LocalType: local,
			ArchByte:  e.archByte,
			Global:    global,
			Fields:    fields,
		})
	}
	e.body = append(e.body, local)
	e.body = appendMessage(e.body, msg, e.arch)
	return nil
}

// Finalize assembles header, message stream and trailer CRC. The header's
// data size never counts the two trailing CRC bytes.
func (e *Encoder) Finalize() []byte {
	h := FileHeader{
		Size:            headerSizeCRC,
		ProtocolVersion: e.protocolVersion,
		ProfileVersion:  e.profileVersion,
		DataSize:        uint32(len(e.body)),
	}
	out := make([]byte, 0, headerSizeCRC+len(e.body)+2)
	out = h.appendTo(out)
	out = append(out, e.body...)
	crc := Checksum(out)
	return binary.LittleEndian.AppendUint16(out, crc)
}

// Encode writes msgs as a complete FIT file with little-endian field values.
func Encode(msgs []Message) ([]byte, error) {
	e := NewEncoder()
	for i, m := range msgs {
		if err := e.Add(m); err != nil {
			return nil, fmt.Errorf("fitfile: encode message %d: %w", i, err)
		}
	}
	return e.Finalize(), nil
}

func layoutFor(msg Message) ([]FieldDef, error) {
	switch m := msg.(type) {
	case FileID:
		return fileIDLayout, nil
	case Record:
		return recordLayout, nil
	case Lap:
		return lapLayout, nil
	case Session:
		return sessionLayout, nil
	case Event:
		return eventLayout, nil
	case DeviceInfo:
		return deviceInfoLayout, nil
	case Activity:
		return activityLayout, nil
	case Unknown:
		fields := make([]FieldDef, 0, len(m.Fields))
		for _, f := range m.Fields {
			if !f.Type.Known() {
				return nil, &UnknownBaseTypeError{Code: uint8(f.Type)}
			}
			if len(f.Data) == 0 || len(f.Data) > 255 {
				return nil, fmt.Errorf("fitfile: field %d of unknown message %d has unencodable size %d",
					f.Num, m.Global, len(f.Data))
			}
			fields = append(fields, FieldDef{Num: f.Num, Size: uint8(len(f.Data)), Type: f.Type})
		}
		return fields, nil
	default:
		return nil, fmt.Errorf("fitfile: cannot encode message type %T", msg)
	}
}

func appendU16(buf []byte, arch binary.ByteOrder, v uint16) []byte {
	var b [2]byte
	arch.PutUint16(b[:], v)
	return append(buf, b[:]...)
}

func appendU32(buf []byte, arch binary.ByteOrder, v uint32) []byte {
	var b [4]byte
	arch.PutUint32(b[:], v)
	return append(buf, b[:]...)
}

func appendMessage(buf []byte, msg Message, arch binary.ByteOrder) []byte {
	switch m := msg.(type) {
	case FileID:
		buf = append(buf, m.Type)
		buf = appendU16(buf, arch, m.Manufacturer)
		buf = appendU16(buf, arch, m.Product)
		buf = appendU32(buf, arch, m.SerialNumber)
		buf = appendU32(buf, arch, m.TimeCreated)
	case Record:
		buf = appendU32(buf, arch, m.Timestamp)
		buf = appendU32(buf, arch, uint32(m.PositionLat))
		buf = appendU32(buf, arch, uint32(m.PositionLong))
		buf = appendU16(buf, arch, m.Altitude)
		buf = append(buf, m.HeartRate, m.Cadence)
		buf = appendU32(buf, arch, m.Distance)
		buf = appendU16(buf, arch, m.Speed)
		buf = appendU16(buf, arch, m.Power)
		buf = append(buf, byte(m.Temperature))
	case Lap:
		buf = appendU32(buf, arch, m.Timestamp)
		buf = appendU32(buf, arch, m.StartTime)
		buf = appendU32(buf, arch, m.TotalElapsedTime)
		buf = appendU32(buf, arch, m.TotalTimerTime)
		buf = appendU32(buf, arch, m.TotalDistance)
		buf = appendU16(buf, arch, m.AvgSpeed)
		buf = appendU16(buf, arch, m.MaxSpeed)
		buf = append(buf, m.AvgCadence, m.MaxCadence)
		buf = appendU16(buf, arch, m.AvgPower)
		buf = appendU16(buf, arch, m.MaxPower)
	case Session:
		buf = appendU32(buf, arch, m.Timestamp)
		buf = appendU32(buf, arch, m.StartTime)
		buf = append(buf, m.Sport, m.SubSport)
		buf = appendU32(buf, arch, m.TotalElapsedTime)
		buf = appendU32(buf, arch, m.TotalTimerTime)
		buf = appendU32(buf, arch, m.TotalDistance)
		buf = appendU16(buf, arch, m.AvgSpeed)
		buf = appendU16(buf, arch, m.MaxSpeed)
		buf = append(buf, m.AvgCadence, m.MaxCadence)
		buf = appendU16(buf, arch, m.AvgPower)
		buf = appendU16(buf, arch, m.MaxPower)
		buf = appendU16(buf, arch, m.NumLaps)
	case Event:
		buf = appendU32(buf, arch, m.Timestamp)
		buf = append(buf, m.Event, m.EventType)
		buf = appendU32(buf, arch, m.Data)
	case DeviceInfo:
		buf = appendU32(buf, arch, m.Timestamp)
		buf = append(buf, m.DeviceIndex)
		buf = appendU16(buf, arch, m.Manufacturer)
		buf = appendU32(buf, arch, m.SerialNumber)
		buf = appendU16(buf, arch, m.Product)
	case Activity:
		buf = appendU32(buf, arch, m.Timestamp)
		buf = appendU32(buf, arch, m.TotalTimerTime)
		buf = appendU16(buf, arch, m.NumSessions)
		buf = append(buf, m.Type, m.Event, m.EventType)
		buf = appendU32(buf, arch, m.LocalTimestamp)
	case Unknown:
		for _, f := range m.Fields {
			buf = append(buf, f.Data...)
		}
	}
	return buf
}
