package fitfile

import (
	"encoding/binary"
	"fmt"
)

const (
	headerSizeNoCRC = 12
	headerSizeCRC   = 14
	headerMagic     = ".FIT"

	// Defaults written by the encoder: protocol 2.0, profile 22.03.
	defaultProtocolVersion = 0x20
	defaultProfileVersion  = 2203
)

// FileHeader is the fixed file prologue. All of its multi-byte numeric
// fields are little-endian regardless of any definition's architecture byte.
type FileHeader struct {
	Size            uint8
	ProtocolVersion uint8
	ProfileVersion  uint16
	DataSize        uint32
	CRC             uint16 // present only when Size == 14
}

// parseHeader reads and validates the file prologue. A stored header CRC of
// zero is accepted without verification; devices legally write zero there.
func parseHeader(data []byte) (FileHeader, error) {
	if len(data) < 1 {
		return FileHeader{}, ErrTruncatedHeader
	}
	size := data[0]
	if size != headerSizeNoCRC && size != headerSizeCRC {
		return FileHeader{}, fmt.Errorf("%w: %d", ErrUnsupportedHeaderSize, size)
	}
	if len(data) < int(size) {
		return FileHeader{}, fmt.Errorf("%w: have %d bytes, need %d", ErrTruncatedHeader, len(data), size)
	}
	if string(data[8:12]) != headerMagic {
		return FileHeader{}, fmt.Errorf("%w: %q", ErrInvalidMagic, data[8:12])
	}

	h := FileHeader{
		Size:            size,
		ProtocolVersion: data[1],
		ProfileVersion:  binary.LittleEndian.Uint16(data[2:4]),
		DataSize:        binary.LittleEndian.Uint32(data[4:8]),
	}
	if size == headerSizeCRC {
		h.CRC = binary.LittleEndian.Uint16(data[12:14])
		if h.CRC != 0 {
			if computed := Checksum(data[:12]); computed != h.CRC {
				return h, &CRCMismatchError{Scope: "header", Stored: h.CRC, Computed: computed}
			}
		}
	}
	return h, nil
}

// appendTo writes the 14-byte header form with its CRC over the first 12
// bytes.
func (h FileHeader) appendTo(buf []byte) []byte {
	start := len(buf)
	buf = append(buf, headerSizeCRC, h.ProtocolVersion)
	buf = binary.LittleEndian.AppendUint16(buf, h.ProfileVersion)
	buf = binary.LittleEndian.AppendUint32(buf, h.DataSize)
	buf = append(buf, headerMagic...)
	crc := Checksum(buf[start : start+12])
	return binary.LittleEndian.AppendUint16(buf, crc)
}
