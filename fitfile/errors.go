package fitfile

import (
	"errors"
	"fmt"
)

// Sentinel decode/encode failures. All of them surface through Decode and
// Encode wrapped with positional context, so callers match with errors.Is.
var (
	ErrTruncatedHeader       = errors.New("fitfile: truncated header")
	ErrInvalidMagic          = errors.New(`fitfile: header data type is not ".FIT"`)
	ErrUnsupportedHeaderSize = errors.New("fitfile: unsupported header size")
	ErrCompressedTimestamp   = errors.New("fitfile: compressed timestamp record headers are not supported")
	ErrDeveloperFields       = errors.New("fitfile: developer field definitions are not supported")
	ErrTruncatedMessage      = errors.New("fitfile: message body exceeds remaining data")
	ErrSizeInvariant         = errors.New("fitfile: header size + data size + 2 does not match file size")
)

// UndefinedLocalTypeError reports a data message whose local message type has
// no prior definition.
type UndefinedLocalTypeError struct {
	Local  uint8
	Offset int
}

func (e *UndefinedLocalTypeError) Error() string {
	return fmt.Sprintf("fitfile: data message at offset %d references undefined local type %d", e.Offset, e.Local)
}

// UnknownBaseTypeError reports a field descriptor with a base type code the
// codec does not understand.
type UnknownBaseTypeError struct {
	Code uint8
}

func (e *UnknownBaseTypeError) Error() string {
	return fmt.Sprintf("fitfile: unknown base type 0x%02X", e.Code)
}

// CRCMismatchError reports a stored checksum that does not match the bytes it
// covers. Scope is "header" or "file". For file scope the decoder still
// returns every message parsed before the trailer, so callers can inspect
// malformed files.
type CRCMismatchError struct {
	Scope    string
	Stored   uint16
	Computed uint16
}

func (e *CRCMismatchError) Error() string {
	return fmt.Sprintf("fitfile: %s crc mismatch: stored 0x%04X, computed 0x%04X", e.Scope, e.Stored, e.Computed)
}
