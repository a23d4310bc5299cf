// Package fitfile decodes and encodes FIT activity files.
//
// A FIT file is a 12- or 14-byte header, a stream of definition and data
// records, and a 2-byte trailing checksum:
//
//	[header_size(1)][protocol(1)][profile(2 LE)][data_size(4 LE)][".FIT"][header_crc(2 LE)]
//	[records...]
//	[file_crc(2 LE)]
//
// Each data record is interpreted against the most recent definition record
// that claimed its 4-bit local message type. Definitions may be overwritten
// mid-file; the decoder always honors the latest one. The checksum is the
// Garmin nibble-wise CRC-16, which is not CRC-16/CCITT.
//
// Decode returns the ordered message stream as typed values (FileID, Record,
// Lap, Session, Activity, ...) with unknown global message numbers preserved
// as Unknown. Encode is the mirror operation and emits one definition record
// per distinct message layout.
//
// Messages carry wire-scale integers (FIT-epoch seconds, semicircles, mm/s);
// the conversion helpers in this package translate to and from SI units.
package fitfile
