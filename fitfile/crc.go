package fitfile

// crcTable is the 16-entry nibble table from the FIT SDK. The FIT file
// checksum is not CRC-16/CCITT; it folds the low nibble of each byte first,
// then the high nibble.
var crcTable = [16]uint16{
	0x0000, 0xCC01, 0xD801, 0x1400, 0xF001, 0x3C00, 0x2800, 0xE401,
	0xA001, 0x6C00, 0x7800, 0xB401, 0x5000, 0x9C01, 0x8801, 0x4400,
}

// Checksum16 folds one byte into a running FIT checksum.
func Checksum16(crc uint16, b byte) uint16 {
	tmp := crcTable[crc&0xF]
	crc = (crc >> 4) & 0x0FFF
	crc = crc ^ tmp ^ crcTable[b&0xF]

	tmp = crcTable[crc&0xF]
	crc = (crc >> 4) & 0x0FFF
	crc = crc ^ tmp ^ crcTable[(b>>4)&0xF]

	return crc
}

// Checksum computes the FIT checksum of data, starting from zero.
func Checksum(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc = Checksum16(crc, b)
	}
	return crc
}
