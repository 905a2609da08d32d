package protocol

// crc8Poly is the F007TP CRC-8 polynomial x^8 + x^5 + x^4 + 1.
const crc8Poly = 0x31

// CRC8Bits computes the F007TP CRC-8 over a bit sequence (one bit per
// element, most significant first): polynomial 0x31, initial value 0, no
// reflection, no final XOR.
func CRC8Bits(bits []uint8) uint8 {
	var crc uint8
	for _, bit := range bits {
		mix := (crc >> 7) ^ (bit & 1)
		crc <<= 1
		if mix != 0 {
			crc ^= crc8Poly
		}
	}
	return crc
}
