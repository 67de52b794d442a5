package amd64

import "encoding/binary"

// writeLE32 writes a 32-bit value in little-endian order.
func writeLE32(buf []byte, v uint32) {
	binary.LittleEndian.PutUint32(buf, v)
}

// disp8 converts a signed 8-bit displacement to its two's-complement byte.
// Positive stack offsets are a precondition violation everywhere this
// compiler emits a [rsp+disp8] form; callers are responsible for that
// check, this helper only does the bit conversion.
func disp8(n int) byte {
	if n < -128 || n > 127 {
		panic("amd64: displacement out of int8 range")
	}
	if n < 0 {
		return byte(256 + n)
	}
	return byte(n)
}
