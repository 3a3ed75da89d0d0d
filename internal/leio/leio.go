// Package leio provides the little-endian integer read/write primitives
// the FSEQ container format is built on. Every multi-byte integer on disk
// is little-endian (spec §4.1); there is no big-endian dialect, so unlike
// the endian-engine abstraction this package's ancestor used, leio bakes
// in encoding/binary.LittleEndian rather than taking a pluggable byte
// order.
package leio

import "encoding/binary"

// RoundUp4 returns x rounded up to the next multiple of 4.
func RoundUp4(x int) int {
	return x + ((4 - x%4) % 4)
}

// Uint16 reads a 2-byte little-endian unsigned integer from b[0:2].
func Uint16(b []byte) uint16 {
	return binary.LittleEndian.Uint16(b)
}

// Uint32 reads a 4-byte little-endian unsigned integer from b[0:4].
func Uint32(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b)
}

// Uint64 reads an 8-byte little-endian unsigned integer from b[0:8].
func Uint64(b []byte) uint64 {
	return binary.LittleEndian.Uint64(b)
}

// Uint24 reads a 3-byte little-endian unsigned integer from b[0:3].
func Uint24(b []byte) uint32 {
	_ = b[2] // bounds check hint
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
}

// PutUint16 writes v as a 2-byte little-endian integer into b[0:2].
func PutUint16(b []byte, v uint16) {
	binary.LittleEndian.PutUint16(b, v)
}

// PutUint32 writes v as a 4-byte little-endian integer into b[0:4].
func PutUint32(b []byte, v uint32) {
	binary.LittleEndian.PutUint32(b, v)
}

// PutUint64 writes v as an 8-byte little-endian integer into b[0:8].
func PutUint64(b []byte, v uint64) {
	binary.LittleEndian.PutUint64(b, v)
}

// PutUint24 writes the low 24 bits of v as a 3-byte little-endian integer
// into b[0:3].
func PutUint24(b []byte, v uint32) {
	_ = b[2] // bounds check hint
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
}

// AppendUint16 appends v to buf as a 2-byte little-endian integer.
func AppendUint16(buf []byte, v uint16) []byte {
	return binary.LittleEndian.AppendUint16(buf, v)
}

// AppendUint32 appends v to buf as a 4-byte little-endian integer.
func AppendUint32(buf []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(buf, v)
}

// AppendUint64 appends v to buf as an 8-byte little-endian integer.
func AppendUint64(buf []byte, v uint64) []byte {
	return binary.LittleEndian.AppendUint64(buf, v)
}

// AppendUint24 appends the low 24 bits of v to buf as a 3-byte
// little-endian integer.
func AppendUint24(buf []byte, v uint32) []byte {
	return append(buf, byte(v), byte(v>>8), byte(v>>16))
}
