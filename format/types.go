// Package format defines the small enumerations shared by every layer of
// the FSEQ codec: the on-disk container dialect and the per-payload
// compression scheme.
package format

// Dialect identifies the on-disk container layout, selected by
// version_major in the fixed header (spec §4.2).
type Dialect uint8

const (
	// DialectV1 is the legacy uncompressed layout.
	DialectV1 Dialect = 1
	// DialectV2 is the modern block-compressed, sparsity-aware layout.
	DialectV2 Dialect = 2
)

func (d Dialect) String() string {
	switch d {
	case DialectV1:
		return "V1"
	case DialectV2:
		return "V2"
	default:
		return "Unknown"
	}
}

// Compression identifies the compression scheme applied to a V2 frame
// data region. V1 files are always CompressionNone.
type Compression uint8

const (
	// CompressionNone stores frame data uncompressed.
	CompressionNone Compression = 0
	// CompressionZstd stores frame data as zstd-compressed blocks.
	CompressionZstd Compression = 1
	// CompressionZlibReserved is a reserved, unimplemented code point.
	// Readers and writers must reject it explicitly rather than silently
	// falling back to another scheme (spec §9, Open Question (c)).
	CompressionZlibReserved Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionZlibReserved:
		return "ZlibReserved"
	default:
		return "Unknown"
	}
}
