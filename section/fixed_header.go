package section

import (
	"fmt"

	"github.com/fseqio/fseq/errs"
	"github.com/fseqio/fseq/format"
	"github.com/fseqio/fseq/internal/leio"
)

// Geometry holds the show dimensions common to both dialects (spec §3,
// SequenceGeometry).
type Geometry struct {
	ChannelCount  uint32
	FrameCount    uint32
	StepTimeMs    uint16
	StartChannel  uint32
}

// DefaultStepTimeMs is the default frame period when a caller doesn't
// specify one.
const DefaultStepTimeMs uint16 = 50

// Validate checks the geometry invariants from spec §3: channel_count > 0
// and step_time_ms > 0.
func (g Geometry) Validate() error {
	if g.ChannelCount == 0 {
		return fmt.Errorf("%w: channel_count must be > 0", errs.ErrInvalidGeometry)
	}
	if g.StepTimeMs == 0 {
		return fmt.Errorf("%w: step_time_ms must be > 0", errs.ErrInvalidGeometry)
	}

	return nil
}

// CommonHeader is the portion of the fixed header shared by V1 and V2
// (spec §4.2, bytes 4..19; the magic at bytes 0..3 is checked separately
// by ParseMagic).
type CommonHeader struct {
	ChannelDataOffset uint16
	VersionMinor      uint8
	VersionMajor      uint8
	FixedHeaderSize   uint16
	ChannelCount      uint32
	FrameCount        uint32
	StepTimeMs        uint16
}

// ParseMagic validates the 4-byte file magic. Readers accept 'P' or 'F' at
// byte 0 and require exact "SEQ" at bytes 1..3 (spec §4.2, §6).
func ParseMagic(b []byte) error {
	if len(b) < 4 {
		return fmt.Errorf("%w: magic", errs.ErrShortRead)
	}
	if b[0] != 'P' && b[0] != 'F' {
		return fmt.Errorf("%w: byte 0 = 0x%02x", errs.ErrBadMagic, b[0])
	}
	if b[1] != magicTail[0] || b[2] != magicTail[1] || b[3] != magicTail[2] {
		return fmt.Errorf("%w: bytes 1..3", errs.ErrBadMagic)
	}

	return nil
}

// WriteMagic appends the canonical "PSEQ" magic to buf.
func WriteMagic(buf []byte) []byte {
	return append(buf, 'P', 'S', 'E', 'Q')
}

// ParseCommonHeader parses bytes 4..19 of the fixed header (the magic at
// bytes 0..3 is parsed separately via ParseMagic).
func ParseCommonHeader(b []byte) (CommonHeader, error) {
	if len(b) < CommonHeaderSize-4 {
		return CommonHeader{}, fmt.Errorf("%w: common header", errs.ErrShortRead)
	}

	return CommonHeader{
		ChannelDataOffset: leio.Uint16(b[0:2]),
		VersionMinor:      b[2],
		VersionMajor:      b[3],
		FixedHeaderSize:   leio.Uint16(b[4:6]),
		ChannelCount:      leio.Uint32(b[6:10]),
		FrameCount:        leio.Uint32(b[10:14]),
		StepTimeMs:        leio.Uint16(b[14:16]),
	}, nil
}

// Bytes serializes the common header fields (bytes 4..19, magic excluded).
func (h CommonHeader) Bytes() []byte {
	b := make([]byte, CommonHeaderSize-4)
	leio.PutUint16(b[0:2], h.ChannelDataOffset)
	b[2] = h.VersionMinor
	b[3] = h.VersionMajor
	leio.PutUint16(b[4:6], h.FixedHeaderSize)
	leio.PutUint32(b[6:10], h.ChannelCount)
	leio.PutUint32(b[10:14], h.FrameCount)
	leio.PutUint16(b[14:16], h.StepTimeMs)

	return b
}

// Dialect returns the dialect implied by VersionMajor, or an error if it's
// neither 1 nor 2 (spec §4.8, Facade dispatch).
func (h CommonHeader) Dialect() (format.Dialect, error) {
	switch h.VersionMajor {
	case uint8(format.DialectV1):
		return format.DialectV1, nil
	case uint8(format.DialectV2):
		return format.DialectV2, nil
	default:
		return 0, fmt.Errorf("%w: version_major=%d", errs.ErrUnsupportedVersion, h.VersionMajor)
	}
}

// V1Extra holds the V1-only remainder of the fixed header, bytes 20..27
// (spec §4.2). Readers must not reject unknown gamma/color_order values;
// writers always emit gamma=1, color_order=2, and zeros elsewhere.
type V1Extra struct {
	UniverseCount uint16
	UniverseSize  uint16
	Gamma         uint8
	ColorOrder    uint8
}

// DefaultV1Extra returns the values a writer emits for the V1-only tail.
func DefaultV1Extra() V1Extra {
	return V1Extra{Gamma: 1, ColorOrder: 2}
}

// ParseV1Extra parses bytes 20..27 of a V1 fixed header.
func ParseV1Extra(b []byte) (V1Extra, error) {
	if len(b) < 8 {
		return V1Extra{}, fmt.Errorf("%w: v1 extra", errs.ErrShortRead)
	}

	return V1Extra{
		UniverseCount: leio.Uint16(b[0:2]),
		UniverseSize:  leio.Uint16(b[2:4]),
		Gamma:         b[4],
		ColorOrder:    b[5],
	}, nil
}

// Bytes serializes the V1-only tail (bytes 20..27).
func (v V1Extra) Bytes() []byte {
	b := make([]byte, 8)
	leio.PutUint16(b[0:2], v.UniverseCount)
	leio.PutUint16(b[2:4], v.UniverseSize)
	b[4] = v.Gamma
	b[5] = v.ColorOrder
	// b[6], b[7] reserved, left zero

	return b
}

// V2Extra holds the V2-only remainder of the fixed header, bytes 20..31
// (spec §4.2).
type V2Extra struct {
	CompressionType  format.Compression
	BlockCount       uint8
	SparseRangeCount uint8
	UniqueID         uint64
}

// ParseV2Extra parses bytes 20..31 of a V2 fixed header.
func ParseV2Extra(b []byte) (V2Extra, error) {
	if len(b) < 12 {
		return V2Extra{}, fmt.Errorf("%w: v2 extra", errs.ErrShortRead)
	}

	return V2Extra{
		CompressionType:  format.Compression(b[0]),
		BlockCount:       b[1],
		SparseRangeCount: b[2],
		// b[3] reserved
		UniqueID: leio.Uint64(b[4:12]),
	}, nil
}

// Bytes serializes the V2-only tail (bytes 20..31).
func (v V2Extra) Bytes() []byte {
	b := make([]byte, 12)
	b[0] = uint8(v.CompressionType)
	b[1] = v.BlockCount
	b[2] = v.SparseRangeCount
	// b[3] reserved = 0
	leio.PutUint64(b[4:12], v.UniqueID)

	return b
}
