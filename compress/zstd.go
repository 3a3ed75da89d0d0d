package compress

// ZstdCodec provides Zstandard compression for V2 frame-data blocks.
//
// Decompression is one-shot: an entire compressed block is decoded into
// memory at once, matching the reader's per-block decompression window
// (spec §4.6). Compression is streamed: the writer opens one
// StreamEncoder per block, feeds it whole frames (or sparse-range
// slices) as they're appended, and closes it when the block boundary is
// reached (spec §4.7).
type ZstdCodec struct{}

var _ Codec = ZstdCodec{}

// NewZstdCodec creates a new Zstd codec with default settings.
func NewZstdCodec() ZstdCodec {
	return ZstdCodec{}
}
