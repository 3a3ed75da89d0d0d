// Package section implements the fixed and variable-length on-disk
// regions of an FSEQ container: the common + per-dialect fixed header
// (spec §4.2), the variable-header metadata table (spec §4.3), the V2
// sparse-range table (spec §4.4), and the V2 block index (spec §4.5).
package section

const (
	// CommonHeaderSize is the size, in bytes, of the fields shared by both
	// dialects: magic, channel_data_offset, versions, fixed_header_size,
	// channel_count, frame_count, step_time_ms (spec §4.2).
	CommonHeaderSize = 20

	// V1HeaderSize is the total fixed-header size for a V1 file (common
	// fields plus universe_count, universe_size, gamma, color_order, and
	// two reserved bytes).
	V1HeaderSize = 28

	// V2HeaderSize is the total fixed-header size for a V2 file (common
	// fields plus compression_type, block_count, sparse_range_count,
	// reserved, and an 8-byte unique_id).
	V2HeaderSize = 32

	// BlockDescriptorSize is the on-disk size of one (first_frame,
	// byte_length) block index entry.
	BlockDescriptorSize = 8

	// SparseRangeSize is the on-disk size of one (first_channel, length)
	// sparse-range entry, each a 24-bit field.
	SparseRangeSize = 6

	// VariableHeaderFixedSize is the size of a variable-header record's
	// fixed prefix: a 2-byte total_length followed by a 2-byte code.
	VariableHeaderFixedSize = 4

	// MaxBlockCount is the maximum number of blocks a V2 compressed file
	// may declare in its index (block_count is stored as a single byte).
	MaxBlockCount = 255

	// SentinelFirstFrame is the first_frame value reserved for a synthetic
	// trailing block descriptor. This package builds no such descriptor
	// (FinalizeByteLengths takes the last block's end from dataEnd), and
	// EncodeBlockIndex rejects any descriptor carrying it, so it is never
	// written to disk.
	SentinelFirstFrame = 99_999_999
)

// magicTail is bytes 1..3 of the file magic ("PSEQ"/"FSEQ"); byte 0 is
// 'P' on write, and readers additionally accept 'F' there (spec §4.2, §6).
var magicTail = [3]byte{'S', 'E', 'Q'}
