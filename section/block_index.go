package section

import (
	"fmt"

	"github.com/fseqio/fseq/errs"
	"github.com/fseqio/fseq/internal/leio"
)

// BlockDescriptor is one (first_frame, byte_length) entry from the V2
// block index (spec §4.5). Real, on-disk descriptors never carry
// SentinelFirstFrame as first_frame.
type BlockDescriptor struct {
	FirstFrame uint32
	ByteLength uint32
}

const (
	// minBlockBytes is the smallest block size the sizing policy considers
	// (spec §4.5).
	minBlockBytes = 131_072
	// blockSizeDoublingCeiling is the block size above which growth switches
	// from doubling to fixed 1 MiB increments (spec §4.5).
	blockSizeDoublingCeiling = 2_076_672
	// blockSizeIncrement is the fixed growth step used once blockBytes
	// exceeds blockSizeDoublingCeiling.
	blockSizeIncrement = 1024 * 1024
	// minFramesPerBlock is the floor on frames_per_block regardless of how
	// small bytesPerFrame is (spec §4.5).
	minFramesPerBlock = 10
)

// BlockPlan is the outcome of the block-sizing policy: a candidate block
// byte budget and the frames-per-block/block-count it implies.
type BlockPlan struct {
	BlockBytes     int
	FramesPerBlock int
	MaxBlocks      int
}

// PlanBlockLayout computes a block layout for a V2 compressed file with
// the given channel count and total frame count, per the spec §4.5 sizing
// policy: starting from data_size = channel_count * frame_count, grow the
// candidate block size (double under ~2MiB, then by fixed 1MiB steps)
// until data_size/block_bytes no longer exceeds 255, then derive
// frames_per_block (floor 10) and the number of reserved index slots.
func PlanBlockLayout(channelCount, frameCount int) (BlockPlan, error) {
	if channelCount <= 0 || frameCount <= 0 {
		return BlockPlan{}, fmt.Errorf("%w: block layout requires positive channel count and frame count", errs.ErrInvalidGeometry)
	}

	dataSize := channelCount * frameCount
	blockBytes := minBlockBytes
	n := dataSize / blockBytes

	for n > MaxBlockCount {
		if blockBytes < blockSizeDoublingCeiling {
			blockBytes *= 2
		} else {
			blockBytes += blockSizeIncrement
		}
		n = dataSize / blockBytes
	}

	divisor := n
	if divisor < 1 {
		divisor = 1
	}

	framesPerBlock := frameCount / divisor
	if framesPerBlock < minFramesPerBlock {
		framesPerBlock = minFramesPerBlock
	}

	maxBlocks := frameCount/framesPerBlock + 1

	return BlockPlan{
		BlockBytes:     blockBytes,
		FramesPerBlock: framesPerBlock,
		MaxBlocks:      maxBlocks,
	}, nil
}

// ParseBlockIndex decodes count 8-byte block descriptors from b.
func ParseBlockIndex(b []byte, count int) ([]BlockDescriptor, error) {
	need := count * BlockDescriptorSize
	if len(b) < need {
		return nil, fmt.Errorf("%w: block index", errs.ErrShortRead)
	}

	descs := make([]BlockDescriptor, count)
	for i := range descs {
		off := i * BlockDescriptorSize
		descs[i] = BlockDescriptor{
			FirstFrame: leio.Uint32(b[off : off+4]),
			ByteLength: leio.Uint32(b[off+4 : off+8]),
		}
	}

	return descs, nil
}

// EncodeBlockIndex serializes descs as a sequence of 8-byte entries. A
// descriptor whose FirstFrame is SentinelFirstFrame is rejected with an
// error.
func EncodeBlockIndex(descs []BlockDescriptor) ([]byte, error) {
	buf := make([]byte, 0, len(descs)*BlockDescriptorSize)
	for _, d := range descs {
		if d.FirstFrame == SentinelFirstFrame {
			return nil, fmt.Errorf("%w: sentinel block descriptor reached encode", errs.ErrInvalidHeaderSize)
		}
		buf = leio.AppendUint32(buf, d.FirstFrame)
		buf = leio.AppendUint32(buf, d.ByteLength)
	}

	return buf, nil
}

// PlaceholderBlockIndex returns count zero-valued descriptors sized to
// reserve index space in the fixed header region before a block's
// compressed byte length is known (spec §4.5, §7: a writer dropped before
// finalize leaves these zeroed on disk).
func PlaceholderBlockIndex(count int) []BlockDescriptor {
	return make([]BlockDescriptor, count)
}

// FinalizeByteLengths computes each block's ByteLength as the distance to
// the next block's start offset (or to dataEnd for the last real block),
// given the first_frame of each block and the file offset at which each
// block's compressed bytes began (spec §4.5, §4.7 finalize). The returned
// slice has exactly len(firstFrames) entries; it never contains the
// sentinel, since firstFrames is expected to hold only real blocks.
func FinalizeByteLengths(firstFrames []uint32, blockStartOffsets []uint32, dataEnd uint32) []BlockDescriptor {
	descs := make([]BlockDescriptor, len(firstFrames))
	for i := range firstFrames {
		end := dataEnd
		if i+1 < len(blockStartOffsets) {
			end = blockStartOffsets[i+1]
		}

		descs[i] = BlockDescriptor{
			FirstFrame: firstFrames[i],
			ByteLength: end - blockStartOffsets[i],
		}
	}

	return descs
}
