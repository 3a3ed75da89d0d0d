package section

import (
	"fmt"

	"github.com/fseqio/fseq/errs"
	"github.com/fseqio/fseq/internal/leio"
)

// SparseRange is one (first_channel, length) entry from a V2 sparse-range
// table (spec §4.4). Both fields are 24-bit on disk.
type SparseRange struct {
	FirstChannel uint32
	Length       uint32
}

const max24 = 1<<24 - 1

// ParseSparseRanges decodes count 6-byte sparse-range entries from b.
func ParseSparseRanges(b []byte, count int) ([]SparseRange, error) {
	need := count * SparseRangeSize
	if len(b) < need {
		return nil, fmt.Errorf("%w: sparse range table", errs.ErrShortRead)
	}

	ranges := make([]SparseRange, count)
	for i := range ranges {
		off := i * SparseRangeSize
		ranges[i] = SparseRange{
			FirstChannel: leio.Uint24(b[off : off+3]),
			Length:       leio.Uint24(b[off+3 : off+6]),
		}
	}

	return ranges, nil
}

// EncodeSparseRanges serializes ranges as a sequence of 6-byte entries.
func EncodeSparseRanges(ranges []SparseRange) ([]byte, error) {
	buf := make([]byte, 0, len(ranges)*SparseRangeSize)
	for _, r := range ranges {
		if r.FirstChannel > max24 || r.Length > max24 {
			return nil, fmt.Errorf("%w: sparse range exceeds 24-bit field", errs.ErrSparseRangeOverflow)
		}
		buf = leio.AppendUint24(buf, r.FirstChannel)
		buf = leio.AppendUint24(buf, r.Length)
	}

	return buf, nil
}

// ClipSparseRanges returns a copy of ranges with any tail exceeding
// logicalChannelCount clipped off, dropping ranges that start beyond the
// logical end entirely (spec §4.4). The input slice is never mutated:
// callers may hold onto the original ranges they passed in.
func ClipSparseRanges(ranges []SparseRange, logicalChannelCount uint32) []SparseRange {
	clipped := make([]SparseRange, 0, len(ranges))

	for _, r := range ranges {
		if r.FirstChannel >= logicalChannelCount {
			continue
		}

		maxLen := logicalChannelCount - r.FirstChannel
		length := r.Length
		if length > maxLen {
			length = maxLen
		}
		if length == 0 {
			continue
		}

		clipped = append(clipped, SparseRange{FirstChannel: r.FirstChannel, Length: length})
	}

	return clipped
}

// ChannelCount returns the sum of each range's length: the number of
// bytes present per frame on disk for this sparse layout (spec §4.4).
func ChannelCount(ranges []SparseRange) uint32 {
	var total uint32
	for _, r := range ranges {
		total += r.Length
	}

	return total
}
