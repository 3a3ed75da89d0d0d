package section

import (
	"fmt"

	"github.com/fseqio/fseq/errs"
	"github.com/fseqio/fseq/internal/leio"
)

// VariableHeader is one (code, data) record from the variable-header
// region (spec §4.3). Codes are not required to be unique; duplicates
// are preserved in order on re-encode.
type VariableHeader struct {
	Code [2]byte
	Data []byte
}

// ParseVariableHeaders decodes the variable-header region starting at b[0].
// Per spec §4.2, scanning stops once fewer than 5 bytes remain before the
// end of the region. A zero total_length is a legacy terminator record: the
// scanner advances 4 bytes and keeps scanning rather than emitting a record
// or stopping outright, since a zero record does not necessarily mark the
// true end of the region.
func ParseVariableHeaders(b []byte) ([]VariableHeader, error) {
	var headers []VariableHeader

	off := 0
	for len(b)-off >= 5 {
		totalLength := int(leio.Uint16(b[off : off+2]))
		if totalLength == 0 {
			off += 4
			continue
		}
		if totalLength < VariableHeaderFixedSize {
			return nil, fmt.Errorf("%w: variable header total_length %d shorter than prefix", errs.ErrInvalidHeaderSize, totalLength)
		}
		if off+totalLength > len(b) {
			return nil, fmt.Errorf("%w: variable header record overruns region", errs.ErrShortRead)
		}

		var code [2]byte
		copy(code[:], b[off+2:off+4])
		data := make([]byte, totalLength-VariableHeaderFixedSize)
		copy(data, b[off+4:off+totalLength])

		headers = append(headers, VariableHeader{Code: code, Data: data})
		off += totalLength
	}

	return headers, nil
}

// EncodeVariableHeaders serializes headers in order, each as a
// (total_length, code, data) record (spec §4.3). An empty list encodes to
// an empty region: no terminator record is emitted, since the region's
// extent is already bounded by channel_data_offset. The result is NOT yet
// padded to a 4-byte boundary; callers pad via leio.RoundUp4 when
// computing channel_data_offset.
func EncodeVariableHeaders(headers []VariableHeader) ([]byte, error) {
	var buf []byte

	for _, h := range headers {
		totalLength := VariableHeaderFixedSize + len(h.Data)
		if totalLength > 0xFFFF {
			return nil, fmt.Errorf("%w: variable header record too large (%d bytes)", errs.ErrInvalidHeaderSize, totalLength)
		}

		buf = leio.AppendUint16(buf, uint16(totalLength))
		buf = append(buf, h.Code[0], h.Code[1])
		buf = append(buf, h.Data...)
	}

	return buf, nil
}
