package sequence

import (
	"fmt"
	"os"

	"github.com/fseqio/fseq/compress"
	"github.com/fseqio/fseq/errs"
	"github.com/fseqio/fseq/format"
	"github.com/fseqio/fseq/fseqlog"
	"github.com/fseqio/fseq/internal/fadvise"
	"github.com/fseqio/fseq/internal/options"
	"github.com/fseqio/fseq/internal/pool"
	"github.com/fseqio/fseq/section"
)

// Reader opens a sequence file and supports declaring the channel ranges
// of interest (PrepareRead) followed by random-access frame reads
// (GetFrame). A Reader is not safe for concurrent use; multiple
// independent Readers on the same path are fine since each holds its own
// file handle and decompression state (spec §5).
type Reader struct {
	path   string
	f      *os.File
	logger fseqlog.Logger

	dialect     format.Dialect
	compression format.Compression

	geometry        section.Geometry
	uniqueID        uint64
	variableHeaders []section.VariableHeader
	sparseRanges    []section.SparseRange

	channelDataOffset  uint32
	onDiskChannelCount uint32
	blocks             []section.BlockDescriptor

	codec compress.Codec

	ranges        []section.SparseRange
	dataBlockSize uint32

	currentBlock int
	window       *pool.ByteBuffer
}

// Open parses path's header and returns a Reader whose dialect and
// compression are fixed for its lifetime (spec §4.6).
func Open(path string, opts ...ReaderOption) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errs.ErrOpenFailure, path, err)
	}

	r := &Reader{
		path:         path,
		f:            f,
		logger:       fseqlog.NewStdLogger(),
		currentBlock: -1,
	}

	if err := options.Apply(r, opts...); err != nil {
		f.Close()
		return nil, err
	}

	if err := r.parseHeader(); err != nil {
		f.Close()
		return nil, err
	}

	return r, nil
}

func (r *Reader) parseHeader() error {
	head := make([]byte, section.CommonHeaderSize)
	if _, err := r.f.ReadAt(head, 0); err != nil {
		return fmt.Errorf("%w: reading fixed header: %v", errs.ErrShortRead, err)
	}
	if err := section.ParseMagic(head[:4]); err != nil {
		return err
	}

	common, err := section.ParseCommonHeader(head[4:])
	if err != nil {
		return err
	}

	dialect, err := common.Dialect()
	if err != nil {
		return err
	}

	r.dialect = dialect
	r.geometry = section.Geometry{
		ChannelCount: common.ChannelCount,
		FrameCount:   common.FrameCount,
		StepTimeMs:   common.StepTimeMs,
	}
	r.onDiskChannelCount = common.ChannelCount
	r.channelDataOffset = uint32(common.ChannelDataOffset)

	var varRegionStart int64

	switch dialect {
	case format.DialectV1:
		extra := make([]byte, section.V1HeaderSize-section.CommonHeaderSize)
		if _, err := r.f.ReadAt(extra, section.CommonHeaderSize); err != nil {
			return fmt.Errorf("%w: reading V1 extra: %v", errs.ErrShortRead, err)
		}
		if _, err := section.ParseV1Extra(extra); err != nil {
			return err
		}

		r.compression = format.CompressionNone
		if info, statErr := r.f.Stat(); statErr == nil {
			r.uniqueID = deriveUniqueID(info.ModTime())
		}

		varRegionStart = int64(section.V1HeaderSize)

	case format.DialectV2:
		extra := make([]byte, section.V2HeaderSize-section.CommonHeaderSize)
		if _, err := r.f.ReadAt(extra, section.CommonHeaderSize); err != nil {
			return fmt.Errorf("%w: reading V2 extra: %v", errs.ErrShortRead, err)
		}

		v2, err := section.ParseV2Extra(extra)
		if err != nil {
			return err
		}

		r.compression = v2.CompressionType
		r.uniqueID = v2.UniqueID

		if v2.CompressionType != format.CompressionNone {
			codec, err := compress.CreateCodec(v2.CompressionType)
			if err != nil {
				return err
			}
			r.codec = codec
		}

		offset := int64(section.V2HeaderSize)

		if v2.BlockCount > 0 {
			size := int(v2.BlockCount) * section.BlockDescriptorSize
			idxBuf := make([]byte, size)
			if _, err := r.f.ReadAt(idxBuf, offset); err != nil {
				return fmt.Errorf("%w: reading block index: %v", errs.ErrShortRead, err)
			}

			blocks, err := section.ParseBlockIndex(idxBuf, int(v2.BlockCount))
			if err != nil {
				return err
			}
			r.blocks = blocks
			offset += int64(size)
		}

		if v2.SparseRangeCount > 0 {
			size := int(v2.SparseRangeCount) * section.SparseRangeSize
			spBuf := make([]byte, size)
			if _, err := r.f.ReadAt(spBuf, offset); err != nil {
				return fmt.Errorf("%w: reading sparse range table: %v", errs.ErrShortRead, err)
			}

			ranges, err := section.ParseSparseRanges(spBuf, int(v2.SparseRangeCount))
			if err != nil {
				return err
			}
			r.sparseRanges = ranges
			offset += int64(size)
		}

		varRegionStart = offset
	}

	varRegionSize := int64(r.channelDataOffset) - varRegionStart
	if varRegionSize < 0 {
		return fmt.Errorf("%w: channel_data_offset precedes header regions", errs.ErrInvalidHeaderSize)
	}

	var varBuf []byte
	if varRegionSize > 0 {
		varBuf = make([]byte, varRegionSize)
		if _, err := r.f.ReadAt(varBuf, varRegionStart); err != nil {
			return fmt.Errorf("%w: reading variable header region: %v", errs.ErrShortRead, err)
		}
	}

	headers, err := section.ParseVariableHeaders(varBuf)
	if err != nil {
		return err
	}
	r.variableHeaders = headers

	return nil
}

// Metadata returns the reader's geometry, dialect, compression, unique_id,
// variable headers, and (if V2) sparse ranges.
func (r *Reader) Metadata() Metadata {
	return Metadata{
		Geometry:        r.geometry,
		Dialect:         r.dialect,
		Compression:     r.compression,
		UniqueID:        r.uniqueID,
		VariableHeaders: r.variableHeaders,
		SparseRanges:    r.sparseRanges,
	}
}

// PrepareRead declares which logical channel ranges subsequent GetFrame
// calls should project. Calling PrepareRead again replaces the previous
// declaration and invalidates any cached decompression window, so a
// stale block is never scattered against a new range list (spec §4.6,
// §9 Open Question (a)). If the file itself is sparse, the caller's
// ranges are ignored in favor of the file's own sparse-range table (spec
// §4.6, V2 compression=none sparse bullet). ranges is never mutated;
// callers keep ownership of the slice they pass in (spec §9, Open
// Question (b)).
func (r *Reader) PrepareRead(ranges []section.SparseRange) {
	r.currentBlock = -1

	var effective []section.SparseRange
	if len(r.sparseRanges) > 0 {
		effective = r.sparseRanges
	} else {
		effective = section.ClipSparseRanges(ranges, r.geometry.ChannelCount)
	}

	r.ranges = effective
	r.dataBlockSize = section.ChannelCount(effective)
}

// FrameProjection owns the bytes assembled for the ranges declared via
// the PrepareRead call in effect when it was produced.
type FrameProjection struct {
	ranges []section.SparseRange
	data   []byte
}

// Scatter copies each declared range from the projection's internal
// buffer into dst[first_channel : first_channel+length], leaving other
// bytes of dst untouched.
func (p *FrameProjection) Scatter(dst []byte) {
	off := 0
	for _, r := range p.ranges {
		if r.Length == 0 {
			continue
		}
		n := copy(dst[r.FirstChannel:r.FirstChannel+r.Length], p.data[off:off+int(r.Length)])
		off += n
	}
}

// GetFrame returns frame n's projection, or nil if n is at or past
// FrameCount. A seek or read error is logged and yields a zero-filled
// projection rather than an error return (spec §7: lighting playback
// prefers a dark frame to a crash).
func (r *Reader) GetFrame(n uint32) *FrameProjection {
	if n >= r.geometry.FrameCount {
		return nil
	}

	buf := make([]byte, r.dataBlockSize)

	var err error
	switch {
	case r.dialect == format.DialectV2 && r.compression == format.CompressionZstd:
		err = r.readCompressed(n, buf)
	default:
		err = r.readDirect(n, buf)
	}

	if err != nil {
		r.logger.Log(fseqlog.SeverityWarn, fmt.Sprintf("fseq: frame %d: %v; returning zero-filled projection", n, err))
		for i := range buf {
			buf[i] = 0
		}
	}

	return &FrameProjection{ranges: r.ranges, data: buf}
}

// readDirect serves V1 frames and V2 compression=none frames, both laid
// out as fixed-width rows starting at channelDataOffset.
func (r *Reader) readDirect(n uint32, buf []byte) error {
	frameOffset := int64(r.channelDataOffset) + int64(n)*int64(r.onDiskChannelCount)

	if len(r.sparseRanges) > 0 {
		if _, err := r.f.ReadAt(buf, frameOffset); err != nil {
			return fmt.Errorf("%w: %v", errs.ErrIoError, err)
		}

		return nil
	}

	off := 0
	for _, rg := range r.ranges {
		if rg.Length == 0 {
			continue
		}
		if _, err := r.f.ReadAt(buf[off:off+int(rg.Length)], frameOffset+int64(rg.FirstChannel)); err != nil {
			return fmt.Errorf("%w: %v", errs.ErrIoError, err)
		}
		off += int(rg.Length)
	}

	return nil
}

// readCompressed serves V2 zstd frames via the single-block decompression
// window cache (spec §4.6).
func (r *Reader) readCompressed(n uint32, buf []byte) error {
	if err := r.ensureWindow(n); err != nil {
		return err
	}

	fidx := int(n-r.blocks[r.currentBlock].FirstFrame) * int(r.onDiskChannelCount)
	window := r.window.Bytes()
	if fidx+int(r.onDiskChannelCount) > len(window) {
		return fmt.Errorf("%w: frame %d out of decompressed window bounds", errs.ErrIoError, n)
	}

	if len(r.sparseRanges) > 0 {
		copy(buf, window[fidx:fidx+int(r.onDiskChannelCount)])
		return nil
	}

	off := 0
	for _, rg := range r.ranges {
		if rg.Length == 0 {
			continue
		}
		copy(buf[off:off+int(rg.Length)], window[fidx+int(rg.FirstChannel):fidx+int(rg.FirstChannel)+int(rg.Length)])
		off += int(rg.Length)
	}

	return nil
}

// blockBounds returns the [start, end) frame range block k covers.
func (r *Reader) blockBounds(k int) (start, end uint32) {
	start = r.blocks[k].FirstFrame
	end = r.geometry.FrameCount
	if k+1 < len(r.blocks) {
		end = r.blocks[k+1].FirstFrame
	}

	return start, end
}

// ensureWindow makes sure the decompression window holds the block
// covering frame n, advancing and re-decompressing if necessary. Block
// search is a linear scan from 0 (spec §4.6: "Block search" — correct
// since block_count <= 255; a cached currentBlock makes sequential reads
// O(1)).
func (r *Reader) ensureWindow(n uint32) error {
	if r.currentBlock >= 0 {
		start, end := r.blockBounds(r.currentBlock)
		if n >= start && n < end {
			return nil
		}
	}

	target := -1
	fileOffset := int64(r.channelDataOffset)

	for k := range r.blocks {
		start, end := r.blockBounds(k)
		if n >= start && n < end {
			target = k
			break
		}
		fileOffset += int64(r.blocks[k].ByteLength)
	}

	if target == -1 {
		return fmt.Errorf("%w: no block covers frame %d", errs.ErrIoError, n)
	}

	compressed := make([]byte, r.blocks[target].ByteLength)
	if _, err := r.f.ReadAt(compressed, fileOffset); err != nil {
		return fmt.Errorf("%w: reading block %d: %v", errs.ErrIoError, target, err)
	}

	decompressed, err := r.codec.Decompress(compressed)
	if err != nil {
		return fmt.Errorf("%w: decompressing block %d: %v", errs.ErrIoError, target, err)
	}

	if r.window == nil {
		r.window = pool.GetWindowBuffer()
	}
	r.window.Reset()
	r.window.SetLength(len(decompressed))
	copy(r.window.Bytes(), decompressed)

	r.currentBlock = target

	if target+1 < len(r.blocks) {
		nextOffset := fileOffset + int64(r.blocks[target].ByteLength)
		fadvise.WillNeed(r.f.Fd(), nextOffset, int64(r.blocks[target+1].ByteLength))
	}

	return nil
}

// Close releases the reader's file handle and returns its decompression
// window (if any) to the shared pool.
func (r *Reader) Close() error {
	if r.window != nil {
		pool.PutWindowBuffer(r.window)
		r.window = nil
	}

	return r.f.Close()
}
