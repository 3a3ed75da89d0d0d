package sequence

import (
	"fmt"
	"os"

	"github.com/fseqio/fseq/compress"
	"github.com/fseqio/fseq/errs"
	"github.com/fseqio/fseq/format"
	"github.com/fseqio/fseq/fseqlog"
	"github.com/fseqio/fseq/internal/leio"
	"github.com/fseqio/fseq/internal/options"
	"github.com/fseqio/fseq/internal/pool"
	"github.com/fseqio/fseq/section"
)

// Writer appends frames to a new sequence file in strictly increasing
// frame order, then back-patches the block index (V2 compressed only) at
// Finalize (spec §4.7). A Writer is not safe for concurrent use and is not
// reusable once Finalize has been called.
type Writer struct {
	path        string
	f           *os.File
	dialect     format.Dialect
	compression format.Compression
	level       int

	geometry        section.Geometry
	uniqueID        uint64
	variableHeaders []section.VariableHeader
	sparseRanges    []section.SparseRange

	clock  Clock
	logger fseqlog.Logger

	headerWritten bool
	finalized     bool

	channelDataOffset  uint32
	onDiskChannelCount uint32

	nextFrame uint32
	curOffset int64

	blockCountFileOffset int64
	blockIndexFileOffset int64
	maxBlockSlots        int
	framesPerBlock       int

	codec            compress.Codec
	curStream        compress.StreamEncoder
	frameInBlock     int
	blockFirstFrames []uint32
	blockStartOffsets []uint32

	scratch *pool.ByteBuffer
}

// Create opens path for writing and returns a Writer configured for the
// given dialect and compression. Nothing is written to disk until
// WriteHeader is called. Dialect V1 requires compression=none (spec §4.8).
func Create(path string, dialect format.Dialect, compression format.Compression, level int, opts ...WriterOption) (*Writer, error) {
	if dialect == format.DialectV1 && compression != format.CompressionNone {
		return nil, fmt.Errorf("%w: dialect V1 requires compression=none", errs.ErrUnsupportedCompression)
	}
	if _, err := compress.CreateCodec(compression); err != nil {
		return nil, err
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errs.ErrOpenFailure, path, err)
	}

	w := &Writer{
		path:        path,
		f:           f,
		dialect:     dialect,
		compression: compression,
		level:       level,
		clock:       systemClock{},
		logger:      fseqlog.NewStdLogger(),
	}

	if err := options.Apply(w, opts...); err != nil {
		f.Close()
		return nil, err
	}

	return w, nil
}

// InitializeFrom copies geometry, variable headers, unique_id, and (for
// V2 writers) sparse ranges from another file's parsed Metadata. Must be
// called before WriteHeader.
func (w *Writer) InitializeFrom(meta Metadata) error {
	if w.headerWritten {
		return errs.ErrHeaderAlreadyWritten
	}

	w.geometry = meta.Geometry
	w.uniqueID = meta.UniqueID
	w.variableHeaders = meta.VariableHeaders
	if w.dialect == format.DialectV2 {
		w.sparseRanges = meta.SparseRanges
	}

	return nil
}

// SetGeometry sets the writer's show dimensions directly, for callers not
// copying from an existing file. Must be called before WriteHeader.
func (w *Writer) SetGeometry(g section.Geometry) error {
	if w.headerWritten {
		return errs.ErrHeaderAlreadyWritten
	}
	if err := g.Validate(); err != nil {
		return err
	}
	w.geometry = g

	return nil
}

// SetSparseRanges declares the logical channel ranges this writer's
// on-disk frames will carry (spec §4.4). V1 writers reject a non-empty
// list. Must be called before WriteHeader.
func (w *Writer) SetSparseRanges(ranges []section.SparseRange) error {
	if w.headerWritten {
		return errs.ErrHeaderAlreadyWritten
	}
	if len(ranges) > 0 && w.dialect == format.DialectV1 {
		return fmt.Errorf("%w: sparse ranges are a V2-only feature", errs.ErrInvalidGeometry)
	}
	w.sparseRanges = ranges

	return nil
}

// SetVariableHeaders replaces the writer's variable-header table. Must be
// called before WriteHeader.
func (w *Writer) SetVariableHeaders(headers []section.VariableHeader) error {
	if w.headerWritten {
		return errs.ErrHeaderAlreadyWritten
	}
	w.variableHeaders = headers

	return nil
}

// rawWrite writes p to the file and advances the writer's running file
// offset, which backs both block-start bookkeeping and the eof offset
// used at Finalize.
func (w *Writer) rawWrite(p []byte) (int, error) {
	n, err := w.f.Write(p)
	w.curOffset += int64(n)

	return n, err
}

// trackingWriter adapts Writer.rawWrite to io.Writer for
// compress.Codec.NewStreamEncoder.
type trackingWriter struct{ w *Writer }

func (t trackingWriter) Write(p []byte) (int, error) {
	n, err := t.w.rawWrite(p)
	if err != nil {
		return n, fmt.Errorf("%w: %v", errs.ErrIoError, err)
	}

	return n, nil
}

// WriteHeader materializes the fixed header, the placeholder block index
// (V2 compressed only), the sparse-range table, the variable-header
// region, and alignment padding. Must be called exactly once, before the
// first AddFrame (spec §4.7).
func (w *Writer) WriteHeader() error {
	if w.headerWritten {
		return errs.ErrHeaderAlreadyWritten
	}
	if err := w.geometry.Validate(); err != nil {
		return err
	}

	logicalChannelCount := w.geometry.ChannelCount
	onDiskChannelCount := logicalChannelCount
	sparseRanges := w.sparseRanges
	if len(sparseRanges) > 0 {
		sparseRanges = section.ClipSparseRanges(sparseRanges, logicalChannelCount)
		onDiskChannelCount = section.ChannelCount(sparseRanges)
	}
	w.sparseRanges = sparseRanges
	w.onDiskChannelCount = onDiskChannelCount

	if w.uniqueID == 0 {
		w.uniqueID = deriveUniqueID(w.clock.Now())
	}

	varBytes, err := section.EncodeVariableHeaders(w.variableHeaders)
	if err != nil {
		return err
	}

	var fixedSize, maxBlockSlots int

	switch w.dialect {
	case format.DialectV1:
		fixedSize = section.V1HeaderSize
	case format.DialectV2:
		fixedSize = section.V2HeaderSize
		if w.compression == format.CompressionZstd {
			plan, err := section.PlanBlockLayout(int(onDiskChannelCount), int(w.geometry.FrameCount))
			if err != nil {
				return err
			}
			w.framesPerBlock = plan.FramesPerBlock
			maxBlockSlots = plan.MaxBlocks
			if maxBlockSlots > section.MaxBlockCount {
				maxBlockSlots = section.MaxBlockCount
			}
		}
	default:
		return fmt.Errorf("%w: dialect %v", errs.ErrUnsupportedVersion, w.dialect)
	}
	w.maxBlockSlots = maxBlockSlots

	indexRegionSize := maxBlockSlots * section.BlockDescriptorSize
	sparseRegionSize := len(sparseRanges) * section.SparseRangeSize
	headerRegionSize := fixedSize + indexRegionSize + sparseRegionSize + len(varBytes)
	channelDataOffset := leio.RoundUp4(headerRegionSize)
	padding := channelDataOffset - headerRegionSize

	buf := make([]byte, 0, channelDataOffset)
	buf = section.WriteMagic(buf)

	common := section.CommonHeader{
		ChannelDataOffset: uint16(channelDataOffset), //nolint:gosec
		VersionMajor:      uint8(w.dialect),
		FixedHeaderSize:   uint16(fixedSize), //nolint:gosec
		ChannelCount:      onDiskChannelCount,
		FrameCount:        w.geometry.FrameCount,
		StepTimeMs:        w.geometry.StepTimeMs,
	}
	buf = append(buf, common.Bytes()...)

	w.blockCountFileOffset = int64(section.CommonHeaderSize + 1)

	switch w.dialect {
	case format.DialectV1:
		buf = append(buf, section.DefaultV1Extra().Bytes()...)
	case format.DialectV2:
		v2 := section.V2Extra{
			CompressionType:  w.compression,
			BlockCount:       uint8(maxBlockSlots), //nolint:gosec
			SparseRangeCount: uint8(len(sparseRanges)), //nolint:gosec
			UniqueID:         w.uniqueID,
		}
		buf = append(buf, v2.Bytes()...)
		w.blockIndexFileOffset = int64(len(buf))

		if maxBlockSlots > 0 {
			encoded, err := section.EncodeBlockIndex(section.PlaceholderBlockIndex(maxBlockSlots))
			if err != nil {
				return err
			}
			buf = append(buf, encoded...)
		}

		if len(sparseRanges) > 0 {
			encodedRanges, err := section.EncodeSparseRanges(sparseRanges)
			if err != nil {
				return err
			}
			buf = append(buf, encodedRanges...)
		}
	}

	buf = append(buf, varBytes...)
	buf = append(buf, make([]byte, padding)...)

	if _, err := w.rawWrite(buf); err != nil {
		return fmt.Errorf("%w: writing header: %v", errs.ErrIoError, err)
	}

	w.channelDataOffset = uint32(channelDataOffset) //nolint:gosec
	w.headerWritten = true

	if w.dialect == format.DialectV2 && w.compression != format.CompressionNone {
		codec, err := compress.CreateCodec(w.compression)
		if err != nil {
			return err
		}
		w.codec = codec
	}

	return nil
}

// diskPayload returns the on-disk bytes for one logical frame: the frame
// verbatim when the writer is non-sparse, or the concatenation of sparse
// range slices in declared order otherwise (spec §4.4).
func (w *Writer) diskPayload(data []byte) []byte {
	if len(w.sparseRanges) == 0 {
		return data
	}

	if w.scratch == nil {
		w.scratch = pool.GetWriteBuffer()
	}
	w.scratch.Reset()

	for _, r := range w.sparseRanges {
		w.scratch.Write(data[r.FirstChannel : r.FirstChannel+r.Length])
	}

	return w.scratch.Bytes()
}

// AddFrame appends frame n's bytes. Frames must arrive in strictly
// increasing order starting at 0 (spec §4.7, Non-goals: no random-order
// writes). data must be logicalChannelCount bytes wide, i.e. the full
// show-wide frame even when the writer is sparse.
func (w *Writer) AddFrame(n uint32, data []byte) error {
	if !w.headerWritten {
		return errs.ErrHeaderNotWritten
	}
	if w.finalized {
		return errs.ErrAlreadyFinalized
	}
	if n != w.nextFrame {
		return fmt.Errorf("%w: expected frame %d, got %d", errs.ErrOutOfOrderFrame, w.nextFrame, n)
	}
	if uint32(len(data)) != w.geometry.ChannelCount { //nolint:gosec
		return fmt.Errorf("%w: expected %d bytes, got %d", errs.ErrFrameSizeMismatch, w.geometry.ChannelCount, len(data))
	}

	var err error
	if w.dialect == format.DialectV2 && w.compression == format.CompressionZstd {
		err = w.addFrameCompressed(n, data)
	} else {
		err = w.addFrameDirect(data)
	}

	if err != nil {
		w.logger.Log(fseqlog.SeverityError, fmt.Sprintf("fseq: writing frame %d: %v", n, err))
		return err
	}

	w.nextFrame++

	return nil
}

func (w *Writer) addFrameDirect(data []byte) error {
	payload := w.diskPayload(data)
	if _, err := w.rawWrite(payload); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrIoError, err)
	}

	return nil
}

func (w *Writer) addFrameCompressed(n uint32, data []byte) error {
	payload := w.diskPayload(data)

	if w.curStream == nil {
		w.blockFirstFrames = append(w.blockFirstFrames, n)
		w.blockStartOffsets = append(w.blockStartOffsets, uint32(w.curOffset)) //nolint:gosec

		stream, err := w.codec.NewStreamEncoder(trackingWriter{w}, w.level)
		if err != nil {
			return err
		}
		w.curStream = stream
		w.frameInBlock = 0
	}

	if _, err := w.curStream.Write(payload); err != nil {
		return fmt.Errorf("%w: compressing frame %d: %v", errs.ErrIoError, n, err)
	}
	w.frameInBlock++

	blocksStarted := len(w.blockFirstFrames)
	moreSlotsAvailable := blocksStarted < w.maxBlockSlots
	if w.frameInBlock >= w.framesPerBlock && moreSlotsAvailable {
		if err := w.curStream.Close(); err != nil {
			return fmt.Errorf("%w: closing block: %v", errs.ErrIoError, err)
		}
		w.curStream = nil
	}

	return nil
}

// Finalize flushes the last compression block (if any) and back-patches
// the block index with real (first_frame, byte_length) descriptors (spec
// §4.7). For V1 and V2-none writers this is a no-op beyond marking the
// writer finalized. Must be called before Close on a compressed writer.
func (w *Writer) Finalize() error {
	if !w.headerWritten {
		return errs.ErrHeaderNotWritten
	}
	if w.finalized {
		return errs.ErrAlreadyFinalized
	}

	if w.dialect == format.DialectV2 && w.compression == format.CompressionZstd {
		if w.curStream != nil {
			if err := w.curStream.Close(); err != nil {
				return fmt.Errorf("%w: finalize: closing last block: %v", errs.ErrIoError, err)
			}
			w.curStream = nil
		}

		dataEnd := uint32(w.curOffset) //nolint:gosec
		descs := section.FinalizeByteLengths(w.blockFirstFrames, w.blockStartOffsets, dataEnd)

		encoded, err := section.EncodeBlockIndex(descs)
		if err != nil {
			return err
		}

		if _, err := w.f.WriteAt(encoded, w.blockIndexFileOffset); err != nil {
			return fmt.Errorf("%w: back-patching block index: %v", errs.ErrIoError, err)
		}

		if _, err := w.f.WriteAt([]byte{byte(len(descs))}, w.blockCountFileOffset); err != nil {
			return fmt.Errorf("%w: back-patching block_count: %v", errs.ErrIoError, err)
		}
	}

	w.finalized = true

	return nil
}

// Close releases the underlying file handle and returns the sparse-range
// scratch buffer (if any) to the shared pool. Calling Close before
// Finalize on a compressed writer leaves the reserved block-index slots
// zeroed on disk; readers then treat every block as empty (spec §5).
func (w *Writer) Close() error {
	if w.scratch != nil {
		pool.PutWriteBuffer(w.scratch)
		w.scratch = nil
	}

	return w.f.Close()
}
