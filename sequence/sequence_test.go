package sequence

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fseqio/fseq/format"
	"github.com/fseqio/fseq/fseqlog"
	"github.com/fseqio/fseq/section"
	"github.com/stretchr/testify/require"
)

func tempPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "show.fseq")
}

func frameOf(n, width int) []byte {
	f := make([]byte, width)
	for i := range f {
		f[i] = byte((n + i) % 256)
	}
	return f
}

// TestRoundTripV1Uncompressed covers testable property 1 and scenario S1.
func TestRoundTripV1Uncompressed(t *testing.T) {
	path := tempPath(t)

	w, err := Create(path, format.DialectV1, format.CompressionNone, 0)
	require.NoError(t, err)
	require.NoError(t, w.SetGeometry(section.Geometry{ChannelCount: 3, FrameCount: 2, StepTimeMs: 50}))
	require.NoError(t, w.WriteHeader())

	frame0 := []byte{0x01, 0x02, 0x03}
	frame1 := []byte{0xFF, 0xFE, 0xFD}
	require.NoError(t, w.AddFrame(0, frame0))
	require.NoError(t, w.AddFrame(1, frame1))
	require.NoError(t, w.Finalize())
	require.NoError(t, w.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, []byte{'P', 'S', 'E', 'Q', 0x1C, 0x00, 0x00, 0x01}, raw[:8])
	require.Len(t, raw, 34)

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	meta := r.Metadata()
	require.Equal(t, format.DialectV1, meta.Dialect)
	require.Equal(t, uint32(3), meta.Geometry.ChannelCount)
	require.Equal(t, uint32(2), meta.Geometry.FrameCount)

	r.PrepareRead([]section.SparseRange{{FirstChannel: 0, Length: 3}})

	proj0 := r.GetFrame(0)
	require.NotNil(t, proj0)
	dst := make([]byte, 3)
	proj0.Scatter(dst)
	require.Equal(t, frame0, dst)

	proj1 := r.GetFrame(1)
	require.NotNil(t, proj1)
	proj1.Scatter(dst)
	require.Equal(t, frame1, dst)

	require.Nil(t, r.GetFrame(2))
}

// TestRoundTripV2Uncompressed covers scenario S2.
func TestRoundTripV2Uncompressed(t *testing.T) {
	path := tempPath(t)

	w, err := Create(path, format.DialectV2, format.CompressionNone, 0)
	require.NoError(t, err)
	require.NoError(t, w.SetGeometry(section.Geometry{ChannelCount: 4, FrameCount: 3, StepTimeMs: 25}))
	require.NoError(t, w.WriteHeader())

	frames := [][]byte{
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0xAA, 0xBB, 0xCC, 0xDD},
	}
	for i, f := range frames {
		require.NoError(t, w.AddFrame(uint32(i), f))
	}
	require.NoError(t, w.Finalize())
	require.NoError(t, w.Close())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	require.Equal(t, uint32(0), r.channelDataOffset%4) // alignment sanity
	r.PrepareRead([]section.SparseRange{{FirstChannel: 0, Length: 4}})

	proj := r.GetFrame(2)
	require.NotNil(t, proj)
	dst := make([]byte, 4)
	proj.Scatter(dst)
	require.Equal(t, frames[2], dst)
}

// TestRoundTripV2ZstdRandomAccess covers testable property 2 and scenario S3.
func TestRoundTripV2ZstdRandomAccess(t *testing.T) {
	path := tempPath(t)

	const channelCount = 1024
	const frameCount = 1000

	w, err := Create(path, format.DialectV2, format.CompressionZstd, 10)
	require.NoError(t, err)
	require.NoError(t, w.SetGeometry(section.Geometry{ChannelCount: channelCount, FrameCount: frameCount, StepTimeMs: 20}))
	require.NoError(t, w.WriteHeader())

	for n := 0; n < frameCount; n++ {
		f := make([]byte, channelCount)
		for i := range f {
			f[i] = byte(n % 256)
		}
		require.NoError(t, w.AddFrame(uint32(n), f))
	}
	require.NoError(t, w.Finalize())
	require.NoError(t, w.Close())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	r.PrepareRead([]section.SparseRange{{FirstChannel: 0, Length: channelCount}})
	dst := make([]byte, channelCount)

	for _, n := range []int{0, 500, 999} {
		proj := r.GetFrame(uint32(n))
		require.NotNil(t, proj, "frame %d", n)
		proj.Scatter(dst)
		for i, b := range dst {
			require.Equal(t, byte(n%256), b, "frame %d byte %d", n, i)
		}
	}
}

// TestSparseProjection covers testable property 3 and scenario S4.
func TestSparseProjection(t *testing.T) {
	path := tempPath(t)

	const logicalChannelCount = 2048
	ranges := []section.SparseRange{{FirstChannel: 100, Length: 50}, {FirstChannel: 1000, Length: 20}}

	w, err := Create(path, format.DialectV2, format.CompressionZstd, 5)
	require.NoError(t, err)
	require.NoError(t, w.SetGeometry(section.Geometry{ChannelCount: logicalChannelCount, FrameCount: 4, StepTimeMs: 25}))
	require.NoError(t, w.SetSparseRanges(ranges))
	require.NoError(t, w.WriteHeader())

	full := make([]byte, logicalChannelCount)
	for i := range full {
		full[i] = byte(i % 256)
	}
	for n := 0; n < 4; n++ {
		require.NoError(t, w.AddFrame(uint32(n), full))
	}
	require.NoError(t, w.Finalize())
	require.NoError(t, w.Close())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	require.Equal(t, uint32(70), r.Metadata().Geometry.ChannelCount)

	r.PrepareRead(nil) // file is sparse: caller ranges are overridden
	proj := r.GetFrame(0)
	require.NotNil(t, proj)

	dst := make([]byte, logicalChannelCount)
	proj.Scatter(dst)

	for _, rg := range ranges {
		for i := uint32(0); i < rg.Length; i++ {
			require.Equal(t, full[rg.FirstChannel+i], dst[rg.FirstChannel+i])
		}
	}
}

// TestRangeClipping covers testable property 4.
func TestRangeClipping(t *testing.T) {
	path := tempPath(t)

	w, err := Create(path, format.DialectV1, format.CompressionNone, 0)
	require.NoError(t, err)
	require.NoError(t, w.SetGeometry(section.Geometry{ChannelCount: 10, FrameCount: 1, StepTimeMs: 50}))
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.AddFrame(0, frameOf(0, 10)))
	require.NoError(t, w.Finalize())
	require.NoError(t, w.Close())

	r1, err := Open(path)
	require.NoError(t, err)
	defer r1.Close()
	r1.PrepareRead([]section.SparseRange{{FirstChannel: 7, Length: 10}})
	buf1 := make([]byte, 10)
	r1.GetFrame(0).Scatter(buf1)

	r2, err := Open(path)
	require.NoError(t, err)
	defer r2.Close()
	r2.PrepareRead([]section.SparseRange{{FirstChannel: 7, Length: 3}})
	buf2 := make([]byte, 10)
	r2.GetFrame(0).Scatter(buf2)

	require.Equal(t, buf1, buf2)
}

// TestAlignment covers testable property 5.
func TestAlignment(t *testing.T) {
	path := tempPath(t)

	w, err := Create(path, format.DialectV2, format.CompressionNone, 0)
	require.NoError(t, err)
	require.NoError(t, w.SetGeometry(section.Geometry{ChannelCount: 7, FrameCount: 1, StepTimeMs: 50}))
	require.NoError(t, w.SetVariableHeaders([]section.VariableHeader{{Code: [2]byte{'u', 'n'}, Data: []byte("x")}}))
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.AddFrame(0, frameOf(0, 7)))
	require.NoError(t, w.Finalize())
	require.NoError(t, w.Close())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	require.Zero(t, r.channelDataOffset%4)
}

// TestBlockBound covers testable property 6.
func TestBlockBound(t *testing.T) {
	path := tempPath(t)

	const channelCount = 64
	const frameCount = 5000

	w, err := Create(path, format.DialectV2, format.CompressionZstd, 3)
	require.NoError(t, err)
	require.NoError(t, w.SetGeometry(section.Geometry{ChannelCount: channelCount, FrameCount: frameCount, StepTimeMs: 25}))
	require.NoError(t, w.WriteHeader())
	for n := 0; n < frameCount; n++ {
		require.NoError(t, w.AddFrame(uint32(n), frameOf(n, channelCount)))
	}
	require.NoError(t, w.Finalize())
	require.NoError(t, w.Close())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	require.LessOrEqual(t, len(r.blocks), section.MaxBlockCount)
	for i := 0; i < len(r.blocks)-1; i++ {
		start, end := r.blockBounds(i)
		require.GreaterOrEqual(t, end-start, uint32(10))
	}
}

// TestMagicTolerance covers testable property 7.
func TestMagicTolerance(t *testing.T) {
	path := tempPath(t)

	w, err := Create(path, format.DialectV1, format.CompressionNone, 0)
	require.NoError(t, err)
	require.NoError(t, w.SetGeometry(section.Geometry{ChannelCount: 2, FrameCount: 1, StepTimeMs: 50}))
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.AddFrame(0, []byte{1, 2}))
	require.NoError(t, w.Finalize())
	require.NoError(t, w.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	raw[0] = 'F'
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	r.PrepareRead([]section.SparseRange{{FirstChannel: 0, Length: 2}})
	dst := make([]byte, 2)
	r.GetFrame(0).Scatter(dst)
	require.Equal(t, []byte{1, 2}, dst)
}

// TestVariableHeaderFidelity covers testable property 8 and scenario S6.
func TestVariableHeaderFidelity(t *testing.T) {
	path := tempPath(t)

	headers := []section.VariableHeader{
		{Code: [2]byte{'u', 'n'}, Data: []byte("hello")},
		{Code: [2]byte{'s', 'p'}, Data: []byte("")},
	}

	w, err := Create(path, format.DialectV1, format.CompressionNone, 0)
	require.NoError(t, err)
	require.NoError(t, w.SetGeometry(section.Geometry{ChannelCount: 1, FrameCount: 1, StepTimeMs: 50}))
	require.NoError(t, w.SetVariableHeaders(headers))
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.AddFrame(0, []byte{9}))
	require.NoError(t, w.Finalize())
	require.NoError(t, w.Close())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	require.Equal(t, headers, r.Metadata().VariableHeaders)
}

// TestDroppedWriterLeavesZeroedIndex covers scenario S7.
func TestDroppedWriterLeavesZeroedIndex(t *testing.T) {
	path := tempPath(t)

	w, err := Create(path, format.DialectV2, format.CompressionZstd, 5)
	require.NoError(t, err)
	require.NoError(t, w.SetGeometry(section.Geometry{ChannelCount: 64, FrameCount: 100, StepTimeMs: 25}))
	require.NoError(t, w.WriteHeader())
	for n := 0; n < 20; n++ {
		require.NoError(t, w.AddFrame(uint32(n), frameOf(n, 64)))
	}
	// Abandon without Finalize: block index stays zeroed.
	require.NoError(t, w.Close())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	for _, b := range r.blocks {
		require.Zero(t, b.FirstFrame)
		require.Zero(t, b.ByteLength)
	}
}

// TestZlibReservedExplicitlyUnsupported covers scenario S8 and §9 Open
// Question (c): the reserved zlib compression type must fail loudly, not
// silently degrade to none.
func TestZlibReservedExplicitlyUnsupported(t *testing.T) {
	path := tempPath(t)
	_, err := Create(path, format.DialectV2, format.CompressionZlibReserved, 0)
	require.Error(t, err)
}

// TestTruncatedBlockReturnsZeroFrame covers scenario S5: truncating a V2
// zstd file mid-second-block must not break reads of frames still
// entirely within the intact first block, and a frame in the damaged
// block must come back zero-filled rather than erroring out.
func TestTruncatedBlockReturnsZeroFrame(t *testing.T) {
	path := tempPath(t)

	const channelCount = 1024
	const frameCount = 1000

	w, err := Create(path, format.DialectV2, format.CompressionZstd, 10)
	require.NoError(t, err)
	require.NoError(t, w.SetGeometry(section.Geometry{ChannelCount: channelCount, FrameCount: frameCount, StepTimeMs: 20}))
	require.NoError(t, w.WriteHeader())
	for n := 0; n < frameCount; n++ {
		f := make([]byte, channelCount)
		for i := range f {
			f[i] = byte(n % 256)
		}
		require.NoError(t, w.AddFrame(uint32(n), f))
	}
	require.NoError(t, w.Finalize())
	require.NoError(t, w.Close())

	probe, err := Open(path)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(probe.blocks), 2)

	blockStart := int64(probe.channelDataOffset)
	block1Offset := blockStart + int64(probe.blocks[0].ByteLength)
	truncateLen := block1Offset + int64(probe.blocks[1].ByteLength)/2
	block1FirstFrame := probe.blocks[1].FirstFrame
	require.NoError(t, probe.Close())

	require.NoError(t, os.Truncate(path, truncateLen))

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	r.PrepareRead([]section.SparseRange{{FirstChannel: 0, Length: channelCount}})
	dst := make([]byte, channelCount)

	// Frame 0 lives entirely in the intact first block.
	proj := r.GetFrame(0)
	require.NotNil(t, proj)
	proj.Scatter(dst)
	require.Equal(t, byte(0), dst[0])

	// The first frame of the damaged second block must come back zeroed
	// instead of propagating a decompression error.
	proj = r.GetFrame(block1FirstFrame)
	require.NotNil(t, proj)
	for i := range dst {
		dst[i] = 0xFF
	}
	proj.Scatter(dst)
	for _, b := range dst {
		require.Zero(t, b)
	}
}

func TestReaderWriterOptions(t *testing.T) {
	path := tempPath(t)

	w, err := Create(path, format.DialectV1, format.CompressionNone, 0, WithWriterLogger(fseqlog.NopLogger{}))
	require.NoError(t, err)
	require.NoError(t, w.SetGeometry(section.Geometry{ChannelCount: 1, FrameCount: 1, StepTimeMs: 50}))
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.AddFrame(0, []byte{1}))
	require.NoError(t, w.Finalize())
	require.NoError(t, w.Close())

	r, err := Open(path, WithReaderLogger(fseqlog.NopLogger{}))
	require.NoError(t, err)
	defer r.Close()
	require.NotNil(t, r)
}
