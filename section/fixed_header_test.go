package section

import (
	"testing"

	"github.com/fseqio/fseq/errs"
	"github.com/fseqio/fseq/format"
	"github.com/stretchr/testify/require"
)

func TestParseMagic(t *testing.T) {
	require.NoError(t, ParseMagic([]byte("PSEQxxxx")))
	require.NoError(t, ParseMagic([]byte("FSEQxxxx")))

	err := ParseMagic([]byte("XSEQ"))
	require.ErrorIs(t, err, errs.ErrBadMagic)
}

func TestParseMagicShort(t *testing.T) {
	err := ParseMagic([]byte("PS"))
	require.Error(t, err)
}

func TestCommonHeaderRoundTrip(t *testing.T) {
	h := CommonHeader{
		ChannelDataOffset: 32,
		VersionMinor:      0,
		VersionMajor:      2,
		FixedHeaderSize:   32,
		ChannelCount:      1_000_000,
		FrameCount:        3600,
		StepTimeMs:        25,
	}

	b := h.Bytes()
	require.Len(t, b, CommonHeaderSize-4)

	got, err := ParseCommonHeader(b)
	require.NoError(t, err)
	require.Equal(t, h, got)
}

func TestCommonHeaderDialect(t *testing.T) {
	h := CommonHeader{VersionMajor: 1}
	d, err := h.Dialect()
	require.NoError(t, err)
	require.Equal(t, format.DialectV1, d)

	h.VersionMajor = 2
	d, err = h.Dialect()
	require.NoError(t, err)
	require.Equal(t, format.DialectV2, d)

	h.VersionMajor = 9
	_, err = h.Dialect()
	require.Error(t, err)
}

func TestV1ExtraRoundTrip(t *testing.T) {
	v := DefaultV1Extra()
	v.UniverseCount = 40
	v.UniverseSize = 512

	b := v.Bytes()
	require.Len(t, b, 8)

	got, err := ParseV1Extra(b)
	require.NoError(t, err)
	require.Equal(t, v, got)
}

func TestV2ExtraRoundTrip(t *testing.T) {
	v := V2Extra{
		CompressionType:  format.CompressionZstd,
		BlockCount:       4,
		SparseRangeCount: 2,
		UniqueID:         0xDEADBEEFCAFEBABE,
	}

	b := v.Bytes()
	require.Len(t, b, 12)

	got, err := ParseV2Extra(b)
	require.NoError(t, err)
	require.Equal(t, v, got)
}

func TestGeometryValidate(t *testing.T) {
	require.NoError(t, Geometry{ChannelCount: 1, StepTimeMs: 50}.Validate())
	require.Error(t, Geometry{ChannelCount: 0, StepTimeMs: 50}.Validate())
	require.Error(t, Geometry{ChannelCount: 1, StepTimeMs: 0}.Validate())
}
