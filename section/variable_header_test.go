package section

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVariableHeaderRoundTrip(t *testing.T) {
	headers := []VariableHeader{
		{Code: [2]byte{'m', 'f'}, Data: []byte("xLights")},
		{Code: [2]byte{'a', 'u'}, Data: []byte("me")},
		{Code: [2]byte{'m', 'f'}, Data: []byte("duplicate code preserved")},
	}

	encoded, err := EncodeVariableHeaders(headers)
	require.NoError(t, err)

	got, err := ParseVariableHeaders(encoded)
	require.NoError(t, err)
	require.Equal(t, headers, got)
}

func TestVariableHeaderEmptyTable(t *testing.T) {
	encoded, err := EncodeVariableHeaders(nil)
	require.NoError(t, err)
	require.Empty(t, encoded)

	got, err := ParseVariableHeaders(encoded)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestVariableHeaderLegacyZeroTerminatorSkipped(t *testing.T) {
	// A file carrying the legacy zero-length terminator record followed by
	// trailing padding must not be misread as a header record.
	buf := []byte{0, 0, 0, 0, 0, 0}
	got, err := ParseVariableHeaders(buf)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestVariableHeaderRegionEndsOnShortRemainder(t *testing.T) {
	// fewer than 5 bytes remain: parser stops rather than erroring, even
	// though these 4 bytes look like a record prefix.
	got, err := ParseVariableHeaders([]byte{20, 0, 'm', 'f'})
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestVariableHeaderTruncatedRecordErrors(t *testing.T) {
	// total_length claims 20 bytes but only 5 are present, and 5 bytes is
	// enough remaining to commit to parsing this record.
	buf := []byte{20, 0, 'm', 'f', 0}
	_, err := ParseVariableHeaders(buf)
	require.Error(t, err)
}
