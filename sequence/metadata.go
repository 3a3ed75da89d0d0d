// Package sequence implements the frame reader and writer for both FSEQ
// dialects: the legacy uncompressed V1 layout and the block-compressed,
// sparsity-aware V2 layout. It plays the role the teacher repo's blob
// package plays for its own container format: Reader and Writer are the
// two halves of a dialect-dispatching codec built on top of the section
// package's header/index/table primitives.
package sequence

import (
	"time"

	"github.com/fseqio/fseq/format"
	"github.com/fseqio/fseq/section"
)

// Metadata is the public, read-only view of a sequence file's geometry
// and bookkeeping fields, returned by Reader.Metadata and consumed by
// Writer.InitializeFrom.
type Metadata struct {
	Geometry        section.Geometry
	Dialect         format.Dialect
	Compression     format.Compression
	UniqueID        uint64
	VariableHeaders []section.VariableHeader
	SparseRanges    []section.SparseRange
}

// Clock supplies the wall-clock time a Writer stamps into a new file's
// unique_id field. Swappable for tests that need deterministic output.
type Clock interface {
	Now() time.Time
}

// systemClock is the default Clock, backed by time.Now.
type systemClock struct{}

// Now returns the current wall-clock time.
func (systemClock) Now() time.Time { return time.Now() }

// deriveUniqueID turns a timestamp into the u64 unique_id field. Matches
// the resolution a caller would get from a Unix nanosecond timestamp,
// which is how the writer derives it and how a reader falls back to a
// file's modification time for V1 files that never carried one.
func deriveUniqueID(t time.Time) uint64 {
	return uint64(t.UnixNano()) //nolint:gosec
}
