// Package errs defines the sentinel errors returned across fseq's core
// packages. Call sites wrap these with fmt.Errorf("%w: ...") to attach
// context; callers should compare with errors.Is against the sentinels
// below rather than parsing messages.
package errs

import "errors"

var (
	// ErrOpenFailure indicates the path could not be opened for reading or writing.
	ErrOpenFailure = errors.New("fseq: open failure")

	// ErrShortRead indicates fewer bytes than expected were read at the magic,
	// fixed-header, or header-region parse step.
	ErrShortRead = errors.New("fseq: short read")

	// ErrBadMagic indicates the first four bytes of the file do not match a
	// recognized FSEQ magic.
	ErrBadMagic = errors.New("fseq: bad magic")

	// ErrUnsupportedVersion indicates version_major is not 1 or 2.
	ErrUnsupportedVersion = errors.New("fseq: unsupported version")

	// ErrUnsupportedCompression indicates the V2 compression byte is not a
	// value the reader/writer can handle (0=none, 1=zstd).
	ErrUnsupportedCompression = errors.New("fseq: unsupported compression")

	// ErrIoError wraps a seek/read/write syscall failure during frame access.
	ErrIoError = errors.New("fseq: io error")

	// ErrInvalidGeometry indicates channel_count == 0 or step_time_ms == 0.
	// It is also returned for a compression level outside 1..22, for sparse
	// ranges on a V1 writer, and for a block layout with a non-positive
	// channel or frame count.
	ErrInvalidGeometry = errors.New("fseq: invalid geometry")

	// ErrInvalidHeaderSize indicates a header byte slice is the wrong length
	// for the region being parsed.
	ErrInvalidHeaderSize = errors.New("fseq: invalid header size")

	// ErrTooManyBlocks indicates a V2 compressed write would need more than
	// 255 blocks.
	ErrTooManyBlocks = errors.New("fseq: too many blocks")

	// ErrOutOfOrderFrame indicates add_frame was called with a frame index
	// other than the next expected sequential index.
	ErrOutOfOrderFrame = errors.New("fseq: frame written out of order")

	// ErrHeaderAlreadyWritten indicates WriteHeader was called more than once.
	ErrHeaderAlreadyWritten = errors.New("fseq: header already written")

	// ErrHeaderNotWritten indicates AddFrame or Finalize was called before
	// WriteHeader.
	ErrHeaderNotWritten = errors.New("fseq: header not written")

	// ErrAlreadyFinalized indicates Finalize or AddFrame was called after the
	// writer was already finalized.
	ErrAlreadyFinalized = errors.New("fseq: writer already finalized")

	// ErrFrameSizeMismatch indicates a frame buffer's length does not equal
	// the geometry's channel_count.
	ErrFrameSizeMismatch = errors.New("fseq: frame size mismatch")

	// ErrSparseRangeOverflow indicates a sparse range's first_channel or
	// length does not fit its 24-bit on-disk field. A range that runs past
	// the logical channel count is clipped, not reported with this error.
	ErrSparseRangeOverflow = errors.New("fseq: sparse range overflow")
)
