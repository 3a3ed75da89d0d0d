// Package compress provides the per-block compression codecs used by the
// V2 frame writer and reader. A codec decompresses a whole compressed
// block into memory in one shot (the reader's decompression window, spec
// §4.6) and streams compression incrementally as frames are appended to a
// block (the writer's compression stream, spec §4.7).
package compress

import (
	"fmt"
	"io"

	"github.com/fseqio/fseq/errs"
	"github.com/fseqio/fseq/format"
)

// StreamEncoder is a single block's compression stream. Write accepts one
// frame (or sparse-range slice) at a time; Flush pushes any buffered
// compressed bytes to the underlying writer without ending the stream;
// Close emits the end-stream marker and must be called exactly once, when
// the block is complete.
type StreamEncoder interface {
	io.Writer
	Flush() error
	Close() error
}

// Decompressor decompresses a complete compressed block into its original
// bytes in a single call.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines the streaming compression side used by the writer with
// the whole-block decompression side used by the reader.
type Codec interface {
	Decompressor

	// NewStreamEncoder starts a fresh compression stream writing to w at
	// the given level. The meaning of level is codec-specific; CompressionNone
	// ignores it.
	NewStreamEncoder(w io.Writer, level int) (StreamEncoder, error)
}

// CreateCodec is a factory function that creates a Codec for the given
// compression type.
//
// CompressionZlibReserved is a recognized enum value but has no
// implementation (spec §9, Open Question (c)): it returns
// errs.ErrUnsupportedCompression rather than silently degrading to
// CompressionNone.
func CreateCodec(compressionType format.Compression) (Codec, error) {
	switch compressionType {
	case format.CompressionNone:
		return NewNoopCodec(), nil
	case format.CompressionZstd:
		return NewZstdCodec(), nil
	case format.CompressionZlibReserved:
		return nil, fmt.Errorf("%w: zlib is reserved but unimplemented", errs.ErrUnsupportedCompression)
	default:
		return nil, fmt.Errorf("%w: compression type %d", errs.ErrUnsupportedCompression, compressionType)
	}
}
