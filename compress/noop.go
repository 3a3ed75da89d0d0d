package compress

import "io"

// NoopCodec passes frame bytes through unchanged. It is used for
// format.CompressionNone, including every V1 file and any V2 file written
// with compression disabled.
type NoopCodec struct{}

var _ Codec = NoopCodec{}

// NewNoopCodec creates a codec that performs no compression.
func NewNoopCodec() NoopCodec {
	return NoopCodec{}
}

// Decompress returns data unchanged.
func (c NoopCodec) Decompress(data []byte) ([]byte, error) {
	return data, nil
}

// NewStreamEncoder returns a stream that writes straight through to w.
// level is ignored.
func (c NoopCodec) NewStreamEncoder(w io.Writer, level int) (StreamEncoder, error) {
	return noopStreamEncoder{w: w}, nil
}

type noopStreamEncoder struct {
	w io.Writer
}

func (e noopStreamEncoder) Write(p []byte) (int, error) { return e.w.Write(p) }
func (e noopStreamEncoder) Flush() error                { return nil }
func (e noopStreamEncoder) Close() error                { return nil }
