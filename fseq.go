// Package fseq provides a reader/writer library for the FSEQ binary
// sequence-file format: a time-indexed stream of fixed-width channel
// frames used by lighting-show playback systems. A sequence file stores
// the geometry of a show (channel count, frame count, frame period), an
// ordered sequence of channel snapshots, and a small set of user metadata
// records. Two on-disk dialects are supported: a legacy uncompressed
// layout (V1) and a block-compressed, sparsity-aware layout (V2).
//
// # Basic Usage
//
// Reading a file frame-by-frame:
//
//	import "github.com/fseqio/fseq"
//	import "github.com/fseqio/fseq/section"
//
//	r, err := fseq.Open("show.fseq")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
//	meta := r.Metadata()
//	r.PrepareRead([]section.SparseRange{{FirstChannel: 0, Length: meta.Geometry.ChannelCount}})
//
//	buf := make([]byte, meta.Geometry.ChannelCount)
//	for n := uint32(0); n < meta.Geometry.FrameCount; n++ {
//	    proj := r.GetFrame(n)
//	    proj.Scatter(buf)
//	}
//
// Writing a V2 zstd-compressed file:
//
//	w, err := fseq.Create("show.fseq", format.DialectV2, format.CompressionZstd, 10)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Close()
//
//	w.SetGeometry(section.Geometry{ChannelCount: 512, FrameCount: 1000, StepTimeMs: 25})
//	w.WriteHeader()
//	for n := uint32(0); n < 1000; n++ {
//	    w.AddFrame(n, frameBytes(n))
//	}
//	w.Finalize()
//
// # Package Structure
//
// This package is a thin dialect-dispatching facade over the sequence
// package. For advanced configuration (logging sink, clock source,
// sparse ranges, variable headers) use sequence.Open / sequence.Create
// directly with the corresponding ReaderOption / WriterOption values.
package fseq

import (
	"fmt"

	"github.com/fseqio/fseq/errs"
	"github.com/fseqio/fseq/format"
	"github.com/fseqio/fseq/sequence"
)

// Open parses path's header and returns a Reader whose dialect and
// compression are fixed for its lifetime. version_major must be 1 or 2;
// any other value fails (spec §4.8).
func Open(path string, opts ...sequence.ReaderOption) (*sequence.Reader, error) {
	return sequence.Open(path, opts...)
}

// Create opens path for writing a new sequence file of the given
// dialect and compression. version=1 forces compression=none (spec
// §4.8); passing a non-none compression with DialectV1 fails.
func Create(path string, dialect format.Dialect, compression format.Compression, level int, opts ...sequence.WriterOption) (*sequence.Writer, error) {
	if dialect == format.DialectV1 && compression != format.CompressionNone {
		return nil, fmt.Errorf("%w: dialect V1 requires compression=none", errs.ErrUnsupportedCompression)
	}

	return sequence.Create(path, dialect, compression, level, opts...)
}
