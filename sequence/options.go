package sequence

import (
	"fmt"

	"github.com/fseqio/fseq/errs"
	"github.com/fseqio/fseq/format"
	"github.com/fseqio/fseq/fseqlog"
	"github.com/fseqio/fseq/internal/options"
	"github.com/fseqio/fseq/section"
)

// ReaderOption configures a Reader at Open time.
type ReaderOption = options.Option[*Reader]

// WithReaderLogger sets the Logger a Reader calls into on per-frame I/O
// anomalies (spec §7: a read error logs and returns a zero-filled
// projection rather than aborting). Default is fseqlog.NewStdLogger().
func WithReaderLogger(logger fseqlog.Logger) ReaderOption {
	return options.NoError(func(r *Reader) {
		r.logger = logger
	})
}

// WriterOption configures a Writer before WriteHeader is called.
type WriterOption = options.Option[*Writer]

// WithWriterLogger sets the Logger a Writer calls into on per-frame write
// failures.
func WithWriterLogger(logger fseqlog.Logger) WriterOption {
	return options.NoError(func(w *Writer) {
		w.logger = logger
	})
}

// WithClock overrides the wall-clock source used to derive a new file's
// unique_id. Default is the real system clock.
func WithClock(clock Clock) WriterOption {
	return options.NoError(func(w *Writer) {
		w.clock = clock
	})
}

// WithCompressionLevel sets the zstd compression level (1..22) used for a
// V2 zstd writer. Ignored for V1 and V2-none writers.
func WithCompressionLevel(level int) WriterOption {
	return options.New(func(w *Writer) error {
		if level < 1 || level > 22 {
			return fmt.Errorf("%w: compression level %d out of range 1..22", errs.ErrInvalidGeometry, level)
		}
		w.level = level

		return nil
	})
}

// WithSparseRanges declares the logical channel ranges this writer's
// on-disk frames will carry (spec §4.4). V1 writers reject a non-empty
// list: sparsity is a V2-only feature.
func WithSparseRanges(ranges []section.SparseRange) WriterOption {
	return options.New(func(w *Writer) error {
		if len(ranges) > 0 && w.dialect == format.DialectV1 {
			return fmt.Errorf("%w: sparse ranges are a V2-only feature", errs.ErrInvalidGeometry)
		}
		w.sparseRanges = ranges

		return nil
	})
}

// WithVariableHeaders seeds the writer's variable-header table.
func WithVariableHeaders(headers []section.VariableHeader) WriterOption {
	return options.NoError(func(w *Writer) {
		w.variableHeaders = headers
	})
}
