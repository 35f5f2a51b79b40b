package stream

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/arloliu/clpir/compress"
	"github.com/arloliu/clpir/errs"
	"github.com/arloliu/clpir/format"
	"github.com/arloliu/clpir/internal/options"
	"github.com/arloliu/clpir/ir"
	"github.com/arloliu/clpir/preamble"
)

// DefaultFlushThreshold is the number of encoded bytes a Writer buffers before handing
// them to its destination.
const DefaultFlushThreshold = 64 * 1024

// WriterOption configures a Writer.
type WriterOption = options.Option[*Writer]

// WithWriterCompression compresses the output with the given algorithm.
func WithWriterCompression(t format.CompressionType) WriterOption {
	return options.New(func(w *Writer) error {
		if _, err := compress.GetCodec(t); err != nil {
			return err
		}
		w.compression = t

		return nil
	})
}

// WithFlushThreshold sets how many encoded bytes are buffered before they are written out.
// Zero writes every record as soon as it is encoded.
func WithFlushThreshold(n int) WriterOption {
	return options.New(func(w *Writer) error {
		if n < 0 {
			return fmt.Errorf("flush threshold must not be negative, got %d", n)
		}
		w.flushThreshold = n

		return nil
	})
}

// WithWriterLogger sets the logger for stream level events. The default discards everything.
func WithWriterLogger(logger *slog.Logger) WriterOption {
	return options.NoError(func(w *Writer) {
		if logger != nil {
			w.logger = logger
		}
	})
}

// Writer encodes log events into an IR stream written to an io.Writer.
//
// Note: The Writer is NOT thread-safe.
type Writer struct {
	compression    format.CompressionType
	flushThreshold int
	logger         *slog.Logger

	dst    *countingWriter
	zw     compress.WriteFlushCloser
	enc    *ir.Encoder
	raw    int64 // uncompressed bytes handed to zw
	closed bool
}

// NewWriter creates a writer for a stream described by meta. The preamble is written with
// the first flush.
func NewWriter(w io.Writer, meta *preamble.Metadata, opts ...WriterOption) (*Writer, error) {
	wr := &Writer{
		compression:    format.CompressionNone,
		flushThreshold: DefaultFlushThreshold,
		logger:         slog.New(slog.DiscardHandler),
		dst:            &countingWriter{w: w},
	}

	if err := options.Apply(wr, opts...); err != nil {
		return nil, err
	}

	codec, err := compress.GetCodec(wr.compression)
	if err != nil {
		return nil, err
	}

	if wr.enc, err = ir.NewEncoder(meta); err != nil {
		return nil, err
	}
	if wr.zw, err = codec.NewWriter(wr.dst); err != nil {
		wr.enc.Release()
		return nil, err
	}

	wr.logger.Debug("created IR stream",
		"compression", wr.compression.String(),
		"version", meta.Version(),
		"reference_timestamp", meta.ReferenceTimestamp(),
		"dictionary_capacity", meta.DictionaryCapacity(),
	)

	return wr, nil
}

// Metadata returns the metadata of the stream.
func (w *Writer) Metadata() *preamble.Metadata {
	return w.enc.Metadata()
}

// Count returns the number of events written.
func (w *Writer) Count() uint64 {
	return w.enc.Count()
}

// Write encodes ev.
//
// Returns:
//   - error: ErrEncoderClosed after Close, encoding errors such as
//     ErrTimestampDeltaOverflow, or a write error from the destination
func (w *Writer) Write(ev ir.LogEvent) error {
	if w.closed {
		return errs.ErrEncoderClosed
	}

	if err := w.enc.Encode(ev); err != nil {
		return err
	}
	if w.enc.Len() > w.flushThreshold {
		return w.drain()
	}

	return nil
}

// WriteMessage encodes an event without auxiliary fields.
func (w *Writer) WriteMessage(timestamp int64, message string) error {
	return w.Write(ir.NewLogEvent(timestamp, message))
}

// Flush writes buffered records and flushes the compressor, so everything written so far
// can be decoded by a reader.
func (w *Writer) Flush() error {
	if w.closed {
		return errs.ErrEncoderClosed
	}
	if err := w.drain(); err != nil {
		return err
	}

	return w.zw.Flush()
}

// Close writes the end-of-stream token, flushes and finishes the compressed stream. It
// does not close the destination. Close is idempotent.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	defer w.enc.Release()

	if err := w.enc.Close(); err != nil {
		return err
	}
	if err := w.drain(); err != nil {
		return err
	}
	if err := w.zw.Close(); err != nil {
		return fmt.Errorf("finish %s stream: %w", w.compression, err)
	}

	stats := w.Stats()
	w.logger.Debug("closed IR stream",
		"records", w.enc.Count(),
		"raw_bytes", stats.OriginalSize,
		"written_bytes", stats.CompressedSize,
		"space_savings", fmt.Sprintf("%.1f%%", stats.SpaceSavings()),
	)

	return nil
}

// Abort gives the writer's buffers back without ending the stream. Records that were not
// flushed are dropped and no end-of-stream token is written, so readers treat the output as
// incomplete. Abort after Close does nothing.
func (w *Writer) Abort() {
	if w.closed {
		return
	}
	w.closed = true
	w.enc.Release()
	w.logger.Debug("aborted IR stream", "records", w.enc.Count())
}

// Stats reports the uncompressed and written sizes of the stream so far.
func (w *Writer) Stats() compress.CompressionStats {
	return compress.CompressionStats{
		Algorithm:      w.compression,
		OriginalSize:   w.raw,
		CompressedSize: w.dst.n,
	}
}

func (w *Writer) drain() error {
	n, err := w.enc.WriteTo(w.zw)
	w.raw += n
	if err != nil {
		return fmt.Errorf("write IR stream: %w", err)
	}

	return nil
}

// countingWriter counts the bytes that reach the destination.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)

	return n, err
}
