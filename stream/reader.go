package stream

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"

	"github.com/arloliu/clpir/compress"
	"github.com/arloliu/clpir/errs"
	"github.com/arloliu/clpir/format"
	"github.com/arloliu/clpir/internal/options"
	"github.com/arloliu/clpir/ir"
	"github.com/arloliu/clpir/preamble"
	"github.com/arloliu/clpir/query"
)

// ReaderOption configures a Reader.
type ReaderOption = options.Option[*Reader]

// WithQuery makes the reader yield only events matching q.
func WithQuery(q *query.Query) ReaderOption {
	return options.NoError(func(r *Reader) {
		r.query = q
	})
}

// WithEarlyTermination lets the reader stop at the first event beyond the query's upper
// bound plus termination margin. Only enable it for streams whose timestamps never
// decrease.
func WithEarlyTermination(enabled bool) ReaderOption {
	return options.NoError(func(r *Reader) {
		r.earlyTermination = enabled
	})
}

// WithCompression sets the compression of the source instead of detecting it.
func WithCompression(t format.CompressionType) ReaderOption {
	return options.New(func(r *Reader) error {
		if _, err := compress.GetCodec(t); err != nil {
			return err
		}
		r.compression = t
		r.detect = false

		return nil
	})
}

// WithReadSize sets how many bytes the reader requests from its source per read.
func WithReadSize(n int) ReaderOption {
	return options.New(func(r *Reader) error {
		if n <= 0 {
			return fmt.Errorf("read size must be positive, got %d", n)
		}
		r.readSize = n

		return nil
	})
}

// WithAllowIncompleteStream makes a source that ends without an end-of-stream token, in
// the middle of a record or between records, end iteration normally instead of failing
// with ErrIncompleteStream. Streams of a producer that is still writing or has crashed
// look like this.
func WithAllowIncompleteStream(allow bool) ReaderOption {
	return options.NoError(func(r *Reader) {
		r.allowIncomplete = allow
	})
}

// WithLogger sets the logger for stream level events. The default discards everything.
func WithLogger(logger *slog.Logger) ReaderOption {
	return options.NoError(func(r *Reader) {
		if logger != nil {
			r.logger = logger
		}
	})
}

// Reader decodes log events from a byte source.
//
// Note: The Reader is NOT thread-safe.
type Reader struct {
	query            *query.Query
	earlyTermination bool
	compression      format.CompressionType
	detect           bool
	readSize         int
	allowIncomplete  bool
	logger           *slog.Logger

	src    io.ReadCloser // decompressed source
	buf    *ir.DecoderBuffer
	meta   *preamble.Metadata
	srcEOF bool
	err    error // sticky; io.EOF once iteration has ended
}

// NewReader creates a reader over r and decodes the stream preamble.
//
// Returns:
//   - *Reader: Reader positioned at the first record
//   - error: Option errors, source errors, or preamble errors such as ErrUnsupportedVersion
func NewReader(r io.Reader, opts ...ReaderOption) (*Reader, error) {
	rd := &Reader{
		compression: format.CompressionNone,
		detect:      true,
		readSize:    ir.DefaultReadSize,
		logger:      slog.New(slog.DiscardHandler),
	}

	if err := options.Apply(rd, opts...); err != nil {
		return nil, err
	}

	if rd.detect {
		br := bufio.NewReaderSize(r, max(rd.readSize, compress.SniffSize))
		t, err := compress.Sniff(br)
		if err != nil {
			return nil, fmt.Errorf("detect compression: %w", err)
		}
		rd.compression = t
		r = br
	}

	codec, err := compress.GetCodec(rd.compression)
	if err != nil {
		return nil, err
	}
	if rd.src, err = codec.NewReader(r); err != nil {
		return nil, err
	}

	if rd.buf, err = ir.NewDecoderBuffer(ir.WithReadSize(rd.readSize)); err != nil {
		_ = rd.src.Close()
		return nil, err
	}

	meta, err := rd.readMetadata()
	if err != nil {
		_ = rd.Close()
		return nil, err
	}
	rd.meta = meta

	rd.logger.Debug("opened IR stream",
		"compression", rd.compression.String(),
		"version", meta.Version(),
		"reference_timestamp", meta.ReferenceTimestamp(),
		"time_zone", meta.TimeZoneID(),
		"byte_order", meta.ByteOrder().String(),
		"dictionary_capacity", meta.DictionaryCapacity(),
	)

	return rd, nil
}

func (r *Reader) readMetadata() (*preamble.Metadata, error) {
	for {
		meta, status, err := r.buf.TryReadMetadata()
		if err != nil {
			return nil, err
		}
		if status == ir.StatusOK {
			return meta, nil
		}

		if err := r.populate(); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("%w: source ended inside the preamble", errs.ErrIncompleteStream)
			}

			return nil, err
		}
	}
}

// populate reads once from the source. It returns io.EOF only when the source is
// exhausted and nothing was read.
func (r *Reader) populate() error {
	if r.srcEOF {
		return io.EOF
	}

	n, err := r.buf.Populate(r.src)
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		// A compressed source cut mid-frame ends the stream the same way as a plain one.
		r.srcEOF = true
		if n == 0 {
			return io.EOF
		}

		return nil
	case err != nil:
		return fmt.Errorf("read IR source: %w", err)
	default:
		return nil
	}
}

// Metadata returns the metadata of the stream.
func (r *Reader) Metadata() *preamble.Metadata {
	return r.meta
}

// Compression returns the compression of the source.
func (r *Reader) Compression() format.CompressionType {
	return r.compression
}

// Next returns the next event, skipping events that do not match the query.
//
// Returns:
//   - ir.LogEvent: The next event
//   - error: io.EOF at the end of the stream (or when early termination applies),
//     ErrIncompleteStream if the source ends without an end-of-stream token, or a
//     decoding error wrapping ErrCorruptStream
func (r *Reader) Next() (ir.LogEvent, error) {
	if r.err != nil {
		return ir.LogEvent{}, r.err
	}

	for {
		ev, status, err := r.buf.TryDecodeNextMatch(r.query, r.earlyTermination)
		if err != nil {
			r.logger.Error("corrupt IR stream", "offset", r.buf.Consumed(), "records", r.buf.Decoded(), "error", err)
			r.err = err

			return ir.LogEvent{}, err
		}

		switch status {
		case ir.StatusOK:
			return ev, nil
		case ir.StatusEndOfStream:
			r.logger.Debug("reached end of IR stream", "records", r.buf.Decoded())
			r.err = io.EOF

			return ir.LogEvent{}, io.EOF
		case ir.StatusDone:
			r.logger.Debug("search passed its time range, stopping early", "records", r.buf.Decoded())
			r.err = io.EOF

			return ir.LogEvent{}, io.EOF
		case ir.StatusNeedMoreData:
			if err := r.populate(); err != nil {
				r.err = r.sourceEnded(err)
				return ir.LogEvent{}, r.err
			}
		}
	}
}

// sourceEnded maps the end of the source in the middle of a stream to the error Next
// reports.
func (r *Reader) sourceEnded(err error) error {
	if !errors.Is(err, io.EOF) {
		return err
	}

	pending := r.buf.Buffered()
	if r.allowIncomplete {
		r.logger.Warn("IR stream ended without end-of-stream token",
			"records", r.buf.Decoded(), "discarded_bytes", pending)

		return io.EOF
	}

	return fmt.Errorf("%w: source ended after %d records with %d undecoded bytes",
		errs.ErrIncompleteStream, r.buf.Decoded(), pending)
}

// All returns an iterator over the remaining events. Iteration stops after the first
// error, which is yielded with a zero event; the end of the stream is not an error.
func (r *Reader) All() iter.Seq2[ir.LogEvent, error] {
	return func(yield func(ir.LogEvent, error) bool) {
		for {
			ev, err := r.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(ir.LogEvent{}, err)
				return
			}
			if !yield(ev, nil) {
				return
			}
		}
	}
}

// Close releases the reader's resources. It does not close the source passed to NewReader.
func (r *Reader) Close() error {
	var err error
	if r.src != nil {
		err = r.src.Close()
		r.src = nil
	}
	if r.buf != nil {
		r.buf.Release()
		r.buf = nil
	}
	if r.err == nil {
		r.err = io.ErrClosedPipe
	}

	return err
}
