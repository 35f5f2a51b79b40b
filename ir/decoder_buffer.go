package ir

import (
	"errors"
	"fmt"
	"io"

	"github.com/arloliu/clpir/errs"
	"github.com/arloliu/clpir/internal/options"
	"github.com/arloliu/clpir/internal/pool"
	"github.com/arloliu/clpir/preamble"
	"github.com/arloliu/clpir/query"
)

// DefaultReadSize is the number of bytes Populate requests from its reader per call.
const DefaultReadSize = 64 * 1024

// Status is the outcome of a decode attempt that did not fail.
type Status uint8

const (
	// StatusOK means a metadata block or a record was decoded.
	StatusOK Status = iota
	// StatusNeedMoreData means the buffered bytes end inside a token. Nothing was consumed.
	StatusNeedMoreData
	// StatusEndOfStream means the end-of-stream token was read.
	StatusEndOfStream
	// StatusDone means a query can no longer match: the stream passed its upper bound plus
	// termination margin.
	StatusDone
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusNeedMoreData:
		return "NeedMoreData"
	case StatusEndOfStream:
		return "EndOfStream"
	case StatusDone:
		return "Done"
	default:
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
}

// DecoderBufferOption configures a DecoderBuffer.
type DecoderBufferOption = options.Option[*DecoderBuffer]

// WithReadSize sets how many bytes Populate requests per read.
func WithReadSize(n int) DecoderBufferOption {
	return options.New(func(b *DecoderBuffer) error {
		if n <= 0 {
			return fmt.Errorf("read size must be positive, got %d", n)
		}
		b.readSize = n

		return nil
	})
}

// WithInitialData seeds the buffer with data, as if passed to Fill.
func WithInitialData(data []byte) DecoderBufferOption {
	return options.NoError(func(b *DecoderBuffer) {
		b.buf.MustWrite(data)
	})
}

// DecoderBuffer accumulates raw stream bytes and decodes them incrementally.
//
// Bytes are appended with Fill, Write or Populate. Each Try* call either decodes a complete
// unit and consumes its bytes, or reports StatusNeedMoreData and consumes nothing, so
// feeding a stream one byte at a time yields the same events as feeding it at once.
//
// A corrupt stream is terminal: the error is returned by every later Try* call.
//
// Note: The DecoderBuffer is NOT thread-safe.
type DecoderBuffer struct {
	buf      *pool.ByteBuffer
	cursor   int   // offset of the first unconsumed byte in buf
	consumed int64 // bytes consumed over the buffer's lifetime
	readSize int

	meta    *preamble.Metadata
	decoder *Decoder
	ended   bool
	err     error
}

// NewDecoderBuffer creates an empty buffer.
func NewDecoderBuffer(opts ...DecoderBufferOption) (*DecoderBuffer, error) {
	b := &DecoderBuffer{
		buf:      pool.GetStreamBuffer(),
		readSize: DefaultReadSize,
	}

	if err := options.Apply(b, opts...); err != nil {
		pool.PutStreamBuffer(b.buf)
		return nil, err
	}

	return b, nil
}

// Fill appends data to the unconsumed bytes.
func (b *DecoderBuffer) Fill(data []byte) {
	b.compact()
	b.buf.MustWrite(data)
}

// Write implements io.Writer on top of Fill. It never fails.
func (b *DecoderBuffer) Write(data []byte) (int, error) {
	b.Fill(data)
	return len(data), nil
}

// Populate performs a single read of up to the configured read size from r.
//
// Returns:
//   - int: Number of bytes appended
//   - error: The reader's error, io.EOF included
func (b *DecoderBuffer) Populate(r io.Reader) (int, error) {
	b.compact()
	return b.buf.ReadOnceFrom(r, b.readSize)
}

// compact drops consumed bytes once they make up at least half of the buffer.
func (b *DecoderBuffer) compact() {
	if b.cursor == 0 || b.cursor*2 < b.buf.Len() {
		return
	}

	b.buf.Discard(b.cursor)
	b.cursor = 0
}

// Buffered returns the number of bytes not yet consumed.
func (b *DecoderBuffer) Buffered() int {
	return b.buf.Len() - b.cursor
}

// Unconsumed returns the bytes not yet consumed. The slice aliases the buffer and is only
// valid until the next call that modifies it.
func (b *DecoderBuffer) Unconsumed() []byte {
	return b.buf.Bytes()[b.cursor:]
}

// Consumed returns the number of bytes consumed since the buffer was created.
func (b *DecoderBuffer) Consumed() int64 {
	return b.consumed
}

// Metadata returns the stream metadata, or nil if it has not been read yet.
func (b *DecoderBuffer) Metadata() *preamble.Metadata {
	return b.meta
}

// Decoded returns the number of records decoded so far.
func (b *DecoderBuffer) Decoded() uint64 {
	if b.decoder == nil {
		return 0
	}

	return b.decoder.Count()
}

// Ended reports whether the end-of-stream token has been read.
func (b *DecoderBuffer) Ended() bool {
	return b.ended
}

// Err returns the error that made the stream unusable, if any.
func (b *DecoderBuffer) Err() error {
	return b.err
}

// TryReadMetadata decodes the preamble. Once read, later calls return the same metadata
// with StatusOK and consume nothing.
//
// Returns:
//   - *preamble.Metadata: The metadata when status is StatusOK
//   - Status: StatusOK or StatusNeedMoreData
//   - error: Non-nil if the preamble is corrupt or unsupported
func (b *DecoderBuffer) TryReadMetadata() (*preamble.Metadata, Status, error) {
	if b.err != nil {
		return nil, StatusOK, b.err
	}
	if b.meta != nil {
		return b.meta, StatusOK, nil
	}

	meta, n, err := preamble.Decode(b.Unconsumed())
	if errors.Is(err, errs.ErrNeedMoreData) {
		return nil, StatusNeedMoreData, nil
	}
	if err != nil {
		b.err = err
		return nil, StatusOK, err
	}

	b.advance(n)
	b.meta = meta
	b.decoder = NewDecoder(meta)

	return meta, StatusOK, nil
}

// TryDecodeNext decodes the next record, reading the preamble first if needed.
//
// Returns:
//   - LogEvent: The event when status is StatusOK
//   - Status: StatusOK, StatusNeedMoreData or StatusEndOfStream
//   - error: Non-nil if the stream is corrupt
func (b *DecoderBuffer) TryDecodeNext() (LogEvent, Status, error) {
	if b.err != nil {
		return LogEvent{}, StatusOK, b.err
	}
	if b.ended {
		return LogEvent{}, StatusEndOfStream, nil
	}

	if b.meta == nil {
		_, status, err := b.TryReadMetadata()
		if err != nil || status != StatusOK {
			return LogEvent{}, status, err
		}
	}

	ev, n, err := b.decoder.DecodeRecord(b.Unconsumed())
	switch {
	case err == nil:
		b.advance(n)
		return ev, StatusOK, nil
	case errors.Is(err, errs.ErrNeedMoreData):
		return LogEvent{}, StatusNeedMoreData, nil
	case errors.Is(err, errs.ErrEndOfStream):
		b.advance(n)
		b.ended = true

		return LogEvent{}, StatusEndOfStream, nil
	default:
		b.err = fmt.Errorf("record %d at offset %d: %w", b.decoder.Count(), b.consumed, err)
		return LogEvent{}, StatusOK, b.err
	}
}

// TryDecodeNextMatch decodes records until one matches q. A nil q matches every record.
//
// With earlyTermination set, a record whose timestamp is beyond the query's upper bound
// plus termination margin ends the search with StatusDone. Only enable it for streams whose
// timestamps never decrease; otherwise later matches would be missed.
//
// Records skipped on the way are consumed even if the call then reports
// StatusNeedMoreData.
func (b *DecoderBuffer) TryDecodeNextMatch(q *query.Query, earlyTermination bool) (LogEvent, Status, error) {
	for {
		ev, status, err := b.TryDecodeNext()
		if err != nil || status != StatusOK || q == nil {
			return ev, status, err
		}

		if earlyTermination && q.TimestampSafelyOutsideTimeRange(ev.Timestamp) {
			return LogEvent{}, StatusDone, nil
		}
		if q.Matches(ev.Timestamp, ev.Message) {
			return ev, StatusOK, nil
		}
	}
}

// Release returns the internal buffer to the pool. The DecoderBuffer must not be used
// afterwards.
func (b *DecoderBuffer) Release() {
	if b.buf != nil {
		pool.PutStreamBuffer(b.buf)
		b.buf = nil
	}
}

func (b *DecoderBuffer) advance(n int) {
	b.cursor += n
	b.consumed += int64(n)
}
