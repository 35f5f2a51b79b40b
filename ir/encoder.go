package ir

import (
	"fmt"
	"io"
	"slices"

	"github.com/arloliu/clpir/encoding"
	"github.com/arloliu/clpir/endian"
	"github.com/arloliu/clpir/errs"
	"github.com/arloliu/clpir/format"
	"github.com/arloliu/clpir/internal/dict"
	"github.com/arloliu/clpir/internal/options"
	"github.com/arloliu/clpir/internal/pool"
	"github.com/arloliu/clpir/preamble"
)

// EncoderOption configures an Encoder.
type EncoderOption = options.Option[*Encoder]

// WithoutPreamble skips writing the preamble. Use it when the preamble has already been
// written to the destination, for example by a previous call to preamble.Append.
func WithoutPreamble() EncoderOption {
	return options.NoError(func(e *Encoder) {
		e.skipPreamble = true
	})
}

// Encoder encodes log events into IR records, appending them to an internal buffer.
//
// The buffer starts with the preamble of the stream (unless WithoutPreamble is given).
// Take or WriteTo drain it; the encoder keeps its session state across drains, so a long
// stream can be written out incrementally.
//
// Note: The Encoder is NOT thread-safe. Each encoder instance should be used by a single goroutine at a time.
//
// Note: The Encoder is NOT reusable. After Close, a new encoder must be created for a new stream.
type Encoder struct {
	meta   *preamble.Metadata
	engine endian.EndianEngine

	prevTimestamp int64       // timestamp of the last encoded record
	dictionary    *dict.Table // values sent as VarString so far
	count         uint64      // records encoded
	closed        bool

	skipPreamble bool
	tokens       []Token
	fieldKeys    []string

	buf *pool.ByteBuffer
}

// NewEncoder creates an encoder for a stream described by meta.
//
// Returns:
//   - *Encoder: New encoder whose buffer holds the encoded preamble
//   - error: ErrInvalidMetadata if meta is nil or cannot be encoded
func NewEncoder(meta *preamble.Metadata, opts ...EncoderOption) (*Encoder, error) {
	if meta == nil {
		return nil, fmt.Errorf("%w: nil metadata", errs.ErrInvalidMetadata)
	}

	e := &Encoder{
		meta:          meta,
		engine:        meta.Engine(),
		prevTimestamp: meta.ReferenceTimestamp(),
		dictionary:    dict.NewTable(meta.DictionaryCapacity()),
		buf:           pool.GetStreamBuffer(),
	}

	if err := options.Apply(e, opts...); err != nil {
		pool.PutStreamBuffer(e.buf)
		return nil, err
	}

	if !e.skipPreamble {
		b, err := preamble.Append(e.buf.B, meta)
		if err != nil {
			pool.PutStreamBuffer(e.buf)
			return nil, err
		}
		e.buf.B = b
	}

	return e, nil
}

// Metadata returns the metadata of the stream being encoded.
func (e *Encoder) Metadata() *preamble.Metadata {
	return e.meta
}

// Count returns the number of records encoded so far.
func (e *Encoder) Count() uint64 {
	return e.count
}

// Len returns the number of buffered bytes not yet drained.
func (e *Encoder) Len() int {
	return e.buf.Len()
}

// Bytes returns the buffered bytes. The slice is only valid until the next call that
// modifies the encoder.
func (e *Encoder) Bytes() []byte {
	return e.buf.Bytes()
}

// Take returns a copy of the buffered bytes and empties the buffer.
func (e *Encoder) Take() []byte {
	out := slices.Clone(e.buf.Bytes())
	e.buf.Reset()

	return out
}

// WriteTo writes the buffered bytes to w and removes them from the buffer. On a write error
// only the bytes w did not accept stay buffered, so retrying continues the stream where it
// stopped.
func (e *Encoder) WriteTo(w io.Writer) (int64, error) {
	return e.buf.WriteTo(w)
}

// EncodeMessage encodes a record without auxiliary fields.
func (e *Encoder) EncodeMessage(timestamp int64, message string) error {
	return e.Encode(LogEvent{Timestamp: timestamp, Message: message})
}

// Encode appends one record for ev.
//
// A failed call leaves the buffer, the running timestamp and the dictionary exactly as
// they were before it.
//
// Returns:
//   - error: ErrEncoderClosed, ErrTimestampDeltaOverflow or ErrTokenTooLong
func (e *Encoder) Encode(ev LogEvent) error {
	if e.closed {
		return errs.ErrEncoderClosed
	}

	delta, overflow := subInt64(ev.Timestamp, e.prevTimestamp)
	if overflow {
		return fmt.Errorf("%w: %d - %d", errs.ErrTimestampDeltaOverflow, ev.Timestamp, e.prevTimestamp)
	}

	mark := e.buf.Len()
	b, err := e.appendRecord(e.buf.B, delta, ev)
	if err != nil {
		e.buf.B = e.buf.B[:mark]
		e.dictionary.Rollback()

		return err
	}

	e.buf.B = b
	e.dictionary.Commit()
	e.prevTimestamp = ev.Timestamp
	e.count++

	return nil
}

func (e *Encoder) appendRecord(dst []byte, delta int64, ev LogEvent) ([]byte, error) {
	var err error

	dst = append(dst, byte(format.TagTimestampDelta))
	dst = encoding.AppendZigzagVarint(dst, delta)

	e.tokens = AppendTokens(e.tokens[:0], ev.Message)
	for i := range e.tokens {
		if dst, err = e.appendToken(dst, &e.tokens[i]); err != nil {
			return dst, err
		}
	}

	if len(ev.Fields) > 0 {
		// Sorted so the same event always encodes to the same bytes.
		e.fieldKeys = e.fieldKeys[:0]
		for k := range ev.Fields {
			e.fieldKeys = append(e.fieldKeys, k)
		}
		slices.Sort(e.fieldKeys)

		for _, k := range e.fieldKeys {
			dst = append(dst, byte(format.TagField))
			if dst, err = encoding.AppendField(dst, e.engine, k, ev.Fields[k]); err != nil {
				return dst, err
			}
		}
	}

	return append(dst, byte(format.TagEndOfRecord)), nil
}

func (e *Encoder) appendToken(dst []byte, tok *Token) ([]byte, error) {
	switch tok.Kind {
	case TokenStatic:
		return encoding.AppendLengthTagged(dst, e.engine, encoding.StaticTextTags, tok.Text)
	case TokenFourByteInt:
		dst = append(dst, byte(format.TagFourByteInt))
		return e.engine.AppendUint32(dst, uint32(tok.Int)), nil //nolint:gosec
	case TokenFourByteFloat:
		dst = append(dst, byte(format.TagFourByteFloat))
		return e.engine.AppendUint32(dst, tok.Float), nil
	default:
		if id, ok := e.dictionary.Lookup(tok.Text); ok {
			dst = append(dst, byte(format.TagDictionaryRef))
			return encoding.AppendUvarint(dst, uint64(id)), nil
		}

		dst, err := encoding.AppendLengthTagged(dst, e.engine, encoding.VarStringTags, tok.Text)
		if err != nil {
			return dst, err
		}
		e.dictionary.Register(tok.Text)

		return dst, nil
	}
}

// Close appends the end-of-stream token. Further Encode calls fail with ErrEncoderClosed;
// the buffer can still be drained. Close is idempotent.
func (e *Encoder) Close() error {
	if e.closed {
		return nil
	}

	e.buf.MustWriteByte(byte(format.TagEndOfStream))
	e.closed = true

	return nil
}

// Release returns the internal buffer to the pool. The encoder must not be used afterwards.
func (e *Encoder) Release() {
	if e.buf != nil {
		pool.PutStreamBuffer(e.buf)
		e.buf = nil
	}
}

// addInt64 returns a+b and whether the addition overflowed.
func addInt64(a, b int64) (int64, bool) {
	s := a + b
	// Overflow iff the operands share a sign and the result's sign differs from a.
	return s, (a^s)&(b^s) < 0
}

// subInt64 returns a-b and whether the subtraction overflowed.
func subInt64(a, b int64) (int64, bool) {
	d := a - b
	// Overflow iff the operands differ in sign and the result's sign differs from a.
	return d, (a^b)&(a^d) < 0
}

