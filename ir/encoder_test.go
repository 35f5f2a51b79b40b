package ir

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/clpir/errs"
	"github.com/arloliu/clpir/format"
	"github.com/arloliu/clpir/preamble"
)

func TestNewEncoder_WritesPreamble(t *testing.T) {
	meta := newTestMetadata(t, 1000)
	want, err := preamble.Append(nil, meta)
	require.NoError(t, err)

	enc, err := NewEncoder(meta)
	require.NoError(t, err)
	defer enc.Release()

	require.Equal(t, want, enc.Bytes())
	require.Same(t, meta, enc.Metadata())
}

func TestNewEncoder_NilMetadata(t *testing.T) {
	_, err := NewEncoder(nil)
	require.ErrorIs(t, err, errs.ErrInvalidMetadata)
}

func TestEncoder_WithoutPreamble(t *testing.T) {
	enc, err := NewEncoder(newTestMetadata(t, 0), WithoutPreamble())
	require.NoError(t, err)
	defer enc.Release()

	require.Zero(t, enc.Len())
}

func TestEncoder_RecordBytes(t *testing.T) {
	enc, err := NewEncoder(newTestMetadata(t, 1000), WithoutPreamble())
	require.NoError(t, err)
	defer enc.Release()

	require.NoError(t, enc.EncodeMessage(1005, "x=1"))

	want := []byte{
		byte(format.TagTimestampDelta), 0x0A, // zigzag(5)
		byte(format.TagStaticLenUByte), 0x02, 'x', '=',
		byte(format.TagFourByteInt), 0x00, 0x00, 0x00, 0x01,
		byte(format.TagEndOfRecord),
	}
	require.Equal(t, want, enc.Take())
	require.Zero(t, enc.Len())
}

func TestEncoder_LittleEndianPayload(t *testing.T) {
	enc, err := NewEncoder(newTestMetadata(t, 0, preamble.WithByteOrder(format.LittleEndian)), WithoutPreamble())
	require.NoError(t, err)
	defer enc.Release()

	require.NoError(t, enc.EncodeMessage(0, "1"))

	want := []byte{
		byte(format.TagTimestampDelta), 0x00,
		byte(format.TagFourByteInt), 0x01, 0x00, 0x00, 0x00,
		byte(format.TagEndOfRecord),
	}
	require.Equal(t, want, enc.Take())
}

func TestEncoder_NegativeDelta(t *testing.T) {
	enc, err := NewEncoder(newTestMetadata(t, 1000), WithoutPreamble())
	require.NoError(t, err)
	defer enc.Release()

	require.NoError(t, enc.EncodeMessage(999, "late"))

	want := []byte{
		byte(format.TagTimestampDelta), 0x01, // zigzag(-1)
		byte(format.TagStaticLenUByte), 0x04, 'l', 'a', 't', 'e',
		byte(format.TagEndOfRecord),
	}
	require.Equal(t, want, enc.Take())
}

func TestEncoder_DictionaryReference(t *testing.T) {
	meta := newTestMetadata(t, 0, preamble.WithDictionaryCapacity(4))
	enc, err := NewEncoder(meta, WithoutPreamble())
	require.NoError(t, err)
	defer enc.Release()

	require.NoError(t, enc.EncodeMessage(0, "10.0.0.7"))
	first := enc.Take()
	require.Equal(t, byte(format.TagVarStrLenUByte), first[2])

	require.NoError(t, enc.EncodeMessage(0, "10.0.0.7"))
	second := enc.Take()
	require.Equal(t, []byte{
		byte(format.TagTimestampDelta), 0x00,
		byte(format.TagDictionaryRef), 0x00,
		byte(format.TagEndOfRecord),
	}, second)
}

func TestEncoder_DictionaryDisabled(t *testing.T) {
	enc, err := NewEncoder(newTestMetadata(t, 0), WithoutPreamble())
	require.NoError(t, err)
	defer enc.Release()

	require.NoError(t, enc.EncodeMessage(0, "10.0.0.7"))
	first := enc.Take()
	require.NoError(t, enc.EncodeMessage(0, "10.0.0.7"))
	require.Equal(t, first, enc.Take())
}

func TestEncoder_TimestampDeltaOverflow(t *testing.T) {
	meta := newTestMetadata(t, math.MinInt64+1)
	enc, err := NewEncoder(meta)
	require.NoError(t, err)
	defer enc.Release()

	before := bytes.Clone(enc.Bytes())

	err = enc.EncodeMessage(math.MaxInt64, "too far")
	require.ErrorIs(t, err, errs.ErrTimestampDeltaOverflow)
	require.Equal(t, before, enc.Bytes(), "a failed encode leaves the buffer untouched")
	require.Zero(t, enc.Count())

	require.NoError(t, enc.EncodeMessage(math.MinInt64+2, "ok"))
	require.Equal(t, uint64(1), enc.Count())
}

func TestEncoder_Close(t *testing.T) {
	enc, err := NewEncoder(newTestMetadata(t, 0), WithoutPreamble())
	require.NoError(t, err)
	defer enc.Release()

	require.NoError(t, enc.Close())
	require.NoError(t, enc.Close())
	require.Equal(t, []byte{byte(format.TagEndOfStream)}, enc.Bytes())

	err = enc.EncodeMessage(1, "after close")
	require.ErrorIs(t, err, errs.ErrEncoderClosed)
}

// partialWriter accepts up to limit bytes in total, then fails.
type partialWriter struct {
	out   bytes.Buffer
	limit int
}

func (pw *partialWriter) Write(p []byte) (int, error) {
	room := pw.limit - pw.out.Len()
	if len(p) <= room {
		return pw.out.Write(p)
	}
	n, _ := pw.out.Write(p[:room])

	return n, errors.New("disk full")
}

func TestEncoder_WriteTo_RetryAfterPartialWrite(t *testing.T) {
	meta := newTestMetadata(t, 0)
	events := []LogEvent{
		NewLogEvent(1, "first 1"),
		NewLogEvent(2, "second 2.5"),
	}

	enc, err := NewEncoder(meta)
	require.NoError(t, err)
	defer enc.Release()
	for _, ev := range events {
		require.NoError(t, enc.Encode(ev))
	}
	require.NoError(t, enc.Close())

	total := enc.Len()
	dst := &partialWriter{limit: total / 2}
	n, err := enc.WriteTo(dst)
	require.Error(t, err)
	require.Equal(t, int64(total/2), n)
	require.Equal(t, total-total/2, enc.Len())

	dst.limit = total
	_, err = enc.WriteTo(dst)
	require.NoError(t, err)
	require.Zero(t, enc.Len())

	require.Equal(t, encodeStream(t, meta, events...), dst.out.Bytes())
	got := decodeAll(t, dst.out.Bytes())
	require.Equal(t, []string{"first 1", "second 2.5"}, messages(got))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("boom") }

func TestEncoder_WriteTo(t *testing.T) {
	enc, err := NewEncoder(newTestMetadata(t, 0))
	require.NoError(t, err)
	defer enc.Release()
	require.NoError(t, enc.EncodeMessage(1, "hello"))

	pending := enc.Len()
	_, err = enc.WriteTo(failingWriter{})
	require.Error(t, err)
	require.Equal(t, pending, enc.Len(), "nothing was accepted, nothing is dropped")

	var out bytes.Buffer
	n, err := enc.WriteTo(&out)
	require.NoError(t, err)
	require.Equal(t, int64(pending), n)
	require.Zero(t, enc.Len())
}
