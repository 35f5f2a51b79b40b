package ir

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/clpir/encoding"
	"github.com/arloliu/clpir/preamble"
)

func mustPackFloat(t *testing.T, s string) uint32 {
	t.Helper()

	v, ok := encoding.EncodeFourByteFloat(s)
	require.True(t, ok, s)

	return v
}

func newTestMetadata(t *testing.T, refTs int64, opts ...preamble.MetadataOption) *preamble.Metadata {
	t.Helper()

	meta, err := preamble.NewMetadata(refTs, "yyyy-MM-dd HH:mm:ss.SSS", "UTC", opts...)
	require.NoError(t, err)

	return meta
}

// encodeStream encodes events into a complete stream, end-of-stream token included.
func encodeStream(t *testing.T, meta *preamble.Metadata, events ...LogEvent) []byte {
	t.Helper()

	enc, err := NewEncoder(meta)
	require.NoError(t, err)
	defer enc.Release()

	for _, ev := range events {
		require.NoError(t, enc.Encode(ev))
	}
	require.NoError(t, enc.Close())

	return enc.Take()
}

// decodeAll decodes a fully buffered stream.
func decodeAll(t *testing.T, data []byte) []LogEvent {
	t.Helper()

	buf, err := NewDecoderBuffer(WithInitialData(data))
	require.NoError(t, err)
	defer buf.Release()

	var events []LogEvent
	for {
		ev, status, err := buf.TryDecodeNext()
		require.NoError(t, err)
		switch status {
		case StatusOK:
			events = append(events, ev)
		case StatusEndOfStream:
			return events
		default:
			require.FailNow(t, "unexpected status", status.String())
		}
	}
}

func messages(events []LogEvent) []string {
	out := make([]string, len(events))
	for i, ev := range events {
		out[i] = ev.Message
	}

	return out
}

func timestamps(events []LogEvent) []int64 {
	out := make([]int64, len(events))
	for i, ev := range events {
		out[i] = ev.Timestamp
	}

	return out
}
