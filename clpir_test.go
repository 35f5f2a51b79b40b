package clpir

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/clpir/format"
	"github.com/arloliu/clpir/ir"
	"github.com/arloliu/clpir/query"
	"github.com/arloliu/clpir/stream"
)

func sampleEvents() []ir.LogEvent {
	return []ir.LogEvent{
		ir.NewLogEvent(1000, "worker 3 started"),
		ir.NewLogEvent(1250, "ERROR job 77 failed after 1.5 s"),
		ir.NewLogEvent(1400, "worker 3 stopped"),
	}
}

func TestEncodeDecodeEvents(t *testing.T) {
	meta, err := NewDefaultMetadata(1000)
	require.NoError(t, err)

	data, err := EncodeEvents(meta, sampleEvents())
	require.NoError(t, err)

	got, err := DecodeEvents(data)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, ev := range sampleEvents() {
		require.True(t, ev.Equal(got[i]), "event %d: %+v", i, got[i])
		require.Equal(t, uint64(i), got[i].Index)
	}
}

func TestDefaultWriter_Search(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewDefaultWriter(&buf, 1000)
	require.NoError(t, err)
	for _, ev := range sampleEvents() {
		require.NoError(t, w.Write(ev))
	}
	require.NoError(t, w.Close())

	q := NewQueryBuilder().
		AddWildcardQuery(query.NewWildcardQuery("*error*", false)).
		BuildQuery()

	r, err := NewReader(bytes.NewReader(buf.Bytes()), stream.WithQuery(q))
	require.NoError(t, err)
	require.Equal(t, format.CompressionZstd, r.Compression())
	require.Equal(t, DefaultTimeZoneID, r.Metadata().TimeZoneID())

	var messages []string
	for ev, err := range r.All() {
		require.NoError(t, err)
		messages = append(messages, ev.Message)
	}
	require.Equal(t, []string{"ERROR job 77 failed after 1.5 s"}, messages)
}

func TestEncoderAndDecoderBuffer(t *testing.T) {
	meta, err := NewMetadata(0, DefaultTimestampPattern, "Asia/Taipei")
	require.NoError(t, err)

	enc, err := NewEncoder(meta)
	require.NoError(t, err)
	require.NoError(t, enc.EncodeMessage(42, "hello 42"))
	require.NoError(t, enc.Close())

	buf, err := NewDecoderBuffer(ir.WithInitialData(enc.Take()))
	require.NoError(t, err)

	decoded, status, err := buf.TryReadMetadata()
	require.NoError(t, err)
	require.Equal(t, ir.StatusOK, status)
	require.True(t, meta.Equal(decoded))

	ev, status, err := buf.TryDecodeNext()
	require.NoError(t, err)
	require.Equal(t, ir.StatusOK, status)
	require.Equal(t, int64(42), ev.Timestamp)
	require.Equal(t, "hello 42", ev.Message)

	_, status, err = buf.TryDecodeNext()
	require.NoError(t, err)
	require.Equal(t, ir.StatusEndOfStream, status)
}

func TestNewWriter_InvalidMetadata(t *testing.T) {
	_, err := NewWriter(&bytes.Buffer{}, nil)
	require.Error(t, err)
}
