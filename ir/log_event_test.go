package ir

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLogEvent_Formatting(t *testing.T) {
	ev := NewLogEvent(1_683_000_000_123, "hello 42")

	require.Equal(t, time.UnixMilli(1_683_000_000_123), ev.Time())
	require.Equal(t, "2023-05-02 04:00:00.123+00:00", ev.FormattedTimestamp(nil))

	loc := time.FixedZone("EDT", -4*60*60)
	require.Equal(t, "2023-05-02 00:00:00.123-04:00", ev.FormattedTimestamp(loc))
	require.Equal(t, "2023-05-02 00:00:00.123-04:00 hello 42", ev.FormattedMessage(loc))
}

func TestLogEvent_Equal(t *testing.T) {
	base := LogEvent{Timestamp: 1, Message: "m", Index: 3}

	require.True(t, base.Equal(LogEvent{Timestamp: 1, Message: "m", Index: 9}), "index is ignored")
	require.True(t, base.Equal(LogEvent{Timestamp: 1, Message: "m", Fields: map[string]string{}}))
	require.False(t, base.Equal(LogEvent{Timestamp: 2, Message: "m"}))
	require.False(t, base.Equal(LogEvent{Timestamp: 1, Message: "n"}))

	withFields := LogEvent{Timestamp: 1, Message: "m", Fields: map[string]string{"k": "v"}}
	require.False(t, base.Equal(withFields))
	require.True(t, withFields.Equal(LogEvent{Timestamp: 1, Message: "m", Fields: map[string]string{"k": "v"}}))
	require.False(t, withFields.Equal(LogEvent{Timestamp: 1, Message: "m", Fields: map[string]string{"k": "w"}}))
}
