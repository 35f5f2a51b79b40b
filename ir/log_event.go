package ir

import (
	"maps"
	"time"
)

// TimestampLayout formats timestamps in FormattedTimestamp.
const TimestampLayout = "2006-01-02 15:04:05.000-07:00"

// LogEvent is one decoded (or to be encoded) log record.
type LogEvent struct {
	// Timestamp is the absolute timestamp in epoch milliseconds.
	Timestamp int64
	// Message is the log message without its timestamp.
	Message string
	// Fields holds optional auxiliary key/value pairs. Decoding yields nil when the record
	// has none.
	Fields map[string]string
	// Index is the 0-based position of the record in its stream. It is assigned by the
	// decoder and ignored by the encoder.
	Index uint64
}

// NewLogEvent creates a LogEvent without auxiliary fields.
func NewLogEvent(timestamp int64, message string) LogEvent {
	return LogEvent{Timestamp: timestamp, Message: message}
}

// Time returns Timestamp as a time.Time.
func (e LogEvent) Time() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// FormattedTimestamp renders Timestamp in loc with millisecond precision.
// A nil loc renders in UTC.
func (e LogEvent) FormattedTimestamp(loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}

	return e.Time().In(loc).Format(TimestampLayout)
}

// FormattedMessage renders the event as "<timestamp> <message>".
func (e LogEvent) FormattedMessage(loc *time.Location) string {
	return e.FormattedTimestamp(loc) + " " + e.Message
}

// Equal reports whether two events carry the same timestamp, message and fields.
// Index is not compared; a nil and an empty Fields map are equal.
func (e LogEvent) Equal(other LogEvent) bool {
	if e.Timestamp != other.Timestamp || e.Message != other.Message {
		return false
	}
	if len(e.Fields) == 0 && len(other.Fields) == 0 {
		return true
	}

	return maps.Equal(e.Fields, other.Fields)
}
