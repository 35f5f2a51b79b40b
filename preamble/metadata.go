// Package preamble defines the stream-wide Metadata and the preamble that carries it.
//
// A preamble is laid out as:
//
//	magic number (4 bytes) | metadata encoding tag (1) | length tag (1) | length (1 or 2) | JSON
//
// and is always big endian. The JSON object stores every value as a string so that 64-bit
// integers survive any JSON implementation on the reading side.
package preamble

import (
	"fmt"
	"strconv"
	"time"

	"github.com/arloliu/clpir/endian"
	"github.com/arloliu/clpir/errs"
	"github.com/arloliu/clpir/format"
	"github.com/arloliu/clpir/internal/options"
)

// Metadata describes the parameters shared by every record of one stream.
//
// Metadata is immutable after construction and safe to share between goroutines.
type Metadata struct {
	version                string
	referenceTimestamp     int64
	timestampPattern       string
	timestampPatternSyntax string
	timeZoneID             string
	byteOrder              format.ByteOrder
	dictionaryCapacity     int
}

// MetadataOption configures optional Metadata fields.
type MetadataOption = options.Option[*Metadata]

// WithByteOrder sets the byte order of fixed-width payload fields. Default is big endian.
func WithByteOrder(order format.ByteOrder) MetadataOption {
	return options.New(func(m *Metadata) error {
		if order != format.BigEndian && order != format.LittleEndian {
			return fmt.Errorf("%w: byte order %d", errs.ErrInvalidMetadata, order)
		}
		m.byteOrder = order

		return nil
	})
}

// WithDictionaryCapacity enables dictionary references for up to capacity distinct
// variable values. Zero, the default, disables them.
func WithDictionaryCapacity(capacity int) MetadataOption {
	return options.New(func(m *Metadata) error {
		if capacity < 0 {
			return fmt.Errorf("%w: %d", errs.ErrInvalidDictionarySize, capacity)
		}
		m.dictionaryCapacity = capacity

		return nil
	})
}

// WithTimestampPatternSyntax records the syntax the timestamp pattern is written in.
func WithTimestampPatternSyntax(syntax string) MetadataOption {
	return options.NoError(func(m *Metadata) {
		m.timestampPatternSyntax = syntax
	})
}

// NewMetadata creates the Metadata of a new stream written with the current format version.
//
// Parameters:
//   - referenceTimestamp: Starting value of the running timestamp, in epoch milliseconds
//   - timestampPattern: Pattern the producer formatted timestamps with
//   - timeZoneID: IANA time zone of the producer, e.g. "America/Toronto"
//   - opts: Optional byte order, dictionary capacity and pattern syntax
func NewMetadata(referenceTimestamp int64, timestampPattern, timeZoneID string, opts ...MetadataOption) (*Metadata, error) {
	m := &Metadata{
		version:            format.Version,
		referenceTimestamp: referenceTimestamp,
		timestampPattern:   timestampPattern,
		timeZoneID:         timeZoneID,
		byteOrder:          format.BigEndian,
	}

	if err := options.Apply(m, opts...); err != nil {
		return nil, err
	}

	return m, nil
}

// Version returns the format version the stream was written with.
func (m *Metadata) Version() string {
	return m.version
}

// ReferenceTimestamp returns the starting value of the running timestamp.
func (m *Metadata) ReferenceTimestamp() int64 {
	return m.referenceTimestamp
}

// TimestampPattern returns the producer's timestamp format.
func (m *Metadata) TimestampPattern() string {
	return m.timestampPattern
}

// TimestampPatternSyntax returns the syntax of TimestampPattern, possibly empty.
func (m *Metadata) TimestampPatternSyntax() string {
	return m.timestampPatternSyntax
}

// TimeZoneID returns the producer's IANA time zone identifier.
func (m *Metadata) TimeZoneID() string {
	return m.timeZoneID
}

// ByteOrder returns the byte order of fixed-width payload fields.
func (m *Metadata) ByteOrder() format.ByteOrder {
	return m.byteOrder
}

// DictionaryCapacity returns the maximum number of dictionary entries, zero if disabled.
func (m *Metadata) DictionaryCapacity() int {
	return m.dictionaryCapacity
}

// IsUsingFourByteEncoding reports whether variables use the four-byte encoding.
// Eight-byte streams are rejected while decoding, so this is always true.
func (m *Metadata) IsUsingFourByteEncoding() bool {
	return true
}

// Engine returns the endian engine for payload fields.
func (m *Metadata) Engine() endian.EndianEngine {
	return endian.ForByteOrder(m.byteOrder)
}

// Location loads the time zone named by TimeZoneID.
func (m *Metadata) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(m.timeZoneID)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", m.timeZoneID, err)
	}

	return loc, nil
}

// Equal reports whether two Metadata values describe the same stream parameters.
func (m *Metadata) Equal(other *Metadata) bool {
	if m == nil || other == nil {
		return m == other
	}

	return *m == *other
}

func (m *Metadata) String() string {
	return fmt.Sprintf("Metadata{version=%s, ref_ts=%s, pattern=%q, tz=%s, byte_order=%s, dictionary=%d}",
		m.version, strconv.FormatInt(m.referenceTimestamp, 10), m.timestampPattern, m.timeZoneID,
		m.byteOrder, m.dictionaryCapacity)
}
