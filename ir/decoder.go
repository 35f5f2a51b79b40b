package ir

import (
	"fmt"
	"strings"

	"github.com/arloliu/clpir/encoding"
	"github.com/arloliu/clpir/endian"
	"github.com/arloliu/clpir/errs"
	"github.com/arloliu/clpir/format"
	"github.com/arloliu/clpir/internal/dict"
	"github.com/arloliu/clpir/preamble"
)

// Decoder holds the session state of one decoded stream: the running timestamp, the
// dictionary and the index of the next record.
//
// Decoding a record is transactional. The state only changes once a record has been read
// up to its end-of-record token; a record that is truncated or corrupt leaves it untouched.
//
// Note: The Decoder is NOT thread-safe.
type Decoder struct {
	meta   *preamble.Metadata
	engine endian.EndianEngine

	refTimestamp int64
	dictionary   *dict.Table
	nextIndex    uint64

	sb strings.Builder
}

// NewDecoder creates a decoder session for a stream described by meta.
func NewDecoder(meta *preamble.Metadata) *Decoder {
	return &Decoder{
		meta:         meta,
		engine:       meta.Engine(),
		refTimestamp: meta.ReferenceTimestamp(),
		dictionary:   dict.NewTable(meta.DictionaryCapacity()),
	}
}

// Metadata returns the metadata of the stream.
func (d *Decoder) Metadata() *preamble.Metadata {
	return d.meta
}

// Count returns the number of records decoded so far.
func (d *Decoder) Count() uint64 {
	return d.nextIndex
}

// DecodeRecord decodes the record at the start of data.
//
// Returns:
//   - LogEvent: The decoded event, with Index set
//   - int: Number of bytes consumed; 1 for the end-of-stream token, 0 on error
//   - error: nil, ErrEndOfStream, ErrNeedMoreData if the record is truncated, or an
//     error wrapping ErrCorruptStream
func (d *Decoder) DecodeRecord(data []byte) (LogEvent, int, error) {
	if len(data) == 0 {
		return LogEvent{}, 0, errs.ErrNeedMoreData
	}

	switch tag := format.Tag(data[0]); tag {
	case format.TagEndOfStream:
		return LogEvent{}, 1, errs.ErrEndOfStream
	case format.TagTimestampDelta:
	default:
		return LogEvent{}, 0, fmt.Errorf("%w: record starts with tag %s", errs.ErrCorruptStream, tag)
	}

	ev, n, err := d.decodeBody(data)
	if err != nil {
		d.dictionary.Rollback()
		return LogEvent{}, 0, err
	}

	d.dictionary.Commit()
	d.refTimestamp = ev.Timestamp
	ev.Index = d.nextIndex
	d.nextIndex++

	return ev, n, nil
}

// decodeBody reads a record whose first byte is the timestamp delta tag. Dictionary values
// it registers stay pending until the caller commits or rolls back.
func (d *Decoder) decodeBody(data []byte) (LogEvent, int, error) {
	pos := 1
	delta, n, err := encoding.ReadZigzagVarint(data[pos:])
	if err != nil {
		return LogEvent{}, 0, err
	}
	pos += n

	var fields map[string]string
	d.sb.Reset()

	for {
		if pos >= len(data) {
			return LogEvent{}, 0, errs.ErrNeedMoreData
		}

		tag := format.Tag(data[pos])
		pos++

		if tag == format.TagEndOfRecord {
			break
		}

		if width, ok := encoding.StaticTextTags.Width(tag); ok {
			s, sn, err := encoding.ReadLengthPrefixed(data[pos:], d.engine, width)
			if err != nil {
				return LogEvent{}, 0, err
			}
			d.sb.Write(s)
			pos += sn

			continue
		}

		if width, ok := encoding.VarStringTags.Width(tag); ok {
			s, sn, err := encoding.ReadLengthPrefixed(data[pos:], d.engine, width)
			if err != nil {
				return LogEvent{}, 0, err
			}
			value := string(s)
			d.sb.WriteString(value)
			d.dictionary.Register(value)
			pos += sn

			continue
		}

		switch tag { //nolint:exhaustive
		case format.TagDictionaryRef:
			id, vn, err := encoding.ReadUvarint(data[pos:])
			if err != nil {
				return LogEvent{}, 0, err
			}
			value, ok := d.dictionary.Get(id)
			if !ok {
				return LogEvent{}, 0, fmt.Errorf("%w: unknown dictionary id %d", errs.ErrCorruptStream, id)
			}
			d.sb.WriteString(value)
			pos += vn

		case format.TagFourByteInt:
			if len(data)-pos < 4 {
				return LogEvent{}, 0, errs.ErrNeedMoreData
			}
			d.sb.WriteString(encoding.DecodeFourByteInt(int32(d.engine.Uint32(data[pos:])))) //nolint:gosec
			pos += 4

		case format.TagFourByteFloat:
			if len(data)-pos < 4 {
				return LogEvent{}, 0, errs.ErrNeedMoreData
			}
			s, err := encoding.DecodeFourByteFloat(d.engine.Uint32(data[pos:]))
			if err != nil {
				return LogEvent{}, 0, err
			}
			d.sb.WriteString(s)
			pos += 4

		case format.TagField:
			key, value, fn, err := encoding.ReadField(data[pos:], d.engine)
			if err != nil {
				return LogEvent{}, 0, err
			}
			if fields == nil {
				fields = make(map[string]string, 1)
			}
			if _, dup := fields[key]; dup {
				return LogEvent{}, 0, fmt.Errorf("%w: duplicate field %q", errs.ErrCorruptStream, key)
			}
			fields[key] = value
			pos += fn

		default:
			return LogEvent{}, 0, fmt.Errorf("%w: unexpected tag %s at offset %d", errs.ErrCorruptStream, tag, pos-1)
		}
	}

	ts, overflow := addInt64(d.refTimestamp, delta)
	if overflow {
		return LogEvent{}, 0, fmt.Errorf("%w: timestamp delta %d overflows running timestamp %d",
			errs.ErrCorruptStream, delta, d.refTimestamp)
	}

	return LogEvent{
		Timestamp: ts,
		Message:   d.sb.String(),
		Fields:    fields,
	}, pos, nil
}
