package preamble

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	"github.com/valyala/fastjson"

	"github.com/arloliu/clpir/endian"
	"github.com/arloliu/clpir/errs"
	"github.com/arloliu/clpir/format"
)

var (
	parserPool fastjson.ParserPool
	arenaPool  fastjson.ArenaPool
)

// Append appends the preamble describing m to dst.
func Append(dst []byte, m *Metadata) ([]byte, error) {
	a := arenaPool.Get()
	defer arenaPool.Put(a)

	obj := a.NewObject()
	obj.Set(format.MetadataVersionKey, a.NewString(m.version))
	obj.Set(format.MetadataReferenceTimestampKey, a.NewString(strconv.FormatInt(m.referenceTimestamp, 10)))
	obj.Set(format.MetadataTimestampPatternKey, a.NewString(m.timestampPattern))
	if m.timestampPatternSyntax != "" {
		obj.Set(format.MetadataTimestampPatternSyntaxKey, a.NewString(m.timestampPatternSyntax))
	}
	obj.Set(format.MetadataTimeZoneIDKey, a.NewString(m.timeZoneID))
	obj.Set(format.MetadataByteOrderKey, a.NewString(m.byteOrder.String()))
	if m.dictionaryCapacity > 0 {
		obj.Set(format.MetadataDictionaryCapacityKey, a.NewString(strconv.Itoa(m.dictionaryCapacity)))
	}

	payload := obj.MarshalTo(nil)
	if len(payload) > format.MaxMetadataLength {
		return dst, fmt.Errorf("%w: metadata of %d bytes exceeds %d", errs.ErrInvalidMetadata, len(payload), format.MaxMetadataLength)
	}

	dst = append(dst, format.MagicFourByteEncoding[:]...)
	dst = append(dst, format.MetadataEncodingJSON)
	if len(payload) <= math.MaxUint8 {
		dst = append(dst, format.MetadataLengthUByte, byte(len(payload)))
	} else {
		dst = append(dst, format.MetadataLengthUShort)
		dst = endian.GetBigEndianEngine().AppendUint16(dst, uint16(len(payload))) //nolint:gosec
	}

	return append(dst, payload...), nil
}

// Decode parses a preamble at the start of src.
//
// Returns:
//   - *Metadata: The decoded metadata
//   - int: Number of bytes the preamble occupies
//   - error: errs.ErrNeedMoreData if src ends inside the preamble, errs.ErrUnsupportedEncoding
//     for eight-byte streams, or an error wrapping errs.ErrCorruptStream,
//     errs.ErrMetadataCorrupted or errs.ErrUnsupportedVersion
func Decode(src []byte) (*Metadata, int, error) {
	if len(src) < format.MagicNumberSize {
		return nil, 0, errs.ErrNeedMoreData
	}

	magic := src[:format.MagicNumberSize]
	if bytes.Equal(magic, format.MagicEightByteEncoding[:]) {
		return nil, 0, errs.ErrUnsupportedEncoding
	}
	if !bytes.Equal(magic, format.MagicFourByteEncoding[:]) {
		return nil, 0, fmt.Errorf("%w: invalid magic number % x", errs.ErrCorruptStream, magic)
	}

	pos := format.MagicNumberSize
	if len(src) < pos+2 {
		return nil, 0, errs.ErrNeedMoreData
	}
	if src[pos] != format.MetadataEncodingJSON {
		return nil, 0, fmt.Errorf("%w: unknown metadata encoding 0x%02x", errs.ErrCorruptStream, src[pos])
	}
	pos++

	var length int
	switch src[pos] {
	case format.MetadataLengthUByte:
		if len(src) < pos+2 {
			return nil, 0, errs.ErrNeedMoreData
		}
		length = int(src[pos+1])
		pos += 2
	case format.MetadataLengthUShort:
		if len(src) < pos+3 {
			return nil, 0, errs.ErrNeedMoreData
		}
		length = int(endian.GetBigEndianEngine().Uint16(src[pos+1:]))
		pos += 3
	default:
		return nil, 0, fmt.Errorf("%w: unknown metadata length tag 0x%02x", errs.ErrCorruptStream, src[pos])
	}

	if len(src) < pos+length {
		return nil, 0, errs.ErrNeedMoreData
	}

	m, err := parseMetadataJSON(src[pos : pos+length])
	if err != nil {
		return nil, 0, err
	}

	return m, pos + length, nil
}

func parseMetadataJSON(data []byte) (*Metadata, error) {
	p := parserPool.Get()
	defer parserPool.Put(p)

	v, err := p.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrMetadataCorrupted, err)
	}
	if v.Type() != fastjson.TypeObject {
		return nil, fmt.Errorf("%w: metadata is a JSON %s, not an object", errs.ErrMetadataCorrupted, v.Type())
	}

	m := &Metadata{byteOrder: format.BigEndian}

	if m.version, err = requiredString(v, format.MetadataVersionKey); err != nil {
		return nil, err
	}
	if !format.IsSupportedVersion(m.version) {
		return nil, fmt.Errorf("%w: %q", errs.ErrUnsupportedVersion, m.version)
	}

	refTs, err := requiredString(v, format.MetadataReferenceTimestampKey)
	if err != nil {
		return nil, err
	}
	if m.referenceTimestamp, err = strconv.ParseInt(refTs, 10, 64); err != nil {
		return nil, fmt.Errorf("%w: reference timestamp %q: %w", errs.ErrMetadataCorrupted, refTs, err)
	}

	if m.timestampPattern, err = requiredString(v, format.MetadataTimestampPatternKey); err != nil {
		return nil, err
	}
	if m.timeZoneID, err = requiredString(v, format.MetadataTimeZoneIDKey); err != nil {
		return nil, err
	}
	if m.timestampPatternSyntax, _, err = optionalString(v, format.MetadataTimestampPatternSyntaxKey); err != nil {
		return nil, err
	}

	order, _, err := optionalString(v, format.MetadataByteOrderKey)
	if err != nil {
		return nil, err
	}
	var ok bool
	if m.byteOrder, ok = format.ParseByteOrder(order); !ok {
		return nil, fmt.Errorf("%w: byte order %q", errs.ErrMetadataCorrupted, order)
	}

	capacity, present, err := optionalString(v, format.MetadataDictionaryCapacityKey)
	if err != nil {
		return nil, err
	}
	if present {
		n, convErr := strconv.Atoi(capacity)
		if convErr != nil || n < 0 {
			return nil, fmt.Errorf("%w: dictionary capacity %q", errs.ErrMetadataCorrupted, capacity)
		}
		m.dictionaryCapacity = n
	}

	return m, nil
}

func requiredString(v *fastjson.Value, key string) (string, error) {
	s, present, err := optionalString(v, key)
	if err != nil {
		return "", err
	}
	if !present {
		return "", fmt.Errorf("%w: %s cannot be found", errs.ErrMetadataCorrupted, key)
	}

	return s, nil
}

func optionalString(v *fastjson.Value, key string) (string, bool, error) {
	field := v.Get(key)
	if field == nil {
		return "", false, nil
	}
	if field.Type() != fastjson.TypeString {
		return "", false, fmt.Errorf("%w: %s must be a string, got %s", errs.ErrMetadataCorrupted, key, field.Type())
	}

	b, err := field.StringBytes()
	if err != nil {
		return "", false, fmt.Errorf("%w: %s: %w", errs.ErrMetadataCorrupted, key, err)
	}

	return string(b), true, nil
}
