package encoding

import (
	"fmt"
	"math"

	"github.com/arloliu/clpir/endian"
	"github.com/arloliu/clpir/errs"
	"github.com/arloliu/clpir/format"
)

// MaxStringLength is the longest string a length-tagged token can carry.
const MaxStringLength = math.MaxInt32

// LengthTags is the family of three tags that prefix a string with a uint8, uint16 or
// int32 length. The encoder always picks the narrowest one.
type LengthTags struct {
	UByte  format.Tag
	UShort format.Tag
	Int    format.Tag
}

var (
	// StaticTextTags prefixes runs of static message text.
	StaticTextTags = LengthTags{format.TagStaticLenUByte, format.TagStaticLenUShrt, format.TagStaticLenInt}
	// VarStringTags prefixes variables stored as plain strings.
	VarStringTags = LengthTags{format.TagVarStrLenUByte, format.TagVarStrLenUShrt, format.TagVarStrLenInt}
)

// Width returns the byte width of the length that follows tag, or false if tag does not
// belong to the family.
func (lt LengthTags) Width(tag format.Tag) (int, bool) {
	switch tag {
	case lt.UByte:
		return 1, true
	case lt.UShort:
		return 2, true
	case lt.Int:
		return 4, true
	default:
		return 0, false
	}
}

// AppendLengthTagged appends the narrowest tag of the family, the length of s and s itself.
func AppendLengthTagged(dst []byte, engine endian.EndianEngine, tags LengthTags, s string) ([]byte, error) {
	n := len(s)
	switch {
	case n <= math.MaxUint8:
		dst = append(dst, byte(tags.UByte), byte(n))
	case n <= math.MaxUint16:
		dst = append(dst, byte(tags.UShort))
		dst = engine.AppendUint16(dst, uint16(n))
	case n <= MaxStringLength:
		dst = append(dst, byte(tags.Int))
		dst = engine.AppendUint32(dst, uint32(n)) //nolint:gosec
	default:
		return dst, fmt.Errorf("%w: string of %d bytes", errs.ErrTokenTooLong, n)
	}

	return append(dst, s...), nil
}

// ReadLengthPrefixed decodes a length of the given width (1, 2 or 4 bytes) followed by
// that many bytes. The returned slice aliases src.
func ReadLengthPrefixed(src []byte, engine endian.EndianEngine, width int) ([]byte, int, error) {
	if len(src) < width {
		return nil, 0, errs.ErrNeedMoreData
	}

	var length int
	switch width {
	case 1:
		length = int(src[0])
	case 2:
		length = int(engine.Uint16(src))
	case 4:
		l := int32(engine.Uint32(src)) //nolint:gosec
		if l < 0 {
			return nil, 0, fmt.Errorf("%w: negative string length %d", errs.ErrCorruptStream, l)
		}
		length = int(l)
	default:
		return nil, 0, fmt.Errorf("invalid length width %d", width)
	}

	end := width + length
	if len(src) < end {
		return nil, 0, errs.ErrNeedMoreData
	}

	return src[width:end], end, nil
}

// AppendField appends the body of an auxiliary field token: a uint16 key length, the key,
// an int32 value length and the value. The tag itself is written by the caller.
func AppendField(dst []byte, engine endian.EndianEngine, key, value string) ([]byte, error) {
	if len(key) > math.MaxUint16 {
		return dst, fmt.Errorf("%w: field key of %d bytes", errs.ErrTokenTooLong, len(key))
	}
	if len(value) > MaxStringLength {
		return dst, fmt.Errorf("%w: field value of %d bytes", errs.ErrTokenTooLong, len(value))
	}

	dst = engine.AppendUint16(dst, uint16(len(key))) //nolint:gosec
	dst = append(dst, key...)
	dst = engine.AppendUint32(dst, uint32(len(value))) //nolint:gosec
	dst = append(dst, value...)

	return dst, nil
}

// ReadField decodes the body of an auxiliary field token.
func ReadField(src []byte, engine endian.EndianEngine) (string, string, int, error) {
	key, kn, err := ReadLengthPrefixed(src, engine, 2)
	if err != nil {
		return "", "", 0, err
	}

	value, vn, err := ReadLengthPrefixed(src[kn:], engine, 4)
	if err != nil {
		return "", "", 0, err
	}

	return string(key), string(value), kn + vn, nil
}
