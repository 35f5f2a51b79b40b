// Package format defines the byte-exact constants of the IR stream format.
//
// Everything in this package is part of the compatibility surface: an encoder and a decoder
// interoperate only when they agree on every value declared here.
package format

type (
	// Tag identifies the encoding of the token that follows it.
	Tag uint8
	// CompressionType identifies the compression wrapped around a whole IR stream.
	CompressionType uint8
	// ByteOrder identifies the byte order of fixed-width payload fields.
	ByteOrder uint8
)

// Version is the format version written into the preamble by this implementation.
const Version = "v0.1.0"

// SupportedVersions lists the preamble versions the decoder accepts.
var SupportedVersions = []string{"v0.0.1", Version}

// Magic numbers opening every stream.
var (
	MagicFourByteEncoding  = [4]byte{0xFD, 0x2F, 0xB5, 0x29}
	MagicEightByteEncoding = [4]byte{0xFD, 0x2F, 0xB5, 0x30}
)

// MagicNumberSize is the byte length of the stream magic number.
const MagicNumberSize = 4

// Preamble tags.
const (
	MetadataEncodingJSON   uint8 = 0x01 // metadata payload is a JSON object
	MetadataLengthUByte    uint8 = 0x11 // metadata length follows as uint8
	MetadataLengthUShort   uint8 = 0x12 // metadata length follows as big-endian uint16
	MaxMetadataLength            = 0xFFFF
	DefaultMetadataCapSize       = 256
)

// Metadata JSON keys.
const (
	MetadataVersionKey                = "VERSION"
	MetadataReferenceTimestampKey     = "REFERENCE_TIMESTAMP"
	MetadataTimestampPatternKey       = "TIMESTAMP_PATTERN"
	MetadataTimestampPatternSyntaxKey = "TIMESTAMP_PATTERN_SYNTAX"
	MetadataTimeZoneIDKey             = "TZ_ID"
	MetadataByteOrderKey              = "BYTE_ORDER"
	MetadataDictionaryCapacityKey     = "DICTIONARY_CAPACITY"
)

// Record token tags.
const (
	TagEndOfStream    Tag = 0x00 // terminates the stream, only valid between records
	TagEndOfRecord    Tag = 0x0F // terminates the current record
	TagVarStrLenUByte Tag = 0x11 // variable string, uint8 length
	TagVarStrLenUShrt Tag = 0x12 // variable string, uint16 length
	TagVarStrLenInt   Tag = 0x13 // variable string, int32 length
	TagDictionaryRef  Tag = 0x14 // dictionary id as uvarint
	TagFourByteInt    Tag = 0x18 // int32 variable
	TagFourByteFloat  Tag = 0x19 // packed decimal float variable
	TagStaticLenUByte Tag = 0x21 // static text, uint8 length
	TagStaticLenUShrt Tag = 0x22 // static text, uint16 length
	TagStaticLenInt   Tag = 0x23 // static text, int32 length
	TagTimestampDelta Tag = 0x30 // zigzag uvarint timestamp delta
	TagField          Tag = 0x40 // auxiliary key/value field
)

const (
	CompressionNone CompressionType = 0x1 // CompressionNone represents a plain IR stream.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents a Zstandard frame stream.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents an S2 framed stream.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents an LZ4 frame stream.
)

const (
	BigEndian    ByteOrder = 0x0 // BigEndian is the default payload byte order.
	LittleEndian ByteOrder = 0x1
)

func (t Tag) String() string {
	switch t {
	case TagEndOfStream:
		return "EndOfStream"
	case TagEndOfRecord:
		return "EndOfRecord"
	case TagVarStrLenUByte, TagVarStrLenUShrt, TagVarStrLenInt:
		return "VarString"
	case TagDictionaryRef:
		return "DictionaryRef"
	case TagFourByteInt:
		return "FourByteInt"
	case TagFourByteFloat:
		return "FourByteFloat"
	case TagStaticLenUByte, TagStaticLenUShrt, TagStaticLenInt:
		return "StaticText"
	case TagTimestampDelta:
		return "TimestampDelta"
	case TagField:
		return "Field"
	default:
		return "Unknown"
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// ParseCompressionType maps a lower-case name ("none", "zstd", "s2", "lz4") to its type.
func ParseCompressionType(name string) (CompressionType, bool) {
	switch name {
	case "none", "":
		return CompressionNone, true
	case "zstd":
		return CompressionZstd, true
	case "s2":
		return CompressionS2, true
	case "lz4":
		return CompressionLZ4, true
	default:
		return 0, false
	}
}

func (b ByteOrder) String() string {
	if b == LittleEndian {
		return "little"
	}

	return "big"
}

// ParseByteOrder parses the BYTE_ORDER metadata value.
func ParseByteOrder(s string) (ByteOrder, bool) {
	switch s {
	case "big", "":
		return BigEndian, true
	case "little":
		return LittleEndian, true
	default:
		return 0, false
	}
}

// IsSupportedVersion reports whether a preamble version can be decoded.
func IsSupportedVersion(v string) bool {
	for _, s := range SupportedVersions {
		if s == v {
			return true
		}
	}

	return false
}
