package preamble

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/clpir/errs"
	"github.com/arloliu/clpir/format"
)

func encodePreamble(t *testing.T, m *Metadata) []byte {
	t.Helper()

	buf, err := Append(nil, m)
	require.NoError(t, err)

	return buf
}

// rawPreamble frames an arbitrary JSON payload as a preamble.
func rawPreamble(json string) []byte {
	buf := append([]byte{}, format.MagicFourByteEncoding[:]...)
	buf = append(buf, format.MetadataEncodingJSON, format.MetadataLengthUByte, byte(len(json)))

	return append(buf, json...)
}

func TestPreamble_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		opts []MetadataOption
	}{
		{name: "defaults"},
		{name: "little endian", opts: []MetadataOption{WithByteOrder(format.LittleEndian)}},
		{name: "dictionary", opts: []MetadataOption{WithDictionaryCapacity(4096)}},
		{name: "pattern syntax", opts: []MetadataOption{WithTimestampPatternSyntax("strftime")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMetadata(-12345, "%Y-%m-%d %H:%M:%S", "Asia/Tokyo", tt.opts...)
			require.NoError(t, err)

			buf := encodePreamble(t, m)
			require.Equal(t, format.MagicFourByteEncoding[:], buf[:4])

			got, n, err := Decode(append(buf, 0xAA, 0xBB))
			require.NoError(t, err)
			require.Equal(t, len(buf), n, "trailing bytes are not consumed")
			require.True(t, m.Equal(got), "want %s, got %s", m, got)
		})
	}
}

func TestPreamble_LongMetadataUsesUShortLength(t *testing.T) {
	m, err := NewMetadata(0, strings.Repeat("p", 300), "UTC")
	require.NoError(t, err)

	buf := encodePreamble(t, m)
	require.Equal(t, format.MetadataLengthUShort, buf[5])

	got, n, err := Decode(buf)
	require.NoError(t, err)
	require.Equal(t, len(buf), n)
	require.Equal(t, m.TimestampPattern(), got.TimestampPattern())
}

func TestPreamble_MetadataTooLong(t *testing.T) {
	m, err := NewMetadata(0, strings.Repeat("p", format.MaxMetadataLength), "UTC")
	require.NoError(t, err)

	_, err = Append(nil, m)
	require.ErrorIs(t, err, errs.ErrInvalidMetadata)
}

func TestDecode_Truncated(t *testing.T) {
	m, err := NewMetadata(1, "p", "UTC")
	require.NoError(t, err)
	buf := encodePreamble(t, m)

	for i := 0; i < len(buf); i++ {
		_, _, err := Decode(buf[:i])
		require.ErrorIs(t, err, errs.ErrNeedMoreData, "prefix of %d bytes", i)
	}
}

func TestDecode_Errors(t *testing.T) {
	valid := `{"VERSION":"v0.1.0","REFERENCE_TIMESTAMP":"0","TIMESTAMP_PATTERN":"","TZ_ID":"UTC"}`

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{
			name: "eight byte encoding",
			data: append(format.MagicEightByteEncoding[:], 0x01, 0x11, 0x00),
			want: errs.ErrUnsupportedEncoding,
		},
		{
			name: "bad magic",
			data: []byte{0x00, 0x01, 0x02, 0x03, 0x01, 0x11, 0x00},
			want: errs.ErrCorruptStream,
		},
		{
			name: "bad metadata encoding",
			data: append(format.MagicFourByteEncoding[:], 0x07, 0x11, 0x00),
			want: errs.ErrCorruptStream,
		},
		{
			name: "bad length tag",
			data: append(format.MagicFourByteEncoding[:], 0x01, 0x13, 0x00),
			want: errs.ErrCorruptStream,
		},
		{name: "not json", data: rawPreamble(`{not json`), want: errs.ErrMetadataCorrupted},
		{name: "not an object", data: rawPreamble(`[1,2]`), want: errs.ErrMetadataCorrupted},
		{
			name: "missing version",
			data: rawPreamble(`{"REFERENCE_TIMESTAMP":"0","TIMESTAMP_PATTERN":"","TZ_ID":"UTC"}`),
			want: errs.ErrMetadataCorrupted,
		},
		{
			name: "unsupported version",
			data: rawPreamble(strings.Replace(valid, "v0.1.0", "v9.0.0", 1)),
			want: errs.ErrUnsupportedVersion,
		},
		{
			name: "numeric reference timestamp",
			data: rawPreamble(`{"VERSION":"v0.1.0","REFERENCE_TIMESTAMP":0,"TIMESTAMP_PATTERN":"","TZ_ID":"UTC"}`),
			want: errs.ErrMetadataCorrupted,
		},
		{
			name: "unparsable reference timestamp",
			data: rawPreamble(strings.Replace(valid, `"REFERENCE_TIMESTAMP":"0"`, `"REFERENCE_TIMESTAMP":"x"`, 1)),
			want: errs.ErrMetadataCorrupted,
		},
		{
			name: "missing time zone",
			data: rawPreamble(`{"VERSION":"v0.1.0","REFERENCE_TIMESTAMP":"0","TIMESTAMP_PATTERN":""}`),
			want: errs.ErrMetadataCorrupted,
		},
		{
			name: "bad byte order",
			data: rawPreamble(strings.Replace(valid, `}`, `,"BYTE_ORDER":"middle"}`, 1)),
			want: errs.ErrMetadataCorrupted,
		},
		{
			name: "negative dictionary capacity",
			data: rawPreamble(strings.Replace(valid, `}`, `,"DICTIONARY_CAPACITY":"-4"}`, 1)),
			want: errs.ErrMetadataCorrupted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Decode(tt.data)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDecode_OlderSupportedVersion(t *testing.T) {
	data := rawPreamble(`{"VERSION":"v0.0.1","REFERENCE_TIMESTAMP":"42","TIMESTAMP_PATTERN":"p","TZ_ID":"UTC"}`)

	m, n, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, len(data), n)
	require.Equal(t, "v0.0.1", m.Version())
	require.Equal(t, int64(42), m.ReferenceTimestamp())
	require.Equal(t, format.BigEndian, m.ByteOrder())
}
