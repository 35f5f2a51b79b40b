package compress

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/clpir/errs"
	"github.com/arloliu/clpir/format"
)

var allTypes = []format.CompressionType{
	format.CompressionNone,
	format.CompressionZstd,
	format.CompressionS2,
	format.CompressionLZ4,
}

// sampleStream returns data shaped like an IR stream: the magic number followed by
// repetitive records.
func sampleStream(n int) []byte {
	var b bytes.Buffer
	b.Write([]byte{0xFD, 0x2F, 0xB5, 0x29})
	for i := range n {
		b.WriteString("\x30\x02\x21\x0cconnected to\x18\x00\x00\x00")
		b.WriteByte(byte(i))
		b.WriteByte(0x0F)
	}
	b.WriteByte(0x00)

	return b.Bytes()
}

func compressAll(t *testing.T, codec Codec, data []byte) []byte {
	t.Helper()

	var out bytes.Buffer
	zw, err := codec.NewWriter(&out)
	require.NoError(t, err)

	// Write in uneven chunks with a flush in the middle.
	half := len(data) / 2
	_, err = zw.Write(data[:half])
	require.NoError(t, err)
	require.NoError(t, zw.Flush())
	_, err = zw.Write(data[half:])
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	return out.Bytes()
}

func TestCodecs_RoundTrip(t *testing.T) {
	data := sampleStream(5000)

	for _, ct := range allTypes {
		t.Run(ct.String(), func(t *testing.T) {
			codec, err := GetCodec(ct)
			require.NoError(t, err)
			require.Equal(t, ct, codec.Type())

			compressed := compressAll(t, codec, data)
			if ct != format.CompressionNone {
				require.Less(t, len(compressed), len(data))
			}

			r, err := codec.NewReader(bytes.NewReader(compressed))
			require.NoError(t, err)
			got, err := io.ReadAll(r)
			require.NoError(t, err)
			require.NoError(t, r.Close())

			require.Equal(t, data, got)
		})
	}
}

func TestCodecs_ReuseAfterClose(t *testing.T) {
	codec := NewZstdCodec()

	for i := range 3 {
		data := sampleStream(100 + i)
		compressed := compressAll(t, codec, data)

		r, err := codec.NewReader(bytes.NewReader(compressed))
		require.NoError(t, err)
		got, err := io.ReadAll(r)
		require.NoError(t, err)
		require.NoError(t, r.Close())
		require.NoError(t, r.Close(), "Close is idempotent")

		require.Equal(t, data, got)
	}
}

func TestCodecs_Detect(t *testing.T) {
	data := sampleStream(10)

	for _, ct := range allTypes {
		t.Run(ct.String(), func(t *testing.T) {
			codec, err := GetCodec(ct)
			require.NoError(t, err)

			got, ok := Detect(compressAll(t, codec, data))
			require.True(t, ok)
			require.Equal(t, ct, got)
		})
	}
}

func TestDetect_Unknown(t *testing.T) {
	for _, prefix := range [][]byte{nil, {0x01}, []byte("plain text log")} {
		_, ok := Detect(prefix)
		require.False(t, ok)
	}

	got, ok := Detect([]byte{0xFD, 0x2F, 0xB5, 0x30})
	require.True(t, ok, "eight-byte IR is still plain IR for the compression layer")
	require.Equal(t, format.CompressionNone, got)
}

func TestSniff(t *testing.T) {
	compressed := compressAll(t, NewLZ4Codec(), sampleStream(10))
	br := bufio.NewReader(bytes.NewReader(compressed))

	ct, err := Sniff(br)
	require.NoError(t, err)
	require.Equal(t, format.CompressionLZ4, ct)

	// Sniffing does not consume input.
	rest, err := io.ReadAll(br)
	require.NoError(t, err)
	require.Equal(t, compressed, rest)
}

func TestSniff_ShortAndUnknownInput(t *testing.T) {
	ct, err := Sniff(bufio.NewReader(bytes.NewReader([]byte{0xFD, 0x2F, 0xB5, 0x29})))
	require.NoError(t, err)
	require.Equal(t, format.CompressionNone, ct)

	_, err = Sniff(bufio.NewReader(strings.NewReader("")))
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, err = Sniff(bufio.NewReader(strings.NewReader("hello world, not IR")))
	require.ErrorIs(t, err, errs.ErrInvalidCompression)
}

func TestGetCodec_Invalid(t *testing.T) {
	_, err := GetCodec(format.CompressionType(0xFF))
	require.ErrorIs(t, err, errs.ErrInvalidCompression)
}

func TestCompressionStats(t *testing.T) {
	s := CompressionStats{Algorithm: format.CompressionZstd, OriginalSize: 1000, CompressedSize: 250}
	require.InDelta(t, 0.25, s.CompressionRatio(), 1e-9)
	require.InDelta(t, 75.0, s.SpaceSavings(), 1e-9)

	empty := CompressionStats{}
	require.Zero(t, empty.CompressionRatio())
	require.Zero(t, empty.SpaceSavings())
}
