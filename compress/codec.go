package compress

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/arloliu/clpir/errs"
	"github.com/arloliu/clpir/format"
)

// Codec wraps byte streams in a compression format.
//
// IR streams are produced and consumed incrementally, so codecs work on io.Reader and
// io.Writer rather than on whole buffers.
type Codec interface {
	// Type returns the compression algorithm of the codec.
	Type() format.CompressionType

	// NewReader returns a reader that decompresses r. Closing it releases the codec's
	// resources but does not close r.
	NewReader(r io.Reader) (io.ReadCloser, error)

	// NewWriter returns a writer that compresses into w. Close finishes the compressed
	// stream but does not close w.
	NewWriter(w io.Writer) (WriteFlushCloser, error)
}

// WriteFlushCloser is a compressing writer. Flush pushes everything written so far to the
// underlying writer so a reader can decode it without waiting for Close.
type WriteFlushCloser interface {
	io.WriteCloser
	Flush() error
}

// CompressionStats describes the effect of compressing a stream.
type CompressionStats struct {
	// Algorithm identifies the compression algorithm used
	Algorithm format.CompressionType

	// OriginalSize is the number of bytes before compression
	OriginalSize int64

	// CompressedSize is the number of bytes after compression
	CompressedSize int64
}

// CompressionRatio returns the compression ratio (compressed size / original size).
//
// Returns:
//   - float64: Compression ratio (0.0 if original size is zero)
func (s CompressionStats) CompressionRatio() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return float64(s.CompressedSize) / float64(s.OriginalSize)
}

// SpaceSavings returns the space savings as a percentage (0-100%).
func (s CompressionStats) SpaceSavings() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return (1.0 - s.CompressionRatio()) * 100.0
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCodec(),
	format.CompressionZstd: NewZstdCodec(),
	format.CompressionS2:   NewS2Codec(),
	format.CompressionLZ4:  NewLZ4Codec(),
}

// GetCodec retrieves the built-in Codec for the specified compression type.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: %s", errs.ErrInvalidCompression, compressionType)
}

// SniffSize is the number of leading bytes Detect needs to recognize every format.
const SniffSize = 10

var (
	zstdFrameMagic  = []byte{0x28, 0xB5, 0x2F, 0xFD}
	lz4FrameMagic   = []byte{0x04, 0x22, 0x4D, 0x18}
	s2StreamMagic   = []byte("\xff\x06\x00\x00S2sTwO")
	snappyMagic     = []byte("\xff\x06\x00\x00sNaPpY")
	irMagicPrefix   = []byte{0xFD, 0x2F, 0xB5}
	errUnrecognized = errors.New("unrecognized stream prefix")
)

// Detect identifies the compression of a stream from its first bytes. An uncompressed IR
// stream is reported as CompressionNone.
//
// Returns:
//   - format.CompressionType: The detected compression
//   - bool: false if prefix matches no known format
func Detect(prefix []byte) (format.CompressionType, bool) {
	switch {
	case bytes.HasPrefix(prefix, zstdFrameMagic):
		return format.CompressionZstd, true
	case bytes.HasPrefix(prefix, lz4FrameMagic):
		return format.CompressionLZ4, true
	case bytes.HasPrefix(prefix, s2StreamMagic), bytes.HasPrefix(prefix, snappyMagic):
		return format.CompressionS2, true
	case bytes.HasPrefix(prefix, irMagicPrefix):
		return format.CompressionNone, true
	default:
		return 0, false
	}
}

// Sniff peeks at the head of r, without consuming it, and detects its compression.
func Sniff(r *bufio.Reader) (format.CompressionType, error) {
	prefix, err := r.Peek(SniffSize)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return 0, err
	}

	if t, ok := Detect(prefix); ok {
		return t, nil
	}
	if len(prefix) == 0 {
		return 0, io.ErrUnexpectedEOF
	}

	return 0, fmt.Errorf("%w: %w % x", errs.ErrInvalidCompression, errUnrecognized, prefix)
}
