package compress

import (
	"io"

	"github.com/arloliu/clpir/format"
)

// NoOpCodec passes data through unchanged. It lets callers treat plain IR streams the
// same way as compressed ones.
type NoOpCodec struct{}

var _ Codec = NoOpCodec{}

// NewNoOpCodec creates a new pass-through codec.
func NewNoOpCodec() NoOpCodec {
	return NoOpCodec{}
}

// Type returns format.CompressionNone.
func (NoOpCodec) Type() format.CompressionType {
	return format.CompressionNone
}

// NewReader returns r itself, with a Close that does nothing.
func (NoOpCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(r), nil
}

// NewWriter returns w wrapped with no-op Flush and Close.
func (NoOpCodec) NewWriter(w io.Writer) (WriteFlushCloser, error) {
	return nopWriter{Writer: w}, nil
}

type nopWriter struct {
	io.Writer
}

func (nopWriter) Flush() error { return nil }
func (nopWriter) Close() error { return nil }
