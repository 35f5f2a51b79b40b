package compress

import (
	"io"

	"github.com/klauspost/compress/s2"

	"github.com/arloliu/clpir/format"
)

// S2Codec provides S2 stream compression: fast, with a lower ratio than Zstd. Its reader
// also accepts Snappy framed streams.
type S2Codec struct{}

var _ Codec = S2Codec{}

// NewS2Codec creates a new S2 codec.
func NewS2Codec() S2Codec {
	return S2Codec{}
}

// Type returns format.CompressionS2.
func (S2Codec) Type() format.CompressionType {
	return format.CompressionS2
}

// NewReader returns a reader that decompresses r.
func (S2Codec) NewReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(s2.NewReader(r)), nil
}

// NewWriter returns a writer that compresses into w.
func (S2Codec) NewWriter(w io.Writer) (WriteFlushCloser, error) {
	// Single goroutine; records are small and Flush is called often.
	return s2.NewWriter(w, s2.WriterConcurrency(1)), nil
}
