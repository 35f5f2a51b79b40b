//go:build cgo && gozstd

package compress

import (
	"io"

	"github.com/valyala/gozstd"
)

// zstdLevel matches the default level of the pure Go encoder.
const zstdLevel = 3

// NewReader returns a reader that decompresses r with libzstd.
func (ZstdCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	return &gozstdReader{reader: gozstd.NewReader(r)}, nil
}

// NewWriter returns a writer that compresses into w with libzstd.
func (ZstdCodec) NewWriter(w io.Writer) (WriteFlushCloser, error) {
	return &gozstdWriter{writer: gozstd.NewWriterLevel(w, zstdLevel)}, nil
}

type gozstdReader struct {
	reader *gozstd.Reader
}

func (r *gozstdReader) Read(p []byte) (int, error) {
	if r.reader == nil {
		return 0, io.ErrClosedPipe
	}

	return r.reader.Read(p)
}

func (r *gozstdReader) Close() error {
	if r.reader != nil {
		r.reader.Release()
		r.reader = nil
	}

	return nil
}

type gozstdWriter struct {
	writer *gozstd.Writer
}

func (w *gozstdWriter) Write(p []byte) (int, error) {
	if w.writer == nil {
		return 0, io.ErrClosedPipe
	}

	return w.writer.Write(p)
}

func (w *gozstdWriter) Flush() error {
	if w.writer == nil {
		return io.ErrClosedPipe
	}

	return w.writer.Flush()
}

func (w *gozstdWriter) Close() error {
	if w.writer == nil {
		return nil
	}

	err := w.writer.Close()
	w.writer.Release()
	w.writer = nil

	return err
}
