//go:build !cgo || !gozstd

package compress

import (
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// zstdDecoderPool pools zstd decoders for reuse. A decoder is reset to each new source
// instead of being rebuilt.
var zstdDecoderPool = sync.Pool{
	New: func() any {
		decoder, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1), // Streams are read synchronously
			zstd.WithDecoderLowmem(false),
		)
		if err != nil {
			// This should never happen with valid options
			panic(fmt.Sprintf("failed to create zstd decoder for pool: %v", err))
		}

		return decoder
	},
}

// zstdEncoderPool pools zstd encoders for reuse.
var zstdEncoderPool = sync.Pool{
	New: func() any {
		encoder, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedDefault),
			zstd.WithEncoderConcurrency(1),
		)
		if err != nil {
			// This should never happen with valid options
			panic(fmt.Sprintf("failed to create zstd encoder for pool: %v", err))
		}

		return encoder
	},
}

// NewReader returns a reader that decompresses r using a pooled decoder.
func (ZstdCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	decoder, _ := zstdDecoderPool.Get().(*zstd.Decoder)
	if err := decoder.Reset(r); err != nil {
		zstdDecoderPool.Put(decoder)
		return nil, fmt.Errorf("zstd reader: %w", err)
	}

	return &zstdReader{decoder: decoder}, nil
}

// NewWriter returns a writer that compresses into w using a pooled encoder.
func (ZstdCodec) NewWriter(w io.Writer) (WriteFlushCloser, error) {
	encoder, _ := zstdEncoderPool.Get().(*zstd.Encoder)
	encoder.Reset(w)

	return &zstdWriter{encoder: encoder}, nil
}

type zstdReader struct {
	decoder *zstd.Decoder
}

func (r *zstdReader) Read(p []byte) (int, error) {
	if r.decoder == nil {
		return 0, io.ErrClosedPipe
	}

	return r.decoder.Read(p)
}

func (r *zstdReader) Close() error {
	if r.decoder == nil {
		return nil
	}

	// Reset(nil) drops the reference to the source before the decoder is pooled.
	_ = r.decoder.Reset(nil)
	zstdDecoderPool.Put(r.decoder)
	r.decoder = nil

	return nil
}

type zstdWriter struct {
	encoder *zstd.Encoder
}

func (w *zstdWriter) Write(p []byte) (int, error) {
	if w.encoder == nil {
		return 0, io.ErrClosedPipe
	}

	return w.encoder.Write(p)
}

func (w *zstdWriter) Flush() error {
	if w.encoder == nil {
		return io.ErrClosedPipe
	}

	return w.encoder.Flush()
}

func (w *zstdWriter) Close() error {
	if w.encoder == nil {
		return nil
	}

	err := w.encoder.Close()
	if err == nil {
		// A failed encoder may hold a broken state; only healthy ones go back to the pool.
		zstdEncoderPool.Put(w.encoder)
	}
	w.encoder = nil

	return err
}
