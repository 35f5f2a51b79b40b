// Package compress provides stream compression codecs for IR files.
//
// IR streams are commonly stored compressed. A Codec wraps an io.Reader or io.Writer so the
// incremental decoder and encoder can work on the decompressed byte stream directly,
// without materializing whole files in memory.
//
// # Supported Algorithms
//
//   - None (format.CompressionNone): plain IR, passed through unchanged
//   - Zstd (format.CompressionZstd): best ratio, the usual choice for archives
//   - S2 (format.CompressionS2): fast with a moderate ratio; also reads Snappy framed streams
//   - LZ4 (format.CompressionLZ4): LZ4 frame format, fastest decompression
//
// # Basic Usage
//
//	codec, err := compress.GetCodec(format.CompressionZstd)
//	if err != nil {
//	    return err
//	}
//
//	zw, _ := codec.NewWriter(file)
//	_, _ = zw.Write(irBytes)
//	_ = zw.Close() // finishes the frame; file stays open
//
// # Detection
//
// Readers do not need to be told the compression of a file. Sniff peeks at the first bytes
// of a bufio.Reader and recognizes the Zstd, LZ4 and S2/Snappy frame headers as well as the
// magic number of an uncompressed IR stream:
//
//	br := bufio.NewReader(file)
//	t, err := compress.Sniff(br)
//	codec, _ := compress.GetCodec(t)
//	r, _ := codec.NewReader(br)
//
// # Zstd Backends
//
// By default Zstd uses the pure Go github.com/klauspost/compress/zstd with pooled
// encoders and decoders. Building with cgo enabled and the gozstd tag switches to
// github.com/valyala/gozstd, which binds libzstd:
//
//	go build -tags gozstd ./...
//
// Both produce standard Zstd frames and can read each other's output.
//
// # Thread Safety
//
// Codec values are stateless and safe for concurrent use. The readers and writers they
// return belong to a single stream and must not be shared between goroutines.
package compress
