package compress

import "github.com/arloliu/clpir/format"

// ZstdCodec provides Zstandard stream compression.
//
// It gives the best ratio of the built-in codecs and is the usual choice for archived IR
// files. The implementation is selected at build time: pure Go (klauspost/compress) by
// default, or libzstd through cgo when built with the gozstd tag.
type ZstdCodec struct{}

var _ Codec = ZstdCodec{}

// NewZstdCodec creates a new Zstd codec.
func NewZstdCodec() ZstdCodec {
	return ZstdCodec{}
}

// Type returns format.CompressionZstd.
func (ZstdCodec) Type() format.CompressionType {
	return format.CompressionZstd
}
