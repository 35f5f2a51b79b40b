package encoding

import (
	"encoding/binary"
	"fmt"

	"github.com/arloliu/clpir/errs"
)

// AppendZigzagVarint appends v using zigzag encoding followed by uvarint encoding.
//
// Zigzag encoding maps signed to unsigned so small negative deltas stay short:
// -1 becomes 1, -2 becomes 3, 0 stays 0, 1 becomes 2, etc.
func AppendZigzagVarint(dst []byte, v int64) []byte {
	return binary.AppendUvarint(dst, uint64(v<<1)^uint64(v>>63)) //nolint:gosec
}

// ReadZigzagVarint decodes a value written by AppendZigzagVarint.
func ReadZigzagVarint(src []byte) (int64, int, error) {
	u, n, err := ReadUvarint(src)
	if err != nil {
		return 0, 0, err
	}

	return int64(u>>1) ^ -int64(u&1), n, nil //nolint:gosec
}

// AppendUvarint appends v as an unsigned varint.
func AppendUvarint(dst []byte, v uint64) []byte {
	return binary.AppendUvarint(dst, v)
}

// ReadUvarint decodes an unsigned varint.
func ReadUvarint(src []byte) (uint64, int, error) {
	u, n := binary.Uvarint(src)
	switch {
	case n == 0:
		return 0, 0, errs.ErrNeedMoreData
	case n < 0:
		return 0, 0, fmt.Errorf("%w: varint overflows 64 bits", errs.ErrCorruptStream)
	}

	return u, n, nil
}
