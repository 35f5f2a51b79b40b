// Package endian provides byte order utilities for the IR payload.
//
// The preamble of an IR stream is always big endian. Fixed-width payload fields (four-byte
// integers and floats, string lengths, field lengths) follow the byte order declared by the
// BYTE_ORDER metadata key, resolved to an EndianEngine through ForByteOrder.
//
// # Basic Usage
//
//	engine := endian.ForByteOrder(meta.ByteOrder)
//	buf = engine.AppendUint32(buf, packed)
//	v := engine.Uint32(buf[off:])
//
// # Thread Safety
//
// All functions and methods in this package are safe for concurrent use.
// The returned EndianEngine instances are immutable and stateless.
package endian

import (
	"encoding/binary"

	"github.com/arloliu/clpir/format"
)

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single interface for convenient byte order operations.
//
// This interface is satisfied by binary.LittleEndian and binary.BigEndian from
// the standard library.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// ForByteOrder returns the engine for a declared payload byte order.
// Unknown values resolve to big endian, the format default.
func ForByteOrder(order format.ByteOrder) EndianEngine {
	if order == format.LittleEndian {
		return GetLittleEndianEngine()
	}

	return GetBigEndianEngine()
}

// IsBigEndian reports whether engine writes the most significant byte first.
func IsBigEndian(engine EndianEngine) bool {
	return engine == binary.BigEndian
}
