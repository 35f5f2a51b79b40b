// Package clpir reads, writes and searches CLP IR log streams.
//
// An IR stream is a preamble (magic number plus JSON metadata) followed by self-delimiting
// records. Each record stores the timestamp as a delta against the previous record and the
// message as a sequence of tokens: static text, variable strings, dictionary references and
// four-byte encoded numbers. Decoding restores every message byte for byte.
//
// # Basic Usage
//
// Writing a stream:
//
//	w, err := clpir.NewDefaultWriter(file, time.Now().UnixMilli())
//	if err != nil {
//	    return err
//	}
//	_ = w.WriteMessage(time.Now().UnixMilli(), "connected to 10.0.0.7 in 35.2 ms")
//	err = w.Close()
//
// Searching a stream:
//
//	q := clpir.NewQueryBuilder().
//	    SetSearchTimeLowerBound(from).
//	    AddWildcardQuery(query.NewWildcardQuery("*ERROR*", false)).
//	    BuildQuery()
//
//	r, err := clpir.NewReader(file, stream.WithQuery(q))
//	for ev, err := range r.All() {
//	    ...
//	}
//
// # Package Structure
//
// This package provides top-level wrappers for the most common use cases. The ir package
// exposes the push-style encoder and deserialization buffer, the stream package the
// io.Reader/io.Writer adapters, and the query package the search predicates.
package clpir

import (
	"bytes"
	"io"

	"github.com/arloliu/clpir/format"
	"github.com/arloliu/clpir/ir"
	"github.com/arloliu/clpir/preamble"
	"github.com/arloliu/clpir/query"
	"github.com/arloliu/clpir/stream"
)

const (
	// DefaultTimestampPattern is the pattern recorded by NewDefaultMetadata.
	DefaultTimestampPattern = "yyyy-MM-dd HH:mm:ss.SSS"
	// DefaultTimeZoneID is the zone recorded by NewDefaultMetadata.
	DefaultTimeZoneID = "UTC"
)

// NewMetadata creates stream metadata. See preamble.NewMetadata for the options.
func NewMetadata(referenceTimestamp int64, timestampPattern, timeZoneID string, opts ...preamble.MetadataOption) (*preamble.Metadata, error) {
	return preamble.NewMetadata(referenceTimestamp, timestampPattern, timeZoneID, opts...)
}

// NewDefaultMetadata creates big-endian UTC metadata with dictionary referencing disabled.
func NewDefaultMetadata(referenceTimestamp int64) (*preamble.Metadata, error) {
	return preamble.NewMetadata(referenceTimestamp, DefaultTimestampPattern, DefaultTimeZoneID)
}

// NewEncoder creates an in-memory encoder whose output starts with the preamble of meta.
func NewEncoder(meta *preamble.Metadata, opts ...ir.EncoderOption) (*ir.Encoder, error) {
	return ir.NewEncoder(meta, opts...)
}

// NewDecoderBuffer creates an empty deserialization buffer.
func NewDecoderBuffer(opts ...ir.DecoderBufferOption) (*ir.DecoderBuffer, error) {
	return ir.NewDecoderBuffer(opts...)
}

// NewReader creates a stream reader over r. Compression is detected unless
// stream.WithCompression is given.
func NewReader(r io.Reader, opts ...stream.ReaderOption) (*stream.Reader, error) {
	return stream.NewReader(r, opts...)
}

// NewWriter creates a stream writer that writes the preamble of meta to w.
func NewWriter(w io.Writer, meta *preamble.Metadata, opts ...stream.WriterOption) (*stream.Writer, error) {
	return stream.NewWriter(w, meta, opts...)
}

// NewDefaultWriter creates a zstd-compressed writer with default metadata.
//
// Example:
//
//	w, err := clpir.NewDefaultWriter(f, time.Now().UnixMilli())
func NewDefaultWriter(w io.Writer, referenceTimestamp int64) (*stream.Writer, error) {
	meta, err := NewDefaultMetadata(referenceTimestamp)
	if err != nil {
		return nil, err
	}

	return stream.NewWriter(w, meta, stream.WithWriterCompression(format.CompressionZstd))
}

// NewQueryBuilder creates a query builder holding the default (match everything) query.
func NewQueryBuilder() *query.Builder {
	return query.NewBuilder()
}

// EncodeEvents encodes events into a complete, uncompressed stream.
func EncodeEvents(meta *preamble.Metadata, events []ir.LogEvent) ([]byte, error) {
	enc, err := ir.NewEncoder(meta)
	if err != nil {
		return nil, err
	}
	defer enc.Release()

	for _, ev := range events {
		if err := enc.Encode(ev); err != nil {
			return nil, err
		}
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}

	return enc.Take(), nil
}

// DecodeEvents decodes every event of a complete stream held in memory. Compressed input is
// detected the same way as by NewReader.
func DecodeEvents(data []byte, opts ...stream.ReaderOption) ([]ir.LogEvent, error) {
	r, err := stream.NewReader(bytes.NewReader(data), opts...)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var events []ir.LogEvent
	for ev, err := range r.All() {
		if err != nil {
			return events, err
		}
		events = append(events, ev)
	}

	return events, nil
}
