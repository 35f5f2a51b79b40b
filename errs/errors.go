// Package errs defines the sentinel errors returned across clpir.
//
// Errors are wrapped with context via fmt.Errorf("%w: ...") and should be matched with
// errors.Is.
package errs

import "errors"

// Stream decoding errors.
var (
	// ErrNeedMoreData reports that a token extends past the buffered bytes. The buffer turns
	// it into a status rather than surfacing it as a failure.
	ErrNeedMoreData = errors.New("need more data")
	// ErrEndOfStream reports that the end-of-stream token has been read.
	ErrEndOfStream = errors.New("end of IR stream")
	// ErrCorruptStream reports an unrecognized tag or a length inconsistent with the grammar.
	// It is fatal for the stream instance.
	ErrCorruptStream = errors.New("corrupt IR stream")
	// ErrIncompleteStream reports that the byte source ended in the middle of a record.
	ErrIncompleteStream = errors.New("incomplete IR stream")
	// ErrUnsupportedEncoding reports an eight-byte encoded stream.
	ErrUnsupportedEncoding = errors.New("eight-byte IR encoding is not supported")
	// ErrUnsupportedVersion reports a preamble version this decoder does not know.
	ErrUnsupportedVersion = errors.New("unsupported IR format version")
	// ErrMetadataCorrupted reports a preamble whose JSON metadata is unusable.
	ErrMetadataCorrupted = errors.New("metadata corrupted")
	// ErrMetadataNotRead reports an operation that needs the preamble before it was decoded.
	ErrMetadataNotRead = errors.New("metadata has not been read")
)

// Stream encoding errors.
var (
	ErrEncoderClosed          = errors.New("encoder is closed")
	ErrTimestampDeltaOverflow = errors.New("timestamp delta overflows int64")
	ErrTokenTooLong           = errors.New("token length exceeds format limit")
	ErrInvalidMetadata        = errors.New("invalid metadata")
	ErrInvalidDictionarySize  = errors.New("invalid dictionary capacity")
)

// Query errors.
var (
	// ErrInvalidQueryParameter reports a rejected builder assignment; the prior value is kept.
	ErrInvalidQueryParameter = errors.New("invalid query parameter")
)

// Compression errors.
var (
	ErrInvalidCompression = errors.New("invalid compression type")
)
