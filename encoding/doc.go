// Package encoding provides the low-level token codecs of the IR payload.
//
// The functions here are append-style encoders and slice-style decoders with no state of
// their own; the ir package composes them into records.
//
// # Decoding Contract
//
// Every Read function takes the bytes that follow a tag and returns the decoded value, the
// number of bytes consumed and an error:
//
//   - errs.ErrNeedMoreData when the value extends past the end of src. Nothing is consumed
//     and the caller may retry once more bytes are available.
//   - an error wrapping errs.ErrCorruptStream when the bytes can never form a valid value
//     (varint overflow, negative length, impossible packed float).
//
// # Four-Byte Numbers
//
// Integer variables that fit an int32 are stored as four bytes. Decimal float variables with
// at most eight digits are stored as a packed four-byte value that reproduces the exact
// original text, including leading zeros and trailing zeros:
//
//	bit  31      sign
//	bits 30..6   digits value (25 bits)
//	bits 5..3    number of digits - 1
//	bits 2..0    number of fraction digits - 1
package encoding
