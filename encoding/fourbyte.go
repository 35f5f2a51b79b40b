package encoding

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/arloliu/clpir/errs"
)

const (
	// MaxFloatDigits is the maximum number of decimal digits of a four-byte float.
	MaxFloatDigits = 8
	// MaxFloatDigitsValue is the largest digits value that fits the 25-bit field.
	MaxFloatDigitsValue = 1<<25 - 1

	floatSignMask      = 1 << 31
	floatDigitsShift   = 6
	floatNumDigitsMask = 0x7
	floatNumDigitsPos  = 3
	floatFracMask      = 0x7

	maxIntTokenLength = 11 // len("-2147483648")
)

// EncodeFourByteInt converts an integer token to its four-byte form.
//
// Only the canonical decimal spelling is accepted ("0" or an optional '-' followed by a
// non-zero digit and more digits) so that formatting the value restores the token exactly.
func EncodeFourByteInt(token string) (int32, bool) {
	if len(token) == 0 || len(token) > maxIntTokenLength {
		return 0, false
	}

	digits := token
	if digits[0] == '-' {
		digits = digits[1:]
		if len(digits) == 0 || digits[0] == '0' {
			return 0, false
		}
	}
	if digits[0] == '0' && len(digits) > 1 {
		return 0, false
	}
	for i := 0; i < len(digits); i++ {
		if !isDigit(digits[i]) {
			return 0, false
		}
	}

	v, err := strconv.ParseInt(token, 10, 32)
	if err != nil {
		return 0, false
	}

	return int32(v), true
}

// DecodeFourByteInt formats a four-byte integer back to its token.
func DecodeFourByteInt(v int32) string {
	return strconv.FormatInt(int64(v), 10)
}

// EncodeFourByteFloat converts a decimal token of the form -?[0-9]+\.[0-9]+ to its packed
// four-byte form.
func EncodeFourByteFloat(token string) (uint32, bool) {
	s := token
	negative := false
	if strings.HasPrefix(s, "-") {
		negative = true
		s = s[1:]
	}

	dot := strings.IndexByte(s, '.')
	if dot <= 0 || dot == len(s)-1 {
		return 0, false
	}

	numDigits := len(s) - 1
	if numDigits > MaxFloatDigits {
		return 0, false
	}

	var digits uint32
	for i := 0; i < len(s); i++ {
		if i == dot {
			continue
		}
		if !isDigit(s[i]) {
			return 0, false
		}
		digits = digits*10 + uint32(s[i]-'0')
	}
	if digits > MaxFloatDigitsValue {
		return 0, false
	}

	fracDigits := len(s) - dot - 1
	packed := digits<<floatDigitsShift |
		uint32(numDigits-1)<<floatNumDigitsPos | //nolint:gosec
		uint32(fracDigits-1) //nolint:gosec
	if negative {
		packed |= floatSignMask
	}

	return packed, true
}

// DecodeFourByteFloat restores the token a packed four-byte float was encoded from.
func DecodeFourByteFloat(packed uint32) (string, error) {
	digits := (packed >> floatDigitsShift) & MaxFloatDigitsValue
	numDigits := int((packed>>floatNumDigitsPos)&floatNumDigitsMask) + 1
	fracDigits := int(packed&floatFracMask) + 1

	if fracDigits >= numDigits {
		return "", fmt.Errorf("%w: float with %d fraction digits out of %d", errs.ErrCorruptStream, fracDigits, numDigits)
	}
	if float64(digits) >= math.Pow10(numDigits) {
		return "", fmt.Errorf("%w: float digits %d exceed %d digits", errs.ErrCorruptStream, digits, numDigits)
	}

	raw := strconv.FormatUint(uint64(digits), 10)

	var sb strings.Builder
	sb.Grow(numDigits + 2)
	if packed&floatSignMask != 0 {
		sb.WriteByte('-')
	}
	for i := len(raw); i < numDigits; i++ {
		sb.WriteByte('0')
	}
	sb.WriteString(raw)

	out := sb.String()
	split := len(out) - fracDigits

	return out[:split] + "." + out[split:], nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
