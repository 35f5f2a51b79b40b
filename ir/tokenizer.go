package ir

import "github.com/arloliu/clpir/encoding"

// TokenKind classifies a fragment of a tokenized message.
type TokenKind uint8

const (
	TokenStatic        TokenKind = iota // static text, stored verbatim
	TokenFourByteInt                    // integer variable that fits an int32
	TokenFourByteFloat                  // decimal float variable that fits the packed form
	TokenVarString                      // any other variable, stored as a string or dictionary reference
)

func (k TokenKind) String() string {
	switch k {
	case TokenStatic:
		return "Static"
	case TokenFourByteInt:
		return "FourByteInt"
	case TokenFourByteFloat:
		return "FourByteFloat"
	case TokenVarString:
		return "VarString"
	default:
		return "Unknown"
	}
}

// Token is one fragment of a message. Concatenating the Text of all tokens of a message
// yields the message.
type Token struct {
	Kind TokenKind
	Text string
	// Int holds the value of a TokenFourByteInt.
	Int int32
	// Float holds the packed value of a TokenFourByteFloat.
	Float uint32
}

// Tokenize splits message into static text and variables.
func Tokenize(message string) []Token {
	return AppendTokens(nil, message)
}

// AppendTokens appends the tokens of message to dst and returns the extended slice.
//
// A candidate token is a maximal run of non-delimiter bytes. It is a variable when it
// contains a decimal digit, or when it directly follows '=' and contains a letter. Static
// text between variables, delimiters included, is merged into a single token.
func AppendTokens(dst []Token, message string) []Token {
	staticStart := 0
	pos := 0

	for pos < len(message) {
		for pos < len(message) && isDelimiter(message[pos]) {
			pos++
		}
		if pos >= len(message) {
			break
		}

		start := pos
		hasDigit, hasLetter := false, false
		for pos < len(message) && !isDelimiter(message[pos]) {
			c := message[pos]
			switch {
			case c >= '0' && c <= '9':
				hasDigit = true
			case (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
				hasLetter = true
			}
			pos++
		}

		isVariable := hasDigit || (start > 0 && message[start-1] == '=' && hasLetter)
		if !isVariable {
			continue
		}

		if staticStart < start {
			dst = append(dst, Token{Kind: TokenStatic, Text: message[staticStart:start]})
		}
		dst = append(dst, classifyVariable(message[start:pos]))
		staticStart = pos
	}

	if staticStart < len(message) {
		dst = append(dst, Token{Kind: TokenStatic, Text: message[staticStart:]})
	}

	return dst
}

func classifyVariable(text string) Token {
	if v, ok := encoding.EncodeFourByteInt(text); ok {
		return Token{Kind: TokenFourByteInt, Text: text, Int: v}
	}
	if v, ok := encoding.EncodeFourByteFloat(text); ok {
		return Token{Kind: TokenFourByteFloat, Text: text, Float: v}
	}

	return Token{Kind: TokenVarString, Text: text}
}

// isDelimiter reports whether c separates candidate tokens. Everything except
// '+', '-', '.', '/', digits, letters, '\' and '_' is a delimiter.
func isDelimiter(c byte) bool {
	return !(c == '+' ||
		('-' <= c && c <= '9') ||
		('A' <= c && c <= 'Z') ||
		c == '\\' ||
		c == '_' ||
		('a' <= c && c <= 'z'))
}
