package tokenizer

import "errors"

// Sentinel errors
var (
	ErrUnterminatedString = errors.New("unterminated description string")
)

// TokenType represents the type of a token
type TokenType int

const (
	// Basic tokens
	EOF TokenType = iota
	WHITESPACE
	WORD   // names and description text
	NUMBER // non-negative integer literal
	QUOTE  // double-quoted description ("text")

	// Sigils and delimiters
	HASH   // #
	AT     // @
	DOT    // .
	COLON  // :
	COMMA  // ,
	STAR   // *
	SYMBOL // any other punctuation at the start of a word
)

// String returns the string representation of TokenType
func (t TokenType) String() string {
	switch t {
	case EOF:
		return "EOF"
	case WHITESPACE:
		return "WHITESPACE"
	case WORD:
		return "WORD"
	case NUMBER:
		return "NUMBER"
	case QUOTE:
		return "QUOTE"
	case HASH:
		return "HASH"
	case AT:
		return "AT"
	case DOT:
		return "DOT"
	case COLON:
		return "COLON"
	case COMMA:
		return "COMMA"
	case STAR:
		return "STAR"
	case SYMBOL:
		return "SYMBOL"
	default:
		return "UNKNOWN"
	}
}

// Position represents a position in the query text.
// Offset is a byte offset; Line and Column are 1-based and count runes.
type Position struct {
	Line   int
	Column int
	Offset int
}

// Token represents a token
type Token struct {
	Type     TokenType
	Value    string
	Position Position
}

// String returns the string representation of Token
func (t Token) String() string {
	return t.Type.String() + ": " + t.Value
}

// Unquote returns the text between the quotes of a QUOTE token.
func (t Token) Unquote() string {
	if t.Type != QUOTE || len(t.Value) < 2 {
		return t.Value
	}

	return t.Value[1 : len(t.Value)-1]
}
