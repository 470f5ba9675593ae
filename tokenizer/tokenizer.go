package tokenizer

import (
	"fmt"
	"iter"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenIterator uses Go 1.24 iterator pattern
type TokenIterator iter.Seq2[Token, error]

// QueryTokenizer is a tokenizer for flow query text that returns an iterator
type QueryTokenizer struct {
	input   string
	options TokenizerOptions
}

// TokenizerOptions are options for the tokenizer
type TokenizerOptions struct {
	SkipWhitespace bool
}

// NewQueryTokenizer creates a new QueryTokenizer
func NewQueryTokenizer(input string, options ...TokenizerOptions) *QueryTokenizer {
	opts := TokenizerOptions{
		SkipWhitespace: false,
	}
	if len(options) > 0 {
		opts = options[0]
	}

	return &QueryTokenizer{
		input:   input,
		options: opts,
	}
}

// Tokens returns an iterator of tokens
func (t *QueryTokenizer) Tokens() TokenIterator {
	return func(yield func(Token, error) bool) {
		tokenizer := &tokenizer{
			input:  t.input,
			line:   1,
			column: 0,
		}

		tokenizer.readChar()

		for {
			token, err := tokenizer.nextToken()
			if err != nil {
				if !yield(Token{}, err) {
					return
				}

				continue
			}

			if token.Type == EOF {
				yield(token, nil)
				return
			}

			if t.options.SkipWhitespace && token.Type == WHITESPACE {
				continue
			}

			if !yield(token, nil) {
				return
			}
		}
	}
}

// AllTokens gets all tokens as a slice, ending with EOF.
// The first error stops tokenization.
func (t *QueryTokenizer) AllTokens() ([]Token, error) {
	tokens := make([]Token, 0, 16)

	for token, err := range t.Tokens() {
		if err != nil {
			return nil, err
		}

		tokens = append(tokens, token)
	}

	return tokens, nil
}

// Internal tokenizer implementation
type tokenizer struct {
	input string
	// next is the byte offset of the rune after current
	next    int
	offset  int
	line    int
	column  int
	current rune
	// eof is set once current has moved past the last rune
	eof bool
}

// nextToken gets the next token
func (t *tokenizer) nextToken() (Token, error) {
	if t.eof {
		return t.newToken(EOF, ""), nil
	}

	switch t.current {
	case ',':
		return t.single(COMMA), nil
	case '.':
		return t.single(DOT), nil
	case ':':
		return t.single(COLON), nil
	case '#':
		return t.single(HASH), nil
	case '@':
		return t.single(AT), nil
	case '*':
		return t.single(STAR), nil
	case '"':
		return t.readString()
	}

	switch {
	case unicode.IsSpace(t.current):
		return t.readWhitespace(), nil
	case isWordStart(t.current):
		return t.readWord(), nil
	default:
		return t.single(SYMBOL), nil
	}
}

// readChar reads the next character
func (t *tokenizer) readChar() {
	t.offset = t.next

	if t.current == '\n' {
		t.line++
		t.column = 1
	} else {
		t.column++
	}

	if t.next >= len(t.input) {
		t.current = 0
		t.eof = true

		return
	}

	r, size := utf8.DecodeRuneInString(t.input[t.next:])
	t.current = r
	t.next += size
}

func (t *tokenizer) position() Position {
	return Position{
		Line:   t.line,
		Column: t.column,
		Offset: t.offset,
	}
}

func (t *tokenizer) newToken(tokenType TokenType, value string) Token {
	return Token{
		Type:     tokenType,
		Value:    value,
		Position: t.position(),
	}
}

func (t *tokenizer) single(tokenType TokenType) Token {
	token := t.newToken(tokenType, string(t.current))
	t.readChar()

	return token
}

// readWhitespace reads whitespace characters
func (t *tokenizer) readWhitespace() Token {
	pos := t.position()

	for !t.eof && unicode.IsSpace(t.current) {
		t.readChar()
	}

	return Token{
		Type:     WHITESPACE,
		Value:    t.input[pos.Offset:t.offset],
		Position: pos,
	}
}

// readWord reads a name or a run of description text. A word made of ASCII
// digits only is a NUMBER.
func (t *tokenizer) readWord() Token {
	pos := t.position()

	for !t.eof && !isDelimiter(t.current) {
		t.readChar()
	}

	word := t.input[pos.Offset:t.offset]

	tokenType := WORD
	if isNumber(word) {
		tokenType = NUMBER
	}

	return Token{
		Type:     tokenType,
		Value:    word,
		Position: pos,
	}
}

// readString reads a double-quoted description. There are no escape sequences:
// the string ends at the next double quote.
func (t *tokenizer) readString() (Token, error) {
	pos := t.position()

	t.readChar() // opening quote

	for !t.eof && t.current != '"' {
		t.readChar()
	}

	if t.eof {
		return Token{}, fmt.Errorf("%w at line %d, column %d", ErrUnterminatedString, pos.Line, pos.Column)
	}

	t.readChar() // closing quote

	return Token{
		Type:     QUOTE,
		Value:    t.input[pos.Offset:t.offset],
		Position: pos,
	}, nil
}

func isWordStart(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '\''
}

func isDelimiter(r rune) bool {
	return unicode.IsSpace(r) || strings.ContainsRune(`,.:"`, r)
}

func isNumber(word string) bool {
	if word == "" {
		return false
	}

	for _, r := range word {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}
