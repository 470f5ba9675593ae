package tokenizer

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestTokenIterator(t *testing.T) {
	query := `bool, @Tuple.1, "if-then-else condition"`
	tokenizer := NewQueryTokenizer(query)

	expectedTypes := []TokenType{
		WORD, COMMA, WHITESPACE, AT, WORD, DOT, NUMBER, COMMA, WHITESPACE, QUOTE, EOF,
	}

	var actualTypes []TokenType
	for token, err := range tokenizer.Tokens() {
		assert.NoError(t, err)

		actualTypes = append(actualTypes, token.Type)

		if token.Type == EOF {
			break
		}
	}

	assert.Equal(t, expectedTypes, actualTypes)
}

func TestTokenIteratorWithOptions(t *testing.T) {
	tokenizer := NewQueryTokenizer(" #3 , List : generic ", TokenizerOptions{
		SkipWhitespace: true,
	})

	tokens, err := tokenizer.AllTokens()
	assert.NoError(t, err)

	var values []string
	for _, token := range tokens {
		values = append(values, token.Value)
	}

	assert.Equal(t, []string{"#", "3", ",", "List", ":", "generic", ""}, values)
}

func TestIteratorEarlyTermination(t *testing.T) {
	tokenizer := NewQueryTokenizer("a, b, c, d")

	count := 0
	for range tokenizer.Tokens() {
		count++
		if count == 3 {
			break
		}
	}

	assert.Equal(t, 3, count)
}

func TestWordsAndNumbers(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Token
	}{
		{
			name:  "digits only is a number",
			input: "42",
			expected: []Token{
				{Type: NUMBER, Value: "42", Position: Position{Line: 1, Column: 1, Offset: 0}},
			},
		},
		{
			name:  "digits followed by letters is a word",
			input: "3x",
			expected: []Token{
				{Type: WORD, Value: "3x", Position: Position{Line: 1, Column: 1, Offset: 0}},
			},
		},
		{
			name:  "hyphens and sigils inside a word",
			input: "if-then-else#a@b*c",
			expected: []Token{
				{Type: WORD, Value: "if-then-else#a@b*c", Position: Position{Line: 1, Column: 1, Offset: 0}},
			},
		},
		{
			name:  "type variable style names",
			input: "'a",
			expected: []Token{
				{Type: WORD, Value: "'a", Position: Position{Line: 1, Column: 1, Offset: 0}},
			},
		},
		{
			name:  "symbol at word start",
			input: "$x",
			expected: []Token{
				{Type: SYMBOL, Value: "$", Position: Position{Line: 1, Column: 1, Offset: 0}},
				{Type: WORD, Value: "x", Position: Position{Line: 1, Column: 2, Offset: 1}},
			},
		},
		{
			name:  "multibyte runes advance column by one",
			input: "型:説明",
			expected: []Token{
				{Type: WORD, Value: "型", Position: Position{Line: 1, Column: 1, Offset: 0}},
				{Type: COLON, Value: ":", Position: Position{Line: 1, Column: 2, Offset: 3}},
				{Type: WORD, Value: "説明", Position: Position{Line: 1, Column: 3, Offset: 4}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := NewQueryTokenizer(tt.input).AllTokens()
			assert.NoError(t, err)
			assert.Equal(t, EOF, tokens[len(tokens)-1].Type)
			assert.Equal(t, tt.expected, tokens[:len(tokens)-1])
		})
	}
}

func TestQuotedString(t *testing.T) {
	tokens, err := NewQueryTokenizer(`"a, b: c.d"`).AllTokens()
	assert.NoError(t, err)
	assert.Equal(t, 2, len(tokens))
	assert.Equal(t, QUOTE, tokens[0].Type)
	assert.Equal(t, `"a, b: c.d"`, tokens[0].Value)
	assert.Equal(t, "a, b: c.d", tokens[0].Unquote())
}

func TestUnterminatedString(t *testing.T) {
	_, err := NewQueryTokenizer(`bool, "if-then`).AllTokens()
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnterminatedString))
}

func TestNulByteIsNotEndOfInput(t *testing.T) {
	tokens, err := NewQueryTokenizer("a\x00b,\x00").AllTokens()
	assert.NoError(t, err)

	types := make([]TokenType, 0, len(tokens))
	for _, token := range tokens {
		types = append(types, token.Type)
	}

	assert.Equal(t, []TokenType{WORD, COMMA, SYMBOL, EOF}, types)
	assert.Equal(t, "a\x00b", tokens[0].Value)
	assert.Equal(t, 5, tokens[3].Position.Offset)
}

func TestLinePositions(t *testing.T) {
	tokens, err := NewQueryTokenizer("a,\nb", TokenizerOptions{SkipWhitespace: true}).AllTokens()
	assert.NoError(t, err)
	assert.Equal(t, Position{Line: 2, Column: 1, Offset: 3}, tokens[2].Position)
}
