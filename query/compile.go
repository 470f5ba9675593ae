package query

import (
	"fmt"
	"strconv"
	"strings"

	pc "github.com/shibukawa/parsercombinator"
	tok "github.com/shibukawa/flowquery/tokenizer"
)

// Compile parses query text into a Query.
//
// The text is a comma-separated list of fields; fields are trimmed and empty
// fields are dropped. Each field becomes exactly one Op, except the gap
// marker '*' which compiles to nothing because gaps between ops are always
// allowed. Compilation stops at the first malformed field and returns a
// *CompileError. Compile never consults a database.
func Compile(text string) (Query, error) {
	tokens, err := tokenize(text)
	if err != nil {
		return nil, err
	}

	pctx := pc.NewParseContext[tok.Token]()

	var q Query

	for i, field := range split(pctx, comma, toParserTokens(tokens)) {
		if len(field) == 0 {
			continue
		}

		op, err := compileField(pctx, field)
		if err != nil {
			return nil, &CompileError{Field: i + 1, Fragment: toSrc(field), Reason: err}
		}

		if op != nil {
			q = append(q, op)
		}
	}

	if len(q) == 0 {
		return nil, &CompileError{Reason: ErrEmptyQuery}
	}

	return q, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(text string) Query {
	q, err := Compile(text)
	if err != nil {
		panic(err)
	}

	return q
}

// tokenize runs the query tokenizer, turning a tokenizer error into a
// CompileError for the field it occurred in.
func tokenize(text string) ([]tok.Token, error) {
	var (
		tokens    []tok.Token
		field     = 1
		fieldFrom = 0
	)

	for token, err := range tok.NewQueryTokenizer(text).Tokens() {
		if err != nil {
			return nil, &CompileError{
				Field:    field,
				Fragment: strings.TrimSpace(text[fieldFrom:]),
				Reason:   ErrUnterminatedQuote,
			}
		}

		if token.Type == tok.COMMA {
			field++
			fieldFrom = token.Position.Offset + len(token.Value)
		}

		tokens = append(tokens, token)
	}

	return tokens, nil
}

func compileField(pctx *pc.ParseContext[tok.Token], field []pc.Token[tok.Token]) (Op, error) {
	switch field[0].Val.Type {
	case tok.HASH:
		return compileTypeVarDegree(pctx, field)
	case tok.AT:
		return compileConstructorArg(pctx, field[1:])
	case tok.QUOTE:
		if _, _, err := description(pctx, field); err != nil {
			return nil, fmt.Errorf("%w: unexpected text after closing quote", ErrInvalidDescription)
		}

		return ByDescription{Text: field[0].Val.Unquote()}, nil
	case tok.STAR:
		if _, _, err := gap(pctx, field); err != nil {
			return nil, ErrInvalidGap
		}

		return nil, nil
	case tok.WORD, tok.NUMBER, tok.COLON:
		return compileType(pctx, field)
	default:
		return nil, fmt.Errorf("%w '%s'", ErrUnknownSigil, field[0].Val.Value)
	}
}

func compileTypeVarDegree(pctx *pc.ParseContext[tok.Token], field []pc.Token[tok.Token]) (Op, error) {
	_, match, err := typeVarDegree(pctx, field)
	if err != nil {
		return nil, fmt.Errorf("%w: expected '#' followed by a non-negative integer", ErrInvalidTypeVarCount)
	}

	n, ok := firstOfType(match, tok.NUMBER)
	if !ok {
		return nil, ErrInvalidTypeVarCount
	}

	count, err := strconv.Atoi(n.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is out of range", ErrInvalidTypeVarCount, n.Value)
	}

	return ByTypeVarDegree{Count: count}, nil
}

// compileConstructorArg handles the text after '@': name, name.N, name:N,
// name.desc or name:desc.
func compileConstructorArg(pctx *pc.ParseContext[tok.Token], rest []pc.Token[tok.Token]) (Op, error) {
	parts := split(pctx, separator, rest)
	if len(parts) > 2 {
		return nil, fmt.Errorf("%w: at most one '.' or ':' is allowed", ErrInvalidConstructorArg)
	}

	if len(parts[0]) == 0 {
		return nil, fmt.Errorf("%w: constructor name is missing", ErrInvalidConstructorArg)
	}

	op := ByConstructorArg{Name: toSrc(parts[0])}

	if len(parts) == 1 {
		return op, nil
	}

	if len(parts[1]) == 0 {
		return nil, fmt.Errorf("%w: argument index or description is missing", ErrInvalidConstructorArg)
	}

	if _, match, err := argIndex(pctx, parts[1]); err == nil {
		n, _ := firstOfType(match, tok.NUMBER)

		index, err := strconv.Atoi(n.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: argument index %s is out of range", ErrInvalidConstructorArg, n.Value)
		}

		op.ArgIndex = &index

		return op, nil
	}

	desc := toSrc(parts[1])
	op.Description = &desc

	return op, nil
}

// compileType handles name and name:desc.
func compileType(pctx *pc.ParseContext[tok.Token], field []pc.Token[tok.Token]) (Op, error) {
	parts := split(pctx, colon, field)
	if len(parts) > 2 {
		return nil, fmt.Errorf("%w: at most one ':' is allowed", ErrInvalidType)
	}

	if len(parts[0]) == 0 {
		return nil, fmt.Errorf("%w: type name is missing", ErrInvalidType)
	}

	op := ByType{Name: toSrc(parts[0])}

	if len(parts) == 1 {
		return op, nil
	}

	if len(parts[1]) == 0 {
		return nil, fmt.Errorf("%w: description is missing", ErrInvalidType)
	}

	desc := toSrc(parts[1])
	op.Description = &desc

	return op, nil
}
