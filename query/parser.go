package query

import (
	"slices"
	"strings"

	pc "github.com/shibukawa/parsercombinator"
	tok "github.com/shibukawa/flowquery/tokenizer"
)

var (
	hash      = primitiveType("hash", tok.HASH)
	at        = primitiveType("at", tok.AT)
	number    = primitiveType("number", tok.NUMBER)
	quote     = primitiveType("quote", tok.QUOTE)
	star      = primitiveType("star", tok.STAR)
	comma     = primitiveType("comma", tok.COMMA)
	colon     = primitiveType("colon", tok.COLON)
	separator = primitiveType("separator", tok.DOT, tok.COLON)
	eos       = pc.EOS[tok.Token]()

	// typeVarDegree returns: hash, number
	typeVarDegree = pc.Trace("type-var-degree", pc.Seq(hash, number, eos))
	// description returns: quote
	description = pc.Trace("description", pc.Seq(quote, eos))
	// gap returns: star
	gap = pc.Trace("gap", pc.Seq(star, eos))
	// argIndex returns: number
	argIndex = pc.Trace("arg-index", pc.Seq(number, eos))
)

func primitiveType(typeName string, types ...tok.TokenType) pc.Parser[tok.Token] {
	return func(pctx *pc.ParseContext[tok.Token], tokens []pc.Token[tok.Token]) (int, []pc.Token[tok.Token], error) {
		if len(tokens) > 0 && slices.Contains(types, tokens[0].Val.Type) {
			return 1, tokens[:1], nil
		}

		return 0, nil, pc.ErrNotMatch
	}
}

func toParserTokens(tokens []tok.Token) []pc.Token[tok.Token] {
	results := make([]pc.Token[tok.Token], 0, len(tokens))

	for _, token := range tokens {
		if token.Type == tok.EOF {
			continue
		}

		results = append(results, pc.Token[tok.Token]{
			Type: "raw",
			Pos: &pc.Pos{
				Line:  token.Position.Line,
				Col:   token.Position.Column,
				Index: token.Position.Offset,
			},
			Val: token,
			Raw: token.Value,
		})
	}

	return results
}

// split cuts tokens at every match of sep. Each part is trimmed of
// whitespace. A trailing separator yields a trailing empty part.
func split(pctx *pc.ParseContext[tok.Token], sep pc.Parser[tok.Token], tokens []pc.Token[tok.Token]) [][]pc.Token[tok.Token] {
	var parts [][]pc.Token[tok.Token]

	ended := false

	for _, part := range pc.FindIter(pctx, sep, tokens) {
		parts = append(parts, trimSpace(part.Skipped))

		if part.Last {
			ended = true
			break
		}
	}

	if !ended {
		parts = append(parts, nil)
	}

	return parts
}

func trimSpace(tokens []pc.Token[tok.Token]) []pc.Token[tok.Token] {
	start, end := 0, len(tokens)

	for start < end && tokens[start].Val.Type == tok.WHITESPACE {
		start++
	}

	for end > start && tokens[end-1].Val.Type == tok.WHITESPACE {
		end--
	}

	return tokens[start:end]
}

func toSrc(tokens []pc.Token[tok.Token]) string {
	var b strings.Builder
	for _, token := range tokens {
		b.WriteString(token.Raw)
	}

	return b.String()
}

func firstOfType(tokens []pc.Token[tok.Token], tt tok.TokenType) (tok.Token, bool) {
	for _, token := range tokens {
		if token.Val.Type == tt {
			return token.Val, true
		}
	}

	return tok.Token{}, false
}
