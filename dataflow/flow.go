package dataflow

import "iter"

// Flow is an ordered, immutable sequence of tokens.
type Flow struct {
	tokens []Token
}

// NewFlow creates a flow from tokens. The slice is copied, so later changes
// by the caller are not visible through the flow.
func NewFlow(tokens ...Token) Flow {
	copied := make([]Token, len(tokens))
	copy(copied, tokens)

	return Flow{tokens: copied}
}

// Len returns the number of tokens in the flow.
func (f Flow) Len() int {
	return len(f.tokens)
}

// At returns the token at position i.
func (f Flow) At(i int) Token {
	return f.tokens[i]
}

// Tokens returns a copy of the flow's tokens in order.
func (f Flow) Tokens() []Token {
	copied := make([]Token, len(f.tokens))
	copy(copied, f.tokens)

	return copied
}

// All iterates over the flow's positions and tokens in order.
func (f Flow) All() iter.Seq2[int, Token] {
	return func(yield func(int, Token) bool) {
		for i, t := range f.tokens {
			if !yield(i, t) {
				return
			}
		}
	}
}

// Locations returns the LocationTokens of the flow in order.
func (f Flow) Locations() []LocationToken {
	var locs []LocationToken

	for _, t := range f.tokens {
		if loc, ok := t.(LocationToken); ok {
			locs = append(locs, loc)
		}
	}

	return locs
}
