package matcher

import (
	"github.com/shibukawa/flowquery/dataflow"
	"github.com/shibukawa/flowquery/query"
)

// Matches reports whether q matches flow as an ordered subsequence: every op
// is satisfied by a token, at strictly increasing positions, with any number
// of tokens in between. The empty query matches every flow.
func Matches(flow dataflow.Flow, q query.Query, degrees query.DegreeSource) bool {
	_, ok := Find(flow, q, degrees)
	return ok
}

// Find is like Matches and also returns the flow position chosen for each op
// of q. Candidates are tried left to right, so the positions are the first
// match in backtracking order.
func Find(flow dataflow.Flow, q query.Query, degrees query.DegreeSource) ([]int, bool) {
	s := &state{
		flow:      flow,
		query:     q,
		degrees:   degrees,
		positions: make([]int, len(q)),
		failed:    make([]bool, (flow.Len()+1)*(len(q)+1)),
	}

	if !s.match(0, 0) {
		return nil, false
	}

	return s.positions, true
}

type state struct {
	flow      dataflow.Flow
	query     query.Query
	degrees   query.DegreeSource
	positions []int
	// failed[fi*(len(query)+1)+qi] is set once query[qi:] is known not to
	// match flow[fi:].
	failed []bool
}

func (s *state) match(fi, qi int) bool {
	if qi == len(s.query) {
		return true
	}

	key := fi*(len(s.query)+1) + qi
	if s.failed[key] {
		return false
	}

	op := s.query[qi]
	remaining := len(s.query) - qi

	for i := fi; i+remaining <= s.flow.Len(); i++ {
		if !query.Test(s.flow.At(i), op, s.degrees) {
			continue
		}

		s.positions[qi] = i

		if s.match(i+1, qi+1) {
			return true
		}
	}

	s.failed[key] = true

	return false
}
