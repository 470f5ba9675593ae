package search

import (
	"context"
	"errors"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/shibukawa/flowquery/dataflow"
	"github.com/shibukawa/flowquery/matcher"
	"github.com/shibukawa/flowquery/query"
)

// ErrNoDatabase is returned when a search is started without a database.
var ErrNoDatabase = errors.New("flow database unavailable")

// Match is a flow that satisfied the query.
type Match struct {
	// Index is the position of the flow in the database.
	Index int
	Flow  dataflow.Flow
	// Positions holds the flow position matched by each op of the query.
	Positions []int
}

// Searcher runs queries against one database.
type Searcher struct {
	db      *dataflow.Database
	workers int
	filter  *Filter
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithWorkers bounds the number of flows matched concurrently.
// Zero or less means runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(s *Searcher) {
		s.workers = n
	}
}

// WithFilter drops matched flows for which filter evaluates to false.
func WithFilter(filter *Filter) Option {
	return func(s *Searcher) {
		s.filter = filter
	}
}

// New creates a Searcher.
func New(db *dataflow.Database, opts ...Option) *Searcher {
	s := &Searcher{db: db}
	for _, opt := range opts {
		opt(s)
	}

	if s.workers <= 0 {
		s.workers = runtime.NumCPU()
	}

	return s
}

// Search matches q against every flow and returns the matching flows in
// database order. No match is an empty result, not an error. Cancelling ctx
// aborts the whole search.
func (s *Searcher) Search(ctx context.Context, q query.Query) ([]Match, error) {
	if s.db == nil {
		return nil, ErrNoDatabase
	}

	results := make([]*Match, s.db.Len())

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i := range s.db.Len() {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			flow := s.db.Flow(i)

			positions, ok := matcher.Find(flow, q, s.db)
			if !ok {
				return nil
			}

			if s.filter != nil {
				keep, err := s.filter.Eval(i, flow)
				if err != nil {
					return err
				}

				if !keep {
					return nil
				}
			}

			results[i] = &Match{Index: i, Flow: flow, Positions: positions}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	matches := make([]Match, 0)

	for _, m := range results {
		if m != nil {
			matches = append(matches, *m)
		}
	}

	return matches, nil
}

// Search matches q against every flow of db with default options. A nil db
// has no flows, so the result is empty.
func Search(db *dataflow.Database, q query.Query) []Match {
	matches, err := New(db).Search(context.Background(), q)
	if err != nil {
		return []Match{}
	}

	return matches
}
