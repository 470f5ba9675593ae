package matcher

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shibukawa/flowquery/dataflow"
	"github.com/shibukawa/flowquery/query"
)

func scenarioDatabase() *dataflow.Database {
	return dataflow.NewDatabase([]dataflow.Flow{
		dataflow.NewFlow(
			dataflow.TypeToken{Name: "bool"},
			dataflow.LocationToken{Line: 1, CharRange: dataflow.CharRange{Start: 4, End: 8}},
			dataflow.TypeVarToken{Name: "a1"},
			dataflow.ConstructorArgToken{Name: "Function", ArgIndex: 1, Description: dataflow.Describe("even")},
			dataflow.LocationToken{Line: 3, CharRange: dataflow.CharRange{Start: 3, End: 9}, Description: dataflow.Describe("if-then-else")},
			dataflow.TypeToken{Name: "bool"},
		),
	})
}

func TestMatches_Scenario(t *testing.T) {
	db := scenarioDatabase()
	flow := db.Flow(0)

	tests := []struct {
		query     string
		expected  bool
		positions []int
	}{
		{`bool,"if-then-else"`, true, []int{0, 4}},
		{`"if-then-else",bool`, true, []int{4, 5}},
		{`int`, false, nil},
		{`bool,@Function.1,"if-then-else",bool`, true, []int{0, 3, 4, 5}},
		{`@Function:even,#1`, false, nil},
		{`#1,@Function.1`, true, []int{2, 3}},
		{`#2`, false, nil},
		{`bool,bool,bool`, false, nil},
		{`"even","if-then-else"`, true, []int{3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			q := query.MustCompile(tt.query)

			assert.Equal(t, tt.expected, Matches(flow, q, db))

			positions, ok := Find(flow, q, db)
			assert.Equal(t, tt.expected, ok)
			assert.Equal(t, tt.positions, positions)
		})
	}
}

func TestMatches_EmptyQuery(t *testing.T) {
	db := scenarioDatabase()

	assert.True(t, Matches(db.Flow(0), query.Query{}, db))
	assert.True(t, Matches(dataflow.NewFlow(), query.Query{}, db))
	assert.True(t, Matches(dataflow.NewFlow(), nil, nil))

	positions, ok := Find(dataflow.NewFlow(), query.Query{}, db)
	assert.True(t, ok)
	assert.Equal(t, []int{}, positions)
}

func TestMatches_EmptyFlow(t *testing.T) {
	assert.False(t, Matches(dataflow.NewFlow(), query.MustCompile("bool"), nil))
}

// alphabet is a small token set for exhaustive checks.
var alphabet = []dataflow.Token{
	dataflow.TypeToken{Name: "a"},
	dataflow.TypeToken{Name: "b"},
	dataflow.ConstructorArgToken{Name: "f", ArgIndex: 0},
	dataflow.ConstructorArgToken{Name: "f", ArgIndex: 1, Description: dataflow.Describe("d")},
}

var ops = []query.Op{
	query.ByType{Name: "a"},
	query.ByType{Name: "b"},
	query.ByConstructorArg{Name: "f"},
	query.ByConstructorArg{Name: "f", ArgIndex: query.Index(1)},
	query.ByDescription{Text: "d"},
}

// flowsUpTo enumerates every flow over alphabet with at most n tokens.
func flowsUpTo(n int) []dataflow.Flow {
	result := []dataflow.Flow{dataflow.NewFlow()}
	current := [][]dataflow.Token{{}}

	for range n {
		var next [][]dataflow.Token

		for _, prefix := range current {
			for _, tok := range alphabet {
				tokens := append(append([]dataflow.Token{}, prefix...), tok)
				next = append(next, tokens)
				result = append(result, dataflow.NewFlow(tokens...))
			}
		}

		current = next
	}

	return result
}

func TestMatches_OrderPreservation(t *testing.T) {
	for _, flow := range flowsUpTo(4) {
		for _, p1 := range ops {
			for _, p2 := range ops {
				want := false

				for i := 0; i < flow.Len(); i++ {
					for j := i + 1; j < flow.Len(); j++ {
						if query.Test(flow.At(i), p1, nil) && query.Test(flow.At(j), p2, nil) {
							want = true
						}
					}
				}

				q := query.Query{p1, p2}
				positions, got := Find(flow, q, nil)
				assert.Equal(t, want, got, "flow %v query %s", flow.Tokens(), q)

				if got {
					assert.True(t, positions[0] < positions[1])
					assert.True(t, query.Test(flow.At(positions[0]), p1, nil))
					assert.True(t, query.Test(flow.At(positions[1]), p2, nil))
				}
			}
		}
	}
}

func TestMatches_DegreeConsistency(t *testing.T) {
	db := dataflow.NewDatabase([]dataflow.Flow{
		dataflow.NewFlow(dataflow.TypeVarToken{Name: "x"}, dataflow.TypeVarToken{Name: "x"}, dataflow.TypeVarToken{Name: "y"}),
		dataflow.NewFlow(dataflow.TypeVarToken{Name: "x"}),
		dataflow.NewFlow(dataflow.TypeVarToken{Name: "z"}),
	})

	tests := []struct {
		flow     int
		count    int
		expected bool
	}{
		{0, 2, true},  // x occurs in two flows
		{0, 3, false}, // x occurs three times, but in two flows
		{0, 1, true},  // y
		{1, 2, true},
		{1, 1, false},
		{2, 1, true},
		{2, 0, false},
	}

	for _, tt := range tests {
		q := query.Query{query.ByTypeVarDegree{Count: tt.count}}
		assert.Equal(t, tt.expected, Matches(db.Flow(tt.flow), q, db), "flow %d #%d", tt.flow, tt.count)
	}
}

func TestMatches_Backtracking(t *testing.T) {
	// The first "f" candidate is followed by no "b"; the search must move on
	// to a later "f".
	flow := dataflow.NewFlow(
		dataflow.ConstructorArgToken{Name: "f", ArgIndex: 0},
		dataflow.TypeToken{Name: "a"},
		dataflow.ConstructorArgToken{Name: "f", ArgIndex: 1},
		dataflow.TypeToken{Name: "b"},
	)

	positions, ok := Find(flow, query.MustCompile("@f,a,b"), nil)
	assert.True(t, ok)
	assert.Equal(t, []int{0, 1, 3}, positions)

	positions, ok = Find(flow, query.MustCompile("@f.1,b"), nil)
	assert.True(t, ok)
	assert.Equal(t, []int{2, 3}, positions)

	_, ok = Find(flow, query.MustCompile("b,@f"), nil)
	assert.False(t, ok)
}

func TestMatches_PathologicalInputIsBounded(t *testing.T) {
	tokens := make([]dataflow.Token, 400)
	for i := range tokens {
		tokens[i] = dataflow.TypeToken{Name: "a"}
	}

	q := make(query.Query, 0, 41)
	for range 40 {
		q = append(q, query.ByType{Name: "a"})
	}

	q = append(q, query.ByType{Name: "b"})

	assert.False(t, Matches(dataflow.NewFlow(tokens...), q, nil))
}
