package dataflow

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestNewDatabase_Indexes(t *testing.T) {
	flows := []Flow{
		NewFlow(
			TypeToken{Name: "bool"},
			TypeVarToken{Name: "a1"},
			TypeVarToken{Name: "a1"},
			TypeToken{Name: "List", TypeArgs: []string{"a"}},
		),
		NewFlow(
			TypeVarToken{Name: "a1"},
			TypeVarToken{Name: "b"},
			TypeToken{Name: "List", TypeArgs: []string{"int"}},
		),
		NewFlow(),
	}

	db := NewDatabase(flows)

	assert.Equal(t, 3, db.Len())
	assert.Equal(t, []string{"List", "bool"}, db.TypeNames())
	assert.Equal(t, []string{"a1", "b"}, db.TypeVars())
	assert.True(t, db.HasTypeVar("b"))
	assert.False(t, db.HasTypeVar("c"))

	list, ok := db.Type("List")
	assert.True(t, ok)
	assert.Equal(t, []string{"int"}, list.TypeArgs)

	_, ok = db.Type("int")
	assert.False(t, ok)
}

func TestDatabase_DegreeCountsDistinctFlows(t *testing.T) {
	db := NewDatabase([]Flow{
		NewFlow(TypeVarToken{Name: "a"}, TypeVarToken{Name: "a"}, TypeVarToken{Name: "a"}),
		NewFlow(TypeVarToken{Name: "a"}, TypeVarToken{Name: "b"}),
		NewFlow(TypeToken{Name: "a"}),
	})

	tests := []struct {
		name     string
		typeVar  string
		expected int
	}{
		{"repeated in one flow and present in another", "a", 2},
		{"single flow", "b", 1},
		{"type token with same name does not count", "missing", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, db.Degree(tt.typeVar))
		})
	}
}

func TestDatabase_IsolatedFromCaller(t *testing.T) {
	tokens := []Token{TypeToken{Name: "bool"}}
	flow := NewFlow(tokens...)
	tokens[0] = TypeToken{Name: "int"}

	flows := []Flow{flow}
	db := NewDatabase(flows)
	flows[0] = NewFlow()

	assert.Equal(t, 1, db.Flow(0).Len())
	assert.Equal(t, Token(TypeToken{Name: "bool"}), db.Flow(0).At(0))

	got := db.Flow(0).Tokens()
	got[0] = TypeVarToken{Name: "x"}
	assert.Equal(t, Token(TypeToken{Name: "bool"}), db.Flow(0).At(0))
}

func TestFlow_Locations(t *testing.T) {
	flow := NewFlow(
		TypeToken{Name: "bool"},
		LocationToken{Line: 3, CharRange: CharRange{Start: 4, End: 9}},
		TypeVarToken{Name: "a"},
		LocationToken{Line: 7, CharRange: CharRange{Start: 0, End: 2}, Description: Describe("if-then-else")},
	)

	locs := flow.Locations()
	assert.Equal(t, 2, len(locs))
	assert.Equal(t, 3, locs[0].Line)
	assert.Equal(t, 5, locs[0].CharRange.Len())

	desc, ok := locs[1].Desc()
	assert.True(t, ok)
	assert.Equal(t, "if-then-else", desc)

	_, ok = locs[0].Desc()
	assert.False(t, ok)

	assert.Equal(t, 0, len(NewFlow(TypeToken{Name: "int"}).Locations()))
}

func TestToken_String(t *testing.T) {
	tests := []struct {
		token    Token
		expected string
	}{
		{TypeToken{Name: "List", TypeArgs: []string{"a", "b"}}, "Type(List[a, b])"},
		{ConstructorArgToken{Name: "Function", ArgIndex: 1, Description: Describe("even")}, `ConstructorArg(Function, 1, desc="even")`},
		{TypeVarToken{Name: "a1"}, "TypeVar(a1)"},
		{LocationToken{Line: 2, CharRange: CharRange{Start: 3, End: 5}}, "Location(2:3-5)"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.token.String())
		})
	}
}
