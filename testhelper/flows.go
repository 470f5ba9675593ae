package testhelper

import (
	"testing"

	"github.com/shibukawa/flowquery/dataflow"
)

// Loc builds a LocationToken, with a description when desc is given.
func Loc(line, start, end int, desc ...string) dataflow.LocationToken {
	tok := dataflow.LocationToken{Line: line, CharRange: dataflow.CharRange{Start: start, End: end}}
	if len(desc) > 0 {
		tok.Description = dataflow.Describe(desc[0])
	}

	return tok
}

// ScenarioFlow is the flow of a small program that branches on an "even"
// predicate:
//
//	Type(bool), Location(1:4-8), TypeVar(a1), ConstructorArg(Function, 1, desc="even"),
//	Type(Function[a1, bool]), Location(3:3-9, desc="if-then-else"), Type(bool)
func ScenarioFlow(t *testing.T) dataflow.Flow {
	t.Helper()

	return dataflow.NewFlow(
		dataflow.TypeToken{Name: "bool"},
		Loc(1, 4, 8),
		dataflow.TypeVarToken{Name: "a1"},
		dataflow.ConstructorArgToken{Name: "Function", ArgIndex: 1, Description: dataflow.Describe("even")},
		dataflow.TypeToken{Name: "Function", TypeArgs: []string{"a1", "bool"}},
		Loc(3, 3, 9, "if-then-else"),
		dataflow.TypeToken{Name: "bool"},
	)
}

// ScenarioDatabase holds ScenarioFlow and a second flow without locations
// that shares the type variable a1.
func ScenarioDatabase(t *testing.T) *dataflow.Database {
	t.Helper()

	return dataflow.NewDatabase([]dataflow.Flow{
		ScenarioFlow(t),
		dataflow.NewFlow(
			dataflow.TypeVarToken{Name: "a1"},
			dataflow.TypeToken{Name: "int"},
		),
	})
}
