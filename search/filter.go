package search

import (
	"errors"
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/shibukawa/flowquery/dataflow"
)

// ErrInvalidFilter is returned for a filter expression that does not compile
// or does not evaluate to a bool.
var ErrInvalidFilter = errors.New("invalid filter expression")

// Filter is a compiled CEL expression evaluated against a matched flow.
//
// Variables:
//
//	index         int                 position of the flow in the database
//	types         list(string)        names of the TypeTokens, in order
//	type_vars     list(string)        names of the TypeVarTokens, in order
//	descriptions  list(string)        descriptions of all tokens that have one
//	locations     list(map)           {line, start, end, desc?} per LocationToken
type Filter struct {
	expr    string
	program cel.Program
}

// NewFilter compiles expr.
func NewFilter(expr string) (*Filter, error) {
	env, err := cel.NewEnv(
		cel.Variable("index", cel.IntType),
		cel.Variable("types", cel.ListType(cel.StringType)),
		cel.Variable("type_vars", cel.ListType(cel.StringType)),
		cel.Variable("descriptions", cel.ListType(cel.StringType)),
		cel.Variable("locations", cel.ListType(cel.MapType(cel.StringType, cel.DynType))),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create filter environment: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("%w '%s': %w", ErrInvalidFilter, expr, issues.Err())
	}

	if out := ast.OutputType(); out == nil || !(out.IsExactType(cel.BoolType) || out.IsExactType(cel.DynType)) {
		return nil, fmt.Errorf("%w '%s': result is %v, not bool", ErrInvalidFilter, expr, out)
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("%w '%s': %w", ErrInvalidFilter, expr, err)
	}

	return &Filter{expr: expr, program: program}, nil
}

// String returns the source expression.
func (f *Filter) String() string {
	return f.expr
}

// Eval reports whether the flow at index passes the filter.
func (f *Filter) Eval(index int, flow dataflow.Flow) (bool, error) {
	result, _, err := f.program.Eval(activation(index, flow))
	if err != nil {
		return false, fmt.Errorf("failed to evaluate filter '%s': %w", f.expr, err)
	}

	keep, ok := result.Value().(bool)
	if !ok {
		return false, fmt.Errorf("%w '%s': result is %T, not bool", ErrInvalidFilter, f.expr, result.Value())
	}

	return keep, nil
}

func activation(index int, flow dataflow.Flow) map[string]any {
	var (
		types        = []string{}
		typeVars     = []string{}
		descriptions = []string{}
		locations    = []map[string]any{}
	)

	for _, t := range flow.All() {
		if desc, ok := t.Desc(); ok {
			descriptions = append(descriptions, desc)
		}

		switch tok := t.(type) {
		case dataflow.TypeToken:
			types = append(types, tok.Name)
		case dataflow.TypeVarToken:
			typeVars = append(typeVars, tok.Name)
		case dataflow.LocationToken:
			loc := map[string]any{
				"line":  int64(tok.Line),
				"start": int64(tok.CharRange.Start),
				"end":   int64(tok.CharRange.End),
			}
			if desc, ok := tok.Desc(); ok {
				loc["desc"] = desc
			}

			locations = append(locations, loc)
		}
	}

	return map[string]any{
		"index":        int64(index),
		"types":        types,
		"type_vars":    typeVars,
		"descriptions": descriptions,
		"locations":    locations,
	}
}
