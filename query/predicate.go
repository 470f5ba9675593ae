package query

import "github.com/shibukawa/flowquery/dataflow"

// DegreeSource answers how many distinct flows contain a type variable.
// *dataflow.Database implements it.
type DegreeSource interface {
	Degree(name string) int
}

var _ DegreeSource = (*dataflow.Database)(nil)

// Test reports whether a single token satisfies op. An op only matches its
// corresponding token kind, except ByDescription which looks at the
// description of every kind. Unrelated pairs are a non-match.
func Test(tok dataflow.Token, op Op, degrees DegreeSource) bool {
	switch o := op.(type) {
	case ByDescription:
		desc, ok := tok.Desc()
		return ok && desc == o.Text
	case ByTypeVarDegree:
		tv, ok := tok.(dataflow.TypeVarToken)
		return ok && degrees != nil && degrees.Degree(tv.Name) == o.Count
	case ByConstructorArg:
		ca, ok := tok.(dataflow.ConstructorArgToken)
		if !ok || ca.Name != o.Name {
			return false
		}

		return o.ArgIndex == nil || *o.ArgIndex == ca.ArgIndex
	case ByType:
		t, ok := tok.(dataflow.TypeToken)
		return ok && t.Name == o.Name
	default:
		return false
	}
}
