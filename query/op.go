package query

import (
	"strconv"
	"strings"
)

// Op is a predicate that tests a single token of a flow. The set of
// implementations is closed: ByTypeVarDegree, ByConstructorArg, ByType and
// ByDescription.
type Op interface {
	// String returns the op in query text syntax.
	String() string

	op()
}

// ByTypeVarDegree matches a type variable that occurs in exactly Count
// distinct flows of the database.
type ByTypeVarDegree struct {
	Count int
}

// ByConstructorArg matches a constructor argument by constructor name and,
// when ArgIndex is set, by argument position.
type ByConstructorArg struct {
	Name     string
	ArgIndex *int
	// Description annotates the op; it is not compared against tokens.
	Description *string
}

// ByType matches a type by name.
type ByType struct {
	Name string
	// Description annotates the op; it is not compared against tokens.
	Description *string
}

// ByDescription matches any token whose description equals Text.
type ByDescription struct {
	Text string
}

var (
	_ Op = ByTypeVarDegree{}
	_ Op = ByConstructorArg{}
	_ Op = ByType{}
	_ Op = ByDescription{}
)

func (ByTypeVarDegree) op()  {}
func (ByConstructorArg) op() {}
func (ByType) op()           {}
func (ByDescription) op()    {}

func (o ByTypeVarDegree) String() string {
	return "#" + strconv.Itoa(o.Count)
}

func (o ByConstructorArg) String() string {
	s := "@" + o.Name

	switch {
	case o.ArgIndex != nil:
		s += "." + strconv.Itoa(*o.ArgIndex)
	case o.Description != nil:
		s += ":" + *o.Description
	}

	return s
}

func (o ByType) String() string {
	if o.Description != nil {
		return o.Name + ":" + *o.Description
	}

	return o.Name
}

func (o ByDescription) String() string {
	return `"` + o.Text + `"`
}

// Query is an ordered sequence of ops matched as a subsequence of a flow.
type Query []Op

// String returns the query in canonical query text.
func (q Query) String() string {
	parts := make([]string, len(q))
	for i, op := range q {
		parts[i] = op.String()
	}

	return strings.Join(parts, ",")
}

// Index returns a pointer to i, for building ByConstructorArg values.
func Index(i int) *int {
	return &i
}

// Text returns a pointer to s, for building op descriptions.
func Text(s string) *string {
	return &s
}
