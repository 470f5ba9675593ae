package dataflow

import (
	"fmt"
	"strings"
)

// Kind identifies the variant of a Token.
type Kind int

const (
	KindType Kind = iota
	KindConstructorArg
	KindTypeVar
	KindLocation
)

// String returns the string representation of Kind
func (k Kind) String() string {
	switch k {
	case KindType:
		return "Type"
	case KindConstructorArg:
		return "ConstructorArg"
	case KindTypeVar:
		return "TypeVar"
	case KindLocation:
		return "Location"
	default:
		return "Unknown"
	}
}

// Token is one step of a data flow. The set of implementations is closed:
// TypeToken, ConstructorArgToken, TypeVarToken and LocationToken.
type Token interface {
	Kind() Kind
	// Desc returns the free-text description attached by the extraction tool.
	Desc() (string, bool)
	String() string

	token()
}

// TypeToken is an occurrence of a concrete or abstract type.
type TypeToken struct {
	Name        string
	TypeArgs    []string
	Description *string
}

// ConstructorArgToken identifies which positional argument of a named
// constructor a flow passes through.
type ConstructorArgToken struct {
	Name        string
	ArgIndex    int
	Description *string
}

// TypeVarToken is an occurrence of a type variable.
type TypeVarToken struct {
	Name        string
	Description *string
}

// CharRange is a half-open, 0-based character range [Start, End).
type CharRange struct {
	Start int
	End   int
}

// Len returns the number of characters covered by the range.
func (r CharRange) Len() int {
	return r.End - r.Start
}

// LocationToken is a source code position associated with a step.
type LocationToken struct {
	Line        int
	CharRange   CharRange
	Description *string
}

var (
	_ Token = TypeToken{}
	_ Token = ConstructorArgToken{}
	_ Token = TypeVarToken{}
	_ Token = LocationToken{}
)

func (TypeToken) token()           {}
func (ConstructorArgToken) token() {}
func (TypeVarToken) token()        {}
func (LocationToken) token()       {}

func (TypeToken) Kind() Kind           { return KindType }
func (ConstructorArgToken) Kind() Kind { return KindConstructorArg }
func (TypeVarToken) Kind() Kind        { return KindTypeVar }
func (LocationToken) Kind() Kind       { return KindLocation }

func (t TypeToken) Desc() (string, bool)           { return deref(t.Description) }
func (t ConstructorArgToken) Desc() (string, bool) { return deref(t.Description) }
func (t TypeVarToken) Desc() (string, bool)        { return deref(t.Description) }
func (t LocationToken) Desc() (string, bool)       { return deref(t.Description) }

func (t TypeToken) String() string {
	s := "Type(" + t.Name
	if len(t.TypeArgs) > 0 {
		s += "[" + strings.Join(t.TypeArgs, ", ") + "]"
	}

	return s + descSuffix(t.Description) + ")"
}

func (t ConstructorArgToken) String() string {
	return fmt.Sprintf("ConstructorArg(%s, %d%s)", t.Name, t.ArgIndex, descSuffix(t.Description))
}

func (t TypeVarToken) String() string {
	return "TypeVar(" + t.Name + descSuffix(t.Description) + ")"
}

func (t LocationToken) String() string {
	return fmt.Sprintf("Location(%d:%d-%d%s)", t.Line, t.CharRange.Start, t.CharRange.End, descSuffix(t.Description))
}

// Describe returns a pointer to desc, for building tokens with a description.
func Describe(desc string) *string {
	return &desc
}

func deref(s *string) (string, bool) {
	if s == nil {
		return "", false
	}

	return *s, true
}

func descSuffix(s *string) string {
	if s == nil {
		return ""
	}

	return fmt.Sprintf(", desc=%q", *s)
}
