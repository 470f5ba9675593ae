package loader

import (
	"errors"
	"fmt"

	"github.com/shibukawa/flowquery/dataflow"
)

// traceFile is the on-disk shape of a trace. Either Dataflow (one flow) or
// Dataflows (several flows) is set.
type traceFile struct {
	Dataflow  []step   `json:"dataflow,omitempty" yaml:"dataflow,omitempty"`
	Dataflows [][]step `json:"dataflows" yaml:"dataflows"`
}

// step is one externally tagged entry of a flow. Exactly one field is set.
type step struct {
	Type           *typeStep           `json:"Type,omitempty" yaml:"Type,omitempty"`
	ConstructorArg *constructorArgStep `json:"ConstructorArg,omitempty" yaml:"ConstructorArg,omitempty"`
	TypeVar        *typeVarStep        `json:"TypeVar,omitempty" yaml:"TypeVar,omitempty"`
	ProgLoc        *progLocStep        `json:"ProgLoc,omitempty" yaml:"ProgLoc,omitempty"`
}

type typeStep struct {
	Name *string  `json:"name" yaml:"name"`
	Args []string `json:"args" yaml:"args"`
	Desc *string  `json:"desc,omitempty" yaml:"desc,omitempty"`
}

type constructorArgStep struct {
	Name     *string `json:"name" yaml:"name"`
	ArgIndex *int    `json:"arg_index" yaml:"arg_index"`
	Desc     *string `json:"desc,omitempty" yaml:"desc,omitempty"`
}

type typeVarStep struct {
	Name *string `json:"name" yaml:"name"`
	Desc *string `json:"desc,omitempty" yaml:"desc,omitempty"`
}

type progLocStep struct {
	Line      *int    `json:"line" yaml:"line"`
	CharRange []int   `json:"char_range" yaml:"char_range"`
	Desc      *string `json:"desc,omitempty" yaml:"desc,omitempty"`
}

var (
	errNoStepKind       = errors.New("step has no kind (expected Type, ConstructorArg, TypeVar or ProgLoc)")
	errManyStepKinds    = errors.New("step has more than one kind")
	errMissingName      = errors.New("missing name")
	errMissingArgIndex  = errors.New("missing arg_index")
	errNegativeArgIndex = errors.New("arg_index must not be negative")
	errMissingLine      = errors.New("missing line")
	errNegativeLine     = errors.New("line must not be negative")
	errCharRange        = errors.New("char_range must be [start, end] with 0 <= start <= end")
)

func (f traceFile) flows() ([][]step, error) {
	switch {
	case f.Dataflow != nil && f.Dataflows != nil:
		return nil, errors.New("both dataflow and dataflows are set")
	case f.Dataflow != nil:
		return [][]step{f.Dataflow}, nil
	case f.Dataflows != nil:
		return f.Dataflows, nil
	default:
		return nil, errors.New("neither dataflow nor dataflows is set")
	}
}

func (s step) toToken() (dataflow.Token, error) {
	kinds := 0

	for _, set := range []bool{s.Type != nil, s.ConstructorArg != nil, s.TypeVar != nil, s.ProgLoc != nil} {
		if set {
			kinds++
		}
	}

	switch {
	case kinds == 0:
		return nil, errNoStepKind
	case kinds > 1:
		return nil, errManyStepKinds
	}

	switch {
	case s.Type != nil:
		if s.Type.Name == nil {
			return nil, fmt.Errorf("Type: %w", errMissingName)
		}

		var args []string
		if len(s.Type.Args) > 0 {
			args = append(args, s.Type.Args...)
		}

		return dataflow.TypeToken{Name: *s.Type.Name, TypeArgs: args, Description: s.Type.Desc}, nil

	case s.ConstructorArg != nil:
		c := s.ConstructorArg
		switch {
		case c.Name == nil:
			return nil, fmt.Errorf("ConstructorArg: %w", errMissingName)
		case c.ArgIndex == nil:
			return nil, fmt.Errorf("ConstructorArg: %w", errMissingArgIndex)
		case *c.ArgIndex < 0:
			return nil, fmt.Errorf("ConstructorArg: %w", errNegativeArgIndex)
		}

		return dataflow.ConstructorArgToken{Name: *c.Name, ArgIndex: *c.ArgIndex, Description: c.Desc}, nil

	case s.TypeVar != nil:
		if s.TypeVar.Name == nil {
			return nil, fmt.Errorf("TypeVar: %w", errMissingName)
		}

		return dataflow.TypeVarToken{Name: *s.TypeVar.Name, Description: s.TypeVar.Desc}, nil

	default:
		p := s.ProgLoc
		switch {
		case p.Line == nil:
			return nil, fmt.Errorf("ProgLoc: %w", errMissingLine)
		case *p.Line < 0:
			return nil, fmt.Errorf("ProgLoc: %w", errNegativeLine)
		case len(p.CharRange) != 2 || p.CharRange[0] < 0 || p.CharRange[0] > p.CharRange[1]:
			return nil, fmt.Errorf("ProgLoc: %w, got %v", errCharRange, p.CharRange)
		}

		return dataflow.LocationToken{
			Line:        *p.Line,
			CharRange:   dataflow.CharRange{Start: p.CharRange[0], End: p.CharRange[1]},
			Description: p.Desc,
		}, nil
	}
}

func fromToken(t dataflow.Token) step {
	switch tok := t.(type) {
	case dataflow.TypeToken:
		return step{Type: &typeStep{Name: &tok.Name, Args: nonNil(tok.TypeArgs), Desc: tok.Description}}
	case dataflow.ConstructorArgToken:
		return step{ConstructorArg: &constructorArgStep{Name: &tok.Name, ArgIndex: &tok.ArgIndex, Desc: tok.Description}}
	case dataflow.TypeVarToken:
		return step{TypeVar: &typeVarStep{Name: &tok.Name, Desc: tok.Description}}
	case dataflow.LocationToken:
		return step{ProgLoc: &progLocStep{
			Line:      &tok.Line,
			CharRange: []int{tok.CharRange.Start, tok.CharRange.End},
			Desc:      tok.Description,
		}}
	default:
		panic(fmt.Sprintf("unknown token type %T", t))
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}

	return s
}
