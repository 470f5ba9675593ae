package query

import (
	"fmt"
	"os"
	"reflect"

	"github.com/goccy/go-yaml"
)

// queryFile is a structured query, read from YAML or JSON. Either Query holds
// query text, or Ops lists one op per entry.
type queryFile struct {
	Query string   `yaml:"query"`
	Ops   []fileOp `yaml:"ops"`
}

type fileOp struct {
	Type           *typeSpec           `yaml:"type"`
	ConstructorArg *constructorArgSpec `yaml:"constructor_arg"`
	TypeVarDegree  *int                `yaml:"type_var_degree"`
	Description    *string             `yaml:"description"`
}

// typeSpec accepts either a bare name or {name, description}.
type typeSpec struct {
	Name        string  `yaml:"name"`
	Description *string `yaml:"description"`
}

func (s *typeSpec) UnmarshalYAML(unmarshal func(any) error) error {
	var name string
	if err := unmarshal(&name); err == nil {
		s.Name = name
		return nil
	}

	type plain typeSpec

	return unmarshal((*plain)(s))
}

// constructorArgSpec accepts either a bare name or {name, arg_index, description}.
type constructorArgSpec struct {
	Name        string  `yaml:"name"`
	ArgIndex    *int    `yaml:"arg_index"`
	Description *string `yaml:"description"`
}

func (s *constructorArgSpec) UnmarshalYAML(unmarshal func(any) error) error {
	var name string
	if err := unmarshal(&name); err == nil {
		s.Name = name
		return nil
	}

	type plain constructorArgSpec

	return unmarshal((*plain)(s))
}

// LoadFile reads a structured query file.
func LoadFile(path string) (Query, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryFileUnavailable, err)
	}

	q, err := ParseFile(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return q, nil
}

// ParseFile parses the contents of a structured query file. JSON is accepted
// as YAML.
func ParseFile(data []byte) (Query, error) {
	var file queryFile

	err := yaml.UnmarshalWithOptions(data, &file, yaml.Strict())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidQueryFile, err)
	}

	switch {
	case file.Query != "" && len(file.Ops) > 0:
		return nil, fmt.Errorf("%w: query and ops are mutually exclusive", ErrInvalidQueryFile)
	case file.Query != "":
		return Compile(file.Query)
	case len(file.Ops) == 0:
		return nil, &CompileError{Reason: ErrEmptyQuery}
	}

	q := make(Query, 0, len(file.Ops))

	for i, entry := range file.Ops {
		op, err := entry.toOp()
		if err != nil {
			return nil, fmt.Errorf("%w: ops[%d]: %w", ErrInvalidQueryFile, i, err)
		}

		q = append(q, op)
	}

	return q, nil
}

func (f fileOp) toOp() (Op, error) {
	var (
		ops   []Op
		errs  []error
		check = func(cond bool, err error) {
			if !cond {
				errs = append(errs, err)
			}
		}
	)

	if f.Type != nil {
		check(f.Type.Name != "", fmt.Errorf("%w: type name is missing", ErrInvalidType))
		ops = append(ops, ByType{Name: f.Type.Name, Description: f.Type.Description})
	}

	if f.ConstructorArg != nil {
		check(f.ConstructorArg.Name != "", fmt.Errorf("%w: constructor name is missing", ErrInvalidConstructorArg))
		check(f.ConstructorArg.ArgIndex == nil || *f.ConstructorArg.ArgIndex >= 0, fmt.Errorf("%w: argument index must be non-negative", ErrInvalidConstructorArg))
		ops = append(ops, ByConstructorArg{Name: f.ConstructorArg.Name, ArgIndex: f.ConstructorArg.ArgIndex, Description: f.ConstructorArg.Description})
	}

	if f.TypeVarDegree != nil {
		check(*f.TypeVarDegree >= 0, fmt.Errorf("%w: count must be non-negative", ErrInvalidTypeVarCount))
		ops = append(ops, ByTypeVarDegree{Count: *f.TypeVarDegree})
	}

	if f.Description != nil {
		ops = append(ops, ByDescription{Text: *f.Description})
	}

	if len(errs) > 0 {
		return nil, errs[0]
	}

	if len(ops) != 1 {
		return nil, fmt.Errorf("each entry needs exactly one of type, constructor_arg, type_var_degree, description (got %d)", len(ops))
	}

	if ca, ok := ops[0].(ByConstructorArg); ok && ca.ArgIndex != nil && ca.Description != nil {
		return nil, fmt.Errorf("%w: arg_index and description are mutually exclusive", ErrInvalidConstructorArg)
	}

	if !writable(ops[0]) {
		return nil, fmt.Errorf("%w: %s cannot be written as query text", invalidOpError(ops[0]), ops[0])
	}

	return ops[0], nil
}

// writable reports whether op compiles back from its own query text, so a
// query read from a file renders like a compiled one.
func writable(op Op) bool {
	q, err := Compile(op.String())
	return err == nil && len(q) == 1 && reflect.DeepEqual(q[0], op)
}

func invalidOpError(op Op) error {
	switch op.(type) {
	case ByType:
		return ErrInvalidType
	case ByConstructorArg:
		return ErrInvalidConstructorArg
	case ByDescription:
		return ErrInvalidDescription
	default:
		return ErrInvalidTypeVarCount
	}
}
