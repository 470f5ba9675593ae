package main

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/shibukawa/flowquery/query"
)

// CompileCmd represents the compile command
type CompileCmd struct {
	Query string `arg:"" help:"Query text"`
}

// Run executes the compile command
func (cmd *CompileCmd) Run(ctx *Context) error {
	q, err := query.Compile(cmd.Query)
	if err != nil {
		return err
	}

	label := color.New(color.Bold, color.FgYellow).Sprint

	for i, op := range q {
		fmt.Fprintf(ctx.Stdout, "%s %s\n", label(fmt.Sprintf("%d:", i+1)), describeOp(op))
	}

	return nil
}

func describeOp(op query.Op) string {
	switch o := op.(type) {
	case query.ByTypeVarDegree:
		return fmt.Sprintf("type variable with degree %d", o.Count)
	case query.ByConstructorArg:
		s := "constructor argument " + o.Name
		if o.ArgIndex != nil {
			s += fmt.Sprintf(" at index %d", *o.ArgIndex)
		}

		if o.Description != nil {
			s += fmt.Sprintf(" (%s)", *o.Description)
		}

		return s
	case query.ByType:
		s := "type " + o.Name
		if o.Description != nil {
			s += fmt.Sprintf(" (%s)", *o.Description)
		}

		return s
	case query.ByDescription:
		return fmt.Sprintf("description %q", o.Text)
	default:
		return op.String()
	}
}
