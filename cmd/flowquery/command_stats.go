package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"

	"github.com/shibukawa/flowquery"
)

// StatsCmd represents the stats command
type StatsCmd struct {
	DataSource `embed:""`
}

// Run executes the stats command
func (cmd *StatsCmd) Run(ctx *Context) error {
	config, err := flowquery.LoadConfig(ctx.Config)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := cmd.load(context.Background(), ctx, config)
	if err != nil {
		return err
	}

	label := color.New(color.Bold, color.FgYellow).Sprint

	tokens := 0
	for _, flow := range db.Flows() {
		tokens += flow.Len()
	}

	fmt.Fprintf(ctx.Stdout, "%s %d\n", label("Flows:"), db.Len())
	fmt.Fprintf(ctx.Stdout, "%s %d\n", label("Tokens:"), tokens)
	fmt.Fprintf(ctx.Stdout, "%s %d\n", label("Types:"), len(db.TypeNames()))

	typeVars := db.TypeVars()
	fmt.Fprintf(ctx.Stdout, "%s %d\n", label("Type variables:"), len(typeVars))

	for _, name := range typeVars {
		fmt.Fprintf(ctx.Stdout, "  %s: degree %d\n", name, db.Degree(name))
	}

	return nil
}
