package main

import (
	"context"
	"fmt"

	"github.com/shibukawa/flowquery"
	"github.com/shibukawa/flowquery/loader"
)

// ImportCmd represents the import command
type ImportCmd struct {
	Data []string `short:"d" required:"" help:"Trace files (JSON/YAML, globs allowed)"`
	DB   string   `long:"db" help:"Flow store URL (sqlite://, postgres://, mysql://)"`
	Env  string   `long:"env" help:"Flow store environment from config"`
}

// Run executes the import command
func (cmd *ImportCmd) Run(ctx *Context) error {
	config, err := flowquery.LoadConfig(ctx.Config)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	paths, err := expandGlobs(cmd.Data)
	if err != nil {
		return err
	}

	ctx.logf("Loading traces: %v", paths)

	db, err := loader.LoadFiles(paths...)
	if err != nil {
		return err
	}

	background := context.Background()

	st, err := openStore(background, ctx, config, cmd.DB, cmd.Env)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Save(background, db); err != nil {
		return err
	}

	ctx.printf("✓ Imported %d flows into the %s flow store", db.Len(), st.Dialect())

	return nil
}
