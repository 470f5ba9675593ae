package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/shibukawa/flowquery"
	"github.com/shibukawa/flowquery/loader"
)

// ExportCmd represents the export command
type ExportCmd struct {
	DB     string `long:"db" help:"Flow store URL (sqlite://, postgres://, mysql://)"`
	Env    string `long:"env" help:"Flow store environment from config"`
	Output string `short:"o" long:"output" help:"Output file (defaults to stdout)" type:"path"`
	Format string `long:"format" short:"f" help:"Trace format (json, yaml); defaults to the output extension, then json"`
}

// Run executes the export command
func (cmd *ExportCmd) Run(ctx *Context) error {
	config, err := flowquery.LoadConfig(ctx.Config)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	format, err := cmd.format()
	if err != nil {
		return err
	}

	background := context.Background()

	st, err := openStore(background, ctx, config, cmd.DB, cmd.Env)
	if err != nil {
		return err
	}
	defer st.Close()

	db, err := st.Load(background)
	if err != nil {
		return err
	}

	if cmd.Output == "" {
		return loader.Encode(ctx.Stdout, db, format)
	}

	f, err := os.Create(cmd.Output)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if err := writeAndClose(f, func(w io.Writer) error { return loader.Encode(w, db, format) }); err != nil {
		return fmt.Errorf("failed to write %s: %w", cmd.Output, err)
	}

	ctx.printf("✓ Exported %d flows to %s", db.Len(), cmd.Output)

	return nil
}

// writeAndClose runs write against w and closes it. The close error is
// returned when the write itself succeeded.
func writeAndClose(w io.WriteCloser, write func(io.Writer) error) error {
	if err := write(w); err != nil {
		w.Close()
		return err
	}

	return w.Close()
}

func (cmd *ExportCmd) format() (loader.Format, error) {
	switch {
	case cmd.Format != "":
		switch format := loader.Format(cmd.Format); format {
		case loader.FormatJSON, loader.FormatYAML:
			return format, nil
		default:
			return "", fmt.Errorf("%w: %s", loader.ErrUnsupportedFormat, cmd.Format)
		}
	case cmd.Output != "":
		return loader.FormatFromPath(cmd.Output)
	default:
		return loader.FormatJSON, nil
	}
}
