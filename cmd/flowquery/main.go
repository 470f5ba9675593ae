package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"
)

const version = "v0.1.0"

// Context represents the global context for commands
type Context struct {
	Config  string
	Verbose bool
	Quiet   bool
	Stdin   io.Reader
	Stdout  io.Writer
}

// logf prints a diagnostic to stderr when verbose output is enabled.
func (c *Context) logf(format string, args ...any) {
	if c.Verbose && !c.Quiet {
		fmt.Fprintln(color.Error, color.BlueString(format, args...))
	}
}

// printf prints a status line unless quiet.
func (c *Context) printf(format string, args ...any) {
	if !c.Quiet {
		fmt.Fprintln(c.Stdout, color.GreenString(format, args...))
	}
}

var CLI struct {
	Config  string     `help:"Configuration file path" default:"flowquery.yaml"`
	Verbose bool       `help:"Enable verbose output" short:"v"`
	Quiet   bool       `help:"Suppress output" short:"q"`
	Search  SearchCmd  `cmd:"" help:"Search data flows with a query"`
	Compile CompileCmd `cmd:"" help:"Compile a query and print its predicates"`
	Import  ImportCmd  `cmd:"" help:"Import trace files into a flow store"`
	Export  ExportCmd  `cmd:"" help:"Export a flow store as a trace file"`
	Stats   StatsCmd   `cmd:"" help:"Show statistics of a flow collection"`
	Version VersionCmd `cmd:"" help:"Show version information"`
}

// VersionCmd represents the version command
type VersionCmd struct{}

// Run executes the version command
func (cmd *VersionCmd) Run(ctx *Context) error {
	fmt.Fprintln(ctx.Stdout, "flowquery "+version)
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("flowquery"),
		kong.Description("Search data-flow traces of a program with a compact query language."),
	)

	appCtx := &Context{
		Config:  CLI.Config,
		Verbose: CLI.Verbose,
		Quiet:   CLI.Quiet,
		Stdin:   os.Stdin,
		Stdout:  color.Output,
	}

	err := ctx.Run(appCtx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
