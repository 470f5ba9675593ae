package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/shibukawa/flowquery"
	"github.com/shibukawa/flowquery/query"
	"github.com/shibukawa/flowquery/render"
	"github.com/shibukawa/flowquery/search"
)

// SearchCmd represents the search command
type SearchCmd struct {
	DataSource `embed:""`

	Query     string `arg:"" optional:"" help:"Query text, e.g. 'bool,@Tuple.1,\"if-then-else\"'"`
	QueryFile string `long:"query-file" help:"Structured query file (YAML/JSON)" type:"path"`
	Source    string `long:"source" help:"Source file of the analyzed program" type:"path"`
	Where     string `long:"where" help:"CEL expression a matched flow must satisfy"`
	Format    string `long:"format" short:"f" help:"Output format (text, json, yaml, xml)"`
	Workers   int    `long:"workers" help:"Number of flows matched in parallel (0 means CPU count)"`
	NoColor   bool   `long:"no-color" help:"Disable colored output"`
}

// Run executes the search command
func (cmd *SearchCmd) Run(ctx *Context) error {
	config, err := flowquery.LoadConfig(ctx.Config)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	queryText, q, err := cmd.compileQuery(ctx)
	if err != nil {
		return err
	}

	ctx.logf("Query: %s", q)

	format, err := render.ParseOutputFormat(firstNonEmpty(cmd.Format, config.Search.DefaultFormat))
	if err != nil {
		return err
	}

	options := []search.Option{search.WithWorkers(firstPositive(cmd.Workers, config.Search.Workers))}

	if where := firstNonEmpty(cmd.Where, config.Search.Filter); where != "" {
		filter, err := search.NewFilter(where)
		if err != nil {
			return err
		}

		options = append(options, search.WithFilter(filter))
	}

	renderOptions := render.Options{
		Query:          queryText,
		Color:          cmd.useColor(ctx, config.Render.Color),
		SeparatorWidth: config.Render.SeparatorWidth,
	}

	if sourcePath := firstNonEmpty(cmd.Source, config.Source); sourcePath != "" {
		renderOptions.Source, err = render.ReadSource(sourcePath)
		if err != nil {
			return err
		}
	}

	formatter, err := render.NewFormatter(format, renderOptions)
	if err != nil {
		return err
	}

	background := context.Background()

	db, err := cmd.load(background, ctx, config)
	if err != nil {
		return err
	}

	start := time.Now()

	matches, err := search.New(db, options...).Search(background, q)
	if err != nil {
		return err
	}

	ctx.logf("Matched %d of %d flows in %v", len(matches), db.Len(), time.Since(start))

	return formatter.Format(matches, ctx.Stdout)
}

// compileQuery takes the query from the argument, the query file or stdin,
// in that order.
func (cmd *SearchCmd) compileQuery(ctx *Context) (string, query.Query, error) {
	switch {
	case cmd.Query != "" && cmd.QueryFile != "":
		return "", nil, ErrConflictingQueries

	case cmd.QueryFile != "":
		q, err := query.LoadFile(cmd.QueryFile)
		if err != nil {
			return "", nil, err
		}

		return q.String(), q, nil

	case cmd.Query != "":
		q, err := query.Compile(cmd.Query)
		return cmd.Query, q, err
	}

	text, err := readStdinQuery(ctx.Stdin)
	if err != nil {
		return "", nil, err
	}

	q, err := query.Compile(text)

	return text, q, err
}

// readStdinQuery reads the query from piped input. An interactive terminal is
// not read.
func readStdinQuery(stdin io.Reader) (string, error) {
	if stdin == nil {
		return "", ErrNoQuery
	}

	if f, ok := stdin.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return "", ErrNoQuery
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read query from stdin: %w", err)
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", ErrNoQuery
	}

	return text, nil
}

func (cmd *SearchCmd) useColor(ctx *Context, mode string) bool {
	if cmd.NoColor {
		return false
	}

	switch mode {
	case flowquery.ColorAlways:
		return true
	case flowquery.ColorNever:
		return false
	}

	if color.NoColor || ctx.Stdout != color.Output {
		return false
	}

	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}

	return 0
}
