// Package render writes search results for people and for tools.
package render

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shibukawa/flowquery/search"
)

// ErrInvalidOutputFormat is returned for an unknown format name.
var ErrInvalidOutputFormat = errors.New("invalid output format")

// OutputFormat is the encoding of rendered results.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatYAML OutputFormat = "yaml"
	FormatXML  OutputFormat = "xml"
)

// ParseOutputFormat validates a format name. The empty string means text.
func ParseOutputFormat(name string) (OutputFormat, error) {
	switch format := OutputFormat(strings.ToLower(name)); format {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatYAML, FormatXML:
		return format, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidOutputFormat, name)
	}
}

// Options controls rendering.
type Options struct {
	// Query is the query text echoed in reports.
	Query string
	// Source holds the lines of the analyzed program. Nil when unavailable.
	Source []string
	// Color enables ANSI colors in text output.
	Color bool
	// SeparatorWidth is the width of the rule between flows. Zero means 80.
	SeparatorWidth int
}

// Formatter formats search results
type Formatter struct {
	format  OutputFormat
	options Options
}

// NewFormatter creates a new result formatter
func NewFormatter(format OutputFormat, options Options) (*Formatter, error) {
	if _, err := ParseOutputFormat(string(format)); err != nil {
		return nil, err
	}

	if format == "" {
		format = FormatText
	}

	if options.SeparatorWidth <= 0 {
		options.SeparatorWidth = 80
	}

	return &Formatter{format: format, options: options}, nil
}

// Format writes matches according to the formatter's format
func (f *Formatter) Format(matches []search.Match, output io.Writer) error {
	switch f.format {
	case FormatText:
		return f.formatAsText(matches, output)
	case FormatJSON:
		return f.formatAsJSON(matches, output)
	case FormatYAML:
		return f.formatAsYAML(matches, output)
	case FormatXML:
		return f.formatAsXML(matches, output)
	default:
		return fmt.Errorf("%w: %s", ErrInvalidOutputFormat, f.format)
	}
}
