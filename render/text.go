package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/text/width"

	"github.com/shibukawa/flowquery/dataflow"
	"github.com/shibukawa/flowquery/search"
)

type palette struct {
	rule, empty, heading, location, desc, caret *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		rule:     color.New(color.FgHiBlack),
		empty:    color.New(color.FgHiRed),
		heading:  color.New(color.FgHiBlue),
		location: color.New(color.Bold, color.FgYellow),
		desc:     color.New(color.FgCyan),
		caret:    color.New(color.FgHiRed, color.Bold),
	}

	for _, c := range []*color.Color{p.rule, p.empty, p.heading, p.location, p.desc, p.caret} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return p
}

func (f *Formatter) formatAsText(matches []search.Match, output io.Writer) error {
	p := newPalette(f.options.Color)
	rule := strings.Repeat("━", f.options.SeparatorWidth)

	var b strings.Builder

	b.WriteString("\n" + p.rule.Sprint(rule) + "\n")

	if len(matches) == 0 {
		b.WriteString(p.empty.Sprint("No data flows matched the query.") + "\n\n")
	} else {
		fmt.Fprintf(&b, "%s %d\n\n", p.heading.Sprint("Matched data flows:"), len(matches))
	}

	for i, m := range matches {
		locations := m.Flow.Locations()
		if len(locations) == 0 {
			b.WriteString(p.empty.Sprint("No program locations found for this data flow.") + "\n")
			continue
		}

		for n, loc := range locations {
			f.writeLocation(&b, p, n+1, loc)
		}

		if i < len(matches)-1 {
			b.WriteString(p.rule.Sprint(rule) + "\n")
		}
	}

	_, err := io.WriteString(output, b.String())

	return err
}

func (f *Formatter) writeLocation(b *strings.Builder, p palette, n int, loc dataflow.LocationToken) {
	header := fmt.Sprintf("[%d] %d:%d-%d", n, loc.Line, loc.CharRange.Start, loc.CharRange.End)
	b.WriteString(p.location.Sprint(header))

	if desc, ok := loc.Desc(); ok {
		b.WriteString(" " + p.desc.Sprint(desc))
	}

	b.WriteString("\n")

	line, ok := f.sourceLine(loc.Line)
	if !ok {
		return
	}

	gutter := fmt.Sprintf("%5d | ", loc.Line)
	b.WriteString(gutter + line + "\n")

	indent, length := caretSpan(line, loc.CharRange)
	b.WriteString(strings.Repeat(" ", len(gutter)-2) + "| " + strings.Repeat(" ", indent) + p.caret.Sprint(strings.Repeat("^", length)) + "\n")
}

// sourceLine returns the 1-based line of the source, if available.
func (f *Formatter) sourceLine(line int) (string, bool) {
	if line < 1 || line > len(f.options.Source) {
		return "", false
	}

	return f.options.Source[line-1], true
}

// caretSpan converts a rune range of line into display columns. East Asian
// wide and fullwidth runes take two columns, tabs are kept as one. The caret
// is at least one column wide.
func caretSpan(line string, r dataflow.CharRange) (indent, length int) {
	runes := []rune(line)

	for i, ch := range runes {
		if i >= r.End {
			break
		}

		w := runeWidth(ch)
		if i < r.Start {
			indent += w
		} else {
			length += w
		}
	}

	// ranges past the end of the line still point somewhere
	if r.Start > len(runes) {
		indent += r.Start - len(runes)
	}

	if length == 0 {
		length = 1
	}

	return indent, length
}

func runeWidth(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	default:
		return 1
	}
}

// ReadSource reads the analyzed program for showing source lines.
func ReadSource(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read source file: %w", err)
	}

	text := strings.ReplaceAll(string(data), "\r\n", "\n")

	return strings.Split(strings.TrimSuffix(text, "\n"), "\n"), nil
}
