package render

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/beevik/etree"
	"github.com/goccy/go-yaml"
	"github.com/google/uuid"

	"github.com/shibukawa/flowquery/dataflow"
	"github.com/shibukawa/flowquery/search"
	"github.com/shibukawa/flowquery/testhelper"
)

var source = []string{
	"let even x =",
	"  x mod 2 = 0",
	"   ifthen rest",
}

func scenarioMatches(t *testing.T) []search.Match {
	t.Helper()

	return []search.Match{{Index: 0, Flow: testhelper.ScenarioFlow(t), Positions: []int{0, 5}}}
}

func format(t *testing.T, format OutputFormat, options Options, matches []search.Match) string {
	t.Helper()

	f, err := NewFormatter(format, options)
	assert.NoError(t, err)

	var buf bytes.Buffer
	assert.NoError(t, f.Format(matches, &buf))

	return buf.String()
}

func TestFormatText(t *testing.T) {
	got := format(t, FormatText, Options{Source: source, SeparatorWidth: 10}, scenarioMatches(t))

	assert.Equal(t, strings.Join([]string{
		"",
		"━━━━━━━━━━",
		"Matched data flows: 1",
		"",
		"[1] 1:4-8",
		"    1 | let even x =",
		"      |     ^^^^",
		"[2] 3:3-9 if-then-else",
		"    3 |    ifthen rest",
		"      |    ^^^^^^",
		"",
	}, "\n"), got)
}

func TestFormatText_NoMatches(t *testing.T) {
	got := format(t, FormatText, Options{}, nil)
	assert.Equal(t, "\n"+strings.Repeat("━", 80)+"\nNo data flows matched the query.\n\n", got)
}

func TestFormatText_WithoutSourceOrLocations(t *testing.T) {
	matches := []search.Match{
		{Index: 0, Flow: dataflow.NewFlow(dataflow.TypeToken{Name: "int"})},
		{Index: 3, Flow: testhelper.ScenarioFlow(t)},
		{Index: 4, Flow: dataflow.NewFlow(testhelper.Loc(9, 0, 1))},
	}

	got := format(t, FormatText, Options{SeparatorWidth: 3}, matches)

	assert.Equal(t, strings.Join([]string{
		"",
		"━━━",
		"Matched data flows: 3",
		"",
		"No program locations found for this data flow.",
		"[1] 1:4-8",
		"[2] 3:3-9 if-then-else",
		"━━━",
		"[1] 9:0-1",
		"",
	}, "\n"), got)
}

func TestFormatText_Color(t *testing.T) {
	got := format(t, FormatText, Options{Color: true}, nil)
	assert.Contains(t, got, "\x1b[")

	got = format(t, FormatText, Options{Color: false}, nil)
	assert.NotContains(t, got, "\x1b[")
}

func TestCaretSpan(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		r      dataflow.CharRange
		indent int
		length int
	}{
		{"ascii", "let even x", dataflow.CharRange{Start: 4, End: 8}, 4, 4},
		{"wide runes", "型の検査", dataflow.CharRange{Start: 1, End: 3}, 2, 4},
		{"mixed", "a型b", dataflow.CharRange{Start: 2, End: 3}, 3, 1},
		{"empty range", "abc", dataflow.CharRange{Start: 1, End: 1}, 1, 1},
		{"past end of line", "abc", dataflow.CharRange{Start: 5, End: 7}, 5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			indent, length := caretSpan(tt.line, tt.r)
			assert.Equal(t, tt.indent, indent)
			assert.Equal(t, tt.length, length)
		})
	}
}

func TestFormatJSON(t *testing.T) {
	got := format(t, FormatJSON, Options{Query: `bool,"if-then-else"`}, scenarioMatches(t))

	var report Report
	assert.NoError(t, json.Unmarshal([]byte(got), &report))

	_, err := uuid.Parse(report.SearchID)
	assert.NoError(t, err)
	assert.Equal(t, `bool,"if-then-else"`, report.Query)
	assert.Equal(t, 1, report.Matched)
	assert.Equal(t, []int{0, 5}, report.Flows[0].Positions)
	assert.Equal(t, 7, len(report.Flows[0].Tokens))
	assert.True(t, report.Flows[0].Tokens[0].Matched)
	assert.False(t, report.Flows[0].Tokens[1].Matched)
	assert.Equal(t, "Location", report.Flows[0].Tokens[5].Kind)
	assert.Equal(t, "if-then-else", *report.Flows[0].Tokens[5].Desc)
	assert.Equal(t, []string{"a1", "bool"}, report.Flows[0].Tokens[4].Args)
}

func TestFormatJSON_EmptyFlowsIsArray(t *testing.T) {
	got := format(t, FormatJSON, Options{Query: "int"}, nil)
	assert.Contains(t, got, `"flows": []`)
	assert.Contains(t, got, `"matched": 0`)
}

func TestFormatYAML(t *testing.T) {
	got := format(t, FormatYAML, Options{Query: "bool"}, scenarioMatches(t))

	var report Report
	assert.NoError(t, yaml.Unmarshal([]byte(got), &report))
	assert.Equal(t, 1, report.Matched)
	assert.Equal(t, 1, *report.Flows[0].Tokens[3].ArgIndex)
}

func TestFormatXML(t *testing.T) {
	got := format(t, FormatXML, Options{Query: "bool"}, scenarioMatches(t))

	doc := etree.NewDocument()
	assert.NoError(t, doc.ReadFromString(got))

	root := doc.SelectElement("report")
	assert.NotZero(t, root)
	assert.Equal(t, "1", root.SelectAttrValue("matched", ""))
	assert.Equal(t, "bool", root.SelectElement("query").Text())

	flow := root.SelectElement("flows").SelectElement("flow")
	assert.Equal(t, "0", flow.SelectAttrValue("index", ""))
	assert.Equal(t, 2, len(flow.SelectElements("position")))

	tokens := flow.SelectElements("token")
	assert.Equal(t, 7, len(tokens))
	assert.Equal(t, "even", tokens[3].SelectElement("desc").Text())
	assert.Equal(t, "3", tokens[5].SelectAttrValue("line", ""))
	assert.Equal(t, "true", tokens[5].SelectAttrValue("matched", ""))
}

func TestNewFormatter_InvalidFormat(t *testing.T) {
	_, err := NewFormatter("csv", Options{})
	assert.IsError(t, err, ErrInvalidOutputFormat)

	parsed, err := ParseOutputFormat("")
	assert.NoError(t, err)
	assert.Equal(t, FormatText, parsed)
}

func TestReadSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.ml")
	assert.NoError(t, os.WriteFile(path, []byte("a\r\nb\n"), 0o644))

	lines, err := ReadSource(path)
	assert.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, lines)

	_, err = ReadSource(filepath.Join(t.TempDir(), "missing.ml"))
	assert.Error(t, err)
}
