package render

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/beevik/etree"
	"github.com/goccy/go-yaml"
	"github.com/google/uuid"

	"github.com/shibukawa/flowquery/dataflow"
	"github.com/shibukawa/flowquery/search"
)

// Report is the machine-readable form of a search result.
type Report struct {
	SearchID string       `json:"search_id" yaml:"search_id"`
	Query    string       `json:"query" yaml:"query"`
	Matched  int          `json:"matched" yaml:"matched"`
	Flows    []FlowReport `json:"flows" yaml:"flows"`
}

// FlowReport is one matched flow.
type FlowReport struct {
	Index     int           `json:"index" yaml:"index"`
	Positions []int         `json:"positions" yaml:"positions"`
	Tokens    []TokenReport `json:"tokens" yaml:"tokens"`
}

// TokenReport is one token of a matched flow. Matched is set on the tokens
// chosen by the query's ops.
type TokenReport struct {
	Kind     string   `json:"kind" yaml:"kind"`
	Name     string   `json:"name,omitempty" yaml:"name,omitempty"`
	Args     []string `json:"args,omitempty" yaml:"args,omitempty"`
	ArgIndex *int     `json:"arg_index,omitempty" yaml:"arg_index,omitempty"`
	Line     *int     `json:"line,omitempty" yaml:"line,omitempty"`
	Start    *int     `json:"start,omitempty" yaml:"start,omitempty"`
	End      *int     `json:"end,omitempty" yaml:"end,omitempty"`
	Desc     *string  `json:"desc,omitempty" yaml:"desc,omitempty"`
	Matched  bool     `json:"matched,omitempty" yaml:"matched,omitempty"`
}

// NewReport builds a report with a fresh search ID.
func NewReport(queryText string, matches []search.Match) Report {
	report := Report{
		SearchID: uuid.NewString(),
		Query:    queryText,
		Matched:  len(matches),
		Flows:    make([]FlowReport, 0, len(matches)),
	}

	for _, m := range matches {
		flow := FlowReport{
			Index:     m.Index,
			Positions: slices.Clone(m.Positions),
			Tokens:    make([]TokenReport, 0, m.Flow.Len()),
		}

		for i, tok := range m.Flow.All() {
			t := tokenReport(tok)
			t.Matched = slices.Contains(m.Positions, i)
			flow.Tokens = append(flow.Tokens, t)
		}

		report.Flows = append(report.Flows, flow)
	}

	return report
}

func tokenReport(t dataflow.Token) TokenReport {
	r := TokenReport{Kind: t.Kind().String()}

	if desc, ok := t.Desc(); ok {
		r.Desc = &desc
	}

	switch tok := t.(type) {
	case dataflow.TypeToken:
		r.Name = tok.Name
		r.Args = slices.Clone(tok.TypeArgs)
	case dataflow.ConstructorArgToken:
		r.Name = tok.Name
		r.ArgIndex = &tok.ArgIndex
	case dataflow.TypeVarToken:
		r.Name = tok.Name
	case dataflow.LocationToken:
		r.Line = &tok.Line
		r.Start = &tok.CharRange.Start
		r.End = &tok.CharRange.End
	}

	return r
}

func (f *Formatter) formatAsJSON(matches []search.Match, output io.Writer) error {
	encoder := json.NewEncoder(output)
	encoder.SetIndent("", "  ")

	return encoder.Encode(NewReport(f.options.Query, matches))
}

func (f *Formatter) formatAsYAML(matches []search.Match, output io.Writer) error {
	data, err := yaml.Marshal(NewReport(f.options.Query, matches))
	if err != nil {
		return fmt.Errorf("failed to marshal results to YAML: %w", err)
	}

	_, err = output.Write(data)

	return err
}

func (f *Formatter) formatAsXML(matches []search.Match, output io.Writer) error {
	report := NewReport(f.options.Query, matches)

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("report")
	root.CreateAttr("search_id", report.SearchID)
	root.CreateAttr("matched", strconv.Itoa(report.Matched))
	root.CreateElement("query").SetText(report.Query)

	flows := root.CreateElement("flows")

	for _, fr := range report.Flows {
		flow := flows.CreateElement("flow")
		flow.CreateAttr("index", strconv.Itoa(fr.Index))

		for _, p := range fr.Positions {
			flow.CreateElement("position").SetText(strconv.Itoa(p))
		}

		for _, tr := range fr.Tokens {
			tok := flow.CreateElement("token")
			tok.CreateAttr("kind", tr.Kind)

			if tr.Name != "" {
				tok.CreateAttr("name", tr.Name)
			}

			optionalAttr(tok, "arg_index", tr.ArgIndex)
			optionalAttr(tok, "line", tr.Line)
			optionalAttr(tok, "start", tr.Start)
			optionalAttr(tok, "end", tr.End)

			if tr.Matched {
				tok.CreateAttr("matched", "true")
			}

			for _, arg := range tr.Args {
				tok.CreateElement("arg").SetText(arg)
			}

			if tr.Desc != nil {
				tok.CreateElement("desc").SetText(*tr.Desc)
			}
		}
	}

	doc.Indent(2)

	_, err := doc.WriteTo(output)

	return err
}

func optionalAttr(el *etree.Element, key string, value *int) {
	if value != nil {
		el.CreateAttr(key, strconv.Itoa(*value))
	}
}
