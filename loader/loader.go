// Package loader reads serialized data-flow traces into a dataflow.Database.
//
// A trace file holds one flow under "dataflow" or several under "dataflows".
// Each step is an object keyed by its kind:
//
//	{"dataflow": [
//	  {"Type": {"name": "bool", "args": []}},
//	  {"ProgLoc": {"line": 3, "char_range": [3, 9], "desc": "if-then-else"}},
//	  {"TypeVar": {"name": "a1"}},
//	  {"ConstructorArg": {"name": "Function", "arg_index": 1, "desc": "even"}}
//	]}
//
// JSON and YAML encodings share this shape.
package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/shibukawa/flowquery/dataflow"
)

// Sentinel errors
var (
	// ErrTraceUnavailable is returned when a trace file cannot be read.
	ErrTraceUnavailable = errors.New("trace file unavailable")
	// ErrMalformedTrace is returned when a trace file does not decode into
	// valid flows.
	ErrMalformedTrace = errors.New("malformed trace")
	// ErrUnsupportedFormat is returned for a file extension or format name
	// that has no decoder.
	ErrUnsupportedFormat = errors.New("unsupported trace format")
)

// Format is a trace encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format by file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// LoadFiles reads every path in order and builds one database from all of
// their flows.
func LoadFiles(paths ...string) (*dataflow.Database, error) {
	var flows []dataflow.Flow

	for _, path := range paths {
		fileFlows, err := LoadFile(path)
		if err != nil {
			return nil, err
		}

		flows = append(flows, fileFlows...)
	}

	return dataflow.NewDatabase(flows), nil
}

// LoadFile reads the flows of one trace file.
func LoadFile(path string) ([]dataflow.Flow, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTraceUnavailable, err)
	}

	flows, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return flows, nil
}

// Decode parses trace data in the given format.
func Decode(data []byte, format Format) ([]dataflow.Flow, error) {
	var file traceFile

	switch format {
	case FormatJSON:
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()

		if err := decoder.Decode(&file); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedTrace, err)
		}
	case FormatYAML:
		if err := yaml.UnmarshalWithOptions(data, &file, yaml.Strict()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedTrace, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	steps, err := file.flows()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedTrace, err)
	}

	flows := make([]dataflow.Flow, 0, len(steps))

	for i, flowSteps := range steps {
		tokens := make([]dataflow.Token, 0, len(flowSteps))

		for j, s := range flowSteps {
			tok, err := s.toToken()
			if err != nil {
				return nil, fmt.Errorf("%w: flow %d step %d: %w", ErrMalformedTrace, i, j, err)
			}

			tokens = append(tokens, tok)
		}

		flows = append(flows, dataflow.NewFlow(tokens...))
	}

	return flows, nil
}

// Encode writes every flow of db in the given format, using the
// multi-flow "dataflows" form.
func Encode(w io.Writer, db *dataflow.Database, format Format) error {
	file := traceFile{Dataflows: make([][]step, 0, db.Len())}

	for _, flow := range db.Flows() {
		steps := make([]step, 0, flow.Len())
		for _, tok := range flow.All() {
			steps = append(steps, fromToken(tok))
		}

		file.Dataflows = append(file.Dataflows, steps)
	}

	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")

		return encoder.Encode(file)
	case FormatYAML:
		data, err := yaml.Marshal(file)
		if err != nil {
			return fmt.Errorf("failed to encode trace: %w", err)
		}

		_, err = w.Write(data)

		return err
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}
