// Package render implements the output formats the command surface exposes
// (§6.3): structured JSON and YAML for every command, plus Graphviz DOT and
// a self-contained HTML report for `impact` only. Grounded on the
// format/response split in cmd/ckb/format.go, narrowed from its dozen
// command-specific human-format branches to dimpact's four formats.
package render

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Format is one of the four accepted output format names.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatDOT  Format = "dot"
	FormatHTML Format = "html"
)

// Valid reports whether f is a recognized format name.
func (f Format) Valid() bool {
	switch f {
	case FormatJSON, FormatYAML, FormatDOT, FormatHTML:
		return true
	}
	return false
}

// JSON marshals v as indented JSON.
func JSON(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	return string(data), nil
}

// YAML marshals v as YAML.
func YAML(v interface{}) (string, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	return string(data), nil
}
