// Copyright 2025 Edgeo SCADA
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// OutputFormat represents the output format
type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
)

// ParseOutputFormat validates a format name
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(s); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (table, json, yaml)", s)
	}
}

// Formatter handles output formatting
type Formatter struct {
	format OutputFormat
	query  string
	writer io.Writer
}

// NewFormatter creates a new formatter. query, when set, is a gjson path
// applied to structured output.
func NewFormatter(format OutputFormat, query string) *Formatter {
	return &Formatter{
		format: format,
		query:  query,
		writer: os.Stdout,
	}
}

// SetWriter sets the output writer
func (f *Formatter) SetWriter(w io.Writer) {
	f.writer = w
}

// Structured returns true for json and yaml output
func (f *Formatter) Structured() bool {
	return f.format != FormatTable
}

// Printf formats and prints output
func (f *Formatter) Printf(format string, args ...any) {
	fmt.Fprintf(f.writer, format, args...)
}

// Println prints a line
func (f *Formatter) Println(args ...any) {
	fmt.Fprintln(f.writer, args...)
}

// Print renders v as json or yaml. Field order follows the json encoding of
// v.
func (f *Formatter) Print(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}

	if f.query != "" {
		res := gjson.GetBytes(data, f.query)
		if !res.Exists() {
			return fmt.Errorf("query %q matched nothing", f.query)
		}
		data = []byte(res.Raw)
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return err
	}
	if f.format == FormatYAML {
		return f.printYAML(buf.Bytes())
	}
	buf.WriteByte('\n')
	_, err = buf.WriteTo(f.writer)
	return err
}

// printYAML re-encodes a json document as yaml keeping its key order
func (f *Formatter) printYAML(data []byte) error {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	blockStyle(&doc)

	enc := yaml.NewEncoder(f.writer)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return err
	}
	return enc.Close()
}

// blockStyle drops the flow and quoting styles a json document parses with
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}

// PrintTable prints rows under headers with left aligned columns
func (f *Formatter) PrintTable(headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	printRow := func(cells []string) {
		for i, cell := range cells {
			if i >= len(widths) {
				break
			}
			if i == len(cells)-1 {
				fmt.Fprint(f.writer, cell)
			} else {
				fmt.Fprintf(f.writer, "%-*s  ", widths[i], cell)
			}
		}
		fmt.Fprintln(f.writer)
	}

	printRow(headers)
	for _, row := range rows {
		printRow(row)
	}
}

// PrintKeyValue prints pairs in the given order, skipping keys without a
// value
func (f *Formatter) PrintKeyValue(pairs map[string]string, order []string) {
	maxKeyLen := 0
	for _, key := range order {
		if _, ok := pairs[key]; ok && len(key) > maxKeyLen {
			maxKeyLen = len(key)
		}
	}
	for _, key := range order {
		if val, ok := pairs[key]; ok {
			fmt.Fprintf(f.writer, "%-*s  %s\n", maxKeyLen, key, val)
		}
	}
}
