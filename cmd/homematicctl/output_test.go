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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgeo-scada/homematic/homematic"
)

func TestParseOutputFormat(t *testing.T) {
	for _, name := range []string{"table", "json", "yaml"} {
		f, err := ParseOutputFormat(name)
		require.NoError(t, err)
		assert.Equal(t, OutputFormat(name), f)
	}
	_, err := ParseOutputFormat("xml")
	assert.Error(t, err)
}

func TestFormatterJSON(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(FormatJSON, "")
	f.SetWriter(&buf)
	assert.True(t, f.Structured())

	require.NoError(t, f.Print(messageView{Address: "EQ0123456:0", ID: "LOWBAT", Value: true}))
	assert.JSONEq(t, `{"address": "EQ0123456:0", "id": "LOWBAT", "value": true}`, buf.String())
}

func TestFormatterYAML(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(FormatYAML, "")
	f.SetWriter(&buf)

	require.NoError(t, f.Print(map[string]any{"level": 0.5, "count": 3, "name": "x"}))
	assert.Equal(t, "count: 3\nlevel: 0.5\nname: x\n", buf.String())
}

func TestFormatterKeepsFieldOrder(t *testing.T) {
	devices := decodeDevices(t, thermostatChannel())
	view := projectDevice(devices[0])

	var buf bytes.Buffer
	f := NewFormatter(FormatJSON, "")
	f.SetWriter(&buf)
	require.NoError(t, f.Print(view))
	lines := strings.Split(buf.String(), "\n")
	require.Greater(t, len(lines), 3)
	assert.Equal(t, "{", lines[0])
	assert.Equal(t, `  "type": "WEATHER_RECEIVER",`, lines[1])
	assert.Equal(t, `  "address": "EQ0123456:1",`, lines[2])
	assert.Equal(t, `  "rfAddress": null,`, lines[3])

	buf.Reset()
	f = NewFormatter(FormatYAML, "")
	f.SetWriter(&buf)
	require.NoError(t, f.Print(view))
	lines = strings.Split(buf.String(), "\n")
	require.Greater(t, len(lines), 4)
	assert.Equal(t, "type: WEATHER_RECEIVER", lines[0])
	assert.Equal(t, "address: EQ0123456:1", lines[1])
	assert.Equal(t, "rfAddress: null", lines[2])
	assert.Equal(t, "children: []", lines[3])
	assert.Equal(t, "parent: EQ0123456", lines[4])
}

func TestFormatterYAMLQuotesAmbiguousStrings(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(FormatYAML, "")
	f.SetWriter(&buf)

	require.NoError(t, f.Print(messageView{Address: "", ID: "true", Value: "12"}))
	assert.Equal(t, "address: \"\"\nid: \"true\"\nvalue: \"12\"\n", buf.String())
}

func TestFormatterQuery(t *testing.T) {
	views := projectMessages([]homematic.ServiceMessage{
		{Address: "EQ0123456:0", ID: "LOWBAT", Value: true},
		{Address: "EQ7654321:0", ID: "UNREACH", Value: false},
	})

	var buf bytes.Buffer
	f := NewFormatter(FormatJSON, "#.address")
	f.SetWriter(&buf)
	require.NoError(t, f.Print(views))
	assert.JSONEq(t, `["EQ0123456:0", "EQ7654321:0"]`, buf.String())

	buf.Reset()
	f = NewFormatter(FormatYAML, "1.id")
	f.SetWriter(&buf)
	require.NoError(t, f.Print(views))
	assert.Equal(t, "UNREACH\n", buf.String())

	f = NewFormatter(FormatJSON, "2.id")
	f.SetWriter(&buf)
	assert.Error(t, f.Print(views))
}

func TestFormatterTable(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(FormatTable, "")
	f.SetWriter(&buf)
	assert.False(t, f.Structured())

	f.PrintTable([]string{"ID", "VALUE"}, [][]string{{"STATE", "true"}, {"LEVEL", "0.5"}})
	assert.Equal(t, "ID     VALUE\nSTATE  true\nLEVEL  0.5\n", buf.String())

	buf.Reset()
	f.PrintKeyValue(map[string]string{"TYPE": "HM", "ADDRESS": "EQ1"}, []string{"TYPE", "PARENT", "ADDRESS"})
	assert.Equal(t, "TYPE     HM\nADDRESS  EQ1\n", buf.String())
}
