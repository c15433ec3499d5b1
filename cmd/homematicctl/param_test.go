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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgeo-scada/homematic/homematic"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want homematic.Value
	}{
		{"null", nil},
		{"true", true},
		{"ON", true},
		{"off", false},
		{"21", int64(21)},
		{"-4", int64(-4)},
		{"21.5", 21.5},
		{"1e3", 1000.0},
		{`"on"`, "on"},
		{"'12'", "12"},
		{"AUTO", "AUTO"},
		{" 7 ", int64(7)},
	}
	for _, tt := range tests {
		got, err := parseValue(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseAssignments(t *testing.T) {
	ps, err := parseAssignments([]string{"MODE=1", "NAME='Kitchen'", "ENABLED=on", "EXPR=a=b"})
	require.NoError(t, err)
	assert.Equal(t, homematic.Paramset{
		"MODE":    int64(1),
		"NAME":    "Kitchen",
		"ENABLED": true,
		"EXPR":    "a=b",
	}, ps)

	_, err = parseAssignments([]string{"MODE"})
	assert.Error(t, err)
	_, err = parseAssignments([]string{"=1"})
	assert.Error(t, err)
}
