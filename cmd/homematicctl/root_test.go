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
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edgeo-scada/homematic/homematic"
)

func TestRootSilencesCobraErrors(t *testing.T) {
	assert.True(t, rootCmd.SilenceErrors)
	assert.True(t, rootCmd.SilenceUsage)
}

func TestReportError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "plain error",
			err:  errors.New("capture file is required (-c or --capture)"),
			want: "Error: capture file is required (-c or --capture)\n",
		},
		{
			name: "decode error with address",
			err: &homematic.EntityError{
				Entity:  "device",
				Address: "EQ0123456:1",
				Err:     &homematic.MissingFieldError{Field: "TYPE"},
			},
			want: "Error: invalid response: device EQ0123456:1: homematic: missing field TYPE (address EQ0123456:1)\n",
		},
		{
			name: "fault",
			err:  fmt.Errorf("deleteDevice: %w", &homematic.FaultError{Code: -1, Message: "unknown device"}),
			want: "Error: interface fault: deleteDevice: homematic fault: code=-1, message=unknown device\n",
		},
		{
			name: "nil",
			err:  nil,
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			reportError(&buf, tt.err)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}
