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

package homematic

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCapture = `
exchanges:
  - method: listDevices
    result:
      - ADDRESS: EQ0123456
        TYPE: HM-CC-RT-DN
        PARENT: ""
        CHILDREN: ["EQ0123456:1"]
        PARAMSETS: [MASTER]
        FLAGS: 1
        VERSION: 8
        RX_MODE: 10
      - ADDRESS: EQ0123456:1
        TYPE: CLIMATECONTROL_RT_TRANSCEIVER
        PARENT: EQ0123456
        PARENT_TYPE: HM-CC-RT-DN
        INDEX: 1
        PARAMSETS: [MASTER, VALUES]
        FLAGS: 1
  - method: getParamsetDescription
    params: ["EQ0123456:1", MASTER]
    result:
      MODE:
        TYPE: ENUM
        OPERATIONS: 3
        FLAGS: 1
        DEFAULT: 0
        MIN: 0
        MAX: 1
        VALUE_LIST: [AUTO, MANU]
      OFFSET:
        TYPE: FLOAT
        OPERATIONS: 3
        FLAGS: 1
        DEFAULT: 0.0
        MIN: -3.5
        MAX: 3.5
        UNIT: "°C"
  - method: setValue
    params: ["EQ0123456:1", SET_TEMPERATURE, 21]
    result: ""
  - method: getServiceMessages
    result:
      - ["EQ0123456:0", LOWBAT, true]
  - method: deleteDevice
    fault:
      code: -1
      message: unknown device
`

func writeCapture(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(testCapture), 0o644))
	return path
}

func checkCaptureClient(t *testing.T, caller Caller) {
	t.Helper()
	ctx := context.Background()

	client, err := NewClient(caller)
	require.NoError(t, err)

	devices, err := client.ListDevices(ctx)
	require.NoError(t, err)
	require.Len(t, devices, 2)
	require.NotNil(t, devices[0].Version)
	assert.Equal(t, int32(8), *devices[0].Version)
	require.NotNil(t, devices[0].RxMode)
	assert.True(t, devices[0].RxMode.Burst())
	require.NotNil(t, devices[1].Index)
	assert.Equal(t, int32(1), *devices[1].Index)

	desc, err := client.GetParamsetDescription(ctx, "EQ0123456:1", ParamsetMaster)
	require.NoError(t, err)
	assert.Equal(t, []string{"MODE", "OFFSET"}, desc.IDs())
	assert.Equal(t, "1", desc["MODE"].(*EnumParameterDescription).Max)
	offset := desc["OFFSET"].(*FloatParameterDescription)
	assert.Equal(t, float32(-3.5), offset.Min)
	assert.Equal(t, "°C", *offset.Unit)

	require.NoError(t, client.SetValue(ctx, "EQ0123456:1", "SET_TEMPERATURE", 21))

	msgs, err := client.GetServiceMessages(ctx)
	require.NoError(t, err)
	assert.Equal(t, []ServiceMessage{{Address: "EQ0123456:0", ID: MessageLowBat, Value: true}}, msgs)

	err = client.DeleteDevice(ctx, "EQ0123456", 0)
	require.Error(t, err)
	assert.True(t, IsFault(err))
	assert.Equal(t, int64(1), client.Metrics().FaultsReceived.Value())
}

func TestOpenCapture(t *testing.T) {
	caller, err := OpenCapture(context.Background(), writeCapture(t, "ccu.yaml"))
	require.NoError(t, err)
	defer caller.Close()

	checkCaptureClient(t, caller)
}

func TestNewCaptureCaller(t *testing.T) {
	caller, err := NewCaptureCaller(".yaml", []byte(testCapture))
	require.NoError(t, err)
	checkCaptureClient(t, caller)

	_, err = NewCaptureCaller(".ini", []byte(testCapture))
	assert.Error(t, err)
}

func TestConvertCapture(t *testing.T) {
	src := writeCapture(t, "ccu.yaml")

	for _, ext := range []string{".json", ".cbor", ".yml"} {
		t.Run(ext, func(t *testing.T) {
			dst := filepath.Join(t.TempDir(), "ccu"+ext)
			require.NoError(t, ConvertCapture(src, dst))

			caller, err := OpenCapture(context.Background(), dst)
			require.NoError(t, err)
			defer caller.Close()

			checkCaptureClient(t, caller)
		})
	}
}

func TestConvertCaptureKeepsDateTime(t *testing.T) {
	src := filepath.Join(t.TempDir(), "time.yaml")
	require.NoError(t, os.WriteFile(src, []byte(`
exchanges:
  - method: getValue
    params: ["EQ0123456:0", LAST_SEEN]
    result: !!timestamp 2024-01-02T03:04:05Z
`), 0o644))
	want := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	for _, name := range []string{"time.yaml", "time.cbor"} {
		t.Run(name, func(t *testing.T) {
			path := src
			if name != "time.yaml" {
				path = filepath.Join(t.TempDir(), name)
				require.NoError(t, ConvertCapture(src, path))
			}

			caller, err := OpenCapture(context.Background(), path)
			require.NoError(t, err)
			defer caller.Close()

			v, err := caller.Call(context.Background(), "getValue", "EQ0123456:0", "LAST_SEEN")
			require.NoError(t, err)
			assert.Equal(t, KindDateTime, KindOf(v))
			ts, ok := v.(time.Time)
			require.True(t, ok, "got %T", v)
			assert.True(t, want.Equal(ts), "got %s", ts)
		})
	}
}

func TestConvertCaptureErrors(t *testing.T) {
	src := writeCapture(t, "ccu.yaml")
	assert.Error(t, ConvertCapture(src, filepath.Join(t.TempDir(), "ccu.xml")))
	assert.Error(t, ConvertCapture(filepath.Join(t.TempDir(), "missing.yaml"), filepath.Join(t.TempDir(), "ccu.json")))
}

func TestCaptureFormat(t *testing.T) {
	for path, want := range map[string]bool{
		"ccu.yaml":   true,
		"ccu.YML":    true,
		"ccu.json":   true,
		"ccu.cbor":   true,
		"ccu.xml":    false,
		"ccu":        false,
		"dir/c.Json": true,
	} {
		_, ok := CaptureFormat(path)
		assert.Equal(t, want, ok, path)
	}
}
