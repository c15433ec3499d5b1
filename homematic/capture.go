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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/edgeo-scada/homematic/homematic/internal/transport"
)

// CaptureCaller is a Caller answering from a recorded session. Capture files
// are YAML, JSON or CBOR documents of the form
//
//	exchanges:
//	  - method: getDeviceDescription
//	    params: ["EQ0123456"]
//	    result: {ADDRESS: EQ0123456, ...}
//	  - method: deleteDevice
//	    fault: {code: -1, message: "unknown device"}
type CaptureCaller struct {
	replay *transport.Replay
}

// OpenCapture loads the capture file at path
func OpenCapture(ctx context.Context, path string) (*CaptureCaller, error) {
	r := transport.NewReplay(path, Normalize)
	if err := r.Open(ctx); err != nil {
		return nil, err
	}
	return &CaptureCaller{replay: r}, nil
}

// NewCaptureCaller creates a caller from in-memory capture data. format is a
// file extension such as ".yaml".
func NewCaptureCaller(format string, data []byte) (*CaptureCaller, error) {
	capture, err := transport.ParseCapture(format, data)
	if err != nil {
		return nil, err
	}
	r := transport.NewReplay("", Normalize)
	if err := r.Load(capture); err != nil {
		return nil, err
	}
	return &CaptureCaller{replay: r}, nil
}

// Call implements Caller
func (c *CaptureCaller) Call(ctx context.Context, method string, params ...Value) (Value, error) {
	result, err := c.replay.Call(ctx, method, params)
	if err != nil {
		var fault *transport.Fault
		if errors.As(err, &fault) {
			return nil, &FaultError{Code: fault.Code, Message: fault.Message}
		}
		return nil, err
	}
	return result, nil
}

// Close releases the capture
func (c *CaptureCaller) Close() error {
	return c.replay.Close()
}

// CaptureFormat reports whether path has a supported capture extension
func CaptureFormat(path string) (string, bool) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml", ".json", ".cbor":
		return ext, true
	default:
		return ext, false
	}
}

// ConvertCapture rewrites the capture at src into dst, picking both formats
// from the file extensions
func ConvertCapture(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read capture: %w", err)
	}
	capture, err := transport.ParseCapture(filepath.Ext(src), data)
	if err != nil {
		return fmt.Errorf("parse capture %s: %w", src, err)
	}
	for i := range capture.Exchanges {
		ex := &capture.Exchanges[i]
		if ex.Result, err = Normalize(ex.Result); err != nil {
			return fmt.Errorf("exchange %d result: %w", i, err)
		}
		for j := range ex.Params {
			if ex.Params[j], err = Normalize(ex.Params[j]); err != nil {
				return fmt.Errorf("exchange %d params: %w", i, err)
			}
		}
	}
	out, err := transport.MarshalCapture(filepath.Ext(dst), capture)
	if err != nil {
		return fmt.Errorf("encode capture %s: %w", dst, err)
	}
	return os.WriteFile(dst, out, 0o644)
}
