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

package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

var (
	ErrClosed        = errors.New("transport: closed")
	ErrNoExchange    = errors.New("transport: no recorded exchange")
	ErrUnknownFormat = errors.New("transport: unknown capture format")
)

// Fault is a recorded RPC fault
type Fault struct {
	Code    int    `json:"code" yaml:"code"`
	Message string `json:"message" yaml:"message"`
}

func (f *Fault) Error() string {
	return fmt.Sprintf("fault %d: %s", f.Code, f.Message)
}

// Exchange is one recorded call and its outcome. Params, when present, must
// match the call's parameters; an exchange without params matches any call of
// the method.
type Exchange struct {
	Method string `json:"method" yaml:"method"`
	Params []any  `json:"params,omitempty" yaml:"params,omitempty"`
	Result any    `json:"result,omitempty" yaml:"result,omitempty"`
	Fault  *Fault `json:"fault,omitempty" yaml:"fault,omitempty"`
}

// Capture is the content of a capture file
type Capture struct {
	Exchanges []Exchange `json:"exchanges" yaml:"exchanges"`
}

// Normalizer converts decoded capture values into the representation used by
// callers. It is applied to every recorded value and to call parameters.
type Normalizer func(v any) (any, error)

// Replay answers calls from a capture file. Exchanges matching the same call
// are returned in file order; once exhausted the last one keeps answering.
type Replay struct {
	path      string
	normalize Normalizer

	mu        sync.Mutex
	exchanges []Exchange
	served    []bool
	opened    bool
	closed    bool
}

// NewReplay creates a replay transport for the capture file at path. A nil
// normalizer leaves values as decoded.
func NewReplay(path string, normalize Normalizer) *Replay {
	if normalize == nil {
		normalize = func(v any) (any, error) { return v, nil }
	}
	return &Replay{
		path:      path,
		normalize: normalize,
	}
}

// Open loads the capture file
func (r *Replay) Open(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.opened && !r.closed {
		return nil
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("read capture: %w", err)
	}
	capture, err := ParseCapture(filepath.Ext(r.path), data)
	if err != nil {
		return fmt.Errorf("parse capture %s: %w", r.path, err)
	}
	return r.load(capture)
}

// Load installs exchanges directly, bypassing the capture file
func (r *Replay) Load(capture *Capture) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(capture)
}

func (r *Replay) load(capture *Capture) error {
	exchanges := make([]Exchange, len(capture.Exchanges))
	for i, ex := range capture.Exchanges {
		if ex.Method == "" {
			return fmt.Errorf("exchange %d: missing method", i)
		}
		params, err := r.normalizeParams(ex.Params)
		if err != nil {
			return fmt.Errorf("exchange %d (%s) params: %w", i, ex.Method, err)
		}
		result, err := r.normalize(ex.Result)
		if err != nil {
			return fmt.Errorf("exchange %d (%s) result: %w", i, ex.Method, err)
		}
		exchanges[i] = Exchange{Method: ex.Method, Params: params, Result: result, Fault: ex.Fault}
	}

	r.exchanges = exchanges
	r.served = make([]bool, len(exchanges))
	r.opened = true
	r.closed = false
	return nil
}

func (r *Replay) normalizeParams(params []any) ([]any, error) {
	if params == nil {
		return nil, nil
	}
	out := make([]any, len(params))
	for i, p := range params {
		n, err := r.normalize(p)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		out[i] = n
	}
	return out, nil
}

// Close releases the loaded exchanges
func (r *Replay) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.opened || r.closed {
		return nil
	}
	r.closed = true
	r.exchanges = nil
	r.served = nil
	return nil
}

// IsOpen returns true if the capture is loaded
func (r *Replay) IsOpen() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.opened && !r.closed
}

// Call returns the recorded result for method and params. A recorded fault is
// returned as *Fault.
func (r *Replay) Call(ctx context.Context, method string, params []any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.opened || r.closed {
		return nil, ErrClosed
	}

	got, err := r.normalizeParams(params)
	if err != nil {
		return nil, fmt.Errorf("%s params: %w", method, err)
	}

	last := -1
	for i, ex := range r.exchanges {
		if ex.Method != method || !paramsMatch(ex.Params, got) {
			continue
		}
		if !r.served[i] {
			r.served[i] = true
			return outcome(ex)
		}
		last = i
	}
	if last >= 0 {
		return outcome(r.exchanges[last])
	}
	return nil, fmt.Errorf("%w for %s", ErrNoExchange, method)
}

func outcome(ex Exchange) (any, error) {
	if ex.Fault != nil {
		return nil, ex.Fault
	}
	return ex.Result, nil
}

func paramsMatch(recorded, got []any) bool {
	if recorded == nil {
		return true
	}
	if len(recorded) != len(got) {
		return false
	}
	for i := range recorded {
		if !reflect.DeepEqual(recorded[i], got[i]) {
			return false
		}
	}
	return true
}

// ParseCapture decodes capture data. ext selects the format: .yaml/.yml,
// .json or .cbor.
func ParseCapture(ext string, data []byte) (*Capture, error) {
	var capture Capture
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &capture); err != nil {
			return nil, err
		}
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&capture); err != nil {
			return nil, err
		}
	case ".cbor":
		if err := cborDecMode.Unmarshal(data, &capture); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownFormat, ext)
	}
	return &capture, nil
}

// MarshalCapture encodes a capture in the format selected by ext
func MarshalCapture(ext string, capture *Capture) ([]byte, error) {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		return yaml.Marshal(capture)
	case ".json":
		return json.MarshalIndent(capture, "", "  ")
	case ".cbor":
		return cborEncMode.Marshal(capture)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownFormat, ext)
	}
}

// cborEncMode writes datetimes as tagged RFC 3339 strings so they decode back
// into time.Time
var cborEncMode = func() cbor.EncMode {
	em, err := cbor.EncOptions{
		Time:    cbor.TimeRFC3339Nano,
		TimeTag: cbor.EncTagRequired,
	}.EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

var cborDecMode = func() cbor.DecMode {
	dm, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic(err)
	}
	return dm
}()
