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

// Package homematic decodes HomeMatic RPC responses into a typed model of
// devices, channels, parameter descriptions and service messages.
//
// The RPC layer hands over an already parsed value tree. Decoding is a pure
// transform of that tree: no I/O, no shared state, safe for concurrent use.
package homematic

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Value is a node of the generic RPC value tree.
//
// Canonical representations: nil, bool, int64, float64, string, time.Time
// (dateTime.iso8601), []byte (base64), Array and Struct. Decoders also accept
// the other Go integer and float kinds.
type Value = any

// Array is an ordered list of values.
type Array = []Value

// Struct is a string-keyed mapping of values.
type Struct = map[string]Value

// Kind classifies a Value
type Kind uint8

const (
	KindUnknown Kind = iota
	KindNil
	KindBool
	KindInt
	KindDouble
	KindString
	KindDateTime
	KindBinary
	KindArray
	KindStruct
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "boolean"
	case KindInt:
		return "int"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindDateTime:
		return "dateTime"
	case KindBinary:
		return "base64"
	case KindArray:
		return "array"
	case KindStruct:
		return "struct"
	default:
		return fmt.Sprintf("kind(%d)", k)
	}
}

// KindOf returns the kind of v
func KindOf(v Value) Kind {
	switch v.(type) {
	case nil:
		return KindNil
	case bool:
		return KindBool
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return KindInt
	case float32, float64:
		return KindDouble
	case string:
		return KindString
	case time.Time:
		return KindDateTime
	case []byte:
		return KindBinary
	case []any:
		return KindArray
	case map[string]any:
		return KindStruct
	default:
		return KindUnknown
	}
}

// Normalize converts the output of generic decoders (yaml, json, cbor) into
// the canonical value representation.
func Normalize(v any) (Value, error) {
	switch x := v.(type) {
	case nil, bool, string, time.Time, []byte:
		return x, nil
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case uint:
		return normalizeUnsigned(uint64(x)), nil
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint64:
		return normalizeUnsigned(x), nil
	case float32:
		return float64(x), nil
	case float64:
		return x, nil
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i, nil
		}
		f, err := x.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: number %q", ErrUnsupportedValue, x.String())
		}
		return f, nil
	case []any:
		out := make(Array, len(x))
		for i, e := range x {
			n, err := Normalize(e)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = n
		}
		return out, nil
	case []string:
		out := make(Array, len(x))
		for i, e := range x {
			out[i] = e
		}
		return out, nil
	case map[string]any:
		out := make(Struct, len(x))
		for k, e := range x {
			n, err := Normalize(e)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out[k] = n
		}
		return out, nil
	case map[any]any:
		out := make(Struct, len(x))
		for k, e := range x {
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("%w: struct key of type %T", ErrUnsupportedValue, k)
			}
			n, err := Normalize(e)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			out[key] = n
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
}

func normalizeUnsigned(u uint64) Value {
	if u > math.MaxInt64 {
		return float64(u)
	}
	return int64(u)
}
