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
	"math"
	"strconv"
)

// converter turns one wire value into a Go value. name is the field path
// used in errors.
type converter[T any] func(name string, v Value) (T, error)

// fields reads named members of a wire struct. An explicit nil member is
// treated the same as an absent one.
type fields struct {
	s    Struct
	path string
}

func newFields(s Struct, path string) fields {
	return fields{s: s, path: path}
}

func (f fields) name(key string) string {
	if f.path == "" {
		return key
	}
	return f.path + "." + key
}

func (f fields) lookup(key string) (Value, bool) {
	v, ok := f.s[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func required[T any](f fields, key string, conv converter[T]) (T, error) {
	v, ok := f.lookup(key)
	if !ok {
		var zero T
		return zero, &MissingFieldError{Field: f.name(key)}
	}
	return conv(f.name(key), v)
}

func optional[T any](f fields, key string, conv converter[T]) (*T, error) {
	v, ok := f.lookup(key)
	if !ok {
		return nil, nil
	}
	out, err := conv(f.name(key), v)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func mismatch(name, expected string, v Value) error {
	return &TypeMismatchError{Field: name, Expected: expected, Actual: KindOf(v)}
}

func asInt64(v Value) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint:
		return int64(x), uint64(x) <= math.MaxInt64
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		return int64(x), x <= math.MaxInt64
	default:
		return 0, false
	}
}

func toString(name string, v Value) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", mismatch(name, "string", v)
	}
	return s, nil
}

func toInt32(name string, v Value) (int32, error) {
	i, ok := asInt64(v)
	if !ok {
		return 0, mismatch(name, "int", v)
	}
	if i < math.MinInt32 || i > math.MaxInt32 {
		return 0, mismatch(name, "int32 range", v)
	}
	return int32(i), nil
}

func toUint8(name string, v Value) (uint8, error) {
	i, ok := asInt64(v)
	if !ok {
		return 0, mismatch(name, "int", v)
	}
	if i < 0 || i > math.MaxUint8 {
		return 0, mismatch(name, "uint8 range", v)
	}
	return uint8(i), nil
}

// toFloat32 accepts doubles and integers.
func toFloat32(name string, v Value) (float32, error) {
	switch x := v.(type) {
	case float64:
		return float32(x), nil
	case float32:
		return x, nil
	}
	if i, ok := asInt64(v); ok {
		return float32(i), nil
	}
	return 0, mismatch(name, "double", v)
}

func toBool(name string, v Value) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, mismatch(name, "boolean", v)
	}
	return b, nil
}

// toIntBool decodes the 0/1 integers some boolean fields are sent as.
func toIntBool(name string, v Value) (bool, error) {
	i, ok := asInt64(v)
	if !ok {
		return false, mismatch(name, "int", v)
	}
	return i != 0, nil
}

// toIndexString decodes an enum index that may be sent either as a string or
// as an integer.
func toIndexString(name string, v Value) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	if i, ok := asInt64(v); ok {
		return strconv.FormatInt(i, 10), nil
	}
	return "", mismatch(name, "string", v)
}

func toStruct(name string, v Value) (Struct, error) {
	s, ok := v.(Struct)
	if !ok {
		return nil, mismatch(name, "struct", v)
	}
	return s, nil
}

func toArray(name string, v Value) (Array, error) {
	a, ok := v.(Array)
	if !ok {
		return nil, mismatch(name, "array", v)
	}
	return a, nil
}

func toStringList(name string, v Value) ([]string, error) {
	a, err := toArray(name, v)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(a))
	for i, e := range a {
		s, err := toString(name+"["+strconv.Itoa(i)+"]", e)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}
