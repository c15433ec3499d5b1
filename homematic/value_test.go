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
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		v    Value
		want Kind
	}{
		{nil, KindNil},
		{true, KindBool},
		{int64(1), KindInt},
		{int32(1), KindInt},
		{1.5, KindDouble},
		{"x", KindString},
		{time.Unix(0, 0), KindDateTime},
		{[]byte{1}, KindBinary},
		{Array{}, KindArray},
		{Struct{}, KindStruct},
		{struct{}{}, KindUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, KindOf(tt.v), "%#v", tt.v)
	}
	assert.Equal(t, "struct", KindStruct.String())
	assert.Equal(t, "base64", KindBinary.String())
}

func TestKindString(t *testing.T) {
	names := map[Kind]string{
		KindNil:      "nil",
		KindBool:     "boolean",
		KindInt:      "int",
		KindDouble:   "double",
		KindString:   "string",
		KindDateTime: "dateTime",
		KindBinary:   "base64",
		KindArray:    "array",
		KindStruct:   "struct",
		KindUnknown:  "kind(0)",
		Kind(42):     "kind(42)",
	}
	for k, want := range names {
		assert.Equal(t, want, k.String())
	}
}

func TestNormalize(t *testing.T) {
	v, err := Normalize(map[string]any{
		"a": 1,
		"b": []any{uint8(2), float32(0.5)},
		"c": map[any]any{"d": uint64(math.MaxUint64)},
		"e": json.Number("7"),
		"f": json.Number("2.5"),
		"g": []string{"x", "y"},
	})
	require.NoError(t, err)

	assert.Equal(t, Struct{
		"a": int64(1),
		"b": Array{int64(2), float64(0.5)},
		"c": Struct{"d": float64(math.MaxUint64)},
		"e": int64(7),
		"f": 2.5,
		"g": Array{"x", "y"},
	}, v)
}

func TestNormalizeRejects(t *testing.T) {
	_, err := Normalize(map[any]any{1: "x"})
	assert.ErrorIs(t, err, ErrUnsupportedValue)

	_, err = Normalize([]any{struct{}{}})
	assert.ErrorIs(t, err, ErrUnsupportedValue)
}
