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
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEven(i int, v Value) (int64, error) {
	n := v.(int64)
	if n%2 != 0 {
		return 0, fmt.Errorf("odd %d at %d", n, i)
	}
	return n, nil
}

func TestDecodeBatchKeepsOrder(t *testing.T) {
	items := make(Array, 100)
	for i := range items {
		items[i] = int64(i * 2)
	}

	for _, workers := range []int{1, 3, 16} {
		out, err := decodeBatch(items, decodeEven, WithBatchWorkers(workers))
		require.NoError(t, err)
		require.Len(t, out, len(items))
		for i, v := range out {
			assert.Equal(t, int64(i*2), v)
		}
	}
}

func TestDecodeBatchFirstError(t *testing.T) {
	items := Array{int64(2), int64(3), int64(4), int64(5)}

	for _, workers := range []int{1, 4} {
		_, err := decodeBatch(items, decodeEven, WithBatchWorkers(workers))
		require.Error(t, err)
		assert.Equal(t, "odd 3 at 1", err.Error())
	}
}

func TestDecodeBatchSkip(t *testing.T) {
	items := Array{int64(2), int64(3), int64(4), int64(5)}

	for _, workers := range []int{1, 4} {
		var skipped atomic.Int32
		out, err := decodeBatch(items, decodeEven,
			WithBatchWorkers(workers),
			WithBatchSkip(func(err error) { skipped.Add(1) }),
		)
		require.NoError(t, err)
		assert.Equal(t, []int64{2, 4}, out)
		assert.Equal(t, int32(2), skipped.Load())
	}
}

func TestDecodeBatchEmpty(t *testing.T) {
	out, err := decodeBatch(Array{}, func(i int, v Value) (string, error) {
		return "", errors.New("unreachable")
	})
	require.NoError(t, err)
	assert.Empty(t, out)
}
