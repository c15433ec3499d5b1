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

import "golang.org/x/sync/errgroup"

// decodeBatch decodes every element of items with dec. Results keep the
// input order regardless of the number of workers.
func decodeBatch[T any](items Array, dec func(i int, v Value) (T, error), opts ...BatchOption) ([]T, error) {
	o := defaultBatchOptions()
	for _, opt := range opts {
		opt(o)
	}

	results := make([]T, len(items))
	errs := make([]error, len(items))

	if o.Workers <= 1 {
		for i, item := range items {
			results[i], errs[i] = dec(i, item)
			if errs[i] != nil && o.Skip == nil {
				return nil, errs[i]
			}
		}
	} else {
		var g errgroup.Group
		g.SetLimit(o.Workers)
		for i, item := range items {
			i, item := i, item
			g.Go(func() error {
				results[i], errs[i] = dec(i, item)
				return nil
			})
		}
		_ = g.Wait()
	}

	out := make([]T, 0, len(items))
	for i := range items {
		if errs[i] != nil {
			if o.Skip == nil {
				return nil, errs[i]
			}
			o.Skip(errs[i])
			continue
		}
		out = append(out, results[i])
	}
	return out, nil
}
