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
	"log/slog"
	"time"
)

// clientOptions holds configuration for the HomeMatic client
type clientOptions struct {
	// Per call deadline, 0 leaves the caller's context untouched
	timeout time.Duration

	// Batch decoding
	skipInvalid   bool
	decodeWorkers int

	// Logging
	logger *slog.Logger
}

// defaultOptions returns the default client options
func defaultOptions() *clientOptions {
	return &clientOptions{
		timeout:       10 * time.Second,
		skipInvalid:   false,
		decodeWorkers: 1,
		logger:        slog.Default(),
	}
}

// Option is a functional option for configuring the client
type Option func(*clientOptions)

// WithTimeout sets the deadline applied to each call
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) {
		o.timeout = d
	}
}

// WithSkipInvalid makes list calls drop malformed entries instead of failing
// the whole response. Skipped entries are logged and counted.
func WithSkipInvalid(skip bool) Option {
	return func(o *clientOptions) {
		o.skipInvalid = skip
	}
}

// WithDecodeWorkers sets how many goroutines decode the elements of a list
// response
func WithDecodeWorkers(n int) Option {
	return func(o *clientOptions) {
		if n < 1 {
			n = 1
		}
		o.decodeWorkers = n
	}
}

// WithLogger sets the logger for the client
func WithLogger(logger *slog.Logger) Option {
	return func(o *clientOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// BatchOptions holds configuration for decoding list responses
type BatchOptions struct {
	// Workers bounds the number of concurrent element decoders
	Workers int

	// Skip, when set, receives the error of every malformed element and the
	// element is dropped. When nil the first error aborts the batch.
	Skip func(err error)
}

// BatchOption is a functional option for batch decoding
type BatchOption func(*BatchOptions)

func defaultBatchOptions() *BatchOptions {
	return &BatchOptions{
		Workers: 1,
	}
}

// WithBatchWorkers sets the number of concurrent element decoders
func WithBatchWorkers(n int) BatchOption {
	return func(o *BatchOptions) {
		if n >= 1 {
			o.Workers = n
		}
	}
}

// WithBatchSkip drops malformed elements, reporting each to fn
func WithBatchSkip(fn func(err error)) BatchOption {
	return func(o *BatchOptions) {
		o.Skip = fn
	}
}
