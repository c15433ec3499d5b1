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
)

// Sentinel errors
var (
	ErrUnknownDiscriminant = errors.New("homematic: unknown discriminant")
	ErrMissingField        = errors.New("homematic: missing field")
	ErrTypeMismatch        = errors.New("homematic: type mismatch")
	ErrArity               = errors.New("homematic: wrong arity")
	ErrUnsupportedValue    = errors.New("homematic: unsupported value")
	ErrNoCaller            = errors.New("homematic: no caller configured")
)

// UnknownDiscriminantError reports a type tag that selects no known variant.
type UnknownDiscriminantError struct {
	Field string
	Tag   string
}

func (e *UnknownDiscriminantError) Error() string {
	return fmt.Sprintf("homematic: unknown %s %q", e.Field, e.Tag)
}

func (e *UnknownDiscriminantError) Is(target error) bool {
	return target == ErrUnknownDiscriminant
}

// MissingFieldError reports an absent required field.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("homematic: missing field %s", e.Field)
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// TypeMismatchError reports a field whose value has the wrong kind or does
// not fit the target width.
type TypeMismatchError struct {
	Field    string
	Expected string
	Actual   Kind
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("homematic: field %s: expected %s, got %s", e.Field, e.Expected, e.Actual)
}

func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}

// ArityError reports a positional record with the wrong number of elements.
type ArityError struct {
	Expected int
	Actual   int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("homematic: expected %d elements, got %d", e.Expected, e.Actual)
}

func (e *ArityError) Is(target error) bool {
	return target == ErrArity
}

// EntityError attaches the identity of the entity being decoded to a decode
// error. Address is empty when the entity never got far enough to have one.
type EntityError struct {
	Entity  string
	Index   int
	Address string
	Err     error
}

func (e *EntityError) Error() string {
	if e.Address != "" {
		return fmt.Sprintf("%s %s: %v", e.Entity, e.Address, e.Err)
	}
	return fmt.Sprintf("%s #%d: %v", e.Entity, e.Index, e.Err)
}

func (e *EntityError) Unwrap() error {
	return e.Err
}

// FaultError is a fault response returned by the RPC server
type FaultError struct {
	Code    int
	Message string
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("homematic fault: code=%d, message=%s", e.Code, e.Message)
}

// IsDecodeError returns true if err was produced while decoding a response
func IsDecodeError(err error) bool {
	return errors.Is(err, ErrUnknownDiscriminant) ||
		errors.Is(err, ErrMissingField) ||
		errors.Is(err, ErrTypeMismatch) ||
		errors.Is(err, ErrArity)
}

// IsFault returns true if err carries an RPC fault
func IsFault(err error) bool {
	var fault *FaultError
	return errors.As(err, &fault)
}

// EntityAddress returns the address of the entity that failed to decode, if
// err carries one.
func EntityAddress(err error) (string, bool) {
	var entityErr *EntityError
	if errors.As(err, &entityErr) && entityErr.Address != "" {
		return entityErr.Address, true
	}
	return "", false
}
