// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bootparam

import "errors"

var (
	// ErrTooManyValues is returned if a parameter list exceeds its bound.
	ErrTooManyValues = errors.New("too many values")

	// ErrValueNotEncodable is returned if a value cannot be represented in
	// a kernel parameter array, like values containing commas.
	ErrValueNotEncodable = errors.New("value cannot be encoded")
)

// ParamError indicates an issue with a single boot parameter.
type ParamError struct {
	Key string
	Err error
}

// Error implements the [error] interface.
func (e *ParamError) Error() string {
	return "boot parameter " + e.Key + ": " + e.Err.Error()
}

// Is implements the [errors.Is] interface.
func (*ParamError) Is(other error) bool {
	_, ok := other.(*ParamError)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *ParamError) Unwrap() error {
	return e.Err
}
