// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package stage1

import (
	"errors"
	"fmt"
	"syscall"
)

// InvalidAddressError is returned by [Loader.Activate] if a device token is
// not a valid base-10 unsigned 64-bit integer. The whole activation is
// aborted; no device is brought up.
type InvalidAddressError struct {
	// Token is the literal text of the offending token.
	Token string
	Err   error
}

// Error implements the [error] interface.
func (e *InvalidAddressError) Error() string {
	return "invalid mmio address: " + e.Token
}

// Is implements the [errors.Is] interface.
func (*InvalidAddressError) Is(other error) bool {
	_, ok := other.(*InvalidAddressError)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *InvalidAddressError) Unwrap() error {
	return e.Err
}

// BringUpError wraps a failure reported by the [DeviceBringUp] routine. The
// routine's status is surfaced verbatim and never retried.
type BringUpError struct {
	Err error
	// Code is the numeric status of the failure: the errno value if the
	// wrapped error carries one, 1 otherwise.
	Code int
}

// Error implements the [error] interface.
func (e *BringUpError) Error() string {
	return fmt.Sprintf("bring-up failed with status %d: %v", e.Code, e.Err)
}

// Is implements the [errors.Is] interface.
func (*BringUpError) Is(other error) bool {
	_, ok := other.(*BringUpError)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *BringUpError) Unwrap() error {
	return e.Err
}

func newBringUpError(err error) *BringUpError {
	code := 1

	var errno syscall.Errno
	if errors.As(err, &errno) {
		code = int(errno)
	}

	return &BringUpError{Err: err, Code: code}
}
