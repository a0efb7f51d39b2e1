// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package guest

import "slices"

// cleanupStack collects the revert functions for side effects of the
// bring-up.
type cleanupStack struct {
	fns []func() error
}

// add registers a revert function. Functions are run in reverse order
// of registration.
func (s *cleanupStack) add(fn func() error) {
	s.fns = append(s.fns, fn)
}

// unwind runs all registered revert functions in reverse order.
//
// All functions are run, even if some fail. The errors are returned in
// the order the functions ran. The stack is empty afterwards.
func (s *cleanupStack) unwind() []error {
	fns := s.fns
	s.fns = nil

	slices.Reverse(fns)

	var errs []error

	for _, fn := range fns {
		if err := fn(); err != nil {
			errs = append(errs, err)
		}
	}

	return errs
}
