// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package stage1

import "slices"

// BringUpCall records the arguments of one [SpyBringUp.BringUp] invocation.
type BringUpCall struct {
	Addrs []DeviceAddress
	Argv  []string
}

// SpyBringUp is a [DeviceBringUp] for tests. It records all invocations and
// returns the configured session or error.
type SpyBringUp struct {
	// Session is returned on success. Defaults to a new [SpySession].
	Session Session

	// Err makes BringUp fail when set.
	Err error

	// Calls holds one entry per invocation in order.
	Calls []BringUpCall
}

// BringUp implements the [DeviceBringUp] interface.
func (s *SpyBringUp) BringUp(addrs []DeviceAddress, argv []string) (Session, error) {
	s.Calls = append(s.Calls, BringUpCall{
		Addrs: slices.Clone(addrs),
		Argv:  slices.Clone(argv),
	})

	if s.Err != nil {
		return nil, s.Err
	}

	if s.Session == nil {
		s.Session = &SpySession{}
	}

	return s.Session, nil
}

// SpySession is a [Session] for tests. It counts teardown calls and returns
// the configured error.
type SpySession struct {
	// Err is returned by every TearDown call.
	Err error

	// TearDowns is the number of TearDown calls so far.
	TearDowns int
}

// TearDown implements the [Session] interface.
func (s *SpySession) TearDown() error {
	s.TearDowns++
	return s.Err
}
