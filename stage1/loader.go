// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package stage1

import (
	"fmt"
	"io"
	"slices"
)

// Diagnostic line formats. Operator tooling matches on these literally, so
// they must not change.
const (
	diagAddrFmt    = "stage1: addr: %x\n"
	diagInvalidFmt = "stage1: invalid mmio address: %s\n"
)

// Config configures a [Loader].
type Config struct {
	// BringUp is the device and process bring-up routine. Required.
	BringUp DeviceBringUp

	// Diag receives the line-oriented diagnostic records: one line per
	// parsed device address and one line naming the offending token on
	// parse failure. Usually the kernel log. Defaults to [io.Discard].
	Diag io.Writer
}

// Loader is the stage1 bootstrap loader state for one guest boot.
//
// There is at most one active Loader per boot cycle. The hosting
// environment serializes [Loader.Activate] and [Loader.Deactivate], so the
// Loader itself takes no locks. It is not safe for concurrent use.
type Loader struct {
	bringUp DeviceBringUp
	diag    io.Writer

	state     State
	cycleDone bool

	addrs   []DeviceAddress
	argv    []string
	session Session
}

// New creates a new [Loader] in [StateUnloaded].
func New(cfg Config) (*Loader, error) {
	if cfg.BringUp == nil {
		return nil, ErrNoBringUp
	}

	diag := cfg.Diag
	if diag == nil {
		diag = io.Discard
	}

	loader := &Loader{
		bringUp: cfg.BringUp,
		diag:    diag,
	}

	return loader, nil
}

// State returns the current lifecycle state.
func (l *Loader) State() State {
	return l.state
}

// Addresses returns the validated device addresses of the current cycle in
// declaration order. It is empty unless the loader is active.
func (l *Loader) Addresses() []DeviceAddress {
	return slices.Clone(l.addrs)
}

// Arguments returns the stage2 argument vector captured at activation
// time. It is empty unless the loader is active.
func (l *Loader) Arguments() []string {
	return slices.Clone(l.argv)
}

// Session returns the session handle the bring-up routine established, or
// nil unless the loader is active.
func (l *Loader) Session() Session {
	return l.session
}

// Activate captures and validates the host-declared boot parameters and
// delegates bring-up.
//
// Every device token is parsed as a base-10 unsigned 64-bit integer before
// any bring-up side effect happens. Validation is all-or-nothing: one
// invalid token aborts the activation with an [InvalidAddressError] and the
// bring-up routine is never invoked. A bring-up failure is surfaced as a
// [BringUpError] without any retry.
//
// Calling Activate while the loader is active fails with
// [ErrAlreadyActive] and has no side effects.
func (l *Loader) Activate(deviceTokens, argvTokens []string) error {
	if l.state == StateActive {
		return ErrAlreadyActive
	}

	// A fresh cycle begins. Nothing from a previously failed or completed
	// cycle carries over.
	l.reset()
	l.state = StateValidating

	if len(deviceTokens) > MaxDevices {
		l.state = StateActivationFailed
		return ErrTooManyDevices
	}

	if len(argvTokens) > MaxStage2Args {
		l.state = StateActivationFailed
		return ErrTooManyStage2Args
	}

	addrs := make([]DeviceAddress, 0, len(deviceTokens))

	for _, token := range deviceTokens {
		addr, err := ParseDeviceAddress(token)
		if err != nil {
			_, _ = fmt.Fprintf(l.diag, diagInvalidFmt, token)
			l.state = StateActivationFailed

			return err
		}

		_, _ = fmt.Fprintf(l.diag, diagAddrFmt, uint64(addr))
		addrs = append(addrs, addr)
	}

	session, err := l.bringUp.BringUp(addrs, argvTokens)
	if err != nil {
		l.state = StateActivationFailed
		return newBringUpError(err)
	}

	l.state = StateDevicesUp
	l.addrs = addrs
	l.argv = slices.Clone(argvTokens)
	l.session = session
	l.state = StateActive

	return nil
}

// Deactivate tears down what the bring-up routine established and releases
// the loader state.
//
// A Deactivate without a prior successful activation in the current cycle
// fails fast with [ErrUnloadWithoutLoad]; a repeated Deactivate fails fast
// with [ErrDoubleUnload]. In both cases no teardown call is made. The
// lifecycle transition completes even if the session teardown reports an
// error; the error is returned after the bookkeeping is done.
func (l *Loader) Deactivate() error {
	switch l.state {
	case StateActive:
	case StateUnloaded:
		if l.cycleDone {
			return ErrDoubleUnload
		}

		return ErrUnloadWithoutLoad
	default:
		return ErrUnloadWithoutLoad
	}

	l.state = StateDeactivating
	err := l.session.TearDown()

	l.reset()
	l.cycleDone = true

	if err != nil {
		return fmt.Errorf("teardown: %w", err)
	}

	return nil
}

func (l *Loader) reset() {
	l.state = StateUnloaded
	l.cycleDone = false
	l.addrs = nil
	l.argv = nil
	l.session = nil
}
