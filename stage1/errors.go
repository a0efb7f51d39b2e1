// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package stage1

import "errors"

var (
	// ErrNoBringUp is returned by [New] if the [Config] does not provide a
	// [DeviceBringUp].
	ErrNoBringUp = errors.New("no bring-up routine configured")

	// ErrTooManyDevices is returned if more than [MaxDevices] device tokens
	// are given.
	ErrTooManyDevices = errors.New("too many device addresses")

	// ErrTooManyStage2Args is returned if more than [MaxStage2Args] argv
	// tokens are given.
	ErrTooManyStage2Args = errors.New("too many stage2 arguments")

	// ErrAlreadyActive is returned if [Loader.Activate] is called while a
	// previous activation has not been deactivated. The hosting environment
	// guarantees one load event per boot cycle, so this indicates an
	// integration bug.
	ErrAlreadyActive = errors.New("loader is already active")

	// ErrUnloadWithoutLoad is returned if [Loader.Deactivate] is called
	// without a prior successful activation in the current cycle.
	ErrUnloadWithoutLoad = errors.New("loader was not activated")

	// ErrDoubleUnload is returned if [Loader.Deactivate] is called again
	// after the activation has already been deactivated.
	ErrDoubleUnload = errors.New("loader was already deactivated")
)
