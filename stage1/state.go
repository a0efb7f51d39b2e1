// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package stage1

// State is the lifecycle state of a [Loader].
//
// The cycle is strictly linear:
//
//	Unloaded -> Validating -> (ActivationFailed | DevicesUp) -> Active
//	        -> Deactivating -> Unloaded
//
// StateActivationFailed and StateUnloaded are terminal for the current
// cycle. A fresh [Loader.Activate] call from either of them begins a new
// cycle without residual state.
type State int

const (
	// StateUnloaded means no activation happened yet, or the previous one
	// has been deactivated.
	StateUnloaded State = iota

	// StateValidating means boot parameters are being parsed. No device has
	// been touched yet.
	StateValidating

	// StateActivationFailed means parameter validation or bring-up failed.
	// No session exists.
	StateActivationFailed

	// StateDevicesUp means the bring-up routine returned successfully.
	StateDevicesUp

	// StateActive means activation is complete and the session handle is
	// held.
	StateActive

	// StateDeactivating means the session is being torn down.
	StateDeactivating
)

// String implements [fmt.Stringer].
func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateValidating:
		return "validating"
	case StateActivationFailed:
		return "activation-failed"
	case StateDevicesUp:
		return "devices-up"
	case StateActive:
		return "active"
	case StateDeactivating:
		return "deactivating"
	default:
		return "unknown"
	}
}
