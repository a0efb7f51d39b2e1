// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package stage1

// DeviceBringUp wires up the declared virtio-mmio devices and starts the
// stage2 process chain.
//
// The loader treats the routine as an opaque synchronous call with a single
// success or failure outcome. It is invoked at most once per activation and
// never retried. Cleanup of partially initialized devices on failure is the
// routine's own responsibility; the loader only propagates the status.
type DeviceBringUp interface {
	// BringUp receives the validated device addresses in declaration order
	// and the raw stage2 argument vector. An empty address list is valid.
	// An empty argument vector is the routine's concern, not the loader's.
	BringUp(addrs []DeviceAddress, argv []string) (Session, error)
}

// Session is the handle for whatever a [DeviceBringUp] established. The
// loader holds it from successful activation until deactivation.
type Session interface {
	// TearDown releases the resources the bring-up routine allocated. It
	// does not wait for the stage2 process chain to finish. It is called
	// exactly once by [Loader.Deactivate].
	TearDown() error
}
