// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package virtio

import "errors"

var (
	// ErrNotVirtioMmio is returned if a window does not start with the
	// virtio magic value.
	ErrNotVirtioMmio = errors.New("no virtio-mmio device")

	// ErrVersionUnknown is returned if a device reports a header version
	// other than 1 or 2.
	ErrVersionUnknown = errors.New("unknown virtio-mmio version")

	// ErrWindowEmpty is returned if a window carries the placeholder device
	// ID 0.
	ErrWindowEmpty = errors.New("device window is empty")

	// ErrAddressRange is returned if an address cannot be read via
	// [io.ReaderAt] offsets.
	ErrAddressRange = errors.New("address out of range")
)
