// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package stage1

import (
	"strconv"
)

const (
	// MaxDevices is the number of virtio-mmio device slots a host may
	// declare. The slots are conventionally used for the block, 9p and
	// console devices.
	MaxDevices = 3

	// MaxStage2Args is the maximum number of stage2 argument vector tokens
	// a host may declare, including the executable path itself.
	MaxStage2Args = 254
)

// DeviceAddress is the guest-physical base address of a virtio-mmio device
// register window.
type DeviceAddress uint64

// String returns the address the way the kernel log shows it: lowercase
// hexadecimal without a prefix.
func (a DeviceAddress) String() string {
	return strconv.FormatUint(uint64(a), 16)
}

// ParseDeviceAddress parses a single raw device token.
//
// Tokens are base-10 unsigned 64-bit integers only. No hexadecimal or octal
// prefixes are recognized. Returns an [InvalidAddressError] naming the
// offending token otherwise.
func ParseDeviceAddress(token string) (DeviceAddress, error) {
	value, err := strconv.ParseUint(token, 10, 64)
	if err != nil {
		return 0, &InvalidAddressError{Token: token, Err: err}
	}

	return DeviceAddress(value), nil
}
