// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package virtio reads virtio-mmio device register windows.
//
// Only the device independent header registers are touched. That is enough
// to tell whether a host-declared guest-physical address actually carries a
// virtio-mmio device, and which one, before any driver takes over.
package virtio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Magic is the value of the first header register of every virtio-mmio
// device: "virt" in little-endian byte order.
const Magic = 0x74726976

// Header register offsets relative to the window base.
const (
	regMagicValue = 0x000
	regVersion    = 0x004
	regDeviceID   = 0x008
	regVendorID   = 0x00c

	headerLen = 16
)

// Well-known virtio device IDs.
const (
	DeviceIDNet     = 1
	DeviceIDBlock   = 2
	DeviceIDConsole = 3
	DeviceIDRNG     = 4
	DeviceID9P      = 9
)

// Address plan for the mmio device windows.
const (
	// WindowSize is the size of one device register window.
	WindowSize = 0x1000

	// BaseAddress is the start of the memory area reserved for mmio
	// devices: the 768 MiB gap right below 4 GiB.
	BaseAddress = (1 << 32) - (768 << 20)

	// BaseIRQ is the GSI of the first device window. Consecutive windows
	// use consecutive lines.
	BaseIRQ = 5
)

// Device describes the virtio-mmio device found in a register window.
type Device struct {
	Version  uint32
	DeviceID uint32
	VendorID uint32
}

// Name returns a human readable name for the device type.
func (d Device) Name() string {
	switch d.DeviceID {
	case DeviceIDNet:
		return "net"
	case DeviceIDBlock:
		return "block"
	case DeviceIDConsole:
		return "console"
	case DeviceIDRNG:
		return "rng"
	case DeviceID9P:
		return "9p"
	default:
		return "unknown"
	}
}

// String implements [fmt.Stringer].
func (d Device) String() string {
	return fmt.Sprintf("%s (id %d, version %d, vendor %#x)",
		d.Name(), d.DeviceID, d.Version, d.VendorID)
}

// Probe reads the virtio-mmio header at the given guest-physical address.
//
// The reader provides physical memory, like an open /dev/mem. Probe fails
// if the window does not carry the virtio magic, has an unknown header
// version, or holds a placeholder window without a device behind it.
func Probe(mem io.ReaderAt, addr uint64) (Device, error) {
	if addr > math.MaxInt64-headerLen {
		return Device{}, fmt.Errorf("probe %#x: %w", addr, ErrAddressRange)
	}

	header := make([]byte, headerLen)
	if _, err := mem.ReadAt(header, int64(addr)); err != nil {
		return Device{}, fmt.Errorf("probe %#x: %w", addr, err)
	}

	if binary.LittleEndian.Uint32(header[regMagicValue:]) != Magic {
		return Device{}, fmt.Errorf("probe %#x: %w", addr, ErrNotVirtioMmio)
	}

	device := Device{
		Version:  binary.LittleEndian.Uint32(header[regVersion:]),
		DeviceID: binary.LittleEndian.Uint32(header[regDeviceID:]),
		VendorID: binary.LittleEndian.Uint32(header[regVendorID:]),
	}

	if device.Version < 1 || device.Version > 2 {
		return Device{}, fmt.Errorf("probe %#x: %w %d",
			addr, ErrVersionUnknown, device.Version)
	}

	// Device ID 0 is a legal placeholder window with nothing behind it.
	if device.DeviceID == 0 {
		return Device{}, fmt.Errorf("probe %#x: %w", addr, ErrWindowEmpty)
	}

	return device, nil
}

// CmdlineParam renders the kernel command line parameter that makes the
// guest kernel register the device window at the given address and IRQ.
func CmdlineParam(addr uint64, irq int) string {
	return fmt.Sprintf("virtio_mmio.device=4k@0x%x:%d", addr, irq)
}

// WindowAddress returns the base address of the nth device window of the
// address plan.
func WindowAddress(n int) uint64 {
	return BaseAddress + uint64(n)*WindowSize
}
