// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package payload reads and writes the stage2 payload archive.
//
// The payload is a cpio archive in newc format, the same format the kernel
// uses for initramfs archives. The host packs the stage2 executable tree
// into it and serves it on the control channel; the guest unpacks it before
// spawning stage2.
package payload
