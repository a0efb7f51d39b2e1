// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package stage1 implements the bootstrap loader that runs as the first
// code of the introspection tool inside a guest. It captures the
// host-supplied boot parameters (virtio-mmio device addresses and the
// stage2 argument vector), validates them, delegates device and process
// bring-up to a [DeviceBringUp] and provides the matching teardown.
//
// The loader itself performs no device or process work. It is strictly a
// validation and lifecycle layer: exactly one activation and one
// deactivation per boot cycle, with all parameters checked before any
// bring-up side effect happens.
package stage1
