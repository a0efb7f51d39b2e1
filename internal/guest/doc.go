// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package guest brings the host-provided virtio-mmio devices into
// service and runs the stage2 process chain on top of them.
//
// It implements the bring-up contract of the stage1 loader: probe the
// announced device windows, mount the control share, unpack the stage2
// payload and spawn the process chain. All side effects are tracked and
// reverted in reverse order, either on a failed bring-up or when the
// session is torn down.
package guest
