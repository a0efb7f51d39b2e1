// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package stage2 builds the command that runs the host-chosen process
// chain inside the guest.
//
// The host declares the argument vector via the stage1 boot parameters.
// Without one, an interactive login shell is started. The environment is
// inherited either from the current process or from an arbitrary target
// process's /proc environ file, with PATH forced to a sane value.
package stage2
