// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package stage2

import "errors"

// ErrEmptyCommand is returned if the first argument vector token is
// present but empty.
var ErrEmptyCommand = errors.New("command name is empty")
