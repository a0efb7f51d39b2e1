// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package guest

import "errors"

// ErrSessionClosed is returned if a session is torn down more than once.
var ErrSessionClosed = errors.New("session already torn down")
