// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package payload

import "errors"

var (
	// ErrNotRegularFile is returned if a file to archive is not a regular
	// file.
	ErrNotRegularFile = errors.New("not a regular file")

	// ErrUnsafePath is returned if an archive entry name would escape the
	// extraction directory.
	ErrUnsafePath = errors.New("unsafe path in archive")

	// ErrFileTypeUnsupported is returned if an archive entry is neither a
	// directory, a symbolic link nor a regular file.
	ErrFileTypeUnsupported = errors.New("unsupported file type")
)
