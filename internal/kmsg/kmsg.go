// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package kmsg writes diagnostic lines to the kernel log.
//
// Each write to /dev/kmsg becomes one log record, so callers must write
// whole lines. The kernel limits records to about 1 KiB and adds its own
// timestamps.
package kmsg

import (
	"io"
	"os"
)

// Path is the kernel log device.
const Path = "/dev/kmsg"

// Open opens the kernel log device at path, usually [Path], for writing.
func Open(path string) (*os.File, error) {
	//nolint:wrapcheck
	return os.OpenFile(path, os.O_WRONLY, 0)
}

// OpenFile opens the kernel log device at path for writing.
//
// If the device is not available, like in containers or unprivileged runs,
// the returned writer falls back to the given writer instead. The fallback
// is not closed by the returned closer.
func OpenFile(path string, fallback io.Writer) io.WriteCloser {
	file, err := Open(path)
	if err != nil {
		return nopCloser{fallback}
	}

	return file
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
