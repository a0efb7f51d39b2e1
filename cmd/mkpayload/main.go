// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Mkpayload packs a directory tree into a stage2 payload archive.
//
// The archive is written to stdout. Placed as stage2.cpio in the
// control share it is unpacked by the stage1 loader before the stage2
// process chain starts.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/aibor/stagerun/internal/payload"
)

var errNoDirectory = errors.New("exactly one directory expected")

func run(args []string) error {
	if len(args) != 1 {
		return errNoDirectory
	}

	writer := payload.NewWriter(os.Stdout)

	if err := writer.WriteDirTree(args[0]); err != nil {
		return fmt.Errorf("pack %s: %w", args[0], err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}

	return nil
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
