// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package guest

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

func mount(path, source, fsType, data string) error {
	if source == "" {
		source = fsType
	}

	err := unix.Mount(source, path, fsType, 0, data)
	if err != nil && !errors.Is(err, unix.EBUSY) {
		// EBUSY means something is mounted there already.
		return fmt.Errorf("mount %s: %w", path, err)
	}

	return nil
}

func unmount(path string) error {
	if err := unix.Unmount(path, 0); err != nil {
		return fmt.Errorf("unmount %s: %w", path, err)
	}

	return nil
}

// IsPidOne returns true if the running process has PID 1.
func IsPidOne() bool {
	return os.Getpid() == 1
}

// Poweroff shuts down the system.
//
// It does not return, unless in case of error.
func Poweroff() error {
	// Use restart instead of poweroff for shutting down the system since
	// it does not require ACPI. The guest system should be started with
	// noreboot.
	if err := unix.Reboot(unix.LINUX_REBOOT_CMD_RESTART); err != nil {
		return fmt.Errorf("reboot: %w", err)
	}

	return nil
}
