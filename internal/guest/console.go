// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package guest

import (
	"os"
	"strconv"
)

// Number of ports the kernel driver supports.
//
// https://github.com/torvalds/linux/blob/dd9c17322a6cc56d57b5d2b0b84393ab76a55c80/drivers/tty/hvc/hvc_console.h#L33
const virtConsolePorts = 8

// openConsole opens the first connected virtio console (/dev/hvc*).
//
// Consoles that are not connected on the host return ENODEV on open.
// Returns nil if no console is connected at all.
func openConsole() *os.File {
	for port := range virtConsolePorts {
		path := consolePath(port)

		hvc, err := os.OpenFile(path, os.O_RDWR, 0)
		if err != nil {
			continue
		}

		return hvc
	}

	return nil
}

func consolePath(port int) string {
	return "/dev/hvc" + strconv.Itoa(port)
}
