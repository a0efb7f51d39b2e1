// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package guest

import (
	"fmt"

	"github.com/vishvananda/netlink"
)

// ConfigureLoopbackInterface brings the loopback interface up.
//
// The kernel configures the addresses automatically.
func ConfigureLoopbackInterface() error {
	lo, err := netlink.LinkByName("lo")
	if err != nil {
		return fmt.Errorf("get loopback link: %w", err)
	}

	if err := netlink.LinkSetUp(lo); err != nil {
		return fmt.Errorf("set loopback link up: %w", err)
	}

	return nil
}
