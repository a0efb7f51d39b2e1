// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package stage2

import (
	"fmt"
	"os"
	"strings"
)

// DefaultPath is used as PATH if the inherited environment does not
// carry one. It matches the usual login shell search path.
const DefaultPath = "/usr/local/sbin:/usr/local/bin:/usr/sbin:/usr/bin:/sbin:/bin"

// EnvironPath returns the path of the environ file of the process with
// the given PID.
func EnvironPath(pid int) string {
	return fmt.Sprintf("/proc/%d/environ", pid)
}

// ReadEnviron reads the environment variables from the given proc
// environ file.
//
// Entries are NUL separated key=value pairs. Entries without a "="
// are skipped.
func ReadEnviron(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read environ: %w", err)
	}

	var env []string

	for _, entry := range strings.Split(string(content), "\x00") {
		if entry == "" {
			continue
		}

		if !strings.Contains(entry, "=") {
			continue
		}

		env = append(env, entry)
	}

	return env, nil
}
