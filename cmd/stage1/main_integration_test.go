// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

//go:build integration_guest

package main

import (
	"bytes"
	"sync"
	"testing"

	"github.com/aibor/stagerun/stage1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer collects diagnostic output from concurrent writers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

func TestRun(t *testing.T) {
	tests := []struct {
		name             string
		cmdline          string
		expectedExitCode int
		expectedErr      error
		expectedOutput   []string
	}{
		{
			name:             "plain command",
			cmdline:          "stage1.stage2_argv=/bin/true",
			expectedExitCode: 0,
			expectedOutput:   []string{"stage1: exit: 0\n"},
		},
		{
			name:             "exit code is passed through",
			cmdline:          `stage1.stage2_argv="/bin/sh,-c,exit 3"`,
			expectedExitCode: 3,
			expectedOutput:   []string{"stage1: exit: 3\n"},
		},
		{
			name:             "output is forwarded",
			cmdline:          `stage1.stage2_argv="/bin/sh,-c,echo hello"`,
			expectedExitCode: 0,
			expectedOutput: []string{
				"stage1: out: hello\n",
				"stage1: exit: 0\n",
			},
		},
		{
			name:        "invalid device address",
			cmdline:     "stage1.devices=abc stage1.stage2_argv=/bin/true",
			expectedErr: &stage1.InvalidAddressError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(cmdlineEnvVar, tt.cmdline)

			diag := &syncBuffer{}

			exitCode, err := run(diag)
			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectedExitCode, exitCode)

			for _, line := range tt.expectedOutput {
				assert.Contains(t, diag.String(), line)
			}
		})
	}
}
