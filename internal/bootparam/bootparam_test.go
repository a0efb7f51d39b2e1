// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bootparam_test

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/aibor/stagerun/internal/bootparam"
	"github.com/aibor/stagerun/stage1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		cmdline     string
		expected    bootparam.Params
		expectedErr error
	}{
		{
			name: "empty",
		},
		{
			name:    "unrelated parameters only",
			cmdline: "console=ttyS0 root=/dev/vda rw rdinit=/init",
		},
		{
			name:    "single device",
			cmdline: "stage1.devices=3489660928",
			expected: bootparam.Params{
				Devices: []string{"3489660928"},
			},
		},
		{
			name:    "all parameters",
			cmdline: "console=hvc0 stage1.devices=3489660928,3489664768 stage1.stage2_argv=/bin/sh,-l quiet",
			expected: bootparam.Params{
				Devices:    []string{"3489660928", "3489664768"},
				Stage2Argv: []string{"/bin/sh", "-l"},
			},
		},
		{
			name:    "quoted value with spaces",
			cmdline: `stage1.stage2_argv="/bin/echo,hello world"`,
			expected: bootparam.Params{
				Stage2Argv: []string{"/bin/echo", "hello world"},
			},
		},
		{
			name:    "last occurrence wins",
			cmdline: "stage1.devices=1024 stage1.devices=2048",
			expected: bootparam.Params{
				Devices: []string{"2048"},
			},
		},
		{
			name:    "empty value",
			cmdline: "stage1.devices= stage1.stage2_argv=/bin/true",
			expected: bootparam.Params{
				Stage2Argv: []string{"/bin/true"},
			},
		},
		{
			name:    "trailing comma keeps empty token",
			cmdline: "stage1.devices=1024,",
			expected: bootparam.Params{
				Devices: []string{"1024", ""},
			},
		},
		{
			name:    "invalid tokens are not validated here",
			cmdline: "stage1.devices=abc",
			expected: bootparam.Params{
				Devices: []string{"abc"},
			},
		},
		{
			name:    "unterminated quote extends to end",
			cmdline: `stage1.stage2_argv="/bin/echo,a b`,
			expected: bootparam.Params{
				Stage2Argv: []string{"/bin/echo", "a b"},
			},
		},
		{
			name:        "too many devices",
			cmdline:     "stage1.devices=1,2,3,4",
			expectedErr: bootparam.ErrTooManyValues,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual, err := bootparam.Parse(tt.cmdline)
			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
				require.ErrorIs(t, err, &bootparam.ParamError{})

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, actual)
		})
	}
}

func TestParseTooManyArgvTokens(t *testing.T) {
	cmdline := bootparam.Stage2ArgvKey + "="
	for idx := range stage1.MaxStage2Args + 1 {
		if idx > 0 {
			cmdline += ","
		}

		cmdline += strconv.Itoa(idx)
	}

	_, err := bootparam.Parse(cmdline)

	require.ErrorIs(t, err, bootparam.ErrTooManyValues)
}

func TestReadFile(t *testing.T) {
	t.Run("reads and trims", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cmdline")
		content := "console=ttyS0 stage1.devices=1024 stage1.stage2_argv=/bin/sh,-l\n"

		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		params, err := bootparam.ReadFile(path)

		require.NoError(t, err)
		assert.Equal(t, []string{"1024"}, params.Devices)
		assert.Equal(t, []string{"/bin/sh", "-l"}, params.Stage2Argv)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := bootparam.ReadFile(filepath.Join(t.TempDir(), "missing"))

		require.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestParamsEncode(t *testing.T) {
	tests := []struct {
		name        string
		params      bootparam.Params
		expected    string
		expectedErr error
	}{
		{
			name: "empty",
		},
		{
			name: "devices only",
			params: bootparam.Params{
				Devices: []string{"3489660928", "3489664768"},
			},
			expected: "stage1.devices=3489660928,3489664768",
		},
		{
			name: "all parameters",
			params: bootparam.Params{
				Devices:    []string{"1024"},
				Stage2Argv: []string{"/bin/sh", "-l"},
			},
			expected: "stage1.devices=1024 stage1.stage2_argv=/bin/sh,-l",
		},
		{
			name: "value with spaces is quoted",
			params: bootparam.Params{
				Stage2Argv: []string{"/bin/echo", "hello world"},
			},
			expected: `stage1.stage2_argv="/bin/echo,hello world"`,
		},
		{
			name: "comma in value",
			params: bootparam.Params{
				Stage2Argv: []string{"/bin/echo", "a,b"},
			},
			expectedErr: bootparam.ErrValueNotEncodable,
		},
		{
			name: "double quote in value",
			params: bootparam.Params{
				Stage2Argv: []string{`/bin/echo`, `a"b`},
			},
			expectedErr: bootparam.ErrValueNotEncodable,
		},
		{
			name: "newline in value",
			params: bootparam.Params{
				Stage2Argv: []string{"/bin/echo", "a\nb"},
			},
			expectedErr: bootparam.ErrValueNotEncodable,
		},
		{
			name: "too many devices",
			params: bootparam.Params{
				Devices: []string{"1", "2", "3", "4"},
			},
			expectedErr: bootparam.ErrTooManyValues,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual, err := tt.params.Encode()
			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, actual)
		})
	}
}

func TestEncodeParseRoundTrip(t *testing.T) {
	params := bootparam.Params{
		Devices:    []string{"3489660928", "3489664768", "3489668608"},
		Stage2Argv: []string{"/bin/echo", "hello world", "-n"},
	}

	fragment, err := params.Encode()
	require.NoError(t, err)

	actual, err := bootparam.Parse("console=hvc0 " + fragment + " quiet")
	require.NoError(t, err)

	assert.Equal(t, params, actual)
}

func TestAddressTokens(t *testing.T) {
	addrs := []stage1.DeviceAddress{0xd0000000, 1024, 0}

	assert.Equal(
		t,
		[]string{"3489660928", "1024", "0"},
		bootparam.AddressTokens(addrs),
	)
}
