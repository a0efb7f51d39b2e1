// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package bootparam reads and writes the stage1 boot parameters on the
// kernel command line.
//
// The parameters follow kernel module parameter array conventions: a comma
// separated list of values per key. Values containing white space are
// supported by double quoting; values containing commas cannot be
// represented at all.
package bootparam

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/aibor/stagerun/stage1"
)

// Kernel command line keys for the stage1 boot parameters.
const (
	DevicesKey    = "stage1.devices"
	Stage2ArgvKey = "stage1.stage2_argv"
)

// CmdlinePath is the usual location of the kernel command line in the
// guest.
const CmdlinePath = "/proc/cmdline"

// Params are the host-declared stage1 boot parameters.
type Params struct {
	// Devices are the raw virtio-mmio device address tokens in declaration
	// order. Tokens are not validated here; the loader parses them.
	Devices []string

	// Stage2Argv is the raw stage2 argument vector.
	Stage2Argv []string
}

// Parse extracts the stage1 parameters from a kernel command line.
//
// Fields are split on white space honoring double quotes. For repeated keys
// the last occurrence wins, as the kernel does for module parameters.
// Absent or empty keys yield empty lists. Unknown parameters are ignored.
func Parse(cmdline string) (Params, error) {
	var params Params

	for _, field := range splitFields(cmdline) {
		key, value, found := strings.Cut(field, "=")
		if !found {
			continue
		}

		switch key {
		case DevicesKey:
			params.Devices = splitList(value)
		case Stage2ArgvKey:
			params.Stage2Argv = splitList(value)
		}
	}

	if len(params.Devices) > stage1.MaxDevices {
		return Params{}, &ParamError{Key: DevicesKey, Err: ErrTooManyValues}
	}

	if len(params.Stage2Argv) > stage1.MaxStage2Args {
		return Params{}, &ParamError{Key: Stage2ArgvKey, Err: ErrTooManyValues}
	}

	return params, nil
}

// ReadFile reads and parses the kernel command line from the given file,
// usually [CmdlinePath].
func ReadFile(path string) (Params, error) {
	cmdline, err := os.ReadFile(path)
	if err != nil {
		return Params{}, fmt.Errorf("read cmdline: %w", err)
	}

	return Parse(strings.TrimSpace(string(cmdline)))
}

// Encode renders the command line fragment declaring the parameters.
//
// Empty lists are omitted entirely. Values containing white space are
// double quoted. Values containing commas, double quotes or control
// characters cannot be represented and fail with a [ParamError].
func (p Params) Encode() (string, error) {
	var fragments []string

	for _, param := range []struct {
		key    string
		values []string
		max    int
	}{
		{DevicesKey, p.Devices, stage1.MaxDevices},
		{Stage2ArgvKey, p.Stage2Argv, stage1.MaxStage2Args},
	} {
		if len(param.values) == 0 {
			continue
		}

		if len(param.values) > param.max {
			return "", &ParamError{Key: param.key, Err: ErrTooManyValues}
		}

		value, err := encodeList(param.values)
		if err != nil {
			return "", &ParamError{Key: param.key, Err: err}
		}

		if strings.ContainsFunc(value, unicode.IsSpace) {
			value = `"` + value + `"`
		}

		fragments = append(fragments, param.key+"="+value)
	}

	return strings.Join(fragments, " "), nil
}

// AddressTokens renders device addresses as the base-10 tokens the loader
// expects on the wire.
func AddressTokens(addrs []stage1.DeviceAddress) []string {
	tokens := make([]string, len(addrs))
	for idx, addr := range addrs {
		tokens[idx] = strconv.FormatUint(uint64(addr), 10)
	}

	return tokens
}

// splitFields splits a kernel command line into its fields. Double quotes
// group white space separated words into a single field and are dropped. An
// unterminated quote extends to the end of the line, as the kernel parser
// does.
func splitFields(s string) []string {
	var (
		fields  []string
		field   strings.Builder
		inQuote bool
	)

	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
		case !inQuote && unicode.IsSpace(r):
			if field.Len() > 0 {
				fields = append(fields, field.String())
				field.Reset()
			}
		default:
			field.WriteRune(r)
		}
	}

	if field.Len() > 0 {
		fields = append(fields, field.String())
	}

	return fields
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}

	return strings.Split(value, ",")
}

func encodeList(values []string) (string, error) {
	for _, value := range values {
		if strings.ContainsAny(value, ",\"") {
			return "", fmt.Errorf("%w: %q", ErrValueNotEncodable, value)
		}

		if strings.ContainsFunc(value, unicode.IsControl) {
			return "", fmt.Errorf("%w: %q", ErrValueNotEncodable, value)
		}
	}

	return strings.Join(values, ","), nil
}
