// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Mkbootargs renders the kernel command line parameters for the stage1
// bootstrap loader.
//
// The host appends the output to the guest kernel command line to
// announce the virtio-mmio device windows and the stage2 argument
// vector.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/aibor/stagerun/internal/bootparam"
	"github.com/aibor/stagerun/internal/virtio"
	"github.com/aibor/stagerun/stage1"
)

const usageMessage = `Usage of 'mkbootargs':
    mkbootargs [flags...] [command [args...]]

Renders the stage1 kernel command line parameters that announce the
virtio-mmio device windows and the stage2 argument vector to the guest.

Device windows are given explicitly with -device, or with -windows as
the first n windows of the built-in address plan. With -mmio the
virtio_mmio.device parameters that register the windows with the guest
kernel are emitted as well, with IRQ lines assigned consecutively.

Examples:
    mkbootargs -windows 2 -mmio /bin/sh -l
    mkbootargs -device 0xd0000000
`

// addressList collects device window addresses. Accepts decimal and
// prefixed hex or octal values.
type addressList []uint64

func (l *addressList) String() string {
	tokens := make([]string, len(*l))
	for idx, addr := range *l {
		tokens[idx] = strconv.FormatUint(addr, 10)
	}

	return strings.Join(tokens, ",")
}

func (l *addressList) Set(value string) error {
	for _, token := range strings.Split(value, ",") {
		addr, err := strconv.ParseUint(token, 0, 64)
		if err != nil {
			return fmt.Errorf("parse address %q: %w", token, err)
		}

		*l = append(*l, addr)
	}

	return nil
}

type flags struct {
	devices addressList
	windows int
	mmio    bool
	debug   bool

	argv []string

	flagSet *flag.FlagSet
}

func newFlags(output io.Writer) *flags {
	f := &flags{}

	flagSet := flag.NewFlagSet("mkbootargs", flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() {
		fmt.Fprint(flagSet.Output(), usageMessage)
		fmt.Fprintln(flagSet.Output(), "\nFlags:")
		flagSet.PrintDefaults()
	}

	flagSet.Var(
		&f.devices,
		"device",
		"guest-physical device window address. May be used more than once.",
	)

	flagSet.IntVar(
		&f.windows,
		"windows",
		f.windows,
		"number of device windows from the built-in address plan",
	)

	flagSet.BoolVar(
		&f.mmio,
		"mmio",
		f.mmio,
		"emit the virtio_mmio.device parameters as well",
	)

	flagSet.BoolVar(
		&f.debug,
		"debug",
		f.debug,
		"enable debug output",
	)

	f.flagSet = flagSet

	return f
}

func (f *flags) parseArgs(args []string) error {
	// Parses arguments up and to the first one that is not prefixed with
	// a "-" or is "--".
	err := f.flagSet.Parse(args)
	if err != nil {
		return err //nolint:wrapcheck
	}

	for n := range f.windows {
		f.devices = append(f.devices, virtio.WindowAddress(n))
	}

	// All positional arguments form the stage2 argument vector.
	f.argv = f.flagSet.Args()

	return nil
}

func setupLogging(writer io.Writer, debug bool) {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(
		writer,
		&slog.HandlerOptions{
			Level: level,
		},
	)))
}

func run(args []string, stdout, stderr io.Writer) error {
	flags := newFlags(stderr)

	if err := flags.parseArgs(args); err != nil {
		return err
	}

	setupLogging(stderr, flags.debug)

	addrs := make([]stage1.DeviceAddress, len(flags.devices))
	for idx, addr := range flags.devices {
		addrs[idx] = stage1.DeviceAddress(addr)
	}

	bootArgs := make([]string, 0, len(addrs)+1)

	if flags.mmio {
		for idx, addr := range flags.devices {
			param := virtio.CmdlineParam(addr, virtio.BaseIRQ+idx)

			slog.Debug("Register device window",
				slog.String("param", param))

			bootArgs = append(bootArgs, param)
		}
	}

	params := bootparam.Params{
		Devices:    bootparam.AddressTokens(addrs),
		Stage2Argv: flags.argv,
	}

	encoded, err := params.Encode()
	if err != nil {
		return fmt.Errorf("encode parameters: %w", err)
	}

	if encoded != "" {
		bootArgs = append(bootArgs, encoded)
	}

	fmt.Fprintln(stdout, strings.Join(bootArgs, " "))

	return nil
}

func main() {
	err := run(os.Args[1:], os.Stdout, os.Stderr)
	if err != nil {
		// Help output is not an error.
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}

		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
