// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Stage1 is the guest-side bootstrap loader.
//
// It reads the host-declared device addresses and stage2 argument
// vector from the kernel command line, activates the loader and waits
// for the stage2 process chain to terminate. Diagnostic output goes to
// the kernel log so the host can follow the bootstrap.
//
// Run as PID 1 it shuts the system down once the session ended.
// Run as a regular process it exits with the stage2 exit code, or 1 if
// the bootstrap itself failed.
package main

import (
	"errors"
	"io"
	"log"
	"os"

	"github.com/aibor/stagerun/internal/bootparam"
	"github.com/aibor/stagerun/internal/guest"
	"github.com/aibor/stagerun/internal/kmsg"
	"github.com/aibor/stagerun/stage1"
)

// cmdlineEnvVar overrides the kernel command line. Intended for running
// the loader outside of a guest.
const cmdlineEnvVar = "STAGE1_CMDLINE"

func readParams() (bootparam.Params, error) {
	if cmdline, ok := os.LookupEnv(cmdlineEnvVar); ok {
		return bootparam.Parse(cmdline)
	}

	return bootparam.ReadFile(bootparam.CmdlinePath)
}

func run(diag io.Writer) (int, error) {
	params, err := readParams()
	if err != nil {
		return 0, err
	}

	cfg := guest.DefaultConfig()
	cfg.Diag = diag

	loader, err := stage1.New(stage1.Config{
		BringUp: guest.NewSystem(cfg),
		Diag:    diag,
	})
	if err != nil {
		return 0, err
	}

	err = loader.Activate(params.Devices, params.Stage2Argv)
	if err != nil {
		return 0, err
	}

	exitCode := 0

	if session, ok := loader.Session().(*guest.Session); ok {
		exitCode, err = session.Wait()
	}

	if deactivateErr := loader.Deactivate(); deactivateErr != nil {
		err = errors.Join(err, deactivateErr)
	}

	return exitCode, err
}

func main() {
	diag := kmsg.OpenFile(kmsg.Path, os.Stderr)
	defer diag.Close()

	log.SetOutput(diag)
	log.SetFlags(0)
	log.SetPrefix("stage1: ")

	exitCode, err := run(diag)
	if err != nil {
		log.Print("ERROR ", err.Error())

		if exitCode == 0 {
			exitCode = 1
		}
	}

	if guest.IsPidOne() {
		// PID 1 must not exit, shut the system down instead.
		if err := guest.Poweroff(); err != nil {
			log.Print("ERROR poweroff: ", err.Error())
		}

		return
	}

	os.Exit(exitCode)
}
