// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package stage2

import (
	"io"
	"maps"
	"os"
	"os/exec"
	"slices"
	"strings"
	"syscall"
)

const defaultCommand = "sh"

var defaultArgs = []string{"-l"}

type options struct {
	environFile string
	home        string
	dir         string
	console     *os.File
	stdin       io.Reader
	stdout      io.Writer
	stderr      io.Writer
}

// Option modifies how the stage2 command is assembled.
type Option func(*options)

// WithEnvironFile inherits the environment variables found in the given
// proc environ file instead of the ones of the current process.
func WithEnvironFile(path string) Option {
	return func(o *options) {
		o.environFile = path
	}
}

// WithEnvironPID inherits the environment variables of the process with
// the given PID instead of the ones of the current process.
func WithEnvironPID(pid int) Option {
	return WithEnvironFile(EnvironPath(pid))
}

// WithHome sets the HOME environment variable.
func WithHome(dir string) Option {
	return func(o *options) {
		o.home = dir
	}
}

// WithDir sets the working directory the command starts in.
func WithDir(dir string) Option {
	return func(o *options) {
		o.dir = dir
	}
}

// WithStdio connects the command's standard streams.
func WithStdio(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(o *options) {
		o.stdin = stdin
		o.stdout = stdout
		o.stderr = stderr
	}
}

// WithConsole connects all standard streams to the given terminal and
// makes it the controlling terminal of a new session.
//
// It takes precedence over [WithStdio].
func WithConsole(console *os.File) Option {
	return func(o *options) {
		o.console = console
	}
}

// Command assembles the command for the given argument vector.
//
// An empty vector defaults to an interactive login shell. The
// environment is inherited from the current process unless a different
// source is set with [WithEnvironFile] or [WithEnvironPID]. PATH is
// always present, either the one of the current process or
// [DefaultPath].
func Command(argv []string, opts ...Option) (*exec.Cmd, error) {
	var opt options

	for _, o := range opts {
		o(&opt)
	}

	name := defaultCommand
	args := defaultArgs

	if len(argv) > 0 {
		name = argv[0]
		args = argv[1:]
	}

	if name == "" {
		return nil, ErrEmptyCommand
	}

	env, err := buildEnv(&opt)
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(name, args...)
	cmd.Env = env
	cmd.Dir = opt.dir

	if opt.console != nil {
		cmd.Stdin = opt.console
		cmd.Stdout = opt.console
		cmd.Stderr = opt.console
		cmd.SysProcAttr = &syscall.SysProcAttr{
			Setsid:  true,
			Setctty: true,
		}
	} else {
		cmd.Stdin = opt.stdin
		cmd.Stdout = opt.stdout
		cmd.Stderr = opt.stderr
	}

	return cmd, nil
}

func buildEnv(opt *options) ([]string, error) {
	pairs := os.Environ()

	if opt.environFile != "" {
		inherited, err := ReadEnviron(opt.environFile)
		if err != nil {
			return nil, err
		}

		pairs = inherited
	}

	env := make(map[string]string, len(pairs))

	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found {
			continue
		}

		env[key] = value
	}

	// PATH follows the current process, not the inherited set.
	path, found := os.LookupEnv("PATH")
	if !found || path == "" {
		path = DefaultPath
	}

	env["PATH"] = path

	if opt.home != "" {
		env["HOME"] = opt.home
	}

	result := make([]string, 0, len(env))
	for _, key := range slices.Sorted(maps.Keys(env)) {
		result = append(result, key+"="+env[key])
	}

	return result, nil
}
