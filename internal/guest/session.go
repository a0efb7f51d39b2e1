// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package guest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Session is a running stage2 process chain together with the side
// effects that were needed to bring it up.
type Session struct {
	cmd     *exec.Cmd
	diag    io.Writer
	cleanup *cleanupStack
	streams *errgroup.Group

	waitOnce sync.Once
	waitErr  error

	mu     sync.Mutex
	closed bool
}

// Wait waits for the stage2 process chain to terminate and returns its
// exit code.
//
// The exit code is announced on the diagnostic stream so the host can
// observe the termination. If the process was terminated by a signal,
// the exit code is -1.
func (s *Session) Wait() (int, error) {
	err := s.wait()

	exitCode := 0

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return -1, fmt.Errorf("wait: %w", err)
		}

		exitCode = exitErr.ExitCode()
	}

	_, _ = fmt.Fprintf(s.diag, "stage1: exit: %d\n", exitCode)

	return exitCode, nil
}

// TearDown terminates the stage2 process chain if it is still running
// and reverts the side effects of the bring-up in reverse order.
//
// All revert steps are run, even if some fail. Any further call returns
// [ErrSessionClosed].
func (s *Session) TearDown() error {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}

	s.closed = true
	s.mu.Unlock()

	var errs []error

	if err := s.kill(); err != nil {
		errs = append(errs, err)
	}

	// Reap the process. Its exit status does not matter here.
	_ = s.wait()

	errs = append(errs, s.cleanup.unwind()...)

	return errors.Join(errs...)
}

func (s *Session) kill() error {
	err := s.cmd.Process.Kill()
	if err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("kill: %w", err)
	}

	return nil
}

func (s *Session) wait() error {
	s.waitOnce.Do(func() {
		// The output streams must be drained before the command is
		// reaped, since reaping closes the pipes.
		var streamsErr error
		if s.streams != nil {
			streamsErr = s.streams.Wait()
		}

		s.waitErr = errors.Join(s.cmd.Wait(), streamsErr)
	})

	return s.waitErr
}

// forwardOutput connects the command's output streams and copies them
// line-wise into the diagnostic stream.
//
// Must be set up before the command is started.
func forwardOutput(cmd *exec.Cmd, diag io.Writer) (*errgroup.Group, error) {
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}

	group := &errgroup.Group{}
	group.Go(func() error { return forwardStream(stdout, diag, "out") })
	group.Go(func() error { return forwardStream(stderr, diag, "err") })

	return group, nil
}

func forwardStream(src io.Reader, diag io.Writer, name string) error {
	scanner := bufio.NewScanner(src)
	for scanner.Scan() {
		_, _ = fmt.Fprintf(diag, "stage1: %s: %s\n", name, scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("forward %s: %w", name, err)
	}

	return nil
}
