// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package guest

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"slices"

	"github.com/aibor/stagerun/internal/payload"
	"github.com/aibor/stagerun/internal/virtio"
	"github.com/aibor/stagerun/stage1"
	"github.com/aibor/stagerun/stage2"
	"golang.org/x/sync/errgroup"
)

// Defaults for [Config].
const (
	DefaultMemPath    = "/dev/mem"
	DefaultControlTag = "stage1"
	DefaultControlDir = "/var/lib/stage1"
	DefaultRunDir     = "/run/stage1"
)

// payloadDirName is the directory below [Config.RunDir] the stage2
// payload is unpacked into.
const payloadDirName = "stage2"

// Config defines how the system is brought up.
type Config struct {
	// Mem is the physical memory the device windows are probed in. If
	// nil, MemPath is opened for probing.
	Mem io.ReaderAt

	// MemPath is the path of the physical memory device.
	MemPath string

	// ControlTag is the 9p share tag the host exposes the control
	// directory with.
	ControlTag string

	// ControlDir is the path the control share is mounted at.
	ControlDir string

	// RunDir is the path runtime state is placed below.
	RunDir string

	// MountPoints are the base file systems mounted before any device
	// is probed.
	MountPoints MountPoints

	// ConfigureLoopback determines if the loopback interface is brought
	// up.
	ConfigureLoopback bool

	// EnvironPID is the PID of the process the stage2 environment is
	// inherited from. If zero, the environment of the current process
	// is used.
	EnvironPID int

	// Home is the HOME directory set for the stage2 process chain.
	Home string

	// Diag is the stream diagnostic messages are written to.
	Diag io.Writer
}

// DefaultConfig returns the configuration used in a regular guest.
func DefaultConfig() Config {
	return Config{
		MemPath:           DefaultMemPath,
		ControlTag:        DefaultControlTag,
		ControlDir:        DefaultControlDir,
		RunDir:            DefaultRunDir,
		MountPoints:       BaseMountPoints(),
		ConfigureLoopback: true,
	}
}

// System brings host-provided virtio-mmio devices into service.
//
// It implements [stage1.DeviceBringUp].
type System struct {
	cfg Config
}

// NewSystem creates a new [System] with the given configuration.
func NewSystem(cfg Config) *System {
	if cfg.Diag == nil {
		cfg.Diag = io.Discard
	}

	return &System{cfg: cfg}
}

// BringUp probes the given device windows and starts the stage2 process
// chain with the given argument vector.
//
// The base file systems are mounted and the loopback interface is
// brought up first. They are system furniture and survive the session.
// All session state, like the control share mount and the unpacked
// payload, is reverted in reverse order if any later step fails.
func (s *System) BringUp(
	addrs []stage1.DeviceAddress,
	argv []string,
) (stage1.Session, error) {
	// Base file systems first. Probing needs the memory device node.
	if err := MountAll(s.cfg.MountPoints); err != nil {
		return nil, err
	}

	devices, err := s.probeWindows(addrs)
	if err != nil {
		return nil, err
	}

	if s.cfg.ConfigureLoopback {
		if err := ConfigureLoopbackInterface(); err != nil {
			return nil, err
		}
	}

	cleanup := &cleanupStack{}

	session, err := s.start(cleanup, devices, argv)
	if err != nil {
		for _, revertErr := range cleanup.unwind() {
			log.Print("ERROR revert: ", revertErr.Error())
		}

		return nil, err
	}

	return session, nil
}

// probeWindows verifies that every announced window actually carries a
// virtio-mmio device. No window is touched beyond its header registers.
func (s *System) probeWindows(
	addrs []stage1.DeviceAddress,
) ([]virtio.Device, error) {
	if len(addrs) == 0 {
		return nil, nil
	}

	mem := s.cfg.Mem
	if mem == nil {
		memFile, err := os.Open(s.cfg.MemPath)
		if err != nil {
			return nil, fmt.Errorf("open physical memory: %w", err)
		}

		defer memFile.Close()

		mem = memFile
	}

	devices := make([]virtio.Device, 0, len(addrs))

	for _, addr := range addrs {
		device, err := virtio.Probe(mem, uint64(addr))
		if err != nil {
			return nil, err
		}

		_, _ = fmt.Fprintf(s.cfg.Diag, "stage1: found %s at %s\n",
			device.Name(), addr)

		devices = append(devices, device)
	}

	return devices, nil
}

func (s *System) start(
	cleanup *cleanupStack,
	devices []virtio.Device,
	argv []string,
) (*Session, error) {
	if hasDevice(devices, virtio.DeviceID9P) {
		if err := s.mountControl(cleanup); err != nil {
			return nil, err
		}
	}

	workDir, err := s.unpackPayload(cleanup)
	if err != nil {
		return nil, err
	}

	cmd, streams, err := s.stage2Command(cleanup, devices, argv, workDir)
	if err != nil {
		return nil, err
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start stage2: %w", err)
	}

	return &Session{
		cmd:     cmd,
		diag:    s.cfg.Diag,
		cleanup: cleanup,
		streams: streams,
	}, nil
}

func (s *System) mountControl(cleanup *cleanupStack) error {
	opts := MountOptions{
		FSType: FSType9P,
		Source: s.cfg.ControlTag,
		Data:   ControlMountData,
	}

	if err := Mount(s.cfg.ControlDir, opts); err != nil {
		return fmt.Errorf("control share: %w", err)
	}

	cleanup.add(func() error {
		return unmount(s.cfg.ControlDir)
	})

	return nil
}

// unpackPayload unpacks the stage2 payload archive from the control
// share, if there is one.
//
// Returns the directory the stage2 process chain runs in, or empty if
// no payload is shipped.
func (s *System) unpackPayload(cleanup *cleanupStack) (string, error) {
	archive, err := os.Open(filepath.Join(s.cfg.ControlDir, payload.Name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}

		return "", fmt.Errorf("open payload: %w", err)
	}

	defer archive.Close()

	workDir := filepath.Join(s.cfg.RunDir, payloadDirName)

	err = os.MkdirAll(workDir, defaultDirMode)
	if err != nil {
		return "", fmt.Errorf("payload dir: %w", err)
	}

	cleanup.add(func() error {
		return os.RemoveAll(workDir)
	})

	if err := payload.Extract(archive, workDir); err != nil {
		return "", fmt.Errorf("unpack payload: %w", err)
	}

	return workDir, nil
}

// stage2Command assembles the stage2 command.
//
// If the host attached a virtio console, the process chain is connected
// to it as its controlling terminal. Otherwise its output is forwarded
// to the diagnostic stream.
func (s *System) stage2Command(
	cleanup *cleanupStack,
	devices []virtio.Device,
	argv []string,
	workDir string,
) (*exec.Cmd, *errgroup.Group, error) {
	var opts []stage2.Option

	if workDir != "" {
		opts = append(opts, stage2.WithDir(workDir))
	}

	if s.cfg.EnvironPID != 0 {
		opts = append(opts, stage2.WithEnvironPID(s.cfg.EnvironPID))
	}

	if s.cfg.Home != "" {
		opts = append(opts, stage2.WithHome(s.cfg.Home))
	}

	var console *os.File
	if hasDevice(devices, virtio.DeviceIDConsole) {
		console = openConsole()
	}

	if console != nil {
		cleanup.add(console.Close)
		opts = append(opts, stage2.WithConsole(console))
	}

	cmd, err := stage2.Command(argv, opts...)
	if err != nil {
		return nil, nil, err
	}

	var streams *errgroup.Group

	if console == nil {
		streams, err = forwardOutput(cmd, s.cfg.Diag)
		if err != nil {
			return nil, nil, err
		}
	}

	return cmd, streams, nil
}

func hasDevice(devices []virtio.Device, deviceID uint32) bool {
	return slices.ContainsFunc(devices, func(d virtio.Device) bool {
		return d.DeviceID == deviceID
	})
}
