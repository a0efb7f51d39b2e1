// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package guest

import (
	"fmt"
	"log"
	"maps"
	"os"
	"slices"
)

// FSType is a file system type.
type FSType string

// Special file system types.
const (
	FSTypeDevPts FSType = "devpts"
	FSTypeDevTmp FSType = "devtmpfs"
	FSType9P     FSType = "9p"
	FSTypeProc   FSType = "proc"
	FSTypeSys    FSType = "sysfs"
	FSTypeTmp    FSType = "tmpfs"

	defaultDirMode = 0o755
)

// ControlMountData is the mount data used for the 9p control share.
const ControlMountData = "trans=virtio,version=9p2000.L"

// MountOptions contains parameters for a mount point.
type MountOptions struct {
	// FSType is the file system type. It must be set to an available
	// [FSType].
	FSType FSType

	// Source is the source device to mount. Can be empty for all the
	// special file system types. If empty it is set to the string of the
	// type.
	Source string

	// Data are optional additional parameters that depend on the
	// [FSType] used.
	Data string

	// MayFail determines if the mount operation may fail. If set to
	// true, a mount error does not fail a [MountAll] operation. Instead
	// a warning is logged and the next mount point is tried.
	MayFail bool
}

// MountPoints is a collection of mount points.
type MountPoints map[string]MountOptions

// BaseMountPoints returns the pseudo and virtual file systems required
// for running the stage2 process chain, like accessing devices or
// placing runtime state.
func BaseMountPoints() MountPoints {
	return MountPoints{
		"/dev":     {FSType: FSTypeDevTmp},
		"/dev/pts": {FSType: FSTypeDevPts, MayFail: true},
		"/proc":    {FSType: FSTypeProc},
		"/run":     {FSType: FSTypeTmp},
		"/sys":     {FSType: FSTypeSys, MayFail: true},
		"/tmp":     {FSType: FSTypeTmp, MayFail: true},
	}
}

// Mount mounts the system file system of [FSType] at the given path.
//
// If path does not exist, it is created. An error is returned if this
// or the mount syscall fails.
func Mount(path string, opts MountOptions) error {
	err := os.MkdirAll(path, defaultDirMode)
	if err != nil {
		return fmt.Errorf("mkdir %s: %w", path, err)
	}

	return mount(path, opts.Source, string(opts.FSType), opts.Data)
}

// MountAll mounts the given set of system file systems.
//
// The mounts are executed in lexicographic order of the paths, so
// parent directories are mounted before mount points below them.
func MountAll(mountPoints MountPoints) error {
	sortedPaths := slices.Sorted(maps.Keys(mountPoints))
	for _, path := range sortedPaths {
		opts := mountPoints[path]

		err := Mount(path, opts)
		if err != nil {
			if !opts.MayFail {
				return err
			}

			log.Print("INFO optional mount failed: ", err.Error())
		}
	}

	return nil
}
