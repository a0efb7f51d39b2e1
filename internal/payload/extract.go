// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package payload

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/cavaliergopher/cpio"
)

const (
	// S_IFMT, the file type bit field mask.
	modeTypeMask = 0o170000

	extractDirMode = 0o755
)

// Extract unpacks a payload archive into the given directory.
//
// Entry names escaping the directory fail with [ErrUnsafePath]. Parent
// directories are created as needed, permission bits are kept, existing
// files are overwritten. Symbolic link targets are written as is; they are
// not followed.
func Extract(r io.Reader, dir string) error {
	reader := cpio.NewReader(r)

	for {
		hdr, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return fmt.Errorf("read archive: %w", err)
		}

		if err := extractEntry(reader, hdr, dir); err != nil {
			return err
		}
	}
}

func extractEntry(r io.Reader, hdr *cpio.Header, dir string) error {
	name := path.Clean(hdr.Name)
	if name == "." {
		return nil
	}

	name = filepath.FromSlash(name)
	if !filepath.IsLocal(name) {
		return fmt.Errorf("%s: %w", hdr.Name, ErrUnsafePath)
	}

	dst := filepath.Join(dir, name)
	perm := fs.FileMode(hdr.Mode & cpio.ModePerm)

	switch hdr.Mode & modeTypeMask {
	case cpio.TypeDir:
		if err := os.MkdirAll(dst, perm); err != nil {
			return fmt.Errorf("extract %s: %w", hdr.Name, err)
		}
	case cpio.TypeSymlink:
		// The reader consumes the body into Linkname.
		if err := extractLink(dst, hdr.Linkname); err != nil {
			return fmt.Errorf("extract %s: %w", hdr.Name, err)
		}
	case cpio.TypeReg:
		if err := extractRegular(dst, r, perm); err != nil {
			return fmt.Errorf("extract %s: %w", hdr.Name, err)
		}
	default:
		return fmt.Errorf("%s: %w", hdr.Name, ErrFileTypeUnsupported)
	}

	return nil
}

func extractLink(dst, target string) error {
	if err := os.MkdirAll(filepath.Dir(dst), extractDirMode); err != nil {
		return err
	}

	// Replace any leftover from a previous extraction.
	_ = os.Remove(dst)

	//nolint:wrapcheck
	return os.Symlink(target, dst)
}

func extractRegular(dst string, r io.Reader, perm fs.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(dst), extractDirMode); err != nil {
		return err
	}

	file, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}

	if _, err := io.Copy(file, r); err != nil {
		_ = file.Close()
		return err
	}

	//nolint:wrapcheck
	return file.Close()
}
