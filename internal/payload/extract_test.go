// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package payload_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/aibor/stagerun/internal/payload"
	"github.com/cavaliergopher/cpio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractRoundTrip(t *testing.T) {
	src := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(src, "bin"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(src, "bin", "stage2"),
		[]byte("#!/bin/sh\necho hello\n"),
		0o755,
	))
	require.NoError(t, os.WriteFile(
		filepath.Join(src, "data"),
		[]byte("payload data"),
		0o644,
	))
	require.NoError(t, os.Symlink("stage2", filepath.Join(src, "bin", "sh")))

	var archive bytes.Buffer

	w := payload.NewWriter(&archive)
	require.NoError(t, w.WriteDirTree(src))
	require.NoError(t, w.Close())

	dst := t.TempDir()

	require.NoError(t, payload.Extract(&archive, dst))

	content, err := os.ReadFile(filepath.Join(dst, "bin", "stage2"))
	require.NoError(t, err)
	assert.Equal(t, "#!/bin/sh\necho hello\n", string(content))

	info, err := os.Stat(filepath.Join(dst, "bin", "stage2"))
	require.NoError(t, err)
	assert.EqualValues(t, 0o755, info.Mode().Perm())

	content, err = os.ReadFile(filepath.Join(dst, "data"))
	require.NoError(t, err)
	assert.Equal(t, "payload data", string(content))

	target, err := os.Readlink(filepath.Join(dst, "bin", "sh"))
	require.NoError(t, err)
	assert.Equal(t, "stage2", target)
}

func TestExtractCreatesParents(t *testing.T) {
	var archive bytes.Buffer

	w := cpio.NewWriter(&archive)
	require.NoError(t, w.WriteHeader(&cpio.Header{
		Name: "deep/nested/file",
		Mode: cpio.TypeReg | 0o644,
		Size: 2,
	}))

	_, err := w.Write([]byte("ok"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	dst := t.TempDir()

	require.NoError(t, payload.Extract(&archive, dst))

	content, err := os.ReadFile(filepath.Join(dst, "deep", "nested", "file"))
	require.NoError(t, err)
	assert.Equal(t, "ok", string(content))
}

func TestExtractNormalizesNames(t *testing.T) {
	var archive bytes.Buffer

	w := cpio.NewWriter(&archive)
	require.NoError(t, w.WriteHeader(&cpio.Header{
		Name: "./tool",
		Mode: cpio.TypeReg | 0o755,
		Size: 2,
	}))

	_, err := w.Write([]byte("ok"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	dst := t.TempDir()

	require.NoError(t, payload.Extract(&archive, dst))

	_, err = os.Stat(filepath.Join(dst, "tool"))
	require.NoError(t, err)
}

func TestExtractRejectsUnsafePaths(t *testing.T) {
	tests := []struct {
		name      string
		entryName string
	}{
		{
			name:      "parent escape",
			entryName: "../escape",
		},
		{
			name:      "nested parent escape",
			entryName: "dir/../../escape",
		},
		{
			name:      "absolute",
			entryName: "/etc/passwd",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var archive bytes.Buffer

			w := cpio.NewWriter(&archive)
			require.NoError(t, w.WriteHeader(&cpio.Header{
				Name: tt.entryName,
				Mode: cpio.TypeReg | 0o644,
			}))
			require.NoError(t, w.Close())

			err := payload.Extract(&archive, t.TempDir())

			require.ErrorIs(t, err, payload.ErrUnsafePath)
		})
	}
}

func TestExtractRejectsSpecialFiles(t *testing.T) {
	var archive bytes.Buffer

	w := cpio.NewWriter(&archive)
	require.NoError(t, w.WriteHeader(&cpio.Header{
		Name: "dev/null",
		Mode: cpio.FileMode(0o020666),
	}))
	require.NoError(t, w.Close())

	err := payload.Extract(&archive, t.TempDir())

	require.ErrorIs(t, err, payload.ErrFileTypeUnsupported)
}
