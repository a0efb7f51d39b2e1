// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package stage1_test

import (
	"fmt"
	"syscall"
	"testing"

	"github.com/aibor/stagerun/stage1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvalidAddressErrorIs(t *testing.T) {
	//nolint:testifylint
	assert.ErrorIs(t, error(&stage1.InvalidAddressError{}), &stage1.InvalidAddressError{})
	assert.NotErrorIs(t, assert.AnError, &stage1.InvalidAddressError{})
}

func TestInvalidAddressErrorMessage(t *testing.T) {
	err := &stage1.InvalidAddressError{Token: "abc"}

	assert.Equal(t, "invalid mmio address: abc", err.Error())
}

func TestBringUpErrorIs(t *testing.T) {
	//nolint:testifylint
	assert.ErrorIs(t, error(&stage1.BringUpError{}), &stage1.BringUpError{})
	assert.NotErrorIs(t, assert.AnError, &stage1.BringUpError{})
}

func TestBringUpErrorCode(t *testing.T) {
	tests := []struct {
		name         string
		bringUpErr   error
		expectedCode int
	}{
		{
			name:         "plain error",
			bringUpErr:   assert.AnError,
			expectedCode: 1,
		},
		{
			name:         "errno",
			bringUpErr:   syscall.EIO,
			expectedCode: int(syscall.EIO),
		},
		{
			name:         "wrapped errno",
			bringUpErr:   fmt.Errorf("mount control channel: %w", syscall.EACCES),
			expectedCode: int(syscall.EACCES),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spy := &stage1.SpyBringUp{Err: tt.bringUpErr}

			loader, err := stage1.New(stage1.Config{BringUp: spy})
			require.NoError(t, err)

			err = loader.Activate(nil, []string{"/bin/true"})

			var bringUpErr *stage1.BringUpError

			require.ErrorAs(t, err, &bringUpErr)
			assert.Equal(t, tt.expectedCode, bringUpErr.Code)
			assert.ErrorIs(t, err, tt.bringUpErr)
		})
	}
}
