// SPDX-License-Identifier: MIT
//
// Copyright (c) 2024 Adrian "asie" Siekierka

//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package mbed

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputIsLocked(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.o")
	in := writeInput(t, dir, "in", []byte("locked"))

	first, err := Create(out, nil)
	require.NoError(t, err)
	require.NoError(t, first.Add(in, "locked"))

	_, err = Create(out, nil)
	assert.ErrorIs(t, err, ErrCreateFailed)

	require.NoError(t, first.Finalize())
	syms, err := openObject(t, out).Symbols()
	require.NoError(t, err)
	assert.Len(t, syms, 2)

	second, err := Create(out, nil)
	require.NoError(t, err, "lock is released on finalize")
	second.Abort()
	assert.NoFileExists(t, out)
}
