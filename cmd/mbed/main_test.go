// SPDX-License-Identifier: MIT
//
// Copyright (c) 2024 Adrian "asie" Siekierka

package main

import (
	"bytes"
	stdelf "debug/elf"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wiguwbe/mbed/elf"
	"github.com/Wiguwbe/mbed/mbed"
)

func TestRun(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "hello.txt")
	require.NoError(t, os.WriteFile(in, []byte("hello"), 0o644))
	out := filepath.Join(dir, "out.o")

	var stdout, stderr bytes.Buffer
	code := run([]string{out, in, "hello"}, &stdout, &stderr)
	assert.Equal(t, 0, code, stderr.String())
	assert.Empty(t, stdout.String())
	assert.Empty(t, stderr.String())

	f, err := stdelf.Open(out)
	require.NoError(t, err)
	defer f.Close()
	syms, err := f.Symbols()
	require.NoError(t, err)
	require.Len(t, syms, 2)
	assert.Equal(t, "hello", syms[0].Name)
	assert.Equal(t, "hello_size", syms[1].Name)
}

func TestRunVerboseAndDump(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "blob")
	require.NoError(t, os.WriteFile(in, []byte{1, 2, 3}, 0o644))
	out := filepath.Join(dir, "out.o")

	var stdout, stderr bytes.Buffer
	code := run([]string{"-v", "-dump", "-chunk-size", "0x2", out, in, "blob"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	assert.Contains(t, stderr.String(), "mbed: embedded "+in+" as blob")
	assert.Contains(t, stdout.String(), "blob_size")
	assert.Contains(t, stdout.String(), ".shstrtab")
	assert.Contains(t, stdout.String(), "Files")
}

func TestRunUsage(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.o")
	for _, args := range [][]string{
		{},
		{out, "file-without-name"},
		{"-chunk-size", "0", out},
		{"-no-such-flag", out},
	} {
		var stdout, stderr bytes.Buffer
		assert.Equal(t, 2, run(args, &stdout, &stderr), "args %q", args)
		assert.NotEmpty(t, stderr.String(), "args %q", args)
		assert.NoFileExists(t, out)
	}
}

func TestRunHelp(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 0, run([]string{"-h"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "usage: mbed")
}

func TestRunFailureRemovesOutput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.o")

	var stdout, stderr bytes.Buffer
	code := run([]string{out, filepath.Join(dir, "missing"), "missing"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "mbed: ")
	assert.Contains(t, stderr.String(), mbed.ErrInputNotFound.Error())
	assert.NoFileExists(t, out)
}

func TestRunNoInputs(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.o")
	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, run([]string{out}, &stdout, &stderr), stderr.String())
	assert.FileExists(t, out)
}

func TestEmbeddedFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	require.NoError(t, os.WriteFile(a, []byte("xyz"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("12345"), 0o644))
	out := filepath.Join(dir, "out.o")
	require.NoError(t, mbed.Embed(out, []mbed.Input{{Path: a, Name: "A"}, {Path: b, Name: "B"}}, nil))

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	obj, err := elf.ReadELF(f)
	require.NoError(t, err)

	files, err := embeddedFiles(obj)
	require.NoError(t, err)
	assert.Equal(t, []embeddedFile{
		{Name: "A", Offset: 0, Length: 3},
		{Name: "B", Offset: 8, Length: 5},
	}, files)

	_, err = embeddedFiles(&elf.Elf{})
	assert.ErrorContains(t, err, "no .data section")
}

func TestEmbeddedFilesRejectsBadSizeSymbol(t *testing.T) {
	obj := &elf.Elf{
		Sections: []*elf.SectionHeader{{}, {Name: ".data", Data: []byte{1, 2, 3, 4}}},
		Symbols: []*elf.Symbol{
			{},
			{Name: "A", Type: elf.STT_NOTYPE, SectionIndex: 1},
			{Name: "A_size", Type: elf.STT_OBJECT, SectionIndex: 1, Value: 2},
		},
	}
	_, err := embeddedFiles(obj)
	assert.ErrorContains(t, err, "A_size points outside")
}
