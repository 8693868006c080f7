// SPDX-License-Identifier: MIT
//
// Copyright (c) 2024 Adrian "asie" Siekierka

//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package mbed

import (
	"os"

	"golang.org/x/sys/unix"
)

// lockOutput takes a non-blocking exclusive advisory lock on the output.
// Closing the file releases it.
func lockOutput(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
}
