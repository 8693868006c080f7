// SPDX-License-Identifier: MIT
//
// Copyright (c) 2024 Adrian "asie" Siekierka

package mbed

import "errors"

// Every error returned by this package wraps one of these, so callers can
// tell the failure kind apart with errors.Is.
var (
	ErrCreateFailed      = errors.New("cannot create output")
	ErrHeaderWriteFailed = errors.New("cannot write object header")
	ErrInputNotFound     = errors.New("cannot open input")
	ErrInputReadFailed   = errors.New("cannot read input")
	ErrOutputWriteFailed = errors.New("cannot write output")
	ErrSeekFailed        = errors.New("cannot seek output")
	ErrCloseFailed       = errors.New("cannot close output")

	ErrDuplicateName = errors.New("duplicate export name")
	ErrInputTooLarge = errors.New("input does not fit the data section")
	ErrClosed        = errors.New("assembler already finalized or aborted")
	ErrRunFailed     = errors.New("an earlier add failed, only Abort is valid")
)
