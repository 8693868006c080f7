// SPDX-License-Identifier: MIT
//
// Copyright (c) 2024 Adrian "asie" Siekierka

package mbed

import "log"

// DefaultChunkSize is the size of the buffer inputs are streamed through.
const DefaultChunkSize = 128

type Options struct {
	// ChunkSize is the read buffer size used while copying inputs.
	// Zero or negative means DefaultChunkSize.
	ChunkSize int
	// Logger receives one line per embedded input and per finalize/abort.
	// Nil keeps the assembler silent.
	Logger *log.Logger
}

func DefaultOptions() *Options {
	return &Options{ChunkSize: DefaultChunkSize}
}

func (o *Options) withDefaults() Options {
	var result Options
	if o != nil {
		result = *o
	}
	if result.ChunkSize <= 0 {
		result.ChunkSize = DefaultChunkSize
	}
	return result
}
