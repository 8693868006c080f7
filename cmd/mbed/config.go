// SPDX-License-Identifier: MIT
//
// Copyright (c) 2024 Adrian "asie" Siekierka

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"strconv"

	"github.com/xyproto/env/v2"

	"github.com/Wiguwbe/mbed/mbed"
)

var errUsage = errors.New("usage error")

type config struct {
	Verbose   bool
	Dump      bool
	ChunkSize int
	Output    string
	Inputs    []mbed.Input
}

func (c *config) Options(stderr io.Writer) *mbed.Options {
	opts := mbed.DefaultOptions()
	opts.ChunkSize = c.ChunkSize
	if c.Verbose {
		opts.Logger = log.New(stderr, "mbed: ", 0)
	}
	return opts
}

// parseChunkSize accepts the same literals as the -chunk-size flag, so
// 4096 and 0x1000 are both valid.
func parseChunkSize(s string) (int, error) {
	n, err := strconv.ParseInt(s, 0, 0)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// parseArgs reads MBED_VERBOSE and MBED_CHUNK_SIZE first; flags override
// them.
func parseArgs(args []string, stderr io.Writer) (*config, error) {
	cfg := &config{
		Verbose:   env.Bool("MBED_VERBOSE"),
		ChunkSize: mbed.DefaultChunkSize,
	}
	if s := env.Str("MBED_CHUNK_SIZE"); s != "" {
		n, err := parseChunkSize(s)
		if err != nil {
			fmt.Fprintf(stderr, "mbed: MBED_CHUNK_SIZE: %v\n", err)
			return nil, errUsage
		}
		cfg.ChunkSize = n
	}

	fs := flag.NewFlagSet("mbed", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: mbed [-v] [-dump] [-chunk-size N] <out-file> [<file> <name>]...")
		fs.PrintDefaults()
	}
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "log every embedded file")
	fs.BoolVar(&cfg.Dump, "dump", false, "print the sections and symbols of the finished object")
	fs.IntVar(&cfg.ChunkSize, "chunk-size", cfg.ChunkSize, "read buffer size in bytes")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	rest := fs.Args()
	if len(rest) == 0 || len(rest)%2 != 1 {
		fs.Usage()
		return nil, errUsage
	}
	if cfg.ChunkSize <= 0 {
		fmt.Fprintf(stderr, "mbed: invalid chunk size %d\n", cfg.ChunkSize)
		return nil, errUsage
	}

	cfg.Output = rest[0]
	for i := 1; i < len(rest); i += 2 {
		cfg.Inputs = append(cfg.Inputs, mbed.Input{Path: rest[i], Name: rest[i+1]})
	}
	return cfg, nil
}
