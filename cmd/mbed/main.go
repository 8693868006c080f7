// SPDX-License-Identifier: MIT
//
// Copyright (c) 2024 Adrian "asie" Siekierka

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/k0kubun/pp/v3"

	"github.com/Wiguwbe/mbed/elf"
	"github.com/Wiguwbe/mbed/mbed"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := parseArgs(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	} else if err != nil {
		return 2
	}

	if err := mbed.Embed(cfg.Output, cfg.Inputs, cfg.Options(stderr)); err != nil {
		fmt.Fprintf(stderr, "mbed: %v\n", err)
		return 1
	}

	if cfg.Dump {
		if err := dumpObject(cfg.Output, stdout); err != nil {
			fmt.Fprintf(stderr, "mbed: %v\n", err)
			return 1
		}
	}
	return 0
}

type embeddedFile struct {
	Name   string
	Offset uint64
	Length uint32
}

type objectDump struct {
	Header   elf.ElfHeader
	Sections []elf.SectionHeader
	Symbols  []*elf.Symbol
	Files    []embeddedFile
}

// embeddedFiles pairs every data symbol with its _size symbol and reads the
// stored length.
func embeddedFiles(obj *elf.Elf) ([]embeddedFile, error) {
	if obj.Section(".data") == nil {
		return nil, errors.New("no .data section")
	}

	var files []embeddedFile
	for _, sym := range obj.Symbols {
		if sym.Name == "" || sym.Type != elf.STT_NOTYPE {
			continue
		}
		size := obj.Symbol(sym.Name + "_size")
		if size == nil || size.Type != elf.STT_OBJECT {
			continue
		}
		data := obj.SectionData(int(size.SectionIndex))
		if size.Value > uint64(len(data)) || uint64(len(data))-size.Value < 4 {
			return nil, fmt.Errorf("%s_size points outside of its section", sym.Name)
		}
		files = append(files, embeddedFile{
			Name:   sym.Name,
			Offset: sym.Value,
			Length: obj.GetByteOrder().Uint32(data[size.Value:]),
		})
	}
	return files, nil
}

func dumpObject(path string, w io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	obj, err := elf.ReadELF(f)
	if err != nil {
		return fmt.Errorf("reading back %s: %w", path, err)
	}

	files, err := embeddedFiles(obj)
	if err != nil {
		return fmt.Errorf("reading back %s: %w", path, err)
	}

	dump := objectDump{Header: obj.ElfHeader, Symbols: obj.Symbols, Files: files}
	for _, sh := range obj.Sections {
		s := *sh
		s.Data = nil
		dump.Sections = append(dump.Sections, s)
	}

	printer := pp.New()
	printer.SetOutput(w)
	printer.SetColoringEnabled(false)
	_, err = printer.Println(dump)
	return err
}
