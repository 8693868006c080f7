// SPDX-License-Identifier: MIT
//
// Copyright (c) 2024 Adrian "asie" Siekierka

package elf

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

type elfHeader64 struct {
	Type             uint16
	Machine          uint16
	Version          uint32
	Entry            uint64
	ProgHdrOff       uint64
	SecHdrOff        uint64
	Flags            uint32
	HeaderSize       uint16
	ProgHdrEntrySize uint16
	ProgHdrCount     uint16
	SecHdrEntrySize  uint16
	SecHdrCount      uint16
	SecHdrStrIndex   uint16
}

// Add 16 bytes of ELF identification section
var ElfHeaderSize = binary.Size(&elfHeader64{}) + 16

var errUnsupportedClass = errors.New("only ELFCLASS64 is supported")

func (e *Elf) GetByteOrder() binary.ByteOrder {
	if e.Endian == ELFDATA2MSB {
		return binary.BigEndian
	} else {
		return binary.LittleEndian
	}
}

func (e *Elf) readElfHeader(r io.Reader) error {
	ident := make([]byte, 16)

	if _, err := io.ReadFull(r, ident); err != nil {
		return err
	}

	if ident[0] != 0x7F || ident[1] != 0x45 || ident[2] != 0x4C || ident[3] != 0x46 {
		return errors.New("invalid magic")
	}

	e.Class = FileClass(ident[4])
	e.Endian = FileEndian(ident[5])
	e.HeaderVersion = ident[6]
	e.ABI = FileABI(ident[7])
	e.ABIVersion = ident[8]

	if e.Class != ELFCLASS64 {
		return fmt.Errorf("invalid class %d: %w", e.Class, errUnsupportedClass)
	}

	var fh elfHeader64
	if err := binary.Read(r, e.GetByteOrder(), &fh); err != nil {
		return err
	}

	e.Type = FileType(fh.Type)
	e.Machine = MachineType(fh.Machine)
	e.Version = fh.Version
	e.Entry = fh.Entry
	e.ProgHdrOffset = fh.ProgHdrOff
	e.SecHdrOffset = fh.SecHdrOff
	e.Flags = fh.Flags
	e.HeaderSize = fh.HeaderSize
	e.ProgHdrEntrySize = fh.ProgHdrEntrySize
	e.ProgHdrCount = fh.ProgHdrCount
	e.SecHdrEntrySize = fh.SecHdrEntrySize
	e.SecHdrCount = fh.SecHdrCount
	e.SecHdrStrIndex = fh.SecHdrStrIndex

	if e.SecHdrStrIndex == SHN_XINDEX {
		return errors.New("SHN_XINDEX section name index is not supported")
	}

	return nil
}

// WriteElfHeader writes the identification bytes and the file header
// exactly as they are set on e.
func (e *Elf) WriteElfHeader(w io.Writer) error {
	if e.Class != ELFCLASS64 {
		return errUnsupportedClass
	}

	ident := make([]byte, 16)

	ident[0] = 0x7F
	ident[1] = 0x45
	ident[2] = 0x4C
	ident[3] = 0x46

	ident[4] = uint8(e.Class)
	ident[5] = uint8(e.Endian)
	ident[6] = uint8(e.HeaderVersion)
	ident[7] = uint8(e.ABI)
	ident[8] = uint8(e.ABIVersion)

	if _, err := w.Write(ident); err != nil {
		return err
	}

	var fh elfHeader64

	fh.Type = uint16(e.Type)
	fh.Machine = uint16(e.Machine)
	fh.Version = e.Version
	fh.Entry = e.Entry
	fh.ProgHdrOff = e.ProgHdrOffset
	fh.SecHdrOff = e.SecHdrOffset
	fh.Flags = e.Flags
	fh.HeaderSize = e.HeaderSize
	fh.ProgHdrEntrySize = e.ProgHdrEntrySize
	fh.ProgHdrCount = e.ProgHdrCount
	fh.SecHdrEntrySize = e.SecHdrEntrySize
	fh.SecHdrCount = e.SecHdrCount
	fh.SecHdrStrIndex = e.SecHdrStrIndex

	return binary.Write(w, e.GetByteOrder(), &fh)
}
