// SPDX-License-Identifier: MIT
//
// Copyright (c) 2024 Adrian "asie" Siekierka

package elf

import (
	"encoding/binary"
	"fmt"
	"io"
)

type sectionHeader64 struct {
	Name      uint32
	Type      uint32
	Flags     uint64
	Address   uint64
	Offset    uint64
	Size      uint64
	Link      uint32
	Info      uint32
	AddrAlign uint64
	EntrySize uint64
}

var SectionHeaderSize = binary.Size(&sectionHeader64{})

// readSectionHeader reads one header at the current position and, for
// sections that occupy file space, loads their contents too. Contents must
// lie within the first fileSize bytes.
func (e *Elf) readSectionHeader(r io.ReadSeeker, fileSize uint64) (*SectionHeader, error) {
	var result SectionHeader

	var sh sectionHeader64
	if err := binary.Read(r, e.GetByteOrder(), &sh); err != nil {
		return nil, err
	}

	result.NameOffset = sh.Name
	result.Type = SectionHeaderType(sh.Type)
	result.Flags = SectionHeaderFlag(sh.Flags)
	result.Address = sh.Address
	result.Offset = sh.Offset
	result.Size = sh.Size
	result.Link = sh.Link
	result.Info = sh.Info
	result.AddrAlign = sh.AddrAlign
	result.EntrySize = sh.EntrySize

	if result.Size > 0 && result.Type.HasDataInFile() {
		if result.Offset > fileSize || result.Size > fileSize-result.Offset {
			return nil, fmt.Errorf("section data at 0x%x+0x%x outside of file: %w", result.Offset, result.Size, io.ErrUnexpectedEOF)
		}

		pos, err := r.Seek(0, io.SeekCurrent)
		if err != nil {
			return nil, err
		}

		if _, err := r.Seek(int64(result.Offset), io.SeekStart); err != nil {
			return nil, err
		}
		result.Data = make([]byte, result.Size)
		if _, err := io.ReadFull(r, result.Data); err != nil {
			return nil, err
		}

		if _, err := r.Seek(pos, io.SeekStart); err != nil {
			return nil, err
		}
	}

	return &result, nil
}

func (e *Elf) WriteSectionHeader(w io.Writer, input *SectionHeader) error {
	var sh sectionHeader64

	sh.Name = input.NameOffset
	sh.Type = uint32(input.Type)
	sh.Flags = uint64(input.Flags)
	sh.Address = input.Address
	sh.Offset = input.Offset
	sh.Size = input.Size
	sh.Link = input.Link
	sh.Info = input.Info
	sh.AddrAlign = input.AddrAlign
	sh.EntrySize = input.EntrySize

	return binary.Write(w, e.GetByteOrder(), &sh)
}
