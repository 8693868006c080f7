// SPDX-License-Identifier: MIT
//
// Copyright (c) 2024 Adrian "asie" Siekierka

package elf

import (
	"encoding/binary"
	"io"
)

type symbol64 struct {
	Name         uint32
	Info         uint8
	Other        uint8
	SectionIndex uint16
	Value        uint64
	Size         uint64
}

var SymbolSize = binary.Size(&symbol64{})

func (e *Elf) readSymbol(r io.Reader, parent *SectionHeader) (*Symbol, error) {
	var result Symbol

	var sh symbol64
	if err := binary.Read(r, e.GetByteOrder(), &sh); err != nil {
		return nil, err
	}
	result.NameOffset = sh.Name
	result.Type = SymbolType(sh.Info & 0xF)
	result.Binding = SymbolBinding(sh.Info >> 4)
	result.Other = sh.Other
	result.SectionIndex = sh.SectionIndex
	result.Value = sh.Value
	result.Size = sh.Size

	s, err := e.lookupString(int(parent.Link), result.NameOffset)
	if err != nil {
		return nil, err
	}
	result.Name = s

	return &result, nil
}

func (e *Elf) WriteSymbol(w io.Writer, input *Symbol) error {
	var sh symbol64

	sh.Name = input.NameOffset
	sh.Info = input.Info()
	sh.Other = input.Other
	sh.SectionIndex = input.SectionIndex
	sh.Value = input.Value
	sh.Size = input.Size

	return binary.Write(w, e.GetByteOrder(), &sh)
}
