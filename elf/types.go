// SPDX-License-Identifier: MIT
//
// Copyright (c) 2024 Adrian "asie" Siekierka

package elf

type Elf struct {
	ElfHeader
	Sections []*SectionHeader
	Symbols  []*Symbol
}

type ElfHeader struct {
	// Identification
	Class         FileClass
	Endian        FileEndian
	HeaderVersion uint8
	ABI           FileABI
	ABIVersion    uint8

	// Header
	Type             FileType
	Machine          MachineType
	Version          uint32
	Entry            uint64
	ProgHdrOffset    uint64
	SecHdrOffset     uint64
	Flags            uint32
	HeaderSize       uint16
	ProgHdrEntrySize uint16
	ProgHdrCount     uint16
	SecHdrEntrySize  uint16
	SecHdrCount      uint16
	SecHdrStrIndex   uint16
}

// SectionHeader mirrors Elf64_Shdr. Offset and NameOffset are stored as-is;
// nothing here lays the file out.
type SectionHeader struct {
	Name       string
	NameOffset uint32
	Type       SectionHeaderType
	Flags      SectionHeaderFlag
	Address    uint64
	Offset     uint64
	Size       uint64
	Link       uint32
	Info       uint32
	AddrAlign  uint64
	EntrySize  uint64
	Data       []byte `json:"-"`
}

type Symbol struct {
	Name         string
	NameOffset   uint32
	Type         SymbolType
	Binding      SymbolBinding
	Other        uint8
	SectionIndex uint16
	Value        uint64
	Size         uint64
}

func (s *Symbol) Info() uint8 {
	return uint8(s.Type)&0xF | uint8(s.Binding)<<4
}

// Section returns the first section with the given name, or nil.
func (e *Elf) Section(name string) *SectionHeader {
	for _, sh := range e.Sections {
		if sh.Name == name {
			return sh
		}
	}
	return nil
}

// Symbol returns the first symbol with the given name, or nil.
func (e *Elf) Symbol(name string) *Symbol {
	for _, sym := range e.Symbols {
		if sym.Name == name {
			return sym
		}
	}
	return nil
}

// SectionData returns the contents of section index, or nil if there is no
// such section.
func (e *Elf) SectionData(index int) []byte {
	if index < 0 || index >= len(e.Sections) {
		return nil
	}
	return e.Sections[index].Data
}
