// SPDX-License-Identifier: MIT
//
// Copyright (c) 2024 Adrian "asie" Siekierka

package elf

type FileClass uint8

const (
	ELFCLASSNONE FileClass = 0
	ELFCLASS32   FileClass = 1
	ELFCLASS64   FileClass = 2
)

type FileEndian uint8

const (
	ELFDATA2LSB FileEndian = 1
	ELFDATA2MSB FileEndian = 2
)

type FileABI uint8

const (
	ELFOSABI_SYSV FileABI = 0
)

const (
	EV_CURRENT = 1
)

type FileType uint16

const (
	ET_NONE FileType = 0
	ET_REL  FileType = 1
	ET_EXEC FileType = 2
	ET_DYN  FileType = 3
	ET_CORE FileType = 4
)

type MachineType uint16

const (
	EM_NONE   MachineType = 0   // None.
	EM_386    MachineType = 3   // Intel 80386.
	EM_ARM    MachineType = 40  // ARM processor
	EM_X86_64 MachineType = 62  // AMD x86-64.
	EM_RISCV  MachineType = 243 // RISC-V.
)

// Section header index
const (
	SHN_UNDEF     = 0
	SHN_LORESERVE = 0xFF00
	SHN_ABS       = 0xFFF1
	SHN_XINDEX    = 0xFFFF
)

type SectionHeaderType uint32

const (
	SHT_NULL     SectionHeaderType = 0
	SHT_PROGBITS SectionHeaderType = 1
	SHT_SYMTAB   SectionHeaderType = 2
	SHT_STRTAB   SectionHeaderType = 3
	SHT_RELA     SectionHeaderType = 4
	SHT_NOBITS   SectionHeaderType = 8
	SHT_REL      SectionHeaderType = 9
)

func (s SectionHeaderType) HasDataInFile() bool {
	return s != SHT_NOBITS && s != SHT_NULL
}

// Section header flags
type SectionHeaderFlag uint64

const (
	SHF_WRITE     SectionHeaderFlag = 0x00000001
	SHF_ALLOC     SectionHeaderFlag = 0x00000002
	SHF_EXECINSTR SectionHeaderFlag = 0x00000004
	SHF_MERGE     SectionHeaderFlag = 0x00000010
	SHF_STRINGS   SectionHeaderFlag = 0x00000020
)

// Symbol table type
type SymbolType int

const (
	STT_NOTYPE  SymbolType = 0
	STT_OBJECT  SymbolType = 1
	STT_FUNC    SymbolType = 2
	STT_SECTION SymbolType = 3
	STT_FILE    SymbolType = 4
)

type SymbolBinding int

const (
	STB_LOCAL  SymbolBinding = 0
	STB_GLOBAL SymbolBinding = 1
	STB_WEAK   SymbolBinding = 2
)

// Symbol visibility, stored in st_other
const (
	STV_DEFAULT = 0
	STV_HIDDEN  = 2
)
