// SPDX-License-Identifier: MIT
//
// Copyright (c) 2024 Adrian "asie" Siekierka

package elf

import (
	"bytes"
	"fmt"
	"io"
)

func (e *Elf) lookupString(idx int, offset uint32) (string, error) {
	if idx <= 0 || idx >= len(e.Sections) {
		return "", fmt.Errorf("string table index %d out of range", idx)
	}
	s, ok := StringTableFrom(e.Sections[idx].Data).Lookup(offset)
	if !ok {
		return "", fmt.Errorf("string offset %d outside of section %d", offset, idx)
	}
	return s, nil
}

// ReadELF parses the file header, every section header (with contents) and
// the symbol table. Section and symbol names are resolved.
func ReadELF(r io.ReadSeeker) (*Elf, error) {
	e := &Elf{}

	fileSize, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}

	// Read main header
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	if err := e.readElfHeader(r); err != nil {
		return nil, err
	}
	if e.SecHdrCount > 0 && int(e.SecHdrEntrySize) != SectionHeaderSize {
		return nil, fmt.Errorf("unsupported section header size %d", e.SecHdrEntrySize)
	}

	// Read section headers
	if _, err := r.Seek(int64(e.SecHdrOffset), io.SeekStart); err != nil {
		return nil, err
	}
	symtabIdx := 0
	for i := 0; i < int(e.SecHdrCount); i++ {
		hdr, err := e.readSectionHeader(r, uint64(fileSize))
		if err != nil {
			return nil, fmt.Errorf("section header %d: %w", i, err)
		}
		e.Sections = append(e.Sections, hdr)
		if hdr.Type == SHT_SYMTAB && symtabIdx == 0 {
			symtabIdx = i
		}
	}

	// Read shstrtab
	if e.SecHdrStrIndex != SHN_UNDEF {
		for i, hdr := range e.Sections {
			if i == 0 && hdr.NameOffset == 0 {
				continue
			}
			s, err := e.lookupString(int(e.SecHdrStrIndex), hdr.NameOffset)
			if err != nil {
				return nil, fmt.Errorf("section %d name: %w", i, err)
			}
			hdr.Name = s
		}
	}

	// Read symbols
	if symtabIdx > 0 {
		symtab := e.Sections[symtabIdx]
		if int(symtab.EntrySize) != SymbolSize {
			return nil, fmt.Errorf("unsupported symbol entry size %d", symtab.EntrySize)
		}
		symbolCount := symtab.Size / symtab.EntrySize
		data := bytes.NewReader(symtab.Data)
		for i := 0; i < int(symbolCount); i++ {
			sym, err := e.readSymbol(data, symtab)
			if err != nil {
				return nil, fmt.Errorf("symbol %d: %w", i, err)
			}
			e.Symbols = append(e.Symbols, sym)
		}
	}

	return e, nil
}
