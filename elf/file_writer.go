// SPDX-License-Identifier: MIT
//
// Copyright (c) 2024 Adrian "asie" Siekierka

package elf

import (
	"bytes"
	"io"
)

// StringTable is a NUL-delimited string section. Offset 0 always holds the
// empty string; entries keep insertion order so offsets handed out by Add
// stay valid.
type StringTable struct {
	data []byte
}

func NewStringTable() *StringTable {
	return &StringTable{data: []byte{0}}
}

// StringTableFrom wraps existing section contents.
func StringTableFrom(data []byte) *StringTable {
	return &StringTable{data: data}
}

func (t *StringTable) Add(s string) uint32 {
	pos := uint32(len(t.data))
	t.data = append(t.data, s...)
	t.data = append(t.data, 0)
	return pos
}

func (t *StringTable) Len() uint32 {
	return uint32(len(t.data))
}

func (t *StringTable) Bytes() []byte {
	return t.data
}

// Lookup returns the string starting at offset.
func (t *StringTable) Lookup(offset uint32) (string, bool) {
	if int(offset) >= len(t.data) {
		return "", false
	}
	end := bytes.IndexByte(t.data[offset:], 0)
	if end < 0 {
		return "", false
	}
	return string(t.data[offset : int(offset)+end]), true
}

// Index returns the offset of the first entry equal to s.
func (t *StringTable) Index(s string) (uint32, bool) {
	if s == "" && len(t.data) > 0 && t.data[0] == 0 {
		return 0, true
	}
	needle := make([]byte, 0, len(s)+2)
	needle = append(needle, 0)
	needle = append(needle, s...)
	needle = append(needle, 0)
	pos := bytes.Index(t.data, needle)
	if pos < 0 {
		return 0, false
	}
	return uint32(pos + 1), true
}

func (e *Elf) WriteSectionHeaders(w io.Writer, sections []*SectionHeader) error {
	for _, sh := range sections {
		if err := e.WriteSectionHeader(w, sh); err != nil {
			return err
		}
	}
	return nil
}
