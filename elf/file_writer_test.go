// SPDX-License-Identifier: MIT
//
// Copyright (c) 2024 Adrian "asie" Siekierka

package elf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringTable(t *testing.T) {
	st := NewStringTable()
	assert.Equal(t, uint32(1), st.Len())

	assert.Equal(t, uint32(1), st.Add("foo"))
	assert.Equal(t, uint32(5), st.Add("foo_size"))
	assert.Equal(t, uint32(14), st.Add(""))
	assert.Equal(t, uint32(15), st.Len())
	assert.Equal(t, []byte("\x00foo\x00foo_size\x00\x00"), st.Bytes())

	s, ok := st.Lookup(5)
	assert.True(t, ok)
	assert.Equal(t, "foo_size", s)
	s, ok = st.Lookup(8)
	assert.True(t, ok)
	assert.Equal(t, "_size", s, "lookups may start inside an entry")
	_, ok = st.Lookup(15)
	assert.False(t, ok)

	s, ok = st.Lookup(14)
	assert.True(t, ok)
	assert.Equal(t, "", s)
}

func TestStringTableIndex(t *testing.T) {
	st := StringTableFrom([]byte("\x00.symtab\x00.strtab\x00.shstrtab\x00.data\x00"))

	for name, want := range map[string]uint32{
		"":          0,
		".symtab":   1,
		".strtab":   9,
		".shstrtab": 17,
		".data":     27,
	} {
		got, ok := st.Index(name)
		assert.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}

	_, ok := st.Index(".text")
	assert.False(t, ok)
	_, ok = st.Index("strtab")
	assert.False(t, ok, "suffixes of other entries are not entries")
}

func TestStringTableFromUnterminated(t *testing.T) {
	st := StringTableFrom([]byte("\x00abc"))
	_, ok := st.Lookup(1)
	assert.False(t, ok)
	_, ok = StringTableFrom(nil).Lookup(0)
	assert.False(t, ok)
}
