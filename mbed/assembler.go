// SPDX-License-Identifier: MIT
//
// Copyright (c) 2024 Adrian "asie" Siekierka

// Package mbed turns arbitrary files into a relocatable x86-64 ELF object.
// For every input named N the object exports N, the start of the input's
// bytes in .data, and N_size, a 4-byte little-endian length stored after
// them.
//
// File layout:
//
//	0x000  ELF header
//	0x040  5 section headers (null, .data, .symtab, .strtab, .shstrtab)
//	0x180  .data
//	       .symtab (8-byte aligned)
//	       .strtab
//	       .shstrtab
package mbed

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/Wiguwbe/mbed/elf"
	"github.com/Wiguwbe/mbed/layout"
)

const (
	dataSectionIndex     = 1
	symtabSectionIndex   = 2
	strtabSectionIndex   = 3
	shstrtabSectionIndex = 4
	sectionCount         = 5

	sizeSuffix     = "_size"
	sizeFieldWidth = 4
	symtabAlign    = 8

	maxDataSize = math.MaxUint32
)

var sectionNames = elf.StringTableFrom([]byte("\x00.symtab\x00.strtab\x00.shstrtab\x00.data\x00"))

func sectionName(name string) uint32 {
	offset, ok := sectionNames.Index(name)
	if !ok {
		panic("missing section name " + name)
	}
	return offset
}

var zeroes [symtabAlign]byte

type state int

const (
	stateOpen state = iota
	stateFinalized
	stateAborted
)

// span is one contiguous piece of the data section: an input's bytes or
// its length field.
type span struct {
	offset uint64
	size   uint64
	align  uint64
}

func (s *span) Offset() uint64          { return s.offset }
func (s *span) SetOffset(offset uint64) { s.offset = offset }
func (s *span) Size() uint64            { return s.size }
func (s *span) Alignment() uint64       { return s.align }

type symbolPair struct {
	data elf.Symbol
	size elf.Symbol
}

type namePair struct {
	name     string
	sizeName string
}

// Assembler streams inputs into an object file. Calls must be sequential:
// Create, any number of Add, then Finalize or Abort.
type Assembler struct {
	path string
	out  *os.File
	w    *bufio.Writer
	obj  elf.Elf
	opts Options
	buf  []byte

	data       *layout.Region[*span]
	strtab     *elf.StringTable
	nameCursor uint32
	symbols    []symbolPair
	names      []namePair
	exported   map[string]struct{}

	state state
	err   error
}

// Create opens outputPath and writes the file header plus placeholder
// section headers. The file is locked before it is truncated, so a second
// assembler pointed at the same path fails without damaging the first
// one's output.
func Create(outputPath string, opts *Options) (*Assembler, error) {
	out, err := os.OpenFile(outputPath, os.O_WRONLY|os.O_CREATE, 0o666)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCreateFailed, err)
	}
	if err := lockOutput(out); err != nil {
		out.Close()
		return nil, fmt.Errorf("%w: %s is in use: %w", ErrCreateFailed, outputPath, err)
	}
	if err := out.Truncate(0); err != nil {
		out.Close()
		return nil, fmt.Errorf("%w: %w", ErrCreateFailed, err)
	}

	a := &Assembler{
		path:       outputPath,
		out:        out,
		w:          bufio.NewWriter(out),
		obj:        newObject(),
		opts:       opts.withDefaults(),
		data:       layout.NewRegion[*span](0, maxDataSize),
		strtab:     elf.NewStringTable(),
		nameCursor: 1,
		exported:   make(map[string]struct{}),
	}
	a.buf = make([]byte, a.opts.ChunkSize)

	if err := a.writePlaceholders(); err != nil {
		a.discard()
		return nil, fmt.Errorf("%w: %w", ErrHeaderWriteFailed, err)
	}

	return a, nil
}

func newObject() elf.Elf {
	return elf.Elf{
		ElfHeader: elf.ElfHeader{
			Class:           elf.ELFCLASS64,
			Endian:          elf.ELFDATA2LSB,
			HeaderVersion:   elf.EV_CURRENT,
			ABI:             elf.ELFOSABI_SYSV,
			Type:            elf.ET_REL,
			Machine:         elf.EM_X86_64,
			Version:         elf.EV_CURRENT,
			SecHdrOffset:    uint64(elf.ElfHeaderSize),
			HeaderSize:      uint16(elf.ElfHeaderSize),
			SecHdrEntrySize: uint16(elf.SectionHeaderSize),
			SecHdrCount:     sectionCount,
			SecHdrStrIndex:  shstrtabSectionIndex,
		},
	}
}

func (a *Assembler) writePlaceholders() error {
	if err := a.obj.WriteElfHeader(a.w); err != nil {
		return err
	}
	placeholder := &elf.SectionHeader{}
	for i := 0; i < sectionCount; i++ {
		if err := a.obj.WriteSectionHeader(a.w, placeholder); err != nil {
			return err
		}
	}
	return a.w.Flush()
}

// Len returns the number of inputs added so far.
func (a *Assembler) Len() int {
	return len(a.symbols)
}

// DataSize returns the bytes written to .data so far, padding and length
// fields included.
func (a *Assembler) DataSize() uint64 {
	return a.data.Used()
}

func (a *Assembler) dataOffset() uint64 {
	return uint64(elf.ElfHeaderSize + sectionCount*elf.SectionHeaderSize)
}

func (a *Assembler) usable() error {
	switch {
	case a.state != stateOpen:
		return ErrClosed
	case a.err != nil:
		return fmt.Errorf("%w: %w", ErrRunFailed, a.err)
	}
	return nil
}

func (a *Assembler) fail(err error) error {
	a.err = err
	return err
}

func (a *Assembler) logf(format string, args ...any) {
	if a.opts.Logger != nil {
		a.opts.Logger.Printf(format, args...)
	}
}

func (a *Assembler) checkName(exportName string) error {
	if _, ok := a.exported[exportName]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateName, exportName)
	}
	if _, ok := a.exported[exportName+sizeSuffix]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateName, exportName+sizeSuffix)
	}
	return nil
}

// Add appends the contents of inputPath, exported as exportName and
// exportName_size. A duplicate name is rejected before anything is written
// and leaves the assembler usable; any other failure means the run can only
// be aborted.
func (a *Assembler) Add(inputPath, exportName string) error {
	if err := a.usable(); err != nil {
		return err
	}
	if err := a.checkName(exportName); err != nil {
		return err
	}

	in, err := os.Open(inputPath)
	if err != nil {
		return a.fail(fmt.Errorf("%w: %w", ErrInputNotFound, err))
	}
	defer in.Close()

	return a.add(in, inputPath, exportName)
}

// AddReader is Add for an already open stream. r is read until io.EOF.
func (a *Assembler) AddReader(r io.Reader, exportName string) error {
	if err := a.usable(); err != nil {
		return err
	}
	if err := a.checkName(exportName); err != nil {
		return err
	}

	return a.add(r, exportName, exportName)
}

func (a *Assembler) add(r io.Reader, source string, exportName string) error {
	value := a.data.End()

	// Leave room for the worst-case padding and the length field.
	var limit uint64
	if remaining := a.data.Size() - a.data.Used(); remaining > 2*sizeFieldWidth-1 {
		limit = remaining - (2*sizeFieldWidth - 1)
	}
	length, err := a.copyInput(r, source, limit)
	if err != nil {
		return a.fail(err)
	}

	contents := &span{size: length, align: 1}
	if ok, _ := a.data.Place(contents, false); !ok || contents.Offset() != value {
		return a.fail(fmt.Errorf("%w: %s", ErrInputTooLarge, source))
	}
	field := &span{size: sizeFieldWidth, align: sizeFieldWidth}
	ok, padding := a.data.Place(field, false)
	if !ok {
		return a.fail(fmt.Errorf("%w: %s", ErrInputTooLarge, source))
	}

	if _, err := a.w.Write(zeroes[:padding]); err != nil {
		return a.fail(fmt.Errorf("%w: %w", ErrOutputWriteFailed, err))
	}
	if err := binary.Write(a.w, a.obj.GetByteOrder(), uint32(length)); err != nil {
		return a.fail(fmt.Errorf("%w: %w", ErrOutputWriteFailed, err))
	}

	pair := symbolPair{
		data: elf.Symbol{
			Type:         elf.STT_NOTYPE,
			Binding:      elf.STB_GLOBAL,
			Other:        elf.STV_DEFAULT,
			SectionIndex: dataSectionIndex,
			Value:        value,
			Size:         0,
		},
		size: elf.Symbol{
			Type:         elf.STT_OBJECT,
			Binding:      elf.STB_GLOBAL,
			Other:        elf.STV_DEFAULT,
			SectionIndex: dataSectionIndex,
			Value:        field.Offset(),
			Size:         sizeFieldWidth,
		},
	}
	names := namePair{
		name:     exportName,
		sizeName: exportName + sizeSuffix,
	}

	pair.data.NameOffset = a.strtab.Add(names.name)
	a.nameCursor += uint32(len(names.name)) + 1
	pair.size.NameOffset = a.strtab.Add(names.sizeName)
	a.nameCursor += uint32(len(names.sizeName)) + 1
	if a.strtab.Len() != a.nameCursor {
		panic(fmt.Sprintf("string table is %d bytes, expected %d", a.strtab.Len(), a.nameCursor))
	}

	a.symbols = append(a.symbols, pair)
	a.names = append(a.names, names)
	a.exported[names.name] = struct{}{}
	a.exported[names.sizeName] = struct{}{}

	a.logf("embedded %s as %s (%d bytes at .data+0x%x)", source, exportName, length, value)
	return nil
}

// copyInput streams r into the output in ChunkSize pieces and returns the
// number of bytes copied. Only io.EOF ends the input cleanly.
func (a *Assembler) copyInput(r io.Reader, source string, limit uint64) (uint64, error) {
	var total uint64
	for {
		n, err := r.Read(a.buf)
		if n > 0 {
			total += uint64(n)
			if total > limit {
				return total, fmt.Errorf("%w: %s", ErrInputTooLarge, source)
			}
			if _, werr := a.w.Write(a.buf[:n]); werr != nil {
				return total, fmt.Errorf("%w: %w", ErrOutputWriteFailed, werr)
			}
		}
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, fmt.Errorf("%w: %s: %w", ErrInputReadFailed, source, err)
		}
	}
}

// Finalize writes the symbol, string and section name tables, patches the
// section headers and closes the output. If any step fails the partial
// output is removed.
func (a *Assembler) Finalize() error {
	if err := a.usable(); err != nil {
		return err
	}

	if err := a.finalize(); err != nil {
		a.discard()
		a.state = stateAborted
		a.release()
		a.logf("finalize of %s failed, output removed", a.path)
		return err
	}

	a.state = stateFinalized
	a.logf("wrote %s: %d inputs, %d bytes of data", a.path, len(a.symbols), a.data.Used())
	a.release()
	return nil
}

func (a *Assembler) finalize() error {
	dataSize := a.data.Used()
	alignedDataSize := a.data.AlignEnd(symtabAlign)
	if _, err := a.w.Write(zeroes[:alignedDataSize-dataSize]); err != nil {
		return fmt.Errorf("%w: %w", ErrOutputWriteFailed, err)
	}

	// The linker side relies on data/size pairs staying adjacent.
	null := &elf.Symbol{}
	if err := a.obj.WriteSymbol(a.w, null); err != nil {
		return fmt.Errorf("%w: %w", ErrOutputWriteFailed, err)
	}
	for i := range a.symbols {
		if err := a.obj.WriteSymbol(a.w, &a.symbols[i].data); err != nil {
			return fmt.Errorf("%w: %w", ErrOutputWriteFailed, err)
		}
		if err := a.obj.WriteSymbol(a.w, &a.symbols[i].size); err != nil {
			return fmt.Errorf("%w: %w", ErrOutputWriteFailed, err)
		}
	}
	symtabSize := uint64(1+2*len(a.symbols)) * uint64(elf.SymbolSize)

	a.checkNames()
	if _, err := a.w.Write(a.strtab.Bytes()); err != nil {
		return fmt.Errorf("%w: %w", ErrOutputWriteFailed, err)
	}
	strtabSize := uint64(a.strtab.Len())

	if _, err := a.w.Write(sectionNames.Bytes()); err != nil {
		return fmt.Errorf("%w: %w", ErrOutputWriteFailed, err)
	}
	if err := a.w.Flush(); err != nil {
		return fmt.Errorf("%w: %w", ErrOutputWriteFailed, err)
	}

	headers := a.sectionHeaders(dataSize, alignedDataSize, symtabSize, strtabSize)
	if _, err := a.out.Seek(int64(elf.ElfHeaderSize), io.SeekStart); err != nil {
		return fmt.Errorf("%w: %w", ErrSeekFailed, err)
	}
	if err := a.obj.WriteSectionHeaders(a.w, headers); err != nil {
		return fmt.Errorf("%w: %w", ErrOutputWriteFailed, err)
	}
	if err := a.w.Flush(); err != nil {
		return fmt.Errorf("%w: %w", ErrOutputWriteFailed, err)
	}

	out := a.out
	a.out = nil
	if err := out.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrCloseFailed, err)
	}
	return nil
}

// checkNames panics unless every symbol's name offset resolves to the name
// recorded for it.
func (a *Assembler) checkNames() {
	for i, names := range a.names {
		pair := &a.symbols[i]
		if s, _ := a.strtab.Lookup(pair.data.NameOffset); s != names.name {
			panic(fmt.Sprintf("symbol %d is named %q, expected %q", 2*i+1, s, names.name))
		}
		if s, _ := a.strtab.Lookup(pair.size.NameOffset); s != names.sizeName {
			panic(fmt.Sprintf("symbol %d is named %q, expected %q", 2*i+2, s, names.sizeName))
		}
	}
}

func (a *Assembler) sectionHeaders(dataSize, alignedDataSize, symtabSize, strtabSize uint64) []*elf.SectionHeader {
	data := &elf.SectionHeader{
		NameOffset: sectionName(".data"),
		Type:       elf.SHT_PROGBITS,
		Flags:      elf.SHF_WRITE | elf.SHF_ALLOC,
		Offset:     a.dataOffset(),
		Size:       dataSize,
		AddrAlign:  1,
	}
	symtab := &elf.SectionHeader{
		NameOffset: sectionName(".symtab"),
		Type:       elf.SHT_SYMTAB,
		Offset:     data.Offset + alignedDataSize,
		Size:       symtabSize,
		Link:       strtabSectionIndex,
		Info:       1, // no local symbols besides the null entry
		AddrAlign:  symtabAlign,
		EntrySize:  uint64(elf.SymbolSize),
	}
	strtab := &elf.SectionHeader{
		NameOffset: sectionName(".strtab"),
		Type:       elf.SHT_STRTAB,
		Offset:     symtab.Offset + symtab.Size,
		Size:       strtabSize,
		AddrAlign:  1,
	}
	shstrtab := &elf.SectionHeader{
		NameOffset: sectionName(".shstrtab"),
		Type:       elf.SHT_STRTAB,
		Offset:     strtab.Offset + strtab.Size,
		Size:       uint64(sectionNames.Len()),
		AddrAlign:  1,
	}

	headers := make([]*elf.SectionHeader, sectionCount)
	headers[0] = &elf.SectionHeader{}
	headers[dataSectionIndex] = data
	headers[symtabSectionIndex] = symtab
	headers[strtabSectionIndex] = strtab
	headers[shstrtabSectionIndex] = shstrtab
	return headers
}

// Abort closes and deletes the output. It is a no-op once the assembler
// has been finalized or aborted.
func (a *Assembler) Abort() {
	if a.state != stateOpen {
		return
	}
	a.discard()
	a.state = stateAborted
	a.release()
	a.logf("aborted, removed %s", a.path)
}

func (a *Assembler) discard() {
	if a.out != nil {
		a.out.Close()
		a.out = nil
	}
	os.Remove(a.path)
}

func (a *Assembler) release() {
	a.symbols = nil
	a.names = nil
	a.strtab = nil
	a.exported = nil
	a.buf = nil
}
