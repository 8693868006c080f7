// SPDX-License-Identifier: MIT
//
// Copyright (c) 2023, 2024 Adrian "asie" Siekierka

package layout

type Placeable interface {
	Offset() uint64
	SetOffset(uint64)
	Size() uint64
	Alignment() uint64
}

// Region is a bounded, append-only run of entries. Each new entry goes after
// the last one, moved up to its alignment; the skipped bytes are padding.
type Region[T Placeable] struct {
	offset  uint64
	size    uint64
	entries []T
}

func NewRegion[T Placeable](offset uint64, size uint64) *Region[T] {
	r := Region[T]{
		offset:  offset,
		size:    size,
		entries: make([]T, 0),
	}
	return &r
}

func (r Region[T]) Offset() uint64 {
	return r.offset
}

func (r Region[T]) Size() uint64 {
	return r.size
}

func (r Region[T]) Empty() bool {
	return len(r.entries) == 0
}

func (r Region[T]) Entries() []T {
	return r.entries
}

// End returns the first offset past the last entry.
func (r Region[T]) End() uint64 {
	if !r.Empty() {
		last := r.entries[len(r.entries)-1]
		return last.Offset() + last.Size()
	} else {
		return r.offset
	}
}

// Used returns the number of bytes taken by entries and padding so far.
func (r Region[T]) Used() uint64 {
	return r.End() - r.offset
}

// AlignEnd returns End rounded up to align, relative to the region start.
func (r Region[T]) AlignEnd(align uint64) uint64 {
	used := r.Used()
	if align > 1 {
		used += align - 1
		used -= used % align
	}
	return r.offset + used
}

func calcEntryOffset(base uint64, start uint64, end uint64, len uint64, align uint64) (bool, uint64) {
	offset := start - base
	if align > 1 {
		offset += align - 1
		offset -= (offset % align)
	}
	offset += base
	if offset < start || offset > end || len > end-offset {
		return false, 0
	}
	return true, offset
}

// Place puts entry right after the last one. It reports whether the entry
// fit and how many padding bytes its alignment required. With simulate set
// the region is left untouched.
func (r *Region[T]) Place(entry T, simulate bool) (bool, uint64) {
	start := r.End()
	ok, offset := calcEntryOffset(r.offset, start, r.offset+r.size, entry.Size(), entry.Alignment())
	if !ok {
		return false, 0
	}

	if !simulate {
		entry.SetOffset(offset)
		r.entries = append(r.entries, entry)
	}
	return true, offset - start
}
