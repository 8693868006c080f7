// SPDX-License-Identifier: MIT
//
// Copyright (c) 2024 Adrian "asie" Siekierka

package mbed

// Input is one file to embed and the symbol name it is exported under.
type Input struct {
	Path string
	Name string
}

// Embed writes every input into a new object at outputPath. On any failure
// the partial output is removed and the first error is returned.
func Embed(outputPath string, inputs []Input, opts *Options) error {
	a, err := Create(outputPath, opts)
	if err != nil {
		return err
	}

	for _, in := range inputs {
		if err := a.Add(in.Path, in.Name); err != nil {
			a.Abort()
			return err
		}
	}

	return a.Finalize()
}
