// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package align

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// One TRANSLATION record of a MultiStackReg transformation file
type TransformEntry struct {
	Source int   // source slice
	Target int   // target slice, always the reference slice
	Point  Point // translated image center, incremental to the next slice closer to the target
}

// Computes the transformation records for all slices other than refSlice: first descending
// from refSlice-1 to 1, then ascending from refSlice+1 to the stack size. Each record holds
// center - c[i] + c[j], where j is the neighbor of i towards refSlice.
func Transforms(c Corrections, refSlice int, center Point) []TransformEntry {
	entries := make([]TransformEntry, 0, len(c))
	for i := refSlice - 1; i >= 1; i-- {
		p := center.Sub(c.At(i)).Add(c.At(i + 1))
		entries = append(entries, TransformEntry{i, refSlice, p})
	}
	for i := refSlice + 1; i <= len(c); i++ {
		p := center.Sub(c.At(i)).Add(c.At(i - 1))
		entries = append(entries, TransformEntry{i, refSlice, p})
	}
	return entries
}

// Returns the image center as used by the transformation file format
func Center(width, height int) Point { return Point{width / 2, height / 2} }

// Writes transformation records in MultiStackReg text format
func WriteTransformFile(w io.Writer, entries []TransformEntry, center Point) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "MultiStackReg Transformation File\n")
	fmt.Fprintf(bw, "File Version 1.0\n")
	fmt.Fprintf(bw, "0\n") // single stack alignment
	for _, e := range entries {
		fmt.Fprintf(bw, "TRANSLATION\n")
		fmt.Fprintf(bw, "Source img: %d Target img: %d\n", e.Source, e.Target)
		fmt.Fprintf(bw, "%d\t%d\n", e.Point.X, e.Point.Y)
		fmt.Fprintf(bw, "0.0\t0.0\n0.0\t0.0\n\n")
		fmt.Fprintf(bw, "%d\t%d\n", center.X, center.Y)
		fmt.Fprintf(bw, "0.0\t0.0\n0.0\t0.0\n\n")
	}
	return bw.Flush()
}

// Writes the transformation file for the given corrections to a file, creating or truncating it
func SaveTransformFile(fileName string, c Corrections, refSlice, width, height int) error {
	f, err := os.Create(fileName)
	if err != nil {
		return err
	}
	center := Center(width, height)
	if err = WriteTransformFile(f, Transforms(c, refSlice, center), center); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
