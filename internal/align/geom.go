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

import "fmt"

// An integer 2D point or translation vector
type Point struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Neg() Point        { return Point{-p.X, -p.Y} }

func (p Point) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

// An axis-aligned rectangle, used as region of interest
type Rect struct {
	X      int `json:"x"      yaml:"x"`
	Y      int `json:"y"      yaml:"y"`
	Width  int `json:"width"  yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Returns the top left corner of the rectangle
func (r Rect) Origin() Point { return Point{r.X, r.Y} }

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d at (%d,%d)", r.Width, r.Height, r.X, r.Y)
}

// Per-slice corrections, index-aligned to the stack. Index 0 holds slice 1.
type Corrections []Point

func NewCorrections(stackSize int) Corrections {
	return make(Corrections, stackSize)
}

// Returns the correction for the given 1-based slice
func (c Corrections) At(slice int) Point { return c[slice-1] }

// Sets the correction for the given 1-based slice
func (c Corrections) Set(slice int, p Point) { c[slice-1] = p }

// Returns a deep copy
func (c Corrections) Clone() Corrections {
	return append(Corrections(nil), c...)
}
