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

import "math"

// A rectangular block of pixel values, stored row by row
type Patch struct {
	Width  int
	Height int
	Data   []float64
}

func NewPatch(width, height int) *Patch {
	return &Patch{width, height, make([]float64, width*height)}
}

// Returns the value at column x, row y
func (p *Patch) At(x, y int) float64 { return p.Data[y*p.Width+x] }

// Reads a width x height patch from the given slice, starting at (x0,y0).
// Bounds are not checked here.
func SamplePatch(h Host, slice, x0, y0, width, height int) *Patch {
	p := NewPatch(width, height)
	for y := 0; y < height; y++ {
		row := p.Data[y*width : (y+1)*width]
		for x := range row {
			row[x] = h.PixelValue(slice, x0+x, y0+y)
		}
	}
	return p
}

// Lp error metric between a candidate and a reference patch
type Metric struct {
	Power float64 `json:"power"`
}

// Returns sum |cand-ref|^Power over all pixels. Both patches must have the same size.
func (m Metric) Distance(cand, ref *Patch) float64 {
	return m.DistanceAt(cand, 0, 0, ref)
}

// Like Distance, but compares ref against the ref-sized subwindow of window starting at (offX,offY)
func (m Metric) DistanceAt(window *Patch, offX, offY int, ref *Patch) float64 {
	sum := 0.0
	for y := 0; y < ref.Height; y++ {
		wRow := window.Data[(y+offY)*window.Width+offX : (y+offY)*window.Width+offX+ref.Width]
		rRow := ref.Data[y*ref.Width : (y+1)*ref.Width]
		switch m.Power {
		case 1:
			for x, r := range rRow {
				sum += math.Abs(wRow[x] - r)
			}
		case 2:
			for x, r := range rRow {
				d := wRow[x] - r
				sum += d * d
			}
		default:
			for x, r := range rRow {
				sum += math.Pow(math.Abs(wRow[x]-r), m.Power)
			}
		}
	}
	return sum
}
