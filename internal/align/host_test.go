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
	"github.com/valyala/fastrand"
)

// In-memory host for tests. Records translation requests.
type memHost struct {
	width, height int
	slices        [][]float64
	active        int
	roi           Rect
	moves         []Landmark // slice and translation of every TranslateSlice call
}

func (h *memHost) PixelValue(slice, x, y int) float64 { return h.slices[slice-1][y*h.width+x] }
func (h *memHost) SliceCount() int                    { return len(h.slices) }
func (h *memHost) ActiveSlice() int                   { return h.active }
func (h *memHost) SetActiveSlice(slice int)           { h.active = slice }
func (h *memHost) Dimensions() (int, int)             { return h.width, h.height }
func (h *memHost) Roi() Rect                          { return h.roi }
func (h *memHost) SetRoi(r Rect)                      { h.roi = r }

func (h *memHost) TranslateSlice(slice, dx, dy int) error {
	h.moves = append(h.moves, Landmark{slice, dx, dy})
	src := h.slices[slice-1]
	dst := make([]float64, len(src))
	for y := 0; y < h.height; y++ {
		for x := 0; x < h.width; x++ {
			sx, sy := x-dx, y-dy
			if sx >= 0 && sx < h.width && sy >= 0 && sy < h.height {
				dst[y*h.width+x] = src[sy*h.width+sx]
			}
		}
	}
	h.slices[slice-1] = dst
	return nil
}

const testMargin = 10

// Creates a host whose slice k samples a common random texture at offset shifts[k-1],
// i.e. pixel (x,y) of slice k is texture(x+shift.X, y+shift.Y). Shifts must not exceed testMargin.
func newShiftedHost(width, height int, shifts []Point, seed uint32) *memHost {
	rng := fastrand.RNG{}
	rng.Seed(seed)
	tw, th := width+2*testMargin, height+2*testMargin
	texture := make([]float64, tw*th)
	for i := range texture {
		texture[i] = float64(rng.Uint32n(256))
	}

	h := &memHost{width: width, height: height, active: 1}
	for _, s := range shifts {
		data := make([]float64, width*height)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				data[y*width+x] = texture[(y+s.Y+testMargin)*tw+x+s.X+testMargin]
			}
		}
		h.slices = append(h.slices, data)
	}
	return h
}

// Creates a host with n slices of constant value
func newFlatHost(width, height, n int, value float64) *memHost {
	h := &memHost{width: width, height: height, active: 1}
	for i := 0; i < n; i++ {
		data := make([]float64, width*height)
		for j := range data {
			data[j] = value
		}
		h.slices = append(h.slices, data)
	}
	return h
}
