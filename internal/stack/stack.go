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

// Package stack holds an ordered sequence of equally sized 2D FITS slices and
// exposes it to the alignment engine.
package stack

import (
	"fmt"

	"github.com/mlnoga/prealign/internal/align"
	"github.com/mlnoga/prealign/internal/fits"
)

// An image stack of 2D slices, with an active slice and a region of interest
type Stack struct {
	slices        []*fits.Image
	width, height int
	active        int
	roi           align.Rect
	Fill          float32 // value for pixels vacated by translation
}

// Creates a stack from 2D slices of identical dimensions. Slice IDs are renumbered 1..n.
// The first slice is active, the region of interest spans the whole image.
func NewStack(slices []*fits.Image) (*Stack, error) {
	if len(slices) == 0 {
		return nil, align.ErrEmptyStack
	}
	first := slices[0]
	if len(first.Naxisn) != 2 {
		return nil, fmt.Errorf("%d: slice has dimensions %s, want 2D", first.ID, first.DimensionsToString())
	}
	for _, s := range slices[1:] {
		if !fits.EqualInt32Slice(s.Naxisn, first.Naxisn) {
			return nil, fmt.Errorf("%d: slice dimensions %s differ from %s of the first slice",
				s.ID, s.DimensionsToString(), first.DimensionsToString())
		}
	}
	for i, s := range slices {
		s.ID = i + 1
	}
	width, height := first.Width(), first.Height()
	return &Stack{
		slices: slices,
		width:  width,
		height: height,
		active: 1,
		roi:    align.Rect{Width: width, Height: height},
	}, nil
}

// Creates a stack from the planes of a 3D cube, or a single-slice stack from a 2D image
func NewStackFromCube(cube *fits.Image) (*Stack, error) {
	slices, err := fits.SplitCube(cube)
	if err != nil {
		return nil, err
	}
	return NewStack(slices)
}

// Returns a 3D cube with copies of all slices
func (s *Stack) Cube() (*fits.Image, error) {
	return fits.JoinCube(s.slices)
}

// Returns the slices in order. The images are shared with the stack
func (s *Stack) Slices() []*fits.Image { return s.slices }

// Returns the given 1-based slice
func (s *Stack) Slice(slice int) *fits.Image { return s.slices[slice-1] }

func (s *Stack) PixelValue(slice, x, y int) float64 {
	return float64(s.slices[slice-1].Data[y*s.width+x])
}

func (s *Stack) SliceCount() int { return len(s.slices) }

func (s *Stack) ActiveSlice() int { return s.active }

// Selects the active slice, clamped to the stack
func (s *Stack) SetActiveSlice(slice int) {
	if slice < 1 {
		slice = 1
	} else if slice > len(s.slices) {
		slice = len(s.slices)
	}
	s.active = slice
}

func (s *Stack) Dimensions() (width, height int) { return s.width, s.height }

func (s *Stack) Roi() align.Rect { return s.roi }

func (s *Stack) SetRoi(r align.Rect) { s.roi = r }

// Shifts the given slice by whole pixels, filling vacated pixels with s.Fill
func (s *Stack) TranslateSlice(slice, dx, dy int) error {
	if slice < 1 || slice > len(s.slices) {
		return fmt.Errorf("slice %d outside stack of %d slices", slice, len(s.slices))
	}
	s.slices[slice-1].Translate(dx, dy, s.Fill)
	return nil
}

// Checks that the region of interest lies within the image
func (s *Stack) CheckRoi(r align.Rect) error {
	if r.Width <= 0 || r.Height <= 0 || r.X < 0 || r.Y < 0 || r.X+r.Width > s.width || r.Y+r.Height > s.height {
		return fmt.Errorf("%w: %v on %dx%d image", align.ErrInvalidRoi, r, s.width, s.height)
	}
	return nil
}
