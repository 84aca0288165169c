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

import "errors"

// The image stack the engine operates on. Slices are numbered 1..SliceCount().
type Host interface {
	PixelValue(slice, x, y int) float64
	SliceCount() int
	ActiveSlice() int
	SetActiveSlice(slice int)
	Dimensions() (width, height int)

	// Shifts the pixel content of a single slice by whole pixels, without interpolation
	TranslateSlice(slice, dx, dy int) error
}

// Optionally implemented by hosts which carry a region of interest
type RoiHost interface {
	Roi() Rect
	SetRoi(r Rect)
}

var (
	ErrNoOutput        = errors.New("neither transformation file nor translation requested")
	ErrRefOutsideRange = errors.New("reference slice is beyond the corrected range")
	ErrOutOfBounds     = errors.New("region of interest plus search range exceeds image bounds")
	ErrInvalidRoi      = errors.New("region of interest must have positive width and height")
	ErrInvalidRange    = errors.New("search range must not be negative")
	ErrInvalidPower    = errors.New("error exponent must be positive")
	ErrNoLandmarks     = errors.New("no slice has been clicked yet")
	ErrSessionClosed   = errors.New("session is no longer accepting input")
	ErrEmptyStack      = errors.New("stack has no slices")
)
