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
	"fmt"
	"io"
)

// Selects which components of a correction get applied
type AxisMask int

const (
	AxisX    AxisMask = 1 << iota // horizontal component
	AxisY                         // vertical component
	AxisBoth = AxisX | AxisY
)

// Returns the mask for the given per-axis flags
func MaskOf(x, y bool) (m AxisMask) {
	if x {
		m |= AxisX
	}
	if y {
		m |= AxisY
	}
	return m
}

// Returns p with the masked-out components set to zero
func (m AxisMask) Filter(p Point) Point {
	if m&AxisX == 0 {
		p.X = 0
	}
	if m&AxisY == 0 {
		p.Y = 0
	}
	return p
}

// Translates every slice of the host by its correction, restricted to the given axes.
// The active slice and, if supported, the region of interest are restored afterwards.
func Apply(h Host, c Corrections, mask AxisMask, logWriter io.Writer) (err error) {
	if mask&AxisBoth == 0 {
		return nil
	}
	active := h.ActiveSlice()
	rh, hasRoi := h.(RoiHost)
	var roi Rect
	if hasRoi {
		roi = rh.Roi()
	}
	defer func() {
		h.SetActiveSlice(active)
		if hasRoi {
			rh.SetRoi(roi)
		}
	}()

	fmt.Fprintf(logWriter, "Translating %d slices...\n", len(c))
	for i := 1; i <= h.SliceCount() && i <= len(c); i++ {
		h.SetActiveSlice(i)
		p := mask.Filter(c.At(i))
		if err = h.TranslateSlice(i, p.X, p.Y); err != nil {
			return fmt.Errorf("%d: translate by %v: %w", i, p, err)
		}
	}
	return nil
}
