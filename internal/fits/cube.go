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

package fits

import "fmt"

// Splits a cube into its 2D slices. Slices get IDs 1..n and copies of the pixel data.
// A 2D image yields a single slice.
func SplitCube(cube *Image) ([]*Image, error) {
	if len(cube.Naxisn) < 2 || len(cube.Naxisn) > 3 {
		return nil, fmt.Errorf("%d: cannot split %s image into slices", cube.ID, cube.DimensionsToString())
	}
	width, height := cube.Width(), cube.Height()
	planeSize := width * height
	slices := make([]*Image, cube.Planes())
	for i := range slices {
		data := append([]float32(nil), cube.Data[i*planeSize:(i+1)*planeSize]...)
		s := NewImageFromNaxisn(cube.Naxisn[:2], data)
		s.ID, s.FileName, s.Exposure = i+1, cube.FileName, cube.Exposure
		slices[i] = s
	}
	return slices, nil
}

// Joins 2D slices of identical dimensions into a cube with NAXIS3 = number of slices
func JoinCube(slices []*Image) (*Image, error) {
	if len(slices) == 0 {
		return nil, fmt.Errorf("no slices to join")
	}
	first := slices[0]
	if len(first.Naxisn) != 2 {
		return nil, fmt.Errorf("%d: slice has dimensions %s, want 2D", first.ID, first.DimensionsToString())
	}
	planeSize := int(first.Pixels)
	cube := NewImageFromNaxisn([]int32{first.Naxisn[0], first.Naxisn[1], int32(len(slices))}, nil)
	cube.FileName, cube.Exposure = first.FileName, first.Exposure
	for i, s := range slices {
		if !EqualInt32Slice(s.Naxisn, first.Naxisn) {
			return nil, fmt.Errorf("%d: slice dimensions %s differ from %s", s.ID, s.DimensionsToString(), first.DimensionsToString())
		}
		copy(cube.Data[i*planeSize:(i+1)*planeSize], s.Data)
	}
	return cube, nil
}
