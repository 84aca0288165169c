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

// Shifts every plane of the image in place by whole pixels, so that pixel (x,y) moves to (x+dx, y+dy).
// Vacated pixels are filled with the given value.
func (f *Image) Translate(dx, dy int, fill float32) {
	if dx == 0 && dy == 0 {
		return
	}
	width, height := f.Width(), f.Height()
	planeSize := width * height
	for p := 0; p < f.Planes(); p++ {
		translatePlane(f.Data[p*planeSize:(p+1)*planeSize], width, height, dx, dy, fill)
	}
	f.Stats = nil
}

func translatePlane(data []float32, width, height, dx, dy int, fill float32) {
	// iterate against the direction of the shift so sources are read before being overwritten
	yStart, yEnd, yStep := 0, height, 1
	if dy > 0 {
		yStart, yEnd, yStep = height-1, -1, -1
	}
	xStart, xEnd, xStep := 0, width, 1
	if dx > 0 {
		xStart, xEnd, xStep = width-1, -1, -1
	}
	for y := yStart; y != yEnd; y += yStep {
		sy := y - dy
		row := data[y*width : (y+1)*width]
		if sy < 0 || sy >= height {
			for x := range row {
				row[x] = fill
			}
			continue
		}
		for x := xStart; x != xEnd; x += xStep {
			sx := x - dx
			if sx < 0 || sx >= width {
				row[x] = fill
			} else {
				row[x] = data[sy*width+sx]
			}
		}
	}
}
