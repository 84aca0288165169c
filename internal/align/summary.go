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
	"math"

	"gonum.org/v1/gonum/stat"
)

// Drift statistics over a set of corrections
type Summary struct {
	Slices    int     `json:"slices"`    // number of corrections summarized
	MeanShift float64 `json:"meanShift"` // mean euclidean length of the corrections
	StdDev    float64 `json:"stdDev"`    // standard deviation of the lengths
	MaxX      int     `json:"maxX"`      // maximal absolute horizontal correction
	MaxY      int     `json:"maxY"`      // maximal absolute vertical correction
}

func (s Summary) String() string {
	return fmt.Sprintf("%d slices, mean shift %.3g px (stddev %.3g), max |dx| %d |dy| %d",
		s.Slices, s.MeanShift, s.StdDev, s.MaxX, s.MaxY)
}

// Summarizes the corrections of slices first..last
func Summarize(c Corrections, first, last int) Summary {
	if first < 1 {
		first = 1
	}
	if last > len(c) {
		last = len(c)
	}
	if first > last {
		return Summary{}
	}
	lengths := make([]float64, 0, last-first+1)
	s := Summary{Slices: last - first + 1}
	for i := first; i <= last; i++ {
		p := c.At(i)
		lengths = append(lengths, math.Hypot(float64(p.X), float64(p.Y)))
		if ax := abs(p.X); ax > s.MaxX {
			s.MaxX = ax
		}
		if ay := abs(p.Y); ay > s.MaxY {
			s.MaxY = ay
		}
	}
	s.MeanShift = stat.Mean(lengths, nil)
	if len(lengths) > 1 {
		s.StdDev = stat.StdDev(lengths, nil)
	}
	return s
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
