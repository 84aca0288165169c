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

package stats

import "math"

// Calculate histogram of data between min and max into given bins. Values outside are clamped, NaNs skipped
func Histogram(data []float32, min, max float32, bins []int32) {
	for i := range bins {
		bins[i] = 0
	}
	if len(bins) == 0 {
		return
	}
	scale := float32(0)
	if max > min {
		scale = float32(len(bins)-1) / (max - min)
	}
	for _, d := range data {
		if math.IsNaN(float64(d)) {
			continue
		}
		index := int((d - min) * scale)
		if index < 0 {
			index = 0
		} else if index >= len(bins) {
			index = len(bins) - 1
		}
		bins[index]++
	}
}

// Returns the location of the histogram peak as the center of the fullest bin, and its count
func GetPeak(bins []int32, min, max float32) (x float32, count int32) {
	maxIndex, maxValue := 0, int32(math.MinInt32)
	for i, v := range bins {
		if v > maxValue {
			maxIndex, maxValue = i, v
		}
	}
	if len(bins) < 2 {
		return min, maxValue
	}
	x = min + (float32(maxIndex)+0.5)*(max-min)/float32(len(bins)-1)
	return x, maxValue
}

// Estimates the background level of an image plane as the peak of a histogram with the given number of bins
func BackgroundLevel(data []float32, s *Stats, numBins int) float32 {
	bins := make([]int32, numBins)
	Histogram(data, s.Min, s.Max, bins)
	x, _ := GetPeak(bins, s.Min, s.Max)
	return x
}
