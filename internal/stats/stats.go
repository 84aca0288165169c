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

import (
	"fmt"
	"math"
	"sort"

	"github.com/valyala/fastrand"
	"gonum.org/v1/gonum/stat"
)

// Basic statistics on an image plane
type Stats struct {
	Width  int32   // Width of the underlying image, for local operations
	Min    float32 // Minimum
	Max    float32 // Maximum
	Mean   float32 // Mean (average)
	StdDev float32 // Standard deviation (norm 2, sigma)
	Median float32 // Approximate median from random samples
}

// Number of samples drawn for the approximate median
const NumMedianSamples = 16 * 1024

// Calculates statistics for the given data. NaNs are ignored
func NewStats(data []float32, width int32) *Stats {
	s := &Stats{Width: width}
	values := make([]float64, 0, len(data))
	s.Min, s.Max = float32(math.MaxFloat32), -float32(math.MaxFloat32)
	for _, d := range data {
		if math.IsNaN(float64(d)) {
			continue
		}
		if d < s.Min {
			s.Min = d
		}
		if d > s.Max {
			s.Max = d
		}
		values = append(values, float64(d))
	}
	if len(values) == 0 {
		return &Stats{Width: width}
	}
	mean, stdDev := stat.PopMeanStdDev(values, nil)
	s.Mean, s.StdDev = float32(mean), float32(stdDev)
	s.Median = SampledMedian(data, NumMedianSamples, uint32(len(data)))
	return s
}

// Pretty print stats to string
func (s *Stats) String() string {
	return fmt.Sprintf("Min %.6g Max %.6g Mean %.6g StdDev %.6g Median %.6g",
		s.Min, s.Max, s.Mean, s.StdDev, s.Median)
}

// Pretty print stats to CSV header
func (s *Stats) ToCSVHeader() string {
	return "Min,Max,Mean,StdDev,Median"
}

// Pretty print stats to CSV line item
func (s *Stats) ToCSVLine() string {
	return fmt.Sprintf("%.6g,%.6g,%.6g,%.6g,%.6g", s.Min, s.Max, s.Mean, s.StdDev, s.Median)
}

// Calculates an approximate median of the (presumably large) data by drawing the given number
// of random samples and taking their median. Small inputs are evaluated exactly. Seeded, so
// results are reproducible. NaNs are skipped.
func SampledMedian(data []float32, numSamples int, seed uint32) float32 {
	var samples []float64
	if len(data) <= numSamples {
		samples = make([]float64, 0, len(data))
		for _, d := range data {
			if !math.IsNaN(float64(d)) {
				samples = append(samples, float64(d))
			}
		}
	} else {
		rng := fastrand.RNG{}
		rng.Seed(seed)
		samples = make([]float64, 0, numSamples)
		max := uint32(len(data))
		for tries := 0; len(samples) < numSamples && tries < 4*numSamples; tries++ {
			d := data[rng.Uint32n(max)]
			if !math.IsNaN(float64(d)) {
				samples = append(samples, float64(d))
			}
		}
	}
	if len(samples) == 0 {
		return 0
	}
	sort.Float64s(samples)
	return float32(stat.Quantile(0.5, stat.Empirical, samples, nil))
}
