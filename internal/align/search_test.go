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
	"errors"
	"math"
	"testing"
)

func TestMetricDistance(t *testing.T) {
	cand := &Patch{2, 2, []float64{1, 2, 3, 4}}
	ref := &Patch{2, 2, []float64{2, 2, 1, 7}}
	// differences 1, 0, 2, 3
	for _, tc := range []struct {
		power float64
		want  float64
	}{
		{1, 6},
		{2, 14},
		{3, 36},
		{0.5, 1 + math.Sqrt(2) + math.Sqrt(3)},
	} {
		got := Metric{tc.power}.Distance(cand, ref)
		if math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("power %g: distance=%g; want %g", tc.power, got, tc.want)
		}
	}
}

func TestMetricDistanceAtSubwindow(t *testing.T) {
	window := &Patch{3, 3, []float64{
		0, 0, 0,
		0, 5, 6,
		0, 7, 8,
	}}
	ref := &Patch{2, 2, []float64{5, 6, 7, 8}}
	if d := (Metric{2}).DistanceAt(window, 1, 1, ref); d != 0 {
		t.Errorf("distance at (1,1)=%g; want 0", d)
	}
	if d := (Metric{1}).DistanceAt(window, 0, 0, ref); d != 5+6+7+3 {
		t.Errorf("distance at (0,0)=%g; want %d", d, 5+6+7+3)
	}
}

func TestSamplePatch(t *testing.T) {
	h := newShiftedHost(12, 10, []Point{{0, 0}}, 7)
	p := SamplePatch(h, 1, 3, 2, 4, 5)
	if p.Width != 4 || p.Height != 5 || len(p.Data) != 20 {
		t.Fatalf("patch %dx%d with %d values; want 4x5 with 20", p.Width, p.Height, len(p.Data))
	}
	for y := 0; y < 5; y++ {
		for x := 0; x < 4; x++ {
			if p.At(x, y) != h.PixelValue(1, 3+x, 2+y) {
				t.Errorf("p.At(%d,%d)=%g; want %g", x, y, p.At(x, y), h.PixelValue(1, 3+x, 2+y))
			}
		}
	}
}

func TestBestCorrectionFindsShift(t *testing.T) {
	roi := Rect{14, 12, 8, 6}
	for _, shift := range []Point{{0, 0}, {2, -1}, {-3, 3}, {4, 4}, {-4, -4}} {
		// slice 2 holds the reference content at roi origin + shift
		h := newShiftedHost(40, 32, []Point{{0, 0}, shift.Neg()}, 11)
		s := &Searcher{Host: h, Metric: Metric{2}, Range: 4}
		ref := SamplePatch(h, 1, roi.X, roi.Y, roi.Width, roi.Height)
		best, minErr, err := s.BestCorrection(2, SearchContext{ref, roi.Origin()})
		if err != nil {
			t.Fatalf("shift %v: %s", shift, err)
		}
		if best != shift.Neg() {
			t.Errorf("shift %v: best=%v; want %v", shift, best, shift.Neg())
		}
		if minErr != 0 {
			t.Errorf("shift %v: minErr=%g; want 0", shift, minErr)
		}
	}
}

func TestBestCorrectionDeterministic(t *testing.T) {
	h := newShiftedHost(30, 30, []Point{{0, 0}, {1, 2}}, 3)
	s := &Searcher{Host: h, Metric: Metric{1.5}, Range: 3}
	sc := SearchContext{SamplePatch(h, 1, 10, 10, 6, 6), Point{10, 10}}
	b0, e0, _ := s.BestCorrection(2, sc)
	for i := 0; i < 5; i++ {
		b, e, _ := s.BestCorrection(2, sc)
		if b != b0 || e != e0 {
			t.Errorf("run %d: best %v err %g; want %v err %g", i, b, e, b0, e0)
		}
	}
}

func TestBestCorrectionRangeZero(t *testing.T) {
	h := newShiftedHost(20, 20, []Point{{0, 0}, {3, 3}}, 5)
	s := &Searcher{Host: h, Metric: Metric{2}, Range: 0}
	best, _, err := s.BestCorrection(2, SearchContext{SamplePatch(h, 1, 5, 5, 4, 4), Point{5, 5}})
	if err != nil {
		t.Fatal(err)
	}
	if best != (Point{}) {
		t.Errorf("best=%v; want (0,0)", best)
	}
}

func TestBestCorrectionTieKeepsFirstTrial(t *testing.T) {
	h := newFlatHost(20, 20, 2, 1)
	s := &Searcher{Host: h, Metric: Metric{2}, Range: 2}
	best, minErr, err := s.BestCorrection(2, SearchContext{SamplePatch(h, 1, 6, 6, 4, 4), Point{6, 6}})
	if err != nil {
		t.Fatal(err)
	}
	// all trials tie, so the first one at offset (-2,-2) wins
	if best != (Point{2, 2}) || minErr != 0 {
		t.Errorf("best=%v err %g; want (2,2) err 0", best, minErr)
	}
}

func TestBestCorrectionSingleLowerTrial(t *testing.T) {
	h := newFlatHost(20, 20, 2, 1)
	ref := SamplePatch(h, 1, 6, 6, 4, 4)
	for i := range ref.Data {
		ref.Data[i] = 0
	}
	// make the candidate at offset (1,-2) match the reference everywhere
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			h.slices[1][(6-2+y)*20+6+1+x] = 0
		}
	}
	s := &Searcher{Host: h, Metric: Metric{2}, Range: 2}
	best, _, err := s.BestCorrection(2, SearchContext{ref, Point{6, 6}})
	if err != nil {
		t.Fatal(err)
	}
	if best != (Point{-1, 2}) {
		t.Errorf("best=%v; want (-1,2)", best)
	}
}

func TestBestCorrectionOutOfBounds(t *testing.T) {
	h := newFlatHost(20, 20, 2, 1)
	s := &Searcher{Host: h, Metric: Metric{2}, Range: 3}
	for _, anchor := range []Point{{2, 10}, {10, 2}, {14, 10}, {10, 14}} {
		_, _, err := s.BestCorrection(2, SearchContext{NewPatch(4, 4), anchor})
		if !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("anchor %v: err=%v; want %v", anchor, err, ErrOutOfBounds)
		}
	}
	if _, _, err := s.BestCorrection(2, SearchContext{NewPatch(4, 4), Point{3, 13}}); err != nil {
		t.Errorf("anchor (3,13): unexpected error %s", err)
	}
}
