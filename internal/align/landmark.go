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

import "fmt"

// Sparse user-supplied landmark positions, at most one per slice
type Landmarks struct {
	points []Point
	has    []bool
	first  int // first clicked slice, n+1 if none
	last   int // last clicked slice, 0 if none
}

// A landmark on a given slice, for serialization
type Landmark struct {
	Slice int `json:"slice" yaml:"slice"`
	X     int `json:"x"     yaml:"x"`
	Y     int `json:"y"     yaml:"y"`
}

func NewLandmarks(stackSize int) *Landmarks {
	return &Landmarks{
		points: make([]Point, stackSize),
		has:    make([]bool, stackSize),
		first:  stackSize + 1,
		last:   0,
	}
}

// Creates landmarks for a stack of the given size from a list. Later entries for the same slice win.
func NewLandmarksFromList(stackSize int, list []Landmark) (*Landmarks, error) {
	l := NewLandmarks(stackSize)
	for _, lm := range list {
		if err := l.Set(lm.Slice, Point{lm.X, lm.Y}); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Records the landmark for the given 1-based slice, replacing any earlier one
func (l *Landmarks) Set(slice int, p Point) error {
	if slice < 1 || slice > len(l.points) {
		return fmt.Errorf("landmark slice %d outside stack of %d slices", slice, len(l.points))
	}
	l.points[slice-1], l.has[slice-1] = p, true
	if slice < l.first {
		l.first = slice
	}
	if slice > l.last {
		l.last = slice
	}
	return nil
}

// Returns the landmark of the given slice, if any
func (l *Landmarks) Get(slice int) (p Point, ok bool) {
	return l.points[slice-1], l.has[slice-1]
}

// Returns the first and last clicked slice. first>last if nothing was clicked.
func (l *Landmarks) Span() (first, last int) { return l.first, l.last }

func (l *Landmarks) Empty() bool { return l.first > l.last }

func (l *Landmarks) Len() int { return len(l.points) }

// Returns the recorded landmarks in slice order
func (l *Landmarks) List() []Landmark {
	list := []Landmark{}
	for i, p := range l.points {
		if l.has[i] {
			list = append(list, Landmark{i + 1, p.X, p.Y})
		}
	}
	return list
}

// Returns a dense copy of the landmark points, with gaps inside the clicked span linearly
// interpolated, the reference slice and the range edges extended from the nearest clicked slice.
// The second return value flags which slices hold a point.
func (l *Landmarks) Densify(refSlice, first, last int) (points []Point, has []bool, err error) {
	if l.Empty() {
		return nil, nil, ErrNoLandmarks
	}
	points = append([]Point(nil), l.points...)
	has = append([]bool(nil), l.has...)

	for i := l.first; i <= l.last; i++ {
		if has[i-1] {
			continue
		}
		left, right := i-1, i+1
		for !l.has[left-1] {
			left--
		}
		for !l.has[right-1] {
			right++
		}
		lp, rp := l.points[left-1], l.points[right-1]
		points[i-1] = Point{
			X: lp.X + (i-left)*(rp.X-lp.X)/(right-left),
			Y: lp.Y + (i-left)*(rp.Y-lp.Y)/(right-left),
		}
		has[i-1] = true
	}

	if refSlice < l.first {
		points[refSlice-1], has[refSlice-1] = points[l.first-1], true
	}
	if refSlice > l.last {
		points[refSlice-1], has[refSlice-1] = points[l.last-1], true
	}

	for i := first; i < l.first; i++ {
		points[i-1], has[i-1] = points[l.first-1], true
	}
	for i := last; i > l.last; i-- {
		points[i-1], has[i-1] = points[l.last-1], true
	}
	return points, has, nil
}

// Derives corrections for all slices from the landmarks, relative to refSlice.
// Slices without a point after densification receive the reference correction (0,0).
func (l *Landmarks) Corrections(refSlice, first, last int) (Corrections, error) {
	if refSlice < 1 || refSlice > len(l.points) {
		return nil, fmt.Errorf("reference slice %d outside stack of %d slices", refSlice, len(l.points))
	}
	points, has, err := l.Densify(refSlice, first, last)
	if err != nil {
		return nil, err
	}
	refPoint := points[refSlice-1]
	c := NewCorrections(len(points))
	for i, p := range points {
		if has[i] {
			c[i] = refPoint.Sub(p)
		}
	}
	return c, nil
}
