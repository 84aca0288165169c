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

// Exhaustive local search for the integer translation of a region of interest
// which best matches a reference patch
type Searcher struct {
	Host   Host
	Metric Metric
	Range  int // search radius in pixels, scans (2*Range+1)^2 offsets
}

// Search state threaded through consecutive optimizer calls of one pass
type SearchContext struct {
	Ref    *Patch // reference patch, same size as the region of interest
	Anchor Point  // current top left corner of the region of interest
}

// Checks whether the search window around the given anchor lies within the image
func (s *Searcher) windowInBounds(anchor Point, ref *Patch) bool {
	width, height := s.Host.Dimensions()
	return anchor.X-s.Range >= 0 && anchor.Y-s.Range >= 0 &&
		anchor.X+ref.Width+s.Range <= width && anchor.Y+ref.Height+s.Range <= height
}

// Evaluates the error metric for all offsets in [-Range,Range]^2 around sc.Anchor on the given slice,
// and returns the negated offset of the first strictly minimal trial, together with its error.
// Scan order is ascending x offset, then ascending y offset.
func (s *Searcher) BestCorrection(slice int, sc SearchContext) (best Point, minErr float64, err error) {
	if !s.windowInBounds(sc.Anchor, sc.Ref) {
		return Point{}, 0, fmt.Errorf("%d: window %dx%d at %v with range %d: %w",
			slice, sc.Ref.Width, sc.Ref.Height, sc.Anchor, s.Range, ErrOutOfBounds)
	}

	// sample the whole search window once, then compare subwindows
	side := 2 * s.Range
	window := SamplePatch(s.Host, slice, sc.Anchor.X-s.Range, sc.Anchor.Y-s.Range,
		sc.Ref.Width+side, sc.Ref.Height+side)

	first := true
	for xtrans := -s.Range; xtrans <= s.Range; xtrans++ {
		for ytrans := -s.Range; ytrans <= s.Range; ytrans++ {
			e := s.Metric.DistanceAt(window, xtrans+s.Range, ytrans+s.Range, sc.Ref)
			if first || e < minErr {
				minErr, best, first = e, Point{-xtrans, -ytrans}, false
			}
		}
	}
	return best, minErr, nil
}
