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
	"context"
	"fmt"
	"io"
)

// Outcome of the automated correction search
type ChainResult struct {
	Corrections Corrections // absolute corrections, (0,0) at the reference slice
	Steps       Corrections // single step results of the optimizer, (0,0) at the reference slice
	Errors      []float64   // minimal error found per slice, 0 at the reference slice
}

// Builds absolute corrections for all slices in [first,last] by searching the region of interest
// outward from refSlice, once downward and once upward. Slices outside the range keep (0,0).
func BuildChain(ctx context.Context, s *Searcher, roi Rect, refSlice, first, last int, mode Mode,
	logWriter io.Writer) (res *ChainResult, err error) {
	if roi.Width <= 0 || roi.Height <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRoi, roi)
	}
	n := s.Host.SliceCount()
	if refSlice < first || refSlice > last || first < 1 || last > n {
		return nil, fmt.Errorf("%w: slice %d, range [%d,%d]", ErrRefOutsideRange, refSlice, first, last)
	}

	if err = checkBounds(s, roi, refSlice != first || refSlice != last); err != nil {
		return nil, err
	}

	res = &ChainResult{
		Corrections: NewCorrections(n),
		Steps:       NewCorrections(n),
		Errors:      make([]float64, n),
	}
	if err = chainPass(ctx, s, roi, refSlice, first, -1, mode, res, logWriter); err != nil {
		return nil, err
	}
	if err = chainPass(ctx, s, roi, refSlice, last, +1, mode, res, logWriter); err != nil {
		return nil, err
	}
	return res, nil
}

// Checks that the region of interest lies within the image and, if any slice will be searched,
// that it keeps a margin of s.Range on every side
func checkBounds(s *Searcher, roi Rect, searching bool) error {
	margin := 0
	if searching {
		margin = s.Range
	}
	width, height := s.Host.Dimensions()
	if roi.X-margin < 0 || roi.Y-margin < 0 || roi.X+roi.Width+margin > width || roi.Y+roi.Height+margin > height {
		return fmt.Errorf("roi %v with range %d on %dx%d image: %w", roi, margin, width, height, ErrOutOfBounds)
	}
	return nil
}

// Runs one directional pass from refSlice to end, inclusive, with step dir of +1 or -1.
// The pass owns its anchor and reference patch.
func chainPass(ctx context.Context, s *Searcher, roi Rect, refSlice, end, dir int, mode Mode,
	res *ChainResult, logWriter io.Writer) error {
	if refSlice == end {
		return nil
	}
	sc := SearchContext{
		Ref:    SamplePatch(s.Host, refSlice, roi.X, roi.Y, roi.Width, roi.Height),
		Anchor: roi.Origin(),
	}
	for slice := refSlice + dir; slice*dir <= end*dir; slice += dir {
		if err := ctx.Err(); err != nil {
			return err
		}
		step, minErr, err := s.BestCorrection(slice, sc)
		if err != nil {
			return err
		}
		sc.Anchor = sc.Anchor.Sub(step)
		res.Steps.Set(slice, step)
		res.Errors[slice-1] = minErr
		res.Corrections.Set(slice, res.Corrections.At(slice-dir).Add(step))

		if mode == ModePrevious {
			sc.Ref = SamplePatch(s.Host, slice, sc.Anchor.X, sc.Anchor.Y, roi.Width, roi.Height)
		}
		fmt.Fprintf(logWriter, "%d: step %v correction %v error %.6g\n",
			slice, step, res.Corrections.At(slice), minErr)
	}
	return nil
}
