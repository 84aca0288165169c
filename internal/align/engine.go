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

// The outcome of an alignment run
type Result struct {
	Corrections Corrections // final corrections, (0,0) at AdjustSlice
	Steps       Corrections // single optimizer steps, nil for landmark runs
	RefSlice    int         // origin of the search or interpolation
	AdjustSlice int         // slice with final correction (0,0)
	Summary     Summary     // drift statistics over the corrected range
	ExportErr   error       // non-fatal failure writing the transformation file
}

// Aligns the stack automatically. The host's active slice is the reference slice, and roi the
// region of interest on it. Options are repaired for the stack size; contradictions abort
// before any pixel is touched.
func RunRoi(ctx context.Context, h Host, roi Rect, opts Options, logWriter io.Writer) (*Result, error) {
	n := h.SliceCount()
	if n == 0 {
		return nil, ErrEmptyStack
	}
	opts.Repair(n, logWriter)
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if roi.Width <= 0 || roi.Height <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRoi, roi)
	}
	mode, _ := ParseMode(string(opts.Mode))
	refSlice := h.ActiveSlice()
	if !opts.InRange(refSlice) {
		return nil, fmt.Errorf("%w: selected slice %d, range [%d,%d]; set the region of interest on a slice to be corrected",
			ErrRefOutsideRange, refSlice, opts.FirstSlice, opts.LastSlice)
	}

	fmt.Fprintf(logWriter, "Computing corrections for slices %d to %d against slice %d, roi %v, range %d, power %g, mode %s\n",
		opts.FirstSlice, opts.LastSlice, refSlice, roi, opts.Range, opts.Power, mode)
	s := &Searcher{Host: h, Metric: Metric{Power: opts.Power}, Range: opts.Range}
	chain, err := BuildChain(ctx, s, roi, refSlice, opts.FirstSlice, opts.LastSlice, mode, logWriter)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Corrections: chain.Corrections,
		Steps:       chain.Steps,
		RefSlice:    refSlice,
		AdjustSlice: opts.AdjustSlice(refSlice),
	}
	Normalize(res.Corrections, opts.FirstSlice, opts.LastSlice, res.AdjustSlice, opts.CorrectHead, opts.CorrectTail)
	return res, finish(ctx, h, res, &opts, logWriter)
}

// Aligns the stack from user landmarks. current is the slice selected when the user confirmed,
// used for adjust-to current. The adjust slice doubles as the reference slice.
func RunLandmarks(ctx context.Context, h Host, lm *Landmarks, opts Options, current int, logWriter io.Writer) (*Result, error) {
	n := h.SliceCount()
	if n == 0 {
		return nil, ErrEmptyStack
	}
	if lm.Len() != n {
		return nil, fmt.Errorf("landmarks for %d slices, stack has %d", lm.Len(), n)
	}
	opts.Repair(n, logWriter)
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if lm.Empty() {
		return nil, ErrNoLandmarks
	}
	if current < 1 || current > n {
		current = h.ActiveSlice()
	}

	refSlice := opts.AdjustSlice(current)
	first, last := lm.Span()
	fmt.Fprintf(logWriter, "Slices %d to %d will be corrected, landmarks from slice %d to %d, reference slice %d\n",
		opts.FirstSlice, opts.LastSlice, first, last, refSlice)
	c, err := lm.Corrections(refSlice, opts.FirstSlice, opts.LastSlice)
	if err != nil {
		return nil, err
	}

	res := &Result{Corrections: c, RefSlice: refSlice, AdjustSlice: refSlice}
	Normalize(res.Corrections, opts.FirstSlice, opts.LastSlice, res.AdjustSlice, opts.CorrectHead, opts.CorrectTail)
	return res, finish(ctx, h, res, &opts, logWriter)
}

// Summarizes, exports and applies the normalized corrections. Export failures are reported
// in res.ExportErr and do not stop the translation.
func finish(ctx context.Context, h Host, res *Result, opts *Options, logWriter io.Writer) error {
	res.Summary = Summarize(res.Corrections, opts.FirstSlice, opts.LastSlice)
	fmt.Fprintf(logWriter, "Drift: %v\n", res.Summary)

	if opts.ExportFile != "" {
		width, height := h.Dimensions()
		fmt.Fprintf(logWriter, "Writing MultiStackReg transformation file %s\n", opts.ExportFile)
		if err := SaveTransformFile(opts.ExportFile, res.Corrections, res.RefSlice, width, height); err != nil {
			res.ExportErr = fmt.Errorf("saving MultiStackReg file failed: %w", err)
			fmt.Fprintf(logWriter, "Warning: %s\n", res.ExportErr.Error())
		}
	}

	if !opts.Apply {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return Apply(h, res.Corrections, MaskOf(opts.ApplyX, opts.ApplyY), logWriter)
}
