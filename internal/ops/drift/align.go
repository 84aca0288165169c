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

// Package drift wraps the alignment engine into pipeline operators
package drift

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mlnoga/prealign/internal/align"
	"github.com/mlnoga/prealign/internal/fits"
	"github.com/mlnoga/prealign/internal/ops"
	"github.com/mlnoga/prealign/internal/stack"
)

// Aligns all inputs as one stack by exhaustive search on a region of interest.
// Takes n inputs, produces the n translated inputs
type OpAlignRoi struct {
	ops.OpStackBase
	Options  align.Options `json:"options"`
	Roi      align.Rect    `json:"roi"`      // zero width or height selects the whole image
	RefSlice int           `json:"refSlice"` // slice the roi was drawn on, 1-based
	Fill     float32       `json:"fill"`     // value for pixels vacated by translation
	Result   *align.Result `json:"-"`        // outcome of the last run
}

func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpAlignRoiDefault() }) } // register the operator for JSON decoding

func NewOpAlignRoiDefault() *OpAlignRoi { return NewOpAlignRoi(align.DefaultOptions(), align.Rect{}, 1) }

func NewOpAlignRoi(opts align.Options, roi align.Rect, refSlice int) *OpAlignRoi {
	op := &OpAlignRoi{
		OpStackBase: ops.OpStackBase{OpBase: ops.OpBase{Type: "alignRoi", Active: true}},
		Options:     opts,
		Roi:         roi,
		RefSlice:    refSlice,
	}
	op.OpStackBase.Apply = op.Apply // assign class method to superclass abstract method
	return op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpAlignRoi) UnmarshalJSON(data []byte) error {
	type defaults OpAlignRoi
	def := defaults(*NewOpAlignRoiDefault())
	err := json.Unmarshal(data, &def)
	if err != nil {
		return err
	}
	*op = OpAlignRoi(def)
	op.OpStackBase.Apply = op.Apply // make method receiver point to op, not def
	return nil
}

func (op *OpAlignRoi) Apply(fs []*fits.Image, c *ops.Context) ([]*fits.Image, error) {
	s, err := stack.NewStack(fs)
	if err != nil {
		return nil, err
	}
	s.Fill = op.Fill
	roi := op.Roi
	if roi.Width == 0 || roi.Height == 0 {
		w, h := s.Dimensions()
		roi = align.Rect{Width: w, Height: h}
	}
	if err := s.CheckRoi(roi); err != nil {
		return nil, err
	}
	s.SetRoi(roi)
	if op.RefSlice < 1 || op.RefSlice > s.SliceCount() {
		return nil, fmt.Errorf("reference slice %d outside stack of %d slices", op.RefSlice, s.SliceCount())
	}
	s.SetActiveSlice(op.RefSlice)

	op.Result, err = align.RunRoi(contextOf(c), s, roi, op.Options, c.Log)
	if err != nil {
		return nil, err
	}
	return s.Slices(), nil
}

// Aligns all inputs as one stack from user-supplied landmarks.
// Takes n inputs, produces the n translated inputs
type OpAlignLandmarks struct {
	ops.OpStackBase
	Options   align.Options    `json:"options"`
	Landmarks []align.Landmark `json:"landmarks"`
	Current   int              `json:"current"` // slice selected on confirmation, for adjustTo current
	Fill      float32          `json:"fill"`
	Result    *align.Result    `json:"-"`
}

func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpAlignLandmarksDefault() }) } // register the operator for JSON decoding

func NewOpAlignLandmarksDefault() *OpAlignLandmarks {
	return NewOpAlignLandmarks(align.DefaultOptions(), nil, 1)
}

func NewOpAlignLandmarks(opts align.Options, landmarks []align.Landmark, current int) *OpAlignLandmarks {
	op := &OpAlignLandmarks{
		OpStackBase: ops.OpStackBase{OpBase: ops.OpBase{Type: "alignLandmarks", Active: true}},
		Options:     opts,
		Landmarks:   landmarks,
		Current:     current,
	}
	op.OpStackBase.Apply = op.Apply
	return op
}

func (op *OpAlignLandmarks) UnmarshalJSON(data []byte) error {
	type defaults OpAlignLandmarks
	def := defaults(*NewOpAlignLandmarksDefault())
	err := json.Unmarshal(data, &def)
	if err != nil {
		return err
	}
	*op = OpAlignLandmarks(def)
	op.OpStackBase.Apply = op.Apply
	return nil
}

func (op *OpAlignLandmarks) Apply(fs []*fits.Image, c *ops.Context) ([]*fits.Image, error) {
	s, err := stack.NewStack(fs)
	if err != nil {
		return nil, err
	}
	s.Fill = op.Fill
	lm, err := align.NewLandmarksFromList(s.SliceCount(), op.Landmarks)
	if err != nil {
		return nil, err
	}
	op.Result, err = align.RunLandmarks(contextOf(c), s, lm, op.Options, op.Current, c.Log)
	if err != nil {
		return nil, err
	}
	return s.Slices(), nil
}

func contextOf(c *ops.Context) context.Context {
	if c.Ctx == nil {
		return context.Background()
	}
	return c.Ctx
}
