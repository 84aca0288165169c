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
	"io"
	"math"
	"strings"
)

// Reference mode of the correction chain
type Mode string

const (
	ModeSelected Mode = "selected" // compare every slice with the fixed reference slice
	ModePrevious Mode = "previous" // compare every slice with its predecessor along the pass
)

// Parses a reference mode, accepting a few synonyms
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "selected", "fixed", "ref", "":
		return ModeSelected, nil
	case "previous", "prev", "chained":
		return ModePrevious, nil
	}
	return "", fmt.Errorf("unknown comparison mode '%s'", s)
}

// Selects the slice whose correction is forced to (0,0) in the final corrections
type AdjustTo string

const (
	AdjustFirst   AdjustTo = "first"
	AdjustLast    AdjustTo = "last"
	AdjustCurrent AdjustTo = "current"
)

func ParseAdjustTo(s string) (AdjustTo, error) {
	switch strings.ToLower(s) {
	case "first", "":
		return AdjustFirst, nil
	case "last":
		return AdjustLast, nil
	case "current", "selected":
		return AdjustCurrent, nil
	}
	return "", fmt.Errorf("unknown adjust-to target '%s'", s)
}

// Alignment options shared by the automated and the landmark path
type Options struct {
	Range       int      `json:"range"       yaml:"range"`       // search radius in pixels
	Power       float64  `json:"power"       yaml:"power"`       // error exponent
	Mode        Mode     `json:"mode"        yaml:"mode"`        // selected or previous
	FirstSlice  int      `json:"firstSlice"  yaml:"firstSlice"`  // first corrected slice, 1-based
	LastSlice   int      `json:"lastSlice"   yaml:"lastSlice"`   // last corrected slice, 0=stack size
	AdjustTo    AdjustTo `json:"adjustTo"    yaml:"adjustTo"`    // first, last or current
	CorrectHead bool     `json:"correctHead" yaml:"correctHead"` // slices before the range move like the first one
	CorrectTail bool     `json:"correctTail" yaml:"correctTail"` // slices after the range move like the last one
	ExportFile  string   `json:"exportFile"  yaml:"exportFile"`  // transformation file to write, blank=none
	Apply       bool     `json:"apply"       yaml:"apply"`       // translate the slices
	ApplyX      bool     `json:"applyX"      yaml:"applyX"`      // apply horizontal component
	ApplyY      bool     `json:"applyY"      yaml:"applyY"`      // apply vertical component
}

func DefaultOptions() Options {
	return Options{
		Range:      5,
		Power:      2.0,
		Mode:       ModeSelected,
		FirstSlice: 1,
		LastSlice:  0,
		AdjustTo:   AdjustFirst,
		Apply:      true,
		ApplyX:     true,
		ApplyY:     true,
	}
}

// Repairs an invalid slice range for a stack of n slices, writing a hint for every change
func (o *Options) Repair(n int, logWriter io.Writer) {
	if o.LastSlice == 0 {
		o.LastSlice = n
	}
	if o.FirstSlice > o.LastSlice {
		fmt.Fprintf(logWriter, "Hint: Range of slices is invalid. Range will be turned the other way round.\n")
		o.FirstSlice, o.LastSlice = o.LastSlice, o.FirstSlice
	}
	if o.FirstSlice < 1 {
		fmt.Fprintf(logWriter, "Hint: Range of slices is invalid. Beginning of range is corrected to first slice.\n")
		o.FirstSlice = 1
	}
	if o.LastSlice > n {
		fmt.Fprintf(logWriter, "Hint: Range of slices is invalid. End of range is corrected to last possible slice.\n")
		o.LastSlice = n
	}
	if o.LastSlice < 1 {
		fmt.Fprintf(logWriter, "Hint: Range of slices is invalid. End of range is corrected to first slice.\n")
		o.LastSlice = 1
	}
	if o.FirstSlice > o.LastSlice {
		fmt.Fprintf(logWriter, "Hint: Range of slices is invalid. Range is reduced to the last slice.\n")
		o.FirstSlice = o.LastSlice
	}
}

// Checks the options for contradictions which make a run pointless. Call after Repair.
func (o *Options) Validate() error {
	if o.ExportFile == "" && !(o.Apply && (o.ApplyX || o.ApplyY)) {
		return ErrNoOutput
	}
	if o.Range < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidRange, o.Range)
	}
	if !(o.Power > 0) || math.IsInf(o.Power, 0) {
		return fmt.Errorf("%w: %g", ErrInvalidPower, o.Power)
	}
	if _, err := ParseMode(string(o.Mode)); err != nil {
		return err
	}
	if _, err := ParseAdjustTo(string(o.AdjustTo)); err != nil {
		return err
	}
	return nil
}

// Returns the adjust-to slice, given the slice selected when the run finishes
func (o *Options) AdjustSlice(current int) int {
	switch o.AdjustTo {
	case AdjustLast:
		return o.LastSlice
	case AdjustCurrent:
		return current
	}
	return o.FirstSlice
}

// Returns true if the given slice lies in the corrected range
func (o *Options) InRange(slice int) bool {
	return slice >= o.FirstSlice && slice <= o.LastSlice
}
