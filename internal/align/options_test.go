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
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestRepair(t *testing.T) {
	for _, tc := range []struct {
		first, last, n int
		wantFirst      int
		wantLast       int
		hint           string
	}{
		{1, 0, 7, 1, 7, ""},
		{2, 5, 7, 2, 5, ""},
		{5, 2, 10, 2, 5, "turned the other way round"},
		{0, 0, 4, 1, 4, "Beginning of range is corrected to first slice"},
		{3, 12, 8, 3, 8, "End of range is corrected to last possible slice"},
		{12, 15, 8, 8, 8, "Range is reduced to the last slice"},
		{-3, -1, 5, 1, 1, "End of range is corrected to first slice"},
	} {
		var log bytes.Buffer
		o := DefaultOptions()
		o.FirstSlice, o.LastSlice = tc.first, tc.last
		o.Repair(tc.n, &log)
		if o.FirstSlice != tc.wantFirst || o.LastSlice != tc.wantLast {
			t.Errorf("[%d,%d] of %d: repaired to [%d,%d]; want [%d,%d]", tc.first, tc.last, tc.n,
				o.FirstSlice, o.LastSlice, tc.wantFirst, tc.wantLast)
		}
		if tc.hint == "" && log.Len() != 0 {
			t.Errorf("[%d,%d] of %d: unexpected hint %q", tc.first, tc.last, tc.n, log.String())
		}
		if tc.hint != "" && !strings.Contains(log.String(), "Hint: Range of slices is invalid. ") {
			t.Errorf("[%d,%d] of %d: log %q lacks hint prefix", tc.first, tc.last, tc.n, log.String())
		}
		if !strings.Contains(log.String(), tc.hint) {
			t.Errorf("[%d,%d] of %d: log %q lacks %q", tc.first, tc.last, tc.n, log.String(), tc.hint)
		}
	}
}

func TestValidate(t *testing.T) {
	ok := DefaultOptions()
	if err := ok.Validate(); err != nil {
		t.Errorf("default options invalid: %s", err)
	}
	exportOnly := DefaultOptions()
	exportOnly.Apply, exportOnly.ExportFile = false, "out.txt"
	if err := exportOnly.Validate(); err != nil {
		t.Errorf("export-only options invalid: %s", err)
	}

	for name, tc := range map[string]struct {
		mod  func(o *Options)
		want error
	}{
		"no apply":   {func(o *Options) { o.Apply = false }, ErrNoOutput},
		"no axes":    {func(o *Options) { o.ApplyX, o.ApplyY = false, false }, ErrNoOutput},
		"range":      {func(o *Options) { o.Range = -1 }, ErrInvalidRange},
		"power zero": {func(o *Options) { o.Power = 0 }, ErrInvalidPower},
		"power neg":  {func(o *Options) { o.Power = -2 }, ErrInvalidPower},
	} {
		o := DefaultOptions()
		tc.mod(&o)
		if err := o.Validate(); !errors.Is(err, tc.want) {
			t.Errorf("%s: err=%v; want %v", name, err, tc.want)
		}
	}

	bad := DefaultOptions()
	bad.Mode = "sideways"
	if err := bad.Validate(); err == nil {
		t.Errorf("unknown mode accepted")
	}
}

func TestParseModeAndAdjust(t *testing.T) {
	for in, want := range map[string]Mode{"": ModeSelected, "Selected": ModeSelected, "previous": ModePrevious, "prev": ModePrevious} {
		if m, err := ParseMode(in); err != nil || m != want {
			t.Errorf("ParseMode(%q)=%v,%v; want %v", in, m, err, want)
		}
	}
	for in, want := range map[string]AdjustTo{"": AdjustFirst, "last": AdjustLast, "CURRENT": AdjustCurrent} {
		if a, err := ParseAdjustTo(in); err != nil || a != want {
			t.Errorf("ParseAdjustTo(%q)=%v,%v; want %v", in, a, err, want)
		}
	}
	if _, err := ParseAdjustTo("middle"); err == nil {
		t.Errorf("unknown adjust-to accepted")
	}
}

func TestAdjustSlice(t *testing.T) {
	o := DefaultOptions()
	o.FirstSlice, o.LastSlice = 3, 8
	for adj, want := range map[AdjustTo]int{AdjustFirst: 3, AdjustLast: 8, AdjustCurrent: 5} {
		o.AdjustTo = adj
		if got := o.AdjustSlice(5); got != want {
			t.Errorf("adjust %s: %d; want %d", adj, got, want)
		}
	}
}
