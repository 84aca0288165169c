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
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func linearShifts(n int) []Point {
	shifts := make([]Point, n)
	for k := range shifts {
		shifts[k] = Point{k, 0}
	}
	return shifts
}

func TestRunRoiRoundTrip(t *testing.T) {
	h := newShiftedHost(40, 30, linearShifts(5), 21)
	opts := DefaultOptions()
	opts.Range = 4
	exportFile := filepath.Join(t.TempDir(), "transform.txt")
	opts.ExportFile = exportFile

	res, err := RunRoi(context.Background(), h, Rect{15, 10, 8, 8}, opts, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	for k := 1; k <= 5; k++ {
		if want := (Point{k - 1, 0}); res.Corrections.At(k) != want {
			t.Errorf("correction(%d)=%v; want %v", k, res.Corrections.At(k), want)
		}
	}
	if res.RefSlice != 1 || res.AdjustSlice != 1 || res.ExportErr != nil {
		t.Errorf("ref %d adjust %d export %v; want 1, 1, nil", res.RefSlice, res.AdjustSlice, res.ExportErr)
	}
	if len(h.moves) != 5 {
		t.Fatalf("moves=%v; want 5", h.moves)
	}
	for k := 2; k <= 5; k++ {
		for y := 0; y < 30; y++ {
			for x := 4; x < 40; x++ {
				if h.PixelValue(k, x, y) != h.PixelValue(1, x, y) {
					t.Fatalf("slice %d pixel (%d,%d) differs from slice 1 after alignment", k, x, y)
				}
			}
		}
	}
	data, err := os.ReadFile(exportFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "MultiStackReg Transformation File\n") ||
		strings.Count(string(data), "TRANSLATION\n") != 4 {
		t.Errorf("unexpected transformation file %q", string(data))
	}
}

func TestRunRoiAdjustLast(t *testing.T) {
	h := newShiftedHost(40, 30, linearShifts(5), 22)
	h.active = 3
	opts := DefaultOptions()
	opts.Range, opts.AdjustTo, opts.Apply, opts.ExportFile = 3, AdjustLast, false, filepath.Join(t.TempDir(), "t.txt")
	res, err := RunRoi(context.Background(), h, Rect{15, 10, 8, 8}, opts, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	for k := 1; k <= 5; k++ {
		if want := (Point{k - 5, 0}); res.Corrections.At(k) != want {
			t.Errorf("correction(%d)=%v; want %v", k, res.Corrections.At(k), want)
		}
	}
	if res.RefSlice != 3 || res.AdjustSlice != 5 {
		t.Errorf("ref %d adjust %d; want 3 and 5", res.RefSlice, res.AdjustSlice)
	}
	if len(h.moves) != 0 {
		t.Errorf("moves=%v; want none without apply", h.moves)
	}
}

func TestRunRoiRefOutsideRange(t *testing.T) {
	h := newShiftedHost(40, 30, linearShifts(6), 23)
	h.active = 5
	opts := DefaultOptions()
	opts.FirstSlice, opts.LastSlice = 1, 3
	opts.ExportFile = filepath.Join(t.TempDir(), "t.txt")
	_, err := RunRoi(context.Background(), h, Rect{15, 10, 8, 8}, opts, io.Discard)
	if !errors.Is(err, ErrRefOutsideRange) {
		t.Errorf("err=%v; want %v", err, ErrRefOutsideRange)
	}
	if len(h.moves) != 0 {
		t.Errorf("moves=%v; want none", h.moves)
	}
	if _, statErr := os.Stat(opts.ExportFile); statErr == nil {
		t.Errorf("transformation file written despite error")
	}
}

func TestRunRoiInvalidRoi(t *testing.T) {
	h := newShiftedHost(20, 20, linearShifts(2), 26)
	for _, r := range []Rect{{5, 5, 0, 4}, {5, 5, 4, -1}} {
		if _, err := RunRoi(context.Background(), h, r, DefaultOptions(), io.Discard); !errors.Is(err, ErrInvalidRoi) {
			t.Errorf("roi %v: err=%v; want %v", r, err, ErrInvalidRoi)
		}
	}
	if len(h.moves) != 0 {
		t.Errorf("moves=%v; want none", h.moves)
	}
}

func TestRunRoiOutsideImage(t *testing.T) {
	h := newShiftedHost(20, 20, linearShifts(2), 27)
	h.SetActiveSlice(2)
	if _, err := RunRoi(context.Background(), h, Rect{5, 15, 8, 8}, DefaultOptions(), io.Discard); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("err=%v; want %v", err, ErrOutOfBounds)
	}
	if len(h.moves) != 0 {
		t.Errorf("moves=%v; want none", h.moves)
	}
}

func TestRunRoiNoOutput(t *testing.T) {
	h := newShiftedHost(20, 20, linearShifts(2), 24)
	opts := DefaultOptions()
	opts.Apply = false
	if _, err := RunRoi(context.Background(), h, Rect{5, 5, 4, 4}, opts, io.Discard); !errors.Is(err, ErrNoOutput) {
		t.Errorf("err=%v; want %v", err, ErrNoOutput)
	}
}

func TestRunRoiExportFailureIsNonFatal(t *testing.T) {
	h := newShiftedHost(40, 30, linearShifts(3), 25)
	opts := DefaultOptions()
	opts.ExportFile = filepath.Join(t.TempDir(), "missing", "t.txt")
	var log bytes.Buffer
	res, err := RunRoi(context.Background(), h, Rect{15, 10, 8, 8}, opts, &log)
	if err != nil {
		t.Fatal(err)
	}
	if res.ExportErr == nil {
		t.Errorf("export error not reported")
	}
	if !strings.Contains(log.String(), "Warning: ") {
		t.Errorf("log %q lacks warning", log.String())
	}
	if len(h.moves) != 3 {
		t.Errorf("moves=%v; want 3", h.moves)
	}
}

func TestRunLandmarks(t *testing.T) {
	for _, tc := range []struct {
		adjust  AdjustTo
		current int
		want    func(k int) Point
	}{
		{AdjustFirst, 3, func(k int) Point { return Point{1 - k, 2 * (k - 1)} }},
		{AdjustLast, 3, func(k int) Point { return Point{5 - k, 2 * (k - 5)} }},
		{AdjustCurrent, 2, func(k int) Point { return Point{2 - k, 2 * (k - 2)} }},
	} {
		h := newFlatHost(30, 30, 5, 1)
		lm := NewLandmarks(5)
		lm.Set(1, Point{10, 20})
		lm.Set(5, Point{14, 12})
		opts := DefaultOptions()
		opts.AdjustTo = tc.adjust
		res, err := RunLandmarks(context.Background(), h, lm, opts, tc.current, io.Discard)
		if err != nil {
			t.Fatalf("adjust %s: %s", tc.adjust, err)
		}
		for k := 1; k <= 5; k++ {
			if want := tc.want(k); res.Corrections.At(k) != want {
				t.Errorf("adjust %s: correction(%d)=%v; want %v", tc.adjust, k, res.Corrections.At(k), want)
			}
		}
		if len(h.moves) != 5 {
			t.Errorf("adjust %s: moves=%v; want 5", tc.adjust, h.moves)
		}
	}
}

func TestRunLandmarksErrors(t *testing.T) {
	h := newFlatHost(10, 10, 3, 1)
	if _, err := RunLandmarks(context.Background(), h, NewLandmarks(3), DefaultOptions(), 1, io.Discard); !errors.Is(err, ErrNoLandmarks) {
		t.Errorf("err=%v; want %v", err, ErrNoLandmarks)
	}
	if _, err := RunLandmarks(context.Background(), h, NewLandmarks(4), DefaultOptions(), 1, io.Discard); err == nil {
		t.Errorf("landmarks for wrong stack size accepted")
	}
	if _, err := RunRoi(context.Background(), &memHost{}, Rect{0, 0, 1, 1}, DefaultOptions(), io.Discard); !errors.Is(err, ErrEmptyStack) {
		t.Errorf("err=%v; want %v", err, ErrEmptyStack)
	}
}
