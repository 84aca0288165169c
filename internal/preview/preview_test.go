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

package preview

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/mlnoga/prealign/internal/align"
	"github.com/mlnoga/prealign/internal/fits"
)

func grayImage() *fits.Image {
	f := fits.NewImageFromNaxisn([]int32{40, 30}, nil)
	for i := range f.Data {
		f.Data[i] = float32(i % 40)
	}
	return f
}

func TestRender(t *testing.T) {
	o := Overlay{
		Roi:         align.Rect{X: 10, Y: 10, Width: 8, Height: 6},
		Corrections: align.Corrections{{X: 0, Y: 0}, {X: -2, Y: 1}},
		Landmarks:   []align.Landmark{{Slice: 1, X: 5, Y: 5}},
		Title:       "test",
	}
	img := Render(grayImage(), o)
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 30 {
		t.Fatalf("bounds %v; want 40x30", b)
	}
	// the bottom edge of the roi outline is yellow and below the title, the plain image gray
	r, g, b, _ := img.At(14, 16).RGBA()
	if !(r > g/2 && g > 0x8000 && b < 0x4000) {
		t.Errorf("roi outline color %x %x %x; want yellow", r, g, b)
	}
	r, g, b, _ = img.At(30, 25).RGBA()
	if r != g || g != b {
		t.Errorf("background color %x %x %x; want gray", r, g, b)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, img, "x.png"); err != nil {
		t.Fatal(err)
	}
	if _, err := png.Decode(&buf); err != nil {
		t.Errorf("png: %s", err)
	}
	if err := Encode(&buf, img, "x.bmp"); err == nil {
		t.Errorf("unknown format accepted")
	}
}

func TestSaveFile(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "overlay.jpg")
	if err := SaveFile(fileName, grayImage(), Overlay{}); err != nil {
		t.Fatal(err)
	}
	if st, err := os.Stat(fileName); err != nil || st.Size() == 0 {
		t.Errorf("preview not written")
	}
}

func TestSliceColor(t *testing.T) {
	first, last := sliceColor(1, 5), sliceColor(5, 5)
	if first.R < 0.9 || first.G > 0.2 {
		t.Errorf("first slice color %v; want red", first)
	}
	if last.B < 0.9 {
		t.Errorf("last slice color %v; want violet", last)
	}
	if c := sliceColor(1, 1); c != first {
		t.Errorf("single slice color %v; want %v", c, first)
	}
}

func TestFromResult(t *testing.T) {
	res := &align.Result{
		Corrections: align.Corrections{{X: 1, Y: 0}, {X: 0, Y: 0}, {X: -2, Y: 3}},
		RefSlice:    2,
	}
	o := FromResult(res, align.Rect{X: 10, Y: 10, Width: 5, Height: 5})
	if o.Roi != (align.Rect{X: 10, Y: 10, Width: 5, Height: 5}) {
		t.Errorf("roi %v", o.Roi)
	}
	if o.Corrections.At(1) != (align.Point{X: 1, Y: 0}) || o.Corrections.At(3) != (align.Point{X: -2, Y: 3}) {
		t.Errorf("corrections %v", o.Corrections)
	}

	res.RefSlice = 1
	o = FromResult(res, align.Rect{X: 10, Y: 10, Width: 5, Height: 5})
	if o.Roi.X != 11 || o.Roi.Y != 10 || o.Corrections.At(1) != (align.Point{}) || o.Corrections.At(2) != (align.Point{X: -1, Y: 0}) {
		t.Errorf("overlay %+v", o)
	}
}
