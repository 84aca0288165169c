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
	"os"
	"path/filepath"
	"testing"
)

func TestTransforms(t *testing.T) {
	c := Corrections{{2, 1}, {1, 0}, {0, 0}}
	entries := Transforms(c, 3, Center(10, 8))
	want := []TransformEntry{
		{Source: 2, Target: 3, Point: Point{4, 4}},
		{Source: 1, Target: 3, Point: Point{4, 3}},
	}
	if len(entries) != len(want) {
		t.Fatalf("got %d entries; want %d", len(entries), len(want))
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Errorf("entry %d=%+v; want %+v", i, entries[i], want[i])
		}
	}
}

func TestTransformsOrderAroundMiddle(t *testing.T) {
	c := Corrections{{-1, 0}, {0, 0}, {1, 0}, {3, 0}}
	entries := Transforms(c, 2, Point{0, 0})
	wantSources := []int{1, 3, 4}
	wantPoints := []Point{{1, 0}, {-1, 0}, {-2, 0}}
	if len(entries) != 3 {
		t.Fatalf("got %d entries; want 3", len(entries))
	}
	for i, e := range entries {
		if e.Source != wantSources[i] || e.Target != 2 || e.Point != wantPoints[i] {
			t.Errorf("entry %d=%+v; want source %d target 2 point %v", i, e, wantSources[i], wantPoints[i])
		}
	}
}

const wantTransformFile = "MultiStackReg Transformation File\n" +
	"File Version 1.0\n" +
	"0\n" +
	"TRANSLATION\n" +
	"Source img: 2 Target img: 3\n" +
	"4\t4\n" +
	"0.0\t0.0\n0.0\t0.0\n\n" +
	"5\t4\n" +
	"0.0\t0.0\n0.0\t0.0\n\n" +
	"TRANSLATION\n" +
	"Source img: 1 Target img: 3\n" +
	"4\t3\n" +
	"0.0\t0.0\n0.0\t0.0\n\n" +
	"5\t4\n" +
	"0.0\t0.0\n0.0\t0.0\n\n"

func TestWriteTransformFile(t *testing.T) {
	c := Corrections{{2, 1}, {1, 0}, {0, 0}}
	center := Center(10, 8)
	var buf bytes.Buffer
	if err := WriteTransformFile(&buf, Transforms(c, 3, center), center); err != nil {
		t.Fatal(err)
	}
	if buf.String() != wantTransformFile {
		t.Errorf("file content\n%q\nwant\n%q", buf.String(), wantTransformFile)
	}
}

func TestSaveTransformFile(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "transform.txt")
	if err := SaveTransformFile(fileName, Corrections{{2, 1}, {1, 0}, {0, 0}}, 3, 10, 8); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(fileName)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != wantTransformFile {
		t.Errorf("file content\n%q\nwant\n%q", string(data), wantTransformFile)
	}

	if err := SaveTransformFile(filepath.Join(t.TempDir(), "missing", "x.txt"), Corrections{{0, 0}}, 1, 4, 4); err == nil {
		t.Errorf("saving into a missing directory succeeded")
	}
}
