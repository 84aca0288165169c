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

// Package preview draws alignment overlays on top of a slice, for visual inspection
package preview

import (
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mlnoga/prealign/internal/align"
	"github.com/mlnoga/prealign/internal/fits"
	"github.com/mlnoga/prealign/internal/stats"
)

// What to draw on top of a slice
type Overlay struct {
	Roi         align.Rect        // region of interest on the reference slice, zero for none
	Corrections align.Corrections // if set, the roi is drawn once per slice where it drifted to
	Landmarks   []align.Landmark  // landmark positions, one marker each
	Title       string
}

// Builds the trajectory overlay for the aligned reference slice of an automated run:
// the reference roi where it moved to, and for every slice the place where its matching
// content was found, in coordinates of the aligned reference slice
func FromResult(res *align.Result, roi align.Rect) Overlay {
	ref := res.Corrections.At(res.RefSlice)
	rel := make(align.Corrections, len(res.Corrections))
	for i, c := range res.Corrections {
		rel[i] = c.Sub(ref)
	}
	moved := roi
	moved.X, moved.Y = roi.X+ref.X, roi.Y+ref.Y
	return Overlay{
		Roi:         moved,
		Corrections: rel,
		Title:       fmt.Sprintf("slice %d, %v", res.RefSlice, res.Summary),
	}
}

// Returns the hue-coded color for slice k of n. The first slice is red, the last violet
func sliceColor(k, n int) colorful.Color {
	hue := 0.0
	if n > 1 {
		hue = 280 * float64(k-1) / float64(n-1)
	}
	return colorful.Hsv(hue, 0.9, 1)
}

// Number of histogram bins for locating the black point
const backgroundBins = 256

// Renders the overlay on top of the slice, stretched linearly from its background level to its max
func Render(f *fits.Image, o Overlay) image.Image {
	s := f.GetStats()
	black := stats.BackgroundLevel(f.Data, s, backgroundBins)
	if black >= s.Max {
		black = s.Min
	}
	dc := gg.NewContextForImage(f.ToGray(black, s.Max, 1))
	dc.SetLineWidth(1)

	n := len(o.Corrections)
	if o.Roi.Width > 0 && o.Roi.Height > 0 {
		for k := 1; k <= n; k++ {
			// content of the roi sits at roi-correction on slice k
			c := o.Corrections.At(k)
			col := sliceColor(k, n)
			dc.SetRGBA(col.R, col.G, col.B, 0.6)
			dc.DrawRectangle(float64(o.Roi.X-c.X)+0.5, float64(o.Roi.Y-c.Y)+0.5, float64(o.Roi.Width), float64(o.Roi.Height))
			dc.Stroke()
		}
		dc.SetRGB(1, 1, 0)
		dc.DrawRectangle(float64(o.Roi.X)+0.5, float64(o.Roi.Y)+0.5, float64(o.Roi.Width), float64(o.Roi.Height))
		dc.Stroke()
	}

	maxSlice := n
	for _, l := range o.Landmarks {
		if l.Slice > maxSlice {
			maxSlice = l.Slice
		}
	}
	for _, l := range o.Landmarks {
		col := sliceColor(l.Slice, maxSlice)
		dc.SetRGB(col.R, col.G, col.B)
		dc.DrawCircle(float64(l.X)+0.5, float64(l.Y)+0.5, 3)
		dc.Stroke()
		dc.DrawStringAnchored(fmt.Sprintf("%d", l.Slice), float64(l.X)+6, float64(l.Y), 0, 0.5)
	}

	if o.Title != "" {
		dc.SetRGB(1, 1, 1)
		dc.DrawString(o.Title, 4, 14)
	}
	return dc.Image()
}

// Encodes the image as PNG or JPEG, by suffix of the given name
func Encode(w io.Writer, img image.Image, fileName string) error {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".png":
		return gg.NewContextForImage(img).EncodePNG(w)
	case ".jpg", ".jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 90})
	}
	return fmt.Errorf("unknown preview format for %s", fileName)
}

// Renders the overlay and writes it to file, as PNG or JPEG by suffix
func SaveFile(fileName string, f *fits.Image, o Overlay) (err error) {
	file, err := os.Create(fileName)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()
	return Encode(file, Render(f, o), fileName)
}
