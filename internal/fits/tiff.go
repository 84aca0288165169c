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

package fits

import (
	"bufio"
	"image"
	"image/color"
	"io"
	"math"
	"os"

	"golang.org/x/image/tiff"
)

// Reads a TIFF image as a single 2D slice. Color images are converted to 16-bit luminance.
func (f *Image) ReadTIFF(r io.Reader) error {
	t, err := tiff.Decode(bufio.NewReader(r))
	if err != nil {
		return err
	}

	width, height := t.Bounds().Dx(), t.Bounds().Dy()
	f.Bitpix = bitpixOf(t.ColorModel())
	f.Naxisn = []int32{int32(width), int32(height)}
	f.Pixels = int32(width) * int32(height)
	f.Bzero, f.Bscale = 0, 1
	f.Data = make([]float32, f.Pixels)
	f.Stats = nil

	min := t.Bounds().Min
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			gray := color.Gray16Model.Convert(t.At(min.X+x, min.Y+y)).(color.Gray16)
			f.Data[y*width+x] = float32(gray.Y)
		}
	}
	return nil
}

// Returns the FITS bits per pixel matching the precision of a color model
func bitpixOf(m color.Model) int32 {
	switch m {
	case color.RGBAModel, color.NRGBAModel, color.AlphaModel, color.GrayModel:
		return 8
	default:
		return 16
	}
}

func (f *Image) WriteMonoTIFF16ToFile(fileName string, min, max, gamma float32) error {
	file, err := os.Create(fileName)
	if err != nil {
		return err
	}
	writer := bufio.NewWriter(file)
	if err = f.WriteMonoTIFF16(writer, min, max, gamma); err == nil {
		err = writer.Flush()
	}
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	return err
}

// Writes the first plane of the image as 16-bit greyscale TIFF, scaling [min,max] to the full range
func (f *Image) WriteMonoTIFF16(writer io.Writer, min, max, gamma float32) error {
	width, height := f.Width(), f.Height()
	img := image.NewGray16(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		yoffset := y * width
		for x := 0; x < width; x++ {
			gray := normalizeValue(f.Data[yoffset+x], min, max, gamma)
			img.SetGray16(x, y, color.Gray16{uint16(gray*65535 + 0.5)})
		}
	}
	return tiff.Encode(writer, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
}

// Maps v from [min,max] into [0,1] with gamma. NaNs and values below min yield 0
func normalizeValue(v, min, max, gamma float32) float32 {
	scale := float32(1)
	if max > min {
		scale = 1 / (max - min)
	}
	v = (v - min) * scale
	if math.IsNaN(float64(v)) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	if gamma != 1 && gamma > 0 {
		v = float32(math.Pow(float64(v), float64(1/gamma)))
	}
	return v
}
