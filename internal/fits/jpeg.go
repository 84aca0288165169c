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
	"image/jpeg"
	"io"
	"os"
)

func (f *Image) WriteMonoJPGToFile(fileName string, min, max, gamma float32, quality int) error {
	file, err := os.Create(fileName)
	if err != nil {
		return err
	}
	writer := bufio.NewWriter(file)
	if err = f.WriteMonoJPG(writer, min, max, gamma, quality); err == nil {
		err = writer.Flush()
	}
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	return err
}

// Writes the first plane of the image as 8-bit greyscale JPEG
func (f *Image) WriteMonoJPG(writer io.Writer, min, max, gamma float32, quality int) error {
	return jpeg.Encode(writer, f.ToGray(min, max, gamma), &jpeg.Options{Quality: quality})
}

// Converts the first plane of the image into an 8-bit greyscale Go image, scaling [min,max] to [0,255]
func (f *Image) ToGray(min, max, gamma float32) *image.Gray {
	width, height := f.Width(), f.Height()
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		yoffset := y * width
		for x := 0; x < width; x++ {
			gray := normalizeValue(f.Data[yoffset+x], min, max, gamma)
			img.SetGray(x, y, color.Gray{uint8(gray*255 + 0.5)})
		}
	}
	return img
}
