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

package ops

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mlnoga/prealign/internal/fits"
)

var fitsSuffixes = []string{".fits", ".fit", ".fts"}

// Returns true if the file name denotes a FITS file, optionally gzipped
func IsFITSName(fileName string) bool {
	fnLower := strings.ToLower(fileName)
	fnLower = strings.TrimSuffix(strings.TrimSuffix(fnLower, ".gz"), ".gzip")
	for _, s := range fitsSuffixes {
		if strings.HasSuffix(fnLower, s) {
			return true
		}
	}
	return false
}

// Writes the image to a file, choosing FITS, TIFF or JPEG by suffix. TIFF and JPEG are scaled from min to max of the image.
func WriteImage(f *fits.Image, fileName string, c *Context) (err error) {
	fnLower := strings.ToLower(fileName)
	switch {
	case IsFITSName(fileName) && !strings.HasSuffix(fnLower, ".gz") && !strings.HasSuffix(fnLower, ".gzip"):
		fmt.Fprintf(c.Log, "%d: Writing %s pixel FITS to %s\n", f.ID, f.DimensionsToString(), fileName)
		err = f.WriteFile(fileName)
	case strings.HasSuffix(fnLower, ".tif") || strings.HasSuffix(fnLower, ".tiff"):
		s := f.GetStats()
		fmt.Fprintf(c.Log, "%d: Writing %s pixel mono TIFF to %s\n", f.ID, f.DimensionsToString(), fileName)
		err = f.WriteMonoTIFF16ToFile(fileName, s.Min, s.Max, 1)
	case strings.HasSuffix(fnLower, ".jpeg") || strings.HasSuffix(fnLower, ".jpg"):
		s := f.GetStats()
		fmt.Fprintf(c.Log, "%d: Writing %s pixel mono JPEG to %s\n", f.ID, f.DimensionsToString(), fileName)
		err = f.WriteMonoJPGToFile(fileName, s.Min, s.Max, 1, 95)
	default:
		err = fmt.Errorf("unknown suffix")
	}
	if err != nil {
		return fmt.Errorf("%d: Error writing to file %s: %w", f.ID, fileName, err)
	}
	return nil
}

// Saves given promise under a given filename, with pattern expansion for %d based on the image id.
// Takes one input, produces one output (the materialized but unchanged input)
type OpSave struct {
	OpUnaryBase
	FilePattern string `json:"filePattern"`
}

func init() { SetOperatorFactory(func() Operator { return NewOpSaveDefault() }) } // register the operator for JSON decoding

func NewOpSaveDefault() *OpSave { return NewOpSave("") }

func NewOpSave(filenamePattern string) *OpSave {
	op := OpSave{
		OpUnaryBase: OpUnaryBase{OpBase: OpBase{Type: "save", Active: filenamePattern != ""}},
		FilePattern: filenamePattern,
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return &op
}

// Restores the abstract method binding after JSON decoding
func (op *OpSave) UnmarshalJSON(data []byte) error {
	type defaults OpSave
	def := defaults(*NewOpSaveDefault())
	if err := json.Unmarshal(data, &def); err != nil {
		return err
	}
	*op = OpSave(def)
	op.OpUnaryBase.Apply = op.Apply
	return nil
}

func (op *OpSave) Apply(f *fits.Image, c *Context) (result *fits.Image, err error) {
	if !op.Active || op.FilePattern == "" {
		return f, nil
	}
	fileName := op.FilePattern
	if strings.Contains(fileName, "%d") {
		fileName = fmt.Sprintf(op.FilePattern, f.ID)
	}
	if err := c.CheckPath(fileName); err != nil {
		return nil, err
	}
	if err := WriteImage(f, fileName, c); err != nil {
		return nil, err
	}
	return f, nil
}

// Saves all inputs as one 3D FITS cube. Takes n inputs, produces the same n outputs
type OpSaveCube struct {
	OpStackBase
	FileName string `json:"fileName"`
}

func init() { SetOperatorFactory(func() Operator { return NewOpSaveCubeDefault() }) } // register the operator for JSON decoding

func NewOpSaveCubeDefault() *OpSaveCube { return NewOpSaveCube("") }

func NewOpSaveCube(fileName string) *OpSaveCube {
	op := OpSaveCube{
		OpStackBase: OpStackBase{OpBase: OpBase{Type: "saveCube", Active: fileName != ""}},
		FileName:    fileName,
	}
	op.OpStackBase.Apply = op.Apply
	return &op
}

func (op *OpSaveCube) UnmarshalJSON(data []byte) error {
	type defaults OpSaveCube
	def := defaults(*NewOpSaveCubeDefault())
	if err := json.Unmarshal(data, &def); err != nil {
		return err
	}
	*op = OpSaveCube(def)
	op.OpStackBase.Apply = op.Apply
	return nil
}

func (op *OpSaveCube) Apply(fs []*fits.Image, c *Context) ([]*fits.Image, error) {
	if err := c.CheckPath(op.FileName); err != nil {
		return nil, err
	}
	cube, err := fits.JoinCube(fs)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(c.Log, "Writing %s pixel FITS cube to %s\n", cube.DimensionsToString(), op.FileName)
	if err := cube.WriteFile(op.FileName); err != nil {
		return nil, fmt.Errorf("error writing cube to file %s: %w", op.FileName, err)
	}
	return fs, nil
}
