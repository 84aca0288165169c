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

package drift

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mlnoga/prealign/internal/fits"
	"github.com/mlnoga/prealign/internal/ops"
)

// Writes per-slice statistics as CSV, one line per input in input order.
// Takes n inputs, produces the same n outputs
type OpExportStats struct {
	ops.OpStackBase
	FileName string `json:"fileName"`
}

func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpExportStatsDefault() }) } // register the operator for JSON decoding

func NewOpExportStatsDefault() *OpExportStats { return NewOpExportStats("") }

func NewOpExportStats(fileName string) *OpExportStats {
	op := &OpExportStats{
		OpStackBase: ops.OpStackBase{OpBase: ops.OpBase{Type: "exportStats", Active: fileName != ""}},
		FileName:    fileName,
	}
	op.OpStackBase.Apply = op.Apply
	return op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpExportStats) UnmarshalJSON(data []byte) error {
	type defaults OpExportStats
	def := defaults(*NewOpExportStatsDefault())
	err := json.Unmarshal(data, &def)
	if err != nil {
		return err
	}
	*op = OpExportStats(def)
	op.OpStackBase.Apply = op.Apply
	return nil
}

func (op *OpExportStats) Apply(fs []*fits.Image, c *ops.Context) (result []*fits.Image, err error) {
	if err := c.CheckPath(op.FileName); err != nil {
		return nil, err
	}
	fmt.Fprintf(c.Log, "Writing statistics for %d slices to file %s ...\n", len(fs), op.FileName)
	file, err := os.Create(op.FileName)
	if err != nil {
		return nil, fmt.Errorf("error creating file %s: %w", op.FileName, err)
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	w := bufio.NewWriter(file)
	fmt.Fprintf(w, "id,%s,exposure,fileName\n", fs[0].GetStats().ToCSVHeader())
	for _, f := range fs {
		fmt.Fprintf(w, "%d,%s,%g,%s\n", f.ID, f.GetStats().ToCSVLine(), f.Exposure, f.FileName)
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}
	return fs, nil
}
