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
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"
)

// Writes the image as 32-bit float FITS to the given file, creating or truncating it
func (fits *Image) WriteFile(fileName string) error {
	f, err := os.Create(fileName)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err = fits.Write(w); err == nil {
		err = w.Flush()
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	return err
}

// Writes the image as 32-bit float FITS. NaNs are replaced with zeros for compatibility
func (fits *Image) Write(w io.Writer) error {
	sb := strings.Builder{}
	writeBool(&sb, "SIMPLE", true, "FITS standard 4.0")
	writeInt(&sb, "BITPIX", -32, "32-bit floating point")
	writeInt(&sb, "NAXIS", len(fits.Naxisn), "[1] Number of axis")
	for i, naxis := range fits.Naxisn {
		writeInt(&sb, fmt.Sprintf("NAXIS%d", i+1), int(naxis), "[1] Axis size")
	}
	writeFloat(&sb, "BZERO", 0, "[1] Zero offset")
	writeFloat(&sb, "BSCALE", 1, "[1] Value scaler")
	if fits.Exposure != 0 {
		writeFloat(&sb, "EXPTIME", float64(fits.Exposure), "[s] Exposure time")
	}
	fits.Header.write(&sb)
	writeEnd(&sb)

	// Pad current header block with spaces if necessary
	if bytesInHeaderBlock := sb.Len() % fitsBlockSize; bytesInHeaderBlock > 0 {
		sb.WriteString(strings.Repeat(" ", fitsBlockSize-bytesInHeaderBlock))
	}
	if _, err := io.WriteString(w, sb.String()); err != nil {
		return err
	}

	if err := writeFloat32Array(w, fits.Data, true); err != nil {
		return err
	}

	// Pad data block with zeros
	if bytesInDataBlock := (4 * len(fits.Data)) % fitsBlockSize; bytesInDataBlock > 0 {
		_, err := w.Write(make([]byte, fitsBlockSize-bytesInDataBlock))
		return err
	}
	return nil
}

// Writes the remaining header entries in stable key order
func (h *Header) write(w io.Writer) {
	for _, k := range sortedKeys(h.Bools) {
		writeBool(w, k, h.Bools[k], "")
	}
	for _, k := range sortedKeys(h.Ints) {
		writeInt(w, k, int(h.Ints[k]), "")
	}
	for _, k := range sortedKeys(h.Floats) {
		writeFloat(w, k, float64(h.Floats[k]), "")
	}
	for _, k := range sortedKeys(h.Strings) {
		writeString(w, k, h.Strings[k], "")
	}
	for _, k := range sortedKeys(h.Dates) {
		writeString(w, k, h.Dates[k], "")
	}
	for _, c := range h.Comments {
		writeText(w, "COMMENT", c)
	}
	for _, c := range h.History {
		writeText(w, "HISTORY", c)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		if len(k) <= 8 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func clip(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func writeBool(w io.Writer, key string, value bool, comment string) {
	v := "F"
	if value {
		v = "T"
	}
	fmt.Fprintf(w, "%-8s= %20s / %-47s", clip(key, 8), v, clip(comment, 47))
}

func writeInt(w io.Writer, key string, value int, comment string) {
	fmt.Fprintf(w, "%-8s= %20d / %-47s", clip(key, 8), value, clip(comment, 47))
}

func writeFloat(w io.Writer, key string, value float64, comment string) {
	v := fmt.Sprintf("%.10G", value)
	if !strings.Contains(v, ".") {
		if i := strings.Index(v, "E"); i >= 0 {
			v = v[:i] + "." + v[i:]
		} else {
			v += "."
		}
	}
	fmt.Fprintf(w, "%-8s= %20s / %-47s", clip(key, 8), v, clip(comment, 47))
}

// Writes a string value clipped to 33 characters, escaping quotes
func writeString(w io.Writer, key, value, comment string) {
	value = strings.ReplaceAll(clip(value, 33), "'", "''")
	line := fmt.Sprintf("%-8s= '%-8s' / %s", clip(key, 8), value, comment)
	fmt.Fprintf(w, "%-80s", clip(line, 80))
}

func writeText(w io.Writer, key, text string) {
	fmt.Fprintf(w, "%-8s  %-70s", key, clip(text, 70))
}

func writeEnd(w io.Writer) {
	fmt.Fprintf(w, "%-80s", "END")
}

func writeFloat32Array(w io.Writer, data []float32, replaceNaNs bool) error {
	buf := make([]byte, bufLen)

	for block := 0; block < len(data); block += bufLen >> 2 {
		size := len(data) - block
		if size > bufLen>>2 {
			size = bufLen >> 2
		}

		for offset := 0; offset < size; offset++ {
			d := data[block+offset]
			if replaceNaNs && math.IsNaN(float64(d)) {
				d = 0
			}
			binary.BigEndian.PutUint32(buf[offset<<2:], math.Float32bits(d))
		}
		if _, err := w.Write(buf[:size<<2]); err != nil {
			return err
		}
	}
	return nil
}
