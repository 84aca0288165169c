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

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mlnoga/prealign/internal/align"
)

// Parses a region of interest given as x,y,width,height
func parseRoi(s string) (r align.Rect, err error) {
	if s == "" {
		return r, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return r, fmt.Errorf("roi '%s' is not of the form x,y,width,height", s)
	}
	vals := make([]int, 4)
	for i, p := range parts {
		if vals[i], err = strconv.Atoi(strings.TrimSpace(p)); err != nil {
			return r, fmt.Errorf("roi '%s': %w", s, err)
		}
	}
	return align.Rect{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}, nil
}

// Parses landmarks given as slice:x,y entries separated by semicolons, e.g. 1:10,20;5:12,23
func parseLandmarks(s string) (lms []align.Landmark, err error) {
	for _, entry := range strings.Split(s, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		var l align.Landmark
		if _, err := fmt.Sscanf(entry, "%d:%d,%d", &l.Slice, &l.X, &l.Y); err != nil {
			return nil, fmt.Errorf("landmark '%s' is not of the form slice:x,y: %w", entry, err)
		}
		lms = append(lms, l)
	}
	return lms, nil
}

// Replaces the suffix of the given file name, or returns blank for a blank name
func withSuffix(fileName, suffix string) string {
	if fileName == "" {
		return ""
	}
	fileName = strings.TrimSuffix(fileName, ".gz")
	if i := strings.LastIndex(fileName, "."); i > strings.LastIndex(fileName, "/") {
		fileName = fileName[:i]
	}
	return fileName + suffix
}
