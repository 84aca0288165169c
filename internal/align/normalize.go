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

// Rebases the corrections in [first,last] in place so the adjust slice becomes (0,0).
// With correctHead, slices before first move like first; with correctTail, slices after last
// move like last. Otherwise those slices are left as they are.
func Normalize(c Corrections, first, last, adjustSlice int, correctHead, correctTail bool) {
	offset := c.At(adjustSlice)
	for i := first; i <= last; i++ {
		c.Set(i, c.At(i).Sub(offset))
	}
	if correctHead {
		for i := 1; i < first; i++ {
			c.Set(i, c.At(first))
		}
	}
	if correctTail {
		for i := last + 1; i <= len(c); i++ {
			c.Set(i, c.At(last))
		}
	}
}
