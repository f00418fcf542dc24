/*
Copyright © 2024 the GETM domain authors.
This file is part of mossco-getm.

mossco-getm is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

mossco-getm is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with mossco-getm.  If not, see <http://www.gnu.org/licenses/>.
*/

package getm

import "fmt"

// Family identifies one of the four staggered point sets of the
// Arakawa C grid. Every array in the domain is tagged with exactly one
// Family.
type Family int

// The staggering families. For a grid of nx × ny cells:
//
//	Z: cell centres, ny × nx.
//	U: east/west cell faces, ny × (nx+1). U(j,i) is the west face of Z(j,i).
//	V: north/south cell faces, (ny+1) × nx. V(j,i) is the south face of Z(j,i).
//	X: cell corners, (ny+1) × (nx+1). X(j,i) is the south-west corner of Z(j,i).
const (
	Z Family = iota
	U
	V
	X
)

// Families lists all staggering families in storage order.
var Families = []Family{Z, U, V, X}

func (f Family) String() string {
	switch f {
	case Z:
		return "Z"
	case U:
		return "U"
	case V:
		return "V"
	case X:
		return "X"
	default:
		return fmt.Sprintf("Family(%d)", int(f))
	}
}

// Shape returns the (rows, columns) extent of family f on a grid
// of nx × ny cells.
func (f Family) Shape(nx, ny int) (rows, cols int) {
	switch f {
	case U:
		return ny, nx + 1
	case V:
		return ny + 1, nx
	case X:
		return ny + 1, nx + 1
	default:
		return ny, nx
	}
}

// Len returns the number of points of family f on a grid of nx × ny cells.
func (f Family) Len(nx, ny int) int {
	r, c := f.Shape(nx, ny)
	return r * c
}

// ParseFamily converts a family name ("Z", "U", "V", "X") into a Family.
func ParseFamily(s string) (Family, error) {
	for _, f := range Families {
		if f.String() == s {
			return f, nil
		}
	}
	return Z, fmt.Errorf("getm: invalid staggering family %q", s)
}

// Index is a horizontal (row, column) position within a family.
type Index struct {
	J, I int
}

func (ix Index) String() string { return fmt.Sprintf("(j=%d, i=%d)", ix.J, ix.I) }
