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

// GridType specifies how horizontal coordinates are to be interpreted.
// The numeric values match the GETM grid_type codes.
type GridType int

// Supported grid types.
const (
	Cartesian            GridType = 1 // regular x/y axes [m]
	Spherical            GridType = 2 // regular lon/lat axes [°]
	PlanarCurvilinear    GridType = 3 // general x/y corner coordinates [m]
	SphericalCurvilinear GridType = 4 // general lon/lat corner coordinates [°]
)

func (t GridType) String() string {
	switch t {
	case Cartesian:
		return "cartesian"
	case Spherical:
		return "spherical"
	case PlanarCurvilinear:
		return "planar-curvilinear"
	case SphericalCurvilinear:
		return "spherical-curvilinear"
	default:
		return fmt.Sprintf("GridType(%d)", int(t))
	}
}

// Spherical reports whether coordinates of this grid type are lon/lat.
func (t GridType) Spherical() bool { return t == Spherical || t == SphericalCurvilinear }

func (t GridType) valid() bool { return t >= Cartesian && t <= SphericalCurvilinear }

// ParseGridType parses a grid type from its name or GETM code.
func ParseGridType(s string) (GridType, error) {
	for t := Cartesian; t <= SphericalCurvilinear; t++ {
		if s == t.String() || s == fmt.Sprint(int(t)) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("getm: invalid grid type %q", s)
}

// PointSet holds the two coordinates of every point of one family,
// stored row-major with the family's extents. A and B are x and y [m]
// on planar grids and longitude and latitude [°] on spherical grids.
type PointSet struct {
	A, B []float64
}

// Coordinates holds the horizontal coordinate input for all four
// staggering families of a grid of Nx × Ny cells.
type Coordinates struct {
	Nx, Ny int

	// Points is indexed by Family.
	Points [4]PointSet

	// Regular is true when the coordinates were generated from
	// constant spacings DA and DB.
	Regular bool
	DA, DB  float64
}

// RegularCartesian creates coordinates for a regular x/y grid whose
// lower-left corner is at (x0, y0) and whose cells are dx × dy [m].
func RegularCartesian(nx, ny int, x0, y0, dx, dy float64) *Coordinates {
	return regular(nx, ny, x0, y0, dx, dy)
}

// RegularSpherical creates coordinates for a regular lon/lat grid whose
// south-west corner is at (lon0, lat0) and whose cells are dlon × dlat [°].
func RegularSpherical(nx, ny int, lon0, lat0, dlon, dlat float64) *Coordinates {
	return regular(nx, ny, lon0, lat0, dlon, dlat)
}

func regular(nx, ny int, a0, b0, da, db float64) *Coordinates {
	c := &Coordinates{Nx: nx, Ny: ny, Regular: true, DA: da, DB: db}
	// Offsets of each family from the south-west cell corner, in cells.
	offsets := [4][2]float64{
		Z: {0.5, 0.5},
		U: {0, 0.5},
		V: {0.5, 0},
		X: {0, 0},
	}
	for _, f := range Families {
		rows, cols := f.Shape(nx, ny)
		ps := PointSet{A: make([]float64, rows*cols), B: make([]float64, rows*cols)}
		for j := 0; j < rows; j++ {
			for i := 0; i < cols; i++ {
				ps.A[j*cols+i] = a0 + (float64(i)+offsets[f][0])*da
				ps.B[j*cols+i] = b0 + (float64(j)+offsets[f][1])*db
			}
		}
		c.Points[f] = ps
	}
	return c
}

// CurvilinearFromCorners creates coordinates from the (ny+1) × (nx+1)
// cell corner positions a and b, as read for curvilinear grids. The
// centre and face positions are the averages of the surrounding corners.
func CurvilinearFromCorners(nx, ny int, a, b []float64) (*Coordinates, error) {
	if nx < 1 || ny < 1 {
		return nil, &InvalidGridError{Family: X, Index: Index{-1, -1},
			Reason: fmt.Sprintf("grid must have at least one cell, got %d × %d", nx, ny)}
	}
	if len(a) != X.Len(nx, ny) || len(b) != X.Len(nx, ny) {
		return nil, &InvalidGridError{Family: X, Index: Index{-1, -1},
			Reason: fmt.Sprintf("corner arrays have lengths %d and %d, want %d",
				len(a), len(b), X.Len(nx, ny))}
	}
	c := &Coordinates{Nx: nx, Ny: ny}
	c.Points[X] = PointSet{A: append([]float64(nil), a...), B: append([]float64(nil), b...)}
	xc := nx + 1
	corner := func(v []float64, j, i int) float64 { return v[j*xc+i] }

	z := PointSet{A: make([]float64, nx*ny), B: make([]float64, nx*ny)}
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			z.A[j*nx+i] = 0.25 * (corner(a, j, i) + corner(a, j, i+1) +
				corner(a, j+1, i) + corner(a, j+1, i+1))
			z.B[j*nx+i] = 0.25 * (corner(b, j, i) + corner(b, j, i+1) +
				corner(b, j+1, i) + corner(b, j+1, i+1))
		}
	}
	c.Points[Z] = z

	u := PointSet{A: make([]float64, ny*(nx+1)), B: make([]float64, ny*(nx+1))}
	for j := 0; j < ny; j++ {
		for i := 0; i <= nx; i++ {
			u.A[j*xc+i] = 0.5 * (corner(a, j, i) + corner(a, j+1, i))
			u.B[j*xc+i] = 0.5 * (corner(b, j, i) + corner(b, j+1, i))
		}
	}
	c.Points[U] = u

	v := PointSet{A: make([]float64, (ny+1)*nx), B: make([]float64, (ny+1)*nx)}
	for j := 0; j <= ny; j++ {
		for i := 0; i < nx; i++ {
			v.A[j*nx+i] = 0.5 * (corner(a, j, i) + corner(a, j, i+1))
			v.B[j*nx+i] = 0.5 * (corner(b, j, i) + corner(b, j, i+1))
		}
	}
	c.Points[V] = v
	return c, nil
}

// check verifies that every family has arrays of the right extent.
// Copy returns a deep copy of c.
func (c *Coordinates) Copy() *Coordinates {
	if c == nil {
		return nil
	}
	cc := *c
	for f, ps := range c.Points {
		cc.Points[f] = PointSet{
			A: append([]float64(nil), ps.A...),
			B: append([]float64(nil), ps.B...),
		}
	}
	return &cc
}

func (c *Coordinates) check() error {
	if c == nil {
		return &InvalidGridError{Family: Z, Index: Index{-1, -1}, Reason: "no coordinates"}
	}
	if c.Nx < 1 || c.Ny < 1 {
		return &InvalidGridError{Family: Z, Index: Index{-1, -1},
			Reason: fmt.Sprintf("grid must have at least one cell, got %d × %d", c.Nx, c.Ny)}
	}
	for _, f := range Families {
		n := f.Len(c.Nx, c.Ny)
		ps := c.Points[f]
		if len(ps.A) != n || len(ps.B) != n {
			return &InvalidGridError{Family: f, Index: Index{-1, -1},
				Reason: fmt.Sprintf("coordinate arrays have lengths %d and %d, want %d for a %d × %d grid",
					len(ps.A), len(ps.B), n, c.Nx, c.Ny)}
		}
	}
	return nil
}
