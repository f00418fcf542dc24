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

import (
	"fmt"
	"math"
	"os"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// axisNames returns the names of the cell-centre axis and corner
// coordinate variables of a topography file for grid type t.
func axisNames(t GridType) (xc, yc, xx, yx string) {
	if t.Spherical() {
		return "lonc", "latc", "lonx", "latx"
	}
	return "xc", "yc", "xx", "yx"
}

// ReadTopo reads a GETM topography file. The file holds the cell-centre
// depth in the variable "bathymetry" (ny × nx). Regular grid types may
// also hold equally spaced cell-centre axes (xc and yc, or lonc and latc)
// with a "spacing" attribute, and curvilinear grid types must hold the
// corner coordinates (xx and yx, or lonx and latx, (ny+1) × (nx+1)). The returned coordinates are nil
// when a regular grid file holds no axes.
func ReadTopo(rw cdf.ReaderWriterAt, t GridType) (*sparse.DenseArray, *Coordinates, error) {
	f, err := cdf.Open(rw)
	if err != nil {
		return nil, nil, fmt.Errorf("getm: opening topography: %v", err)
	}
	depth, err := readFloats(f, "bathymetry")
	if err != nil {
		return nil, nil, err
	}
	if len(depth.Shape) != 2 {
		return nil, nil, fmt.Errorf("getm: topography bathymetry has %d dimensions, want 2", len(depth.Shape))
	}
	ny, nx := depth.Shape[0], depth.Shape[1]
	xcName, ycName, xxName, yxName := axisNames(t)

	switch t {
	case Cartesian, Spherical:
		if f.Header.Lengths(xcName) == nil || f.Header.Lengths(ycName) == nil {
			return depth, nil, nil
		}
		xc, err := readFloats(f, xcName)
		if err != nil {
			return nil, nil, err
		}
		yc, err := readFloats(f, ycName)
		if err != nil {
			return nil, nil, err
		}
		if len(xc.Elements) != nx || len(yc.Elements) != ny {
			return nil, nil, fmt.Errorf("getm: topography axes have lengths %d and %d, want %d and %d",
				len(xc.Elements), len(yc.Elements), nx, ny)
		}
		da, err := spacing(f, xcName, xc.Elements)
		if err != nil {
			return nil, nil, err
		}
		db, err := spacing(f, ycName, yc.Elements)
		if err != nil {
			return nil, nil, err
		}
		return depth, regular(nx, ny, xc.Elements[0]-da/2, yc.Elements[0]-db/2, da, db), nil
	case PlanarCurvilinear, SphericalCurvilinear:
		a, err := readFloats(f, xxName)
		if err != nil {
			return nil, nil, err
		}
		b, err := readFloats(f, yxName)
		if err != nil {
			return nil, nil, err
		}
		c, err := CurvilinearFromCorners(nx, ny, a.Elements, b.Elements)
		if err != nil {
			return nil, nil, err
		}
		return depth, c, nil
	default:
		return nil, nil, fmt.Errorf("getm: unsupported grid type %d", int(t))
	}
}

// spacing returns the constant spacing of an axis. An axis with a
// single point takes its spacing from the variable's "spacing"
// attribute.
func spacing(f *cdf.File, name string, v []float64) (float64, error) {
	if len(v) < 2 {
		var d float64
		switch a := f.Header.GetAttribute(name, "spacing").(type) {
		case []float64:
			if len(a) == 1 {
				d = a[0]
			}
		case []float32:
			if len(a) == 1 {
				d = float64(a[0])
			}
		default:
			return 0, fmt.Errorf("getm: topography axis %s has a single point and no spacing attribute", name)
		}
		if !(d > 0) {
			return 0, fmt.Errorf("getm: topography axis %s has invalid spacing %g", name, d)
		}
		return d, nil
	}
	d := v[1] - v[0]
	for i := 2; i < len(v); i++ {
		if math.Abs(v[i]-v[i-1]-d) > 1.e-6*math.Abs(d) {
			return 0, fmt.Errorf("getm: topography axis %s is not equally spaced", name)
		}
	}
	if !(d > 0) {
		return 0, fmt.Errorf("getm: topography axis %s is not increasing", name)
	}
	return d, nil
}

// readFloats reads a numeric variable of any type as float64.
func readFloats(f *cdf.File, name string) (*sparse.DenseArray, error) {
	dims := f.Header.Lengths(name)
	if dims == nil {
		return nil, fmt.Errorf("getm: topography has no variable %s", name)
	}
	out := sparse.ZerosDense(dims...)
	buf := f.Header.ZeroValue(name, len(out.Elements))
	if _, err := f.Reader(name, nil, nil).Read(buf); err != nil {
		return nil, fmt.Errorf("getm: reading topography variable %s: %v", name, err)
	}
	switch v := buf.(type) {
	case []float64:
		copy(out.Elements, v)
	case []float32:
		for i, x := range v {
			out.Elements[i] = float64(x)
		}
	case []int32:
		for i, x := range v {
			out.Elements[i] = float64(x)
		}
	case []int16:
		for i, x := range v {
			out.Elements[i] = float64(x)
		}
	default:
		return nil, fmt.Errorf("getm: topography variable %s has non-numeric type %T", name, buf)
	}
	return out, nil
}

// WriteTopo writes depth and the coordinates c of grid type t to w in
// the format read by ReadTopo.
func WriteTopo(w *os.File, c *Coordinates, t GridType, depth *sparse.DenseArray) error {
	if err := c.check(); err != nil {
		return err
	}
	if len(depth.Shape) != 2 || depth.Shape[0] != c.Ny || depth.Shape[1] != c.Nx {
		return fmt.Errorf("getm: depth has shape %v, want [%d %d]", depth.Shape, c.Ny, c.Nx)
	}
	xcName, ycName, xxName, yxName := axisNames(t)
	h := cdf.NewHeader([]string{"x", "y", "xx", "yx"}, []int{c.Nx, c.Ny, c.Nx + 1, c.Ny + 1})
	h.AddAttribute("", "comment", "GETM topography")
	h.AddAttribute("", "grid_type", []int32{int32(t)})
	h.AddVariable("bathymetry", []string{"y", "x"}, []float64{0})
	h.AddAttribute("bathymetry", "units", "m")
	h.AddAttribute("bathymetry", "long_name", "still-water depth")

	data := map[string][]float64{"bathymetry": depth.Elements}
	names := []string{"bathymetry"}
	unitName := "m"
	if t.Spherical() {
		unitName = "degrees"
	}
	switch t {
	case Cartesian, Spherical:
		if !c.Regular {
			return fmt.Errorf("getm: grid type %v requires regular coordinates", t)
		}
		xc := make([]float64, c.Nx)
		yc := make([]float64, c.Ny)
		for i := range xc {
			xc[i] = c.Points[Z].A[i]
		}
		for j := range yc {
			yc[j] = c.Points[Z].B[j*c.Nx]
		}
		h.AddVariable(xcName, []string{"x"}, []float64{0})
		h.AddVariable(ycName, []string{"y"}, []float64{0})
		h.AddAttribute(xcName, "spacing", []float64{c.DA})
		h.AddAttribute(ycName, "spacing", []float64{c.DB})
		data[xcName], data[ycName] = xc, yc
		names = append(names, xcName, ycName)
	default:
		h.AddVariable(xxName, []string{"yx", "xx"}, []float64{0})
		h.AddVariable(yxName, []string{"yx", "xx"}, []float64{0})
		data[xxName], data[yxName] = c.Points[X].A, c.Points[X].B
		names = append(names, xxName, yxName)
	}
	for _, n := range names[1:] {
		h.AddAttribute(n, "units", unitName)
	}
	h.Define()

	f, err := cdf.Create(w, h)
	if err != nil {
		return fmt.Errorf("getm: creating topography: %v", err)
	}
	for _, n := range names {
		end := f.Header.Lengths(n)
		if _, err := f.Writer(n, make([]int, len(end)), end).Write(data[n]); err != nil {
			return fmt.Errorf("getm: writing topography variable %s: %v", n, err)
		}
	}
	return cdf.UpdateNumRecs(w)
}
