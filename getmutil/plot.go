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

package getmutil

import (
	"fmt"
	"os"

	"github.com/gonum/floats"
	"github.com/platipodium/mossco-getm"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// PlotVariables are the cell-centre variables that can be plotted.
var PlotVariables = []string{"depth", "mask", "area", "kmin", "kmax"}

// cellGrid adapts a cell-centre array of the domain to plotter.GridXYZ.
type cellGrid struct {
	nx, ny int
	z      []float64
	x, y   func(int) float64
}

func (g cellGrid) Dims() (c, r int)   { return g.nx, g.ny }
func (g cellGrid) Z(c, r int) float64 { return g.z[r*g.nx+c] }
func (g cellGrid) X(c int) float64    { return g.x(c) }
func (g cellGrid) Y(r int) float64    { return g.y(r) }

// newCellGrid returns the named variable of d at the cell centres. Regular
// grids are positioned by their centre coordinates and curvilinear grids
// by cell index.
func newCellGrid(d *getm.Domain, variable string) (cellGrid, error) {
	g := cellGrid{nx: d.Geometry.Nx(), ny: d.Geometry.Ny()}
	g.z = make([]float64, g.nx*g.ny)
	switch variable {
	case "depth":
		copy(g.z, d.Bathymetry.Depth(getm.Z).Elements)
	case "mask":
		for n, m := range d.Bathymetry.Masks(getm.Z) {
			g.z[n] = float64(m)
		}
	case "area":
		copy(g.z, d.Geometry.Points(getm.Z).Area.Elements)
	case "kmin", "kmax":
		k := d.Layers.KMin(getm.Z)
		if variable == "kmax" {
			k = d.Layers.KMax(getm.Z)
		}
		for n, v := range k {
			g.z[n] = float64(v)
		}
	default:
		return g, fmt.Errorf("getmutil: invalid plot variable %q; valid variables are %v", variable, PlotVariables)
	}
	c := d.Geometry.Coordinates()
	if c.Regular {
		pts := c.Points[getm.Z]
		g.x = func(i int) float64 { return pts.A[i] }
		g.y = func(j int) float64 { return pts.B[j*g.nx] }
	} else {
		g.x = func(i int) float64 { return float64(i) }
		g.y = func(j int) float64 { return float64(j) }
	}
	return g, nil
}

// Plot draws a heat map of the named cell-centre variable of d and saves
// it to path. The image format is chosen from the file extension.
func Plot(d *getm.Domain, variable, path string) error {
	g, err := newCellGrid(d, variable)
	if err != nil {
		return err
	}
	p, err := plot.New()
	if err != nil {
		return err
	}
	min, max := floats.Min(g.z), floats.Max(g.z)
	if max == min {
		max = min + 1
	}
	cm := moreland.ExtendedBlackBody()
	cm.SetMin(min)
	cm.SetMax(max)
	h := plotter.NewHeatMap(g, cm.Palette(255))
	h.Min, h.Max = min, max
	p.Add(h)
	p.Title.Text = variable
	if d.Geometry.Coordinates().Regular {
		if d.Geometry.Type().Spherical() {
			p.X.Label.Text, p.Y.Label.Text = "longitude [°]", "latitude [°]"
		} else {
			p.X.Label.Text, p.Y.Label.Text = "x [m]", "y [m]"
		}
	} else {
		p.X.Label.Text, p.Y.Label.Text = "i", "j"
	}
	if err := p.Save(6*vg.Inch, 5*vg.Inch, os.ExpandEnv(path)); err != nil {
		return fmt.Errorf("getmutil: saving plot: %v", err)
	}
	return nil
}
