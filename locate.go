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
	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
)

// gridCell is a cell outline stored in the spatial index.
type gridCell struct {
	geom.Polygon
	Index
}

// buildIndex indexes the cell outlines for Locate. It is run by
// Recompute so that Locate only reads the geometry.
func (g *Geometry) buildIndex() {
	g.index = rtree.NewTree(25, 50)
	for j := 0; j < g.Ny(); j++ {
		for i := 0; i < g.Nx(); i++ {
			g.index.Insert(&gridCell{Polygon: g.CellPolygon(j, i), Index: Index{j, i}})
		}
	}
}

// Locate returns the indices of the cell containing the point (x, y),
// given in the native coordinates of the grid. Points on a shared edge
// belong to the cell with the lowest (j, i). ok is false for points
// outside of the grid. Locate is safe for concurrent use.
func (g *Geometry) Locate(x, y float64) (j, i int, ok bool) {
	p := geom.Point{X: x, Y: y}
	best := Index{-1, -1}
	for _, item := range g.index.SearchIntersect(p.Bounds()) {
		c := item.(*gridCell)
		if p.Within(c.Polygon) == geom.Outside {
			continue
		}
		if best.J < 0 || c.J < best.J || (c.J == best.J && c.I < best.I) {
			best = c.Index
		}
	}
	if best.J < 0 {
		return -1, -1, false
	}
	return best.J, best.I, true
}
