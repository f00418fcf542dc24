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
	"os"
	"strings"

	"github.com/ctessum/geom/encoding/shp"
	goshp "github.com/jonas-p/go-shp"
)

// geographicPRJ is the shapefile projection of lon/lat grids.
const geographicPRJ = `GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137,298.257223563]],PRIMEM["Greenwich",0],UNIT["Degree",0.017453292519943295]]`

// WriteGridShapefile writes the cell outlines of the domain to the
// shapefile at path, in the native coordinates of the grid. Each cell
// carries its indices, depth, mask and layer range. A .prj file is
// written for spherical grids.
func (d *Domain) WriteGridShapefile(path string) error {
	if d.Geometry == nil || d.Bathymetry == nil || !d.Bathymetry.Computed() {
		return fmt.Errorf("getm: geometry and masks are required to write a grid shapefile")
	}
	base := strings.TrimSuffix(path, ".shp")
	for _, ext := range []string{".shp", ".prj", ".dbf", ".shx"} {
		os.Remove(base + ext)
	}
	fields := []goshp.Field{
		goshp.NumberField("j", 10),
		goshp.NumberField("i", 10),
		goshp.FloatField("depth", 14, 4),
		goshp.NumberField("mask", 2),
		goshp.NumberField("kmin", 6),
		goshp.NumberField("kmax", 6),
	}
	e, err := shp.NewEncoderFromFields(base+".shp", goshp.POLYGON, fields...)
	if err != nil {
		return fmt.Errorf("getm: creating grid shapefile: %v", err)
	}
	defer e.Close()

	g := d.Geometry
	nx := g.Nx()
	h := d.Bathymetry.Depth(Z).Elements
	masks := d.Bathymetry.Masks(Z)
	for j := 0; j < g.Ny(); j++ {
		for i := 0; i < nx; i++ {
			n := j*nx + i
			var kmin, kmax int
			if d.Layers != nil {
				kmin, kmax = d.Layers.KMin(Z)[n], d.Layers.KMax(Z)[n]
			}
			if err := e.EncodeFields(g.CellPolygon(j, i), j, i, h[n], int(masks[n]), kmin, kmax); err != nil {
				return fmt.Errorf("getm: writing cell %v to grid shapefile: %v", Index{j, i}, err)
			}
		}
	}
	if g.Type().Spherical() {
		if err := writePRJ(base+".prj", geographicPRJ); err != nil {
			return err
		}
	}
	return nil
}

func writePRJ(path, prj string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("getm: creating projection file: %v", err)
	}
	if _, err = f.Write([]byte(prj)); err != nil {
		f.Close()
		return fmt.Errorf("getm: writing projection file: %v", err)
	}
	return f.Close()
}
