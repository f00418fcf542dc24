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

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
	"github.com/ctessum/geom/proj"
	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/floats"
)

const (
	// EarthRadius is the default radius of the earth [m].
	EarthRadius = 6378815.

	omega   = 2. * math.Pi / 86164. // angular velocity of the earth [rad/s]
	deg2rad = math.Pi / 180.
	rad2deg = 180. / math.Pi

	// geographicProj is the spatial reference of lon/lat coordinates.
	geographicProj = "+proj=longlat"
)

// FamilyPoints holds the positions and metric terms of one staggering
// family. All arrays have the family's extents and are indexed (j, i).
type FamilyPoints struct {
	Family Family

	X, Y     *sparse.DenseArray // planar position [m], nil if unavailable
	Lon, Lat *sparse.DenseArray // geographic position [°], nil if unavailable

	Dx, Dy  *sparse.DenseArray // spacing along the local i and j directions [m]
	Area    *sparse.DenseArray // [m²]
	InvArea *sparse.DenseArray // [1/m²]
	Cor     *sparse.DenseArray // Coriolis parameter [1/s]

	Conv             *sparse.DenseArray // grid convergence [°]; Z and X only
	CosConv, SinConv *sparse.DenseArray // Z only

	// DxDy is the change of the face length Dx across the cell in the j
	// direction, divided by the cell Dy. DyDx is the change of Dy across
	// the cell in the i direction, divided by the cell Dx. Z only [1].
	DxDy, DyDx *sparse.DenseArray
}

// Geometry holds the horizontal coordinates of all four staggering
// families and the metric terms derived from them. Metrics are never
// edited in place; they are recomputed from the coordinates by Recompute.
type Geometry struct {
	coords   *Coordinates
	gridType GridType
	proj4    string
	latitude float64
	radius   float64

	points [4]*FamilyPoints
	index  *rtree.Rtree

	// Dx and Dy [m], or DLon and DLat [°], are the constant spacings of
	// regular grids. They are -1 when not applicable.
	Dx, Dy, DLon, DLat float64
	// InvCellArea is 1/(Dx·Dy) [1/m²] on regular Cartesian grids, -1
	// otherwise.
	InvCellArea float64
}

// GeometryOption configures optional aspects of a Geometry.
type GeometryOption func(*Geometry)

// WithProjection specifies the Proj4 definition of the planar
// coordinate system. Planar grids then get geographic positions and
// spherical grids get planar positions.
func WithProjection(proj4 string) GeometryOption {
	return func(g *Geometry) { g.proj4 = proj4 }
}

// WithLatitude sets the f-plane latitude [°] used for the Coriolis
// parameter when no geographic positions are available.
func WithLatitude(lat float64) GeometryOption {
	return func(g *Geometry) { g.latitude = lat }
}

// WithEarthRadius overrides EarthRadius for spherical distances.
func WithEarthRadius(r float64) GeometryOption {
	return func(g *Geometry) { g.radius = r }
}

// NewGeometry validates coordinate input of grid type t and computes
// all derived metric terms. The geometry keeps its own copy of c.
func NewGeometry(c *Coordinates, t GridType, opts ...GeometryOption) (*Geometry, error) {
	g := &Geometry{coords: c.Copy(), gridType: t, radius: EarthRadius}
	for _, o := range opts {
		o(g)
	}
	if err := g.Recompute(); err != nil {
		return nil, err
	}
	return g, nil
}

// Nx returns the number of cells in the i direction.
func (g *Geometry) Nx() int { return g.coords.Nx }

// Ny returns the number of cells in the j direction.
func (g *Geometry) Ny() int { return g.coords.Ny }

// Type returns the grid type.
func (g *Geometry) Type() GridType { return g.gridType }

// Projection returns the Proj4 definition of the planar coordinates, if any.
func (g *Geometry) Projection() string { return g.proj4 }

// Coordinates returns the coordinate input. It must not be modified.
func (g *Geometry) Coordinates() *Coordinates { return g.coords }

// Points returns the positions and metrics of family f.
func (g *Geometry) Points(f Family) *FamilyPoints { return g.points[f] }

// Recompute derives every metric term from the stored coordinates.
func (g *Geometry) Recompute() error {
	c := g.coords
	if !g.gridType.valid() {
		return &InvalidGridError{Family: Z, Index: Index{-1, -1},
			Reason: fmt.Sprintf("unsupported grid type %d", int(g.gridType))}
	}
	if err := c.check(); err != nil {
		return err
	}
	for _, f := range Families {
		ps := c.Points[f]
		rows, cols := f.Shape(c.Nx, c.Ny)
		for j := 0; j < rows; j++ {
			for i := 0; i < cols; i++ {
				a, b := ps.A[j*cols+i], ps.B[j*cols+i]
				if math.IsNaN(a) || math.IsNaN(b) || math.IsInf(a, 0) || math.IsInf(b, 0) {
					return &InvalidGridError{Family: f, Index: Index{j, i}, Reason: "non-finite coordinate"}
				}
				if g.gridType.Spherical() && math.Abs(b) > 90 {
					return &InvalidGridError{Family: f, Index: Index{j, i},
						Reason: fmt.Sprintf("latitude %g out of range", b)}
				}
			}
		}
	}
	if g.gridType == Cartesian || g.gridType == Spherical {
		if err := g.checkRectilinear(); err != nil {
			return err
		}
	}

	g.index = nil
	for _, f := range Families {
		g.points[f] = &FamilyPoints{Family: f}
	}
	if err := g.positions(); err != nil {
		return err
	}
	if err := g.checkCells(); err != nil {
		return err
	}
	g.buildIndex()
	if err := g.spacings(); err != nil {
		return err
	}
	g.metricGradients()
	g.coriolis()
	g.convergence()

	g.Dx, g.Dy, g.DLon, g.DLat, g.InvCellArea = -1, -1, -1, -1, -1
	if c.Regular {
		switch g.gridType {
		case Cartesian:
			g.Dx, g.Dy = c.DA, c.DB
			g.InvCellArea = 1 / (c.DA * c.DB)
		case Spherical:
			g.DLon, g.DLat = c.DA, c.DB
		}
	}
	return nil
}

func familyArray(f Family, nx, ny int) *sparse.DenseArray {
	rows, cols := f.Shape(nx, ny)
	return sparse.ZerosDense(rows, cols)
}

// checkRectilinear ensures that regular grid types have coordinate axes
// aligned with the array axes.
func (g *Geometry) checkRectilinear() error {
	const tolerance = 1.e-9
	c := g.coords
	for _, f := range Families {
		ps := c.Points[f]
		rows, cols := f.Shape(c.Nx, c.Ny)
		for j := 0; j < rows; j++ {
			for i := 0; i < cols; i++ {
				da := ps.A[j*cols+i] - ps.A[i]
				db := ps.B[j*cols+i] - ps.B[j*cols]
				scale := math.Max(1, math.Max(math.Abs(ps.A[i]), math.Abs(ps.B[j*cols])))
				if math.Abs(da) > tolerance*scale || math.Abs(db) > tolerance*scale {
					return &InvalidGridError{Family: f, Index: Index{j, i},
						Reason: fmt.Sprintf("grid type %v requires rectilinear coordinates", g.gridType)}
				}
			}
		}
	}
	return nil
}

// positions fills the planar and geographic position arrays, projecting
// between the two when a projection is available.
func (g *Geometry) positions() error {
	c := g.coords
	var t proj.Transformer
	if g.proj4 != "" {
		gridSR, err := proj.Parse(g.proj4)
		if err != nil {
			return fmt.Errorf("getm: while parsing grid projection: %v", err)
		}
		geoSR, err := proj.Parse(geographicProj)
		if err != nil {
			return fmt.Errorf("getm: while parsing geographic projection: %v", err)
		}
		if g.gridType.Spherical() {
			t, err = geoSR.NewTransform(gridSR)
		} else {
			t, err = gridSR.NewTransform(geoSR)
		}
		if err != nil {
			return fmt.Errorf("getm: while creating grid transform: %v", err)
		}
	}
	for _, f := range Families {
		fp := g.points[f]
		a := familyArray(f, c.Nx, c.Ny)
		b := familyArray(f, c.Nx, c.Ny)
		copy(a.Elements, c.Points[f].A)
		copy(b.Elements, c.Points[f].B)
		var pa, pb *sparse.DenseArray
		if t != nil {
			pa = familyArray(f, c.Nx, c.Ny)
			pb = familyArray(f, c.Nx, c.Ny)
			for n := range a.Elements {
				x, y, err := t(a.Elements[n], b.Elements[n])
				if err != nil {
					return fmt.Errorf("getm: projecting %v point %d: %v", f, n, err)
				}
				pa.Elements[n], pb.Elements[n] = x, y
			}
		}
		if g.gridType.Spherical() {
			fp.Lon, fp.Lat = a, b
			fp.X, fp.Y = pa, pb
		} else {
			fp.X, fp.Y = a, b
			fp.Lon, fp.Lat = pa, pb
		}
	}
	return nil
}

// distance returns the distance [m] between two points given in the
// native coordinates of the grid.
func (g *Geometry) distance(a1, b1, a2, b2 float64) float64 {
	if !g.gridType.Spherical() {
		return math.Hypot(a2-a1, b2-b1)
	}
	φ1, φ2 := b1*deg2rad, b2*deg2rad
	dφ := φ2 - φ1
	dλ := (a2 - a1) * deg2rad
	h := math.Sin(dφ/2)*math.Sin(dφ/2) + math.Cos(φ1)*math.Cos(φ2)*math.Sin(dλ/2)*math.Sin(dλ/2)
	return 2 * g.radius * math.Asin(math.Min(1, math.Sqrt(h)))
}

// native returns the input coordinates of point (j, i) of family f.
func (g *Geometry) native(f Family, j, i int) (float64, float64) {
	_, cols := f.Shape(g.coords.Nx, g.coords.Ny)
	ps := g.coords.Points[f]
	return ps.A[j*cols+i], ps.B[j*cols+i]
}

func (g *Geometry) dist(f1 Family, j1, i1 int, f2 Family, j2, i2 int) float64 {
	a1, b1 := g.native(f1, j1, i1)
	a2, b2 := g.native(f2, j2, i2)
	return g.distance(a1, b1, a2, b2)
}

// checkCells ensures that every cell quadrilateral is simple and has a
// consistent winding.
func (g *Geometry) checkCells() error {
	nx, ny := g.coords.Nx, g.coords.Ny
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			var p [4][2]float64
			for k, c := range [4][2]int{{j, i}, {j, i + 1}, {j + 1, i + 1}, {j + 1, i}} {
				p[k][0], p[k][1] = g.native(X, c[0], c[1])
			}
			var pos, neg int
			for k := 0; k < 4; k++ {
				a, b, c := p[(k+3)%4], p[k], p[(k+1)%4]
				cross := (b[0]-a[0])*(c[1]-b[1]) - (b[1]-a[1])*(c[0]-b[0])
				switch {
				case cross > 0:
					pos++
				case cross < 0:
					neg++
				}
			}
			if pos != 4 && neg != 4 {
				return &InvalidGridError{Family: Z, Index: Index{j, i},
					Reason: "cell is degenerate or self-intersecting"}
			}
		}
	}
	return nil
}

// spacings computes Dx, Dy, Area and InvArea for every family.
func (g *Geometry) spacings() error {
	nx, ny := g.coords.Nx, g.coords.Ny
	for _, f := range Families {
		fp := g.points[f]
		fp.Dx = familyArray(f, nx, ny)
		fp.Dy = familyArray(f, nx, ny)
		fp.Area = familyArray(f, nx, ny)
		fp.InvArea = familyArray(f, nx, ny)
	}
	clamp := func(v, hi int) int {
		if v < 0 {
			return 0
		}
		if v > hi {
			return hi
		}
		return v
	}

	// Cell centres: distances between opposite faces.
	z := g.points[Z]
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			n := j*nx + i
			z.Dx.Elements[n] = g.dist(U, j, i, U, j, i+1)
			z.Dy.Elements[n] = g.dist(V, j, i, V, j+1, i)
			if g.gridType.Spherical() {
				z.Area.Elements[n] = z.Dx.Elements[n] * z.Dy.Elements[n]
			} else {
				z.Area.Elements[n] = g.CellPolygon(j, i).Area()
			}
		}
	}

	// U faces: distance between the adjacent centres, and face length.
	u := g.points[U]
	for j := 0; j < ny; j++ {
		for i := 0; i <= nx; i++ {
			n := j*(nx+1) + i
			if i > 0 && i < nx {
				u.Dx.Elements[n] = g.dist(Z, j, i-1, Z, j, i)
			} else {
				u.Dx.Elements[n] = z.Dx.Elements[j*nx+clamp(i, nx-1)]
			}
			u.Dy.Elements[n] = g.dist(X, j, i, X, j+1, i)
			u.Area.Elements[n] = u.Dx.Elements[n] * u.Dy.Elements[n]
		}
	}

	// V faces.
	v := g.points[V]
	for j := 0; j <= ny; j++ {
		for i := 0; i < nx; i++ {
			n := j*nx + i
			v.Dx.Elements[n] = g.dist(X, j, i, X, j, i+1)
			if j > 0 && j < ny {
				v.Dy.Elements[n] = g.dist(Z, j-1, i, Z, j, i)
			} else {
				v.Dy.Elements[n] = z.Dy.Elements[clamp(j, ny-1)*nx+i]
			}
			v.Area.Elements[n] = v.Dx.Elements[n] * v.Dy.Elements[n]
		}
	}

	// Corners: distances between the adjacent faces.
	x := g.points[X]
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			n := j*(nx+1) + i
			if i > 0 && i < nx {
				x.Dx.Elements[n] = g.dist(V, j, i-1, V, j, i)
			} else {
				x.Dx.Elements[n] = v.Dx.Elements[j*nx+clamp(i, nx-1)]
			}
			if j > 0 && j < ny {
				x.Dy.Elements[n] = g.dist(U, j-1, i, U, j, i)
			} else {
				x.Dy.Elements[n] = u.Dy.Elements[clamp(j, ny-1)*(nx+1)+i]
			}
			x.Area.Elements[n] = x.Dx.Elements[n] * x.Dy.Elements[n]
		}
	}

	for _, f := range Families {
		fp := g.points[f]
		_, cols := f.Shape(nx, ny)
		for n, a := range fp.Area.Elements {
			dx, dy := fp.Dx.Elements[n], fp.Dy.Elements[n]
			for _, val := range []struct {
				name string
				v    float64
			}{{"dx", dx}, {"dy", dy}, {"area", a}} {
				if !(val.v > 0) || math.IsInf(val.v, 0) {
					return &InvalidGridError{Family: f, Index: Index{n / cols, n % cols},
						Reason: fmt.Sprintf("non-positive %s (%g)", val.name, val.v)}
				}
			}
			fp.InvArea.Elements[n] = 1 / a
		}
	}
	return nil
}

// metricGradients computes the curvature terms DxDy and DyDx at cell
// centres from the face metrics.
func (g *Geometry) metricGradients() {
	nx, ny := g.coords.Nx, g.coords.Ny
	z, u, v := g.points[Z], g.points[U], g.points[V]
	z.DxDy = familyArray(Z, nx, ny)
	z.DyDx = familyArray(Z, nx, ny)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			n := j*nx + i
			z.DxDy.Elements[n] = (v.Dx.Elements[(j+1)*nx+i] - v.Dx.Elements[j*nx+i]) / z.Dy.Elements[n]
			z.DyDx.Elements[n] = (u.Dy.Elements[j*(nx+1)+i+1] - u.Dy.Elements[j*(nx+1)+i]) / z.Dx.Elements[n]
		}
	}
}

// coriolis computes the Coriolis parameter 2Ω·sin(φ) for every family.
func (g *Geometry) coriolis() {
	nx, ny := g.coords.Nx, g.coords.Ny
	f0 := 2 * omega * math.Sin(g.latitude*deg2rad)
	for _, f := range Families {
		fp := g.points[f]
		fp.Cor = familyArray(f, nx, ny)
		if fp.Lat == nil {
			for n := range fp.Cor.Elements {
				fp.Cor.Elements[n] = f0
			}
			continue
		}
		for n, lat := range fp.Lat.Elements {
			fp.Cor.Elements[n] = 2 * omega * math.Sin(lat*deg2rad)
		}
	}
}

// convergence computes the angle [°] between the local grid i axis and
// east at cell centres and corners. It is zero when no geographic
// positions are available.
func (g *Geometry) convergence() {
	nx, ny := g.coords.Nx, g.coords.Ny
	z, x := g.points[Z], g.points[X]
	z.Conv = familyArray(Z, nx, ny)
	z.CosConv = familyArray(Z, nx, ny)
	z.SinConv = familyArray(Z, nx, ny)
	x.Conv = familyArray(X, nx, ny)
	for n := range z.CosConv.Elements {
		z.CosConv.Elements[n] = 1
	}
	if z.Lon == nil {
		return
	}
	angle := func(fp *FamilyPoints, n1, n2 int, lat float64) float64 {
		dlon := fp.Lon.Elements[n2] - fp.Lon.Elements[n1]
		dlat := fp.Lat.Elements[n2] - fp.Lat.Elements[n1]
		return math.Atan2(dlat, dlon*math.Cos(lat*deg2rad)) * rad2deg
	}
	u := g.points[U]
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			n := j*nx + i
			a := angle(u, j*(nx+1)+i, j*(nx+1)+i+1, z.Lat.Elements[n])
			z.Conv.Elements[n] = a
			z.CosConv.Elements[n] = math.Cos(a * deg2rad)
			z.SinConv.Elements[n] = math.Sin(a * deg2rad)
		}
	}
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			i1, i2 := i-1, i+1
			if i1 < 0 {
				i1 = 0
			}
			if i2 > nx {
				i2 = nx
			}
			n := j*(nx+1) + i
			x.Conv.Elements[n] = angle(x, j*(nx+1)+i1, j*(nx+1)+i2, x.Lat.Elements[n])
		}
	}
}

// CellPolygon returns the outline of cell (j, i) in the native
// coordinates of the grid.
func (g *Geometry) CellPolygon(j, i int) geom.Polygon {
	pt := func(jj, ii int) geom.Point {
		a, b := g.native(X, jj, ii)
		return geom.Point{X: a, Y: b}
	}
	return geom.Polygon{{pt(j, i), pt(j, i+1), pt(j+1, i+1), pt(j+1, i)}}
}

// Bounds returns the bounding box of the grid in native coordinates.
func (g *Geometry) Bounds() *geom.Bounds {
	ps := g.coords.Points[X]
	return &geom.Bounds{
		Min: geom.Point{X: floats.Min(ps.A), Y: floats.Min(ps.B)},
		Max: geom.Point{X: floats.Max(ps.A), Y: floats.Max(ps.B)},
	}
}

// TotalArea returns the summed area of all cells [m²].
func (g *Geometry) TotalArea() float64 {
	return floats.Sum(g.points[Z].Area.Elements)
}
