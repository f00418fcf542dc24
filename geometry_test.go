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
	"math"
	"testing"
)

const testProj = "+proj=lcc +lat_1=33.000000 +lat_2=45.000000 +lat_0=40.000000 +lon_0=-97.000000 +x_0=0 +y_0=0 +a=6370997.000000 +b=6370997.000000 +to_meter=1"

func TestRegularCartesianMetrics(t *testing.T) {
	g, err := NewGeometry(RegularCartesian(3, 2, 0, 0, 100, 50), Cartesian, WithLatitude(54))
	if err != nil {
		t.Fatal(err)
	}
	if g.Dx != 100 || g.Dy != 50 || g.DLon != -1 || g.DLat != -1 {
		t.Errorf("spacings: have dx=%g dy=%g dlon=%g dlat=%g", g.Dx, g.Dy, g.DLon, g.DLat)
	}
	f0 := 2 * omega * math.Sin(54*deg2rad)
	for _, f := range Families {
		p := g.Points(f)
		rows, cols := f.Shape(3, 2)
		if p.Dx.Shape[0] != rows || p.Dx.Shape[1] != cols {
			t.Errorf("%v: shape %v, want [%d %d]", f, p.Dx.Shape, rows, cols)
		}
		for n := range p.Dx.Elements {
			if different(p.Dx.Elements[n], 100, 1e-12) || different(p.Dy.Elements[n], 50, 1e-12) {
				t.Errorf("%v %d: dx=%g dy=%g", f, n, p.Dx.Elements[n], p.Dy.Elements[n])
			}
			if different(p.Area.Elements[n], 5000, 1e-12) || different(p.InvArea.Elements[n], 1./5000, 1e-12) {
				t.Errorf("%v %d: area=%g invarea=%g", f, n, p.Area.Elements[n], p.InvArea.Elements[n])
			}
			if p.Cor.Elements[n] != f0 {
				t.Errorf("%v %d: coriolis %g, want %g", f, n, p.Cor.Elements[n], f0)
			}
		}
		if p.Lon != nil || p.Lat != nil {
			t.Errorf("%v: geographic positions without projection", f)
		}
	}
	if a := g.TotalArea(); different(a, 30000, 1e-12) {
		t.Errorf("total area: have %g, want 30000", a)
	}
	b := g.Bounds()
	if b.Min.X != 0 || b.Min.Y != 0 || b.Max.X != 300 || b.Max.Y != 100 {
		t.Errorf("bounds: have %+v", b)
	}
}

func TestRegularSphericalMetrics(t *testing.T) {
	g, err := NewGeometry(RegularSpherical(2, 2, 10, 50, 0.5, 0.25), Spherical)
	if err != nil {
		t.Fatal(err)
	}
	if g.DLon != 0.5 || g.DLat != 0.25 || g.Dx != -1 {
		t.Errorf("spacings: have dlon=%g dlat=%g dx=%g", g.DLon, g.DLat, g.Dx)
	}
	z := g.Points(Z)
	dy := EarthRadius * 0.25 * deg2rad
	for n, lat := range z.Lat.Elements {
		if different(z.Dy.Elements[n], dy, 1e-9) {
			t.Errorf("dy %d: have %g, want %g", n, z.Dy.Elements[n], dy)
		}
		dx := EarthRadius * 0.5 * deg2rad * math.Cos(lat*deg2rad)
		if different(z.Dx.Elements[n], dx, 1e-4) {
			t.Errorf("dx %d: have %g, want %g", n, z.Dx.Elements[n], dx)
		}
		if different(z.Cor.Elements[n], 2*omega*math.Sin(lat*deg2rad), 1e-12) {
			t.Errorf("coriolis %d: have %g", n, z.Cor.Elements[n])
		}
	}
	if z.Lat.Elements[0] != 50.125 || z.Lon.Elements[1] != 10.75 {
		t.Errorf("centre positions: have lat %g lon %g", z.Lat.Elements[0], z.Lon.Elements[1])
	}
	if z.X != nil {
		t.Error("planar positions without projection")
	}
}

func TestMetricGradients(t *testing.T) {
	g, err := NewGeometry(RegularCartesian(3, 2, 0, 0, 100, 50), Cartesian)
	if err != nil {
		t.Fatal(err)
	}
	z := g.Points(Z)
	for n := range z.DxDy.Elements {
		if z.DxDy.Elements[n] != 0 || z.DyDx.Elements[n] != 0 {
			t.Errorf("cartesian %d: dxdy=%g dydx=%g", n, z.DxDy.Elements[n], z.DyDx.Elements[n])
		}
	}
	if different(g.InvCellArea, 1./5000, 1e-15) {
		t.Errorf("inverse cell area: have %g", g.InvCellArea)
	}

	g, err = NewGeometry(RegularSpherical(2, 2, 10, 50, 0.5, 0.25), Spherical)
	if err != nil {
		t.Fatal(err)
	}
	if g.InvCellArea != -1 {
		t.Errorf("spherical inverse cell area: have %g, want -1", g.InvCellArea)
	}
	z, v := g.Points(Z), g.Points(V)
	for j := 0; j < 2; j++ {
		for i := 0; i < 2; i++ {
			n := j*2 + i
			want := (v.Dx.Elements[(j+1)*2+i] - v.Dx.Elements[j*2+i]) / z.Dy.Elements[n]
			if z.DxDy.Elements[n] >= 0 || different(z.DxDy.Elements[n], want, 1e-12) {
				t.Errorf("spherical dxdy %d: have %g, want %g < 0", n, z.DxDy.Elements[n], want)
			}
			if z.DyDx.Elements[n] != 0 {
				t.Errorf("spherical dydx %d: have %g", n, z.DyDx.Elements[n])
			}
		}
	}
}

func TestProjectedGeometry(t *testing.T) {
	g, err := NewGeometry(RegularCartesian(2, 2, 0, 0, 1000, 1000), Cartesian, WithProjection(testProj))
	if err != nil {
		t.Fatal(err)
	}
	x := g.Points(X)
	if math.Abs(x.Lon.Elements[0]+97) > 1e-6 || math.Abs(x.Lat.Elements[0]-40) > 0.5 {
		t.Errorf("origin: have (%g, %g), want near (-97, 40)", x.Lon.Elements[0], x.Lat.Elements[0])
	}
	z := g.Points(Z)
	for n, lat := range z.Lat.Elements {
		if z.Cor.Elements[n] != 2*omega*math.Sin(lat*deg2rad) {
			t.Errorf("coriolis %d does not follow latitude %g", n, lat)
		}
		if math.Abs(z.Conv.Elements[n]) > 1 {
			t.Errorf("convergence %d: %g° is too large near the central meridian", n, z.Conv.Elements[n])
		}
		if different(z.CosConv.Elements[n], math.Cos(z.Conv.Elements[n]*deg2rad), 1e-12) {
			t.Errorf("cos convergence %d", n)
		}
	}
}

// skewedCorners returns the corners of a sheared, stretched nx × ny grid.
func skewedCorners(nx, ny int) (a, b []float64) {
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			fi, fj := float64(i), float64(j)
			a = append(a, 100*fi+15*fj+2*fi*fj)
			b = append(b, 80*fj+10*fi+0.5*fi*fi)
		}
	}
	return a, b
}

func TestRecomputeDeterministic(t *testing.T) {
	a, b := skewedCorners(4, 3)
	c, err := CurvilinearFromCorners(4, 3, a, b)
	if err != nil {
		t.Fatal(err)
	}
	g, err := NewGeometry(c, PlanarCurvilinear, WithLatitude(30))
	if err != nil {
		t.Fatal(err)
	}
	type snapshot map[string][]float64
	take := func() [4]snapshot {
		var s [4]snapshot
		for _, f := range Families {
			p := g.Points(f)
			s[f] = snapshot{
				"dx":   append([]float64(nil), p.Dx.Elements...),
				"dy":   append([]float64(nil), p.Dy.Elements...),
				"area": append([]float64(nil), p.Area.Elements...),
				"cor":  append([]float64(nil), p.Cor.Elements...),
			}
		}
		return s
	}
	before := take()
	if err := g.Recompute(); err != nil {
		t.Fatal(err)
	}
	after := take()
	for _, f := range Families {
		for name, v := range before[f] {
			for n := range v {
				if math.Float64bits(v[n]) != math.Float64bits(after[f][name][n]) {
					t.Errorf("%v %s[%d] changed: %v != %v", f, name, n, v[n], after[f][name][n])
				}
			}
		}
	}
	if g.Dx != -1 || g.Dy != -1 {
		t.Errorf("curvilinear grid has regular spacings %g, %g", g.Dx, g.Dy)
	}
}

func TestCurvilinearFromCorners(t *testing.T) {
	a, b := skewedCorners(2, 2)
	c, err := CurvilinearFromCorners(2, 2, a, b)
	if err != nil {
		t.Fatal(err)
	}
	// Z(0,0) is the mean of corners (0,0), (0,1), (1,0) and (1,1).
	wantA := 0.25 * (a[0] + a[1] + a[3] + a[4])
	wantB := 0.25 * (b[0] + b[1] + b[3] + b[4])
	if c.Points[Z].A[0] != wantA || c.Points[Z].B[0] != wantB {
		t.Errorf("Z(0,0): have (%g, %g), want (%g, %g)", c.Points[Z].A[0], c.Points[Z].B[0], wantA, wantB)
	}
	// U(0,0) is the mean of corners (0,0) and (1,0).
	if u := c.Points[U].A[0]; u != 0.5*(a[0]+a[3]) {
		t.Errorf("U(0,0): have %g, want %g", u, 0.5*(a[0]+a[3]))
	}
	if _, err := CurvilinearFromCorners(2, 2, a[1:], b); err == nil {
		t.Error("short corner arrays should fail")
	}
}

func TestSelfIntersectingCell(t *testing.T) {
	// Corners (0,1) and (1,1) are swapped, giving a bow tie.
	c, err := CurvilinearFromCorners(1, 1, []float64{0, 1, 0, 1}, []float64{0, 1, 1, 0})
	if err != nil {
		t.Fatal(err)
	}
	_, err = NewGeometry(c, PlanarCurvilinear)
	e, ok := err.(*InvalidGridError)
	if !ok {
		t.Fatalf("have error %v, want *InvalidGridError", err)
	}
	if e.Family != Z || e.Index != (Index{0, 0}) {
		t.Errorf("error location: have %v %v", e.Family, e.Index)
	}
}

func TestInvalidGrid(t *testing.T) {
	t.Run("nan", func(t *testing.T) {
		c := RegularCartesian(3, 3, 0, 0, 1, 1)
		c.Points[U].B[5] = math.NaN()
		_, err := NewGeometry(c, Cartesian)
		e, ok := err.(*InvalidGridError)
		if !ok {
			t.Fatalf("have error %v, want *InvalidGridError", err)
		}
		if e.Family != U || e.Index != (Index{1, 1}) {
			t.Errorf("error location: have %v %v", e.Family, e.Index)
		}
	})
	t.Run("type", func(t *testing.T) {
		if _, err := NewGeometry(RegularCartesian(3, 3, 0, 0, 1, 1), GridType(7)); err == nil {
			t.Error("invalid grid type should fail")
		}
	})
	t.Run("extent", func(t *testing.T) {
		c := RegularCartesian(3, 3, 0, 0, 1, 1)
		c.Points[V].A = c.Points[V].A[1:]
		if _, ok := func() error { _, err := NewGeometry(c, Cartesian); return err }().(*InvalidGridError); !ok {
			t.Error("inconsistent extents should give *InvalidGridError")
		}
	})
	t.Run("rectilinear", func(t *testing.T) {
		c := RegularCartesian(3, 3, 0, 0, 1, 1)
		c.Points[X].A[5] += 0.1
		if _, err := NewGeometry(c, Cartesian); err == nil {
			t.Error("non-rectilinear coordinates of a Cartesian grid should fail")
		}
	})
	t.Run("latitude", func(t *testing.T) {
		if _, err := NewGeometry(RegularSpherical(2, 2, 0, 89.5, 1, 1), Spherical); err == nil {
			t.Error("latitudes beyond 90° should fail")
		}
	})
	t.Run("zero spacing", func(t *testing.T) {
		if _, err := NewGeometry(RegularCartesian(2, 2, 0, 0, 0, 1), Cartesian); err == nil {
			t.Error("zero spacing should fail")
		}
	})
}

func TestParseGridType(t *testing.T) {
	for _, test := range []struct {
		in   string
		want GridType
	}{
		{"cartesian", Cartesian},
		{"2", Spherical},
		{"planar-curvilinear", PlanarCurvilinear},
		{"4", SphericalCurvilinear},
	} {
		have, err := ParseGridType(test.in)
		if err != nil {
			t.Fatal(err)
		}
		if have != test.want {
			t.Errorf("%s: have %v, want %v", test.in, have, test.want)
		}
	}
	if _, err := ParseGridType("5"); err == nil {
		t.Error("grid type 5 should fail")
	}
}
