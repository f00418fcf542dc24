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

	"github.com/ctessum/sparse"
	"github.com/sirupsen/logrus"
)

func different(a, b, tolerance float64) bool {
	if 2*math.Abs(a-b)/math.Abs(a+b) > tolerance || math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return false
}

// uniformDepth returns an ny × nx depth array filled with h.
func uniformDepth(nx, ny int, h float64) *sparse.DenseArray {
	d := sparse.ZerosDense(ny, nx)
	for i := range d.Elements {
		d.Elements[i] = h
	}
	return d
}

// quietLogger returns a logger that drops everything below errors.
func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.Level = logrus.ErrorLevel
	return l
}

// testDomain builds an initialized Cartesian domain with 1 m cells.
func testDomain(t *testing.T, depth *sparse.DenseArray, dz []float64, minLayerThickness float64, features Feature, open ...BoundarySegment) *Domain {
	ny, nx := depth.Shape[0], depth.Shape[1]
	d := &Domain{
		Log: quietLogger(),
		InitFuncs: []DomainManipulator{
			BuildGeometry(RegularCartesian(nx, ny, 0, 0, 1, 1), Cartesian, WithLatitude(54)),
			LoadBathymetry(depth, open...),
			ComputeMasks(0.1, MinimumDepth),
			BuildLayers(dz, minLayerThickness),
			AllocateFields(features),
		},
	}
	if err := d.Init(); err != nil {
		t.Fatal(err)
	}
	return d
}

func TestDomainInit(t *testing.T) {
	d := testDomain(t, uniformDepth(4, 3, 5), UniformLayers(5, 1), 0.5, Baroclinic)
	want := Extents{Nx: 4, Ny: 3, Nz: 5}
	if e := d.Extents(); e != want {
		t.Errorf("extents: have %+v, want %+v", e, want)
	}
	for _, name := range []string{"hn", "T", "S", "rho"} {
		if !d.Fields.Has(name) {
			t.Errorf("field %s is not allocated", name)
		}
	}
	hn, err := d.Fields.Get("hn")
	if err != nil {
		t.Fatal(err)
	}
	for k := 0; k < 5; k++ {
		v, err := hn.At(k, 1, 2)
		if err != nil {
			t.Fatal(err)
		}
		if different(v, 1, 1e-12) {
			t.Errorf("hn layer %d: have %g, want 1", k+1, v)
		}
	}
}

func TestDomainInitOrder(t *testing.T) {
	d := &Domain{
		Log: quietLogger(),
		InitFuncs: []DomainManipulator{
			ComputeMasks(0.1, MinimumDepth),
		},
	}
	if err := d.Init(); err == nil {
		t.Error("computing masks without bathymetry should fail")
	}
}

func TestDomainUpdateLayerBounds(t *testing.T) {
	d := testDomain(t, uniformDepth(3, 3, 5), UniformLayers(5, 1), 0.5, NoFeatures)
	elev := uniformDepth(3, 3, -0.7)
	if err := d.UpdateLayerBounds(elev, 0.5); err != nil {
		t.Fatal(err)
	}
	elev2 := uniformDepth(3, 3, -1.2)
	if err := d.UpdateLayerBounds(elev2, 0.5); err != nil {
		t.Fatal(err)
	}
	sseo, _ := d.Fields.Get("sseo")
	ssen, _ := d.Fields.Get("ssen")
	dn, _ := d.Fields.Get("Dn")
	if sseo.Elements[4] != -0.7 || ssen.Elements[4] != -1.2 {
		t.Errorf("elevations: have sseo=%g ssen=%g, want -0.7 and -1.2", sseo.Elements[4], ssen.Elements[4])
	}
	if different(dn.Elements[4], 3.8, 1e-12) {
		t.Errorf("total depth: have %g, want 3.8", dn.Elements[4])
	}
	if k := d.Layers.KMin(Z)[4]; k != 2 {
		t.Errorf("kmin: have %d, want 2", k)
	}
}

func TestDomainCleanup(t *testing.T) {
	d := testDomain(t, uniformDepth(2, 2, 5), UniformLayers(2, 2.5), 0.5, NoFeatures)
	var ran bool
	d.CleanupFuncs = []DomainManipulator{func(d *Domain) error {
		ran = true
		if d.Fields == nil || !d.Fields.Allocated() {
			t.Error("fields were released before the cleanup functions ran")
		}
		return nil
	}}
	fs := d.Fields
	if err := d.Cleanup(); err != nil {
		t.Fatal(err)
	}
	if !ran {
		t.Error("cleanup function did not run")
	}
	if fs.Allocated() || d.Fields != nil || d.Geometry != nil {
		t.Error("domain was not released")
	}
}

func TestDomainInitThinColumn(t *testing.T) {
	depth := uniformDepth(3, 1, 5)
	depth.Elements[1] = 0.3
	d := testDomain(t, depth, UniformLayers(5, 1), 0.5, NoFeatures)
	if d.Fields == nil || !d.Fields.Allocated() {
		t.Fatal("fields were not allocated")
	}
	if m := d.Bathymetry.Mask(Z, 0, 1); m != Wet {
		t.Errorf("mask of the thin column: %v", m)
	}
	if !d.Layers.Dry(0, 1) {
		t.Error("thin column should start dry")
	}
	if kz := d.Layers.KMin(Z); kz[0] != 1 || kz[1] != 0 || kz[2] != 1 {
		t.Errorf("kmin: %v", kz)
	}
	if err := d.UpdateLayerBounds(uniformDepth(3, 1, 0.5), 0.5); err != nil {
		t.Fatal(err)
	}
	if d.Layers.Dry(0, 1) || d.Layers.KMin(Z)[1] != 1 {
		t.Error("thin column did not flood")
	}
}
