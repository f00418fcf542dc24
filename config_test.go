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
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const testConfig = `
GridType = "cartesian"
Nx = 6
Ny = 4
Dx = 100.0
Dy = 100.0
Latitude = 54.0
DepthExpression = "2 + x / 100"
MinDepth = 0.1
FaceDepthRule = "arithmetic"
Layers = 4
LayerThickness = 2.0
MinLayerThickness = 0.5
Roughness = 0.002
Features = ["baroclinic"]
Checkpoint = "${GETM_TEST_DIR}/restart.nc"

[[OpenBoundaries]]
Side = "east"
Index = 5
Start = 0
End = 3
`

func TestLoadDomainConfig(t *testing.T) {
	os.Setenv("GETM_TEST_DIR", "/data/run")
	defer os.Unsetenv("GETM_TEST_DIR")
	c, err := LoadDomainConfig(strings.NewReader(testConfig))
	if err != nil {
		t.Fatal(err)
	}
	if c.Checkpoint != "/data/run/restart.nc" {
		t.Errorf("checkpoint path: %s", c.Checkpoint)
	}
	want := []BoundaryConfig{{Side: "east", Index: 5, Start: 0, End: 3}}
	if !reflect.DeepEqual(c.OpenBoundaries, want) {
		t.Errorf("open boundaries: %+v", c.OpenBoundaries)
	}
	dz, err := c.LayerThicknessList()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(dz, []float64{2, 2, 2, 2}) {
		t.Errorf("layer thicknesses: %v", dz)
	}
	c.LayerThicknesses = []float64{1, 3}
	if dz, _ = c.LayerThicknessList(); !reflect.DeepEqual(dz, []float64{1, 3}) {
		t.Errorf("explicit layer thicknesses: %v", dz)
	}
}

func TestDomainConfigInit(t *testing.T) {
	c, err := LoadDomainConfig(strings.NewReader(testConfig))
	if err != nil {
		t.Fatal(err)
	}
	c.Checkpoint = ""
	funcs, err := c.InitFuncs()
	if err != nil {
		t.Fatal(err)
	}
	d := &Domain{InitFuncs: funcs, Log: quietLogger()}
	if err := d.Init(); err != nil {
		t.Fatal(err)
	}
	if e := d.Extents(); e != (Extents{Nx: 6, Ny: 4, Nz: 4}) {
		t.Errorf("extents: %+v", e)
	}
	if d.Bathymetry.Rule != ArithmeticMean {
		t.Errorf("face depth rule: %v", d.Bathymetry.Rule)
	}
	if h := d.Bathymetry.Depth(Z).Get(2, 3); different(h, 5.5, 1e-12) {
		t.Errorf("depth at (2, 3): %g", h)
	}
	if m := d.Bathymetry.Mask(Z, 1, 5); m != Boundary {
		t.Errorf("open boundary cell mask: %v", m)
	}
	if !d.Fields.Features().Has(Baroclinic) {
		t.Errorf("features: %v", d.Fields.Features())
	}
	if z0 := d.Bathymetry.Roughness(Z); z0 == nil || z0.Get(0, 0) != 0.002 {
		t.Error("roughness was not set")
	}
}

func TestDomainConfigTopoAndCheckpoint(t *testing.T) {
	dir, err := ioutil.TempDir("", "getm_config")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	// Write a topography and a checkpoint from a domain built in code.
	depth := uniformDepth(6, 4, 3)
	depth.Elements[0] = 0
	topo, err := os.Create(filepath.Join(dir, "topo.nc"))
	if err != nil {
		t.Fatal(err)
	}
	if err := WriteTopo(topo, RegularCartesian(6, 4, 0, 0, 1, 1), Cartesian, depth); err != nil {
		t.Fatal(err)
	}
	topo.Close()
	d1 := testDomain(t, depth, UniformLayers(4, 1), 0.5, Baroclinic)
	temp, _ := d1.Fields.Get("T")
	for i := range temp.Elements {
		temp.Elements[i] = 10 + float64(i%7)
	}
	ckpt, err := os.Create(filepath.Join(dir, "restart.nc"))
	if err != nil {
		t.Fatal(err)
	}
	if err := d1.WriteCheckpoint(ckpt); err != nil {
		t.Fatal(err)
	}
	ckpt.Close()

	os.Setenv("GETM_TEST_DIR", dir)
	defer os.Unsetenv("GETM_TEST_DIR")
	c, err := LoadDomainConfig(strings.NewReader(`
GridType = "1"
Nx = 99
TopoFile = "$GETM_TEST_DIR/topo.nc"
Latitude = 54.0
MinDepth = 0.1
LayerThicknesses = [1.0, 1.0, 1.0, 1.0]
MinLayerThickness = 0.5
Features = ["baroclinic"]
Checkpoint = "$GETM_TEST_DIR/restart.nc"
`))
	if err != nil {
		t.Fatal(err)
	}
	funcs, err := c.InitFuncs()
	if err != nil {
		t.Fatal(err)
	}
	d2 := &Domain{InitFuncs: funcs, Log: quietLogger()}
	if err := d2.Init(); err != nil {
		t.Fatal(err)
	}
	if d2.Geometry.Nx() != 6 {
		t.Errorf("nx should come from the topography, have %d", d2.Geometry.Nx())
	}
	f1, _ := d1.Fields.Get("T")
	f2, err := d2.Fields.Get("T")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(f1.Elements, f2.Elements) {
		t.Error("temperature was not restored from the checkpoint")
	}
}

func TestDomainConfigErrors(t *testing.T) {
	base := func() *DomainConfig {
		return &DomainConfig{GridType: "cartesian", Nx: 2, Ny: 2, Dx: 1, Dy: 1,
			DepthExpression: "5", MinDepth: 0.1, Layers: 2, LayerThickness: 1, MinLayerThickness: 0.5}
	}
	tests := []struct {
		name   string
		modify func(c *DomainConfig)
	}{
		{"grid type", func(c *DomainConfig) { c.GridType = "hexagonal" }},
		{"curvilinear without topography", func(c *DomainConfig) { c.GridType = "planar-curvilinear" }},
		{"spacing", func(c *DomainConfig) { c.Dx = 0 }},
		{"face depth rule", func(c *DomainConfig) { c.FaceDepthRule = "median" }},
		{"side", func(c *DomainConfig) { c.OpenBoundaries = []BoundaryConfig{{Side: "up"}} }},
		{"layers", func(c *DomainConfig) { c.Layers = 0 }},
		{"features", func(c *DomainConfig) { c.Features = []string{"tides"} }},
		{"depth", func(c *DomainConfig) { c.DepthExpression = "" }},
		{"topography", func(c *DomainConfig) { c.TopoFile = "does/not/exist.nc" }},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := base()
			test.modify(c)
			if _, err := c.InitFuncs(); err == nil {
				t.Error("expected an error")
			}
		})
	}
	if _, err := base().InitFuncs(); err != nil {
		t.Errorf("base configuration: %v", err)
	}
}
