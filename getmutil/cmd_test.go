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
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const configExample = "../cmd/getm/configExample.toml"

func tempDir(t *testing.T) string {
	dir, err := ioutil.TempDir("", "getmutil")
	if err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestGridCmd(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	Cfg.Set("config", configExample)
	Cfg.Set("ShapefileOutput", filepath.Join(dir, "grid.shp"))
	Cfg.Set("TopoOutput", filepath.Join(dir, "topo.nc"))
	defer Cfg.Set("TopoOutput", "")
	var out bytes.Buffer
	Root.SetOutput(&out)
	defer Root.SetOutput(nil)
	Root.SetArgs([]string{"grid"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	for _, f := range []string{"grid.shp", "grid.dbf", "grid.shx", "topo.nc"} {
		if _, err := os.Stat(filepath.Join(dir, f)); err != nil {
			t.Error(err)
		}
	}
	if !strings.Contains(out.String(), "0 land cells") {
		t.Errorf("summary: %s", out.String())
	}

	// Build the same grid from the topography file.
	Cfg.Set("TopoFile", filepath.Join(dir, "topo.nc"))
	defer Cfg.Set("TopoFile", "")
	Cfg.Set("ShapefileOutput", filepath.Join(dir, "grid2.shp"))
	Cfg.Set("TopoOutput", "")
	out.Reset()
	Root.SetArgs([]string{"grid"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "depth 2.5 to 9.5 m") {
		t.Errorf("summary from topography: %s", out.String())
	}
}

func TestPlotCmd(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	Cfg.Set("config", configExample)
	for _, v := range PlotVariables {
		path := filepath.Join(dir, v+".png")
		Cfg.Set("PlotVariable", v)
		Cfg.Set("PlotFile", path)
		Root.SetArgs([]string{"plot"})
		if err := Root.Execute(); err != nil {
			t.Fatalf("%s: %v", v, err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Error(err)
		}
	}
	Cfg.Set("PlotVariable", "salinity")
	defer Cfg.Set("PlotVariable", "depth")
	Root.SetArgs([]string{"plot"})
	if err := Root.Execute(); err == nil {
		t.Error("plotting an unknown variable should fail")
	}
}

func TestCheckpointCmd(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	Cfg.Set("config", configExample)
	first := filepath.Join(dir, "first.nc")
	Cfg.Set("CheckpointOutput", first)
	Root.SetArgs([]string{"checkpoint"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}

	// Restore from the first checkpoint and write it again.
	os.Setenv("GETM_CHECKPOINT_DIR", dir)
	defer os.Unsetenv("GETM_CHECKPOINT_DIR")
	Cfg.Set("Checkpoint", "$GETM_CHECKPOINT_DIR/first.nc")
	defer Cfg.Set("Checkpoint", "")
	Cfg.Set("CheckpointOutput", filepath.Join(dir, "second.nc"))
	Root.SetArgs([]string{"checkpoint"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "second.nc")); err != nil {
		t.Error(err)
	}
}

func TestLocateCmd(t *testing.T) {
	Cfg.Set("config", configExample)
	var out bytes.Buffer
	Root.SetOutput(&out)
	defer Root.SetOutput(nil)
	Root.SetArgs([]string{"locate", "1250", "750"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "j=1 i=2") {
		t.Errorf("output: %s", out.String())
	}
	Root.SetArgs([]string{"locate", "-10", "750"})
	if err := Root.Execute(); err == nil {
		t.Error("a point outside of the grid should fail")
	}
	Root.SetArgs([]string{"locate", "ten", "750"})
	if err := Root.Execute(); err == nil {
		t.Error("a non-numeric coordinate should fail")
	}
}

func TestVersionCmd(t *testing.T) {
	var out bytes.Buffer
	Root.SetOutput(&out)
	defer Root.SetOutput(nil)
	Root.SetArgs([]string{"version"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "GETM domain v") {
		t.Errorf("output: %s", out.String())
	}
}
