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

	"github.com/ctessum/cdf"
	"github.com/platipodium/mossco-getm/internal/hash"
)

// Checkpoint dimension names.
var checkpointDims = []string{"x", "y", "z", "x_stag", "y_stag", "z_stag"}

func familyDims(f Family) []string {
	switch f {
	case U:
		return []string{"y", "x_stag"}
	case V:
		return []string{"y_stag", "x"}
	case X:
		return []string{"y_stag", "x_stag"}
	default:
		return []string{"y", "x"}
	}
}

func fieldDims(s FieldSpec) []string {
	d := familyDims(s.Family)
	switch s.Level {
	case Centers:
		return append([]string{"z"}, d...)
	case Interfaces:
		return append([]string{"z_stag"}, d...)
	default:
		return d
	}
}

type indexVariable struct {
	name string
	v    []int
}

// indexVariables returns the layer index arrays of family f together
// with their checkpoint variable names.
func (l *LayerIndex) indexVariables(f Family) []indexVariable {
	name := strings.ToLower(f.String())
	return []indexVariable{
		{"kmin_" + name, l.kmin[f]},
		{"kmin_pmz_" + name, l.kminPMZ[f]},
		{"kmax_" + name, l.kmax[f]},
	}
}

// GridKey returns a key that identifies the static grid input of the
// domain: coordinates, grid type, depths, masks and layer thicknesses.
func (d *Domain) GridKey() string {
	g, b := d.Geometry, d.Bathymetry
	c := g.Coordinates()
	objects := []interface{}{int(g.Type()), c.Nx, c.Ny, g.Projection()}
	for _, f := range Families {
		objects = append(objects, c.Points[f].A, c.Points[f].B)
	}
	objects = append(objects, b.Depth(Z).Elements, b.MinDepth, int(b.Rule))
	for _, f := range Families {
		m := make([]byte, len(b.Masks(f)))
		for i, v := range b.Masks(f) {
			m[i] = byte(v)
		}
		objects = append(objects, m)
	}
	if d.Layers != nil {
		objects = append(objects, d.Layers.Thicknesses(), d.Layers.MinLayerThickness)
	}
	return hash.Key(objects...)
}

// WriteCheckpoint writes every allocated field, the layer indices and
// the dry flags to w in netCDF format.
func (d *Domain) WriteCheckpoint(w *os.File) error {
	if d.Layers == nil || d.Fields == nil || !d.Fields.Allocated() {
		return fmt.Errorf("getm: domain must be fully initialized before writing a checkpoint")
	}
	e := d.Extents()
	h := cdf.NewHeader(checkpointDims, []int{e.Nx, e.Ny, e.Nz, e.Nx + 1, e.Ny + 1, e.Nz + 1})
	h.AddAttribute("", "comment", "GETM domain checkpoint")
	h.AddAttribute("", "version", Version)
	h.AddAttribute("", "features", d.Fields.Features().String())
	h.AddAttribute("", "grid_hash", d.GridKey())
	h.AddAttribute("", "nx", []int32{int32(e.Nx)})
	h.AddAttribute("", "ny", []int32{int32(e.Ny)})
	h.AddAttribute("", "nz", []int32{int32(e.Nz)})

	names := d.Fields.Names()
	for _, name := range names {
		fld, _ := d.Fields.Get(name)
		h.AddVariable(name, fieldDims(fld.FieldSpec), []float64{0})
		h.AddAttribute(name, "description", fld.Description)
		h.AddAttribute(name, "units", unitsString(fld.FieldSpec))
		h.AddAttribute(name, "family", fld.Family.String())
	}
	var indexVars []indexVariable
	for _, f := range Families {
		for _, iv := range d.Layers.indexVariables(f) {
			h.AddVariable(iv.name, familyDims(f), []int32{0})
			h.AddAttribute(iv.name, "description", "layer index, 0 where no layer is active")
			indexVars = append(indexVars, iv)
		}
	}
	h.AddVariable("dry", familyDims(Z), []int32{0})
	h.AddAttribute("dry", "description", "1 for columns that have been reclassified dry")
	h.Define()

	f, err := cdf.Create(w, h)
	if err != nil {
		return fmt.Errorf("getm: creating checkpoint: %v", err)
	}
	for _, name := range names {
		fld, _ := d.Fields.Get(name)
		if err := writeVariable(f, name, fld.Elements); err != nil {
			return err
		}
	}
	for _, iv := range indexVars {
		if err := writeVariable(f, iv.name, toInt32(iv.v)); err != nil {
			return err
		}
	}
	dry := make([]int32, len(d.Layers.dry))
	for i, v := range d.Layers.dry {
		if v {
			dry[i] = 1
		}
	}
	if err := writeVariable(f, "dry", dry); err != nil {
		return err
	}
	if err := cdf.UpdateNumRecs(w); err != nil {
		return fmt.Errorf("getm: finishing checkpoint: %v", err)
	}
	return nil
}

// unitsString returns the units of s in netCDF attribute form.
func unitsString(s FieldSpec) string {
	if u := s.Units.String(); u != "" {
		return u
	}
	return "1"
}

func writeVariable(f *cdf.File, name string, data interface{}) error {
	end := f.Header.Lengths(name)
	start := make([]int, len(end))
	if _, err := f.Writer(name, start, end).Write(data); err != nil {
		return fmt.Errorf("getm: writing variable %s to checkpoint: %v", name, err)
	}
	return nil
}

func toInt32(v []int) []int32 {
	o := make([]int32, len(v))
	for i, x := range v {
		o[i] = int32(x)
	}
	return o
}

// ReadCheckpoint restores the fields, layer indices and dry flags of the
// domain from a checkpoint written by WriteCheckpoint. The geometry,
// bathymetry and layers must already be built from the same grid input;
// the field store is allocated with the checkpoint's features if it is
// not yet allocated. The domain is left unchanged if the checkpoint
// cannot be read completely.
func (d *Domain) ReadCheckpoint(rw cdf.ReaderWriterAt) error {
	if d.Layers == nil {
		return fmt.Errorf("getm: layers must be built before reading a checkpoint")
	}
	f, err := cdf.Open(rw)
	if err != nil {
		return fmt.Errorf("getm: opening checkpoint: %v", err)
	}
	key, _ := f.Header.GetAttribute("", "grid_hash").(string)
	if want := d.GridKey(); key != want {
		return fmt.Errorf("getm: checkpoint grid hash %q does not match domain grid hash %q", key, want)
	}
	e := d.Extents()
	for _, dim := range []struct {
		name string
		n    int
	}{{"nx", e.Nx}, {"ny", e.Ny}, {"nz", e.Nz}} {
		v, ok := f.Header.GetAttribute("", dim.name).([]int32)
		if !ok || len(v) != 1 || int(v[0]) != dim.n {
			return fmt.Errorf("getm: checkpoint %s is %v, domain has %d", dim.name, f.Header.GetAttribute("", dim.name), dim.n)
		}
	}
	fs, _ := f.Header.GetAttribute("", "features").(string)
	features, err := ParseFeatures(fs)
	if err != nil {
		return fmt.Errorf("getm: reading checkpoint: %v", err)
	}
	// A store that is not yet allocated is replaced by a new one only if
	// the whole checkpoint can be read.
	store := d.Fields
	fresh := store == nil || !store.Allocated()
	if fresh {
		store = NewFieldStore()
		if err := store.Allocate(e, features); err != nil {
			return err
		}
	} else if store.Features() != features {
		return fmt.Errorf("getm: checkpoint features %v do not match domain features %v", features, store.Features())
	}

	names := store.Names()
	data := make(map[string][]float64, len(names))
	for _, name := range names {
		fld, _ := store.Get(name)
		buf := fld.Elements
		if !fresh {
			buf = make([]float64, len(fld.Elements))
		}
		if err := readVariable(f, name, fld.DenseArray.Shape, buf); err != nil {
			return err
		}
		data[name] = buf
	}
	index := make(map[string][]int32)
	for _, fam := range Families {
		rows, cols := fam.Shape(e.Nx, e.Ny)
		for _, iv := range d.Layers.indexVariables(fam) {
			buf := make([]int32, len(iv.v))
			if err := readVariable(f, iv.name, []int{rows, cols}, buf); err != nil {
				return err
			}
			index[iv.name] = buf
		}
	}
	dry := make([]int32, e.Nx*e.Ny)
	if err := readVariable(f, "dry", []int{e.Ny, e.Nx}, dry); err != nil {
		return err
	}
	hn, ok := data["hn"]
	if !ok {
		return fmt.Errorf("getm: checkpoint has no layer thickness hn")
	}

	if fresh {
		d.Fields = store
		d.Layers.fields = store
	} else {
		for _, name := range names {
			fld, _ := store.Get(name)
			copy(fld.Elements, data[name])
		}
	}
	for _, fam := range Families {
		for _, iv := range d.Layers.indexVariables(fam) {
			for i, x := range index[iv.name] {
				iv.v[i] = int(x)
			}
		}
	}
	for i, v := range dry {
		d.Layers.dry[i] = v != 0
	}
	copy(d.Layers.thickness.Elements, hn)
	return nil
}

func readVariable(f *cdf.File, name string, shape []int, buf interface{}) error {
	lengths := f.Header.Lengths(name)
	if len(lengths) != len(shape) {
		return fmt.Errorf("getm: checkpoint variable %s is missing or has %d dimensions, want %d", name, len(lengths), len(shape))
	}
	for i := range shape {
		if lengths[i] != shape[i] {
			return fmt.Errorf("getm: checkpoint variable %s has shape %v, want %v", name, lengths, shape)
		}
	}
	if _, err := f.Reader(name, nil, nil).Read(buf); err != nil {
		return fmt.Errorf("getm: reading checkpoint variable %s: %v", name, err)
	}
	return nil
}
