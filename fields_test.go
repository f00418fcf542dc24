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
	"reflect"
	"sort"
	"testing"

	"github.com/kr/pretty"
)

func TestFieldStoreMissingFeature(t *testing.T) {
	fs := NewFieldStore()
	if err := fs.Allocate(Extents{Nx: 4, Ny: 3, Nz: 2}, Baroclinic); err != nil {
		t.Fatal(err)
	}
	_, err := fs.Get("spm")
	e, ok := err.(*MissingFieldError)
	if !ok {
		t.Fatalf("have error %v, want *MissingFieldError", err)
	}
	want := &MissingFieldError{Name: "spm", Feature: SuspendedSediment, Features: Baroclinic}
	if diff := pretty.Diff(e, want); len(diff) > 0 {
		t.Errorf("error: %v", diff)
	}
	if fs.Has("spm") {
		t.Error("spm should not exist")
	}
	if _, err := fs.Get("no such field"); err == nil {
		t.Error("unknown field should fail")
	}
}

func TestFieldStoreAllocate(t *testing.T) {
	e := Extents{Nx: 4, Ny: 3, Nz: 2}
	fs := NewFieldStore()
	if err := fs.Allocate(e, AllFeatures); err != nil {
		t.Fatal(err)
	}
	if _, ok := fs.Allocate(e, AllFeatures).(*AlreadyAllocatedError); !ok {
		t.Error("second allocation should give *AlreadyAllocatedError")
	}
	if len(fs.Names()) != len(catalog) {
		t.Errorf("all features: %d fields, catalog has %d", len(fs.Names()), len(catalog))
	}
	for _, test := range []struct {
		name  string
		shape []int
	}{
		{"uu", []int{2, 3, 5}},
		{"vv", []int{2, 4, 4}},
		{"ww", []int{3, 3, 4}},
		{"zwn", []int{3, 3, 4}},
		{"taus", []int{3, 4}},
		{"sf", []int{2, 3, 4}},
		{"tdv_u", []int{2, 3, 5}},
	} {
		f, err := fs.Get(test.name)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(f.DenseArray.Shape, test.shape) {
			t.Errorf("%s: shape %v, want %v", test.name, f.DenseArray.Shape, test.shape)
		}
	}

	fs.Release()
	if fs.Allocated() || fs.Has("uu") {
		t.Error("store is still allocated after release")
	}
	if err := fs.Allocate(e, NoFeatures); err != nil {
		t.Fatalf("allocation after release: %v", err)
	}
	for _, name := range fs.Names() {
		s, _ := LookupField(name)
		if s.Feature != NoFeatures {
			t.Errorf("%s requires %v but was allocated without features", name, s.Feature)
		}
	}
	if fs.Features() != NoFeatures || fs.Extents() != e {
		t.Errorf("store reports features %v and extents %+v", fs.Features(), fs.Extents())
	}
}

func TestFieldStoreInvalid(t *testing.T) {
	fs := NewFieldStore()
	if err := fs.Allocate(Extents{Nx: 4, Ny: 0, Nz: 2}, NoFeatures); err == nil {
		t.Error("empty extents should fail")
	}
	if err := fs.Allocate(Extents{Nx: 4, Ny: 3, Nz: 2}, Feature(1<<10)); err == nil {
		t.Error("unknown feature should fail")
	}
	if fs.Allocated() {
		t.Error("failed allocation left the store allocated")
	}
}

func TestFieldBounds(t *testing.T) {
	fs := NewFieldStore()
	if err := fs.Allocate(Extents{Nx: 4, Ny: 3, Nz: 2}, NoFeatures); err != nil {
		t.Fatal(err)
	}
	f, err := fs.Get("uu")
	if err != nil {
		t.Fatal(err)
	}
	if err := f.Set(1.5, 1, 2, 4); err != nil {
		t.Fatal(err)
	}
	v, err := f.At(1, 2, 4)
	if err != nil {
		t.Fatal(err)
	}
	if v != 1.5 {
		t.Errorf("have %g, want 1.5", v)
	}
	for _, idx := range [][]int{{2, 0, 0}, {0, 3, 0}, {0, 0, 5}, {-1, 0, 0}, {0, 0}} {
		_, err := f.At(idx...)
		e, ok := err.(*OutOfBoundsError)
		if !ok {
			t.Errorf("%v: have error %v, want *OutOfBoundsError", idx, err)
			continue
		}
		if e.Field != "uu" || !reflect.DeepEqual(e.Shape, []int{2, 3, 5}) {
			t.Errorf("%v: error %+v", idx, e)
		}
		if err := f.Set(1, idx...); err == nil {
			t.Errorf("%v: set out of bounds should fail", idx)
		}
	}
}

func TestFeatures(t *testing.T) {
	f, err := ParseFeatures("baroclinic, suspended-sediment", "momentum-terms")
	if err != nil {
		t.Fatal(err)
	}
	if f != Baroclinic|SuspendedSediment|MomentumTerms {
		t.Errorf("have %v", f)
	}
	if s := f.String(); s != "momentum-terms,baroclinic,suspended-sediment" {
		t.Errorf("string: %s", s)
	}
	g, err := ParseFeatures(f.String())
	if err != nil || g != f {
		t.Errorf("round trip: have %v, %v", g, err)
	}
	if n, err := ParseFeatures("none"); err != nil || n != NoFeatures || n.String() != "none" {
		t.Errorf("none: have %v, %v", n, err)
	}
	if _, err := ParseFeatures("tidal"); err == nil {
		t.Error("unknown feature should fail")
	}
	if !AllFeatures.Has(StructureFriction) || Baroclinic.Has(Baroclinic|MomentumTerms) {
		t.Error("Has")
	}
}

func TestCatalog(t *testing.T) {
	c := Catalog()
	names := make([]string, len(c))
	seen := make(map[string]bool)
	for i, s := range c {
		names[i] = s.Name
		if seen[s.Name] {
			t.Errorf("duplicate field %s", s.Name)
		}
		seen[s.Name] = true
		if s.Description == "" {
			t.Errorf("%s has no description", s.Name)
		}
		if s.Feature&^AllFeatures != 0 {
			t.Errorf("%s has unknown feature %v", s.Name, s.Feature)
		}
	}
	if !sort.StringsAreSorted(names) {
		t.Error("catalog is not sorted")
	}
	for _, name := range []string{"hn", "hun", "hvn", "sseo", "ssen", "Dn"} {
		s, ok := LookupField(name)
		if !ok || s.Feature != NoFeatures {
			t.Errorf("%s must always exist", name)
		}
	}
}
