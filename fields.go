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
	"sort"
	"strings"

	"github.com/ctessum/sparse"
	"github.com/ctessum/unit"
)

// Feature is a set of optional field groups.
type Feature uint

// Optional field groups.
const (
	MomentumTerms Feature = 1 << iota
	StructureFriction
	Baroclinic
	SuspendedSediment

	// NoFeatures enables only the fields that always exist.
	NoFeatures Feature = 0
	// AllFeatures enables every optional field group.
	AllFeatures = MomentumTerms | StructureFriction | Baroclinic | SuspendedSediment
)

var featureNames = []struct {
	f    Feature
	name string
}{
	{MomentumTerms, "momentum-terms"},
	{StructureFriction, "structure-friction"},
	{Baroclinic, "baroclinic"},
	{SuspendedSediment, "suspended-sediment"},
}

func (f Feature) String() string {
	if f == NoFeatures {
		return "none"
	}
	var s []string
	for _, n := range featureNames {
		if f&n.f != 0 {
			s = append(s, n.name)
		}
	}
	if rest := f &^ AllFeatures; rest != 0 {
		s = append(s, fmt.Sprintf("Feature(%#x)", uint(rest)))
	}
	return strings.Join(s, ",")
}

// Has reports whether all features in g are enabled in f.
func (f Feature) Has(g Feature) bool { return f&g == g }

// ParseFeatures parses a set of feature names, such as returned by
// Feature.String. "none" and the empty string are accepted.
func ParseFeatures(names ...string) (Feature, error) {
	var f Feature
	for _, ns := range names {
		for _, name := range strings.Split(ns, ",") {
			name = strings.TrimSpace(name)
			if name == "" || name == "none" {
				continue
			}
			found := false
			for _, n := range featureNames {
				if n.name == name {
					f |= n.f
					found = true
					break
				}
			}
			if !found {
				return 0, fmt.Errorf("getm: invalid feature %q", name)
			}
		}
	}
	return f, nil
}

// Level specifies the vertical extent of a field.
type Level int

// Vertical extents.
const (
	// Surface fields are two-dimensional.
	Surface Level = iota
	// Centers fields have one value per layer.
	Centers
	// Interfaces fields have one value per layer interface (nz+1).
	Interfaces
)

func (l Level) String() string {
	switch l {
	case Surface:
		return "surface"
	case Centers:
		return "centers"
	case Interfaces:
		return "interfaces"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// FieldSpec describes one array of the field store.
type FieldSpec struct {
	Name        string
	Family      Family
	Level       Level
	Feature     Feature // NoFeatures if the field always exists
	Units       unit.Dimensions
	Description string
}

// Shape returns the extents of the field, (nz', ny', nx') for 3-D
// fields and (ny', nx') for surface fields.
func (s FieldSpec) Shape(e Extents) []int {
	rows, cols := s.Family.Shape(e.Nx, e.Ny)
	switch s.Level {
	case Centers:
		return []int{e.Nz, rows, cols}
	case Interfaces:
		return []int{e.Nz + 1, rows, cols}
	default:
		return []int{rows, cols}
	}
}

// Catalog returns the specifications of all fields, sorted by name.
func Catalog() []FieldSpec {
	c := append([]FieldSpec(nil), catalog...)
	sort.Slice(c, func(i, j int) bool { return c[i].Name < c[j].Name })
	return c
}

// LookupField returns the specification of the named field.
func LookupField(name string) (FieldSpec, bool) {
	for _, s := range catalog {
		if s.Name == name {
			return s, true
		}
	}
	return FieldSpec{}, false
}

// Extents are the dimensions of a domain: Nx × Ny cells and Nz layers.
type Extents struct {
	Nx, Ny, Nz int
}

// Field is an allocated array together with its specification. The
// embedded DenseArray gives unchecked access for hot loops; At and Set
// check their indices.
type Field struct {
	FieldSpec
	*sparse.DenseArray
}

// At returns the value at the given index.
func (f *Field) At(index ...int) (float64, error) {
	if err := f.check(index); err != nil {
		return 0, err
	}
	return f.Elements[f.Index1d(index...)], nil
}

// Set sets the value at the given index.
func (f *Field) Set(val float64, index ...int) error {
	if err := f.check(index); err != nil {
		return err
	}
	f.Elements[f.Index1d(index...)] = val
	return nil
}

func (f *Field) check(index []int) error {
	shape := f.DenseArray.Shape
	ok := len(index) == len(shape)
	for i := 0; ok && i < len(index); i++ {
		ok = index[i] >= 0 && index[i] < shape[i]
	}
	if !ok {
		return &OutOfBoundsError{Field: f.Name, Index: append([]int(nil), index...),
			Shape: append([]int(nil), shape...)}
	}
	return nil
}

// FieldStore holds the prognostic and diagnostic arrays of a domain.
// Which arrays exist is decided once, at allocation, by the enabled
// feature set. Each field has a single writer; the store does no locking.
type FieldStore struct {
	ext      Extents
	features Feature
	fields   map[string]*Field
}

// NewFieldStore returns an unallocated field store.
func NewFieldStore() *FieldStore { return new(FieldStore) }

// Allocate creates zero-filled arrays for every field that is enabled
// under features.
func (fs *FieldStore) Allocate(ext Extents, features Feature) error {
	if fs.fields != nil {
		return &AlreadyAllocatedError{}
	}
	if ext.Nx < 1 || ext.Ny < 1 || ext.Nz < 1 {
		return fmt.Errorf("getm: invalid field store extents %+v", ext)
	}
	if rest := features &^ AllFeatures; rest != 0 {
		return fmt.Errorf("getm: unknown features %v", rest)
	}
	fields := make(map[string]*Field)
	for _, s := range catalog {
		if !features.Has(s.Feature) {
			continue
		}
		fields[s.Name] = &Field{FieldSpec: s, DenseArray: sparse.ZerosDense(s.Shape(ext)...)}
	}
	fs.ext, fs.features, fs.fields = ext, features, fields
	return nil
}

// Allocated reports whether the store is allocated.
func (fs *FieldStore) Allocated() bool { return fs.fields != nil }

// Extents returns the extents the store was allocated with.
func (fs *FieldStore) Extents() Extents { return fs.ext }

// Features returns the enabled feature set.
func (fs *FieldStore) Features() Feature { return fs.features }

// Get returns the named field. It returns a *MissingFieldError if the
// field is not part of the catalog or its feature is not enabled.
func (fs *FieldStore) Get(name string) (*Field, error) {
	if f, ok := fs.fields[name]; ok {
		return f, nil
	}
	e := &MissingFieldError{Name: name, Features: fs.features}
	if s, ok := LookupField(name); ok {
		e.Feature = s.Feature
	}
	return nil, e
}

// Has reports whether the named field exists.
func (fs *FieldStore) Has(name string) bool {
	_, ok := fs.fields[name]
	return ok
}

// Names returns the names of all allocated fields in sorted order.
func (fs *FieldStore) Names() []string {
	n := make([]string, 0, len(fs.fields))
	for name := range fs.fields {
		n = append(n, name)
	}
	sort.Strings(n)
	return n
}

// Release frees all fields. The store may then be allocated again.
func (fs *FieldStore) Release() {
	fs.fields = nil
	fs.features = NoFeatures
	fs.ext = Extents{}
}
