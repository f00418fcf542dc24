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

	"github.com/ctessum/sparse"
)

// UniformLayers returns kmax layer thicknesses of dz each.
func UniformLayers(kmax int, dz float64) []float64 {
	l := make([]float64, kmax)
	for k := range l {
		l[k] = dz
	}
	return l
}

// LayerIndex tracks, for every column, face and corner, the range of
// vertical layers that currently hold water. Layers are numbered from
// the surface: layer 1 is the surface layer and layer Nz() the deepest.
// A layer index of 0 marks a point without active layers (land or dry).
type LayerIndex struct {
	b  *Bathymetry
	dz []float64
	// bottom[k] is the still-water depth of the bottom of layer k+1 [m].
	bottom []float64

	// MinLayerThickness is the threshold [m] below which a layer is
	// merged with its neighbour.
	MinLayerThickness float64

	kmin, kminPMZ, kmax [4][]int
	dry                 []bool

	// thickness holds the folded layer thicknesses at cell centres,
	// shaped (nz, ny, nx).
	thickness *sparse.DenseArray

	fields *FieldStore
}

// NewLayerIndex creates the vertical layer structure with the given
// layer thicknesses [m] (surface first) and computes the static deepest
// layer of every point. Active layer ranges are set by UpdateLayerBounds.
func NewLayerIndex(b *Bathymetry, dz []float64, minLayerThickness float64) (*LayerIndex, error) {
	if !b.computed {
		return nil, fmt.Errorf("getm: masks must be computed before creating layers")
	}
	if len(dz) == 0 {
		return nil, fmt.Errorf("getm: at least one layer is required")
	}
	if !(minLayerThickness > 0) {
		return nil, fmt.Errorf("getm: minimum layer thickness %g must be positive", minLayerThickness)
	}
	l := &LayerIndex{
		b:                 b,
		dz:                append([]float64(nil), dz...),
		bottom:            make([]float64, len(dz)),
		MinLayerThickness: minLayerThickness,
	}
	var s float64
	for k, d := range dz {
		if !(d > 0) || math.IsInf(d, 0) {
			return nil, fmt.Errorf("getm: thickness %g of layer %d must be positive", d, k+1)
		}
		s += d
		l.bottom[k] = s
	}
	nx, ny := b.g.Nx(), b.g.Ny()
	for _, f := range Families {
		n := f.Len(nx, ny)
		l.kmin[f] = make([]int, n)
		l.kminPMZ[f] = make([]int, n)
		l.kmax[f] = make([]int, n)
		h := b.depth[f].Elements
		for i, m := range b.mask[f] {
			if m != Land {
				l.kmax[f][i] = l.deepest(h[i])
			}
		}
	}
	l.dry = make([]bool, nx*ny)
	l.thickness = sparse.ZerosDense(len(dz), ny, nx)
	return l, nil
}

// deepest returns the layer containing the bed at depth h. A bottom
// remnant thinner than the minimum layer thickness is merged into the
// layer above.
func (l *LayerIndex) deepest(h float64) int {
	k := len(l.bottom)
	for i, b := range l.bottom {
		if b >= h {
			k = i + 1
			break
		}
	}
	if k > 1 && h-l.bottom[k-2] < l.MinLayerThickness {
		k--
	}
	return k
}

// wet returns the wet thickness of layer k (1-based) in a column of
// depth h and deepest layer kmax with surface elevation eta.
func (l *LayerIndex) wet(k, kmax int, h, eta float64) float64 {
	if k > kmax {
		return 0
	}
	top := math.Inf(1)
	if k > 1 {
		top = -l.bottom[k-2]
	}
	bot := -l.bottom[k-1]
	if k == kmax {
		bot = -h
	}
	return math.Max(0, math.Min(top, eta)-math.Max(bot, -h))
}

// Nz returns the number of layers.
func (l *LayerIndex) Nz() int { return len(l.dz) }

// Thicknesses returns the still-water layer thicknesses, surface first.
func (l *LayerIndex) Thicknesses() []float64 { return l.dz }

// KMin returns the topmost active layer of every point of family f
// (GETM kmin, kumin, kvmin, kxmin) after merging thin surface layers.
func (l *LayerIndex) KMin(f Family) []int { return l.kmin[f] }

// KMinPreMerge returns the first layer holding any water at every point
// of family f, before thin layers are merged (GETM kmin_pmz etc.).
func (l *LayerIndex) KMinPreMerge(f Family) []int { return l.kminPMZ[f] }

// KMax returns the deepest layer of every point of family f.
func (l *LayerIndex) KMax(f Family) []int { return l.kmax[f] }

// Thickness returns the folded layer thicknesses at cell centres,
// shaped (nz, ny, nx). Layers above KMin have zero thickness.
func (l *LayerIndex) Thickness() *sparse.DenseArray { return l.thickness }

// Dry reports whether column (j, i) has been reclassified dry.
func (l *LayerIndex) Dry(j, i int) bool { return l.dry[j*l.b.g.Nx()+i] }

// Attach makes UpdateLayerBounds write the layer thicknesses into the
// hn, hun and hvn fields of fs, and writes the current thicknesses.
func (l *LayerIndex) Attach(fs *FieldStore) error {
	l.fields = fs
	return l.writeFields()
}

// ReclassifyDry marks the given columns dry. Dry columns have no active
// layers and are excluded from the faces around them until their total
// depth reaches the minimum layer thickness again.
func (l *LayerIndex) ReclassifyDry(cols ...Index) error {
	nx, ny := l.b.g.Nx(), l.b.g.Ny()
	for _, c := range cols {
		if c.J < 0 || c.J >= ny || c.I < 0 || c.I >= nx {
			return &OutOfBoundsError{Field: "dry", Index: []int{c.J, c.I}, Shape: []int{ny, nx}}
		}
	}
	for _, c := range cols {
		n := c.J*nx + c.I
		l.dry[n] = true
		l.kmin[Z][n], l.kminPMZ[Z][n] = 0, 0
		for k := 0; k < len(l.dz); k++ {
			l.thickness.Elements[l.thickness.Index1d(k, c.J, c.I)] = 0
		}
	}
	l.updateFaces()
	return l.writeFields()
}

// UpdateLayerBounds recomputes the active layer range of every column
// from the surface elevation elev [m] (ny × nx) and propagates it to
// faces and corners. Columns whose total depth falls below
// minLayerThickness are reported in a *ColumnDryError; all other columns
// are updated regardless.
func (l *LayerIndex) UpdateLayerBounds(elev *sparse.DenseArray, minLayerThickness float64) error {
	nx, ny := l.b.g.Nx(), l.b.g.Ny()
	if len(elev.Shape) != 2 || elev.Shape[0] != ny || elev.Shape[1] != nx {
		return fmt.Errorf("getm: elevation has shape %v, want [%d %d]", elev.Shape, ny, nx)
	}
	if !(minLayerThickness > 0) {
		return fmt.Errorf("getm: minimum layer thickness %g must be positive", minLayerThickness)
	}
	for n, eta := range elev.Elements {
		if math.IsNaN(eta) || math.IsInf(eta, 0) {
			return fmt.Errorf("getm: non-finite elevation at %v", Index{n / nx, n % nx})
		}
	}
	nz := len(l.dz)
	h := l.b.depth[Z].Elements
	var dryCols []Index
	wet := make([]float64, nz)
	for n, m := range l.b.mask[Z] {
		if m == Land {
			continue
		}
		eta := elev.Elements[n]
		total := eta + h[n]
		if l.dry[n] {
			if total < minLayerThickness {
				continue
			}
			l.dry[n] = false
		}
		if total < minLayerThickness {
			dryCols = append(dryCols, Index{n / nx, n % nx})
			continue
		}
		kmax := l.kmax[Z][n]
		pmz, kmin := 0, 0
		var sum float64
		for k := 1; k <= kmax; k++ {
			wet[k-1] = l.wet(k, kmax, h[n], eta)
			if pmz == 0 && wet[k-1] > 0 {
				pmz = k
			}
			sum += wet[k-1]
			if kmin == 0 && sum >= minLayerThickness {
				kmin = k
			}
		}
		if kmin == 0 {
			// Total depth reaches the threshold only through rounding.
			kmin = kmax
		}
		l.kmin[Z][n], l.kminPMZ[Z][n] = kmin, pmz
		j, i := n/nx, n%nx
		var folded float64
		for k := 1; k <= nz; k++ {
			var t float64
			switch {
			case k < kmin:
				folded += wet[k-1]
			case k == kmin:
				t = folded + wet[k-1]
			case k <= kmax:
				t = wet[k-1]
			}
			l.thickness.Elements[l.thickness.Index1d(k-1, j, i)] = t
		}
	}
	l.updateFaces()
	if err := l.writeFields(); err != nil {
		return err
	}
	if len(dryCols) > 0 {
		return &ColumnDryError{Columns: dryCols}
	}
	return nil
}

// active reports whether column (j, i) exists and has active layers.
func (l *LayerIndex) active(j, i int) bool {
	nx, ny := l.b.g.Nx(), l.b.g.Ny()
	if j < 0 || j >= ny || i < 0 || i >= nx {
		return false
	}
	return l.kmin[Z][j*nx+i] > 0
}

// updateFaces derives the face and corner layer indices from the
// column indices.
func (l *LayerIndex) updateFaces() {
	nx, ny := l.b.g.Nx(), l.b.g.Ny()
	col := func(a []int, c Index) int { return a[c.J*nx+c.I] }
	for _, f := range []Family{U, V, X} {
		_, cols := f.Shape(nx, ny)
		masks := l.b.mask[f]
		for n := range l.kmin[f] {
			l.kmin[f][n], l.kminPMZ[f][n] = 0, 0
			if masks[n] == Land {
				continue
			}
			j, i := n/cols, n%cols
			var cells []Index
			if f == X {
				cells = []Index{{j - 1, i - 1}, {j - 1, i}, {j, i - 1}, {j, i}}
			} else {
				cells = l.b.faceCells(f, j, i)
			}
			kmin, pmz := math.MaxInt32, math.MaxInt32
			ok := true
			for _, c := range cells {
				if !l.active(c.J, c.I) {
					ok = false
					break
				}
				if k := col(l.kmin[Z], c); k < kmin {
					kmin = k
				}
				if k := col(l.kminPMZ[Z], c); k < pmz {
					pmz = k
				}
			}
			if !ok {
				continue
			}
			if kmax := l.kmax[f][n]; kmin > kmax {
				kmin = kmax
			}
			if kmax := l.kmax[f][n]; pmz > kmax {
				pmz = kmax
			}
			l.kmin[f][n], l.kminPMZ[f][n] = kmin, pmz
		}
	}
}

// writeFields copies the layer thicknesses into the attached field store.
func (l *LayerIndex) writeFields() error {
	if l.fields == nil || !l.fields.Allocated() {
		return nil
	}
	hn, err := l.fields.Get("hn")
	if err != nil {
		return err
	}
	copy(hn.Elements, l.thickness.Elements)
	nx, ny := l.b.g.Nx(), l.b.g.Ny()
	for _, fn := range []struct {
		name string
		f    Family
	}{{"hun", U}, {"hvn", V}} {
		fld, err := l.fields.Get(fn.name)
		if err != nil {
			return err
		}
		_, cols := fn.f.Shape(nx, ny)
		for k := 0; k < len(l.dz); k++ {
			for n := range l.kmin[fn.f] {
				var t float64
				if l.kmin[fn.f][n] > 0 {
					cells := l.b.faceCells(fn.f, n/cols, n%cols)
					for _, c := range cells {
						t += l.thickness.Elements[l.thickness.Index1d(k, c.J, c.I)]
					}
					t /= float64(len(cells))
				}
				fld.Elements[fld.Index1d(k, n/cols, n%cols)] = t
			}
		}
	}
	return nil
}
