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
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Mask classifies a grid point.
type Mask uint8

// Mask values, as used by GETM's az, au, av and ax arrays.
const (
	Land     Mask = 0
	Wet      Mask = 1
	Boundary Mask = 2
)

func (m Mask) String() string {
	switch m {
	case Land:
		return "land"
	case Wet:
		return "wet"
	case Boundary:
		return "boundary"
	default:
		return fmt.Sprintf("Mask(%d)", int(m))
	}
}

// FaceDepthRule specifies how the depth at a face or corner is derived
// from the depths of the adjacent cells.
type FaceDepthRule int

// Face depth rules.
const (
	MinimumDepth FaceDepthRule = iota
	HarmonicMean
	ArithmeticMean
)

func (r FaceDepthRule) String() string {
	switch r {
	case MinimumDepth:
		return "minimum"
	case HarmonicMean:
		return "harmonic"
	case ArithmeticMean:
		return "arithmetic"
	default:
		return fmt.Sprintf("FaceDepthRule(%d)", int(r))
	}
}

// ParseFaceDepthRule parses a face depth rule from its name.
func ParseFaceDepthRule(s string) (FaceDepthRule, error) {
	for _, r := range []FaceDepthRule{MinimumDepth, HarmonicMean, ArithmeticMean} {
		if s == r.String() {
			return r, nil
		}
	}
	return 0, fmt.Errorf("getm: invalid face depth rule %q", s)
}

// apply combines the given cell depths.
func (r FaceDepthRule) apply(h ...float64) float64 {
	switch r {
	case HarmonicMean:
		var s float64
		for _, v := range h {
			s += 1 / v
		}
		return float64(len(h)) / s
	case ArithmeticMean:
		return floats.Sum(h) / float64(len(h))
	default:
		return floats.Min(h)
	}
}

// Side is the edge of the domain an open boundary lies on.
type Side int

// Domain edges.
const (
	West Side = iota
	North
	East
	South
)

func (s Side) String() string {
	switch s {
	case West:
		return "west"
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	default:
		return fmt.Sprintf("Side(%d)", int(s))
	}
}

// ParseSide parses a side from its name.
func ParseSide(s string) (Side, error) {
	for _, d := range []Side{West, North, East, South} {
		if s == d.String() {
			return d, nil
		}
	}
	return 0, fmt.Errorf("getm: invalid boundary side %q", s)
}

// BoundarySegment declares a run of open-boundary cells. For West and
// East segments Index is the cell column i and Start..End (inclusive)
// the rows; for North and South segments Index is the row j and
// Start..End the columns.
type BoundarySegment struct {
	Side       Side
	Index      int
	Start, End int
}

// cells returns the cell indices covered by the segment.
func (s BoundarySegment) cells() []Index {
	var c []Index
	for n := s.Start; n <= s.End; n++ {
		if s.Side == West || s.Side == East {
			c = append(c, Index{J: n, I: s.Index})
		} else {
			c = append(c, Index{J: s.Index, I: n})
		}
	}
	return c
}

// Bathymetry holds the still-water depth and the wet/dry classification
// of every point of every family.
type Bathymetry struct {
	g *Geometry

	raw   [4]*sparse.DenseArray
	depth [4]*sparse.DenseArray
	mask  [4][]Mask

	open     []BoundarySegment
	openCell []bool

	// MinDepth and Rule are the parameters of the most recent ComputeMasks.
	MinDepth float64
	Rule     FaceDepthRule

	computed bool

	dry       [3]*sparse.DenseArray
	roughness [3]*sparse.DenseArray
}

// NewBathymetry creates an empty bathymetry on geometry g.
func NewBathymetry(g *Geometry) *Bathymetry {
	return &Bathymetry{
		g:        g,
		openCell: make([]bool, Z.Len(g.Nx(), g.Ny())),
	}
}

// Geometry returns the geometry the bathymetry is defined on.
func (b *Bathymetry) Geometry() *Geometry { return b.g }

// SetDepth sets the still-water depth [m] of family f, positive
// downwards. The Z depth is required by ComputeMasks. Depths of the
// other families are kept as raw input (see RawDepth); ComputeMasks
// derives the face and corner depths from the Z depth.
func (b *Bathymetry) SetDepth(f Family, depth *sparse.DenseArray) error {
	rows, cols := f.Shape(b.g.Nx(), b.g.Ny())
	if len(depth.Shape) != 2 || depth.Shape[0] != rows || depth.Shape[1] != cols {
		return fmt.Errorf("getm: depth of family %v has shape %v, want [%d %d]", f, depth.Shape, rows, cols)
	}
	for n, h := range depth.Elements {
		if math.IsNaN(h) || math.IsInf(h, 0) {
			return &InvalidGridError{Family: f, Index: Index{n / cols, n % cols}, Reason: "non-finite depth"}
		}
	}
	b.raw[f] = depth.Copy()
	if f == Z {
		b.depth[Z] = depth.Copy()
	}
	b.computed = false
	return nil
}

// RawDepth returns the depth of family f as given to SetDepth, or nil.
func (b *Bathymetry) RawDepth(f Family) *sparse.DenseArray { return b.raw[f] }

// SetOpenBoundaries declares the open-boundary cells, replacing any
// previous declaration.
func (b *Bathymetry) SetOpenBoundaries(segs ...BoundarySegment) error {
	nx, ny := b.g.Nx(), b.g.Ny()
	open := make([]bool, nx*ny)
	for _, s := range segs {
		if s.End < s.Start {
			return fmt.Errorf("getm: %v boundary segment at %d has end %d before start %d", s.Side, s.Index, s.End, s.Start)
		}
		for _, c := range s.cells() {
			if c.J < 0 || c.J >= ny || c.I < 0 || c.I >= nx {
				return fmt.Errorf("getm: %v boundary segment cell %v is outside the %d × %d grid", s.Side, c, nx, ny)
			}
			open[c.J*nx+c.I] = true
		}
	}
	b.open = append([]BoundarySegment(nil), segs...)
	b.openCell = open
	b.computed = false
	return nil
}

// OpenBoundaries returns the declared boundary segments.
func (b *Bathymetry) OpenBoundaries() []BoundarySegment { return b.open }

// Computed reports whether masks are up to date with the depth input.
func (b *Bathymetry) Computed() bool { return b.computed }

// Depth returns the depth of family f (GETM H, HU, HV and the corner
// depth). Face and corner depths are available after ComputeMasks.
func (b *Bathymetry) Depth(f Family) *sparse.DenseArray { return b.depth[f] }

// Masks returns the row-major mask array of family f.
func (b *Bathymetry) Masks(f Family) []Mask { return b.mask[f] }

// Mask returns the classification of point (j, i) of family f. Points
// outside of the family's extents are Land.
func (b *Bathymetry) Mask(f Family, j, i int) Mask {
	rows, cols := f.Shape(b.g.Nx(), b.g.Ny())
	if b.mask[f] == nil || j < 0 || j >= rows || i < 0 || i >= cols {
		return Land
	}
	return b.mask[f][j*cols+i]
}

// ComputeMasks classifies every point of every family and derives the
// face and corner depths.
func (b *Bathymetry) ComputeMasks(minDepth float64, rule FaceDepthRule) error {
	if b.depth[Z] == nil {
		return fmt.Errorf("getm: cell-centre depth must be set before computing masks")
	}
	nx, ny := b.g.Nx(), b.g.Ny()
	h := b.depth[Z].Elements

	zm := make([]Mask, nx*ny)
	for n, d := range h {
		switch {
		case d <= minDepth && b.openCell[n]:
			return &InconsistentMaskError{Family: Z, Index: Index{n / nx, n % nx},
				Reason: fmt.Sprintf("open boundary cell has depth %g ≤ minimum depth %g", d, minDepth)}
		case d <= minDepth:
			zm[n] = Land
		case b.openCell[n]:
			zm[n] = Boundary
		default:
			zm[n] = Wet
		}
	}
	cell := func(j, i int) Mask {
		if j < 0 || j >= ny || i < 0 || i >= nx {
			return Land
		}
		return zm[j*nx+i]
	}
	exists := func(j, i int) bool { return j >= 0 && j < ny && i >= 0 && i < nx }

	// face classifies the face between cells a and c, where beyondA and
	// beyondC are the next cells along the same axis.
	face := func(f Family, at Index, a, c, beyondA, beyondC Index, aIn, cIn bool) (Mask, error) {
		if !aIn || !cIn {
			in := a
			if !aIn {
				in = c
			}
			if cell(in.J, in.I) == Boundary {
				return Boundary, nil
			}
			return Land, nil
		}
		ma, mc := cell(a.J, a.I), cell(c.J, c.I)
		if ma == Land || mc == Land {
			return Land, nil
		}
		if ma == Boundary && mc == Wet && cell(beyondA.J, beyondA.I) == Wet {
			return Land, &InconsistentMaskError{Family: f, Index: at,
				Reason: fmt.Sprintf("boundary cell %v lies between wet cells %v and %v", a, beyondA, c)}
		}
		if mc == Boundary && ma == Wet && cell(beyondC.J, beyondC.I) == Wet {
			return Land, &InconsistentMaskError{Family: f, Index: at,
				Reason: fmt.Sprintf("boundary cell %v lies between wet cells %v and %v", c, a, beyondC)}
		}
		if ma == Boundary || mc == Boundary {
			return Boundary, nil
		}
		return Wet, nil
	}
	faceDepth := func(m Mask, a, c Index, aIn, cIn bool) float64 {
		switch {
		case m == Land:
			return minDepth
		case !aIn:
			return h[c.J*nx+c.I]
		case !cIn:
			return h[a.J*nx+a.I]
		default:
			return rule.apply(h[a.J*nx+a.I], h[c.J*nx+c.I])
		}
	}

	um := make([]Mask, U.Len(nx, ny))
	hu := familyArray(U, nx, ny)
	for j := 0; j < ny; j++ {
		for i := 0; i <= nx; i++ {
			a, c := Index{j, i - 1}, Index{j, i}
			m, err := face(U, Index{j, i}, a, c, Index{j, i - 2}, Index{j, i + 1},
				exists(a.J, a.I), exists(c.J, c.I))
			if err != nil {
				return err
			}
			n := j*(nx+1) + i
			um[n] = m
			hu.Elements[n] = faceDepth(m, a, c, exists(a.J, a.I), exists(c.J, c.I))
		}
	}

	vm := make([]Mask, V.Len(nx, ny))
	hv := familyArray(V, nx, ny)
	for j := 0; j <= ny; j++ {
		for i := 0; i < nx; i++ {
			a, c := Index{j - 1, i}, Index{j, i}
			m, err := face(V, Index{j, i}, a, c, Index{j - 2, i}, Index{j + 1, i},
				exists(a.J, a.I), exists(c.J, c.I))
			if err != nil {
				return err
			}
			n := j*nx + i
			vm[n] = m
			hv.Elements[n] = faceDepth(m, a, c, exists(a.J, a.I), exists(c.J, c.I))
		}
	}

	xm := make([]Mask, X.Len(nx, ny))
	hx := familyArray(X, nx, ny)
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			n := j*(nx+1) + i
			m := Wet
			var d []float64
			for _, c := range [4]Index{{j - 1, i - 1}, {j - 1, i}, {j, i - 1}, {j, i}} {
				cm := cell(c.J, c.I)
				if cm == Land {
					m = Land
					break
				}
				if cm == Boundary {
					m = Boundary
				}
				d = append(d, h[c.J*nx+c.I])
			}
			xm[n] = m
			if m == Land {
				hx.Elements[n] = minDepth
			} else {
				hx.Elements[n] = rule.apply(d...)
			}
		}
	}

	b.mask = [4][]Mask{Z: zm, U: um, V: vm, X: xm}
	b.depth[U], b.depth[V], b.depth[X] = hu, hv, hx
	b.MinDepth, b.Rule = minDepth, rule
	b.computed = true
	b.dry = [3]*sparse.DenseArray{}
	return nil
}

// faceCells returns the cells adjacent to face (j, i) of family f that
// lie inside the grid.
func (b *Bathymetry) faceCells(f Family, j, i int) []Index {
	nx, ny := b.g.Nx(), b.g.Ny()
	var cand [2]Index
	switch f {
	case U:
		cand = [2]Index{{j, i - 1}, {j, i}}
	case V:
		cand = [2]Index{{j - 1, i}, {j, i}}
	default:
		return []Index{{j, i}}
	}
	c := make([]Index, 0, 2)
	for _, x := range cand {
		if x.J >= 0 && x.J < ny && x.I >= 0 && x.I < nx {
			c = append(c, x)
		}
	}
	return c
}

// DryingFactors computes the drying factors (GETM dry_z, dry_u, dry_v)
// from the total water depth D at cell centres. The factor is 0 at
// land points and below dMin, 1 above dCrit, and linear in between.
// Face depths are the minimum of the adjacent cells.
func (b *Bathymetry) DryingFactors(D *sparse.DenseArray, dMin, dCrit float64) error {
	if !b.computed {
		return fmt.Errorf("getm: masks must be computed before drying factors")
	}
	if !(dCrit > dMin) {
		return fmt.Errorf("getm: critical depth %g must exceed minimum depth %g", dCrit, dMin)
	}
	nx, ny := b.g.Nx(), b.g.Ny()
	if len(D.Shape) != 2 || D.Shape[0] != ny || D.Shape[1] != nx {
		return fmt.Errorf("getm: total depth has shape %v, want [%d %d]", D.Shape, ny, nx)
	}
	alpha := func(d float64) float64 {
		return math.Max(0, math.Min(1, (d-dMin)/(dCrit-dMin)))
	}
	for _, f := range []Family{Z, U, V} {
		a := familyArray(f, nx, ny)
		_, cols := f.Shape(nx, ny)
		for n, m := range b.mask[f] {
			if m == Land {
				continue
			}
			d := math.Inf(1)
			for _, c := range b.faceCells(f, n/cols, n%cols) {
				d = math.Min(d, D.Elements[c.J*nx+c.I])
			}
			a.Elements[n] = alpha(d)
		}
		b.dry[f] = a
	}
	return nil
}

// DryFactor returns the drying factors of family f (Z, U or V), or nil
// if they have not been computed.
func (b *Bathymetry) DryFactor(f Family) *sparse.DenseArray {
	if f == X {
		return nil
	}
	return b.dry[f]
}

// SetRoughness sets the bottom roughness length z0 [m] at cell centres
// and derives the face values (GETM zub0, zvb0) as the mean over the
// adjacent cells.
func (b *Bathymetry) SetRoughness(z0 *sparse.DenseArray) error {
	nx, ny := b.g.Nx(), b.g.Ny()
	if len(z0.Shape) != 2 || z0.Shape[0] != ny || z0.Shape[1] != nx {
		return fmt.Errorf("getm: roughness has shape %v, want [%d %d]", z0.Shape, ny, nx)
	}
	for n, v := range z0.Elements {
		if !(v > 0) || math.IsInf(v, 0) {
			return fmt.Errorf("getm: roughness length %g at %v must be positive", v, Index{n / nx, n % nx})
		}
	}
	b.roughness[Z] = z0.Copy()
	for _, f := range []Family{U, V} {
		a := familyArray(f, nx, ny)
		_, cols := f.Shape(nx, ny)
		for n := range a.Elements {
			c := b.faceCells(f, n/cols, n%cols)
			var s float64
			for _, x := range c {
				s += z0.Elements[x.J*nx+x.I]
			}
			a.Elements[n] = s / float64(len(c))
		}
		b.roughness[f] = a
	}
	return nil
}

// Roughness returns the bottom roughness length of family f (Z, U or
// V), or nil if it has not been set.
func (b *Bathymetry) Roughness(f Family) *sparse.DenseArray {
	if f == X {
		return nil
	}
	return b.roughness[f]
}

// DepthSummary holds statistics of the cell-centre depths.
type DepthSummary struct {
	WetCells, BoundaryCells, LandCells int

	// Statistics over non-land cells [m].
	Min, Max, Mean, StdDev float64

	// Volume is the still-water volume [m³].
	Volume float64
	// WetArea is the area of all non-land cells [m²].
	WetArea float64
}

// Summary returns depth statistics over the cell centres.
func (b *Bathymetry) Summary() (*DepthSummary, error) {
	if !b.computed {
		return nil, fmt.Errorf("getm: masks must be computed before summarizing bathymetry")
	}
	s := new(DepthSummary)
	area := b.g.Points(Z).Area.Elements
	var h, a []float64
	for n, m := range b.mask[Z] {
		switch m {
		case Land:
			s.LandCells++
			continue
		case Boundary:
			s.BoundaryCells++
		default:
			s.WetCells++
		}
		h = append(h, b.depth[Z].Elements[n])
		a = append(a, area[n])
	}
	if len(h) == 0 {
		return s, nil
	}
	s.Min, s.Max = floats.Min(h), floats.Max(h)
	s.Mean = stat.Mean(h, nil)
	s.StdDev = stat.StdDev(h, nil)
	s.Volume = floats.Dot(h, a)
	s.WetArea = floats.Sum(a)
	return s, nil
}
