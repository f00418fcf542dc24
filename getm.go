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

// Package getm holds the computational domain of a GETM-style coastal
// ocean model: the staggered horizontal grid and its metric terms, the
// bathymetry and wet/dry masks, the z-level vertical layer bookkeeping
// for drying and flooding, and the store of three-dimensional model
// fields.
//
// A Domain is assembled from a list of DomainManipulators:
//
//	d := &getm.Domain{
//		InitFuncs: []getm.DomainManipulator{
//			getm.BuildGeometry(getm.RegularCartesian(10, 10, 0, 0, 100, 100), getm.Cartesian),
//			getm.LoadBathymetry(depth),
//			getm.ComputeMasks(0.1, getm.MinimumDepth),
//			getm.BuildLayers(getm.UniformLayers(5, 1), 0.5),
//			getm.AllocateFields(getm.Baroclinic),
//		},
//	}
//	if err := d.Init(); err != nil {
//		...
//	}
package getm

import (
	"fmt"
	"os"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
	"github.com/sirupsen/logrus"
)

// Version gives the version number.
const Version = "0.1.0"

// DomainManipulator is a class of functions that operate on the entire
// domain.
type DomainManipulator func(d *Domain) error

// Domain bundles all of the grid and state information of a model
// domain. It is passed by reference to every component that needs it.
type Domain struct {
	Geometry   *Geometry
	Bathymetry *Bathymetry
	Layers     *LayerIndex
	Fields     *FieldStore

	// Log receives status messages. It defaults to the logrus
	// standard logger.
	Log logrus.FieldLogger

	// InitFuncs are run, in order, by Init.
	InitFuncs []DomainManipulator
	// CleanupFuncs are run, in order, by Cleanup before the fields are
	// released.
	CleanupFuncs []DomainManipulator
}

func (d *Domain) log() logrus.FieldLogger {
	if d.Log == nil {
		d.Log = logrus.StandardLogger()
	}
	return d.Log
}

// Init initializes the domain by running its InitFuncs.
func (d *Domain) Init() error {
	d.log()
	for _, f := range d.InitFuncs {
		if err := f(d); err != nil {
			return err
		}
	}
	return nil
}

// Cleanup runs the CleanupFuncs and then releases all fields. The
// domain cannot be used afterwards until it is initialized again.
func (d *Domain) Cleanup() error {
	for _, f := range d.CleanupFuncs {
		if err := f(d); err != nil {
			return err
		}
	}
	if d.Fields != nil {
		d.Fields.Release()
	}
	d.Geometry, d.Bathymetry, d.Layers, d.Fields = nil, nil, nil, nil
	d.log().Debug("getm: domain released")
	return nil
}

// Extents returns the dimensions of the domain.
func (d *Domain) Extents() Extents {
	e := Extents{Nx: d.Geometry.Nx(), Ny: d.Geometry.Ny()}
	if d.Layers != nil {
		e.Nz = d.Layers.Nz()
	}
	return e
}

// UpdateLayerBounds recomputes the active layer ranges from the surface
// elevation elev (ny × nx). When fields are allocated, the previous
// elevation is moved to sseo and elev and the total depth are stored in
// ssen and Dn. See LayerIndex.UpdateLayerBounds for error semantics.
func (d *Domain) UpdateLayerBounds(elev *sparse.DenseArray, minLayerThickness float64) error {
	if d.Layers == nil {
		return fmt.Errorf("getm: layers must be built before updating layer bounds")
	}
	err := d.Layers.UpdateLayerBounds(elev, minLayerThickness)
	if _, dry := err.(*ColumnDryError); err != nil && !dry {
		return err
	}
	if d.Fields != nil && d.Fields.Allocated() {
		if ferr := d.storeElevation(elev); ferr != nil {
			return ferr
		}
	}
	if err != nil {
		d.log().WithFields(logrus.Fields{
			"columns": len(err.(*ColumnDryError).Columns),
		}).Warn("getm: columns without active layers")
		return err
	}
	d.log().WithFields(logrus.Fields{
		"min_layer_thickness": minLayerThickness,
	}).Debug("getm: updated layer bounds")
	return nil
}

func (d *Domain) storeElevation(elev *sparse.DenseArray) error {
	var f [3]*Field
	for i, name := range []string{"sseo", "ssen", "Dn"} {
		var err error
		if f[i], err = d.Fields.Get(name); err != nil {
			return err
		}
	}
	sseo, ssen, dn := f[0], f[1], f[2]
	copy(sseo.Elements, ssen.Elements)
	copy(ssen.Elements, elev.Elements)
	h := d.Bathymetry.Depth(Z).Elements
	for n, m := range d.Bathymetry.Masks(Z) {
		if m != Land {
			dn.Elements[n] = h[n] + elev.Elements[n]
		} else {
			dn.Elements[n] = 0
		}
	}
	return nil
}

// BuildGeometry returns a function that computes the grid geometry from
// coordinates c of grid type t.
func BuildGeometry(c *Coordinates, t GridType, opts ...GeometryOption) DomainManipulator {
	return func(d *Domain) error {
		g, err := NewGeometry(c, t, opts...)
		if err != nil {
			return err
		}
		d.Geometry = g
		d.log().WithFields(logrus.Fields{
			"nx":        g.Nx(),
			"ny":        g.Ny(),
			"grid_type": t.String(),
			"area":      g.TotalArea(),
		}).Info("getm: built grid geometry")
		return nil
	}
}

// LoadBathymetry returns a function that sets the cell-centre depth and
// the open boundaries of the domain.
func LoadBathymetry(depth *sparse.DenseArray, open ...BoundarySegment) DomainManipulator {
	return func(d *Domain) error {
		if d.Geometry == nil {
			return fmt.Errorf("getm: geometry must be built before loading bathymetry")
		}
		b := NewBathymetry(d.Geometry)
		if err := b.SetDepth(Z, depth); err != nil {
			return err
		}
		if err := b.SetOpenBoundaries(open...); err != nil {
			return err
		}
		d.Bathymetry = b
		return nil
	}
}

// ComputeMasks returns a function that classifies all grid points and
// derives the face depths.
func ComputeMasks(minDepth float64, rule FaceDepthRule) DomainManipulator {
	return func(d *Domain) error {
		if d.Bathymetry == nil {
			return fmt.Errorf("getm: bathymetry must be loaded before computing masks")
		}
		if err := d.Bathymetry.ComputeMasks(minDepth, rule); err != nil {
			return err
		}
		s, err := d.Bathymetry.Summary()
		if err != nil {
			return err
		}
		d.log().WithFields(logrus.Fields{
			"wet":      s.WetCells,
			"boundary": s.BoundaryCells,
			"land":     s.LandCells,
			"min":      s.Min,
			"max":      s.Max,
			"volume":   s.Volume,
		}).Info("getm: computed masks")
		return nil
	}
}

// BottomRoughness returns a function that sets the bottom roughness
// length at cell centres.
func BottomRoughness(z0 *sparse.DenseArray) DomainManipulator {
	return func(d *Domain) error {
		if d.Bathymetry == nil {
			return fmt.Errorf("getm: bathymetry must be loaded before setting roughness")
		}
		return d.Bathymetry.SetRoughness(z0)
	}
}

// BuildLayers returns a function that sets up the vertical layers and
// initializes the active layer ranges for a surface at rest.
func BuildLayers(dz []float64, minLayerThickness float64) DomainManipulator {
	return func(d *Domain) error {
		if d.Bathymetry == nil {
			return fmt.Errorf("getm: bathymetry must be loaded before building layers")
		}
		l, err := NewLayerIndex(d.Bathymetry, dz, minLayerThickness)
		if err != nil {
			return err
		}
		d.Layers = l
		elev := sparse.ZerosDense(d.Geometry.Ny(), d.Geometry.Nx())
		if err := l.UpdateLayerBounds(elev, minLayerThickness); err != nil {
			// Columns shallower than the minimum layer thickness start dry.
			dryErr, ok := err.(*ColumnDryError)
			if !ok {
				return err
			}
			if err := l.ReclassifyDry(dryErr.Columns...); err != nil {
				return err
			}
			d.log().WithFields(logrus.Fields{
				"columns": len(dryErr.Columns),
			}).Warn("getm: columns shallower than the minimum layer thickness start dry")
		}
		d.log().WithFields(logrus.Fields{
			"nz":                  l.Nz(),
			"min_layer_thickness": minLayerThickness,
		}).Info("getm: built vertical layers")
		return nil
	}
}

// AllocateFields returns a function that allocates the field store with
// the given optional features.
func AllocateFields(features Feature) DomainManipulator {
	return func(d *Domain) error {
		if d.Layers == nil {
			return fmt.Errorf("getm: layers must be built before allocating fields")
		}
		if d.Fields == nil {
			d.Fields = NewFieldStore()
		}
		if err := d.Fields.Allocate(d.Extents(), features); err != nil {
			return err
		}
		if err := d.Layers.Attach(d.Fields); err != nil {
			return err
		}
		d.log().WithFields(logrus.Fields{
			"features": features.String(),
			"fields":   len(d.Fields.Names()),
		}).Info("getm: allocated fields")
		return nil
	}
}

// RestoreCheckpoint returns a function that restores the fields and
// layer indices from a checkpoint written by SaveCheckpoint.
func RestoreCheckpoint(rw cdf.ReaderWriterAt) DomainManipulator {
	return func(d *Domain) error {
		if err := d.ReadCheckpoint(rw); err != nil {
			return err
		}
		d.log().Info("getm: restored checkpoint")
		return nil
	}
}

// SaveCheckpoint returns a function that writes the domain state to w.
func SaveCheckpoint(w *os.File) DomainManipulator {
	return func(d *Domain) error {
		if err := d.WriteCheckpoint(w); err != nil {
			return err
		}
		d.log().WithFields(logrus.Fields{"file": w.Name()}).Info("getm: saved checkpoint")
		return nil
	}
}
