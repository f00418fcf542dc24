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
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/ctessum/sparse"
)

// BoundaryConfig declares an open boundary segment in a configuration
// file.
type BoundaryConfig struct {
	Side       string // west, north, east or south
	Index      int
	Start, End int
}

// DomainConfig holds the information needed to build a Domain.
type DomainConfig struct {
	// GridType is the grid type name or GETM code (see ParseGridType).
	GridType string

	// Nx and Ny are the number of cells of regular grids; X0 and Y0 are
	// the lower-left corner and Dx and Dy the cell size, in metres or
	// degrees. They are ignored when TopoFile holds coordinates.
	Nx, Ny         int
	X0, Y0, Dx, Dy float64

	// Projection is an optional Proj4 definition of the planar coordinates.
	Projection string
	// Latitude is the f-plane latitude [°] for grids without geographic positions.
	Latitude float64

	// TopoFile is the path to a GETM topography file. Can include
	// environment variables.
	TopoFile string
	// DepthExpression is used when no TopoFile is given. See DepthExpression.
	DepthExpression string

	MinDepth      float64
	FaceDepthRule string

	OpenBoundaries []BoundaryConfig

	// Layers is the number of layers of thickness LayerThickness, used
	// unless LayerThicknesses is given.
	Layers            int
	LayerThickness    float64
	LayerThicknesses  []float64
	MinLayerThickness float64

	// Roughness is the uniform bottom roughness length [m]; 0 disables it.
	Roughness float64

	Features []string

	// Checkpoint is the path to a checkpoint to restore. Can include
	// environment variables.
	Checkpoint string
}

// LoadDomainConfig reads a TOML domain configuration from r and
// expands environment variables in its paths.
func LoadDomainConfig(r io.Reader) (*DomainConfig, error) {
	c := new(DomainConfig)
	if _, err := toml.DecodeReader(r, c); err != nil {
		return nil, fmt.Errorf("getm: decoding domain configuration: %v", err)
	}
	c.TopoFile = os.ExpandEnv(c.TopoFile)
	c.Checkpoint = os.ExpandEnv(c.Checkpoint)
	return c, nil
}

// LayerThicknessList returns the configured layer thicknesses.
func (c *DomainConfig) LayerThicknessList() ([]float64, error) {
	if len(c.LayerThicknesses) > 0 {
		return c.LayerThicknesses, nil
	}
	if c.Layers < 1 || !(c.LayerThickness > 0) {
		return nil, fmt.Errorf("getm: configuration needs Layers > 0 and LayerThickness > 0, or LayerThicknesses")
	}
	return UniformLayers(c.Layers, c.LayerThickness), nil
}

// Grid returns the coordinates, grid type and depth described by c.
func (c *DomainConfig) Grid() (*Coordinates, GridType, *sparse.DenseArray, error) {
	t, err := ParseGridType(c.GridType)
	if err != nil {
		return nil, 0, nil, err
	}
	var coords *Coordinates
	var depth *sparse.DenseArray
	if c.TopoFile != "" {
		f, err := os.Open(c.TopoFile)
		if err != nil {
			return nil, 0, nil, fmt.Errorf("getm: opening topography: %v", err)
		}
		defer f.Close()
		if depth, coords, err = ReadTopo(f, t); err != nil {
			return nil, 0, nil, err
		}
	}
	if coords == nil {
		if c.Nx < 1 || c.Ny < 1 || !(c.Dx > 0) || !(c.Dy > 0) {
			return nil, 0, nil, fmt.Errorf("getm: regular grid configuration needs Nx, Ny, Dx and Dy > 0")
		}
		switch t {
		case Cartesian:
			coords = RegularCartesian(c.Nx, c.Ny, c.X0, c.Y0, c.Dx, c.Dy)
		case Spherical:
			coords = RegularSpherical(c.Nx, c.Ny, c.X0, c.Y0, c.Dx, c.Dy)
		default:
			return nil, 0, nil, fmt.Errorf("getm: grid type %v requires a topography file with corner coordinates", t)
		}
	}
	if depth != nil && (depth.Shape[0] != coords.Ny || depth.Shape[1] != coords.Nx) {
		return nil, 0, nil, fmt.Errorf("getm: topography depth has shape %v, grid is %d × %d", depth.Shape, coords.Nx, coords.Ny)
	}
	return coords, t, depth, nil
}

// InitFuncs returns the domain manipulators that build the domain
// described by c.
func (c *DomainConfig) InitFuncs() ([]DomainManipulator, error) {
	coords, t, depth, err := c.Grid()
	if err != nil {
		return nil, err
	}
	var opts []GeometryOption
	if c.Projection != "" {
		opts = append(opts, WithProjection(c.Projection))
	}
	opts = append(opts, WithLatitude(c.Latitude))

	rule := MinimumDepth
	if c.FaceDepthRule != "" {
		if rule, err = ParseFaceDepthRule(c.FaceDepthRule); err != nil {
			return nil, err
		}
	}
	var open []BoundarySegment
	for _, b := range c.OpenBoundaries {
		side, err := ParseSide(b.Side)
		if err != nil {
			return nil, err
		}
		open = append(open, BoundarySegment{Side: side, Index: b.Index, Start: b.Start, End: b.End})
	}
	dz, err := c.LayerThicknessList()
	if err != nil {
		return nil, err
	}
	features, err := ParseFeatures(c.Features...)
	if err != nil {
		return nil, err
	}

	funcs := []DomainManipulator{BuildGeometry(coords, t, opts...)}
	if depth == nil {
		if c.DepthExpression == "" {
			return nil, fmt.Errorf("getm: configuration needs a TopoFile or a DepthExpression")
		}
		expr := c.DepthExpression
		funcs = append(funcs, func(d *Domain) error {
			h, err := DepthExpression(d.Geometry, expr)
			if err != nil {
				return err
			}
			return LoadBathymetry(h, open...)(d)
		})
	} else {
		funcs = append(funcs, LoadBathymetry(depth, open...))
	}
	funcs = append(funcs, ComputeMasks(c.MinDepth, rule))
	if c.Roughness > 0 {
		funcs = append(funcs, func(d *Domain) error {
			z0 := sparse.ZerosDense(d.Geometry.Ny(), d.Geometry.Nx())
			for i := range z0.Elements {
				z0.Elements[i] = c.Roughness
			}
			return BottomRoughness(z0)(d)
		})
	}
	funcs = append(funcs, BuildLayers(dz, c.MinLayerThickness), AllocateFields(features))
	if c.Checkpoint != "" {
		path := c.Checkpoint
		funcs = append(funcs, func(d *Domain) error {
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("getm: opening checkpoint: %v", err)
			}
			defer f.Close()
			return RestoreCheckpoint(f)(d)
		})
	}
	return funcs, nil
}
