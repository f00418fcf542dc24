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
	"encoding/json"
	"fmt"

	"github.com/lnashier/viper"
	"github.com/platipodium/mossco-getm"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	domainFlags := []*pflag.FlagSet{gridCmd.Flags(), plotCmd.Flags(), checkpointCmd.Flags(), locateCmd.Flags()}

	// Options are the configuration options available to the GETM domain tools.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "LogFile",
			usage: `
              LogFile is the path to the desired logfile location. It can include
              environment variables. If it is not specified, log messages are
              only written to standard output.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel is the minimum severity of log messages: debug, info,
              warning or error.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "GridType",
			usage: `
              GridType is the horizontal grid type: cartesian (1), spherical (2),
              planar-curvilinear (3) or spherical-curvilinear (4). Curvilinear
              grids require a TopoFile with corner coordinates.`,
			defaultVal: "cartesian",
			flagsets:   domainFlags,
		},
		{
			name: "Nx",
			usage: `
              Nx is the number of grid cells in the x (or longitude) direction
              of a regular grid that is not read from TopoFile.`,
			defaultVal: 10,
			flagsets:   domainFlags,
		},
		{
			name: "Ny",
			usage: `
              Ny is the number of grid cells in the y (or latitude) direction
              of a regular grid that is not read from TopoFile.`,
			defaultVal: 10,
			flagsets:   domainFlags,
		},
		{
			name: "X0",
			usage: `
              X0 is the x coordinate [m] or longitude [°] of the lower-left
              corner of a regular grid.`,
			defaultVal: 0.0,
			flagsets:   domainFlags,
		},
		{
			name: "Y0",
			usage: `
              Y0 is the y coordinate [m] or latitude [°] of the lower-left
              corner of a regular grid.`,
			defaultVal: 0.0,
			flagsets:   domainFlags,
		},
		{
			name: "Dx",
			usage: `
              Dx is the cell size in the x direction [m] or longitude [°]
              of a regular grid.`,
			defaultVal: 1000.0,
			flagsets:   domainFlags,
		},
		{
			name: "Dy",
			usage: `
              Dy is the cell size in the y direction [m] or latitude [°]
              of a regular grid.`,
			defaultVal: 1000.0,
			flagsets:   domainFlags,
		},
		{
			name: "Projection",
			usage: `
              Projection is an optional Proj4 definition of planar grid
              coordinates. When given, cell longitudes and latitudes and
              the Coriolis parameter are computed from it.`,
			defaultVal: "",
			flagsets:   domainFlags,
		},
		{
			name: "Latitude",
			usage: `
              Latitude is the reference latitude [°] used for the Coriolis
              parameter of planar grids without a Projection.`,
			defaultVal: 0.0,
			flagsets:   domainFlags,
		},
		{
			name: "TopoFile",
			usage: `
              TopoFile is the path to a netCDF topography file with a
              'bathymetry' variable and, optionally, grid coordinates.
              It can include environment variables.`,
			defaultVal: "",
			flagsets:   domainFlags,
		},
		{
			name: "DepthExpression",
			usage: `
              DepthExpression is an expression for the still-water depth [m]
              that is used if TopoFile is not given. It can use the variables
              x, y, lon, lat, i and j and the functions exp, sqrt, abs, sin,
              cos, tanh, min and max.`,
			defaultVal: "10",
			flagsets:   domainFlags,
		},
		{
			name: "MinDepth",
			usage: `
              MinDepth is the minimum depth [m] of wet cells. Shallower cells
              are land.`,
			defaultVal: 0.1,
			flagsets:   domainFlags,
		},
		{
			name: "FaceDepthRule",
			usage: `
              FaceDepthRule specifies how the depth of cell faces and corners
              is derived from the adjacent cells: minimum, harmonic or
              arithmetic.`,
			defaultVal: "minimum",
			flagsets:   domainFlags,
		},
		{
			name: "OpenBoundaries",
			usage: `
              OpenBoundaries is a list of open boundary segments, each with a
              Side (west, north, east or south), the row or column Index of the
              boundary cells, and the Start and End of the segment.`,
			defaultVal: []getm.BoundaryConfig{},
			flagsets:   domainFlags,
		},
		{
			name: "Layers",
			usage: `
              Layers is the number of vertical layers of thickness
              LayerThickness. It is ignored if LayerThicknesses is given.`,
			defaultVal: 10,
			flagsets:   domainFlags,
		},
		{
			name: "LayerThickness",
			usage: `
              LayerThickness is the thickness [m] of each of the Layers
              vertical layers.`,
			defaultVal: 1.0,
			flagsets:   domainFlags,
		},
		{
			name: "LayerThicknesses",
			usage: `
              LayerThicknesses is a list of vertical layer thicknesses [m],
              starting from the surface.`,
			defaultVal: []float64{},
			flagsets:   domainFlags,
		},
		{
			name: "MinLayerThickness",
			usage: `
              MinLayerThickness is the minimum thickness [m] of the wet water
              column for a layer to become active.`,
			defaultVal: 0.5,
			flagsets:   domainFlags,
		},
		{
			name: "Roughness",
			usage: `
              Roughness is the bottom roughness length [m]. Zero disables
              bottom roughness.`,
			defaultVal: 0.0,
			flagsets:   domainFlags,
		},
		{
			name: "Features",
			usage: `
              Features is the list of optional field groups to allocate:
              momentum-terms, structure-friction, baroclinic and
              suspended-sediment.`,
			defaultVal: []string{},
			flagsets:   domainFlags,
		},
		{
			name: "Checkpoint",
			usage: `
              Checkpoint is the path to a checkpoint file to restore the
              fields from. It can include environment variables.`,
			defaultVal: "",
			flagsets:   domainFlags,
		},
		{
			name: "ShapefileOutput",
			usage: `
              ShapefileOutput is the path where the grid shapefile is written.
              It can include environment variables.`,
			defaultVal: "getm_grid.shp",
			flagsets:   []*pflag.FlagSet{gridCmd.Flags()},
		},
		{
			name: "TopoOutput",
			usage: `
              TopoOutput is the path where the grid and depth are written as a
              topography file. Nothing is written if it is empty.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{gridCmd.Flags()},
		},
		{
			name: "PlotFile",
			usage: `
              PlotFile is the path of the image to create. The format is
              chosen from the file extension.`,
			defaultVal: "getm_grid.png",
			flagsets:   []*pflag.FlagSet{plotCmd.Flags()},
		},
		{
			name: "PlotVariable",
			usage: `
              PlotVariable is the variable to plot: depth, mask, area, kmin
              or kmax.`,
			shorthand:  "v",
			defaultVal: "depth",
			flagsets:   []*pflag.FlagSet{plotCmd.Flags()},
		},
		{
			name: "CheckpointOutput",
			usage: `
              CheckpointOutput is the path where the checkpoint is written.
              It can include environment variables.`,
			defaultVal: "getm_checkpoint.nc",
			flagsets:   []*pflag.FlagSet{checkpointCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("GETM")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case []string:
				if option.shorthand == "" {
					set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
				} else {
					set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			case []float64, []getm.BoundaryConfig:
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(option.defaultVal)
				s := string(b.Bytes())
				if option.shorthand == "" {
					set.String(option.name, s, option.usage)
				} else {
					set.StringP(option.name, option.shorthand, s, option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(gridCmd)
	Root.AddCommand(plotCmd)
	Root.AddCommand(checkpointCmd)
	Root.AddCommand(locateCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("getm: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "getm",
	Short: "Build and inspect GETM model domains.",
	Long: `getm builds the computational domain of a GETM coastal ocean model:
the staggered horizontal grid, the bathymetry and wet/dry masks, the vertical
layers and the model fields. Use the subcommands specified below to access
the functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'GETM_var' where 'var' is the
name of the variable to be set. Many configuration variables are additionally
allowed to contain environment variables within them.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of the GETM domain tools.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("GETM domain v%s\n", getm.Version)
	},
	DisableAutoGenTag: true,
}

// withDomain builds the configured domain and runs f on it.
func withDomain(cmd *cobra.Command, f func(*getm.Domain) error) error {
	log, closeLog, err := Logger(cmd.OutOrStdout(), Cfg.GetString("LogFile"), Cfg.GetString("LogLevel"))
	if err != nil {
		return err
	}
	defer closeLog()
	d, err := BuildDomain(Cfg, log)
	if err != nil {
		return err
	}
	defer d.Cleanup()
	return f(d)
}

// gridCmd is a command that builds a domain and saves its grid.
var gridCmd = &cobra.Command{
	Use:   "grid",
	Short: "Build a domain and save its grid",
	Long: `grid builds the domain specified by the configuration and saves the
grid cells with their depth, mask and layer ranges as a shapefile.
If TopoOutput is specified, the grid and depth are also saved as a
topography file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDomain(cmd, func(d *getm.Domain) error {
			if err := Grid(d, Cfg.GetString("ShapefileOutput"), Cfg.GetString("TopoOutput")); err != nil {
				return err
			}
			s, err := d.Bathymetry.Summary()
			if err != nil {
				return err
			}
			cmd.Printf("%d wet, %d boundary and %d land cells; depth %g to %g m; volume %g m³\n",
				s.WetCells, s.BoundaryCells, s.LandCells, s.Min, s.Max, s.Volume)
			return nil
		})
	},
	DisableAutoGenTag: true,
}

// plotCmd is a command that plots a variable of the domain.
var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Plot a domain variable",
	Long: `plot builds the domain specified by the configuration and draws a
heat map of one of its cell-centre variables.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDomain(cmd, func(d *getm.Domain) error {
			return Plot(d, Cfg.GetString("PlotVariable"), Cfg.GetString("PlotFile"))
		})
	},
	DisableAutoGenTag: true,
}

// checkpointCmd is a command that writes a checkpoint of the domain.
var checkpointCmd = &cobra.Command{
	Use:   "checkpoint",
	Short: "Write a domain checkpoint",
	Long: `checkpoint builds the domain specified by the configuration, optionally
restoring it from an earlier checkpoint, and writes its fields and layer
indices to a netCDF checkpoint file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDomain(cmd, func(d *getm.Domain) error {
			return Checkpoint(d, Cfg.GetString("CheckpointOutput"))
		})
	},
	DisableAutoGenTag: true,
}

// locateCmd is a command that finds the grid cell containing a point.
var locateCmd = &cobra.Command{
	Use:   "locate x y",
	Short: "Find the grid cell containing a point",
	Long: `locate prints the indices (j, i) of the grid cell that contains the
point (x, y), given in the native coordinates of the grid.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		x, err := cast.ToFloat64E(args[0])
		if err != nil {
			return fmt.Errorf("getm: invalid x coordinate: %v", err)
		}
		y, err := cast.ToFloat64E(args[1])
		if err != nil {
			return fmt.Errorf("getm: invalid y coordinate: %v", err)
		}
		return withDomain(cmd, func(d *getm.Domain) error {
			j, i, ok := d.Geometry.Locate(x, y)
			if !ok {
				return fmt.Errorf("getm: point (%g, %g) is outside of the grid", x, y)
			}
			cmd.Printf("j=%d i=%d mask=%v depth=%g\n", j, i, d.Bathymetry.Mask(getm.Z, j, i),
				d.Bathymetry.Depth(getm.Z).Get(j, i))
			return nil
		})
	},
	DisableAutoGenTag: true,
}
