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
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/lnashier/viper"
	"github.com/platipodium/mossco-getm"
	"github.com/spf13/cast"
)

// DomainConfig unmarshals a viper configuration for a model domain.
func DomainConfig(cfg *viper.Viper) (*getm.DomainConfig, error) {
	thicknesses, err := toFloat64SliceE(cfg.Get("LayerThicknesses"))
	if err != nil {
		return nil, fmt.Errorf("LayerThicknesses: %v", err)
	}
	open, err := toBoundaryConfigsE(cfg.Get("OpenBoundaries"))
	if err != nil {
		return nil, fmt.Errorf("OpenBoundaries: %v", err)
	}
	c := getm.DomainConfig{
		GridType:          os.ExpandEnv(cfg.GetString("GridType")),
		Nx:                cfg.GetInt("Nx"),
		Ny:                cfg.GetInt("Ny"),
		X0:                cfg.GetFloat64("X0"),
		Y0:                cfg.GetFloat64("Y0"),
		Dx:                cfg.GetFloat64("Dx"),
		Dy:                cfg.GetFloat64("Dy"),
		Projection:        os.ExpandEnv(cfg.GetString("Projection")),
		Latitude:          cfg.GetFloat64("Latitude"),
		TopoFile:          os.ExpandEnv(cfg.GetString("TopoFile")),
		DepthExpression:   cfg.GetString("DepthExpression"),
		MinDepth:          cfg.GetFloat64("MinDepth"),
		FaceDepthRule:     cfg.GetString("FaceDepthRule"),
		OpenBoundaries:    open,
		Layers:            cfg.GetInt("Layers"),
		LayerThickness:    cfg.GetFloat64("LayerThickness"),
		LayerThicknesses:  thicknesses,
		MinLayerThickness: cfg.GetFloat64("MinLayerThickness"),
		Roughness:         cfg.GetFloat64("Roughness"),
		Features:          expandStringSlice(cfg.GetStringSlice("Features")),
		Checkpoint:        os.ExpandEnv(cfg.GetString("Checkpoint")),
	}

	vars := []float64{c.MinDepth, c.MinLayerThickness}
	varNames := []string{"MinDepth", "MinLayerThickness"}
	for i, v := range vars {
		if !(v > 0) {
			return nil, fmt.Errorf("parsing domain configuration: %s=%g but should be >0", varNames[i], v)
		}
	}
	if c.Roughness < 0 {
		return nil, fmt.Errorf("parsing domain configuration: Roughness=%g but should be >=0", c.Roughness)
	}
	if c.TopoFile == "" && c.DepthExpression == "" {
		return nil, fmt.Errorf("parsing domain configuration: either TopoFile or DepthExpression must be specified")
	}
	return &c, nil
}

func expandStringSlice(s []string) []string {
	for i := 0; i < len(s); i++ {
		s[i] = os.ExpandEnv(s[i])
	}
	return s
}

// toFloat64SliceE converts a configuration value to a []float64. The value
// may be a list from a configuration file or a JSON array if it was set
// from a command line argument.
func toFloat64SliceE(s interface{}) ([]float64, error) {
	switch v := s.(type) {
	case nil:
		return nil, nil
	case []float64:
		return v, nil
	case []interface{}:
		o := make([]float64, len(v))
		for i, val := range v {
			f, err := cast.ToFloat64E(val)
			if err != nil {
				return nil, err
			}
			o[i] = f
		}
		return o, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		var o []float64
		if err := json.Unmarshal([]byte(v), &o); err != nil {
			return nil, err
		}
		return o, nil
	default:
		return nil, fmt.Errorf("invalid type %T for list of numbers", s)
	}
}

// toBoundaryConfigsE converts a configuration value to a list of open
// boundary segments. The value may be an array of tables from a
// configuration file or a JSON array if it was set from a command line
// argument.
func toBoundaryConfigsE(s interface{}) ([]getm.BoundaryConfig, error) {
	var maps []interface{}
	switch v := s.(type) {
	case nil:
		return nil, nil
	case []getm.BoundaryConfig:
		return v, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		var o []getm.BoundaryConfig
		if err := json.Unmarshal([]byte(v), &o); err != nil {
			return nil, err
		}
		return o, nil
	case []map[string]interface{}:
		for _, m := range v {
			maps = append(maps, m)
		}
	case []interface{}:
		maps = v
	default:
		return nil, fmt.Errorf("invalid type %T for list of boundaries", s)
	}
	o := make([]getm.BoundaryConfig, len(maps))
	for n, mi := range maps {
		m, err := cast.ToStringMapE(mi)
		if err != nil {
			return nil, err
		}
		for k, val := range m {
			var err error
			switch strings.ToLower(k) {
			case "side":
				o[n].Side, err = cast.ToStringE(val)
			case "index":
				o[n].Index, err = cast.ToIntE(val)
			case "start":
				o[n].Start, err = cast.ToIntE(val)
			case "end":
				o[n].End, err = cast.ToIntE(val)
			default:
				err = fmt.Errorf("unknown boundary key %q", k)
			}
			if err != nil {
				return nil, fmt.Errorf("boundary %d: %v", n, err)
			}
		}
	}
	return o, nil
}
