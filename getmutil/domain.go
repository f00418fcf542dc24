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
	"fmt"
	"io"
	"os"

	"github.com/lnashier/viper"
	"github.com/platipodium/mossco-getm"
	"github.com/sirupsen/logrus"
)

// Logger returns a logger that writes to w and, if logFile is not empty,
// to the file at that path. The returned function closes the log file.
func Logger(w io.Writer, logFile, level string) (*logrus.Logger, func() error, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("getmutil: LogLevel: %v", err)
	}
	log := logrus.New()
	log.Level = lvl
	log.Out = w
	closer := func() error { return nil }
	if logFile != "" {
		f, err := os.Create(os.ExpandEnv(logFile))
		if err != nil {
			return nil, nil, fmt.Errorf("getmutil: creating log file: %v", err)
		}
		log.Out = io.MultiWriter(w, f)
		closer = f.Close
	}
	return log, closer, nil
}

// BuildDomain initializes the domain described by cfg. Status messages
// are sent to log.
func BuildDomain(cfg *viper.Viper, log logrus.FieldLogger) (*getm.Domain, error) {
	c, err := DomainConfig(cfg)
	if err != nil {
		return nil, err
	}
	funcs, err := c.InitFuncs()
	if err != nil {
		return nil, err
	}
	d := &getm.Domain{
		Log:       log,
		InitFuncs: funcs,
	}
	if err := d.Init(); err != nil {
		return nil, err
	}
	return d, nil
}

// Grid writes the grid of d as a shapefile to shapePath and, if topoPath
// is not empty, as a topography file to topoPath.
func Grid(d *getm.Domain, shapePath, topoPath string) error {
	if shapePath != "" {
		if err := d.WriteGridShapefile(os.ExpandEnv(shapePath)); err != nil {
			return err
		}
		d.Log.WithField("file", shapePath).Info("getmutil: wrote grid shapefile")
	}
	if topoPath == "" {
		return nil
	}
	f, err := os.Create(os.ExpandEnv(topoPath))
	if err != nil {
		return fmt.Errorf("getmutil: creating topography file: %v", err)
	}
	g := d.Geometry
	if err := getm.WriteTopo(f, g.Coordinates(), g.Type(), d.Bathymetry.RawDepth(getm.Z)); err != nil {
		f.Close()
		return err
	}
	d.Log.WithField("file", topoPath).Info("getmutil: wrote topography")
	return f.Close()
}

// Checkpoint writes the state of d to a netCDF checkpoint at path.
func Checkpoint(d *getm.Domain, path string) error {
	f, err := os.Create(os.ExpandEnv(path))
	if err != nil {
		return fmt.Errorf("getmutil: creating checkpoint file: %v", err)
	}
	if err := getm.SaveCheckpoint(f)(d); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
