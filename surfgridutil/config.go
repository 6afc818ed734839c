/*
Copyright © 2026 the surfgrid authors.
This file is part of surfgrid.

surfgrid is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

surfgrid is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with surfgrid.  If not, see <http://www.gnu.org/licenses/>.
*/

package surfgridutil

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/surfgrid"
	"github.com/spatialmodel/surfgrid/raster"
	"github.com/spf13/cast"
)

// Config holds the settings for a surfgrid run.
type Config struct {
	// PolygonFile holds the polygon sample points are generated within.
	PolygonFile string

	// PointsFile is where sample points are saved, or read from if
	// SkipPoints is true.
	PointsFile string

	// SkipPoints specifies that points should be read from PointsFile
	// rather than generated.
	SkipPoints bool

	NumPoints          int
	Seed               uint64
	ValueColumn        string
	MinValue, MaxValue int

	Resolution float64
	Method     surfgrid.Method
	FillValue  float64
	Rescale    bool

	OutputFile string
	Profile    raster.Profile
	EPSG       int

	LogFile string
}

// LoadConfig reads a Config from cfg, expanding environment variables in
// file paths.
func LoadConfig(cfg *viper.Viper) (*Config, error) {
	c := &Config{
		PolygonFile: os.ExpandEnv(cfg.GetString("PolygonFile")),
		PointsFile:  os.ExpandEnv(cfg.GetString("PointsFile")),
		SkipPoints:  cfg.GetBool("skip-points"),
		ValueColumn: cfg.GetString("ValueColumn"),
		Rescale:     cfg.GetBool("Rescale"),
		OutputFile:  os.ExpandEnv(cfg.GetString("OutputFile")),
		LogFile:     os.ExpandEnv(cfg.GetString("LogFile")),
		Profile: raster.Profile{
			Driver:      cfg.GetString("Driver"),
			DType:       cfg.GetString("DType"),
			Compression: cfg.GetString("Compression"),
		},
	}
	var err error
	ints := []struct {
		name string
		v    *int
	}{
		{"NumPoints", &c.NumPoints},
		{"MinValue", &c.MinValue},
		{"MaxValue", &c.MaxValue},
		{"EPSG", &c.EPSG},
		{"BlockSize", &c.Profile.BlockSize},
	}
	for _, i := range ints {
		if *i.v, err = cast.ToIntE(cfg.Get(i.name)); err != nil {
			return nil, fmt.Errorf("surfgrid: invalid %s: %v", i.name, err)
		}
	}
	seed, err := cast.ToInt64E(cfg.Get("Seed"))
	if err != nil {
		return nil, fmt.Errorf("surfgrid: invalid Seed: %v", err)
	}
	c.Seed = uint64(seed)
	if c.Resolution, err = cast.ToFloat64E(cfg.Get("Resolution")); err != nil {
		return nil, fmt.Errorf("surfgrid: invalid Resolution: %v", err)
	}
	if c.FillValue, err = cast.ToFloat64E(cfg.Get("FillValue")); err != nil {
		return nil, fmt.Errorf("surfgrid: invalid FillValue: %v", err)
	}
	if c.Method, err = surfgrid.ParseMethod(cfg.GetString("Method")); err != nil {
		return nil, err
	}
	return c, nil
}

// checkOutputFile makes sure that the output file is specified and its
// directory or bucket exists.
func checkOutputFile(ctx context.Context, name, f string) error {
	if f == "" {
		return fmt.Errorf(`surfgrid: you need to specify an output file configuration variable (for example: %s="surface.tif")`, name)
	}
	if IsBlob(f) {
		u, err := url.Parse(f)
		if err != nil {
			return err
		}
		b, err := OpenBucket(ctx, u.Scheme+"://"+u.Host)
		if err != nil {
			return fmt.Errorf("surfgrid: error when checking %s location: %v", name, err)
		}
		return b.Close()
	}
	if _, err := os.Stat(filepath.Dir(f)); err != nil {
		return fmt.Errorf("surfgrid: the %s directory doesn't exist: %v", name, err)
	}
	return nil
}

// checkLogFile fills in a default value for the log file path if one isn't
// specified.
func checkLogFile(logFile, outputFile string) string {
	if logFile == "" {
		logFile = strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + ".log"
	}
	return logFile
}
