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

// Package surfgridutil contains the surfgrid command-line interface.
package surfgridutil

import (
	"context"
	"fmt"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/surfgrid"
	"github.com/spatialmodel/surfgrid/pointset"
	"github.com/spatialmodel/surfgrid/raster"
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
	// Options are the configuration options available to surfgrid.
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
			name: "PolygonFile",
			usage: `
              PolygonFile is the path to a shapefile (.shp) or GeoJSON file
              (.geojson or .json) holding the polygon that sample points are
              generated within. It can be a local path, an http(s) URL, or a
              blob storage location (gs://, s3://, or file://).`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{pointsCmd.Flags(), interpolateCmd.Flags()},
		},
		{
			name: "PointsFile",
			usage: `
              PointsFile is the path to the point shapefile that sample points
              are written to, or read from when --skip-points is set.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{pointsCmd.Flags(), interpolateCmd.Flags()},
		},
		{
			name: "NumPoints",
			usage: `
              NumPoints is the number of candidate locations drawn within the
              polygon bounding box. Only the candidates that fall within the
              polygon are kept.`,
			defaultVal: pointset.DefaultNumPoints,
			flagsets:   []*pflag.FlagSet{pointsCmd.Flags(), interpolateCmd.Flags()},
		},
		{
			name: "Seed",
			usage: `
              Seed is the seed for the random number generator used to
              create sample points and their values.`,
			defaultVal: 1,
			flagsets:   []*pflag.FlagSet{pointsCmd.Flags(), interpolateCmd.Flags()},
		},
		{
			name: "ValueColumn",
			usage: `
              ValueColumn is the name of the point shapefile attribute column
              holding the sample values.`,
			defaultVal: pointset.DefaultColumn,
			flagsets:   []*pflag.FlagSet{pointsCmd.Flags(), interpolateCmd.Flags()},
		},
		{
			name: "MinValue",
			usage: `
              MinValue is the smallest random sample value.`,
			defaultVal: pointset.DefaultMinValue,
			flagsets:   []*pflag.FlagSet{pointsCmd.Flags(), interpolateCmd.Flags()},
		},
		{
			name: "MaxValue",
			usage: `
              MaxValue is the upper bound (exclusive) of the random sample
              values.`,
			defaultVal: pointset.DefaultMaxValue,
			flagsets:   []*pflag.FlagSet{pointsCmd.Flags(), interpolateCmd.Flags()},
		},
		{
			name: "skip-points",
			usage: `
              skip-points specifies that sample points should be read from
              PointsFile instead of being generated.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{interpolateCmd.Flags()},
		},
		{
			name: "Resolution",
			usage: `
              Resolution is the spacing between lattice nodes, in the units of
              the point coordinates.`,
			shorthand:  "r",
			defaultVal: 2.0,
			flagsets:   []*pflag.FlagSet{interpolateCmd.Flags()},
		},
		{
			name: "Method",
			usage: `
              Method is the interpolation method. Scattered methods are
              nearest, linear, and cubic; triangulated methods are
              linear_triangulated, cubic_min_energy, and cubic_geometry.`,
			shorthand:  "m",
			defaultVal: surfgrid.Linear.String(),
			flagsets:   []*pflag.FlagSet{interpolateCmd.Flags()},
		},
		{
			name: "FillValue",
			usage: `
              FillValue is the value given to lattice nodes outside the convex
              hull of the points by the scattered linear and cubic methods.`,
			defaultVal: "NaN",
			flagsets:   []*pflag.FlagSet{interpolateCmd.Flags()},
		},
		{
			name: "Rescale",
			usage: `
              Rescale specifies whether point coordinates should be rescaled
              to unit range before scattered interpolation.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{interpolateCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path of the raster file to create. It can be a
              blob storage location, in which case the file is uploaded after
              it is written.`,
			shorthand:  "o",
			defaultVal: "surface.tif",
			flagsets:   []*pflag.FlagSet{interpolateCmd.Flags()},
		},
		{
			name: "Driver",
			usage: `
              Driver is the raster file format, either GTiff or netCDF.`,
			defaultVal: raster.GTiff,
			flagsets:   []*pflag.FlagSet{interpolateCmd.Flags()},
		},
		{
			name: "DType",
			usage: `
              DType is the data type raster values are stored as, either
              float64 or float32.`,
			defaultVal: raster.Float64,
			flagsets:   []*pflag.FlagSet{interpolateCmd.Flags()},
		},
		{
			name: "Compression",
			usage: `
              Compression is the GeoTIFF compression method, either deflate or
              none.`,
			defaultVal: raster.Deflate,
			flagsets:   []*pflag.FlagSet{interpolateCmd.Flags()},
		},
		{
			name: "EPSG",
			usage: `
              EPSG is the code of the coordinate reference system of the point
              coordinates, which the raster file is tagged with.`,
			defaultVal: surfgrid.DefaultEPSG,
			flagsets:   []*pflag.FlagSet{interpolateCmd.Flags()},
		},
		{
			name: "BlockSize",
			usage: `
              BlockSize is the edge length, in lattice nodes, of the blocks the
              surface is written in.`,
			defaultVal: raster.DefaultBlockSize,
			flagsets:   []*pflag.FlagSet{interpolateCmd.Flags()},
		},
		{
			name: "LogFile",
			usage: `
              LogFile is the path to the desired logfile location. It can
              include environment variables. If LogFile is left blank, the
              logfile will be saved in the same location as the OutputFile
              (or PointsFile for the points command).`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{pointsCmd.Flags(), interpolateCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("SURFGRID")
	Cfg.AutomaticEnv()

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
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
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
	Root.AddCommand(pointsCmd)
	Root.AddCommand(interpolateCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("surfgrid: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "surfgrid",
	Short: "Interpolate scattered points onto a raster surface.",
	Long: `surfgrid turns scattered sample points into a regular, georeferenced
raster surface. Use the subcommands specified below to access the
functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'SURFGRID_var' where 'var' is the
name of the variable to be set. Many configuration variables are additionally
allowed to contain environment variables within them.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of surfgrid.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("surfgrid v%s\n", surfgrid.Version)
	},
	DisableAutoGenTag: true,
}

// pointsCmd generates sample points and saves them to a shapefile.
var pointsCmd = &cobra.Command{
	Use:   "points",
	Short: "Generate random sample points within a polygon.",
	Long: `points draws random sample locations within the polygon in PolygonFile,
gives each a random value, and saves them to the point shapefile PointsFile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig(Cfg)
		if err != nil {
			return err
		}
		return Points(context.Background(), cmd.OutOrStdout(), cfg)
	},
	DisableAutoGenTag: true,
}

// interpolateCmd creates a raster surface from sample points.
var interpolateCmd = &cobra.Command{
	Use:   "interpolate",
	Short: "Interpolate sample points onto a raster surface.",
	Long: `interpolate generates sample points (or reads them from PointsFile if
--skip-points is set), interpolates their values onto a regular lattice
spanning their extent using the chosen Method, and writes the result to the
raster file OutputFile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig(Cfg)
		if err != nil {
			return err
		}
		return Interpolate(context.Background(), cmd.OutOrStdout(), cfg)
	},
	DisableAutoGenTag: true,
}
