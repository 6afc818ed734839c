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
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/surfgrid"
	"github.com/spatialmodel/surfgrid/pointset"
	"github.com/spatialmodel/surfgrid/raster"
)

// newLogger returns a logger that writes to w, tagged with a unique
// identifier for the run.
func newLogger(w io.Writer) *logrus.Entry {
	l := logrus.New()
	l.Out = w
	l.Formatter = &logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339Nano,
		DisableSorting:  true,
	}
	l.Level = logrus.InfoLevel
	return l.WithField("run", uuid.New().String())
}

// run sets up logging to w and to a log file next to outputFile, calls f,
// and then uploads any output files destined for blob storage.
func run(ctx context.Context, w io.Writer, logFile, outputFile string, f func(*uploader, *downloader, logrus.FieldLogger) error) error {
	u := new(uploader)
	defer u.cleanup()
	d := new(downloader)
	defer d.cleanup()

	logPath := u.maybeUpload(checkLogFile(logFile, outputFile))
	if u.err != nil {
		return fmt.Errorf("surfgrid: preparing log file: %v", u.err)
	}
	lf, err := os.Create(logPath)
	if err != nil {
		return fmt.Errorf("surfgrid: problem creating log file: %v", err)
	}
	log := newLogger(io.MultiWriter(w, lf))

	start := time.Now()
	err = f(u, d, log)
	if err != nil {
		log.WithError(err).Error("run failed")
	} else {
		log.WithField("duration", time.Since(start)).Info("run completed")
	}
	if cerr := lf.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("surfgrid: closing log file: %v", cerr)
	}
	if err != nil {
		return err
	}
	return u.upload(ctx)
}

// Points generates sample points within the polygon in cfg.PolygonFile and
// saves them to cfg.PointsFile. Log messages are written to w.
func Points(ctx context.Context, w io.Writer, cfg *Config) error {
	if err := checkOutputFile(ctx, "PointsFile", cfg.PointsFile); err != nil {
		return err
	}
	return run(ctx, w, cfg.LogFile, cfg.PointsFile, func(u *uploader, d *downloader, log logrus.FieldLogger) error {
		_, err := makePoints(ctx, cfg, u, d, log)
		return err
	})
}

// makePoints generates sample points and, if cfg.PointsFile is set,
// saves them.
func makePoints(ctx context.Context, cfg *Config, u *uploader, d *downloader, log logrus.FieldLogger) (surfgrid.PointSet, error) {
	if cfg.PolygonFile == "" {
		return nil, fmt.Errorf(`surfgrid: you need to specify a polygon file configuration variable (for example: PolygonFile="area.shp")`)
	}
	polyPath, err := d.maybeDownload(ctx, cfg.PolygonFile)
	if err != nil {
		return nil, err
	}
	poly, err := pointset.LoadPolygon(polyPath)
	if err != nil {
		return nil, err
	}
	pts, err := pointset.Generate(poly, cfg.NumPoints, cfg.MinValue, cfg.MaxValue, cfg.Seed)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"candidates": cfg.NumPoints,
		"points":     len(pts),
		"seed":       cfg.Seed,
	}).Info("generated sample points")

	if cfg.PointsFile == "" {
		return pts, nil
	}
	local := u.maybeUpload(cfg.PointsFile)
	if u.err != nil {
		return nil, u.err
	}
	if err := pointset.WriteShapefile(local, cfg.ValueColumn, pts); err != nil {
		return nil, err
	}
	log.WithField("file", cfg.PointsFile).Info("saved sample points")
	return pts, nil
}

// Interpolate creates a raster surface from sample points and writes it to
// cfg.OutputFile. The points are generated unless cfg.SkipPoints is true,
// in which case they are read from cfg.PointsFile. Log messages are
// written to w.
func Interpolate(ctx context.Context, w io.Writer, cfg *Config) error {
	if err := checkOutputFile(ctx, "OutputFile", cfg.OutputFile); err != nil {
		return err
	}
	if cfg.SkipPoints && cfg.PointsFile == "" {
		return fmt.Errorf("surfgrid: --skip-points requires PointsFile to be set")
	}
	if !cfg.SkipPoints && cfg.PointsFile != "" {
		if err := checkOutputFile(ctx, "PointsFile", cfg.PointsFile); err != nil {
			return err
		}
	}
	interp, err := surfgrid.NewInterpolator(cfg.Method, cfg.FillValue, cfg.Rescale)
	if err != nil {
		return err
	}
	return run(ctx, w, cfg.LogFile, cfg.OutputFile, func(u *uploader, d *downloader, log logrus.FieldLogger) error {
		var pts surfgrid.PointSet
		if cfg.SkipPoints {
			path, err := d.maybeDownload(ctx, cfg.PointsFile)
			if err != nil {
				return err
			}
			if pts, err = pointset.ReadShapefile(path, cfg.ValueColumn); err != nil {
				return err
			}
			log.WithFields(logrus.Fields{
				"file":   cfg.PointsFile,
				"points": len(pts),
			}).Info("read sample points")
		} else {
			var err error
			if pts, err = makePoints(ctx, cfg, u, d, log); err != nil {
				return err
			}
		}
		output := u.maybeUpload(cfg.OutputFile)
		if u.err != nil {
			return u.err
		}
		log.WithFields(logrus.Fields{
			"method":     cfg.Method,
			"strategy":   cfg.Method.Strategy(),
			"resolution": cfg.Resolution,
		}).Info("interpolating")
		s := &surfgrid.Surface{EPSG: cfg.EPSG, Log: log}
		return surfgrid.Run(s,
			surfgrid.BuildLattice(pts, cfg.Resolution),
			surfgrid.Interpolate(pts, interp),
			surfgrid.Georeference(),
			raster.Output(ctx, output, cfg.Profile),
		)
	})
}
