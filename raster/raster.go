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

// Package raster writes georeferenced surfaces to raster files.
package raster

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/surfgrid"
)

// Driver names.
const (
	GTiff  = "GTiff"
	NetCDF = "netCDF"
)

// Data types.
const (
	Float64 = "float64"
	Float32 = "float32"
)

// Compression methods.
const (
	Deflate = "deflate"
	None    = "none"
)

// DefaultBlockSize is the edge length, in nodes, of the blocks a surface is
// staged in while it is written.
const DefaultBlockSize = 100

// ErrUnknownDriver is returned when a profile names a driver that has not
// been registered.
var ErrUnknownDriver = errors.New("raster: unknown driver")

// Profile holds the options for writing a raster file. Zero-valued fields
// are replaced by their defaults.
type Profile struct {
	// Driver is the name of the file format. The default is GTiff.
	Driver string

	// DType is the data type values are stored as, either Float64 (the
	// default) or Float32.
	DType string

	// Compression is the compression method, Deflate (the default) or None.
	// It is ignored by drivers that do not compress.
	Compression string

	// BlockSize is the edge length of the blocks the surface is staged in.
	BlockSize int
}

// DefaultProfile returns the default output profile: a deflate-compressed
// float64 GeoTIFF.
func DefaultProfile() Profile {
	return Profile{Driver: GTiff, DType: Float64, Compression: Deflate, BlockSize: DefaultBlockSize}
}

// withDefaults fills in unset fields and checks the rest.
func (p Profile) withDefaults() (Profile, error) {
	d := DefaultProfile()
	if p.Driver == "" {
		p.Driver = d.Driver
	}
	if p.DType == "" {
		p.DType = d.DType
	}
	if p.Compression == "" {
		p.Compression = d.Compression
	}
	if p.BlockSize == 0 {
		p.BlockSize = d.BlockSize
	}
	switch p.DType {
	case Float64, Float32:
	default:
		return p, fmt.Errorf("raster: invalid data type %q; valid types are %s and %s", p.DType, Float64, Float32)
	}
	switch p.Compression {
	case Deflate, None:
	default:
		return p, fmt.Errorf("raster: invalid compression %q; valid options are %s and %s", p.Compression, Deflate, None)
	}
	if p.BlockSize < 0 {
		return p, fmt.Errorf("raster: block size must be > 0 but is %d", p.BlockSize)
	}
	return p, nil
}

// File is the destination a Sink writes to.
type File interface {
	io.Writer
	io.ReaderAt
	io.WriterAt
}

// Sink encodes a surface in a file format.
type Sink interface {
	Write(ctx context.Context, f File, s *surfgrid.Surface, p Profile) error
}

var (
	sinksMu sync.RWMutex
	sinks   = make(map[string]Sink)
)

// Register makes a sink available under the given driver name. Driver
// names are not case sensitive. Registering a name twice replaces the
// earlier sink.
func Register(driver string, s Sink) {
	sinksMu.Lock()
	defer sinksMu.Unlock()
	sinks[strings.ToLower(driver)] = s
}

// Drivers returns the sorted names of the registered drivers.
func Drivers() []string {
	sinksMu.RLock()
	defer sinksMu.RUnlock()
	o := make([]string, 0, len(sinks))
	for d := range sinks {
		o = append(o, d)
	}
	sort.Strings(o)
	return o
}

func lookup(driver string) (Sink, error) {
	sinksMu.RLock()
	defer sinksMu.RUnlock()
	s, ok := sinks[strings.ToLower(driver)]
	if !ok {
		return nil, fmt.Errorf("%w %q; registered drivers are %v", ErrUnknownDriver, driver, Drivers())
	}
	return s, nil
}

func init() {
	Register(GTiff, GeoTIFF{})
	Register(NetCDF, CDF{})
}

// Write writes s to the file at path using the driver named in p. The
// data are written to a temporary file in the same directory, which is
// moved to path only once it is complete, so a failed write never leaves a
// partial file at path.
func Write(ctx context.Context, path string, s *surfgrid.Surface, p Profile) (err error) {
	p, err = p.withDefaults()
	if err != nil {
		return err
	}
	if s == nil || s.Lattice == nil || s.Rows() == 0 || s.Cols() == 0 {
		return fmt.Errorf("raster: cannot write an empty surface")
	}
	sink, err := lookup(p.Driver)
	if err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("raster: creating output file: %v", err)
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tmp)
		}
	}()
	if err = sink.Write(ctx, f, s, p); err != nil {
		return fmt.Errorf("raster: writing %s file %s: %w", p.Driver, path, err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("raster: closing output file: %v", err)
	}
	if err = os.Rename(tmp, path); err != nil {
		return fmt.Errorf("raster: moving output file into place: %v", err)
	}
	return nil
}

// Output returns a function that writes the surface to path.
func Output(ctx context.Context, path string, p Profile) surfgrid.Manipulator {
	return func(s *surfgrid.Surface) error {
		if err := Write(ctx, path, s, p); err != nil {
			return err
		}
		driver := p.Driver
		if driver == "" {
			driver = GTiff
		}
		s.Logger().WithFields(logrus.Fields{
			"file":   path,
			"driver": driver,
			"rows":   s.Rows(),
			"cols":   s.Cols(),
		}).Info("wrote surface")
		return nil
	}
}
