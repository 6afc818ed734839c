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

package surfgrid

import (
	"fmt"
	"math"

	"github.com/ctessum/sparse"
	"github.com/sirupsen/logrus"
)

// DefaultEPSG is the coordinate reference system code used when none is
// specified: WGS 84 longitude and latitude.
const DefaultEPSG = 4326

// Surface is a georeferenced lattice: the unit that is written to a
// raster file.
type Surface struct {
	*Lattice

	// Transform maps (column, row) lattice indices to world coordinates.
	Transform Affine

	// NoData marks nodes without a value. It is NaN.
	NoData float64

	// EPSG is the code of the coordinate reference system of the lattice
	// coordinates.
	EPSG int

	// Log receives status messages. If nil, the logrus standard logger
	// is used.
	Log logrus.FieldLogger
}

// NewSurface georeferences lattice l. If epsg is zero, DefaultEPSG is used.
func NewSurface(l *Lattice, epsg int) (*Surface, error) {
	s := &Surface{Lattice: l, EPSG: epsg}
	if err := Georeference()(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Logger returns the logger that receives status messages for s.
func (s *Surface) Logger() logrus.FieldLogger {
	if s.Log == nil {
		return logrus.StandardLogger()
	}
	return s.Log
}

// Block is a rectangular section of a surface.
type Block struct {
	// Row and Col are the indices of the first node in the block.
	Row, Col int

	// Rows and Cols are the dimensions of the block.
	Rows, Cols int
}

// Blocks partitions the surface into blocks of size x size nodes, in row
// major order. Blocks at the bottom and right edges may be smaller.
func (s *Surface) Blocks(size int) ([]Block, error) {
	if size <= 0 {
		return nil, fmt.Errorf("surfgrid: block size must be > 0 but is %d", size)
	}
	var o []Block
	for row := 0; row < s.Rows(); row += size {
		for col := 0; col < s.Cols(); col += size {
			o = append(o, Block{
				Row:  row,
				Col:  col,
				Rows: min(size, s.Rows()-row),
				Cols: min(size, s.Cols()-col),
			})
		}
	}
	return o, nil
}

// Block returns a copy of the values in block b, with shape
// (b.Rows, b.Cols).
func (s *Surface) Block(b Block) *sparse.DenseArray {
	o := sparse.ZerosDense(b.Rows, b.Cols)
	for r := 0; r < b.Rows; r++ {
		row := s.Row(b.Row + r)
		copy(o.Elements[r*b.Cols:(r+1)*b.Cols], row[b.Col:b.Col+b.Cols])
	}
	return o
}

// Manipulator is a step in the gridding pipeline.
type Manipulator func(*Surface) error

// Run applies the manipulators to s in order, stopping at the first error.
func Run(s *Surface, funcs ...Manipulator) error {
	for _, f := range funcs {
		if err := f(s); err != nil {
			return err
		}
	}
	return nil
}

// BuildLattice returns a function that creates the lattice of s from the
// extent of points.
func BuildLattice(points PointSet, resolution float64) Manipulator {
	return func(s *Surface) error {
		l, err := NewLattice(points, resolution)
		if err != nil {
			return err
		}
		s.Lattice = l
		s.Logger().WithFields(logrus.Fields{
			"rows":       l.Rows(),
			"cols":       l.Cols(),
			"resolution": resolution,
		}).Info("created lattice")
		return nil
	}
}

// Interpolate returns a function that fills the lattice of s from points
// using interp.
func Interpolate(points PointSet, interp Interpolator) Manipulator {
	return func(s *Surface) error {
		if err := interp.Interpolate(points, s.Lattice); err != nil {
			return err
		}
		s.Logger().WithFields(logrus.Fields{
			"points":  len(points),
			"nodes":   len(s.Z.Elements),
			"missing": missingCount(interp, s.Z.Elements),
		}).Infof("interpolated with %T", interp)
		return nil
	}
}

// missingCount returns the number of nodes in z that interp left without
// an estimate. Interpolators that do not report their fill value are
// assumed to use NaN.
func missingCount(interp Interpolator, z []float64) int {
	fill, ok := math.NaN(), true
	if m, isM := interp.(interface{ missing() (float64, bool) }); isM {
		fill, ok = m.missing()
	}
	if !ok {
		return 0
	}
	var n int
	for _, v := range z {
		if v == fill || (math.IsNaN(fill) && math.IsNaN(v)) {
			n++
		}
	}
	return n
}

// Georeference returns a function that sets the transform of s from its
// lattice and the nodata marker to NaN.
func Georeference() Manipulator {
	return func(s *Surface) error {
		if s.Lattice == nil || len(s.Xs) == 0 || len(s.Ys) == 0 {
			return fmt.Errorf("surfgrid: cannot georeference an empty lattice")
		}
		a, err := NewAffine(s.Xs[0], s.Ys[0], s.Resolution)
		if err != nil {
			return err
		}
		s.Transform = a
		s.NoData = math.NaN()
		if s.EPSG == 0 {
			s.EPSG = DefaultEPSG
		}
		s.Logger().WithField("transform", a.GDAL()).Debug("georeferenced surface")
		return nil
	}
}
