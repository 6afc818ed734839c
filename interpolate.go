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
	"errors"
	"fmt"
	"math"
	"runtime"

	"github.com/spatialmodel/surfgrid/triangulation"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ScatteredInterpolator fits one global model over all of the points and
// evaluates it at every lattice node.
type ScatteredInterpolator struct {
	// Method must be Nearest, Linear or Cubic.
	Method Method

	// FillValue is stored at nodes outside of the convex hull of the points
	// for the Linear and Cubic methods. Use math.NaN() to mark them as
	// missing.
	FillValue float64

	// Rescale specifies whether to normalize the x and y coordinates to
	// comparable ranges before fitting. It does not change the lattice
	// coordinates.
	Rescale bool
}

// Interpolate fills the values of l from points.
func (s *ScatteredInterpolator) Interpolate(points PointSet, l *Lattice) error {
	if s.Method.Strategy() != Scattered {
		return fmt.Errorf("%w: %v is not a scattered interpolation method", ErrInvalidMethod, s.Method)
	}
	if err := checkInputs(points, l); err != nil {
		return err
	}
	m, err := s.model(points)
	if err != nil {
		return err
	}
	return fill(l, m, s.FillValue)
}

// model fits the interpolation model to points.
func (s *ScatteredInterpolator) model(points PointSet) (triangulation.Interpolator, error) {
	x, y, z := points.Columns()
	var xf scaling
	if s.Rescale {
		xf = newScaling(x, y)
		xf.apply(x, y)
	} else {
		xf = identity
	}
	var m triangulation.Interpolator
	switch s.Method {
	case Nearest:
		m = newNearestModel(x, y, z)
	case Linear:
		tri, err := triangulate(x, y)
		if err != nil {
			return nil, err
		}
		if m, err = triangulation.NewLinear(tri, z); err != nil {
			return nil, err
		}
	case Cubic:
		tri, err := triangulate(x, y)
		if err != nil {
			return nil, err
		}
		if m, err = triangulation.NewCubic(tri, z, triangulation.MinEnergy); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %v is not a scattered interpolation method", ErrInvalidMethod, s.Method)
	}
	return scaled{Interpolator: m, scaling: xf}, nil
}

// missing returns the value stored at nodes without an estimate.
func (s *ScatteredInterpolator) missing() (float64, bool) {
	return s.FillValue, s.Method != Nearest
}

// TriangulatedInterpolator evaluates a surface fitted over the Delaunay
// triangulation of the points at every lattice node. Nodes outside of the
// triangulation are set to NaN.
type TriangulatedInterpolator struct {
	// Method must be LinearTriangulated, CubicMinEnergy or CubicGeometry.
	Method Method
}

// Interpolate fills the values of l from points.
func (t *TriangulatedInterpolator) Interpolate(points PointSet, l *Lattice) error {
	if t.Method.Strategy() != Triangulated {
		return fmt.Errorf("%w: %v is not a triangulated interpolation method", ErrInvalidMethod, t.Method)
	}
	if err := checkInputs(points, l); err != nil {
		return err
	}
	m, err := t.model(points)
	if err != nil {
		return err
	}
	return fill(l, m, math.NaN())
}

// model fits the triangulated surface to points.
func (t *TriangulatedInterpolator) model(points PointSet) (triangulation.Interpolator, error) {
	var kind triangulation.GradientKind
	switch t.Method {
	case LinearTriangulated:
	case CubicMinEnergy:
		kind = triangulation.MinEnergy
	case CubicGeometry:
		kind = triangulation.Geometric
	default:
		return nil, fmt.Errorf("%w: %v is not a triangulated interpolation method", ErrInvalidMethod, t.Method)
	}
	if len(points) < 3 {
		return nil, ErrTooFewPoints
	}
	x, y, z := points.Columns()
	tri, err := triangulate(x, y)
	if err != nil {
		return nil, err
	}
	if t.Method == LinearTriangulated {
		return triangulation.NewLinear(tri, z)
	}
	return triangulation.NewCubic(tri, z, kind)
}

func (t *TriangulatedInterpolator) missing() (float64, bool) {
	return math.NaN(), true
}

func checkInputs(points PointSet, l *Lattice) error {
	if err := points.Validate(); err != nil {
		return err
	}
	if l == nil || l.Z == nil {
		return fmt.Errorf("surfgrid: the lattice has not been created")
	}
	if len(l.Z.Shape) != 2 || l.Z.Shape[0] != len(l.Ys) || l.Z.Shape[1] != len(l.Xs) {
		return fmt.Errorf("surfgrid: lattice values do not match its %d x %d coordinates", len(l.Ys), len(l.Xs))
	}
	return nil
}

// triangulate creates the Delaunay triangulation of the given locations.
func triangulate(x, y []float64) (*triangulation.Triangulation, error) {
	tri, err := triangulation.New(x, y)
	if errors.Is(err, triangulation.ErrTooFewPoints) {
		return nil, ErrTooFewPoints
	} else if err != nil {
		return nil, fmt.Errorf("surfgrid: triangulating %d points: %w", len(x), err)
	}
	return tri, nil
}

// fill evaluates m at every node of l, storing missing where m has no
// value. Rows are evaluated concurrently; each node is independent of the
// others.
func fill(l *Lattice, m triangulation.Interpolator, missing float64) error {
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for row := range l.Ys {
		row := row
		g.Go(func() error {
			y := l.Ys[row]
			z := l.Row(row)
			for col, x := range l.Xs {
				if v, ok := m.At(x, y); ok {
					z[col] = v
				} else {
					z[col] = missing
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// scaling centers coordinates on an offset and divides them by a scale.
type scaling struct {
	ox, oy, sx, sy float64
}

var identity = scaling{sx: 1, sy: 1}

// newScaling returns the scaling that centers x and y on their means and
// divides them by their ranges.
func newScaling(x, y []float64) scaling {
	s := scaling{
		ox: stat.Mean(x, nil),
		oy: stat.Mean(y, nil),
		sx: floats.Max(x) - floats.Min(x),
		sy: floats.Max(y) - floats.Min(y),
	}
	if !(s.sx > 0) {
		s.sx = 1
	}
	if !(s.sy > 0) {
		s.sy = 1
	}
	return s
}

func (s scaling) apply(x, y []float64) {
	for i := range x {
		x[i], y[i] = s.point(x[i], y[i])
	}
}

func (s scaling) point(x, y float64) (float64, float64) {
	return (x - s.ox) / s.sx, (y - s.oy) / s.sy
}

// scaled evaluates an interpolator fitted in scaled coordinates.
type scaled struct {
	triangulation.Interpolator
	scaling
}

func (s scaled) At(x, y float64) (float64, bool) {
	return s.Interpolator.At(s.point(x, y))
}
