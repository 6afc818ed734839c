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

	"github.com/ctessum/geom"
)

// Point is a sample location with its value.
type Point struct {
	X, Y, Z float64
}

// PointSet is an ordered collection of sample points.
type PointSet []Point

// Validate checks that the point set is not empty and that every
// coordinate and value is finite.
func (p PointSet) Validate() error {
	if len(p) == 0 {
		return ErrEmptyPointSet
	}
	for i, pt := range p {
		for _, v := range [3]float64{pt.X, pt.Y, pt.Z} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("surfgrid: point %d (%g, %g, %g) is not finite", i, pt.X, pt.Y, pt.Z)
			}
		}
	}
	return nil
}

// Bounds returns the extent of the point locations.
func (p PointSet) Bounds() *geom.Bounds {
	b := geom.NewBounds()
	for _, pt := range p {
		b.Extend(geom.NewBoundsPoint(geom.Point{X: pt.X, Y: pt.Y}))
	}
	return b
}

// Columns returns the point coordinates and values as separate slices.
func (p PointSet) Columns() (x, y, z []float64) {
	x = make([]float64, len(p))
	y = make([]float64, len(p))
	z = make([]float64, len(p))
	for i, pt := range p {
		x[i], y[i], z[i] = pt.X, pt.Y, pt.Z
	}
	return
}
