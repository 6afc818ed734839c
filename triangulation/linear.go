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

package triangulation

import "fmt"

// Interpolator evaluates a surface fitted over a triangulation. ok is false
// for locations outside of the triangulation.
type Interpolator interface {
	At(x, y float64) (v float64, ok bool)
}

// Linear interpolates linearly within each triangle.
type Linear struct {
	tri *Triangulation
	z   []float64
}

// NewLinear returns a piecewise-linear interpolator of values z, which
// must have one value per triangulation point.
func NewLinear(tri *Triangulation, z []float64) (*Linear, error) {
	if err := checkValues(tri, z); err != nil {
		return nil, err
	}
	return &Linear{tri: tri, z: z}, nil
}

func checkValues(tri *Triangulation, z []float64) error {
	if len(z) != len(tri.X) {
		return fmt.Errorf("triangulation: %d values for %d points", len(z), len(tri.X))
	}
	return nil
}

// At returns the interpolated value at (x, y).
func (l *Linear) At(x, y float64) (float64, bool) {
	t, b, ok := l.tri.Locate(x, y)
	if !ok {
		return 0, false
	}
	v := l.tri.Triangles[t]
	return b[0]*l.z[v[0]] + b[1]*l.z[v[1]] + b[2]*l.z[v[2]], true
}

// planeGradient returns the gradient of the plane through the values z at
// the vertices of triangle t.
func (tr *Triangulation) planeGradient(t int, z []float64) (gx, gy float64) {
	v := tr.Triangles[t]
	x0, y0 := tr.X[v[0]], tr.Y[v[0]]
	dx1, dy1 := tr.X[v[1]]-x0, tr.Y[v[1]]-y0
	dx2, dy2 := tr.X[v[2]]-x0, tr.Y[v[2]]-y0
	dz1, dz2 := z[v[1]]-z[v[0]], z[v[2]]-z[v[0]]
	det := dx1*dy2 - dx2*dy1
	gx = (dz1*dy2 - dz2*dy1) / det
	gy = (dx1*dz2 - dx2*dz1) / det
	return
}
