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
	"strings"
)

// Method is an interpolation method.
type Method int

// The zero Method is not valid, so that an unset method is never mistaken
// for a real one.
const (
	// Nearest assigns each node the value of the closest point.
	Nearest Method = iota + 1

	// Linear interpolates linearly over the Delaunay triangulation of the
	// points.
	Linear

	// Cubic fits a smooth piecewise cubic surface over the Delaunay
	// triangulation of the points.
	Cubic

	// LinearTriangulated interpolates linearly within the triangle that
	// encloses each node.
	LinearTriangulated

	// CubicMinEnergy fits a smooth cubic surface whose point gradients
	// minimize the bending energy of the surface.
	CubicMinEnergy

	// CubicGeometry fits a smooth cubic surface whose point gradients are
	// estimated from the geometry of the surrounding triangles.
	CubicGeometry
)

// Strategy is a family of interpolation methods.
type Strategy int

const (
	// Scattered methods fit one global model over all of the points.
	Scattered Strategy = iota + 1

	// Triangulated methods evaluate a surface built on a triangulation of
	// the points, node by node.
	Triangulated
)

var methodNames = map[Method]string{
	Nearest:            "nearest",
	Linear:             "linear",
	Cubic:              "cubic",
	LinearTriangulated: "linear_triangulated",
	CubicMinEnergy:     "cubic_min_energy",
	CubicGeometry:      "cubic_geometry",
}

// methodAliases are alternate names accepted by ParseMethod.
var methodAliases = map[string]Method{
	"linear_tri_interpolator": LinearTriangulated,
	"cubic_geom_min_e":        CubicMinEnergy,
	"interp_cubic_geom":       CubicGeometry,
}

// ParseMethod returns the method with the given name. Names are not case
// sensitive.
func ParseMethod(name string) (Method, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for m, mn := range methodNames {
		if mn == n {
			return m, nil
		}
	}
	if m, ok := methodAliases[n]; ok {
		return m, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMethod, name)
}

func (m Method) String() string {
	if n, ok := methodNames[m]; ok {
		return n
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// Strategy returns the strategy that m belongs to, or 0 if m is not valid.
func (m Method) Strategy() Strategy {
	switch m {
	case Nearest, Linear, Cubic:
		return Scattered
	case LinearTriangulated, CubicMinEnergy, CubicGeometry:
		return Triangulated
	default:
		return 0
	}
}

func (s Strategy) String() string {
	switch s {
	case Scattered:
		return "scattered"
	case Triangulated:
		return "triangulated"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// Interpolator fills the values of a lattice from a set of points.
type Interpolator interface {
	Interpolate(points PointSet, l *Lattice) error
}

// NewInterpolator returns the interpolator for method m. fillValue and
// rescale apply to the scattered methods only.
func NewInterpolator(m Method, fillValue float64, rescale bool) (Interpolator, error) {
	switch m.Strategy() {
	case Scattered:
		return &ScatteredInterpolator{Method: m, FillValue: fillValue, Rescale: rescale}, nil
	case Triangulated:
		return &TriangulatedInterpolator{Method: m}, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrInvalidMethod, m)
	}
}
