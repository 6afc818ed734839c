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

// Package surfgrid interpolates values at scattered sample points onto a
// regular, georeferenced lattice.
//
// A run builds a Lattice covering the extent of a PointSet, fills it with
// either a scattered interpolator (nearest, linear or cubic) or a
// triangulated interpolator (linear_triangulated, cubic_min_energy or
// cubic_geometry), and derives the Affine transform that places lattice
// nodes at pixel centers. The steps are chained as Manipulators:
//
//	s := new(surfgrid.Surface)
//	err := surfgrid.Run(s,
//		surfgrid.BuildLattice(points, 2),
//		surfgrid.Interpolate(points, &surfgrid.TriangulatedInterpolator{Method: surfgrid.CubicGeometry}),
//		surfgrid.Georeference(),
//	)
package surfgrid

// Version gives the version number.
const Version = "0.1.0"
