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

import "errors"

var (
	// ErrEmptyPointSet is returned when an operation that requires sample
	// points is given none.
	ErrEmptyPointSet = errors.New("surfgrid: the point set is empty")

	// ErrInvalidResolution is returned when the lattice resolution is not a
	// finite number greater than zero.
	ErrInvalidResolution = errors.New("surfgrid: resolution must be a finite number > 0")

	// ErrTooFewPoints is returned when a triangulation is requested for
	// fewer than 3 distinct points.
	ErrTooFewPoints = errors.New("surfgrid: at least 3 distinct points are required for triangulation")

	// ErrInvalidMethod is returned for an interpolation method that is not
	// recognized or that the chosen strategy does not support.
	ErrInvalidMethod = errors.New("surfgrid: invalid interpolation method")
)
