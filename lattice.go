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
)

// maxLatticeNodes limits the size of a lattice to protect against
// resolutions that are tiny relative to the point extent.
const maxLatticeNodes = 1 << 30

// Lattice is a regular grid of nodes covering the extent of a point set.
// Z has shape (len(Ys), len(Xs)): the row index corresponds to y and the
// column index to x.
type Lattice struct {
	// Xs and Ys are the ascending node coordinates.
	Xs, Ys []float64

	// Resolution is the spacing between adjacent nodes.
	Resolution float64

	// Z holds the surface value at each node.
	Z *sparse.DenseArray
}

// NewLattice creates a lattice with the given resolution spanning the
// extent of points, with all node values set to zero. Coordinates run from
// the minimum of the points to their maximum plus one resolution step
// (exclusive), so the last row and column may lie beyond the points.
func NewLattice(points PointSet, resolution float64) (*Lattice, error) {
	if len(points) == 0 {
		return nil, ErrEmptyPointSet
	}
	if err := checkResolution(resolution); err != nil {
		return nil, err
	}
	b := points.Bounds()
	nx := arangeLen(b.Min.X, b.Max.X+resolution, resolution)
	ny := arangeLen(b.Min.Y, b.Max.Y+resolution, resolution)
	if float64(nx)*float64(ny) > maxLatticeNodes {
		return nil, fmt.Errorf("surfgrid: a lattice of %d x %d nodes at resolution %g is too large",
			ny, nx, resolution)
	}
	return &Lattice{
		Xs:         arange(b.Min.X, resolution, nx),
		Ys:         arange(b.Min.Y, resolution, ny),
		Resolution: resolution,
		Z:          sparse.ZerosDense(ny, nx),
	}, nil
}

func checkResolution(r float64) error {
	if !(r > 0) || math.IsInf(r, 0) {
		return ErrInvalidResolution
	}
	return nil
}

// arangeLen returns the number of values start, start+step, ... that are
// less than stop, and at least 1.
func arangeLen(start, stop, step float64) int {
	n := math.Ceil((stop - start) / step)
	if n < 1 {
		return 1
	}
	if n > maxLatticeNodes {
		return maxLatticeNodes + 1
	}
	return int(n)
}

// arange returns n values starting at start and separated by step.
func arange(start, step float64, n int) []float64 {
	o := make([]float64, n)
	for i := range o {
		o[i] = start + float64(i)*step
	}
	return o
}

// Rows returns the number of rows (y coordinates) in the lattice.
func (l *Lattice) Rows() int { return len(l.Ys) }

// Cols returns the number of columns (x coordinates) in the lattice.
func (l *Lattice) Cols() int { return len(l.Xs) }

// At returns the value at the given node.
func (l *Lattice) At(row, col int) float64 {
	return l.Z.Elements[row*len(l.Xs)+col]
}

// Set sets the value at the given node.
func (l *Lattice) Set(row, col int, v float64) {
	l.Z.Elements[row*len(l.Xs)+col] = v
}

// Row returns the values in one row of the lattice. The returned slice
// shares memory with Z.
func (l *Lattice) Row(row int) []float64 {
	nx := len(l.Xs)
	return l.Z.Elements[row*nx : (row+1)*nx]
}
