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

import "fmt"

// Affine is a transform from (column, row) grid indices to world
// coordinates:
//
//	x = A*col + B*row + C
//	y = D*col + E*row + F
type Affine struct {
	A, B, C, D, E, F float64
}

// NewAffine returns the transform for a lattice whose first node is at
// (x0, y0) with spacing r. Lattice nodes fall on pixel centers, so the
// transform origin is half of a cell before the first node on both axes.
func NewAffine(x0, y0, r float64) (Affine, error) {
	if err := checkResolution(r); err != nil {
		return Affine{}, err
	}
	return Translation(x0-r/2, y0-r/2).Multiply(Scale(r, r)), nil
}

// Translation returns a transform that shifts by (x, y).
func Translation(x, y float64) Affine {
	return Affine{A: 1, C: x, E: 1, F: y}
}

// Scale returns a transform that scales by (sx, sy).
func Scale(sx, sy float64) Affine {
	return Affine{A: sx, E: sy}
}

// Multiply returns the composition a∘o, which applies o first.
func (a Affine) Multiply(o Affine) Affine {
	return Affine{
		A: a.A*o.A + a.B*o.D,
		B: a.A*o.B + a.B*o.E,
		C: a.A*o.C + a.B*o.F + a.C,
		D: a.D*o.A + a.E*o.D,
		E: a.D*o.B + a.E*o.E,
		F: a.D*o.C + a.E*o.F + a.F,
	}
}

// Apply returns the world coordinates of grid position (col, row).
func (a Affine) Apply(col, row float64) (x, y float64) {
	return a.A*col + a.B*row + a.C, a.D*col + a.E*row + a.F
}

// GDAL returns the coefficients in GDAL geotransform order.
func (a Affine) GDAL() [6]float64 {
	return [6]float64{a.C, a.A, a.B, a.F, a.D, a.E}
}

func (a Affine) String() string {
	return fmt.Sprintf("|%.2f, %.2f, %.2f|\n|%.2f, %.2f, %.2f|\n|0.00, 0.00, 1.00|",
		a.A, a.B, a.C, a.D, a.E, a.F)
}
