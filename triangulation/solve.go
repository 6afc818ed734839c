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

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// sparseBuilder accumulates the entries of a square matrix.
type sparseBuilder struct {
	n    int
	rows []map[int]float64
}

func newSparse(n int) *sparseBuilder {
	rows := make([]map[int]float64, n)
	for i := range rows {
		rows[i] = make(map[int]float64)
	}
	return &sparseBuilder{n: n, rows: rows}
}

func (s *sparseBuilder) add(i, j int, v float64) {
	s.rows[i][j] += v
}

// csr is a matrix in compressed sparse row format.
type csr struct {
	n      int
	rowPtr []int
	cols   []int
	vals   []float64
	diag   []float64
}

func (s *sparseBuilder) compress() *csr {
	m := &csr{n: s.n, rowPtr: make([]int, s.n+1), diag: make([]float64, s.n)}
	for i, row := range s.rows {
		cols := make([]int, 0, len(row))
		for j := range row {
			cols = append(cols, j)
		}
		sort.Ints(cols)
		for _, j := range cols {
			m.cols = append(m.cols, j)
			m.vals = append(m.vals, row[j])
			if i == j {
				m.diag[i] = row[j]
			}
		}
		m.rowPtr[i+1] = len(m.cols)
	}
	return m
}

// mulVec sets dst = m * x.
func (m *csr) mulVec(dst, x []float64) {
	for i := 0; i < m.n; i++ {
		var sum float64
		for p := m.rowPtr[i]; p < m.rowPtr[i+1]; p++ {
			sum += m.vals[p] * x[m.cols[p]]
		}
		dst[i] = sum
	}
}

// solveCG solves m x = b for symmetric positive definite m by
// Jacobi-preconditioned conjugate gradients, starting from x0. It stops
// once the residual norm falls below tol relative to the norm of b, or
// after maxIter iterations.
func (m *csr) solveCG(b, x0 []float64, tol float64, maxIter int) ([]float64, error) {
	x := append([]float64{}, x0...)
	r := make([]float64, m.n)
	m.mulVec(r, x)
	floats.SubTo(r, b, r)

	bnorm := floats.Norm(b, 2)
	if bnorm == 0 {
		bnorm = 1
	}
	inv := make([]float64, m.n)
	for i, d := range m.diag {
		if d != 0 {
			inv[i] = 1 / d
		} else {
			inv[i] = 1
		}
	}
	zv := make([]float64, m.n)
	floats.MulTo(zv, inv, r)
	p := append([]float64{}, zv...)
	ap := make([]float64, m.n)
	rz := floats.Dot(r, zv)

	for iter := 0; iter < maxIter; iter++ {
		if floats.Norm(r, 2)/bnorm < tol {
			break
		}
		m.mulVec(ap, p)
		pap := floats.Dot(p, ap)
		if pap == 0 {
			break
		}
		alpha := rz / pap
		floats.AddScaled(x, alpha, p)
		floats.AddScaled(r, -alpha, ap)
		floats.MulTo(zv, inv, r)
		rzNew := floats.Dot(r, zv)
		beta := rzNew / rz
		rz = rzNew
		floats.AddScaledTo(p, zv, beta, p)
	}
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("triangulation: gradient solution diverged at unknown %d", i)
		}
	}
	return x, nil
}
