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
	"math"

	"gonum.org/v1/gonum/mat"
)

// geometricGradients estimates the gradient at each point as the mean of
// the plane gradients of the triangles around it, weighted by the angle of
// each triangle at the point.
func (tr *Triangulation) geometricGradients(z []float64) (gx, gy []float64) {
	n := len(tr.X)
	gx = make([]float64, n)
	gy = make([]float64, n)
	wsum := make([]float64, n)
	for t, v := range tr.Triangles {
		px, py := tr.planeGradient(t, z)
		for k := 0; k < 3; k++ {
			i := v[k]
			a := tr.angle(v[k], v[(k+1)%3], v[(k+2)%3])
			gx[i] += a * px
			gy[i] += a * py
			wsum[i] += a
		}
	}
	for i := range gx {
		if wsum[i] > 0 {
			gx[i] /= wsum[i]
			gy[i] /= wsum[i]
		}
	}
	return gx, gy
}

// angle returns the interior angle at point a between the edges to points
// b and c.
func (tr *Triangulation) angle(a, b, c int) float64 {
	ux, uy := tr.X[b]-tr.X[a], tr.Y[b]-tr.Y[a]
	vx, vy := tr.X[c]-tr.X[a], tr.Y[c]-tr.Y[a]
	return math.Abs(math.Atan2(ux*vy-uy*vx, ux*vx+uy*vy))
}

// energyWeights are the weights of the (xx, xy, yy) second derivatives in
// the bending energy.
var energyWeights = [3]float64{1, 2, 1}

// hessianSamples returns the second derivatives of the element at the
// vertices of each of its patches, flattened to 27 values.
func (e element) hessianSamples() []float64 {
	out := make([]float64, 0, 27)
	for _, p := range e.patches() {
		h := p.hessian()
		for vtx := 0; vtx < 3; vtx++ {
			out = append(out, h[vtx][:]...)
		}
	}
	return out
}

// sampleIndex returns the position in hessianSamples of component comp at
// vertex vtx of patch s.
func sampleIndex(s, vtx, comp int) int { return 9*s + 3*vtx + comp }

// energyMatrix returns the symmetric matrix W for which s'Ws is the bending
// energy of an element whose Hessian samples are s. Within each patch the
// Hessian is linear, so its square integrates exactly with the linear
// element mass matrix.
func (e element) energyMatrix() *mat.SymDense {
	w := mat.NewSymDense(27, nil)
	for s, p := range e.patches() {
		a := p.area()
		for comp := 0; comp < 3; comp++ {
			for i := 0; i < 3; i++ {
				for j := i; j < 3; j++ {
					m := a / 12
					if i == j {
						m *= 2
					}
					w.SetSym(sampleIndex(s, i, comp), sampleIndex(s, j, comp), energyWeights[comp]*m)
				}
			}
		}
	}
	return w
}

// minEnergyGradients finds the point gradients that minimize the total
// bending energy of the cubic surface with the given point values.
func (tr *Triangulation) minEnergyGradients(z []float64) (gx, gy []float64, err error) {
	n := len(tr.X)
	k := newSparse(2 * n)
	rhs := make([]float64, 2*n)
	used := make([]bool, n)

	zero := make([]float64, n)
	for t, v := range tr.Triangles {
		base := tr.element(t, z, zero, zero)
		s0 := mat.NewVecDense(27, base.hessianSamples())

		// The samples depend linearly on the gradients, so G holds the
		// response to each unit gradient component.
		g := mat.NewDense(27, 6, nil)
		for col := 0; col < 6; col++ {
			var e element
			e.p = base.p
			e.g[col/2][col%2] = 1
			g.SetCol(col, e.hessianSamples())
		}
		w := base.energyMatrix()

		var wg, ke mat.Dense
		wg.Mul(w, g)
		ke.Mul(g.T(), &wg)
		var re mat.VecDense
		re.MulVec(wg.T(), s0)

		for a := 0; a < 6; a++ {
			ia := 2*v[a/2] + a%2
			rhs[ia] -= re.AtVec(a)
			for b := 0; b < 6; b++ {
				ib := 2*v[b/2] + b%2
				k.add(ia, ib, ke.At(a, b))
			}
		}
		for _, i := range v {
			used[i] = true
		}
	}
	for i, u := range used {
		if !u {
			k.add(2*i, 2*i, 1)
			k.add(2*i+1, 2*i+1, 1)
		}
	}

	gx0, gy0 := tr.geometricGradients(z)
	x0 := make([]float64, 2*n)
	for i := 0; i < n; i++ {
		x0[2*i], x0[2*i+1] = gx0[i], gy0[i]
	}
	x, err := k.compress().solveCG(rhs, x0, 1e-12, 20*len(x0))
	if err != nil {
		return nil, nil, err
	}
	gx = make([]float64, n)
	gy = make([]float64, n)
	for i := 0; i < n; i++ {
		gx[i], gy[i] = x[2*i], x[2*i+1]
	}
	return gx, gy, nil
}
