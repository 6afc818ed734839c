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
)

// GradientKind specifies how the gradients at the triangulation points
// are estimated for cubic interpolation.
type GradientKind int

const (
	// MinEnergy chooses the gradients that minimize the bending energy of
	// the whole surface.
	MinEnergy GradientKind = iota

	// Geometric averages the gradients of the planes of the triangles that
	// share each point, weighted by the angle each triangle makes at the
	// point.
	Geometric
)

func (k GradientKind) String() string {
	switch k {
	case MinEnergy:
		return "min_E"
	case Geometric:
		return "geom"
	default:
		return fmt.Sprintf("GradientKind(%d)", int(k))
	}
}

// Cubic interpolates with a C1-continuous piecewise cubic surface built
// from reduced Clough-Tocher elements: each triangle is split at its
// centroid into three cubic patches.
type Cubic struct {
	tri     *Triangulation
	z       []float64
	gx, gy  []float64
	patches [][3]patch
}

// NewCubic returns a cubic interpolator of values z, with point gradients
// estimated as specified by kind.
func NewCubic(tri *Triangulation, z []float64, kind GradientKind) (*Cubic, error) {
	if err := checkValues(tri, z); err != nil {
		return nil, err
	}
	c := &Cubic{tri: tri, z: z}
	switch kind {
	case Geometric:
		c.gx, c.gy = tri.geometricGradients(z)
	case MinEnergy:
		var err error
		c.gx, c.gy, err = tri.minEnergyGradients(z)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("triangulation: invalid gradient kind %v", kind)
	}
	c.patches = make([][3]patch, len(tri.Triangles))
	for t := range tri.Triangles {
		c.patches[t] = tri.element(t, z, c.gx, c.gy).patches()
	}
	return c, nil
}

// Gradient returns the estimated gradient at point i.
func (c *Cubic) Gradient(i int) (gx, gy float64) {
	return c.gx[i], c.gy[i]
}

// At returns the interpolated value at (x, y).
func (c *Cubic) At(x, y float64) (float64, bool) {
	t, b, ok := c.tri.Locate(x, y)
	if !ok {
		return 0, false
	}
	return evalPatches(&c.patches[t], b), true
}

// element holds the vertices of one triangle together with the
// function values and gradients at them.
type element struct {
	p [3][2]float64
	f [3]float64
	g [3][2]float64
}

func (tr *Triangulation) element(t int, z, gx, gy []float64) element {
	var e element
	for k, i := range tr.Triangles[t] {
		e.p[k] = [2]float64{tr.X[i], tr.Y[i]}
		e.f[k] = z[i]
		e.g[k] = [2]float64{gx[i], gy[i]}
	}
	return e
}

// patch holds the Bernstein-Bézier control values of one cubic
// sub-triangle. b[a][b] is the coefficient of u^a v^b w^(3-a-b), where u, v
// and w are the barycentric coordinates of the first outer vertex, the
// second outer vertex and the centroid.
type patch struct {
	b [4][4]float64
	// v holds the vertex positions in (u, v, w) order.
	v [3][2]float64
}

func dot(a, b [2]float64) float64 { return a[0]*b[0] + a[1]*b[1] }

func sub(a, b [2]float64) [2]float64 { return [2]float64{a[0] - b[0], a[1] - b[1]} }

// patches builds the three sub-triangle patches of the element. Patch i
// has outer vertices i and (i+1)%3.
func (e element) patches() [3]patch {
	c := [2]float64{
		(e.p[0][0] + e.p[1][0] + e.p[2][0]) / 3,
		(e.p[0][1] + e.p[1][1] + e.p[2][1]) / 3,
	}
	// t[i] is the control value on the interior edge from vertex i toward
	// the centroid, q[i] the central control value of patch i.
	var t, q, s [3]float64
	var ps [3]patch
	for i := 0; i < 3; i++ {
		t[i] = e.f[i] + dot(e.g[i], sub(c, e.p[i]))/3
	}
	for i := 0; i < 3; i++ {
		j := (i + 1) % 3
		p := &ps[i]
		p.v = [3][2]float64{e.p[i], e.p[j], c}
		p.b[3][0] = e.f[i]
		p.b[0][3] = e.f[j]
		p.b[2][1] = e.f[i] + dot(e.g[i], sub(e.p[j], e.p[i]))/3
		p.b[1][2] = e.f[j] + dot(e.g[j], sub(e.p[i], e.p[j]))/3
		p.b[2][0] = t[i]
		p.b[0][2] = t[j]

		// The derivative across the outer edge varies linearly along it.
		edge := sub(e.p[j], e.p[i])
		n := [2]float64{-edge[1], edge[0]}
		du, dv, dw := direction(n, edge, sub(c, e.p[i]))
		c0 := du*p.b[3][0] + dv*p.b[2][1] + dw*p.b[2][0]
		c2 := du*p.b[1][2] + dv*p.b[0][3] + dw*p.b[0][2]
		q[i] = ((c0+c2)/2 - du*p.b[2][1] - dv*p.b[1][2]) / dw
		p.b[1][1] = q[i]
	}
	for i := 0; i < 3; i++ {
		s[i] = (t[i] + q[i] + q[(i+2)%3]) / 3
	}
	center := (s[0] + s[1] + s[2]) / 3
	for i := 0; i < 3; i++ {
		j := (i + 1) % 3
		ps[i].b[1][0] = s[i]
		ps[i].b[0][1] = s[j]
		ps[i].b[0][0] = center
	}
	return ps
}

// direction expresses the planar vector d in barycentric differences with
// respect to a triangle whose edges from its first vertex are e1 and e2.
func direction(d, e1, e2 [2]float64) (du, dv, dw float64) {
	det := e1[0]*e2[1] - e2[0]*e1[1]
	dv = (d[0]*e2[1] - e2[0]*d[1]) / det
	dw = (e1[0]*d[1] - d[0]*e1[1]) / det
	du = -dv - dw
	return
}

var factorial = [4]float64{1, 1, 2, 6}

// eval evaluates the patch at barycentric coordinates (u, v, w).
func (p *patch) eval(u, v, w float64) float64 {
	var sum float64
	for a := 0; a <= 3; a++ {
		for b := 0; a+b <= 3; b++ {
			c := 3 - a - b
			coef := 6 / (factorial[a] * factorial[b] * factorial[c])
			sum += coef * p.b[a][b] * math.Pow(u, float64(a)) * math.Pow(v, float64(b)) * math.Pow(w, float64(c))
		}
	}
	return sum
}

// coef returns the control value with barycentric multi-index k.
func (p *patch) coef(k [3]int) float64 {
	return p.b[k[0]][k[1]]
}

// hessian returns the second derivatives (xx, xy, yy) of the patch at each
// of its three vertices.
func (p *patch) hessian() [3][3]float64 {
	ax := make([]float64, 3)
	ay := make([]float64, 3)
	e1, e2 := sub(p.v[1], p.v[0]), sub(p.v[2], p.v[0])
	ax[0], ax[1], ax[2] = direction([2]float64{1, 0}, e1, e2)
	ay[0], ay[1], ay[2] = direction([2]float64{0, 1}, e1, e2)
	var h [3][3]float64
	for vtx := 0; vtx < 3; vtx++ {
		var xx, xy, yy float64
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				var k [3]int
				k[vtx]++
				k[i]++
				k[j]++
				b := p.coef(k)
				xx += ax[i] * ax[j] * b
				xy += ax[i] * ay[j] * b
				yy += ay[i] * ay[j] * b
			}
		}
		h[vtx] = [3]float64{6 * xx, 6 * xy, 6 * yy}
	}
	return h
}

// area returns the area of the patch.
func (p *patch) area() float64 {
	e1, e2 := sub(p.v[1], p.v[0]), sub(p.v[2], p.v[0])
	return math.Abs(e1[0]*e2[1]-e2[0]*e1[1]) / 2
}

// eval evaluates the element at barycentric coordinates b with respect to
// its three vertices.
func (e element) eval(b [3]float64) float64 {
	ps := e.patches()
	return evalPatches(&ps, b)
}

// evalPatches evaluates the element made of patches ps at barycentric
// coordinates b.
func evalPatches(ps *[3]patch, b [3]float64) float64 {
	m := 0
	for k := 1; k < 3; k++ {
		if b[k] < b[m] {
			m = k
		}
	}
	// The patch facing vertex m contains the point.
	i := (m + 1) % 3
	j := (m + 2) % 3
	return ps[i].eval(b[i]-b[m], b[j]-b[m], 3*b[m])
}
