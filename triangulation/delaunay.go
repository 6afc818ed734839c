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

// Package triangulation builds planar Delaunay triangulations of scattered
// points and interpolates values defined at the points over the
// triangulated surface.
package triangulation

import (
	"errors"
	"fmt"
	"math"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
	"github.com/fogleman/delaunay"
)

var (
	// ErrTooFewPoints is returned when fewer than three distinct points are
	// supplied.
	ErrTooFewPoints = errors.New("triangulation: at least 3 distinct points are required")

	// ErrCollinear is returned when all of the points lie on a single line,
	// so that no triangle can be formed.
	ErrCollinear = errors.New("triangulation: points are collinear")
)

// anisotropyLimit is the ratio of the x and y extents above which the axes
// are normalized independently before triangulating. Below it both axes
// share one scale, so the triangulation is Delaunay in the input
// coordinates.
const anisotropyLimit = 1.0e3

// baryTolerance is how far outside of a triangle (in barycentric units)
// a point may be and still be considered inside of it.
const baryTolerance = 1.0e-10

// Triangulation is a Delaunay triangulation of a set of planar points.
type Triangulation struct {
	// X and Y are the point coordinates.
	X, Y []float64

	// Triangles holds the counter-clockwise vertex indices of each triangle.
	Triangles [][3]int

	// Neighbors[t][k] is the index of the triangle sharing the edge opposite
	// vertex k of triangle t, or -1 if that edge is on the convex hull.
	Neighbors [][3]int

	// nx and ny are the normalized point coordinates used for the
	// geometric predicates.
	nx, ny []float64

	// cx, cy, kx and ky map input coordinates to normalized ones.
	cx, cy, kx, ky float64

	index *rtree.Rtree
}

// triangleItem is the spatial index entry for one triangle.
type triangleItem struct {
	geom.Polygon
	t int
}

// New creates a Delaunay triangulation of the points (x[i], y[i]).
// Points that repeat an earlier point's coordinates are left out of the
// triangulation. When the x and y extents differ by more than a factor of
// 1000 the triangulation is Delaunay with respect to the axes scaled to
// unit extent.
func New(x, y []float64) (*Triangulation, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("triangulation: len(x)=%d != len(y)=%d", len(x), len(y))
	}
	for i := range x {
		if math.IsNaN(x[i]) || math.IsInf(x[i], 0) || math.IsNaN(y[i]) || math.IsInf(y[i], 0) {
			return nil, fmt.Errorf("triangulation: point %d has non-finite coordinates (%g, %g)", i, x[i], y[i])
		}
	}
	tr := &Triangulation{X: x, Y: y}

	unique := tr.normalize()
	if len(unique) < 3 {
		return nil, ErrTooFewPoints
	}

	pts := make([]delaunay.Point, len(unique))
	for j, i := range unique {
		pts[j] = delaunay.Point{X: tr.nx[i], Y: tr.ny[i]}
	}
	d, err := delaunay.Triangulate(pts)
	if err != nil {
		// The only failure is input without a non-degenerate triangle.
		return nil, ErrCollinear
	}
	tr.Triangles = make([][3]int, 0, len(d.Triangles)/3)
	for k := 0; k+2 < len(d.Triangles); k += 3 {
		v := [3]int{unique[d.Triangles[k]], unique[d.Triangles[k+1]], unique[d.Triangles[k+2]]}
		a := orient(tr.nx[v[0]], tr.ny[v[0]], tr.nx[v[1]], tr.ny[v[1]], tr.nx[v[2]], tr.ny[v[2]])
		switch {
		case a == 0:
			continue
		case a < 0:
			v[1], v[2] = v[2], v[1]
		}
		tr.Triangles = append(tr.Triangles, v)
	}
	if len(tr.Triangles) == 0 {
		return nil, ErrCollinear
	}
	tr.setNeighbors()
	tr.buildIndex()
	return tr, nil
}

// normalize maps the points into a unit-sized box centred on the origin
// and returns the indices of the distinct points.
func (tr *Triangulation) normalize() []int {
	b := geom.NewBounds()
	for i := range tr.X {
		b.Extend(geom.NewBoundsPoint(geom.Point{X: tr.X[i], Y: tr.Y[i]}))
	}
	tr.cx, tr.cy = (b.Min.X+b.Max.X)/2, (b.Min.Y+b.Max.Y)/2
	sx, sy := b.Max.X-b.Min.X, b.Max.Y-b.Min.Y
	scale := math.Max(sx, sy)
	if scale == 0 {
		scale = 1
	}
	tr.kx, tr.ky = scale, scale
	if sx > 0 && sy > 0 && scale/math.Min(sx, sy) > anisotropyLimit {
		tr.kx, tr.ky = sx, sy
	}
	tr.nx = make([]float64, len(tr.X))
	tr.ny = make([]float64, len(tr.Y))
	seen := make(map[[2]float64]bool, len(tr.X))
	var unique []int
	for i := range tr.X {
		tr.nx[i], tr.ny[i] = tr.norm(tr.X[i], tr.Y[i])
		key := [2]float64{tr.X[i], tr.Y[i]}
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, i)
	}
	return unique
}

func (tr *Triangulation) norm(x, y float64) (float64, float64) {
	return (x - tr.cx) / tr.kx, (y - tr.cy) / tr.ky
}

// orient returns twice the signed area of triangle (a, b, c) in normalized
// coordinates: positive when the vertices are counter-clockwise.
func orient(ax, ay, bx, by, cx, cy float64) float64 {
	return (bx-ax)*(cy-ay) - (by-ay)*(cx-ax)
}

// inCircle is positive when (dx, dy) lies strictly inside the circumcircle
// of the counter-clockwise triangle (a, b, c).
func inCircle(ax, ay, bx, by, cx, cy, dx, dy float64) float64 {
	adx, ady := ax-dx, ay-dy
	bdx, bdy := bx-dx, by-dy
	cdx, cdy := cx-dx, cy-dy
	ad := adx*adx + ady*ady
	bd := bdx*bdx + bdy*bdy
	cd := cdx*cdx + cdy*cdy
	return adx*(bdy*cd-bd*cdy) - ady*(bdx*cd-bd*cdx) + ad*(bdx*cdy-bdy*cdx)
}

func undirected(e [2]int) [2]int {
	if e[0] > e[1] {
		return [2]int{e[1], e[0]}
	}
	return e
}

// setNeighbors fills in the triangle adjacency.
func (tr *Triangulation) setNeighbors() {
	type side struct{ t, k int }
	edges := make(map[[2]int]side, 3*len(tr.Triangles))
	for t, v := range tr.Triangles {
		for k := 0; k < 3; k++ {
			edges[[2]int{v[(k+1)%3], v[(k+2)%3]}] = side{t, k}
		}
	}
	tr.Neighbors = make([][3]int, len(tr.Triangles))
	for t, v := range tr.Triangles {
		for k := 0; k < 3; k++ {
			tr.Neighbors[t][k] = -1
			if s, ok := edges[[2]int{v[(k+2)%3], v[(k+1)%3]}]; ok {
				tr.Neighbors[t][k] = s.t
			}
		}
	}
}

// buildIndex creates the spatial index used to locate points.
func (tr *Triangulation) buildIndex() {
	tr.index = rtree.NewTree(25, 50)
	for t, v := range tr.Triangles {
		ring := make([]geom.Point, 4)
		for k := 0; k < 3; k++ {
			ring[k] = geom.Point{X: tr.X[v[k]], Y: tr.Y[v[k]]}
		}
		ring[3] = ring[0]
		tr.index.Insert(&triangleItem{Polygon: geom.Polygon{ring}, t: t})
	}
}

// Barycentric returns the barycentric coordinates of (x, y) with respect to
// the vertices of triangle t.
func (tr *Triangulation) Barycentric(t int, x, y float64) (l0, l1, l2 float64) {
	v := tr.Triangles[t]
	x, y = tr.norm(x, y)
	x0, y0 := tr.nx[v[0]], tr.ny[v[0]]
	x1, y1 := tr.nx[v[1]], tr.ny[v[1]]
	x2, y2 := tr.nx[v[2]], tr.ny[v[2]]
	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	l0 = ((y1-y2)*(x-x2) + (x2-x1)*(y-y2)) / det
	l1 = ((y2-y0)*(x-x2) + (x0-x2)*(y-y2)) / det
	l2 = 1 - l0 - l1
	return
}

// Locate returns the index of a triangle containing (x, y) and the
// barycentric coordinates of the point in it. ok is false when the point is
// outside of the triangulation.
func (tr *Triangulation) Locate(x, y float64) (t int, l [3]float64, ok bool) {
	if math.IsNaN(x) || math.IsNaN(y) {
		return -1, l, false
	}
	p := geom.Point{X: x, Y: y}
	best := -1
	bestMin := math.Inf(-1)
	for _, item := range tr.index.SearchIntersect(geom.NewBoundsPoint(p)) {
		ti := item.(*triangleItem).t
		l0, l1, l2 := tr.Barycentric(ti, x, y)
		m := math.Min(l0, math.Min(l1, l2))
		if m < -baryTolerance {
			continue
		}
		// Prefer the triangle the point is most deeply inside of, and the
		// lowest index among ties, so that results do not depend on the
		// order of index traversal.
		if m > bestMin || (m == bestMin && ti < best) {
			best, bestMin = ti, m
			l = [3]float64{l0, l1, l2}
		}
	}
	if best < 0 {
		return -1, l, false
	}
	return best, l, true
}

// Edges returns the unique undirected edges of the triangulation.
func (tr *Triangulation) Edges() [][2]int {
	seen := make(map[[2]int]bool)
	var out [][2]int
	for _, v := range tr.Triangles {
		for k := 0; k < 3; k++ {
			e := undirected([2]int{v[k], v[(k+1)%3]})
			if !seen[e] {
				seen[e] = true
				out = append(out, e)
			}
		}
	}
	return out
}
