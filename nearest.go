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

import "gonum.org/v1/gonum/spatial/kdtree"

// sample is a point with its value, stored in a k-d tree.
type sample struct {
	x, y, z float64
}

// Compare implements kdtree.Comparable.
func (p sample) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(sample)
	switch d {
	case 0:
		return p.x - q.x
	case 1:
		return p.y - q.y
	default:
		panic("surfgrid: illegal dimension")
	}
}

// Dims implements kdtree.Comparable.
func (p sample) Dims() int { return 2 }

// Distance returns the squared distance between p and c.
func (p sample) Distance(c kdtree.Comparable) float64 {
	q := c.(sample)
	dx, dy := p.x-q.x, p.y-q.y
	return dx*dx + dy*dy
}

// samples satisfies kdtree.Interface.
type samples []sample

func (p samples) Index(i int) kdtree.Comparable         { return p[i] }
func (p samples) Len() int                              { return len(p) }
func (p samples) Slice(start, end int) kdtree.Interface { return p[start:end] }

// Pivot implements kdtree.Interface.
func (p samples) Pivot(d kdtree.Dim) int {
	pl := samplePlane{samples: p, Dim: d}
	return kdtree.Partition(pl, kdtree.MedianOfRandoms(pl, 100))
}

// samplePlane sorts samples along one dimension.
type samplePlane struct {
	samples
	kdtree.Dim
}

func (p samplePlane) Less(i, j int) bool {
	switch p.Dim {
	case 0:
		return p.samples[i].x < p.samples[j].x
	case 1:
		return p.samples[i].y < p.samples[j].y
	default:
		panic("surfgrid: illegal dimension")
	}
}

func (p samplePlane) Swap(i, j int) {
	p.samples[i], p.samples[j] = p.samples[j], p.samples[i]
}

func (p samplePlane) Slice(start, end int) kdtree.SortSlicer {
	return samplePlane{samples: p.samples[start:end], Dim: p.Dim}
}

// nearestModel returns the value of the sample closest to a location.
type nearestModel struct {
	tree *kdtree.Tree
}

func newNearestModel(x, y, z []float64) *nearestModel {
	s := make(samples, len(x))
	for i := range x {
		s[i] = sample{x: x[i], y: y[i], z: z[i]}
	}
	return &nearestModel{tree: kdtree.New(s, true)}
}

func (m *nearestModel) At(x, y float64) (float64, bool) {
	c, _ := m.tree.Nearest(sample{x: x, y: y})
	if c == nil {
		return 0, false
	}
	return c.(sample).z, true
}
