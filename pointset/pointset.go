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

// Package pointset provides the sample points that are gridded: random
// locations within a study-area polygon, each assigned a random value, and
// point shapefiles to store them in.
package pointset

import (
	"fmt"

	"github.com/ctessum/geom"
	"github.com/spatialmodel/surfgrid"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// DefaultNumPoints is the default number of candidate locations drawn
	// within the polygon bounding box.
	DefaultNumPoints = 200

	// DefaultMinValue and DefaultMaxValue are the default bounds of the
	// random point values.
	DefaultMinValue = 100000
	DefaultMaxValue = 200000

	// DefaultColumn is the default name of the attribute column that holds
	// point values.
	DefaultColumn = "random_num"
)

// RandomInPolygon draws n locations uniformly within the bounding box of
// poly and returns the ones that are within poly or on its edge. Fewer than
// n points are therefore returned for polygons that do not fill their
// bounding box.
func RandomInPolygon(poly geom.Polygonal, n int, src rand.Source) ([]geom.Point, error) {
	if n < 0 {
		return nil, fmt.Errorf("pointset: number of points must be >= 0 but is %d", n)
	}
	b := poly.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("pointset: polygon is empty")
	}
	xDist := distuv.Uniform{Min: b.Min.X, Max: b.Max.X, Src: src}
	yDist := distuv.Uniform{Min: b.Min.Y, Max: b.Max.Y, Src: src}
	var o []geom.Point
	for i := 0; i < n; i++ {
		p := geom.Point{X: xDist.Rand(), Y: yDist.Rand()}
		if p.Within(poly) != geom.Outside {
			o = append(o, p)
		}
	}
	return o, nil
}

// AssignValues pairs each location with an integer value drawn uniformly
// from [min, max).
func AssignValues(locations []geom.Point, min, max int, src rand.Source) (surfgrid.PointSet, error) {
	if min >= max {
		return nil, fmt.Errorf("pointset: minimum value %d must be less than maximum value %d", min, max)
	}
	r := rand.New(src)
	o := make(surfgrid.PointSet, len(locations))
	for i, p := range locations {
		o[i] = surfgrid.Point{X: p.X, Y: p.Y, Z: float64(min + r.Intn(max-min))}
	}
	return o, nil
}

// Generate draws n candidate locations within poly and assigns values in
// [min, max) to the ones that fall inside it, using a random source seeded
// with seed.
func Generate(poly geom.Polygonal, n, min, max int, seed uint64) (surfgrid.PointSet, error) {
	src := rand.NewSource(seed)
	locs, err := RandomInPolygon(poly, n, src)
	if err != nil {
		return nil, err
	}
	return AssignValues(locs, min, max, src)
}
