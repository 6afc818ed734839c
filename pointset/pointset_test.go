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

package pointset

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	goshp "github.com/jonas-p/go-shp"
	"github.com/spatialmodel/surfgrid"
	"golang.org/x/exp/rand"
)

// triangle is a right triangle that fills half of its bounding box.
var triangle = geom.Polygon{{{X: -80, Y: 30}, {X: -70, Y: 30}, {X: -80, Y: 40}, {X: -80, Y: 30}}}

func TestRandomInPolygon(t *testing.T) {
	pts, err := RandomInPolygon(triangle, DefaultNumPoints, rand.NewSource(1))
	if err != nil {
		t.Fatal(err)
	}
	if len(pts) == 0 || len(pts) >= DefaultNumPoints {
		t.Errorf("have %d points inside a triangle filling half its bounds, from %d candidates", len(pts), DefaultNumPoints)
	}
	for i, p := range pts {
		if p.Within(triangle) == geom.Outside {
			t.Errorf("point %d (%g, %g) is outside the polygon", i, p.X, p.Y)
		}
	}
}

func TestGenerateReproducible(t *testing.T) {
	a, err := Generate(triangle, 50, DefaultMinValue, DefaultMaxValue, 7)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Generate(triangle, 50, DefaultMinValue, DefaultMaxValue, 7)
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d != %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("point %d: %v != %v", i, a[i], b[i])
		}
		if a[i].Z < DefaultMinValue || a[i].Z >= DefaultMaxValue || a[i].Z != math.Trunc(a[i].Z) {
			t.Errorf("point %d: value %g is not an integer in [%d, %d)", i, a[i].Z, DefaultMinValue, DefaultMaxValue)
		}
	}
	c, err := Generate(triangle, 50, DefaultMinValue, DefaultMaxValue, 8)
	if err != nil {
		t.Fatal(err)
	}
	if len(c) == len(a) && len(a) > 0 && c[0] == a[0] {
		t.Error("different seeds gave the same first point")
	}
}

func TestAssignValuesErrors(t *testing.T) {
	if _, err := AssignValues(nil, 5, 5, rand.NewSource(1)); err == nil {
		t.Error("expected an error for an empty value range")
	}
	if _, err := RandomInPolygon(triangle, -1, rand.NewSource(1)); err == nil {
		t.Error("expected an error for a negative number of points")
	}
}

func TestShapefileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "points.shp")
	want := surfgrid.PointSet{
		{X: -79.5, Y: 30.25, Z: 100001},
		{X: -75.125, Y: 33.5, Z: 154321},
		{X: -71, Y: 31, Z: 199999},
	}
	if err := WriteShapefile(path, DefaultColumn, want); err != nil {
		t.Fatal(err)
	}
	have, err := ReadShapefile(path, DefaultColumn)
	if err != nil {
		t.Fatal(err)
	}
	if len(have) != len(want) {
		t.Fatalf("have %d points, want %d", len(have), len(want))
	}
	for i := range want {
		if have[i] != want[i] {
			t.Errorf("point %d: have %v, want %v", i, have[i], want[i])
		}
	}
	if _, err := ReadShapefile(path, "elevation"); err == nil {
		t.Error("expected an error for a missing column")
	}
}

func TestWriteShapefileColumnName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.shp")
	if err := WriteShapefile(path, "a_very_long_name", nil); err == nil {
		t.Error("expected an error for a column name longer than 10 characters")
	}
}

func TestLoadPolygonGeoJSON(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name, contents string
		polygons       int
	}{
		{
			name:     "geometry.geojson",
			contents: `{"type":"Polygon","coordinates":[[[-80,30],[-70,30],[-80,40],[-80,30]]]}`,
			polygons: 1,
		},
		{
			name:     "feature.json",
			contents: `{"type":"Feature","properties":{},"geometry":{"type":"Polygon","coordinates":[[[-80,30],[-70,30],[-80,40],[-80,30]]]}}`,
			polygons: 1,
		},
		{
			name: "collection.geojson",
			contents: `{"type":"FeatureCollection","features":[
				{"type":"Feature","geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]}},
				{"type":"Feature","geometry":{"type":"Polygon","coordinates":[[[2,0],[3,0],[3,1],[2,1],[2,0]]]}}]}`,
			polygons: 2,
		},
		{
			name:     "multipolygon.geojson",
			contents: `{"type":"MultiPolygon","coordinates":[[[[0,0],[1,0],[1,1],[0,0]]],[[[2,0],[3,0],[3,1],[2,0]]],[[[4,0],[5,0],[5,1],[4,0]]]]}`,
			polygons: 3,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := filepath.Join(dir, test.name)
			if err := os.WriteFile(path, []byte(test.contents), 0644); err != nil {
				t.Fatal(err)
			}
			mp, err := LoadPolygon(path)
			if err != nil {
				t.Fatal(err)
			}
			if len(mp) != test.polygons {
				t.Errorf("have %d polygons, want %d", len(mp), test.polygons)
			}
		})
	}
}

func TestLoadPolygonShapefile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "area.shp")
	e, err := shp.NewEncoderFromFields(path, goshp.POLYGON, goshp.NumberField("id", 10))
	if err != nil {
		t.Fatal(err)
	}
	if err := e.EncodeFields(triangle, 1); err != nil {
		t.Fatal(err)
	}
	e.Close()

	mp, err := LoadPolygon(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(mp) != 1 {
		t.Fatalf("have %d polygons, want 1", len(mp))
	}
	inside := geom.Point{X: -78, Y: 32}
	if inside.Within(mp) == geom.Outside {
		t.Error("point should be inside the loaded polygon")
	}
	outside := geom.Point{X: -71, Y: 39}
	if outside.Within(mp) != geom.Outside {
		t.Error("point should be outside the loaded polygon")
	}
}

func TestLoadPolygonUnsupported(t *testing.T) {
	if _, err := LoadPolygon("area.kml"); err == nil {
		t.Error("expected an error for an unsupported file type")
	}
}
