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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/geojson"
	"github.com/ctessum/geom/encoding/shp"
)

// LoadPolygon reads the study area from a shapefile (.shp) or a GeoJSON
// file (.geojson or .json). All of the polygons in the file are combined.
func LoadPolygon(path string) (geom.MultiPolygon, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".shp":
		return polygonFromShapefile(path)
	case ".geojson", ".json":
		return polygonFromGeoJSON(path)
	default:
		return nil, fmt.Errorf("pointset: unsupported polygon file type %q", path)
	}
}

func polygonFromShapefile(path string) (geom.MultiPolygon, error) {
	d, err := shp.NewDecoder(path)
	if err != nil {
		return nil, fmt.Errorf("pointset: opening polygon shapefile: %v", err)
	}
	defer d.Close()
	var o geom.MultiPolygon
	for {
		g, _, more := d.DecodeRowFields()
		if !more {
			break
		}
		if err := d.Error(); err != nil {
			return nil, fmt.Errorf("pointset: reading polygon shapefile %s: %v", path, err)
		}
		if o, err = appendPolygons(o, g); err != nil {
			return nil, fmt.Errorf("pointset: reading polygon shapefile %s: %v", path, err)
		}
	}
	if err := d.Error(); err != nil {
		return nil, fmt.Errorf("pointset: reading polygon shapefile %s: %v", path, err)
	}
	if len(o) == 0 {
		return nil, fmt.Errorf("pointset: polygon shapefile %s has no polygons", path)
	}
	return o, nil
}

// geoJSONObject holds the parts of a GeoJSON object needed to find its
// geometries.
type geoJSONObject struct {
	Type     string          `json:"type"`
	Geometry json.RawMessage `json:"geometry"`
	Features []struct {
		Geometry json.RawMessage `json:"geometry"`
	} `json:"features"`
}

func polygonFromGeoJSON(path string) (geom.MultiPolygon, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pointset: reading polygon file: %v", err)
	}
	var obj geoJSONObject
	if err := json.Unmarshal(b, &obj); err != nil {
		return nil, fmt.Errorf("pointset: parsing GeoJSON file %s: %v", path, err)
	}
	var geometries []json.RawMessage
	switch obj.Type {
	case "FeatureCollection":
		for _, f := range obj.Features {
			geometries = append(geometries, f.Geometry)
		}
	case "Feature":
		geometries = append(geometries, obj.Geometry)
	default:
		geometries = append(geometries, b)
	}
	var o geom.MultiPolygon
	for _, raw := range geometries {
		g, err := decodeGeometry(raw)
		if err != nil {
			return nil, fmt.Errorf("pointset: decoding GeoJSON geometry in %s: %v", path, err)
		}
		if o, err = appendPolygons(o, g); err != nil {
			return nil, fmt.Errorf("pointset: reading GeoJSON file %s: %v", path, err)
		}
	}
	if len(o) == 0 {
		return nil, fmt.Errorf("pointset: GeoJSON file %s has no polygons", path)
	}
	return o, nil
}

// multiPolygon is a GeoJSON MultiPolygon geometry, which the geojson
// package does not decode.
type multiPolygon struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

func decodeGeometry(raw json.RawMessage) (geom.Geom, error) {
	var mp multiPolygon
	if err := json.Unmarshal(raw, &mp); err != nil {
		return nil, err
	}
	if mp.Type != "MultiPolygon" {
		return geojson.Decode(raw)
	}
	var coords [][][][]float64
	if err := json.Unmarshal(mp.Coordinates, &coords); err != nil {
		return nil, err
	}
	o := make(geom.MultiPolygon, len(coords))
	for i, poly := range coords {
		o[i] = make(geom.Polygon, len(poly))
		for j, ring := range poly {
			o[i][j] = make([]geom.Point, len(ring))
			for k, c := range ring {
				if len(c) < 2 {
					return nil, fmt.Errorf("MultiPolygon position %v has fewer than 2 coordinates", c)
				}
				o[i][j][k] = geom.Point{X: c[0], Y: c[1]}
			}
		}
	}
	return o, nil
}

func appendPolygons(o geom.MultiPolygon, g geom.Geom) (geom.MultiPolygon, error) {
	switch t := g.(type) {
	case geom.Polygonal:
		return append(o, t.Polygons()...), nil
	default:
		return o, fmt.Errorf("geometry type %T is not polygonal", g)
	}
}
