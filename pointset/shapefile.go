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
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	goshp "github.com/jonas-p/go-shp"
	"github.com/spatialmodel/surfgrid"
)

// valueField describes the attribute column points are written with.
// Values are stored in fixed-point notation, so the width must be able to
// hold the integers AssignValues creates with room to spare.
func valueField(column string) goshp.Field {
	return goshp.FloatField(column, 24, 6)
}

// WriteShapefile writes points to a point shapefile, storing each point
// value in the given attribute column. Existing files at path are
// replaced.
func WriteShapefile(path, column string, points surfgrid.PointSet) error {
	if len(column) == 0 || len(column) > 10 {
		return fmt.Errorf("pointset: column name %q must be between 1 and 10 characters long", column)
	}
	path = strings.TrimSuffix(path, ".shp")
	for _, ext := range []string{".shp", ".prj", ".dbf", ".shx"} {
		os.Remove(path + ext)
	}
	e, err := shp.NewEncoderFromFields(path+".shp", goshp.POINT, valueField(column))
	if err != nil {
		return fmt.Errorf("pointset: creating point shapefile: %v", err)
	}
	for i, p := range points {
		if err := e.EncodeFields(geom.Point{X: p.X, Y: p.Y}, p.Z); err != nil {
			e.Close()
			return fmt.Errorf("pointset: writing point %d: %v", i, err)
		}
	}
	e.Close()
	return nil
}

// ReadShapefile reads the points in a point shapefile, taking each point
// value from the given attribute column.
func ReadShapefile(path, column string) (surfgrid.PointSet, error) {
	d, err := shp.NewDecoder(path)
	if err != nil {
		return nil, fmt.Errorf("pointset: opening point shapefile: %v", err)
	}
	defer d.Close()
	var o surfgrid.PointSet
	for {
		g, fields, more := d.DecodeRowFields(column)
		if !more {
			break
		}
		if err := d.Error(); err != nil {
			return nil, fmt.Errorf("pointset: reading point shapefile %s: %v", path, err)
		}
		p, ok := g.(geom.Point)
		if !ok {
			return nil, fmt.Errorf("pointset: record %d in %s has geometry type %T; it should be a point", len(o), path, g)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[column]), 64)
		if err != nil {
			return nil, fmt.Errorf("pointset: record %d in %s: parsing %s: %v", len(o), path, column, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("pointset: record %d in %s: value %g is not finite", len(o), path, v)
		}
		o = append(o, surfgrid.Point{X: p.X, Y: p.Y, Z: v})
	}
	if err := d.Error(); err != nil {
		return nil, fmt.Errorf("pointset: reading point shapefile %s: %v", path, err)
	}
	return o, nil
}
