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

package raster

import (
	"context"
	"fmt"
	"math"

	"github.com/ctessum/cdf"
	"github.com/spatialmodel/surfgrid"
)

// ValueVariable is the name of the netCDF variable that holds surface
// values.
const ValueVariable = "value"

// CDF writes surfaces as netCDF-3 files with one two-dimensional (y, x)
// value variable and one-dimensional x and y coordinate variables holding
// the lattice node coordinates.
type CDF struct{}

// Write implements Sink.
func (CDF) Write(ctx context.Context, f File, s *surfgrid.Surface, p Profile) error {
	h := cdf.NewHeader([]string{"y", "x"}, []int{s.Rows(), s.Cols()})
	h.AddVariable("x", []string{"x"}, []float64{0})
	h.AddAttribute("x", "description", "x coordinate of lattice nodes")
	h.AddVariable("y", []string{"y"}, []float64{0})
	h.AddAttribute("y", "description", "y coordinate of lattice nodes")
	if p.DType == Float32 {
		h.AddVariable(ValueVariable, []string{"y", "x"}, []float32{0})
		h.AddAttribute(ValueVariable, "_FillValue", []float32{float32(math.NaN())})
	} else {
		h.AddVariable(ValueVariable, []string{"y", "x"}, []float64{0})
		h.AddAttribute(ValueVariable, "_FillValue", []float64{math.NaN()})
	}
	h.AddAttribute(ValueVariable, "description", "interpolated surface")
	h.AddAttribute("", "crs", fmt.Sprintf("EPSG:%d", s.EPSG))
	gt := s.Transform.GDAL()
	h.AddAttribute("", "geotransform", gt[:])
	h.Define()
	for _, err := range h.Check() {
		return fmt.Errorf("creating netCDF header: %v", err)
	}

	cf, err := cdf.Create(f, h)
	if err != nil {
		return fmt.Errorf("creating netCDF file: %v", err)
	}
	for _, v := range []struct {
		name string
		data []float64
	}{{"x", s.Xs}, {"y", s.Ys}} {
		w := cf.Writer(v.name, []int{0}, []int{len(v.data)})
		if _, err := w.Write(v.data); err != nil {
			return fmt.Errorf("writing netCDF variable %s: %v", v.name, err)
		}
	}

	blocks, err := s.Blocks(p.BlockSize)
	if err != nil {
		return err
	}
	// Blocks are copied into full-width bands because netCDF variables are
	// stored row-major.
	band := make([]float64, 0, p.BlockSize*s.Cols())
	for i := 0; i < len(blocks); {
		if err := ctx.Err(); err != nil {
			return err
		}
		row, rows := blocks[i].Row, blocks[i].Rows
		band = band[:rows*s.Cols()]
		for ; i < len(blocks) && blocks[i].Row == row; i++ {
			b := blocks[i]
			blk := s.Block(b)
			for r := 0; r < b.Rows; r++ {
				copy(band[r*s.Cols()+b.Col:r*s.Cols()+b.Col+b.Cols], blk.Elements[r*b.Cols:(r+1)*b.Cols])
			}
		}
		var data interface{} = band
		if p.DType == Float32 {
			f32 := make([]float32, len(band))
			for j, v := range band {
				f32[j] = float32(v)
			}
			data = f32
		}
		w := cf.Writer(ValueVariable, []int{row, 0}, []int{row + rows, 0})
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("writing netCDF rows %d to %d: %v", row, row+rows, err)
		}
	}
	return nil
}
