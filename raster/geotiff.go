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
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"runtime"
	"sort"

	"github.com/klauspost/compress/zlib"
	"github.com/spatialmodel/surfgrid"
	"golang.org/x/sync/errgroup"
)

// TIFF field types.
const (
	tiffASCII  = 2
	tiffShort  = 3
	tiffLong   = 4
	tiffDouble = 12
)

// TIFF and GeoTIFF tags.
const (
	tagImageWidth                = 256
	tagImageLength               = 257
	tagBitsPerSample             = 258
	tagCompression               = 259
	tagPhotometricInterpretation = 262
	tagStripOffsets              = 273
	tagSamplesPerPixel           = 277
	tagRowsPerStrip              = 278
	tagStripByteCounts           = 279
	tagPlanarConfiguration       = 284
	tagSoftware                  = 305
	tagSampleFormat              = 339
	tagModelTransformation       = 34264
	tagGeoKeyDirectory           = 34735
	tagGDALNoData                = 42113
)

const (
	compressionNone    = 1
	compressionDeflate = 8
	sampleFormatFloat  = 3
)

// GeoKey identifiers and values.
const (
	keyModelType      = 1024
	keyRasterType     = 1025
	keyGeographicType = 2048
	keyProjectedType  = 3072

	modelProjected  = 1
	modelGeographic = 2
	rasterPixelArea = 1
)

// GeoTIFF writes surfaces as single-band, strip-organized GeoTIFF files.
// Each strip holds BlockSize rows. Georeferencing is stored as a model
// transformation matrix, so lattices whose rows run south to north are
// represented exactly.
type GeoTIFF struct{}

type ifdEntry struct {
	tag, typ uint16
	count    uint32
	data     []byte
}

func shorts(tag uint16, v ...uint16) ifdEntry {
	b := make([]byte, 2*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint16(b[2*i:], x)
	}
	return ifdEntry{tag: tag, typ: tiffShort, count: uint32(len(v)), data: b}
}

func longs(tag uint16, v ...uint32) ifdEntry {
	b := make([]byte, 4*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint32(b[4*i:], x)
	}
	return ifdEntry{tag: tag, typ: tiffLong, count: uint32(len(v)), data: b}
}

func doubles(tag uint16, v ...float64) ifdEntry {
	b := make([]byte, 8*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint64(b[8*i:], math.Float64bits(x))
	}
	return ifdEntry{tag: tag, typ: tiffDouble, count: uint32(len(v)), data: b}
}

func ascii(tag uint16, s string) ifdEntry {
	b := append([]byte(s), 0)
	return ifdEntry{tag: tag, typ: tiffASCII, count: uint32(len(b)), data: b}
}

// geoKeys returns the GeoKey directory for an EPSG code. Codes from 4000
// to 4999 are geographic coordinate systems; all others are taken to be
// projected.
func geoKeys(epsg int) ([]uint16, error) {
	if epsg <= 0 || epsg > math.MaxUint16 {
		return nil, fmt.Errorf("EPSG code %d cannot be stored in a GeoTIFF", epsg)
	}
	model, key := uint16(modelProjected), uint16(keyProjectedType)
	if epsg >= 4000 && epsg < 5000 {
		model, key = modelGeographic, keyGeographicType
	}
	return []uint16{
		1, 1, 0, 3,
		keyModelType, 0, 1, model,
		keyRasterType, 0, 1, rasterPixelArea,
		key, 0, 1, uint16(epsg),
	}, nil
}

// Write implements Sink.
func (GeoTIFF) Write(ctx context.Context, f File, s *surfgrid.Surface, p Profile) error {
	keys, err := geoKeys(s.EPSG)
	if err != nil {
		return err
	}
	strips, err := encodeStrips(ctx, s, p)
	if err != nil {
		return err
	}
	bits := uint16(64)
	if p.DType == Float32 {
		bits = 32
	}
	compression := uint16(compressionNone)
	if p.Compression == Deflate {
		compression = compressionDeflate
	}
	counts := make([]uint32, len(strips))
	for i, st := range strips {
		counts[i] = uint32(len(st))
	}
	a := s.Transform
	entries := []ifdEntry{
		longs(tagImageWidth, uint32(s.Cols())),
		longs(tagImageLength, uint32(s.Rows())),
		shorts(tagBitsPerSample, bits),
		shorts(tagCompression, compression),
		shorts(tagPhotometricInterpretation, 1),
		longs(tagStripOffsets, make([]uint32, len(strips))...),
		shorts(tagSamplesPerPixel, 1),
		longs(tagRowsPerStrip, uint32(p.BlockSize)),
		longs(tagStripByteCounts, counts...),
		shorts(tagPlanarConfiguration, 1),
		ascii(tagSoftware, "surfgrid "+surfgrid.Version),
		shorts(tagSampleFormat, sampleFormatFloat),
		doubles(tagModelTransformation,
			a.A, a.B, 0, a.C,
			a.D, a.E, 0, a.F,
			0, 0, 0, 0,
			0, 0, 0, 1),
		shorts(tagGeoKeyDirectory, keys...),
		ascii(tagGDALNoData, "nan"),
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].tag < entries[j].tag })

	// Layout: header, IFD, out-of-line tag values, strips.
	ifdSize := int64(2 + 12*len(entries) + 4)
	offset := 8 + ifdSize
	valueOffsets := make([]int64, len(entries))
	for i, e := range entries {
		if len(e.data) > 4 {
			valueOffsets[i] = offset
			offset += int64(len(e.data) + len(e.data)%2)
		}
	}
	for i, st := range strips {
		for _, e := range entries {
			if e.tag == tagStripOffsets {
				binary.LittleEndian.PutUint32(e.data[4*i:], uint32(offset))
			}
		}
		offset += int64(len(st))
	}
	if offset > math.MaxUint32 {
		return fmt.Errorf("file size %d bytes is too large for a GeoTIFF", offset)
	}

	w := bufio.NewWriter(f)
	le := binary.LittleEndian
	hdr := make([]byte, 8)
	copy(hdr, "II")
	le.PutUint16(hdr[2:], 42)
	le.PutUint32(hdr[4:], 8)
	w.Write(hdr)

	ifd := make([]byte, ifdSize)
	le.PutUint16(ifd, uint16(len(entries)))
	for i, e := range entries {
		b := ifd[2+12*i:]
		le.PutUint16(b, e.tag)
		le.PutUint16(b[2:], e.typ)
		le.PutUint32(b[4:], e.count)
		if len(e.data) > 4 {
			le.PutUint32(b[8:], uint32(valueOffsets[i]))
		} else {
			copy(b[8:12], e.data)
		}
	}
	w.Write(ifd)
	for _, e := range entries {
		if len(e.data) > 4 {
			w.Write(e.data)
			if len(e.data)%2 == 1 {
				w.WriteByte(0)
			}
		}
	}
	for _, st := range strips {
		w.Write(st)
	}
	return w.Flush()
}

// encodeStrips stages the surface in blocks and returns the encoded, and
// optionally compressed, bytes of each strip. Strips are compressed in
// parallel.
func encodeStrips(ctx context.Context, s *surfgrid.Surface, p Profile) ([][]byte, error) {
	blocks, err := s.Blocks(p.BlockSize)
	if err != nil {
		return nil, err
	}
	size := 8
	if p.DType == Float32 {
		size = 4
	}
	nStrips := (s.Rows() + p.BlockSize - 1) / p.BlockSize
	bands := make([][]surfgrid.Block, nStrips)
	for _, b := range blocks {
		bands[b.Row/p.BlockSize] = append(bands[b.Row/p.BlockSize], b)
	}
	strips := make([][]byte, nStrips)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(-1))
	for i, band := range bands {
		i, band := i, band
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rows := band[0].Rows
			raw := make([]byte, rows*s.Cols()*size)
			for _, b := range band {
				blk := s.Block(b)
				for r := 0; r < b.Rows; r++ {
					for c := 0; c < b.Cols; c++ {
						v := blk.Elements[r*b.Cols+c]
						off := (r*s.Cols() + b.Col + c) * size
						if size == 4 {
							binary.LittleEndian.PutUint32(raw[off:], math.Float32bits(float32(v)))
						} else {
							binary.LittleEndian.PutUint64(raw[off:], math.Float64bits(v))
						}
					}
				}
			}
			if p.Compression != Deflate {
				strips[i] = raw
				return nil
			}
			var buf bytes.Buffer
			zw := zlib.NewWriter(&buf)
			if _, err := zw.Write(raw); err != nil {
				return fmt.Errorf("compressing strip %d: %v", i, err)
			}
			if err := zw.Close(); err != nil {
				return fmt.Errorf("compressing strip %d: %v", i, err)
			}
			strips[i] = buf.Bytes()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return strips, nil
}
