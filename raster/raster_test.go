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
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ctessum/cdf"
	"github.com/klauspost/compress/zlib"
	"github.com/spatialmodel/surfgrid"
)

// testSurface returns a 5 row by 7 column surface whose values encode
// their position, with one missing node.
func testSurface(t *testing.T) *surfgrid.Surface {
	l, err := surfgrid.NewLattice(surfgrid.PointSet{{X: 0, Y: 0, Z: 1}, {X: 6, Y: 4, Z: 1}}, 1)
	if err != nil {
		t.Fatal(err)
	}
	for r := 0; r < l.Rows(); r++ {
		for c := 0; c < l.Cols(); c++ {
			l.Set(r, c, float64(100*r+c)+0.5)
		}
	}
	l.Set(2, 3, math.NaN())
	s, err := surfgrid.NewSurface(l, 0)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func checkValues(t *testing.T, s *surfgrid.Surface, have []float64) {
	t.Helper()
	if len(have) != len(s.Z.Elements) {
		t.Fatalf("have %d values, want %d", len(have), len(s.Z.Elements))
	}
	for i, want := range s.Z.Elements {
		if math.IsNaN(want) {
			if !math.IsNaN(have[i]) {
				t.Errorf("value %d: have %g, want NaN", i, have[i])
			}
			continue
		}
		if have[i] != want {
			t.Errorf("value %d: have %g, want %g", i, have[i], want)
		}
	}
}

type tiffTag struct {
	typ, count uint32
	data       []byte
}

// readTIFF parses the first IFD of a little-endian TIFF file.
func readTIFF(t *testing.T, b []byte) map[uint16]tiffTag {
	t.Helper()
	le := binary.LittleEndian
	if string(b[:2]) != "II" || le.Uint16(b[2:]) != 42 {
		t.Fatalf("invalid TIFF header % x", b[:4])
	}
	ifd := b[le.Uint32(b[4:]):]
	n := int(le.Uint16(ifd))
	sizes := map[uint16]uint32{tiffASCII: 1, tiffShort: 2, tiffLong: 4, tiffDouble: 8}
	tags := make(map[uint16]tiffTag)
	var last uint16
	for i := 0; i < n; i++ {
		e := ifd[2+12*i:]
		tag, typ, count := le.Uint16(e), le.Uint16(e[2:]), le.Uint32(e[4:])
		if tag <= last {
			t.Errorf("tag %d is out of order", tag)
		}
		last = tag
		size := sizes[typ] * count
		var data []byte
		if size <= 4 {
			data = e[8 : 8+size]
		} else {
			off := le.Uint32(e[8:])
			data = b[off : off+size]
		}
		tags[tag] = tiffTag{typ: uint32(typ), count: count, data: data}
	}
	return tags
}

func (tt tiffTag) uints() []uint32 {
	var o []uint32
	for i := uint32(0); i < tt.count; i++ {
		switch tt.typ {
		case tiffShort:
			o = append(o, uint32(binary.LittleEndian.Uint16(tt.data[2*i:])))
		case tiffLong:
			o = append(o, binary.LittleEndian.Uint32(tt.data[4*i:]))
		}
	}
	return o
}

func TestGeoTIFF(t *testing.T) {
	s := testSurface(t)
	tests := []struct {
		profile Profile
		bits    uint32
		deflate bool
	}{
		{profile: Profile{BlockSize: 3}, bits: 64, deflate: true},
		{profile: Profile{Driver: "gtiff", DType: Float32, Compression: None, BlockSize: 2}, bits: 32},
		{profile: Profile{}, bits: 64, deflate: true},
	}
	for _, test := range tests {
		path := filepath.Join(t.TempDir(), "surface.tif")
		if err := Write(context.Background(), path, s, test.profile); err != nil {
			t.Fatal(err)
		}
		b, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		tags := readTIFF(t, b)
		if w := tags[tagImageWidth].uints()[0]; w != 7 {
			t.Errorf("width: have %d, want 7", w)
		}
		if h := tags[tagImageLength].uints()[0]; h != 5 {
			t.Errorf("height: have %d, want 5", h)
		}
		if bits := tags[tagBitsPerSample].uints()[0]; bits != test.bits {
			t.Errorf("bits per sample: have %d, want %d", bits, test.bits)
		}
		if keys := tags[tagGeoKeyDirectory].uints(); keys[len(keys)-1] != 4326 || keys[len(keys)-4] != keyGeographicType {
			t.Errorf("geokeys: have %v", keys)
		}
		if nd := string(tags[tagGDALNoData].data); nd != "nan\x00" {
			t.Errorf("nodata: have %q", nd)
		}
		mt := tags[tagModelTransformation]
		if mt.count != 16 {
			t.Fatalf("model transformation has %d values", mt.count)
		}
		gt := s.Transform
		for i, want := range map[int]float64{0: gt.A, 3: gt.C, 5: gt.E, 7: gt.F, 15: 1} {
			if have := math.Float64frombits(binary.LittleEndian.Uint64(mt.data[8*i:])); have != want {
				t.Errorf("model transformation %d: have %g, want %g", i, have, want)
			}
		}

		offsets := tags[tagStripOffsets].uints()
		counts := tags[tagStripByteCounts].uints()
		var raw []byte
		for i, off := range offsets {
			strip := b[off : off+counts[i]]
			if test.deflate {
				zr, err := zlib.NewReader(bytes.NewReader(strip))
				if err != nil {
					t.Fatal(err)
				}
				strip, err = io.ReadAll(zr)
				if err != nil {
					t.Fatal(err)
				}
			}
			raw = append(raw, strip...)
		}
		var values []float64
		for i := 0; i < len(raw); i += int(test.bits / 8) {
			if test.bits == 32 {
				values = append(values, float64(math.Float32frombits(binary.LittleEndian.Uint32(raw[i:]))))
			} else {
				values = append(values, math.Float64frombits(binary.LittleEndian.Uint64(raw[i:])))
			}
		}
		checkValues(t, s, values)
	}
}

func TestNetCDF(t *testing.T) {
	s := testSurface(t)
	for _, dtype := range []string{Float64, Float32} {
		t.Run(dtype, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "surface.nc")
			if err := Write(context.Background(), path, s, Profile{Driver: NetCDF, DType: dtype, BlockSize: 2}); err != nil {
				t.Fatal(err)
			}
			ff, err := os.Open(path)
			if err != nil {
				t.Fatal(err)
			}
			defer ff.Close()
			f, err := cdf.Open(ff)
			if err != nil {
				t.Fatal(err)
			}
			if l := f.Header.Lengths(ValueVariable); len(l) != 2 || l[0] != 5 || l[1] != 7 {
				t.Errorf("dimensions: have %v, want [5 7]", l)
			}
			r := f.Reader(ValueVariable, nil, nil)
			buf := r.Zero(-1)
			if _, err := r.Read(buf); err != nil && err != io.EOF {
				t.Fatal(err)
			}
			var values []float64
			switch v := buf.(type) {
			case []float64:
				values = v
			case []float32:
				for _, x := range v {
					values = append(values, float64(x))
				}
			}
			checkValues(t, s, values)

			r = f.Reader("x", nil, nil)
			xs := r.Zero(-1).([]float64)
			if _, err := r.Read(xs); err != nil && err != io.EOF {
				t.Fatal(err)
			}
			for i, x := range xs {
				if x != s.Xs[i] {
					t.Errorf("x %d: have %g, want %g", i, x, s.Xs[i])
				}
			}
			if crs := f.Header.GetAttribute("", "crs"); crs != "EPSG:4326" {
				t.Errorf("crs: have %v", crs)
			}
		})
	}
}

var errSinkFailed = errors.New("sink failed")

type failingSink struct{}

func (failingSink) Write(ctx context.Context, f File, s *surfgrid.Surface, p Profile) error {
	if _, err := f.Write([]byte("partial")); err != nil {
		return err
	}
	return errSinkFailed
}

func TestWriteFailureLeavesNoFile(t *testing.T) {
	Register("failing", failingSink{})
	s := testSurface(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "surface.tif")

	err := Write(context.Background(), path, s, Profile{Driver: "failing"})
	if !errors.Is(err, errSinkFailed) {
		t.Errorf("have error %v, want %v", err, errSinkFailed)
	}
	err = Write(context.Background(), path, s, Profile{Driver: "JPEG"})
	if !errors.Is(err, ErrUnknownDriver) {
		t.Errorf("have error %v, want %v", err, ErrUnknownDriver)
	}
	s.EPSG = 1 << 20
	if err = Write(context.Background(), path, s, Profile{}); err == nil {
		t.Error("expected an error for an EPSG code that does not fit in a GeoTIFF")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		t.Errorf("unexpected file %s", e.Name())
	}
}

func TestWriteCanceled(t *testing.T) {
	s := testSurface(t)
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, driver := range []string{GTiff, NetCDF} {
		path := filepath.Join(dir, "surface")
		if err := Write(ctx, path, s, Profile{Driver: driver}); !errors.Is(err, context.Canceled) {
			t.Errorf("%s: have error %v, want %v", driver, err, context.Canceled)
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("%s: output file exists after a canceled write", driver)
		}
	}
}

func TestProfileErrors(t *testing.T) {
	s := testSurface(t)
	path := filepath.Join(t.TempDir(), "surface.tif")
	for _, p := range []Profile{
		{DType: "int16"},
		{Compression: "lzw"},
		{BlockSize: -1},
	} {
		if err := Write(context.Background(), path, s, p); err == nil {
			t.Errorf("%+v: expected an error", p)
		}
	}
}

func TestOutput(t *testing.T) {
	s := testSurface(t)
	path := filepath.Join(t.TempDir(), "surface.tif")
	if err := surfgrid.Run(s, surfgrid.Georeference(), Output(context.Background(), path, DefaultProfile())); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Error(err)
	}
}
