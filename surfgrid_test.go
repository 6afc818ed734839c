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

import (
	"errors"
	"math"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/spatialmodel/surfgrid/triangulation"
	"golang.org/x/exp/rand"
)

func different(a, b, tolerance float64) bool {
	if 2*math.Abs(a-b)/math.Abs(a+b) > tolerance || math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return false
}

func unitSquare() PointSet {
	return PointSet{{0, 0, 1}, {1, 0, 2}, {0, 1, 3}, {1, 1, 4}}
}

func randomPoints(n int, seed uint64) PointSet {
	src := rand.New(rand.NewSource(seed))
	p := make(PointSet, n)
	for i := range p {
		p[i] = Point{
			X: -100 + 30*src.Float64(),
			Y: 35 + 12*src.Float64(),
			Z: float64(100000 + src.Intn(100000)),
		}
	}
	return p
}

func TestNewLattice(t *testing.T) {
	points := randomPoints(50, 1)
	b := points.Bounds()
	for _, r := range []float64{0.1, 0.5, 1, 2, 7.3, 100} {
		l, err := NewLattice(points, r)
		if err != nil {
			t.Fatal(err)
		}
		if len(l.Xs) < 1 || len(l.Ys) < 1 {
			t.Fatalf("r=%g: empty lattice", r)
		}
		if l.Xs[0] != b.Min.X || l.Ys[0] != b.Min.Y {
			t.Errorf("r=%g: lattice starts at (%g, %g), want (%g, %g)", r, l.Xs[0], l.Ys[0], b.Min.X, b.Min.Y)
		}
		if l.Xs[len(l.Xs)-1] < b.Max.X-1e-9 || l.Ys[len(l.Ys)-1] < b.Max.Y-1e-9 {
			t.Errorf("r=%g: lattice ends at (%g, %g) before the points' maximum (%g, %g)",
				r, l.Xs[len(l.Xs)-1], l.Ys[len(l.Ys)-1], b.Max.X, b.Max.Y)
		}
		if l.Z.Shape[0] != len(l.Ys) || l.Z.Shape[1] != len(l.Xs) {
			t.Errorf("r=%g: shape %v for %d x %d coordinates", r, l.Z.Shape, len(l.Ys), len(l.Xs))
		}
		for i := 1; i < len(l.Xs); i++ {
			if different(l.Xs[i]-l.Xs[i-1], r, 1e-6) {
				t.Errorf("r=%g: x spacing %g", r, l.Xs[i]-l.Xs[i-1])
				break
			}
		}
		for _, v := range l.Z.Elements {
			if v != 0 {
				t.Fatalf("r=%g: lattice is not zero-initialized", r)
			}
		}
	}
}

func TestNewLatticeOvershoot(t *testing.T) {
	l, err := NewLattice(unitSquare(), 1)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{0, 1}
	if len(l.Xs) != len(want) || len(l.Ys) != len(want) {
		t.Fatalf("have xs=%v ys=%v, want %v", l.Xs, l.Ys, want)
	}
	for i, w := range want {
		if l.Xs[i] != w || l.Ys[i] != w {
			t.Errorf("have xs=%v ys=%v, want %v", l.Xs, l.Ys, want)
		}
	}

	l, err = NewLattice(unitSquare(), 0.3)
	if err != nil {
		t.Fatal(err)
	}
	// arange(0, 1.3, 0.3) = [0, 0.3, 0.6, 0.9, 1.2]
	if len(l.Xs) != 5 {
		t.Errorf("have %d x coordinates (%v), want 5", len(l.Xs), l.Xs)
	}
}

func TestNewLatticeErrors(t *testing.T) {
	tests := []struct {
		name   string
		points PointSet
		r      float64
		err    error
	}{
		{name: "empty", r: 1, err: ErrEmptyPointSet},
		{name: "zero resolution", points: unitSquare(), r: 0, err: ErrInvalidResolution},
		{name: "negative resolution", points: unitSquare(), r: -1, err: ErrInvalidResolution},
		{name: "NaN resolution", points: unitSquare(), r: math.NaN(), err: ErrInvalidResolution},
		{name: "infinite resolution", points: unitSquare(), r: math.Inf(1), err: ErrInvalidResolution},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := NewLattice(test.points, test.r)
			if err != test.err {
				t.Errorf("have %v, want %v", err, test.err)
			}
		})
	}
	if _, err := NewLattice(unitSquare(), 1e-9); err == nil {
		t.Error("expected an error for an oversized lattice")
	}
}

func TestUnitSquare(t *testing.T) {
	points := unitSquare()
	l, err := NewLattice(points, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if err := (&TriangulatedInterpolator{Method: LinearTriangulated}).Interpolate(points, l); err != nil {
		t.Fatal(err)
	}
	want := [][]float64{
		{1, 1.5, 2},
		{2, 2.5, 3},
		{3, 3.5, 4},
	}
	for row := range want {
		for col := range want[row] {
			if v := l.At(row, col); different(v, want[row][col], 1e-10) {
				t.Errorf("(%g, %g): have %g, want %g", l.Xs[col], l.Ys[row], v, want[row][col])
			}
		}
	}
}

func TestInvalidMethod(t *testing.T) {
	if _, err := ParseMethod("bogus"); !errors.Is(err, ErrInvalidMethod) {
		t.Errorf("ParseMethod: have %v, want %v", err, ErrInvalidMethod)
	}
	if _, err := NewInterpolator(Method(0), math.NaN(), false); !errors.Is(err, ErrInvalidMethod) {
		t.Errorf("NewInterpolator: have %v, want %v", err, ErrInvalidMethod)
	}
	points := unitSquare()
	for _, interp := range []Interpolator{
		&TriangulatedInterpolator{Method: Nearest},
		&TriangulatedInterpolator{Method: Method(42)},
		&ScatteredInterpolator{Method: CubicGeometry},
		&ScatteredInterpolator{},
	} {
		l, err := NewLattice(points, 0.5)
		if err != nil {
			t.Fatal(err)
		}
		for i := range l.Z.Elements {
			l.Z.Elements[i] = -1
		}
		if err := interp.Interpolate(points, l); !errors.Is(err, ErrInvalidMethod) {
			t.Errorf("%+v: have %v, want %v", interp, err, ErrInvalidMethod)
		}
		for _, v := range l.Z.Elements {
			if v != -1 {
				t.Errorf("%+v: lattice was modified", interp)
				break
			}
		}
	}
}

func TestParseMethod(t *testing.T) {
	tests := []struct {
		name     string
		method   Method
		strategy Strategy
	}{
		{"nearest", Nearest, Scattered},
		{"linear", Linear, Scattered},
		{"Cubic", Cubic, Scattered},
		{"linear_triangulated", LinearTriangulated, Triangulated},
		{"cubic_min_energy", CubicMinEnergy, Triangulated},
		{"cubic_geometry", CubicGeometry, Triangulated},
		{"linear_tri_interpolator", LinearTriangulated, Triangulated},
		{"cubic_geom_min_e", CubicMinEnergy, Triangulated},
		{" interp_cubic_geom ", CubicGeometry, Triangulated},
	}
	for _, test := range tests {
		m, err := ParseMethod(test.name)
		if err != nil {
			t.Errorf("%s: %v", test.name, err)
			continue
		}
		if m != test.method {
			t.Errorf("%s: have %v, want %v", test.name, m, test.method)
		}
		if m.Strategy() != test.strategy {
			t.Errorf("%s: strategy %v, want %v", test.name, m.Strategy(), test.strategy)
		}
	}
	for m := range methodNames {
		p, err := ParseMethod(m.String())
		if err != nil || p != m {
			t.Errorf("round trip of %v: have %v, %v", m, p, err)
		}
	}
}

func TestNearestMembership(t *testing.T) {
	points := randomPoints(100, 2)
	values := make(map[float64]bool)
	for _, p := range points {
		values[p.Z] = true
	}
	for _, rescale := range []bool{false, true} {
		l, err := NewLattice(points, 0.7)
		if err != nil {
			t.Fatal(err)
		}
		interp := &ScatteredInterpolator{Method: Nearest, FillValue: math.NaN(), Rescale: rescale}
		if err := interp.Interpolate(points, l); err != nil {
			t.Fatal(err)
		}
		for i, v := range l.Z.Elements {
			if !values[v] {
				t.Fatalf("rescale=%v: node %d has value %g which is not a point value", rescale, i, v)
			}
		}
	}
}

func TestNearestOnPoints(t *testing.T) {
	var points PointSet
	for x := 0; x < 4; x++ {
		for y := 0; y < 3; y++ {
			points = append(points, Point{X: float64(x), Y: float64(y), Z: float64(10*x + y)})
		}
	}
	l, err := NewLattice(points, 1)
	if err != nil {
		t.Fatal(err)
	}
	if err := (&ScatteredInterpolator{Method: Nearest}).Interpolate(points, l); err != nil {
		t.Fatal(err)
	}
	for row, y := range l.Ys {
		for col, x := range l.Xs {
			if want := 10*x + y; l.At(row, col) != want {
				t.Errorf("(%g, %g): have %g, want %g", x, y, l.At(row, col), want)
			}
		}
	}
}

// gridPoints returns points on an integer lattice with random values.
func gridPoints(nx, ny int, seed uint64) PointSet {
	src := rand.New(rand.NewSource(seed))
	var points PointSet
	for y := 0; y < ny; y++ {
		for x := 0; x < nx; x++ {
			points = append(points, Point{X: float64(x), Y: float64(y), Z: float64(100000 + src.Intn(100000))})
		}
	}
	return points
}

func TestTriangulatedReproducesPoints(t *testing.T) {
	points := gridPoints(6, 5, 3)
	for _, m := range []Method{LinearTriangulated, CubicMinEnergy, CubicGeometry} {
		l, err := NewLattice(points, 1)
		if err != nil {
			t.Fatal(err)
		}
		if err := (&TriangulatedInterpolator{Method: m}).Interpolate(points, l); err != nil {
			t.Fatal(err)
		}
		for _, p := range points {
			if v := l.At(int(p.Y), int(p.X)); different(v, p.Z, 1e-9) {
				t.Errorf("%v (%g, %g): have %g, want %g", m, p.X, p.Y, v, p.Z)
			}
		}
	}
}

func TestOutsideHull(t *testing.T) {
	points := PointSet{{0, 0, 1}, {4, 0, 2}, {0, 4, 3}, {1, 1, 5}}
	for _, m := range []Method{LinearTriangulated, CubicMinEnergy, CubicGeometry} {
		l, err := NewLattice(points, 1)
		if err != nil {
			t.Fatal(err)
		}
		if err := (&TriangulatedInterpolator{Method: m}).Interpolate(points, l); err != nil {
			t.Fatal(err)
		}
		for row, y := range l.Ys {
			for col, x := range l.Xs {
				v := l.At(row, col)
				if x+y > 4 && !math.IsNaN(v) {
					t.Errorf("%v (%g, %g) is outside the hull but has value %g", m, x, y, v)
				}
				if x+y <= 4 && math.IsNaN(v) {
					t.Errorf("%v (%g, %g) is inside the hull but has no value", m, x, y)
				}
			}
		}
	}
	for _, m := range []Method{Linear, Cubic} {
		l, err := NewLattice(points, 1)
		if err != nil {
			t.Fatal(err)
		}
		if err := (&ScatteredInterpolator{Method: m, FillValue: -9999}).Interpolate(points, l); err != nil {
			t.Fatal(err)
		}
		if v := l.At(3, 3); v != -9999 {
			t.Errorf("%v: have %g outside the hull, want the fill value", m, v)
		}
		if v := l.At(0, 0); different(v, 1, 1e-9) {
			t.Errorf("%v: have %g at the first point, want 1", m, v)
		}
	}
}

func TestScatteredPlane(t *testing.T) {
	points := randomPoints(80, 4)
	plane := func(x, y float64) float64 { return 5000 + 3*x - 20*y }
	for i := range points {
		points[i].Z = plane(points[i].X, points[i].Y)
	}
	for _, m := range []Method{Linear, Cubic} {
		for _, rescale := range []bool{false, true} {
			l, err := NewLattice(points, 1.5)
			if err != nil {
				t.Fatal(err)
			}
			interp := &ScatteredInterpolator{Method: m, FillValue: math.NaN(), Rescale: rescale}
			if err := interp.Interpolate(points, l); err != nil {
				t.Fatal(err)
			}
			var n int
			for row, y := range l.Ys {
				for col, x := range l.Xs {
					v := l.At(row, col)
					if math.IsNaN(v) {
						continue
					}
					n++
					if different(v, plane(x, y), 1e-8) {
						t.Errorf("%v rescale=%v (%g, %g): have %g, want %g", m, rescale, x, y, v, plane(x, y))
					}
				}
			}
			if n == 0 {
				t.Errorf("%v rescale=%v: no nodes inside the hull", m, rescale)
			}
		}
	}
}

func TestTooFewPoints(t *testing.T) {
	points := PointSet{{0, 0, 1}, {1, 1, 2}}
	l, err := NewLattice(points, 1)
	if err != nil {
		t.Fatal(err)
	}
	err = (&TriangulatedInterpolator{Method: LinearTriangulated}).Interpolate(points, l)
	if err != ErrTooFewPoints {
		t.Errorf("have %v, want %v", err, ErrTooFewPoints)
	}
	points = PointSet{{0, 0, 1}, {1, 1, 2}, {2, 2, 3}}
	err = (&TriangulatedInterpolator{Method: CubicGeometry}).Interpolate(points, l)
	if !errors.Is(err, triangulation.ErrCollinear) {
		t.Errorf("have %v, want %v", err, triangulation.ErrCollinear)
	}
	err = (&TriangulatedInterpolator{Method: CubicGeometry}).Interpolate(PointSet{}, l)
	if err != ErrEmptyPointSet {
		t.Errorf("have %v, want %v", err, ErrEmptyPointSet)
	}
}

// Parallel evaluation must give exactly the same values as a serial loop.
func TestFillMatchesSerial(t *testing.T) {
	points := randomPoints(60, 5)
	x, y, z := points.Columns()
	tri, err := triangulation.New(x, y)
	if err != nil {
		t.Fatal(err)
	}
	m, err := triangulation.NewCubic(tri, z, triangulation.MinEnergy)
	if err != nil {
		t.Fatal(err)
	}
	l, err := NewLattice(points, 0.25)
	if err != nil {
		t.Fatal(err)
	}
	if err := fill(l, m, math.NaN()); err != nil {
		t.Fatal(err)
	}
	for row, y := range l.Ys {
		for col, x := range l.Xs {
			want, ok := m.At(x, y)
			if !ok {
				want = math.NaN()
			}
			have := l.At(row, col)
			if have != want && !(math.IsNaN(have) && math.IsNaN(want)) {
				t.Fatalf("(%g, %g): parallel %g != serial %g", x, y, have, want)
			}
		}
	}
}

func TestAffine(t *testing.T) {
	a, err := NewAffine(-100, 35, 2)
	if err != nil {
		t.Fatal(err)
	}
	x, y := a.Apply(0, 0)
	if x != -101 || y != 34 {
		t.Errorf("origin: have (%g, %g), want (-101, 34)", x, y)
	}
	x, y = a.Apply(3.5, 2.5)
	if x != -94 || y != 39 {
		t.Errorf("center of node (3, 2): have (%g, %g), want (-94, 39)", x, y)
	}
	if want := (Affine{A: 2, C: -101, E: 2, F: 34}); a != want {
		t.Errorf("have %+v, want %+v", a, want)
	}
	if want := [6]float64{-101, 2, 0, 34, 0, 2}; a.GDAL() != want {
		t.Errorf("GDAL: have %v, want %v", a.GDAL(), want)
	}
	for _, r := range []float64{0, -2, math.NaN()} {
		if _, err := NewAffine(0, 0, r); err != ErrInvalidResolution {
			t.Errorf("r=%g: have %v, want %v", r, err, ErrInvalidResolution)
		}
	}
}

func TestBlocks(t *testing.T) {
	points := randomPoints(30, 6)
	l, err := NewLattice(points, 0.9)
	if err != nil {
		t.Fatal(err)
	}
	for i := range l.Z.Elements {
		l.Z.Elements[i] = float64(i)
	}
	s, err := NewSurface(l, 0)
	if err != nil {
		t.Fatal(err)
	}
	if s.EPSG != DefaultEPSG || !math.IsNaN(s.NoData) {
		t.Errorf("have EPSG %d and nodata %g", s.EPSG, s.NoData)
	}
	for _, size := range []int{1, 7, 10, 1000} {
		blocks, err := s.Blocks(size)
		if err != nil {
			t.Fatal(err)
		}
		seen := make([]int, len(l.Z.Elements))
		for _, b := range blocks {
			if b.Rows > size || b.Cols > size || b.Rows < 1 || b.Cols < 1 {
				t.Errorf("size %d: block %+v", size, b)
			}
			v := s.Block(b)
			for r := 0; r < b.Rows; r++ {
				for c := 0; c < b.Cols; c++ {
					i := (b.Row+r)*l.Cols() + b.Col + c
					seen[i]++
					if v.Get(r, c) != l.Z.Elements[i] {
						t.Errorf("size %d: block %+v value (%d, %d) = %g, want %g", size, b, r, c, v.Get(r, c), l.Z.Elements[i])
					}
				}
			}
		}
		for i, n := range seen {
			if n != 1 {
				t.Errorf("size %d: node %d is in %d blocks", size, i, n)
			}
		}
	}
	if _, err := s.Blocks(0); err == nil {
		t.Error("expected an error for block size 0")
	}
}

func TestRun(t *testing.T) {
	points := unitSquare()
	s := new(Surface)
	err := Run(s,
		BuildLattice(points, 0.5),
		Interpolate(points, &TriangulatedInterpolator{Method: CubicGeometry}),
		Georeference(),
	)
	if err != nil {
		t.Fatal(err)
	}
	if s.Rows() != 3 || s.Cols() != 3 {
		t.Errorf("have %d x %d lattice, want 3 x 3", s.Rows(), s.Cols())
	}
	if s.Transform.C != -0.25 || s.Transform.F != -0.25 {
		t.Errorf("transform %+v", s.Transform)
	}

	var calls int
	count := func(*Surface) error { calls++; return nil }
	fail := errors.New("fail")
	err = Run(new(Surface), count, func(*Surface) error { return fail }, count)
	if err != fail {
		t.Errorf("have %v, want %v", err, fail)
	}
	if calls != 1 {
		t.Errorf("%d manipulators ran after the failure", calls-1)
	}
}

// stretchedPoints returns points whose x extent is ratio times their y
// extent, with random integer values.
func stretchedPoints(n int, ratio float64, seed uint64) PointSet {
	src := rand.New(rand.NewSource(seed))
	p := make(PointSet, n)
	for i := range p {
		p[i] = Point{
			X: 500000 + ratio*src.Float64(),
			Y: 4000000 + src.Float64(),
			Z: float64(100000 + src.Intn(100000)),
		}
	}
	return p
}

// The interpolated surfaces must pass through every point even when the
// axes have very different scales.
func TestStretchedPoints(t *testing.T) {
	points := stretchedPoints(200, 1e6, 9)
	tests := []struct {
		name   string
		interp interface {
			model(PointSet) (triangulation.Interpolator, error)
		}
	}{
		{name: "linear rescale", interp: &ScatteredInterpolator{Method: Linear, FillValue: math.NaN(), Rescale: true}},
		{name: "linear", interp: &ScatteredInterpolator{Method: Linear, FillValue: math.NaN()}},
		{name: "linear_triangulated", interp: &TriangulatedInterpolator{Method: LinearTriangulated}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m, err := test.interp.model(points)
			if err != nil {
				t.Fatal(err)
			}
			var masked, wrong int
			for _, p := range points {
				v, ok := m.At(p.X, p.Y)
				if !ok {
					masked++
				} else if different(v, p.Z, 1e-9) {
					wrong++
				}
			}
			if masked > 0 || wrong > 0 {
				t.Errorf("masked=%d wrong=%d of %d points", masked, wrong, len(points))
			}
		})
	}
}

func TestInterpolateLogsMissing(t *testing.T) {
	points := PointSet{{0, 0, 1}, {4, 0, 2}, {0, 4, 3}, {1, 1, 5}}
	tests := []struct {
		interp Interpolator
		fill   float64
	}{
		{interp: &ScatteredInterpolator{Method: Linear, FillValue: -9999}, fill: -9999},
		{interp: &TriangulatedInterpolator{Method: LinearTriangulated}, fill: math.NaN()},
	}
	for _, tt := range tests {
		logger, hook := logtest.NewNullLogger()
		s := &Surface{Log: logger}
		if err := Run(s, BuildLattice(points, 1), Interpolate(points, tt.interp)); err != nil {
			t.Fatal(err)
		}
		var want int
		for _, v := range s.Z.Elements {
			if v == tt.fill || (math.IsNaN(tt.fill) && math.IsNaN(v)) {
				want++
			}
		}
		if want == 0 {
			t.Fatalf("%T: no nodes outside of the hull", tt.interp)
		}
		if have := hook.LastEntry().Data["missing"]; have != want {
			t.Errorf("%T: logged %v missing nodes, want %d", tt.interp, have, want)
		}
	}

	logger, hook := logtest.NewNullLogger()
	s := &Surface{Log: logger}
	nearest := &ScatteredInterpolator{Method: Nearest, FillValue: 1}
	if err := Run(s, BuildLattice(points, 1), Interpolate(points, nearest)); err != nil {
		t.Fatal(err)
	}
	if have := hook.LastEntry().Data["missing"]; have != 0 {
		t.Errorf("nearest: logged %v missing nodes, want 0", have)
	}
}
