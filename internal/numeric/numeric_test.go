/*
Copyright © 2019 the Adsorb authors.
This file is part of Adsorb.

Adsorb is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Adsorb is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Adsorb.  If not, see <http://www.gnu.org/licenses/>.
*/

package numeric

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func different(a, b, tolerance float64) bool {
	if 2*math.Abs(a-b)/math.Abs(a+b) > tolerance || math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return false
}

func TestRoot(t *testing.T) {
	tests := []struct {
		name string
		f    func(float64) float64
		a, b float64
		want float64
	}{
		{"quadratic", func(x float64) float64 { return x*x - 2 }, 0, 2, math.Sqrt2},
		{"exp", func(x float64) float64 { return math.Exp(x) - 10 }, 0, 5, math.Log(10)},
		{"langmuir", func(p float64) float64 { return 3*2*p/(1+2*p) - 1.5 }, 0, 10, 0.5},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			have, err := Root(test.f, test.a, test.b, 1e-12, 100)
			if err != nil {
				t.Fatal(err)
			}
			if different(have, test.want, 1e-9) {
				t.Errorf("have %g, want %g", have, test.want)
			}
		})
	}
	if _, err := Root(func(x float64) float64 { return x*x + 1 }, -1, 1, 1e-12, 100); err != ErrNoBracket {
		t.Errorf("have %v, want %v", err, ErrNoBracket)
	}
}

func TestBracketUp(t *testing.T) {
	f := func(x float64) float64 { return x - 1000 }
	hi, err := BracketUp(f, 0, 1, 50)
	if err != nil {
		t.Fatal(err)
	}
	if hi < 1000 {
		t.Errorf("bracket %g does not contain root", hi)
	}
}

func TestMinimizeBounded(t *testing.T) {
	tests := []struct {
		name string
		f    func(float64) float64
		a, b float64
		want float64
	}{
		{"parabola", func(x float64) float64 { return (x - 1.7) * (x - 1.7) }, 1, 3, 1.7},
		{"edge", func(x float64) float64 { return x }, 1, 3, 1},
		{"cosine", math.Cos, 2, 4, math.Pi},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			have, err := MinimizeBounded(test.f, test.a, test.b, 1e-8, 500)
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(have-test.want) > 1e-4 {
				t.Errorf("have %g, want %g", have, test.want)
			}
		})
	}
}

func TestNNLS(t *testing.T) {
	a := mat.NewDense(4, 3, []float64{
		1, 0, 1,
		0, 1, 1,
		1, 1, 0,
		1, 2, 1,
	})
	want := []float64{0.5, 0, 2}
	b := make([]float64, 4)
	for i := 0; i < 4; i++ {
		for j := 0; j < 3; j++ {
			b[i] += a.At(i, j) * want[j]
		}
	}
	have, err := NNLS(a, b)
	if err != nil {
		t.Fatal(err)
	}
	for i := range want {
		if math.Abs(have[i]-want[i]) > 1e-8 {
			t.Errorf("%d: have %g, want %g", i, have[i], want[i])
		}
	}

	// The unconstrained solution is negative, so the constrained one
	// must clamp at zero.
	a2 := mat.NewDense(2, 1, []float64{1, 1})
	have, err = NNLS(a2, []float64{-1, -2})
	if err != nil {
		t.Fatal(err)
	}
	if have[0] != 0 {
		t.Errorf("have %g, want 0", have[0])
	}
}

func TestBSpline(t *testing.T) {
	xs := []float64{0, 1, 2, 3, 4}
	ys := []float64{0, 1, 2, 3, 4}
	ox, oy := BSpline(xs, ys, 11, 2)
	if len(ox) != 11 || len(oy) != 11 {
		t.Fatalf("have %d points, want 11", len(ox))
	}
	if ox[0] != 0 || oy[0] != 0 || ox[10] != 4 || oy[10] != 4 {
		t.Errorf("spline should be clamped to the end points: %v %v", ox, oy)
	}
	for i := range ox {
		if math.Abs(ox[i]-oy[i]) > 1e-12 {
			t.Errorf("collinear control points should give a straight line: %g, %g", ox[i], oy[i])
		}
	}
	if x, _ := BSpline(xs, ys, 11, 0); len(x) != len(xs) {
		t.Error("degree 0 should not smooth")
	}
}

func TestGradient(t *testing.T) {
	x := []float64{0, 0.5, 1.5, 2, 3}
	y := make([]float64, len(x))
	for i, xi := range x {
		y[i] = xi * xi
	}
	g := Gradient(y, x)
	for i := 1; i < len(x)-1; i++ {
		if different(g[i], 2*x[i], 1e-9) {
			t.Errorf("%d: have %g, want %g", i, g[i], 2*x[i])
		}
	}
}

func TestSearchSorted(t *testing.T) {
	a := []float64{0.1, 0.2, 0.2, 0.5}
	tests := []struct {
		v    float64
		want int
	}{{0, 0}, {0.2, 1}, {0.3, 3}, {1, 4}}
	for _, test := range tests {
		if have := SearchSorted(a, test.v); have != test.want {
			t.Errorf("%g: have %d, want %d", test.v, have, test.want)
		}
	}
}
