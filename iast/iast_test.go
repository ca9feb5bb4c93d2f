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

package iast

import (
	"errors"
	"math"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spatialmodel/adsorb"
	"github.com/spatialmodel/adsorb/internal/numeric"
	"github.com/spatialmodel/adsorb/modelling"
)

func different(a, b, tolerance float64) bool {
	if 2*math.Abs(a-b)/math.Abs(a+b) > tolerance || math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return false
}

func meta(gas string) adsorb.Metadata {
	return adsorb.Metadata{
		Material:    "Carbon",
		Adsorbate:   gas,
		Temperature: 298.15,
		Units:       adsorb.DefaultUnits(),
	}
}

func langmuirModel(t *testing.T, gas string, nm, K float64) adsorb.Isotherm {
	m, err := modelling.New("Langmuir", map[string]float64{"n_m": nm, "K": K}, 298.15)
	if err != nil {
		t.Fatal(err)
	}
	m.PressureRange = [2]float64{0, 10}
	iso, err := adsorb.NewModelIsotherm(meta(gas), m, adsorb.Adsorption)
	if err != nil {
		t.Fatal(err)
	}
	return iso
}

func tothModel(t *testing.T, gas string, nm, K, tt float64) adsorb.Isotherm {
	m, err := modelling.New("Toth", map[string]float64{"n_m": nm, "K": K, "t": tt}, 298.15)
	if err != nil {
		t.Fatal(err)
	}
	m.PressureRange = [2]float64{0, 10}
	iso, err := adsorb.NewModelIsotherm(meta(gas), m, adsorb.Adsorption)
	if err != nil {
		t.Fatal(err)
	}
	return iso
}

func langmuirPoints(t *testing.T, gas string, nm, K, pmax float64) adsorb.Isotherm {
	p := numeric.Linspace(0.001, pmax, 400)
	n := make([]float64, len(p))
	for i, v := range p {
		n[i] = nm * K * v / (1 + K*v)
	}
	iso, err := adsorb.NewPointIsotherm(meta(gas), p, n)
	if err != nil {
		t.Fatal(err)
	}
	return iso
}

// extendedLangmuir is the exact IAST solution for Langmuir components
// of equal capacity.
func extendedLangmuir(nm float64, K, y []float64, P float64) []float64 {
	den := 1.0
	for i := range K {
		den += K[i] * y[i] * P
	}
	o := make([]float64, len(K))
	for i := range K {
		o[i] = nm * K[i] * y[i] * P / den
	}
	return o
}

func TestIAST(t *testing.T) {
	K := []float64{2, 0.5}
	tests := []struct {
		name string
		isos []adsorb.Isotherm
		tol  float64
	}{
		{"model", []adsorb.Isotherm{langmuirModel(t, "carbon dioxide", 5, K[0]), langmuirModel(t, "methane", 5, K[1])}, 1e-6},
		{"point", []adsorb.Isotherm{langmuirPoints(t, "carbon dioxide", 5, K[0], 10), langmuirPoints(t, "methane", 5, K[1], 10)}, 1e-2},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			for _, y := range [][]float64{{0.5, 0.5}, {0.1, 0.9}, {0.9, 0.1}} {
				for _, P := range []float64{0.1, 1, 5} {
					r, err := IAST(test.isos, y, P, Options{})
					if err != nil {
						t.Fatal(err)
					}
					want := extendedLangmuir(5, K, y, P)
					for i := range want {
						if different(r.Loading[i], want[i], test.tol) {
							t.Errorf("y=%v P=%g component %d: have %g, want %g", y, P, i, r.Loading[i], want[i])
						}
					}
					var sum float64
					for _, x := range r.AdsorbedFraction {
						sum += x
					}
					if math.Abs(sum-1) > 1e-6 {
						t.Errorf("adsorbed fractions sum to %g", sum)
					}
				}
			}
		})
	}
}

// Toth models have no closed form spreading pressure, so these cases
// integrate it numerically.
func TestIASTNumericalSpreading(t *testing.T) {
	K := []float64{2, 0.5}
	t.Run("langmuir limit", func(t *testing.T) {
		isos := []adsorb.Isotherm{tothModel(t, "carbon dioxide", 5, K[0], 1), tothModel(t, "methane", 5, K[1], 1)}
		for _, y := range [][]float64{{0.5, 0.5}, {0.2, 0.8}} {
			for _, P := range []float64{0.1, 1, 5} {
				r, err := IAST(isos, y, P, Options{})
				if err != nil {
					t.Fatal(err)
				}
				want := extendedLangmuir(5, K, y, P)
				for i := range want {
					if different(r.Loading[i], want[i], 1e-4) {
						t.Errorf("y=%v P=%g component %d: have %g, want %g", y, P, i, r.Loading[i], want[i])
					}
				}
			}
		}
	})
	t.Run("heterogeneous", func(t *testing.T) {
		isos := []adsorb.Isotherm{tothModel(t, "carbon dioxide", 5, K[0], 0.6), tothModel(t, "methane", 4, K[1], 0.8)}
		y := []float64{0.3, 0.7}
		fwd, err := IAST(isos, y, 2, Options{})
		if err != nil {
			t.Fatal(err)
		}
		// Each component sits at the mixture spreading pressure.
		for i, iso := range isos {
			pi, err := iso.SpreadingPressureAt(fwd.Pressure0[i], adsorb.Query{Branch: adsorb.Adsorption})
			if err != nil {
				t.Fatal(err)
			}
			if different(pi, fwd.SpreadingPressure, 1e-6) {
				t.Errorf("component %d: have Π %g, want %g", i, pi, fwd.SpreadingPressure)
			}
		}
		rev, err := Reverse(isos, fwd.AdsorbedFraction, 2, Options{})
		if err != nil {
			t.Fatal(err)
		}
		for i := range y {
			if different(rev.GasFraction[i], y[i], 1e-5) {
				t.Errorf("gas fraction %d: have %g, want %g", i, rev.GasFraction[i], y[i])
			}
		}
	})
}

func TestIASTPureLimit(t *testing.T) {
	isos := []adsorb.Isotherm{langmuirModel(t, "carbon dioxide", 5, 2), langmuirModel(t, "methane", 5, 0.5)}
	r, err := IAST(isos, []float64{1, 0}, 1, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if r.Loading[1] != 0 {
		t.Errorf("absent component loading: %g", r.Loading[1])
	}
	if different(r.Loading[0], 5*2/3.0, 1e-6) {
		t.Errorf("have %g, want %g", r.Loading[0], 5*2/3.0)
	}
}

func TestReverse(t *testing.T) {
	isos := []adsorb.Isotherm{langmuirModel(t, "carbon dioxide", 5, 2), langmuirModel(t, "methane", 3, 0.5)}
	y := []float64{0.3, 0.7}
	fwd, err := IAST(isos, y, 2, Options{})
	if err != nil {
		t.Fatal(err)
	}
	rev, err := Reverse(isos, fwd.AdsorbedFraction, 2, Options{})
	if err != nil {
		t.Fatal(err)
	}
	for i := range y {
		if different(rev.GasFraction[i], y[i], 1e-6) {
			t.Errorf("gas fraction %d: have %g, want %g", i, rev.GasFraction[i], y[i])
		}
		if different(rev.Loading[i], fwd.Loading[i], 1e-6) {
			t.Errorf("loading %d: have %g, want %g", i, rev.Loading[i], fwd.Loading[i])
		}
	}
	if different(rev.SpreadingPressure, fwd.SpreadingPressure, 1e-6) {
		t.Errorf("spreading pressure: have %g, want %g", rev.SpreadingPressure, fwd.SpreadingPressure)
	}
}

func TestBinaryVLE(t *testing.T) {
	isos := []adsorb.Isotherm{langmuirModel(t, "carbon dioxide", 5, 2), langmuirModel(t, "methane", 5, 0.5)}
	v, err := BinaryVLE(isos, 1, 10, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(v.X) != 12 || len(v.Y) != 12 {
		t.Fatalf("have %d, %d points, want 12", len(v.X), len(v.Y))
	}
	if v.X[0] != 0 || v.Y[0] != 0 || v.X[11] != 1 || v.Y[11] != 1 {
		t.Errorf("end points: (%g, %g), (%g, %g)", v.X[0], v.Y[0], v.X[11], v.Y[11])
	}
	// For equal capacities x₁ = K₁y₁ / (K₁y₁ + K₂y₂).
	for i := 1; i < 11; i++ {
		y := v.Y[i]
		want := 2 * y / (2*y + 0.5*(1-y))
		if different(v.X[i], want, 1e-6) {
			t.Errorf("y=%g: have x=%g, want %g", y, v.X[i], want)
		}
	}
}

func TestBinarySVP(t *testing.T) {
	isos := []adsorb.Isotherm{langmuirModel(t, "carbon dioxide", 5, 2), langmuirModel(t, "methane", 5, 0.5)}
	s, err := BinarySVP(isos, []float64{0.2, 0.8}, []float64{0.1, 1, 5}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range s.Selectivity {
		if different(v, 4, 1e-6) {
			t.Errorf("P=%g: have %g, want 4", s.Pressure[i], v)
		}
	}
}

func TestIASTErrors(t *testing.T) {
	a := langmuirModel(t, "carbon dioxide", 5, 2)
	b := langmuirModel(t, "methane", 5, 0.5)
	relative := Options{Units: adsorb.Units{PressureMode: "relative"}}
	tests := []struct {
		name string
		isos []adsorb.Isotherm
		y    []float64
		P    float64
		o    Options
	}{
		{"one component", []adsorb.Isotherm{a}, []float64{1}, 1, Options{}},
		{"count", []adsorb.Isotherm{a, b}, []float64{0.2, 0.3, 0.5}, 1, Options{}},
		{"sum", []adsorb.Isotherm{a, b}, []float64{0.2, 0.3}, 1, Options{}},
		{"range", []adsorb.Isotherm{a, b}, []float64{1.5, -0.5}, 1, Options{}},
		{"pressure", []adsorb.Isotherm{a, b}, []float64{0.5, 0.5}, 0, Options{}},
		{"relative", []adsorb.Isotherm{a, b}, []float64{0.5, 0.5}, 1, relative},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := IAST(test.isos, test.y, test.P, test.o)
			if !errors.Is(err, adsorb.ErrParameter) {
				t.Errorf("have %v, want a parameter error", err)
			}
		})
	}
}

func TestExtrapolationWarning(t *testing.T) {
	logger, hook := test.NewNullLogger()
	old := Log
	Log = logger
	defer func() { Log = old }()

	isos := []adsorb.Isotherm{langmuirPoints(t, "carbon dioxide", 5, 2, 1), langmuirPoints(t, "methane", 5, 0.5, 1)}
	if _, err := IAST(isos, []float64{0.1, 0.9}, 1, Options{}); err != nil {
		t.Fatal(err)
	}
	warned := false
	for _, e := range hook.AllEntries() {
		warned = warned || e.Level == logrus.WarnLevel
	}
	if !warned {
		t.Error("no extrapolation warning")
	}

	hook.Reset()
	if _, err := IAST(isos, []float64{0.1, 0.9}, 1, Options{Quiet: true}); err != nil {
		t.Fatal(err)
	}
	if len(hook.AllEntries()) != 0 {
		t.Errorf("quiet run logged %d entries", len(hook.AllEntries()))
	}
}

func TestExtrapolationBelowRange(t *testing.T) {
	logger, hook := test.NewNullLogger()
	old := Log
	Log = logger
	defer func() { Log = old }()

	narrow := func(gas string, K float64) adsorb.Isotherm {
		iso := langmuirModel(t, gas, 5, K)
		iso.(*adsorb.ModelIsotherm).Model.PressureRange = [2]float64{1, 10}
		return iso
	}
	for _, test := range []struct {
		name string
		isos []adsorb.Isotherm
		P    float64
		warn bool
	}{
		{"below", []adsorb.Isotherm{narrow("carbon dioxide", 2), narrow("methane", 0.5)}, 0.2, true},
		{"inside", []adsorb.Isotherm{narrow("carbon dioxide", 2), narrow("methane", 0.5)}, 3, false},
		{"from zero", []adsorb.Isotherm{langmuirModel(t, "carbon dioxide", 5, 2), langmuirModel(t, "methane", 5, 0.5)}, 0.2, false},
	} {
		t.Run(test.name, func(t *testing.T) {
			hook.Reset()
			if _, err := IAST(test.isos, []float64{0.5, 0.5}, test.P, Options{}); err != nil {
				t.Fatal(err)
			}
			warned := false
			for _, e := range hook.AllEntries() {
				warned = warned || e.Level == logrus.WarnLevel
			}
			if warned != test.warn {
				t.Errorf("warned: have %v, want %v", warned, test.warn)
			}
		})
	}
}
