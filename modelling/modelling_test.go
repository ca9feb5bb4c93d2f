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

package modelling

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/kr/pretty"
	"github.com/spatialmodel/adsorb/internal/errs"
	"github.com/spatialmodel/adsorb/internal/numeric"
)

func different(a, b, tolerance float64) bool {
	if 2*math.Abs(a-b)/math.Abs(a+b) > tolerance || math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return false
}

func mustNew(t *testing.T, name string, params map[string]float64, T float64) *Model {
	t.Helper()
	m, err := New(name, params, T)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestSpreadingPressure(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]float64
		pmin   float64
		pmax   float64
	}{
		{"Henry", map[string]float64{"K": 2}, 0.1, 10},
		{"Langmuir", map[string]float64{"n_m": 5, "K": 0.5}, 0.1, 10},
		{"DSLangmuir", map[string]float64{"n_m1": 3, "K1": 0.2, "n_m2": 2, "K2": 2}, 0.1, 10},
		{"TSLangmuir", map[string]float64{"n_m1": 2, "K1": 0.1, "n_m2": 2, "K2": 1, "n_m3": 1, "K3": 5}, 0.1, 10},
		{"BET", map[string]float64{"n_m": 2, "C": 50, "N": 0.9}, 0.01, 0.9},
		{"GAB", map[string]float64{"n_m": 2, "C": 20, "K": 0.8}, 0.01, 0.9},
		{"Quadratic", map[string]float64{"n_m": 3, "Ka": 0.5, "Kb": 0.1}, 0.1, 10},
		{"TemkinApprox", map[string]float64{"n_m": 4, "K": 0.3, "tht": 0.2}, 0.1, 10},
		{"Freundlich", map[string]float64{"K": 1.5, "m": 2}, 0.1, 10},
		{"Virial", map[string]float64{"K": 10, "A": -0.2, "B": 0.01, "C": 0}, 0.01, 2},
		{"FHVST", map[string]float64{"n_m": 5, "K": 2, "a1v": 0.5}, 0.01, 10},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m := mustNew(t, test.name, test.params, 0)
			if m.v.spreading == nil {
				t.Fatal("no closed form")
			}
			for _, p := range numeric.Linspace(test.pmin, test.pmax, 10) {
				have, err := m.SpreadingPressure(p)
				if err != nil {
					t.Fatal(err)
				}
				n, err := m.Loading(p)
				if err != nil {
					t.Fatal(err)
				}
				want, err := m.numericalSpreading(p, n)
				if err != nil {
					t.Fatal(err)
				}
				if different(have, want, 0.01) {
					t.Errorf("p=%g: have %g, want %g", p, have, want)
				}
			}
		})
	}
}

func TestInverse(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]float64
		T      float64
		pmin   float64
		pmax   float64
	}{
		{"Henry", map[string]float64{"K": 2}, 0, 0.1, 10},
		{"Langmuir", map[string]float64{"n_m": 5, "K": 0.5}, 0, 0.1, 10},
		{"DSLangmuir", map[string]float64{"n_m1": 3, "K1": 0.2, "n_m2": 2, "K2": 2}, 0, 0.1, 10},
		{"TSLangmuir", map[string]float64{"n_m1": 2, "K1": 0.1, "n_m2": 2, "K2": 1, "n_m3": 1, "K3": 5}, 0, 0.1, 10},
		{"BET", map[string]float64{"n_m": 2, "C": 50, "N": 0.9}, 0, 0.01, 0.9},
		{"GAB", map[string]float64{"n_m": 2, "C": 20, "K": 0.8}, 0, 0.01, 0.9},
		{"Quadratic", map[string]float64{"n_m": 3, "Ka": 0.5, "Kb": 0.1}, 0, 0.1, 10},
		{"TemkinApprox", map[string]float64{"n_m": 4, "K": 0.3, "tht": 0.2}, 0, 0.1, 10},
		{"Toth", map[string]float64{"n_m": 5, "K": 0.5, "t": 0.7}, 0, 0.1, 10},
		{"DSToth", map[string]float64{"n_m1": 2, "K1": 1, "t1": 0.8, "n_m2": 3, "K2": 0.1, "t2": 1.2}, 0, 0.1, 10},
		{"ChemiPhysisorption", map[string]float64{"n_m1": 2, "K1": 1, "t1": 0.8, "n_m2": 1, "K2": 0.5, "Ea": 1000}, 300, 0.1, 10},
		{"JensenSeaton", map[string]float64{"K": 2, "a": 5, "b": 0.1, "c": 2}, 0, 0.1, 10},
		{"Freundlich", map[string]float64{"K": 1.5, "m": 2}, 0, 0.1, 10},
		{"DA", map[string]float64{"n_m": 10, "e": 4000, "m": 2.5}, 77.355, 0.01, 0.9},
		{"DR", map[string]float64{"n_m": 10, "e": 4000}, 77.355, 0.01, 0.9},
		{"Virial", map[string]float64{"K": 10, "A": -0.2, "B": 0.01, "C": 0}, 0, 0.01, 2},
		{"FHVST", map[string]float64{"n_m": 5, "K": 2, "a1v": 0.5}, 0, 0.01, 10},
		{"WVST", map[string]float64{"n_m": 5, "K": 2, "L1v": 1, "Lv1": 1}, 0, 0.01, 10},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m := mustNew(t, test.name, test.params, test.T)
			for _, p := range numeric.Linspace(test.pmin, test.pmax, 10) {
				n, err := m.Loading(p)
				if err != nil {
					t.Fatal(err)
				}
				have, err := m.Pressure(n)
				if err != nil {
					t.Fatal(err)
				}
				if different(have, p, 1e-6) {
					t.Errorf("pressure(loading(%g)): have %g", p, have)
				}
			}
		})
	}
}

func TestVacancyLimits(t *testing.T) {
	l := mustNew(t, "Langmuir", map[string]float64{"n_m": 5, "K": 2}, 0)
	fh := mustNew(t, "FHVST", map[string]float64{"n_m": 5, "K": 2, "a1v": 0}, 0)
	w := mustNew(t, "WVST", map[string]float64{"n_m": 5, "K": 2, "L1v": 1, "Lv1": 1}, 0)
	for _, n := range []float64{0.5, 1, 2.5, 4} {
		want, _ := l.Pressure(n)
		for _, m := range []*Model{fh, w} {
			have, err := m.Pressure(n)
			if err != nil {
				t.Fatal(err)
			}
			if different(have, want, 1e-12) {
				t.Errorf("%s: have %g, want %g", m.Name(), have, want)
			}
		}
	}
}

func langmuirData(nm, k float64) (p, n []float64) {
	p = numeric.Linspace(0.1, 10, 20)
	n = make([]float64, len(p))
	for i, pp := range p {
		n[i] = nm * k * pp / (1 + k*pp)
	}
	return p, n
}

func TestInitialGuessWithinBounds(t *testing.T) {
	p, n := langmuirData(5, 0.5)
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			g, err := InitialGuess(name, p, n, 77.355)
			if err != nil {
				t.Fatal(err)
			}
			v, _ := lookup(name)
			for i, k := range v.params {
				b := v.bounds[i]
				if !(g[k] >= b[0] && g[k] <= b[1]) {
					t.Errorf("%s = %g is outside %v", k, g[k], b)
				}
			}
		})
	}
}

func TestFitLangmuir(t *testing.T) {
	p, n := langmuirData(5, 0.5)
	m, err := Fit("Langmuir", p, n, FitOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if different(m.Param("n_m"), 5, 1e-3) {
		t.Errorf("n_m: have %g, want 5", m.Param("n_m"))
	}
	if different(m.Param("K"), 0.5, 1e-3) {
		t.Errorf("K: have %g, want 0.5", m.Param("K"))
	}
	if m.RMSE > 1e-4 {
		t.Errorf("rmse: have %g", m.RMSE)
	}
	if m.PressureRange != [2]float64{0.1, 10} {
		t.Errorf("pressure range: have %v", m.PressureRange)
	}
}

func TestFitBounds(t *testing.T) {
	p, n := langmuirData(5, 0.5)
	m, err := Fit("Langmuir", p, n, FitOptions{Bounds: map[string]Bound{"n_m": {0, 4}}})
	if err != nil {
		t.Fatal(err)
	}
	if v := m.Param("n_m"); v > 4 {
		t.Errorf("n_m: have %g, want at most 4", v)
	}
}

func TestFitFHVST(t *testing.T) {
	truth := mustNew(t, "FHVST", map[string]float64{"n_m": 5, "K": 2, "a1v": 0.5}, 0)
	p := numeric.Linspace(0.05, 5, 20)
	n := make([]float64, len(p))
	for i, pp := range p {
		var err error
		if n[i], err = truth.Loading(pp); err != nil {
			t.Fatal(err)
		}
	}
	m, err := Fit("FHVST", p, n, FitOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if m.RMSE > 0.01 {
		t.Errorf("rmse: have %g", m.RMSE)
	}
}

func virialData(t *testing.T, n []float64) []float64 {
	truth := mustNew(t, "Virial", map[string]float64{"K": 10, "A": -0.2, "B": 0.01, "C": 0.001}, 0)
	p := make([]float64, len(n))
	for i, nn := range n {
		var err error
		if p[i], err = truth.Pressure(nn); err != nil {
			t.Fatal(err)
		}
	}
	return p
}

func TestFitVirial(t *testing.T) {
	n := numeric.Linspace(0.1, 5, 20)
	p := virialData(t, n)
	m, err := Fit("Virial", p, n, FitOptions{})
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]float64{"K": 10, "A": -0.2, "B": 0.01, "C": 0.001}
	for k, w := range want {
		if different(m.Param(k), w, 1e-6) {
			t.Errorf("%s: have %g, want %g", k, m.Param(k), w)
		}
	}
}

func TestFitVirialFewPoints(t *testing.T) {
	n := []float64{3, 4, 5}
	p := virialData(t, n)
	if _, err := Fit("Virial", p, n, FitOptions{}); !errors.Is(err, errs.ErrCalculation) {
		t.Errorf("have %v, want a calculation error", err)
	}
	m, err := Fit("Virial", p, n, FitOptions{AddPoint: true})
	if err != nil {
		t.Fatal(err)
	}
	if m.Param("K") <= 0 {
		t.Errorf("K: have %g", m.Param("K"))
	}
}

func TestFitVirialRMSE(t *testing.T) {
	n := numeric.Linspace(0.1, 5, 20)
	p := virialData(t, n)
	n[5] *= 1.01 // Perturb one loading so the residual is known.
	m, err := Fit("Virial", p, n, FitOptions{})
	if err != nil {
		t.Fatal(err)
	}
	var rss float64
	for i, pp := range p {
		have, err := m.Loading(pp)
		if err != nil {
			t.Fatal(err)
		}
		rss += (have - n[i]) * (have - n[i])
	}
	if want := math.Sqrt(rss / float64(len(p))); different(m.RMSE, want, 1e-9) {
		t.Errorf("rmse: have %g, want %g", m.RMSE, want)
	}
}

func TestFitEvaluationLimit(t *testing.T) {
	p, n := langmuirData(5, 0.5)
	for _, test := range []struct {
		name    string
		maxEval int
		ok      bool
	}{
		{"default", 0, true},
		{"five", 5, false},
		{"twenty", 20, false},
	} {
		t.Run(test.name, func(t *testing.T) {
			_, err := Fit("Langmuir", p, n, FitOptions{MaxEvaluations: test.maxEval})
			if test.ok && err != nil {
				t.Fatal(err)
			}
			if !test.ok && !errors.Is(err, errs.ErrCalculation) {
				t.Errorf("have %v, want a calculation error", err)
			}
		})
	}
}

func TestFitErrors(t *testing.T) {
	p, n := langmuirData(5, 0.5)
	tests := []struct {
		name string
		err  error
		f    func() error
	}{
		{"unknown model", errs.ErrParameter, func() error {
			_, err := Fit("Sips", p, n, FitOptions{})
			return err
		}},
		{"unknown guess", errs.ErrParameter, func() error {
			_, err := Fit("Langmuir", p, n, FitOptions{Guess: map[string]float64{"q": 1}})
			return err
		}},
		{"no temperature", errs.ErrMissingParameter, func() error {
			_, err := Fit("DA", p, n, FitOptions{})
			return err
		}},
		{"length", errs.ErrParameter, func() error {
			_, err := Fit("Langmuir", p, n[1:], FitOptions{})
			return err
		}},
		{"missing parameter", errs.ErrMissingParameter, func() error {
			_, err := New("Langmuir", map[string]float64{"K": 1}, 0)
			return err
		}},
		{"above saturation", errs.ErrCalculation, func() error {
			m, _ := New("Langmuir", map[string]float64{"n_m": 1, "K": 1}, 0)
			_, err := m.Pressure(2)
			return err
		}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if err := test.f(); !errors.Is(err, test.err) {
				t.Errorf("have %v, want %v", err, test.err)
			}
		})
	}
}

func TestGuess(t *testing.T) {
	p, n := langmuirData(5, 0.5)
	m, err := Guess(p, n, nil, FitOptions{Temperature: 303})
	if err != nil {
		t.Fatal(err)
	}
	if m.RMSE > 1e-3 {
		t.Errorf("%s: rmse %g", m.Name(), m.RMSE)
	}
	if _, err := Guess(p, n, []string{"Sips"}, FitOptions{}); !errors.Is(err, errs.ErrCalculation) {
		t.Errorf("have %v, want a calculation error", err)
	}
}

func TestCache(t *testing.T) {
	m := mustNew(t, "Toth", map[string]float64{"n_m": 5, "K": 0.5, "t": 0.7}, 0)
	a, err := m.SpreadingPressure(2)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := m.SpreadingPressure(2)
	if a != b {
		t.Errorf("cached value: have %g, want %g", b, a)
	}
	if err := m.SetParam("n_m", 10); err != nil {
		t.Fatal(err)
	}
	c, _ := m.SpreadingPressure(2)
	if different(c, 2*a, 1e-9) {
		t.Errorf("after SetParam: have %g, want %g", c, 2*a)
	}
}

func TestPersist(t *testing.T) {
	p, n := langmuirData(5, 0.5)
	m, err := Fit("Langmuir", p, n, FitOptions{})
	if err != nil {
		t.Fatal(err)
	}
	b, err := json.Marshal(m.ToMap())
	if err != nil {
		t.Fatal(err)
	}
	var d map[string]interface{}
	if err := json.Unmarshal(b, &d); err != nil {
		t.Fatal(err)
	}
	m2, err := FromMap(d, 0)
	if err != nil {
		t.Fatal(err)
	}
	if diff := pretty.Diff(m.ToMap(), m2.ToMap()); len(diff) > 0 {
		t.Errorf("round trip: %v", diff)
	}
}

func ExampleFit() {
	p := []float64{0.5, 1, 2, 4, 8, 16}
	n := make([]float64, len(p))
	for i, pp := range p {
		n[i] = 3 * 0.2 * pp / (1 + 0.2*pp)
	}
	m, err := Fit("Langmuir", p, n, FitOptions{})
	if err != nil {
		panic(err)
	}
	fmt.Printf("n_m=%.3f K=%.3f\n", m.Param("n_m"), m.Param("K"))
	// Output: n_m=3.000 K=0.200
}
