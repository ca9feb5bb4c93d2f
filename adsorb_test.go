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

package adsorb

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/kr/pretty"
	"github.com/spatialmodel/adsorb/internal/numeric"
	"github.com/spatialmodel/adsorb/modelling"
	"github.com/spatialmodel/adsorb/units"
)

func different(a, b, tolerance float64) bool {
	if 2*math.Abs(a-b)/math.Abs(a+b) > tolerance || math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return false
}

func testMeta() Metadata {
	return Metadata{
		Material:    "Carbon",
		Adsorbate:   "nitrogen",
		Temperature: 77.355,
		Units:       DefaultUnits(),
	}
}

// langmuirIsotherm returns a Langmuir isotherm with n_m = 5 mmol/g and
// K = 20 /bar sampled at n pressures up to 0.9 bar.
func langmuirIsotherm(t *testing.T, n int) *PointIsotherm {
	p := numeric.Linspace(0.001, 0.9, n)
	l := make([]float64, n)
	for i, v := range p {
		l[i] = 5 * 20 * v / (1 + 20*v)
	}
	iso, err := NewPointIsotherm(testMeta(), p, l)
	if err != nil {
		t.Fatal(err)
	}
	return iso
}

func TestNewPointIsothermErrors(t *testing.T) {
	noMaterial := testMeta()
	noMaterial.Material = ""
	badUnit := testMeta()
	badUnit.PressureUnit = "furlong"
	tests := []struct {
		name string
		meta Metadata
		p, n []float64
		want error
	}{
		{"length", testMeta(), []float64{1, 2}, []float64{1}, ErrParameter},
		{"empty", testMeta(), nil, nil, ErrParameter},
		{"negative", testMeta(), []float64{1, 2}, []float64{1, -1}, ErrParameter},
		{"nan", testMeta(), []float64{1, math.NaN()}, []float64{1, 2}, ErrParameter},
		{"material", noMaterial, []float64{1}, []float64{1}, ErrParameter},
		{"unit", badUnit, []float64{1}, []float64{1}, ErrUnit},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := NewPointIsotherm(test.meta, test.p, test.n)
			if !errors.Is(err, test.want) {
				t.Errorf("have %v, want %v", err, test.want)
			}
		})
	}
}

func TestGuessBranches(t *testing.T) {
	tests := []struct {
		name string
		p    []float64
		want []bool
		err  bool
	}{
		{"ads", []float64{1, 2, 3}, []bool{false, false, false}, false},
		{"ads-des", []float64{1, 2, 3, 2, 1}, []bool{false, false, false, true, true}, false},
		{"des", []float64{3, 2, 1}, []bool{true, true, true}, false},
		{"two maxima", []float64{1, 3, 2, 4}, nil, true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			have, err := GuessBranches(test.p)
			if test.err {
				if !errors.Is(err, ErrParameter) {
					t.Errorf("have %v, want a parameter error", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if d := pretty.Diff(have, test.want); len(d) > 0 {
				t.Errorf("branches differ: %v", d)
			}
		})
	}
}

func TestBranchData(t *testing.T) {
	iso, err := NewPointIsotherm(testMeta(), []float64{0.1, 0.5, 0.9, 0.4}, []float64{1, 2, 3, 2.5})
	if err != nil {
		t.Fatal(err)
	}
	if !iso.HasBranch(Desorption) {
		t.Fatal("missing desorption branch")
	}
	p, err := iso.Pressure(Query{Branch: Desorption})
	if err != nil {
		t.Fatal(err)
	}
	if d := pretty.Diff(p, []float64{0.4}); len(d) > 0 {
		t.Errorf("desorption pressure: %v", d)
	}
	p, n, err := iso.Data(Query{Branch: Adsorption, Limits: &Range{0.2, 1}})
	if err != nil {
		t.Fatal(err)
	}
	if d := pretty.Diff([][]float64{p, n}, [][]float64{{0.5, 0.9}, {2, 3}}); len(d) > 0 {
		t.Errorf("limited data: %v", d)
	}
	ads, err := NewPointIsotherm(testMeta(), []float64{1, 2}, []float64{1, 2}, AsBranch(Adsorption))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ads.Loading(Query{Branch: Desorption}); !errors.Is(err, ErrParameter) {
		t.Errorf("have %v, want a parameter error", err)
	}
}

func TestConvertRoundTrip(t *testing.T) {
	iso := langmuirIsotherm(t, 20)
	id := iso.ID()
	steps := []Units{
		{PressureMode: units.Relative},
		{PressureMode: units.Absolute, PressureUnit: "kPa"},
		{LoadingBasis: units.Mass, LoadingUnit: "mg"},
		{MaterialBasis: units.MaterialVolume, MaterialUnit: "cm3"},
		{LoadingBasis: units.Fraction},
		DefaultUnits(),
	}
	for _, u := range steps {
		if err := iso.Convert(u); err != nil {
			t.Fatalf("%+v: %v", u, err)
		}
	}
	if iso.ID() != id {
		t.Errorf("identity changed after a round trip of conversions")
	}
}

func TestConvertAtomic(t *testing.T) {
	iso := langmuirIsotherm(t, 5)
	before := iso.Units
	err := iso.ConvertLoading(units.Molar, "furlong")
	if !errors.Is(err, ErrUnit) {
		t.Errorf("have %v, want a unit error", err)
	}
	if iso.Units != before {
		t.Errorf("units changed after a failed conversion: %+v", iso.Units)
	}
}

func TestQueryUnits(t *testing.T) {
	iso := langmuirIsotherm(t, 5)
	native, err := iso.Loading(Query{})
	if err != nil {
		t.Fatal(err)
	}
	mol, err := iso.Loading(Query{Units: Units{LoadingUnit: "mol"}})
	if err != nil {
		t.Fatal(err)
	}
	for i := range native {
		if different(mol[i], native[i]/1000, 1e-12) {
			t.Errorf("%d: have %g, want %g", i, mol[i], native[i]/1000)
		}
	}
	mass, err := iso.Loading(Query{Units: Units{LoadingBasis: units.Mass}})
	if err != nil {
		t.Fatal(err)
	}
	if want := native[0] * 28.0134 / 1000; different(mass[0], want, 1e-9) {
		t.Errorf("mass loading: have %g, want %g", mass[0], want)
	}
}

func TestInterpolation(t *testing.T) {
	iso := langmuirIsotherm(t, 30)
	p, n, err := iso.Data(Query{})
	if err != nil {
		t.Fatal(err)
	}
	for _, kind := range []InterpKind{Linear, Nearest, Cubic, Akima} {
		t.Run(string(kind), func(t *testing.T) {
			have, err := iso.LoadingAt(p, Query{Interp: kind})
			if err != nil {
				t.Fatal(err)
			}
			for i := range have {
				if different(have[i], n[i], 1e-9) {
					t.Errorf("loading %d: have %g, want %g", i, have[i], n[i])
				}
			}
			back, err := iso.PressureAt(n, Query{Interp: kind})
			if err != nil {
				t.Fatal(err)
			}
			for i := range back {
				if different(back[i], p[i], 1e-9) {
					t.Errorf("pressure %d: have %g, want %g", i, back[i], p[i])
				}
			}
		})
	}
}

func TestFill(t *testing.T) {
	iso := langmuirIsotherm(t, 10)
	if _, err := iso.LoadingAt([]float64{2}, Query{}); !errors.Is(err, ErrCalculation) {
		t.Errorf("have %v, want a calculation error", err)
	}
	have, err := iso.LoadingAt([]float64{0, 2}, Query{Fill: &Fill{Below: 0, Above: 7}})
	if err != nil {
		t.Fatal(err)
	}
	if d := pretty.Diff(have, []float64{0, 7}); len(d) > 0 {
		t.Errorf("fill: %v", d)
	}
	// Fill is in output units.
	have, err = iso.LoadingAt([]float64{2}, Query{Units: Units{LoadingUnit: "mol"}, Fill: &Fill{Above: 7}})
	if err != nil {
		t.Fatal(err)
	}
	if different(have[0], 7, 1e-12) {
		t.Errorf("fill in mol: have %g, want 7", have[0])
	}
}

func TestSpreadingPressure(t *testing.T) {
	iso := langmuirIsotherm(t, 400)
	for _, P := range []float64{0.05, 0.1, 0.5, 0.9} {
		have, err := iso.SpreadingPressureAt(P, Query{})
		if err != nil {
			t.Fatal(err)
		}
		want := 5 * math.Log(1+20*P)
		if different(have, want, 0.01) {
			t.Errorf("%g: have %g, want %g", P, have, want)
		}
	}
	if _, err := iso.SpreadingPressureAt(1.5, Query{}); !errors.Is(err, ErrCalculation) {
		t.Errorf("have %v, want a calculation error", err)
	}
}

func TestIdentity(t *testing.T) {
	iso := langmuirIsotherm(t, 10)
	c := iso.Clone()
	if !Equal(iso, c) {
		t.Errorf("clone has a different identity")
	}
	c.Properties = map[string]interface{}{"operator": "me"}
	if Equal(iso, c) {
		t.Errorf("identity ignores properties")
	}
	if err := c.ConvertPressure(units.Absolute, "Pa"); err != nil {
		t.Fatal(err)
	}
	if c.ID() == iso.ID() {
		t.Errorf("identity ignores units")
	}
}

func TestModelFromPoint(t *testing.T) {
	iso := langmuirIsotherm(t, 30)
	m, err := ModelFromPoint(iso, "Langmuir", Adsorption, modelling.FitOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if have := m.Model.Param("n_m"); different(have, 5, 1e-3) {
		t.Errorf("n_m: have %g, want 5", have)
	}
	if have := m.Model.Param("K"); different(have, 20, 1e-3) {
		t.Errorf("K: have %g, want 20", have)
	}
	if m.HasBranch(Desorption) {
		t.Errorf("model has a desorption branch")
	}
	have, err := m.LoadingAt([]float64{50}, Query{Units: Units{PressureUnit: "kPa", LoadingUnit: "mol"}})
	if err != nil {
		t.Fatal(err)
	}
	if want := 5 * 20 * 0.5 / (1 + 20*0.5) / 1000; different(have[0], want, 1e-3) {
		t.Errorf("converted loading: have %g, want %g", have[0], want)
	}
	pi, err := m.SpreadingPressureAt(0.5, Query{})
	if err != nil {
		t.Fatal(err)
	}
	if want := 5 * math.Log(11); different(pi, want, 1e-3) {
		t.Errorf("spreading pressure: have %g, want %g", pi, want)
	}
	p, err := m.Pressure(Query{Points: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(p) != 10 || different(p[9], 0.9, 1e-9) {
		t.Errorf("pressures: %v", p)
	}
}

func TestModelFromPointRelative(t *testing.T) {
	iso := langmuirIsotherm(t, 30)
	m, err := ModelFromPoint(iso, "DR", Adsorption, modelling.FitOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if m.PressureMode != units.Relative {
		t.Errorf("have %s, want relative pressure", m.PressureMode)
	}
	if _, err := m.LoadingAt([]float64{0.5}, Query{Units: Units{PressureMode: units.Absolute, PressureUnit: "bar"}}); err != nil {
		t.Error(err)
	}
}

func TestPointFromModel(t *testing.T) {
	model, err := modelling.New("Langmuir", map[string]float64{"n_m": 2, "K": 1}, 0)
	if err != nil {
		t.Fatal(err)
	}
	model.PressureRange = [2]float64{0, 10}
	m, err := NewModelIsotherm(testMeta(), model, Adsorption)
	if err != nil {
		t.Fatal(err)
	}
	iso, err := PointFromModel(m, nil, Query{Points: 11})
	if err != nil {
		t.Fatal(err)
	}
	n, err := iso.LoadingAt([]float64{1}, Query{})
	if err != nil {
		t.Fatal(err)
	}
	if different(n[0], 1, 1e-12) {
		t.Errorf("have %g, want 1", n[0])
	}
	if m.ID() == "" || m.ID() == iso.ID() {
		t.Errorf("unexpected model identity %q", m.ID())
	}
}

func TestGuessFromPoint(t *testing.T) {
	iso := langmuirIsotherm(t, 30)
	m, err := GuessFromPoint(iso, []string{"Henry", "Langmuir"}, Adsorption, modelling.FitOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if m.Model.Name() != "Langmuir" {
		t.Errorf("have %s, want Langmuir", m.Model.Name())
	}
}

func ExampleNewPointIsotherm() {
	iso, err := NewPointIsotherm(Metadata{
		Material:    "Carbon",
		Adsorbate:   "nitrogen",
		Temperature: 77.355,
		Units:       DefaultUnits(),
	}, []float64{0.1, 0.2, 0.3}, []float64{1, 1.5, 1.8})
	if err != nil {
		panic(err)
	}
	n, err := iso.LoadingAt([]float64{0.25}, Query{})
	if err != nil {
		panic(err)
	}
	fmt.Printf("%.2f mmol/g\n", n[0])
	// Output: 1.65 mmol/g
}
