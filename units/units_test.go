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

package units

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/ctessum/unit"
	"github.com/spatialmodel/adsorb/internal/errs"
)

func different(a, b, tolerance float64) bool {
	if 2*math.Abs(a-b)/math.Abs(a+b) > tolerance || math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return false
}

// nitrogen is a fixed-property fluid for testing.
type nitrogen struct{}

func (nitrogen) MolarMass() (float64, error)                   { return 28.0134, nil }
func (nitrogen) SaturationPressure(T float64) (float64, error) { return 101325, nil }
func (nitrogen) LiquidDensity(T float64) (float64, error)      { return 0.806, nil }
func (nitrogen) GasDensity(T float64) (float64, error)         { return 0.0046, nil }

type supercritical struct{ nitrogen }

func (supercritical) SaturationPressure(T float64) (float64, error) {
	return 0, errs.Calculation("supercritical")
}

type carbon struct{}

func (carbon) Density() (float64, error)   { return 2, nil }
func (carbon) MolarMass() (float64, error) { return 12.011, nil }

var props = Props{Fluid: nitrogen{}, Solid: carbon{}, Temperature: 77.355}

func TestPressure(t *testing.T) {
	tests := []struct {
		from, to Pressure
		in, out  float64
	}{
		{Pressure{Absolute, "bar"}, Pressure{Absolute, "Pa"}, 1, 1e5},
		{Pressure{Absolute, "atm"}, Pressure{Absolute, "kPa"}, 1, 101.325},
		{Pressure{Absolute, "Pa"}, Pressure{Relative, ""}, 50662.5, 0.5},
		{Pressure{Absolute, "atm"}, Pressure{RelativePercent, ""}, 0.5, 50},
		{Pressure{Relative, ""}, Pressure{Absolute, "bar"}, 0.5, 0.506625},
		{Pressure{RelativePercent, ""}, Pressure{Absolute, "Pa"}, 50, 50662.5},
		{Pressure{Relative, ""}, Pressure{RelativePercent, ""}, 0.3, 30},
		{Pressure{RelativePercent, ""}, Pressure{Relative, ""}, 30, 0.3},
		{Pressure{Relative, ""}, Pressure{Relative, ""}, 0.3, 0.3},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%v-%v", test.from, test.to), func(t *testing.T) {
			have, err := ConvertPressure([]float64{test.in}, test.from, test.to, props)
			if err != nil {
				t.Fatal(err)
			}
			if different(have[0], test.out, 1e-12) {
				t.Errorf("have %g, want %g", have[0], test.out)
			}
			back, err := ConvertPressure(have, test.to, test.from, props)
			if err != nil {
				t.Fatal(err)
			}
			if different(back[0], test.in, 1e-9) {
				t.Errorf("round trip: have %g, want %g", back[0], test.in)
			}
		})
	}
}

func TestPressureErrors(t *testing.T) {
	tests := []struct {
		name     string
		from, to Pressure
		p        Props
		kind     error
	}{
		{"unit", Pressure{Absolute, "bar"}, Pressure{Absolute, "psi"}, props, errs.ErrUnit},
		{"mode", Pressure{Absolute, "bar"}, Pressure{"gauge", ""}, props, errs.ErrUnit},
		{"no fluid", Pressure{Absolute, "bar"}, Pressure{Relative, ""}, Props{Temperature: 77}, errs.ErrMissingParameter},
		{"no temperature", Pressure{Absolute, "bar"}, Pressure{Relative, ""}, Props{Fluid: nitrogen{}}, errs.ErrMissingParameter},
		{"supercritical", Pressure{Absolute, "bar"}, Pressure{Relative, ""}, Props{Fluid: supercritical{}, Temperature: 300}, errs.ErrCalculation},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := ConvertPressure([]float64{1}, test.from, test.to, test.p)
			if !errors.Is(err, test.kind) {
				t.Errorf("have %v, want %v", err, test.kind)
			}
		})
	}
}

func TestLoading(t *testing.T) {
	g := Material{MaterialMass, "g"}
	tests := []struct {
		from, to Loading
		mat      Material
		in, out  float64
	}{
		{Loading{Molar, "mmol"}, Loading{Molar, "mol"}, g, 1000, 1},
		{Loading{Molar, "mmol"}, Loading{Mass, "g"}, g, 1, 0.0280134},
		{Loading{Molar, "mol"}, Loading{VolumeGas, "cm3"}, g, 1, 28.0134 / 0.0046},
		{Loading{Molar, "mol"}, Loading{VolumeLiquid, "cm3"}, g, 1, 28.0134 / 0.806},
		{Loading{Mass, "g"}, Loading{Fraction, ""}, g, 0.5, 0.5},
		{Loading{Mass, "mg"}, Loading{Percent, ""}, g, 500, 50},
		{Loading{Molar, "mmol"}, Loading{Fraction, ""}, Material{MaterialVolume, "cm3"}, 1, 0.0280134 / 0.806},
		{Loading{Fraction, ""}, Loading{Percent, ""}, g, 0.2, 20},
		{Loading{"volume", "cm3"}, Loading{VolumeGas, "L"}, g, 1000, 1},
		{Loading{Molar, "cm3(STP)"}, Loading{Molar, "mmol"}, g, 1, 4.461e-2},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%v-%v", test.from, test.to), func(t *testing.T) {
			have, err := ConvertLoading([]float64{test.in}, test.from, test.to, test.mat, props)
			if err != nil {
				t.Fatal(err)
			}
			if different(have[0], test.out, 1e-9) {
				t.Errorf("have %g, want %g", have[0], test.out)
			}
			back, err := ConvertLoading(have, test.to, test.from, test.mat, props)
			if err != nil {
				t.Fatal(err)
			}
			if different(back[0], test.in, 1e-9) {
				t.Errorf("round trip: have %g, want %g", back[0], test.in)
			}
		})
	}
}

func TestLoadingNegative(t *testing.T) {
	g := Material{MaterialMass, "g"}
	_, err := ConvertLoading([]float64{-1}, Loading{Molar, "mmol"}, Loading{Molar, "mol"}, g, props)
	if !errors.Is(err, errs.ErrParameter) {
		t.Errorf("negative molar loading should fail, have %v", err)
	}
	p := props
	p.AllowNegative = true
	if _, err = ConvertLoading([]float64{-1}, Loading{Molar, "mmol"}, Loading{Molar, "mol"}, g, p); err == nil {
		t.Error("AllowNegative should only apply to fraction loadings")
	}
	have, err := ConvertLoading([]float64{-0.1}, Loading{Fraction, ""}, Loading{Percent, ""}, g, p)
	if err != nil {
		t.Fatal(err)
	}
	if different(have[0], -10, 1e-12) {
		t.Errorf("have %g, want -10", have[0])
	}
}

func TestNaNPropagates(t *testing.T) {
	have, err := ConvertPressure([]float64{math.NaN(), 1}, Pressure{Absolute, "bar"}, Pressure{Absolute, "Pa"}, props)
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(have[0]) || have[1] != 1e5 {
		t.Errorf("have %v", have)
	}
}

func TestMaterial(t *testing.T) {
	tests := []struct {
		from, to Material
		in, out  float64
	}{
		{Material{MaterialMass, "g"}, Material{MaterialMass, "kg"}, 1, 1000},
		{Material{MaterialMass, "g"}, Material{MaterialVolume, "cm3"}, 1, 2},
		{Material{MaterialMass, "g"}, Material{MaterialMolar, "mol"}, 1, 12.011},
		{Material{MaterialVolume, "cm3"}, Material{MaterialMolar, "mmol"}, 1, 12.011e-3 / 2},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%v-%v", test.from, test.to), func(t *testing.T) {
			have, err := ConvertMaterial([]float64{test.in}, test.from, test.to, props)
			if err != nil {
				t.Fatal(err)
			}
			if different(have[0], test.out, 1e-9) {
				t.Errorf("have %g, want %g", have[0], test.out)
			}
		})
	}
	if _, err := ConvertMaterial([]float64{1}, Material{MaterialMass, "g"}, Material{MaterialVolume, "cm3"}, Props{}); !errors.Is(err, errs.ErrMissingParameter) {
		t.Errorf("have %v, want missing parameter", err)
	}
}

func TestRegister(t *testing.T) {
	if err := RegisterPressureUnit("psi", unit.New(6894.757, unit.Pascal)); err != nil {
		t.Fatal(err)
	}
	have, err := ConvertPressure([]float64{1}, Pressure{Absolute, "psi"}, Pressure{Absolute, "Pa"}, props)
	if err != nil {
		t.Fatal(err)
	}
	if different(have[0], 6894.757, 1e-12) {
		t.Errorf("have %g, want 6894.757", have[0])
	}
	if err := RegisterPressureUnit("furlong", unit.New(201.168, unit.Meter)); !errors.Is(err, errs.ErrUnit) {
		t.Errorf("have %v, want a unit error", err)
	}
}

func TestTemperature(t *testing.T) {
	have, err := ConvertTemperature(25, "°C", "K")
	if err != nil {
		t.Fatal(err)
	}
	if different(have, 298.15, 1e-12) {
		t.Errorf("have %g, want 298.15", have)
	}
	if _, err := ConvertTemperature(25, "F", "K"); !errors.Is(err, errs.ErrUnit) {
		t.Errorf("have %v, want a unit error", err)
	}
}

func TestLoadingMaterialFactor(t *testing.T) {
	gram, cm3 := Material{MaterialMass, "g"}, Material{MaterialVolume, "cm3"}
	tests := []struct {
		name           string
		from, to       Loading
		fromMat, toMat Material
		want           float64
	}{
		{"molar", Loading{Molar, "mmol"}, Loading{Molar, "mmol"}, gram, cm3, 2},
		{"fraction", Loading{Fraction, ""}, Loading{Fraction, ""}, gram, cm3, 2 / 0.806},
		{"fraction to molar", Loading{Fraction, ""}, Loading{Molar, "mmol"}, gram, cm3, 2000 / 28.0134},
		{"molar to percent", Loading{Molar, "mmol"}, Loading{Percent, ""}, gram, gram, 28.0134 / 10},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			have, err := LoadingMaterialFactor(test.from, test.to, test.fromMat, test.toMat, props)
			if err != nil {
				t.Fatal(err)
			}
			if different(have, test.want, 1e-9) {
				t.Errorf("have %g, want %g", have, test.want)
			}
		})
	}
}
