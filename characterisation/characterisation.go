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

// Package characterisation computes material properties from adsorption
// isotherms: BET and Langmuir areas, t-plots and αs-plots, Dubinin
// micropore volumes, initial Henry constants and isosteric enthalpies.
// It also holds the thickness and Kelvin kernels used by the pore size
// distribution methods.
package characterisation

import (
	"github.com/GaryBoone/GoStats/stats"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/adsorb"
	"github.com/spatialmodel/adsorb/internal/errs"
	"github.com/spatialmodel/adsorb/internal/numeric"
	"github.com/spatialmodel/adsorb/units"
	gstat "gonum.org/v1/gonum/stat"
)

// Log receives the warnings of the characterisation methods.
var Log logrus.FieldLogger = logrus.StandardLogger()

// Avogadro is the Avogadro constant in 1/mol.
const Avogadro = 6.02214076e23

// relativeMolar selects relative pressure and loading in mol per
// native material unit.
var relativeMolar = adsorb.Units{
	PressureMode: units.Relative,
	LoadingBasis: units.Molar,
	LoadingUnit:  "mol",
}

// relativeData returns the pressures and loadings of a branch in
// relative pressure and mol. Desorption data is reversed so that
// pressure increases.
func relativeData(iso adsorb.Isotherm, b adsorb.Branch) (pressure, loading []float64, err error) {
	if b == adsorb.BranchAll {
		b = adsorb.Adsorption
	}
	q := adsorb.Query{Branch: b, Units: relativeMolar}
	pressure, err = iso.Pressure(q)
	if err != nil {
		return nil, nil, errs.Wrap(errs.ErrCalculation, err, "the isotherm cannot be converted to relative pressure; is it supercritical?")
	}
	loading, err = iso.Loading(q)
	if err != nil {
		return nil, nil, err
	}
	if b == adsorb.Desorption {
		pressure, loading = numeric.Reverse(pressure), numeric.Reverse(loading)
	}
	return pressure, loading, nil
}

// liquid returns the molar mass and the liquid density of the
// adsorbate of iso at its temperature.
func liquid(iso adsorb.Isotherm) (molarMass, density float64, err error) {
	m := iso.Meta()
	a := m.AdsorbateInfo()
	if molarMass, err = a.MolarMass(); err != nil {
		return 0, 0, err
	}
	if density, err = a.LiquidDensity(m.Temperature); err != nil {
		return 0, 0, err
	}
	return molarMass, density, nil
}

func checkLengths(pressure, loading []float64) error {
	if len(pressure) == 0 {
		return errs.Parameter("empty input values")
	}
	if len(pressure) != len(loading) {
		return errs.Parameter("the length of the pressure and loading arrays do not match: %d != %d", len(pressure), len(loading))
	}
	return nil
}

// regression is the result of a linear least squares fit.
type regression struct {
	slope, intercept float64
	corr             float64 // Pearson correlation coefficient.
	stderr           float64 // standard error of the slope.
}

func linregress(x, y []float64) regression {
	s, i, _, _, se, _ := stats.LinearRegression(x, y)
	if len(x) < 3 {
		// Two points fit exactly.
		se = 0
	}
	return regression{slope: s, intercept: i, corr: gstat.Correlation(x, y, nil), stderr: se}
}

// window returns the index range [lo, hi) of the ascending values in
// pressure selected by limits. Open limits select everything.
func window(pressure []float64, limits *adsorb.Range) (lo, hi int) {
	lo, hi = 0, len(pressure)
	if limits == nil {
		return
	}
	if limits.Max > 0 {
		hi = numeric.SearchSorted(pressure, limits.Max)
	}
	if limits.Min > 0 {
		lo = numeric.SearchSorted(pressure, limits.Min)
	}
	return
}

func pick(v []float64, idx []int) []float64 {
	o := make([]float64, len(idx))
	for i, j := range idx {
		o[i] = v[j]
	}
	return o
}
