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

package characterisation

import (
	"math"

	"github.com/spatialmodel/adsorb"
	"github.com/spatialmodel/adsorb/adsorbate"
	"github.com/spatialmodel/adsorb/internal/errs"
	"github.com/spatialmodel/adsorb/internal/numeric"
)

// DubininResult holds the result of a Dubinin-Radushkevich or
// Dubinin-Astakhov plot.
type DubininResult struct {
	// PoreVolume is the micropore volume in cm³ per material unit.
	PoreVolume float64 `json:"pore_volume"`

	// Potential is the characteristic adsorption potential in kJ/mol.
	Potential float64 `json:"adsorption_potential"`

	Exponent  float64 `json:"exponent"`
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	Corr      float64 `json:"corr_coef"`
	Limits    [2]int  `json:"limits"`
}

// DRPlot is a Dubinin-Astakhov plot with exponent 2.
func DRPlot(iso adsorb.Isotherm, limits *adsorb.Range) (*DubininResult, error) {
	return DAPlot(iso, 2, limits)
}

// DAPlot calculates the micropore volume and adsorption potential of the
// adsorption branch of an isotherm. An exponent of 0 is chosen to
// minimise the standard error of the regression over [1, 3].
func DAPlot(iso adsorb.Isotherm, exp float64, limits *adsorb.Range) (*DubininResult, error) {
	if exp < 0 {
		return nil, errs.Parameter("the exponent cannot be negative, have %g", exp)
	}
	molarMass, density, err := liquid(iso)
	if err != nil {
		return nil, err
	}
	pressure, loading, err := relativeData(iso, adsorb.Adsorption)
	if err != nil {
		return nil, err
	}
	return DAPlotRaw(pressure, loading, iso.Meta().Temperature, molarMass, density, exp, limits)
}

// DAPlotRaw computes a Dubinin-Astakhov plot from relative pressures,
// loadings in mol, the temperature in K and the molar mass and liquid
// density of the adsorbate.
func DAPlotRaw(pressure, loading []float64, temperature, molarMass, liquidDensity, exp float64, limits *adsorb.Range) (*DubininResult, error) {
	if err := checkLengths(pressure, loading); err != nil {
		return nil, err
	}
	lo, hi := window(pressure, limits)
	if hi-lo < 2 {
		return nil, errs.Calculation("the desired limits are infeasible (at least 2 points must be selected)")
	}
	p, n := pressure[lo:hi], loading[lo:hi]
	logv := make([]float64, len(n))
	for i := range n {
		logv[i] = math.Log10(n[i] * molarMass / liquidDensity)
	}
	x := make([]float64, len(p))
	fit := func(e float64) regression {
		for i := range p {
			x[i] = math.Pow(-math.Log10(p[i]), e)
		}
		return linregress(x, logv)
	}
	if exp == 0 {
		var err error
		exp, err = numeric.MinimizeBounded(func(e float64) float64 { return fit(e).stderr }, 1, 3, 1e-5, 500)
		if err != nil {
			return nil, errs.Calculation("could not obtain a linear fit on the data provided: %v", err)
		}
	}
	r := fit(exp)
	potential := math.Pow(-math.Pow(math.Ln10, exp-1)*math.Pow(adsorbate.R*temperature, exp)/r.slope, 1/exp) / 1000
	return &DubininResult{
		PoreVolume: math.Pow(10, r.intercept),
		Potential:  potential,
		Exponent:   exp,
		Slope:      r.slope,
		Intercept:  r.intercept,
		Corr:       r.corr,
		Limits:     [2]int{lo, hi},
	}, nil
}
