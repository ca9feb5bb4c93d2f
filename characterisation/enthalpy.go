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
	"github.com/spatialmodel/adsorb/units"
	"gonum.org/v1/gonum/floats"
	gstat "gonum.org/v1/gonum/stat"
)

// EnthalpyResult holds isosteric enthalpies of adsorption.
type EnthalpyResult struct {
	// Loading is in mmol per material unit.
	Loading []float64 `json:"loading"`

	// Enthalpy is the isosteric enthalpy in kJ/mol at each loading.
	Enthalpy []float64 `json:"isosteric_enthalpy"`

	Slopes      []float64 `json:"slopes"`
	Correlation []float64 `json:"correlation"`

	// StdErr is the standard error of the enthalpy in kJ/mol.
	StdErr []float64 `json:"std_errs"`

	// Mean is the mean enthalpy over all loadings.
	Mean float64 `json:"mean"`
}

// enthalpyUnits are the units the isosteric enthalpy is computed in.
var enthalpyUnits = adsorb.Units{
	PressureMode: units.Absolute,
	PressureUnit: "bar",
	LoadingBasis: units.Molar,
	LoadingUnit:  "mmol",
}

// IsostericEnthalpy calculates the isosteric enthalpy of adsorption
// from isotherms of one material at several temperatures. With nil
// loadings, 50 loadings spanning the common loading range are used.
func IsostericEnthalpy(isos []adsorb.Isotherm, loading []float64, b adsorb.Branch) (*EnthalpyResult, error) {
	if len(isos) < 2 {
		return nil, errs.Parameter("pass at least two isotherms")
	}
	first := isos[0].Meta()
	for _, iso := range isos[1:] {
		m := iso.Meta()
		if m.Material != first.Material || m.MaterialBatch != first.MaterialBatch {
			return nil, errs.Parameter("the isotherms are not measured on the same material: %s and %s", first.Material, m.Material)
		}
		if m.MaterialBasis != first.MaterialBasis {
			return nil, errs.Parameter("the isotherms are in different material bases: %s and %s", first.MaterialBasis, m.MaterialBasis)
		}
	}
	if b == adsorb.BranchAll {
		b = adsorb.Adsorption
	}
	q := adsorb.Query{Branch: b, Units: enthalpyUnits}
	if loading == nil {
		lo, hi := math.Inf(-1), math.Inf(1)
		for _, iso := range isos {
			n, err := iso.Loading(q)
			if err != nil {
				return nil, err
			}
			lo = math.Max(lo, floats.Min(n))
			hi = math.Min(hi, floats.Max(n))
		}
		if !(1.01*lo < 0.99*hi) {
			return nil, errs.Parameter("the isotherms have no common loading range")
		}
		loading = numeric.Linspace(1.01*lo, 0.99*hi, 50)
	}
	temperatures := make([]float64, len(isos))
	pressures := make([][]float64, len(loading))
	for i := range pressures {
		pressures[i] = make([]float64, len(isos))
	}
	for j, iso := range isos {
		temperatures[j] = iso.Meta().Temperature
		p, err := iso.PressureAt(loading, q)
		if err != nil {
			return nil, err
		}
		for i := range p {
			pressures[i][j] = p[i]
		}
	}
	r, err := IsostericEnthalpyRaw(pressures, temperatures)
	if err != nil {
		return nil, err
	}
	r.Loading = loading
	return r, nil
}

// IsostericEnthalpyRaw calculates isosteric enthalpies from the
// pressures at each loading (one per temperature) and the temperatures
// in K.
func IsostericEnthalpyRaw(pressures [][]float64, temperatures []float64) (*EnthalpyResult, error) {
	if len(pressures) == 0 {
		return nil, errs.Parameter("empty input values")
	}
	invT := make([]float64, len(temperatures))
	for i, t := range temperatures {
		invT[i] = 1 / t
	}
	r := &EnthalpyResult{}
	lnp := make([]float64, len(temperatures))
	for _, p := range pressures {
		if len(p) != len(temperatures) {
			return nil, errs.Parameter("there are %d pressure points and %d temperatures", len(p), len(temperatures))
		}
		for i, v := range p {
			lnp[i] = math.Log(v)
		}
		fit := linregress(invT, lnp)
		r.Enthalpy = append(r.Enthalpy, -adsorbate.R*fit.slope/1000)
		r.Slopes = append(r.Slopes, fit.slope)
		r.Correlation = append(r.Correlation, fit.corr)
		r.StdErr = append(r.StdErr, adsorbate.R*fit.stderr/1000)
	}
	r.Mean = gstat.Mean(r.Enthalpy, nil)
	return r, nil
}
