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

// Package psd calculates pore size distributions from adsorption
// isotherms: Horvath-Kawazoe type methods for micropores, the
// BJH, Dollimore-Heal and generalised DH methods for mesopores, and
// a fit against a kernel of DFT isotherms.
package psd

import (
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/adsorb"
	"github.com/spatialmodel/adsorb/internal/errs"
	"github.com/spatialmodel/adsorb/internal/numeric"
)

// Log receives the warnings of the pore size distribution methods.
var Log logrus.FieldLogger = logrus.StandardLogger()

// Result is a pore size distribution. Widths are in nm and volumes in
// cm³ of liquid adsorbate per material unit.
type Result struct {
	Widths           []float64 `json:"pore_widths"`
	Distribution     []float64 `json:"pore_distribution"`
	VolumeCumulative []float64 `json:"pore_volume_cumulative"`

	// Volumes and Areas (m²) are the contributions of each pore group
	// of the mesoporous methods.
	Volumes   []float64 `json:"pore_volumes,omitempty"`
	Areas     []float64 `json:"pore_areas,omitempty"`
	AreaTotal float64   `json:"pore_area_total,omitempty"`

	// KernelLoading is the loading reconstructed by a kernel fit.
	KernelLoading []float64 `json:"kernel_loading,omitempty"`

	// Limits are the indices of the first and last points used.
	Limits [2]int `json:"limits"`
}

// branchData returns the pressures and loadings of a branch in the
// given units, in ascending pressure order.
func branchData(iso adsorb.Isotherm, b adsorb.Branch, u adsorb.Units) (pressure, loading []float64, err error) {
	if !iso.HasBranch(b) {
		return nil, nil, errs.Parameter("the isotherm does not have the %s branch required for this calculation", b)
	}
	q := adsorb.Query{Branch: b, Units: u}
	pressure, err = iso.Pressure(q)
	if err != nil {
		return nil, nil, errs.Wrap(errs.ErrCalculation, err, "the isotherm cannot be converted to a relative basis; is it supercritical?")
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

// inclusive returns the indices [lo, hi] of the ascending pressures
// inside limits. Zero limits are open.
func inclusive(pressure []float64, limits adsorb.Range) (lo, hi int, err error) {
	lo, hi = 0, len(pressure)-1
	if limits.Min > 0 {
		lo = numeric.SearchSorted(pressure, limits.Min)
	}
	if limits.Max > 0 {
		hi = numeric.SearchSorted(pressure, limits.Max) - 1
	}
	if hi-lo < 2 {
		return lo, hi, errs.Calculation("the isotherm does not have enough points (at least 3) in the selected region")
	}
	return lo, hi, nil
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

// cumsum returns the running sum of v.
func cumsum(v []float64) []float64 {
	o := make([]float64, len(v))
	var s float64
	for i, x := range v {
		s += x
		o[i] = s
	}
	return o
}

// ediff returns the differences of v, with v[0] as the first element.
func ediff(v []float64) []float64 {
	o := make([]float64, len(v))
	for i := range v {
		if i == 0 {
			o[i] = v[0]
			continue
		}
		o[i] = v[i] - v[i-1]
	}
	return o
}
