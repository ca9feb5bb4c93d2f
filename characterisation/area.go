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

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/adsorb"
	"github.com/spatialmodel/adsorb/internal/errs"
	"github.com/spatialmodel/adsorb/internal/numeric"
)

// BETResult holds the result of a BET surface area calculation.
type BETResult struct {
	// Area is the specific surface area in m² per material unit.
	Area float64 `json:"area"`

	// C is the BET constant.
	C float64 `json:"c_const"`

	// NMonolayer is the monolayer loading in mol per material unit and
	// PMonolayer the relative pressure at which it is reached.
	NMonolayer float64 `json:"n_monolayer"`
	PMonolayer float64 `json:"p_monolayer"`

	Slope     float64 `json:"bet_slope"`
	Intercept float64 `json:"bet_intercept"`
	Corr      float64 `json:"corr_coef"`

	// Limits are the first and one past the last index of the points
	// used in the fit.
	Limits [2]int `json:"limits"`
}

// AreaBET calculates the BET surface area of a branch of an isotherm.
// With nil limits the fitting window is chosen automatically using the
// Rouquerol criteria; otherwise limits select a relative pressure
// range.
func AreaBET(iso adsorb.Isotherm, b adsorb.Branch, limits *adsorb.Range) (*BETResult, error) {
	cs, err := iso.Meta().AdsorbateInfo().CrossSectionalArea()
	if err != nil {
		return nil, err
	}
	pressure, loading, err := relativeData(iso, b)
	if err != nil {
		return nil, err
	}
	r, err := AreaBETRaw(pressure, loading, cs, limits)
	if err != nil {
		return nil, err
	}
	Log.WithFields(logrus.Fields{
		"material": iso.Meta().Material,
		"area":     r.Area,
		"c":        r.C,
		"p_min":    pressure[r.Limits[0]],
		"p_max":    pressure[r.Limits[1]-1],
	}).Debug("BET area")
	return r, nil
}

// rouquerol returns n(1-p).
func rouquerol(p, n float64) float64 { return n * (1 - p) }

// AreaBETRaw calculates the BET area from relative pressures, loadings
// in mol and the cross sectional area of the adsorbate in nm².
func AreaBETRaw(pressure, loading []float64, crossSection float64, limits *adsorb.Range) (*BETResult, error) {
	if err := checkLengths(pressure, loading); err != nil {
		return nil, err
	}
	var lo, hi int
	if limits == nil {
		top := len(pressure) - 1
		for i := 0; i+1 < len(pressure); i++ {
			if rouquerol(pressure[i+1], loading[i+1]) < rouquerol(pressure[i], loading[i]) {
				top = i
				break
			}
		}
		hi = top + 1
		lo = numeric.SearchSorted(pressure[:hi], pressure[top]/10)
	} else {
		lo, hi = window(pressure, limits)
	}
	if hi-lo < 3 {
		return nil, errs.Calculation("the isotherm does not have enough points (at least 3) in the BET region; unable to calculate the BET area")
	}
	p, n := pressure[lo:hi], loading[lo:hi]
	y := make([]float64, len(p))
	for i := range p {
		y[i] = p[i] / rouquerol(p[i], n[i])
	}
	fit := linregress(p, y)
	c := fit.slope/fit.intercept + 1
	nm := 1 / (fit.intercept * c)
	r := &BETResult{
		Area:       nm * crossSection * 1e-18 * Avogadro,
		C:          c,
		NMonolayer: nm,
		PMonolayer: 1 / (math.Sqrt(c) + 1),
		Slope:      fit.slope,
		Intercept:  fit.intercept,
		Corr:       fit.corr,
		Limits:     [2]int{lo, hi},
	}
	if c < 0 {
		Log.WithField("c", c).Warn("the BET C constant is negative")
	}
	if fit.corr < 0.99 {
		Log.WithField("corr", fit.corr).Warn("the BET correlation is not linear")
	}
	if !(n[0] < nm && nm < n[len(n)-1]) {
		Log.WithField("n_monolayer", nm).Warn("the monolayer point is not within the BET region")
	}
	return r, nil
}

// LangmuirResult holds the result of a Langmuir surface area
// calculation.
type LangmuirResult struct {
	Area       float64 `json:"area"`
	K          float64 `json:"langmuir_const"`
	NMonolayer float64 `json:"n_monolayer"`
	Slope      float64 `json:"langmuir_slope"`
	Intercept  float64 `json:"langmuir_intercept"`
	Corr       float64 `json:"corr_coef"`

	// Limits are the first and last index of the points used.
	Limits [2]int `json:"p_limit_indices"`
}

// AreaLangmuir calculates the Langmuir surface area of a branch of an
// isotherm. The default window is 5 % to 90 % of the maximum pressure.
func AreaLangmuir(iso adsorb.Isotherm, b adsorb.Branch, limits *adsorb.Range) (*LangmuirResult, error) {
	cs, err := iso.Meta().AdsorbateInfo().CrossSectionalArea()
	if err != nil {
		return nil, err
	}
	pressure, loading, err := relativeData(iso, b)
	if err != nil {
		return nil, err
	}
	r, err := AreaLangmuirRaw(pressure, loading, cs, limits)
	if err != nil {
		return nil, err
	}
	Log.WithFields(logrus.Fields{
		"material": iso.Meta().Material,
		"area":     r.Area,
		"k":        r.K,
	}).Debug("Langmuir area")
	return r, nil
}

// AreaLangmuirRaw calculates the Langmuir area from relative pressures,
// loadings in mol and the cross sectional area of the adsorbate in nm².
func AreaLangmuirRaw(pressure, loading []float64, crossSection float64, limits *adsorb.Range) (*LangmuirResult, error) {
	if err := checkLengths(pressure, loading); err != nil {
		return nil, err
	}
	if limits == nil {
		pmax := pressure[len(pressure)-1]
		limits = &adsorb.Range{Min: 0.05 * pmax, Max: 0.9 * pmax}
	}
	lo, hi := 0, len(pressure)-1
	if limits.Min > 0 {
		lo = numeric.SearchSorted(pressure, limits.Min)
	}
	if limits.Max > 0 {
		hi = numeric.SearchSorted(pressure, limits.Max) - 1
	}
	if hi-lo < 2 {
		return nil, errs.Calculation("the isotherm does not have enough points (at least 3) in the selected region; unable to calculate the Langmuir area")
	}
	p, n := pressure[lo:hi+1], loading[lo:hi+1]
	y := make([]float64, len(p))
	for i := range p {
		y[i] = p[i] / n[i]
	}
	fit := linregress(p, y)
	nm := 1 / fit.slope
	k := 1 / (fit.intercept * nm)
	if k < 0 {
		Log.WithField("k", k).Warn("the Langmuir constant is negative")
	}
	if fit.corr < 0.99 {
		Log.WithField("corr", fit.corr).Warn("the Langmuir correlation is not linear")
	}
	return &LangmuirResult{
		Area:       nm * crossSection * 1e-18 * Avogadro,
		K:          k,
		NMonolayer: nm,
		Slope:      fit.slope,
		Intercept:  fit.intercept,
		Corr:       fit.corr,
		Limits:     [2]int{lo, hi},
	}, nil
}
