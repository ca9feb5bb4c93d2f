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
	"strings"

	"github.com/spatialmodel/adsorb"
	"github.com/spatialmodel/adsorb/internal/errs"
	"github.com/spatialmodel/adsorb/internal/numeric"
	"github.com/spf13/cast"
	"gonum.org/v1/gonum/floats"
)

// Section is one linear region of a t-plot or αs-plot.
type Section struct {
	// Points are the indices of the points in the region.
	Points []int `json:"section"`

	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	Corr      float64 `json:"corr_coef"`

	// AdsorbedVolume is the liquid volume of the intercept, in cm³ per
	// material unit. For the first region of a microporous material it
	// is the micropore volume.
	AdsorbedVolume float64 `json:"adsorbed_volume"`

	// Area is the surface area in m² per material unit.
	Area float64 `json:"area"`
}

// PlotResult holds the reference curve of a t-plot or αs-plot and its
// linear regions.
type PlotResult struct {
	Curve    []float64 `json:"curve"`
	Sections []Section `json:"results"`
}

// linearSections returns the runs of at least three points over which
// y is linear in x, judged by the second derivative.
func linearSections(x, y []float64) [][]int {
	d2 := numeric.Gradient(numeric.Gradient(y, x), x)
	margin := 0.01 / (float64(len(y)) * floats.Max(y))
	var o [][]int
	var run []int
	flush := func() {
		if len(run) >= 3 {
			o = append(o, run)
		}
		run = nil
	}
	for i, v := range d2 {
		if math.Abs(v) < margin {
			run = append(run, i)
			continue
		}
		flush()
	}
	flush()
	return o
}

// regions fits each linear region of y against curve. Regions with
// slope·max(curve)/max(y) ≥ 3 are discarded as physically implausible.
func regions(curve, loading []float64, limits *adsorb.Range, area func(slope float64) float64, molarMass, density float64) []Section {
	var candidates [][]int
	if limits != nil {
		var idx []int
		for i, c := range curve {
			if c > limits.Min && c < limits.Max {
				idx = append(idx, i)
			}
		}
		candidates = [][]int{idx}
	} else {
		candidates = linearSections(curve, loading)
	}
	cmax, nmax := floats.Max(curve), floats.Max(loading)
	var o []Section
	for _, idx := range candidates {
		if len(idx) < 2 {
			continue
		}
		fit := linregress(pick(curve, idx), pick(loading, idx))
		if fit.slope*cmax/nmax >= 3 {
			continue
		}
		o = append(o, Section{
			Points:         idx,
			Slope:          fit.slope,
			Intercept:      fit.intercept,
			Corr:           fit.corr,
			AdsorbedVolume: fit.intercept * molarMass / density,
			Area:           area(fit.slope),
		})
	}
	if len(o) == 0 {
		if limits != nil {
			Log.Warn("could not fit a linear regression")
		} else {
			Log.Warn("could not determine linear regions; attempt a manual limit")
		}
	}
	return o
}

// TPlot compares a branch of an isotherm with a thickness curve. With
// nil limits the linear regions are found automatically; otherwise
// limits select a thickness range in nm.
func TPlot(iso adsorb.Isotherm, b adsorb.Branch, t Thickness, limits *adsorb.Range) (*PlotResult, error) {
	if t == nil {
		return nil, errs.Parameter("a thickness model is needed to generate the thickness curve")
	}
	molarMass, density, err := liquid(iso)
	if err != nil {
		return nil, err
	}
	pressure, loading, err := relativeData(iso, b)
	if err != nil {
		return nil, err
	}
	return TPlotRaw(loading, pressure, t, density, molarMass, limits)
}

// TPlotRaw computes a t-plot from loadings in mol, relative pressures,
// and the liquid density (g/cm³) and molar mass (g/mol) of the
// adsorbate.
func TPlotRaw(loading, pressure []float64, t Thickness, liquidDensity, molarMass float64, limits *adsorb.Range) (*PlotResult, error) {
	if err := checkLengths(pressure, loading); err != nil {
		return nil, err
	}
	curve, err := thicknesses(t, pressure)
	if err != nil {
		return nil, err
	}
	area := func(s float64) float64 { return s * molarMass / liquidDensity * 1000 }
	return &PlotResult{
		Curve:    curve,
		Sections: regions(curve, loading, limits, area, molarMass, liquidDensity),
	}, nil
}

// AlphaSOptions configure an αs-plot.
type AlphaSOptions struct {
	Branch, ReferenceBranch adsorb.Branch

	// ReferenceArea is "BET", "Langmuir" or a number in m² per material
	// unit. The default is BET.
	ReferenceArea string

	// ReducingPressure is the relative pressure at which the reference
	// curve is normalised. The default is 0.4.
	ReducingPressure float64

	// Limits select a range of αs.
	Limits *adsorb.Range
}

// AlphaS compares a branch of an isotherm with a reference isotherm of
// the same adsorbate on a non-porous material.
func AlphaS(iso, ref adsorb.Isotherm, o AlphaSOptions) (*PlotResult, error) {
	if ref == nil {
		return nil, errs.Parameter("an αs-plot needs a reference isotherm")
	}
	if !ref.Meta().AdsorbateInfo().Matches(iso.Meta().Adsorbate) {
		return nil, errs.Parameter("the reference isotherm adsorbate %s differs from the isotherm adsorbate %s",
			ref.Meta().Adsorbate, iso.Meta().Adsorbate)
	}
	rp := o.ReducingPressure
	if rp == 0 {
		rp = 0.4
	}
	if rp < 0 || rp > 1 {
		return nil, errs.Parameter("the reducing pressure %g is outside the bounds of 0-1 p/p0", rp)
	}
	refArea, err := referenceArea(ref, o.ReferenceArea)
	if err != nil {
		return nil, err
	}
	molarMass, density, err := liquid(iso)
	if err != nil {
		return nil, err
	}
	pressure, loading, err := relativeData(iso, o.Branch)
	if err != nil {
		return nil, err
	}
	rb := o.ReferenceBranch
	if rb == adsorb.BranchAll {
		rb = adsorb.Adsorption
	}
	q := adsorb.Query{Branch: rb, Units: relativeMolar}
	refLoading, err := ref.LoadingAt(pressure, q)
	if err != nil {
		return nil, err
	}
	point, err := ref.LoadingAt([]float64{rp}, q)
	if err != nil {
		return nil, err
	}
	return AlphaSRaw(loading, refLoading, point[0], refArea, density, molarMass, o.Limits)
}

func referenceArea(ref adsorb.Isotherm, spec string) (float64, error) {
	switch strings.ToLower(spec) {
	case "", "bet":
		r, err := AreaBET(ref, adsorb.Adsorption, nil)
		if err != nil {
			return 0, errs.Wrap(errs.ErrCalculation, err, "could not calculate a BET area for the reference isotherm; provide a reference area instead")
		}
		return r.Area, nil
	case "langmuir":
		r, err := AreaLangmuir(ref, adsorb.Adsorption, nil)
		if err != nil {
			return 0, errs.Wrap(errs.ErrCalculation, err, "could not calculate a Langmuir area for the reference isotherm; provide a reference area instead")
		}
		return r.Area, nil
	}
	a, err := cast.ToFloat64E(spec)
	if err != nil {
		return 0, errs.Parameter("the reference area should be a number, BET or Langmuir, not %q", spec)
	}
	return a, nil
}

// AlphaSRaw computes an αs-plot from loadings in mol, the reference
// loadings at the same pressures, the reference loading at the
// reducing pressure and the reference area.
func AlphaSRaw(loading, refLoading []float64, alphaPoint, refArea, liquidDensity, molarMass float64, limits *adsorb.Range) (*PlotResult, error) {
	if len(loading) == 0 {
		return nil, errs.Parameter("empty input values")
	}
	if len(loading) != len(refLoading) {
		return nil, errs.Parameter("the length of the two loading arrays do not match: %d != %d", len(loading), len(refLoading))
	}
	if !(alphaPoint > 0) {
		return nil, errs.Calculation("the reference loading at the reducing pressure is %g", alphaPoint)
	}
	curve := make([]float64, len(refLoading))
	for i, v := range refLoading {
		curve[i] = v / alphaPoint
	}
	area := func(s float64) float64 { return refArea / alphaPoint * s }
	return &PlotResult{
		Curve:    curve,
		Sections: regions(curve, loading, limits, area, molarMass, liquidDensity),
	}, nil
}
