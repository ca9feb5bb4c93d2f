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
	"github.com/spatialmodel/adsorb/modelling"
	"github.com/spatialmodel/adsorb/units"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
	gstat "gonum.org/v1/gonum/stat"
)

// EnthalpyTerms are the parameters of the initial enthalpy fit, in
// order.
var EnthalpyTerms = []string{"const", "preexp", "exp", "exploc", "prepowa", "powa", "prepowr", "powr"}

// InitialEnthalpyOptions control InitialEnthalpyComp.
type InitialEnthalpyOptions struct {
	// Key is the data channel holding the differential enthalpy in
	// kJ/mol. The default is "enthalpy".
	Key string

	// Branch is Adsorption by default.
	Branch adsorb.Branch

	// Bounds override the default bounds of the terms named in
	// EnthalpyTerms.
	Bounds map[string]modelling.Bound
}

// InitialEnthalpyResult holds the initial enthalpy of adsorption and
// the fitted contributions.
type InitialEnthalpyResult struct {
	// InitialEnthalpy is the enthalpy at zero loading in kJ/mol.
	InitialEnthalpy float64 `json:"initial_enthalpy"`

	// Params holds the fitted terms, keyed by EnthalpyTerms.
	Params map[string]float64 `json:"params"`

	// Loading is the fractional loading of each used point.
	Loading  []float64 `json:"loading"`
	Enthalpy []float64 `json:"enthalpy"`
	Fitted   []float64 `json:"fitted"`
}

func (o InitialEnthalpyOptions) key() string {
	if o.Key == "" {
		return "enthalpy"
	}
	return o.Key
}

func (o InitialEnthalpyOptions) branch() adsorb.Branch {
	if o.Branch == adsorb.BranchAll {
		return adsorb.Adsorption
	}
	return o.Branch
}

// InitialEnthalpyPoint returns the first point of the differential
// enthalpy channel as the initial enthalpy of adsorption.
func InitialEnthalpyPoint(iso *adsorb.PointIsotherm, key string, b adsorb.Branch) (float64, error) {
	o := InitialEnthalpyOptions{Key: key, Branch: b}
	h, err := iso.OtherData(o.key(), adsorb.Query{Branch: o.branch()})
	if err != nil {
		return math.NaN(), err
	}
	if len(h) == 0 {
		return math.NaN(), errs.Parameter("the isotherm has no enthalpy data on the %s branch", o.branch())
	}
	return h[0], nil
}

// enthalpyCurve is ΔH(n) = const + preexp/(1+exp(exp·(n−exploc)))
// + prepowa·n^powa + prepowr·n^powr.
func enthalpyCurve(x []float64, n float64) float64 {
	return x[0] + x[1]/(1+math.Exp(x[2]*(n-x[3]))) + x[4]*math.Pow(n, x[5]) + x[6]*math.Pow(n, x[7])
}

// InitialEnthalpyComp fits the differential enthalpy of adsorption
// against fractional loading with a constant term, a logistic term for
// active sites and two power terms for adsorbate attraction and
// repulsion, and returns its value at zero loading. Points outside
// [0, 400] kJ/mol are dropped. If the fit departs from the first
// measured point by more than 50 kJ/mol the first point is used
// instead.
func InitialEnthalpyComp(iso *adsorb.PointIsotherm, o InitialEnthalpyOptions) (*InitialEnthalpyResult, error) {
	b := o.branch()
	loading, err := iso.Loading(adsorb.Query{Branch: b, Units: adsorb.Units{LoadingBasis: units.Molar, LoadingUnit: "mmol"}})
	if err != nil {
		return nil, err
	}
	enthalpy, err := iso.OtherData(o.key(), adsorb.Query{Branch: b})
	if err != nil {
		return nil, err
	}
	top := floats.Max(loading)
	var n, h []float64
	for i, v := range enthalpy {
		if v < 0 || v > 400 {
			continue
		}
		n = append(n, loading[i]/top)
		h = append(h, v)
	}
	if len(h) < 2 {
		return nil, errs.Calculation("the isotherm has fewer than 2 usable enthalpy points")
	}

	mean, std := gstat.PopMeanStdDev(h, nil)
	meta := iso.Meta()
	liq, err := meta.AdsorbateInfo().EnthalpyVaporisation(meta.Temperature)
	if err != nil {
		liq = 0
		Log.WithError(err).Warn("could not calculate the enthalpy of liquefaction, perhaps in the supercritical regime")
	}
	constMin := math.Max(liq, mean) - 2*std
	constAvg := math.Max(mean, constMin)
	bounds := map[string]modelling.Bound{
		"const":   {constMin, constAvg + 2*std},
		"preexp":  {0, 150},
		"exp":     {0, math.Inf(1)},
		"exploc":  {0, 0.5},
		"prepowa": {0, 50},
		"powa":    {1, 20},
		"prepowr": {-50, 0},
		"powr":    {1, 20},
	}
	for k, v := range o.Bounds {
		if _, ok := bounds[k]; !ok {
			return nil, errs.Parameter("%q is not an enthalpy term; terms are %v", k, EnthalpyTerms)
		}
		if !(v[0] <= v[1]) {
			return nil, errs.Parameter("invalid bounds %v for term %q", v, k)
		}
		bounds[k] = v
	}
	bs := make([]modelling.Bound, len(EnthalpyTerms))
	for i, k := range EnthalpyTerms {
		bs[i] = bounds[k]
	}

	clamp := func(v float64) float64 { return math.Min(math.Max(v, 0), 150) }
	first, last := clamp(h[0])-constAvg, clamp(h[len(h)-1])-constAvg
	guesses := [][]float64{
		{constAvg, 0, 0, 0, 0, 1, 0, 1},
		{0.5 * constAvg, first, 0, 0, math.Max(last, 0), 1, math.Min(last, 0), 1},
		{constAvg, 1.5 * first, 10, 0.1, 0.01, 3, 0, 1},
		{constAvg, 0, 0, 0.1, 0, 3, -0.01, 3},
	}
	// Relative residuals, with repulsion required to dominate at high
	// loading (powr ≥ powa).
	rss := func(x []float64) float64 {
		var s float64
		for i := range n {
			r := (h[i] - enthalpyCurve(x, n[i])) / h[i]
			s += r * r
		}
		if d := x[5] - x[7]; d > 0 {
			s += 1e3 * d * d
		}
		return s
	}
	var best []float64
	bestF := math.Inf(1)
	for i, g := range guesses {
		x, f, err := minimizeBounded(rss, g, bs)
		if err != nil {
			Log.WithFields(logrus.Fields{"guess": i, "error": err}).Debug("initial enthalpy fit failed")
			continue
		}
		if f < bestF {
			best, bestF = x, f
		}
	}
	if best == nil {
		return nil, errs.Calculation("minimisation of the enthalpy fit failed with all guesses")
	}

	r := &InitialEnthalpyResult{
		Params:   make(map[string]float64, len(EnthalpyTerms)),
		Loading:  n,
		Enthalpy: h,
		Fitted:   make([]float64, len(n)),
	}
	for i, k := range EnthalpyTerms {
		r.Params[k] = best[i]
	}
	for i := range n {
		r.Fitted[i] = enthalpyCurve(best, n[i])
	}
	r.InitialEnthalpy = enthalpyCurve(best, 0)
	if math.Abs(r.InitialEnthalpy-h[0]) > 50 {
		Log.WithFields(logrus.Fields{
			"fitted": r.InitialEnthalpy,
			"first":  h[0],
		}).Warn("probable overshoot of the exponential term; using the first point instead")
		if r.InitialEnthalpy, err = InitialEnthalpyPoint(iso, o.key(), b); err != nil {
			return nil, err
		}
	}
	if best[0] < liq {
		Log.WithFields(logrus.Fields{"const": best[0], "liquefaction": liq}).Warn("the base enthalpy of adsorption is lower than the enthalpy of liquefaction")
	}
	Log.WithField("initial_enthalpy", r.InitialEnthalpy).Debug("initial enthalpy")
	return r, nil
}

// minimizeBounded minimises f over box bounds with Nelder-Mead on
// transformed variables: a sine map for finite bounds and lo + z² for
// an open upper bound.
func minimizeBounded(f func([]float64) float64, guess []float64, bounds []modelling.Bound) ([]float64, float64, error) {
	param := func(i int, z float64) float64 {
		lo, hi := bounds[i][0], bounds[i][1]
		if math.IsInf(hi, 1) {
			return lo + z*z
		}
		return lo + (hi-lo)*(1+math.Sin(z))/2
	}
	z0 := make([]float64, len(guess))
	for i, g := range guess {
		lo, hi := bounds[i][0], bounds[i][1]
		g = math.Max(lo, math.Min(hi, g))
		switch {
		case math.IsInf(hi, 1):
			z0[i] = math.Sqrt(g - lo)
		case hi > lo:
			z0[i] = math.Asin(2*(g-lo)/(hi-lo) - 1)
		}
	}
	x := make([]float64, len(guess))
	problem := optimize.Problem{
		Func: func(z []float64) float64 {
			for i := range z {
				x[i] = param(i, z[i])
			}
			v := f(x)
			if math.IsNaN(v) {
				return math.Inf(1)
			}
			return v
		},
	}
	settings := &optimize.Settings{
		FuncEvaluations: 100000,
		Converger: &optimize.FunctionConverge{
			Relative:   1e-8,
			Iterations: 200,
		},
	}
	result, err := optimize.Minimize(problem, z0, settings, &optimize.NelderMead{})
	if err == nil && result.Status.Early() {
		err = result.Status.Err()
	}
	if err != nil {
		return nil, math.NaN(), err
	}
	o := make([]float64, len(guess))
	for i, z := range result.X {
		o[i] = param(i, z)
	}
	return o, result.F, nil
}
