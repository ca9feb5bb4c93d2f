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

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/adsorb"
	"github.com/spatialmodel/adsorb/adsorbate"
	"github.com/spatialmodel/adsorb/internal/errs"
	"github.com/spatialmodel/adsorb/internal/numeric"
	"github.com/spatialmodel/adsorb/modelling"
	"github.com/spatialmodel/adsorb/units"
	"gonum.org/v1/gonum/diff/fd"
)

// WhittakerModels are the Toth-type models the Whittaker method accepts.
var WhittakerModels = []string{"Langmuir", "DSLangmuir", "TSLangmuir", "Toth", "DSToth", "ChemiPhysisorption"}

// WhittakerOptions control a Whittaker enthalpy calculation.
type WhittakerOptions struct {
	// Model is fitted to point isotherms: one of WhittakerModels, or
	// "guess" to pick the best of them. The default is Toth.
	Model string

	// Branch is the branch fitted, Adsorption by default.
	Branch adsorb.Branch

	// Loading are the loadings, in the loading units of the model, at
	// which the enthalpy is calculated. The default is 100 loadings
	// across the fitted range.
	Loading []float64

	Fit modelling.FitOptions
}

// WhittakerResult holds isosteric enthalpies predicted from a single
// isotherm.
type WhittakerResult struct {
	Loading []float64 `json:"loading"`

	// Enthalpy is in kJ/mol, NaN where the pressure at a loading is
	// outside the range in which the vaporisation enthalpy is defined.
	Enthalpy []float64 `json:"enthalpy_sorption"`
	StdErr   []float64 `json:"std_errs"`

	ModelName string                `json:"model"`
	Model     *adsorb.ModelIsotherm `json:"-"`
}

var pascal = adsorb.Units{PressureMode: units.Absolute, PressureUnit: "Pa"}

func whittakerModel(name string) bool {
	for _, m := range WhittakerModels {
		if strings.EqualFold(m, name) {
			return true
		}
	}
	return false
}

// WhittakerEnthalpy estimates the isosteric enthalpy of adsorption from
// one isotherm as ΔH = ε + ΔHvap + Z·RT, where ε = RT·ln(Ψ·p0/p) is the
// Toth-corrected adsorption potential. Ψ = (p/n)(dp/dn) − 1 comes from
// a Toth-type model; point isotherms are fitted first. ΔHvap is taken
// at the equilibrium pressure, or at the triple point below it.
// Supercritical adsorbates use the Dubinin pseudo-saturation pressure.
func WhittakerEnthalpy(iso adsorb.Isotherm, o WhittakerOptions) (*WhittakerResult, error) {
	if o.Branch == adsorb.BranchAll {
		o.Branch = adsorb.Adsorption
	}
	var mi *adsorb.ModelIsotherm
	switch v := iso.(type) {
	case *adsorb.ModelIsotherm:
		if !whittakerModel(v.Model.Name()) {
			return nil, errs.Parameter("the Whittaker method needs a Toth-type model %v, not %s", WhittakerModels, v.Model.Name())
		}
		mi = v
	case *adsorb.PointIsotherm:
		c := v.Clone()
		if err := c.Convert(pascal); err != nil {
			return nil, err
		}
		var err error
		switch name := o.Model; {
		case strings.EqualFold(name, "guess"):
			mi, err = adsorb.GuessFromPoint(c, WhittakerModels, o.Branch, o.Fit)
		case name == "":
			mi, err = adsorb.ModelFromPoint(c, "Toth", o.Branch, o.Fit)
		case whittakerModel(name):
			mi, err = adsorb.ModelFromPoint(c, name, o.Branch, o.Fit)
		default:
			return nil, errs.Parameter("the Whittaker method needs a Toth-type model %v, not %s", WhittakerModels, name)
		}
		if err != nil {
			return nil, err
		}
	default:
		return nil, errs.Parameter("the isotherm must be a point or model isotherm, not %T", iso)
	}

	meta := mi.Meta()
	a := meta.AdsorbateInfo()
	T := meta.Temperature
	pc, err := a.Prop(adsorbate.PCritical)
	if err != nil {
		return nil, err
	}
	pt, err := a.Prop(adsorbate.PTriple)
	if err != nil {
		return nil, err
	}
	p0, err := whittakerSaturation(a, T)
	if err != nil {
		return nil, err
	}

	loading := o.Loading
	if loading == nil {
		r := mi.Model.LoadingRange
		loading = numeric.Linspace(r[0], r[1], 100)
	}
	r := &WhittakerResult{
		Loading:   loading,
		Enthalpy:  make([]float64, len(loading)),
		StdErr:    make([]float64, len(loading)),
		ModelName: mi.Model.Name(),
		Model:     mi,
	}
	rt := adsorbate.R * T
	uncertainty := 0.434 * math.Sqrt(float64(len(mi.Model.ParamNames()))*mi.Model.RMSE*mi.Model.RMSE)
	q := adsorb.Query{Branch: mi.Branch, Units: pascal}
	for i, n := range loading {
		h := math.NaN()
		pn, err := mi.Model.Pressure(n)
		pa, err2 := mi.PressureAt([]float64{n}, q)
		if err == nil && err2 == nil {
			p := pa[0]
			psi := tothCorrection(mi.Model, pn)
			eps := rt * math.Log(psi*p0/p)
			hvap := vaporisationEnthalpy(a, math.Max(p, pt), pc, p0)
			z := compressibility(a, T, p, pc, p0)
			h = (eps + hvap + z*rt) / 1000
		}
		r.Enthalpy[i] = h
		r.StdErr[i] = math.Abs(uncertainty * h)
	}
	Log.WithFields(logrus.Fields{"model": r.ModelName, "points": len(loading)}).Debug("Whittaker enthalpy")
	return r, nil
}

// whittakerSaturation returns the saturation pressure in Pa, or the
// Dubinin pseudo-saturation pressure above the critical temperature.
func whittakerSaturation(a *adsorbate.Adsorbate, T float64) (float64, error) {
	tc, err := a.Prop(adsorbate.TCritical)
	if err != nil {
		return math.NaN(), err
	}
	if T >= tc {
		return a.PseudoSaturationPressure(T, 2)
	}
	return a.SaturationPressure(T)
}

// tothCorrection returns Ψ = 1/(d ln n/d ln p) − 1 of the model at p.
// It is K·p for the Langmuir model and (K·p)^t for the Toth model.
func tothCorrection(m *modelling.Model, p float64) float64 {
	lnN := func(x float64) float64 {
		n, err := m.Loading(math.Exp(x))
		if err != nil || n <= 0 {
			return math.NaN()
		}
		return math.Log(n)
	}
	s := fd.Derivative(lnN, math.Log(p), &fd.Settings{Formula: fd.Central, Step: 1e-4})
	return 1/s - 1
}

// vaporisationEnthalpy returns the enthalpy of vaporisation in J/mol of
// the liquid in equilibrium with vapour at p [Pa], or NaN outside the
// liquid-vapour region.
func vaporisationEnthalpy(a *adsorbate.Adsorbate, p, pc, p0 float64) float64 {
	if math.IsNaN(p) || p <= 0 || p > pc || p > p0 {
		return math.NaN()
	}
	T, err := a.BoilingTemperature(p)
	if err != nil {
		return math.NaN()
	}
	h, err := a.EnthalpyVaporisation(T)
	if err != nil {
		return math.NaN()
	}
	return h * 1000
}

func compressibility(a *adsorbate.Adsorbate, T, p, pc, p0 float64) float64 {
	if math.IsNaN(p) || p <= 0 || p > pc || p > p0 {
		return math.NaN()
	}
	z, err := a.Compressibility(T, p)
	if err != nil {
		return math.NaN()
	}
	return z
}
