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

package psd

import (
	"math"
	"sort"
	"strings"

	"github.com/spatialmodel/adsorb"
	"github.com/spatialmodel/adsorb/adsorbate"
	"github.com/spatialmodel/adsorb/characterisation"
	"github.com/spatialmodel/adsorb/internal/errs"
	"github.com/spatialmodel/adsorb/internal/numeric"
	"github.com/spatialmodel/adsorb/units"
)

const (
	electronMass = 9.1093837015e-31 // kg
	speedOfLight = 299792458.0      // m/s
)

// Surface holds the properties of a gas molecule or an adsorbent
// surface atom used by the Horvath-Kawazoe family of models.
type Surface struct {
	MolecularDiameter      float64 `json:"molecular_diameter"`      // nm
	Polarizability         float64 `json:"polarizability"`          // nm³
	MagneticSusceptibility float64 `json:"magnetic_susceptibility"` // nm³
	SurfaceDensity         float64 `json:"surface_density"`         // molecules/m²
}

func (s Surface) check(what string) error {
	if !(s.MolecularDiameter > 0 && s.Polarizability > 0 && s.MagneticSusceptibility > 0 && s.SurfaceDensity > 0) {
		return errs.Parameter("the %s properties must all be positive: %+v", what, s)
	}
	return nil
}

// Adsorbents are the built-in adsorbent surfaces.
var Adsorbents = map[string]Surface{
	"Carbon(HK)":   {0.34, 1.02e-3, 1.35e-7, 3.845e19},
	"AlSiOxideIon": {0.276, 2.5e-3, 1.3e-8, 1.315e19},
	"AlPhOxideIon": {0.26, 2.5e-3, 1.3e-8, 1.0e19},
}

// Adsorbent returns the named built-in adsorbent surface.
func Adsorbent(name string) (Surface, error) {
	for k, s := range Adsorbents {
		if strings.EqualFold(k, name) {
			return s, nil
		}
	}
	names := make([]string, 0, len(Adsorbents))
	for k := range Adsorbents {
		names = append(names, k)
	}
	sort.Strings(names)
	return Surface{}, errs.Parameter("adsorbent model %q is not an option; viable models are %v", name, names)
}

// SurfaceOf reads the surface properties of an adsorbate from its
// property dictionary.
func SurfaceOf(a *adsorbate.Adsorbate) (Surface, error) {
	var s Surface
	for _, f := range []struct {
		name string
		v    *float64
	}{
		{adsorbate.MolecularDiameter, &s.MolecularDiameter},
		{adsorbate.Polarizability, &s.Polarizability},
		{adsorbate.MagneticSusceptibility, &s.MagneticSusceptibility},
		{adsorbate.SurfaceDensity, &s.SurfaceDensity},
	} {
		v, err := a.Prop(f.name)
		if err != nil {
			return s, errs.Wrap(errs.ErrParameter, err, "adsorbate %s cannot be used for a micropore distribution", a)
		}
		*f.v = v
	}
	return s, nil
}

// MicroOptions configure a micropore size distribution.
type MicroOptions struct {
	// Model is the distribution model. Only "HK" is available.
	Model string

	// Geometry selects the Horvath-Kawazoe slit model, the Saito-Foley
	// cylinder model or the Cheng-Yang sphere model. The default is slit.
	Geometry characterisation.Geometry

	// Branch defaults to adsorption.
	Branch adsorb.Branch

	// Adsorbent names a built-in adsorbent surface. The default is
	// Carbon(HK). Surface, if set, is used instead.
	Adsorbent string
	Surface   *Surface

	// Gas overrides the surface properties of the adsorbate.
	Gas *Surface

	// PLimits select a relative pressure range. The default upper
	// limit is 0.2.
	PLimits *adsorb.Range
}

// Microporous calculates the micropore size distribution of an
// isotherm from the pressures at which pores of each width fill.
func Microporous(iso adsorb.Isotherm, o MicroOptions) (*Result, error) {
	if o.Model != "" && !strings.EqualFold(o.Model, "HK") {
		return nil, errs.Parameter("model %q is not an option for a micropore distribution; viable models are [HK]", o.Model)
	}
	if o.Geometry == "" {
		o.Geometry = characterisation.Slit
	}
	if _, err := characterisation.ParseGeometry(string(o.Geometry)); err != nil {
		return nil, err
	}
	b := o.Branch
	if b == adsorb.BranchAll {
		b = adsorb.Adsorption
	}
	solid := o.Surface
	if solid == nil {
		name := o.Adsorbent
		if name == "" {
			name = "Carbon(HK)"
		}
		s, err := Adsorbent(name)
		if err != nil {
			return nil, err
		}
		solid = &s
	}
	m := iso.Meta()
	a := m.AdsorbateInfo()
	gas := o.Gas
	if gas == nil {
		s, err := SurfaceOf(a)
		if err != nil {
			return nil, err
		}
		gas = &s
	}
	molarMass, err := a.MolarMass()
	if err != nil {
		return nil, err
	}
	density, err := a.LiquidDensity(m.Temperature)
	if err != nil {
		return nil, err
	}
	pressure, loading, err := branchData(iso, b, adsorb.Units{
		PressureMode: units.Relative,
		LoadingBasis: units.Molar,
		LoadingUnit:  "mmol",
	})
	if err != nil {
		return nil, err
	}
	limits := adsorb.Range{Max: 0.2}
	if o.PLimits != nil {
		limits = *o.PLimits
	}
	lo, hi, err := inclusive(pressure, limits)
	if err != nil {
		return nil, err
	}
	// No pore fills at zero pressure.
	for lo <= hi && pressure[lo] <= 0 {
		lo++
	}
	if hi-lo < 2 {
		return nil, errs.Calculation("the isotherm does not have enough points (at least 3) above zero pressure in the selected region")
	}
	r, err := MicroporousRaw(pressure[lo:hi+1], loading[lo:hi+1], m.Temperature, molarMass, density, o.Geometry, *gas, *solid)
	if err != nil {
		return nil, err
	}
	r.Limits = [2]int{lo, hi}
	return r, nil
}

// MicroporousRaw calculates a micropore size distribution from
// ascending relative pressures, loadings in mmol, the temperature in
// K and the molar mass and liquid density of the adsorbate.
func MicroporousRaw(pressure, loading []float64, temperature, molarMass, liquidDensity float64, g characterisation.Geometry, gas, solid Surface) (*Result, error) {
	if err := checkLengths(pressure, loading); err != nil {
		return nil, err
	}
	k, err := newHK(g, temperature, gas, solid)
	if err != nil {
		return nil, err
	}
	widths := make([]float64, len(pressure))
	for i, p := range pressure {
		if widths[i], err = k.width(p); err != nil {
			return nil, err
		}
	}
	volume := make([]float64, len(loading))
	for i, n := range loading {
		volume[i] = n * molarMass / liquidDensity / 1000
	}
	r := &Result{
		Widths:           make([]float64, len(widths)-1),
		Distribution:     make([]float64, len(widths)-1),
		VolumeCumulative: volume[1:],
	}
	for i := range r.Widths {
		r.Widths[i] = (widths[i] + widths[i+1]) / 2
		r.Distribution[i] = (volume[i+1] - volume[i]) / (widths[i+1] - widths[i])
	}
	return r, nil
}

// hk maps filling pressures to pore sizes. lnp is the logarithm of
// the filling pressure of a pore of size L in [lo, hi]; size converts
// L to a pore width.
type hk struct {
	lnp    func(L float64) float64
	lo, hi float64
	size   func(L float64) float64

	// well is the size with the lowest filling pressure. Sizes above it
	// fill at increasing pressure.
	well float64
}

// newHK builds the filling pressure function of a pore geometry.
func newHK(g characterisation.Geometry, T float64, gas, solid Surface) (*hk, error) {
	if err := gas.check("adsorbate"); err != nil {
		return nil, err
	}
	if err := solid.check("adsorbent"); err != nil {
		return nil, err
	}
	if !(T > 0) {
		return nil, errs.Parameter("the temperature must be positive, have %g", T)
	}
	dg, dm := gas.MolecularDiameter, solid.MolecularDiameter
	pg, pm := gas.Polarizability*1e-27, solid.Polarizability*1e-27
	mg, mm := gas.MagneticSusceptibility*1e-27, solid.MagneticSusceptibility*1e-27
	ng, nm := gas.SurfaceDensity, solid.SurfaceDensity

	d := (dg + dm) / 2
	mc2 := electronMass * speedOfLight * speedOfLight
	aMat := 6 * mc2 * pg * pm / (pg/mg + pm/mm)
	aGas := 1.5 * mc2 * pg * mg
	rt := adsorbate.R * T

	k := &hk{lo: d}
	switch g {
	case characterisation.Slit:
		// Horvath-Kawazoe.
		sigma := math.Pow(0.4, 1.0/6) * d
		s4 := math.Pow(sigma, 4) / 3
		s10 := math.Pow(sigma, 10) / 9
		coeff := characterisation.Avogadro / rt * (ng*aGas + nm*aMat) / math.Pow(sigma*1e-9, 4)
		term := s10/math.Pow(d, 9) - s4/math.Pow(d, 3)
		k.hi = 50
		k.lnp = func(L float64) float64 {
			if L == 2*d {
				L += 1e-9
			}
			return coeff / (L - 2*d) * (s4/math.Pow(L-d, 3) - s10/math.Pow(L-d, 9) + term)
		}
		k.size = func(L float64) float64 { return L - dm }
	case characterisation.Cylinder:
		// Saito-Foley, L is the pore radius.
		coeff := 0.75 * math.Pi * characterisation.Avogadro / rt * (ng*aGas + nm*aMat) / math.Pow(d*1e-9, 4)
		const n = 21.0 / 32
		k.hi = 100
		k.lnp = func(r float64) float64 {
			dr := d / r
			dr4, dr10 := math.Pow(dr, 4), math.Pow(dr, 10)
			sum := n*dr10 - dr4
			ak, bk := 1.0, 1.0
			for i := 1; i < int(r*30); i++ {
				fi := float64(i)
				ak *= math.Pow((-4.5-fi)/fi, 2)
				bk *= math.Pow((-1.5-fi)/fi, 2)
				sum += 1 / (2*fi + 1) * math.Pow(1-dr, 2*fi) * (n*ak*dr10 - bk*dr4)
			}
			return coeff * sum
		}
		k.size = func(r float64) float64 { return 2*r - dm }
	case characterisation.Sphere:
		// Cheng-Yang.
		p12 := aMat / (4 * math.Pow(d*1e-9, 6))
		p22 := aGas / (4 * math.Pow(dg*1e-9, 6))
		c1 := characterisation.Avogadro / rt
		k.hi = 50
		k.lnp = func(L float64) float64 {
			lmd := L - d
			if lmd <= 0 {
				return math.Inf(-1)
			}
			dl := d / L
			n1 := 4 * math.Pi * math.Pow(L*1e-9, 2) * nm
			n2 := 4 * math.Pi * math.Pow(lmd*1e-9, 2) * ng
			t := func(x float64) float64 {
				s := math.Pow(-1, x) * lmd / L
				return 1/math.Pow(1+s, x) - 1/math.Pow(1-s, x)
			}
			c2 := 6 * (n1*p12 + n2*p22) * math.Pow(L, 3) / math.Pow(lmd, 3)
			coef := -math.Pow(dl, 6)*(t(3)/12-t(2)/8) + math.Pow(dl, 12)*(t(9)/90-t(8)/80)
			return c1 * c2 * coef
		}
		k.size = func(L float64) float64 { return L - dm }
	default:
		return nil, errs.Parameter("pore geometry %q is not an option for a micropore distribution", g)
	}
	well, err := numeric.MinimizeBounded(k.lnp, k.lo, k.hi, 1e-6, 500)
	if err != nil {
		return nil, errs.Calculation("could not locate the potential minimum of the pore: %v", err)
	}
	k.well = well
	return k, nil
}

// width returns the width of the pore that fills at relative pressure
// p. Pressures below the filling pressure of the narrowest pore map to
// that pore.
func (k *hk) width(p float64) (float64, error) {
	if !(p > 0) {
		return math.NaN(), errs.Calculation("cannot find the pore width for relative pressure %g", p)
	}
	target := math.Log(p)
	f := func(L float64) float64 { return k.lnp(L) - target }
	if f(k.well) >= 0 {
		Log.WithField("pressure", p).Debug("pressure below the filling pressure of the narrowest pore")
		return k.size(k.well), nil
	}
	if f(k.hi) <= 0 {
		return math.NaN(), errs.Calculation("relative pressure %g is above the filling pressure of a %g nm pore", p, k.size(k.hi))
	}
	lo, hi := k.well, k.hi
	// Narrow the bracket until the lower end is finite.
	for i := 0; i < 100 && math.IsInf(f(lo), -1); i++ {
		mid := (lo + hi) / 2
		if f(mid) < 0 {
			lo = mid
		} else {
			hi = mid
		}
	}
	L, err := numeric.Root(f, lo, hi, 1e-9, 200)
	if err != nil {
		return math.NaN(), errs.Calculation("cannot find the pore width for relative pressure %g: %v", p, err)
	}
	return k.size(L), nil
}
