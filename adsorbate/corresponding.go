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

package adsorbate

import (
	"math"

	"github.com/spatialmodel/adsorb/internal/errs"
)

// R is the molar gas constant [J/(mol K)].
const R = 8.314462618

// Corresponding is a Backend built on corresponding-states
// correlations. It needs only the critical constants, the acentric
// factor and a few reference values:
//
//   - saturation pressure from the Lee-Kesler correlation,
//   - saturated liquid density from the Rackett equation,
//   - saturated vapour density from the Peng-Robinson equation of state
//     evaluated at the saturation pressure,
//   - surface tension scaled from a reference value as ((1−Tr)/(1−Tr,ref))^(11/9),
//   - enthalpy of vaporisation from the Watson relation with exponent 0.38.
//
// All properties fail with ErrCalculation at or above the critical
// temperature.
type Corresponding struct{}

func props(a *Adsorbate, names ...string) ([]float64, error) {
	o := make([]float64, len(names))
	for i, n := range names {
		v, err := a.Prop(n)
		if err != nil {
			return nil, err
		}
		o[i] = v
	}
	return o, nil
}

func reducedTemperature(a *Adsorbate, T float64) (float64, error) {
	tc, err := a.Prop(TCritical)
	if err != nil {
		return math.NaN(), err
	}
	if T <= 0 {
		return math.NaN(), errs.Parameter("temperature must be positive, not %g K", T)
	}
	if T >= tc {
		return math.NaN(), errs.Calculation("%s is supercritical at %g K (Tc = %g K)", a.Name, T, tc)
	}
	return T / tc, nil
}

// SaturationPressure implements the Lee-Kesler vapour pressure
// correlation ln Pr = f0(Tr) + ω f1(Tr).
func (Corresponding) SaturationPressure(a *Adsorbate, T float64) (float64, error) {
	tr, err := reducedTemperature(a, T)
	if err != nil {
		return math.NaN(), err
	}
	p, err := props(a, PCritical, AcentricFactor)
	if err != nil {
		return math.NaN(), err
	}
	pc, omega := p[0], p[1]
	lnTr := math.Log(tr)
	tr6 := math.Pow(tr, 6)
	f0 := 5.92714 - 6.09648/tr - 1.28862*lnTr + 0.169347*tr6
	f1 := 15.2518 - 15.6875/tr - 13.4721*lnTr + 0.43577*tr6
	return pc * math.Exp(f0+omega*f1), nil
}

// LiquidDensity implements the Rackett equation
// V = (R Tc / Pc) Z_RA^(1 + (1 − Tr)^(2/7)).
func (Corresponding) LiquidDensity(a *Adsorbate, T float64) (float64, error) {
	tr, err := reducedTemperature(a, T)
	if err != nil {
		return math.NaN(), err
	}
	p, err := props(a, TCritical, PCritical, RackettZ, MolarMass)
	if err != nil {
		return math.NaN(), err
	}
	tc, pc, zra, m := p[0], p[1], p[2], p[3]
	v := R * tc / pc * math.Pow(zra, 1+math.Pow(1-tr, 2.0/7)) // m³/mol
	return m / (v * 1e6), nil
}

// GasDensity returns the saturated vapour density from the vapour root
// of the Peng-Robinson compressibility cubic at the Lee-Kesler
// saturation pressure.
func (c Corresponding) GasDensity(a *Adsorbate, T float64) (float64, error) {
	psat, err := c.SaturationPressure(a, T)
	if err != nil {
		return math.NaN(), err
	}
	p, err := props(a, TCritical, PCritical, AcentricFactor, MolarMass)
	if err != nil {
		return math.NaN(), err
	}
	tc, pc, omega, m := p[0], p[1], p[2], p[3]
	z, err := pengRobinsonVapourZ(T, psat, tc, pc, omega)
	if err != nil {
		return math.NaN(), err
	}
	return psat * m / (z * R * T) / 1e6, nil
}

// pengRobinsonVapourZ returns the largest root of
// Z³ − (1−B)Z² + (A−3B²−2B)Z − (AB−B²−B³) = 0.
func pengRobinsonVapourZ(T, P, tc, pc, omega float64) (float64, error) {
	kappa := 0.37464 + 1.54226*omega - 0.26992*omega*omega
	alpha := math.Pow(1+kappa*(1-math.Sqrt(T/tc)), 2)
	aa := 0.45724 * R * R * tc * tc / pc * alpha
	bb := 0.07780 * R * tc / pc
	A := aa * P / (R * R * T * T)
	B := bb * P / (R * T)
	c2 := -(1 - B)
	c1 := A - 3*B*B - 2*B
	c0 := -(A*B - B*B - B*B*B)
	f := func(z float64) float64 { return ((z+c2)*z+c1)*z + c0 }
	df := func(z float64) float64 { return (3*z+2*c2)*z + c1 }
	// Newton from above the largest root converges monotonically.
	z := 1.0 + B
	for i := 0; i < 100; i++ {
		d := df(z)
		if d == 0 {
			break
		}
		dz := f(z) / d
		z -= dz
		if math.Abs(dz) < 1e-12 {
			if z <= B {
				break
			}
			return z, nil
		}
	}
	return math.NaN(), errs.Calculation("Peng-Robinson vapour root did not converge at T = %g K, P = %g Pa", T, P)
}

func scaledReference(a *Adsorbate, T float64, ref, tref string, exponent float64) (float64, error) {
	tr, err := reducedTemperature(a, T)
	if err != nil {
		return math.NaN(), err
	}
	p, err := props(a, ref, tref, TCritical)
	if err != nil {
		return math.NaN(), err
	}
	trRef := p[1] / p[2]
	return p[0] * math.Pow((1-tr)/(1-trRef), exponent), nil
}

// SurfaceTension scales the reference surface tension with
// ((1−Tr)/(1−Tr,ref))^(11/9).
func (Corresponding) SurfaceTension(a *Adsorbate, T float64) (float64, error) {
	return scaledReference(a, T, SurfaceTensionRef, SurfaceTensionTRef, 11.0/9)
}

// EnthalpyVaporisation implements the Watson relation
// ΔH = ΔH_ref ((1−Tr)/(1−Tr,ref))^0.38.
func (Corresponding) EnthalpyVaporisation(a *Adsorbate, T float64) (float64, error) {
	return scaledReference(a, T, EnthalpyVaporisationRef, EnthalpyVaporisationTRef, 0.38)
}
