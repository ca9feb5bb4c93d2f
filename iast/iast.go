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

// Package iast predicts mixture adsorption from pure component
// isotherms using the ideal adsorbed solution theory.
//
// Every calculation reduces to one equation in the reduced spreading
// pressure Π* shared by all components at equilibrium. The pure
// component pressure P⁰ of each component is found by inverting its
// spreading pressure, Π_i(P⁰_i) = Π*.
package iast

import (
	"math"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/adsorb"
	"github.com/spatialmodel/adsorb/internal/errs"
	"github.com/spatialmodel/adsorb/internal/numeric"
	"github.com/spatialmodel/adsorb/units"
)

// Log receives extrapolation warnings.
var Log logrus.FieldLogger = logrus.StandardLogger()

const (
	maxIter     = 100
	bracketIter = 200
	fractionTol = 1e-6
)

// Options configure an IAST calculation.
type Options struct {
	// Units are the pressure and loading units of the inputs and
	// results. The default is absolute pressure in bar and loading in
	// mmol per native material unit. Relative pressure is not allowed.
	Units adsorb.Units

	// Quiet disables the warning logged when a component is
	// extrapolated outside the pressure range of its isotherm.
	Quiet bool
}

func (o Options) query() (adsorb.Query, error) {
	u := o.Units
	if u == (adsorb.Units{}) {
		u = adsorb.Units{
			PressureMode: units.Absolute,
			PressureUnit: "bar",
			LoadingBasis: units.Molar,
			LoadingUnit:  "mmol",
		}
	}
	if u.PressureMode == units.Relative || u.PressureMode == units.RelativePercent {
		return adsorb.Query{}, errs.Parameter("IAST needs absolute pressures, not %s", u.PressureMode)
	}
	return adsorb.Query{Branch: adsorb.Adsorption, Units: u}, nil
}

// Result is the equilibrium of a mixture.
type Result struct {
	// GasFraction and AdsorbedFraction are the mole fractions in the
	// gas and adsorbed phases.
	GasFraction      []float64 `json:"gas_mole_fraction"`
	AdsorbedFraction []float64 `json:"adsorbed_mole_fraction"`

	// Loading is the amount adsorbed of each component.
	Loading      []float64 `json:"loading"`
	TotalLoading float64   `json:"total_loading"`

	// Pressure0 is the pure component pressure of each component at
	// the mixture spreading pressure.
	Pressure0 []float64 `json:"pressure_0"`

	// SpreadingPressure is the reduced spreading pressure Π*.
	SpreadingPressure float64 `json:"reduced_spreading_pressure"`
}

// component is a pure component isotherm read in common units.
type component struct {
	iso        adsorb.Isotherm
	q          adsorb.Query
	pmin, pmax float64
}

func newComponents(isos []adsorb.Isotherm, o Options) ([]*component, error) {
	if len(isos) < 2 {
		return nil, errs.Parameter("pass at least two isotherms")
	}
	q, err := o.query()
	if err != nil {
		return nil, err
	}
	cs := make([]*component, len(isos))
	for i, iso := range isos {
		if !iso.HasBranch(adsorb.Adsorption) {
			return nil, errs.Parameter("component %d has no adsorption branch", i)
		}
		p, err := iso.Pressure(q)
		if err != nil {
			return nil, err
		}
		n, err := iso.Loading(q)
		if err != nil {
			return nil, err
		}
		c := &component{iso: iso, q: q, pmin: math.Max(0, minOf(p)), pmax: maxOf(p)}
		if !(c.pmax > 0) {
			c.pmax = 1
		}
		if math.IsInf(c.pmin, 1) {
			c.pmin = 0
		}
		// Point data is extended at its highest loading.
		c.q.Fill = &adsorb.Fill{Above: maxOf(n)}
		cs[i] = c
	}
	return cs, nil
}

func minOf(v []float64) float64 {
	m := math.Inf(1)
	for _, x := range v {
		m = math.Min(m, x)
	}
	return m
}

func maxOf(v []float64) float64 {
	m := math.Inf(-1)
	for _, x := range v {
		m = math.Max(m, x)
	}
	return m
}

func (c *component) loading(p float64) (float64, error) {
	n, err := c.iso.LoadingAt([]float64{p}, c.q)
	if err != nil {
		return math.NaN(), err
	}
	return n[0], nil
}

// pressure0 returns the pressure at which the reduced spreading
// pressure of the component is pi.
func (c *component) pressure0(pi float64) (float64, error) {
	if pi <= 0 {
		return 0, nil
	}
	var ferr error
	f := func(p float64) float64 {
		if p == 0 {
			return -pi
		}
		v, err := c.iso.SpreadingPressureAt(p, c.q)
		if err != nil {
			ferr = err
			return math.NaN()
		}
		return v - pi
	}
	hi, err := numeric.BracketUp(f, 0, c.pmax, bracketIter)
	if ferr != nil {
		return math.NaN(), ferr
	}
	if err != nil {
		return math.NaN(), errs.Calculation("the spreading pressure %g cannot be reached by %s", pi, c.iso.Meta().Adsorbate)
	}
	p, err := numeric.Root(f, 0, hi, 1e-12*hi, 200)
	if ferr != nil {
		return math.NaN(), ferr
	}
	if err != nil {
		return math.NaN(), errs.Calculation("inverting the spreading pressure of %s: %v", c.iso.Meta().Adsorbate, err)
	}
	return p, nil
}

// pressures0 returns P⁰ of every component at pi.
func pressures0(cs []*component, pi float64) ([]float64, error) {
	p0 := make([]float64, len(cs))
	for i, c := range cs {
		var err error
		if p0[i], err = c.pressure0(pi); err != nil {
			return nil, err
		}
	}
	return p0, nil
}

// henry returns the secant Henry constant of each component at p.
func henry(cs []*component, p float64) ([]float64, error) {
	k := make([]float64, len(cs))
	for i, c := range cs {
		n, err := c.loading(p)
		if err != nil {
			return nil, err
		}
		if !(n > 0) {
			return nil, errs.Calculation("component %s has no loading at %g", c.iso.Meta().Adsorbate, p)
		}
		k[i] = n / p
	}
	return k, nil
}

// solve finds the root of the monotone function f of Π with a
// safeguarded Newton iteration from seed. f returns its value and
// derivative; sign is the sign of f for Π below the root.
func solve(f func(pi float64) (v, d float64, err error), seed, sign float64) (float64, error) {
	lo, hi := 0.0, seed
	// Bracket the root from above.
	for i := 0; ; i++ {
		v, _, err := f(hi)
		if err != nil {
			return math.NaN(), err
		}
		if v*sign <= 0 {
			break
		}
		if i == bracketIter {
			return math.NaN(), errs.Calculation("could not bracket the mixture spreading pressure")
		}
		lo, hi = hi, 2*hi
	}
	x := seed
	for i := 0; i < maxIter; i++ {
		v, d, err := f(x)
		if err != nil {
			return math.NaN(), err
		}
		if v == 0 || hi-lo <= 1e-12*hi {
			return x, nil
		}
		if v*sign > 0 {
			lo = x
		} else {
			hi = x
		}
		next := x - v/d
		if d == 0 || math.IsNaN(next) || next <= lo || next >= hi {
			next = (lo + hi) / 2
		}
		if math.Abs(next-x) <= 1e-12*math.Abs(x) {
			return next, nil
		}
		x = next
	}
	return math.NaN(), errs.Calculation("the mixture spreading pressure did not converge in %d iterations", maxIter)
}

func checkFractions(f []float64, n int, what string) error {
	if len(f) != n {
		return errs.Parameter("there are %d %s mole fractions for %d components", len(f), what, n)
	}
	var sum float64
	for _, v := range f {
		if v < 0 || v > 1 || math.IsNaN(v) {
			return errs.Parameter("%s mole fraction %g is outside [0, 1]", what, v)
		}
		sum += v
	}
	if math.Abs(sum-1) > fractionTol {
		return errs.Parameter("%s mole fractions sum to %g, not 1", what, sum)
	}
	return nil
}

// finish computes the loadings at the solution and warns about
// extrapolated components.
func finish(cs []*component, r *Result, o Options) error {
	var inv float64
	for i, c := range cs {
		if r.AdsorbedFraction[i] == 0 {
			continue
		}
		n, err := c.loading(r.Pressure0[i])
		if err != nil {
			return err
		}
		inv += r.AdsorbedFraction[i] / n
		if p0 := r.Pressure0[i]; !o.Quiet && (p0 > c.pmax || p0 < c.pmin) {
			Log.WithFields(logrus.Fields{
				"component": i,
				"adsorbate": c.iso.Meta().Adsorbate,
				"p0":        p0,
				"pmin":      c.pmin,
				"pmax":      c.pmax,
			}).Warn("the pure component pressure is outside the pressure range of its isotherm; the isotherm was extrapolated")
		}
	}
	r.TotalLoading = 1 / inv
	r.Loading = make([]float64, len(cs))
	for i, x := range r.AdsorbedFraction {
		r.Loading[i] = x * r.TotalLoading
	}
	return nil
}

// IAST returns the equilibrium adsorbed phase of a gas mixture with
// mole fractions y at total pressure P.
func IAST(isos []adsorb.Isotherm, y []float64, P float64, o Options) (*Result, error) {
	cs, err := newComponents(isos, o)
	if err != nil {
		return nil, err
	}
	if err := checkFractions(y, len(cs), "gas"); err != nil {
		return nil, err
	}
	if !(P > 0) {
		return nil, errs.Parameter("the total pressure must be positive, have %g", P)
	}
	k, err := henry(cs, P)
	if err != nil {
		return nil, err
	}
	var seed float64
	for i := range cs {
		seed += y[i] * k[i] * P
	}
	// Σ y_i P / P⁰_i − 1 decreases with Π, and dP⁰/dΠ = P⁰/n(P⁰).
	f := func(pi float64) (float64, float64, error) {
		p0, err := pressures0(cs, pi)
		if err != nil {
			return math.NaN(), math.NaN(), err
		}
		v, d := -1.0, 0.0
		for i, c := range cs {
			if y[i] == 0 {
				continue
			}
			n, err := c.loading(p0[i])
			if err != nil {
				return math.NaN(), math.NaN(), err
			}
			v += y[i] * P / p0[i]
			d -= y[i] * P / (p0[i] * n)
		}
		return v, d, nil
	}
	pi, err := solve(f, seed, 1)
	if err != nil {
		return nil, err
	}
	r := &Result{GasFraction: append([]float64(nil), y...), SpreadingPressure: pi}
	if r.Pressure0, err = pressures0(cs, pi); err != nil {
		return nil, err
	}
	r.AdsorbedFraction = make([]float64, len(cs))
	for i := range cs {
		if y[i] > 0 {
			r.AdsorbedFraction[i] = y[i] * P / r.Pressure0[i]
		}
	}
	if err := finish(cs, r, o); err != nil {
		return nil, err
	}
	return r, nil
}

// Reverse returns the gas phase in equilibrium with an adsorbed phase
// of mole fractions x at total pressure P.
func Reverse(isos []adsorb.Isotherm, x []float64, P float64, o Options) (*Result, error) {
	cs, err := newComponents(isos, o)
	if err != nil {
		return nil, err
	}
	if err := checkFractions(x, len(cs), "adsorbed"); err != nil {
		return nil, err
	}
	if !(P > 0) {
		return nil, errs.Parameter("the total pressure must be positive, have %g", P)
	}
	k, err := henry(cs, P)
	if err != nil {
		return nil, err
	}
	var sum float64
	for i := range cs {
		sum += x[i] / k[i]
	}
	seed := P / sum
	// Σ x_i P⁰_i − P increases with Π.
	f := func(pi float64) (float64, float64, error) {
		p0, err := pressures0(cs, pi)
		if err != nil {
			return math.NaN(), math.NaN(), err
		}
		v, d := -P, 0.0
		for i, c := range cs {
			if x[i] == 0 {
				continue
			}
			n, err := c.loading(p0[i])
			if err != nil {
				return math.NaN(), math.NaN(), err
			}
			v += x[i] * p0[i]
			d += x[i] * p0[i] / n
		}
		return v, d, nil
	}
	pi, err := solve(f, seed, -1)
	if err != nil {
		return nil, err
	}
	r := &Result{AdsorbedFraction: append([]float64(nil), x...), SpreadingPressure: pi}
	if r.Pressure0, err = pressures0(cs, pi); err != nil {
		return nil, err
	}
	r.GasFraction = make([]float64, len(cs))
	for i := range cs {
		r.GasFraction[i] = x[i] * r.Pressure0[i] / P
	}
	if err := finish(cs, r, o); err != nil {
		return nil, err
	}
	return r, nil
}

// VLE is a binary vapour-adsorbed phase equilibrium diagram.
type VLE struct {
	// X and Y are the adsorbed and gas mole fractions of the first
	// component.
	X []float64 `json:"x"`
	Y []float64 `json:"y"`
}

// BinaryVLE sweeps the gas mole fraction of the first of two
// components at total pressure P. The end points (0, 0) and (1, 1)
// are included.
func BinaryVLE(isos []adsorb.Isotherm, P float64, npoints int, o Options) (*VLE, error) {
	if len(isos) != 2 {
		return nil, errs.Parameter("the binary equilibrium calculation takes two components, not %d", len(isos))
	}
	if npoints < 1 {
		npoints = 30
	}
	v := &VLE{X: []float64{0}, Y: []float64{0}}
	for _, y := range numeric.Linspace(0.01, 0.99, npoints) {
		r, err := IAST(isos, []float64{y, 1 - y}, P, o)
		if err != nil {
			return nil, err
		}
		v.X = append(v.X, r.Loading[0]/(r.Loading[0]+r.Loading[1]))
		v.Y = append(v.Y, y)
	}
	v.X = append(v.X, 1)
	v.Y = append(v.Y, 1)
	return v, nil
}

// SVP is the selectivity of a binary mixture over pressure.
type SVP struct {
	Pressure    []float64 `json:"pressure"`
	Selectivity []float64 `json:"selectivity"`
}

// BinarySVP calculates the selectivity of the first of two components
// over the second, (n₁/y₁)/(n₂/y₂), at each pressure.
func BinarySVP(isos []adsorb.Isotherm, y []float64, pressures []float64, o Options) (*SVP, error) {
	if len(isos) != 2 || len(y) != 2 {
		return nil, errs.Parameter("the selectivity calculation takes two components")
	}
	if y[0] == 0 || y[1] == 0 {
		return nil, errs.Parameter("the selectivity is undefined for a pure gas")
	}
	s := &SVP{Pressure: append([]float64(nil), pressures...)}
	for _, p := range pressures {
		r, err := IAST(isos, y, p, o)
		if err != nil {
			return nil, err
		}
		s.Selectivity = append(s.Selectivity, r.Loading[0]/y[0]/(r.Loading[1]/y[1]))
	}
	return s, nil
}
