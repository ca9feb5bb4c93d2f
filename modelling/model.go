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

// Package modelling holds the parametric isotherm models, the numerical
// inverter and spreading-pressure integrator they share, and the
// least-squares fitter that turns isotherm data into a model.
package modelling

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/golang/groupcache/lru"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/adsorb/internal/errs"
	"github.com/spatialmodel/adsorb/internal/numeric"
	"gonum.org/v1/gonum/integrate/quad"
)

// Log receives fitting diagnostics.
var Log logrus.FieldLogger = logrus.StandardLogger()

// Calculates records which direction of a model is closed-form.
type Calculates string

// Model directions.
const (
	CalculatesLoading  Calculates = "loading"
	CalculatesPressure Calculates = "pressure"
)

// Bound is a closed parameter interval. Infinite ends are open.
type Bound [2]float64

var (
	pos  = Bound{0, math.Inf(1)}
	free = Bound{math.Inf(-1), math.Inf(1)}
)

// variant is one member of the model family. forward is the closed-form
// direction (loading(p) or pressure(n)); inverse, spreading and ceiling
// are optional.
type variant struct {
	name        string
	calculates  Calculates
	params      []string
	bounds      []Bound
	temperature bool // Reads the isotherm temperature.
	relative    bool // Works on relative pressure.

	forward func(x []float64, v, T float64) float64
	inverse func(x []float64, v, T float64) float64
	// spreading returns Π at pressure p, where n is the loading at p.
	spreading func(x []float64, p, n float64) float64
	// ceiling is the supremum of the loading of a pressure model.
	ceiling func(x []float64) float64
	guess   func(sat, k, T float64) []float64
}

func (v *variant) index(name string) int {
	for i, p := range v.params {
		if p == name {
			return i
		}
	}
	return -1
}

var (
	variantsMu sync.RWMutex
	variants   = make(map[string]*variant)
)

func register(v *variant) {
	variantsMu.Lock()
	variants[strings.ToLower(v.name)] = v
	variantsMu.Unlock()
}

func lookup(name string) (*variant, error) {
	variantsMu.RLock()
	v, ok := variants[strings.ToLower(name)]
	variantsMu.RUnlock()
	if !ok {
		return nil, errs.Parameter("model %q is not available; choose from %v", name, Names())
	}
	return v, nil
}

// UsesRelativePressure reports whether the named model is expressed in
// relative pressure.
func UsesRelativePressure(name string) (bool, error) {
	v, err := lookup(name)
	if err != nil {
		return false, err
	}
	return v.relative, nil
}

// Names returns the names of the available models.
func Names() []string {
	variantsMu.RLock()
	defer variantsMu.RUnlock()
	o := make([]string, 0, len(variants))
	for _, v := range variants {
		o = append(o, v.name)
	}
	sort.Strings(o)
	return o
}

// cacheSize is the number of spreading pressures remembered per model.
const cacheSize = 1024

// Model is a parametrised isotherm model.
type Model struct {
	v      *variant
	params []float64
	bounds []Bound

	// Temperature is the isotherm temperature in K. Models that depend
	// on RT read it.
	Temperature float64

	// PressureRange and LoadingRange are the data ranges the model was
	// fitted over.
	PressureRange [2]float64
	LoadingRange  [2]float64

	// RMSE is the root mean square error of the fit.
	RMSE float64

	mu    sync.Mutex
	cache *lru.Cache
}

// New returns a model with the given parameters. Every parameter of
// the model must be supplied.
func New(name string, params map[string]float64, temperature float64) (*Model, error) {
	v, err := lookup(name)
	if err != nil {
		return nil, err
	}
	m := newModel(v)
	m.Temperature = temperature
	for k := range params {
		if v.index(k) < 0 {
			return nil, errs.Parameter("model %s has no parameter %q; parameters are %v", v.name, k, v.params)
		}
	}
	for i, k := range v.params {
		val, ok := params[k]
		if !ok {
			return nil, errs.Missing("model %s: parameter %q is required", v.name, k)
		}
		m.params[i] = val
	}
	return m, nil
}

func newModel(v *variant) *Model {
	m := &Model{
		v:      v,
		params: make([]float64, len(v.params)),
		bounds: append([]Bound(nil), v.bounds...),
	}
	for i := range m.params {
		m.params[i] = math.NaN()
	}
	return m
}

// Name returns the model name.
func (m *Model) Name() string { return m.v.name }

// Calculates reports which direction of the model is closed-form.
func (m *Model) Calculates() Calculates { return m.v.calculates }

// RelativePressure reports whether the model expects pressures
// relative to the saturation pressure.
func (m *Model) RelativePressure() bool { return m.v.relative }

// NeedsTemperature reports whether the model depends on temperature.
func (m *Model) NeedsTemperature() bool { return m.v.temperature }

// ParamNames returns the parameter names in their canonical order.
func (m *Model) ParamNames() []string { return append([]string(nil), m.v.params...) }

// Params returns a copy of the parameter values.
func (m *Model) Params() map[string]float64 {
	o := make(map[string]float64, len(m.params))
	for i, k := range m.v.params {
		o[k] = m.params[i]
	}
	return o
}

// Param returns the value of a parameter, or NaN if the model does not
// have it.
func (m *Model) Param(name string) float64 {
	i := m.v.index(name)
	if i < 0 {
		return math.NaN()
	}
	return m.params[i]
}

// SetParam changes a parameter value.
func (m *Model) SetParam(name string, value float64) error {
	i := m.v.index(name)
	if i < 0 {
		return errs.Parameter("model %s has no parameter %q", m.v.name, name)
	}
	m.params[i] = value
	m.clearCache()
	return nil
}

// Bounds returns the parameter bounds used when fitting.
func (m *Model) Bounds() map[string]Bound {
	o := make(map[string]Bound, len(m.bounds))
	for i, k := range m.v.params {
		o[k] = m.bounds[i]
	}
	return o
}

// Clone returns an independent copy of m.
func (m *Model) Clone() *Model {
	o := &Model{
		v:             m.v,
		params:        append([]float64(nil), m.params...),
		bounds:        append([]Bound(nil), m.bounds...),
		Temperature:   m.Temperature,
		PressureRange: m.PressureRange,
		LoadingRange:  m.LoadingRange,
		RMSE:          m.RMSE,
	}
	return o
}

func (m *Model) String() string {
	s := make([]string, len(m.params))
	for i, k := range m.v.params {
		s[i] = fmt.Sprintf("%s=%.6g", k, m.params[i])
	}
	return fmt.Sprintf("%s(%s)", m.v.name, strings.Join(s, ", "))
}

func (m *Model) clearCache() {
	m.mu.Lock()
	if m.cache != nil {
		m.cache.Clear()
	}
	m.mu.Unlock()
}

func (m *Model) check() error {
	for i, p := range m.params {
		if math.IsNaN(p) {
			return errs.Missing("model %s: parameter %q is not set", m.v.name, m.v.params[i])
		}
	}
	if m.v.temperature && m.Temperature <= 0 {
		return errs.Missing("model %s requires the isotherm temperature", m.v.name)
	}
	return nil
}

func valid(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0 }

// Loading returns the loading at pressure p.
func (m *Model) Loading(p float64) (float64, error) {
	if err := m.check(); err != nil {
		return math.NaN(), err
	}
	if p < 0 || math.IsNaN(p) {
		return math.NaN(), errs.Parameter("model %s: invalid pressure %g", m.v.name, p)
	}
	if m.v.calculates == CalculatesLoading {
		return m.finite(m.v.forward(m.params, p, m.Temperature), "loading", p)
	}
	if m.v.inverse != nil {
		return m.finite(m.v.inverse(m.params, p, m.Temperature), "loading", p)
	}
	return m.invert(p)
}

// Pressure returns the pressure at loading n.
func (m *Model) Pressure(n float64) (float64, error) {
	if err := m.check(); err != nil {
		return math.NaN(), err
	}
	if n < 0 || math.IsNaN(n) {
		return math.NaN(), errs.Parameter("model %s: invalid loading %g", m.v.name, n)
	}
	if m.v.calculates == CalculatesPressure {
		return m.finite(m.v.forward(m.params, n, m.Temperature), "pressure", n)
	}
	if m.v.inverse != nil {
		return m.finite(m.v.inverse(m.params, n, m.Temperature), "pressure", n)
	}
	return m.invert(n)
}

func (m *Model) finite(v float64, what string, at float64) (float64, error) {
	if !valid(v) {
		return math.NaN(), errs.Calculation("model %s: %s at %g is not defined", m.v.name, what, at)
	}
	return v, nil
}

const (
	rootIter    = 200
	bracketIter = 200
)

// invert solves forward(x) = target for x ≥ 0.
func (m *Model) invert(target float64) (float64, error) {
	if target == 0 {
		return 0, nil
	}
	f := func(x float64) float64 { return m.v.forward(m.params, x, m.Temperature) - target }
	var hi float64
	if m.v.ceiling != nil {
		hi = m.v.ceiling(m.params) * (1 - 1e-12)
		if !(f(hi) >= 0) {
			return math.NaN(), errs.Calculation("model %s: cannot invert at %g", m.v.name, target)
		}
	} else {
		start := m.PressureRange[1]
		if m.v.calculates == CalculatesPressure {
			start = m.LoadingRange[1]
		}
		if !(start > 0) {
			start = 1
		}
		var err error
		hi, err = numeric.BracketUp(f, 0, start, bracketIter)
		if err != nil {
			return math.NaN(), errs.Calculation("model %s: no solution for %g in the model range", m.v.name, target)
		}
	}
	x, err := numeric.Root(f, 0, hi, 1e-15*hi, rootIter)
	if err != nil {
		return math.NaN(), errs.Calculation("model %s: root finding for %g failed: %v", m.v.name, target, err)
	}
	return x, nil
}

// SpreadingPressure returns the reduced spreading pressure Π at p,
// the integral of n(p)/p from 0 to p.
func (m *Model) SpreadingPressure(p float64) (float64, error) {
	if err := m.check(); err != nil {
		return math.NaN(), err
	}
	if p < 0 || math.IsNaN(p) {
		return math.NaN(), errs.Parameter("model %s: invalid pressure %g", m.v.name, p)
	}
	if p == 0 {
		return 0, nil
	}
	m.mu.Lock()
	if m.cache == nil {
		m.cache = lru.New(cacheSize)
	}
	if v, ok := m.cache.Get(p); ok {
		m.mu.Unlock()
		return v.(float64), nil
	}
	m.mu.Unlock()

	n, err := m.Loading(p)
	if err != nil {
		return math.NaN(), err
	}
	var pi float64
	if m.v.spreading != nil {
		pi = m.v.spreading(m.params, p, n)
	} else {
		pi, err = m.numericalSpreading(p, n)
		if err != nil {
			return math.NaN(), err
		}
	}
	if math.IsNaN(pi) || math.IsInf(pi, 0) {
		return math.NaN(), errs.Calculation("model %s: spreading pressure at %g is not defined", m.v.name, p)
	}
	m.mu.Lock()
	m.cache.Add(p, pi)
	m.mu.Unlock()
	return pi, nil
}

const (
	quadPoints   = 32
	quadSegments = 64
	quadTol      = 1e-12
)

// numericalSpreading integrates the spreading pressure. Loading models
// are integrated over s = ln(p/p') on doubling segments. Pressure models
// use Π = n(1 + g(n)) - ∫₀ⁿ g, with g = ln(p(n)/n).
func (m *Model) numericalSpreading(p, n float64) (float64, error) {
	if m.v.calculates == CalculatesLoading {
		f := func(s float64) float64 { return m.v.forward(m.params, p*math.Exp(-s), m.Temperature) }
		var total float64
		a, b := 0.0, 1.0
		for i := 0; i < quadSegments; i++ {
			part := quad.Fixed(f, a, b, quadPoints, nil, 0)
			if math.IsNaN(part) {
				return math.NaN(), errs.Calculation("model %s: spreading pressure integral failed at %g", m.v.name, p)
			}
			total += part
			if math.Abs(part) <= quadTol*math.Abs(total) {
				return total, nil
			}
			a, b = b, 2*b
		}
		return math.NaN(), errs.Calculation("model %s: spreading pressure integral did not converge at %g", m.v.name, p)
	}
	if n == 0 {
		return 0, nil
	}
	g := func(t float64) float64 { return math.Log(m.v.forward(m.params, t, m.Temperature) / t) }
	const panels = 8
	var integral float64
	for i := 0; i < panels; i++ {
		a := n * float64(i) / panels
		b := n * float64(i+1) / panels
		integral += quad.Fixed(g, a, b, quadPoints, nil, 0)
	}
	return n*(1+math.Log(p/n)) - integral, nil
}
