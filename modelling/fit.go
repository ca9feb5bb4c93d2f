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

package modelling

import (
	"math"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/adsorb/internal/errs"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

// DefaultGuessModels are the simple, well-conditioned models tried by
// Guess when no list is given.
var DefaultGuessModels = []string{
	"Henry", "Langmuir", "DSLangmuir", "DR", "Freundlich",
	"Quadratic", "BET", "TemkinApprox", "Toth", "JensenSeaton",
}

// FitOptions control a model fit.
type FitOptions struct {
	// Guess overrides the default initial parameter guesses.
	Guess map[string]float64

	// Bounds overrides the default parameter bounds.
	Bounds map[string]Bound

	// Temperature is the isotherm temperature in K.
	Temperature float64

	// AddPoint lets the virial fit proceed with fewer than three points
	// below half the maximum loading by adding a low loading point.
	AddPoint bool

	// MaxEvaluations limits the number of objective evaluations of each
	// minimisation. The default is 20000.
	MaxEvaluations int
}

// initialGuess returns the saturation loading, 1.1 times the maximum
// loading, and a Langmuir constant from the first non-zero point.
func initialGuess(pressure, loading []float64) (sat, k float64, err error) {
	var p0, n0 float64
	found := false
	for i, p := range pressure {
		n := loading[i]
		if p <= 0 || n <= 0 {
			continue
		}
		if !found {
			p0, n0 = p, n
			found = true
		}
		sat = math.Max(sat, 1.1*n)
	}
	if !found {
		return 0, 0, errs.Parameter("no points with positive pressure and loading")
	}
	return sat, n0 / p0 / (sat - n0), nil
}

// InitialGuess returns the default starting parameters of a model for
// the given data, clipped to the model bounds.
func InitialGuess(name string, pressure, loading []float64, temperature float64) (map[string]float64, error) {
	v, err := lookup(name)
	if err != nil {
		return nil, err
	}
	m := newModel(v)
	m.Temperature = temperature
	if err := m.guess(pressure, loading); err != nil {
		return nil, err
	}
	return m.Params(), nil
}

func (m *Model) guess(pressure, loading []float64) error {
	sat, k, err := initialGuess(pressure, loading)
	if err != nil {
		return err
	}
	g := m.v.guess(sat, k, m.Temperature)
	for i := range g {
		m.params[i] = clip(g[i], m.bounds[i])
	}
	return nil
}

func clip(v float64, b Bound) float64 { return math.Max(b[0], math.Min(b[1], v)) }

func checkData(pressure, loading []float64) error {
	if len(pressure) != len(loading) {
		return errs.Parameter("pressure and loading lengths differ: %d != %d", len(pressure), len(loading))
	}
	if len(pressure) == 0 {
		return errs.Parameter("no data to fit")
	}
	for i := range pressure {
		if !valid(pressure[i]) || !valid(loading[i]) {
			return errs.Parameter("invalid point (%g, %g)", pressure[i], loading[i])
		}
	}
	return nil
}

// Fit fits the named model to the data and returns it.
func Fit(name string, pressure, loading []float64, o FitOptions) (*Model, error) {
	v, err := lookup(name)
	if err != nil {
		return nil, err
	}
	if err := checkData(pressure, loading); err != nil {
		return nil, err
	}
	m := newModel(v)
	m.Temperature = o.Temperature
	if v.temperature && m.Temperature <= 0 {
		return nil, errs.Missing("model %s requires the isotherm temperature", v.name)
	}
	for k, b := range o.Bounds {
		i := v.index(k)
		if i < 0 {
			return nil, errs.Parameter("model %s has no parameter %q; parameters are %v", v.name, k, v.params)
		}
		if !(b[0] <= b[1]) {
			return nil, errs.Parameter("invalid bounds %v for parameter %q", b, k)
		}
		m.bounds[i] = b
	}
	if err := m.guess(pressure, loading); err != nil {
		return nil, err
	}
	for k, g := range o.Guess {
		i := v.index(k)
		if i < 0 {
			return nil, errs.Parameter("model %s has no parameter %q; parameters are %v", v.name, k, v.params)
		}
		m.params[i] = clip(g, m.bounds[i])
	}

	if v.name == "Virial" {
		err = m.fitVirial(pressure, loading, o.AddPoint)
	} else {
		err = m.fitNelderMead(pressure, loading, o.MaxEvaluations)
	}
	if err != nil {
		return nil, err
	}
	m.PressureRange = [2]float64{floats.Min(pressure), floats.Max(pressure)}
	m.LoadingRange = [2]float64{floats.Min(loading), floats.Max(loading)}
	Log.WithFields(logrus.Fields{"model": v.name, "rmse": m.RMSE}).Debug("model fitted")
	return m, nil
}

// transform maps an unconstrained optimisation variable onto a bounded
// parameter. Semi-infinite bounds use lo + s·z², finite bounds use a
// sine map and unbounded parameters an affine map.
type transform struct {
	lo, hi, scale, offset float64
}

func newTransform(b Bound, guess float64) (transform, float64) {
	t := transform{lo: b[0], hi: b[1]}
	loInf, hiInf := math.IsInf(b[0], -1), math.IsInf(b[1], 1)
	switch {
	case loInf && hiInf:
		t.offset = guess
		t.scale = math.Abs(guess)
		if t.scale == 0 {
			t.scale = 1
		}
		return t, 0
	case hiInf:
		t.scale = guess - b[0]
		if t.scale <= 0 {
			t.scale = 1
			return t, 0
		}
		return t, 1
	case loInf:
		t.scale = b[1] - guess
		if t.scale <= 0 {
			t.scale = 1
			return t, 0
		}
		return t, 1
	default:
		if b[1] == b[0] {
			return t, 0
		}
		r := 2*(guess-b[0])/(b[1]-b[0]) - 1
		return t, math.Asin(math.Max(-1, math.Min(1, r)))
	}
}

func (t transform) param(z float64) float64 {
	loInf, hiInf := math.IsInf(t.lo, -1), math.IsInf(t.hi, 1)
	switch {
	case loInf && hiInf:
		return t.offset + t.scale*z
	case hiInf:
		return t.lo + t.scale*z*z
	case loInf:
		return t.hi - t.scale*z*z
	default:
		return t.lo + (t.hi-t.lo)*(1+math.Sin(z))/2
	}
}

// residuals returns the fit residuals for params x: loading residuals
// for loading models and pressure residuals for pressure models.
func (m *Model) residuals(x, pressure, loading, out []float64) {
	for i := range pressure {
		if m.v.calculates == CalculatesLoading {
			out[i] = m.v.forward(x, pressure[i], m.Temperature) - loading[i]
		} else {
			out[i] = m.v.forward(x, loading[i], m.Temperature) - pressure[i]
		}
	}
}

func (m *Model) fitNelderMead(pressure, loading []float64, maxEval int) error {
	if maxEval <= 0 {
		maxEval = 20000
	}
	res := make([]float64, len(pressure))
	x := make([]float64, len(m.params))
	guess := append([]float64(nil), m.params...)

	var rss float64
	for restart := 0; restart < 2; restart++ {
		ts := make([]transform, len(m.params))
		z0 := make([]float64, len(m.params))
		for i := range m.params {
			ts[i], z0[i] = newTransform(m.bounds[i], m.params[i])
		}
		problem := optimize.Problem{
			Func: func(z []float64) float64 {
				for i := range z {
					x[i] = ts[i].param(z[i])
				}
				m.residuals(x, pressure, loading, res)
				s := floats.Dot(res, res)
				if math.IsNaN(s) {
					return math.Inf(1)
				}
				return s
			},
		}
		settings := &optimize.Settings{
			FuncEvaluations: maxEval,
			Converger: &optimize.FunctionConverge{
				Absolute:   1e-20,
				Relative:   1e-12,
				Iterations: 200,
			},
		}
		result, err := optimize.Minimize(problem, z0, settings, &optimize.NelderMead{})
		if err == nil && result.Status.Early() {
			err = result.Status.Err()
		}
		if err == nil && (math.IsInf(result.F, 0) || math.IsNaN(result.F)) {
			err = errs.ErrCalculation
		}
		if err != nil {
			return errs.Calculation("fitting model %s failed (%v); try a different starting point, default guess was %v",
				m.v.name, err, m.describe(guess))
		}
		for i := range result.X {
			m.params[i] = ts[i].param(result.X[i])
		}
		rss = result.F
	}
	m.RMSE = math.Sqrt(rss / float64(len(pressure)))
	m.clearCache()
	return nil
}

func (m *Model) describe(x []float64) map[string]float64 {
	o := make(map[string]float64, len(x))
	for i, k := range m.v.params {
		o[k] = x[i]
	}
	return o
}

// fitVirial fits ln(p/n) = C·n³ + B·n² + A·n - ln K, which is linear in
// (ln K, A, B, C).
func (m *Model) fitVirial(pressure, loading []float64, addPoint bool) error {
	var n, y []float64
	for i, p := range pressure {
		if p > 0 && loading[i] > 0 {
			n = append(n, loading[i])
			y = append(y, math.Log(p/loading[i]))
		}
	}
	if len(n) < len(pressure) {
		Log.WithField("model", m.v.name).Warn("removed points which are equal to 0")
	}
	if len(n) == 0 {
		return errs.Parameter("no points with positive pressure and loading")
	}
	top := floats.Max(n)
	low := 0
	for _, v := range n {
		if v/top < 0.5 {
			low++
		}
	}
	if low < 3 {
		if !addPoint {
			return errs.Calculation("the isotherm has fewer than 3 points below 0.5 fractional loading, so the virial fit " +
				"would be unstable at low loading; set AddPoint to add a low loading point")
		}
		n = append([]float64{0.1 * floats.Min(n)}, n...)
		y = append([]float64{y[0]}, y...)
	}

	a := mat.NewDense(len(n), 4, nil)
	for i, v := range n {
		a.Set(i, 0, 1)
		a.Set(i, 1, v)
		a.Set(i, 2, v*v)
		a.Set(i, 3, v*v*v)
	}
	var c mat.VecDense
	if err := c.SolveVec(a, mat.NewVecDense(len(y), y)); err != nil {
		return errs.Calculation("fitting model %s failed: %v", m.v.name, err)
	}
	m.params[0] = math.Exp(-c.AtVec(0))
	m.params[1], m.params[2], m.params[3] = c.AtVec(1), c.AtVec(2), c.AtVec(3)

	m.PressureRange = [2]float64{floats.Min(pressure), floats.Max(pressure)}
	m.LoadingRange = [2]float64{floats.Min(loading), floats.Max(loading)}
	m.clearCache()

	// The RMSE is on loading, as for the other models, so that Guess
	// can compare them.
	var rss float64
	for i, p := range pressure {
		n, err := m.Loading(p)
		if err != nil {
			return errs.Calculation("fitting model %s failed: %v", m.v.name, err)
		}
		r := n - loading[i]
		rss += r * r
	}
	m.RMSE = math.Sqrt(rss / float64(len(pressure)))
	return nil
}

// Guess fits each of the named models, or DefaultGuessModels if names
// is empty, and returns the one with the lowest RMSE. User guesses and
// bounds in o are ignored.
func Guess(pressure, loading []float64, names []string, o FitOptions) (*Model, error) {
	if len(names) == 0 {
		names = DefaultGuessModels
	}
	o.Guess, o.Bounds = nil, nil
	var best *Model
	for _, name := range names {
		m, err := Fit(name, pressure, loading, o)
		if err != nil {
			Log.WithFields(logrus.Fields{"model": name, "error": err}).Info("model could not be fitted")
			continue
		}
		if best == nil || m.RMSE < best.RMSE {
			best = m
		}
	}
	if best == nil {
		return nil, errs.Calculation("no model could be fitted to the data; tried %v", names)
	}
	Log.WithFields(logrus.Fields{"model": best.Name(), "rmse": best.RMSE}).Info("best model fit")
	return best, nil
}
