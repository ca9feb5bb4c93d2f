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

package adsorb

import (
	"math"
	"sort"

	"github.com/spatialmodel/adsorb/internal/errs"
	"github.com/spatialmodel/adsorb/internal/hash"
	"github.com/spatialmodel/adsorb/internal/numeric"
	"github.com/spatialmodel/adsorb/modelling"
	"github.com/spatialmodel/adsorb/units"
)

// ModelIsotherm is an isotherm described by a fitted model. The model
// works in the native units of the isotherm.
type ModelIsotherm struct {
	Metadata

	Model *modelling.Model

	// Branch is the physical branch the model represents.
	Branch Branch
}

// NewModelIsotherm wraps an existing model.
func NewModelIsotherm(meta Metadata, m *modelling.Model, branch Branch) (*ModelIsotherm, error) {
	if err := meta.Check(); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errs.Parameter("a model isotherm needs a model")
	}
	if branch == BranchAll {
		branch = Adsorption
	}
	if m.RelativePressure() && meta.PressureMode == units.Absolute {
		return nil, errs.Parameter("model %s needs relative pressures", m.Name())
	}
	if m.NeedsTemperature() && m.Temperature <= 0 {
		m.Temperature = meta.Temperature
	}
	return &ModelIsotherm{Metadata: meta.clone(), Model: m, Branch: branch}, nil
}

// FitModel fits the named model to data expressed in the units of
// meta. The name "guess" selects the best of
// modelling.DefaultGuessModels.
func FitModel(meta Metadata, pressure, loading []float64, name string, branch Branch, o modelling.FitOptions) (*ModelIsotherm, error) {
	iso, err := NewPointIsotherm(meta, pressure, loading, AsBranch(branch.single()))
	if err != nil {
		return nil, err
	}
	if name == "guess" {
		return GuessFromPoint(iso, nil, branch, o)
	}
	return ModelFromPoint(iso, name, branch, o)
}

// branchData returns the native data of a point isotherm branch,
// converted to relative pressure when the model needs it.
func branchData(iso *PointIsotherm, relative bool, branch Branch) (Metadata, []float64, []float64, error) {
	meta := iso.Metadata.clone()
	q := Query{Branch: branch.single()}
	if relative && meta.PressureMode == units.Absolute {
		meta.PressureMode, meta.PressureUnit = units.Relative, ""
		q.PressureMode = units.Relative
	}
	p, n, err := iso.Data(q)
	if err != nil {
		return meta, nil, nil, err
	}
	if meta.PressureMode == units.RelativePercent && relative {
		for i := range p {
			p[i] /= 100
		}
		meta.PressureMode = units.Relative
	}
	return meta, p, n, nil
}

// ModelFromPoint fits the named model to one branch of a point
// isotherm. Models that work on relative pressure are fitted to the
// data converted to relative pressure.
func ModelFromPoint(iso *PointIsotherm, name string, branch Branch, o modelling.FitOptions) (*ModelIsotherm, error) {
	relative, err := modelling.UsesRelativePressure(name)
	if err != nil {
		return nil, err
	}
	meta, p, n, err := branchData(iso, relative, branch)
	if err != nil {
		return nil, err
	}
	o.Temperature = iso.Temperature
	m, err := modelling.Fit(name, p, n, o)
	if err != nil {
		return nil, err
	}
	return &ModelIsotherm{Metadata: meta, Model: m, Branch: branch.single()}, nil
}

// GuessFromPoint fits each named model, or the default guess list, to a
// branch of a point isotherm and returns the best.
func GuessFromPoint(iso *PointIsotherm, names []string, branch Branch, o modelling.FitOptions) (*ModelIsotherm, error) {
	if len(names) == 0 {
		names = modelling.DefaultGuessModels
	}
	var best *ModelIsotherm
	for _, name := range names {
		m, err := ModelFromPoint(iso, name, branch, o)
		if err != nil {
			Log.WithField("model", name).WithError(err).Info("model could not be fitted")
			continue
		}
		if best == nil || m.Model.RMSE < best.Model.RMSE {
			best = m
		}
	}
	if best == nil {
		return nil, errs.Calculation("no model could be fitted to the data; tried %v", names)
	}
	Log.WithField("model", best.Model.Name()).WithField("rmse", best.Model.RMSE).Info("best model fit")
	return best, nil
}

// PointFromModel samples a model isotherm at the given native
// pressures, or at q.Points pressures across the fitted range when
// pressure is nil.
func PointFromModel(iso *ModelIsotherm, pressure []float64, q Query) (*PointIsotherm, error) {
	if pressure == nil {
		pressure = iso.pressures(q)
	}
	loading := make([]float64, len(pressure))
	for i, p := range pressure {
		var err error
		if loading[i], err = iso.Model.Loading(p); err != nil {
			return nil, err
		}
	}
	return NewPointIsotherm(iso.Metadata, pressure, loading, AsBranch(iso.Branch))
}

// HasBranch reports whether the model represents branch b.
func (m *ModelIsotherm) HasBranch(b Branch) bool { return b == BranchAll || b == m.Branch }

func (m *ModelIsotherm) checkBranch(b Branch) error {
	if !m.HasBranch(b) {
		return errs.Parameter("the model isotherm has no %s branch", b)
	}
	return nil
}

// pressures returns evenly spaced native pressures across the fitted
// range.
func (m *ModelIsotherm) pressures(q Query) []float64 {
	r := m.Model.PressureRange
	return numeric.Linspace(r[0], r[1], q.points())
}

// Pressure returns q.Points evenly spaced pressures across the fitted
// range, in the query units.
func (m *ModelIsotherm) Pressure(q Query) ([]float64, error) {
	if err := m.checkBranch(q.Branch); err != nil {
		return nil, err
	}
	f, err := m.pressureFactor(m.Units.resolve(q.Units))
	if err != nil {
		return nil, err
	}
	return filter(scale(m.pressures(q), f), q.Limits), nil
}

// Loading returns the model loadings at the pressures returned by
// Pressure, in the query units.
func (m *ModelIsotherm) Loading(q Query) ([]float64, error) {
	if err := m.checkBranch(q.Branch); err != nil {
		return nil, err
	}
	f, err := m.loadingFactor(m.Units.resolve(q.Units))
	if err != nil {
		return nil, err
	}
	ps := m.pressures(q)
	o := make([]float64, len(ps))
	for i, p := range ps {
		n, err := m.Model.Loading(p)
		if err != nil {
			return nil, err
		}
		o[i] = n * f
	}
	return filter(o, q.Limits), nil
}

// LoadingAt returns the model loading at each pressure.
func (m *ModelIsotherm) LoadingAt(pressure []float64, q Query) ([]float64, error) {
	return m.evaluate(pressure, q, true)
}

// PressureAt returns the model pressure at each loading.
func (m *ModelIsotherm) PressureAt(loading []float64, q Query) ([]float64, error) {
	return m.evaluate(loading, q, false)
}

func (m *ModelIsotherm) evaluate(in []float64, q Query, onPressure bool) ([]float64, error) {
	if err := m.checkBranch(q.Branch); err != nil {
		return nil, err
	}
	t := m.Units.resolve(q.Units)
	pf, err := m.pressureFactor(t)
	if err != nil {
		return nil, err
	}
	lf, err := m.loadingFactor(t)
	if err != nil {
		return nil, err
	}
	o := make([]float64, len(in))
	for i, v := range in {
		if onPressure {
			n, err := m.Model.Loading(v / pf)
			if err != nil {
				return nil, err
			}
			o[i] = n * lf
		} else {
			p, err := m.Model.Pressure(v / lf)
			if err != nil {
				return nil, err
			}
			o[i] = p * pf
		}
	}
	return o, nil
}

// SpreadingPressureAt returns the model spreading pressure, in the
// query loading units.
func (m *ModelIsotherm) SpreadingPressureAt(pressure float64, q Query) (float64, error) {
	if err := m.checkBranch(q.Branch); err != nil {
		return math.NaN(), err
	}
	t := m.Units.resolve(q.Units)
	pf, err := m.pressureFactor(t)
	if err != nil {
		return math.NaN(), err
	}
	lf, err := m.loadingFactor(t)
	if err != nil {
		return math.NaN(), err
	}
	pi, err := m.Model.SpreadingPressure(pressure / pf)
	if err != nil {
		return math.NaN(), err
	}
	return pi * lf, nil
}

// ID returns a hash of the metadata, branch and model.
func (m *ModelIsotherm) ID() string {
	params := m.Model.Params()
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	id := []string{"model=" + m.Model.Name(), "branch=" + m.Branch.String()}
	id = append(id, m.identity()...)
	for _, k := range keys {
		id = append(id, k+"="+hash.Float(params[k]))
	}
	id = append(id, hash.Floats([]float64{
		m.Model.PressureRange[0], m.Model.PressureRange[1],
		m.Model.LoadingRange[0], m.Model.LoadingRange[1], m.Model.RMSE,
	})...)
	return hash.Hash(id)
}
