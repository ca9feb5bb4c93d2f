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
	"github.com/spatialmodel/adsorb/internal/errs"
	"github.com/spf13/cast"
)

// ToMap returns the persistent form of the model: its name,
// parameters, valid pressure and loading ranges and fit RMSE.
func (m *Model) ToMap() map[string]interface{} {
	params := make(map[string]interface{}, len(m.params))
	for k, v := range m.Params() {
		params[k] = v
	}
	return map[string]interface{}{
		"name":           m.v.name,
		"parameters":     params,
		"pressure_range": []float64{m.PressureRange[0], m.PressureRange[1]},
		"loading_range":  []float64{m.LoadingRange[0], m.LoadingRange[1]},
		"rmse":           m.RMSE,
	}
}

// FromMap rebuilds a model from the output of ToMap, or from the same
// structure decoded from JSON or YAML.
func FromMap(d map[string]interface{}, temperature float64) (*Model, error) {
	name, err := cast.ToStringE(d["name"])
	if err != nil || name == "" {
		return nil, errs.Parameter("model name is missing")
	}
	raw, err := cast.ToStringMapE(d["parameters"])
	if err != nil {
		return nil, errs.Parameter("model %s: invalid parameters: %v", name, err)
	}
	params := make(map[string]float64, len(raw))
	for k, v := range raw {
		if params[k], err = cast.ToFloat64E(v); err != nil {
			return nil, errs.Parameter("model %s: parameter %q: %v", name, k, err)
		}
	}
	m, err := New(name, params, temperature)
	if err != nil {
		return nil, err
	}
	if m.PressureRange, err = rangeOf(d["pressure_range"]); err != nil {
		return nil, errs.Parameter("model %s: pressure_range: %v", name, err)
	}
	if m.LoadingRange, err = rangeOf(d["loading_range"]); err != nil {
		return nil, errs.Parameter("model %s: loading_range: %v", name, err)
	}
	if v, ok := d["rmse"]; ok && v != nil {
		if m.RMSE, err = cast.ToFloat64E(v); err != nil {
			return nil, errs.Parameter("model %s: rmse: %v", name, err)
		}
	}
	return m, nil
}

func rangeOf(v interface{}) ([2]float64, error) {
	var r [2]float64
	if v == nil {
		return r, nil
	}
	if f, ok := v.([]float64); ok && len(f) == 2 {
		return [2]float64{f[0], f[1]}, nil
	}
	s, err := cast.ToSliceE(v)
	if err != nil {
		return r, err
	}
	if len(s) != 2 {
		return r, errs.Parameter("a range needs 2 values, not %d", len(s))
	}
	for i := range r {
		if r[i], err = cast.ToFloat64E(s[i]); err != nil {
			return r, err
		}
	}
	return r, nil
}
