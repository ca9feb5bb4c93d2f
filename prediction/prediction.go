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

// Package prediction shifts a measured isotherm to other temperatures
// with the Clausius-Clapeyron relation and its isosteric enthalpies of
// adsorption.
package prediction

import (
	"math"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/adsorb"
	"github.com/spatialmodel/adsorb/adsorbate"
	"github.com/spatialmodel/adsorb/internal/errs"
	"github.com/spatialmodel/adsorb/internal/numeric"
	"github.com/spatialmodel/adsorb/units"
	"gonum.org/v1/gonum/floats"
)

// Log receives warnings about unreliable predictions.
var Log logrus.FieldLogger = logrus.StandardLogger()

// Units are the units of predicted isotherms.
var Units = adsorb.Units{
	PressureMode:  units.Absolute,
	PressureUnit:  "Pa",
	LoadingBasis:  units.Molar,
	LoadingUnit:   "mol",
	MaterialBasis: units.MaterialMass,
	MaterialUnit:  "kg",
}

// Options select the enthalpies used by a prediction.
type Options struct {
	// Branch is Adsorption by default.
	Branch adsorb.Branch

	// Key is the data channel of the isotherm holding the isosteric
	// enthalpy at each point, in kJ/mol. The default is "enthalpy".
	Key string

	// Loading and Enthalpy give the enthalpy (kJ/mol) at loadings in
	// mol/kg when the isotherm has no enthalpy channel, for example from
	// characterisation.WhittakerEnthalpy.
	Loading, Enthalpy []float64
}

func (o Options) key() string {
	if o.Key == "" {
		return "enthalpy"
	}
	return o.Key
}

// PressureRaw returns the pressures at temperature T [K] that keep the
// loading fixed, from the pressures p measured at Te and the isosteric
// enthalpies h in kJ/mol:
//
//	ln p' = ln p + 1000·h·(T − Te)/(R·T·Te)
func PressureRaw(h, p []float64, Te, T float64) ([]float64, error) {
	if len(h) != len(p) {
		return nil, errs.Parameter("there are %d enthalpies and %d pressures", len(h), len(p))
	}
	if !(Te > 0 && T > 0) {
		return nil, errs.Parameter("temperatures must be positive, have %g K and %g K", Te, T)
	}
	dT := T - Te
	if math.Abs(dT) > 50 {
		Log.WithField("difference", dT).Warn("the prediction temperature differs from the isotherm temperature by more than 50 K; the prediction may not be reliable")
	}
	o := make([]float64, len(p))
	for i := range p {
		o[i] = math.Exp(1e3*h[i]*dT/(adsorbate.R*T*Te) + math.Log(p[i]))
	}
	return o, nil
}

// FromEnthalpy predicts the isotherm at temperature T [K] from a
// measured isotherm and isosteric enthalpies. The enthalpy channel of
// the isotherm is preferred over o.Loading and o.Enthalpy. The
// prediction is in Units.
func FromEnthalpy(iso *adsorb.PointIsotherm, T float64, o Options) (*adsorb.PointIsotherm, error) {
	b := o.Branch
	if b == adsorb.BranchAll {
		b = adsorb.Adsorption
	}
	c := iso.Clone()
	if err := c.Convert(Units); err != nil {
		return nil, err
	}
	q := adsorb.Query{Branch: b}

	var loading, enthalpy, pressure []float64
	var err error
	if enthalpy, err = c.OtherData(o.key(), q); err == nil {
		if pressure, loading, err = c.Data(q); err != nil {
			return nil, err
		}
		Log.WithField("key", o.key()).Debug("enthalpy read from the isotherm")
	} else {
		if o.Enthalpy == nil {
			return nil, errs.Parameter("there is no enthalpy: the isotherm has no %q channel and none was passed", o.key())
		}
		if len(o.Loading) != len(o.Enthalpy) {
			return nil, errs.Parameter("there are %d loadings and %d enthalpies", len(o.Loading), len(o.Enthalpy))
		}
		loading, enthalpy = o.Loading, o.Enthalpy
		if pressure, err = c.PressureAt(loading, q); err != nil {
			return nil, err
		}
	}
	predicted, err := PressureRaw(enthalpy, pressure, c.Temperature, T)
	if err != nil {
		return nil, err
	}
	meta := c.Metadata
	meta.Temperature = T
	meta.Properties = map[string]interface{}{"apparatus": "predicted from enthalpy"}
	return adsorb.NewPointIsotherm(meta, predicted, loading, adsorb.AsBranch(b))
}

// Isosurface predicts the loading (mol/kg) at each temperature and
// pressure (Pa). Row i of the grid holds temperature i. Pressures
// outside the range of the isotherm predicted at a temperature give
// NaN. With nil temperatures, the isotherm temperature ±50 K is used,
// floored at 1 K; with nil pressures, the pressure range of the
// isotherm. Either default has n points, 100 if n is 0.
func Isosurface(iso *adsorb.PointIsotherm, temperatures, pressures []float64, n int, o Options) ([][]float64, error) {
	if n <= 0 {
		n = 100
	}
	b := o.Branch
	if b == adsorb.BranchAll {
		b = adsorb.Adsorption
	}
	if pressures == nil {
		p, err := iso.Pressure(adsorb.Query{Branch: b, Units: Units})
		if err != nil {
			return nil, err
		}
		pressures = numeric.Linspace(floats.Min(p), floats.Max(p), n)
	}
	if temperatures == nil {
		t := iso.Temperature
		temperatures = numeric.Linspace(math.Max(t-50, 1), t+50, n)
	}
	grid := make([][]float64, len(temperatures))
	for i, T := range temperatures {
		pred, err := FromEnthalpy(iso, T, o)
		if err != nil {
			return nil, err
		}
		p, err := pred.Pressure(adsorb.Query{Branch: b})
		if err != nil {
			return nil, err
		}
		lo, hi := floats.Min(p), floats.Max(p)
		grid[i] = make([]float64, len(pressures))
		for j, v := range pressures {
			grid[i][j] = math.NaN()
			if v <= lo || v >= hi {
				continue
			}
			q, err := pred.LoadingAt([]float64{v}, adsorb.Query{Branch: b})
			if err != nil {
				return nil, err
			}
			grid[i][j] = q[0]
		}
	}
	return grid, nil
}
