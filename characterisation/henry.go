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
	"github.com/spatialmodel/adsorb"
	"github.com/spatialmodel/adsorb/internal/errs"
	"github.com/spatialmodel/adsorb/modelling"
	"gonum.org/v1/gonum/floats"
)

// InitialHenrySlope calculates the Henry constant of the adsorption
// branch from its initial slope. A Henry model is fitted to the first
// points, dropping points from the top until the RMSE divided by the
// loading span is below maxAdjRMS or two points remain. The limits, if
// given, select points by pressure and by loading, in native units.
// The constant is in native loading per native pressure unit.
func InitialHenrySlope(iso adsorb.Isotherm, maxAdjRMS float64, pLimits, lLimits *adsorb.Range) (float64, error) {
	if maxAdjRMS <= 0 {
		maxAdjRMS = 0.02
	}
	q := adsorb.Query{Branch: adsorb.Adsorption}
	pres, err := iso.Pressure(q)
	if err != nil {
		return 0, err
	}
	load, err := iso.Loading(q)
	if err != nil {
		return 0, err
	}
	var pressure, loading []float64
	for i := range pres {
		if pLimits.Contains(pres[i]) && lLimits.Contains(load[i]) {
			pressure = append(pressure, pres[i])
			loading = append(loading, load[i])
		}
	}
	if len(pressure) == 0 {
		return 0, errs.Parameter("the limits chosen select no data")
	}
	if pressure[0] != 0 && loading[0] != 0 {
		pressure = append([]float64{0}, pressure...)
		loading = append([]float64{0}, loading...)
	}
	span := floats.Max(loading) - floats.Min(loading)
	var henry *modelling.Model
	for rows := len(pressure); rows > 1; rows-- {
		henry, err = modelling.Fit("Henry", pressure[:rows], loading[:rows], modelling.FitOptions{})
		if err != nil {
			return 0, err
		}
		if henry.RMSE/span <= maxAdjRMS || rows == 2 {
			break
		}
	}
	if henry == nil {
		return 0, errs.Calculation("not enough points to fit a Henry constant")
	}
	Log.WithField("K", henry.Param("K")).WithField("points", henry.PressureRange).Debug("initial Henry constant")
	return henry.Param("K"), nil
}

// InitialHenryVirial calculates the Henry constant of the adsorption
// branch from the zero loading limit of a virial fit.
func InitialHenryVirial(iso *adsorb.PointIsotherm, o modelling.FitOptions) (float64, error) {
	m, err := adsorb.ModelFromPoint(iso, "Virial", adsorb.Adsorption, o)
	if err != nil {
		return 0, err
	}
	return m.Model.Param("K"), nil
}
