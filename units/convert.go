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

package units

import (
	"math"

	"github.com/spatialmodel/adsorb/internal/errs"
)

// Fluid provides the adsorbate properties that loading and pressure
// conversions depend on.
type Fluid interface {
	// MolarMass returns the molar mass in g/mol.
	MolarMass() (float64, error)
	// SaturationPressure returns the vapour pressure at T [K] in Pa.
	SaturationPressure(T float64) (float64, error)
	// LiquidDensity returns the saturated liquid density at T in g/cm³.
	LiquidDensity(T float64) (float64, error)
	// GasDensity returns the gas density at T in g/cm³.
	GasDensity(T float64) (float64, error)
}

// PseudoSaturator is implemented by fluids that can provide a
// pseudo-saturation pressure above their critical temperature.
type PseudoSaturator interface {
	PseudoSaturationPressure(T, k float64) (float64, error)
}

// Solid provides the material properties that material-basis
// conversions depend on.
type Solid interface {
	// Density returns the skeletal density in g/cm³.
	Density() (float64, error)
	// MolarMass returns the molar mass in g/mol.
	MolarMass() (float64, error)
}

// Pressure describes how a pressure is expressed.
type Pressure struct {
	Mode PressureMode
	Unit string // Only used in absolute mode.
}

// Loading describes how a loading is expressed.
type Loading struct {
	Basis LoadingBasis
	Unit  string // Ignored for fraction and percent.
}

// Material describes how the adsorbent quantity is expressed.
type Material struct {
	Basis MaterialBasis
	Unit  string
}

// Props holds the physical context of a conversion.
type Props struct {
	Fluid       Fluid
	Solid       Solid
	Temperature float64 // K

	// AllowNegative permits negative values. It is only honoured for
	// fraction and percent loadings.
	AllowNegative bool

	// PseudoSaturation makes absolute/relative pressure conversions use
	// the Dubinin pseudo-saturation pressure (k = 2) when the fluid
	// supports it.
	PseudoSaturation bool
}

func (p Props) saturationPressure() (float64, error) {
	if p.Fluid == nil {
		return 0, errs.Missing("an adsorbate is required for a pressure mode conversion")
	}
	if p.Temperature <= 0 {
		return 0, errs.Missing("a temperature is required for a pressure mode conversion")
	}
	if p.PseudoSaturation {
		if ps, ok := p.Fluid.(PseudoSaturator); ok {
			v, err := ps.PseudoSaturationPressure(p.Temperature, 2)
			return v, errs.Wrap(errs.ErrCalculation, err, "pseudo-saturation pressure")
		}
	}
	v, err := p.Fluid.SaturationPressure(p.Temperature)
	return v, errs.Wrap(errs.ErrCalculation, err, "saturation pressure")
}

func checkValues(v []float64, allowNegative bool) error {
	for _, vv := range v {
		if vv < 0 && !allowNegative {
			return errs.Parameter("negative value %g", vv)
		}
	}
	return nil
}

func scaled(v []float64, f float64) []float64 {
	o := make([]float64, len(v))
	for i, vv := range v {
		o[i] = vv * f // NaN propagates.
	}
	return o
}

// PressureFactor returns the factor that converts a pressure from one
// representation to another.
func PressureFactor(from, to Pressure, p Props) (float64, error) {
	if err := CheckPressureMode(from.Mode, from.Unit); err != nil {
		return 0, err
	}
	if to.Mode != from.Mode || to.Mode == Absolute {
		if err := CheckPressureMode(to.Mode, to.Unit); err != nil {
			return 0, err
		}
	}
	if from.Mode == to.Mode {
		if from.Mode != Absolute || from.Unit == to.Unit {
			return 1, nil
		}
		sf, _ := pressureTable.scale(from.Unit)
		st, _ := pressureTable.scale(to.Unit)
		return sf / st, nil
	}
	if from.Mode != Absolute && to.Mode != Absolute {
		if to.Mode == RelativePercent {
			return 100, nil
		}
		return 0.01, nil
	}
	psat, err := p.saturationPressure()
	if err != nil {
		return 0, err
	}
	var f float64
	if to.Mode == Absolute {
		s, _ := pressureTable.scale(to.Unit)
		f = psat / s
		if from.Mode == RelativePercent {
			f /= 100
		}
	} else {
		s, _ := pressureTable.scale(from.Unit)
		f = s / psat
		if to.Mode == RelativePercent {
			f *= 100
		}
	}
	return f, nil
}

// ConvertPressure converts pressures between modes and units, returning
// a new slice.
func ConvertPressure(v []float64, from, to Pressure, p Props) ([]float64, error) {
	if err := checkValues(v, false); err != nil {
		return nil, err
	}
	f, err := PressureFactor(from, to, p)
	if err != nil {
		return nil, err
	}
	return scaled(v, f), nil
}

// LoadingFactor returns the factor that converts a loading from one
// basis and unit to another. mat is the material basis of the loading,
// required when either side is a fraction or percent.
func LoadingFactor(from, to Loading, mat Material, p Props) (float64, error) {
	from.Basis = NormalizeLoadingBasis(from.Basis)
	to.Basis = NormalizeLoadingBasis(to.Basis)
	tf, fromUnit, err := loadingTable(from.Basis)
	if err != nil {
		return 0, err
	}
	tt, toUnit, err := loadingTable(to.Basis)
	if err != nil {
		return 0, err
	}
	if from.Basis == to.Basis {
		if !fromUnit || from.Unit == to.Unit || to.Unit == "" {
			return 1, nil
		}
		sf, err := tf.scale(from.Unit)
		if err != nil {
			return 0, err
		}
		st, err := tt.scale(to.Unit)
		if err != nil {
			return 0, err
		}
		return sf / st, nil
	}
	fromRatio, toRatio := !fromUnit, !toUnit
	if fromRatio && toRatio {
		if from.Basis == Percent {
			return 0.01, nil
		}
		return 100, nil
	}

	factor := 1.0
	fb, fu, tb, tu := from.Basis, from.Unit, to.Basis, to.Unit
	if fromRatio || toRatio {
		mb, err := ratioBasis(mat.Basis)
		if err != nil {
			return 0, err
		}
		if fromRatio {
			fb, fu = mb, mat.Unit
			tf, _, _ = loadingTable(mb)
			if from.Basis == Percent {
				factor = 0.01
			}
		} else {
			tb, tu = mb, mat.Unit
			tt, _, _ = loadingTable(mb)
			if to.Basis == Percent {
				factor = 100
			}
		}
	}
	sf, err := tf.scale(fu)
	if err != nil {
		return 0, err
	}
	st, err := tt.scale(tu)
	if err != nil {
		return 0, err
	}
	c, err := basisConstant(fb, tb, p)
	if err != nil {
		return 0, err
	}
	return sf * factor * c / st, nil
}

// ratioBasis returns the physical loading basis that a fraction or
// percent loading refers to for a material basis.
func ratioBasis(b MaterialBasis) (LoadingBasis, error) {
	switch b {
	case MaterialMass:
		return Mass, nil
	case MaterialVolume:
		return VolumeLiquid, nil
	case MaterialMolar:
		return Molar, nil
	}
	_, err := materialTable(b)
	if err == nil {
		err = errs.Unit("material basis %q cannot be used for a fraction loading", b)
	}
	return "", err
}

// basisConstant returns the multiplier that converts one base unit of
// basis from into base units of basis to.
func basisConstant(from, to LoadingBasis, p Props) (float64, error) {
	if from == to {
		return 1, nil
	}
	if p.Fluid == nil {
		return 0, errs.Missing("an adsorbate is required to convert loading from %s to %s", from, to)
	}
	needT := from == VolumeGas || from == VolumeLiquid || to == VolumeGas || to == VolumeLiquid
	if needT && p.Temperature <= 0 {
		return 0, errs.Missing("a temperature is required to convert loading from %s to %s", from, to)
	}
	// molesPer returns the number of moles in one base unit of b.
	molesPer := func(b LoadingBasis) (float64, error) {
		switch b {
		case Molar:
			return 1, nil
		case Mass:
			m, err := p.Fluid.MolarMass()
			return 1 / m, errs.Wrap(errs.ErrMissingParameter, err, "molar mass")
		case VolumeGas:
			m, err := p.Fluid.MolarMass()
			if err != nil {
				return 0, errs.Wrap(errs.ErrMissingParameter, err, "molar mass")
			}
			rho, err := p.Fluid.GasDensity(p.Temperature)
			return rho / m, errs.Wrap(errs.ErrCalculation, err, "gas density")
		case VolumeLiquid:
			m, err := p.Fluid.MolarMass()
			if err != nil {
				return 0, errs.Wrap(errs.ErrMissingParameter, err, "molar mass")
			}
			rho, err := p.Fluid.LiquidDensity(p.Temperature)
			return rho / m, errs.Wrap(errs.ErrCalculation, err, "liquid density")
		}
		return 0, errs.Unit("loading basis %q", b)
	}
	nf, err := molesPer(from)
	if err != nil {
		return 0, err
	}
	nt, err := molesPer(to)
	if err != nil {
		return 0, err
	}
	return nf / nt, nil
}

// ConvertLoading converts loadings between bases and units, returning a
// new slice.
func ConvertLoading(v []float64, from, to Loading, mat Material, p Props) ([]float64, error) {
	ratio := func(b LoadingBasis) bool { return b == Fraction || b == Percent }
	if err := checkValues(v, p.AllowNegative && ratio(from.Basis)); err != nil {
		return nil, err
	}
	f, err := LoadingFactor(from, to, mat, p)
	if err != nil {
		return nil, err
	}
	return scaled(v, f), nil
}

// MaterialFactor returns the factor that converts a per-material
// quantity from one material basis and unit to another. Loadings are
// divided by the material quantity, so the factor is the inverse of the
// material quantity conversion.
func MaterialFactor(from, to Material, p Props) (float64, error) {
	tf, err := materialTable(from.Basis)
	if err != nil {
		return 0, err
	}
	tt, err := materialTable(to.Basis)
	if err != nil {
		return 0, err
	}
	sf, err := tf.scale(from.Unit)
	if err != nil {
		return 0, err
	}
	st, err := tt.scale(to.Unit)
	if err != nil {
		return 0, err
	}
	if from.Basis == to.Basis {
		return st / sf, nil
	}
	if p.Solid == nil {
		return 0, errs.Missing("a material is required to convert from %s to %s basis", from.Basis, to.Basis)
	}
	// gramsPer returns the grams of material in one base unit of b.
	gramsPer := func(b MaterialBasis) (float64, error) {
		switch b {
		case MaterialMass:
			return 1, nil
		case MaterialVolume:
			d, err := p.Solid.Density()
			return d, errs.Wrap(errs.ErrMissingParameter, err, "material density")
		default:
			m, err := p.Solid.MolarMass()
			return m, errs.Wrap(errs.ErrMissingParameter, err, "material molar mass")
		}
	}
	gf, err := gramsPer(from.Basis)
	if err != nil {
		return 0, err
	}
	gt, err := gramsPer(to.Basis)
	if err != nil {
		return 0, err
	}
	// Quantity per (from unit of material) -> per (to unit of material).
	return st * gt / (sf * gf), nil
}

// ConvertMaterial converts per-material values between material bases
// and units, returning a new slice.
func ConvertMaterial(v []float64, from, to Material, p Props) ([]float64, error) {
	if err := checkValues(v, p.AllowNegative); err != nil {
		return nil, err
	}
	f, err := MaterialFactor(from, to, p)
	if err != nil {
		return nil, err
	}
	return scaled(v, f), nil
}

// IsFinite reports whether every value in v is finite.
func IsFinite(v []float64) bool {
	for _, vv := range v {
		if math.IsNaN(vv) || math.IsInf(vv, 0) {
			return false
		}
	}
	return true
}

func isRatio(b LoadingBasis) bool { return b == Fraction || b == Percent }

// LoadingMaterialFactor returns the factor that converts a loading
// expressed per fromMat into one expressed per toMat. Ratio loadings
// are taken through a physical pivot basis so that a fraction keeps
// referring to the material basis on its own side.
func LoadingMaterialFactor(from, to Loading, fromMat, toMat Material, p Props) (float64, error) {
	from.Basis = NormalizeLoadingBasis(from.Basis)
	to.Basis = NormalizeLoadingBasis(to.Basis)
	if !isRatio(from.Basis) && !isRatio(to.Basis) {
		lf, err := LoadingFactor(from, to, fromMat, p)
		if err != nil {
			return 0, err
		}
		mf, err := MaterialFactor(fromMat, toMat, p)
		if err != nil {
			return 0, err
		}
		return lf * mf, nil
	}
	var pivot Loading
	switch {
	case !isRatio(to.Basis):
		pivot = to
	case !isRatio(from.Basis):
		pivot = from
	default:
		b, err := ratioBasis(fromMat.Basis)
		if err != nil {
			return 0, err
		}
		pivot = Loading{Basis: b, Unit: fromMat.Unit}
	}
	f1, err := LoadingFactor(from, pivot, fromMat, p)
	if err != nil {
		return 0, err
	}
	mf, err := MaterialFactor(fromMat, toMat, p)
	if err != nil {
		return 0, err
	}
	f2, err := LoadingFactor(pivot, to, toMat, p)
	if err != nil {
		return 0, err
	}
	return f1 * mf * f2, nil
}
