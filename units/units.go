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

// Package units converts pressures, loadings and material quantities
// between modes, bases and units.
//
// Absolute pressures are tabulated relative to the pascal, molar
// quantities relative to the mole, masses relative to the gram and
// volumes relative to the cubic centimetre. Every table entry is a
// dimensioned github.com/ctessum/unit value so that user supplied units
// are checked against the dimension of the table they join.
package units

import (
	"sort"
	"sync"

	"github.com/ctessum/unit"
	"github.com/spatialmodel/adsorb/internal/errs"
)

// MoleDim is the dimension representing an amount of substance.
var MoleDim = unit.NewDimension("mole")

// Mole is the dimension set of an amount of substance.
var Mole = unit.Dimensions{MoleDim: 1}

// PressureMode is the way a pressure is expressed.
type PressureMode string

// Pressure modes.
const (
	Absolute        PressureMode = "absolute"
	Relative        PressureMode = "relative"
	RelativePercent PressureMode = "relative%"
)

// LoadingBasis is the physical quantity a loading is expressed in.
type LoadingBasis string

// Loading bases. Fraction and Percent are ratios to the material
// quantity, so they take their physical basis from the material basis.
const (
	Molar        LoadingBasis = "molar"
	Mass         LoadingBasis = "mass"
	VolumeGas    LoadingBasis = "volume_gas"
	VolumeLiquid LoadingBasis = "volume_liquid"
	Fraction     LoadingBasis = "fraction"
	Percent      LoadingBasis = "percent"
)

// MaterialBasis is the physical quantity the adsorbent is expressed in.
type MaterialBasis string

// Material bases.
const (
	MaterialMass   MaterialBasis = "mass"
	MaterialVolume MaterialBasis = "volume"
	MaterialMolar  MaterialBasis = "molar"
)

var (
	tableMu sync.RWMutex

	pressureUnits = map[string]*unit.Unit{
		"Pa":   unit.New(1, unit.Pascal),
		"kPa":  unit.New(1e3, unit.Pascal),
		"MPa":  unit.New(1e6, unit.Pascal),
		"mbar": unit.New(100, unit.Pascal),
		"bar":  unit.New(1e5, unit.Pascal),
		"atm":  unit.New(101325, unit.Pascal),
		"mmHg": unit.New(133.322, unit.Pascal),
		"torr": unit.New(133.322, unit.Pascal),
	}

	molarUnits = map[string]*unit.Unit{
		"mmol":     unit.New(1e-3, Mole),
		"mol":      unit.New(1, Mole),
		"kmol":     unit.New(1e3, Mole),
		"cm3(STP)": unit.New(4.461e-5, Mole),
		"ml(STP)":  unit.New(4.461e-5, Mole),
	}

	massUnits = map[string]*unit.Unit{
		"amu": unit.New(1.66054e-30, unit.Kilogram),
		"mg":  unit.New(1e-6, unit.Kilogram),
		"cg":  unit.New(1e-5, unit.Kilogram),
		"dg":  unit.New(1e-4, unit.Kilogram),
		"g":   unit.New(1e-3, unit.Kilogram),
		"kg":  unit.New(1, unit.Kilogram),
	}

	volumeUnits = map[string]*unit.Unit{
		"cm3": unit.New(1e-6, unit.Meter3),
		"mL":  unit.New(1e-6, unit.Meter3),
		"dm3": unit.New(1e-3, unit.Meter3),
		"L":   unit.New(1e-3, unit.Meter3),
		"m3":  unit.New(1, unit.Meter3),
	}
)

// table holds a set of units of one dimension and the unit that
// derived quantities (densities, molar masses) are expressed in.
type table struct {
	name  string
	units map[string]*unit.Unit
	base  string
	dims  unit.Dimensions
}

var (
	pressureTable = table{"pressure", pressureUnits, "Pa", unit.Pascal}
	molarTable    = table{"molar", molarUnits, "mol", Mole}
	massTable     = table{"mass", massUnits, "g", unit.Kilogram}
	volumeTable   = table{"volume", volumeUnits, "cm3", unit.Meter3}
)

// scale returns the size of the named unit in multiples of the table's
// base unit.
func (t table) scale(name string) (float64, error) {
	tableMu.RLock()
	defer tableMu.RUnlock()
	u, ok := t.units[name]
	if !ok {
		return 0, errs.Unit("%s unit %q is not an option; viable units are %v", t.name, name, t.names())
	}
	return u.Value() / t.units[t.base].Value(), nil
}

func (t table) names() []string {
	o := make([]string, 0, len(t.units))
	for n := range t.units {
		o = append(o, n)
	}
	sort.Strings(o)
	return o
}

func (t table) register(name string, u *unit.Unit) error {
	if err := u.Check(t.dims); err != nil {
		return errs.Unit("registering %s unit %q: %v", t.name, name, err)
	}
	tableMu.Lock()
	defer tableMu.Unlock()
	t.units[name] = u
	return nil
}

// RegisterPressureUnit adds a pressure unit. u must have the dimensions
// of a pressure and hold the size of one unit in SI.
func RegisterPressureUnit(name string, u *unit.Unit) error { return pressureTable.register(name, u) }

// RegisterMassUnit adds a mass unit.
func RegisterMassUnit(name string, u *unit.Unit) error { return massTable.register(name, u) }

// RegisterVolumeUnit adds a volume unit.
func RegisterVolumeUnit(name string, u *unit.Unit) error { return volumeTable.register(name, u) }

// RegisterMolarUnit adds an amount-of-substance unit.
func RegisterMolarUnit(name string, u *unit.Unit) error { return molarTable.register(name, u) }

// PressureUnits returns the names of the available absolute pressure units.
func PressureUnits() []string { return pressureTable.names() }

// CheckPressureMode checks that the mode and unit are a valid pair.
// The unit is only checked in absolute mode.
func CheckPressureMode(mode PressureMode, unitName string) error {
	switch mode {
	case Absolute:
		_, err := pressureTable.scale(unitName)
		return err
	case Relative, RelativePercent:
		return nil
	default:
		return errs.Unit("pressure mode %q is not an option; viable modes are %v", mode,
			[]PressureMode{Absolute, Relative, RelativePercent})
	}
}

func loadingTable(b LoadingBasis) (table, bool, error) {
	switch b {
	case Molar:
		return molarTable, true, nil
	case Mass:
		return massTable, true, nil
	case VolumeGas, VolumeLiquid:
		return volumeTable, true, nil
	case Fraction, Percent:
		return table{}, false, nil
	default:
		return table{}, false, errs.Unit("loading basis %q is not an option; viable bases are %v", b,
			[]LoadingBasis{Molar, Mass, VolumeGas, VolumeLiquid, Fraction, Percent})
	}
}

func materialTable(b MaterialBasis) (table, error) {
	switch b {
	case MaterialMass:
		return massTable, nil
	case MaterialVolume:
		return volumeTable, nil
	case MaterialMolar:
		return molarTable, nil
	default:
		return table{}, errs.Unit("material basis %q is not an option; viable bases are %v", b,
			[]MaterialBasis{MaterialMass, MaterialVolume, MaterialMolar})
	}
}

// NormalizeLoadingBasis maps aliases ("volume") onto their canonical
// loading basis.
func NormalizeLoadingBasis(b LoadingBasis) LoadingBasis {
	if b == "volume" {
		return VolumeGas
	}
	return b
}

// CheckLoading checks that the basis and unit are a valid pair. The
// unit is ignored for fraction and percent.
func CheckLoading(basis LoadingBasis, unitName string) error {
	t, hasUnit, err := loadingTable(NormalizeLoadingBasis(basis))
	if err != nil || !hasUnit {
		return err
	}
	_, err = t.scale(unitName)
	return err
}

// CheckMaterial checks that the basis and unit are a valid pair.
func CheckMaterial(basis MaterialBasis, unitName string) error {
	t, err := materialTable(basis)
	if err != nil {
		return err
	}
	_, err = t.scale(unitName)
	return err
}

// ConvertTemperature converts a temperature between "K" and "°C".
// "C" and "degC" are accepted for degrees Celsius.
func ConvertTemperature(v float64, from, to string) (float64, error) {
	k := func(u string) (float64, error) {
		switch u {
		case "K":
			return 0, nil
		case "°C", "C", "degC":
			return 273.15, nil
		}
		return 0, errs.Unit("temperature unit %q is not an option; viable units are [K °C]", u)
	}
	of, err := k(from)
	if err != nil {
		return 0, err
	}
	ot, err := k(to)
	if err != nil {
		return 0, err
	}
	return v + of - ot, nil
}
