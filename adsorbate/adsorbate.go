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

// Package adsorbate holds the adsorbate and material property registry.
//
// Adsorbates publish static constants (molar mass, cross-sectional area,
// polarizability...) from their property dictionary, and
// temperature-dependent properties through a swappable Backend. When
// the backend is unavailable or fails, the static dictionary is used.
package adsorbate

import (
	"math"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/adsorb/internal/errs"
	"github.com/spatialmodel/adsorb/internal/numeric"
)

// Log receives warnings about property lookups.
var Log logrus.FieldLogger = logrus.StandardLogger()

// Property names used in adsorbate dictionaries.
const (
	MolarMass                  = "molar_mass"
	TCritical                  = "t_critical"
	PCritical                  = "p_critical"
	AcentricFactor             = "acentric_factor"
	RackettZ                   = "rackett_z"
	TTriple                    = "t_triple"
	PTriple                    = "p_triple"
	CrossSectionalArea         = "cross_sectional_area"
	Polarizability             = "polarizability"
	MagneticSusceptibility     = "magnetic_susceptibility"
	SurfaceDensity             = "surface_density"
	MolecularDiameter          = "molecular_diameter"
	SurfaceTensionRef          = "surface_tension_ref"
	SurfaceTensionTRef         = "surface_tension_t_ref"
	EnthalpyVaporisationRef    = "enthalpy_vaporisation_ref"
	EnthalpyVaporisationTRef   = "enthalpy_vaporisation_t_ref"
	StaticSaturationPressure   = "saturation_pressure"
	StaticLiquidDensity        = "liquid_density"
	StaticGasDensity           = "gas_density"
	StaticSurfaceTension       = "surface_tension"
	StaticEnthalpyVaporisation = "enthalpy_vaporisation"
)

// Backend computes temperature-dependent fluid properties.
type Backend interface {
	// SaturationPressure returns the vapour pressure in Pa.
	SaturationPressure(a *Adsorbate, T float64) (float64, error)
	// LiquidDensity returns the saturated liquid density in g/cm³.
	LiquidDensity(a *Adsorbate, T float64) (float64, error)
	// GasDensity returns the saturated vapour density in g/cm³.
	GasDensity(a *Adsorbate, T float64) (float64, error)
	// SurfaceTension returns the liquid surface tension in N/m.
	SurfaceTension(a *Adsorbate, T float64) (float64, error)
	// EnthalpyVaporisation returns the enthalpy of vaporisation in kJ/mol.
	EnthalpyVaporisation(a *Adsorbate, T float64) (float64, error)
}

// Adsorbate is a gas that can be adsorbed.
type Adsorbate struct {
	Name       string             `toml:"name" json:"name" yaml:"name"`
	Alias      []string           `toml:"alias" json:"alias,omitempty" yaml:"alias,omitempty"`
	Formula    string             `toml:"formula" json:"formula,omitempty" yaml:"formula,omitempty"`
	Properties map[string]float64 `toml:"properties" json:"properties,omitempty" yaml:"properties,omitempty"`

	// Backend, if set, overrides the registry backend for this adsorbate.
	Backend Backend `toml:"-" json:"-" yaml:"-"`

	registry *Registry
	unknown  bool
}

// New returns an adsorbate with the given name, aliases and properties.
func New(name string, properties map[string]float64, alias ...string) *Adsorbate {
	return &Adsorbate{Name: name, Alias: alias, Properties: properties}
}

func (a *Adsorbate) String() string { return a.Name }

// Known reports whether the adsorbate came from a registry rather than
// being created as a bare placeholder for an unknown name.
func (a *Adsorbate) Known() bool { return !a.unknown }

// names returns the lower-case name and aliases.
func (a *Adsorbate) names() []string {
	o := []string{strings.ToLower(a.Name)}
	for _, al := range a.Alias {
		o = append(o, strings.ToLower(al))
	}
	return o
}

// Matches reports whether name is the adsorbate name or one of its
// aliases, ignoring case.
func (a *Adsorbate) Matches(name string) bool {
	name = strings.ToLower(name)
	for _, n := range a.names() {
		if n == name {
			return true
		}
	}
	return false
}

// Prop returns a value from the property dictionary.
func (a *Adsorbate) Prop(name string) (float64, error) {
	v, ok := a.Properties[name]
	if !ok {
		return math.NaN(), errs.Missing("adsorbate %q does not have a property named %q", a.Name, name)
	}
	return v, nil
}

// PropNames returns the sorted names of the stored properties.
func (a *Adsorbate) PropNames() []string {
	o := make([]string, 0, len(a.Properties))
	for k := range a.Properties {
		o = append(o, k)
	}
	sort.Strings(o)
	return o
}

func (a *Adsorbate) backend() Backend {
	if a.Backend != nil {
		return a.Backend
	}
	if a.registry != nil {
		return a.registry.backend()
	}
	return nil
}

// dynamic evaluates a temperature-dependent property through the
// backend, falling back to the static value stored under key.
func (a *Adsorbate) dynamic(key string, T float64, f func(Backend) (float64, error)) (float64, error) {
	b := a.backend()
	if b == nil {
		return a.Prop(key)
	}
	v, err := f(b)
	if err == nil {
		return v, nil
	}
	Log.WithFields(logrus.Fields{
		"adsorbate":   a.Name,
		"property":    key,
		"temperature": T,
	}).Warnf("thermodynamic backend failed: %v; reading the property dictionary", err)
	if s, ok := a.Properties[key]; ok {
		return s, nil
	}
	return math.NaN(), err
}

// MolarMass returns the molar mass in g/mol.
func (a *Adsorbate) MolarMass() (float64, error) { return a.Prop(MolarMass) }

// SaturationPressure returns the vapour pressure at T [K] in Pa.
func (a *Adsorbate) SaturationPressure(T float64) (float64, error) {
	return a.dynamic(StaticSaturationPressure, T, func(b Backend) (float64, error) {
		return b.SaturationPressure(a, T)
	})
}

// PseudoSaturationPressure returns the Dubinin pseudo-saturation
// pressure pc·(T/Tc)^k in Pa. Below the critical temperature the real
// saturation pressure is returned.
func (a *Adsorbate) PseudoSaturationPressure(T, k float64) (float64, error) {
	tc, err := a.Prop(TCritical)
	if err != nil {
		return math.NaN(), err
	}
	if T < tc {
		Log.WithField("adsorbate", a.Name).Warn("below critical temperature; returning the real saturation pressure")
		return a.SaturationPressure(T)
	}
	if k < 1 {
		return math.NaN(), errs.Parameter("the pseudo-saturation exponent k is too small (%g)", k)
	}
	pc, err := a.Prop(PCritical)
	if err != nil {
		return math.NaN(), err
	}
	return pc * math.Pow(T/tc, k), nil
}

// LiquidDensity returns the saturated liquid density at T in g/cm³.
func (a *Adsorbate) LiquidDensity(T float64) (float64, error) {
	return a.dynamic(StaticLiquidDensity, T, func(b Backend) (float64, error) {
		return b.LiquidDensity(a, T)
	})
}

// LiquidMolarDensity returns the saturated liquid density at T in mol/cm³.
func (a *Adsorbate) LiquidMolarDensity(T float64) (float64, error) {
	rho, err := a.LiquidDensity(T)
	if err != nil {
		return math.NaN(), err
	}
	m, err := a.MolarMass()
	return rho / m, err
}

// GasDensity returns the saturated vapour density at T in g/cm³.
func (a *Adsorbate) GasDensity(T float64) (float64, error) {
	return a.dynamic(StaticGasDensity, T, func(b Backend) (float64, error) {
		return b.GasDensity(a, T)
	})
}

// GasMolarDensity returns the saturated vapour density at T in mol/cm³.
func (a *Adsorbate) GasMolarDensity(T float64) (float64, error) {
	rho, err := a.GasDensity(T)
	if err != nil {
		return math.NaN(), err
	}
	m, err := a.MolarMass()
	return rho / m, err
}

// SurfaceTension returns the liquid surface tension at T in N/m.
func (a *Adsorbate) SurfaceTension(T float64) (float64, error) {
	return a.dynamic(StaticSurfaceTension, T, func(b Backend) (float64, error) {
		return b.SurfaceTension(a, T)
	})
}

// EnthalpyVaporisation returns the enthalpy of vaporisation at T in kJ/mol.
func (a *Adsorbate) EnthalpyVaporisation(T float64) (float64, error) {
	return a.dynamic(StaticEnthalpyVaporisation, T, func(b Backend) (float64, error) {
		return b.EnthalpyVaporisation(a, T)
	})
}

// BoilingTemperature returns the temperature in K at which the
// saturation pressure equals P [Pa].
func (a *Adsorbate) BoilingTemperature(P float64) (float64, error) {
	if !(P > 0) {
		return math.NaN(), errs.Parameter("pressure must be positive, not %g Pa", P)
	}
	tc, err := a.Prop(TCritical)
	if err != nil {
		return math.NaN(), err
	}
	f := func(T float64) float64 {
		ps, err := a.SaturationPressure(T)
		if err != nil {
			return math.NaN()
		}
		return math.Log(ps / P)
	}
	T, err := numeric.Root(f, 0.3*tc, tc*(1-1e-9), 1e-9, 200)
	if err != nil {
		return math.NaN(), errs.Calculation("%s has no saturation temperature at %g Pa: %v", a.Name, P, err)
	}
	return T, nil
}

// Compressibility returns the compressibility factor of the vapour at
// T [K] and P [Pa] from the Peng-Robinson equation of state.
func (a *Adsorbate) Compressibility(T, P float64) (float64, error) {
	p, err := props(a, TCritical, PCritical, AcentricFactor)
	if err != nil {
		return math.NaN(), err
	}
	return pengRobinsonVapourZ(T, P, p[0], p[1], p[2])
}

// CrossSectionalArea returns the molecular cross-section in nm².
func (a *Adsorbate) CrossSectionalArea() (float64, error) { return a.Prop(CrossSectionalArea) }
