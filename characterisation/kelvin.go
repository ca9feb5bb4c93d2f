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
	"math"
	"strings"

	"github.com/spatialmodel/adsorb"
	"github.com/spatialmodel/adsorb/adsorbate"
	"github.com/spatialmodel/adsorb/internal/errs"
)

// Geometry is the shape of a pore.
type Geometry string

// Pore geometries.
const (
	Slit     Geometry = "slit"
	Cylinder Geometry = "cylinder"
	Sphere   Geometry = "sphere"
)

// ParseGeometry parses a pore geometry name.
func ParseGeometry(s string) (Geometry, error) {
	switch g := Geometry(strings.ToLower(s)); g {
	case Slit, Cylinder, Sphere:
		return g, nil
	}
	return "", errs.Parameter("pore geometry %q is not an option; viable geometries are %v", s, []Geometry{Slit, Cylinder, Sphere})
}

// Meniscus is the shape of the liquid-vapour interface in a pore.
type Meniscus string

// Meniscus geometries.
const (
	Cylindrical     Meniscus = "cylindrical"
	Hemispherical   Meniscus = "hemispherical"
	Hemicylindrical Meniscus = "hemicylindrical"
)

// factor returns the curvature factor of the meniscus.
func (m Meniscus) factor() (float64, error) {
	switch m {
	case Cylindrical:
		return 2, nil
	case Hemispherical:
		return 1, nil
	case Hemicylindrical:
		return 0.5, nil
	}
	return 0, errs.Parameter("meniscus geometry %q is not an option; viable geometries are %v", m,
		[]Meniscus{Cylindrical, Hemispherical, Hemicylindrical})
}

// MeniscusGeometry returns the meniscus that forms in a pore of the
// given geometry on a branch: condensation in a cylinder has a
// cylindrical meniscus and evaporation a hemispherical one.
func MeniscusGeometry(b adsorb.Branch, g Geometry) (Meniscus, error) {
	switch b {
	case adsorb.Adsorption:
		switch g {
		case Cylinder:
			return Cylindrical, nil
		case Sphere:
			return Hemispherical, nil
		case Slit:
			return Hemicylindrical, nil
		}
	case adsorb.Desorption:
		switch g {
		case Cylinder, Sphere:
			return Hemispherical, nil
		case Slit:
			return Hemicylindrical, nil
		}
	default:
		return "", errs.Parameter("the branch must be either ads or des, not %s", b)
	}
	return "", errs.Parameter("pore geometry %q is not an option; viable geometries are %v", g, []Geometry{Slit, Cylinder, Sphere})
}

// Condensate holds the properties of the condensed adsorbate used by
// the Kelvin equation.
type Condensate struct {
	Temperature    float64 // K
	LiquidDensity  float64 // g/cm³
	MolarMass      float64 // g/mol
	SurfaceTension float64 // N/m
}

// CondensateOf looks up the condensate properties of an adsorbate.
func CondensateOf(a *adsorbate.Adsorbate, T float64) (Condensate, error) {
	c := Condensate{Temperature: T}
	var err error
	if c.LiquidDensity, err = a.LiquidDensity(T); err != nil {
		return c, err
	}
	if c.MolarMass, err = a.MolarMass(); err != nil {
		return c, err
	}
	if c.SurfaceTension, err = a.SurfaceTension(T); err != nil {
		return c, err
	}
	return c, nil
}

// length returns 2σVm/RT in nm.
func (c Condensate) length() float64 {
	vm := c.MolarMass / c.LiquidDensity // cm³/mol
	// N/m · cm³/mol / (J/mol) = 1e-6 m = 1e3 nm.
	return 2 * c.SurfaceTension * vm / (adsorbate.R * c.Temperature) * 1e3
}

// Kelvin returns the critical condensation radius in nm at relative
// pressure p.
type Kelvin func(p float64, m Meniscus, c Condensate) (float64, error)

// KelvinRadius is the standard Kelvin equation,
// ln(p) = −2σVm/(f·r·RT), with f the meniscus curvature factor.
func KelvinRadius(p float64, m Meniscus, c Condensate) (float64, error) {
	f, err := m.factor()
	if err != nil {
		return math.NaN(), err
	}
	return -c.length() / (f * math.Log(p)), nil
}

// KelvinKJS is the Kelvin equation with the Kruk-Jaroniec-Sayari
// correction of 0.3 nm, valid for cylindrical menisci only.
func KelvinKJS(p float64, m Meniscus, c Condensate) (float64, error) {
	if m != Cylindrical {
		return math.NaN(), errs.Parameter("the KJS Kelvin correction applies to cylindrical menisci only, not %s", m)
	}
	return -c.length()/math.Log(p) + 0.3, nil
}

// KelvinModel returns the named Kelvin model: "Kelvin" or "Kelvin-KJS".
func KelvinModel(name string) (Kelvin, error) {
	switch strings.ToLower(name) {
	case "kelvin", "":
		return KelvinRadius, nil
	case "kelvin-kjs", "kjs":
		return KelvinKJS, nil
	}
	return nil, errs.Parameter("kelvin model %q is not an option; viable models are [Kelvin Kelvin-KJS]", name)
}
