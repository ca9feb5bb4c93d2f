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

// Package adsorb holds gas adsorption isotherms: discrete data
// (PointIsotherm) and fitted models (ModelIsotherm), behind the common
// Isotherm accessor interface. Accessors convert values on the fly
// between pressure modes, loading bases and material bases using the
// properties in the adsorbate registry.
package adsorb

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/adsorb/adsorbate"
	"github.com/spatialmodel/adsorb/internal/errs"
	"github.com/spatialmodel/adsorb/units"
)

// Version gives the version number.
const Version = "1.0.0"

// Log receives warnings that do not change a result.
var Log logrus.FieldLogger = logrus.StandardLogger()

// Error kinds. Every error returned by this module wraps one of them.
var (
	ErrParameter        = errs.ErrParameter
	ErrCalculation      = errs.ErrCalculation
	ErrUnit             = errs.ErrUnit
	ErrMissingParameter = errs.ErrMissingParameter
)

// Branch selects the adsorption or desorption part of an isotherm.
type Branch int

// Branches. BranchAll selects every point.
const (
	BranchAll Branch = iota
	Adsorption
	Desorption
)

func (b Branch) String() string {
	switch b {
	case Adsorption:
		return "ads"
	case Desorption:
		return "des"
	}
	return "all"
}

// ParseBranch parses "ads", "des" or "all" (or "").
func ParseBranch(s string) (Branch, error) {
	switch strings.ToLower(s) {
	case "ads", "adsorption":
		return Adsorption, nil
	case "des", "desorption":
		return Desorption, nil
	case "", "all":
		return BranchAll, nil
	}
	return BranchAll, errs.Parameter("branch %q is not an option; viable branches are [ads des all]", s)
}

// single returns the branch used by point evaluations, which cannot
// span both branches.
func (b Branch) single() Branch {
	if b == BranchAll {
		return Adsorption
	}
	return b
}

// Units are the unit and basis tags of an isotherm. In a Query, empty
// fields keep the isotherm's own units.
type Units struct {
	PressureMode  units.PressureMode  `json:"pressure_mode,omitempty" yaml:"pressure_mode,omitempty"`
	PressureUnit  string              `json:"pressure_unit,omitempty" yaml:"pressure_unit,omitempty"`
	LoadingBasis  units.LoadingBasis  `json:"loading_basis,omitempty" yaml:"loading_basis,omitempty"`
	LoadingUnit   string              `json:"loading_unit,omitempty" yaml:"loading_unit,omitempty"`
	MaterialBasis units.MaterialBasis `json:"material_basis,omitempty" yaml:"material_basis,omitempty"`
	MaterialUnit  string              `json:"material_unit,omitempty" yaml:"material_unit,omitempty"`
}

// DefaultUnits are absolute pressure in bar and molar loading in mmol
// per gram of material.
func DefaultUnits() Units {
	return Units{
		PressureMode:  units.Absolute,
		PressureUnit:  "bar",
		LoadingBasis:  units.Molar,
		LoadingUnit:   "mmol",
		MaterialBasis: units.MaterialMass,
		MaterialUnit:  "g",
	}
}

// Check checks that every tag is consistent with its basis.
func (u Units) Check() error {
	if err := units.CheckPressureMode(u.PressureMode, u.PressureUnit); err != nil {
		return err
	}
	if err := units.CheckLoading(u.LoadingBasis, u.LoadingUnit); err != nil {
		return err
	}
	return units.CheckMaterial(u.MaterialBasis, u.MaterialUnit)
}

func (u Units) pressureSpec() units.Pressure { return units.Pressure{Mode: u.PressureMode, Unit: u.PressureUnit} }
func (u Units) loadingSpec() units.Loading { return units.Loading{Basis: u.LoadingBasis, Unit: u.LoadingUnit} }
func (u Units) materialSpec() units.Material {
	return units.Material{Basis: u.MaterialBasis, Unit: u.MaterialUnit}
}

func defaultLoadingUnit(b units.LoadingBasis) string {
	switch units.NormalizeLoadingBasis(b) {
	case units.Molar:
		return "mmol"
	case units.Mass:
		return "g"
	case units.VolumeGas, units.VolumeLiquid:
		return "cm3"
	}
	return ""
}

func defaultMaterialUnit(b units.MaterialBasis) string {
	switch b {
	case units.MaterialVolume:
		return "cm3"
	case units.MaterialMolar:
		return "mmol"
	}
	return "g"
}

// Resolve returns the units that a query with units q selects for an
// isotherm in units u.
func (u Units) Resolve(q Units) Units { return u.resolve(q) }

func (u Units) resolve(q Units) Units {
	t := u
	if q.PressureMode != "" && q.PressureMode != t.PressureMode {
		t.PressureMode = q.PressureMode
		t.PressureUnit = ""
		if t.PressureMode == units.Absolute {
			t.PressureUnit = "bar"
		}
	}
	if q.PressureUnit != "" && t.PressureMode == units.Absolute {
		t.PressureUnit = q.PressureUnit
	}
	if q.LoadingBasis != "" && units.NormalizeLoadingBasis(q.LoadingBasis) != units.NormalizeLoadingBasis(t.LoadingBasis) {
		t.LoadingBasis = q.LoadingBasis
		t.LoadingUnit = defaultLoadingUnit(q.LoadingBasis)
	}
	if q.LoadingUnit != "" {
		t.LoadingUnit = q.LoadingUnit
	}
	if q.MaterialBasis != "" && q.MaterialBasis != t.MaterialBasis {
		t.MaterialBasis = q.MaterialBasis
		t.MaterialUnit = defaultMaterialUnit(q.MaterialBasis)
	}
	if q.MaterialUnit != "" {
		t.MaterialUnit = q.MaterialUnit
	}
	return t
}

// Metadata identifies an isotherm and tags its units.
type Metadata struct {
	Material      string  `json:"material"`
	MaterialBatch string  `json:"material_batch,omitempty"`
	Adsorbate     string  `json:"adsorbate"`
	Temperature   float64 `json:"temperature"` // K
	Units

	// PseudoSaturation makes relative pressures of supercritical
	// adsorbates use the Dubinin pseudo-saturation pressure.
	PseudoSaturation bool `json:"pseudo_saturation,omitempty"`

	// Properties holds free-form user properties.
	Properties map[string]interface{} `json:"properties,omitempty"`

	ads *adsorbate.Adsorbate
	mat *adsorbate.Material
}

// Meta returns m.
func (m *Metadata) Meta() *Metadata { return m }

// Check validates the identity fields and unit tags.
func (m *Metadata) Check() error {
	if m.Material == "" {
		return errs.Parameter("an isotherm needs a material name")
	}
	if m.Adsorbate == "" {
		return errs.Parameter("an isotherm needs an adsorbate name")
	}
	if !(m.Temperature > 0) {
		return errs.Parameter("an isotherm needs a positive temperature in K, not %g", m.Temperature)
	}
	return m.Units.Check()
}

// AdsorbateInfo returns the registry entry of the adsorbate. Unknown
// adsorbates get a bare entry without properties.
func (m *Metadata) AdsorbateInfo() *adsorbate.Adsorbate {
	if m.ads == nil || !m.ads.Matches(m.Adsorbate) {
		m.ads = adsorbate.Lookup(m.Adsorbate)
	}
	return m.ads
}

// MaterialInfo returns the registry entry of the material.
func (m *Metadata) MaterialInfo() *adsorbate.Material {
	if m.mat == nil || m.mat.Name != m.Material || m.mat.Batch != m.MaterialBatch {
		m.mat = adsorbate.LookupMaterial(m.Material, m.MaterialBatch)
	}
	return m.mat
}

// props returns the physical context of a unit conversion.
func (m *Metadata) props(allowNegative bool) units.Props {
	p := units.Props{
		Temperature:      m.Temperature,
		AllowNegative:    allowNegative,
		PseudoSaturation: m.PseudoSaturation,
	}
	if m.Adsorbate != "" {
		p.Fluid = m.AdsorbateInfo()
	}
	if m.Material != "" {
		p.Solid = m.MaterialInfo()
	}
	return p
}

// pressureFactor converts native pressures into the units to.
func (m *Metadata) pressureFactor(to Units) (float64, error) {
	return units.PressureFactor(m.pressureSpec(), to.pressureSpec(), m.props(false))
}

// loadingFactor converts native loadings into the units to, including
// the change of material basis.
func (m *Metadata) loadingFactor(to Units) (float64, error) {
	return units.LoadingMaterialFactor(m.loadingSpec(), to.loadingSpec(), m.materialSpec(), to.materialSpec(), m.props(false))
}

// clone returns a copy of m with its own property map.
func (m Metadata) clone() Metadata {
	if m.Properties != nil {
		p := make(map[string]interface{}, len(m.Properties))
		for k, v := range m.Properties {
			p[k] = v
		}
		m.Properties = p
	}
	return m
}

// identity returns the canonical form of the metadata used in hashes.
func (m *Metadata) identity() []string {
	o := []string{
		"material=" + m.Material,
		"batch=" + m.MaterialBatch,
		"adsorbate=" + strings.ToLower(m.Adsorbate),
		"temperature=" + hashFloat(m.Temperature),
		fmt.Sprintf("units=%s|%s|%s|%s|%s|%s", m.PressureMode, m.PressureUnit,
			units.NormalizeLoadingBasis(m.LoadingBasis), m.LoadingUnit, m.MaterialBasis, m.MaterialUnit),
		fmt.Sprintf("pseudo=%v", m.PseudoSaturation),
	}
	keys := make([]string, 0, len(m.Properties))
	for k := range m.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := m.Properties[k]
		if f, ok := v.(float64); ok {
			o = append(o, k+"="+hashFloat(f))
			continue
		}
		o = append(o, fmt.Sprintf("%s=%v", k, v))
	}
	return o
}
