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

package adsorbate

import (
	"math"
	"strings"

	"github.com/spatialmodel/adsorb/internal/errs"
)

// Material is an adsorbent.
type Material struct {
	Name       string             `toml:"name" json:"name" yaml:"name"`
	Batch      string             `toml:"batch" json:"batch,omitempty" yaml:"batch,omitempty"`
	Properties map[string]float64 `toml:"properties" json:"properties,omitempty" yaml:"properties,omitempty"`
}

func (m *Material) String() string {
	if m.Batch == "" {
		return m.Name
	}
	return m.Name + " " + m.Batch
}

// Density returns the material density in g/cm³.
func (m *Material) Density() (float64, error) {
	v, ok := m.Properties["density"]
	if !ok {
		return math.NaN(), errs.Missing("material %q does not have a density", m.Name)
	}
	return v, nil
}

// MolarMass returns the material molar mass in g/mol.
func (m *Material) MolarMass() (float64, error) {
	v, ok := m.Properties["molar_mass"]
	if !ok {
		return math.NaN(), errs.Missing("material %q does not have a molar mass", m.Name)
	}
	return v, nil
}

func materialKey(name, batch string) string {
	return strings.ToLower(strings.TrimSpace(name)) + "\x00" + strings.ToLower(strings.TrimSpace(batch))
}

// RegisterMaterial adds a material.
func (r *Registry) RegisterMaterial(m *Material) error {
	if m == nil || m.Name == "" {
		return errs.Parameter("a material must have a name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return errs.Parameter("registry is frozen; cannot register material %q", m.Name)
	}
	k := materialKey(m.Name, m.Batch)
	if _, ok := r.materials[k]; ok {
		return errs.Parameter("material %q already registered", m)
	}
	if m.Properties == nil {
		m.Properties = make(map[string]float64)
	}
	r.materials[k] = m
	return nil
}

// FindMaterial returns the material with the given name and batch. A
// material registered without a batch matches any batch.
func (r *Registry) FindMaterial(name, batch string) (*Material, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if m, ok := r.materials[materialKey(name, batch)]; ok {
		return m, nil
	}
	if m, ok := r.materials[materialKey(name, "")]; ok {
		return m, nil
	}
	return nil, errs.Parameter("material %q does not exist in the registry", name)
}

// LookupMaterial returns the named material, or a bare entry when the
// name is unknown.
func (r *Registry) LookupMaterial(name, batch string) *Material {
	if m, err := r.FindMaterial(name, batch); err == nil {
		return m
	}
	return &Material{Name: name, Batch: batch, Properties: map[string]float64{}}
}
