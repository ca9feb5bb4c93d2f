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

// Package isoio reads and writes isotherms: JSON (including the NIST
// ISODB flavour), CSV, YAML and Excel files, the NIST ISODB web API and
// a PostgreSQL isotherm store. It also renders PDF result reports.
//
// Every format shares one document model. A header holds the isotherm
// identity, its unit tags and any user properties. It is followed
// either by a table of points (pressure, loading, branch and
// auxiliary columns) or by a persisted model.
package isoio

import (
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/adsorb"
	"github.com/spatialmodel/adsorb/internal/errs"
	"github.com/spatialmodel/adsorb/modelling"
	"github.com/spatialmodel/adsorb/units"
	"github.com/spf13/cast"
)

// FileVersion is the version written to every file.
const FileVersion = "2.0"

// Log receives parser warnings.
var Log logrus.FieldLogger = logrus.StandardLogger()

// Reserved header and column names.
const (
	keyVersion  = "file_version"
	keyData     = "isotherm_data"
	keyModel    = "isotherm_model"
	keyBranch   = "branch"
	keyPressure = "pressure"
	keyLoading  = "loading"
)

// metaKeys are the header keys that map onto adsorb.Metadata fields.
var metaKeys = map[string]bool{
	"material": true, "material_batch": true, "adsorbate": true,
	"temperature": true, "temperature_unit": true,
	"pressure_mode": true, "pressure_unit": true,
	"loading_basis": true, "loading_unit": true,
	"material_basis": true, "material_unit": true,
	"pseudo_saturation": true,
	keyVersion:        true, keyBranch: true,
}

// legacyKeys are renamed on reading.
var legacyKeys = map[string]string{
	"adsorbent_basis": "material_basis",
	"adsorbent_unit":  "material_unit",
}

// document is the format-independent form of an isotherm.
type document struct {
	header map[string]interface{}
	points *pointData
	model  map[string]interface{}
}

// pointData is the table of a point isotherm in its native units.
type pointData struct {
	pressure, loading []float64
	des               []bool // nil when the source has no branch column.
	other             map[string][]float64
}

func (p *pointData) otherKeys() []string {
	o := make([]string, 0, len(p.other))
	for k := range p.other {
		o = append(o, k)
	}
	sort.Strings(o)
	return o
}

// columns returns the table column names.
func (p *pointData) columns() []string {
	return append([]string{keyPressure, keyLoading, keyBranch}, p.otherKeys()...)
}

// encode converts an isotherm into a document.
func encode(iso adsorb.Isotherm) (*document, error) {
	d := &document{header: headerOf(iso.Meta())}
	switch v := iso.(type) {
	case *adsorb.PointIsotherm:
		q := adsorb.Query{}
		p, err := v.Pressure(q)
		if err != nil {
			return nil, err
		}
		n, err := v.Loading(q)
		if err != nil {
			return nil, err
		}
		d.points = &pointData{pressure: p, loading: n, des: v.Branches(), other: make(map[string][]float64)}
		for _, k := range v.OtherKeys() {
			if d.points.other[k], err = v.OtherData(k, q); err != nil {
				return nil, err
			}
		}
	case *adsorb.ModelIsotherm:
		d.model = v.Model.ToMap()
		d.header[keyBranch] = v.Branch.String()
	default:
		return nil, errs.Parameter("cannot write an isotherm of type %T", iso)
	}
	return d, nil
}

// headerOf returns the header of an isotherm: the file version, the
// identity and unit fields and the user properties.
func headerOf(m *adsorb.Metadata) map[string]interface{} {
	h := make(map[string]interface{}, len(m.Properties)+12)
	for k, v := range m.Properties {
		h[k] = v
	}
	h[keyVersion] = FileVersion
	h["material"] = m.Material
	if m.MaterialBatch != "" {
		h["material_batch"] = m.MaterialBatch
	}
	h["adsorbate"] = m.Adsorbate
	h["temperature"] = m.Temperature
	h["pressure_mode"] = string(m.PressureMode)
	if m.PressureUnit != "" {
		h["pressure_unit"] = m.PressureUnit
	}
	h["loading_basis"] = string(m.LoadingBasis)
	if m.LoadingUnit != "" {
		h["loading_unit"] = m.LoadingUnit
	}
	h["material_basis"] = string(m.MaterialBasis)
	h["material_unit"] = m.MaterialUnit
	if m.PseudoSaturation {
		h["pseudo_saturation"] = true
	}
	return h
}

// metadataOf builds isotherm metadata from a header. Keys that are not
// metadata fields become user properties.
func metadataOf(h map[string]interface{}) (adsorb.Metadata, error) {
	for old, key := range legacyKeys {
		if v, ok := h[old]; ok {
			if _, ok := h[key]; !ok {
				h[key] = v
			}
			delete(h, old)
			Log.WithField("key", old).Warnf("%s was replaced with %s", old, key)
		}
	}
	checkVersion(h[keyVersion])
	str := func(k string) string {
		s, _ := cast.ToStringE(h[k])
		return strings.TrimSpace(s)
	}
	m := adsorb.Metadata{
		Material:      str("material"),
		MaterialBatch: str("material_batch"),
		Adsorbate:     str("adsorbate"),
		Units: adsorb.Units{
			PressureMode:  units.PressureMode(str("pressure_mode")),
			PressureUnit:  str("pressure_unit"),
			LoadingBasis:  units.LoadingBasis(str("loading_basis")),
			LoadingUnit:   str("loading_unit"),
			MaterialBasis: units.MaterialBasis(str("material_basis")),
			MaterialUnit:  str("material_unit"),
		},
	}
	var err error
	if m.Temperature, err = cast.ToFloat64E(h["temperature"]); err != nil {
		return m, errs.Parameter("isotherm temperature %v is not a number", h["temperature"])
	}
	if tu := str("temperature_unit"); tu != "" {
		if m.Temperature, err = units.ConvertTemperature(m.Temperature, tu, "K"); err != nil {
			return m, err
		}
	}
	if v, ok := h["pseudo_saturation"]; ok {
		if m.PseudoSaturation, err = cast.ToBoolE(v); err != nil {
			return m, errs.Parameter("pseudo_saturation %v is not a boolean", v)
		}
	}
	def := adsorb.DefaultUnits()
	if m.PressureMode == "" {
		m.PressureMode, m.PressureUnit = def.PressureMode, def.PressureUnit
	}
	if m.LoadingBasis == "" {
		m.LoadingBasis, m.LoadingUnit = def.LoadingBasis, def.LoadingUnit
	}
	if m.MaterialBasis == "" {
		m.MaterialBasis, m.MaterialUnit = def.MaterialBasis, def.MaterialUnit
	}
	for k, v := range h {
		if metaKeys[k] || k == keyData || k == keyModel {
			continue
		}
		if m.Properties == nil {
			m.Properties = make(map[string]interface{})
		}
		m.Properties[k] = v
	}
	return m, m.Check()
}

func checkVersion(v interface{}) {
	f, err := cast.ToFloat64E(v)
	if v == nil || err != nil || f < 2 {
		Log.WithField(keyVersion, v).Warnf("the file version is %v while the parser uses version %s; "+
			"double check the data", v, FileVersion)
	}
}

// isotherm builds the isotherm a document describes.
func (d *document) isotherm() (adsorb.Isotherm, error) {
	meta, err := metadataOf(d.header)
	if err != nil {
		return nil, err
	}
	switch {
	case d.points != nil:
		var opts []adsorb.PointOption
		if d.points.des != nil {
			opts = append(opts, adsorb.WithBranches(d.points.des))
		}
		for _, k := range d.points.otherKeys() {
			opts = append(opts, adsorb.WithOther(k, d.points.other[k]))
		}
		return adsorb.NewPointIsotherm(meta, d.points.pressure, d.points.loading, opts...)
	case d.model != nil:
		m, err := modelling.FromMap(d.model, meta.Temperature)
		if err != nil {
			return nil, err
		}
		b, err := adsorb.ParseBranch(cast.ToString(d.header[keyBranch]))
		if err != nil {
			return nil, err
		}
		return adsorb.NewModelIsotherm(meta, m, b)
	}
	return nil, errs.Parameter("the file holds neither isotherm data nor a model")
}

// parseBranch reads a branch cell: "des" (or true, or 1) marks a
// desorption point and anything else an adsorption point.
func parseBranch(v interface{}) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		b, err := adsorb.ParseBranch(strings.TrimSpace(x))
		return err == nil && b == adsorb.Desorption
	}
	b, _ := cast.ToBoolE(v)
	return b
}

func branchName(des bool) string {
	if des {
		return adsorb.Desorption.String()
	}
	return adsorb.Adsorption.String()
}
