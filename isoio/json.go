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

package isoio

import (
	"encoding/json"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/spatialmodel/adsorb"
	"github.com/spatialmodel/adsorb/internal/errs"
	"github.com/spatialmodel/adsorb/units"
	"github.com/spf13/cast"
)

// Format selects a dialect of the JSON format.
type Format int

// JSON dialects.
const (
	// FormatAdsorb is the native format, written by WriteJSON.
	FormatAdsorb Format = iota

	// FormatNIST is the format of the NIST ISODB.
	FormatNIST
)

// ParseFormat parses "" or "adsorb" and "nist".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "adsorb":
		return FormatAdsorb, nil
	case "nist":
		return FormatNIST, nil
	}
	return FormatAdsorb, errs.Parameter("JSON format %q is not an option; viable formats are [adsorb nist]", s)
}

// WriteJSON writes iso as a JSON document with sorted keys.
func WriteJSON(w io.Writer, iso adsorb.Isotherm) error {
	d, err := encode(iso)
	if err != nil {
		return err
	}
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	if err := e.Encode(d.toMap()); err != nil {
		return errs.Parameter("writing JSON isotherm: %v", err)
	}
	return nil
}

// ReadJSON reads an isotherm from a JSON document.
func ReadJSON(r io.Reader, f Format) (adsorb.Isotherm, error) {
	var raw map[string]interface{}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errs.Parameter("could not parse JSON isotherm: %v", err)
	}
	if f == FormatNIST {
		var err error
		if raw, err = fromNIST(raw); err != nil {
			return nil, err
		}
	}
	d, err := fromMap(raw)
	if err != nil {
		return nil, err
	}
	return d.isotherm()
}

// toMap returns the document as a tree of maps and slices, the form
// shared by the JSON and YAML formats. Only desorption points carry a
// branch key.
func (d *document) toMap() map[string]interface{} {
	o := make(map[string]interface{}, len(d.header)+1)
	for k, v := range d.header {
		o[k] = v
	}
	if d.model != nil {
		o[keyModel] = d.model
	}
	if p := d.points; p != nil {
		keys := p.otherKeys()
		recs := make([]map[string]interface{}, len(p.pressure))
		for i := range recs {
			rec := map[string]interface{}{keyPressure: p.pressure[i], keyLoading: p.loading[i]}
			if p.des != nil && p.des[i] {
				rec[keyBranch] = adsorb.Desorption.String()
			}
			for _, k := range keys {
				rec[k] = p.other[k][i]
			}
			recs[i] = rec
		}
		o[keyData] = recs
	}
	return o
}

// fromMap is the inverse of toMap. Branch flags are guessed when no
// record has a branch key. Auxiliary values missing from a record are
// NaN.
func fromMap(raw map[string]interface{}) (*document, error) {
	d := &document{header: make(map[string]interface{}, len(raw))}
	for k, v := range raw {
		if k != keyData && k != keyModel {
			d.header[k] = v
		}
	}
	if m, ok := raw[keyModel]; ok && m != nil {
		mm, err := cast.ToStringMapE(m)
		if err != nil {
			return nil, errs.Parameter("%s: %v", keyModel, err)
		}
		d.model = mm
	}
	data, ok := raw[keyData]
	if !ok || data == nil {
		return d, nil
	}
	recs, err := cast.ToSliceE(data)
	if err != nil {
		return nil, errs.Parameter("%s: %v", keyData, err)
	}
	p := &pointData{
		pressure: make([]float64, len(recs)),
		loading:  make([]float64, len(recs)),
		other:    make(map[string][]float64),
	}
	des := make([]bool, len(recs))
	hasBranch := false
	for i, r := range recs {
		rec, err := cast.ToStringMapE(r)
		if err != nil {
			return nil, errs.Parameter("%s record %d: %v", keyData, i, err)
		}
		for k, v := range rec {
			if k == keyBranch {
				hasBranch = true
				des[i] = parseBranch(v)
				continue
			}
			f, err := cast.ToFloat64E(v)
			if err != nil {
				return nil, errs.Parameter("%s record %d: %s value %v is not a number", keyData, i, k, v)
			}
			switch k {
			case keyPressure:
				p.pressure[i] = f
			case keyLoading:
				p.loading[i] = f
			default:
				col, ok := p.other[k]
				if !ok {
					col = make([]float64, len(recs))
					for j := range col {
						col[j] = math.NaN()
					}
					p.other[k] = col
				}
				col[i] = f
			}
		}
		if _, ok := rec[keyPressure]; !ok {
			return nil, errs.Parameter("%s record %d has no pressure", keyData, i)
		}
		if _, ok := rec[keyLoading]; !ok {
			return nil, errs.Parameter("%s record %d has no loading", keyData, i)
		}
	}
	if hasBranch {
		p.des = des
	}
	d.points = p
	return d, nil
}

// fromNIST converts a NIST ISODB document into the native layout.
func fromNIST(raw map[string]interface{}) (map[string]interface{}, error) {
	o := make(map[string]interface{}, len(raw))
	for k, v := range raw {
		switch k {
		case "adsorbent", "adsorbates", "adsorptionUnits", "pressureUnits", "category", "isotherm_type", keyData:
			continue
		}
		o[k] = v
	}
	o[keyVersion] = FileVersion

	adsorbent, err := cast.ToStringMapE(raw["adsorbent"])
	if err != nil {
		return nil, errs.Parameter("NIST isotherm adsorbent: %v", err)
	}
	o["material"] = adsorbent["name"]
	if h, ok := adsorbent["hashkey"]; ok {
		o["nist_hash"] = h
	}

	ads, err := cast.ToSliceE(raw["adsorbates"])
	if err != nil || len(ads) == 0 {
		return nil, errs.Parameter("NIST isotherm has no adsorbate")
	}
	if len(ads) > 1 {
		return nil, errs.Parameter("cannot read multicomponent NIST isotherms")
	}
	a, err := cast.ToStringMapE(ads[0])
	if err != nil {
		return nil, errs.Parameter("NIST isotherm adsorbate: %v", err)
	}
	o["adsorbate"] = strings.ToLower(cast.ToString(a["name"]))

	if err := nistLoadingUnits(cast.ToString(raw["adsorptionUnits"]), o); err != nil {
		return nil, err
	}
	pu := strings.TrimSpace(cast.ToString(raw["pressureUnits"]))
	if err := units.CheckPressureMode(units.Absolute, pu); err != nil {
		return nil, errs.Parameter("NIST isotherm cannot be parsed due to pressure unit %q", pu)
	}
	o["pressure_mode"] = string(units.Absolute)
	o["pressure_unit"] = pu
	if v, ok := raw["category"]; ok {
		o["iso_type"] = v
	}
	if v, ok := raw["isotherm_type"]; ok {
		o["iso_ref"] = v
	}

	if data, ok := raw[keyData]; ok {
		recs, err := cast.ToSliceE(data)
		if err != nil {
			return nil, errs.Parameter("NIST isotherm data: %v", err)
		}
		points := make([]interface{}, len(recs))
		for i, r := range recs {
			rec, err := cast.ToStringMapE(r)
			if err != nil {
				return nil, errs.Parameter("NIST isotherm record %d: %v", i, err)
			}
			points[i] = map[string]interface{}{
				keyPressure: rec["pressure"],
				keyLoading:  rec["total_adsorption"],
			}
		}
		o[keyData] = points
	}
	return o, nil
}

// nistLoadingUnits parses a NIST loading unit such as "mmol/g" or
// "wt%" into loading and material unit tags.
func nistLoadingUnits(s string, o map[string]interface{}) error {
	comp := strings.Split(strings.TrimSpace(s), "/")
	if len(comp) != 2 {
		if comp[0] != "wt%" {
			return errs.Parameter("NIST isotherm cannot be parsed due to loading unit %q", s)
		}
		comp = []string{"g", "g"}
	}
	lu, mu := strings.TrimSpace(comp[0]), strings.TrimSpace(comp[1])
	var lb units.LoadingBasis
	for _, b := range []units.LoadingBasis{units.Molar, units.Mass, units.VolumeGas} {
		if units.CheckLoading(b, lu) == nil {
			lb = b
			break
		}
	}
	if lb == "" {
		return errs.Parameter("NIST isotherm cannot be parsed due to loading unit %q", lu)
	}
	var mb units.MaterialBasis
	for _, b := range []units.MaterialBasis{units.MaterialMass, units.MaterialVolume, units.MaterialMolar} {
		if units.CheckMaterial(b, mu) == nil {
			mb = b
			break
		}
	}
	if mb == "" {
		return errs.Parameter("NIST isotherm cannot be parsed due to material unit %q", mu)
	}
	o["loading_basis"], o["loading_unit"] = string(lb), lu
	o["material_basis"], o["material_unit"] = string(mb), mu
	return nil
}

// sortedKeys returns the keys of m in order.
func sortedKeys(m map[string]interface{}) []string {
	o := make([]string, 0, len(m))
	for k := range m {
		o = append(o, k)
	}
	sort.Strings(o)
	return o
}
