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
	"io"

	"github.com/spatialmodel/adsorb"
	"github.com/spatialmodel/adsorb/internal/errs"
	"gopkg.in/yaml.v3"
)

// WriteYAML writes iso as a YAML document with the same layout as
// WriteJSON.
func WriteYAML(w io.Writer, iso adsorb.Isotherm) error {
	d, err := encode(iso)
	if err != nil {
		return err
	}
	e := yaml.NewEncoder(w)
	e.SetIndent(2)
	if err := e.Encode(d.toMap()); err != nil {
		return errs.Parameter("writing YAML isotherm: %v", err)
	}
	return e.Close()
}

// ReadYAML reads an isotherm from a YAML document.
func ReadYAML(r io.Reader) (adsorb.Isotherm, error) {
	var raw map[string]interface{}
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errs.Parameter("could not parse YAML isotherm: %v", err)
	}
	d, err := fromMap(raw)
	if err != nil {
		return nil, err
	}
	return d.isotherm()
}
