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
	"os"
	"path/filepath"
	"strings"

	"github.com/spatialmodel/adsorb"
	"github.com/spatialmodel/adsorb/internal/errs"
)

// Read reads an isotherm in the format named by ext, which is a file
// extension such as ".json" or a bare format name such as "yaml".
func Read(r io.Reader, ext string) (adsorb.Isotherm, error) {
	switch strings.TrimPrefix(strings.ToLower(ext), ".") {
	case "json":
		return ReadJSON(r, FormatAdsorb)
	case "nist":
		return ReadJSON(r, FormatNIST)
	case "csv":
		return ReadCSV(r)
	case "yaml", "yml":
		return ReadYAML(r)
	case "xlsx":
		return ReadExcel(r)
	}
	return nil, errs.Parameter("isotherm format %q is not an option; viable formats are [json nist csv yaml xlsx]", ext)
}

// Write writes an isotherm in the format named by ext.
func Write(w io.Writer, iso adsorb.Isotherm, ext string) error {
	switch strings.TrimPrefix(strings.ToLower(ext), ".") {
	case "json":
		return WriteJSON(w, iso)
	case "csv":
		return WriteCSV(w, iso)
	case "yaml", "yml":
		return WriteYAML(w, iso)
	case "xlsx":
		return WriteExcel(w, iso)
	}
	return errs.Parameter("isotherm format %q is not an option; viable formats are [json csv yaml xlsx]", ext)
}

// ReadFile reads an isotherm from a file, choosing the format by the
// file extension.
func ReadFile(path string) (adsorb.Isotherm, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Parameter("opening isotherm: %v", err)
	}
	defer f.Close()
	iso, err := Read(f, filepath.Ext(path))
	if err != nil {
		return nil, errs.Wrap(errs.ErrParameter, err, "reading %s", path)
	}
	return iso, nil
}

// WriteFile writes an isotherm to a file, choosing the format by the
// file extension.
func WriteFile(path string, iso adsorb.Isotherm) error {
	f, err := os.Create(path)
	if err != nil {
		return errs.Parameter("creating isotherm file: %v", err)
	}
	if err := Write(f, iso, filepath.Ext(path)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
