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
	"io/ioutil"
	"strings"

	"github.com/spatialmodel/adsorb"
	"github.com/spatialmodel/adsorb/internal/errs"
	"github.com/spf13/cast"
	"github.com/tealeg/xlsx"
)

// Excel sheet names.
const (
	sheetProperties = "properties"
	sheetData       = "data"
	sheetModel      = "model"
)

// WriteExcel writes iso as an Excel workbook. The sheet "properties"
// holds the header as key/value rows. A point isotherm adds a sheet
// "data" with a column table, and a model isotherm a sheet "model"
// with the same rows as the CSV model section.
func WriteExcel(w io.Writer, iso adsorb.Isotherm) error {
	d, err := encode(iso)
	if err != nil {
		return err
	}
	f := xlsx.NewFile()
	props, err := f.AddSheet(sheetProperties)
	if err != nil {
		return errs.Parameter("writing Excel isotherm: %v", err)
	}
	for _, k := range sortedKeys(d.header) {
		addRow(props, k, d.header[k])
	}
	switch {
	case d.points != nil:
		sh, err := f.AddSheet(sheetData)
		if err != nil {
			return errs.Parameter("writing Excel isotherm: %v", err)
		}
		p := d.points
		cols := p.columns()
		head := make([]interface{}, len(cols))
		for i, c := range cols {
			head[i] = c
		}
		addRow(sh, head...)
		for i := range p.pressure {
			row := []interface{}{p.pressure[i], p.loading[i], branchName(p.des != nil && p.des[i])}
			for _, k := range cols[3:] {
				row = append(row, p.other[k][i])
			}
			addRow(sh, row...)
		}
	case d.model != nil:
		sh, err := f.AddSheet(sheetModel)
		if err != nil {
			return errs.Parameter("writing Excel isotherm: %v", err)
		}
		m := d.model
		addRow(sh, "name", m["name"])
		addRow(sh, "rmse", m["rmse"])
		for _, k := range []string{"pressure_range", "loading_range"} {
			r := rangeCells(m[k])
			addRow(sh, k, r[0], r[1])
		}
		params := cast.ToStringMap(m["parameters"])
		for _, k := range sortedKeys(params) {
			addRow(sh, k, params[k])
		}
	}
	if err := f.Write(w); err != nil {
		return errs.Parameter("writing Excel isotherm: %v", err)
	}
	return nil
}

func addRow(sh *xlsx.Sheet, vals ...interface{}) {
	row := sh.AddRow()
	for _, v := range vals {
		c := row.AddCell()
		switch x := v.(type) {
		case float64:
			c.SetFloat(x)
		case string:
			c.SetString(x)
		default:
			c.SetString(cast.ToString(x))
		}
	}
}

// ReadExcel reads an isotherm written by WriteExcel.
func ReadExcel(r io.Reader) (adsorb.Isotherm, error) {
	b, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, errs.Parameter("reading Excel isotherm: %v", err)
	}
	f, err := xlsx.OpenBinary(b)
	if err != nil {
		return nil, errs.Parameter("opening Excel isotherm: %v", err)
	}
	props, ok := f.Sheet[sheetProperties]
	if !ok {
		return nil, errs.Parameter("reading Excel isotherm: no sheet %s", sheetProperties)
	}
	d := &document{header: make(map[string]interface{})}
	for i, rec := range sheetRows(props) {
		if len(rec) < 2 {
			return nil, errs.Parameter("reading Excel isotherm: property row %d has no value", i+1)
		}
		d.header[rec[0]] = parseCell(rec[1])
	}
	if sh, ok := f.Sheet[sheetData]; ok {
		if d.points, err = csvTable(sheetRows(sh)); err != nil {
			return nil, err
		}
	} else if sh, ok := f.Sheet[sheetModel]; ok {
		if d.model, err = csvModelRows(sheetRows(sh)); err != nil {
			return nil, err
		}
	}
	return d.isotherm()
}

// sheetRows returns the non-empty rows of a sheet as trimmed text,
// without trailing empty cells.
func sheetRows(sh *xlsx.Sheet) [][]string {
	var o [][]string
	for _, row := range sh.Rows {
		if row == nil {
			continue
		}
		rec := make([]string, 0, len(row.Cells))
		for _, c := range row.Cells {
			rec = append(rec, strings.TrimSpace(c.Value))
		}
		for len(rec) > 0 && rec[len(rec)-1] == "" {
			rec = rec[:len(rec)-1]
		}
		if len(rec) > 0 {
			o = append(o, rec)
		}
	}
	return o
}
