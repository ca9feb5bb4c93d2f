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
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spatialmodel/adsorb"
	"github.com/spatialmodel/adsorb/internal/errs"
	"github.com/spf13/cast"
)

// Section markers of the CSV format.
const (
	csvData  = "data:[pressure,loading,branch,(otherdata)]"
	csvModel = "model:[name and parameters]"
)

// WriteCSV writes iso as CSV: a block of key,value header rows, a
// section marker and then either a data table with a header row or
// the model name, fit statistics and parameters.
func WriteCSV(w io.Writer, iso adsorb.Isotherm) error {
	d, err := encode(iso)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	cw := csv.NewWriter(bw)
	for _, k := range sortedKeys(d.header) {
		if err := cw.Write([]string{k, cellString(d.header[k])}); err != nil {
			return err
		}
	}
	cw.Flush()
	switch {
	case d.points != nil:
		fmt.Fprintln(bw, csvData)
		p := d.points
		cols := p.columns()
		if err := cw.Write(cols); err != nil {
			return err
		}
		for i := range p.pressure {
			rec := []string{formatFloat(p.pressure[i]), formatFloat(p.loading[i]), branchName(p.des != nil && p.des[i])}
			for _, k := range cols[3:] {
				rec = append(rec, formatFloat(p.other[k][i]))
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	case d.model != nil:
		fmt.Fprintln(bw, csvModel)
		m := d.model
		rows := [][]string{
			{"name", cellString(m["name"])},
			{"rmse", cellString(m["rmse"])},
			append([]string{"pressure_range"}, rangeCells(m["pressure_range"])...),
			append([]string{"loading_range"}, rangeCells(m["loading_range"])...),
		}
		params := cast.ToStringMap(m["parameters"])
		for _, k := range sortedKeys(params) {
			rows = append(rows, []string{k, cellString(params[k])})
		}
		if err := cw.WriteAll(rows); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errs.Parameter("writing CSV isotherm: %v", err)
	}
	return bw.Flush()
}

// ReadCSV reads an isotherm written by WriteCSV.
func ReadCSV(r io.Reader) (adsorb.Isotherm, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	recs, err := cr.ReadAll()
	if err != nil {
		return nil, errs.Parameter("could not parse CSV isotherm: %v", err)
	}
	d := &document{header: make(map[string]interface{})}
	i := 0
	for ; i < len(recs); i++ {
		rec := recs[i]
		if strings.HasPrefix(rec[0], "data") || strings.HasPrefix(rec[0], "model") {
			break
		}
		if len(rec) != 2 {
			return nil, errs.Parameter("CSV isotherm header row %v must hold a key and a value", rec)
		}
		d.header[strings.TrimSpace(rec[0])] = parseCell(rec[1])
	}
	if i == len(recs) {
		return d.isotherm()
	}
	section, body := recs[i][0], recs[i+1:]
	if strings.HasPrefix(section, "data") {
		if d.points, err = csvTable(body); err != nil {
			return nil, err
		}
	} else {
		if d.model, err = csvModelRows(body); err != nil {
			return nil, err
		}
	}
	return d.isotherm()
}

// csvTable parses a data table whose first row names the columns. The
// first two columns are the pressure and loading.
func csvTable(recs [][]string) (*pointData, error) {
	if len(recs) < 2 {
		return nil, errs.Parameter("CSV isotherm data needs a header row and at least one point")
	}
	cols := recs[0]
	if len(cols) < 2 {
		return nil, errs.Parameter("CSV isotherm data needs pressure and loading columns")
	}
	n := len(recs) - 1
	p := &pointData{
		pressure: make([]float64, n),
		loading:  make([]float64, n),
		other:    make(map[string][]float64),
	}
	branchCol := -1
	for j, c := range cols {
		c = strings.TrimSpace(c)
		switch {
		case c == keyBranch:
			branchCol = j
			p.des = make([]bool, n)
		case j >= 2:
			p.other[c] = make([]float64, n)
		}
	}
	for i, rec := range recs[1:] {
		if len(rec) != len(cols) {
			return nil, errs.Parameter("CSV isotherm data row %d has %d columns, want %d", i+1, len(rec), len(cols))
		}
		for j, s := range rec {
			if j == branchCol {
				p.des[i] = parseBranch(s)
				continue
			}
			f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, errs.Parameter("CSV isotherm data row %d: %q is not a number", i+1, s)
			}
			switch j {
			case 0:
				p.pressure[i] = f
			case 1:
				p.loading[i] = f
			default:
				p.other[strings.TrimSpace(cols[j])][i] = f
			}
		}
	}
	return p, nil
}

// csvModelRows parses the model section.
func csvModelRows(recs [][]string) (map[string]interface{}, error) {
	m := map[string]interface{}{}
	params := map[string]interface{}{}
	for _, rec := range recs {
		if len(rec) < 2 {
			return nil, errs.Parameter("CSV isotherm model row %v has no value", rec)
		}
		k := strings.TrimSpace(rec[0])
		switch k {
		case "name":
			m[k] = strings.TrimSpace(rec[1])
		case "rmse":
			m[k] = parseCell(rec[1])
		case "pressure_range", "loading_range", "pressure range", "loading range":
			if len(rec) != 3 {
				return nil, errs.Parameter("CSV isotherm model %s needs 2 values", k)
			}
			m[strings.Replace(k, " ", "_", 1)] = []interface{}{parseCell(rec[1]), parseCell(rec[2])}
		default:
			params[k] = parseCell(rec[1])
		}
	}
	m["parameters"] = params
	return m, nil
}

// cellString formats a header value.
func cellString(v interface{}) string {
	if f, ok := v.(float64); ok {
		return formatFloat(f)
	}
	return cast.ToString(v)
}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

func rangeCells(v interface{}) []string {
	s := cast.ToSlice(v)
	if f, ok := v.([]float64); ok {
		s = []interface{}{f[0], f[1]}
	}
	o := make([]string, len(s))
	for i, x := range s {
		o[i] = cellString(x)
	}
	return o
}

// parseCell converts a text cell into a number or a boolean where it
// reads as one.
func parseCell(s string) interface{} {
	s = strings.TrimSpace(s)
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}
