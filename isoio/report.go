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
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/spatialmodel/adsorb"
)

// Entry is one row of a report.
type Entry struct {
	Name  string
	Value string
}

// Report is a one-page PDF summary of a characterisation result.
type Report struct {
	Title string

	// Isotherm, if not nil, is described above the results.
	Isotherm adsorb.Isotherm

	Entries []Entry

	// Created is printed in the report header. The zero value prints
	// the current time.
	Created time.Time
}

// Entries flattens a result into report rows: one row per JSON field
// of v, with arrays summarised by their length and range.
func Entries(v interface{}) ([]Entry, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("isoio: preparing report: %v", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("isoio: preparing report: %v", err)
	}
	var o []Entry
	for _, k := range sortedKeys(m) {
		o = append(o, Entry{Name: k, Value: summarise(m[k])})
	}
	return o, nil
}

func summarise(v interface{}) string {
	switch x := v.(type) {
	case float64:
		return fmt.Sprintf("%.6g", x)
	case []interface{}:
		if len(x) == 0 {
			return "[]"
		}
		return fmt.Sprintf("%d values, %s to %s", len(x), summarise(x[0]), summarise(x[len(x)-1]))
	case map[string]interface{}:
		return fmt.Sprintf("%d fields", len(x))
	case nil:
		return "-"
	}
	return fmt.Sprint(v)
}

// Write renders the report as PDF.
func (r *Report) Write(w io.Writer) error {
	created := r.Created
	if created.IsZero() {
		created = time.Now()
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(r.Title, true)
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 8, r.Title)
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", created.Format(time.RFC3339)))
	pdf.Ln(5)
	if r.Isotherm != nil {
		m := r.Isotherm.Meta()
		pdf.Cell(0, 6, fmt.Sprintf("Material: %s %s", m.Material, m.MaterialBatch))
		pdf.Ln(5)
		pdf.Cell(0, 6, fmt.Sprintf("Adsorbate: %s at %.2f K", m.Adsorbate, m.Temperature))
		pdf.Ln(5)
		pdf.Cell(0, 6, fmt.Sprintf("Units: %s %s, %s %s per %s %s", m.PressureMode, m.PressureUnit,
			m.LoadingBasis, m.LoadingUnit, m.MaterialBasis, m.MaterialUnit))
		pdf.Ln(5)
		pdf.Cell(0, 6, fmt.Sprintf("Isotherm: %s", r.Isotherm.ID()))
		pdf.Ln(5)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(70, 6, "Result", "1", 0, "C", false, 0, "")
	pdf.CellFormat(110, 6, "Value", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, e := range r.Entries {
		pdf.CellFormat(70, 6, e.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(110, 6, e.Value, "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("isoio: writing report: %v", err)
	}
	return nil
}
