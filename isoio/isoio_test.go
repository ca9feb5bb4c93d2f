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
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kr/pretty"
	"github.com/spatialmodel/adsorb"
	"github.com/spatialmodel/adsorb/modelling"
	"github.com/spatialmodel/adsorb/units"
)

func testMeta() adsorb.Metadata {
	return adsorb.Metadata{
		Material:      "Carbon",
		MaterialBatch: "X1",
		Adsorbate:     "nitrogen",
		Temperature:   77.355,
		Units:         adsorb.DefaultUnits(),
		Properties:    map[string]interface{}{"operator": "Ada", "activation_temperature": 423.5},
	}
}

// hysteresis returns an isotherm with an adsorption and a desorption
// branch and an enthalpy channel.
func hysteresis(t *testing.T) *adsorb.PointIsotherm {
	p := []float64{0.1, 0.3, 0.5, 0.7, 0.9, 0.7, 0.5, 0.3}
	n := []float64{1.1, 1.6, 2.0, 2.6, 3.5, 3.1, 2.4, 1.7}
	h := []float64{20.5, 19.1, 18.7, 18.2, 17.9, 18.0, 18.5, 19.0}
	iso, err := adsorb.NewPointIsotherm(testMeta(), p, n, adsorb.WithOther("enthalpy", h))
	if err != nil {
		t.Fatal(err)
	}
	return iso
}

func langmuir(t *testing.T) *adsorb.ModelIsotherm {
	m, err := modelling.New("Langmuir", map[string]float64{"n_m": 5.25, "K": 12.5}, 0)
	if err != nil {
		t.Fatal(err)
	}
	m.PressureRange = [2]float64{0.01, 0.9}
	m.LoadingRange = [2]float64{0.6, 4.9}
	m.RMSE = 0.0125
	iso, err := adsorb.NewModelIsotherm(testMeta(), m, adsorb.Adsorption)
	if err != nil {
		t.Fatal(err)
	}
	return iso
}

func TestRoundTrip(t *testing.T) {
	isos := map[string]adsorb.Isotherm{"point": hysteresis(t), "model": langmuir(t)}
	for _, format := range []string{"json", "csv", "yaml", "xlsx"} {
		for kind, iso := range isos {
			t.Run(format+"_"+kind, func(t *testing.T) {
				var buf bytes.Buffer
				if err := Write(&buf, iso, format); err != nil {
					t.Fatal(err)
				}
				iso2, err := Read(&buf, format)
				if err != nil {
					t.Fatal(err)
				}
				if diff := pretty.Diff(iso.Meta().Properties, iso2.Meta().Properties); len(diff) > 0 {
					t.Errorf("properties: %v", diff)
				}
				if iso.ID() != iso2.ID() {
					t.Errorf("identity changed: have %s, want %s", iso2.ID(), iso.ID())
				}
			})
		}
	}
}

func TestRoundTripBranches(t *testing.T) {
	iso := hysteresis(t)
	var buf bytes.Buffer
	if err := WriteJSON(&buf, iso); err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(buf.String(), `"branch": "des"`); n != 3 {
		t.Errorf("have %d desorption records, want 3", n)
	}
	iso2, err := ReadJSON(&buf, FormatAdsorb)
	if err != nil {
		t.Fatal(err)
	}
	want := []bool{false, false, false, false, false, true, true, true}
	if diff := pretty.Diff(iso2.(*adsorb.PointIsotherm).Branches(), want); len(diff) > 0 {
		t.Errorf("branches: %v", diff)
	}
	h, err := iso2.(*adsorb.PointIsotherm).OtherData("enthalpy", adsorb.Query{Branch: adsorb.Desorption})
	if err != nil {
		t.Fatal(err)
	}
	if diff := pretty.Diff(h, []float64{18.0, 18.5, 19.0}); len(diff) > 0 {
		t.Errorf("enthalpy: %v", diff)
	}
}

func TestCSVGuessBranches(t *testing.T) {
	const in = `file_version,2.0
material,MCM-41
adsorbate,nitrogen
temperature,77
pressure_mode,relative
loading_basis,molar
loading_unit,mmol
material_basis,mass
material_unit,g
data:[pressure,loading,branch,(otherdata)]
pressure,loading
0.1,1
0.5,2
0.9,3
0.6,2.5
0.2,1.2
`
	iso, err := ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	want := []bool{false, false, false, true, true}
	if diff := pretty.Diff(iso.(*adsorb.PointIsotherm).Branches(), want); len(diff) > 0 {
		t.Errorf("branches: %v", diff)
	}
	if iso.Meta().PressureMode != units.Relative {
		t.Errorf("pressure mode: have %s, want relative", iso.Meta().PressureMode)
	}
}

func TestLegacyKeys(t *testing.T) {
	const in = `{"file_version": "2.0", "material": "Zeolite", "adsorbate": "argon", "temperature": 87.3,
"pressure_mode": "absolute", "pressure_unit": "kPa", "loading_basis": "mass", "loading_unit": "mg",
"adsorbent_basis": "volume", "adsorbent_unit": "cm3",
"isotherm_data": [{"pressure": 1, "loading": 2}, {"pressure": 2, "loading": 3}]}`
	iso, err := ReadJSON(strings.NewReader(in), FormatAdsorb)
	if err != nil {
		t.Fatal(err)
	}
	m := iso.Meta()
	if m.MaterialBasis != units.MaterialVolume || m.MaterialUnit != "cm3" {
		t.Errorf("material units: have %s %s, want volume cm3", m.MaterialBasis, m.MaterialUnit)
	}
	if len(m.Properties) != 0 {
		t.Errorf("legacy keys kept as properties: %v", m.Properties)
	}
}

const nistIsotherm = `{
  "filename": "10.1021Jp1234",
  "category": "exp",
  "isotherm_type": "excess",
  "temperature": 298,
  "adsorbent": {"hashkey": "NIST-MATDB-abc", "name": "ZIF-8"},
  "adsorbates": [{"InChIKey": "CURLTUGMZLYLDI-UHFFFAOYSA-N", "name": "Carbon Dioxide"}],
  "adsorptionUnits": "mmol/g",
  "pressureUnits": "bar",
  "isotherm_data": [
    {"pressure": 0.5, "total_adsorption": 0.25, "species_data": [{"adsorption": 0.25}]},
    {"pressure": 1.0, "total_adsorption": 0.45, "species_data": [{"adsorption": 0.45}]},
    {"pressure": 5.0, "total_adsorption": 1.6, "species_data": [{"adsorption": 1.6}]}
  ]
}`

func TestReadNIST(t *testing.T) {
	iso, err := ReadJSON(strings.NewReader(nistIsotherm), FormatNIST)
	if err != nil {
		t.Fatal(err)
	}
	m := iso.Meta()
	want := adsorb.Units{
		PressureMode:  units.Absolute,
		PressureUnit:  "bar",
		LoadingBasis:  units.Molar,
		LoadingUnit:   "mmol",
		MaterialBasis: units.MaterialMass,
		MaterialUnit:  "g",
	}
	if diff := pretty.Diff(m.Units, want); len(diff) > 0 {
		t.Errorf("units: %v", diff)
	}
	if m.Material != "ZIF-8" || m.Adsorbate != "carbon dioxide" || m.Temperature != 298 {
		t.Errorf("identity: %s %s %g", m.Material, m.Adsorbate, m.Temperature)
	}
	for k, v := range map[string]interface{}{"nist_hash": "NIST-MATDB-abc", "iso_type": "exp", "iso_ref": "excess", "filename": "10.1021Jp1234"} {
		if m.Properties[k] != v {
			t.Errorf("property %s: have %v, want %v", k, m.Properties[k], v)
		}
	}
	n, err := iso.Loading(adsorb.Query{})
	if err != nil {
		t.Fatal(err)
	}
	if diff := pretty.Diff(n, []float64{0.25, 0.45, 1.6}); len(diff) > 0 {
		t.Errorf("loading: %v", diff)
	}
	if keys := iso.(*adsorb.PointIsotherm).OtherKeys(); len(keys) != 0 {
		t.Errorf("species data kept: %v", keys)
	}
}

func TestReadNISTErrors(t *testing.T) {
	tests := []struct{ name, old, new string }{
		{"multicomponent", `[{"InChIKey"`, `[{"name": "methane"}, {"InChIKey"`},
		{"loading unit", `"mmol/g"`, `"furlongs/g"`},
		{"material unit", `"mmol/g"`, `"mmol/furlong"`},
		{"pressure unit", `"pressureUnits": "bar"`, `"pressureUnits": "psi"`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			in := strings.Replace(nistIsotherm, test.old, test.new, 1)
			if _, err := ReadJSON(strings.NewReader(in), FormatNIST); !errors.Is(err, adsorb.ErrParameter) {
				t.Errorf("have %v, want a parameter error", err)
			}
		})
	}
}

func TestNISTWeightPercent(t *testing.T) {
	in := strings.Replace(nistIsotherm, `"mmol/g"`, `"wt%"`, 1)
	iso, err := ReadJSON(strings.NewReader(in), FormatNIST)
	if err != nil {
		t.Fatal(err)
	}
	if m := iso.Meta(); m.LoadingBasis != units.Mass || m.LoadingUnit != "g" || m.MaterialUnit != "g" {
		t.Errorf("have %s %s / %s, want mass g / g", m.LoadingBasis, m.LoadingUnit, m.MaterialUnit)
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct{ name, format, in string }{
		{"json syntax", "json", `{"material": `},
		{"no data", "json", `{"file_version": "2.0", "material": "C", "adsorbate": "argon", "temperature": 87}`},
		{"bad number", "json", `{"material": "C", "adsorbate": "argon", "temperature": 87, "isotherm_data": [{"pressure": "x", "loading": 1}]}`},
		{"no loading", "json", `{"material": "C", "adsorbate": "argon", "temperature": 87, "isotherm_data": [{"pressure": 1}]}`},
		{"csv header", "csv", "material,C,D\n"},
		{"csv row", "csv", "material,C\nadsorbate,argon\ntemperature,87\ndata:[]\npressure,loading\n1\n"},
		{"format", "toml", ""},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := Read(strings.NewReader(test.in), test.format); !errors.Is(err, adsorb.ErrParameter) {
				t.Errorf("have %v, want a parameter error", err)
			}
		})
	}
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()
	iso := hysteresis(t)
	for _, ext := range []string{".json", ".csv", ".yml", ".xlsx"} {
		path := dir + "/iso" + ext
		if err := WriteFile(path, iso); err != nil {
			t.Fatal(err)
		}
		iso2, err := ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if !adsorb.Equal(iso, iso2) {
			t.Errorf("%s: identity changed", ext)
		}
	}
}

func TestFromISODB(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		switch r.URL.Path {
		case "/isotherm/flaky.json":
			if n == 1 {
				http.Error(w, "busy", http.StatusServiceUnavailable)
				return
			}
			fmt.Fprint(w, nistIsotherm)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	old := ISODBAPI
	ISODBAPI = srv.URL
	defer func() { ISODBAPI = old }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	iso, err := FromISODB(ctx, "flaky")
	if err != nil {
		t.Fatal(err)
	}
	if iso.Meta().Material != "ZIF-8" {
		t.Errorf("material: have %s, want ZIF-8", iso.Meta().Material)
	}
	if calls != 2 {
		t.Errorf("have %d requests, want 2", calls)
	}

	atomic.StoreInt32(&calls, 0)
	if _, err := FromISODB(ctx, "missing"); !errors.Is(err, adsorb.ErrParameter) {
		t.Errorf("have %v, want a parameter error", err)
	}
	if calls != 1 {
		t.Errorf("a client error was retried: %d requests", calls)
	}
}

func TestReport(t *testing.T) {
	entries, err := Entries(struct {
		Area     float64   `json:"area"`
		Pressure []float64 `json:"pressure"`
		Note     string    `json:"note"`
	}{Area: 1234.5678, Pressure: []float64{0.05, 0.1, 0.3}, Note: "ok"})
	if err != nil {
		t.Fatal(err)
	}
	want := []Entry{
		{Name: "area", Value: "1234.57"},
		{Name: "note", Value: "ok"},
		{Name: "pressure", Value: "3 values, 0.05 to 0.3"},
	}
	if diff := pretty.Diff(entries, want); len(diff) > 0 {
		t.Errorf("entries: %v", diff)
	}
	r := &Report{
		Title:    "BET area",
		Isotherm: hysteresis(t),
		Entries:  entries,
		Created:  time.Date(2019, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	var buf bytes.Buffer
	if err := r.Write(&buf); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Errorf("not a PDF: %q", buf.Bytes()[:10])
	}
}

func TestFilter(t *testing.T) {
	where, args := Filter{Adsorbate: "Nitrogen", MaxTemperature: 100}.where()
	if where != " WHERE lower(adsorbate) = lower($1) AND temperature <= $2" {
		t.Errorf("where: %q", where)
	}
	if diff := pretty.Diff(args, []interface{}{"Nitrogen", 100.0}); len(diff) > 0 {
		t.Errorf("args: %v", diff)
	}
	if where, args := (Filter{}).where(); where != "" || args != nil {
		t.Errorf("empty filter: %q %v", where, args)
	}
}

// TestStore needs a PostgreSQL database at PG_DSN.
func TestStore(t *testing.T) {
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN not set")
	}
	ctx := context.Background()
	s, err := OpenStore(ctx, dsn)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if err := s.Migrate(ctx); err != nil {
		t.Fatal(err)
	}
	point, model := hysteresis(t), langmuir(t)
	for _, iso := range []adsorb.Isotherm{point, model} {
		id, err := s.Put(ctx, iso)
		if err != nil {
			t.Fatal(err)
		}
		defer s.Delete(ctx, id)
		got, err := s.Get(ctx, id)
		if err != nil {
			t.Fatal(err)
		}
		if got.ID() != id {
			t.Errorf("have %s, want %s", got.ID(), id)
		}
	}
	list, err := s.List(ctx, Filter{Material: "carbon", Adsorbate: "NITROGEN"})
	if err != nil {
		t.Fatal(err)
	}
	found := 0
	for _, r := range list {
		if r.ID == point.ID() || r.ID == model.ID() {
			found++
		}
	}
	if found != 2 {
		t.Errorf("listed %d of 2 isotherms", found)
	}
	if err := s.Delete(ctx, point.ID()); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, point.ID()); !errors.Is(err, ErrNotFound) {
		t.Errorf("have %v, want ErrNotFound", err)
	}
}

func ExampleWriteCSV() {
	meta := adsorb.Metadata{Material: "Carbon", Adsorbate: "nitrogen", Temperature: 77, Units: adsorb.DefaultUnits()}
	iso, err := adsorb.NewPointIsotherm(meta, []float64{0.1, 0.5, 1}, []float64{1, 2, 2.5})
	if err != nil {
		panic(err)
	}
	if err := WriteCSV(os.Stdout, iso); err != nil {
		panic(err)
	}
	// Output:
	// adsorbate,nitrogen
	// file_version,2.0
	// loading_basis,molar
	// loading_unit,mmol
	// material,Carbon
	// material_basis,mass
	// material_unit,g
	// pressure_mode,absolute
	// pressure_unit,bar
	// temperature,77
	// data:[pressure,loading,branch,(otherdata)]
	// pressure,loading,branch
	// 0.1,1,ads
	// 0.5,2,ads
	// 1,2.5,ads
}
