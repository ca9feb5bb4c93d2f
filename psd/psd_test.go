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

package psd

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/spatialmodel/adsorb"
	"github.com/spatialmodel/adsorb/adsorbate"
	"github.com/spatialmodel/adsorb/characterisation"
	"github.com/spatialmodel/adsorb/internal/numeric"
	"github.com/spatialmodel/adsorb/units"
)

func different(a, b, tolerance float64) bool {
	if 2*math.Abs(a-b)/math.Abs(a+b) > tolerance || math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return false
}

func logspace(lo, hi float64, n int) []float64 {
	o := numeric.Linspace(math.Log10(lo), math.Log10(hi), n)
	for i, v := range o {
		o[i] = math.Pow(10, v)
	}
	return o
}

// relativeIsotherm returns a nitrogen isotherm at 77 K in relative
// pressure and mmol/g.
func relativeIsotherm(t *testing.T, p, n []float64) *adsorb.PointIsotherm {
	u := adsorb.DefaultUnits()
	u.PressureMode = units.Relative
	u.PressureUnit = ""
	iso, err := adsorb.NewPointIsotherm(adsorb.Metadata{
		Material:    "Carbon",
		Adsorbate:   "nitrogen",
		Temperature: 77.355,
		Units:       u,
	}, p, n)
	if err != nil {
		t.Fatal(err)
	}
	return iso
}

var nitrogen = Surface{0.3, 1.74e-3, 2.0e-8, 6.71e18}

func TestHKWidth(t *testing.T) {
	carbon := Adsorbents["Carbon(HK)"]
	tests := []struct {
		g    characterisation.Geometry
		p    float64
		want float64
	}{
		{characterisation.Slit, 1e-4, 0.584965},
		{characterisation.Slit, 1e-3, 0.714221},
		{characterisation.Slit, 1e-2, 0.959232},
		{characterisation.Slit, 0.1, 1.662873},
		{characterisation.Cylinder, 1e-4, 0.893750},
		{characterisation.Cylinder, 1e-2, 1.347766},
		{characterisation.Cylinder, 0.1, 2.117028},
		{characterisation.Sphere, 1e-4, 2.442488},
		{characterisation.Sphere, 0.1, 7.643565},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%s_%g", test.g, test.p), func(t *testing.T) {
			k, err := newHK(test.g, 77.355, nitrogen, carbon)
			if err != nil {
				t.Fatal(err)
			}
			have, err := k.width(test.p)
			if err != nil {
				t.Fatal(err)
			}
			if different(have, test.want, 1e-4) {
				t.Errorf("have %g, want %g", have, test.want)
			}
		})
	}
}

func TestHKNarrowest(t *testing.T) {
	k, err := newHK(characterisation.Slit, 77.355, nitrogen, Adsorbents["Carbon(HK)"])
	if err != nil {
		t.Fatal(err)
	}
	// The slit potential well sits near 0.65 nm.
	if k.well < 0.6 || k.well > 0.7 {
		t.Errorf("well at %g nm", k.well)
	}
	have, err := k.width(1e-12)
	if err != nil {
		t.Fatal(err)
	}
	if different(have, k.well-0.34, 1e-9) {
		t.Errorf("have %g, want %g", have, k.well-0.34)
	}
}

func TestMicroporous(t *testing.T) {
	p := logspace(1e-5, 0.5, 30)
	n := make([]float64, len(p))
	for i, v := range p {
		n[i] = 10 * 1e4 * v / (1 + 1e4*v)
	}
	iso := relativeIsotherm(t, p, n)
	r, err := Microporous(iso, MicroOptions{})
	if err != nil {
		t.Fatal(err)
	}
	hi := numeric.SearchSorted(p, 0.2) - 1
	if r.Limits != [2]int{0, hi} {
		t.Errorf("limits: have %v, want [0 %d]", r.Limits, hi)
	}
	if len(r.Widths) != hi || len(r.Distribution) != hi || len(r.VolumeCumulative) != hi {
		t.Fatalf("lengths %d, %d, %d, want %d", len(r.Widths), len(r.Distribution), len(r.VolumeCumulative), hi)
	}
	a := adsorbate.Lookup("nitrogen")
	m, _ := a.MolarMass()
	rho, _ := a.LiquidDensity(77.355)
	if want := n[hi] * m / rho / 1000; different(r.VolumeCumulative[hi-1], want, 1e-9) {
		t.Errorf("cumulative volume: have %g, want %g", r.VolumeCumulative[hi-1], want)
	}
	for i := 1; i < len(r.Widths); i++ {
		if r.Widths[i] <= r.Widths[i-1] {
			t.Errorf("widths are not increasing at %d: %v", i, r.Widths)
			break
		}
	}
}

func TestMicroporousZeroPressure(t *testing.T) {
	p := append([]float64{0}, logspace(1e-5, 0.5, 30)...)
	n := make([]float64, len(p))
	for i, v := range p {
		n[i] = 10 * 1e4 * v / (1 + 1e4*v)
	}
	iso := relativeIsotherm(t, p, n)
	for _, test := range []struct {
		name string
		lim  *adsorb.Range
	}{
		{"default", nil},
		{"from zero", &adsorb.Range{Min: 0, Max: 0.1}},
	} {
		t.Run(test.name, func(t *testing.T) {
			r, err := Microporous(iso, MicroOptions{PLimits: test.lim})
			if err != nil {
				t.Fatal(err)
			}
			if r.Limits[0] != 1 {
				t.Errorf("first point: have %d, want 1", r.Limits[0])
			}
			for i, w := range r.Widths {
				if math.IsNaN(w) || w <= 0 {
					t.Errorf("width %d: have %g", i, w)
				}
			}
		})
	}
}

func TestMicroporousErrors(t *testing.T) {
	p := logspace(1e-5, 0.5, 30)
	iso := relativeIsotherm(t, p, p)
	for _, o := range []MicroOptions{
		{Model: "RY"},
		{Geometry: "cone"},
		{Adsorbent: "Unobtainium"},
		{PLimits: &adsorb.Range{Min: 0.3, Max: 0.31}},
	} {
		if _, err := Microporous(iso, o); err == nil {
			t.Errorf("%+v: want an error", o)
		}
	}
}

func inverseLog(p float64) (float64, error) { return -1 / math.Log(p), nil }

func TestMesoporousRaw(t *testing.T) {
	p := []float64{0.2, 0.4, 0.6, 0.8}
	v := []float64{0.1, 0.2, 0.4, 0.5}
	// With no adsorbed layer every model reduces to the Kelvin
	// emptying of cylinders.
	for _, model := range []string{PygapsDH, BJH, DH} {
		t.Run(model, func(t *testing.T) {
			r, err := MesoporousRaw(v, p, model, characterisation.Cylinder, characterisation.ZeroThickness, inverseLog)
			if err != nil {
				t.Fatal(err)
			}
			wantVolumes := []float64{0.1, 0.2, 0.1}
			wantCum := []float64{0.2, 0.4, 0.5}
			var area float64
			for i := range wantVolumes {
				w := -2 / math.Log(p[i])
				if different(r.Widths[i], w, 1e-9) {
					t.Errorf("width %d: have %g, want %g", i, r.Widths[i], w)
				}
				if different(r.Volumes[i], wantVolumes[i], 1e-9) {
					t.Errorf("volume %d: have %g, want %g", i, r.Volumes[i], wantVolumes[i])
				}
				if different(r.VolumeCumulative[i], wantCum[i], 1e-9) {
					t.Errorf("cumulative %d: have %g, want %g", i, r.VolumeCumulative[i], wantCum[i])
				}
				avgW := (w - 2/math.Log(p[i+1])) / 2
				dW := -2/math.Log(p[i+1]) - w
				if d := wantVolumes[i] / dW; different(r.Distribution[i], d, 1e-9) {
					t.Errorf("distribution %d: have %g, want %g", i, r.Distribution[i], d)
				}
				area += 4 * wantVolumes[i] / avgW * 1000
			}
			if different(r.AreaTotal, area, 1e-9) {
				t.Errorf("area: have %g, want %g", r.AreaTotal, area)
			}
		})
	}
}

func TestMesoporousGeometry(t *testing.T) {
	p := []float64{0.2, 0.4, 0.6, 0.8}
	v := []float64{0.1, 0.2, 0.4, 0.5}
	for _, model := range []string{BJH, DH} {
		_, err := MesoporousRaw(v, p, model, characterisation.Slit, characterisation.HarkinsJura, inverseLog)
		if !errors.Is(err, adsorb.ErrParameter) {
			t.Errorf("%s: have %v, want a parameter error", model, err)
		}
	}
	for _, g := range []characterisation.Geometry{characterisation.Slit, characterisation.Sphere} {
		if _, err := MesoporousRaw(v, p, PygapsDH, g, characterisation.HarkinsJura, inverseLog); err != nil {
			t.Errorf("%s: %v", g, err)
		}
	}
	if _, err := MesoporousRaw(v, p, "NLDFT", characterisation.Cylinder, characterisation.HarkinsJura, inverseLog); err == nil {
		t.Error("want an error for an unknown model")
	}
}

func TestMesoporous(t *testing.T) {
	p := numeric.Linspace(0.05, 0.95, 19)
	n := make([]float64, len(p))
	for i, v := range p {
		// A step near p/p0 = 0.6.
		n[i] = 5 + 10/(1+math.Exp(-(v-0.6)*40)) + 2*v
	}
	iso := relativeIsotherm(t, p, n)
	r, err := Mesoporous(iso, MesoOptions{Branch: adsorb.Adsorption})
	if err != nil {
		t.Fatal(err)
	}
	lo, hi := numeric.SearchSorted(p, 0.1), numeric.SearchSorted(p, 0.99)-1
	if r.Limits != [2]int{lo, hi} {
		t.Errorf("limits: have %v, want [%d %d]", r.Limits, lo, hi)
	}
	if len(r.Widths) != hi-lo {
		t.Fatalf("have %d widths, want %d", len(r.Widths), hi-lo)
	}
	c, err := characterisation.CondensateOf(adsorbate.Lookup("nitrogen"), 77.355)
	if err != nil {
		t.Fatal(err)
	}
	rk, _ := characterisation.KelvinRadius(p[lo], characterisation.Cylindrical, c)
	want := 2 * (characterisation.HarkinsJura(p[lo]) + rk)
	if different(r.Widths[0], want, 1e-9) {
		t.Errorf("first width: have %g, want %g", r.Widths[0], want)
	}
	// The largest contribution comes from the pores that fill on the
	// step.
	imax := 0
	for i, v := range r.Volumes {
		if v > r.Volumes[imax] {
			imax = i
		}
	}
	if pm := p[lo+imax]; pm < 0.5 || pm > 0.7 {
		t.Errorf("peak at p/p0 = %g", pm)
	}
}

// writeKernel writes a kernel of Langmuir local isotherms and returns
// its path and the loadings of each width at the kernel pressures.
func writeKernel(t *testing.T, widths, pressure []float64) (string, [][]float64) {
	var b strings.Builder
	b.WriteString("pressure")
	for _, w := range widths {
		b.WriteString("," + strconv.FormatFloat(w, 'g', -1, 64))
	}
	b.WriteString("\n")
	local := make([][]float64, len(widths))
	for j, w := range widths {
		K := math.Pow(10, 4/w)
		for _, p := range pressure {
			local[j] = append(local[j], 10*K*p/(1+K*p))
		}
	}
	for i, p := range pressure {
		b.WriteString(strconv.FormatFloat(p, 'g', -1, 64))
		for j := range widths {
			b.WriteString("," + strconv.FormatFloat(local[j][i], 'g', -1, 64))
		}
		b.WriteString("\n")
	}
	path := filepath.Join(t.TempDir(), "kernel.csv")
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		t.Fatal(err)
	}
	return path, local
}

func TestDFT(t *testing.T) {
	widths := []float64{0.5, 1, 2, 4}
	pressure := logspace(1e-4, 0.9, 40)
	path, local := writeKernel(t, widths, pressure)
	loading := make([]float64, len(pressure))
	for i := range pressure {
		loading[i] = 0.3*local[1][i] + 0.7*local[3][i]
	}
	iso := relativeIsotherm(t, pressure, loading)
	o := DefaultDFTOptions(path)
	o.BSplineOrder = 0
	r, err := DFT(iso, o)
	if err != nil {
		t.Fatal(err)
	}
	wantDist := []float64{0, 0.6, 0, 0.35}
	wantCum := []float64{0, 0.3, 0.3, 1}
	for i := range widths {
		if math.Abs(r.Distribution[i]-wantDist[i]) > 1e-6 {
			t.Errorf("distribution %d: have %g, want %g", i, r.Distribution[i], wantDist[i])
		}
		if math.Abs(r.VolumeCumulative[i]-wantCum[i]) > 1e-6 {
			t.Errorf("cumulative %d: have %g, want %g", i, r.VolumeCumulative[i], wantCum[i])
		}
	}
	for i := range loading {
		if different(r.KernelLoading[i], loading[i], 1e-6) {
			t.Errorf("loading %d: have %g, want %g", i, r.KernelLoading[i], loading[i])
		}
	}

	o.BSplineOrder = 2
	r, err = DFT(iso, o)
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Widths) != 100 || different(r.Widths[0], widths[0], 1e-9) || different(r.Widths[99], widths[3], 1e-9) {
		t.Errorf("smoothed widths: %d points from %g to %g", len(r.Widths), r.Widths[0], r.Widths[len(r.Widths)-1])
	}
}

func TestLoadKernelCache(t *testing.T) {
	path, _ := writeKernel(t, []float64{1, 2}, []float64{0.1, 0.5, 0.9})
	a, err := LoadKernel(path)
	if err != nil {
		t.Fatal(err)
	}
	b, err := LoadKernel(path)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("the kernel was read twice")
	}
	if a.MaxPressure != 0.9 {
		t.Errorf("max pressure: have %g, want 0.9", a.MaxPressure)
	}
	m, err := a.At([]float64{0})
	if err != nil {
		t.Fatal(err)
	}
	if m.At(0, 0) != 0 || m.At(0, 1) != 0 {
		t.Errorf("the zero row was not added: %v, %v", m.At(0, 0), m.At(0, 1))
	}
}

func TestDFTOutOfRange(t *testing.T) {
	path, _ := writeKernel(t, []float64{1, 2}, []float64{0.1, 0.5, 0.9})
	k, err := LoadKernel(path)
	if err != nil {
		t.Fatal(err)
	}
	_, err = DFTRaw([]float64{0.2, 0.5, 0.95}, []float64{1, 2, 3}, k, 2)
	if !errors.Is(err, adsorb.ErrCalculation) {
		t.Errorf("have %v, want a calculation error", err)
	}
}

func TestReadKernelErrors(t *testing.T) {
	for _, src := range []string{
		"pressure,1\n0.1,1\n",
		"pressure,a\n0.1,1\n0.2,2\n",
		"pressure,2,1\n0.1,1,1\n0.2,2,2\n",
		"pressure,1\n0.1,1\n0.2\n",
	} {
		if _, err := ReadKernel(strings.NewReader(src)); err == nil {
			t.Errorf("%q: want an error", src)
		}
	}
}
