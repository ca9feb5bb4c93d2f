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
	"math"
	"strings"

	"github.com/spatialmodel/adsorb"
	"github.com/spatialmodel/adsorb/characterisation"
	"github.com/spatialmodel/adsorb/internal/errs"
	"github.com/spatialmodel/adsorb/internal/numeric"
	"github.com/spatialmodel/adsorb/units"
)

// Mesopore distribution models.
const (
	PygapsDH = "pygaps-DH"
	BJH      = "BJH"
	DH       = "DH"
)

// MesoOptions configure a mesopore size distribution.
type MesoOptions struct {
	// Model is pygaps-DH (the default), BJH or DH. BJH and DH apply to
	// cylindrical pores only.
	Model string

	// Geometry defaults to cylinder.
	Geometry characterisation.Geometry

	// Meniscus defaults to the meniscus that forms in the pore
	// geometry on the chosen branch.
	Meniscus characterisation.Meniscus

	// Branch defaults to desorption.
	Branch adsorb.Branch

	// Thickness defaults to Harkins-Jura.
	Thickness characterisation.Thickness

	// Kelvin defaults to the standard Kelvin equation.
	Kelvin characterisation.Kelvin

	// PLimits select a relative pressure range. The default is
	// 0.1 to 0.99.
	PLimits *adsorb.Range
}

func mesoModel(name string) (string, error) {
	for _, m := range []string{PygapsDH, BJH, DH} {
		if strings.EqualFold(m, name) {
			return m, nil
		}
	}
	if name == "" {
		return PygapsDH, nil
	}
	return "", errs.Parameter("model %q is not an option for a mesopore distribution; viable models are %v", name, []string{PygapsDH, BJH, DH})
}

// Mesoporous calculates the mesopore size distribution of an isotherm
// by stepwise emptying of the pores, with the pore size at each
// pressure given by the adsorbed layer thickness and the Kelvin radius.
func Mesoporous(iso adsorb.Isotherm, o MesoOptions) (*Result, error) {
	model, err := mesoModel(o.Model)
	if err != nil {
		return nil, err
	}
	if o.Geometry == "" {
		o.Geometry = characterisation.Cylinder
	}
	if o.Geometry, err = characterisation.ParseGeometry(string(o.Geometry)); err != nil {
		return nil, err
	}
	b := o.Branch
	if b == adsorb.BranchAll {
		b = adsorb.Desorption
	}
	if o.Meniscus == "" {
		if o.Meniscus, err = characterisation.MeniscusGeometry(b, o.Geometry); err != nil {
			return nil, err
		}
	}
	if o.Thickness == nil {
		o.Thickness = characterisation.HarkinsJura
	}
	if o.Kelvin == nil {
		o.Kelvin = characterisation.KelvinRadius
	}
	m := iso.Meta()
	c, err := characterisation.CondensateOf(m.AdsorbateInfo(), m.Temperature)
	if err != nil {
		return nil, err
	}
	pressure, volume, err := branchData(iso, b, adsorb.Units{
		PressureMode: units.Relative,
		LoadingBasis: units.VolumeLiquid,
		LoadingUnit:  "cm3",
	})
	if err != nil {
		return nil, err
	}
	limits := adsorb.Range{Min: 0.1, Max: 0.99}
	if o.PLimits != nil {
		limits = *o.PLimits
	}
	lo, hi, err := inclusive(pressure, limits)
	if err != nil {
		return nil, err
	}
	kelvin := func(p float64) (float64, error) { return o.Kelvin(p, o.Meniscus, c) }
	r, err := MesoporousRaw(volume[lo:hi+1], pressure[lo:hi+1], model, o.Geometry, o.Thickness, kelvin)
	if err != nil {
		return nil, err
	}
	r.Limits = [2]int{lo, hi}
	return r, nil
}

// MesoporousRaw calculates a mesopore size distribution from liquid
// adsorbed volumes in cm³ and ascending relative pressures. kelvin
// returns the Kelvin radius in nm at a relative pressure.
func MesoporousRaw(volume, pressure []float64, model string, g characterisation.Geometry, t characterisation.Thickness, kelvin func(float64) (float64, error)) (*Result, error) {
	if err := checkLengths(pressure, volume); err != nil {
		return nil, err
	}
	model, err := mesoModel(model)
	if err != nil {
		return nil, err
	}
	if model != PygapsDH && g != characterisation.Cylinder {
		return nil, errs.Parameter("the %s method is only applicable to cylindrical pores; use the %s method for %s pores", model, PygapsDH, g)
	}
	s, err := newSteps(numeric.Reverse(volume), numeric.Reverse(pressure), t, kelvin)
	if err != nil {
		return nil, err
	}
	var widths, dist []float64
	switch model {
	case PygapsDH:
		widths, dist, err = s.pygapsDH(g)
	case BJH:
		widths, dist = s.bjh()
	case DH:
		widths, dist = s.dh()
	}
	if err != nil {
		return nil, err
	}
	r := &Result{
		Widths:       numeric.Reverse(widths),
		Distribution: numeric.Reverse(dist),
		Volumes:      numeric.Reverse(s.volumes),
		Areas:        numeric.Reverse(s.areas),
	}
	// The cumulative volume is anchored so that it ends at the volume
	// adsorbed at the highest pressure.
	r.VolumeCumulative = cumsum(r.Volumes)
	shift := volume[len(volume)-1] - r.VolumeCumulative[len(r.VolumeCumulative)-1]
	negative := false
	for i := range r.VolumeCumulative {
		r.VolumeCumulative[i] += shift
		negative = negative || r.VolumeCumulative[i] < 0
	}
	for _, a := range r.Areas {
		r.AreaTotal += a
	}
	if negative {
		Log.Warn("negative values encountered in cumulative pore volumes; it is very likely that the model or its limits are wrong. " +
			"Check that the pore geometry, meniscus geometry and thickness function suit the material")
	}
	return r, nil
}

// steps holds the per-step quantities of a desorption sequence, from
// high to low pressure. Arrays of averages and differences have one
// element less than the input.
type steps struct {
	dVolume, thickness, avgThickness, dThickness, kelvin, avgKelvin []float64

	volumes, areas []float64
}

func newSteps(volume, pressure []float64, t characterisation.Thickness, kelvin func(float64) (float64, error)) (*steps, error) {
	if len(volume) < 2 {
		return nil, errs.Calculation("at least two points are needed for a pore size distribution")
	}
	n := len(volume)
	s := &steps{
		thickness: make([]float64, n),
		kelvin:    make([]float64, n),
	}
	var err error
	for i, p := range pressure {
		if s.thickness[i], err = t.Thickness(p); err != nil {
			return nil, err
		}
		if s.kelvin[i], err = kelvin(p); err != nil {
			return nil, err
		}
	}
	s.dVolume = negDiff(volume)
	s.avgThickness = avg(s.thickness)
	s.dThickness = negDiff(s.thickness)
	s.avgKelvin = avg(s.kelvin)
	s.volumes = make([]float64, n-1)
	s.areas = make([]float64, n-1)
	return s, nil
}

// pygapsDH is the generalised Dollimore-Heal method for slit,
// cylindrical and spherical pores.
func (s *steps) pygapsDH(g characterisation.Geometry) (widths, dist []float64, err error) {
	var c float64
	switch g {
	case characterisation.Slit:
		c = 1
	case characterisation.Cylinder:
		c = 2
	case characterisation.Sphere:
		c = 3
	default:
		return nil, nil, errs.Parameter("unknown pore geometry %q", g)
	}
	w := make([]float64, len(s.thickness))
	for i := range w {
		w[i] = 2 * (s.thickness[i] + s.kelvin[i])
	}
	avgW, dW := avg(w), negDiff(w)
	var areaCorrection float64
	dist = make([]float64, len(avgW))
	for i, aw := range avgW {
		ratio := math.Pow(aw/(aw-2*s.avgThickness[i]), 2)
		v := (s.dVolume[i] - s.dThickness[i]*areaCorrection) * ratio
		a := 2 * c * v / aw
		s.volumes[i] = v
		s.areas[i] = a * 1000
		dist[i] = v / dW[i]
		areaCorrection += math.Pow((aw-2*s.avgThickness[i])/aw, c-1) * a
	}
	return w[1:], dist, nil
}

// radii returns the pore radii, their averages and negative
// differences, and the volume ratio factors of BJH and DH.
func (s *steps) radii() (r, avgR, dR, ratio []float64) {
	r = make([]float64, len(s.thickness))
	for i := range r {
		r[i] = s.thickness[i] + s.kelvin[i]
	}
	avgR, dR = avg(r), negDiff(r)
	ratio = make([]float64, len(avgR))
	for i := range ratio {
		ratio[i] = math.Pow(avgR[i]/(s.avgKelvin[i]+s.dThickness[i]), 2)
	}
	return
}

// bjh is the Barrett-Joyner-Halenda method.
func (s *steps) bjh() (widths, dist []float64) {
	r, avgR, dR, ratio := s.radii()
	dist = make([]float64, len(avgR))
	for i, ar := range avgR {
		var areaFactor float64
		for x := 0; x < i; x++ {
			areaFactor += (avgR[x] - s.avgThickness[i]) / avgR[x] * s.areas[x]
		}
		v := (s.dVolume[i] - s.dThickness[i]*areaFactor*0.001) * ratio[i]
		s.volumes[i] = v
		s.areas[i] = 2 * v / ar * 1000
		dist[i] = v / dR[i] / 2
	}
	return double(r[1:]), dist
}

// dh is the Dollimore-Heal method.
func (s *steps) dh() (widths, dist []float64) {
	r, avgR, dR, ratio := s.radii()
	var areaFactor, lengthFactor float64
	dist = make([]float64, len(avgR))
	for i, ar := range avgR {
		dt := s.dThickness[i]*areaFactor - s.dThickness[i]*s.avgThickness[i]*lengthFactor
		v := (s.dVolume[i] - dt) * ratio[i]
		a := 2 * v / ar
		s.volumes[i] = v
		s.areas[i] = a * 1000
		dist[i] = v / dR[i] / 2
		areaFactor += a
		lengthFactor += a / ar
	}
	return double(r[1:]), dist
}

func avg(v []float64) []float64 {
	o := make([]float64, len(v)-1)
	for i := range o {
		o[i] = (v[i] + v[i+1]) / 2
	}
	return o
}

// negDiff returns v[i] - v[i+1].
func negDiff(v []float64) []float64 {
	o := make([]float64, len(v)-1)
	for i := range o {
		o[i] = v[i] - v[i+1]
	}
	return o
}

func double(v []float64) []float64 {
	o := make([]float64, len(v))
	for i, x := range v {
		o[i] = 2 * x
	}
	return o
}
