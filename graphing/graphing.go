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

// Package graphing draws isotherms and pore size distributions.
package graphing

import (
	"fmt"
	"math"

	"github.com/spatialmodel/adsorb"
	"github.com/spatialmodel/adsorb/psd"
	"github.com/spatialmodel/adsorb/units"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Figure dimensions used by Save.
const (
	Width  = 6 * vg.Inch
	Height = 4 * vg.Inch
)

// Options configure an isotherm plot.
type Options struct {
	Title string

	// Branch selects the branch to draw. BranchAll draws the
	// adsorption branch with filled markers and the desorption branch
	// with open ones.
	Branch adsorb.Branch

	// Units are the plotted units. Empty fields keep the units of the
	// first isotherm.
	Units adsorb.Units

	// LogX draws pressure on a logarithmic axis. Points at zero
	// pressure are left out.
	LogX bool

	// Points is the number of points drawn for a model isotherm.
	Points int
}

// Isotherms plots loading against pressure for each isotherm. Point
// isotherms are drawn as markers and model isotherms as lines.
func Isotherms(isos []adsorb.Isotherm, o Options) (*plot.Plot, error) {
	if len(isos) == 0 {
		return nil, fmt.Errorf("graphing: no isotherms to plot")
	}
	u := isos[0].Meta().Units.Resolve(o.Units)
	p := plot.New()
	p.Title.Text = o.Title
	p.X.Label.Text = pressureLabel(u)
	p.Y.Label.Text = loadingLabel(u)
	p.Legend.Top = true
	p.Legend.Left = true
	if o.LogX {
		p.X.Scale = plot.LogScale{}
		p.X.Tick.Marker = plot.LogTicks{Prec: -1}
	}
	for i, iso := range isos {
		name := label(iso)
		for _, b := range []adsorb.Branch{adsorb.Adsorption, adsorb.Desorption} {
			if (o.Branch != adsorb.BranchAll && o.Branch != b) || !iso.HasBranch(b) {
				continue
			}
			q := adsorb.Query{Branch: b, Units: u, Points: o.Points}
			xy, err := data(iso, q, o.LogX)
			if err != nil {
				return nil, fmt.Errorf("graphing: %s: %v", name, err)
			}
			if len(xy) == 0 {
				continue
			}
			c := plotutil.Color(i)
			if _, ok := iso.(*adsorb.ModelIsotherm); ok {
				l, err := plotter.NewLine(xy)
				if err != nil {
					return nil, err
				}
				l.Color = c
				l.Width = vg.Points(1.5)
				p.Add(l)
				p.Legend.Add(name, l)
				continue
			}
			s, err := plotter.NewScatter(xy)
			if err != nil {
				return nil, err
			}
			s.Color = c
			s.Radius = vg.Points(3)
			s.Shape = draw.CircleGlyph{}
			entry := name
			if b == adsorb.Desorption {
				s.Shape = draw.RingGlyph{}
				entry += " (des)"
			}
			p.Add(s)
			p.Legend.Add(entry, s)
		}
	}
	return p, nil
}

// Distribution plots a pore size distribution.
func Distribution(r *psd.Result, title string) (*plot.Plot, error) {
	xy := make(plotter.XYs, 0, len(r.Widths))
	for i, w := range r.Widths {
		if finite(w) && finite(r.Distribution[i]) {
			xy = append(xy, plotter.XY{X: w, Y: r.Distribution[i]})
		}
	}
	if len(xy) == 0 {
		return nil, fmt.Errorf("graphing: the distribution has no finite points")
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Pore width (nm)"
	p.Y.Label.Text = "Pore volume distribution (dV/dw)"
	l, err := plotter.NewLine(xy)
	if err != nil {
		return nil, err
	}
	l.Color = plotutil.Color(0)
	l.Width = vg.Points(1.5)
	p.Add(l)
	return p, nil
}

// Save writes a plot to a file. The image format is chosen by the file
// extension: png, svg, pdf, eps, jpg or tif.
func Save(p *plot.Plot, path string) error {
	if err := p.Save(Width, Height, path); err != nil {
		return fmt.Errorf("graphing: saving %s: %v", path, err)
	}
	return nil
}

func data(iso adsorb.Isotherm, q adsorb.Query, logX bool) (plotter.XYs, error) {
	pressure, err := iso.Pressure(q)
	if err != nil {
		return nil, err
	}
	loading, err := iso.Loading(q)
	if err != nil {
		return nil, err
	}
	xy := make(plotter.XYs, 0, len(pressure))
	for i, x := range pressure {
		if !finite(x) || !finite(loading[i]) || (logX && x <= 0) {
			continue
		}
		xy = append(xy, plotter.XY{X: x, Y: loading[i]})
	}
	return xy, nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func label(iso adsorb.Isotherm) string {
	m := iso.Meta()
	s := fmt.Sprintf("%s %s %.0f K", m.Material, m.Adsorbate, m.Temperature)
	if mi, ok := iso.(*adsorb.ModelIsotherm); ok {
		s += " " + mi.Model.Name()
	}
	return s
}

func pressureLabel(u adsorb.Units) string {
	switch u.PressureMode {
	case units.Relative:
		return "Relative pressure (p/p0)"
	case units.RelativePercent:
		return "Relative pressure (%)"
	}
	return fmt.Sprintf("Pressure (%s)", u.PressureUnit)
}

func loadingLabel(u adsorb.Units) string {
	switch u.LoadingBasis {
	case units.Fraction:
		return "Loading (fraction)"
	case units.Percent:
		return "Loading (%)"
	}
	return fmt.Sprintf("Loading (%s/%s)", u.LoadingUnit, u.MaterialUnit)
}
