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

package adsorb

import (
	"math"

	"github.com/spatialmodel/adsorb/internal/hash"
)

// Isotherm is the accessor contract shared by point and model
// isotherms. Values are returned in the units selected by the Query.
type Isotherm interface {
	// Meta returns the identity and native units of the isotherm.
	Meta() *Metadata

	// ID returns a deterministic hash of the isotherm contents.
	ID() string

	// HasBranch reports whether the isotherm has data on branch b.
	HasBranch(b Branch) bool

	// Pressure returns the pressures of the isotherm.
	Pressure(q Query) ([]float64, error)

	// Loading returns the loadings of the isotherm.
	Loading(q Query) ([]float64, error)

	// PressureAt returns the pressures at the given loadings.
	PressureAt(loading []float64, q Query) ([]float64, error)

	// LoadingAt returns the loadings at the given pressures.
	LoadingAt(pressure []float64, q Query) ([]float64, error)

	// SpreadingPressureAt returns the reduced spreading pressure
	// at a pressure, in loading units.
	SpreadingPressureAt(pressure float64, q Query) (float64, error)
}

// InterpKind selects how point data is interpolated.
type InterpKind string

// Interpolation kinds.
const (
	Linear  InterpKind = "linear"
	Nearest InterpKind = "nearest"
	Cubic   InterpKind = "cubic"
	Akima   InterpKind = "akima"
)

// Range is an inclusive interval. Use ±Inf for open ends.
type Range struct {
	Min, Max float64
}

// Open returns the range covering every value.
func Open() *Range { return &Range{math.Inf(-1), math.Inf(1)} }

// Contains reports whether v is in r.
func (r *Range) Contains(v float64) bool { return r == nil || (v >= r.Min && v <= r.Max) }

// Fill gives the values returned for interpolation requests below and
// above the data range.
type Fill struct {
	Below, Above float64
}

// Query selects the branch, units, limits and interpolation of an
// accessor call. The zero Query returns every point in native units.
type Query struct {
	Branch Branch

	// Units are the units of inputs and outputs. Empty fields keep the
	// native units of the isotherm.
	Units

	// Limits filters returned values, inclusively, on the quantity
	// being returned.
	Limits *Range

	// Interp is the interpolation kind, Linear by default.
	Interp InterpKind

	// Fill, if set, is returned for points outside the data range
	// instead of an error.
	Fill *Fill

	// Points is the number of points a model isotherm returns from
	// Pressure and Loading. The default is 100.
	Points int
}

func (q Query) points() int {
	if q.Points <= 0 {
		return 100
	}
	return q.Points
}

// Equal reports whether two isotherms have the same identity.
func Equal(a, b Isotherm) bool { return a.ID() == b.ID() }

func hashFloat(v float64) string { return hash.Float(v) }

// filter returns the values of v inside r.
func filter(v []float64, r *Range) []float64 {
	if r == nil {
		return v
	}
	o := v[:0:0]
	for _, x := range v {
		if r.Contains(x) {
			o = append(o, x)
		}
	}
	return o
}

func scale(v []float64, f float64) []float64 {
	o := make([]float64, len(v))
	for i, x := range v {
		o[i] = x * f
	}
	return o
}
