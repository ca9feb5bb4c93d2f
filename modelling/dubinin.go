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

package modelling

import (
	"math"

	"github.com/spatialmodel/adsorb/adsorbate"
)

func init() {
	register(&variant{
		name:        "DA",
		calculates:  CalculatesLoading,
		params:      []string{"n_m", "e", "m"},
		bounds:      []Bound{pos, pos, {1, 3}},
		temperature: true,
		relative:    true,
		forward:     func(x []float64, p, T float64) float64 { return dubinin(x[0], x[1], x[2], p, T) },
		inverse:     func(x []float64, n, T float64) float64 { return dubininPressure(x[0], x[1], x[2], n, T) },
		guess:       func(sat, _, T float64) []float64 { return []float64{sat, adsorbate.R * T, 1} },
	})

	register(&variant{
		name:        "DR",
		calculates:  CalculatesLoading,
		params:      []string{"n_m", "e"},
		bounds:      []Bound{pos, pos},
		temperature: true,
		relative:    true,
		forward:     func(x []float64, p, T float64) float64 { return dubinin(x[0], x[1], 2, p, T) },
		inverse:     func(x []float64, n, T float64) float64 { return dubininPressure(x[0], x[1], 2, n, T) },
		guess:       func(sat, _, T float64) []float64 { return []float64{sat, adsorbate.R * T} },
	})

	register(&variant{
		name:       "Freundlich",
		calculates: CalculatesLoading,
		params:     []string{"K", "m"},
		bounds:     []Bound{pos, pos},
		forward:    func(x []float64, p, _ float64) float64 { return x[0] * math.Pow(p, 1/x[1]) },
		inverse:    func(x []float64, n, _ float64) float64 { return math.Pow(n/x[0], x[1]) },
		spreading: func(x []float64, p, _ float64) float64 {
			return x[1] * x[0] * math.Pow(p, 1/x[1])
		},
		guess: func(sat, k, _ float64) []float64 { return []float64{sat * k, 1} },
	})
}

// dubinin is the Dubinin-Astakhov loading at relative pressure p, with
// the characteristic energy e in J/mol. The pore volume is full at and
// above saturation.
func dubinin(nm, e, m, p, T float64) float64 {
	if p >= 1 {
		return nm
	}
	if p == 0 {
		return 0
	}
	a := -adsorbate.R * T * math.Log(p)
	return nm * math.Exp(-math.Pow(a/e, m))
}

func dubininPressure(nm, e, m, n, T float64) float64 {
	if n > nm {
		return math.NaN()
	}
	if n == 0 {
		return 0
	}
	return math.Exp(-e / (adsorbate.R * T) * math.Pow(-math.Log(n/nm), 1/m))
}
