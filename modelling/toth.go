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
		name:       "Toth",
		calculates: CalculatesLoading,
		params:     []string{"n_m", "K", "t"},
		bounds:     []Bound{pos, pos, pos},
		forward:    func(x []float64, p, _ float64) float64 { return toth(x[0], x[1], x[2], p) },
		inverse: func(x []float64, n, _ float64) float64 {
			nm, k, t := x[0], x[1], x[2]
			if n >= nm {
				return math.NaN()
			}
			return n / (nm * k) / math.Pow(1-math.Pow(n/nm, t), 1/t)
		},
		guess: func(sat, k, _ float64) []float64 { return []float64{sat, k, 1} },
	})

	register(&variant{
		name:       "DSToth",
		calculates: CalculatesLoading,
		params:     []string{"n_m1", "K1", "t1", "n_m2", "K2", "t2"},
		bounds:     []Bound{pos, pos, pos, pos, pos, pos},
		forward: func(x []float64, p, _ float64) float64 {
			return toth(x[0], x[1], x[2], p) + toth(x[3], x[4], x[5], p)
		},
		guess: func(sat, k, _ float64) []float64 {
			return []float64{0.5 * sat, 0.4 * k, 1, 0.5 * sat, 0.6 * k, 1}
		},
	})

	// ChemiPhysisorption is a Toth physisorption site plus a Langmuir
	// chemisorption site activated with energy Ea [J/mol].
	register(&variant{
		name:        "ChemiPhysisorption",
		calculates:  CalculatesLoading,
		params:      []string{"n_m1", "K1", "t1", "n_m2", "K2", "Ea"},
		bounds:      []Bound{pos, pos, pos, pos, pos, pos},
		temperature: true,
		forward: func(x []float64, p, T float64) float64 {
			return toth(x[0], x[1], x[2], p) + langmuir(x[3], x[4], p)*math.Exp(-x[5]/(adsorbate.R*T))
		},
		guess: func(sat, k, T float64) []float64 {
			return []float64{0.5 * sat, 0.4 * k, 1, 0.5 * sat, 0.6 * k, adsorbate.R * T * math.E}
		},
	})

	register(&variant{
		name:       "JensenSeaton",
		calculates: CalculatesLoading,
		params:     []string{"K", "a", "b", "c"},
		bounds:     []Bound{pos, pos, pos, pos},
		forward: func(x []float64, p, _ float64) float64 {
			k, a, b, c := x[0], x[1], x[2], x[3]
			return k * p / math.Pow(1+math.Pow(k*p/(a*(1+b*p)), c), 1/c)
		},
		guess: func(sat, k, _ float64) []float64 { return []float64{sat * k, 1, 1, 1} },
	})
}

func toth(nm, k, t, p float64) float64 {
	kp := k * p
	return nm * kp / math.Pow(1+math.Pow(kp, t), 1/t)
}
