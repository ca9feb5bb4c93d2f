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

import "math"

func init() {
	// Virial fits ln(p/n) as a cubic in n. K is the Henry constant.
	register(&variant{
		name:       "Virial",
		calculates: CalculatesPressure,
		params:     []string{"K", "A", "B", "C"},
		bounds:     []Bound{pos, free, free, free},
		forward: func(x []float64, n, _ float64) float64 {
			k, a, b, c := x[0], x[1], x[2], x[3]
			return n / k * math.Exp(a*n+b*n*n+c*n*n*n)
		},
		spreading: func(x []float64, _, n float64) float64 {
			a, b, c := x[1], x[2], x[3]
			return n + a*n*n/2 + 2*b*n*n*n/3 + 3*c*n*n*n*n/4
		},
		guess: func(sat, k, _ float64) []float64 { return []float64{sat * k, 0, 0, 0} },
	})

	// FHVST is the Flory-Huggins vacancy solution model.
	register(&variant{
		name:       "FHVST",
		calculates: CalculatesPressure,
		params:     []string{"n_m", "K", "a1v"},
		bounds:     []Bound{pos, pos, free},
		forward: func(x []float64, n, _ float64) float64 {
			nm, k, a := x[0], x[1], x[2]
			cov := n / nm
			return nm / k * cov / (1 - cov) * math.Exp(a*a*cov/(1+a*cov))
		},
		spreading: func(x []float64, _, n float64) float64 {
			nm, a := x[0], x[2]
			cov := n / nm
			return nm * (-math.Log1p(-cov) + math.Log1p(a*cov) + 1/(1+a*cov) - 1)
		},
		ceiling: func(x []float64) float64 { return x[0] },
		guess:   func(sat, k, _ float64) []float64 { return []float64{sat, k, 0} },
	})

	// WVST is the Wilson vacancy solution model.
	register(&variant{
		name:       "WVST",
		calculates: CalculatesPressure,
		params:     []string{"n_m", "K", "L1v", "Lv1"},
		bounds:     []Bound{pos, pos, free, free},
		forward: func(x []float64, n, _ float64) float64 {
			nm, k, l1v, lv1 := x[0], x[1], x[2], x[3]
			cov := n / nm
			coef := l1v * (1 - (1-lv1)*cov) / (l1v + (1-l1v)*cov)
			expcoef := -lv1*(1-lv1)*cov/(1-(1-lv1)*cov) - (1-l1v)*cov/(l1v+(1-l1v)*cov)
			return nm / k * cov / (1 - cov) * coef * math.Exp(expcoef)
		},
		ceiling: func(x []float64) float64 { return x[0] },
		guess:   func(sat, k, _ float64) []float64 { return []float64{sat, k, 1, 1} },
	})
}
