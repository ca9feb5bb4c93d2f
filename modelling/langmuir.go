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
	register(&variant{
		name:       "Henry",
		calculates: CalculatesLoading,
		params:     []string{"K"},
		bounds:     []Bound{pos},
		forward:    func(x []float64, p, _ float64) float64 { return x[0] * p },
		inverse:    func(x []float64, n, _ float64) float64 { return n / x[0] },
		spreading:  func(x []float64, p, _ float64) float64 { return x[0] * p },
		guess:      func(sat, k, _ float64) []float64 { return []float64{sat * k} },
	})

	register(&variant{
		name:       "Langmuir",
		calculates: CalculatesLoading,
		params:     []string{"n_m", "K"},
		bounds:     []Bound{pos, pos},
		forward:    func(x []float64, p, _ float64) float64 { return langmuir(x[0], x[1], p) },
		inverse: func(x []float64, n, _ float64) float64 {
			if n >= x[0] {
				return math.NaN()
			}
			return n / (x[1] * (x[0] - n))
		},
		spreading: func(x []float64, p, _ float64) float64 { return x[0] * math.Log1p(x[1]*p) },
		guess:     func(sat, k, _ float64) []float64 { return []float64{sat, k} },
	})

	register(&variant{
		name:       "DSLangmuir",
		calculates: CalculatesLoading,
		params:     []string{"n_m1", "K1", "n_m2", "K2"},
		bounds:     []Bound{pos, pos, pos, pos},
		forward: func(x []float64, p, _ float64) float64 {
			return langmuir(x[0], x[1], p) + langmuir(x[2], x[3], p)
		},
		spreading: func(x []float64, p, _ float64) float64 {
			return x[0]*math.Log1p(x[1]*p) + x[2]*math.Log1p(x[3]*p)
		},
		guess: func(sat, k, _ float64) []float64 {
			return []float64{0.5 * sat, 0.4 * k, 0.5 * sat, 0.6 * k}
		},
	})

	register(&variant{
		name:       "TSLangmuir",
		calculates: CalculatesLoading,
		params:     []string{"n_m1", "K1", "n_m2", "K2", "n_m3", "K3"},
		bounds:     []Bound{pos, pos, pos, pos, pos, pos},
		forward: func(x []float64, p, _ float64) float64 {
			return langmuir(x[0], x[1], p) + langmuir(x[2], x[3], p) + langmuir(x[4], x[5], p)
		},
		spreading: func(x []float64, p, _ float64) float64 {
			return x[0]*math.Log1p(x[1]*p) + x[2]*math.Log1p(x[3]*p) + x[4]*math.Log1p(x[5]*p)
		},
		guess: func(sat, k, _ float64) []float64 {
			return []float64{0.4 * sat, 0.2 * k, 0.4 * sat, 0.4 * k, 0.2 * sat, 0.4 * k}
		},
	})

	// BET with a finite number of layers expressed through N, the
	// inverse of the saturation pressure.
	register(&variant{
		name:       "BET",
		calculates: CalculatesLoading,
		params:     []string{"n_m", "C", "N"},
		bounds:     []Bound{pos, pos, pos},
		forward: func(x []float64, p, _ float64) float64 {
			nm, c, N := x[0], x[1], x[2]
			return nm * c * p / ((1 - N*p) * (1 - N*p + c*p))
		},
		inverse: func(x []float64, n, _ float64) float64 {
			nm, c, N := x[0], x[1], x[2]
			return quadraticRoot(n*N*(N-c), n*c-2*n*N-nm*c, n)
		},
		spreading: func(x []float64, p, _ float64) float64 {
			nm, c, N := x[0], x[1], x[2]
			return nm * math.Log((1-N*p+c*p)/(1-N*p))
		},
		guess: func(sat, k, _ float64) []float64 { return []float64{sat, k, 0.01} },
	})

	register(&variant{
		name:       "GAB",
		calculates: CalculatesLoading,
		params:     []string{"n_m", "C", "K"},
		bounds:     []Bound{pos, pos, pos},
		forward: func(x []float64, p, _ float64) float64 {
			nm, c, k := x[0], x[1], x[2]
			return nm * k * c * p / ((1 - k*p) * (1 - k*p + k*c*p))
		},
		inverse: func(x []float64, n, _ float64) float64 {
			nm, c, k := x[0], x[1], x[2]
			return quadraticRoot(n*(1-c)*k*k, (n*(c-2)-nm*c)*k, n)
		},
		spreading: func(x []float64, p, _ float64) float64 {
			nm, c, k := x[0], x[1], x[2]
			return nm * math.Log((1-k*p+k*c*p)/(1-k*p))
		},
		guess: func(sat, k, _ float64) []float64 { return []float64{sat, 10 * k, 0.01} },
	})

	register(&variant{
		name:       "Quadratic",
		calculates: CalculatesLoading,
		params:     []string{"n_m", "Ka", "Kb"},
		bounds:     []Bound{pos, free, free},
		forward: func(x []float64, p, _ float64) float64 {
			nm, ka, kb := x[0], x[1], x[2]
			return nm * (ka + 2*kb*p) * p / (1 + ka*p + kb*p*p)
		},
		inverse: func(x []float64, n, _ float64) float64 {
			nm, ka, kb := x[0], x[1], x[2]
			return quadraticRoot((n-2*nm)*kb, (n-nm)*ka, n)
		},
		spreading: func(x []float64, p, _ float64) float64 {
			return x[0] * math.Log(1+x[1]*p+x[2]*p*p)
		},
		guess: func(sat, k, _ float64) []float64 { return []float64{sat / 2, k, k * k} },
	})

	// TemkinApprox is the Langmuir model with a first order correction
	// for lateral interactions, of strength tht.
	register(&variant{
		name:       "TemkinApprox",
		calculates: CalculatesLoading,
		params:     []string{"n_m", "K", "tht"},
		bounds:     []Bound{pos, pos, pos},
		forward: func(x []float64, p, _ float64) float64 {
			nm, k, tht := x[0], x[1], x[2]
			l := k * p / (1 + k*p)
			return nm * (l + tht*l*l*(l-1))
		},
		spreading: func(x []float64, p, _ float64) float64 {
			nm, k, tht := x[0], x[1], x[2]
			kp := k * p
			return nm * (math.Log1p(kp) + tht*(2*kp+1)/(2*(1+kp)*(1+kp)) - tht/2)
		},
		guess: func(sat, k, _ float64) []float64 { return []float64{sat, k, 0} },
	})
}

func langmuir(nm, k, p float64) float64 { return nm * k * p / (1 + k*p) }

// quadraticRoot returns the root (-b - √(b²-4ac)) / 2a of
// a·p² + b·p + c, or -c/b when a is zero.
func quadraticRoot(a, b, c float64) float64 {
	if a == 0 {
		return -c / b
	}
	return (-b - math.Sqrt(b*b-4*a*c)) / (2 * a)
}
