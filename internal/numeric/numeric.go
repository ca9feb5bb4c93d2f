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

// Package numeric holds the one-dimensional solvers and array helpers
// that gonum does not provide: bracketed root finding, bounded scalar
// minimisation, non-negative least squares, B-spline sampling, numerical
// gradients and sorted-array searches.
package numeric

import (
	"errors"
	"math"
)

// ErrNoConvergence is returned when an iterative method reaches its
// iteration limit.
var ErrNoConvergence = errors.New("numeric: no convergence")

// ErrNoBracket is returned when a root is not bracketed.
var ErrNoBracket = errors.New("numeric: root not bracketed")

// Root finds a root of f in [a, b] using Brent's method. f(a) and f(b)
// must have opposite signs.
func Root(f func(float64) float64, a, b, tol float64, maxIter int) (float64, error) {
	fa, fb := f(a), f(b)
	if fa == 0 {
		return a, nil
	}
	if fb == 0 {
		return b, nil
	}
	if math.IsNaN(fa) || math.IsNaN(fb) || fa*fb > 0 {
		return math.NaN(), ErrNoBracket
	}
	c, fc := a, fa
	d := b - a
	e := d
	for i := 0; i < maxIter; i++ {
		if fb*fc > 0 {
			c, fc = a, fa
			d = b - a
			e = d
		}
		if math.Abs(fc) < math.Abs(fb) {
			a, b, c = b, c, b
			fa, fb, fc = fb, fc, fb
		}
		tol1 := 2*eps*math.Abs(b) + 0.5*tol
		xm := 0.5 * (c - b)
		if math.Abs(xm) <= tol1 || fb == 0 {
			return b, nil
		}
		if math.Abs(e) >= tol1 && math.Abs(fa) > math.Abs(fb) {
			var p, q float64
			s := fb / fa
			if a == c {
				p = 2 * xm * s
				q = 1 - s
			} else {
				q = fa / fc
				r := fb / fc
				p = s * (2*xm*q*(q-r) - (b-a)*(r-1))
				q = (q - 1) * (r - 1) * (s - 1)
			}
			if p > 0 {
				q = -q
			}
			p = math.Abs(p)
			if 2*p < math.Min(3*xm*q-math.Abs(tol1*q), math.Abs(e*q)) {
				e = d
				d = p / q
			} else {
				d = xm
				e = d
			}
		} else {
			d = xm
			e = d
		}
		a, fa = b, fb
		if math.Abs(d) > tol1 {
			b += d
		} else {
			b += math.Copysign(tol1, xm)
		}
		fb = f(b)
		if math.IsNaN(fb) {
			return math.NaN(), ErrNoConvergence
		}
	}
	return b, ErrNoConvergence
}

const eps = 2.220446049250313e-16

// BracketUp searches for an upper bound hi > lo such that f(lo) and
// f(hi) have opposite signs, starting from hi and doubling the distance
// from lo at each step.
func BracketUp(f func(float64) float64, lo, hi float64, maxIter int) (float64, error) {
	flo := f(lo)
	for i := 0; i < maxIter; i++ {
		fhi := f(hi)
		if math.IsNaN(fhi) {
			return hi, ErrNoBracket
		}
		if flo*fhi <= 0 {
			return hi, nil
		}
		hi = lo + 2*(hi-lo)
	}
	return hi, ErrNoBracket
}

// MinimizeBounded finds a local minimum of f in [a, b] using Brent's
// golden-section and parabolic interpolation method.
func MinimizeBounded(f func(float64) float64, a, b, xtol float64, maxIter int) (float64, error) {
	const golden = 0.3819660112501051 // (3 - √5) / 2
	if a > b {
		a, b = b, a
	}
	x := a + golden*(b-a)
	w, v := x, x
	fx := f(x)
	fw, fv := fx, fx
	var d, e float64
	for i := 0; i < maxIter; i++ {
		xm := 0.5 * (a + b)
		tol1 := math.Sqrt(eps)*math.Abs(x) + xtol/3
		tol2 := 2 * tol1
		if math.Abs(x-xm) <= tol2-0.5*(b-a) {
			return x, nil
		}
		golden := true
		if math.Abs(e) > tol1 {
			r := (x - w) * (fx - fv)
			q := (x - v) * (fx - fw)
			p := (x-v)*q - (x-w)*r
			q = 2 * (q - r)
			if q > 0 {
				p = -p
			}
			q = math.Abs(q)
			etemp := e
			e = d
			if math.Abs(p) < math.Abs(0.5*q*etemp) && p > q*(a-x) && p < q*(b-x) {
				d = p / q
				u := x + d
				if u-a < tol2 || b-u < tol2 {
					d = math.Copysign(tol1, xm-x)
				}
				golden = false
			}
		}
		if golden {
			if x >= xm {
				e = a - x
			} else {
				e = b - x
			}
			d = 0.3819660112501051 * e
		}
		u := x + d
		if math.Abs(d) < tol1 {
			u = x + math.Copysign(tol1, d)
		}
		fu := f(u)
		if fu <= fx {
			if u >= x {
				a = x
			} else {
				b = x
			}
			v, fv = w, fw
			w, fw = x, fx
			x, fx = u, fu
		} else {
			if u < x {
				a = u
			} else {
				b = u
			}
			if fu <= fw || w == x {
				v, fv = w, fw
				w, fw = u, fu
			} else if fu <= fv || v == x || v == w {
				v, fv = u, fu
			}
		}
	}
	return x, ErrNoConvergence
}

// SearchSorted returns the index at which v would be inserted into the
// ascending slice a to keep it sorted, placing v before equal values.
func SearchSorted(a []float64, v float64) int {
	lo, hi := 0, len(a)
	for lo < hi {
		m := (lo + hi) / 2
		if a[m] < v {
			lo = m + 1
		} else {
			hi = m
		}
	}
	return lo
}

// Gradient returns the numerical derivative dy/dx using second order
// central differences in the interior and one-sided differences at the
// ends. x need not be evenly spaced.
func Gradient(y, x []float64) []float64 {
	n := len(y)
	g := make([]float64, n)
	if n < 2 {
		return g
	}
	g[0] = (y[1] - y[0]) / (x[1] - x[0])
	g[n-1] = (y[n-1] - y[n-2]) / (x[n-1] - x[n-2])
	for i := 1; i < n-1; i++ {
		hd := x[i] - x[i-1]
		hs := x[i+1] - x[i]
		g[i] = (hd*hd*y[i+1] - hs*hs*y[i-1] + (hs*hs-hd*hd)*y[i]) / (hs * hd * (hd + hs))
	}
	return g
}

// Linspace returns n evenly spaced values from start to stop inclusive.
func Linspace(start, stop float64, n int) []float64 {
	o := make([]float64, n)
	if n == 1 {
		o[0] = start
		return o
	}
	step := (stop - start) / float64(n-1)
	for i := range o {
		o[i] = start + float64(i)*step
	}
	o[n-1] = stop
	return o
}

// Reverse returns a reversed copy of v.
func Reverse(v []float64) []float64 {
	o := make([]float64, len(v))
	for i, vv := range v {
		o[len(v)-1-i] = vv
	}
	return o
}
