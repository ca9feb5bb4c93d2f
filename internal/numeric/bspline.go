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

package numeric

// BSpline samples n points along an open, clamped B-spline of the
// given degree whose control points are (xs[i], ys[i]). A degree of 0
// returns the input unchanged. The degree is clipped to [1, len(xs)-1].
func BSpline(xs, ys []float64, n, degree int) ([]float64, []float64) {
	if degree == 0 {
		return xs, ys
	}
	count := len(xs)
	if degree > count-1 {
		degree = count - 1
	}
	if degree < 1 {
		degree = 1
	}
	// Knot vector: degree repeated zeros, 0..count-degree, then
	// count-degree repeated degree times.
	kv := make([]float64, 0, count+degree+1)
	for i := 0; i < degree; i++ {
		kv = append(kv, 0)
	}
	for i := 0; i <= count-degree; i++ {
		kv = append(kv, float64(i))
	}
	for i := 0; i < degree; i++ {
		kv = append(kv, float64(count-degree))
	}

	u := Linspace(0, float64(count-degree), n)
	ox := make([]float64, n)
	oy := make([]float64, n)
	for i, ui := range u {
		ox[i], oy[i] = deBoor(kv, xs, ys, degree, ui)
	}
	return ox, oy
}

// deBoor evaluates the B-spline defined by knots kv and control points
// (xs, ys) at u.
func deBoor(kv, xs, ys []float64, p int, u float64) (float64, float64) {
	count := len(xs)
	// Find the knot span k such that kv[k] <= u < kv[k+1].
	k := p
	for k < count-1 && u >= kv[k+1] {
		k++
	}
	dx := make([]float64, p+1)
	dy := make([]float64, p+1)
	for j := 0; j <= p; j++ {
		dx[j] = xs[j+k-p]
		dy[j] = ys[j+k-p]
	}
	for r := 1; r <= p; r++ {
		for j := p; j >= r; j-- {
			den := kv[j+1+k-r] - kv[j+k-p]
			alpha := 0.0
			if den != 0 {
				alpha = (u - kv[j+k-p]) / den
			}
			dx[j] = (1-alpha)*dx[j-1] + alpha*dx[j]
			dy[j] = (1-alpha)*dy[j-1] + alpha*dy[j]
		}
	}
	return dx[p], dy[p]
}
