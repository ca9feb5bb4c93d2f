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

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// NNLS solves argmin ‖A·x − b‖² subject to x ≥ 0 using the active set
// method of Lawson and Hanson.
func NNLS(a mat.Matrix, b []float64) ([]float64, error) {
	m, n := a.Dims()
	bv := mat.NewVecDense(m, append([]float64(nil), b...))
	x := make([]float64, n)
	passive := make([]bool, n)

	norm := mat.Norm(a, 1)
	tol := 10 * eps * norm * float64(max(m, n))

	residualGradient := func() []float64 {
		r := mat.NewVecDense(m, nil)
		r.MulVec(a, mat.NewVecDense(n, x))
		r.SubVec(bv, r)
		w := mat.NewVecDense(n, nil)
		w.MulVec(a.T(), r)
		return w.RawVector().Data
	}

	maxIter := 3 * n
	if maxIter < 30 {
		maxIter = 30
	}
	w := residualGradient()
	for iter := 0; ; iter++ {
		j, wmax := -1, tol
		for i, wi := range w {
			if !passive[i] && wi > wmax {
				j, wmax = i, wi
			}
		}
		if j < 0 {
			return x, nil
		}
		if iter >= maxIter {
			return x, ErrNoConvergence
		}
		passive[j] = true
		for inner := 0; ; inner++ {
			if inner > maxIter {
				return x, ErrNoConvergence
			}
			z := passiveSolve(a, bv, passive)
			feasible := true
			for i := range z {
				if passive[i] && z[i] <= 0 {
					feasible = false
				}
			}
			if feasible {
				x = z
				break
			}
			alpha := math.Inf(1)
			for i := range z {
				if passive[i] && z[i] <= 0 {
					t := 0.0
					if d := x[i] - z[i]; d > 0 {
						t = x[i] / d
					}
					if t < alpha {
						alpha = t
					}
				}
			}
			for i := range x {
				x[i] += alpha * (z[i] - x[i])
				if passive[i] && math.Abs(x[i]) <= tol {
					passive[i] = false
					x[i] = 0
				}
			}
		}
		w = residualGradient()
	}
}

// passiveSolve solves the unconstrained least squares problem restricted
// to the passive columns using regularised normal equations.
func passiveSolve(a mat.Matrix, b *mat.VecDense, passive []bool) []float64 {
	m, n := a.Dims()
	var idx []int
	for i, p := range passive {
		if p {
			idx = append(idx, i)
		}
	}
	k := len(idx)
	ap := mat.NewDense(m, k, nil)
	for c, j := range idx {
		for r := 0; r < m; r++ {
			ap.Set(r, c, a.At(r, j))
		}
	}
	var ata mat.Dense
	ata.Mul(ap.T(), ap)
	ridge := 0.0
	for i := 0; i < k; i++ {
		ridge += ata.At(i, i)
	}
	ridge *= 1e-13
	sym := mat.NewSymDense(k, nil)
	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			v := ata.At(i, j)
			if i == j {
				v += ridge
			}
			sym.SetSym(i, j, v)
		}
	}
	rhs := mat.NewVecDense(k, nil)
	rhs.MulVec(ap.T(), b)

	z := make([]float64, n)
	var sol mat.VecDense
	var chol mat.Cholesky
	if chol.Factorize(sym) {
		if err := chol.SolveVecTo(&sol, rhs); err == nil {
			for c, j := range idx {
				z[j] = sol.AtVec(c)
			}
			return z
		}
	}
	if err := sol.SolveVec(ap, b); err == nil {
		for c, j := range idx {
			z[j] = sol.AtVec(c)
		}
	}
	return z
}
