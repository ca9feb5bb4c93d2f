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
	"sort"

	"github.com/spatialmodel/adsorb/internal/errs"
	"github.com/spatialmodel/adsorb/internal/numeric"
	"gonum.org/v1/gonum/interp"
)

// interpKey identifies a cached interpolator.
type interpKey struct {
	onPressure bool // x is pressure, y is loading.
	branch     Branch
	kind       InterpKind
}

// interpolator maps native x values onto native y values over the
// range of its data.
type interpolator struct {
	pred     interp.Predictor
	min, max float64
}

// nearest is a nearest-neighbour interpolator.
type nearest struct {
	xs, ys []float64
}

func (n *nearest) Fit(xs, ys []float64) error {
	n.xs, n.ys = xs, ys
	return nil
}

func (n *nearest) Predict(x float64) float64 {
	i := numeric.SearchSorted(n.xs, x)
	switch {
	case i == 0:
		return n.ys[0]
	case i == len(n.xs):
		return n.ys[len(n.ys)-1]
	case x-n.xs[i-1] <= n.xs[i]-x:
		return n.ys[i-1]
	}
	return n.ys[i]
}

// newInterpolator fits an interpolator of the given kind through
// (x, y). The points are sorted by x and repeated x values keep their
// first y.
func newInterpolator(x, y []float64, kind InterpKind) (*interpolator, error) {
	idx := make([]int, len(x))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return x[idx[a]] < x[idx[b]] })
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for _, i := range idx {
		if len(xs) > 0 && x[i] == xs[len(xs)-1] {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	var f interp.FittablePredictor
	need := 2
	switch kind {
	case Linear, "":
		f = &interp.PiecewiseLinear{}
	case Nearest:
		f = &nearest{}
		need = 1
	case Cubic:
		f = &interp.NaturalCubic{}
		need = 3
	case Akima:
		f = &interp.AkimaSpline{}
		need = 3
	default:
		return nil, errs.Parameter("interpolation %q is not an option; viable kinds are %v", kind,
			[]InterpKind{Linear, Nearest, Cubic, Akima})
	}
	if len(xs) < need {
		return nil, errs.Calculation("%s interpolation needs at least %d distinct points, have %d", kind, need, len(xs))
	}
	if err := f.Fit(xs, ys); err != nil {
		return nil, errs.Calculation("fitting interpolator: %v", err)
	}
	return &interpolator{pred: f, min: xs[0], max: xs[len(xs)-1]}, nil
}

// at evaluates the interpolator. Values slightly outside the data
// range from unit round trips are clamped; others take the fill or fail.
func (ip *interpolator) at(x float64, fill *Fill) (float64, error) {
	tol := 1e-9 * math.Max(math.Abs(ip.min), math.Abs(ip.max))
	switch {
	case x < ip.min-tol:
		if fill == nil {
			return math.NaN(), errs.Calculation("%g is below the data range [%g, %g]; set a fill to extrapolate", x, ip.min, ip.max)
		}
		return fill.Below, nil
	case x > ip.max+tol:
		if fill == nil {
			return math.NaN(), errs.Calculation("%g is above the data range [%g, %g]; set a fill to extrapolate", x, ip.min, ip.max)
		}
		return fill.Above, nil
	}
	return ip.pred.Predict(math.Max(ip.min, math.Min(ip.max, x))), nil
}
