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

package psd

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/ctessum/requestcache"
	"github.com/spatialmodel/adsorb"
	"github.com/spatialmodel/adsorb/internal/errs"
	"github.com/spatialmodel/adsorb/internal/numeric"
	"github.com/spatialmodel/adsorb/units"
	"github.com/spf13/cast"
	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/mat"
)

// Kernel is a set of local isotherms, one per pore width, on a common
// pressure axis.
type Kernel struct {
	// Widths are the pore widths in nm, ascending.
	Widths []float64

	// MaxPressure is the highest pressure of the kernel. The lowest is
	// zero.
	MaxPressure float64

	curves []interp.NaturalCubic
}

// ReadKernel reads a kernel from CSV. The header is
// "pressure,w1,w2,..." and each row holds a pressure followed by the
// loading of each pore width. A zero-pressure, zero-loading row is
// added if the kernel does not start at zero.
func ReadKernel(r io.Reader) (*Kernel, error) {
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, errs.Parameter("reading kernel: %v", err)
	}
	if len(rows) < 3 || len(rows[0]) < 2 {
		return nil, errs.Parameter("a kernel needs a header, at least two pressures and one pore width")
	}
	header := rows[0][1:]
	k := &Kernel{Widths: make([]float64, len(header))}
	for i, h := range header {
		if k.Widths[i], err = cast.ToFloat64E(strings.TrimSpace(h)); err != nil {
			return nil, errs.Parameter("kernel pore width %q is not a number", h)
		}
	}
	if !sort.Float64sAreSorted(k.Widths) {
		return nil, errs.Parameter("kernel pore widths must be ascending")
	}
	type row struct {
		p float64
		n []float64
	}
	data := make([]row, 0, len(rows))
	zero := false
	for i, rec := range rows[1:] {
		if len(rec) != len(header)+1 {
			return nil, errs.Parameter("kernel row %d has %d columns, want %d", i+1, len(rec), len(header)+1)
		}
		vals := make([]float64, len(rec))
		for j, s := range rec {
			if vals[j], err = cast.ToFloat64E(strings.TrimSpace(s)); err != nil {
				return nil, errs.Parameter("kernel row %d column %d: %q is not a number", i+1, j, s)
			}
		}
		zero = zero || vals[0] == 0
		data = append(data, row{p: vals[0], n: vals[1:]})
	}
	if !zero {
		data = append(data, row{n: make([]float64, len(header))})
	}
	sort.Slice(data, func(i, j int) bool { return data[i].p < data[j].p })
	p := make([]float64, len(data))
	for i, d := range data {
		p[i] = d.p
	}
	k.MaxPressure = p[len(p)-1]
	k.curves = make([]interp.NaturalCubic, len(header))
	for j := range header {
		n := make([]float64, len(data))
		for i, d := range data {
			n[i] = d.n[j]
		}
		if err := k.curves[j].Fit(p, n); err != nil {
			return nil, errs.Parameter("kernel pore width %g: %v", k.Widths[j], err)
		}
	}
	return k, nil
}

// At returns the kernel loadings at the given pressures, one row per
// pressure and one column per pore width.
func (k *Kernel) At(pressure []float64) (*mat.Dense, error) {
	m := mat.NewDense(len(pressure), len(k.Widths), nil)
	for i, p := range pressure {
		if p < 0 || p > k.MaxPressure {
			return nil, errs.Calculation("could not get kernel values at pressure %g; the kernel covers 0 to %g", p, k.MaxPressure)
		}
		for j := range k.curves {
			m.Set(i, j, k.curves[j].Predict(p))
		}
	}
	return m, nil
}

var (
	kernelInit  sync.Once
	kernelCache *requestcache.Cache
)

// LoadKernel reads the kernel at path. Kernels are cached by path.
func LoadKernel(path string) (*Kernel, error) {
	kernelInit.Do(func() {
		kernelCache = requestcache.NewCache(func(ctx context.Context, request interface{}) (interface{}, error) {
			f, err := os.Open(request.(string))
			if err != nil {
				return nil, errs.Parameter("opening kernel: %v", err)
			}
			defer f.Close()
			return ReadKernel(f)
		}, runtime.GOMAXPROCS(-1),
			requestcache.Deduplicate(), requestcache.Memory(16))
	})
	req := kernelCache.NewRequest(context.TODO(), path, path)
	result, err := req.Result()
	if err != nil {
		return nil, err
	}
	return result.(*Kernel), nil
}

// DFTOptions configure a kernel fit.
type DFTOptions struct {
	// Kernel is the path to a kernel CSV file.
	Kernel string

	// Branch defaults to adsorption.
	Branch adsorb.Branch

	// PLimits select a pressure range in the kernel pressure units.
	PLimits *adsorb.Range

	// BSplineOrder is the degree of the spline that smooths the
	// distribution. 0 disables smoothing.
	BSplineOrder int

	// KernelUnits are the pressure and loading units of the kernel.
	KernelUnits adsorb.Units
}

// DefaultDFTOptions returns options for a kernel in relative pressure
// and mmol/g, smoothed with a quadratic spline.
func DefaultDFTOptions(kernel string) DFTOptions {
	return DFTOptions{
		Kernel:       kernel,
		BSplineOrder: 2,
		KernelUnits: adsorb.Units{
			PressureMode:  units.Relative,
			LoadingBasis:  units.Molar,
			LoadingUnit:   "mmol",
			MaterialBasis: units.MaterialMass,
			MaterialUnit:  "g",
		},
	}
}

// DFT fits an isotherm as a non-negative combination of the local
// isotherms of a kernel.
func DFT(iso adsorb.Isotherm, o DFTOptions) (*Result, error) {
	if o.Kernel == "" {
		return nil, errs.Parameter("a kernel path must be specified")
	}
	k, err := LoadKernel(o.Kernel)
	if err != nil {
		return nil, err
	}
	b := o.Branch
	if b == adsorb.BranchAll {
		b = adsorb.Adsorption
	}
	pressure, loading, err := branchData(iso, b, o.KernelUnits)
	if err != nil {
		return nil, err
	}
	var limits adsorb.Range
	if o.PLimits != nil {
		limits = *o.PLimits
	}
	lo, hi, err := inclusive(pressure, limits)
	if err != nil {
		return nil, err
	}
	r, err := DFTRaw(pressure[lo:hi+1], loading[lo:hi+1], k, o.BSplineOrder)
	if err != nil {
		return nil, err
	}
	r.Limits = [2]int{lo, hi}
	return r, nil
}

// DFTRaw fits pressures and loadings in the kernel units against a
// kernel.
func DFTRaw(pressure, loading []float64, k *Kernel, bsplineOrder int) (*Result, error) {
	if err := checkLengths(pressure, loading); err != nil {
		return nil, err
	}
	if bsplineOrder < 0 {
		return nil, errs.Parameter("the B-spline order cannot be negative, have %d", bsplineOrder)
	}
	a, err := k.At(pressure)
	if err != nil {
		return nil, err
	}
	x, err := numeric.NNLS(a, loading)
	if err != nil {
		return nil, errs.Calculation("minimization of the kernel fit failed: %v", err)
	}
	fitted := mat.NewVecDense(len(pressure), nil)
	fitted.MulVec(a, mat.NewVecDense(len(x), x))

	dw := ediff(k.Widths)
	dist := make([]float64, len(x))
	for i := range x {
		dist[i] = x[i] / dw[i]
	}
	widths := k.Widths
	if bsplineOrder > 0 {
		widths, dist = numeric.BSpline(k.Widths, dist, 100, bsplineOrder)
	}
	dw = ediff(widths)
	vol := make([]float64, len(dist))
	for i := range dist {
		vol[i] = dist[i] * dw[i]
	}
	return &Result{
		Widths:           widths,
		Distribution:     dist,
		VolumeCumulative: cumsum(vol),
		KernelLoading:    fitted.RawVector().Data,
	}, nil
}
