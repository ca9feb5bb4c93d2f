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
	"sync"

	"github.com/spatialmodel/adsorb/internal/errs"
	"github.com/spatialmodel/adsorb/internal/hash"
	"github.com/spatialmodel/adsorb/units"
)

// PointIsotherm is an isotherm defined by discrete data points.
type PointIsotherm struct {
	Metadata

	pressure, loading []float64
	other             map[string][]float64
	des               []bool // true for desorption points.
	allowNegative     bool

	mu      sync.Mutex
	interps map[interpKey]*interpolator
}

// PointOption configures a new PointIsotherm.
type PointOption func(*PointIsotherm) error

// WithOther adds an auxiliary data channel, such as an enthalpy, with
// one value per point. Auxiliary channels are never converted.
func WithOther(key string, values []float64) PointOption {
	return func(p *PointIsotherm) error {
		if key == "" {
			return errs.Parameter("auxiliary data needs a name")
		}
		if len(values) != len(p.pressure) {
			return errs.Parameter("auxiliary data %q has %d values, want %d", key, len(values), len(p.pressure))
		}
		if p.other == nil {
			p.other = make(map[string][]float64)
		}
		p.other[key] = append([]float64(nil), values...)
		return nil
	}
}

// WithBranches sets the branch of every point explicitly: true marks a
// desorption point.
func WithBranches(desorption []bool) PointOption {
	return func(p *PointIsotherm) error {
		if len(desorption) != len(p.pressure) {
			return errs.Parameter("branch flags have %d values, want %d", len(desorption), len(p.pressure))
		}
		p.des = append([]bool(nil), desorption...)
		return nil
	}
}

// AsBranch marks every point as belonging to b. BranchAll infers the
// branches from the data, which is the default.
func AsBranch(b Branch) PointOption {
	return func(p *PointIsotherm) error {
		switch b {
		case Adsorption, Desorption:
			p.des = make([]bool, len(p.pressure))
			for i := range p.des {
				p.des[i] = b == Desorption
			}
			return nil
		}
		p.des = nil
		return nil
	}
}

// AllowNegative permits negative fraction and percent loadings.
func AllowNegative() PointOption {
	return func(p *PointIsotherm) error {
		p.allowNegative = true
		return nil
	}
}

// NewPointIsotherm returns an isotherm holding the given points,
// expressed in the units of meta.
func NewPointIsotherm(meta Metadata, pressure, loading []float64, opts ...PointOption) (*PointIsotherm, error) {
	if err := meta.Check(); err != nil {
		return nil, err
	}
	if len(pressure) != len(loading) {
		return nil, errs.Parameter("pressure and loading lengths differ: %d != %d", len(pressure), len(loading))
	}
	if len(pressure) == 0 {
		return nil, errs.Parameter("an isotherm needs at least one point")
	}
	p := &PointIsotherm{
		Metadata: meta.clone(),
		pressure: append([]float64(nil), pressure...),
		loading:  append([]float64(nil), loading...),
	}
	for _, o := range opts {
		if err := o(p); err != nil {
			return nil, err
		}
	}
	if err := p.checkValues(p.pressure, p.loading, p.LoadingBasis); err != nil {
		return nil, err
	}
	if p.des == nil {
		des, err := GuessBranches(p.pressure)
		if err != nil {
			return nil, err
		}
		p.des = des
	}
	return p, nil
}

func (p *PointIsotherm) checkValues(pressure, loading []float64, basis units.LoadingBasis) error {
	if !units.IsFinite(pressure) || !units.IsFinite(loading) {
		return errs.Parameter("isotherm data must be finite")
	}
	ratio := basis == units.Fraction || basis == units.Percent
	for i := range pressure {
		if pressure[i] < 0 {
			return errs.Parameter("negative pressure %g", pressure[i])
		}
		if loading[i] < 0 && !(p.allowNegative && ratio) {
			return errs.Parameter("negative loading %g", loading[i])
		}
	}
	return nil
}

// GuessBranches splits a pressure sequence into an adsorption and a
// desorption branch at its maximum. Points up to the first decrease are
// adsorption and the rest desorption. A sequence that decreases from
// the first point is all desorption. The desorption part must not
// increase again.
func GuessBranches(pressure []float64) ([]bool, error) {
	des := make([]bool, len(pressure))
	turn := -1
	for i := 0; i+1 < len(pressure); i++ {
		if pressure[i+1] < pressure[i] {
			turn = i
			break
		}
	}
	if turn < 0 {
		return des, nil
	}
	for j := turn + 1; j+1 < len(pressure); j++ {
		if pressure[j+1] > pressure[j] {
			return nil, errs.Parameter("the pressure has more than one maximum (rising again at index %d); supply the branches explicitly", j+1)
		}
	}
	start := turn + 1
	if turn == 0 {
		start = 0
	}
	for i := start; i < len(des); i++ {
		des[i] = true
	}
	return des, nil
}

// HasBranch reports whether any point is on branch b.
func (p *PointIsotherm) HasBranch(b Branch) bool {
	if b == BranchAll {
		return len(p.pressure) > 0
	}
	for _, d := range p.des {
		if d == (b == Desorption) {
			return true
		}
	}
	return false
}

// Len returns the number of points.
func (p *PointIsotherm) Len() int { return len(p.pressure) }

// Branches returns the branch flags, true for desorption points.
func (p *PointIsotherm) Branches() []bool { return append([]bool(nil), p.des...) }

// OtherKeys returns the names of the auxiliary data channels.
func (p *PointIsotherm) OtherKeys() []string {
	o := make([]string, 0, len(p.other))
	for k := range p.other {
		o = append(o, k)
	}
	sort.Strings(o)
	return o
}

// indices returns the point indices on branch b.
func (p *PointIsotherm) indices(b Branch) ([]int, error) {
	if !p.HasBranch(b) {
		return nil, errs.Parameter("the isotherm has no %s branch", b)
	}
	o := make([]int, 0, len(p.pressure))
	for i, d := range p.des {
		if b == BranchAll || d == (b == Desorption) {
			o = append(o, i)
		}
	}
	return o, nil
}

func pick(v []float64, idx []int) []float64 {
	o := make([]float64, len(idx))
	for i, j := range idx {
		o[i] = v[j]
	}
	return o
}

// Pressure returns the pressures on the query branch, in the query
// units, filtered by the query limits.
func (p *PointIsotherm) Pressure(q Query) ([]float64, error) {
	idx, err := p.indices(q.Branch)
	if err != nil {
		return nil, err
	}
	f, err := p.pressureFactor(p.Units.resolve(q.Units))
	if err != nil {
		return nil, err
	}
	return filter(scale(pick(p.pressure, idx), f), q.Limits), nil
}

// Loading returns the loadings on the query branch, in the query
// units, filtered by the query limits.
func (p *PointIsotherm) Loading(q Query) ([]float64, error) {
	idx, err := p.indices(q.Branch)
	if err != nil {
		return nil, err
	}
	f, err := p.loadingFactor(p.Units.resolve(q.Units))
	if err != nil {
		return nil, err
	}
	return filter(scale(pick(p.loading, idx), f), q.Limits), nil
}

// Data returns the paired pressures and loadings on the query branch,
// keeping only points whose pressure is inside the query limits.
func (p *PointIsotherm) Data(q Query) (pressure, loading []float64, err error) {
	lim := q.Limits
	q.Limits = nil
	pres, err := p.Pressure(q)
	if err != nil {
		return nil, nil, err
	}
	load, err := p.Loading(q)
	if err != nil {
		return nil, nil, err
	}
	for i := range pres {
		if lim.Contains(pres[i]) {
			pressure = append(pressure, pres[i])
			loading = append(loading, load[i])
		}
	}
	return pressure, loading, nil
}

// OtherData returns an auxiliary data channel on the query branch,
// filtered by the query limits.
func (p *PointIsotherm) OtherData(key string, q Query) ([]float64, error) {
	v, ok := p.other[key]
	if !ok {
		return nil, errs.Parameter("the isotherm has no data %q; available keys are %v", key, p.OtherKeys())
	}
	idx, err := p.indices(q.Branch)
	if err != nil {
		return nil, err
	}
	return filter(pick(v, idx), q.Limits), nil
}

// interpolator returns the cached interpolator for key, building it on
// first use.
func (p *PointIsotherm) interpolator(key interpKey) (*interpolator, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ip, ok := p.interps[key]; ok {
		return ip, nil
	}
	idx, err := p.indices(key.branch)
	if err != nil {
		return nil, err
	}
	x, y := pick(p.pressure, idx), pick(p.loading, idx)
	if !key.onPressure {
		x, y = y, x
	}
	ip, err := newInterpolator(x, y, key.kind)
	if err != nil {
		return nil, err
	}
	if p.interps == nil {
		p.interps = make(map[interpKey]*interpolator)
	}
	p.interps[key] = ip
	return ip, nil
}

// LoadingAt interpolates the loading at each pressure. Pressures are
// in the query units, as are the returned loadings.
func (p *PointIsotherm) LoadingAt(pressure []float64, q Query) ([]float64, error) {
	return p.evaluate(pressure, q, true)
}

// PressureAt interpolates the pressure at each loading.
func (p *PointIsotherm) PressureAt(loading []float64, q Query) ([]float64, error) {
	return p.evaluate(loading, q, false)
}

func (p *PointIsotherm) evaluate(in []float64, q Query, onPressure bool) ([]float64, error) {
	t := p.Units.resolve(q.Units)
	pf, err := p.pressureFactor(t)
	if err != nil {
		return nil, err
	}
	lf, err := p.loadingFactor(t)
	if err != nil {
		return nil, err
	}
	fin, fout := pf, lf
	if !onPressure {
		fin, fout = lf, pf
	}
	ip, err := p.interpolator(interpKey{onPressure: onPressure, branch: q.Branch.single(), kind: q.Interp})
	if err != nil {
		return nil, err
	}
	var fill *Fill
	if q.Fill != nil {
		// The fill is given in output units.
		fill = &Fill{Below: q.Fill.Below / fout, Above: q.Fill.Above / fout}
	}
	o := make([]float64, len(in))
	for i, v := range in {
		y, err := ip.at(v/fin, fill)
		if err != nil {
			return nil, err
		}
		o[i] = y * fout
	}
	return o, nil
}

// SpreadingPressureAt integrates n(p)/p from zero to pressure on the
// query branch. Below the first point the isotherm is taken to follow
// Henry's law and between points it is linear. The result is in the
// query loading units.
func (p *PointIsotherm) SpreadingPressureAt(pressure float64, q Query) (float64, error) {
	t := p.Units.resolve(q.Units)
	pf, err := p.pressureFactor(t)
	if err != nil {
		return math.NaN(), err
	}
	lf, err := p.loadingFactor(t)
	if err != nil {
		return math.NaN(), err
	}
	if pressure < 0 || math.IsNaN(pressure) {
		return math.NaN(), errs.Parameter("invalid pressure %g", pressure)
	}
	b := q.Branch.single()
	idx, err := p.indices(b)
	if err != nil {
		return math.NaN(), err
	}
	ps, ns := pick(p.pressure, idx), pick(p.loading, idx)
	sort.Sort(byPressure{ps, ns})
	for len(ps) > 0 && ps[0] <= 0 {
		ps, ns = ps[1:], ns[1:]
	}
	if len(ps) == 0 {
		return math.NaN(), errs.Calculation("no points with positive pressure to integrate")
	}
	P := pressure / pf
	if P <= ps[0] {
		return ns[0] / ps[0] * P * lf, nil
	}
	pi := ns[0]
	i := 0
	for ; i+1 < len(ps) && ps[i+1] <= P; i++ {
		pi += segment(ps[i], ns[i], ps[i+1], ns[i+1])
	}
	if P > ps[i] {
		var nP float64
		if i+1 < len(ps) {
			nP = ns[i] + (ns[i+1]-ns[i])*(P-ps[i])/(ps[i+1]-ps[i])
		} else {
			if q.Fill == nil {
				return math.NaN(), errs.Calculation("pressure %g is above the data range; set a fill to extrapolate", pressure)
			}
			nP = q.Fill.Above / lf
		}
		pi += segment(ps[i], ns[i], P, nP)
	}
	return pi * lf, nil
}

// segment integrates n/p between two points joined by a line.
func segment(p0, n0, p1, n1 float64) float64 {
	if p1 == p0 {
		return 0
	}
	s := (n1 - n0) / (p1 - p0)
	b := n0 - s*p0
	return s*(p1-p0) + b*math.Log(p1/p0)
}

type byPressure struct{ p, n []float64 }

func (b byPressure) Len() int           { return len(b.p) }
func (b byPressure) Less(i, j int) bool { return b.p[i] < b.p[j] }
func (b byPressure) Swap(i, j int) {
	b.p[i], b.p[j] = b.p[j], b.p[i]
	b.n[i], b.n[j] = b.n[j], b.n[i]
}

// Convert changes the native units of the isotherm in place. Empty
// fields of u keep the current units. On error nothing changes.
func (p *PointIsotherm) Convert(u Units) error {
	t := p.Units.resolve(u)
	if err := t.Check(); err != nil {
		return err
	}
	pf, err := p.pressureFactor(t)
	if err != nil {
		return err
	}
	lf, err := units.LoadingMaterialFactor(p.loadingSpec(), t.loadingSpec(), p.materialSpec(), t.materialSpec(), p.props(p.allowNegative))
	if err != nil {
		return err
	}
	pressure, loading := scale(p.pressure, pf), scale(p.loading, lf)
	if err := p.checkValues(pressure, loading, t.LoadingBasis); err != nil {
		return err
	}
	p.mu.Lock()
	p.pressure, p.loading = pressure, loading
	p.Units = t
	p.interps = nil
	p.mu.Unlock()
	return nil
}

// ConvertPressure changes the native pressure mode and unit in place.
func (p *PointIsotherm) ConvertPressure(mode units.PressureMode, unit string) error {
	return p.Convert(Units{PressureMode: mode, PressureUnit: unit})
}

// ConvertLoading changes the native loading basis and unit in place.
func (p *PointIsotherm) ConvertLoading(basis units.LoadingBasis, unit string) error {
	return p.Convert(Units{LoadingBasis: basis, LoadingUnit: unit})
}

// ConvertMaterial changes the native material basis and unit in place.
func (p *PointIsotherm) ConvertMaterial(basis units.MaterialBasis, unit string) error {
	return p.Convert(Units{MaterialBasis: basis, MaterialUnit: unit})
}

// pointIdentity is the canonical content of a point isotherm.
type pointIdentity struct {
	Meta     []string
	Pressure []string
	Loading  []string
	Branch   []bool
	Other    [][]string
}

// ID returns a hash of the metadata and data, with values rounded to
// hash.Digits significant digits.
func (p *PointIsotherm) ID() string {
	id := pointIdentity{
		Meta:     p.identity(),
		Pressure: hash.Floats(p.pressure),
		Loading:  hash.Floats(p.loading),
		Branch:   p.des,
	}
	for _, k := range p.OtherKeys() {
		id.Other = append(id.Other, append([]string{k}, hash.Floats(p.other[k])...))
	}
	return hash.Hash(id)
}

// Clone returns an independent copy of p.
func (p *PointIsotherm) Clone() *PointIsotherm {
	o := &PointIsotherm{
		Metadata:      p.Metadata.clone(),
		pressure:      append([]float64(nil), p.pressure...),
		loading:       append([]float64(nil), p.loading...),
		des:           append([]bool(nil), p.des...),
		allowNegative: p.allowNegative,
	}
	for k, v := range p.other {
		if o.other == nil {
			o.other = make(map[string][]float64)
		}
		o.other[k] = append([]float64(nil), v...)
	}
	return o
}
