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

package characterisation

import (
	"math"
	"sort"
	"strings"

	"github.com/Knetic/govaluate"
	"github.com/spatialmodel/adsorb"
	"github.com/spatialmodel/adsorb/internal/errs"
	"github.com/spf13/cast"
)

// Thickness maps a relative pressure onto the thickness of the adsorbed
// film, in nm.
type Thickness interface {
	Thickness(p float64) (float64, error)
}

// ThicknessFunc adapts a function to the Thickness interface.
type ThicknessFunc func(p float64) float64

// Thickness returns f(p).
func (f ThicknessFunc) Thickness(p float64) (float64, error) { return f(p), nil }

var (
	// Halsey is the Halsey thickness curve, for nitrogen at 77 K.
	Halsey ThicknessFunc = func(p float64) float64 {
		return 0.354 * math.Pow(-5/math.Log(p), 0.333)
	}

	// HarkinsJura is the Harkins and Jura thickness curve, for nitrogen
	// at 77 K.
	HarkinsJura ThicknessFunc = func(p float64) float64 {
		return math.Sqrt(0.1399 / (0.034 - math.Log10(p)))
	}

	// ZeroThickness assumes no adsorbed film, i.e. pure condensation.
	ZeroThickness ThicknessFunc = func(float64) float64 { return 0 }
)

var thicknessModels = map[string]Thickness{
	"halsey":       Halsey,
	"harkins/jura": HarkinsJura,
	"harkinsjura":  HarkinsJura,
	"zero":         ZeroThickness,
}

// ThicknessModel returns the named thickness model. Names that are not
// built in are parsed as an expression in p.
func ThicknessModel(name string) (Thickness, error) {
	if t, ok := thicknessModels[strings.ToLower(strings.TrimSpace(name))]; ok {
		return t, nil
	}
	t, err := Expression(name)
	if err != nil {
		names := make([]string, 0, len(thicknessModels))
		for k := range thicknessModels {
			names = append(names, k)
		}
		sort.Strings(names)
		return nil, errs.Parameter("%q is neither a thickness model %v nor a valid expression in p: %v", name, names, err)
	}
	return t, nil
}

type expression struct {
	src  string
	expr *govaluate.EvaluableExpression
}

// Expression returns a thickness model given by an arithmetic
// expression of the relative pressure p, e.g. "0.1*p + 0.3". The
// functions ln, log10, exp, sqrt and pow are available.
func Expression(src string) (Thickness, error) {
	e, err := govaluate.NewEvaluableExpressionWithFunctions(src, expressionFunctions)
	if err != nil {
		return nil, errs.Parameter("thickness expression %q: %v", src, err)
	}
	for _, v := range e.Vars() {
		if v != "p" {
			return nil, errs.Parameter("thickness expression %q: unknown variable %q; only p is defined", src, v)
		}
	}
	return &expression{src: src, expr: e}, nil
}

func (e *expression) Thickness(p float64) (float64, error) {
	v, err := e.expr.Evaluate(map[string]interface{}{"p": p})
	if err != nil {
		return math.NaN(), errs.Calculation("thickness expression %q at p=%g: %v", e.src, p, err)
	}
	t, err := cast.ToFloat64E(v)
	if err != nil {
		return math.NaN(), errs.Calculation("thickness expression %q: %v", e.src, err)
	}
	return t, nil
}

func (e *expression) String() string { return e.src }

// unary wraps a one-argument float function for govaluate.
func unary(name string, f func(float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, errs.Parameter("%s takes one argument, not %d", name, len(args))
		}
		x, err := cast.ToFloat64E(args[0])
		if err != nil {
			return nil, err
		}
		return f(x), nil
	}
}

var expressionFunctions = map[string]govaluate.ExpressionFunction{
	"ln":    unary("ln", math.Log),
	"log10": unary("log10", math.Log10),
	"exp":   unary("exp", math.Exp),
	"sqrt":  unary("sqrt", math.Sqrt),
	"pow": func(args ...interface{}) (interface{}, error) {
		if len(args) != 2 {
			return nil, errs.Parameter("pow takes two arguments, not %d", len(args))
		}
		x, err := cast.ToFloat64E(args[0])
		if err != nil {
			return nil, err
		}
		y, err := cast.ToFloat64E(args[1])
		if err != nil {
			return nil, err
		}
		return math.Pow(x, y), nil
	},
}

type isothermThickness struct {
	iso              adsorb.Isotherm
	branch           adsorb.Branch
	monolayer, layer float64
}

// FromIsotherm uses a reference isotherm as a thickness model: the
// film thickness at p is layer·n(p)/monolayer, with n in the native
// loading units of the isotherm and layer the thickness of one
// monolayer in nm.
func FromIsotherm(iso adsorb.Isotherm, b adsorb.Branch, monolayer, layer float64) (Thickness, error) {
	if !(monolayer > 0) || !(layer > 0) {
		return nil, errs.Parameter("the monolayer loading and thickness must be positive, have %g and %g", monolayer, layer)
	}
	if b == adsorb.BranchAll {
		b = adsorb.Adsorption
	}
	if !iso.HasBranch(b) {
		return nil, errs.Parameter("the reference isotherm has no %s branch", b)
	}
	return &isothermThickness{iso: iso, branch: b, monolayer: monolayer, layer: layer}, nil
}

func (t *isothermThickness) Thickness(p float64) (float64, error) {
	n, err := t.iso.LoadingAt([]float64{p}, adsorb.Query{
		Branch: t.branch,
		Units:  adsorb.Units{PressureMode: relativeMolar.PressureMode},
	})
	if err != nil {
		return math.NaN(), err
	}
	return t.layer * n[0] / t.monolayer, nil
}

// thicknesses evaluates t at each pressure.
func thicknesses(t Thickness, pressure []float64) ([]float64, error) {
	o := make([]float64, len(pressure))
	for i, p := range pressure {
		var err error
		if o[i], err = t.Thickness(p); err != nil {
			return nil, err
		}
	}
	return o, nil
}
