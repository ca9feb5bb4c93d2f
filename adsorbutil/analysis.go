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

package adsorbutil

import (
	"fmt"
	"os"
	"strings"

	"github.com/spatialmodel/adsorb"
	"github.com/spatialmodel/adsorb/characterisation"
	"github.com/spatialmodel/adsorb/iast"
	"github.com/spatialmodel/adsorb/modelling"
	"github.com/spatialmodel/adsorb/prediction"
	"github.com/spatialmodel/adsorb/psd"
	"github.com/spf13/cobra"
)

// convertCmd changes the units of an isotherm.
var convertCmd = &cobra.Command{
	Use:   "convert isotherm",
	Short: "Convert an isotherm to other units or another file format.",
	Long: `convert reads an isotherm, converts its pressure, loading and material
units to those given by the unit options, and writes it out. Unit options
that are not set keep the units of the isotherm. Writing to an output file
with a different extension converts the file format.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		iso, err := readIsotherm(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if u := unitOptions(); u != (adsorb.Units{}) {
			p, err := pointIsotherm(iso)
			if err != nil {
				return err
			}
			if err := p.Convert(u); err != nil {
				return err
			}
		}
		return writeIsotherm(cmd, iso)
	},
	DisableAutoGenTag: true,
}

// fitCmd fits a model to an isotherm.
var fitCmd = &cobra.Command{
	Use:   "fit isotherm",
	Short: "Fit an isotherm model to measured points.",
	Long: `fit fits the model given by the model option to one branch of a point
isotherm and writes the resulting model isotherm. With model "guess", each
of the candidate models is fitted and the one with the lowest error is kept.
Available models are: ` + strings.Join(modelling.Names(), ", ") + ".",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		iso, err := readIsotherm(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		p, err := pointIsotherm(iso)
		if err != nil {
			return err
		}
		b, err := branch(adsorb.Adsorption)
		if err != nil {
			return err
		}
		var m *adsorb.ModelIsotherm
		if name := Cfg.GetString("model"); strings.EqualFold(name, "guess") {
			m, err = adsorb.GuessFromPoint(p, Cfg.GetStringSlice("models"), b, modelling.FitOptions{})
		} else {
			m, err = adsorb.ModelFromPoint(p, name, b, modelling.FitOptions{})
		}
		if err != nil {
			return err
		}
		return writeIsotherm(cmd, m)
	},
	DisableAutoGenTag: true,
}

var areaCmd = &cobra.Command{
	Use:   "area",
	Short: "Calculate the specific surface area of a material.",
	Long: `area calculates the specific surface area of a material from a nitrogen
or other isotherm. Use the subcommands specified below to choose a method.`,
	DisableAutoGenTag: true,
}

var areaBETCmd = &cobra.Command{
	Use:   "bet isotherm",
	Short: "Calculate the BET area.",
	Long: `bet calculates the Brunauer-Emmett-Teller area. If limits are not given,
the pressure range is chosen by the Rouquerol criteria.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		iso, b, lim, err := analysisInputs(cmd, args[0], adsorb.Adsorption)
		if err != nil {
			return err
		}
		r, err := characterisation.AreaBET(iso, b, lim)
		if err != nil {
			return err
		}
		return writeResult(cmd, "BET area", iso, r)
	},
	DisableAutoGenTag: true,
}

var areaLangmuirCmd = &cobra.Command{
	Use:   "langmuir isotherm",
	Short: "Calculate the Langmuir area.",
	Long:  `langmuir calculates the area of a Langmuir monolayer.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		iso, b, lim, err := analysisInputs(cmd, args[0], adsorb.Adsorption)
		if err != nil {
			return err
		}
		r, err := characterisation.AreaLangmuir(iso, b, lim)
		if err != nil {
			return err
		}
		return writeResult(cmd, "Langmuir area", iso, r)
	},
	DisableAutoGenTag: true,
}

var tplotCmd = &cobra.Command{
	Use:   "tplot isotherm",
	Short: "Analyse an isotherm with a t-plot.",
	Long: `tplot plots the loading against the thickness of the adsorbed layer and
finds the linear sections, which give the pore volume and external area.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		iso, b, lim, err := analysisInputs(cmd, args[0], adsorb.Adsorption)
		if err != nil {
			return err
		}
		t, err := characterisation.ThicknessModel(Cfg.GetString("thickness"))
		if err != nil {
			return err
		}
		r, err := characterisation.TPlot(iso, b, t, lim)
		if err != nil {
			return err
		}
		return writeResult(cmd, "t-plot", iso, r)
	},
	DisableAutoGenTag: true,
}

var alphasCmd = &cobra.Command{
	Use:   "alphas isotherm",
	Short: "Analyse an isotherm with an αs-plot.",
	Long: `alphas compares an isotherm with the isotherm of the same adsorbate on a
non-porous reference material, given by the reference option.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		iso, b, lim, err := analysisInputs(cmd, args[0], adsorb.Adsorption)
		if err != nil {
			return err
		}
		refName := Cfg.GetString("reference")
		if refName == "" {
			return fmt.Errorf("adsorb: alphas needs a reference isotherm")
		}
		ref, err := readIsotherm(cmd.Context(), refName)
		if err != nil {
			return err
		}
		r, err := characterisation.AlphaS(iso, ref, characterisation.AlphaSOptions{
			Branch:           b,
			ReferenceBranch:  adsorb.Adsorption,
			ReferenceArea:    Cfg.GetString("referencearea"),
			ReducingPressure: Cfg.GetFloat64("reducingpressure"),
			Limits:           lim,
		})
		if err != nil {
			return err
		}
		return writeResult(cmd, "αs-plot", iso, r)
	},
	DisableAutoGenTag: true,
}

var dubininCmd = &cobra.Command{
	Use:   "dubinin isotherm",
	Short: "Calculate the micropore volume with the Dubinin method.",
	Long: `dubinin calculates the micropore volume and characteristic potential
with a Dubinin-Astakhov plot. The default exponent of 2 gives the
Dubinin-Radushkevich plot.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		iso, err := readIsotherm(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		lim, err := limits("limits")
		if err != nil {
			return err
		}
		r, err := characterisation.DAPlot(iso, Cfg.GetFloat64("exp"), lim)
		if err != nil {
			return err
		}
		return writeResult(cmd, "Dubinin plot", iso, r)
	},
	DisableAutoGenTag: true,
}

// HenryResult is the output of the henry command.
type HenryResult struct {
	Method string  `json:"method"`
	K      float64 `json:"henry_constant"`
}

var henryCmd = &cobra.Command{
	Use:   "henry isotherm",
	Short: "Calculate the initial Henry constant.",
	Long: `henry calculates the Henry constant of an isotherm at low loading, either
from the initial slope or from a virial model fit.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		iso, err := readIsotherm(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		method := strings.ToLower(Cfg.GetString("method"))
		var k float64
		switch method {
		case "slope":
			lim, err := limits("limits")
			if err != nil {
				return err
			}
			k, err = characterisation.InitialHenrySlope(iso, Cfg.GetFloat64("maxadjrms"), lim, nil)
			if err != nil {
				return err
			}
		case "virial":
			p, err := pointIsotherm(iso)
			if err != nil {
				return err
			}
			k, err = characterisation.InitialHenryVirial(p, modelling.FitOptions{})
			if err != nil {
				return err
			}
		default:
			return fmt.Errorf("adsorb: henry method %q is not an option; viable methods are [slope virial]", method)
		}
		r := &HenryResult{Method: method, K: k}
		return writeResult(cmd, "Henry constant", iso, r)
	},
	DisableAutoGenTag: true,
}

var enthalpyCmd = &cobra.Command{
	Use:   "enthalpy isotherm isotherm...",
	Short: "Calculate the isosteric enthalpy of adsorption.",
	Long: `enthalpy calculates the isosteric enthalpy of adsorption from isotherms
of the same adsorbate and material measured at different temperatures.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		isos, err := readIsotherms(cmd.Context(), args)
		if err != nil {
			return err
		}
		b, err := branch(adsorb.Adsorption)
		if err != nil {
			return err
		}
		loading, err := floats("loadings")
		if err != nil {
			return err
		}
		r, err := characterisation.IsostericEnthalpy(isos, loading, b)
		if err != nil {
			return err
		}
		return writeResult(cmd, "Isosteric enthalpy", isos[0], r)
	},
	DisableAutoGenTag: true,
}

var whittakerCmd = &cobra.Command{
	Use:   "whittaker isotherm",
	Short: "Estimate the isosteric enthalpy from a single isotherm.",
	Long: `whittaker estimates the isosteric enthalpy of adsorption from one isotherm
with the Whittaker method. Point isotherms are first fitted with the model
option, which must be a Toth-type model: ` + strings.Join(characterisation.WhittakerModels, ", ") + `.
With model "guess" the best of these is used.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		iso, err := readIsotherm(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		b, err := branch(adsorb.Adsorption)
		if err != nil {
			return err
		}
		loading, err := floats("loadings")
		if err != nil {
			return err
		}
		if len(loading) == 0 {
			loading = nil
		}
		r, err := characterisation.WhittakerEnthalpy(iso, characterisation.WhittakerOptions{
			Model:   Cfg.GetString("model"),
			Branch:  b,
			Loading: loading,
		})
		if err != nil {
			return err
		}
		return writeResult(cmd, "Whittaker enthalpy", iso, r)
	},
	DisableAutoGenTag: true,
}

// InitialEnthalpyResult is the output of the initial-enthalpy command.
type InitialEnthalpyResult struct {
	Method          string             `json:"method"`
	InitialEnthalpy float64            `json:"initial_enthalpy"`
	Params          map[string]float64 `json:"params,omitempty"`
}

var initialEnthalpyCmd = &cobra.Command{
	Use:   "initial-enthalpy isotherm",
	Short: "Calculate the enthalpy of adsorption at zero loading.",
	Long: `initial-enthalpy calculates the enthalpy of adsorption at zero loading from
differential enthalpies stored in a data channel of the isotherm. Method
"comp" fits a curve with constant, active site and adsorbate interaction
contributions; method "point" takes the first point.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		iso, err := readIsotherm(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		p, err := pointIsotherm(iso)
		if err != nil {
			return err
		}
		b, err := branch(adsorb.Adsorption)
		if err != nil {
			return err
		}
		key := Cfg.GetString("key")
		r := &InitialEnthalpyResult{Method: strings.ToLower(Cfg.GetString("enthalpymethod"))}
		switch r.Method {
		case "comp":
			c, err := characterisation.InitialEnthalpyComp(p, characterisation.InitialEnthalpyOptions{Key: key, Branch: b})
			if err != nil {
				return err
			}
			r.InitialEnthalpy, r.Params = c.InitialEnthalpy, c.Params
		case "point":
			if r.InitialEnthalpy, err = characterisation.InitialEnthalpyPoint(p, key, b); err != nil {
				return err
			}
		default:
			return fmt.Errorf("adsorb: initial enthalpy method %q is not an option; viable methods are [comp point]", r.Method)
		}
		return writeResult(cmd, "Initial enthalpy", iso, r)
	},
	DisableAutoGenTag: true,
}

var predictCmd = &cobra.Command{
	Use:   "predict isotherm",
	Short: "Predict an isotherm at another temperature.",
	Long: `predict shifts an isotherm to the temperature option with the
Clausius-Clapeyron relation, using the isosteric enthalpies (kJ/mol) in its
enthalpy data channel. The predicted isotherm is in Pa and mol/kg.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		iso, err := readIsotherm(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		p, err := pointIsotherm(iso)
		if err != nil {
			return err
		}
		b, err := branch(adsorb.Adsorption)
		if err != nil {
			return err
		}
		T := Cfg.GetFloat64("temperature")
		if T <= 0 {
			return fmt.Errorf("adsorb: the prediction temperature must be positive, not %g K", T)
		}
		pred, err := prediction.FromEnthalpy(p, T, prediction.Options{Branch: b, Key: Cfg.GetString("key")})
		if err != nil {
			return err
		}
		return writeIsotherm(cmd, pred)
	},
	DisableAutoGenTag: true,
}

var psdCmd = &cobra.Command{
	Use:   "psd",
	Short: "Calculate pore size distributions.",
	Long: `psd calculates the pore size distribution of a material. Use the
subcommands specified below to choose the pore range.`,
	DisableAutoGenTag: true,
}

// geometry returns the geometry option, or "" if it is not set.
func geometry() (characterisation.Geometry, error) {
	s := Cfg.GetString("geometry")
	if s == "" {
		return "", nil
	}
	return characterisation.ParseGeometry(s)
}

var psdMicroCmd = &cobra.Command{
	Use:   "micro isotherm",
	Short: "Calculate a micropore size distribution.",
	Long: `micro calculates a micropore size distribution with the Horvath-Kawazoe
method and its Saito-Foley and Cheng-Yang variants for cylindrical and
spherical pores.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		iso, b, lim, err := analysisInputs(cmd, args[0], adsorb.Adsorption)
		if err != nil {
			return err
		}
		g, err := geometry()
		if err != nil {
			return err
		}
		r, err := psd.Microporous(iso, psd.MicroOptions{
			Model:     Cfg.GetString("psdmodel"),
			Geometry:  g,
			Branch:    b,
			Adsorbent: Cfg.GetString("adsorbent"),
			PLimits:   lim,
		})
		if err != nil {
			return err
		}
		return writeDistribution(cmd, "Micropore size distribution", iso, r)
	},
	DisableAutoGenTag: true,
}

var psdMesoCmd = &cobra.Command{
	Use:   "meso isotherm",
	Short: "Calculate a mesopore size distribution.",
	Long: `meso calculates a mesopore size distribution from capillary condensation,
by default on the desorption branch.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		iso, b, lim, err := analysisInputs(cmd, args[0], adsorb.Desorption)
		if err != nil {
			return err
		}
		g, err := geometry()
		if err != nil {
			return err
		}
		t, err := characterisation.ThicknessModel(Cfg.GetString("thickness"))
		if err != nil {
			return err
		}
		k, err := characterisation.KelvinModel(Cfg.GetString("kelvin"))
		if err != nil {
			return err
		}
		r, err := psd.Mesoporous(iso, psd.MesoOptions{
			Model:     Cfg.GetString("psdmodel"),
			Geometry:  g,
			Meniscus:  characterisation.Meniscus(strings.ToLower(Cfg.GetString("meniscus"))),
			Branch:    b,
			Thickness: t,
			Kelvin:    k,
			PLimits:   lim,
		})
		if err != nil {
			return err
		}
		return writeDistribution(cmd, "Mesopore size distribution", iso, r)
	},
	DisableAutoGenTag: true,
}

var psdDFTCmd = &cobra.Command{
	Use:   "dft isotherm",
	Short: "Fit a DFT kernel to an isotherm.",
	Long: `dft fits an isotherm as a combination of the local isotherms of a DFT
kernel, given by the kernel option.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		iso, b, lim, err := analysisInputs(cmd, args[0], adsorb.Adsorption)
		if err != nil {
			return err
		}
		o := psd.DefaultDFTOptions(os.ExpandEnv(Cfg.GetString("kernel")))
		o.Branch = b
		o.PLimits = lim
		o.BSplineOrder = Cfg.GetInt("bsplineorder")
		r, err := psd.DFT(iso, o)
		if err != nil {
			return err
		}
		return writeDistribution(cmd, "DFT pore size distribution", iso, r)
	},
	DisableAutoGenTag: true,
}

var iastCmd = &cobra.Command{
	Use:   "iast isotherm isotherm...",
	Short: "Predict mixture adsorption with ideal adsorbed solution theory.",
	Long: `iast predicts the adsorption of a gas mixture from the isotherms of the
pure components. The mode option chooses the calculation:

  point    the adsorbed phase in equilibrium with gas fractions at a pressure
  reverse  the gas phase in equilibrium with adsorbed fractions at a pressure
  vle      the equilibrium curve of a binary mixture at a pressure
  svp      the selectivity of a binary mixture over a range of pressures`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		isos, err := readIsotherms(cmd.Context(), args)
		if err != nil {
			return err
		}
		o := iast.Options{Units: unitOptions(), Quiet: Cfg.GetBool("quiet")}
		fractions, err := floats("fractions")
		if err != nil {
			return err
		}
		P := Cfg.GetFloat64("pressure")
		var r interface{}
		switch mode := strings.ToLower(Cfg.GetString("mode")); mode {
		case "point":
			r, err = iast.IAST(isos, fractions, P, o)
		case "reverse":
			r, err = iast.Reverse(isos, fractions, P, o)
		case "vle":
			r, err = iast.BinaryVLE(isos, P, Cfg.GetInt("npoints"), o)
		case "svp":
			var pressures []float64
			if pressures, err = floats("pressures"); err == nil {
				r, err = iast.BinarySVP(isos, fractions, pressures, o)
			}
		default:
			return fmt.Errorf("adsorb: iast mode %q is not an option; viable modes are [point reverse vle svp]", mode)
		}
		if err != nil {
			return err
		}
		return writeResult(cmd, "IAST", nil, r)
	},
	DisableAutoGenTag: true,
}

// analysisInputs reads the isotherm argument of a single-isotherm
// calculation along with the branch and limits options.
func analysisInputs(cmd *cobra.Command, name string, def adsorb.Branch) (adsorb.Isotherm, adsorb.Branch, *adsorb.Range, error) {
	iso, err := readIsotherm(cmd.Context(), name)
	if err != nil {
		return nil, 0, nil, err
	}
	b, err := branch(def)
	if err != nil {
		return nil, 0, nil, err
	}
	lim, err := limits("limits")
	if err != nil {
		return nil, 0, nil, err
	}
	return iso, b, lim, nil
}
