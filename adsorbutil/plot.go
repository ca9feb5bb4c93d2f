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

	"github.com/spatialmodel/adsorb"
	"github.com/spatialmodel/adsorb/graphing"
	"github.com/spatialmodel/adsorb/psd"
	"github.com/spf13/cobra"
)

var plotCmd = &cobra.Command{
	Use:   "plot isotherm...",
	Short: "Draw isotherms.",
	Long: `plot draws loading against pressure for one or more isotherms and saves the
figure to the output file, in the image format given by its extension (png,
svg or pdf). Measured points are drawn as markers and models as lines. The unit
options choose the plotted units.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := os.ExpandEnv(Cfg.GetString("output"))
		if path == "" {
			return fmt.Errorf("adsorb: plot needs an output file")
		}
		isos, err := readIsotherms(cmd.Context(), args)
		if err != nil {
			return err
		}
		b, err := branch(adsorb.BranchAll)
		if err != nil {
			return err
		}
		p, err := graphing.Isotherms(isos, graphing.Options{
			Branch: b,
			Units:  unitOptions(),
			LogX:   Cfg.GetBool("logx"),
		})
		if err != nil {
			return err
		}
		if err := graphing.Save(p, path); err != nil {
			return err
		}
		return maybeOpen(path)
	},
	DisableAutoGenTag: true,
}

// writeDistribution writes a pore size distribution and, if the graph
// option is set, an image of it.
func writeDistribution(cmd *cobra.Command, title string, iso adsorb.Isotherm, r *psd.Result) error {
	if path := os.ExpandEnv(Cfg.GetString("graph")); path != "" {
		p, err := graphing.Distribution(r, title)
		if err != nil {
			return err
		}
		if err := graphing.Save(p, path); err != nil {
			return err
		}
		if err := maybeOpen(path); err != nil {
			return err
		}
	}
	return writeResult(cmd, title, iso, r)
}
