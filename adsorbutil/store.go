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

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/adsorb/isoio"
	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch filename",
	Short: "Download an isotherm from the NIST ISODB.",
	Long: `fetch downloads the isotherm with the given ISODB filename, e.g.
10.1021Jp9096538.Isotherm1, and writes it in the format given by the format
option or the output file extension.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		iso, err := isoio.FromISODB(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return writeIsotherm(cmd, iso)
	},
	DisableAutoGenTag: true,
}

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the isotherm database.",
	Long: `store saves isotherms to and retrieves them from a PostgreSQL database,
given by the db option. Stored isotherms are identified by their ID and can be
used as the input of other commands as "store:<id>".`,
	DisableAutoGenTag: true,
}

var storePutCmd = &cobra.Command{
	Use:   "put isotherm...",
	Short: "Save isotherms to the database.",
	Long:  `put saves isotherms to the database and prints their IDs.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		isos, err := readIsotherms(cmd.Context(), args)
		if err != nil {
			return err
		}
		s, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()
		for i, iso := range isos {
			id, err := s.Put(cmd.Context(), iso)
			if err != nil {
				return err
			}
			logrus.WithFields(logrus.Fields{"file": args[i], "id": id}).Info("stored isotherm")
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
		return nil
	},
	DisableAutoGenTag: true,
}

var storeGetCmd = &cobra.Command{
	Use:   "get id",
	Short: "Retrieve an isotherm from the database.",
	Long:  `get retrieves the isotherm with the given ID.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		iso, err := readIsotherm(cmd.Context(), storePrefix+args[0])
		if err != nil {
			return err
		}
		return writeIsotherm(cmd, iso)
	},
	DisableAutoGenTag: true,
}

var storeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the isotherms in the database.",
	Long: `list lists the stored isotherms, optionally filtered by material,
adsorbate and temperature.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()
		l, err := s.List(cmd.Context(), isoio.Filter{
			Material:       Cfg.GetString("material"),
			Adsorbate:      Cfg.GetString("adsorbate"),
			MinTemperature: Cfg.GetFloat64("mintemperature"),
			MaxTemperature: Cfg.GetFloat64("maxtemperature"),
		})
		if err != nil {
			return err
		}
		return writeResult(cmd, "Stored isotherms", nil, l)
	},
	DisableAutoGenTag: true,
}

var storeDeleteCmd = &cobra.Command{
	Use:   "delete id...",
	Short: "Delete isotherms from the database.",
	Long:  `delete removes the isotherms with the given IDs.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()
		for _, id := range args {
			if err := s.Delete(cmd.Context(), id); err != nil {
				return err
			}
		}
		return nil
	},
	DisableAutoGenTag: true,
}
