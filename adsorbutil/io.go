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
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/skratchdot/open-golang/open"
	"github.com/spatialmodel/adsorb"
	"github.com/spatialmodel/adsorb/isoio"
	"github.com/spatialmodel/adsorb/units"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Input prefixes.
const (
	isodbPrefix = "isodb:"
	storePrefix = "store:"
)

// readIsotherm reads the isotherm named by an input argument.
func readIsotherm(ctx context.Context, name string) (adsorb.Isotherm, error) {
	switch {
	case strings.HasPrefix(name, isodbPrefix):
		return isoio.FromISODB(ctx, strings.TrimPrefix(name, isodbPrefix))
	case strings.HasPrefix(name, storePrefix):
		s, err := openStore(ctx)
		if err != nil {
			return nil, err
		}
		defer s.Close()
		return s.Get(ctx, strings.TrimPrefix(name, storePrefix))
	}
	name = os.ExpandEnv(name)
	format := Cfg.GetString("inputformat")
	if format == "" {
		return isoio.ReadFile(name)
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("adsorb: problem opening isotherm: %v", err)
	}
	defer f.Close()
	return isoio.Read(f, format)
}

// readIsotherms reads every isotherm named by the arguments.
func readIsotherms(ctx context.Context, names []string) ([]adsorb.Isotherm, error) {
	isos := make([]adsorb.Isotherm, len(names))
	for i, name := range names {
		iso, err := readIsotherm(ctx, name)
		if err != nil {
			return nil, err
		}
		isos[i] = iso
	}
	return isos, nil
}

// pointIsotherm returns iso if it holds measured points.
func pointIsotherm(iso adsorb.Isotherm) (*adsorb.PointIsotherm, error) {
	p, ok := iso.(*adsorb.PointIsotherm)
	if !ok {
		return nil, fmt.Errorf("adsorb: this command needs a point isotherm, not a model isotherm")
	}
	return p, nil
}

// openStore connects to the isotherm database and creates its table.
func openStore(ctx context.Context) (*isoio.Store, error) {
	url := os.ExpandEnv(Cfg.GetString("db"))
	if url == "" {
		return nil, fmt.Errorf("adsorb: the db option must be set to use the isotherm database")
	}
	s, err := isoio.OpenStore(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// branch returns the branch option, or def if it is empty.
func branch(def adsorb.Branch) (adsorb.Branch, error) {
	s := Cfg.GetString("branch")
	if s == "" {
		return def, nil
	}
	return adsorb.ParseBranch(s)
}

// limits returns the range given by a two-element option, or nil if
// the option is empty.
func limits(name string) (*adsorb.Range, error) {
	v := Cfg.GetStringSlice(name)
	if len(v) == 0 {
		return nil, nil
	}
	if len(v) != 2 {
		return nil, fmt.Errorf("adsorb: %s must have a lower and an upper bound, not %v", name, v)
	}
	r := adsorb.Open()
	for i, s := range v {
		if strings.TrimSpace(s) == "" {
			continue
		}
		f, err := cast.ToFloat64E(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("adsorb: invalid %s bound %q: %v", name, s, err)
		}
		if i == 0 {
			r.Min = f
		} else {
			r.Max = f
		}
	}
	if r.Min > r.Max {
		return nil, fmt.Errorf("adsorb: %s lower bound %g is above upper bound %g", name, r.Min, r.Max)
	}
	return r, nil
}

// floats returns the numbers of a list option.
func floats(name string) ([]float64, error) {
	v := Cfg.GetStringSlice(name)
	o := make([]float64, len(v))
	for i, s := range v {
		f, err := cast.ToFloat64E(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("adsorb: invalid %s value %q: %v", name, s, err)
		}
		o[i] = f
	}
	return o, nil
}

// unitOptions returns the units selected by the unit options. Unset
// options are left empty.
func unitOptions() adsorb.Units {
	return adsorb.Units{
		PressureMode:  units.PressureMode(Cfg.GetString("pressuremode")),
		PressureUnit:  Cfg.GetString("pressureunit"),
		LoadingBasis:  units.LoadingBasis(Cfg.GetString("loadingbasis")),
		LoadingUnit:   Cfg.GetString("loadingunit"),
		MaterialBasis: units.MaterialBasis(Cfg.GetString("materialbasis")),
		MaterialUnit:  Cfg.GetString("materialunit"),
	}
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// output returns the destination of command output.
func output(cmd *cobra.Command) (io.WriteCloser, error) {
	path := os.ExpandEnv(Cfg.GetString("output"))
	if path == "" {
		return nopCloser{cmd.OutOrStdout()}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("adsorb: problem creating output file: %v", err)
	}
	return f, nil
}

// encode writes v as JSON or YAML. YAML keys follow the JSON field
// names of v.
func encode(w io.Writer, v interface{}, format string) error {
	switch strings.ToLower(format) {
	case "json":
		e := json.NewEncoder(w)
		e.SetIndent("", "  ")
		return e.Encode(v)
	case "yaml", "yml":
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var doc interface{}
		if err := json.Unmarshal(b, &doc); err != nil {
			return err
		}
		e := yaml.NewEncoder(w)
		e.SetIndent(2)
		if err := e.Encode(doc); err != nil {
			return err
		}
		return e.Close()
	}
	return fmt.Errorf("adsorb: output format %q is not an option; viable formats are [json yaml]", format)
}

// writeResult writes the result of a calculation on iso, and a PDF
// report of it if one is requested.
func writeResult(cmd *cobra.Command, title string, iso adsorb.Isotherm, v interface{}) error {
	w, err := output(cmd)
	if err != nil {
		return err
	}
	if err := encode(w, v, Cfg.GetString("format")); err != nil {
		w.Close()
		return fmt.Errorf("adsorb: problem writing result: %v", err)
	}
	if err := w.Close(); err != nil {
		return err
	}
	return writeReport(title, iso, v)
}

func writeReport(title string, iso adsorb.Isotherm, v interface{}) error {
	path := os.ExpandEnv(Cfg.GetString("report"))
	if path == "" {
		return nil
	}
	entries, err := isoio.Entries(v)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("adsorb: problem creating report: %v", err)
	}
	r := &isoio.Report{Title: title, Isotherm: iso, Entries: entries}
	if err := r.Write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return maybeOpen(path)
}

// maybeOpen opens a written file in the default viewer if the open
// option is set.
func maybeOpen(path string) error {
	if !Cfg.GetBool("open") {
		return nil
	}
	if err := open.Start(path); err != nil {
		return fmt.Errorf("adsorb: problem opening %s: %v", path, err)
	}
	return nil
}

// writeIsotherm writes an isotherm to the output file, or to standard
// output in the format option.
func writeIsotherm(cmd *cobra.Command, iso adsorb.Isotherm) error {
	if path := os.ExpandEnv(Cfg.GetString("output")); path != "" {
		return isoio.WriteFile(path, iso)
	}
	return isoio.Write(cmd.OutOrStdout(), iso, Cfg.GetString("format"))
}
