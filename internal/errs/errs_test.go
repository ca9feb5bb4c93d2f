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

package errs

import (
	"errors"
	"testing"
)

func TestKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		is   []error
		not  []error
	}{
		{"parameter", Parameter("bad %d", 1), []error{ErrParameter}, []error{ErrCalculation, ErrUnit}},
		{"calculation", Calculation("bad"), []error{ErrCalculation}, []error{ErrParameter}},
		{"unit", Unit("xyz"), []error{ErrUnit, ErrParameter}, []error{ErrMissingParameter}},
		{"missing", Missing("psat"), []error{ErrMissingParameter, ErrParameter}, []error{ErrUnit}},
		{"wrap", Wrap(ErrCalculation, Unit("xyz"), "converting"), []error{ErrUnit}, []error{ErrCalculation}},
		{"wrap plain", Wrap(ErrCalculation, errors.New("x"), "fitting"), []error{ErrCalculation}, nil},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			for _, k := range test.is {
				if !errors.Is(test.err, k) {
					t.Errorf("%v should be %v", test.err, k)
				}
			}
			for _, k := range test.not {
				if errors.Is(test.err, k) {
					t.Errorf("%v should not be %v", test.err, k)
				}
			}
		})
	}
}

func TestMessage(t *testing.T) {
	err := Wrap(ErrParameter, Parameter("no points"), "BET")
	want := "adsorb: BET: no points"
	if err.Error() != want {
		t.Errorf("have %q, want %q", err.Error(), want)
	}
	if Wrap(ErrParameter, nil, "x") != nil {
		t.Error("wrapping nil should be nil")
	}
}
