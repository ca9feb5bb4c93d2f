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

// Package errs holds the error kinds shared by the adsorb packages.
package errs

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by an adsorb package wraps exactly
// one of these, so that errors.Is can be used to classify it.
var (
	// ErrParameter is returned when the arguments to an operation are
	// inconsistent with its contract.
	ErrParameter = errors.New("parameter error")

	// ErrCalculation is returned when a numerical procedure fails.
	ErrCalculation = errors.New("calculation error")

	// ErrUnit is returned for unknown or incompatible units.
	ErrUnit = fmt.Errorf("unit error: %w", ErrParameter)

	// ErrMissingParameter is returned when a property lookup fails.
	ErrMissingParameter = fmt.Errorf("missing parameter: %w", ErrParameter)
)

// Error is an error of a given kind.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return "adsorb: " + e.Msg }

// Unwrap returns the error kind.
func (e *Error) Unwrap() error { return e.Kind }

// Parameter returns a new ErrParameter.
func Parameter(format string, a ...interface{}) error {
	return &Error{Kind: ErrParameter, Msg: fmt.Sprintf(format, a...)}
}

// Calculation returns a new ErrCalculation.
func Calculation(format string, a ...interface{}) error {
	return &Error{Kind: ErrCalculation, Msg: fmt.Sprintf(format, a...)}
}

// Unit returns a new ErrUnit.
func Unit(format string, a ...interface{}) error {
	return &Error{Kind: ErrUnit, Msg: fmt.Sprintf(format, a...)}
}

// Missing returns a new ErrMissingParameter.
func Missing(format string, a ...interface{}) error {
	return &Error{Kind: ErrMissingParameter, Msg: fmt.Sprintf(format, a...)}
}

// Wrap annotates err with a message, keeping its kind. Errors that do
// not carry a kind are classified as kind.
func Wrap(kind, err error, format string, a ...interface{}) error {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, a...)
	var e *Error
	if errors.As(err, &e) {
		return &Error{Kind: e.Kind, Msg: msg + ": " + e.Msg}
	}
	return &Error{Kind: kind, Msg: msg + ": " + err.Error()}
}
