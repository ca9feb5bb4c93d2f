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

// Package hash computes deterministic identity keys for isotherms.
package hash

import (
	"encoding/gob"
	"fmt"
	"hash/fnv"
	"strconv"

	"github.com/davecgh/go-spew/spew"
)

// Hash returns a hash key for the specified object.
func Hash(object interface{}) string {
	if s, ok := object.(fmt.Stringer); ok {
		return s.String()
	}
	h := fnv.New128a()

	e := gob.NewEncoder(h)
	if err := e.Encode(object); err == nil {
		bKey := h.Sum([]byte{})
		return fmt.Sprintf("%x", bKey[0:h.Size()])
	}
	// gob refuses some values (e.g. nil interface fields in maps), so
	// fall back to a sorted spew dump.
	h.Reset()
	printer := spew.ConfigState{
		Indent:                  " ",
		SortKeys:                true,
		DisableMethods:          true,
		SpewKeys:                true,
		DisablePointerAddresses: true,
		DisableCapacities:       true,
	}
	printer.Fprintf(h, "%#v", object)
	bKey := h.Sum([]byte{})
	return fmt.Sprintf("%x", bKey[0:h.Size()])
}

// Digits is the number of significant digits kept by Float.
const Digits = 9

// Float returns a canonical string for v with Digits significant
// digits so that values which differ only by floating point round-off
// hash identically. NaN values are canonicalised to "NaN".
func Float(v float64) string {
	if v != v {
		return "NaN"
	}
	if v == 0 {
		return "0" // Also covers -0.
	}
	return strconv.FormatFloat(v, 'g', Digits, 64)
}

// Floats canonicalises each value in v using Float.
func Floats(v []float64) []string {
	o := make([]string, len(v))
	for i, vv := range v {
		o[i] = Float(vv)
	}
	return o
}
