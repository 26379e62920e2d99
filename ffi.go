/*
Copyright © 2026 the InMAP authors.
This file is part of nasaames.

nasaames is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

nasaames is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with nasaames.  If not, see <http://www.gnu.org/licenses/>.
*/

package nasaames

import "fmt"

// MaxDimensions is the largest number of independent variables that
// the NASA Ames format can represent.
const MaxDimensions = 4

// DimensionalityError is returned when the variables to be converted
// are defined against more axes than the format can express.
type DimensionalityError struct {
	Rank int
}

func (e *DimensionalityError) Error() string {
	return fmt.Sprintf("nasaames: cannot write variables defined against %d axes in NASA Ames format; "+
		"the maximum is %d", e.Rank, MaxDimensions)
}

// FFIMismatchError is returned when the requested file format index
// cannot represent the variables to be converted.
type FFIMismatchError struct {
	Requested int
	Allowed   []int
}

func (e *FFIMismatchError) Error() string {
	return fmt.Sprintf("nasaames: cannot write this data to FFI %d, can only write to: %v",
		e.Requested, e.Allowed)
}

// AllowedFFIs returns the file format indices that can represent
// variables with d dimensions, in order of preference. hasAux specifies
// whether there are auxiliary variables, secondAxisUniform whether the
// second axis of a 2-dimensional variable is uniformly spaced, and nvpm
// is the sparse auxiliary stride (0 if there is none).
func AllowedFFIs(d int, hasAux, secondAxisUniform bool, nvpm int) []int {
	switch {
	case d < 1 || d > MaxDimensions:
		return nil
	case d > 2:
		return []int{1000*d + 10}
	case d == 2:
		if secondAxisUniform {
			return []int{2010, 2110, 2310}
		}
		return []int{2010}
	case nvpm > 0:
		return []int{1020}
	case hasAux:
		return []int{1010}
	default:
		return []int{1001}
	}
}

// ResolveFFI returns the file format index for the given structure.
// requested is the index asked for by the user, or 0 to use the default.
func ResolveFFI(d int, hasAux, secondAxisUniform bool, nvpm, requested int) (int, error) {
	if d > MaxDimensions {
		return 0, &DimensionalityError{Rank: d}
	}
	allowed := AllowedFFIs(d, hasAux, secondAxisUniform, nvpm)
	if len(allowed) == 0 {
		return 0, fmt.Errorf("nasaames: no file format index for %d dimensions", d)
	}
	if requested == 0 {
		return allowed[0], nil
	}
	for _, ffi := range allowed {
		if ffi == requested {
			return ffi, nil
		}
	}
	return 0, &FFIMismatchError{Requested: requested, Allowed: allowed}
}
