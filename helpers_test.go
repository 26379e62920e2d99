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

import (
	"testing"

	"github.com/ctessum/sparse"
)

// testAxis creates an axis with the given values.
func testAxis(name string, vals ...float64) *Axis {
	return &Axis{Name: name, Values: vals}
}

// rangeAxis creates an axis with n values starting at start and
// increasing by step.
func rangeAxis(name string, n int, start, step float64) *Axis {
	a := &Axis{Name: name, Values: make([]float64, n)}
	for i := range a.Values {
		a.Values[i] = start + float64(i)*step
	}
	return a
}

// testVar creates a variable defined against axes whose elements are
// their own flat index.
func testVar(t *testing.T, name string, attrs Attributes, axes ...*Axis) *Variable {
	t.Helper()
	shape := make([]int, len(axes))
	for i, a := range axes {
		shape[i] = a.Len()
	}
	data := sparse.ZerosDense(shape...)
	for i := range data.Elements {
		data.Elements[i] = float64(i)
	}
	v, err := NewVariable(name, data, attrs, axes...)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

// scalarVar creates a rank-zero variable.
func scalarVar(t *testing.T, name string, val float64, attrs Attributes) *Variable {
	t.Helper()
	data := sparse.ZerosDense()
	data.Elements[0] = val
	v, err := NewVariable(name, data, attrs)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func names(vars []*Variable) []string {
	o := make([]string, len(vars))
	for i, v := range vars {
		o[i] = v.Name
	}
	return o
}
