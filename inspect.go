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
	"math"
	"strings"

	"github.com/gonum/floats"
	"github.com/spf13/cast"
)

// Inspector provides the information about variables and axes that is
// needed to build a NASA Ames header.
type Inspector interface {
	// BestName returns the most descriptive display name for an object
	// with the given identifier and attributes.
	BestName(name string, attrs Attributes) string

	// MissingValue returns the value that marks missing data in v.
	MissingValue(v *Variable) float64

	// Flatten returns the values of v in row-major order, with
	// missing (NaN) values replaced by missing.
	Flatten(v *Variable, missing float64) []float64

	// IsUniform returns whether the axis values have a constant step.
	IsUniform(a *Axis) bool

	// Interval returns the difference between axis values j and i.
	Interval(a *Axis, i, j int) float64

	// AxisList returns the axes of v, one per dimension.
	AxisList(v *Variable) []*Axis

	// AxesIdentical returns whether a and b describe the same coordinates.
	AxesIdentical(a, b *Axis) bool

	// RegularSubset returns the stride at which the values of sub recur
	// in the values of of. ok is false if sub is not a regularly spaced
	// subset of of.
	RegularSubset(sub, of *Axis) (stride int, ok bool)
}

// DefaultInspector is the default Inspector implementation.
type DefaultInspector struct {
	// DefaultMissingValue is returned by MissingValue for variables
	// without a missing value attribute.
	DefaultMissingValue float64
}

// NewInspector returns a DefaultInspector that uses the default missing
// value from the given table.
func NewInspector(t *Table) *DefaultInspector {
	return &DefaultInspector{DefaultMissingValue: t.DefaultMissingValue}
}

// BestName implements Inspector.
func (*DefaultInspector) BestName(name string, attrs Attributes) string {
	if n, ok := attrs.GetString(attNAName); ok && n != "" {
		return n
	}
	best := name
	for _, att := range []string{"long_name", "standard_name", "title"} {
		if n, ok := attrs.GetString(att); ok && strings.TrimSpace(n) != "" {
			best = n
			break
		}
	}
	if units, ok := attrs.GetString(attUnits); ok && units != "" && !strings.Contains(best, units) {
		best += " (" + units + ")"
	}
	return best
}

// MissingValue implements Inspector.
func (i *DefaultInspector) MissingValue(v *Variable) float64 {
	for _, att := range []string{attMissingValue, attFillValue} {
		val, ok := v.Attributes.Get(att)
		if !ok {
			continue
		}
		val, ok = scalarValue(val)
		if !ok {
			continue
		}
		if f, err := cast.ToFloat64E(val); err == nil {
			return f
		}
	}
	return i.DefaultMissingValue
}

// Flatten implements Inspector.
func (*DefaultInspector) Flatten(v *Variable, missing float64) []float64 {
	o := make([]float64, len(v.Data.Elements))
	for i, val := range v.Data.Elements {
		if math.IsNaN(val) {
			o[i] = missing
		} else {
			o[i] = val
		}
	}
	return o
}

// IsUniform implements Inspector. Spacing is compared exactly.
func (i *DefaultInspector) IsUniform(a *Axis) bool {
	if a.Len() < 2 {
		return false
	}
	incr := i.Interval(a, 0, 1)
	for j := 2; j < a.Len(); j++ {
		if i.Interval(a, j-1, j) != incr {
			return false
		}
	}
	return true
}

// Interval implements Inspector.
func (*DefaultInspector) Interval(a *Axis, i, j int) float64 {
	return a.Values[j] - a.Values[i]
}

// AxisList implements Inspector.
func (*DefaultInspector) AxisList(v *Variable) []*Axis { return v.Axes }

// AxesIdentical implements Inspector.
func (*DefaultInspector) AxesIdentical(a, b *Axis) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return a.Name == b.Name && a.Units() == b.Units() && floats.Equal(a.Values, b.Values)
}

// RegularSubset implements Inspector.
func (*DefaultInspector) RegularSubset(sub, of *Axis) (int, bool) {
	if sub.Len() == 0 || of.Len() <= sub.Len() || of.Len()%sub.Len() != 0 {
		return 0, false
	}
	if sub.Units() != of.Units() {
		return 0, false
	}
	stride := of.Len() / sub.Len()
	for i, v := range sub.Values {
		if of.Values[i*stride] != v {
			return 0, false
		}
	}
	return stride, true
}
