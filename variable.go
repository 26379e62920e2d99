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

// Package nasaames converts collections of labeled, multi-dimensional
// array variables and their metadata attributes into the header
// representation of the NASA Ames interchange format.
package nasaames

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/ctessum/sparse"
	"github.com/spf13/cast"
)

// Version is the version of this package. It is recorded in the
// history lines of converted files.
const Version = "1.0.0"

// Attribute names with a special meaning to the converter.
const (
	attVarNumber    = "nasa_ames_var_number"
	attAuxVarNumber = "nasa_ames_aux_var_number"
	attNAName       = "nasa_ames_name"
	attUnits        = "units"
	attMissingValue = "missing_value"
	attFillValue    = "_FillValue"
)

// Attribute is a single named metadata value. Value is typically
// a string, a number, or a slice of numbers.
type Attribute struct {
	Name  string
	Value interface{}
}

// Attributes is an ordered set of metadata attributes.
type Attributes []Attribute

// Get returns the value of the attribute with the given name.
func (a Attributes) Get(name string) (interface{}, bool) {
	for _, att := range a {
		if att.Name == name {
			return att.Value, true
		}
	}
	return nil, false
}

// GetString returns the value of the named attribute as a string.
// ok is false if the attribute does not exist or is not text.
func (a Attributes) GetString(name string) (s string, ok bool) {
	v, ok := a.Get(name)
	if !ok {
		return "", false
	}
	s, ok = v.(string)
	return s, ok
}

// Set returns a copy of a where the named attribute has been given the
// specified value, appending it if it did not exist.
func (a Attributes) Set(name string, value interface{}) Attributes {
	o := make(Attributes, len(a), len(a)+1)
	copy(o, a)
	for i, att := range o {
		if att.Name == name {
			o[i].Value = value
			return o
		}
	}
	return append(o, Attribute{Name: name, Value: value})
}

// Merge returns a copy of a with the attributes in b added to it.
// Attributes in b take precedence over attributes in a with the
// same name.
func (a Attributes) Merge(b Attributes) Attributes {
	o := a
	for _, att := range b {
		o = o.Set(att.Name, att.Value)
	}
	return o
}

// Axis is a coordinate axis naming one dimension of a variable.
// Temporal axes hold numeric offsets and have a `units` attribute in the
// form "<unit> since <reference time>".
type Axis struct {
	Name       string
	Values     []float64
	Attributes Attributes
}

// Len returns the number of values in the axis.
func (a *Axis) Len() int { return len(a.Values) }

// Units returns the units attribute of the axis, or "" if there is none.
func (a *Axis) Units() string {
	u, _ := a.Attributes.GetString(attUnits)
	return u
}

var timeUnitsRegexp = regexp.MustCompile(`^\s*(\w+)\s+since\s+(.+?)\s*$`)

var timeUnitDurations = map[string]time.Duration{
	"second":  time.Second,
	"seconds": time.Second,
	"sec":     time.Second,
	"secs":    time.Second,
	"s":       time.Second,
	"minute":  time.Minute,
	"minutes": time.Minute,
	"min":     time.Minute,
	"mins":    time.Minute,
	"hour":    time.Hour,
	"hours":   time.Hour,
	"hr":      time.Hour,
	"hrs":     time.Hour,
	"h":       time.Hour,
	"day":     24 * time.Hour,
	"days":    24 * time.Hour,
	"d":       24 * time.Hour,
}

var referenceTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006-1-2 15:04:05",
	"2006-1-2",
}

// parseTimeUnits parses CF-style time units such as
// "hours since 2017-01-01 00:00:00".
func parseTimeUnits(units string) (step time.Duration, ref time.Time, err error) {
	m := timeUnitsRegexp.FindStringSubmatch(units)
	if m == nil {
		return 0, time.Time{}, fmt.Errorf("nasaames: invalid time units %q", units)
	}
	step, ok := timeUnitDurations[strings.ToLower(m[1])]
	if !ok {
		return 0, time.Time{}, fmt.Errorf("nasaames: unsupported time unit %q", m[1])
	}
	refString := strings.TrimSuffix(strings.TrimSpace(m[2]), " UTC")
	for _, layout := range referenceTimeLayouts {
		if ref, err = time.Parse(layout, refString); err == nil {
			return step, ref.UTC(), nil
		}
	}
	return 0, time.Time{}, fmt.Errorf("nasaames: invalid reference time in units %q", units)
}

// IsTime returns whether the axis holds temporal values.
func (a *Axis) IsTime() bool {
	_, _, err := parseTimeUnits(a.Units())
	return err == nil
}

// Time returns the i'th axis value as a time.
func (a *Axis) Time(i int) (time.Time, error) {
	step, ref, err := parseTimeUnits(a.Units())
	if err != nil {
		return time.Time{}, err
	}
	if i < 0 || i >= len(a.Values) {
		return time.Time{}, fmt.Errorf("nasaames: axis %s: index %d out of range", a.Name, i)
	}
	// Whole days are added separately so that offsets of more than
	// a few hundred years do not overflow a time.Duration.
	sec := a.Values[i] * step.Seconds()
	days := math.Floor(sec / secondsPerDay)
	if math.IsNaN(days) || math.Abs(days) > maxOffsetDays {
		return time.Time{}, fmt.Errorf("nasaames: axis %s: time offset %g %s is out of range",
			a.Name, a.Values[i], a.Units())
	}
	rem := sec - days*secondsPerDay
	return ref.AddDate(0, 0, int(days)).Add(time.Duration(rem * float64(time.Second))), nil
}

const (
	secondsPerDay = 24 * 60 * 60

	// maxOffsetDays is about a million years.
	maxOffsetDays = 365e6
)

// NewTimeAxis creates a temporal axis from a list of times, recorded as
// offsets in seconds from the first time.
func NewTimeAxis(name string, times []time.Time) *Axis {
	a := &Axis{Name: name, Values: make([]float64, len(times))}
	if len(times) == 0 {
		return a
	}
	ref := times[0].UTC()
	for i, t := range times {
		a.Values[i] = t.Sub(ref).Seconds()
	}
	a.Attributes = Attributes{{Name: attUnits, Value: "seconds since " + ref.Format("2006-01-02 15:04:05")}}
	return a
}

// Variable is a named array of values together with one coordinate axis
// per dimension and a set of metadata attributes. Variables are
// never modified by the converter.
type Variable struct {
	Name       string
	Data       *sparse.DenseArray
	Axes       []*Axis
	Attributes Attributes
}

// NewVariable creates a new variable, checking that the axes are
// consistent with the shape of the data.
func NewVariable(name string, data *sparse.DenseArray, attrs Attributes, axes ...*Axis) (*Variable, error) {
	if data == nil {
		return nil, fmt.Errorf("nasaames: variable %s has no data", name)
	}
	if len(axes) != len(data.Shape) {
		return nil, fmt.Errorf("nasaames: variable %s has %d dimensions but %d axes",
			name, len(data.Shape), len(axes))
	}
	for i, a := range axes {
		if a == nil {
			return nil, fmt.Errorf("nasaames: variable %s axis %d is nil", name, i)
		}
		if a.Len() != data.Shape[i] {
			return nil, fmt.Errorf("nasaames: variable %s dimension %d has length %d but axis %s has length %d",
				name, i, data.Shape[i], a.Name, a.Len())
		}
	}
	return &Variable{Name: name, Data: data, Axes: axes, Attributes: attrs}, nil
}

// Rank returns the number of dimensions of the variable.
func (v *Variable) Rank() int { return len(v.Data.Shape) }

// Shape returns the dimension sizes of the variable.
func (v *Variable) Shape() []int { return v.Data.Shape }

// Size returns the number of elements in the variable.
func (v *Variable) Size() int {
	n := 1
	for _, d := range v.Data.Shape {
		n *= d
	}
	return n
}

// Dataset is a set of variables read from one source, together with
// the source's global attributes.
type Dataset struct {
	Variables []*Variable
	Globals   Attributes
}

// ProvenanceIndex returns the column position that was recorded when the
// variable was read from a NASA Ames file, if there is one. If aux is
// true, the auxiliary variable position is returned.
func (v *Variable) ProvenanceIndex(aux bool) (int, bool) {
	name := attVarNumber
	if aux {
		name = attAuxVarNumber
	}
	val, ok := v.Attributes.Get(name)
	if !ok {
		return 0, false
	}
	if s, ok := val.([]float64); ok && len(s) == 1 {
		val = s[0]
	}
	i, err := cast.ToIntE(val)
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}

func sameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// scalarValue returns v as text or a single number, unwrapping single
// element slices. ok is false for any other kind of value.
func scalarValue(v interface{}) (val interface{}, ok bool) {
	switch t := v.(type) {
	case string, float64, float32, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return t, true
	case []float64:
		if len(t) == 1 {
			return t[0], true
		}
	case []float32:
		if len(t) == 1 {
			return t[0], true
		}
	case []int32:
		if len(t) == 1 {
			return t[0], true
		}
	case []int16:
		if len(t) == 1 {
			return t[0], true
		}
	case []int:
		if len(t) == 1 {
			return t[0], true
		}
	case []int64:
		if len(t) == 1 {
			return t[0], true
		}
	}
	return nil, false
}
