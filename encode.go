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

// maxDefinedValues is the number of leading values kept for a uniformly
// spaced axis.
const maxDefinedValues = 3

// synthMissing is the missing value of the auxiliary variables that are
// created to describe the axes of FFI 2110 and 2310 files.
const synthMissing = -9999.999

// AxisDescriptor describes the values of one independent variable.
type AxisDescriptor struct {
	// Name is the display name of the axis (XNAME).
	Name string

	// Length is the number of values in the axis (NX).
	Length int

	// DX is the constant increment between values, or 0 if the
	// values are not uniformly spaced.
	DX float64

	// NXDEF is the number of values listed in X.
	NXDEF int

	// X holds the first NXDEF axis values.
	X []float64
}

// Expand returns all of the values of the axis.
func (d AxisDescriptor) Expand() []float64 {
	o := make([]float64, d.Length)
	copy(o, d.X)
	for i := len(d.X); i < d.Length; i++ {
		o[i] = o[i-1] + d.DX
	}
	return o
}

// AxisRow is one record of an FFI 2110 or 2310 file: a value of the
// primary axis together with the secondary axis values that go with it.
type AxisRow struct {
	Primary   float64
	Secondary []float64
}

// Series is the data and metadata of one dependent or auxiliary
// variable as it is written to a header.
type Series struct {
	Name    string
	Scale   float64
	Missing float64
	Values  []float64
}

// AxisSection holds the independent variable information for a header.
type AxisSection struct {
	Axes []AxisDescriptor

	// Rows, RowLengths, and RowIncrements are only set for FFIs 2110
	// and 2310 (RowIncrements only for 2310).
	Rows          []AxisRow
	RowLengths    []int
	RowIncrements []float64

	// Synthesized are auxiliary variables that describe the rows. They
	// precede any other auxiliary variables.
	Synthesized []Series

	// NVPM is the sparse auxiliary stride for FFI 1020.
	NVPM int
}

// EncodeAxes creates the independent variable descriptors for the
// axes of the representative variable rep, to be written in the format
// given by ffi. nvpm is the sparse auxiliary stride, which is only used
// for FFI 1020.
func EncodeAxes(rep *Variable, ffi, nvpm int, insp Inspector) (AxisSection, error) {
	var s AxisSection
	axes := insp.AxisList(rep)
	if len(axes) == 0 {
		return s, fmt.Errorf("nasaames: variable %s has no axes to encode", rep.Name)
	}
	for i, a := range axes {
		if i == 0 && ffi == 1020 {
			if nvpm < 1 {
				return s, fmt.Errorf("nasaames: FFI 1020 requires a positive NVPM, not %d", nvpm)
			}
			s.Axes = append(s.Axes, recordAxis(a, nvpm, insp))
			s.NVPM = nvpm
			continue
		}
		s.Axes = append(s.Axes, compressAxis(a, insp))
	}

	switch ffi {
	case 2110, 2310:
		if len(axes) != 2 {
			return s, fmt.Errorf("nasaames: FFI %d requires 2 axes, not %d", ffi, len(axes))
		}
		primary, secondary := axes[0], axes[1]
		var incr float64
		if ffi == 2310 {
			if !insp.IsUniform(secondary) {
				return s, fmt.Errorf("nasaames: FFI 2310 requires a uniformly spaced secondary axis")
			}
			incr = insp.Interval(secondary, 0, 1)
		}
		for _, p := range primary.Values {
			row := AxisRow{Primary: p, Secondary: append([]float64(nil), secondary.Values...)}
			s.Rows = append(s.Rows, row)
			s.RowLengths = append(s.RowLengths, len(row.Secondary))
			if ffi == 2310 {
				s.RowIncrements = append(s.RowIncrements, incr)
			}
		}
		name := s.Axes[0].Name
		s.Synthesized = append(s.Synthesized, Series{
			Name:    fmt.Sprintf("Number of '%s' values recorded in subsequent data records", name),
			Scale:   1,
			Missing: synthMissing,
			Values:  intsToFloats(s.RowLengths),
		})
		if ffi == 2310 {
			firstValues := make([]float64, len(s.Rows))
			for i, row := range s.Rows {
				firstValues[i] = row.Secondary[0]
			}
			s.Synthesized = append(s.Synthesized,
				Series{
					Name:    fmt.Sprintf("'%s' value for first data point", name),
					Scale:   1,
					Missing: synthMissing,
					Values:  firstValues,
				},
				Series{
					Name:    fmt.Sprintf("'%s' increment", name),
					Scale:   1,
					Missing: synthMissing,
					Values:  append([]float64(nil), s.RowIncrements...),
				})
		}
	}
	return s, nil
}

// compressAxis describes an axis by its increment and first few values
// if it is uniformly spaced, or by all of its values otherwise.
func compressAxis(a *Axis, insp Inspector) AxisDescriptor {
	d := AxisDescriptor{
		Name:   insp.BestName(a.Name, a.Attributes),
		Length: a.Len(),
	}
	if a.Len() < 2 || !insp.IsUniform(a) {
		d.NXDEF = a.Len()
		d.X = append([]float64{}, a.Values...)
		return d
	}
	d.DX = insp.Interval(a, 0, 1)
	d.NXDEF = a.Len()
	if d.NXDEF > maxDefinedValues {
		d.NXDEF = maxDefinedValues
	}
	d.X = append([]float64{}, a.Values[:d.NXDEF]...)
	return d
}

// recordAxis describes the primary axis of an FFI 1020 file. DX is the
// spacing of the full axis, which gives the nvpm implied values within
// each record, and X holds the first value of each record.
func recordAxis(a *Axis, nvpm int, insp Inspector) AxisDescriptor {
	d := AxisDescriptor{Name: insp.BestName(a.Name, a.Attributes)}
	if a.Len() > 1 && insp.IsUniform(a) {
		d.DX = insp.Interval(a, 0, 1)
	}
	for i := 0; i < a.Len(); i += nvpm {
		d.X = append(d.X, a.Values[i])
	}
	d.Length = len(d.X)
	d.NXDEF = len(d.X)
	return d
}

func intsToFloats(v []int) []float64 {
	o := make([]float64, len(v))
	for i, x := range v {
		o[i] = float64(x)
	}
	return o
}
