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

// Package ncf reads variables and attributes from NetCDF files for
// conversion to NASA Ames format.
package ncf

import (
	"fmt"
	"os"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
	"github.com/spatialmodel/nasaames"
)

// ReadFile reads the NetCDF file at path.
func ReadFile(path string) (*nasaames.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ncf: %v", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("ncf: %v", err)
	}
	return Read(f, info.Size())
}

// Read reads a NetCDF file from rw, which holds size bytes. The size
// is used to find the number of records of record variables.
//
// The variables of the returned dataset are the data variables in the
// file, in the order they are defined. Coordinate variables are not
// included; they are used as the axes of the data variables instead.
//
// Dimensions without a coordinate variable are given an axis of
// element indices. Character variables and record variables without any
// records are skipped.
func Read(rw cdf.ReaderWriterAt, size int64) (*nasaames.Dataset, error) {
	ff, err := cdf.Open(rw)
	if err != nil {
		return nil, fmt.Errorf("ncf: opening file: %v", err)
	}
	h := ff.Header
	nrec := int(h.NumRecs(size))

	d := &nasaames.Dataset{Globals: attributes(h, "")}

	axes := make(map[string]*nasaames.Axis)
	axis := func(dim string, length int) (*nasaames.Axis, error) {
		if a, ok := axes[dim]; ok {
			return a, nil
		}
		a := &nasaames.Axis{Name: dim}
		if isCoordinate(h, dim) {
			data, err := readVar(ff, dim, nrec)
			if err != nil {
				return nil, err
			}
			a.Values = data.Elements
			a.Attributes = attributes(h, dim)
		} else {
			a.Values = make([]float64, length)
			for i := range a.Values {
				a.Values[i] = float64(i)
			}
		}
		axes[dim] = a
		return a, nil
	}

	for _, name := range h.Variables() {
		if isCoordinate(h, name) {
			continue
		}
		if _, ok := h.ZeroValue(name, 0).(string); ok {
			continue
		}
		data, err := readVar(ff, name, nrec)
		if err != nil {
			return nil, err
		}
		if len(data.Elements) == 0 {
			continue
		}
		dims := h.Dimensions(name)
		vAxes := make([]*nasaames.Axis, len(dims))
		for i, dim := range dims {
			if vAxes[i], err = axis(dim, data.Shape[i]); err != nil {
				return nil, err
			}
		}
		v, err := nasaames.NewVariable(name, data, attributes(h, name), vAxes...)
		if err != nil {
			return nil, fmt.Errorf("ncf: %v", err)
		}
		d.Variables = append(d.Variables, v)
	}
	return d, nil
}

// isCoordinate returns whether name is a numeric one-dimensional
// variable named after its dimension.
func isCoordinate(h *cdf.Header, name string) bool {
	dims := h.Dimensions(name)
	if len(dims) != 1 || dims[0] != name {
		return false
	}
	_, isChar := h.ZeroValue(name, 0).(string)
	return !isChar
}

// readVar reads all of the values of variable name. nrec is the number
// of records in the file.
func readVar(ff *cdf.File, name string, nrec int) (*sparse.DenseArray, error) {
	dims := append([]int{}, ff.Header.Lengths(name)...)
	record := ff.Header.IsRecordVariable(name)
	if record {
		dims[0] = nrec
	}
	n := 1
	for _, dim := range dims {
		n *= dim
	}
	data := sparse.ZerosDense(dims...)
	if n == 0 {
		return data, nil
	}

	var r cdf.Reader
	if record {
		begin, end := make([]int, len(dims)), make([]int, len(dims))
		for i, dim := range dims {
			end[i] = dim - 1
		}
		r = ff.Reader(name, begin, end)
	} else {
		r = ff.Reader(name, nil, nil)
	}
	buf := r.Zero(n)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("ncf: reading variable %s: %v", name, err)
	}
	vals, ok := toFloats(buf)
	if !ok {
		return nil, fmt.Errorf("ncf: variable %s has unsupported type %T", name, buf)
	}
	copy(data.Elements, vals)
	return data, nil
}

// attributes returns the attributes of variable v, or the global
// attributes if v is "". Numeric attributes with a single value are
// returned as a float64 and longer numeric attributes as a []float64.
func attributes(h *cdf.Header, v string) nasaames.Attributes {
	var o nasaames.Attributes
	for _, name := range h.Attributes(v) {
		val := h.GetAttribute(v, name)
		if s, ok := val.(string); ok {
			o = append(o, nasaames.Attribute{Name: name, Value: s})
			continue
		}
		f, ok := toFloats(val)
		if !ok {
			continue
		}
		if len(f) == 1 {
			o = append(o, nasaames.Attribute{Name: name, Value: f[0]})
		} else {
			o = append(o, nasaames.Attribute{Name: name, Value: f})
		}
	}
	return o
}

func toFloats(v interface{}) ([]float64, bool) {
	var o []float64
	switch t := v.(type) {
	case []float64:
		o = make([]float64, len(t))
		copy(o, t)
	case []float32:
		o = make([]float64, len(t))
		for i, x := range t {
			o[i] = float64(x)
		}
	case []int32:
		o = make([]float64, len(t))
		for i, x := range t {
			o[i] = float64(x)
		}
	case []int16:
		o = make([]float64, len(t))
		for i, x := range t {
			o[i] = float64(x)
		}
	case []uint8:
		o = make([]float64, len(t))
		for i, x := range t {
			o[i] = float64(x)
		}
	default:
		return nil, false
	}
	return o, true
}
