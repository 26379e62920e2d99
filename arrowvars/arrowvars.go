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

// Package arrowvars creates variables for conversion to NASA Ames format
// from tabular Apache Arrow data, where one column holds the values of
// the independent variable and the other numeric columns hold the
// dependent variables.
package arrowvars

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/ipc"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/ctessum/sparse"
	"github.com/spatialmodel/nasaames"
)

// ReadFile reads the Arrow IPC file at path. axisColumn is the name of
// the column holding the independent variable; if it is empty, the
// first column is used.
func ReadFile(path, axisColumn string) (*nasaames.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("arrowvars: %v", err)
	}
	defer f.Close()

	r, err := ipc.NewFileReader(f, ipc.WithAllocator(memory.DefaultAllocator))
	if err != nil {
		return nil, fmt.Errorf("arrowvars: reading %s: %v", path, err)
	}
	defer r.Close()

	t := newTable(r.Schema(), axisColumn)
	for i := 0; i < r.NumRecords(); i++ {
		rec, err := r.Record(i)
		if err != nil {
			return nil, fmt.Errorf("arrowvars: reading record %d of %s: %v", i, path, err)
		}
		if err := t.add(rec); err != nil {
			return nil, err
		}
	}
	return t.dataset()
}

// FromRecords creates a dataset from records that share a schema.
// axisColumn is the name of the column holding the independent
// variable; if it is empty, the first column is used.
//
// Each numeric column other than the axis column becomes a
// one-dimensional variable, with null values converted to NaN. Field
// metadata become variable attributes and schema metadata become
// global attributes. If the axis column holds timestamps, the axis
// holds seconds since the first timestamp.
func FromRecords(recs []arrow.Record, axisColumn string) (*nasaames.Dataset, error) {
	if len(recs) == 0 {
		return nil, fmt.Errorf("arrowvars: no records")
	}
	t := newTable(recs[0].Schema(), axisColumn)
	for _, rec := range recs {
		if err := t.add(rec); err != nil {
			return nil, err
		}
	}
	return t.dataset()
}

// table accumulates column values from a series of records.
type table struct {
	schema     *arrow.Schema
	axisColumn string
	axis       int

	times  []time.Time
	values map[int][]float64
	err    error
}

func newTable(schema *arrow.Schema, axisColumn string) *table {
	t := &table{schema: schema, axisColumn: axisColumn, values: make(map[int][]float64)}
	if axisColumn == "" {
		if len(schema.Fields()) == 0 {
			t.err = fmt.Errorf("arrowvars: schema has no columns")
			return t
		}
		t.axisColumn = schema.Field(0).Name
		return t
	}
	idx := schema.FieldIndices(axisColumn)
	if len(idx) == 0 {
		t.err = fmt.Errorf("arrowvars: axis column %q not in schema", axisColumn)
		return t
	}
	t.axis = idx[0]
	return t
}

func (t *table) add(rec arrow.Record) error {
	if t.err != nil {
		return t.err
	}
	if !rec.Schema().Equal(t.schema) {
		return fmt.Errorf("arrowvars: records have different schemas")
	}
	for i := 0; i < int(rec.NumCols()); i++ {
		col := rec.Column(i)
		if i == t.axis {
			if ts, ok := col.(*array.Timestamp); ok {
				unit := ts.DataType().(*arrow.TimestampType).Unit
				for j := 0; j < ts.Len(); j++ {
					if ts.IsNull(j) {
						return fmt.Errorf("arrowvars: axis column %s has null values", t.axisColumn)
					}
					t.times = append(t.times, ts.Value(j).ToTime(unit))
				}
				continue
			}
		}
		vals, ok := floatValues(col)
		if !ok {
			continue
		}
		if i == t.axis {
			for _, v := range vals {
				if math.IsNaN(v) {
					return fmt.Errorf("arrowvars: axis column %s has null values", t.axisColumn)
				}
			}
		}
		t.values[i] = append(t.values[i], vals...)
	}
	return nil
}

func (t *table) dataset() (*nasaames.Dataset, error) {
	if t.err != nil {
		return nil, t.err
	}
	var axis *nasaames.Axis
	if t.times != nil {
		axis = nasaames.NewTimeAxis(t.axisColumn, t.times)
		axis.Attributes = metadata(t.schema.Field(t.axis).Metadata).Merge(axis.Attributes)
	} else if vals, ok := t.values[t.axis]; ok {
		axis = &nasaames.Axis{
			Name:       t.axisColumn,
			Values:     vals,
			Attributes: metadata(t.schema.Field(t.axis).Metadata),
		}
	} else {
		return nil, fmt.Errorf("arrowvars: axis column %s is not numeric or a timestamp", t.axisColumn)
	}

	d := &nasaames.Dataset{Globals: metadata(t.schema.Metadata())}
	for i, field := range t.schema.Fields() {
		vals, ok := t.values[i]
		if i == t.axis || !ok {
			continue
		}
		data := sparse.ZerosDense(len(vals))
		copy(data.Elements, vals)
		v, err := nasaames.NewVariable(field.Name, data, metadata(field.Metadata), axis)
		if err != nil {
			return nil, fmt.Errorf("arrowvars: %v", err)
		}
		d.Variables = append(d.Variables, v)
	}
	return d, nil
}

// floatValues returns the values of a numeric array, with nulls
// replaced by NaN. ok is false if the array is not numeric.
func floatValues(arr arrow.Array) ([]float64, bool) {
	var get func(i int) float64
	switch a := arr.(type) {
	case *array.Float64:
		get = func(i int) float64 { return a.Value(i) }
	case *array.Float32:
		get = func(i int) float64 { return float64(a.Value(i)) }
	case *array.Int64:
		get = func(i int) float64 { return float64(a.Value(i)) }
	case *array.Int32:
		get = func(i int) float64 { return float64(a.Value(i)) }
	case *array.Int16:
		get = func(i int) float64 { return float64(a.Value(i)) }
	case *array.Int8:
		get = func(i int) float64 { return float64(a.Value(i)) }
	case *array.Uint64:
		get = func(i int) float64 { return float64(a.Value(i)) }
	case *array.Uint32:
		get = func(i int) float64 { return float64(a.Value(i)) }
	case *array.Uint16:
		get = func(i int) float64 { return float64(a.Value(i)) }
	case *array.Uint8:
		get = func(i int) float64 { return float64(a.Value(i)) }
	default:
		return nil, false
	}
	o := make([]float64, arr.Len())
	for i := range o {
		if arr.IsNull(i) {
			o[i] = math.NaN()
		} else {
			o[i] = get(i)
		}
	}
	return o, true
}

func metadata(md arrow.Metadata) nasaames.Attributes {
	var o nasaames.Attributes
	for i, k := range md.Keys() {
		o = append(o, nasaames.Attribute{Name: k, Value: md.Values()[i]})
	}
	return o
}
