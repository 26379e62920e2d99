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
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConverter() (*Converter, *test.Hook) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	return &Converter{
		Log: log,
		Now: func() time.Time { return testNow },
	}, hook
}

func warnings(hook *test.Hook) []string {
	var o []string
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			o = append(o, e.Message)
		}
	}
	return o
}

const dateWarning = "nasaames: could not get the first date in the file; it will need to be edited manually"

func timeAxis(n int, step float64) *Axis {
	a := rangeAxis("time", n, 0, step)
	a.Attributes = Attributes{{Name: "units", Value: "seconds since 2017-05-01 00:00:00"}}
	return a
}

func TestConvert_1001(t *testing.T) {
	c, hook := testConverter()
	tm := timeAxis(8, 10)
	o3 := testVar(t, "o3", Attributes{{Name: "units", Value: "ppb"}, {Name: "missing_value", Value: -1.0}}, tm)
	o3.Data.Elements[1] = math.NaN()
	no2 := testVar(t, "no2", nil, tm)

	r, err := c.Convert([]*Variable{o3, no2}, Attributes{{Name: "title", Value: "Test"}}, 0)
	require.NoError(t, err)
	require.True(t, r.Found)
	h := r.Header

	assert.Equal(t, NLHEADComputed, h.NLHEAD)
	assert.Equal(t, 1001, h.FFI)
	assert.Equal(t, 1, h.IVOL)
	assert.Equal(t, 1, h.NVOL)
	assert.Equal(t, [3]int{2017, 5, 1}, h.DATE)
	assert.Equal(t, [3]int{2020, 1, 2}, h.RDATE)
	assert.Equal(t, "Test", h.MNAME)
	assert.Equal(t, 1, h.NIV)
	assert.Equal(t, []int{8}, h.NX)
	assert.Equal(t, []int{3}, h.NXDEF)
	assert.Equal(t, []float64{10}, h.DX)
	assert.Equal(t, [][]float64{{0, 10, 20}}, h.X)
	assert.Equal(t, 2, h.NV)
	assert.Equal(t, []string{"o3 (ppb)", "no2"}, h.VNAME)
	assert.Equal(t, []float64{1, 1}, h.VSCAL)
	assert.Equal(t, []float64{-1, -99999}, h.VMISS)
	assert.Equal(t, []float64{0, -1, 2, 3, 4, 5, 6, 7}, h.V[0])
	assert.Equal(t, 0, h.NAUXV)
	assert.Equal(t, len(h.NCOM), h.NNCOML)
	assert.Equal(t, len(h.SCOM), h.NSCOML)
	assert.Empty(t, warnings(hook))
	assert.True(t, math.IsNaN(o3.Data.Elements[1]), "input should not change")
}

func TestConvert_auxiliary(t *testing.T) {
	c, _ := testConverter()
	tm := timeAxis(4, 1)
	lat := rangeAxis("lat", 3, 0, 1)
	r, err := c.Convert([]*Variable{
		testVar(t, "alt", nil, tm),
		testVar(t, "o3", nil, tm),
		testVar(t, "other", nil, lat),
	}, nil, 0)
	require.NoError(t, err)
	// alt and o3 have the same shape and axes, so both are main variables.
	assert.Equal(t, 1001, r.Header.FFI)
	assert.Equal(t, 2, r.Header.NV)
	assert.Equal(t, []string{"other"}, names(r.Classification.Unused))

	tm2 := rangeAxis("y", 4, 0, 1)
	r, err = c.Convert([]*Variable{
		testVar(t, "o3", nil, tm, tm2),
		testVar(t, "alt", nil, tm),
	}, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, 2010, r.Header.FFI)
	assert.Equal(t, 1, r.Header.NAUXV)
	assert.Equal(t, []string{"alt"}, r.Header.ANAME)
	assert.Equal(t, 16, len(r.Header.V[0]))
}

func TestConvert_1020(t *testing.T) {
	c, _ := testConverter()
	main := testVar(t, "o3", nil, timeAxis(8, 10))
	sparse := testVar(t, "alt", nil, timeAxis(2, 40))

	r, err := c.Convert([]*Variable{main, sparse}, nil, 0)
	require.NoError(t, err)
	h := r.Header
	assert.Equal(t, 1020, h.FFI)
	assert.Equal(t, 4, h.NVPM)
	assert.Equal(t, []int{2}, h.NX)
	assert.Equal(t, []float64{10}, h.DX)
	assert.Equal(t, [][]float64{{0, 40}}, h.X)
	assert.Equal(t, 1, h.NAUXV)
	assert.Equal(t, []float64{0, 1}, h.A[0])
	assert.Len(t, h.V[0], 8)
}

func TestConvert_2110(t *testing.T) {
	c, _ := testConverter()
	start := time.Date(2018, 7, 4, 6, 0, 0, 0, time.UTC)
	tm := NewTimeAxis("time", []time.Time{start, start.Add(time.Hour), start.Add(2 * time.Hour)})
	lat := rangeAxis("lat", 4, 40, 0.5)
	o3 := testVar(t, "o3", nil, tm, lat)
	temp := testVar(t, "temp", nil, tm)

	r, err := c.Convert([]*Variable{o3, temp}, nil, 2110)
	require.NoError(t, err)
	h := r.Header
	assert.Equal(t, 2110, h.FFI)
	assert.Equal(t, [3]int{2018, 7, 4}, h.DATE)
	assert.Equal(t, []int{4, 4, 4}, h.NX)
	assert.Nil(t, h.X)
	require.Len(t, h.XRows, 3)
	assert.Equal(t, 3600.0, h.XRows[1].Primary)
	assert.Equal(t, 2, h.NAUXV)
	require.Len(t, h.ANAME, 2)
	assert.Equal(t, "temp", h.ANAME[1])
	assert.Equal(t, []float64{4, 4, 4}, h.A[0])

	b, err := json.Marshal(h)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &decoded))
	x, ok := decoded["X"].([]interface{})
	require.True(t, ok, "%T", decoded["X"])
	require.Len(t, x, 3)
	assert.Equal(t, []interface{}{3600.0, []interface{}{40.0, 40.5, 41.0, 41.5}}, x[1])
	_, ok = decoded["XRows"]
	assert.False(t, ok)
	_, ok = decoded["NVPM"]
	assert.False(t, ok)
}

func TestConvert_nonUniformSecondAxis(t *testing.T) {
	c, _ := testConverter()
	v := testVar(t, "o3", nil, timeAxis(3, 1), testAxis("lon", -100, -99, -97))
	for _, ffi := range []int{2110, 2310} {
		_, err := c.Convert([]*Variable{v}, nil, ffi)
		mErr, ok := err.(*FFIMismatchError)
		require.True(t, ok, "%T", err)
		assert.Equal(t, []int{2010}, mErr.Allowed)
	}
	r, err := c.Convert([]*Variable{v}, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, 2010, r.Header.FFI)
}

func TestConvert_tooManyDimensions(t *testing.T) {
	c, hook := testConverter()
	var axes []*Axis
	for _, n := range []string{"a", "b", "c", "d", "e"} {
		axes = append(axes, testAxis(n, 0, 1))
	}
	vars := []*Variable{testVar(t, "ok", nil, axes[0]), testVar(t, "big", nil, axes...)}
	_, err := c.Convert(vars, nil, 0)
	dErr, ok := err.(*DimensionalityError)
	require.True(t, ok, "%T", err)
	assert.Equal(t, 5, dErr.Rank)
	assert.Empty(t, hook.AllEntries())
}

func TestConvert_nothingToWrite(t *testing.T) {
	c, hook := testConverter()
	r, err := c.Convert([]*Variable{scalarVar(t, "alt", 1, nil)}, nil, 0)
	require.NoError(t, err)
	assert.False(t, r.Found)
	assert.Nil(t, r.Header)
	assert.Equal(t, []string{"alt"}, names(r.Classification.Singleton))
	assert.Equal(t, []string{"nasaames: no NASA Ames content created"}, warnings(hook))
}

func TestConvert_globals(t *testing.T) {
	c, hook := testConverter()
	v := testVar(t, "o3", nil, rangeAxis("distance", 5, 0, 1))
	r, err := c.Convert([]*Variable{v, scalarVar(t, "alt", 2, nil)}, Attributes{
		{Name: "institution", Value: "Lab A (ONAME from NASA Ames file); Org B (ORG from NASA Ames file)."},
		{Name: "Conventions", Value: "CF-1.6"},
	}, 0)
	require.NoError(t, err)
	h := r.Header
	assert.Equal(t, "Lab A", h.ONAME)
	assert.Equal(t, "Org B", h.ORG)
	assert.Equal(t, UnknownDate, h.DATE)
	assert.Equal(t, []string{dateWarning}, warnings(hook))
	assert.Contains(t, h.NCOM, "Conventions:   CF-1.6")
	assert.Contains(t, h.SCOM, "Variable alt: alt")
	assert.Equal(t, len(h.NCOM), h.NNCOML)
	assert.Equal(t, len(h.SCOM), h.NSCOML)

	hook.Reset()
	r, err = c.Convert([]*Variable{v}, Attributes{{Name: "first_valid_date_of_data", Value: "2001-02-03"}}, 0)
	require.NoError(t, err)
	assert.Equal(t, [3]int{2001, 2, 3}, r.Header.DATE)
	assert.Empty(t, warnings(hook))
}

func TestConvert_unusedWarning(t *testing.T) {
	c, hook := testConverter()
	_, err := c.Convert([]*Variable{
		testVar(t, "o3", nil, timeAxis(4, 1)),
		testVar(t, "lat", nil, rangeAxis("lat", 3, 0, 1)),
	}, nil, 0)
	require.NoError(t, err)
	entries := hook.AllEntries()
	var found bool
	for _, e := range entries {
		if e.Level == logrus.WarnLevel && e.Data["variable"] == "lat" {
			found = true
		}
	}
	assert.True(t, found, "unused variable should be reported")
}

func TestFirstDate(t *testing.T) {
	for _, tt := range []struct {
		name   string
		value  float64
		want   [3]int
		warned bool
	}{
		{"far from reference", 737424.75, [3]int{2020, 1, 1}, false},
		{"out of range", 1e30, UnknownDate, true},
	} {
		t.Run(tt.name, func(t *testing.T) {
			log, hook := test.NewNullLogger()
			a := &Axis{
				Name:       "time",
				Values:     []float64{tt.value},
				Attributes: Attributes{{Name: "units", Value: "days since 0001-01-01"}},
			}
			assert.Equal(t, tt.want, firstDate(a, nil, log))
			if tt.warned {
				assert.Equal(t, []string{dateWarning}, warnings(hook))
			} else {
				assert.Empty(t, warnings(hook))
			}
		})
	}
}
