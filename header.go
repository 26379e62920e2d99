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
	"fmt"
)

// NLHEADComputed is the value of NLHEAD in a Header, signifying that the
// number of header lines is computed when the header is written.
const NLHEADComputed = -999

// UnknownDate is the DATE of a header when the first date of the data
// could not be determined.
var UnknownDate = [3]int{999, 999, 999}

// Header is the content of a NASA Ames file. The field names are those
// used in the format documentation. A Header should be treated as
// read-only once it has been created.
type Header struct {
	NLHEAD int
	FFI    int

	ONAME, ORG, SNAME, MNAME string

	IVOL, NVOL int

	DATE, RDATE [3]int

	NIV   int
	NX    []int
	NXDEF []int
	XNAME []string
	DX    []float64
	X     [][]float64

	// XRows replaces X for FFIs 2110 and 2310.
	XRows []AxisRow `json:"-"`

	// NVPM is only set for FFI 1020.
	NVPM int `json:",omitempty"`

	NV    int
	VNAME []string
	VSCAL []float64
	VMISS []float64
	V     [][]float64

	NAUXV int
	ANAME []string
	ASCAL []float64
	AMISS []float64
	A     [][]float64

	NNCOML int
	NCOM   []string
	NSCOML int
	SCOM   []string

	// Axes are the descriptors the independent variable fields were
	// created from.
	Axes []AxisDescriptor `json:"-"`
}

// MarshalJSON writes the header as a JSON object keyed by field name.
// For FFIs 2110 and 2310, X holds the [primary value, secondary values]
// pairs.
func (h *Header) MarshalJSON() ([]byte, error) {
	type plain Header
	out := struct {
		*plain
		X interface{}
	}{plain: (*plain)(h), X: h.X}
	if len(h.XRows) > 0 {
		out.X = h.XRows
	}
	return json.Marshal(out)
}

// MarshalJSON writes the row as a [primary value, secondary values] pair.
func (r AxisRow) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{r.Primary, r.Secondary})
}

// headerBuilder assembles a Header from its sections, checking that the
// sections are consistent with each other.
type headerBuilder struct {
	h Header

	haveAxes, haveVars, haveAux, haveComments, haveGlobals bool

	// nValues is the number of values in each main variable.
	nValues int
}

func newHeaderBuilder(ffi, niv int) *headerBuilder {
	return &headerBuilder{h: Header{
		NLHEAD: NLHEADComputed,
		FFI:    ffi,
		NIV:    niv,
		IVOL:   1,
		NVOL:   1,
	}}
}

func (b *headerBuilder) axes(s AxisSection) error {
	if len(s.Axes) != b.h.NIV {
		return fmt.Errorf("nasaames: %d axis descriptors for %d independent variables", len(s.Axes), b.h.NIV)
	}
	h := &b.h
	h.Axes = s.Axes
	b.nValues = 1
	for i, a := range s.Axes {
		if len(a.X) != a.NXDEF {
			return fmt.Errorf("nasaames: axis %s has NXDEF=%d but %d values", a.Name, a.NXDEF, len(a.X))
		}
		h.NX = append(h.NX, a.Length)
		h.NXDEF = append(h.NXDEF, a.NXDEF)
		h.XNAME = append(h.XNAME, a.Name)
		h.DX = append(h.DX, a.DX)
		h.X = append(h.X, a.X)
		if i == 0 && h.FFI == 1020 {
			b.nValues *= a.Length * s.NVPM
		} else {
			b.nValues *= a.Length
		}
	}
	switch h.FFI {
	case 1020:
		if s.NVPM < 1 {
			return fmt.Errorf("nasaames: FFI 1020 without NVPM")
		}
		h.NVPM = s.NVPM
	case 2110, 2310:
		if len(s.Rows) != s.Axes[0].Length {
			return fmt.Errorf("nasaames: FFI %d has %d rows for %d primary axis values",
				h.FFI, len(s.Rows), s.Axes[0].Length)
		}
		h.NX = s.RowLengths
		h.X = nil
		h.XRows = s.Rows
		if h.FFI == 2310 {
			h.DX = s.RowIncrements
		}
		h.ANAME, h.ASCAL, h.AMISS, h.A = appendSeries(nil, nil, nil, nil, s.Synthesized)
	}
	b.haveAxes = true
	return nil
}

func (b *headerBuilder) variables(vars []Series) error {
	if !b.haveAxes {
		return fmt.Errorf("nasaames: variables added before axes")
	}
	if len(vars) == 0 {
		return fmt.Errorf("nasaames: no variables")
	}
	for _, v := range vars {
		if len(v.Values) != b.nValues {
			return fmt.Errorf("nasaames: variable %s has %d values but the axes define %d",
				v.Name, len(v.Values), b.nValues)
		}
	}
	h := &b.h
	h.VNAME, h.VSCAL, h.VMISS, h.V = appendSeries(nil, nil, nil, nil, vars)
	h.NV = len(h.V)
	b.haveVars = true
	return nil
}

func (b *headerBuilder) auxiliary(aux []Series) error {
	if !b.haveAxes {
		return fmt.Errorf("nasaames: auxiliary variables added before axes")
	}
	n := b.h.Axes[0].Length
	for _, a := range aux {
		if len(a.Values) != n {
			return fmt.Errorf("nasaames: auxiliary variable %s has %d values but the primary axis has %d",
				a.Name, len(a.Values), n)
		}
	}
	h := &b.h
	h.ANAME, h.ASCAL, h.AMISS, h.A = appendSeries(h.ANAME, h.ASCAL, h.AMISS, h.A, aux)
	h.NAUXV = len(h.A)
	b.haveAux = true
	return nil
}

func (b *headerBuilder) comments(c CommentSection) {
	b.h.NCOM = c.NCOM
	b.h.NNCOML = len(c.NCOM)
	b.h.SCOM = c.SCOM
	b.h.NSCOML = len(c.SCOM)
	b.haveComments = true
}

func (b *headerBuilder) globals(g GlobalSection, date, rdate [3]int) {
	b.h.ONAME, b.h.ORG, b.h.SNAME, b.h.MNAME = g.ONAME, g.ORG, g.SNAME, g.MNAME
	b.h.DATE = date
	b.h.RDATE = rdate
	b.haveGlobals = true
}

// build returns the finished header, or an error if any section is
// missing.
func (b *headerBuilder) build() (*Header, error) {
	for _, s := range []struct {
		ok   bool
		name string
	}{
		{b.haveAxes, "axes"},
		{b.haveVars, "variables"},
		{b.haveAux, "auxiliary variables"},
		{b.haveComments, "comments"},
		{b.haveGlobals, "global attributes"},
	} {
		if !s.ok {
			return nil, fmt.Errorf("nasaames: incomplete header: missing %s", s.name)
		}
	}
	h := b.h
	return &h, nil
}

func appendSeries(names []string, scales, missing []float64, values [][]float64, s []Series) ([]string, []float64, []float64, [][]float64) {
	for _, v := range s {
		names = append(names, v.Name)
		scales = append(scales, v.Scale)
		missing = append(missing, v.Missing)
		values = append(values, v.Values)
	}
	return names, scales, missing, values
}
