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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noBlankLines(t *testing.T, lines []string) {
	t.Helper()
	for i, l := range lines {
		assert.NotEqual(t, "", strings.TrimSpace(l), "line %d is blank", i)
	}
}

func TestBuildComments(t *testing.T) {
	tbl := DefaultTable()
	insp := NewInspector(tbl)
	m := tbl.Markers
	a := rangeAxis("time", 3, 0, 1)

	t.Run("empty", func(t *testing.T) {
		s := BuildComments(GlobalSection{}, Classification{}, tbl, insp)
		assert.Empty(t, s.NCOM)
		assert.Empty(t, s.SCOM)
	})

	t.Run("normal", func(t *testing.T) {
		g := GlobalSection{
			Comments: CommentStreams{
				Normal: []string{"line a", "", "multi\nline"},
				Extra:  []string{"Conventions:   CF-1.6"},
			},
			History: []string{"History:  converted"},
		}
		s := BuildComments(g, Classification{}, tbl, insp)
		assert.Equal(t, []string{
			m.NormalStart,
			"line a",
			"multi",
			"  line",
			m.AddlGlobals,
			"Conventions:   CF-1.6",
			"History:  converted",
			m.NormalEnd,
			m.DataNext,
		}, s.NCOM)
		assert.Empty(t, s.SCOM)
	})

	t.Run("special", func(t *testing.T) {
		alt := scalarVar(t, "altitude", 1500, Attributes{{Name: "units", Value: "m"}})
		o3 := testVar(t, "o3", Attributes{
			{Name: "units", Value: "ppb"},
			{Name: "missing_value", Value: -1.0},
			{Name: attVarNumber, Value: 0},
			{Name: "long_name", Value: "Ozone"},
			{Name: "valid_range", Value: []float64{0, 500}},
		}, a)
		plain := testVar(t, "plain", Attributes{{Name: "id", Value: "p"}}, a)
		c := Classification{Main: []*Variable{o3, plain}, Singleton: []*Variable{alt}}
		g := GlobalSection{Comments: CommentStreams{Special: []string{"calibrated", "  "}}}

		s := BuildComments(g, c, tbl, insp)
		assert.Equal(t, []string{
			m.SpecialStart,
			"calibrated",
			m.SingletonStart,
			"Variable altitude: altitude (m)",
			"  value: 1500",
			"  units: m",
			m.SingletonEnd,
			m.AddlVarAtts,
			m.VarAttsStart,
			"Variable o3: Ozone (ppb)",
			"  units: ppb",
			"  long_name: Ozone",
			m.VarAttsEnd,
			m.SpecialEnd,
		}, s.SCOM)
		assert.Empty(t, s.NCOM)
	})
}

func TestBuildComments_lineCounts(t *testing.T) {
	tbl := DefaultTable()
	insp := NewInspector(tbl)
	g := MapGlobals(Attributes{
		{Name: "comment", Value: "first\n\nsecond\n" + tbl.Markers.SpecialStart + "\nspecial\n\n" + tbl.Markers.SpecialEnd},
		{Name: "history", Value: "made\n\nby hand"},
		{Name: "project", Value: "test\nproject"},
	}, tbl, testNow)
	s := BuildComments(g, Classification{Singleton: []*Variable{scalarVar(t, "x", 1, nil)}}, tbl, insp)

	b := newHeaderBuilder(1001, 1)
	b.comments(s)
	require.NotEmpty(t, b.h.NCOM)
	require.NotEmpty(t, b.h.SCOM)
	assert.Equal(t, len(b.h.NCOM), b.h.NNCOML)
	assert.Equal(t, len(b.h.SCOM), b.h.NSCOML)
	noBlankLines(t, b.h.NCOM)
	noBlankLines(t, b.h.SCOM)
	assert.Contains(t, b.h.NCOM, "project:   test")
	assert.Contains(t, b.h.NCOM, "  project")
	assert.Contains(t, b.h.SCOM, "special")
}
