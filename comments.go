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
	"fmt"
	"strings"

	"github.com/spf13/cast"
)

// reservedVarAtts are variable attributes that are already represented
// elsewhere in the header, so they are not repeated in the comments.
var reservedVarAtts = map[string]bool{
	"id":            true,
	attMissingValue: true,
	attFillValue:    true,
	"fill_value":    true,
	attVarNumber:    true,
	attAuxVarNumber: true,
}

// CommentSection holds the normal (NCOM) and special (SCOM) comment
// lines of a header.
type CommentSection struct {
	NCOM []string
	SCOM []string
}

// BuildComments assembles the normal and special comments from the
// global attribute information in g and the variable metadata in c.
//
// The normal comments hold the normal comment lines from g, followed by
// untranslated global attributes and the history. The special comments
// hold the special comment lines from g, followed by descriptions of the
// singleton variables and the attributes of the main and auxiliary
// variables. Each block is delimited by the markers in t, and is empty
// if there is nothing to put in it. Blank lines are removed and
// continuation lines of multi-line values are indented.
func BuildComments(g GlobalSection, c Classification, t *Table, insp Inspector) CommentSection {
	m := t.Markers
	var s CommentSection

	ncom := cleanLines(g.Comments.Normal)
	if extra := cleanLines(g.Comments.Extra); len(extra) > 0 {
		ncom = append(ncom, m.AddlGlobals)
		ncom = append(ncom, extra...)
	}
	ncom = append(ncom, cleanLines(g.History)...)
	if len(ncom) > 0 {
		s.NCOM = append([]string{m.NormalStart}, ncom...)
		s.NCOM = append(s.NCOM, m.NormalEnd, m.DataNext)
	}

	scom := cleanLines(g.Comments.Special)
	var singletons []string
	for _, v := range c.Singleton {
		singletons = append(singletons, fmt.Sprintf("Variable %s: %s", v.Name, insp.BestName(v.Name, v.Attributes)))
		if len(v.Data.Elements) == 1 {
			singletons = append(singletons, attLine("value", v.Data.Elements[0]))
		}
		for _, att := range v.Attributes {
			if val, ok := scalarValue(att.Value); ok {
				singletons = append(singletons, attLine(att.Name, val))
			}
		}
	}
	if singletons = cleanLines(singletons); len(singletons) > 0 {
		scom = append(scom, m.SingletonStart)
		scom = append(scom, singletons...)
		scom = append(scom, m.SingletonEnd)
	}

	var varAtts []string
	for _, vars := range [][]*Variable{c.Main, c.Auxiliary} {
		for _, v := range vars {
			nameWritten := false
			for _, att := range v.Attributes {
				if reservedVarAtts[att.Name] {
					continue
				}
				val, ok := scalarValue(att.Value)
				if !ok {
					continue
				}
				if !nameWritten {
					varAtts = append(varAtts, fmt.Sprintf("Variable %s: %s", v.Name, insp.BestName(v.Name, v.Attributes)))
					nameWritten = true
				}
				varAtts = append(varAtts, attLine(att.Name, val))
			}
		}
	}
	if varAtts = cleanLines(varAtts); len(varAtts) > 0 {
		scom = append(scom, m.AddlVarAtts, m.VarAttsStart)
		scom = append(scom, varAtts...)
		scom = append(scom, m.VarAttsEnd)
	}
	if len(scom) > 0 {
		s.SCOM = append([]string{m.SpecialStart}, scom...)
		s.SCOM = append(s.SCOM, m.SpecialEnd)
	}
	return s
}

func attLine(name string, value interface{}) string {
	return fmt.Sprintf("  %s: %s", name, cast.ToString(value))
}

// cleanLines splits multi-line entries into separate lines, indenting
// the continuation lines by two spaces, and removes blank lines.
func cleanLines(lines []string) []string {
	var o []string
	for _, l := range lines {
		for i, part := range strings.Split(l, "\n") {
			part = strings.TrimRight(part, "\r")
			if strings.TrimSpace(part) == "" {
				continue
			}
			if i > 0 {
				part = "  " + part
			}
			o = append(o, part)
		}
	}
	return o
}
