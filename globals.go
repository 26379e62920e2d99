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
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/kr/text"
	"github.com/spf13/cast"
)

// CommentStreams holds comment lines sorted by where they will be
// written.
type CommentStreams struct {
	// Special lines go in the special comments.
	Special []string

	// Normal lines go at the beginning of the normal comments.
	Normal []string

	// Extra lines are untranslated global attributes, which follow
	// the normal lines in the normal comments.
	Extra []string
}

// GlobalSection holds the header information derived from global
// attributes.
type GlobalSection struct {
	ONAME, ORG, SNAME, MNAME string

	// Date is the first valid date of the data as year, month, day,
	// or nil if it is not known from the attributes.
	Date []int

	// History holds the formatted history lines, if there was a
	// history attribute.
	History []string

	Comments CommentStreams
}

// MapGlobals translates global attributes into header information
// according to table t. now is the time recorded in the history.
//
// Only text and numeric attributes are used, except for the attribute
// that gives the first valid date, which may also be a list of numbers.
// Attributes that t does not translate are kept as extra comments.
func MapGlobals(globals Attributes, t *Table, now time.Time) GlobalSection {
	var g GlobalSection
	for _, att := range globals {
		field, mapped := t.field(att.Name)
		if mapped && field == FieldDate {
			if date, ok := parseDate(att.Value); ok {
				g.Date = date
			}
			continue
		}
		val, ok := scalarValue(att.Value)
		if !ok {
			continue
		}
		s, err := cast.ToStringE(val)
		if err != nil {
			continue
		}
		if !mapped {
			g.Comments.Extra = append(g.Comments.Extra, passThrough(att.Name, s))
			continue
		}
		switch field {
		case FieldPassThrough:
			g.Comments.Extra = append(g.Comments.Extra, passThrough(att.Name, s))
		case FieldHistory:
			g.History = historyLines(s, t, now)
		case FieldInstitution:
			g.ONAME, g.ORG = ParseInstitution(s, t)
		case FieldComment:
			c := SplitComment(s, t)
			g.Comments.Special = append(g.Comments.Special, c.Special...)
			g.Comments.Normal = append(g.Comments.Normal, c.Normal...)
			g.Comments.Extra = append(g.Comments.Extra, c.Extra...)
		case FieldONAME:
			g.ONAME = oneLine(s)
		case FieldORG:
			g.ORG = oneLine(s)
		case FieldSNAME:
			g.SNAME = s
		case FieldMNAME:
			g.MNAME = s
		default:
			g.Comments.Extra = append(g.Comments.Extra, passThrough(att.Name, s))
		}
	}
	return g
}

func passThrough(name, value string) string {
	return fmt.Sprintf("%s:   %s", name, value)
}

func oneLine(s string) string { return strings.Replace(s, "\n", "  ", -1) }

// ParseInstitution splits an institution attribute into the originator
// (ONAME) and organization (ORG) names. If the attribute was written by
// a previous conversion from NASA Ames the two names are recovered,
// otherwise the whole attribute is used for both.
func ParseInstitution(value string, t *Table) (oname, org string) {
	re := regexp.MustCompile(`^(.*)\s+` + regexp.QuoteMeta(t.Markers.ONAME) +
		`;\s+(.*)\s+` + regexp.QuoteMeta(t.Markers.ORG) + `\.`)
	if m := re.FindStringSubmatch(value); m != nil {
		return oneLine(m[1]), oneLine(m[2])
	}
	return oneLine(value), oneLine(value)
}

// SplitComment sorts the lines of a comment attribute into special,
// normal, and extra comments using the comment markers in t, so that
// comments that were originally read from a NASA Ames file return to
// the sections they came from. Lines outside of any markers are normal
// comments.
func SplitComment(value string, t *Table) CommentStreams {
	var (
		c                     CommentStreams
		m                     = t.Markers
		inSpecial, inAddlGlob bool
	)
	for _, line := range strings.Split(value, "\n") {
		switch {
		case strings.Contains(line, m.SpecialStart):
			inSpecial = true
		case strings.Contains(line, m.SpecialEnd):
			inSpecial = false
		case strings.Contains(line, m.NormalStart):
			inAddlGlob = false
		case strings.Contains(line, m.NormalEnd):
			inAddlGlob = false
		case strings.Contains(line, m.DataNext):
		case inSpecial:
			c.Special = append(c.Special, line)
		case strings.Contains(line, m.AddlGlobals):
			inAddlGlob = true
		case inAddlGlob:
			c.Extra = append(c.Extra, line)
		default:
			c.Normal = append(c.Normal, line)
		}
	}
	return c
}

// historyLines formats a history attribute for the normal comments.
func historyLines(history string, t *Table, now time.Time) []string {
	h := fmt.Sprintf("History:  %s - Converted to NASA Ames format using %s.\n%s",
		now.Format("2006-01-02 15:04:05"), t.Tool, history)
	var o []string
	for i, line := range strings.Split(h, "\n") {
		if i > 0 && !strings.HasPrefix(line, "  ") {
			line = "  " + line
		}
		o = append(o, wrapLine(line, t.HistoryWidth)...)
	}
	return o
}

// wrapLine wraps line at width, indenting continuation lines by two
// spaces more than the first line.
func wrapLine(line string, width int) []string {
	if width < 1 || len(line) <= width {
		return []string{line}
	}
	trimmed := strings.TrimLeft(line, " ")
	indent := line[:len(line)-len(trimmed)]
	limit := width - len(indent)
	if limit < 1 {
		limit = 1
	}
	wrapped := strings.Split(text.Wrap(trimmed, limit), "\n")
	o := []string{indent + wrapped[0]}
	if len(wrapped) == 1 {
		return o
	}
	// Continuation lines are indented two more spaces, so they are
	// rewrapped to leave room for it.
	rest := strings.Join(wrapped[1:], " ")
	if limit > 2 {
		limit -= 2
	}
	rest = text.Indent(text.Wrap(rest, limit), indent+"  ")
	return append(o, strings.Split(rest, "\n")...)
}

// parseDate interprets a first-valid-date attribute, which can be a list
// of three numbers or text such as "2017-05-01" or "2017 05 01".
func parseDate(v interface{}) ([]int, bool) {
	var parts []int
	if s, ok := v.(string); ok {
		fields := strings.FieldsFunc(s, func(r rune) bool {
			return r == '-' || r == ' ' || r == '/' || r == ',' || r == '\t'
		})
		for _, f := range fields {
			i, err := strconv.Atoi(f)
			if err != nil {
				return nil, false
			}
			parts = append(parts, i)
		}
	} else {
		var err error
		parts, err = cast.ToIntSliceE(v)
		if err != nil {
			return nil, false
		}
	}
	if len(parts) != 3 {
		return nil, false
	}
	return parts, true
}
