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
	"io"

	"github.com/BurntSushi/toml"
)

// Field identifies the NASA Ames header field that a generic global
// attribute is translated into.
type Field int

// These are the recognized translation targets.
const (
	// FieldPassThrough attributes are copied verbatim into the normal comments.
	FieldPassThrough Field = iota
	FieldONAME
	FieldORG
	FieldSNAME
	FieldMNAME
	// FieldInstitution fills both ONAME and ORG, recovering them separately
	// if the value was produced by a previous conversion.
	FieldInstitution
	// FieldHistory is appended to the normal comments with a conversion note.
	FieldHistory
	// FieldComment is split into special and normal comments.
	FieldComment
	// FieldDate gives the first valid date of the data (DATE).
	FieldDate
)

var fieldNames = []string{
	FieldPassThrough: "COMMENT",
	FieldONAME:       "ONAME",
	FieldORG:         "ORG",
	FieldSNAME:       "SNAME",
	FieldMNAME:       "MNAME",
	FieldInstitution: "ONAME+ORG",
	FieldHistory:     "HISTORY",
	FieldComment:     "SCOM+NCOM",
	FieldDate:        "DATE",
}

func (f Field) String() string {
	if f < 0 || int(f) >= len(fieldNames) {
		return fmt.Sprintf("Field(%d)", int(f))
	}
	return fieldNames[f]
}

// ParseField returns the field with the given name, as returned by
// Field.String.
func ParseField(name string) (Field, error) {
	for i, n := range fieldNames {
		if n == name {
			return Field(i), nil
		}
	}
	return 0, fmt.Errorf("nasaames: unrecognized header field %q", name)
}

// Markers are the delimiter lines written into the comment blocks.
type Markers struct {
	SpecialStart, SpecialEnd string
	NormalStart, NormalEnd   string
	DataNext                 string

	// AddlGlobals introduces global attributes that were not translated
	// into any other header field.
	AddlGlobals string

	// AddlVarAtts introduces the per-variable attribute documentation,
	// which is delimited by VarAttsStart and VarAttsEnd.
	AddlVarAtts              string
	VarAttsStart, VarAttsEnd string

	SingletonStart, SingletonEnd string

	// ONAME and ORG mark the two halves of an institution attribute
	// that was created from a NASA Ames file.
	ONAME, ORG string
}

// Table holds the rules for translating generic metadata into NASA Ames
// header fields.
type Table struct {
	// Map translates global attribute names into header fields.
	// Attributes that are not in Map are written to the normal comments.
	Map map[string]Field

	Markers Markers

	// DefaultMissingValue is used for variables without a missing value
	// attribute.
	DefaultMissingValue float64

	// HistoryWidth is the length at which history lines are wrapped.
	// Lines are not wrapped if it is < 1.
	HistoryWidth int

	// Tool is the program name recorded in the history.
	Tool string
}

// alwaysPassThrough attributes are written to the normal comments
// regardless of Map.
var alwaysPassThrough = map[string]bool{
	"Conventions": true,
	"references":  true,
}

// DefaultTable returns the default translation table.
func DefaultTable() *Table {
	return &Table{
		Map: map[string]Field{
			"Conventions":              FieldPassThrough,
			"references":               FieldPassThrough,
			"institution":              FieldInstitution,
			"source":                   FieldSNAME,
			"title":                    FieldMNAME,
			"history":                  FieldHistory,
			"comment":                  FieldComment,
			"first_valid_date_of_data": FieldDate,
		},
		Markers: Markers{
			SpecialStart:   "==== Special Comments follow ====",
			SpecialEnd:     "==== Special Comments end ====",
			NormalStart:    "==== Normal Comments follow ====",
			NormalEnd:      "==== Normal Comments end ====",
			DataNext:       "==== Data Section begins on the next line ====",
			AddlGlobals:    "Additional Global Attributes defined in the source file and not translated elsewhere:",
			AddlVarAtts:    "Additional Variable Attributes defined in the source file and not translated elsewhere:",
			VarAttsStart:   "==== Variable Attributes follow ====",
			VarAttsEnd:     "==== Variable Attributes end ====",
			SingletonStart: "==== Singleton Variables follow ====",
			SingletonEnd:   "==== Singleton Variables end ====",
			ONAME:          "(ONAME from NASA Ames file)",
			ORG:            "(ORG from NASA Ames file)",
		},
		DefaultMissingValue: -99999,
		HistoryWidth:        80,
		Tool:                "nasaames-" + Version,
	}
}

// tableFile is the on-disk representation of a Table.
type tableFile struct {
	Map                 map[string]string
	Markers             Markers
	DefaultMissingValue *float64
	HistoryWidth        *int
	Tool                string
}

// LoadTable reads a TOML translation table from r. The values in r are
// laid over the default table, so only the differences need to be
// specified. For example:
//
//	HistoryWidth = 72
//	[Map]
//	project = "MNAME"
//	platform = "SNAME"
//	[Markers]
//	DataNext = "==== Data follow ===="
func LoadTable(r io.Reader) (*Table, error) {
	var f tableFile
	if _, err := toml.DecodeReader(r, &f); err != nil {
		return nil, fmt.Errorf("nasaames: reading translation table: %v", err)
	}
	t := DefaultTable()
	for att, name := range f.Map {
		field, err := ParseField(name)
		if err != nil {
			return nil, fmt.Errorf("nasaames: translation table entry %s: %v", att, err)
		}
		t.Map[att] = field
	}
	t.Markers.overlay(f.Markers)
	if f.DefaultMissingValue != nil {
		t.DefaultMissingValue = *f.DefaultMissingValue
	}
	if f.HistoryWidth != nil {
		t.HistoryWidth = *f.HistoryWidth
	}
	if f.Tool != "" {
		t.Tool = f.Tool
	}
	return t, nil
}

// overlay replaces the markers in m with the non-empty markers in o.
func (m *Markers) overlay(o Markers) {
	for _, p := range []struct {
		dst *string
		src string
	}{
		{&m.SpecialStart, o.SpecialStart},
		{&m.SpecialEnd, o.SpecialEnd},
		{&m.NormalStart, o.NormalStart},
		{&m.NormalEnd, o.NormalEnd},
		{&m.DataNext, o.DataNext},
		{&m.AddlGlobals, o.AddlGlobals},
		{&m.AddlVarAtts, o.AddlVarAtts},
		{&m.VarAttsStart, o.VarAttsStart},
		{&m.VarAttsEnd, o.VarAttsEnd},
		{&m.SingletonStart, o.SingletonStart},
		{&m.SingletonEnd, o.SingletonEnd},
		{&m.ONAME, o.ONAME},
		{&m.ORG, o.ORG},
	} {
		if p.src != "" {
			*p.dst = p.src
		}
	}
}

// field returns the translation target for the named global attribute.
// mapped is false if the attribute is not in the table.
func (t *Table) field(att string) (f Field, mapped bool) {
	if alwaysPassThrough[att] {
		return FieldPassThrough, true
	}
	f, mapped = t.Map[att]
	return f, mapped
}
