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
	"time"

	"github.com/sirupsen/logrus"
)

// Converter creates NASA Ames headers from array variables. A Converter
// holds no state between conversions, so it may be used by several
// goroutines at once.
type Converter struct {
	// Table holds the metadata translation rules. DefaultTable is
	// used if it is nil.
	Table *Table

	// Inspector provides information about variables and axes.
	// A DefaultInspector is used if it is nil.
	Inspector Inspector

	// Log receives diagnostic messages. The logrus standard logger is
	// used if it is nil.
	Log logrus.FieldLogger

	// Now returns the current time. time.Now is used if it is nil.
	Now func() time.Time
}

// Result is the outcome of a conversion.
type Result struct {
	// Header is the converted content. It is nil if Found is false.
	Header *Header

	// Classification describes which variables were used and how.
	Classification Classification

	// Found is false when none of the variables could be written.
	Found bool
}

// Convert creates a NASA Ames header from vars and the global attributes
// globals. requestedFFI is the file format index to use, or 0 to choose
// it automatically.
//
// Variables that cannot be written with the others are reported in the
// result's Classification rather than causing an error. A
// *DimensionalityError is returned if the variables have more than four
// dimensions, and an *FFIMismatchError if the data cannot be written in
// the requested format. If none of the variables can be written, the
// result has Found == false and the error is nil.
func (c *Converter) Convert(vars []*Variable, globals Attributes, requestedFFI int) (*Result, error) {
	t := c.Table
	if t == nil {
		t = DefaultTable()
	}
	insp := c.Inspector
	if insp == nil {
		insp = NewInspector(t)
	}
	log := c.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	now := time.Now()
	if c.Now != nil {
		now = c.Now()
	}

	for _, v := range vars {
		if v.Rank() > MaxDimensions {
			return nil, &DimensionalityError{Rank: v.Rank()}
		}
	}
	for _, v := range vars {
		log.WithFields(logrus.Fields{
			"variable": v.Name,
			"shape":    v.Shape(),
		}).Debug("nasaames: analysing variable")
	}

	class := Classify(vars, insp)
	for _, v := range class.Unused {
		log.WithField("variable", v.Name).Warn("nasaames: variable is not compatible with the main variables and will not be written")
	}
	if class.Empty() {
		log.Warn("nasaames: no NASA Ames content created")
		return &Result{Classification: class}, nil
	}

	ffi, err := ResolveFFI(class.NIV, len(class.Auxiliary) > 0, class.SecondAxisUniform, class.NVPM, requestedFFI)
	if err != nil {
		return nil, err
	}

	rep := class.Main[0]
	axes, err := EncodeAxes(rep, ffi, class.NVPM, insp)
	if err != nil {
		return nil, err
	}

	b := newHeaderBuilder(ffi, class.NIV)
	if err := b.axes(axes); err != nil {
		return nil, err
	}
	if err := b.variables(seriesOf(class.Main, insp)); err != nil {
		return nil, err
	}
	if err := b.auxiliary(seriesOf(class.Auxiliary, insp)); err != nil {
		return nil, err
	}

	g := MapGlobals(globals, t, now)
	b.comments(BuildComments(g, class, t, insp))
	b.globals(g, firstDate(insp.AxisList(rep)[0], g.Date, log), dateOf(now))

	h, err := b.build()
	if err != nil {
		return nil, err
	}
	return &Result{Header: h, Classification: class, Found: true}, nil
}

// seriesOf returns the header representation of vars.
func seriesOf(vars []*Variable, insp Inspector) []Series {
	o := make([]Series, len(vars))
	for i, v := range vars {
		miss := insp.MissingValue(v)
		o[i] = Series{
			Name:    insp.BestName(v.Name, v.Attributes),
			Scale:   1,
			Missing: miss,
			Values:  insp.Flatten(v, miss),
		}
	}
	return o
}

// firstDate returns the first date of the data. It is taken from the
// primary axis if that axis is temporal, and otherwise from known, the
// date given in the global attributes. If neither is available a warning
// is logged and UnknownDate is returned.
func firstDate(primary *Axis, known []int, log logrus.FieldLogger) [3]int {
	const warning = "nasaames: could not get the first date in the file; it will need to be edited manually"
	if primary.IsTime() {
		t, err := primary.Time(0)
		if err != nil {
			log.WithError(err).Warn(warning)
			return UnknownDate
		}
		return dateOf(t)
	}
	if len(known) == 3 {
		return [3]int{known[0], known[1], known[2]}
	}
	log.Warn(warning)
	return UnknownDate
}

func dateOf(t time.Time) [3]int {
	return [3]int{t.Year(), int(t.Month()), t.Day()}
}
