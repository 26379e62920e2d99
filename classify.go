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

// Classification is the partition of a set of variables into the roles
// they play in a NASA Ames file. Every input variable is in exactly one
// of Main, Auxiliary, Singleton, or Unused.
type Classification struct {
	// Main holds the variables that share all axes with the
	// highest-ranked variable, which is Main[0] before reordering.
	Main []*Variable

	// Auxiliary holds one-dimensional variables that are defined
	// against the primary axis of the main variables or against a
	// regularly spaced subset of it.
	Auxiliary []*Variable

	// Singleton holds the rank-zero variables.
	Singleton []*Variable

	// Unused holds the variables that cannot be written together with
	// the main variables.
	Unused []*Variable

	// NIV is the number of independent variables (dimensions) of the
	// main variables.
	NIV int

	// NVPM is the number of primary axis values per auxiliary value
	// when the auxiliary variables are defined against a regularly
	// spaced subset of the primary axis. It is 0 otherwise.
	NVPM int

	// SecondAxisUniform is true when the main variables are
	// two-dimensional and their second axis is uniformly spaced.
	SecondAxisUniform bool

	// rep is the variable that the others were compared against.
	rep *Variable
}

// Empty returns whether there is nothing that can be written.
func (c *Classification) Empty() bool { return len(c.Main) == 0 }

// Representative returns the variable that determines the structure of
// the output, or nil if the classification is empty.
func (c *Classification) Representative() *Variable { return c.rep }

// VarIDs returns the names of the main, auxiliary, and singleton
// variables.
func (c *Classification) VarIDs() [3][]string {
	var o [3][]string
	for i, vars := range [][]*Variable{c.Main, c.Auxiliary, c.Singleton} {
		for _, v := range vars {
			o[i] = append(o[i], v.Name)
		}
	}
	return o
}

// Classify sorts vars into main, auxiliary, singleton, and unused
// variables. The variable with the most dimensions (and then the most
// elements) is chosen as the representative that the other variables are
// compared to. The main and auxiliary variables are returned in the
// order given by Reorder.
//
// Once an auxiliary variable defined against a regularly spaced subset
// of the primary axis is found, the first such stride is kept and any
// auxiliary candidates that do not share it are marked unused.
func Classify(vars []*Variable, insp Inspector) Classification {
	var c Classification

	var rest []*Variable
	for _, v := range vars {
		if v.Rank() == 0 {
			c.Singleton = append(c.Singleton, v)
			continue
		}
		if c.rep == nil || v.Rank() > c.rep.Rank() ||
			(v.Rank() == c.rep.Rank() && v.Size() > c.rep.Size()) {
			c.rep = v
		}
		rest = append(rest, v)
	}
	if c.rep == nil {
		return c
	}

	best := c.rep
	c.NIV = best.Rank()
	bestAxes := insp.AxisList(best)
	if c.NIV == 2 {
		c.SecondAxisUniform = insp.IsUniform(bestAxes[1])
	}

	main := []*Variable{best}
	var aux, plainAux []*Variable
	for _, v := range rest {
		if v == best {
			continue
		}
		if v.Rank() != c.NIV || !sameShape(v.Shape(), best.Shape()) {
			if v.Rank() != 1 {
				c.Unused = append(c.Unused, v)
				continue
			}
			first := insp.AxisList(v)[0]
			if insp.AxesIdentical(bestAxes[0], first) {
				if c.NVPM > 0 {
					c.Unused = append(c.Unused, v)
				} else {
					aux = append(aux, v)
					plainAux = append(plainAux, v)
				}
				continue
			}
			stride, ok := insp.RegularSubset(first, bestAxes[0])
			switch {
			case !ok || c.NIV != 1:
				c.Unused = append(c.Unused, v)
			case c.NVPM == 0:
				c.NVPM = stride
				// Auxiliary variables on the full primary axis cannot be
				// written in the sparse layout.
				aux = removeVars(aux, plainAux)
				c.Unused = append(c.Unused, plainAux...)
				plainAux = nil
				aux = append(aux, v)
			case stride == c.NVPM:
				aux = append(aux, v)
			default:
				c.Unused = append(c.Unused, v)
			}
			continue
		}

		axes := insp.AxisList(v)
		compatible := true
		for i := 0; i < c.NIV; i++ {
			if !insp.AxesIdentical(bestAxes[i], axes[i]) {
				compatible = false
				break
			}
		}
		if compatible {
			main = append(main, v)
		} else {
			c.Unused = append(c.Unused, v)
		}
	}

	c.Main = Reorder(main, false)
	c.Auxiliary = Reorder(aux, true)
	return c
}

// removeVars returns vars without the variables in remove.
func removeVars(vars, remove []*Variable) []*Variable {
	var o []*Variable
	for _, v := range vars {
		keep := true
		for _, r := range remove {
			if v == r {
				keep = false
				break
			}
		}
		if keep {
			o = append(o, v)
		}
	}
	return o
}
