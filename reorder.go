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

import "sort"

// Reorder returns vars sorted so that variables that were previously
// read from a NASA Ames file return to the column positions recorded in
// their provenance indices. If aux is true the auxiliary variable
// positions are used. Variables without a provenance index follow, in
// their original order.
//
// If two variables claim the same position the later one takes the
// position and the earlier one is moved to the end with the variables
// that have no index.
func Reorder(vars []*Variable, aux bool) []*Variable {
	indexed := make(map[int]*Variable)
	var others []*Variable
	for _, v := range vars {
		i, ok := v.ProvenanceIndex(aux)
		if !ok {
			others = append(others, v)
			continue
		}
		if prev, ok := indexed[i]; ok {
			others = append(others, prev)
		}
		indexed[i] = v
	}
	keys := make([]int, 0, len(indexed))
	for k := range indexed {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	o := make([]*Variable, 0, len(vars))
	for _, k := range keys {
		o = append(o, indexed[k])
	}
	return append(o, others...)
}
