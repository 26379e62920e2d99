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

// Command nasaames is a command-line interface for converting NetCDF and
// Apache Arrow files into NASA Ames headers.
package main

import (
	"fmt"
	"os"

	"github.com/spatialmodel/nasaames/nautil"
)

func main() {
	if err := nautil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
