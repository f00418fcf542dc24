/*
Copyright © 2024 the GETM domain authors.
This file is part of mossco-getm.

mossco-getm is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

mossco-getm is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with mossco-getm.  If not, see <http://www.gnu.org/licenses/>.
*/

// Command getm is a command-line interface for building GETM model domains.
package main

import (
	"fmt"
	"os"

	"github.com/platipodium/mossco-getm/getmutil"
)

func main() {
	if err := getmutil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
