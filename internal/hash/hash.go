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

// Package hash computes content keys that identify static grid input.
package hash

import (
	"encoding/gob"
	"fmt"
	"hash/fnv"
	"io"

	"github.com/davecgh/go-spew/spew"
)

// Key returns a hexadecimal key for the combined content of objects.
// Equal content always gives equal keys.
func Key(objects ...interface{}) string {
	h := fnv.New128a()
	for _, o := range objects {
		write(h, o)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

func write(w io.Writer, o interface{}) {
	// gob fails for some values, such as structs without exported fields.
	if err := gob.NewEncoder(w).Encode(o); err == nil {
		return
	}
	printer := spew.ConfigState{
		Indent:                  " ",
		SortKeys:                true,
		DisableMethods:          true,
		SpewKeys:                true,
		DisablePointerAddresses: true,
		DisableCapacities:       true,
	}
	printer.Fprintf(w, "%#v", o)
}
