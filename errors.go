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

package getm

import (
	"fmt"
	"strings"
)

// InvalidGridError is returned when coordinate input is malformed or
// describes a degenerate grid. It is fatal for initialization.
type InvalidGridError struct {
	Family Family
	Index  Index
	Reason string
}

func (e *InvalidGridError) Error() string {
	if e.Index.I < 0 {
		return fmt.Sprintf("getm: invalid grid (family %v): %s", e.Family, e.Reason)
	}
	return fmt.Sprintf("getm: invalid grid at %v %v: %s", e.Family, e.Index, e.Reason)
}

// InconsistentMaskError is returned when the masking rules are violated
// at a face.
type InconsistentMaskError struct {
	Family Family
	Index  Index
	Reason string
}

func (e *InconsistentMaskError) Error() string {
	return fmt.Sprintf("getm: inconsistent mask at %v %v: %s", e.Family, e.Index, e.Reason)
}

// ColumnDryError is returned by UpdateLayerBounds when one or more
// nominally wet columns would be left without any active layer. The
// remaining columns have been updated; the listed columns keep their
// previous bounds until they are reclassified dry.
type ColumnDryError struct {
	Columns []Index
}

func (e *ColumnDryError) Error() string {
	const maxShown = 5
	s := make([]string, 0, maxShown)
	for i, c := range e.Columns {
		if i == maxShown {
			s = append(s, "...")
			break
		}
		s = append(s, c.String())
	}
	return fmt.Sprintf("getm: %d wet column(s) have no active layers: %s",
		len(e.Columns), strings.Join(s, ", "))
}

// AlreadyAllocatedError is returned when a FieldStore is allocated twice
// without an intervening Release.
type AlreadyAllocatedError struct{}

func (e *AlreadyAllocatedError) Error() string {
	return "getm: field store is already allocated"
}

// OutOfBoundsError is returned for reads and writes outside of a
// field's declared extents.
type OutOfBoundsError struct {
	Field string
	Index []int
	Shape []int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("getm: index %v is outside the extents %v of field %s", e.Index, e.Shape, e.Field)
}

// MissingFieldError is returned when a field is requested that does not
// exist under the allocated feature set.
type MissingFieldError struct {
	Name     string
	Feature  Feature
	Features Feature
}

func (e *MissingFieldError) Error() string {
	if e.Feature != 0 {
		return fmt.Sprintf("getm: field %s requires feature %v, which is not enabled (enabled: %v)",
			e.Name, e.Feature, e.Features)
	}
	return fmt.Sprintf("getm: field %s does not exist", e.Name)
}
