// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package datatable

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/fvbommel/sortorder"
)

// SortByColumn returns a new table whose rows are stably ordered by the
// values of the named column. Nulls go last in both directions.
func (t *Table) SortByColumn(name string, direction SortDirection) (*Table, error) {
	idx, err := t.ColumnIndex(name)
	if err != nil {
		return nil, err
	}

	key := t.columns[idx].Values
	perm := identity(t.rows)
	slices.SortStableFunc(perm, func(a, b int) int {
		return compareDirected(key[a], key[b], direction)
	})

	columns := make([]Column, len(t.columns))
	for i, c := range t.columns {
		values := make([]Value, t.rows)
		for to, from := range perm {
			values[to] = c.Values[from]
		}
		columns[i] = Column{Name: c.Name, Type: c.Type, Values: values}
	}
	return &Table{columns: columns, rows: t.rows}, nil
}

// SortByRowValues returns a new table whose columns are stably reordered so
// that the values found at the given row appear in the requested order.
// Rows themselves are not moved.
func (t *Table) SortByRowValues(row int, direction SortDirection) (*Table, error) {
	if row < 0 || row >= t.rows {
		return nil, fmt.Errorf("%w: row %d of %d", ErrRowOutOfRange, row, t.rows)
	}

	perm := identity(len(t.columns))
	slices.SortStableFunc(perm, func(a, b int) int {
		return compareDirected(t.columns[a].Values[row], t.columns[b].Values[row], direction)
	})

	columns := make([]Column, len(t.columns))
	for to, from := range perm {
		columns[to] = cloneColumn(t.columns[from])
	}
	return &Table{columns: columns, rows: t.rows}, nil
}

func identity(n int) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	return perm
}

func compareDirected(a, b Value, direction SortDirection) int {
	switch {
	case a.IsNull && b.IsNull:
		return 0
	case a.IsNull:
		return 1
	case b.IsNull:
		return -1
	}
	c := CompareValues(a, b)
	if direction == SortDescending {
		return -c
	}
	return c
}

// CompareValues orders two non-null values. Values of different kinds are
// ordered numbers first, then booleans, timestamps and text; text compares
// in natural order so that "item2" sorts before "item10".
func CompareValues(a, b Value) int {
	ra, rb := kindRank(a), kindRank(b)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}

	switch ra {
	case 0:
		if ai, ok := a.Raw.(int64); ok {
			if bi, ok := b.Raw.(int64); ok {
				return cmp.Compare(ai, bi)
			}
		}
		af, _ := a.Float()
		bf, _ := b.Float()
		return cmp.Compare(af, bf)
	case 1:
		ab, bb := a.Raw.(bool), b.Raw.(bool)
		switch {
		case ab == bb:
			return 0
		case !ab:
			return -1
		default:
			return 1
		}
	case 2:
		return a.Raw.(time.Time).Compare(b.Raw.(time.Time))
	}

	switch {
	case sortorder.NaturalLess(a.Formatted, b.Formatted):
		return -1
	case sortorder.NaturalLess(b.Formatted, a.Formatted):
		return 1
	default:
		return cmp.Compare(a.Formatted, b.Formatted)
	}
}

func kindRank(v Value) int {
	switch v.Raw.(type) {
	case int64, float64:
		return 0
	case bool:
		return 1
	case time.Time:
		return 2
	default:
		return 3
	}
}
