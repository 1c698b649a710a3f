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
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Column is a named, typed sequence of values.
type Column struct {
	Name   string
	Type   DataType
	Values []Value
}

// Table is an ordered sequence of equally long columns.
type Table struct {
	columns []Column
	rows    int
}

// New builds a table from columns. All columns must have the same length.
// Column names are made unique as in FromRecords.
func New(columns []Column) (*Table, error) {
	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = c.Name
	}
	for i, name := range uniqueNames(header) {
		columns[i].Name = name
	}

	t := &Table{columns: columns}
	for i, c := range columns {
		if i == 0 {
			t.rows = len(c.Values)
			continue
		}
		if len(c.Values) != t.rows {
			return nil, fmt.Errorf("column %q has %d values, expected %d", c.Name, len(c.Values), t.rows)
		}
	}
	return t, nil
}

// FromRecords builds a table from a header and text rows, inferring one type
// per column. Short rows are padded with nulls, long rows are truncated to
// the header width. Blank header names become "Unnamed: <index>" and repeated
// names get a ".<n>" suffix so that every column can be addressed by name.
func FromRecords(header []string, rows [][]string) (*Table, error) {
	cells := make([][]string, len(header))
	for c := range header {
		cells[c] = make([]string, len(rows))
		for r, row := range rows {
			if c < len(row) {
				cells[c][r] = row[c]
			}
		}
	}
	return FromTextColumns(header, cells)
}

// FromTextColumns builds a table from column-major text cells, inferring one
// type per column. Header names are normalised as in FromRecords.
func FromTextColumns(header []string, cells [][]string) (*Table, error) {
	if len(header) == 0 {
		return nil, ErrEmptyData
	}
	if len(cells) != len(header) {
		return nil, fmt.Errorf("%d header names for %d columns", len(header), len(cells))
	}

	names := uniqueNames(header)
	columns := make([]Column, len(names))
	for c, name := range names {
		columns[c] = InferColumn(name, cells[c])
	}
	return New(columns)
}

// uniqueNames trims header names, names blank ones "Unnamed: i" and gives
// repeats the first free ".n" suffix.
func uniqueNames(header []string) []string {
	names := make([]string, len(header))
	used := make(map[string]bool, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if used[name] {
			base := name
			for n := 1; used[name]; n++ {
				name = fmt.Sprintf("%s.%d", base, n)
			}
		}
		used[name] = true
		names[i] = name
	}
	return names
}

// InferColumn converts text cells into a typed column. Empty cells are nulls.
// The narrowest of int, float and bool that parses every non-empty cell wins;
// otherwise the column is text.
func InferColumn(name string, cells []string) Column {
	dataType := inferType(cells)
	values := make([]Value, len(cells))
	for i, cell := range cells {
		values[i] = parseCell(cell, dataType)
	}
	return Column{Name: name, Type: dataType, Values: values}
}

func inferType(cells []string) DataType {
	isInt, isFloat, isBool := true, true, true
	nonEmpty := 0
	for _, cell := range cells {
		s := strings.TrimSpace(cell)
		if s == "" {
			continue
		}
		nonEmpty++
		if isInt {
			if _, err := strconv.ParseInt(s, 10, 64); err != nil {
				isInt = false
			}
		}
		if isFloat {
			if _, ok := parseFinite(s); !ok {
				isFloat = false
			}
		}
		if isBool {
			if _, ok := parseBool(s); !ok {
				isBool = false
			}
		}
		if !isInt && !isFloat && !isBool {
			return TypeString
		}
	}
	switch {
	case nonEmpty == 0:
		return TypeString
	case isInt:
		return TypeInt
	case isFloat:
		return TypeFloat
	case isBool:
		return TypeBool
	default:
		return TypeString
	}
}

// parseFinite parses a float and refuses NaN and the infinities, which
// strconv accepts as words ("nan", "inf", "infinity").
func parseFinite(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

func parseCell(cell string, dataType DataType) Value {
	s := strings.TrimSpace(cell)
	if s == "" {
		return NewNullValue(dataType)
	}
	switch dataType {
	case TypeInt:
		n, _ := strconv.ParseInt(s, 10, 64)
		return NewValue(n, TypeInt)
	case TypeFloat:
		f, _ := parseFinite(s)
		return NewValue(f, TypeFloat)
	case TypeBool:
		b, _ := parseBool(s)
		return NewValue(b, TypeBool)
	default:
		return NewValue(cell, TypeString)
	}
}

// RowCount returns the number of rows.
func (t *Table) RowCount() int {
	return t.rows
}

// ColumnCount returns the number of columns.
func (t *Table) ColumnCount() int {
	return len(t.columns)
}

// ColumnName returns the name of the column at the given index.
func (t *Table) ColumnName(col int) (string, error) {
	if col < 0 || col >= len(t.columns) {
		return "", ErrInvalidColumn
	}
	return t.columns[col].Name, nil
}

// ColumnType returns the data type of the column at the given index.
func (t *Table) ColumnType(col int) (DataType, error) {
	if col < 0 || col >= len(t.columns) {
		return TypeString, ErrInvalidColumn
	}
	return t.columns[col].Type, nil
}

// Cell returns the value at the specified row and column.
func (t *Table) Cell(row, col int) (Value, error) {
	if row < 0 || row >= t.rows {
		return Value{}, ErrInvalidRow
	}
	if col < 0 || col >= len(t.columns) {
		return Value{}, ErrInvalidColumn
	}
	return t.columns[col].Values[row], nil
}

// Row returns all values for the specified row.
func (t *Table) Row(row int) ([]Value, error) {
	if row < 0 || row >= t.rows {
		return nil, ErrInvalidRow
	}
	values := make([]Value, len(t.columns))
	for i, c := range t.columns {
		values[i] = c.Values[row]
	}
	return values, nil
}

// ColumnNames returns the column names in display order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// ColumnIndex returns the position of the named column.
func (t *Table) ColumnIndex(name string) (int, error) {
	for i, c := range t.columns {
		if c.Name == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
}

// Column returns a copy of the named column.
func (t *Table) Column(name string) (Column, error) {
	idx, err := t.ColumnIndex(name)
	if err != nil {
		return Column{}, err
	}
	return cloneColumn(t.columns[idx]), nil
}

// Columns returns copies of all columns in display order.
func (t *Table) Columns() []Column {
	columns := make([]Column, len(t.columns))
	for i, c := range t.columns {
		columns[i] = cloneColumn(c)
	}
	return columns
}

// Clone returns a deep copy that shares no slices with t.
func (t *Table) Clone() *Table {
	return &Table{columns: t.Columns(), rows: t.rows}
}

func cloneColumn(c Column) Column {
	values := make([]Value, len(c.Values))
	copy(values, c.Values)
	return Column{Name: c.Name, Type: c.Type, Values: values}
}
