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

package windows

import (
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"tabproc/datatable"
)

const (
	minColumnWidth = 100
	maxColumnWidth = 320
)

// DataGrid shows a table snapshot. Column headers and row headers are buttons:
// a column header tap sorts rows and a row header tap reorders columns.
type DataGrid struct {
	table *widget.Table
	data  datatable.Reader

	OnColumnHeaderTapped func(col int)
	OnRowHeaderTapped    func(row int)
}

func NewDataGrid() *DataGrid {
	g := &DataGrid{}

	g.table = widget.NewTableWithHeaders(
		func() (int, int) {
			if g.data == nil {
				return 0, 0
			}
			return g.data.RowCount(), g.data.ColumnCount()
		},
		func() fyne.CanvasObject {
			label := widget.NewLabel("template")
			label.Truncation = fyne.TextTruncateEllipsis
			return label
		},
		func(id widget.TableCellID, obj fyne.CanvasObject) {
			obj.(*widget.Label).SetText(g.CellText(id.Row, id.Col))
		},
	)

	g.table.CreateHeader = func() fyne.CanvasObject {
		b := widget.NewButton("", nil)
		b.Importance = widget.LowImportance
		return b
	}
	g.table.UpdateHeader = func(id widget.TableCellID, obj fyne.CanvasObject) {
		b := obj.(*widget.Button)
		switch {
		case id.Row < 0 && id.Col >= 0:
			b.SetText(g.ColumnName(id.Col))
			col := id.Col
			b.OnTapped = func() { g.TapColumnHeader(col) }
		case id.Col < 0 && id.Row >= 0:
			b.SetText(strconv.Itoa(id.Row + 1))
			row := id.Row
			b.OnTapped = func() { g.TapRowHeader(row) }
		default:
			b.SetText("")
			b.OnTapped = nil
		}
	}

	return g
}

// Widget returns the canvas object to place in a layout.
func (g *DataGrid) Widget() fyne.CanvasObject {
	return g.table
}

// SetData replaces the shown snapshot and sizes the columns to their headers.
func (g *DataGrid) SetData(tbl datatable.Reader) {
	g.data = tbl
	if tbl != nil {
		for i, name := range datatable.Header(tbl) {
			g.table.SetColumnWidth(i, columnWidth(name))
		}
	}
	g.table.ScrollToTop()
	g.table.Refresh()
}

func columnWidth(name string) float32 {
	size := fyne.MeasureText(name, theme.TextSize(), fyne.TextStyle{Bold: true})
	w := size.Width + 40
	return max(minColumnWidth, min(w, maxColumnWidth))
}

// Size returns the number of rows and columns shown.
func (g *DataGrid) Size() (rows, cols int) {
	if g.data == nil {
		return 0, 0
	}
	return g.data.RowCount(), g.data.ColumnCount()
}

// ColumnName is the header text of col, or "" when col is not shown.
func (g *DataGrid) ColumnName(col int) string {
	if g.data == nil {
		return ""
	}
	name, err := g.data.ColumnName(col)
	if err != nil {
		return ""
	}
	return name
}

// CellText is the formatted text shown at row, col.
func (g *DataGrid) CellText(row, col int) string {
	if g.data == nil {
		return ""
	}
	v, err := g.data.Cell(row, col)
	if err != nil {
		return ""
	}
	return v.Formatted
}

// TapColumnHeader acts as a click on the header of col.
func (g *DataGrid) TapColumnHeader(col int) {
	if g.OnColumnHeaderTapped != nil {
		g.OnColumnHeaderTapped(col)
	}
}

// TapRowHeader acts as a click on the header of row.
func (g *DataGrid) TapRowHeader(row int) {
	if g.OnRowHeaderTapped != nil {
		g.OnRowHeaderTapped(row)
	}
}
