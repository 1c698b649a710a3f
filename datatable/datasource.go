package datatable

// Reader is the read-only view of a table used by the grid and the Excel
// writer. Out-of-range indexes return ErrInvalidRow or ErrInvalidColumn; no
// method panics.
type Reader interface {
	RowCount() int
	ColumnCount() int
	ColumnName(col int) (string, error)
	ColumnType(col int) (DataType, error)
	Cell(row, col int) (Value, error)
	Row(row int) ([]Value, error)
}

var _ Reader = (*Table)(nil)

// Header lists the column names of r in order.
func Header(r Reader) []string {
	names := make([]string, r.ColumnCount())
	for i := range names {
		names[i], _ = r.ColumnName(i)
	}
	return names
}
