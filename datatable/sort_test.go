package datatable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func columnStrings(t *testing.T, tbl *Table, name string) []string {
	t.Helper()
	col, err := tbl.Column(name)
	require.NoError(t, err)
	out := make([]string, len(col.Values))
	for i, v := range col.Values {
		out[i] = v.Formatted
	}
	return out
}

func TestSortByColumnTogglesDirection(t *testing.T) {
	tbl, err := FromRecords([]string{"A", "B"}, [][]string{{"3", "x"}, {"1", "y"}, {"2", "z"}})
	require.NoError(t, err)

	asc, err := tbl.SortByColumn("A", SortAscending)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, columnStrings(t, asc, "A"))
	assert.Equal(t, []string{"y", "z", "x"}, columnStrings(t, asc, "B"))

	desc, err := asc.SortByColumn("A", SortDescending)
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "2", "1"}, columnStrings(t, desc, "A"))

	// the source table is left untouched
	assert.Equal(t, []string{"3", "1", "2"}, columnStrings(t, tbl, "A"))
}

func TestSortByColumnIsStableWithNullsLast(t *testing.T) {
	tbl, err := FromRecords([]string{"k", "id"}, [][]string{
		{"b", "1"}, {"", "2"}, {"a", "3"}, {"b", "4"}, {"a", "5"},
	})
	require.NoError(t, err)

	asc, err := tbl.SortByColumn("k", SortAscending)
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "5", "1", "4", "2"}, columnStrings(t, asc, "id"))

	desc, err := tbl.SortByColumn("k", SortDescending)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "4", "3", "5", "2"}, columnStrings(t, desc, "id"))
}

func TestSortByColumnNaturalText(t *testing.T) {
	tbl, err := FromRecords([]string{"name"}, [][]string{{"item10"}, {"item2"}, {"item1"}})
	require.NoError(t, err)

	sorted, err := tbl.SortByColumn("name", SortAscending)
	require.NoError(t, err)
	assert.Equal(t, []string{"item1", "item2", "item10"}, columnStrings(t, sorted, "name"))
}

func TestSortByColumnMissing(t *testing.T) {
	tbl, err := FromRecords([]string{"A"}, [][]string{{"1"}})
	require.NoError(t, err)

	_, err = tbl.SortByColumn("nope", SortAscending)
	assert.ErrorIs(t, err, ErrColumnNotFound)
}

func TestSortByRowValuesReordersColumns(t *testing.T) {
	tbl, err := FromRecords([]string{"X", "Y", "Z"}, [][]string{{"3", "1", "2"}})
	require.NoError(t, err)

	asc, err := tbl.SortByRowValues(0, SortAscending)
	require.NoError(t, err)
	assert.Equal(t, []string{"Y", "Z", "X"}, asc.ColumnNames())

	desc, err := tbl.SortByRowValues(0, SortDescending)
	require.NoError(t, err)
	assert.Equal(t, []string{"X", "Z", "Y"}, desc.ColumnNames())
}

func TestSortByRowValuesMovesWholeColumns(t *testing.T) {
	tbl, err := FromRecords([]string{"X", "Y"}, [][]string{{"a", "b"}, {"2", "1"}})
	require.NoError(t, err)

	sorted, err := tbl.SortByRowValues(1, SortAscending)
	require.NoError(t, err)
	assert.Equal(t, []string{"Y", "X"}, sorted.ColumnNames())
	assert.Equal(t, [][]string{{"b", "a"}, {"1", "2"}}, formattedRows(t, sorted))
}

func TestSortByRowValuesMixedKinds(t *testing.T) {
	tbl, err := FromRecords([]string{"T", "N", "E", "B"}, [][]string{{"text", "5", "", "true"}})
	require.NoError(t, err)

	sorted, err := tbl.SortByRowValues(0, SortAscending)
	require.NoError(t, err)
	assert.Equal(t, []string{"N", "B", "T", "E"}, sorted.ColumnNames())
}

func TestSortByRowValuesOutOfRange(t *testing.T) {
	tbl, err := FromRecords([]string{"A"}, [][]string{{"1"}})
	require.NoError(t, err)

	_, err = tbl.SortByRowValues(1, SortAscending)
	assert.ErrorIs(t, err, ErrRowOutOfRange)
	_, err = tbl.SortByRowValues(-1, SortAscending)
	assert.ErrorIs(t, err, ErrRowOutOfRange)
}

func TestCompareValuesNumbers(t *testing.T) {
	assert.Equal(t, -1, CompareValues(NewValue(int64(2), TypeInt), NewValue(2.5, TypeFloat)))
	assert.Equal(t, 0, CompareValues(NewValue(int64(3), TypeInt), NewValue(int64(3), TypeInt)))
	assert.Equal(t, 1, CompareValues(NewValue(true, TypeBool), NewValue(false, TypeBool)))
}
