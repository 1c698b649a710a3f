package store

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"tabproc/datatable"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func loadedStore(t *testing.T, name, content string) *Store {
	t.Helper()
	s := New(Options{}, nil)
	_, err := s.Load(context.Background(), writeFile(t, name, content))
	require.NoError(t, err)
	return s
}

func rows(t *testing.T, s *Store) [][]string {
	t.Helper()
	tbl, ok := s.Snapshot()
	require.True(t, ok)
	out := make([][]string, tbl.RowCount())
	for r := range out {
		values, err := tbl.Row(r)
		require.NoError(t, err)
		for _, v := range values {
			out[r] = append(out[r], v.Formatted)
		}
	}
	return out
}

func columnNames(t *testing.T, s *Store) []string {
	t.Helper()
	tbl, ok := s.Snapshot()
	require.True(t, ok)
	return tbl.ColumnNames()
}

func TestLoadCSV(t *testing.T) {
	s := New(Options{}, nil)
	info, err := s.Load(context.Background(), writeFile(t, "data.csv", "A,B\n1,2\n3,4\n"))
	require.NoError(t, err)

	assert.Equal(t, FormatCSV, info.Format)
	assert.Equal(t, 2, info.Rows)
	assert.Equal(t, 2, info.Columns)
	assert.Equal(t, "comma", info.Separator)
	assert.Equal(t, "data.csv", info.Name())
	assert.Equal(t, []string{"A", "B"}, columnNames(t, s))
	assert.Equal(t, [][]string{{"1", "2"}, {"3", "4"}}, rows(t, s))
}

func TestLoadCSVDetectsSeparator(t *testing.T) {
	s := loadedStore(t, "semi.csv", "name;score\nann;1.5\nbob;\n")

	assert.Equal(t, "semicolon", s.Info().Separator)
	assert.Equal(t, [][]string{{"ann", "1.5"}, {"bob", ""}}, rows(t, s))

	tbl, _ := s.Snapshot()
	typ, err := tbl.ColumnType(1)
	require.NoError(t, err)
	assert.Equal(t, datatable.TypeFloat, typ)
}

func TestLoadCSVForcedSeparator(t *testing.T) {
	s := New(Options{Separator: '|'}, nil)
	_, err := s.Load(context.Background(), writeFile(t, "pipe.csv", "a|b,c\n1|2,3\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b,c"}, columnNames(t, s))
	assert.Equal(t, "pipe", s.Info().Separator)
}

func TestLoadCSVPadsShortRows(t *testing.T) {
	s := loadedStore(t, "short.csv", "A,B,C\n1,2\n3,4,5\n")

	assert.Equal(t, 2, s.Info().Rows)
	assert.Equal(t, 3, s.Info().Columns)
	assert.Equal(t, [][]string{{"1", "2", ""}, {"3", "4", "5"}}, rows(t, s))

	tbl, _ := s.Snapshot()
	v, err := tbl.Cell(0, 2)
	require.NoError(t, err)
	assert.True(t, v.IsNull)
}

func TestLoadCSVRejectsLongRows(t *testing.T) {
	s := New(Options{}, nil)
	_, err := s.Load(context.Background(), writeFile(t, "long.csv", "A,B\n1,2,3\n"))
	assert.ErrorIs(t, err, datatable.ErrLoad)
	assert.ErrorIs(t, err, csv.ErrFieldCount)
	assert.False(t, s.HasData())
}

func TestLoadUnsupportedFormatKeepsTable(t *testing.T) {
	s := loadedStore(t, "data.csv", "A,B\n1,2\n")

	_, err := s.Load(context.Background(), writeFile(t, "notes.txt", "hello"))
	assert.ErrorIs(t, err, datatable.ErrUnsupportedFormat)

	assert.Equal(t, []string{"A", "B"}, columnNames(t, s))
	assert.Equal(t, "data.csv", s.Info().Name())
}

func TestLoadUnsupportedFormatWithoutTable(t *testing.T) {
	s := New(Options{}, nil)
	_, err := s.Load(context.Background(), writeFile(t, "notes.txt", "hello"))
	assert.ErrorIs(t, err, datatable.ErrUnsupportedFormat)
	assert.False(t, s.HasData())
}

func TestLoadErrorKeepsTable(t *testing.T) {
	s := loadedStore(t, "data.csv", "A,B\n1,2\n")

	_, err := s.Load(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, datatable.ErrLoad)

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, FormatCSV, loadErr.Format)
	assert.ErrorIs(t, err, os.ErrNotExist)

	assert.Equal(t, [][]string{{"1", "2"}}, rows(t, s))
}

func TestLoadEmptyCSV(t *testing.T) {
	s := New(Options{}, nil)
	_, err := s.Load(context.Background(), writeFile(t, "empty.csv", ""))
	assert.ErrorIs(t, err, datatable.ErrLoad)
	assert.ErrorIs(t, err, datatable.ErrEmptyData)
}

func TestLoadExcel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Data"))
	require.NoError(t, f.SetCellValue("Data", "A1", "city"))
	require.NoError(t, f.SetCellValue("Data", "B1", "people"))
	require.NoError(t, f.SetCellValue("Data", "A2", "Oslo"))
	require.NoError(t, f.SetCellValue("Data", "B2", 700000))
	require.NoError(t, f.SetCellValue("Data", "A3", "Bergen"))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	s := New(Options{}, nil)
	info, err := s.Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, FormatExcel, info.Format)
	assert.Equal(t, []string{"city", "people"}, columnNames(t, s))
	assert.Equal(t, [][]string{{"Oslo", "700000"}, {"Bergen", ""}}, rows(t, s))
}

func TestLoadExcelNamedSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.xlsm")
	f := excelize.NewFile()
	_, err := f.NewSheet("Second")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "first"))
	require.NoError(t, f.SetCellValue("Second", "A1", "second"))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	s := New(Options{Sheet: "Second"}, nil)
	_, err = s.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"second"}, columnNames(t, s))
}

func TestLoadJSONKeepsKeyOrder(t *testing.T) {
	s := loadedStore(t, "data.json", `[{"z": 1, "a": "x"}, {"a": "y", "m": true}]`)

	assert.Equal(t, []string{"z", "a", "m"}, columnNames(t, s))
	assert.Equal(t, [][]string{{"1", "x", ""}, {"", "y", "true"}}, rows(t, s))
}

func TestLoadJSONSingleObject(t *testing.T) {
	s := loadedStore(t, "one.json", `{"k": "v", "n": {"deep": 1}}`)
	assert.Equal(t, [][]string{{"v", `{"deep":1}`}}, rows(t, s))
}

func TestSortByColumnToggle(t *testing.T) {
	s := loadedStore(t, "d.csv", "A,B\n3,x\n1,y\n2,z\n")
	ctx := context.Background()

	require.NoError(t, s.SortByColumn(ctx, "A", datatable.SortAscending))
	assert.Equal(t, [][]string{{"1", "y"}, {"2", "z"}, {"3", "x"}}, rows(t, s))

	require.NoError(t, s.SortByColumn(ctx, "A", datatable.SortDescending))
	assert.Equal(t, [][]string{{"3", "x"}, {"2", "z"}, {"1", "y"}}, rows(t, s))
}

func TestSortByColumnMissingKeepsTable(t *testing.T) {
	s := loadedStore(t, "d.csv", "A\n2\n1\n")

	err := s.SortByColumn(context.Background(), "Nope", datatable.SortAscending)
	assert.ErrorIs(t, err, datatable.ErrColumnNotFound)
	assert.Equal(t, [][]string{{"2"}, {"1"}}, rows(t, s))
}

func TestSortByRowValues(t *testing.T) {
	s := loadedStore(t, "d.csv", "X,Y,Z\n3,1,2\n")

	require.NoError(t, s.SortByRowValues(context.Background(), 0, datatable.SortAscending))
	assert.Equal(t, []string{"Y", "Z", "X"}, columnNames(t, s))

	err := s.SortByRowValues(context.Background(), 5, datatable.SortAscending)
	assert.ErrorIs(t, err, datatable.ErrRowOutOfRange)
	assert.Equal(t, []string{"Y", "Z", "X"}, columnNames(t, s))
}

func TestSearchAndReplace(t *testing.T) {
	s := loadedStore(t, "d.csv", "A,B\nfoo1,2\nx,y\n")

	changed, err := s.SearchAndReplace(context.Background(), "foo", "bar")
	require.NoError(t, err)
	assert.Equal(t, 1, changed)
	assert.Equal(t, [][]string{{"bar1", "2"}, {"x", "y"}}, rows(t, s))

	_, err = s.SearchAndReplace(context.Background(), "[", "bar")
	assert.ErrorIs(t, err, datatable.ErrReplace)
}

func TestOperationsWithoutData(t *testing.T) {
	s := New(Options{}, nil)
	ctx := context.Background()

	assert.ErrorIs(t, s.SortByColumn(ctx, "A", datatable.SortAscending), datatable.ErrNoDataLoaded)
	assert.ErrorIs(t, s.SortByRowValues(ctx, 0, datatable.SortAscending), datatable.ErrNoDataLoaded)
	_, err := s.SearchAndReplace(ctx, "a", "b")
	assert.ErrorIs(t, err, datatable.ErrNoDataLoaded)
	_, err = s.ChartData(ctx, "a", "b")
	assert.ErrorIs(t, err, datatable.ErrNoDataLoaded)
	assert.ErrorIs(t, s.Export(ctx, filepath.Join(t.TempDir(), "out.csv")), datatable.ErrNoDataLoaded)

	_, ok := s.Snapshot()
	assert.False(t, ok)
}

func TestCancelledContextDoesNotCommit(t *testing.T) {
	s := loadedStore(t, "d.csv", "A\n2\n1\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.SortByColumn(ctx, "A", datatable.SortAscending)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, [][]string{{"2"}, {"1"}}, rows(t, s))
}

func TestChartData(t *testing.T) {
	s := loadedStore(t, "d.csv", "name,qty,note\na,1,x\nb,,y\nc,2.5,z\n")
	ctx := context.Background()

	data, err := s.ChartData(ctx, "name", "qty")
	require.NoError(t, err)
	assert.Equal(t, "name", data.XName)
	assert.Equal(t, "qty", data.YName)
	assert.Equal(t, []string{"a", "b", "c"}, data.Labels)
	assert.Equal(t, []float64{1, 0, 2.5}, data.Values)

	_, err = s.ChartData(ctx, "name", "note")
	assert.ErrorIs(t, err, datatable.ErrNotNumeric)

	_, err = s.ChartData(ctx, "name", "missing")
	assert.ErrorIs(t, err, datatable.ErrColumnNotFound)
}

func TestChartDataRejectsNonFinite(t *testing.T) {
	s := loadedStore(t, "d.csv", "k,v\na,1\nb,NaN\n")

	tbl, _ := s.Snapshot()
	typ, err := tbl.ColumnType(1)
	require.NoError(t, err)
	assert.Equal(t, datatable.TypeString, typ)

	_, err = s.ChartData(context.Background(), "k", "v")
	assert.ErrorIs(t, err, datatable.ErrNotNumeric)

	// replaced text is parsed again and must stay finite
	s = loadedStore(t, "d.csv", "k,v\na,1\nb,2\n")
	_, err = s.SearchAndReplace(context.Background(), "^2$", "+Inf")
	require.NoError(t, err)
	_, err = s.ChartData(context.Background(), "k", "v")
	assert.ErrorIs(t, err, datatable.ErrNotNumeric)
}

func TestChartDataAfterReplaceParsesText(t *testing.T) {
	s := loadedStore(t, "d.csv", "k,v\na,10\nb,20\n")
	ctx := context.Background()

	_, err := s.SearchAndReplace(ctx, "0$", "5")
	require.NoError(t, err)

	data, err := s.ChartData(ctx, "k", "v")
	require.NoError(t, err)
	assert.Equal(t, []float64{15, 25}, data.Values)
}

func TestConcurrentOperationsSerialize(t *testing.T) {
	s := loadedStore(t, "d.csv", "A,B\n3,x\n1,y\n2,z\n")
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			dir := datatable.SortAscending
			if i%2 == 1 {
				dir = datatable.SortDescending
			}
			assert.NoError(t, s.SortByColumn(ctx, "A", dir))
			_, _ = s.Snapshot()
		}(i)
	}
	wg.Wait()

	got := rows(t, s)
	require.Len(t, got, 3)
	ascending := [][]string{{"1", "y"}, {"2", "z"}, {"3", "x"}}
	descending := [][]string{{"3", "x"}, {"2", "z"}, {"1", "y"}}
	assert.True(t, assert.ObjectsAreEqual(ascending, got) || assert.ObjectsAreEqual(descending, got), "rows %v", got)
}
