package store

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabproc/datatable"
)

const sample = "amount,label,ok\n1.5,apple,true\n,pear,false\n3,,true\n"

func TestExportRoundTrip(t *testing.T) {
	for _, ext := range []string{".csv", ".parquet", ".json", ".xlsx"} {
		t.Run(ext, func(t *testing.T) {
			src := loadedStore(t, "src.csv", sample)
			out := filepath.Join(t.TempDir(), "out"+ext)

			require.NoError(t, src.Export(context.Background(), out))

			dst := New(Options{}, nil)
			info, err := dst.Load(context.Background(), out)
			require.NoError(t, err)
			assert.Equal(t, DetectFileFormat(out), info.Format)

			assert.Equal(t, []string{"amount", "label", "ok"}, columnNames(t, dst))
			assert.Equal(t, rows(t, src), rows(t, dst))

			tbl, _ := dst.Snapshot()
			typ, err := tbl.ColumnType(0)
			require.NoError(t, err)
			assert.Equal(t, datatable.TypeFloat, typ)
		})
	}
}

func TestExportUnsupportedFormat(t *testing.T) {
	s := loadedStore(t, "src.csv", sample)
	out := filepath.Join(t.TempDir(), "out.txt")

	err := s.Export(context.Background(), out)
	assert.ErrorIs(t, err, datatable.ErrExportFailed)
	assert.ErrorIs(t, err, datatable.ErrUnsupportedFormat)

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestDetectFileFormat(t *testing.T) {
	tests := map[string]FileFormat{
		"a.xlsx":    FormatExcel,
		"a.XLSM":    FormatExcel,
		"a.csv":     FormatCSV,
		"a.parquet": FormatParquet,
		"a.json":    FormatJSON,
		"a.xls":     FormatUnknown,
		"a":         FormatUnknown,
	}
	for path, want := range tests {
		assert.Equal(t, want, DetectFileFormat(path), path)
	}
}

func TestSeparatorName(t *testing.T) {
	assert.Equal(t, "tab", SeparatorName('\t'))
	assert.Equal(t, "pipe", SeparatorName('|'))
	assert.Equal(t, "#", SeparatorName('#'))
}

func uint64Table(t *testing.T, values ...uint64) arrow.Table {
	t.Helper()
	b := array.NewUint64Builder(memory.DefaultAllocator)
	defer b.Release()
	b.AppendValues(values, nil)
	arr := b.NewArray()
	defer arr.Release()

	schema := arrow.NewSchema([]arrow.Field{{Name: "n", Type: arrow.PrimitiveTypes.Uint64}}, nil)
	rec := array.NewRecord(schema, []arrow.Array{arr}, int64(len(values)))
	defer rec.Release()

	tbl := array.NewTableFromRecords(schema, []arrow.RecordBatch{rec})
	t.Cleanup(tbl.Release)
	return tbl
}

func TestTableFromArrowUint64(t *testing.T) {
	small, err := tableFromArrow(uint64Table(t, 5, 7))
	require.NoError(t, err)
	typ, err := small.ColumnType(0)
	require.NoError(t, err)
	assert.Equal(t, datatable.TypeInt, typ)

	big, err := tableFromArrow(uint64Table(t, 5, math.MaxUint64))
	require.NoError(t, err)
	typ, err = big.ColumnType(0)
	require.NoError(t, err)
	assert.Equal(t, datatable.TypeString, typ)

	v, err := big.Cell(1, 0)
	require.NoError(t, err)
	assert.Equal(t, "18446744073709551615", v.Formatted)
}

func TestExportToJSONWritesNonFiniteAsNull(t *testing.T) {
	b := array.NewFloat64Builder(memory.DefaultAllocator)
	defer b.Release()
	b.AppendValues([]float64{1.5, math.NaN(), math.Inf(1)}, nil)
	arr := b.NewArray()
	defer arr.Release()

	schema := arrow.NewSchema([]arrow.Field{{Name: "x", Type: arrow.PrimitiveTypes.Float64}}, nil)
	rec := array.NewRecord(schema, []arrow.Array{arr}, 3)
	defer rec.Release()
	tbl := array.NewTableFromRecords(schema, []arrow.RecordBatch{rec})
	defer tbl.Release()

	out := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, ExportToJSON(tbl, out))

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"x": 1.5}, {"x": null}, {"x": null}]`, string(content))
}

func TestExportToCSVReportsCreateError(t *testing.T) {
	s := loadedStore(t, "src.csv", sample)
	out := filepath.Join(t.TempDir(), "missing", "out.csv")

	err := s.Export(context.Background(), out)
	assert.ErrorIs(t, err, datatable.ErrExportFailed)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
