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

package store

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	arrowcsv "github.com/apache/arrow-go/v18/arrow/csv"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/xuri/excelize/v2"

	"tabproc/datatable"
)

// FileFormat represents the type of data file
type FileFormat int

const (
	FormatUnknown FileFormat = iota
	FormatCSV
	FormatExcel
	FormatParquet
	FormatJSON
)

func (f FileFormat) String() string {
	switch f {
	case FormatCSV:
		return "CSV"
	case FormatExcel:
		return "Excel"
	case FormatParquet:
		return "Parquet"
	case FormatJSON:
		return "JSON"
	default:
		return "unknown"
	}
}

// SupportedExtensions lists the extensions accepted by Load, in the order
// they are offered in the file dialog.
var SupportedExtensions = []string{".xlsx", ".xlsm", ".csv", ".parquet", ".json"}

// DetectFileFormat determines the type of file based on its extension
func DetectFileFormat(filePath string) FileFormat {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".xlsx", ".xlsm":
		return FormatExcel
	case ".csv":
		return FormatCSV
	case ".parquet":
		return FormatParquet
	case ".json":
		return FormatJSON
	default:
		return FormatUnknown
	}
}

// readDataFile parses filePath into a table without touching store state.
// For CSV files sep is the separator that was used.
func readDataFile(ctx context.Context, filePath string, opts Options) (tbl *datatable.Table, format FileFormat, sep rune, err error) {
	format = DetectFileFormat(filePath)

	switch format {
	case FormatCSV:
		tbl, sep, err = loadCSVFile(filePath, opts.Separator)
	case FormatExcel:
		tbl, err = loadExcelFile(filePath, opts.Sheet)
	case FormatParquet:
		tbl, err = loadParquetFile(ctx, filePath)
	case FormatJSON:
		tbl, err = loadJSONFile(filePath)
	default:
		return nil, format, 0, fmt.Errorf("%w: %q", datatable.ErrUnsupportedFormat, filepath.Ext(filePath))
	}
	if err != nil {
		return nil, format, 0, newLoadError(filePath, format, err)
	}
	return tbl, format, sep, nil
}

// detectCSVSeparator picks the candidate separator that occurs most often in
// the first line of data. Comma wins ties and empty input.
func detectCSVSeparator(data []byte) rune {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	if !scanner.Scan() {
		return ','
	}
	firstLine := scanner.Text()

	// Ordered so that ties resolve the same way on every run
	candidates := []rune{',', ';', '\t', '|'}
	maxCount := 0
	detectedSep := ','
	for _, sep := range candidates {
		if count := strings.Count(firstLine, string(sep)); count > maxCount {
			maxCount = count
			detectedSep = sep
		}
	}
	return detectedSep
}

// SeparatorName returns a human-readable name for the separator
func SeparatorName(sep rune) string {
	switch sep {
	case ',':
		return "comma"
	case ';':
		return "semicolon"
	case '\t':
		return "tab"
	case '|':
		return "pipe"
	default:
		return string(sep)
	}
}

// loadCSVFile reads a delimited text file through the Arrow CSV reader. All
// columns are read as text and typed afterwards so that one odd cell turns
// the column into text instead of failing the whole load. Rows shorter than
// the header are padded with empty cells; longer rows are an error.
func loadCSVFile(filePath string, separator rune) (*datatable.Table, rune, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open CSV file: %w", err)
	}
	if separator == 0 {
		separator = detectCSVSeparator(data)
	}

	header, normalized, err := padCSVRecords(data, separator)
	if err != nil {
		return nil, separator, err
	}

	fields := make([]arrow.Field, len(header))
	for i, name := range header {
		fields[i] = arrow.Field{Name: name, Type: arrow.BinaryTypes.String, Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)

	reader := arrowcsv.NewReader(normalized, schema,
		arrowcsv.WithComma(separator),
		arrowcsv.WithHeader(true),
		arrowcsv.WithChunk(1024),
	)
	defer reader.Release()

	cells := make([][]string, len(header))
	for reader.Next() {
		rec := reader.Record()
		for c := 0; c < int(rec.NumCols()); c++ {
			col := rec.Column(c).(*array.String)
			for r := 0; r < col.Len(); r++ {
				if col.IsNull(r) {
					cells[c] = append(cells[c], "")
					continue
				}
				cells[c] = append(cells[c], col.Value(r))
			}
		}
	}
	if err := reader.Err(); err != nil {
		return nil, separator, fmt.Errorf("failed to read CSV data: %w", err)
	}

	tbl, err := datatable.FromTextColumns(header, cells)
	return tbl, separator, err
}

// padCSVRecords returns the header and a copy of data in which every record
// has exactly as many fields as the header.
func padCSVRecords(data []byte, separator rune) ([]string, *bytes.Buffer, error) {
	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = separator
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, datatable.ErrEmptyData
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	out := &bytes.Buffer{}
	cw := csv.NewWriter(out)
	cw.Comma = separator
	if err := cw.Write(header); err != nil {
		return nil, nil, err
	}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read CSV data: %w", err)
		}
		if len(record) > len(header) {
			line, _ := cr.FieldPos(0)
			return nil, nil, fmt.Errorf("failed to read CSV data: record on line %d has %d fields, header has %d: %w",
				line, len(record), len(header), csv.ErrFieldCount)
		}
		for len(record) < len(header) {
			record = append(record, "")
		}
		if err := cw.Write(record); err != nil {
			return nil, nil, err
		}
	}
	cw.Flush()
	return header, out, cw.Error()
}

// loadExcelFile reads the first worksheet, or the named one, of an Excel
// workbook. The first row holds the column names.
func loadExcelFile(filePath, sheet string) (*datatable.Table, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, datatable.ErrEmptyData
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q: %w", sheet, datatable.ErrEmptyData)
	}

	return datatable.FromRecords(rows[0], rows[1:])
}

// loadParquetFile loads a Parquet file through Arrow
func loadParquetFile(ctx context.Context, filePath string) (*datatable.Table, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer f.Close()

	mem := memory.NewGoAllocator()

	// Create a parquet file reader
	pf, err := file.NewParquetReader(f, file.WithReadProps(parquet.NewReaderProperties(mem)))
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet reader: %w", err)
	}
	defer pf.Close()

	arrowReader, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, mem)
	if err != nil {
		return nil, fmt.Errorf("failed to create arrow reader: %w", err)
	}

	table, err := arrowReader.ReadTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet data: %w", err)
	}
	defer table.Release()

	return tableFromArrow(table)
}

// loadJSONFile loads an array of objects, or a single object, keeping keys
// in the order they first appear.
func loadJSONFile(filePath string) (*datatable.Table, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON file: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(content))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	var records []map[string]string
	var header []string
	seen := make(map[string]bool)

	readObject := func() error {
		record := make(map[string]string)
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return err
			}
			key, ok := keyTok.(string)
			if !ok {
				return fmt.Errorf("unexpected token %v", keyTok)
			}
			var raw interface{}
			if err := dec.Decode(&raw); err != nil {
				return err
			}
			if !seen[key] {
				seen[key] = true
				header = append(header, key)
			}
			record[key] = jsonCellText(raw)
		}
		// closing brace
		if _, err := dec.Token(); err != nil {
			return err
		}
		records = append(records, record)
		return nil
	}

	switch tok {
	case json.Delim('{'):
		if err := readObject(); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	case json.Delim('['):
		for dec.More() {
			objTok, err := dec.Token()
			if err != nil {
				return nil, fmt.Errorf("failed to parse JSON: %w", err)
			}
			if objTok != json.Delim('{') {
				return nil, fmt.Errorf("failed to parse JSON: expected object, got %v", objTok)
			}
			if err := readObject(); err != nil {
				return nil, fmt.Errorf("failed to parse JSON: %w", err)
			}
		}
	default:
		return nil, fmt.Errorf("failed to parse JSON: expected object or array")
	}

	if len(records) == 0 || len(header) == 0 {
		return nil, fmt.Errorf("JSON file is empty or has no records: %w", datatable.ErrEmptyData)
	}

	cells := make([][]string, len(header))
	for c, key := range header {
		cells[c] = make([]string, len(records))
		for r, record := range records {
			cells[c][r] = record[key]
		}
	}
	return datatable.FromTextColumns(header, cells)
}

func jsonCellText(raw interface{}) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}
