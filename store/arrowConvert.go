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
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"tabproc/datatable"
)

// tableFromArrow copies an Arrow table into a datatable.Table.
func tableFromArrow(table arrow.Table) (*datatable.Table, error) {
	schema := table.Schema()
	columns := make([]datatable.Column, table.NumCols())

	for i := 0; i < int(table.NumCols()); i++ {
		field := schema.Field(i)
		dataType := columnType(field.Type)
		if field.Type.ID() == arrow.UINT64 && !fitsInt64(table.Column(i).Data()) {
			// keep every digit rather than wrap past math.MaxInt64
			dataType = datatable.TypeString
		}
		values := make([]datatable.Value, 0, table.NumRows())

		for _, chunk := range table.Column(i).Data().Chunks() {
			for pos := 0; pos < chunk.Len(); pos++ {
				values = append(values, arrowValue(chunk, pos, dataType))
			}
		}
		columns[i] = datatable.Column{Name: field.Name, Type: dataType, Values: values}
	}

	return datatable.New(columns)
}

// fitsInt64 reports whether every value of a uint64 column fits in an int64.
func fitsInt64(col *arrow.Chunked) bool {
	for _, chunk := range col.Chunks() {
		c, ok := chunk.(*array.Uint64)
		if !ok {
			continue
		}
		for pos := 0; pos < c.Len(); pos++ {
			if c.IsValid(pos) && c.Value(pos) > math.MaxInt64 {
				return false
			}
		}
	}
	return true
}

// columnType maps an Arrow type onto the grid's column types.
func columnType(dt arrow.DataType) datatable.DataType {
	switch dt.ID() {
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		return datatable.TypeInt
	case arrow.FLOAT16, arrow.FLOAT32, arrow.FLOAT64:
		return datatable.TypeFloat
	case arrow.BOOL:
		return datatable.TypeBool
	case arrow.DATE32, arrow.DATE64, arrow.TIMESTAMP:
		return datatable.TypeTimestamp
	default:
		return datatable.TypeString
	}
}

// arrowValue returns the typed value at pos
func arrowValue(col arrow.Array, pos int, dataType datatable.DataType) datatable.Value {
	if col.IsNull(pos) {
		return datatable.NewNullValue(dataType)
	}

	switch c := col.(type) {
	case *array.String:
		return datatable.NewValue(c.Value(pos), dataType)
	case *array.LargeString:
		return datatable.NewValue(c.Value(pos), dataType)
	case *array.Binary:
		return datatable.NewValue(string(c.Value(pos)), dataType)
	case *array.Boolean:
		return datatable.NewValue(c.Value(pos), dataType)
	case *array.Int8:
		return datatable.NewValue(int64(c.Value(pos)), dataType)
	case *array.Int16:
		return datatable.NewValue(int64(c.Value(pos)), dataType)
	case *array.Int32:
		return datatable.NewValue(int64(c.Value(pos)), dataType)
	case *array.Int64:
		return datatable.NewValue(c.Value(pos), dataType)
	case *array.Uint8:
		return datatable.NewValue(int64(c.Value(pos)), dataType)
	case *array.Uint16:
		return datatable.NewValue(int64(c.Value(pos)), dataType)
	case *array.Uint32:
		return datatable.NewValue(int64(c.Value(pos)), dataType)
	case *array.Uint64:
		if dataType == datatable.TypeString {
			return datatable.NewValue(strconv.FormatUint(c.Value(pos), 10), dataType)
		}
		return datatable.NewValue(int64(c.Value(pos)), dataType)
	case *array.Float16:
		return datatable.NewValue(float64(c.Value(pos).Float32()), dataType)
	case *array.Float32:
		return datatable.NewValue(float64(c.Value(pos)), dataType)
	case *array.Float64:
		return datatable.NewValue(c.Value(pos), dataType)
	case *array.Date32:
		return datatable.NewValue(c.Value(pos).ToTime().UTC(), dataType)
	case *array.Date64:
		return datatable.NewValue(c.Value(pos).ToTime().UTC(), dataType)
	case *array.Timestamp:
		unit := c.DataType().(*arrow.TimestampType).Unit
		return datatable.NewValue(c.Value(pos).ToTime(unit).UTC(), dataType)
	case *array.Decimal128:
		return datatable.NewValue(c.Value(pos).BigInt().String(), dataType)
	default:
		// nested and exotic types are shown as text
		return datatable.NewValue(c.ValueStr(pos), dataType)
	}
}

// arrowType is the Arrow type used when writing a column of the given type.
func arrowType(dt datatable.DataType) arrow.DataType {
	switch dt {
	case datatable.TypeInt:
		return arrow.PrimitiveTypes.Int64
	case datatable.TypeFloat:
		return arrow.PrimitiveTypes.Float64
	case datatable.TypeBool:
		return arrow.FixedWidthTypes.Boolean
	case datatable.TypeTimestamp:
		return &arrow.TimestampType{Unit: arrow.Nanosecond, TimeZone: "UTC"}
	default:
		return arrow.BinaryTypes.String
	}
}

// tableToArrow builds an Arrow table from the current table.
// The caller must Release the result.
func tableToArrow(tbl *datatable.Table) (arrow.Table, error) {
	pool := memory.NewGoAllocator()
	src := tbl.Columns()

	fields := make([]arrow.Field, len(src))
	for i, c := range src {
		fields[i] = arrow.Field{Name: c.Name, Type: arrowType(c.Type), Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)

	columns := make([]arrow.Column, len(src))
	for i, c := range src {
		builder := array.NewBuilder(pool, fields[i].Type)
		for _, v := range c.Values {
			if err := appendValueToBuilder(builder, v); err != nil {
				builder.Release()
				return nil, fmt.Errorf("column %q: %w", c.Name, err)
			}
		}
		arr := builder.NewArray()
		builder.Release()

		chunked := arrow.NewChunked(fields[i].Type, []arrow.Array{arr})
		arr.Release()
		col := arrow.NewColumn(fields[i], chunked)
		chunked.Release()
		columns[i] = *col
	}

	table := array.NewTable(schema, columns, int64(tbl.RowCount()))
	for i := range columns {
		columns[i].Release()
	}
	return table, nil
}

// appendValueToBuilder appends a typed value to a builder
func appendValueToBuilder(builder array.Builder, v datatable.Value) error {
	if v.IsNull {
		builder.AppendNull()
		return nil
	}

	switch b := builder.(type) {
	case *array.StringBuilder:
		b.Append(v.Formatted)
	case *array.Int64Builder:
		n, ok := v.Raw.(int64)
		if !ok {
			return fmt.Errorf("value %q is not an integer", v.Formatted)
		}
		b.Append(n)
	case *array.Float64Builder:
		f, ok := v.Float()
		if !ok {
			return fmt.Errorf("value %q is not a number", v.Formatted)
		}
		b.Append(f)
	case *array.BooleanBuilder:
		bl, ok := v.Raw.(bool)
		if !ok {
			return fmt.Errorf("value %q is not a boolean", v.Formatted)
		}
		b.Append(bl)
	case *array.TimestampBuilder:
		ts, ok := v.Raw.(time.Time)
		if !ok {
			return fmt.Errorf("value %q is not a timestamp", v.Formatted)
		}
		b.Append(arrow.Timestamp(ts.UnixNano()))
	default:
		builder.AppendNull()
	}
	return nil
}
