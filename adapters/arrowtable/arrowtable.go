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

// Package arrowtable provides a read-only Dataset over an Apache Arrow
// table.
package arrowtable

import (
	"context"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"tablebridge/datatable"
)

const readChunkSize = 1024

// Dataset adapts an arrow.Table. Arrow tables carry no primary key, so row
// identities are synthetic sequential ids and the dataset is read-only.
type Dataset struct {
	table arrow.Table
	cols  []datatable.Column
}

// New creates a dataset over the given Arrow table. The table is retained
// for the dataset's lifetime; callers release their own reference. It
// returns *SchemaError when the table's schema has no fields.
func New(tbl arrow.Table) (*Dataset, error) {
	if tbl == nil {
		return nil, &datatable.SchemaError{Cause: datatable.ErrNoDataset}
	}
	fields := tbl.Schema().Fields()
	if len(fields) == 0 {
		return nil, &datatable.SchemaError{Cause: errors.New("arrow schema has no fields")}
	}
	cols := make([]datatable.Column, len(fields))
	for i, f := range fields {
		cols[i] = datatable.Column{
			Name:  f.Name,
			Kind:  kindForArrowType(f.Type),
			Index: i,
		}
	}
	tbl.Retain()
	return &Dataset{table: tbl, cols: cols}, nil
}

// Release drops the dataset's reference to the underlying Arrow table.
func (d *Dataset) Release() {
	d.table.Release()
}

// Columns implements datatable.Dataset.
func (d *Dataset) Columns() []datatable.Column {
	return append([]datatable.Column(nil), d.cols...)
}

// LoadAll implements datatable.Dataset.
func (d *Dataset) LoadAll(ctx context.Context) ([]datatable.Row, error) {
	rows := make([]datatable.Row, 0, d.table.NumRows())

	tr := array.NewTableReader(d.table, readChunkSize)
	defer tr.Release()

	seq := 0
	for tr.Next() {
		if err := ctx.Err(); err != nil {
			return nil, &datatable.FetchError{Cause: err}
		}
		rec := tr.Record()
		n := int(rec.NumRows())
		for i := 0; i < n; i++ {
			cells := make([]datatable.Value, len(d.cols))
			for j := range d.cols {
				cells[j] = cellValue(rec.Column(j), i, d.cols[j].Kind)
			}
			rows = append(rows, datatable.Row{
				ID:    datatable.RowID("row-" + strconv.Itoa(seq)),
				Cells: cells,
			})
			seq++
		}
	}
	return rows, nil
}

// PersistEdit implements datatable.Dataset. Arrow tables are immutable.
func (d *Dataset) PersistEdit(context.Context, datatable.RowID, int, datatable.Value) error {
	return &datatable.PersistError{Cause: datatable.ErrReadOnly}
}

// kindForArrowType maps an Arrow data type onto a column kind. Types with
// no direct counterpart render as text.
func kindForArrowType(dt arrow.DataType) datatable.Kind {
	switch dt.ID() {
	case arrow.STRING, arrow.LARGE_STRING:
		return datatable.KindText
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		return datatable.KindInt
	case arrow.FLOAT16, arrow.FLOAT32, arrow.FLOAT64,
		arrow.DECIMAL128, arrow.DECIMAL256:
		return datatable.KindDecimal
	case arrow.BOOL:
		return datatable.KindBool
	case arrow.TIMESTAMP, arrow.DATE32, arrow.DATE64:
		return datatable.KindTimestamp
	default:
		return datatable.KindText
	}
}

// cellValue extracts one cell from an Arrow column chunk.
func cellValue(arr arrow.Array, i int, kind datatable.Kind) datatable.Value {
	if arr.IsNull(i) {
		return datatable.Null(kind)
	}
	switch a := arr.(type) {
	case *array.String:
		return datatable.Text(a.Value(i))
	case *array.LargeString:
		return datatable.Text(a.Value(i))
	case *array.Int8:
		return datatable.Int(int64(a.Value(i)))
	case *array.Int16:
		return datatable.Int(int64(a.Value(i)))
	case *array.Int32:
		return datatable.Int(int64(a.Value(i)))
	case *array.Int64:
		return datatable.Int(a.Value(i))
	case *array.Uint8:
		return datatable.Int(int64(a.Value(i)))
	case *array.Uint16:
		return datatable.Int(int64(a.Value(i)))
	case *array.Uint32:
		return datatable.Int(int64(a.Value(i)))
	case *array.Uint64:
		return datatable.Int(int64(a.Value(i)))
	case *array.Float32:
		return datatable.DecimalFromFloat(float64(a.Value(i)))
	case *array.Float64:
		return datatable.DecimalFromFloat(a.Value(i))
	case *array.Boolean:
		return datatable.Bool(a.Value(i))
	case *array.Timestamp:
		unit := a.DataType().(*arrow.TimestampType).Unit
		return datatable.Timestamp(a.Value(i).ToTime(unit))
	case *array.Date32:
		return datatable.Timestamp(a.Value(i).ToTime())
	case *array.Date64:
		return datatable.Timestamp(a.Value(i).ToTime())
	}
	if kind == datatable.KindDecimal {
		if dec, err := decimal.NewFromString(arr.ValueStr(i)); err == nil {
			return datatable.Decimal(dec)
		}
	}
	return datatable.Text(arr.ValueStr(i))
}
