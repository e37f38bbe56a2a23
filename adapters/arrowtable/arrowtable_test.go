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

package arrowtable

import (
	"context"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/require"

	"tablebridge/datatable"
)

func buildTestTable(t *testing.T) arrow.Table {
	t.Helper()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "name", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "qty", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		{Name: "price", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
		{Name: "active", Type: arrow.FixedWidthTypes.Boolean, Nullable: true},
	}, nil)

	b := array.NewRecordBuilder(memory.NewGoAllocator(), schema)
	defer b.Release()

	b.Field(0).(*array.StringBuilder).AppendValues([]string{"espresso", "latte"}, nil)
	b.Field(1).(*array.Int64Builder).AppendValues([]int64{10, 0}, []bool{true, false})
	b.Field(2).(*array.Float64Builder).AppendValues([]float64{2.5, 3.75}, nil)
	b.Field(3).(*array.BooleanBuilder).AppendValues([]bool{true, false}, nil)

	rec := b.NewRecord()
	defer rec.Release()

	return array.NewTableFromRecords(schema, []arrow.Record{rec})
}

func TestNew_SchemaMapping(t *testing.T) {
	tbl := buildTestTable(t)
	defer tbl.Release()

	ds, err := New(tbl)
	require.NoError(t, err)
	defer ds.Release()

	cols := ds.Columns()
	require.Len(t, cols, 4)
	require.Equal(t, datatable.KindText, cols[0].Kind)
	require.Equal(t, datatable.KindInt, cols[1].Kind)
	require.Equal(t, datatable.KindDecimal, cols[2].Kind)
	require.Equal(t, datatable.KindBool, cols[3].Kind)
	for _, c := range cols {
		require.False(t, c.Editable, "arrow tables are read-only")
	}
}

func TestNew_NilTable(t *testing.T) {
	_, err := New(nil)
	var se *datatable.SchemaError
	require.ErrorAs(t, err, &se)
}

func TestLoadAll(t *testing.T) {
	tbl := buildTestTable(t)
	defer tbl.Release()

	ds, err := New(tbl)
	require.NoError(t, err)
	defer ds.Release()

	rows, err := ds.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	require.Equal(t, datatable.RowID("row-0"), rows[0].ID)
	require.Equal(t, datatable.RowID("row-1"), rows[1].ID)

	require.Equal(t, "espresso", rows[0].Cells[0].Formatted)
	require.Equal(t, int64(10), rows[0].Cells[1].AsInt())
	require.Equal(t, "2.5", rows[0].Cells[2].Formatted)
	require.True(t, rows[0].Cells[3].AsBool())

	// The second qty cell was appended invalid, so it scans as null.
	require.True(t, rows[1].Cells[1].IsNull)
	require.Equal(t, datatable.KindInt, rows[1].Cells[1].Kind)
}

func TestPersistEdit_ReadOnly(t *testing.T) {
	tbl := buildTestTable(t)
	defer tbl.Release()

	ds, err := New(tbl)
	require.NoError(t, err)
	defer ds.Release()

	err = ds.PersistEdit(context.Background(), "row-0", 0, datatable.Text("x"))
	require.ErrorIs(t, err, datatable.ErrReadOnly)
}

func TestLoadAll_CancelledContext(t *testing.T) {
	tbl := buildTestTable(t)
	defer tbl.Release()

	ds, err := New(tbl)
	require.NoError(t, err)
	defer ds.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = ds.LoadAll(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
