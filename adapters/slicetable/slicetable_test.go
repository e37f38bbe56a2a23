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

package slicetable

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tablebridge/datatable"
)

var testCols = []datatable.Column{
	{Name: "Name", Kind: datatable.KindText, Editable: true, Index: 0},
	{Name: "Qty", Kind: datatable.KindInt, Editable: true, Index: 1},
}

func TestNew_SyntheticIdentities(t *testing.T) {
	ds, err := New(testCols, [][]datatable.Value{
		{datatable.Text("a"), datatable.Int(1)},
		{datatable.Text("b"), datatable.Int(2)},
	})
	require.NoError(t, err)

	rows, err := ds.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.NotEmpty(t, rows[0].ID)
	require.NotEqual(t, rows[0].ID, rows[1].ID)

	// Synthetic identities cannot address a remote record, so writes
	// are rejected.
	err = ds.PersistEdit(context.Background(), rows[0].ID, 0, datatable.Text("x"))
	require.ErrorIs(t, err, datatable.ErrSyntheticIdentity)
}

func TestNewKeyed_WriteVisibleOnReload(t *testing.T) {
	ds, err := NewKeyed(testCols, []datatable.Row{
		{ID: "r1", Cells: []datatable.Value{datatable.Text("a"), datatable.Int(1)}},
	})
	require.NoError(t, err)

	require.NoError(t, ds.PersistEdit(context.Background(), "r1", 1, datatable.Int(7)))

	rows, err := ds.LoadAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, "7", rows[0].Cells[1].Formatted)

	// Returned rows are copies; mutating them does not touch the source.
	rows[0].Cells[0] = datatable.Text("mutated")
	again, err := ds.LoadAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, "a", again[0].Cells[0].Formatted)
}

func TestNewKeyed_SchemaValidation(t *testing.T) {
	var se *datatable.SchemaError

	_, err := NewKeyed(nil, nil)
	require.ErrorAs(t, err, &se)

	// Cell count must match the column count.
	_, err = NewKeyed(testCols, []datatable.Row{
		{ID: "r1", Cells: []datatable.Value{datatable.Text("a")}},
	})
	require.ErrorAs(t, err, &se)
	require.ErrorIs(t, err, datatable.ErrInvalidRow)

	// Cell kinds must match the declared column kinds.
	_, err = NewKeyed(testCols, []datatable.Row{
		{ID: "r1", Cells: []datatable.Value{datatable.Text("a"), datatable.Text("not an int")}},
	})
	require.ErrorIs(t, err, datatable.ErrKindMismatch)

	// Nulls are fine in any column.
	_, err = NewKeyed(testCols, []datatable.Row{
		{ID: "r1", Cells: []datatable.Value{datatable.Text("a"), datatable.Null(datatable.KindInt)}},
	})
	require.NoError(t, err)
}

func TestPersistEdit_Errors(t *testing.T) {
	ds, err := NewKeyed(testCols, []datatable.Row{
		{ID: "r1", Cells: []datatable.Value{datatable.Text("a"), datatable.Int(1)}},
	})
	require.NoError(t, err)

	err = ds.PersistEdit(context.Background(), "missing", 0, datatable.Text("x"))
	require.ErrorIs(t, err, datatable.ErrUnknownRow)

	err = ds.PersistEdit(context.Background(), "r1", 5, datatable.Text("x"))
	require.ErrorIs(t, err, datatable.ErrInvalidColumn)
}

func TestWithLatency_RespectsContext(t *testing.T) {
	ds, err := NewKeyed(testCols, []datatable.Row{
		{ID: "r1", Cells: []datatable.Value{datatable.Text("a"), datatable.Int(1)}},
	}, WithLatency(time.Minute))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err = ds.LoadAll(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
