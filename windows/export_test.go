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
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"tablebridge/adapters/slicetable"
	"tablebridge/datatable"
	"tablebridge/internal/filter"
)

func newExportStore(t *testing.T) *datatable.TableStore {
	t.Helper()
	cols := []datatable.Column{
		{Name: "Name", Kind: datatable.KindText, Index: 0},
		{Name: "Price", Kind: datatable.KindDecimal, Index: 1},
	}
	ds, err := slicetable.NewKeyed(cols, []datatable.Row{
		{ID: "1", Cells: []datatable.Value{datatable.Text("Espresso"), datatable.DecimalFromFloat(2.50)}},
		{ID: "2", Cells: []datatable.Value{datatable.Text("Latte"), datatable.Null(datatable.KindDecimal)}},
	})
	require.NoError(t, err)
	store, err := datatable.NewTableStore(ds)
	require.NoError(t, err)
	require.NoError(t, store.Refresh(context.Background()))
	return store
}

func TestExportVisibleCSV(t *testing.T) {
	store := newExportStore(t)

	var buf bytes.Buffer
	require.NoError(t, ExportVisibleCSV(store, &buf))
	require.Equal(t, "Name,Price\nEspresso,2.5\nLatte,\n", buf.String())
}

func TestExportVisibleCSV_HonorsFilter(t *testing.T) {
	store := newExportStore(t)
	store.SetFilter(&filter.Substring{Query: "latte"})

	var buf bytes.Buffer
	require.NoError(t, ExportVisibleCSV(store, &buf))
	require.Equal(t, "Name,Price\nLatte,\n", buf.String())
}

func TestExportVisibleJSON(t *testing.T) {
	store := newExportStore(t)

	var buf bytes.Buffer
	require.NoError(t, ExportVisibleJSON(store, &buf))

	var out []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out, 2)
	require.Equal(t, "Espresso", out[0]["Name"])
	require.Equal(t, "2.5", out[0]["Price"])
	require.Nil(t, out[1]["Price"], "null cells export as JSON null")
}
