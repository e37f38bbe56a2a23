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

package datatable

import "context"

// RowID is an opaque stable identity for a row. It remains valid across
// reloads and sorts, so edits address the same remote record regardless of
// display order.
type RowID string

// Row is an ordered sequence of values aligned positionally to the dataset's
// columns, plus its stable identity. Rows are owned by the TableStore once
// loaded; delegates receive rows whose cell slices are never mutated in
// place after publication.
type Row struct {
	ID    RowID
	Cells []Value
}

// Dataset provides column metadata and asynchronous access to tabular data.
// Implementations must be safe for concurrent use.
//
// Construction of a Dataset is where the schema is resolved; constructors
// return *SchemaError when the underlying handle exposes no usable field
// list. The column list is fixed for the dataset's lifetime.
type Dataset interface {
	// Columns returns the ordered column descriptors.
	Columns() []Column

	// LoadAll executes one query against the underlying source and returns
	// the complete ordered row set. It never returns a partial set: the
	// result is either every row or a *FetchError.
	LoadAll(ctx context.Context) ([]Row, error)

	// PersistEdit forwards a single-cell update to the underlying source,
	// keyed by stable row identity. Datasets that synthesized their row
	// identities must reject writes with a *PersistError wrapping
	// ErrSyntheticIdentity rather than misapply them; read-only datasets
	// reject writes with a *PersistError wrapping ErrReadOnly.
	PersistEdit(ctx context.Context, id RowID, col int, value Value) error
}
