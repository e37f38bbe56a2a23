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

// Package slicetable provides a Dataset backed by in-memory Go slices.
// It acts as the "remote" source in demos and tests.
package slicetable

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"tablebridge/datatable"
)

// Table is an in-memory dataset. Writes update the backing slices, so a
// later LoadAll observes committed edits like a real remote source would.
type Table struct {
	cols      []datatable.Column
	synthetic bool
	latency   time.Duration

	mu   sync.RWMutex
	rows []datatable.Row
}

// Option configures a Table.
type Option func(*Table)

// WithLatency adds an artificial delay to LoadAll and PersistEdit, useful
// for demonstrating the Loading state in UI demos.
func WithLatency(d time.Duration) Option {
	return func(t *Table) { t.latency = d }
}

// New creates a dataset from positional records. Row identities are
// synthesized, so the dataset is readable but rejects writes: a synthetic
// identity cannot address a remote record.
func New(cols []datatable.Column, records [][]datatable.Value, opts ...Option) (*Table, error) {
	rows := make([]datatable.Row, len(records))
	for i, rec := range records {
		rows[i] = datatable.Row{ID: datatable.RowID(uuid.NewString()), Cells: rec}
	}
	t, err := newTable(cols, rows, opts...)
	if err != nil {
		return nil, err
	}
	t.synthetic = true
	return t, nil
}

// NewKeyed creates a dataset from rows that carry their own stable
// identities. Such a dataset accepts single-cell writes.
func NewKeyed(cols []datatable.Column, rows []datatable.Row, opts ...Option) (*Table, error) {
	return newTable(cols, rows, opts...)
}

func newTable(cols []datatable.Column, rows []datatable.Row, opts ...Option) (*Table, error) {
	if len(cols) == 0 {
		return nil, &datatable.SchemaError{Cause: datatable.ErrInvalidColumn}
	}
	for _, r := range rows {
		if len(r.Cells) != len(cols) {
			return nil, &datatable.SchemaError{Cause: datatable.ErrInvalidRow}
		}
		for i, v := range r.Cells {
			if !v.IsNull && v.Kind != cols[i].Kind {
				return nil, &datatable.SchemaError{Cause: datatable.ErrKindMismatch}
			}
		}
	}
	t := &Table{
		cols: append([]datatable.Column(nil), cols...),
		rows: rows,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Columns implements datatable.Dataset.
func (t *Table) Columns() []datatable.Column {
	return append([]datatable.Column(nil), t.cols...)
}

// LoadAll implements datatable.Dataset.
func (t *Table) LoadAll(ctx context.Context) ([]datatable.Row, error) {
	if err := t.sleep(ctx); err != nil {
		return nil, &datatable.FetchError{Cause: err}
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]datatable.Row, len(t.rows))
	for i, r := range t.rows {
		out[i] = datatable.Row{ID: r.ID, Cells: append([]datatable.Value(nil), r.Cells...)}
	}
	return out, nil
}

// PersistEdit implements datatable.Dataset.
func (t *Table) PersistEdit(ctx context.Context, id datatable.RowID, col int, value datatable.Value) error {
	if t.synthetic {
		return &datatable.PersistError{Cause: datatable.ErrSyntheticIdentity}
	}
	if col < 0 || col >= len(t.cols) {
		return &datatable.PersistError{Cause: datatable.ErrInvalidColumn}
	}
	if err := t.sleep(ctx); err != nil {
		return &datatable.PersistError{Cause: err}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.rows {
		if t.rows[i].ID == id {
			t.rows[i].Cells[col] = value
			return nil
		}
	}
	return &datatable.PersistError{Cause: datatable.ErrUnknownRow}
}

func (t *Table) sleep(ctx context.Context) error {
	if t.latency <= 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(t.latency):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
