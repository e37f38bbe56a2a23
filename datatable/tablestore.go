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

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"
)

// LoadPhase is the fetch-lifecycle phase of a TableStore.
type LoadPhase int

const (
	// PhaseIdle means no load has been requested yet.
	PhaseIdle LoadPhase = iota
	// PhaseLoading means a load is in flight.
	PhaseLoading
	// PhaseReady means the last load completed and rows are available.
	PhaseReady
	// PhaseFailed means the last load failed.
	PhaseFailed
)

// String returns the string representation of a LoadPhase.
func (p LoadPhase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseLoading:
		return "Loading"
	case PhaseReady:
		return "Ready"
	case PhaseFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// LoadState is the single authoritative fetch-lifecycle value of a
// TableStore. Err is non-nil only in PhaseFailed.
type LoadState struct {
	Phase LoadPhase
	Err   error
}

// EditKey addresses a pending edit by row identity and column index.
type EditKey struct {
	Row RowID
	Col int
}

// Edit is a pending cell edit, present only between BeginEdit and
// CommitEdit/CancelEdit.
type Edit struct {
	Key EditKey
	Old Value
	New Value

	// seq distinguishes successive edits of the same cell, so a commit
	// settling late cannot drop an edit begun after it started.
	seq uint64
}

// RowFilter decides whether a row is visible. It is satisfied by the
// internal filter package; a nil filter passes all rows.
type RowFilter interface {
	Evaluate(row []Value, columnNames []string) (bool, error)
	Description() string
}

// TableStore is the shared, framework-agnostic owner of loaded rows, sort,
// filter and edit state. All mutation passes through its methods; UI
// delegates hold no row state of their own.
//
// Refresh and CommitEdit suspend on the dataset; every other method is
// synchronous and cheap enough to call on each redraw.
type TableStore struct {
	ds     Dataset
	logger *slog.Logger

	mu      sync.RWMutex
	phase   LoadPhase
	loadErr error
	loadGen uint64
	editSeq uint64
	cols    []Column
	names   []string
	rows    []Row
	byID    map[RowID]int
	order   []int // visible positions -> indices into rows
	sortSt  SortState
	filter  RowFilter
	edits   map[EditKey]Edit

	flight singleflight.Group
}

// NewTableStore creates a store over the given dataset. It returns
// ErrNoDataset for a nil dataset and *SchemaError when the dataset exposes
// no columns.
func NewTableStore(ds Dataset) (*TableStore, error) {
	if ds == nil {
		return nil, ErrNoDataset
	}
	cols := ds.Columns()
	if len(cols) == 0 {
		return nil, &SchemaError{Cause: errors.New("dataset has no columns")}
	}
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return &TableStore{
		ds:     ds,
		logger: slog.Default(),
		phase:  PhaseIdle,
		cols:   append([]Column(nil), cols...),
		names:  names,
		byID:   make(map[RowID]int),
		sortSt: SortState{Column: -1},
		edits:  make(map[EditKey]Edit),
	}, nil
}

// SetLogger replaces the store's logger. A nil logger restores the default.
func (s *TableStore) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.Default()
	}
	s.mu.Lock()
	s.logger = l
	s.mu.Unlock()
}

// Refresh loads the full row set from the dataset, replacing any previously
// loaded rows wholesale. Concurrent calls are coalesced: while a load is in
// flight every caller awaits that load's outcome instead of starting a
// second fetch.
func (s *TableStore) Refresh(ctx context.Context) error {
	gen := s.beginLoad()

	v, err, shared := s.flight.Do("refresh", func() (interface{}, error) {
		return s.ds.LoadAll(ctx)
	})
	if shared {
		s.logger.Debug("refresh coalesced with in-flight load")
	}
	if err != nil {
		var fe *FetchError
		if !errors.As(err, &fe) {
			err = &FetchError{Cause: err}
		}
		s.finishLoad(gen, nil, err)
		return err
	}
	s.finishLoad(gen, v.([]Row), nil)
	return nil
}

// beginLoad marks a new load as the current one and returns its generation.
func (s *TableStore) beginLoad() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadGen++
	s.phase = PhaseLoading
	s.loadErr = nil
	return s.loadGen
}

// finishLoad installs a load's outcome, atomically replacing the row set and
// derived state. A completion that is no longer the newest requested load is
// discarded: the state stays Loading until that newer load settles.
func (s *TableStore) finishLoad(gen uint64, rows []Row, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.loadGen {
		s.logger.Debug("stale load discarded", "gen", gen, "current", s.loadGen)
		return
	}
	if err != nil {
		s.phase = PhaseFailed
		s.loadErr = err
		s.rows = nil
		s.byID = make(map[RowID]int)
		s.order = nil
		return
	}

	s.rows = rows
	s.byID = make(map[RowID]int, len(rows))
	for i, r := range rows {
		s.byID[r.ID] = i
	}
	// Pending edits for rows that no longer exist cannot be committed.
	for k := range s.edits {
		if _, ok := s.byID[k.Row]; !ok {
			delete(s.edits, k)
		}
	}
	s.phase = PhaseReady
	s.loadErr = nil
	s.recomputeOrderLocked()
	s.logger.Debug("rows loaded", "count", len(rows))
}

// State returns the current load state.
func (s *TableStore) State() LoadState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return LoadState{Phase: s.phase, Err: s.loadErr}
}

// Columns returns a copy of the ordered column descriptors.
func (s *TableStore) Columns() []Column {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Column(nil), s.cols...)
}

// ColumnNames returns the column names in display order.
func (s *TableStore) ColumnNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.names...)
}

// VisibleRows returns the loaded rows in display order, after the active
// filter and sort. It returns an empty sequence unless the store is Ready.
// A caller always observes a complete row set from one load, never a
// partial overwrite.
func (s *TableStore) VisibleRows() []Row {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.phase != PhaseReady {
		return nil
	}
	out := make([]Row, len(s.order))
	for i, idx := range s.order {
		out[i] = s.rows[idx]
	}
	return out
}

// VisibleRowCount returns the number of rows in the current visible view.
func (s *TableStore) VisibleRowCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.phase != PhaseReady {
		return 0
	}
	return len(s.order)
}

// VisibleRow returns the row at the given visible position.
func (s *TableStore) VisibleRow(i int) (Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.phase != PhaseReady || i < 0 || i >= len(s.order) {
		return Row{}, ErrInvalidRow
	}
	return s.rows[s.order[i]], nil
}

// CellAt returns the value at the given visible position and column.
func (s *TableStore) CellAt(i, col int) (Value, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.phase != PhaseReady || i < 0 || i >= len(s.order) {
		return Value{}, ErrInvalidRow
	}
	if col < 0 || col >= len(s.cols) {
		return Value{}, ErrInvalidColumn
	}
	return s.rows[s.order[i]].Cells[col], nil
}

// RowByID returns the loaded row with the given identity.
func (s *TableStore) RowByID(id RowID) (Row, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byID[id]
	if !ok {
		return Row{}, false
	}
	return s.rows[idx], true
}

// SetSort sorts by the given column. Selecting the sorted column again
// toggles the direction; selecting another column replaces the sort,
// ascending. Sorting is a local reordering of loaded rows: it is a no-op
// unless the store is Ready and never triggers a fetch.
func (s *TableStore) SetSort(col int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseReady || col < 0 || col >= len(s.cols) {
		return
	}
	if s.sortSt.Column == col && s.sortSt.Direction == SortAscending {
		s.sortSt.Direction = SortDescending
	} else {
		s.sortSt = SortState{Column: col, Direction: SortAscending}
	}
	s.recomputeOrderLocked()
}

// ClearSort restores the source row order.
func (s *TableStore) ClearSort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sortSt = SortState{Column: -1}
	s.recomputeOrderLocked()
}

// Sort returns the active sort state.
func (s *TableStore) Sort() SortState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortSt
}

// SetFilter restricts the visible rows to those passing f. A nil filter
// clears the restriction. Filtering is local and never triggers a fetch.
func (s *TableStore) SetFilter(f RowFilter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = f
	s.recomputeOrderLocked()
}

// ClearFilter removes the active filter.
func (s *TableStore) ClearFilter() {
	s.SetFilter(nil)
}

// Filter returns the active filter, or nil.
func (s *TableStore) Filter() RowFilter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// recomputeOrderLocked rebuilds the visible order from the loaded rows, the
// active filter and the active sort. Callers hold the write lock.
func (s *TableStore) recomputeOrderLocked() {
	order := make([]int, 0, len(s.rows))
	for i := range s.rows {
		if s.filter != nil {
			ok, err := s.filter.Evaluate(s.rows[i].Cells, s.names)
			if err != nil {
				s.logger.Debug("filter error, row excluded", "row", s.rows[i].ID, "err", err)
				continue
			}
			if !ok {
				continue
			}
		}
		order = append(order, i)
	}
	if s.sortSt.IsSorted() {
		col := s.sortSt.Column
		desc := s.sortSt.Direction == SortDescending
		sort.SliceStable(order, func(a, b int) bool {
			c := Compare(s.rows[order[a]].Cells[col], s.rows[order[b]].Cells[col])
			if desc {
				return c > 0
			}
			return c < 0
		})
	}
	s.order = order
}

// BeginEdit validates a candidate value against the addressed cell and
// records it as the pending edit for that cell, replacing any prior pending
// edit there. The row itself is untouched until CommitEdit succeeds.
func (s *TableStore) BeginEdit(id RowID, col int, candidate Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return &ValidationError{Reason: ErrUnknownRow}
	}
	if col < 0 || col >= len(s.cols) {
		return &ValidationError{Reason: ErrInvalidColumn}
	}
	if !s.cols[col].Editable {
		return &ValidationError{Reason: ErrNotEditable}
	}
	if candidate.Kind != s.cols[col].Kind {
		return &ValidationError{Reason: ErrKindMismatch}
	}
	s.editSeq++
	key := EditKey{Row: id, Col: col}
	s.edits[key] = Edit{Key: key, Old: s.rows[s.byID[id]].Cells[col], New: candidate, seq: s.editSeq}
	return nil
}

// CommitEdit persists the pending edit for the addressed cell. Only after
// the dataset confirms the write is the value applied to the in-memory row
// and the pending entry dropped. On failure the row is unchanged and the
// entry is retained so the caller can retry.
func (s *TableStore) CommitEdit(ctx context.Context, id RowID, col int) error {
	key := EditKey{Row: id, Col: col}

	s.mu.RLock()
	edit, ok := s.edits[key]
	s.mu.RUnlock()
	if !ok {
		return &ValidationError{Reason: ErrNoPendingEdit}
	}

	if err := s.ds.PersistEdit(ctx, id, col, edit.New); err != nil {
		var pe *PersistError
		if !errors.As(err, &pe) {
			err = &PersistError{Cause: err}
		}
		s.logger.Debug("persist failed, edit retained", "row", id, "col", col, "err", err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if idx, found := s.byID[id]; found {
		// Fresh cell slice: published rows are never mutated in place.
		cells := append([]Value(nil), s.rows[idx].Cells...)
		cells[col] = edit.New
		s.rows[idx].Cells = cells
		if s.sortSt.IsSorted() || s.filter != nil {
			s.recomputeOrderLocked()
		}
	}
	// Only the committed edit is consumed. An edit begun for this cell
	// while the persist was in flight stays pending.
	if cur, ok := s.edits[key]; ok && cur.seq == edit.seq {
		delete(s.edits, key)
	}
	return nil
}

// CancelEdit discards the pending edit for the addressed cell, if any.
func (s *TableStore) CancelEdit(id RowID, col int) {
	s.mu.Lock()
	delete(s.edits, EditKey{Row: id, Col: col})
	s.mu.Unlock()
}

// PendingEdit returns the buffered value for the addressed cell, if an edit
// was begun and not yet committed or cancelled.
func (s *TableStore) PendingEdit(id RowID, col int) (Value, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.edits[EditKey{Row: id, Col: col}]
	if !ok {
		return Value{}, false
	}
	return e.New, true
}

// PendingEdits returns all pending edits, in no particular order.
func (s *TableStore) PendingEdits() []Edit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Edit, 0, len(s.edits))
	for _, e := range s.edits {
		out = append(out, e)
	}
	return out
}

// PendingEditCount returns the number of pending edits.
func (s *TableStore) PendingEditCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.edits)
}

// ReorderColumns permutes the display order of columns. perm maps new
// positions to current positions and must be a permutation of the column
// indices. Rows, the sort column and pending edit keys are remapped to the
// new positions.
func (s *TableStore) ReorderColumns(perm []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(perm) != len(s.cols) {
		return ErrInvalidColumn
	}
	seen := make([]bool, len(perm))
	for _, p := range perm {
		if p < 0 || p >= len(perm) || seen[p] {
			return ErrInvalidColumn
		}
		seen[p] = true
	}

	oldToNew := make([]int, len(perm))
	newCols := make([]Column, len(perm))
	newNames := make([]string, len(perm))
	for newPos, oldPos := range perm {
		c := s.cols[oldPos]
		c.Index = newPos
		newCols[newPos] = c
		newNames[newPos] = c.Name
		oldToNew[oldPos] = newPos
	}
	s.cols = newCols
	s.names = newNames

	for i := range s.rows {
		cells := make([]Value, len(perm))
		for newPos, oldPos := range perm {
			cells[newPos] = s.rows[i].Cells[oldPos]
		}
		s.rows[i].Cells = cells
	}

	if s.sortSt.Column >= 0 {
		s.sortSt.Column = oldToNew[s.sortSt.Column]
	}
	if len(s.edits) > 0 {
		remapped := make(map[EditKey]Edit, len(s.edits))
		for k, e := range s.edits {
			k.Col = oldToNew[k.Col]
			e.Key = k
			remapped[k] = e
		}
		s.edits = remapped
	}
	s.recomputeOrderLocked()
	return nil
}
