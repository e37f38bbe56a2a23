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

// Package giutable is the immediate-mode delegate: every frame it rebuilds
// a giu table from the store's synchronous view. Loads and commits are
// scheduled on goroutines and the frame shows Loading/pending placeholders
// until they settle; the build path never blocks.
package giutable

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	g "github.com/AllenDang/giu"

	"tablebridge/datatable"
)

// Delegate renders a TableStore with giu. The only state it holds is what
// the frame loop needs to address the cell being edited.
type Delegate struct {
	store  *datatable.TableStore
	logger *slog.Logger

	mu      sync.Mutex
	editRow datatable.RowID
	editCol int
	editBuf string
	notice  string
}

// New creates the delegate.
func New(store *datatable.TableStore) *Delegate {
	return &Delegate{store: store, logger: slog.Default(), editCol: -1}
}

// SetLogger replaces the delegate's logger.
func (d *Delegate) SetLogger(l *slog.Logger) {
	if l != nil {
		d.logger = l
	}
}

// Refresh schedules an asynchronous load and requests a redraw when it
// settles.
func (d *Delegate) Refresh() {
	go func() {
		if err := d.store.Refresh(context.Background()); err != nil {
			d.logger.Warn("refresh failed", "err", err)
		}
		g.Update()
	}()
}

// Build assembles the frame's widgets. Call it from the giu render loop.
func (d *Delegate) Build() g.Widget {
	d.mu.Lock()
	notice := d.notice
	d.mu.Unlock()

	toolbar := g.Row(
		g.Button("Refresh").OnClick(d.Refresh),
		g.Label(d.statusText()),
		g.Label(notice),
	)

	state := d.store.State()
	switch state.Phase {
	case datatable.PhaseReady:
		return g.Layout{toolbar, d.sortRow(), d.buildTable()}
	case datatable.PhaseFailed:
		return g.Layout{toolbar, g.Label("Load failed: " + state.Err.Error())}
	default:
		return g.Layout{toolbar, g.Label("Loading…")}
	}
}

func (d *Delegate) statusText() string {
	switch state := d.store.State(); state.Phase {
	case datatable.PhaseReady:
		s := ""
		if st := d.store.Sort(); st.IsSorted() {
			cols := d.store.Columns()
			s = " · sorted by " + cols[st.Column].Name
			if st.Direction == datatable.SortDescending {
				s += " desc"
			}
		}
		if n := d.store.PendingEditCount(); n > 0 {
			s += " · pending edits"
		}
		return strconv.Itoa(d.store.VisibleRowCount()) + " rows" + s
	case datatable.PhaseFailed:
		return "failed"
	case datatable.PhaseLoading:
		return "loading"
	default:
		return "idle"
	}
}

// sortRow renders one sort button per column.
func (d *Delegate) sortRow() g.Widget {
	cols := d.store.Columns()
	buttons := make([]g.Widget, len(cols))
	sortSt := d.store.Sort()
	for i, c := range cols {
		label := c.Name
		if sortSt.IsSorted() && sortSt.Column == i {
			if sortSt.Direction == datatable.SortDescending {
				label += " v"
			} else {
				label += " ^"
			}
		}
		col := i
		buttons[i] = g.Button(label).OnClick(func() {
			d.store.SetSort(col)
		})
	}
	return g.Row(buttons...)
}

func (d *Delegate) buildTable() g.Widget {
	cols := d.store.Columns()
	headers := make([]*g.TableColumnWidget, len(cols))
	for i, c := range cols {
		headers[i] = g.TableColumn(c.Name)
	}

	visible := d.store.VisibleRows()
	rows := make([]*g.TableRowWidget, len(visible))
	for i, row := range visible {
		cells := make([]g.Widget, len(row.Cells))
		for j := range row.Cells {
			cells[j] = d.cellWidget(row, j, cols[j])
		}
		rows[i] = g.TableRow(cells...)
	}
	return g.Table().Columns(headers...).Rows(rows...)
}

func (d *Delegate) cellWidget(row datatable.Row, col int, desc datatable.Column) g.Widget {
	d.mu.Lock()
	editing := d.editCol == col && d.editRow == row.ID
	d.mu.Unlock()

	if editing {
		return g.Row(
			g.InputText(&d.editBuf).Size(120),
			g.Button("OK##"+string(row.ID)+desc.Name).OnClick(func() {
				d.commitEdit(row.ID, col, desc.Kind)
			}),
			g.Button("X##"+string(row.ID)+desc.Name).OnClick(func() {
				d.cancelEdit(row.ID, col)
			}),
		)
	}

	current := row.Cells[col].Formatted
	text := current
	if pending, ok := d.store.PendingEdit(row.ID, col); ok {
		current = pending.Formatted
		text = current + " *"
	}
	if text == "" {
		text = " "
	}
	id := text + "##" + string(row.ID) + strconv.Itoa(col)
	sel := g.Selectable(id)
	if desc.Editable {
		rowID := row.ID
		sel.OnClick(func() {
			d.startEdit(rowID, col, current)
		})
	}
	return sel
}

func (d *Delegate) startEdit(id datatable.RowID, col int, current string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.editRow = id
	d.editCol = col
	d.editBuf = current
	d.notice = ""
}

func (d *Delegate) cancelEdit(id datatable.RowID, col int) {
	d.store.CancelEdit(id, col)
	d.mu.Lock()
	d.editCol = -1
	d.mu.Unlock()
}

// commitEdit validates the buffer, records the pending edit and schedules
// the async commit. The frame keeps rendering the pending value until the
// remote write settles.
func (d *Delegate) commitEdit(id datatable.RowID, col int, kind datatable.Kind) {
	d.mu.Lock()
	text := d.editBuf
	d.mu.Unlock()

	value, err := datatable.Parse(kind, text)
	if err != nil {
		d.setNotice(err.Error())
		return
	}
	if err := d.store.BeginEdit(id, col, value); err != nil {
		d.setNotice(err.Error())
		return
	}
	d.mu.Lock()
	d.editCol = -1
	d.mu.Unlock()

	go func() {
		if err := d.store.CommitEdit(context.Background(), id, col); err != nil {
			d.logger.Warn("edit commit failed", "row", id, "col", col, "err", err)
			d.setNotice("edit failed, pending kept: " + err.Error())
		} else {
			d.setNotice("")
		}
		g.Update()
	}()
}

func (d *Delegate) setNotice(s string) {
	d.mu.Lock()
	d.notice = s
	d.mu.Unlock()
}
