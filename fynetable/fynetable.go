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

// Package fynetable is the retained-mode GUI delegate: it translates the
// table store into a Fyne widget.Table. The delegate holds no row state of
// its own; every cell is pulled from the store on redraw.
package fynetable

import (
	"context"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"tablebridge/datatable"
)

// Table wires a TableStore to a widget.Table.
type Table struct {
	store  *datatable.TableStore
	tbl    *widget.Table
	win    fyne.Window
	logger *slog.Logger

	onRowSelected func(datatable.RowID)
}

// New creates the delegate. win hosts edit and error dialogs.
func New(store *datatable.TableStore, win fyne.Window) *Table {
	t := &Table{store: store, win: win, logger: slog.Default()}

	t.tbl = widget.NewTable(t.length, t.createCell, t.updateCell)
	t.tbl.ShowHeaderRow = true
	t.tbl.CreateHeader = func() fyne.CanvasObject {
		return widget.NewButton("", nil)
	}
	t.tbl.UpdateHeader = t.updateHeader
	t.tbl.OnSelected = t.selected

	for i := range store.Columns() {
		t.tbl.SetColumnWidth(i, 140)
	}
	return t
}

// SetLogger replaces the delegate's logger.
func (t *Table) SetLogger(l *slog.Logger) {
	if l != nil {
		t.logger = l
	}
}

// Widget returns the underlying Fyne table for layout.
func (t *Table) Widget() *widget.Table {
	return t.tbl
}

// SetOnRowSelected registers a callback receiving the stable identity of
// the selected row. The delegate does not interpret selection semantics.
func (t *Table) SetOnRowSelected(fn func(datatable.RowID)) {
	t.onRowSelected = fn
}

// Reload triggers an asynchronous refresh and re-renders once it settles.
// The render path is never blocked on the fetch.
func (t *Table) Reload() {
	go func() {
		if err := t.store.Refresh(context.Background()); err != nil {
			t.logger.Warn("reload failed", "err", err)
		}
		fyne.Do(func() {
			t.tbl.Refresh()
		})
	}()
}

func (t *Table) length() (int, int) {
	cols := len(t.store.Columns())
	if t.store.State().Phase != datatable.PhaseReady {
		// One placeholder row while loading, failed or idle.
		return 1, cols
	}
	return t.store.VisibleRowCount(), cols
}

func (t *Table) createCell() fyne.CanvasObject {
	return widget.NewLabel("")
}

func (t *Table) updateCell(id widget.TableCellID, o fyne.CanvasObject) {
	label := o.(*widget.Label)
	label.TextStyle = fyne.TextStyle{}

	switch state := t.store.State(); state.Phase {
	case datatable.PhaseReady:
	case datatable.PhaseFailed:
		if id.Col == 0 {
			label.SetText("Load failed: " + state.Err.Error())
		} else {
			label.SetText("")
		}
		return
	default:
		if id.Col == 0 {
			label.SetText("Loading…")
		} else {
			label.SetText("")
		}
		return
	}

	row, err := t.store.VisibleRow(id.Row)
	if err != nil {
		label.SetText("")
		return
	}
	if pending, ok := t.store.PendingEdit(row.ID, id.Col); ok {
		// Pending value rendered distinctly until the commit settles.
		label.TextStyle = fyne.TextStyle{Italic: true}
		label.SetText(pending.Formatted + " *")
		return
	}
	cell, err := t.store.CellAt(id.Row, id.Col)
	if err != nil {
		label.SetText("")
		return
	}
	label.SetText(cell.Formatted)
}

func (t *Table) updateHeader(id widget.TableCellID, o fyne.CanvasObject) {
	btn := o.(*widget.Button)
	cols := t.store.Columns()
	if id.Col < 0 || id.Col >= len(cols) {
		btn.SetText("")
		return
	}
	title := cols[id.Col].Name
	if s := t.store.Sort(); s.IsSorted() && s.Column == id.Col {
		if s.Direction == datatable.SortDescending {
			title += " ↓"
		} else {
			title += " ↑"
		}
	}
	btn.SetText(title)
	col := id.Col
	btn.OnTapped = func() {
		t.store.SetSort(col)
		t.tbl.Refresh()
	}
}

func (t *Table) selected(id widget.TableCellID) {
	defer t.tbl.UnselectAll()
	if t.store.State().Phase != datatable.PhaseReady {
		return
	}
	row, err := t.store.VisibleRow(id.Row)
	if err != nil {
		return
	}
	if t.onRowSelected != nil {
		t.onRowSelected(row.ID)
	}

	cols := t.store.Columns()
	if id.Col < 0 || id.Col >= len(cols) || !cols[id.Col].Editable {
		return
	}
	t.editCell(row, cols[id.Col], id.Col)
}

// editCell opens the edit dialog for one cell and drives the store's edit
// cycle. The commit runs off the UI thread; the pending value stays visible
// until it settles.
func (t *Table) editCell(row datatable.Row, col datatable.Column, colIdx int) {
	current := row.Cells[colIdx].Formatted
	if pending, ok := t.store.PendingEdit(row.ID, colIdx); ok {
		current = pending.Formatted
	}
	entry := widget.NewEntry()
	entry.SetText(current)

	items := []*widget.FormItem{widget.NewFormItem(col.Name, entry)}
	dialog.ShowForm("Edit "+col.Name, "Save", "Cancel", items, func(ok bool) {
		if !ok {
			t.store.CancelEdit(row.ID, colIdx)
			return
		}
		value, err := datatable.Parse(col.Kind, entry.Text)
		if err != nil {
			dialog.ShowError(err, t.win)
			return
		}
		if err := t.store.BeginEdit(row.ID, colIdx, value); err != nil {
			dialog.ShowError(err, t.win)
			return
		}
		t.tbl.Refresh()
		go t.commit(row.ID, colIdx)
	}, t.win)
}

func (t *Table) commit(id datatable.RowID, col int) {
	err := t.store.CommitEdit(context.Background(), id, col)
	fyne.Do(func() {
		if err != nil {
			t.logger.Warn("edit commit failed", "row", id, "col", col, "err", err)
			dialog.ShowError(err, t.win)
		}
		t.tbl.Refresh()
	})
}
