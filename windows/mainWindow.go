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

// Package windows holds the Fyne application layer of the table browser.
package windows

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"tablebridge/datatable"
	"tablebridge/fynetable"
	"tablebridge/internal/filter"
)

// MainWindow hosts the table delegate with a toolbar, filter bar and status
// bar.
type MainWindow struct {
	a         fyne.App
	w         fyne.Window
	store     *datatable.TableStore
	delegate  *fynetable.Table
	statusBar *widget.Label
	filterBox *widget.Entry
}

// CreateMainWindow builds the window around the given store and starts the
// initial load.
func CreateMainWindow(store *datatable.TableStore, title string) *MainWindow {
	var v MainWindow
	v.store = store
	v.NewMainWindow(title)
	return &v
}

// NewMainWindow assembles the window content.
func (t *MainWindow) NewMainWindow(title string) {
	t.a = app.NewWithID("tablebridge.browser")
	t.a.Settings().SetTheme(&CustomTheme{})
	t.w = t.a.NewWindow(title)
	t.w.Resize(fyne.NewSize(1000, 640))

	t.delegate = fynetable.New(t.store, t.w)
	t.delegate.SetOnRowSelected(func(id datatable.RowID) {
		t.SetStatus(fmt.Sprintf("Selected row %s", id))
	})

	t.statusBar = widget.NewLabel("Ready")
	t.statusBar.TextStyle = fyne.TextStyle{Italic: true}

	t.filterBox = widget.NewEntry()
	t.filterBox.SetPlaceHolder("Filter rows… (terms AND together, column:text per column)")
	t.filterBox.OnSubmitted = func(q string) {
		if f := filter.Parse(q); f == nil {
			t.store.ClearFilter()
		} else {
			t.store.SetFilter(f)
		}
		t.delegate.Widget().Refresh()
		t.updateStatus()
	}

	toolbar := widget.NewToolbar(
		widget.NewToolbarAction(theme.ViewRefreshIcon(), func() {
			t.SetStatus("Loading…")
			t.delegate.Reload()
		}),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), func() {
			ShowExportDialog(t.w, t.store)
		}),
		widget.NewToolbarAction(theme.ComputerIcon(), func() {
			ShowScriptPanel(t.w, t.store)
		}),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.CancelIcon(), func() {
			t.store.ClearSort()
			t.filterBox.SetText("")
			t.store.ClearFilter()
			t.delegate.Widget().Refresh()
			t.updateStatus()
		}),
	)

	top := container.NewBorder(nil, nil, nil, nil,
		container.NewVBox(toolbar, t.filterBox))
	content := container.NewBorder(top, t.statusBar, nil, nil, t.delegate.Widget())
	t.w.SetContent(content)

	t.SetStatus("Loading…")
	t.delegate.Reload()
}

// SetStatus updates the status bar text.
func (t *MainWindow) SetStatus(s string) {
	t.statusBar.SetText(s)
}

// updateStatus summarizes the store state the way the status bar shows it.
func (t *MainWindow) updateStatus() {
	switch state := t.store.State(); state.Phase {
	case datatable.PhaseReady:
		statusText := fmt.Sprintf("%d columns x %d rows",
			len(t.store.Columns()), t.store.VisibleRowCount())
		if sortState := t.store.Sort(); sortState.IsSorted() {
			cols := t.store.Columns()
			direction := "↑"
			if sortState.Direction == datatable.SortDescending {
				direction = "↓"
			}
			statusText += fmt.Sprintf(" | Sorted: %s %s", cols[sortState.Column].Name, direction)
		}
		if f := t.store.Filter(); f != nil {
			statusText += " | Filter: " + f.Description()
		}
		if n := t.store.PendingEditCount(); n > 0 {
			statusText += fmt.Sprintf(" | %d pending edit(s)", n)
		}
		t.SetStatus(statusText)
	case datatable.PhaseFailed:
		t.SetStatus("Load failed: " + state.Err.Error())
	case datatable.PhaseLoading:
		t.SetStatus("Loading…")
	default:
		t.SetStatus("Ready")
	}
}

// Window returns the underlying Fyne window.
func (t *MainWindow) Window() fyne.Window {
	return t.w
}

// ShowAndRun shows the window and runs the application loop.
func (t *MainWindow) ShowAndRun() {
	t.w.ShowAndRun()
}
