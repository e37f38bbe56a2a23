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

package teatable

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"tablebridge/adapters/slicetable"
	"tablebridge/datatable"
)

func newTestModel(t *testing.T, opts ...Option) Model {
	t.Helper()
	cols := []datatable.Column{
		{Name: "Name", Kind: datatable.KindText, Editable: true, Index: 0},
		{Name: "Price", Kind: datatable.KindDecimal, Editable: true, Index: 1},
	}
	ds, err := slicetable.NewKeyed(cols, []datatable.Row{
		{ID: "1", Cells: []datatable.Value{datatable.Text("Espresso"), datatable.DecimalFromFloat(2.50)}},
		{ID: "2", Cells: []datatable.Value{datatable.Text("Latte"), datatable.DecimalFromFloat(3.75)}},
	})
	require.NoError(t, err)
	store, err := datatable.NewTableStore(ds)
	require.NoError(t, err)
	return New(store, opts...)
}

// drive runs the model's update loop, executing returned commands until
// none remain, the way the Bubble Tea runtime would.
func drive(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	queue := msgs
	for len(queue) > 0 {
		msg := queue[0]
		queue = queue[1:]
		next, cmd := m.Update(msg)
		m = next.(Model)
		if cmd != nil {
			if out := cmd(); out != nil {
				queue = append(queue, out)
			}
		}
	}
	return m
}

func loaded(t *testing.T, m Model) Model {
	t.Helper()
	cmd := m.Init()
	require.NotNil(t, cmd)
	return drive(t, m, cmd())
}

func key(s string) tea.KeyMsg {
	if len(s) == 1 {
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	}
	panic("unknown key " + s)
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m = drive(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestInitLoadsRows(t *testing.T) {
	m := newTestModel(t)
	require.Contains(t, m.View(), "Loading")

	m = loaded(t, m)
	require.Equal(t, datatable.PhaseReady, m.store.State().Phase)

	view := m.View()
	require.Contains(t, view, "Espresso")
	require.Contains(t, view, "Latte")
	require.Contains(t, m.status, "2 rows")
}

func TestSortKeyTogglesDirection(t *testing.T) {
	m := loaded(t, newTestModel(t))

	// Move the column cursor to Price, sort ascending, then toggle.
	m = drive(t, m, key("right"), key("s"))
	require.Equal(t, datatable.SortState{Column: 1, Direction: datatable.SortAscending}, m.store.Sort())
	require.Contains(t, m.status, "Price")

	m = drive(t, m, key("s"))
	require.Equal(t, datatable.SortDescending, m.store.Sort().Direction)

	m = drive(t, m, key("S"))
	require.False(t, m.store.Sort().IsSorted())
}

func TestEditFlow(t *testing.T) {
	m := loaded(t, newTestModel(t))

	// e on the first row, Name column: the input is primed with the
	// current value.
	m = drive(t, m, key("e"))
	require.Equal(t, modeEdit, m.mode)
	require.Equal(t, "Espresso", m.input.Value())

	// Replace it and commit.
	m.input.SetValue("")
	m = typeText(t, m, "Ristretto")
	m = drive(t, m, key("enter"))

	require.Equal(t, modeBrowse, m.mode)
	require.Equal(t, "saved", m.status)
	row, ok := m.store.RowByID("1")
	require.True(t, ok)
	require.Equal(t, "Ristretto", row.Cells[0].Formatted)
	require.Zero(t, m.store.PendingEditCount())
}

func TestEditRejectsBadInput(t *testing.T) {
	m := loaded(t, newTestModel(t))

	// Price column expects a number.
	m = drive(t, m, key("right"), key("e"))
	require.Equal(t, modeEdit, m.mode)

	m.input.SetValue("")
	m = typeText(t, m, "two fifty")
	m = drive(t, m, key("enter"))

	// Still editing; nothing was buffered or written.
	require.Equal(t, modeEdit, m.mode)
	require.NotEmpty(t, m.status)
	require.Zero(t, m.store.PendingEditCount())
	row, _ := m.store.RowByID("1")
	require.Equal(t, "2.5", row.Cells[1].Formatted)
}

func TestEditEscCancels(t *testing.T) {
	m := loaded(t, newTestModel(t))

	m = drive(t, m, key("e"))
	m = drive(t, m, key("esc"))
	require.Equal(t, modeBrowse, m.mode)
	require.Zero(t, m.store.PendingEditCount())
}

func TestReadOnlyIgnoresEditKey(t *testing.T) {
	m := loaded(t, newTestModel(t, ReadOnly()))

	m = drive(t, m, key("e"))
	require.Equal(t, modeBrowse, m.mode)
}

func TestFilterFlow(t *testing.T) {
	m := loaded(t, newTestModel(t))

	m = drive(t, m, key("/"))
	require.Equal(t, modeFilter, m.mode)

	m = typeText(t, m, "latte")
	m = drive(t, m, key("enter"))

	require.Equal(t, modeBrowse, m.mode)
	require.Equal(t, 1, m.store.VisibleRowCount())
	require.Contains(t, m.status, "1 rows")

	// Submitting an empty query clears the filter.
	m = drive(t, m, key("/"))
	m.input.SetValue("")
	m = drive(t, m, key("enter"))
	require.Equal(t, 2, m.store.VisibleRowCount())
}

func TestFilterColumnTerm(t *testing.T) {
	m := loaded(t, newTestModel(t))

	// name:latte restricts the match to the Name column, ignoring header
	// casing.
	m = drive(t, m, key("/"))
	m = typeText(t, m, "name:latte")
	m = drive(t, m, key("enter"))
	require.Equal(t, 1, m.store.VisibleRowCount())

	// A column term against the wrong column matches nothing.
	m = drive(t, m, key("/"))
	m.input.SetValue("")
	m = typeText(t, m, "price:latte")
	m = drive(t, m, key("enter"))
	require.Equal(t, 0, m.store.VisibleRowCount())

	// Reopening the filter primes the input with the last query.
	m = drive(t, m, key("/"))
	require.Equal(t, "price:latte", m.input.Value())
	m = drive(t, m, key("esc"))
}

func TestFilterMultipleTermsAnd(t *testing.T) {
	m := loaded(t, newTestModel(t))

	m = drive(t, m, key("/"))
	m = typeText(t, m, "latte price:3.75")
	m = drive(t, m, key("enter"))
	require.Equal(t, 1, m.store.VisibleRowCount())

	m = drive(t, m, key("/"))
	m.input.SetValue("")
	m = typeText(t, m, "latte price:2.5")
	m = drive(t, m, key("enter"))
	require.Equal(t, 0, m.store.VisibleRowCount())
}

func TestLoadFailureShowsRetryHint(t *testing.T) {
	m := loaded(t, newTestModel(t))

	next, _ := m.Update(loadFailedMsg{err: datatable.ErrNotReady})
	m = next.(Model)
	require.True(t, strings.Contains(m.status, "r to retry"))
}

func TestSelectedRowID(t *testing.T) {
	m := loaded(t, newTestModel(t))

	id, ok := m.SelectedRowID()
	require.True(t, ok)
	require.Equal(t, datatable.RowID("1"), id)
}
