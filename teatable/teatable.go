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

// Package teatable is the terminal delegate: a Bubble Tea model over the
// table store. Loads and commits run as tea commands so the event loop
// never blocks on the network.
package teatable

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tablebridge/datatable"
	"tablebridge/internal/filter"
)

type mode int

const (
	modeBrowse mode = iota
	modeEdit
	modeFilter
)

type rowsLoadedMsg struct{}

type loadFailedMsg struct{ err error }

type editDoneMsg struct {
	id  datatable.RowID
	col int
	err error
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	statusStyle = lipgloss.NewStyle().Faint(true).Padding(0, 1)
	baseStyle   = lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("240"))
)

// Option configures the model.
type Option func(*Model)

// ReadOnly disables the edit keys. The store contract is unchanged; the
// delegate simply omits the edit capability.
func ReadOnly() Option {
	return func(m *Model) { m.readOnly = true }
}

// WithTitle sets the title line.
func WithTitle(title string) Option {
	return func(m *Model) { m.title = title }
}

// Model is a Bubble Tea model rendering the store's visible rows.
type Model struct {
	store *datatable.TableStore

	table table.Model
	input textinput.Model

	mode        mode
	colCursor   int
	editRow     datatable.RowID
	editCol     int
	filterQuery string
	status      string
	title       string
	readOnly    bool
}

// New creates the model. Init triggers the initial load.
func New(store *datatable.TableStore, opts ...Option) Model {
	cols := store.Columns()
	tcols := make([]table.Column, len(cols))
	for i, c := range cols {
		w := len(c.Name) + 4
		if w < 14 {
			w = 14
		}
		tcols[i] = table.Column{Title: c.Name, Width: w}
	}

	t := table.New(
		table.WithColumns(tcols),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true)
	t.SetStyles(styles)

	in := textinput.New()
	in.CharLimit = 256

	m := Model{
		store:  store,
		table:  t,
		input:  in,
		title:  "tablebridge",
		status: "Loading…",
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.refreshCmd()
}

func (m Model) refreshCmd() tea.Cmd {
	store := m.store
	return func() tea.Msg {
		if err := store.Refresh(context.Background()); err != nil {
			return loadFailedMsg{err: err}
		}
		return rowsLoadedMsg{}
	}
}

func (m Model) commitCmd(id datatable.RowID, col int) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		return editDoneMsg{id: id, col: col, err: store.CommitEdit(context.Background(), id, col)}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case rowsLoadedMsg:
		m.syncRows()
		m.status = fmt.Sprintf("%d rows", m.store.VisibleRowCount())
		return m, nil

	case loadFailedMsg:
		m.status = "load failed: " + msg.err.Error() + " (r to retry)"
		m.syncRows()
		return m, nil

	case editDoneMsg:
		if msg.err != nil {
			m.status = "edit failed, pending kept: " + msg.err.Error()
		} else {
			m.status = "saved"
		}
		m.syncRows()
		return m, nil

	case tea.WindowSizeMsg:
		h := msg.Height - 6
		if h < 3 {
			h = 3
		}
		m.table.SetHeight(h)
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeEdit:
			return m.updateEdit(msg)
		case modeFilter:
			return m.updateFilter(msg)
		default:
			return m.updateBrowse(msg)
		}
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.status = "Loading…"
		return m, m.refreshCmd()
	case "left", "h":
		if m.colCursor > 0 {
			m.colCursor--
		}
		m.status = m.columnStatus()
		return m, nil
	case "right", "l":
		if m.colCursor < len(m.store.Columns())-1 {
			m.colCursor++
		}
		m.status = m.columnStatus()
		return m, nil
	case "s":
		m.store.SetSort(m.colCursor)
		m.syncRows()
		m.status = m.columnStatus()
		return m, nil
	case "S":
		m.store.ClearSort()
		m.syncRows()
		m.status = "sort cleared"
		return m, nil
	case "/":
		m.mode = modeFilter
		m.input.Placeholder = "filter (term or column:term)"
		m.input.SetValue(m.filterQuery)
		m.input.Focus()
		return m, textinput.Blink
	case "e":
		if m.readOnly {
			return m, nil
		}
		return m.startEdit()
	case "c":
		if m.readOnly {
			return m, nil
		}
		if row, err := m.store.VisibleRow(m.table.Cursor()); err == nil {
			m.store.CancelEdit(row.ID, m.colCursor)
			m.syncRows()
			m.status = "edit cancelled"
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) startEdit() (tea.Model, tea.Cmd) {
	cols := m.store.Columns()
	if m.colCursor >= len(cols) || !cols[m.colCursor].Editable {
		m.status = "column is read-only"
		return m, nil
	}
	row, err := m.store.VisibleRow(m.table.Cursor())
	if err != nil {
		return m, nil
	}
	current := row.Cells[m.colCursor].Formatted
	if pending, ok := m.store.PendingEdit(row.ID, m.colCursor); ok {
		current = pending.Formatted
	}
	m.mode = modeEdit
	m.editRow = row.ID
	m.editCol = m.colCursor
	m.input.Placeholder = cols[m.colCursor].Name
	m.input.SetValue(current)
	m.input.Focus()
	return m, textinput.Blink
}

func (m Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.store.CancelEdit(m.editRow, m.editCol)
		m.mode = modeBrowse
		m.input.Blur()
		m.status = "edit cancelled"
		return m, nil
	case "enter":
		cols := m.store.Columns()
		value, err := datatable.Parse(cols[m.editCol].Kind, m.input.Value())
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		if err := m.store.BeginEdit(m.editRow, m.editCol, value); err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.mode = modeBrowse
		m.input.Blur()
		m.status = "saving…"
		m.syncRows()
		return m, m.commitCmd(m.editRow, m.editCol)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		m.input.Blur()
		return m, nil
	case "enter":
		query := m.input.Value()
		if f := filter.Parse(query); f == nil {
			m.store.ClearFilter()
		} else {
			m.store.SetFilter(f)
		}
		m.filterQuery = query
		m.mode = modeBrowse
		m.input.Blur()
		m.syncRows()
		m.status = fmt.Sprintf("%d rows", m.store.VisibleRowCount())
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// syncRows rebuilds the widget rows from the store's visible view.
func (m *Model) syncRows() {
	rows := m.store.VisibleRows()
	out := make([]table.Row, len(rows))
	for i, r := range rows {
		cells := make([]string, len(r.Cells))
		for j, c := range r.Cells {
			if pending, ok := m.store.PendingEdit(r.ID, j); ok {
				cells[j] = pending.Formatted + " *"
				continue
			}
			cells[j] = c.Formatted
		}
		out[i] = cells
	}
	m.table.SetRows(out)
}

func (m Model) columnStatus() string {
	cols := m.store.Columns()
	if m.colCursor >= len(cols) {
		return ""
	}
	s := "column: " + cols[m.colCursor].Name
	if st := m.store.Sort(); st.IsSorted() && st.Column == m.colCursor {
		s += " (" + st.Direction.String() + ")"
	}
	return s
}

// SelectedRowID returns the stable identity of the row under the cursor.
// Hosting applications interpret selection; the delegate only passes the
// identity through.
func (m Model) SelectedRowID() (datatable.RowID, bool) {
	row, err := m.store.VisibleRow(m.table.Cursor())
	if err != nil {
		return "", false
	}
	return row.ID, true
}

// View implements tea.Model.
func (m Model) View() string {
	header := titleStyle.Render(m.title)

	var body string
	switch state := m.store.State(); state.Phase {
	case datatable.PhaseReady:
		body = baseStyle.Render(m.table.View())
	case datatable.PhaseFailed:
		body = statusStyle.Render("load failed: " + state.Err.Error())
	default:
		body = statusStyle.Render("Loading…")
	}

	footer := statusStyle.Render(m.status)
	if m.mode != modeBrowse {
		footer = m.input.View()
	}
	help := statusStyle.Render("r refresh · s sort · / filter · e edit · c cancel edit · q quit")
	return header + "\n" + body + "\n" + footer + "\n" + help + "\n"
}
