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
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"tablebridge/datatable"
)

// ExportFormat represents the supported export formats.
type ExportFormat int

const (
	FormatCSV ExportFormat = iota
	FormatJSON
)

// ExportVisibleCSV writes the store's visible rows (current sort and filter
// applied) as CSV.
func ExportVisibleCSV(store *datatable.TableStore, w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(store.ColumnNames()); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range store.VisibleRows() {
		record := make([]string, len(row.Cells))
		for i, cell := range row.Cells {
			record[i] = cell.Formatted
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// ExportVisibleJSON writes the store's visible rows as an array of objects
// keyed by column name.
func ExportVisibleJSON(store *datatable.TableStore, w io.Writer) error {
	names := store.ColumnNames()
	out := make([]map[string]any, 0, store.VisibleRowCount())
	for _, row := range store.VisibleRows() {
		obj := make(map[string]any, len(names))
		for i, cell := range row.Cells {
			if cell.IsNull {
				obj[names[i]] = nil
			} else {
				obj[names[i]] = cell.Formatted
			}
		}
		out = append(out, obj)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}

// ShowExportDialog asks for a format and destination and writes the export.
func ShowExportDialog(w fyne.Window, store *datatable.TableStore) {
	formats := []string{"CSV", "JSON"}
	selected := FormatCSV

	sel := widget.NewSelect(formats, func(s string) {
		if s == "JSON" {
			selected = FormatJSON
		} else {
			selected = FormatCSV
		}
	})
	sel.SetSelectedIndex(0)

	items := []*widget.FormItem{widget.NewFormItem("Format", sel)}
	dialog.ShowForm("Export visible rows", "Export", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		saveDialog := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if writer == nil {
				// User cancelled
				return
			}
			defer writer.Close()

			switch selected {
			case FormatJSON:
				err = ExportVisibleJSON(store, writer)
			default:
				err = ExportVisibleCSV(store, writer)
			}
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			dialog.ShowInformation("Export", "Export completed", w)
		}, w)
		saveDialog.Show()
	}, w)
}
