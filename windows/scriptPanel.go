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
	"fmt"
	"reflect"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"tablebridge/datatable"
)

const scriptTemplate = `package main

import (
	"fmt"
	"table"
)

func main() {
%s
}
`

const defaultScript = `	fmt.Println("columns:", table.Columns)
	for _, row := range table.Rows {
		fmt.Println(row)
	}`

// ShowScriptPanel opens a console running Go snippets against the store's
// visible rows. The snippet sees the view as table.Columns ([]string) and
// table.Rows ([][]string).
func ShowScriptPanel(w fyne.Window, store *datatable.TableStore) {
	codeEditor := widget.NewMultiLineEntry()
	codeEditor.TextStyle = fyne.TextStyle{Monospace: true}
	codeEditor.SetText(defaultScript)

	output := widget.NewMultiLineEntry()
	output.TextStyle = fyne.TextStyle{Monospace: true}
	output.Disable()

	var runButton *widget.Button
	runButton = widget.NewButton("Run", func() {
		code := codeEditor.Text
		if code == "" {
			output.SetText("Error: No code to execute\n")
			return
		}
		runButton.Disable()
		output.SetText("Executing…\n")

		// Snapshot the view on the UI thread, run the snippet off it.
		columns := store.ColumnNames()
		rows := make([][]string, 0, store.VisibleRowCount())
		for _, row := range store.VisibleRows() {
			cells := make([]string, len(row.Cells))
			for i, c := range row.Cells {
				cells[i] = c.Formatted
			}
			rows = append(rows, cells)
		}

		go func() {
			result := runScript(code, columns, rows)
			fyne.Do(func() {
				output.SetText(result)
				runButton.Enable()
			})
		}()
	})

	split := container.NewVSplit(codeEditor, output)
	split.SetOffset(0.55)
	content := container.NewBorder(nil, runButton, nil, nil, split)

	d := dialog.NewCustom("Script console", "Close", content, w)
	d.Resize(fyne.NewSize(700, 500))
	d.Show()
}

// runScript evaluates the snippet with yaegi, capturing its output.
func runScript(code string, columns []string, rows [][]string) string {
	var outputBuffer bytes.Buffer

	i := interp.New(interp.Options{
		Stdout: &outputBuffer,
		Stderr: &outputBuffer,
	})
	if err := i.Use(stdlib.Symbols); err != nil {
		return fmt.Sprintf("Error loading stdlib: %v\n", err)
	}
	if err := i.Use(interp.Exports{
		"table/table": {
			"Columns": reflect.ValueOf(columns),
			"Rows":    reflect.ValueOf(rows),
		},
	}); err != nil {
		return fmt.Sprintf("Error exposing table view: %v\n", err)
	}

	_, execError := i.Eval(fmt.Sprintf(scriptTemplate, code))

	result := outputBuffer.String()
	if execError != nil {
		result += fmt.Sprintf("\nExecution error: %v\n", execError)
	}
	return result
}
