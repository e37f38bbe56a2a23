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

// Package filter provides composable row predicates for the table store.
package filter

import (
	"strconv"
	"strings"

	"tablebridge/datatable"
)

// Filter decides whether a row passes.
type Filter interface {
	// Evaluate returns true if the row passes the filter.
	Evaluate(row []datatable.Value, columnNames []string) (bool, error)

	// Description returns a human-readable description of the filter.
	Description() string
}

// Substring matches rows where any formatted cell contains the query,
// case-insensitively. An empty query passes all rows.
type Substring struct {
	Query string
}

// Evaluate implements the Filter interface.
func (f *Substring) Evaluate(row []datatable.Value, _ []string) (bool, error) {
	if f.Query == "" {
		return true, nil
	}
	q := strings.ToLower(f.Query)
	for _, cell := range row {
		if strings.Contains(strings.ToLower(cell.Formatted), q) {
			return true, nil
		}
	}
	return false, nil
}

// Description implements the Filter interface.
func (f *Substring) Description() string {
	return "contains " + strconv.Quote(f.Query)
}

// ColumnSubstring matches rows where the named column's formatted cell
// contains the query, case-insensitively. The column name itself matches
// case-insensitively, so typed queries need not reproduce header casing.
type ColumnSubstring struct {
	Column string
	Query  string
}

// Evaluate implements the Filter interface.
func (f *ColumnSubstring) Evaluate(row []datatable.Value, columnNames []string) (bool, error) {
	for i, name := range columnNames {
		if !strings.EqualFold(name, f.Column) {
			continue
		}
		if i >= len(row) {
			return false, datatable.ErrInvalidColumn
		}
		return strings.Contains(
			strings.ToLower(row[i].Formatted),
			strings.ToLower(f.Query),
		), nil
	}
	return false, datatable.ErrInvalidFilter
}

// Description implements the Filter interface.
func (f *ColumnSubstring) Description() string {
	return f.Column + " contains " + strconv.Quote(f.Query)
}

// Parse builds a filter from a query string, the syntax of the filter boxes.
// Whitespace-separated terms are combined with AND; a term of the form
// name:text restricts the match to the named column, any other term matches
// any cell. An empty query parses to nil, meaning no filter.
func Parse(query string) Filter {
	terms := strings.Fields(query)
	if len(terms) == 0 {
		return nil
	}
	subs := make([]Filter, len(terms))
	for i, term := range terms {
		if name, text, ok := strings.Cut(term, ":"); ok && name != "" && text != "" {
			subs[i] = &ColumnSubstring{Column: name, Query: text}
			continue
		}
		subs[i] = &Substring{Query: term}
	}
	if len(subs) == 1 {
		return subs[0]
	}
	return &Composite{Filters: subs, Logic: LogicAND}
}
