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

package filter

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tablebridge/datatable"
)

var (
	testColumns = []string{"Name", "Price"}
	testRow     = []datatable.Value{
		datatable.Text("Espresso Beans"),
		datatable.DecimalFromFloat(12.50),
	}
)

func TestSubstring(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		{"espresso", true}, // case-insensitive
		{"BEANS", true},
		{"12.5", true}, // matches the formatted price cell
		{"latte", false},
		{"", true}, // empty query passes everything
	}
	for _, tt := range tests {
		f := &Substring{Query: tt.query}
		got, err := f.Evaluate(testRow, testColumns)
		require.NoError(t, err)
		require.Equal(t, tt.want, got, "query %q", tt.query)
	}

	require.Equal(t, `contains "beans"`, (&Substring{Query: "beans"}).Description())
}

func TestColumnSubstring(t *testing.T) {
	f := &ColumnSubstring{Column: "Name", Query: "beans"}
	got, err := f.Evaluate(testRow, testColumns)
	require.NoError(t, err)
	require.True(t, got)

	// The query only applies to the named column.
	f = &ColumnSubstring{Column: "Price", Query: "beans"}
	got, err = f.Evaluate(testRow, testColumns)
	require.NoError(t, err)
	require.False(t, got)

	// Unknown column is an error, not a silent miss.
	f = &ColumnSubstring{Column: "Vintage", Query: "x"}
	_, err = f.Evaluate(testRow, testColumns)
	require.ErrorIs(t, err, datatable.ErrInvalidFilter)
}

func TestParse(t *testing.T) {
	require.Nil(t, Parse(""))
	require.Nil(t, Parse("   "))

	f := Parse("beans")
	require.IsType(t, &Substring{}, f)
	got, err := f.Evaluate(testRow, testColumns)
	require.NoError(t, err)
	require.True(t, got)

	// name:text restricts the term to one column; header casing is
	// irrelevant.
	f = Parse("name:beans")
	require.IsType(t, &ColumnSubstring{}, f)
	got, err = f.Evaluate(testRow, testColumns)
	require.NoError(t, err)
	require.True(t, got)

	f = Parse("price:beans")
	got, err = f.Evaluate(testRow, testColumns)
	require.NoError(t, err)
	require.False(t, got)

	// Multiple terms AND together.
	f = Parse("espresso price:12")
	require.IsType(t, &Composite{}, f)
	got, err = f.Evaluate(testRow, testColumns)
	require.NoError(t, err)
	require.True(t, got)

	f = Parse("espresso price:99")
	got, err = f.Evaluate(testRow, testColumns)
	require.NoError(t, err)
	require.False(t, got)

	// A bare colon falls back to a plain substring term.
	f = Parse(":beans")
	require.IsType(t, &Substring{}, f)
}

func TestColumnSubstring_CaseInsensitiveColumn(t *testing.T) {
	f := &ColumnSubstring{Column: "NAME", Query: "beans"}
	got, err := f.Evaluate(testRow, testColumns)
	require.NoError(t, err)
	require.True(t, got)
}

func TestComposite(t *testing.T) {
	match := &Substring{Query: "beans"}
	miss := &Substring{Query: "latte"}

	and := &Composite{Filters: []Filter{match, miss}, Logic: LogicAND}
	got, err := and.Evaluate(testRow, testColumns)
	require.NoError(t, err)
	require.False(t, got)

	or := &Composite{Filters: []Filter{match, miss}, Logic: LogicOR}
	got, err = or.Evaluate(testRow, testColumns)
	require.NoError(t, err)
	require.True(t, got)

	empty := &Composite{}
	got, err = empty.Evaluate(testRow, testColumns)
	require.NoError(t, err)
	require.True(t, got)

	bad := &Composite{Filters: []Filter{match}, Logic: LogicOp(99)}
	_, err = bad.Evaluate(testRow, testColumns)
	require.ErrorIs(t, err, datatable.ErrInvalidFilter)

	require.Equal(t,
		`(contains "beans" OR contains "latte")`,
		or.Description())
}
