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

// Package datatable bridges asynchronous tabular data sources to UI table
// widgets. It owns the row/value model, the Dataset contract and the
// TableStore, so per-toolkit delegates stay free of fetch, cache, sort and
// edit logic.
package datatable

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Kind represents the declared type of a column.
type Kind int

const (
	// KindText represents string data.
	KindText Kind = iota
	// KindInt represents integer data (any size).
	KindInt
	// KindDecimal represents fixed-precision numeric data.
	KindDecimal
	// KindBool represents boolean data.
	KindBool
	// KindTimestamp represents timestamp data (date + time).
	KindTimestamp
)

// String returns the string representation of a Kind.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "Text"
	case KindInt:
		return "Int"
	case KindDecimal:
		return "Decimal"
	case KindBool:
		return "Bool"
	case KindTimestamp:
		return "Timestamp"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// Value is a typed container for cell values.
// It holds the raw value, type information, and a pre-formatted string for display.
type Value struct {
	// Raw holds the underlying value. The concrete type depends on Kind:
	// string, int64, decimal.Decimal, bool or time.Time.
	Raw any

	// Kind indicates the declared type of this value.
	Kind Kind

	// IsNull indicates whether this value is null/nil.
	// A null value of any kind is accepted by a column of that kind.
	IsNull bool

	// Formatted is a pre-formatted string representation for display.
	// This improves UI performance by avoiding repeated formatting.
	Formatted string
}

// Text creates a text value.
func Text(s string) Value {
	return Value{Raw: s, Kind: KindText, Formatted: s}
}

// Int creates an integer value.
func Int(i int64) Value {
	return Value{Raw: i, Kind: KindInt, Formatted: strconv.FormatInt(i, 10)}
}

// Decimal creates a decimal value.
func Decimal(d decimal.Decimal) Value {
	return Value{Raw: d, Kind: KindDecimal, Formatted: d.String()}
}

// DecimalFromFloat creates a decimal value from a float64.
func DecimalFromFloat(f float64) Value {
	return Decimal(decimal.NewFromFloat(f))
}

// Bool creates a boolean value.
func Bool(b bool) Value {
	return Value{Raw: b, Kind: KindBool, Formatted: strconv.FormatBool(b)}
}

// Timestamp creates a timestamp value.
func Timestamp(t time.Time) Value {
	return Value{Raw: t, Kind: KindTimestamp, Formatted: t.Format(time.RFC3339)}
}

// Null creates a null value of the specified kind.
func Null(kind Kind) Value {
	return Value{Raw: nil, Kind: kind, IsNull: true, Formatted: ""}
}

// AsText returns the string payload, or "" for non-text or null values.
func (v Value) AsText() string {
	if s, ok := v.Raw.(string); ok {
		return s
	}
	return ""
}

// AsInt returns the integer payload, or 0 for non-integer or null values.
func (v Value) AsInt() int64 {
	if i, ok := v.Raw.(int64); ok {
		return i
	}
	return 0
}

// AsDecimal returns the decimal payload, or zero for non-decimal or null values.
func (v Value) AsDecimal() decimal.Decimal {
	if d, ok := v.Raw.(decimal.Decimal); ok {
		return d
	}
	return decimal.Zero
}

// AsBool returns the boolean payload, or false for non-boolean or null values.
func (v Value) AsBool() bool {
	if b, ok := v.Raw.(bool); ok {
		return b
	}
	return false
}

// AsTime returns the timestamp payload, or the zero time for other values.
func (v Value) AsTime() time.Time {
	if t, ok := v.Raw.(time.Time); ok {
		return t
	}
	return time.Time{}
}

// Compare orders two values of the same kind. Null sorts before any non-null
// value; values of mismatched kinds fall back to comparing their formatted
// representations.
func Compare(a, b Value) int {
	switch {
	case a.IsNull && b.IsNull:
		return 0
	case a.IsNull:
		return -1
	case b.IsNull:
		return 1
	}
	if a.Kind != b.Kind {
		return compareStrings(a.Formatted, b.Formatted)
	}
	switch a.Kind {
	case KindText:
		return compareStrings(a.AsText(), b.AsText())
	case KindInt:
		switch ai, bi := a.AsInt(), b.AsInt(); {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		}
		return 0
	case KindDecimal:
		return a.AsDecimal().Cmp(b.AsDecimal())
	case KindBool:
		switch ab, bb := a.AsBool(), b.AsBool(); {
		case !ab && bb:
			return -1
		case ab && !bb:
			return 1
		}
		return 0
	case KindTimestamp:
		at, bt := a.AsTime(), b.AsTime()
		switch {
		case at.Before(bt):
			return -1
		case at.After(bt):
			return 1
		}
		return 0
	}
	return compareStrings(a.Formatted, b.Formatted)
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Column describes one column of a dataset: its name, declared value kind,
// whether cells may be edited, and its display order index.
type Column struct {
	Name     string
	Kind     Kind
	Editable bool
	// Index is the display order position. It is fixed at dataset
	// construction and changed only by TableStore.ReorderColumns.
	Index int
}

// SortDirection specifies the direction of sorting.
type SortDirection int

const (
	// SortNone indicates no sorting.
	SortNone SortDirection = iota
	// SortAscending indicates ascending sort order.
	SortAscending
	// SortDescending indicates descending sort order.
	SortDescending
)

// String returns the string representation of a SortDirection.
func (sd SortDirection) String() string {
	switch sd {
	case SortNone:
		return "None"
	case SortAscending:
		return "Ascending"
	case SortDescending:
		return "Descending"
	default:
		return fmt.Sprintf("Unknown(%d)", sd)
	}
}

// SortState represents the current sorting configuration.
type SortState struct {
	// Column is the index of the sorted column (-1 if unsorted).
	Column int
	// Direction is the sort direction.
	Direction SortDirection
}

// IsSorted returns true if this state represents an active sort.
func (s SortState) IsSorted() bool {
	return s.Column >= 0 && s.Direction != SortNone
}
