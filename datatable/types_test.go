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

package datatable

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestValueConstructors(t *testing.T) {
	v := Text("hello")
	require.Equal(t, KindText, v.Kind)
	require.Equal(t, "hello", v.Formatted)
	require.Equal(t, "hello", v.AsText())

	v = Int(-42)
	require.Equal(t, "-42", v.Formatted)
	require.Equal(t, int64(-42), v.AsInt())

	v = DecimalFromFloat(19.95)
	require.Equal(t, "19.95", v.Formatted)
	require.True(t, v.AsDecimal().Equal(decimal.NewFromFloat(19.95)))

	v = Bool(true)
	require.Equal(t, "true", v.Formatted)
	require.True(t, v.AsBool())

	ts := time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)
	v = Timestamp(ts)
	require.Equal(t, "2024-06-01T12:30:00Z", v.Formatted)
	require.True(t, v.AsTime().Equal(ts))

	v = Null(KindDecimal)
	require.True(t, v.IsNull)
	require.Equal(t, KindDecimal, v.Kind)
	require.Empty(t, v.Formatted)
	require.True(t, v.AsDecimal().IsZero())
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want int
	}{
		{"text less", Text("apple"), Text("banana"), -1},
		{"text equal", Text("pear"), Text("pear"), 0},
		{"int", Int(2), Int(10), -1},
		{"decimal", DecimalFromFloat(0.75), DecimalFromFloat(1.5), -1},
		{"decimal equal scale differs", Decimal(decimal.RequireFromString("1.50")), DecimalFromFloat(1.5), 0},
		{"bool false before true", Bool(false), Bool(true), -1},
		{"timestamp", Timestamp(time.Unix(100, 0)), Timestamp(time.Unix(200, 0)), -1},
		{"null before value", Null(KindInt), Int(0), -1},
		{"value after null", Int(0), Null(KindInt), 1},
		{"null equal", Null(KindText), Null(KindText), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Compare(tt.a, tt.b))
			require.Equal(t, -tt.want, Compare(tt.b, tt.a))
		})
	}
}

func TestParse(t *testing.T) {
	v, err := Parse(KindText, "plain")
	require.NoError(t, err)
	require.Equal(t, Text("plain"), v)

	v, err = Parse(KindInt, "123")
	require.NoError(t, err)
	require.Equal(t, int64(123), v.Raw)

	_, err = Parse(KindInt, "12.5")
	require.ErrorIs(t, err, ErrKindMismatch)

	v, err = Parse(KindDecimal, "2.00")
	require.NoError(t, err)
	require.True(t, v.AsDecimal().Equal(decimal.NewFromInt(2)))

	_, err = Parse(KindDecimal, "two")
	require.ErrorIs(t, err, ErrKindMismatch)

	v, err = Parse(KindBool, "true")
	require.NoError(t, err)
	require.Equal(t, true, v.Raw)

	v, err = Parse(KindTimestamp, "2024-06-01 12:30:00")
	require.NoError(t, err)
	require.Equal(t, 2024, v.AsTime().Year())

	v, err = Parse(KindTimestamp, "2024-06-01")
	require.NoError(t, err)
	require.False(t, v.IsNull)

	_, err = Parse(KindTimestamp, "yesterday")
	require.ErrorIs(t, err, ErrKindMismatch)

	// Empty input is null for every kind except text.
	v, err = Parse(KindInt, "")
	require.NoError(t, err)
	require.True(t, v.IsNull)

	v, err = Parse(KindText, "")
	require.NoError(t, err)
	require.False(t, v.IsNull)
}
