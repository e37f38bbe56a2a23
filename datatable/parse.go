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
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// timestampLayouts are tried in order when parsing timestamp input.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Parse converts user-entered text into a Value of the given kind. An empty
// string parses to a null value for every kind except text, where it is the
// empty string. Delegates use Parse to turn toolkit edit-widget content into
// candidate values for BeginEdit.
func Parse(kind Kind, s string) (Value, error) {
	if s == "" && kind != KindText {
		return Null(kind), nil
	}
	switch kind {
	case KindText:
		return Text(s), nil
	case KindInt:
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not an integer", ErrKindMismatch, s)
		}
		return Int(i), nil
	case KindDecimal:
		d, err := decimal.NewFromString(s)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not a number", ErrKindMismatch, s)
		}
		return Decimal(d), nil
	case KindBool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not a boolean", ErrKindMismatch, s)
		}
		return Bool(b), nil
	case KindTimestamp:
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return Timestamp(t), nil
			}
		}
		return Value{}, fmt.Errorf("%w: %q is not a timestamp", ErrKindMismatch, s)
	}
	return Value{}, fmt.Errorf("%w: unknown kind %v", ErrKindMismatch, kind)
}
