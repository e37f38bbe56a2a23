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
	"fmt"
	"strings"

	"tablebridge/datatable"
)

// LogicOp combines the verdicts of a Composite's sub-filters.
type LogicOp int

const (
	// LogicAND requires every sub-filter to pass.
	LogicAND LogicOp = iota
	// LogicOR requires at least one sub-filter to pass.
	LogicOR
)

// String returns the string representation of a LogicOp.
func (op LogicOp) String() string {
	switch op {
	case LogicAND:
		return "AND"
	case LogicOR:
		return "OR"
	default:
		return fmt.Sprintf("unknown(%d)", op)
	}
}

// Composite combines sub-filters under one logical operator. The zero
// value (no sub-filters, LogicAND) passes every row.
type Composite struct {
	Filters []Filter
	Logic   LogicOp
}

// Evaluate implements the Filter interface. It short-circuits on the first
// decisive sub-verdict: a failed term under AND, a passed term under OR.
func (f *Composite) Evaluate(row []datatable.Value, columnNames []string) (bool, error) {
	var unanimous bool
	switch f.Logic {
	case LogicAND:
		unanimous = true
	case LogicOR:
		unanimous = false
	default:
		return false, fmt.Errorf("%w: logic operator %d", datatable.ErrInvalidFilter, f.Logic)
	}
	for _, sub := range f.Filters {
		pass, err := sub.Evaluate(row, columnNames)
		if err != nil {
			return false, err
		}
		if pass != unanimous {
			return pass, nil
		}
	}
	return unanimous, nil
}

// Description implements the Filter interface.
func (f *Composite) Description() string {
	if len(f.Filters) == 0 {
		return "empty filter"
	}
	parts := make([]string, len(f.Filters))
	for i, sub := range f.Filters {
		parts[i] = sub.Description()
	}
	return "(" + strings.Join(parts, " "+f.Logic.String()+" ") + ")"
}
