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

// Package sqltable provides a Dataset over one table of a database/sql
// connection. Timestamp columns require a driver configured to scan into
// time.Time (for go-sql-driver/mysql, parseTime=true in the DSN).
package sqltable

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"tablebridge/datatable"
)

// Dataset adapts a single database table. When an id column is named, its
// value is each row's stable identity, the id column is read-only and every
// other column is editable; without one, identities are synthetic sequential
// ids and writes are rejected rather than misapplied.
type Dataset struct {
	db       *sql.DB
	table    string
	idCol    string
	idIdx    int
	cols     []datatable.Column
	colNames []string
}

// New resolves the table's schema and creates the dataset. The schema query
// runs once here; a failure or an empty column list is a *SchemaError.
func New(ctx context.Context, db *sql.DB, table, idColumn string) (*Dataset, error) {
	if db == nil {
		return nil, &datatable.SchemaError{Cause: datatable.ErrNoDataset}
	}
	rows, err := db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(table)+" LIMIT 0")
	if err != nil {
		return nil, &datatable.SchemaError{Cause: errors.Wrap(err, "resolving schema")}
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, &datatable.SchemaError{Cause: errors.Wrap(err, "reading column types")}
	}
	if len(types) == 0 {
		return nil, &datatable.SchemaError{Cause: errors.New("table has no columns")}
	}

	d := &Dataset{db: db, table: table, idCol: idColumn, idIdx: -1}
	d.cols = make([]datatable.Column, len(types))
	d.colNames = make([]string, len(types))
	for i, ct := range types {
		name := ct.Name()
		d.colNames[i] = name
		d.cols[i] = datatable.Column{
			Name:     name,
			Kind:     kindForDatabaseType(ct.DatabaseTypeName()),
			Editable: idColumn != "" && name != idColumn,
			Index:    i,
		}
		if name == idColumn {
			d.idIdx = i
		}
	}
	if idColumn != "" && d.idIdx < 0 {
		return nil, &datatable.SchemaError{Cause: errors.Errorf("id column %q not in table %q", idColumn, table)}
	}
	return d, nil
}

// Columns implements datatable.Dataset.
func (d *Dataset) Columns() []datatable.Column {
	return append([]datatable.Column(nil), d.cols...)
}

// LoadAll implements datatable.Dataset.
func (d *Dataset) LoadAll(ctx context.Context) ([]datatable.Row, error) {
	quoted := make([]string, len(d.colNames))
	for i, n := range d.colNames {
		quoted[i] = quoteIdent(n)
	}
	query := "SELECT " + strings.Join(quoted, ", ") + " FROM " + quoteIdent(d.table)

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, &datatable.FetchError{Cause: errors.Wrap(err, "query")}
	}
	defer rows.Close()

	var out []datatable.Row
	seq := 0
	for rows.Next() {
		dest := make([]any, len(d.cols))
		for i, c := range d.cols {
			dest[i] = scanDest(c.Kind)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, &datatable.FetchError{Cause: errors.Wrap(err, "scan")}
		}
		cells := make([]datatable.Value, len(d.cols))
		for i, c := range d.cols {
			v, err := scannedValue(dest[i], c.Kind)
			if err != nil {
				return nil, &datatable.FetchError{Cause: errors.Wrapf(err, "column %s", c.Name)}
			}
			cells[i] = v
		}
		out = append(out, datatable.Row{ID: d.identity(cells, seq), Cells: cells})
		seq++
	}
	if err := rows.Err(); err != nil {
		return nil, &datatable.FetchError{Cause: errors.Wrap(err, "iterating rows")}
	}
	return out, nil
}

// PersistEdit implements datatable.Dataset.
func (d *Dataset) PersistEdit(ctx context.Context, id datatable.RowID, col int, value datatable.Value) error {
	if d.idIdx < 0 {
		return &datatable.PersistError{Cause: datatable.ErrSyntheticIdentity}
	}
	if col < 0 || col >= len(d.cols) {
		return &datatable.PersistError{Cause: datatable.ErrInvalidColumn}
	}
	query := "UPDATE " + quoteIdent(d.table) +
		" SET " + quoteIdent(d.colNames[col]) + " = ?" +
		" WHERE " + quoteIdent(d.idCol) + " = ?"

	res, err := d.db.ExecContext(ctx, query, sqlArg(value), string(id))
	if err != nil {
		return &datatable.PersistError{Cause: errors.Wrap(err, "update")}
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &datatable.PersistError{Cause: datatable.ErrUnknownRow}
	}
	return nil
}

// identity derives a row's stable identity from the id column, or a
// synthetic sequential id when none was declared.
func (d *Dataset) identity(cells []datatable.Value, seq int) datatable.RowID {
	if d.idIdx >= 0 {
		return datatable.RowID(cells[d.idIdx].Formatted)
	}
	return datatable.RowID("row-" + strconv.Itoa(seq))
}

// kindForDatabaseType maps a driver-reported column type onto a kind.
func kindForDatabaseType(dbType string) datatable.Kind {
	switch strings.ToUpper(dbType) {
	case "TINYINT", "SMALLINT", "MEDIUMINT", "INT", "INTEGER", "BIGINT",
		"UNSIGNED TINYINT", "UNSIGNED SMALLINT", "UNSIGNED INT", "UNSIGNED BIGINT":
		return datatable.KindInt
	case "DECIMAL", "NUMERIC", "FLOAT", "DOUBLE", "REAL":
		return datatable.KindDecimal
	case "BOOL", "BOOLEAN", "BIT":
		return datatable.KindBool
	case "DATE", "DATETIME", "TIMESTAMP":
		return datatable.KindTimestamp
	default:
		return datatable.KindText
	}
}

// scanDest returns a nullable scan target for the kind. Decimals scan as
// strings to avoid float rounding.
func scanDest(kind datatable.Kind) any {
	switch kind {
	case datatable.KindInt:
		return &sql.NullInt64{}
	case datatable.KindDecimal:
		return &sql.NullString{}
	case datatable.KindBool:
		return &sql.NullBool{}
	case datatable.KindTimestamp:
		return &sql.NullTime{}
	default:
		return &sql.NullString{}
	}
}

// scannedValue converts a filled scan target into a Value.
func scannedValue(dest any, kind datatable.Kind) (datatable.Value, error) {
	switch kind {
	case datatable.KindInt:
		v := dest.(*sql.NullInt64)
		if !v.Valid {
			return datatable.Null(kind), nil
		}
		return datatable.Int(v.Int64), nil
	case datatable.KindDecimal:
		v := dest.(*sql.NullString)
		if !v.Valid {
			return datatable.Null(kind), nil
		}
		dec, err := decimal.NewFromString(v.String)
		if err != nil {
			return datatable.Value{}, errors.Wrapf(err, "parsing decimal %q", v.String)
		}
		return datatable.Decimal(dec), nil
	case datatable.KindBool:
		v := dest.(*sql.NullBool)
		if !v.Valid {
			return datatable.Null(kind), nil
		}
		return datatable.Bool(v.Bool), nil
	case datatable.KindTimestamp:
		v := dest.(*sql.NullTime)
		if !v.Valid {
			return datatable.Null(kind), nil
		}
		return datatable.Timestamp(v.Time), nil
	default:
		v := dest.(*sql.NullString)
		if !v.Valid {
			return datatable.Null(datatable.KindText), nil
		}
		return datatable.Text(v.String), nil
	}
}

// sqlArg converts a Value into a driver argument.
func sqlArg(v datatable.Value) any {
	if v.IsNull {
		return nil
	}
	switch v.Kind {
	case datatable.KindDecimal:
		return v.AsDecimal().String()
	default:
		return v.Raw
	}
}

// quoteIdent backtick-quotes an identifier for MySQL-style dialects.
func quoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "") + "`"
}
