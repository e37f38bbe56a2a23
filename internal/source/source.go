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

// Package source opens the configured dataset for the demo commands.
package source

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/go-sql-driver/mysql"
	delta_sharing "github.com/magpierre/go_delta_sharing_client"

	"tablebridge/adapters/deltashare"
	"tablebridge/adapters/slicetable"
	"tablebridge/adapters/sqltable"
	"tablebridge/datatable"
	"tablebridge/internal/config"
)

// Open builds the dataset selected by cfg.
func Open(ctx context.Context, cfg *config.Config) (datatable.Dataset, error) {
	switch cfg.Source.Driver {
	case "mysql":
		db, err := sql.Open("mysql", cfg.Source.DSN)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			return nil, fmt.Errorf("pinging database: %w", err)
		}
		return sqltable.New(ctx, db, cfg.Source.Table, cfg.Source.IDColumn)

	case "deltashare":
		profile, err := os.ReadFile(cfg.Source.ProfilePath)
		if err != nil {
			return nil, fmt.Errorf("reading profile: %w", err)
		}
		table := delta_sharing.Table{
			Share:  cfg.Source.Share,
			Schema: cfg.Source.Schema,
			Name:   cfg.Source.ShareTable,
		}
		return deltashare.Open(ctx, string(profile), table, cfg.Source.FileID)

	case "demo", "":
		return demoDataset()

	default:
		return nil, fmt.Errorf("unknown source driver %q", cfg.Source.Driver)
	}
}

// demoDataset is a small editable product table with artificial latency so
// the Loading state is visible.
func demoDataset() (datatable.Dataset, error) {
	cols := []datatable.Column{
		{Name: "ID", Kind: datatable.KindInt, Index: 0},
		{Name: "Name", Kind: datatable.KindText, Editable: true, Index: 1},
		{Name: "Price", Kind: datatable.KindDecimal, Editable: true, Index: 2},
		{Name: "In Stock", Kind: datatable.KindBool, Editable: true, Index: 3},
		{Name: "Updated", Kind: datatable.KindTimestamp, Index: 4},
	}
	now := time.Now().UTC().Truncate(time.Second)
	rows := []datatable.Row{
		{ID: "1", Cells: []datatable.Value{datatable.Int(1), datatable.Text("Espresso"), datatable.DecimalFromFloat(2.40), datatable.Bool(true), datatable.Timestamp(now)}},
		{ID: "2", Cells: []datatable.Value{datatable.Int(2), datatable.Text("Cappuccino"), datatable.DecimalFromFloat(3.10), datatable.Bool(true), datatable.Timestamp(now)}},
		{ID: "3", Cells: []datatable.Value{datatable.Int(3), datatable.Text("Flat White"), datatable.DecimalFromFloat(3.30), datatable.Bool(false), datatable.Timestamp(now)}},
		{ID: "4", Cells: []datatable.Value{datatable.Int(4), datatable.Text("Mocha"), datatable.DecimalFromFloat(3.80), datatable.Bool(true), datatable.Timestamp(now)}},
		{ID: "5", Cells: []datatable.Value{datatable.Int(5), datatable.Text("Croissant"), datatable.DecimalFromFloat(2.10), datatable.Bool(true), datatable.Timestamp(now)}},
	}
	return slicetable.NewKeyed(cols, rows, slicetable.WithLatency(800*time.Millisecond))
}
