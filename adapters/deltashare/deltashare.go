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

// Package deltashare provides a read-only Dataset over a remote Delta
// Sharing table.
package deltashare

import (
	"context"

	delta_sharing "github.com/magpierre/go_delta_sharing_client"
	"github.com/pkg/errors"

	"tablebridge/adapters/arrowtable"
	"tablebridge/datatable"
)

// Dataset fetches a Delta Sharing table file into Arrow and serves it
// through the arrowtable adapter. Remote tables shared this way are
// read-only snapshots.
type Dataset struct {
	profile string
	table   delta_sharing.Table
	fileID  string
	cols    []datatable.Column
}

// Open connects with the given profile, fetches the table file once to
// resolve its schema, and returns the dataset. fileID selects one of the
// table's data files; an empty fileID selects the first listed file.
func Open(ctx context.Context, profile string, table delta_sharing.Table, fileID string) (*Dataset, error) {
	d := &Dataset{profile: profile, table: table, fileID: fileID}

	src, err := d.fetch(ctx)
	if err != nil {
		return nil, &datatable.SchemaError{Cause: err}
	}
	defer src.Release()

	d.cols = src.Columns()
	return d, nil
}

// Columns implements datatable.Dataset.
func (d *Dataset) Columns() []datatable.Column {
	return append([]datatable.Column(nil), d.cols...)
}

// LoadAll implements datatable.Dataset.
func (d *Dataset) LoadAll(ctx context.Context) ([]datatable.Row, error) {
	src, err := d.fetch(ctx)
	if err != nil {
		return nil, &datatable.FetchError{Cause: err}
	}
	defer src.Release()
	return src.LoadAll(ctx)
}

// PersistEdit implements datatable.Dataset.
func (d *Dataset) PersistEdit(context.Context, datatable.RowID, int, datatable.Value) error {
	return &datatable.PersistError{Cause: datatable.ErrReadOnly}
}

// fetch downloads the table file and wraps it as an arrowtable dataset.
func (d *Dataset) fetch(ctx context.Context) (*arrowtable.Dataset, error) {
	client, err := delta_sharing.NewSharingClientV2FromString(d.profile)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to Delta Sharing")
	}

	fileID := d.fileID
	if fileID == "" {
		resp, err := client.ListFilesInTable(ctx, d.table)
		if err != nil {
			return nil, errors.Wrap(err, "listing table files")
		}
		if len(resp.AddFiles) == 0 {
			return nil, errors.Errorf("table %s has no data files", d.table.Name)
		}
		fileID = resp.AddFiles[0].Id
	}

	arrowTable, err := delta_sharing.LoadArrowTable(ctx, client, d.table, fileID)
	if err != nil {
		return nil, errors.Wrap(err, "loading arrow table")
	}
	defer arrowTable.Release()

	return arrowtable.New(arrowTable)
}
