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

import "errors"

// Common errors returned by the datatable package.
var (
	// ErrInvalidColumn is returned when a column index is out of range.
	ErrInvalidColumn = errors.New("invalid column index")

	// ErrInvalidRow is returned when a row index is out of range.
	ErrInvalidRow = errors.New("invalid row index")

	// ErrUnknownRow is returned when a row identity does not resolve to a
	// loaded row.
	ErrUnknownRow = errors.New("unknown row identity")

	// ErrNoDataset is returned when a required dataset is nil.
	ErrNoDataset = errors.New("dataset is nil")

	// ErrNotEditable is returned when an edit targets a read-only column.
	ErrNotEditable = errors.New("column is not editable")

	// ErrKindMismatch is returned when a candidate value's kind does not
	// match the column's declared kind.
	ErrKindMismatch = errors.New("value kind does not match column kind")

	// ErrNoPendingEdit is returned by CommitEdit when no edit was begun
	// for the addressed cell.
	ErrNoPendingEdit = errors.New("no pending edit for cell")

	// ErrReadOnly is returned by datasets that do not support writes.
	ErrReadOnly = errors.New("dataset is read-only")

	// ErrSyntheticIdentity is returned when a write is attempted against a
	// row whose identity was synthesized locally and cannot address the
	// remote record.
	ErrSyntheticIdentity = errors.New("row identity is synthetic, write would be misapplied")

	// ErrNotReady is returned for operations that require loaded rows.
	ErrNotReady = errors.New("rows are not loaded")

	// ErrInvalidFilter is returned when a filter expression is invalid.
	ErrInvalidFilter = errors.New("invalid filter expression")
)

// SchemaError reports that a dataset's column list could not be resolved.
// It is fatal to adapter construction and never retried.
type SchemaError struct {
	Cause error
}

func (e *SchemaError) Error() string {
	if e.Cause == nil {
		return "schema unresolvable"
	}
	return "schema unresolvable: " + e.Cause.Error()
}

func (e *SchemaError) Unwrap() error { return e.Cause }

// FetchError reports a failed load. It is stored in the Failed load state
// and retryable via an explicit Refresh.
type FetchError struct {
	Cause error
}

func (e *FetchError) Error() string {
	if e.Cause == nil {
		return "data fetch failed"
	}
	return "data fetch failed: " + e.Cause.Error()
}

func (e *FetchError) Unwrap() error { return e.Cause }

// ValidationError reports an edit rejected locally, before any network call.
type ValidationError struct {
	Reason error
}

func (e *ValidationError) Error() string {
	if e.Reason == nil {
		return "edit rejected"
	}
	return "edit rejected: " + e.Reason.Error()
}

func (e *ValidationError) Unwrap() error { return e.Reason }

// PersistError reports a failed remote write. The pending edit is retained
// so the caller can retry CommitEdit.
type PersistError struct {
	Cause error
}

func (e *PersistError) Error() string {
	if e.Cause == nil {
		return "persist failed"
	}
	return "persist failed: " + e.Cause.Error()
}

func (e *PersistError) Unwrap() error { return e.Cause }
