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

package windows

import (
	"context"
	"errors"

	"tabproc/datatable"
	"tabproc/task"
)

const (
	statusReady          = "Import a table"
	statusNoData         = "Error: no data loaded"
	statusSelectColumns  = "Select columns for the chart"
	statusFillSearch     = "Fill in the search field"
	statusFillReplace    = "Fill in the replacement field"
	statusUnsupported    = "Error: unsupported file format"
	statusLoadFailed     = "Error loading data"
	statusColumnNotFound = "Error: column not found"
	statusRowOutOfRange  = "Error: row out of range"
	statusReplaceFailed  = "Error during replacement"
	statusChartFailed    = "Error preparing chart data"
	statusExportFailed   = "Error exporting data"
	statusTimedOut       = "Error: operation timed out"
	statusCancelled      = "Operation cancelled"
	statusInternal       = "Error: operation failed"
)

// errorStatus maps an action error to the short message shown in the status bar.
func errorStatus(err error) string {
	switch {
	case errors.Is(err, datatable.ErrNoDataLoaded):
		return statusNoData
	case errors.Is(err, datatable.ErrUnsupportedFormat) && !errors.Is(err, datatable.ErrExportFailed):
		return statusUnsupported
	case errors.Is(err, datatable.ErrLoad):
		return statusLoadFailed
	case errors.Is(err, datatable.ErrColumnNotFound), errors.Is(err, datatable.ErrInvalidColumn):
		return statusColumnNotFound
	case errors.Is(err, datatable.ErrRowOutOfRange):
		return statusRowOutOfRange
	case errors.Is(err, datatable.ErrReplace):
		return statusReplaceFailed
	case errors.Is(err, datatable.ErrNotNumeric):
		return statusChartFailed
	case errors.Is(err, datatable.ErrExportFailed):
		return statusExportFailed
	case errors.Is(err, context.DeadlineExceeded):
		return statusTimedOut
	case errors.Is(err, context.Canceled):
		return statusCancelled
	case errors.Is(err, task.ErrPanic):
		return statusInternal
	default:
		return "Error: " + err.Error()
	}
}

// Waiter is the handle returned by actions that started a background task.
type Waiter interface {
	Done() <-chan struct{}
	Wait(ctx context.Context) error
}
