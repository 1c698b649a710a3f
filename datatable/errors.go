package datatable

import "errors"

// Errors returned by table operations and by the store built on top of them.
var (
	// ErrInvalidColumn is returned when a column index is out of range.
	ErrInvalidColumn = errors.New("invalid column index")

	// ErrInvalidRow is returned when a row index is out of range.
	ErrInvalidRow = errors.New("invalid row index")

	// ErrEmptyData is returned when data is empty where it shouldn't be.
	ErrEmptyData = errors.New("data is empty")

	// ErrColumnNotFound is returned when a column name is not found.
	ErrColumnNotFound = errors.New("column not found")

	// ErrRowOutOfRange is returned when columns are reordered by a row that does not exist.
	ErrRowOutOfRange = errors.New("row index out of range")

	// ErrUnsupportedFormat is returned for file extensions no loader handles.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrLoad is returned when a recognised file cannot be parsed.
	ErrLoad = errors.New("failed to load data")

	// ErrReplace is returned when a search-and-replace cannot be applied.
	ErrReplace = errors.New("search and replace failed")

	// ErrNoDataLoaded is returned when an operation needs a table and none is loaded.
	ErrNoDataLoaded = errors.New("no data loaded")

	// ErrNotNumeric is returned when a column that must hold numbers does not.
	ErrNotNumeric = errors.New("column is not numeric")

	// ErrExportFailed is returned when export operation fails.
	ErrExportFailed = errors.New("export failed")
)
