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

// Package store owns the table currently open in the application. Every
// operation runs under the store's lock, so actions started from different
// goroutines apply one after the other instead of interleaving.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"tabproc/datatable"
)

// Options tunes how files are read.
type Options struct {
	// Sheet selects the Excel worksheet; empty means the first sheet.
	Sheet string
	// Separator forces the CSV separator; zero means detect it from the first line.
	Separator rune
}

// Info describes the loaded file.
type Info struct {
	Path      string
	Format    FileFormat
	Rows      int
	Columns   int
	Separator string
}

// Name is the base name of the loaded file.
func (i Info) Name() string {
	return filepath.Base(i.Path)
}

// ChartData holds the two columns plotted against each other.
type ChartData struct {
	XName  string
	YName  string
	Labels []string
	Values []float64
}

// Store holds at most one current table.
type Store struct {
	mu     sync.RWMutex
	table  *datatable.Table
	info   Info
	opts   Options
	logger *slog.Logger
}

// New creates an empty store.
func New(opts Options, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{opts: opts, logger: logger.With("component", "store")}
}

// HasData reports whether a table is loaded.
func (s *Store) HasData() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table != nil
}

// Snapshot returns a copy of the current table that callers may read freely.
func (s *Store) Snapshot() (*datatable.Table, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.table == nil {
		return nil, false
	}
	return s.table.Clone(), true
}

// Info describes the loaded file. The zero Info is returned when nothing is loaded.
func (s *Store) Info() Info {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.info
}

// Load reads filePath and makes it the current table. On any failure the
// previous table stays current.
func (s *Store) Load(ctx context.Context, filePath string) (Info, error) {
	log := s.logger.With("op", "load", "path", filePath)

	tbl, format, sep, err := readDataFile(ctx, filePath, s.opts)
	if err != nil {
		log.Error("load failed", "error", err)
		return Info{}, err
	}
	if err := ctx.Err(); err != nil {
		log.Warn("load cancelled", "error", err)
		return Info{}, err
	}

	info := Info{
		Path:    filePath,
		Format:  format,
		Rows:    tbl.RowCount(),
		Columns: tbl.ColumnCount(),
	}
	if format == FormatCSV {
		info.Separator = SeparatorName(sep)
	}

	s.mu.Lock()
	s.table = tbl
	s.info = info
	s.mu.Unlock()

	log.Info("data loaded", "format", format.String(), "rows", info.Rows, "columns", info.Columns)
	return info, nil
}

// SortByColumn stably reorders the rows by the named column.
func (s *Store) SortByColumn(ctx context.Context, column string, direction datatable.SortDirection) error {
	return s.replace(ctx, "sort_column", func(tbl *datatable.Table) (*datatable.Table, error) {
		return tbl.SortByColumn(column, direction)
	}, "column", column, "direction", direction.String())
}

// SortByRowValues reorders the columns by the values found in row.
func (s *Store) SortByRowValues(ctx context.Context, row int, direction datatable.SortDirection) error {
	return s.replace(ctx, "sort_row", func(tbl *datatable.Table) (*datatable.Table, error) {
		return tbl.SortByRowValues(row, direction)
	}, "row", row, "direction", direction.String())
}

// SearchAndReplace applies a regex replacement to every cell and returns
// the number of cells that changed.
func (s *Store) SearchAndReplace(ctx context.Context, term, replacement string) (int, error) {
	changed := 0
	err := s.replace(ctx, "replace", func(tbl *datatable.Table) (*datatable.Table, error) {
		out, n, err := tbl.SearchAndReplace(term, replacement)
		changed = n
		return out, err
	}, "term", term, "replacement", replacement)
	return changed, err
}

// replace runs op on the current table and swaps in the result.
func (s *Store) replace(ctx context.Context, name string, op func(*datatable.Table) (*datatable.Table, error), attrs ...any) error {
	log := s.logger.With(append([]any{"op", name}, attrs...)...)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.table == nil {
		log.Warn("rejected", "error", datatable.ErrNoDataLoaded)
		return datatable.ErrNoDataLoaded
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	out, err := op(s.table)
	if err != nil {
		log.Error("operation failed", "error", err)
		return err
	}
	if err := ctx.Err(); err != nil {
		log.Warn("operation cancelled", "error", err)
		return err
	}

	s.table = out
	s.info.Rows = out.RowCount()
	s.info.Columns = out.ColumnCount()
	log.Debug("table replaced")
	return nil
}

// ChartData extracts the x labels and numeric y values of two columns.
// Null and blank y cells plot as zero; text that is not a finite number is
// ErrNotNumeric.
func (s *Store) ChartData(ctx context.Context, x, y string) (ChartData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.table == nil {
		return ChartData{}, datatable.ErrNoDataLoaded
	}
	if err := ctx.Err(); err != nil {
		return ChartData{}, err
	}

	xs, err := s.table.Column(x)
	if err != nil {
		return ChartData{}, err
	}
	ys, err := s.table.Column(y)
	if err != nil {
		return ChartData{}, err
	}

	data := ChartData{
		XName:  x,
		YName:  y,
		Labels: make([]string, len(xs.Values)),
		Values: make([]float64, len(ys.Values)),
	}
	for i, v := range xs.Values {
		data.Labels[i] = v.Formatted
	}
	for i, v := range ys.Values {
		if v.IsNull || strings.TrimSpace(v.Formatted) == "" {
			continue
		}
		f, ok := v.Float()
		if !ok {
			var err error
			f, err = strconv.ParseFloat(strings.TrimSpace(v.Formatted), 64)
			ok = err == nil
		}
		if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
			return ChartData{}, fmt.Errorf("%w: %q has value %q in row %d", datatable.ErrNotNumeric, y, v.Formatted, i+1)
		}
		data.Values[i] = f
	}
	return data, nil
}

// Export writes the current table to filePath in the format given by its extension.
func (s *Store) Export(ctx context.Context, filePath string) error {
	log := s.logger.With("op", "export", "path", filePath)

	tbl, ok := s.Snapshot()
	if !ok {
		return datatable.ErrNoDataLoaded
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := writeDataFile(tbl, filePath); err != nil {
		log.Error("export failed", "error", err)
		return fmt.Errorf("%w: %w", datatable.ErrExportFailed, err)
	}
	log.Info("data exported", "rows", tbl.RowCount(), "columns", tbl.ColumnCount())
	return nil
}
