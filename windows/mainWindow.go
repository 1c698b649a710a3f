package windows

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"tabproc/config"
	"tabproc/datatable"
	"tabproc/store"
	"tabproc/task"
)

// Options configures a MainWindow.
type Options struct {
	Config config.Config
	Logger *slog.Logger
	// Dispatcher delivers task callbacks; nil uses fyne.DoAndWait.
	Dispatcher task.Dispatcher
}

// MainWindow is the application window and the controller behind it. Every
// action either starts exactly one background task and returns its handle, or
// is rejected with a status message and returns nil.
type MainWindow struct {
	a      fyne.App
	w      fyne.Window
	cfg    config.Config
	logger *slog.Logger
	store  *store.Store
	runner *task.Runner

	top, bottom  fyne.CanvasObject
	statusBar    *widget.Label
	grid         *DataGrid
	xSelect      *widget.Select
	ySelect      *widget.Select
	plotButton   *widget.Button
	busy         *BusyIndicator
	searchWindow *SearchReplaceWindow
	chartWindow  fyne.Window

	// shared by column sort and row reorder, flipped after each one
	sortDirection datatable.SortDirection
}

type chartPayload struct {
	title string
	image image.Image
}

// NewMainWindow builds the window on a and its controller state.
func NewMainWindow(a fyne.App, opts Options) (*MainWindow, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	sep, err := opts.Config.Separator()
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	dispatch := opts.Dispatcher
	if dispatch == nil {
		dispatch = fyne.DoAndWait
	}

	t := &MainWindow{
		a:      a,
		cfg:    opts.Config,
		logger: logger.With("component", "ui"),
		store:  store.New(store.Options{Sheet: opts.Config.Excel.Sheet, Separator: sep}, logger),
		runner: task.NewRunner(dispatch, logger, opts.Config.TaskTimeout()),
	}
	t.build()
	return t, nil
}

func (t *MainWindow) build() {
	t.a.Settings().SetTheme(&GridTheme{})
	t.w = t.a.NewWindow("Table Processor")
	t.w.Resize(fyne.NewSize(t.cfg.Window.Width, t.cfg.Window.Height))
	t.w.SetMaster()
	t.w.SetOnClosed(t.runner.Shutdown)

	// Create status bar
	t.statusBar = widget.NewLabel(statusReady)
	t.statusBar.TextStyle = fyne.TextStyle{Italic: true}

	toolbar := widget.NewToolbar(
		widget.NewToolbarAction(theme.FolderOpenIcon(), t.OpenFileDialog),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), t.OpenExportDialog),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.SearchReplaceIcon(), t.OpenSearchReplace),
	)
	t.top = container.NewVBox(toolbar, t.statusBar)

	t.grid = NewDataGrid()
	t.grid.OnColumnHeaderTapped = func(col int) { t.SortByColumn(col) }
	t.grid.OnRowHeaderTapped = func(row int) { t.SortByRow(row) }

	t.xSelect = widget.NewSelect(nil, nil)
	t.xSelect.PlaceHolder = "X axis"
	t.ySelect = widget.NewSelect(nil, nil)
	t.ySelect.PlaceHolder = "Y axis"
	t.plotButton = widget.NewButtonWithIcon("Plot chart", theme.GridIcon(), func() { t.PlotChart() })

	t.bottom = container.NewGridWithColumns(3,
		container.NewBorder(nil, nil, widget.NewLabel("X:"), nil, t.xSelect),
		container.NewBorder(nil, nil, widget.NewLabel("Y:"), nil, t.ySelect),
		t.plotButton,
	)

	t.busy = NewBusyIndicator(t.w)

	t.w.SetContent(container.NewBorder(t.top, t.bottom, nil, nil, t.grid.Widget()))
}

// Run shows the window, loads path if given, and blocks until the app quits.
func (t *MainWindow) Run(path string) {
	t.w.Show()
	if path != "" {
		t.LoadFile(path)
	}
	t.a.Run()
	t.runner.Shutdown()
}

// SetStatus updates the status bar message
func (t *MainWindow) SetStatus(message string) {
	if t.statusBar != nil {
		t.statusBar.SetText(message)
	}
}

// Status returns the status bar message.
func (t *MainWindow) Status() string {
	return t.statusBar.Text
}

func (t *MainWindow) Window() fyne.Window      { return t.w }
func (t *MainWindow) Grid() *DataGrid          { return t.grid }
func (t *MainWindow) Busy() *BusyIndicator     { return t.busy }
func (t *MainWindow) ChartWindow() fyne.Window { return t.chartWindow }

// SortDirection is the direction the next sort or reorder will use.
func (t *MainWindow) SortDirection() datatable.SortDirection {
	return t.sortDirection
}

// SelectChartColumns sets the X and Y selectors.
func (t *MainWindow) SelectChartColumns(x, y string) {
	t.xSelect.SetSelected(x)
	t.ySelect.SetSelected(y)
}

// ChartColumns returns the columns offered by the selectors.
func (t *MainWindow) ChartColumns() []string {
	return slices.Clone(t.xSelect.Options)
}

func (t *MainWindow) reject(action, message string) {
	t.logger.Info("action rejected", "action", action, "reason", message)
	t.SetStatus(message)
}

func (t *MainWindow) fail(action string, err error) {
	t.logger.Error("action failed", "action", action, "error", err)
	t.SetStatus(errorStatus(err))
}

// submit shows the busy dialog, starts work and hides the dialog again
// before the caller's completion callback runs.
func submit[T any](t *MainWindow, name, message string, work task.Work[T], cb task.Callbacks[T]) Waiter {
	h := &abortHandle{}
	busyID := t.busy.Show(message, h.Abort)

	onDone := cb.OnDone
	cb.OnDone = func(err error) {
		t.busy.Hide(busyID)
		if onDone != nil {
			onDone(err)
		}
	}

	tk := task.Submit(t.runner, name, work, cb)
	h.bind(tk.Cancel)
	return tk
}

// refresh redraws the grid and the chart selectors from the current table.
func (t *MainWindow) refresh() {
	tbl, ok := t.store.Snapshot()
	if !ok {
		return
	}
	t.grid.SetData(tbl)

	names := tbl.ColumnNames()
	for _, sel := range []*widget.Select{t.xSelect, t.ySelect} {
		selected := sel.Selected
		sel.Options = names
		if !slices.Contains(names, selected) {
			sel.ClearSelected()
		}
		sel.Refresh()
	}
}

// LoadFile reads path into the store and shows it.
func (t *MainWindow) LoadFile(path string) Waiter {
	var info store.Info
	return submit(t, "load", "Loading file...",
		func(ctx context.Context, _ func(struct{})) error {
			var err error
			info, err = t.store.Load(ctx, path)
			return err
		},
		task.Callbacks[struct{}]{OnDone: func(err error) {
			if err != nil {
				t.fail("load", err)
				return
			}
			t.refresh()
			t.w.SetTitle("Table Processor - " + info.Name())
			t.SetStatus(fmt.Sprintf("Data loaded: %s (%d rows, %d columns)", info.Name(), info.Rows, info.Columns))
		}})
}

// SortByColumn orders the rows by column col in the shared direction.
func (t *MainWindow) SortByColumn(col int) Waiter {
	if !t.store.HasData() {
		t.reject("sort_column", statusNoData)
		return nil
	}
	name := t.grid.ColumnName(col)
	dir := t.sortDirection

	return submit(t, "sort_column", "Sorting rows...",
		func(ctx context.Context, _ func(struct{})) error {
			if name == "" {
				return fmt.Errorf("%w: column %d", datatable.ErrInvalidColumn, col)
			}
			return t.store.SortByColumn(ctx, name, dir)
		},
		task.Callbacks[struct{}]{OnDone: func(err error) {
			if err != nil {
				t.fail("sort_column", err)
				return
			}
			t.sortDirection = t.sortDirection.Toggle()
			t.refresh()
			t.SetStatus(fmt.Sprintf("Sorted by %s %s", name, dir.Arrow()))
		}})
}

// SortByRow orders the columns by their values in row.
func (t *MainWindow) SortByRow(row int) Waiter {
	if !t.store.HasData() {
		t.reject("sort_row", statusNoData)
		return nil
	}
	dir := t.sortDirection

	return submit(t, "sort_row", "Reordering columns...",
		func(ctx context.Context, _ func(struct{})) error {
			return t.store.SortByRowValues(ctx, row, dir)
		},
		task.Callbacks[struct{}]{OnDone: func(err error) {
			if err != nil {
				t.fail("sort_row", err)
				return
			}
			t.sortDirection = t.sortDirection.Toggle()
			t.refresh()
			t.SetStatus(fmt.Sprintf("Columns reordered by row %d %s", row+1, dir.Arrow()))
		}})
}

// PlotChart draws the selected X and Y columns as a bar chart. The chart
// window opens from the payload; the busy dialog closes on completion.
func (t *MainWindow) PlotChart() Waiter {
	if !t.store.HasData() {
		t.reject("chart", statusNoData)
		return nil
	}
	x, y := t.xSelect.Selected, t.ySelect.Selected
	if x == "" || y == "" {
		t.reject("chart", statusSelectColumns)
		return nil
	}
	width, height := int(t.cfg.Chart.Width), int(t.cfg.Chart.Height)

	return submit(t, "chart", "Building chart...",
		func(ctx context.Context, emit func(chartPayload)) error {
			data, err := t.store.ChartData(ctx, x, y)
			if err != nil {
				return err
			}
			img, err := RenderBarChart(data, width, height)
			if err != nil {
				return err
			}
			emit(chartPayload{title: ChartTitle(data), image: img})
			return nil
		},
		task.Callbacks[chartPayload]{
			OnPayload: func(p chartPayload) {
				t.showChart(p.title, p.image)
			},
			OnDone: func(err error) {
				if err != nil {
					t.fail("chart", err)
					return
				}
				t.SetStatus(fmt.Sprintf("Chart: %s by %s", y, x))
			},
		})
}

// SearchAndReplace substitutes every regex match of term in every cell.
func (t *MainWindow) SearchAndReplace(term, replacement string) Waiter {
	if !t.store.HasData() {
		t.reject("replace", statusNoData)
		return nil
	}
	term = strings.TrimSpace(term)
	replacement = strings.TrimSpace(replacement)
	if term == "" {
		t.reject("replace", statusFillSearch)
		return nil
	}
	if replacement == "" {
		t.reject("replace", statusFillReplace)
		return nil
	}

	var changed int
	return submit(t, "replace", "Searching and replacing...",
		func(ctx context.Context, _ func(struct{})) error {
			var err error
			changed, err = t.store.SearchAndReplace(ctx, term, replacement)
			return err
		},
		task.Callbacks[struct{}]{OnDone: func(err error) {
			if err != nil {
				t.fail("replace", err)
				return
			}
			if t.searchWindow != nil {
				t.searchWindow.Close()
			}
			t.refresh()
			t.SetStatus(fmt.Sprintf("Replacement complete (%d cells changed)", changed))
		}})
}

// ExportFile writes the current table to path.
func (t *MainWindow) ExportFile(path string) Waiter {
	if !t.store.HasData() {
		t.reject("export", statusNoData)
		return nil
	}

	return submit(t, "export", "Exporting...",
		func(ctx context.Context, _ func(struct{})) error {
			return t.store.Export(ctx, path)
		},
		task.Callbacks[struct{}]{OnDone: func(err error) {
			if err != nil {
				t.fail("export", err)
				return
			}
			t.SetStatus("Exported to " + filepath.Base(path))
		}})
}

// OpenFileDialog lets the user pick a data file and loads it.
func (t *MainWindow) OpenFileDialog() {
	NewDataFileDialog(t.w, t.a.Preferences(), func(path string) {
		t.LoadFile(path)
	}).Show()
}

// OpenExportDialog asks for a destination and exports the current table.
func (t *MainWindow) OpenExportDialog() {
	if !t.store.HasData() {
		t.reject("export", statusNoData)
		return
	}
	name := strings.TrimSuffix(t.store.Info().Name(), filepath.Ext(t.store.Info().Name())) + ".csv"
	showExportDialog(t.w, t.a.Preferences(), name, func(path string) {
		t.ExportFile(path)
	})
}

// OpenSearchReplace shows the search and replace window.
func (t *MainWindow) OpenSearchReplace() {
	if t.searchWindow == nil || t.searchWindow.closed {
		t.searchWindow = newSearchReplaceWindow(t.a, func(term, replacement string) {
			t.SearchAndReplace(term, replacement)
		})
	}
	t.searchWindow.Show()
}

// SearchWindow returns the search and replace window, or nil before it was opened.
func (t *MainWindow) SearchWindow() *SearchReplaceWindow {
	return t.searchWindow
}
