package windows

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"tabproc/store"
)

const lastDirectoryKey = "lastDirectory"

type DataFileDialog struct {
	dialog      dialog.Dialog
	window      fyne.Window
	prefs       fyne.Preferences
	callback    func(string)
	fileList    *widget.List
	files       []string
	homeDir     string
	currentPath string
	pathLabel   *widget.Label
}

func NewDataFileDialog(w fyne.Window, prefs fyne.Preferences, callback func(string)) *DataFileDialog {
	fd := &DataFileDialog{
		window:   w,
		prefs:    prefs,
		callback: callback,
		files:    make([]string, 0),
	}

	// Get home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	fd.homeDir = homeDir
	fd.currentPath = homeDir

	// Start where the last file was opened
	if prefs != nil {
		if last := prefs.String(lastDirectoryKey); last != "" {
			if info, err := os.Stat(last); err == nil && info.IsDir() {
				fd.currentPath = last
			}
		}
	}

	return fd
}

// isDataFile reports whether name has one of the extensions Load accepts.
func isDataFile(name string) bool {
	return slices.Contains(store.SupportedExtensions, strings.ToLower(filepath.Ext(name)))
}

func (fd *DataFileDialog) Show() {
	// Create path label showing current directory
	fd.pathLabel = widget.NewLabel(fd.currentPath)
	fd.pathLabel.Truncation = fyne.TextTruncateEllipsis
	fd.pathLabel.TextStyle = fyne.TextStyle{Bold: true}

	// Create file list
	fd.fileList = widget.NewList(
		func() int {
			return len(fd.files)
		},
		func() fyne.CanvasObject {
			icon := widget.NewIcon(theme.DocumentIcon())
			label := widget.NewLabel("template")
			return container.NewHBox(icon, label)
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			cont := obj.(*fyne.Container)
			icon := cont.Objects[0].(*widget.Icon)
			label := cont.Objects[1].(*widget.Label)

			fileName := fd.files[id]
			label.SetText(fileName)

			fullPath := filepath.Join(fd.currentPath, fileName)
			fileInfo, err := os.Stat(fullPath)
			if err == nil && fileInfo.IsDir() {
				icon.SetResource(theme.FolderIcon())
			} else {
				icon.SetResource(theme.DocumentIcon())
			}
		},
	)

	// Handle file selection
	fd.fileList.OnSelected = func(id widget.ListItemID) {
		fullPath := filepath.Join(fd.currentPath, fd.files[id])

		fileInfo, err := os.Stat(fullPath)
		if err != nil {
			return
		}

		if fileInfo.IsDir() {
			// Navigate into directory
			fd.currentPath = fullPath
			fd.loadDirectory()
			fd.fileList.UnselectAll()
			return
		}

		if fd.prefs != nil {
			fd.prefs.SetString(lastDirectoryKey, fd.currentPath)
		}
		fd.dialog.Hide()
		fd.callback(fullPath)
	}

	// Create navigation buttons
	homeButton := widget.NewButtonWithIcon("Home", theme.HomeIcon(), func() {
		fd.currentPath = fd.homeDir
		fd.loadDirectory()
	})

	upButton := widget.NewButtonWithIcon("Up", theme.NavigateBackIcon(), func() {
		parent := filepath.Dir(fd.currentPath)
		if parent != fd.currentPath {
			fd.currentPath = parent
			fd.loadDirectory()
		}
	})

	refreshButton := widget.NewButtonWithIcon("Refresh", theme.ViewRefreshIcon(), func() {
		fd.loadDirectory()
	})

	// Create filter info
	filterInfo := widget.NewLabel("Showing: " + strings.Join(store.SupportedExtensions, ", ") + " files, and directories")
	filterInfo.TextStyle = fyne.TextStyle{Italic: true}

	// Navigation toolbar
	navToolbar := container.NewBorder(
		nil, nil,
		container.NewHBox(homeButton, upButton, refreshButton),
		nil,
		fd.pathLabel,
	)

	instructions := widget.NewRichTextFromMarkdown("**Select a spreadsheet or CSV file**\n\nClick a folder to open it, or click a file to load it.")
	instructions.Wrapping = fyne.TextWrapWord

	content := container.NewBorder(
		container.NewVBox(
			instructions,
			widget.NewSeparator(),
			navToolbar,
			widget.NewSeparator(),
			filterInfo,
		),
		nil, nil, nil,
		fd.fileList,
	)

	fd.dialog = dialog.NewCustom("Open Data File", "Close", content, fd.window)
	fd.dialog.Resize(fyne.NewSize(800, 600))

	// Load initial directory
	fd.loadDirectory()

	fd.dialog.Show()
}

func (fd *DataFileDialog) loadDirectory() {
	entries, err := os.ReadDir(fd.currentPath)
	if err != nil {
		dialog.ShowError(err, fd.window)
		return
	}

	fd.files = make([]string, 0)

	// Add directories first
	for _, entry := range entries {
		if entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") {
			fd.files = append(fd.files, entry.Name())
		}
	}

	for _, entry := range entries {
		if !entry.IsDir() && isDataFile(entry.Name()) {
			fd.files = append(fd.files, entry.Name())
		}
	}

	fd.pathLabel.SetText(fd.currentPath)
	fd.fileList.Refresh()
}

// showExportDialog asks for a destination and passes its path to callback.
func showExportDialog(w fyne.Window, prefs fyne.Preferences, defaultName string, callback func(string)) {
	saveDialog := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		if writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()
		callback(path)
	}, w)

	saveDialog.SetFileName(defaultName)
	if prefs != nil {
		if last := prefs.String(lastDirectoryKey); last != "" {
			if uri, err := storage.ListerForURI(storage.NewFileURI(last)); err == nil {
				saveDialog.SetLocation(uri)
			}
		}
	}
	saveDialog.Resize(fyne.NewSize(800, 600))
	saveDialog.Show()
}
