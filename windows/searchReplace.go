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
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// SearchReplaceWindow is the secondary window holding the search and
// replacement fields.
type SearchReplaceWindow struct {
	w           fyne.Window
	search      *widget.Entry
	replacement *widget.Entry
	button      *widget.Button
	closed      bool
}

func newSearchReplaceWindow(a fyne.App, onReplace func(term, replacement string)) *SearchReplaceWindow {
	s := &SearchReplaceWindow{w: a.NewWindow("Search and replace")}

	s.search = widget.NewEntry()
	s.search.SetPlaceHolder("Text or regular expression to find")
	s.replacement = widget.NewEntry()
	s.replacement.SetPlaceHolder("Replacement, $1 refers to a group")

	s.button = widget.NewButtonWithIcon("Replace", theme.SearchReplaceIcon(), func() {
		onReplace(s.search.Text, s.replacement.Text)
	})
	s.button.Importance = widget.HighImportance
	s.replacement.OnSubmitted = func(string) { s.button.OnTapped() }

	form := widget.NewForm(
		widget.NewFormItem("Find", s.search),
		widget.NewFormItem("Replace with", s.replacement),
	)
	s.w.SetContent(container.NewVBox(form, s.button))
	s.w.Resize(fyne.NewSize(400, 200))
	s.w.SetOnClosed(func() { s.closed = true })
	return s
}

// Show brings the window to the front.
func (s *SearchReplaceWindow) Show() {
	s.w.Show()
	s.w.RequestFocus()
	s.w.Canvas().Focus(s.search)
}

// Close closes the window once a replacement is done.
func (s *SearchReplaceWindow) Close() {
	if !s.closed {
		s.closed = true
		s.w.Close()
	}
}

// SetFields fills both entries.
func (s *SearchReplaceWindow) SetFields(term, replacement string) {
	s.search.SetText(term)
	s.replacement.SetText(replacement)
}

// Submit acts as a click on the Replace button.
func (s *SearchReplaceWindow) Submit() {
	s.button.OnTapped()
}
