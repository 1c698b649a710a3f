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
	"slices"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// BusyIndicator is the modal "please wait" dialog shown while an action runs.
// Actions may overlap; the dialog stays up until the last one finishes and
// Cancel aborts every action still running.
type BusyIndicator struct {
	w      fyne.Window
	dialog dialog.Dialog
	bar    *widget.ProgressBarInfinite
	label  *widget.Label
	cancel *widget.Button

	mu      sync.Mutex
	nextID  int
	entries []busyEntry
}

type busyEntry struct {
	id      int
	message string
	abort   func()
}

func NewBusyIndicator(w fyne.Window) *BusyIndicator {
	b := &BusyIndicator{w: w}
	b.bar = widget.NewProgressBarInfinite()
	b.bar.Stop()
	b.label = widget.NewLabel("")
	b.label.Alignment = fyne.TextAlignCenter
	b.cancel = widget.NewButtonWithIcon("Cancel", theme.CancelIcon(), b.abortAll)

	b.dialog = dialog.NewCustomWithoutButtons("Please wait", container.NewVBox(b.label, b.bar, b.cancel), w)
	b.dialog.Resize(fyne.NewSize(300, 140))
	return b
}

// Show raises the dialog with message and returns the id to pass to Hide.
// abort is called when the user presses Cancel and may be nil.
func (b *BusyIndicator) Show(message string, abort func()) int {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.entries = append(b.entries, busyEntry{id: id, message: message, abort: abort})
	b.mu.Unlock()

	b.update()
	b.dialog.Show()
	b.bar.Start()
	return id
}

// Hide ends the action started by Show with id and closes the dialog once
// none are left. Unknown ids are ignored.
func (b *BusyIndicator) Hide(id int) {
	b.mu.Lock()
	b.entries = slices.DeleteFunc(b.entries, func(e busyEntry) bool { return e.id == id })
	idle := len(b.entries) == 0
	b.mu.Unlock()

	if idle {
		b.bar.Stop()
		b.dialog.Hide()
		return
	}
	b.update()
}

// update shows the newest message and enables Cancel if anything can abort.
func (b *BusyIndicator) update() {
	b.mu.Lock()
	if len(b.entries) == 0 {
		b.mu.Unlock()
		return
	}
	message := b.entries[len(b.entries)-1].message
	cancellable := slices.ContainsFunc(b.entries, func(e busyEntry) bool { return e.abort != nil })
	b.mu.Unlock()

	b.label.SetText(message)
	if cancellable {
		b.cancel.Enable()
	} else {
		b.cancel.Disable()
	}
}

func (b *BusyIndicator) abortAll() {
	b.mu.Lock()
	var aborts []func()
	for _, e := range b.entries {
		if e.abort != nil {
			aborts = append(aborts, e.abort)
		}
	}
	b.mu.Unlock()

	for _, abort := range aborts {
		abort()
	}
}

// Active reports whether an action is still running.
func (b *BusyIndicator) Active() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries) > 0
}

// Message is the text currently shown in the dialog.
func (b *BusyIndicator) Message() string {
	return b.label.Text
}

// abortHandle lets the Cancel button reach a task that is submitted after
// the dialog is already showing.
type abortHandle struct {
	mu      sync.Mutex
	cancel  func()
	aborted bool
}

func (h *abortHandle) Abort() {
	h.mu.Lock()
	h.aborted = true
	cancel := h.cancel
	h.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (h *abortHandle) bind(cancel func()) {
	h.mu.Lock()
	h.cancel = cancel
	aborted := h.aborted
	h.mu.Unlock()
	if aborted {
		cancel()
	}
}
