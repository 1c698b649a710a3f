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

// Package task runs one-shot background work off the UI goroutine and reports
// back through a dispatcher that owns the UI goroutine.
package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrPanic is reported through OnDone when the work panics.
var ErrPanic = errors.New("task panicked")

// Dispatcher runs fn on the goroutine that owns the UI and returns once fn has run.
type Dispatcher func(fn func())

// Inline runs fn on the calling goroutine.
func Inline(fn func()) { fn() }

// Work is the body of a task. emit may be called any number of times before
// Work returns.
type Work[T any] func(ctx context.Context, emit func(T)) error

// Callbacks are delivered through the runner's dispatcher. Either may be nil.
type Callbacks[T any] struct {
	OnPayload func(T)
	OnDone    func(error)
}

// Runner starts tasks and tracks the ones still running.
type Runner struct {
	dispatch Dispatcher
	logger   *slog.Logger
	timeout  time.Duration
	base     context.Context
	stop     context.CancelFunc
	wg       sync.WaitGroup
}

// NewRunner creates a runner. A nil dispatch runs callbacks inline and a zero
// timeout leaves tasks unbounded.
func NewRunner(dispatch Dispatcher, logger *slog.Logger, timeout time.Duration) *Runner {
	if dispatch == nil {
		dispatch = Inline
	}
	if logger == nil {
		logger = slog.Default()
	}
	base, stop := context.WithCancel(context.Background())
	return &Runner{
		dispatch: dispatch,
		logger:   logger.With("component", "task"),
		timeout:  timeout,
		base:     base,
		stop:     stop,
	}
}

// Shutdown cancels the context of every running and future task. It does not
// wait; completions are still dispatched as the work returns.
func (r *Runner) Shutdown() {
	r.stop()
}

// Wait blocks until every submitted task has delivered its completion.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// Task is a handle to submitted work. It is not reusable.
type Task[T any] struct {
	ID   string
	Name string

	cancel context.CancelFunc
	done   chan struct{}

	mu       sync.Mutex
	finished bool
	err      error
}

// Submit starts work on a new goroutine and returns immediately. Payloads
// emitted by work reach OnPayload in order, and OnDone follows them exactly once.
func Submit[T any](r *Runner, name string, work Work[T], cb Callbacks[T]) *Task[T] {
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if r.timeout > 0 {
		ctx, cancel = context.WithTimeout(r.base, r.timeout)
	} else {
		ctx, cancel = context.WithCancel(r.base)
	}

	t := &Task[T]{
		ID:     uuid.NewString(),
		Name:   name,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	log := r.logger.With("task", name, "task_id", t.ID)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer close(t.done)
		defer cancel()

		start := time.Now()
		log.Debug("task started")

		emit := func(payload T) {
			if t.isFinished() {
				log.Warn("payload dropped after completion")
				return
			}
			if cb.OnPayload != nil {
				r.dispatch(func() { cb.OnPayload(payload) })
			}
		}

		err := t.run(ctx, work, emit)

		t.mu.Lock()
		t.finished = true
		t.err = err
		t.mu.Unlock()

		if err != nil {
			log.Warn("task failed", "error", err, "elapsed", time.Since(start))
		} else {
			log.Debug("task finished", "elapsed", time.Since(start))
		}

		if cb.OnDone != nil {
			r.dispatch(func() { cb.OnDone(err) })
		}
	}()

	return t
}

func (t *Task[T]) run(ctx context.Context, work Work[T], emit func(T)) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %s: %v", ErrPanic, t.Name, p)
		}
	}()
	return work(ctx, emit)
}

func (t *Task[T]) isFinished() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.finished
}

// Done is closed after OnDone has been dispatched.
func (t *Task[T]) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task completes or ctx ends, and returns the work's error.
func (t *Task[T]) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		t.mu.Lock()
		defer t.mu.Unlock()
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Cancel asks the work to stop by cancelling its context. The completion is
// still delivered.
func (t *Task[T]) Cancel() {
	t.cancel()
}
