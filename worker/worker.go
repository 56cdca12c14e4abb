// Package worker provides a joinable, single-run goroutine wrapper,
// mirroring original_source/kryptocd/source/kernel/thread.hh's Thread: a
// subclass-supplied procedure runs exactly once, a mutex is available to
// the embedding type for publishing results, and the caller joins
// explicitly instead of relying on a destructor.
package worker

import (
	"errors"
	"sync"
)

// ErrAlreadyStarted is returned by a second call to Start.
var ErrAlreadyStarted = errors.New("worker: already started")

// Worker runs a single function on its own goroutine. Types that need a
// worker embed it by value, the way TarCreator and TarLister publicly
// inherited Thread in the original.
type Worker struct {
	// Mu is available to the embedding type to synchronise publishing
	// results gathered by the worker's function, matching Thread's
	// "protected mutex usable by subclasses".
	Mu sync.Mutex

	startMu sync.Mutex
	started bool
	done    chan struct{}
}

// Start runs fn on a new goroutine. A second call, whether or not the
// first has finished, returns ErrAlreadyStarted without running fn again.
func (w *Worker) Start(fn func()) error {
	w.startMu.Lock()
	if w.started {
		w.startMu.Unlock()
		return ErrAlreadyStarted
	}
	w.started = true
	w.done = make(chan struct{})
	done := w.done
	w.startMu.Unlock()

	go func() {
		defer close(done)
		fn()
	}()
	return nil
}

// Join blocks until the worker's function returns. Join on a Worker that
// was never started returns immediately.
func (w *Worker) Join() {
	w.startMu.Lock()
	done := w.done
	w.startMu.Unlock()
	if done == nil {
		return
	}
	<-done
}

// Started reports whether Start has already been called.
func (w *Worker) Started() bool {
	w.startMu.Lock()
	defer w.startMu.Unlock()
	return w.started
}
