package worker

import (
	"sync/atomic"
	"testing"
)

func TestStartRunsFunctionOnce(t *testing.T) {
	var w Worker
	var calls int32
	if err := w.Start(func() { atomic.AddInt32(&calls, 1) }); err != nil {
		t.Fatalf("Start: %v", err)
	}
	w.Join()
	if err := w.Start(func() { atomic.AddInt32(&calls, 1) }); err != ErrAlreadyStarted {
		t.Fatalf("second Start error = %v, want ErrAlreadyStarted", err)
	}
	w.Join()
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("calls = %d, want 1", got)
	}
}

func TestJoinWithoutStartReturnsImmediately(t *testing.T) {
	var w Worker
	w.Join()
}

func TestStartedReflectsState(t *testing.T) {
	var w Worker
	if w.Started() {
		t.Fatal("Started() true before Start")
	}
	_ = w.Start(func() {})
	if !w.Started() {
		t.Fatal("Started() false after Start")
	}
	w.Join()
}
