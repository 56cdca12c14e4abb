package logging

import (
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// AsyncLogger buffers writes on a channel and drains them to an
// underlying *lumberjack.Logger on a dedicated
// goroutine, so a slow or rotating disk write never blocks the caller
// that produced the log record. Mirrors gcsfuse's internal/logger
// asyncLogger.
type AsyncLogger struct {
	out     *lumberjack.Logger
	records chan []byte
	done    chan struct{}
	once    sync.Once
}

// NewAsyncLogger starts the drain goroutine and returns a ready-to-use
// io.Writer. bufferSize bounds how many pending records may queue before
// Write blocks.
func NewAsyncLogger(out *lumberjack.Logger, bufferSize int) *AsyncLogger {
	a := &AsyncLogger{
		out:     out,
		records: make(chan []byte, bufferSize),
		done:    make(chan struct{}),
	}
	go a.drain()
	return a
}

func (a *AsyncLogger) drain() {
	defer close(a.done)
	for rec := range a.records {
		a.out.Write(rec)
	}
}

// Write copies p and enqueues it for the drain goroutine.
func (a *AsyncLogger) Write(p []byte) (int, error) {
	cp := make([]byte, len(p))
	copy(cp, p)
	a.records <- cp
	return len(p), nil
}

// Close stops accepting new records, waits for the queue to drain, and
// closes the underlying lumberjack logger.
func (a *AsyncLogger) Close() error {
	a.once.Do(func() { close(a.records) })
	<-a.done
	return a.out.Close()
}
