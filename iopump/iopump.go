// Package iopump implements the synchronous tee-copy loop from one source
// to N sinks described in original_source/kryptocd/source/kernel/
// io_pump.cpp, with one deliberate correction: on a short write to a
// sink, the remaining bytes are retried from the correct offset into the
// chunk buffer rather than from its start.
package iopump

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/BackupTheBerlios/kryptocd/endpoint"
	"github.com/BackupTheBerlios/kryptocd/kerrors"
)

// borrowFile wraps an fd already owned by a Source/Sink for I/O, without
// taking ownership of it: os.NewFile's finalizer is disarmed immediately
// so it never closes a fd number some other owner has since reused.
func borrowFile(fd uintptr, name string) *os.File {
	f := os.NewFile(fd, name)
	runtime.SetFinalizer(f, nil)
	return f
}

// bufferSize matches the original's IO_PUMP_BUFFER_SIZE.
const bufferSize = 1024

// IoPump reads from one Source and tees every chunk to all attached sinks,
// in attachment order, synchronously.
type IoPump struct {
	source    endpoint.Source
	sourceF   *os.File
	sourceEOF bool

	sinks  []endpoint.Sink
	sinksF []*os.File
}

// New opens a pump with no sinks attached yet.
func New(source endpoint.Source) *IoPump {
	return &IoPump{
		source:  source,
		sourceF: borrowFile(uintptr(source.Fd()), "pump-source"),
	}
}

// AddSink appends a destination. The sink's current fd is snapshotted at
// call time, matching the original's addSink semantics.
func (p *IoPump) AddSink(sink endpoint.Sink) {
	p.sinks = append(p.sinks, sink)
	p.sinksF = append(p.sinksF, borrowFile(uintptr(sink.Fd()), "pump-sink"))
}

// Pump copies up to n bytes (n == -1 means "until EOF") from the source to
// every sink, returning the number of bytes actually copied. If the
// source has already observed EOF, it returns 0 immediately.
func (p *IoPump) Pump(n int64) (int64, error) {
	if p.sourceEOF {
		return 0, nil
	}

	var pumped int64
	buf := make([]byte, bufferSize)
	for n < 0 || pumped < n {
		toRead := int64(bufferSize)
		if n >= 0 {
			if remaining := n - pumped; remaining < toRead {
				toRead = remaining
			}
		}

		k, err := p.sourceF.Read(buf[:toRead])
		if k == 0 {
			if err != nil && !errors.Is(err, io.EOF) {
				return pumped, fmt.Errorf("iopump: read: %w", err)
			}
			p.sourceEOF = true
			return pumped, nil
		}

		if writeErr := p.writeToAllSinks(buf[:k]); writeErr != nil {
			return pumped, writeErr
		}
		pumped += int64(k)
	}
	return pumped, nil
}

func (p *IoPump) writeToAllSinks(chunk []byte) error {
	for i, sinkFile := range p.sinksF {
		written := 0
		for written < len(chunk) {
			k, err := sinkFile.Write(chunk[written:])
			if k <= 0 {
				fd := p.sinks[i].Fd()
				if err == nil {
					err = fmt.Errorf("write returned %d bytes", k)
				}
				return fmt.Errorf("iopump: sink fd %d: %w: %w", fd, kerrors.ErrSinkNotWritable, err)
			}
			written += k
		}
	}
	return nil
}
