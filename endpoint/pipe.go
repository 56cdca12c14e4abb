package endpoint

import (
	"fmt"
	"os"

	"github.com/BackupTheBerlios/kryptocd/kerrors"
)

// Pipe is both a Source and a Sink backed by a single pipe(2) pair. The
// read and write ends close independently and idempotently, matching the
// original KryptoCD Pipe class: closing one end never touches the other.
type Pipe struct {
	r *os.File
	w *os.File
}

// NewPipe creates a pipe and wraps both ends.
func NewPipe() (*Pipe, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("new pipe: %w: %w", kerrors.ErrPipeFailed, err)
	}
	return &Pipe{r: r, w: w}, nil
}

// Fd returns the read end's descriptor, or -1 once closed. Present so Pipe
// satisfies Source on its own; callers needing the sink fd use SinkFd.
func (p *Pipe) Fd() int {
	if p.r == nil {
		return -1
	}
	return int(p.r.Fd())
}

// SinkFd returns the write end's descriptor, or -1 once closed.
func (p *Pipe) SinkFd() int {
	if p.w == nil {
		return -1
	}
	return int(p.w.Fd())
}

// Open reports whether the read end is still open.
func (p *Pipe) Open() bool { return p.r != nil }

// SinkOpen reports whether the write end is still open.
func (p *Pipe) SinkOpen() bool { return p.w != nil }

// CloseSource closes the read end. Idempotent.
func (p *Pipe) CloseSource() error {
	if p.r == nil {
		return nil
	}
	err := p.r.Close()
	p.r = nil
	return err
}

// CloseSink closes the write end. Idempotent.
func (p *Pipe) CloseSink() error {
	if p.w == nil {
		return nil
	}
	err := p.w.Close()
	p.w = nil
	return err
}

// Close closes both ends, returning the first error encountered.
func (p *Pipe) Close() error {
	err := p.CloseSource()
	if sinkErr := p.CloseSink(); err == nil {
		err = sinkErr
	}
	return err
}

// Source returns a view of p's read end satisfying the Source interface.
// Needed because Pipe's own Fd()/Open() report the read end, while a Sink
// view of the same Pipe must report the write end instead.
func (p *Pipe) Source() Source { return pipeSourceView{p} }

// Sink returns a view of p's write end satisfying the Sink interface.
func (p *Pipe) Sink() Sink { return pipeSinkView{p} }

type pipeSourceView struct{ p *Pipe }

func (v pipeSourceView) Fd() int            { return v.p.Fd() }
func (v pipeSourceView) Open() bool         { return v.p.Open() }
func (v pipeSourceView) CloseSource() error { return v.p.CloseSource() }

type pipeSinkView struct{ p *Pipe }

func (v pipeSinkView) Fd() int          { return v.p.SinkFd() }
func (v pipeSinkView) Open() bool       { return v.p.SinkOpen() }
func (v pipeSinkView) CloseSink() error { return v.p.CloseSink() }
