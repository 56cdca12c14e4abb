// Package childfilter wires a spawned tool's stdin and stdout (and
// optionally an extra inbound descriptor) to Source/Sink endpoints,
// mirroring the "ChildFilter" specialization of Childprocess described in
// original_source/kryptocd/source/kernel/childprocess.hh's users
// (tar_creator.cc, compressor.cc, encryptor.cc in the original tree).
package childfilter

import (
	"fmt"
	"syscall"

	"github.com/BackupTheBerlios/kryptocd/endpoint"
	"github.com/BackupTheBerlios/kryptocd/process"
)

// ExtraFd is the documented inherited descriptor number used to deliver
// out-of-band input (the encryption passphrase) to a child tool:
// max(stdin, stdout, stderr) + 1.
const ExtraFd = 3

// ChildFilter is a Childprocess specialized to read from one Source on
// stdin and write to one Sink on stdout, with an optional extra inbound
// Source on ExtraFd.
type ChildFilter struct {
	proc *process.Process

	// skipWaitOnClose lets Encryptor opt out of Wait() during Close, per
	// the original's note that the encryption tool can misbehave on
	// stdin EOF during shutdown.
	skipWaitOnClose bool

	lastState *process.ProcessState
}

// New spawns executable with argv, mapping the child's stdin to source and
// stdout to sink. Both endpoints are closed in the parent once mapped,
// regardless of whether spawning succeeded.
func New(executable string, argv []string, source endpoint.Source, sink endpoint.Sink) (*ChildFilter, error) {
	return newFilter(executable, argv, source, sink, nil)
}

// NewWithExtra is New plus an additional inbound Source mapped to
// ExtraFd, used to deliver the passphrase to the encryption tool.
func NewWithExtra(executable string, argv []string, source endpoint.Source, sink endpoint.Sink, extra endpoint.Source) (*ChildFilter, error) {
	return newFilter(executable, argv, source, sink, extra)
}

func newFilter(executable string, argv []string, source endpoint.Source, sink endpoint.Sink, extra endpoint.Source) (*ChildFilter, error) {
	fdMap := process.FdMap{
		0: uintptr(source.Fd()),
		1: uintptr(sink.Fd()),
	}
	if extra != nil {
		fdMap[ExtraFd] = uintptr(extra.Fd())
	}

	proc, spawnErr := process.Spawn(executable, argv, fdMap, true)

	var closeErr error
	if err := source.CloseSource(); err != nil && closeErr == nil {
		closeErr = fmt.Errorf("childfilter: close source: %w", err)
	}
	if err := sink.CloseSink(); err != nil && closeErr == nil {
		closeErr = fmt.Errorf("childfilter: close sink: %w", err)
	}
	if extra != nil {
		if err := extra.CloseSource(); err != nil && closeErr == nil {
			closeErr = fmt.Errorf("childfilter: close extra source: %w", err)
		}
	}

	if spawnErr != nil {
		return nil, spawnErr
	}
	if closeErr != nil {
		return nil, closeErr
	}
	return &ChildFilter{proc: proc}, nil
}

// SkipWaitOnClose makes Close send SIGTERM without first waiting for the
// child to exit. Encryptor uses this: the encryption tool can behave
// badly on stdin EOF during shutdown, so terminate-on-drop is preferred
// over a blocking wait.
func (c *ChildFilter) SkipWaitOnClose() { c.skipWaitOnClose = true }

// Pid returns the child's process id.
func (c *ChildFilter) Pid() int { return c.proc.Pid }

// IsRunning performs a non-blocking liveness check.
func (c *ChildFilter) IsRunning() (bool, error) { return c.proc.IsRunning() }

// Wait blocks until the child exits.
func (c *ChildFilter) Wait() (*process.ProcessState, error) {
	state, err := c.proc.Wait()
	if err == nil {
		c.lastState = state
	}
	return state, err
}

// LastState returns the ProcessState observed by the most recent Wait or
// Close call, or nil if neither has completed yet.
func (c *ChildFilter) LastState() *process.ProcessState { return c.lastState }

// Close mirrors Childprocess's destructor policy: if the child is still
// running, send SIGTERM, then wait. Calling Wait beforehand (so the child
// has already been reaped) makes Close a no-op with no signal sent.
func (c *ChildFilter) Close() error {
	if c.lastState != nil {
		return nil
	}
	if c.skipWaitOnClose {
		return c.proc.Signal(syscall.SIGTERM)
	}
	// SIGTERM to a child that has exited but is not yet reaped has no
	// effect, so it is sent unconditionally; probing with IsRunning first
	// would reap the child itself and leave Wait nothing to collect.
	if err := c.proc.Signal(syscall.SIGTERM); err != nil {
		return err
	}
	_, err := c.Wait()
	return err
}
