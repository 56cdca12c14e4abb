// Package process spawns child tools (tar, bzip2, gpg, ...) with explicit
// fd remapping and tracks their lifecycle, the way
// original_source/kryptocd/source/kernel/childprocess.cpp's Childprocess
// class does: fork/exec once, then isRunning/wait/sendSignal against the
// same pid.
package process

import (
	"fmt"
	"os"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// Process is the running (or exited-but-not-yet-waited-for) handle to a
// spawned child.
type Process struct {
	Pid int
}

// Kill sends SIGKILL to the process.
func (p *Process) Kill() error {
	return p.Signal(syscall.SIGKILL)
}

// Signal sends sig to the process.
func (p *Process) Signal(sig os.Signal) error {
	if p.Pid <= 0 {
		return os.ErrInvalid
	}
	s, ok := sig.(syscall.Signal)
	if !ok {
		return os.ErrInvalid
	}
	return unix.Kill(p.Pid, s)
}

// Wait blocks until the process exits and returns its terminal state.
// It corresponds to Childprocess::wait(), which retries across
// interrupted waitpid calls; unix.Wait4 is retried here on EINTR.
func (p *Process) Wait() (*ProcessState, error) {
	if p.Pid <= 0 {
		return nil, os.ErrInvalid
	}
	var status unix.WaitStatus
	var rusage unix.Rusage
	pid, err := unix.Wait4(p.Pid, &status, 0, &rusage)
	for err == unix.EINTR {
		pid, err = unix.Wait4(p.Pid, &status, 0, &rusage)
	}
	if err != nil {
		return nil, err
	}
	return &ProcessState{pid: pid, status: status, rusage: &rusage}, nil
}

// IsRunning performs a non-blocking poll of the process, corresponding to
// Childprocess::isRunning()'s WNOHANG waitpid.
func (p *Process) IsRunning() (bool, error) {
	if p.Pid <= 0 {
		return false, os.ErrInvalid
	}
	var status unix.WaitStatus
	pid, err := unix.Wait4(p.Pid, &status, unix.WNOHANG, nil)
	if err != nil {
		return false, err
	}
	if pid == 0 {
		return true, nil
	}
	return false, nil
}

// ProcessState is a snapshot of an exited process, as reported by Wait.
type ProcessState struct {
	pid    int
	status unix.WaitStatus
	rusage *unix.Rusage
}

// Pid returns the exited process's id.
func (p *ProcessState) Pid() int { return p.pid }

// Exited reports whether the process terminated via exit(2) rather than a
// signal.
func (p *ProcessState) Exited() bool { return p.status.Exited() }

// Success reports whether the process exited with status 0.
func (p *ProcessState) Success() bool {
	return p.status.Exited() && p.status.ExitStatus() == 0
}

// ExitedAbnormally mirrors Childprocess::exitedAbnormally(): true unless
// the process exited via exit(2) with status 0.
func (p *ProcessState) ExitedAbnormally() bool {
	return !p.Success()
}

// ExitCode returns the exit code, or -1 if the process did not exit via
// exit(2).
func (p *ProcessState) ExitCode() int {
	if !p.status.Exited() {
		return -1
	}
	return p.status.ExitStatus()
}

// Sys returns the raw wait status.
func (p *ProcessState) Sys() interface{} { return p.status }

// SysUsage returns the rusage collected at wait time.
func (p *ProcessState) SysUsage() interface{} { return p.rusage }

// SystemTime returns the process's system CPU time.
func (p *ProcessState) SystemTime() time.Duration {
	if p.rusage == nil {
		return 0
	}
	return time.Duration(p.rusage.Stime.Nano())
}

// UserTime returns the process's user CPU time.
func (p *ProcessState) UserTime() time.Duration {
	if p.rusage == nil {
		return 0
	}
	return time.Duration(p.rusage.Utime.Nano())
}

func (p *ProcessState) String() string {
	if p == nil {
		return "<nil>"
	}
	status := p.status
	switch {
	case status.Exited():
		if code := status.ExitStatus(); code != 0 {
			return fmt.Sprintf("exit status %d", code)
		}
		return "exit status 0"
	case status.Signaled():
		s := status.Signal().String()
		if status.CoreDump() {
			s += " (core dumped)"
		}
		return "signal: " + s
	case status.Stopped():
		return "stop signal: " + status.StopSignal().String()
	case status.Continued():
		return "continued"
	}
	return fmt.Sprintf("unknown status: %v", status)
}
