// Package diskspace provides a thread-safe integer-megabyte budget over a
// directory, the Go translation of
// original_source/kryptocd/source/kernel/diskspace.cpp's pthread
// mutex/condition-variable arbiter.
package diskspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BackupTheBerlios/kryptocd/kerrors"
)

// testDirName matches the original's writability probe directory name.
const testDirName = "KryptoCD_testdirectory"

// Diskspace arbitrates a fixed megabyte budget over one directory among
// concurrent Image attempts.
type Diskspace struct {
	directory string
	usable    int

	mu   sync.Mutex
	cond *sync.Cond
	free int
}

// New validates usableMegabytes and the directory's writability, then
// returns a Diskspace with its full budget free.
func New(directory string, usableMegabytes int) (*Diskspace, error) {
	if usableMegabytes <= 0 {
		return nil, fmt.Errorf("diskspace %q: usable=%d: %w", directory, usableMegabytes, kerrors.ErrNoSpaceAvailable)
	}

	probe := filepath.Join(directory, testDirName)
	if err := os.Mkdir(probe, 0o700); err != nil {
		return nil, fmt.Errorf("diskspace %q: %w: %w", directory, kerrors.ErrDirectoryError, err)
	}
	if err := os.Remove(probe); err != nil {
		return nil, fmt.Errorf("diskspace %q: %w: %w", directory, kerrors.ErrDirectoryError, err)
	}

	d := &Diskspace{
		directory: directory,
		usable:    usableMegabytes,
		free:      usableMegabytes,
	}
	d.cond = sync.NewCond(&d.mu)
	return d, nil
}

// Allocate requests n megabytes (n > 0), blocking while the budget is
// completely exhausted. It returns a positive amount k ≤ n: if less than n
// is currently free, the full current free amount is granted instead of
// blocking for the remainder.
func (d *Diskspace) Allocate(n int) int {
	if n <= 0 {
		panic("diskspace: Allocate requires n > 0")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for d.free == 0 {
		d.cond.Wait()
	}
	k := n
	if k > d.free {
		k = d.free
	}
	d.free -= k
	return k
}

// Release returns n megabytes (n > 0) to the budget and wakes every
// blocked Allocate call.
func (d *Diskspace) Release(n int) {
	if n <= 0 {
		panic("diskspace: Release requires n > 0")
	}
	d.mu.Lock()
	d.free += n
	if d.free > d.usable {
		d.mu.Unlock()
		panic("diskspace: Release overshoots usable budget")
	}
	d.mu.Unlock()
	d.cond.Broadcast()
}

// GetFree returns a snapshot of the currently free megabytes.
func (d *Diskspace) GetFree() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.free
}

// GetUsable returns the total configured megabyte budget.
func (d *Diskspace) GetUsable() int { return d.usable }

// GetDirectory returns the arbitrated directory path.
func (d *Diskspace) GetDirectory() string { return d.directory }
