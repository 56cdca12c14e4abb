// Package archive implements the three-stage tar/compress/encrypt
// pipeline (TarCreator/TarLister, Compressor/Encryptor, ArchiveCreator/
// ArchiveLister) described in original_source/kryptocd/source/kernel/
// tar_creator.cc, tar_lister.cc, compressor.cc, encryptor.cc,
// archive_creator.cc and archive_lister.cc.
package archive

import (
	"bufio"
	"fmt"
	"os"
	"runtime"

	"github.com/BackupTheBerlios/kryptocd/childfilter"
	"github.com/BackupTheBerlios/kryptocd/endpoint"
	"github.com/BackupTheBerlios/kryptocd/worker"
)

// borrowFile wraps an fd already owned by a Pipe/Source/Sink for I/O,
// without taking ownership of it. os.NewFile's finalizer is disarmed
// immediately so it never closes a fd number the real owner has since
// reused.
func borrowFile(fd uintptr, name string) *os.File {
	f := os.NewFile(fd, name)
	runtime.SetFinalizer(f, nil)
	return f
}

// tarCreateArgv is the archiver invocation for create mode, per the
// external tool contract: NUL-delimited names in, archive bytes out, no
// recursion, absolute paths with their leading slash stripped.
func tarCreateArgv(exe string) []string {
	return []string{exe, "--create", "--file=-", "--numeric-owner", "--no-recursion", "--files-from=-", "--null"}
}

func tarListArgv(exe string) []string {
	return []string{exe, "--list", "--file=-"}
}

// TarCreator feeds a NUL-delimited file list into the archiver's stdin on
// a worker goroutine while the archiver streams the resulting archive to
// sink.
type TarCreator struct {
	filter   *childfilter.ChildFilter
	w        worker.Worker
	writeErr error
}

// NewTarCreator copies files (decoupling its lifetime from the caller),
// spawns the archiver in create mode, and starts the name-feeding worker.
func NewTarCreator(tarExe string, files []string, sink endpoint.Sink) (*TarCreator, error) {
	owned := append([]string(nil), files...)

	pipe, err := endpoint.NewPipe()
	if err != nil {
		return nil, err
	}

	filter, err := childfilter.New(tarExe, tarCreateArgv(tarExe), pipe.Source(), sink)
	if err != nil {
		return nil, err
	}

	tc := &TarCreator{filter: filter}
	startErr := tc.w.Start(func() {
		tc.w.Mu.Lock()
		defer tc.w.Mu.Unlock()
		f := borrowFile(uintptr(pipe.SinkFd()), "tar-names")
		for _, path := range owned {
			if _, werr := f.WriteString(path); werr != nil {
				tc.writeErr = werr
				break
			}
			if _, werr := f.Write([]byte{0}); werr != nil {
				tc.writeErr = werr
				break
			}
		}
		pipe.CloseSink()
	})
	if startErr != nil {
		return nil, startErr
	}
	return tc, nil
}

// Close reaps the archiver (terminating it first if it is still running,
// the way a truncated-pipeline teardown requires; a no-op signal if it
// has already exited naturally) and joins the name-feeding worker,
// returning the first error observed from either.
func (tc *TarCreator) Close() error {
	err := tc.filter.Close()
	tc.w.Join()
	if err != nil {
		return fmt.Errorf("tar creator: close: %w", err)
	}
	if state := tc.filter.LastState(); state != nil && state.ExitedAbnormally() {
		return fmt.Errorf("tar creator: archiver exited abnormally: %s", state)
	}
	if tc.writeErr != nil {
		return fmt.Errorf("tar creator: write file list: %w", tc.writeErr)
	}
	return nil
}

// TarLister reads newline-delimited entries from the archiver's stdout
// (via an internal pipe and a reading worker) as it lists an archive fed
// in on source.
type TarLister struct {
	filter *childfilter.ChildFilter
	w      worker.Worker

	entries  []string
	finished bool
}

// NewTarLister spawns the archiver in list mode, reading archive bytes
// from source and publishing the entries it reports.
func NewTarLister(tarExe string, source endpoint.Source) (*TarLister, error) {
	pipe, err := endpoint.NewPipe()
	if err != nil {
		return nil, err
	}

	filter, err := childfilter.New(tarExe, tarListArgv(tarExe), source, pipe.Sink())
	if err != nil {
		return nil, err
	}

	tl := &TarLister{filter: filter}
	if startErr := tl.w.Start(func() {
		f := borrowFile(uintptr(pipe.Fd()), "tar-entries")
		scanner := bufio.NewScanner(f)
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		pipe.CloseSource()

		tl.w.Mu.Lock()
		tl.entries = lines
		tl.finished = true
		tl.w.Mu.Unlock()
	}); startErr != nil {
		return nil, startErr
	}
	return tl, nil
}

// GetFileList blocks until the archiver exits and the reading worker has
// published its result, then returns the accumulated entries. The
// returned slice is a borrowed view valid while the TarLister is alive.
func (tl *TarLister) GetFileList() ([]string, error) {
	state, err := tl.filter.Wait()
	tl.w.Join()
	if err != nil {
		return nil, fmt.Errorf("tar lister: wait: %w", err)
	}
	if state != nil && state.ExitedAbnormally() {
		return nil, fmt.Errorf("tar lister: archiver exited abnormally: %s", state)
	}

	tl.w.Mu.Lock()
	defer tl.w.Mu.Unlock()
	return tl.entries, nil
}

// Close tears down the archiver and reader worker without requiring the
// caller to have called GetFileList first.
func (tl *TarLister) Close() error {
	err := tl.filter.Close()
	tl.w.Join()
	return err
}
