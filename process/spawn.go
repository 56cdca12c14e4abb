package process

import (
	"fmt"
	"os"
	"runtime"

	"github.com/BackupTheBerlios/kryptocd/kerrors"
)

// borrowFile wraps an existing fd in an *os.File without taking ownership
// of it. os.NewFile attaches a finalizer that closes the fd when the
// wrapper is garbage collected; since fd is still owned by whatever
// Source/Sink/Pipe handed it to us, that finalizer would race an unrelated
// future open of the same fd number. Disarming it immediately makes the
// wrapper a pure view.
func borrowFile(fd uintptr, name string) *os.File {
	f := os.NewFile(fd, name)
	runtime.SetFinalizer(f, nil)
	return f
}

// FdMap maps a target file descriptor number in the child to the current
// file descriptor number in this process, mirroring
// Childprocess's childToParentFdMap constructor argument: fd_map[1] =
// open(...) redirects the child's stdout to an already-open file.
type FdMap map[int]uintptr

// BuildChildFiles turns a sparse FdMap into the dense, positional
// []*os.File that os.StartProcess's ProcAttr.Files expects: index i of the
// result becomes file descriptor i in the child, with a nil entry leaving
// that descriptor closed. This is a pure function (it only wraps existing
// fd numbers, never duplicates or closes one) so the fd layout logic can be
// unit- and property-tested without spawning anything.
//
// When shareStderr is true and the caller has not already mapped fd 2, fd
// 2 is mapped to this process's own stderr, matching Childprocess's
// shareStderr default.
func BuildChildFiles(fdMap FdMap, shareStderr bool) []*os.File {
	merged := make(FdMap, len(fdMap)+1)
	for childFd, parentFd := range fdMap {
		merged[childFd] = parentFd
	}
	if shareStderr {
		if _, ok := merged[2]; !ok {
			merged[2] = os.Stderr.Fd()
		}
	}

	maxFd := -1
	for childFd := range merged {
		if childFd > maxFd {
			maxFd = childFd
		}
	}

	files := make([]*os.File, maxFd+1)
	for childFd, parentFd := range merged {
		files[childFd] = borrowFile(parentFd, fmt.Sprintf("childfd%d", childFd))
	}
	return files
}

// Spawn forks and execs executableFile, the way Childprocess's constructor
// does. arg[0] must be the program name the child should see, matching the
// original's "inclusion of proper executable name as arg[0] is mandatory."
// fdMap wires up the child's stdin/stdout/extra descriptors; all other
// inherited descriptors are closed by virtue of not appearing in the
// resulting ProcAttr.Files.
func Spawn(executableFile string, arg []string, fdMap FdMap, shareStderr bool) (*Process, error) {
	path, err := LookPath(executableFile)
	if err != nil {
		return nil, fmt.Errorf("spawn %s: %w: %w", executableFile, kerrors.ErrSpawnFailed, err)
	}

	files := BuildChildFiles(fdMap, shareStderr)
	osProc, err := os.StartProcess(path, arg, &os.ProcAttr{Files: files})
	if err != nil {
		return nil, fmt.Errorf("spawn %s: %w: %w", executableFile, kerrors.ErrSpawnFailed, err)
	}
	return &Process{Pid: osProc.Pid}, nil
}
