package process

import (
	"errors"
	"fmt"
	"os"

	"github.com/BackupTheBerlios/kryptocd/kerrors"
)

// LookPathError is returned by LookPath when a candidate file name cannot
// be classified as an executable.
type LookPathError struct {
	Name string
	Err  error
}

func (e *LookPathError) Error() string {
	return "process: " + e.Name + ": " + e.Err.Error()
}

func (e *LookPathError) Unwrap() error { return e.Err }

// ExitError reports an abnormal exit by a spawned tool, mirroring
// Childprocess::exitedAbnormally().
type ExitError struct {
	*ProcessState
}

func (e *ExitError) Error() string {
	return fmt.Errorf("%w: %s", kerrors.ErrSpawnFailed, e.ProcessState.String()).Error()
}

func (e *ExitError) Unwrap() error { return kerrors.ErrSpawnFailed }

// ErrNotFound is returned when a path search fails to find an executable.
var ErrNotFound = errors.New("executable file not found in $PATH")

// ErrDot indicates a path lookup resolved to an executable in the current
// directory via an implicit or explicit "." PATH entry.
var ErrDot = errors.New("cannot run executable found relative to current directory")

func isExecutable(path string) bool {
	fi, err := os.Stat(path)
	if err != nil {
		return false
	}
	return fi.Mode().IsRegular() && fi.Mode()&0o111 != 0
}
