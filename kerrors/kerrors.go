// Package kerrors defines the sentinel error kinds shared across the
// kryptocd packages. Callers match them with errors.Is; call sites wrap
// them with fmt.Errorf("...: %w", kerrors.Err...) to attach detail.
package kerrors

import "errors"

var (
	// ErrSpawnFailed indicates a child process could not be forked/exec'd.
	ErrSpawnFailed = errors.New("spawn failed")

	// ErrPipeFailed indicates pipe(2) or an os.Pipe equivalent failed.
	ErrPipeFailed = errors.New("pipe failed")

	// ErrOpenFailed indicates a source or sink file could not be opened.
	ErrOpenFailed = errors.New("open failed")

	// ErrSinkNotWritable indicates a write to a Sink returned a
	// non-positive byte count.
	ErrSinkNotWritable = errors.New("sink not writable")

	// ErrNoSpaceAvailable indicates a Diskspace directory rejected the
	// requested usable megabytes outright.
	ErrNoSpaceAvailable = errors.New("no space available")

	// ErrDirectoryError indicates a Diskspace directory is not usable
	// (missing, not a directory, or not writable).
	ErrDirectoryError = errors.New("directory error")

	// ErrBadImageID indicates an image id fails the naming constraints.
	ErrBadImageID = errors.New("bad image id")

	// ErrBadPassphrase indicates a passphrase fails the encryption tool's
	// constraints.
	ErrBadPassphrase = errors.New("bad passphrase")

	// ErrBadCompression indicates an unsupported compression selection.
	ErrBadCompression = errors.New("bad compression")

	// ErrBadFilename indicates a source filename is unusable inside an
	// archive (embedded NUL, path separators where none are allowed, etc).
	ErrBadFilename = errors.New("bad filename")

	// ErrCapacityTooSmall indicates the configured disc capacity cannot
	// hold even the smallest possible archive (index plus one file).
	ErrCapacityTooSmall = errors.New("capacity too small")

	// ErrArchiveWouldBeEmpty indicates every candidate file has been
	// rejected and no archive can be produced.
	ErrArchiveWouldBeEmpty = errors.New("archive would be empty")

	// ErrUnableToCreateSubdirectory indicates the per-image scratch
	// workspace could not be created under the Diskspace directory.
	ErrUnableToCreateSubdirectory = errors.New("unable to create subdirectory")

	// ErrInfoWriteFailed indicates the manifest/info file could not be
	// written.
	ErrInfoWriteFailed = errors.New("info write failed")
)
