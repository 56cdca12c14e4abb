package endpoint

import (
	"fmt"
	"os"

	"github.com/BackupTheBerlios/kryptocd/kerrors"
)

// FileSource is a Source backed by a file opened for reading.
type FileSource struct {
	f *os.File
}

// OpenFileSource opens path for reading.
func OpenFileSource(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file source %q: %w: %w", path, kerrors.ErrOpenFailed, err)
	}
	return &FileSource{f: f}, nil
}

// Fd returns the descriptor, or -1 once closed.
func (s *FileSource) Fd() int {
	if s.f == nil {
		return -1
	}
	return int(s.f.Fd())
}

// Open reports whether the file is still open.
func (s *FileSource) Open() bool { return s.f != nil }

// CloseSource closes the file. Idempotent.
func (s *FileSource) CloseSource() error {
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}

// FileSink is a Sink backed by a file opened for writing.
type FileSink struct {
	f *os.File
}

// CreateFileSink creates (or truncates) path for writing.
func CreateFileSink(path string, perm os.FileMode) (*FileSink, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return nil, fmt.Errorf("create file sink %q: %w: %w", path, kerrors.ErrOpenFailed, err)
	}
	return &FileSink{f: f}, nil
}

// Fd returns the descriptor, or -1 once closed.
func (s *FileSink) Fd() int {
	if s.f == nil {
		return -1
	}
	return int(s.f.Fd())
}

// Open reports whether the file is still open.
func (s *FileSink) Open() bool { return s.f != nil }

// CloseSink closes the file. Idempotent.
func (s *FileSink) CloseSink() error {
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}
