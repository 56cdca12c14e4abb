package endpoint

import (
	"os"
	"runtime"
)

// writeAll and readAll wrap a raw fd in an *os.File for the duration of a
// single operation without taking ownership of the fd's lifetime: the
// wrapping *os.File is never closed here, and its finalizer is disarmed,
// since the Pipe that owns the fd closes it independently.
func writeAll(fd int, buf []byte) (int, error) {
	f := os.NewFile(uintptr(fd), "test-write")
	runtime.SetFinalizer(f, nil)
	return f.Write(buf)
}

func readAll(fd int, buf []byte) error {
	f := os.NewFile(uintptr(fd), "test-read")
	runtime.SetFinalizer(f, nil)
	_, err := f.Read(buf)
	return err
}
