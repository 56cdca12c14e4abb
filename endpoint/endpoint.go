// Package endpoint provides the small capability interfaces that the rest
// of kryptocd passes data through: a Source can be read from and a Sink
// can be written to, each exposing the underlying file descriptor so a
// process package caller can remap it into a child process.
package endpoint

// Source is a readable endpoint with an exposed file descriptor. It is
// deliberately narrow: callers that only need to pump bytes or hand a fd
// to a child process never need the concrete type behind it.
type Source interface {
	// Fd returns the underlying file descriptor, or -1 if the source has
	// been closed.
	Fd() int

	// Open reports whether the source is still usable.
	Open() bool

	// CloseSource closes the read end. Calling it twice is a no-op.
	CloseSource() error
}

// Sink is a writable endpoint with an exposed file descriptor.
type Sink interface {
	// Fd returns the underlying file descriptor, or -1 if the sink has
	// been closed.
	Fd() int

	// Open reports whether the sink is still usable.
	Open() bool

	// CloseSink closes the write end. Calling it twice is a no-op.
	CloseSink() error
}
