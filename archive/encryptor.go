package archive

import (
	"fmt"
	"strconv"

	"github.com/BackupTheBerlios/kryptocd/childfilter"
	"github.com/BackupTheBerlios/kryptocd/endpoint"
	"github.com/BackupTheBerlios/kryptocd/kerrors"
)

// Encryptor is a ChildFilter around the encryption tool, delivering the
// passphrase over a dedicated inherited descriptor (childfilter.ExtraFd)
// rather than via argv or the environment, per the original's passphrase
// delivery design note.
type Encryptor struct {
	filter *childfilter.ChildFilter
}

// NewEncryptor spawns the encryption tool in symmetric-encrypt mode
// (decrypt=false) or default/decrypt mode (decrypt=true), writing
// passphrase to a fresh pipe whose source becomes the child's extra
// inbound descriptor.
func NewEncryptor(encryptorExe, passphrase string, decrypt bool, source endpoint.Source, sink endpoint.Sink) (*Encryptor, error) {
	passPipe, err := endpoint.NewPipe()
	if err != nil {
		return nil, err
	}

	fdArg := fmt.Sprintf("--passphrase-fd=%s", strconv.Itoa(childfilter.ExtraFd))
	var argv []string
	if decrypt {
		argv = []string{encryptorExe, fdArg}
	} else {
		argv = []string{encryptorExe, "--symmetric", fdArg}
	}

	if err := writePassphrase(passPipe, passphrase); err != nil {
		passPipe.Close()
		return nil, err
	}

	filter, err := childfilter.NewWithExtra(encryptorExe, argv, source, sink, passPipe.Source())
	if err != nil {
		return nil, err
	}
	filter.SkipWaitOnClose()
	return &Encryptor{filter: filter}, nil
}

// writePassphrase writes passphrase to the pipe's sink, tolerating
// partial writes but treating any non-positive write as fatal, then
// closes the sink so the child observes EOF.
func writePassphrase(p *endpoint.Pipe, passphrase string) error {
	f := borrowFile(uintptr(p.SinkFd()), "passphrase")
	buf := []byte(passphrase)
	for len(buf) > 0 {
		n, err := f.Write(buf)
		if n <= 0 {
			p.CloseSink()
			if err == nil {
				err = fmt.Errorf("write returned %d bytes", n)
			}
			return fmt.Errorf("encryptor: write passphrase: %w: %w", kerrors.ErrPipeFailed, err)
		}
		buf = buf[n:]
	}
	return p.CloseSink()
}

// Wait blocks until the encryption tool exits. Unlike the other filters,
// Close does not implicitly wait; callers that need to observe a clean
// exit call Wait explicitly.
func (e *Encryptor) Wait() error {
	state, err := e.filter.Wait()
	if err != nil {
		return fmt.Errorf("encryptor: wait: %w", err)
	}
	if state.ExitedAbnormally() {
		return fmt.Errorf("encryptor: %w: %s", kerrors.ErrSpawnFailed, state)
	}
	return nil
}

// Close sends SIGTERM without waiting, per the original's note that the
// encryption tool can behave badly on stdin EOF during shutdown.
func (e *Encryptor) Close() error {
	return e.filter.Close()
}
