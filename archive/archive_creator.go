package archive

import (
	"sync"

	"github.com/BackupTheBerlios/kryptocd/endpoint"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
)

// ArchiveCreator wires TarCreator, Compressor, and Encryptor into a
// linear pipeline via two internal Pipes: TarCreator(files) → P1 →
// Compressor → P2 → Encryptor → sink. It is the sole owner of its three
// stages and two Pipes; the caller-supplied sink is borrowed and closed
// during construction, never owned.
type ArchiveCreator struct {
	tar        *TarCreator
	compressor *Compressor
	encryptor  *Encryptor
}

// NewArchiveCreator constructs the pipeline. On any construction-stage
// failure, stages already built are torn down before the error is
// returned.
func NewArchiveCreator(tarExe string, files []string, compressorExe string, level int, encryptorExe, passphrase string, sink endpoint.Sink) (*ArchiveCreator, error) {
	p1, err := endpoint.NewPipe()
	if err != nil {
		return nil, err
	}
	p2, err := endpoint.NewPipe()
	if err != nil {
		return nil, err
	}

	tc, err := NewTarCreator(tarExe, files, p1.Sink())
	if err != nil {
		return nil, err
	}
	co, err := NewCompressor(compressorExe, level, p1.Source(), p2.Sink())
	if err != nil {
		tc.Close()
		return nil, err
	}
	en, err := NewEncryptor(encryptorExe, passphrase, false, p2.Source(), sink)
	if err != nil {
		tc.Close()
		co.Close()
		return nil, err
	}

	return &ArchiveCreator{tar: tc, compressor: co, encryptor: en}, nil
}

// Close first waits for the encryptor to finish flushing its output
// normally; it only exits once the upstream tar and compressor stages
// have drained into it. The three stages are then reaped concurrently.
// Use Abort instead when the pipeline is being cut short (the
// disc-capacity cap was hit mid-stream) and downstream stages may still
// be blocked trying to write more than the sink will ever read.
func (ac *ArchiveCreator) Close() error {
	encErr := ac.encryptor.Wait()
	return ac.reap(func() error { return encErr })
}

// Abort force-terminates the still-running encryptor instead of waiting
// for it to finish naturally, for the truncated-archive teardown path.
// TarCreator and Compressor reap identically either way: their Close
// terminates them first only if they are still running.
func (ac *ArchiveCreator) Abort() error {
	return ac.reap(ac.encryptor.Close)
}

func (ac *ArchiveCreator) reap(reapEncryptor func() error) error {
	var (
		mu     sync.Mutex
		result error
		g      errgroup.Group
	)
	collect := func(err error) {
		if err == nil {
			return
		}
		mu.Lock()
		result = multierror.Append(result, err)
		mu.Unlock()
	}

	g.Go(func() error { collect(ac.tar.Close()); return nil })
	g.Go(func() error { collect(ac.compressor.Close()); return nil })
	g.Go(func() error { collect(reapEncryptor()); return nil })
	g.Wait()

	return result
}
