package archive

import (
	"sync"

	"github.com/BackupTheBerlios/kryptocd/endpoint"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
)

// ArchiveLister is ArchiveCreator's dual: Encryptor(decrypt) → Compressor
// (decompress) → TarLister, chained via two internal Pipes.
type ArchiveLister struct {
	encryptor  *Encryptor
	compressor *Compressor
	tarLister  *TarLister
}

// NewArchiveLister constructs the pipeline reading an encrypted,
// compressed archive from source.
func NewArchiveLister(encryptorExe, passphrase string, source endpoint.Source, compressorExe, tarExe string) (*ArchiveLister, error) {
	p1, err := endpoint.NewPipe()
	if err != nil {
		return nil, err
	}
	p2, err := endpoint.NewPipe()
	if err != nil {
		return nil, err
	}

	en, err := NewEncryptor(encryptorExe, passphrase, true, source, p1.Sink())
	if err != nil {
		return nil, err
	}
	co, err := NewCompressor(compressorExe, 0, p1.Source(), p2.Sink())
	if err != nil {
		en.Close()
		return nil, err
	}
	tl, err := NewTarLister(tarExe, p2.Source())
	if err != nil {
		en.Close()
		co.Close()
		return nil, err
	}

	return &ArchiveLister{encryptor: en, compressor: co, tarLister: tl}, nil
}

// GetFileList delegates to the TarLister stage, per the spec.
func (al *ArchiveLister) GetFileList() ([]string, error) {
	return al.tarLister.GetFileList()
}

// Close reaps all three stages concurrently, aggregating every error
// observed.
func (al *ArchiveLister) Close() error {
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

	g.Go(func() error { collect(al.encryptor.Wait()); return nil })
	g.Go(func() error { collect(al.compressor.Close()); return nil })
	g.Go(func() error { collect(al.tarLister.Close()); return nil })
	g.Wait()

	return result
}
