package image

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BackupTheBerlios/kryptocd/archive"
	"github.com/BackupTheBerlios/kryptocd/endpoint"
	"github.com/google/uuid"
)

// sampleBytes is the plaintext sample size used to measure encryption
// overhead. Large enough that per-byte overhead dominates any fixed
// header/footer cost, small enough to run quickly.
const sampleBytes = 1 << 16

// EncryptionOverheadBytes measures the encryption tool's per-sample byte
// overhead by encrypting a known-length all-zero buffer through a real
// Encryptor and comparing input and output sizes, the same method
// original_source/kryptocd/research/gpg-size/check_gpg_size.cc used for
// bzip2+gpg. Callers run it once per encryption tool/passphrase and feed
// sampleOverhead/sampleBytes into Options.EncryptionOverheadPerByte.
func EncryptionOverheadBytes(encryptorExe, passphrase string) (int, error) {
	dir, err := os.MkdirTemp("", "kryptocd-overhead-")
	if err != nil {
		return 0, fmt.Errorf("encryption overhead: %w", err)
	}
	defer os.RemoveAll(dir)

	outPath := filepath.Join(dir, uuid.NewString()+".gpg")
	sink, err := endpoint.CreateFileSink(outPath, 0o600)
	if err != nil {
		return 0, err
	}

	pipe, err := endpoint.NewPipe()
	if err != nil {
		sink.CloseSink()
		return 0, err
	}

	enc, err := archive.NewEncryptor(encryptorExe, passphrase, false, pipe.Source(), sink)
	if err != nil {
		return 0, err
	}

	f := borrowFile(uintptr(pipe.SinkFd()), "overhead-writer")
	buf := make([]byte, sampleBytes)
	written := 0
	for written < len(buf) {
		n, werr := f.Write(buf[written:])
		if n <= 0 {
			pipe.CloseSink()
			if werr == nil {
				werr = fmt.Errorf("write returned %d bytes", n)
			}
			return 0, fmt.Errorf("encryption overhead: write sample: %w", werr)
		}
		written += n
	}
	pipe.CloseSink()

	if err := enc.Wait(); err != nil {
		return 0, fmt.Errorf("encryption overhead: %w", err)
	}

	fi, err := os.Stat(outPath)
	if err != nil {
		return 0, fmt.Errorf("encryption overhead: %w", err)
	}

	overhead := int(fi.Size()) - sampleBytes
	if overhead < 0 {
		overhead = 0
	}
	return overhead, nil
}
