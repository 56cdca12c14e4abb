// Package image implements the iterative fit-and-retry algorithm
// described in original_source/kryptocd/source/kernel/image.hh and
// image_single_file.hh: build a trial archive, observe what actually
// fits, shrink the file set, retry, and finally commit a manifest.
package image

import (
	"fmt"
	"strings"

	"github.com/BackupTheBerlios/kryptocd/archive"
	"github.com/BackupTheBerlios/kryptocd/kerrors"
)

// Numeric constants from the design-level data model.
const (
	blockSize      = 2048    // bytes per optical-media block
	megabyte       = 1 << 20 // bytes
	reservedBlocks = 40      // reserved-blocks-for-filesystem-overhead
)

// Options parameterizes one Image attempt: the tool executables, the
// compression/encryption configuration, and the disc capacity.
type Options struct {
	ImageID             string
	Passphrase          string
	CompressionLevel    int
	DiscCapacityBlocks  int
	TarExe              string
	CompressorExe       string
	EncryptorExe        string

	// EncryptionOverheadPerByte is a small multiplicative safety margin
	// applied to archive_max_bytes at Reserving time, derived by
	// EncryptionOverheadBytes. Zero reproduces the base formula exactly.
	EncryptionOverheadPerByte float64
}

func (o Options) validate() error {
	if o.ImageID == "" || strings.ContainsAny(o.ImageID, "/\x00") {
		return fmt.Errorf("image id %q: %w", o.ImageID, kerrors.ErrBadImageID)
	}
	if strings.Contains(o.Passphrase, "\n") {
		return fmt.Errorf("passphrase contains newline: %w", kerrors.ErrBadPassphrase)
	}
	if !archive.ValidCompressionLevel(o.CompressionLevel) {
		return fmt.Errorf("compression level %d: %w", o.CompressionLevel, kerrors.ErrBadCompression)
	}
	return nil
}
