package image

import (
	"errors"
	"testing"

	"github.com/BackupTheBerlios/kryptocd/kerrors"
	"github.com/stretchr/testify/assert"
)

func baseOptions() Options {
	return Options{
		ImageID:            "disc",
		Passphrase:         "correct horse battery staple",
		CompressionLevel:   6,
		DiscCapacityBlocks: 334_000,
		TarExe:             "tar",
		CompressorExe:      "bzip2",
		EncryptorExe:       "gpg",
	}
}

func TestOptionsValidateAccepts(t *testing.T) {
	assert.NoError(t, baseOptions().validate())
}

func TestOptionsValidateRejectsEmptyImageID(t *testing.T) {
	o := baseOptions()
	o.ImageID = ""
	assert.True(t, errors.Is(o.validate(), kerrors.ErrBadImageID))
}

func TestOptionsValidateRejectsSlashInImageID(t *testing.T) {
	o := baseOptions()
	o.ImageID = "disc/1"
	assert.True(t, errors.Is(o.validate(), kerrors.ErrBadImageID))
}

func TestOptionsValidateRejectsNewlineInPassphrase(t *testing.T) {
	o := baseOptions()
	o.Passphrase = "bad\npassphrase"
	assert.True(t, errors.Is(o.validate(), kerrors.ErrBadPassphrase))
}

func TestOptionsValidateRejectsBadCompressionLevel(t *testing.T) {
	o := baseOptions()
	o.CompressionLevel = 42
	assert.True(t, errors.Is(o.validate(), kerrors.ErrBadCompression))
}
