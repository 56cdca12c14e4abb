package archive

import (
	"path/filepath"
	"testing"

	"github.com/BackupTheBerlios/kryptocd/endpoint"
	"github.com/stretchr/testify/require"
)

func TestArchiveCreatorThenArchiveListerRoundTrip(t *testing.T) {
	dir := t.TempDir()
	a := writeTempFile(t, dir, "a.txt", "payload-one")

	outPath := filepath.Join(dir, "out.tar.bz2.gpg")
	sink, err := endpoint.CreateFileSink(outPath, 0o644)
	require.NoError(t, err)

	creator, err := NewArchiveCreator("tar", []string{a}, "bzip2", 6, "gpg", "test-phrase", sink)
	require.NoError(t, err)
	require.NoError(t, creator.Close())

	source, err := endpoint.OpenFileSource(outPath)
	require.NoError(t, err)

	lister, err := NewArchiveLister("gpg", "test-phrase", source, "bzip2", "tar")
	require.NoError(t, err)

	entries, err := lister.GetFileList()
	require.NoError(t, err)
	require.NoError(t, lister.Close())

	require.Len(t, entries, 1)
	require.Contains(t, entries[0], "a.txt")
}

func TestValidCompressionLevel(t *testing.T) {
	require.True(t, ValidCompressionLevel(1))
	require.True(t, ValidCompressionLevel(9))
	require.False(t, ValidCompressionLevel(0))
	require.False(t, ValidCompressionLevel(10))
}
