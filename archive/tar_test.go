package archive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/BackupTheBerlios/kryptocd/endpoint"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestTarCreatorThenTarListerRoundTrip(t *testing.T) {
	dir := t.TempDir()
	a := writeTempFile(t, dir, "a.txt", "hello")
	b := writeTempFile(t, dir, "b.txt", "world")

	archivePipe, err := endpoint.NewPipe()
	require.NoError(t, err)

	tc, err := NewTarCreator("tar", []string{a, b}, archivePipe.Sink())
	require.NoError(t, err)

	tl, err := NewTarLister("tar", archivePipe.Source())
	require.NoError(t, err)

	entries, err := tl.GetFileList()
	require.NoError(t, err)
	require.NoError(t, tc.Close())

	require.Len(t, entries, 2)
	require.Contains(t, entries[0], "a.txt")
	require.Contains(t, entries[1], "b.txt")
}
