package image

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/BackupTheBerlios/kryptocd/diskspace"
	"github.com/stretchr/testify/require"
)

func writeSourceFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func testOptions(imageID string) Options {
	return Options{
		ImageID:            imageID,
		Passphrase:         "test-phrase",
		CompressionLevel:   6,
		DiscCapacityBlocks: 1_000_000, // ~2 GiB, comfortably fits a few small files
		TarExe:             "tar",
		CompressorExe:      "bzip2",
		EncryptorExe:       "gpg",
	}
}

func TestImageNewCommitsAllFittingFiles(t *testing.T) {
	workDir := t.TempDir()
	ds, err := diskspace.New(workDir, 50)
	require.NoError(t, err)

	srcDir := t.TempDir()
	a := writeSourceFile(t, srcDir, "a.txt", "payload-one")
	b := writeSourceFile(t, srcDir, "b.txt", "payload-two")

	remaining := []string{a, b}
	rejects := &RejectLists{}

	img, err := New(ds, testOptions("disc"), &remaining, rejects)
	require.NoError(t, err)
	defer img.Close()

	require.Empty(t, remaining)
	require.Empty(t, rejects.TooLarge)
	require.Empty(t, rejects.PermissionDenied)
	require.Empty(t, rejects.BadName)

	manifest := img.Manifest()
	require.ElementsMatch(t, []string{a, b}, manifest.Files)

	_, err = os.Stat(img.ArchivePath())
	require.NoError(t, err)
	_, err = os.Stat(img.IndexPath())
	require.NoError(t, err)

	require.NoError(t, img.Close())
	require.Equal(t, ds.GetUsable(), ds.GetFree())

	_, err = os.Stat(img.ArchivePath())
	require.Error(t, err)
}

func TestImageNewRejectsEmptyInput(t *testing.T) {
	workDir := t.TempDir()
	ds, err := diskspace.New(workDir, 50)
	require.NoError(t, err)

	remaining := []string{}
	rejects := &RejectLists{}
	_, err = New(ds, testOptions("disc"), &remaining, rejects)
	require.Error(t, err)
}

func TestImageNewRejectsMissingFile(t *testing.T) {
	workDir := t.TempDir()
	ds, err := diskspace.New(workDir, 50)
	require.NoError(t, err)

	remaining := []string{filepath.Join(t.TempDir(), "nope.txt")}
	rejects := &RejectLists{}
	_, err = New(ds, testOptions("disc"), &remaining, rejects)
	require.Error(t, err)
	require.Len(t, rejects.PermissionDenied, 1)
}

func TestRunAllCommitsInOneImageWhenCapacityAllows(t *testing.T) {
	workDir := t.TempDir()
	ds, err := diskspace.New(workDir, 50)
	require.NoError(t, err)

	srcDir := t.TempDir()
	a := writeSourceFile(t, srcDir, "a.txt", "payload-one")
	b := writeSourceFile(t, srcDir, "b.txt", "payload-two")

	run := NewRun(ds, []string{a, b})
	require.NoError(t, run.All(context.Background(), testOptions("disc")))
	defer run.Close()

	require.Empty(t, run.Files)
	require.Len(t, run.Manifests, 1)
	require.ElementsMatch(t, []string{a, b}, run.Manifests[0].Files)
}
