package image

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BackupTheBerlios/kryptocd/archive"
	"github.com/BackupTheBerlios/kryptocd/diskspace"
	"github.com/BackupTheBerlios/kryptocd/endpoint"
	"github.com/BackupTheBerlios/kryptocd/internal/logging"
	"github.com/BackupTheBerlios/kryptocd/iopump"
	"github.com/BackupTheBerlios/kryptocd/kerrors"
	"github.com/google/uuid"
)

// borrowFile wraps an fd already owned by a Pipe/Source/Sink for I/O,
// without taking ownership of it. os.NewFile's finalizer is disarmed
// immediately so it never closes a fd number the real owner has since
// reused.
func borrowFile(fd uintptr, name string) *os.File {
	f := os.NewFile(fd, name)
	runtime.SetFinalizer(f, nil)
	return f
}

// archiveFileName is the suggested on-disk name for the committed
// archive; any name is acceptable since nothing outside this package
// reads it by name.
const archiveFileName = "kryptocd_archive.tar.bz2.gpg"

// Image is one disc's worth of committed output: an archive file and an
// encrypted index file under a workspace directory, plus the in-memory
// manifest of what it contains. It implements the Validating → Reserving
// → Probing → Refining → Committing → Ready state machine.
type Image struct {
	opts      Options
	ds        *diskspace.Diskspace
	workspace string

	archivePath string
	indexPath   string

	allocatedMegabytes int
	committedFiles     []string
	closed             bool
}

// New validates opts and the candidate paths in *remaining, reserves disk
// budget, and runs Probing/Refining to completion, committing a manifest
// on success. On any failure, *remaining and *rejects reflect whatever
// permanent categorization already happened (permission-denied and
// too-large discoveries are not undone), and the allocated workspace and
// disk budget are released.
func New(ds *diskspace.Diskspace, opts Options, remaining *[]string, rejects *RejectLists) (*Image, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	*remaining = validateFiles(*remaining, rejects)
	if len(*remaining) == 0 {
		return nil, kerrors.ErrArchiveWouldBeEmpty
	}

	res := computeReservation(opts.DiscCapacityBlocks, ds.GetUsable())

	workspace := filepath.Join(ds.GetDirectory(), opts.ImageID)
	if err := os.Mkdir(workspace, 0o700); err != nil {
		return nil, fmt.Errorf("image %s: %w: %w", opts.ImageID, kerrors.ErrUnableToCreateSubdirectory, err)
	}

	allocated := ds.Allocate(res.imageMaxMegabytes)
	logging.Debugf("image %s: reserved %d MiB (of %d requested)", opts.ImageID, allocated, res.imageMaxMegabytes)

	img := &Image{
		opts:               opts,
		ds:                 ds,
		workspace:          workspace,
		archivePath:        filepath.Join(workspace, archiveFileName),
		indexPath:          filepath.Join(workspace, opts.ImageID+".gpg"),
		allocatedMegabytes: allocated,
	}

	for {
		maxBytes := archiveMaxBytes(res.imageMaxBlocks, *remaining, opts.EncryptionOverheadPerByte)
		if maxBytes <= 0 {
			img.teardown()
			return nil, fmt.Errorf("image %s: %w", opts.ImageID, kerrors.ErrCapacityTooSmall)
		}

		committed, fits, err := img.probeAndRefine(remaining, maxBytes, rejects)
		if err != nil {
			img.teardown()
			return nil, err
		}
		if fits {
			img.committedFiles = committed
			break
		}

		// The file list was reduced to nothing: its head is too large to
		// fit on its own. Reject it and restart the whole attempt with
		// whatever remains, per the latest-revision intent that a file
		// is only rejected after a probing pass with it as the head has
		// empirically failed to fit.
		rejects.TooLarge = append(rejects.TooLarge, (*remaining)[0])
		*remaining = (*remaining)[1:]
		if len(*remaining) == 0 {
			img.teardown()
			return nil, kerrors.ErrArchiveWouldBeEmpty
		}
	}

	if err := img.commit(); err != nil {
		img.teardown()
		return nil, err
	}

	removeMatching(remaining, img.committedFiles)
	logging.Infof("image %s: committed %d files", opts.ImageID, len(img.committedFiles))
	return img, nil
}

// Manifest returns this image's committed manifest.
func (img *Image) Manifest() Manifest {
	return Manifest{ImageID: img.opts.ImageID, Files: img.committedFiles}
}

// ArchivePath returns the path of the committed archive file, valid
// until Close is called. Handing this and IndexPath to an ISO-9660
// emitter and disc burner is the caller's responsibility.
func (img *Image) ArchivePath() string { return img.archivePath }

// IndexPath returns the path of the committed encrypted index file,
// valid until Close is called.
func (img *Image) IndexPath() string { return img.indexPath }

// probeAndRefine runs the Probing/Refining cycle against a snapshot of
// *remaining, mutating *remaining and rejects as permission-denied files
// are discovered along the way. It returns the committed set and true
// once an attempt fits; it returns (nil, false, nil) once refining
// reduces the working set to nothing (caller must reject the head of
// *remaining and restart).
func (img *Image) probeAndRefine(remaining *[]string, maxBytes int64, rejects *RejectLists) ([]string, bool, error) {
	working := append([]string(nil), (*remaining)...)
	reductions := 0

	for {
		entries, bytesSoFar, eof, err := img.runOneAttempt(working, maxBytes)
		if err != nil {
			return nil, false, err
		}

		entrySet := make(map[string]bool, len(entries))
		for _, e := range entries {
			entrySet[e] = true
		}
		for _, e := range entries {
			if !matchesAny(working, e) {
				return nil, false, fmt.Errorf("image %s: lister entry %q not in attempted set: %w", img.opts.ImageID, e, kerrors.ErrBadFilename)
			}
		}

		var stillFits []string
		for _, w := range working {
			if entrySet[strings.TrimPrefix(w, "/")] {
				stillFits = append(stillFits, w)
			} else {
				rejects.PermissionDenied = append(rejects.PermissionDenied, w)
				removeMatching(remaining, []string{w})
			}
		}
		working = stillFits

		if eof {
			logging.Debugf("image %s: probe fit %d files in %d bytes", img.opts.ImageID, len(working), bytesSoFar)
			return working, true, nil
		}

		reductions++
		if reductions == 1 {
			if len(working) == 0 {
				return nil, false, nil
			}
			working = working[:len(working)-1]
		} else {
			working = working[:len(working)/2]
		}
		logging.Debugf("image %s: archive truncated at %d bytes, reducing to %d files", img.opts.ImageID, bytesSoFar, len(working))
		if len(working) == 0 {
			return nil, false, nil
		}
	}
}

func matchesAny(working []string, entry string) bool {
	for _, w := range working {
		if strings.TrimPrefix(w, "/") == entry {
			return true
		}
	}
	return false
}

// runOneAttempt builds one trial ArchiveCreator → IoPump → {disk file,
// ArchiveLister} pipeline over working, pumps up to maxBytes, and
// reports what the lister saw along with whether EOF was reached before
// the cap. Each attempt writes to its own uuid-named scratch file so a
// truncated attempt never collides with the next, or with a
// still-being-read-from file of a previous attempt; the scratch file is
// promoted to img.archivePath only once an attempt fits.
func (img *Image) runOneAttempt(working []string, maxBytes int64) (entries []string, bytesSoFar int64, eof bool, err error) {
	scratchPath := filepath.Join(img.workspace, "attempt-"+uuid.NewString()+".tmp")
	diskSink, err := endpoint.CreateFileSink(scratchPath, 0o600)
	if err != nil {
		return nil, 0, false, err
	}
	defer os.Remove(scratchPath)

	outPipe, err := endpoint.NewPipe()
	if err != nil {
		diskSink.CloseSink()
		return nil, 0, false, err
	}
	listerPipe, err := endpoint.NewPipe()
	if err != nil {
		diskSink.CloseSink()
		outPipe.Close()
		return nil, 0, false, err
	}

	creator, err := archive.NewArchiveCreator(img.opts.TarExe, working, img.opts.CompressorExe, img.opts.CompressionLevel, img.opts.EncryptorExe, img.opts.Passphrase, outPipe.Sink())
	if err != nil {
		diskSink.CloseSink()
		listerPipe.Close()
		return nil, 0, false, err
	}
	lister, err := archive.NewArchiveLister(img.opts.EncryptorExe, img.opts.Passphrase, listerPipe.Source(), img.opts.CompressorExe, img.opts.TarExe)
	if err != nil {
		creator.Abort()
		diskSink.CloseSink()
		return nil, 0, false, err
	}

	pump := iopump.New(outPipe.Source())
	pump.AddSink(diskSink)
	pump.AddSink(listerPipe.Sink())

	allocatedBytes := int64(img.allocatedMegabytes) * megabyte
	for {
		budget := maxBytes - bytesSoFar
		if allocatedBytes-bytesSoFar < budget {
			budget = allocatedBytes - bytesSoFar
		}
		if budget <= 0 {
			more := img.ds.Allocate(1)
			img.allocatedMegabytes += more
			allocatedBytes += int64(more) * megabyte
			continue
		}

		n, perr := pump.Pump(budget)
		if perr != nil {
			creator.Abort()
			diskSink.CloseSink()
			listerPipe.CloseSink()
			outPipe.CloseSource()
			lister.Close()
			return nil, bytesSoFar, false, perr
		}
		bytesSoFar += n
		if n < budget {
			eof = true
			break
		}
		if bytesSoFar >= maxBytes {
			break
		}
	}

	diskSink.CloseSink()
	listerPipe.CloseSink()
	outPipe.CloseSource()

	if eof {
		err = creator.Close()
	} else {
		err = creator.Abort()
	}
	if err != nil {
		lister.Close()
		return nil, bytesSoFar, eof, err
	}

	entries, err = lister.GetFileList()
	if closeErr := lister.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, bytesSoFar, eof, err
	}

	if eof {
		if renameErr := os.Rename(scratchPath, img.archivePath); renameErr != nil {
			return nil, bytesSoFar, eof, renameErr
		}
	}
	return entries, bytesSoFar, eof, nil
}

// commit writes the encrypted index file and freezes the manifest. On
// failure it unlinks the archive and partial index.
func (img *Image) commit() error {
	sink, err := endpoint.CreateFileSink(img.indexPath, 0o600)
	if err != nil {
		os.Remove(img.archivePath)
		return fmt.Errorf("image %s: index: %w: %w", img.opts.ImageID, kerrors.ErrInfoWriteFailed, err)
	}

	pipe, err := endpoint.NewPipe()
	if err != nil {
		sink.CloseSink()
		os.Remove(img.archivePath)
		os.Remove(img.indexPath)
		return err
	}

	enc, err := archive.NewEncryptor(img.opts.EncryptorExe, img.opts.Passphrase, false, pipe.Source(), sink)
	if err != nil {
		os.Remove(img.archivePath)
		os.Remove(img.indexPath)
		return fmt.Errorf("image %s: index: %w: %w", img.opts.ImageID, kerrors.ErrInfoWriteFailed, err)
	}

	f := borrowFile(uintptr(pipe.SinkFd()), "index-writer")
	var writeErr error
	for _, path := range img.committedFiles {
		if _, werr := f.WriteString(path + "\n"); werr != nil {
			writeErr = werr
			break
		}
	}
	pipe.CloseSink()

	waitErr := enc.Wait()
	if writeErr != nil || waitErr != nil {
		os.Remove(img.archivePath)
		os.Remove(img.indexPath)
		err := writeErr
		if err == nil {
			err = waitErr
		}
		return fmt.Errorf("image %s: index: %w: %w", img.opts.ImageID, kerrors.ErrInfoWriteFailed, err)
	}
	return nil
}

// Close unlinks every regular file under the workspace, removes the
// workspace directory, and releases the held megabytes back to
// Diskspace. It is safe to call more than once.
func (img *Image) Close() error {
	if img.closed {
		return nil
	}
	img.closed = true
	return img.teardown()
}

func (img *Image) teardown() error {
	entries, _ := os.ReadDir(img.workspace)
	for _, e := range entries {
		os.Remove(filepath.Join(img.workspace, e.Name()))
	}
	err := os.Remove(img.workspace)
	if img.allocatedMegabytes > 0 {
		img.ds.Release(img.allocatedMegabytes)
		img.allocatedMegabytes = 0
	}
	return err
}

func removeMatching(list *[]string, toRemove []string) {
	if len(toRemove) == 0 {
		return
	}
	remove := make(map[string]bool, len(toRemove))
	for _, v := range toRemove {
		remove[v] = true
	}
	filtered := make([]string, 0, len(*list))
	for _, v := range *list {
		if !remove[v] {
			filtered = append(filtered, v)
		}
	}
	*list = filtered
}
