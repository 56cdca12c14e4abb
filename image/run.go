package image

import (
	"context"
	"errors"
	"fmt"

	"github.com/BackupTheBerlios/kryptocd/diskspace"
	"github.com/BackupTheBerlios/kryptocd/internal/logging"
	"github.com/BackupTheBerlios/kryptocd/kerrors"
)

// Run drives repeated Image attempts over one shrinking file list until
// it is exhausted, per the outer loop original_source/kryptocd/source/
// kernel/image.hh names as Image::create: construct an Image, and on
// ArchiveWouldBeEmpty (the head file already rejected by the failed
// attempt) just stop.
type Run struct {
	Files                    []string
	RejectedTooLarge         []string
	RejectedPermissionDenied []string
	RejectedBadName          []string
	Manifests                []Manifest

	ds      *diskspace.Diskspace
	counter int
	images  []*Image
}

// NewRun starts a driver over files, allocating workspaces under ds.
func NewRun(ds *diskspace.Diskspace, files []string) *Run {
	return &Run{Files: append([]string(nil), files...), ds: ds}
}

// Images returns every Image successfully committed so far, in order.
// Callers are responsible for eventually calling Close on each.
func (r *Run) Images() []*Image {
	return r.images
}

// Next performs exactly one Image attempt, folding its outcome into r.
// opts.ImageID is treated as the base id; the attempt's actual id gets
// an auto-incrementing "-%04d" suffix. It is a no-op, returning nil,
// once Files is empty.
func (r *Run) Next(ctx context.Context, opts Options) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(r.Files) == 0 {
		return nil
	}

	r.counter++
	attemptOpts := opts
	attemptOpts.ImageID = fmt.Sprintf("%s-%04d", opts.ImageID, r.counter)

	rejects := &RejectLists{}
	img, err := New(r.ds, attemptOpts, &r.Files, rejects)
	r.RejectedTooLarge = append(r.RejectedTooLarge, rejects.TooLarge...)
	r.RejectedPermissionDenied = append(r.RejectedPermissionDenied, rejects.PermissionDenied...)
	r.RejectedBadName = append(r.RejectedBadName, rejects.BadName...)

	if err != nil {
		if errors.Is(err, kerrors.ErrArchiveWouldBeEmpty) {
			logging.Infof("run: %s: no file fit, stopping with %d files remaining", attemptOpts.ImageID, len(r.Files))
			return nil
		}
		return err
	}

	r.Manifests = append(r.Manifests, img.Manifest())
	r.images = append(r.images, img)
	logging.Infof("run: %s: committed %d files, %d remaining", attemptOpts.ImageID, len(img.committedFiles), len(r.Files))
	return nil
}

// All calls Next until Files is exhausted or a non-retryable error
// occurs.
func (r *Run) All(ctx context.Context, opts Options) error {
	for len(r.Files) > 0 {
		if err := r.Next(ctx, opts); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every committed Image in order, aggregating the first
// error encountered while still attempting the rest.
func (r *Run) Close() error {
	var first error
	for _, img := range r.images {
		if err := img.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
