// Package media implements the upload pipeline for post images: it turns
// a local file plus an owner identity into a durable retrieval URL, with
// advisory progress reporting along the way.
package media

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"postboard/internal/blobstore"
	"postboard/internal/common"
	"postboard/internal/logging"
	"postboard/internal/models"
)

// File is one upload payload: a reader plus the metadata the destination
// key and content type are derived from.
type File struct {
	Name   string
	Size   int64
	Reader io.Reader
}

// Open prepares a File from a local path. The returned close func must be
// called once the upload resolves.
func Open(path string) (File, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return File{}, nil, fmt.Errorf("open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return File{}, nil, fmt.Errorf("stat %s: %w", path, err)
	}
	return File{Name: filepath.Base(path), Size: info.Size(), Reader: f}, f.Close, nil
}

// ProgressFunc receives upload progress as a percentage in [0,100].
// Values never decrease before the terminal outcome and are advisory only.
type ProgressFunc func(pct float64)

// Uploader streams files to object storage.
//
// Contract:
//   - Upload requires a present owner identity; without one it fails with
//     common.ErrIdentityMissing before any network attempt.
//   - The destination key is posts/{owner}/{unixMilli}_{filename}. Two
//     uploads by the same owner with the same filename in the same
//     millisecond collide, and the last write wins silently; this is a
//     documented limitation, not defended against.
//   - Failures propagate the underlying storage error unclassified, and
//     nothing is retried. Retry policy belongs to the caller.
type Uploader struct {
	blobs blobstore.Store
	log   logging.Logger

	now func() time.Time
}

// NewUploader constructs an Uploader over the given object storage.
func NewUploader(blobs blobstore.Store, log logging.Logger) *Uploader {
	return &Uploader{blobs: blobs, log: log, now: time.Now}
}

// Upload transfers f and resolves to its retrieval URL.
func (u *Uploader) Upload(ctx context.Context, f File, owner models.Identity, progress ProgressFunc) (string, error) {
	if !owner.Present() {
		return "", common.ErrIdentityMissing
	}

	name := filepath.Base(f.Name)
	key := fmt.Sprintf("posts/%s/%d_%s", owner.Subject, u.now().UnixMilli(), name)

	// Percentages are derived from byte counts and clamped so a consumer
	// never observes a regression.
	last := -1.0
	tick := func(transferred, total int64) {
		if progress == nil || total <= 0 {
			return
		}
		pct := float64(transferred) / float64(total) * 100
		if pct < last {
			return
		}
		last = pct
		progress(pct)
	}

	url, err := u.blobs.Put(ctx, key, f.Reader, f.Size, contentTypeFor(name), tick)
	if err != nil {
		u.log.Error(ctx, "upload failed", "key", key, "error", err)
		return "", err
	}

	u.log.Info(ctx, "upload resolved", "key", key, "url", url)
	return url, nil
}

// contentTypeFor maps a filename extension to a MIME type, defaulting to
// application/octet-stream.
func contentTypeFor(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
