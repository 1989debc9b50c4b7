// Package blobstore abstracts the object-storage backend: path-addressed
// binary uploads that report transfer progress and yield a stable,
// publicly fetchable retrieval URL.
package blobstore

import (
	"context"
	"io"
)

// ProgressFunc receives transfer progress on chunk boundaries. transferred
// never regresses before the upload resolves; the values are advisory and
// must not be used for correctness.
type ProgressFunc func(transferred, total int64)

// Store uploads binary payloads and addresses them by key.
//
// Contract:
//   - Put streams r (size bytes) to the given key and returns the
//     retrieval URL. An existing object at the same key is overwritten
//     silently; last write wins.
//   - Put reports progress through progress (if non-nil) as bytes move.
//   - Failures are returned untouched; Put never retries.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string, progress ProgressFunc) (string, error)
}

// progressReader wraps r and reports cumulative bytes read after every
// successful Read, which is exactly one report per transfer chunk.
type progressReader struct {
	r           io.Reader
	total       int64
	transferred int64
	fn          ProgressFunc
}

func newProgressReader(r io.Reader, total int64, fn ProgressFunc) *progressReader {
	return &progressReader{r: r, total: total, fn: fn}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.transferred += int64(n)
		if p.fn != nil {
			p.fn(p.transferred, p.total)
		}
	}
	return n, err
}
