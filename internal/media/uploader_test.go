package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postboard/internal/blobstore"
	"postboard/internal/common"
	"postboard/internal/logging"
	"postboard/internal/models"
)

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// scriptedStore replays a fixed progress schedule before resolving.
type scriptedStore struct {
	ticks   [][2]int64 // transferred, total pairs
	url     string
	err     error
	lastKey string
	calls   int
}

func (s *scriptedStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string, progress blobstore.ProgressFunc) (string, error) {
	s.calls++
	s.lastKey = key
	for _, tick := range s.ticks {
		if progress != nil {
			progress(tick[0], tick[1])
		}
	}
	if s.err != nil {
		return "", s.err
	}
	return s.url, nil
}

func newTestUploader(blobs blobstore.Store, at time.Time) *Uploader {
	u := NewUploader(blobs, discardLogger())
	u.now = func() time.Time { return at }
	return u
}

func TestUploader_RequiresIdentity(t *testing.T) {
	store := &scriptedStore{}
	u := newTestUploader(store, time.Now())

	_, err := u.Upload(context.Background(), File{Name: "a.jpg", Size: 1, Reader: strings.NewReader("x")}, models.Identity{}, nil)
	require.ErrorIs(t, err, common.ErrIdentityMissing)
	assert.Zero(t, store.calls, "no network attempt without an identity")
}

func TestUploader_DestinationKey(t *testing.T) {
	store := &scriptedStore{url: "u"}
	at := time.UnixMilli(1700000000123)
	u := newTestUploader(store, at)

	_, err := u.Upload(context.Background(), File{Name: "/tmp/dir/sunset.jpg", Size: 1, Reader: strings.NewReader("x")}, models.Identity{Subject: "u1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("posts/u1/%d_sunset.jpg", at.UnixMilli()), store.lastKey)
}

func TestUploader_ProgressPercentagesMonotonic(t *testing.T) {
	store := &scriptedStore{
		url: "http://img/u.png",
		ticks: [][2]int64{
			{0, 100}, {42, 100}, {30, 100}, {100, 100},
		},
	}
	u := newTestUploader(store, time.Now())

	var pcts []float64
	url, err := u.Upload(context.Background(), File{Name: "a.png", Size: 100, Reader: strings.NewReader("")}, models.Identity{Subject: "u1"}, func(pct float64) {
		pcts = append(pcts, pct)
	})
	require.NoError(t, err)
	assert.Equal(t, "http://img/u.png", url)

	// The regressing 30% tick is suppressed; the rest pass through in order.
	assert.Equal(t, []float64{0, 42, 100}, pcts)
}

func TestUploader_FailurePropagatesUntouched(t *testing.T) {
	boom := errors.New("network down")
	store := &scriptedStore{err: boom}
	u := newTestUploader(store, time.Now())

	_, err := u.Upload(context.Background(), File{Name: "a.png", Size: 1, Reader: strings.NewReader("x")}, models.Identity{Subject: "u1"}, nil)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, store.calls, "exactly one attempt, no internal retry")
}

func TestContentTypeFor(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"a.png", "image/png"},
		{"b.JPG", "image/jpeg"},
		{"noext", "application/octet-stream"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, contentTypeFor(tt.name), tt.name)
	}
}
