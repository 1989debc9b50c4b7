// Package docstore abstracts the document-store backend holding the posts
// collection: single-record insert with a server-assigned timestamp,
// single-record delete by id, and a standing query that pushes the full
// result set on every change.
package docstore

import (
	"context"
	"sync"

	"postboard/internal/models"
)

// Store is the record collection consumed by the feed and the composer.
//
// Contract:
//   - InsertPost writes exactly one record. The backend assigns the id and
//     the creation timestamp; any client-side values for those fields are
//     ignored.
//   - DeletePost removes one record. A delete by a requester that does not
//     own the record fails with common.ErrNotPermitted; authorization is
//     always re-verified at this boundary regardless of what the caller
//     already checked.
//   - Watch opens one standing query. Every insert or delete causes the
//     complete result set to be re-delivered through the returned Watcher.
//   - Permission failures on the read path map to common.ErrPermissionDenied.
type Store interface {
	InsertPost(ctx context.Context, post models.Post) (string, error)
	DeletePost(ctx context.Context, id string, requester models.Identity) error
	Watch(ctx context.Context) (*Watcher, error)
	Close() error
}

// Watcher is the handle for one standing query. Updates delivers complete
// result sets; the channel is closed when the query ends, either by Close
// or by a failure recorded in Err.
type Watcher struct {
	mu      sync.Mutex
	updates chan models.Snapshot
	err     error
	closed  bool

	stopOnce sync.Once
	stop     func()
}

func newWatcher(stop func()) *Watcher {
	// Capacity one with replace-on-push: a slow consumer always receives
	// the newest result set, never a stale intermediate one.
	return &Watcher{updates: make(chan models.Snapshot, 1), stop: stop}
}

// Updates returns the stream of full result sets.
func (w *Watcher) Updates() <-chan models.Snapshot {
	return w.updates
}

// Err reports why the stream ended. It is nil until the updates channel is
// closed, and stays nil when the close was requested via Close.
func (w *Watcher) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// Close releases the standing query and stops deliveries. Safe to call at
// any point in the watcher's life, at most once per caller; repeat calls
// are no-ops.
func (w *Watcher) Close() {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.updates)
	}
	w.mu.Unlock()

	w.stopOnce.Do(func() {
		if w.stop != nil {
			w.stop()
		}
	})
}

// push replaces any undelivered result set with the newer one.
func (w *Watcher) push(s models.Snapshot) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	select {
	case <-w.updates:
	default:
	}
	w.updates <- s
}

// fail records err and ends the stream. No-op on an already closed watcher.
func (w *Watcher) fail(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.err = err
	w.closed = true
	close(w.updates)
}
