package docstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"postboard/internal/common"
	"postboard/internal/models"
)

// MemoryStore is an in-memory Store used in tests and demos. It is safe
// for concurrent use.
//
// The exported fixture fields (Clock, WatchErr, InsertErr, DeleteErr,
// EchoPending) must be set before the store is shared between goroutines.
type MemoryStore struct {
	// Clock supplies the server-assigned commit timestamps.
	Clock func() time.Time

	// WatchErr, when set, makes Watch fail immediately with this error.
	WatchErr error

	// InsertErr / DeleteErr, when set, fail the corresponding operation.
	InsertErr error
	DeleteErr error

	// EchoPending makes InsertPost store and broadcast the new record with
	// a nil timestamp, mimicking a backend that echoes local writes ahead
	// of timestamp resolution. The timestamp resolves on ResolvePending.
	EchoPending bool

	mu       sync.Mutex
	posts    []models.Post
	watchers map[*Watcher]struct{}
}

// NewMemoryStore creates an empty in-memory document store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		Clock:    time.Now,
		watchers: make(map[*Watcher]struct{}),
	}
}

// InsertPost assigns an id and a commit timestamp, stores the record, and
// notifies every live watcher with the full result set.
func (s *MemoryStore) InsertPost(ctx context.Context, post models.Post) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	if s.InsertErr != nil {
		err := s.InsertErr
		s.mu.Unlock()
		return "", err
	}

	post.ID = uuid.NewString()

	if s.EchoPending {
		post.CreatedAt = nil
	} else {
		now := s.Clock()
		post.CreatedAt = &now
	}
	s.posts = append(s.posts, post)
	s.broadcastLocked()
	s.mu.Unlock()
	return post.ID, nil
}

// ResolvePending assigns the server timestamp to every record still
// pending and re-broadcasts. Only meaningful with EchoPending.
func (s *MemoryStore) ResolvePending() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.Clock()
	for i := range s.posts {
		if s.posts[i].CreatedAt == nil {
			t := now
			s.posts[i].CreatedAt = &t
		}
	}
	s.broadcastLocked()
}

// DeletePost removes the record if the requester owns it.
func (s *MemoryStore) DeletePost(ctx context.Context, id string, requester models.Identity) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.DeleteErr != nil {
		return s.DeleteErr
	}

	for i, p := range s.posts {
		if p.ID != id {
			continue
		}
		if p.AuthorID != requester.Subject {
			return common.ErrNotPermitted
		}
		s.posts = append(s.posts[:i], s.posts[i+1:]...)
		s.broadcastLocked()
		return nil
	}
	return common.ErrNotFound
}

// Watch registers a standing query and delivers the current result set
// immediately.
func (s *MemoryStore) Watch(ctx context.Context) (*Watcher, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.WatchErr != nil {
		return nil, s.WatchErr
	}

	var w *Watcher
	w = newWatcher(func() {
		s.mu.Lock()
		delete(s.watchers, w)
		s.mu.Unlock()
	})
	s.watchers[w] = struct{}{}
	w.push(s.snapshotLocked())
	return w, nil
}

// BreakWatchers fails every live standing query with err, simulating a
// notification-channel failure.
func (s *MemoryStore) BreakWatchers(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for w := range s.watchers {
		w.fail(err)
	}
	s.watchers = make(map[*Watcher]struct{})
}

// Close ends all standing queries without error.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	watchers := s.watchers
	s.watchers = make(map[*Watcher]struct{})
	s.mu.Unlock()

	for w := range watchers {
		w.Close()
	}
	return nil
}

// Count reports the number of stored records.
func (s *MemoryStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.posts)
}

// Posts returns a copy of the current result set in insertion order.
func (s *MemoryStore) Posts() models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *MemoryStore) snapshotLocked() models.Snapshot {
	snap := make(models.Snapshot, len(s.posts))
	copy(snap, s.posts)
	return snap
}

func (s *MemoryStore) broadcastLocked() {
	snap := s.snapshotLocked()
	for w := range s.watchers {
		w.push(snap)
	}
}

var _ Store = (*MemoryStore)(nil)
