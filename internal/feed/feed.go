// Package feed maintains a live, ordered view of the posts collection.
// It owns the canonical feed ordering: newest first by server timestamp,
// with not-yet-committed entries ahead of everything since they are by
// definition the newest writes.
package feed

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"postboard/internal/common"
	"postboard/internal/docstore"
	"postboard/internal/logging"
	"postboard/internal/models"
)

// Synchronizer turns the document store's standing query into ordered
// feed snapshots.
type Synchronizer struct {
	store docstore.Store
	log   logging.Logger
}

// New constructs a Synchronizer over the given document store.
func New(store docstore.Store, log logging.Logger) *Synchronizer {
	return &Synchronizer{store: store, log: log}
}

// Subscribe opens exactly one standing query and returns a live
// subscription. A subscribe-time permission failure is returned directly;
// failures after that surface through the subscription's Err.
func (s *Synchronizer) Subscribe(ctx context.Context) (*Subscription, error) {
	w, err := s.store.Watch(ctx)
	if err != nil {
		if errors.Is(err, common.ErrPermissionDenied) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", common.ErrConnectivity, err)
	}

	sub := &Subscription{
		watcher:   w,
		snapshots: make(chan models.Snapshot, 1),
		log:       s.log,
	}
	go sub.run()
	return sub, nil
}

// Subscription is one live ordered view of the feed.
//
// Snapshots delivers complete replacement snapshots, already sorted. The
// channel closes when the subscription ends; Err then reports why: nil
// after Unsubscribe, common.ErrPermissionDenied or common.ErrConnectivity
// after a channel failure.
type Subscription struct {
	watcher   *docstore.Watcher
	snapshots chan models.Snapshot
	log       logging.Logger

	mu  sync.Mutex
	err error

	unsubOnce sync.Once
}

// Snapshots returns the ordered snapshot stream.
func (s *Subscription) Snapshots() <-chan models.Snapshot {
	return s.snapshots
}

// Err reports why the stream ended; nil while live or after a deliberate
// Unsubscribe.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Unsubscribe releases the standing query and stops deliveries. Safe to
// call in any lifecycle phase, including immediately after Subscribe;
// repeat calls are no-ops.
func (s *Subscription) Unsubscribe() {
	s.unsubOnce.Do(func() {
		s.watcher.Close()
	})
}

func (s *Subscription) run() {
	defer close(s.snapshots)

	for snap := range s.watcher.Updates() {
		ordered := Sort(snap)
		// Replace any undelivered snapshot: a consumer that falls behind
		// sees the newest complete view, never a stale intermediate one.
		select {
		case <-s.snapshots:
		default:
		}
		s.snapshots <- ordered
	}

	if err := s.watcher.Err(); err != nil {
		s.mu.Lock()
		s.err = classify(err)
		s.mu.Unlock()
		s.log.Error(context.Background(), "feed subscription ended", "error", err)
	}
}

// classify maps a standing-query failure onto the error taxonomy: read
// denial stays a permission error, anything else is a connectivity loss.
func classify(err error) error {
	if errors.Is(err, common.ErrPermissionDenied) {
		return err
	}
	return fmt.Errorf("%w: %s", common.ErrConnectivity, err)
}

// Sort returns snap ordered by createdAt descending with pending entries
// (nil timestamp) first; ties break by id so equal-time snapshots are
// stable across deliveries. The input is not modified.
func Sort(snap models.Snapshot) models.Snapshot {
	ordered := make(models.Snapshot, len(snap))
	copy(ordered, snap)

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		switch {
		case a.CreatedAt == nil && b.CreatedAt == nil:
			return a.ID < b.ID
		case a.CreatedAt == nil:
			return true
		case b.CreatedAt == nil:
			return false
		case !a.CreatedAt.Equal(*b.CreatedAt):
			return a.CreatedAt.After(*b.CreatedAt)
		default:
			return a.ID < b.ID
		}
	})
	return ordered
}
