// Package board ties the feed, the composer, and the auth provider into
// the dashboard view's lifecycle: one live subscription per mounted view,
// one submission in flight at a time, and confirmed deletes.
package board

import (
	"context"
	"errors"
	"sync"

	"postboard/internal/authx"
	"postboard/internal/common"
	"postboard/internal/compose"
	"postboard/internal/docstore"
	"postboard/internal/feed"
	"postboard/internal/logging"
	"postboard/internal/media"
	"postboard/internal/models"
)

// State is the submission state of the view.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
)

// ErrAlreadyMounted is returned by a second Mount on a live controller.
// Mounting twice would leak a standing query, so it is prevented here by
// construction.
var ErrAlreadyMounted = errors.New("controller already mounted")

// ConfirmFunc asks the user to confirm an irrecoverable action.
type ConfirmFunc func(prompt string) bool

// Controller owns the visible snapshot and the submission state machine.
// All shared state is guarded by one mutex; only the controller's own
// methods and its single consume goroutine mutate it.
type Controller struct {
	feed     *feed.Synchronizer
	composer *compose.Composer
	store    docstore.Store
	auth     authx.Provider
	confirm  ConfirmFunc
	log      logging.Logger

	mu      sync.Mutex
	mounted bool
	sub     *feed.Subscription
	posts   models.Snapshot
	state   State
	feedErr error
	done    chan struct{}
}

// NewController wires a controller; Mount activates it.
func NewController(f *feed.Synchronizer, composer *compose.Composer, store docstore.Store, auth authx.Provider, confirm ConfirmFunc, log logging.Logger) *Controller {
	return &Controller{
		feed:     f,
		composer: composer,
		store:    store,
		auth:     auth,
		confirm:  confirm,
		log:      log,
		state:    StateIdle,
	}
}

// Mount subscribes to the feed exactly once for the view's lifetime. A
// second Mount without an Unmount fails with ErrAlreadyMounted.
func (c *Controller) Mount(ctx context.Context) error {
	c.mu.Lock()
	if c.mounted {
		c.mu.Unlock()
		return ErrAlreadyMounted
	}
	c.mounted = true
	c.mu.Unlock()

	sub, err := c.feed.Subscribe(ctx)
	if err != nil {
		c.mu.Lock()
		c.mounted = false
		c.feedErr = err
		c.mu.Unlock()
		return err
	}

	done := make(chan struct{})
	c.mu.Lock()
	c.sub = sub
	c.feedErr = nil
	c.done = done
	c.mu.Unlock()

	go c.consume(sub, done)
	return nil
}

func (c *Controller) consume(sub *feed.Subscription, done chan struct{}) {
	defer close(done)
	for snap := range sub.Snapshots() {
		c.mu.Lock()
		c.posts = snap
		c.mu.Unlock()
	}
	if err := sub.Err(); err != nil {
		c.mu.Lock()
		c.feedErr = err
		c.mu.Unlock()
		c.log.Error(context.Background(), "feed stopped updating", "error", err)
	}
}

// Unmount releases the subscription. Idempotent; safe to call whether or
// not Mount succeeded.
func (c *Controller) Unmount() {
	c.mu.Lock()
	if !c.mounted {
		c.mu.Unlock()
		return
	}
	c.mounted = false
	sub, done := c.sub, c.done
	c.sub, c.done = nil, nil
	c.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
		<-done
	}
}

// Posts returns the current visible snapshot.
func (c *Controller) Posts() models.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := make(models.Snapshot, len(c.posts))
	copy(snap, c.posts)
	return snap
}

// State reports the submission state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// FeedErr reports why the feed stopped updating, if it did.
func (c *Controller) FeedErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.feedErr
}

// Submit runs one post creation. While a submission is in flight a repeat
// call is rejected with common.ErrBusy rather than queued.
func (c *Controller) Submit(ctx context.Context, title, content string, cover *media.File, progress media.ProgressFunc) error {
	author, ok := c.auth.Current()
	if !ok {
		return common.ErrIdentityMissing
	}

	c.mu.Lock()
	if c.state == StateSubmitting {
		c.mu.Unlock()
		return common.ErrBusy
	}
	c.state = StateSubmitting
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.state = StateIdle
		c.mu.Unlock()
	}()

	return c.composer.CreatePost(ctx, compose.Input{
		Title:    title,
		Content:  content,
		Cover:    cover,
		Author:   author,
		Progress: progress,
	})
}

// CanDelete reports whether the delete affordance should be shown for a
// post. This is cosmetic only; ownership is re-verified by the backend on
// the actual delete.
func (c *Controller) CanDelete(p models.Post) bool {
	author, ok := c.auth.Current()
	return ok && p.AuthorID == author.Subject
}

// DeletePost confirms with the user and issues one delete. A backend
// rejection for a non-owner comes back as common.ErrNotPermitted,
// distinct from generic failure.
func (c *Controller) DeletePost(ctx context.Context, id string) error {
	author, ok := c.auth.Current()
	if !ok {
		return common.ErrIdentityMissing
	}

	if !c.confirm("Delete post " + id + "? This cannot be undone.") {
		c.log.Info(ctx, "delete canceled", "id", id)
		return nil
	}

	if err := c.store.DeletePost(ctx, id, author); err != nil {
		c.log.Error(ctx, "delete failed", "id", id, "error", err)
		return err
	}
	c.log.Info(ctx, "post deleted", "id", id)
	return nil
}
