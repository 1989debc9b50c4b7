package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postboard/internal/authx"
	"postboard/internal/blobstore"
	"postboard/internal/board"
	"postboard/internal/board/config"
	"postboard/internal/common"
	"postboard/internal/compose"
	"postboard/internal/docstore"
	"postboard/internal/feed"
	"postboard/internal/logging"
	"postboard/internal/media"
	"postboard/internal/models"
)

const testSecret = "test-secret"

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func makeToken(t *testing.T, subject, display string) string {
	t.Helper()
	claims := authx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Display: display,
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

// newTestApp wires a full App over in-memory backends, reading user input
// from the given script.
func newTestApp(t *testing.T, input string) (*App, *bytes.Buffer, *docstore.MemoryStore) {
	t.Helper()

	store := docstore.NewMemoryStore()
	blobs := blobstore.NewMemoryStore("images")
	log := discardLogger()
	out := &bytes.Buffer{}

	app := &App{
		config: &config.Config{SubmitTimeout: time.Minute},
		log:    log,
		auth:   authx.NewTokenProvider([]byte(testSecret)),
		store:  store,
		reader: bufio.NewReader(strings.NewReader(input)),
		out:    out,
	}
	app.composer = compose.New(store, media.NewUploader(blobs, log), log)
	app.ctrl = board.NewController(feed.New(store, log), app.composer, store, app.auth, app.confirmPrompt, log)

	t.Cleanup(app.ctrl.Unmount)
	return app, out, store
}

func signIn(t *testing.T, app *App, subject, display string) {
	t.Helper()
	require.NoError(t, app.auth.SignIn(makeToken(t, subject, display)))
}

func stubToken(t *testing.T, token string) {
	t.Helper()
	orig := readPassword
	readPassword = func(fd int) ([]byte, error) { return []byte(token), nil }
	t.Cleanup(func() { readPassword = orig })
}

func TestLogin_MountsFeed(t *testing.T) {
	app, out, _ := newTestApp(t, "")
	stubToken(t, makeToken(t, "u1", "Alice"))

	require.NoError(t, app.Login(context.Background()))

	assert.True(t, app.isLoggedIn())
	assert.Contains(t, out.String(), "Signed in (Alice)")

	// The session view is mounted; a second explicit mount is rejected.
	assert.ErrorIs(t, app.ctrl.Mount(context.Background()), board.ErrAlreadyMounted)
}

func TestLogin_InvalidToken(t *testing.T) {
	app, out, _ := newTestApp(t, "")
	stubToken(t, "garbage")

	err := app.Login(context.Background())
	assert.ErrorIs(t, err, common.ErrIdentityMissing)
	assert.False(t, app.isLoggedIn())
	assert.Contains(t, out.String(), "Sign-in failed")
}

func TestPost_CreatesRecord(t *testing.T) {
	// title, body (two lines, blank terminator), no inline image, no cover
	app, out, store := newTestApp(t, "My title\nfirst line\nsecond line\n\n\n\n")
	signIn(t, app, "u1", "Alice")

	require.NoError(t, app.Post(context.Background()))

	require.Equal(t, 1, store.Count())
	posts := store.Posts()
	assert.Equal(t, "My title", posts[0].Title)
	assert.Equal(t, "first line\nsecond line", posts[0].Content)
	assert.Contains(t, out.String(), "Posted.")
}

func TestPost_EmbedsInlineImage(t *testing.T) {
	img := filepath.Join(t.TempDir(), "pic.png")
	require.NoError(t, os.WriteFile(img, []byte("png-bytes"), 0o600))

	app, _, store := newTestApp(t, "My title\nbody text\n\n"+img+"\n\n")
	signIn(t, app, "u1", "Alice")

	require.NoError(t, app.Post(context.Background()))

	require.Equal(t, 1, store.Count())
	content := store.Posts()[0].Content
	assert.Contains(t, content, "body text")
	assert.Contains(t, content, `<img src="mem://images/posts/u1/`)
}

func TestPost_ValidationReported(t *testing.T) {
	app, out, store := newTestApp(t, "\n\n\n\n")
	signIn(t, app, "u1", "Alice")

	err := app.Post(context.Background())
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.Equal(t, 0, store.Count())
	assert.Contains(t, out.String(), "title and some content")
}

func TestPost_SignedOutReported(t *testing.T) {
	app, out, store := newTestApp(t, "Title\nbody\n\n\n\n")

	err := app.Post(context.Background())
	assert.ErrorIs(t, err, common.ErrIdentityMissing)
	assert.Equal(t, 0, store.Count())
	assert.Contains(t, out.String(), "Sign in before posting.")
}

func TestDelete_ConfirmedAndDeclined(t *testing.T) {
	t.Run("declined keeps the post", func(t *testing.T) {
		app, _, store := newTestApp(t, "")
		signIn(t, app, "u1", "Alice")
		id, err := store.InsertPost(context.Background(), models.Post{Title: "Keep", AuthorID: "u1"})
		require.NoError(t, err)

		app.reader = bufio.NewReader(strings.NewReader(id + "\nn\n"))
		require.NoError(t, app.Delete(context.Background()))
		assert.Equal(t, 1, store.Count())
	})

	t.Run("confirmed removes the post", func(t *testing.T) {
		app, _, store := newTestApp(t, "")
		signIn(t, app, "u1", "Alice")
		id, err := store.InsertPost(context.Background(), models.Post{Title: "Gone", AuthorID: "u1"})
		require.NoError(t, err)

		app.reader = bufio.NewReader(strings.NewReader(id + "\ny\n"))
		require.NoError(t, app.Delete(context.Background()))
		assert.Equal(t, 0, store.Count())
	})

	t.Run("someone else's post is refused", func(t *testing.T) {
		app, out, store := newTestApp(t, "")
		signIn(t, app, "u1", "Alice")
		id, err := store.InsertPost(context.Background(), models.Post{Title: "Bob's", AuthorID: "u2"})
		require.NoError(t, err)

		app.reader = bufio.NewReader(strings.NewReader(id + "\ny\n"))
		err = app.Delete(context.Background())
		assert.ErrorIs(t, err, common.ErrNotPermitted)
		assert.Equal(t, 1, store.Count())
		assert.Contains(t, out.String(), "your own posts")
	})
}

func TestFeed_PrintsSnapshot(t *testing.T) {
	app, out, store := newTestApp(t, "")
	_, err := store.InsertPost(context.Background(), models.Post{Title: "Weekend ride", AuthorID: "u2", AuthorDisplay: "Bob"})
	require.NoError(t, err)

	require.NoError(t, app.Feed(context.Background()))

	assert.Contains(t, out.String(), "Weekend ride")
	assert.Contains(t, out.String(), "Bob")
}

func TestFeed_EmptyBoard(t *testing.T) {
	app, out, _ := newTestApp(t, "")

	require.NoError(t, app.Feed(context.Background()))
	assert.Contains(t, out.String(), "The feed is empty.")
}

func TestWatch_StopsOnEnter(t *testing.T) {
	app, _, _ := newTestApp(t, "\n")

	done := make(chan error, 1)
	go func() { done <- app.Watch(context.Background()) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop on Enter")
	}
}
