package cli

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"postboard/internal/authx"
	"postboard/internal/board"
	"postboard/internal/board/config"
	"postboard/internal/compose"
	"postboard/internal/docstore"
	"postboard/internal/feed"
	"postboard/internal/logging"
	"postboard/internal/media"
)

// App is the interactive board client. It owns the store connections and
// the lifecycle controller for the REPL session's feed view.
type App struct {
	config   *config.Config
	log      logging.Logger
	auth     *authx.TokenProvider
	store    docstore.Store
	ctrl     *board.Controller
	composer *compose.Composer
	reader   *bufio.Reader
	out      io.Writer
}

// NewApp wires the full client from configuration: document store, object
// storage, composer, feed synchronizer, and the lifecycle controller.
func NewApp(c *config.Config) (*App, error) {
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	ctx := context.Background()

	store, err := newDocStore(ctx, c, log)
	if err != nil {
		return nil, err
	}

	blobs, err := newBlobStore(ctx, c)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	app := &App{
		config: c,
		log:    log,
		auth:   authx.NewTokenProvider([]byte(c.AuthSecret)),
		store:  store,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}

	app.composer = compose.New(store, media.NewUploader(blobs, log), log)
	app.ctrl = board.NewController(feed.New(store, log), app.composer, store, app.auth, app.confirmPrompt, log)

	return app, nil
}

// Run starts the REPL and blocks until the user exits.
func (a *App) Run(ctx context.Context) {
	defer func() { _ = a.store.Close() }()
	defer a.ctrl.Unmount()

	printlnFn("Board CLI (type 'help' for commands)")

	if err := a.ensureMounted(ctx); err != nil {
		a.log.Error(ctx, "feed unavailable at startup", "error", err)
	}

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}

func (a *App) isLoggedIn() bool {
	_, ok := a.auth.Current()
	return ok
}

func (a *App) getStatus() string {
	id, ok := a.auth.Current()
	if !ok {
		return ""
	}
	label := id.Display
	if label == "" {
		label = id.Subject
	}
	return "(" + label + ")"
}

// confirmPrompt asks the user for a yes/no answer; anything but "y" or
// "yes" declines.
func (a *App) confirmPrompt(prompt string) bool {
	answer, err := GetSimpleText(a.reader, prompt+" [y/N]", a.out)
	if err != nil {
		return false
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes"
}
