package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"postboard/internal/common"
	"postboard/internal/dbx"
	"postboard/internal/logging"
	"postboard/internal/migrations"
	"postboard/internal/models"
)

// notifyChannel is the LISTEN/NOTIFY channel the posts table trigger fires
// on every insert or delete (see the migrations package).
const notifyChannel = "postboard_posts"

// insufficientPrivilege is the PostgreSQL error code for permission
// failures on reads and writes.
const insufficientPrivilege = "42501"

// listenConn is the slice of *pgx.Conn used for the notification channel;
// tests provide a fake.
type listenConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	WaitForNotification(ctx context.Context) (*pgconn.Notification, error)
	Close(ctx context.Context) error
}

var (
	// pgxConnect is a seam for establishing the dedicated LISTEN connection.
	pgxConnect = func(ctx context.Context, dsn string) (listenConn, error) {
		return pgx.Connect(ctx, dsn)
	}

	// gooseUpContext is a seam for testing migration runs.
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return goose.UpContext(ctx, db, dir, opts...)
	}
)

// PostgresStore implements Store over PostgreSQL. CRUD and snapshot
// queries run through database/sql (pgx stdlib driver); each standing
// query holds its own pgx connection listening on the posts trigger
// channel and re-queries the full result set per notification.
type PostgresStore struct {
	db  *sql.DB
	dsn string
	log logging.Logger
}

// NewPostgresStore opens the database, runs the embedded migrations, and
// returns a ready store.
func NewPostgresStore(ctx context.Context, dsn string, log logging.Logger) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	s := &PostgresStore{db: db, dsn: dsn, log: log}
	if err := s.runMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) runMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, s.db, ".")
}

// InsertPost writes one record. The id and created_at come from column
// defaults, so the commit timestamp is always the server's.
func (s *PostgresStore) InsertPost(ctx context.Context, post models.Post) (string, error) {
	query := `
		INSERT INTO posts (title, content, cover_image_url, author_id, author_display)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id;
	`
	var id string
	err := s.db.QueryRowContext(ctx, query,
		post.Title, post.Content, nullIfEmpty(post.CoverImageURL), post.AuthorID, nullIfEmpty(post.AuthorDisplay),
	).Scan(&id)
	if err != nil {
		return "", classifyWrite(err)
	}
	return id, nil
}

// DeletePost deletes the record only when the requester owns it. The
// ownership check lives in the DELETE predicate itself, so it is enforced
// at the store even if a caller skipped its own check.
func (s *PostgresStore) DeletePost(ctx context.Context, id string, requester models.Identity) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE id = $1 AND author_id = $2`, id, requester.Subject)
		if err != nil {
			return classifyWrite(err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected error: %w", err)
		}
		if n == 1 {
			return nil
		}

		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM posts WHERE id = $1)`, id).Scan(&exists); err != nil {
			return classifyWrite(err)
		}
		if exists {
			return common.ErrNotPermitted
		}
		return common.ErrNotFound
	})
}

// Watch opens the dedicated LISTEN connection and starts the standing
// query loop. The returned Watcher's Close releases both.
func (s *PostgresStore) Watch(ctx context.Context) (*Watcher, error) {
	conn, err := pgxConnect(ctx, s.dsn)
	if err != nil {
		return nil, classifyRead(err)
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	w := newWatcher(cancel)
	go s.watchLoop(loopCtx, conn, w)
	return w, nil
}

func (s *PostgresStore) watchLoop(ctx context.Context, conn listenConn, w *Watcher) {
	defer func() { _ = conn.Close(context.Background()) }()

	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		w.fail(classifyRead(err))
		return
	}

	snap, err := s.querySnapshot(ctx)
	if err != nil {
		w.fail(err)
		return
	}
	w.push(snap)

	for {
		if _, err := conn.WaitForNotification(ctx); err != nil {
			if ctx.Err() != nil {
				// Deliberate unsubscribe, not a channel failure.
				w.fail(nil)
				return
			}
			s.log.Error(ctx, "standing query channel broke", "error", err)
			w.fail(classifyRead(err))
			return
		}

		snap, err := s.querySnapshot(ctx)
		if err != nil {
			if ctx.Err() != nil {
				w.fail(nil)
				return
			}
			w.fail(err)
			return
		}
		w.push(snap)
	}
}

func (s *PostgresStore) querySnapshot(ctx context.Context) (models.Snapshot, error) {
	query := `
		SELECT id, title, content, COALESCE(cover_image_url, ''), author_id, COALESCE(author_display, ''), created_at
		FROM posts
		ORDER BY created_at DESC NULLS FIRST, id;
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, classifyRead(err)
	}
	defer rows.Close()

	var snap models.Snapshot
	for rows.Next() {
		var p models.Post
		var createdAt sql.NullTime
		if err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.CoverImageURL, &p.AuthorID, &p.AuthorDisplay, &createdAt); err != nil {
			return nil, err
		}
		if createdAt.Valid {
			t := createdAt.Time
			p.CreatedAt = &t
		}
		snap = append(snap, p)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyRead(err)
	}
	return snap, nil
}

// Close releases the shared database handle. Live watchers end on their
// own once their connections close.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func classifyRead(err error) error {
	if isPermissionDenied(err) {
		return fmt.Errorf("%w: %s", common.ErrPermissionDenied, err)
	}
	return err
}

func classifyWrite(err error) error {
	if isPermissionDenied(err) {
		return fmt.Errorf("%w: %s", common.ErrNotPermitted, err)
	}
	return err
}

func isPermissionDenied(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == insufficientPrivilege
}

var _ Store = (*PostgresStore)(nil)
