// Package sqlite provides a SQLite-backed model store.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/okian/fanhop/internal/adapters/storage"
	"github.com/okian/fanhop/pkg/logger"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// goose keeps its base FS and dialect in package globals.
var migrateMu sync.Mutex

const modelColumns = `id, owner_id, name, weights, edition_id, champion, is_public, slug, created_at, updated_at`

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger routes migration output to log.
func WithLogger(log logger.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// Store persists models in SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
	log logger.Logger
}

var _ storage.Store = (*Store)(nil)

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

// Open opens the database at path and applies embedded migrations.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	s := &Store{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	dsn := path
	if path != ":memory:" {
		dsn = filepath.Clean(path)
	}
	dsn += "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(1)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if path == ":memory:" {
		// Every connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := s.migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	s.db = db
	return s, nil
}

func (s *Store) migrate(db *sql.DB) error {
	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(gooseLogger{log: s.log})
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("run goose migrations: %w", err)
	}
	return nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanModel(row rowScanner) (storage.Model, error) {
	var (
		m         storage.Model
		weights   string
		slug      sql.NullString
		createdAt int64
		updatedAt int64
	)
	if err := row.Scan(&m.ID, &m.OwnerID, &m.Name, &weights, &m.EditionID, &m.Champion,
		&m.Public, &slug, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Model{}, storage.ErrNotFound
		}
		return storage.Model{}, fmt.Errorf("scan model: %w", err)
	}
	if err := json.Unmarshal([]byte(weights), &m.Weights); err != nil {
		return storage.Model{}, fmt.Errorf("decode weights for %s: %w", m.ID, err)
	}
	m.Slug = slug.String
	m.CreatedAt = fromMillis(createdAt)
	m.UpdatedAt = fromMillis(updatedAt)
	return m, nil
}

func (s *Store) queryModels(ctx context.Context, query string, args ...any) ([]storage.Model, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query models: %w", err)
	}
	defer rows.Close()

	out := make([]storage.Model, 0)
	for rows.Next() {
		m, err := scanModel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate models: %w", err)
	}
	return out, nil
}

// Save implements storage.Store.
func (s *Store) Save(ctx context.Context, req storage.SaveRequest) (storage.Model, bool, error) {
	if err := req.Validate(); err != nil {
		return storage.Model{}, false, err
	}
	weights, err := json.Marshal(req.Weights)
	if err != nil {
		return storage.Model{}, false, fmt.Errorf("encode weights: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storage.Model{}, false, fmt.Errorf("begin save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	key := storage.NameKey(req.Name)
	existing, err := scanModel(tx.QueryRowContext(ctx,
		`SELECT `+modelColumns+` FROM models WHERE owner_id = ? AND name_key = ?`, req.OwnerID, key))
	updated := err == nil
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return storage.Model{}, false, err
	}

	m := storage.Apply(existing, req, s.now().UTC())
	if updated {
		_, err = tx.ExecContext(ctx,
			`UPDATE models SET name = ?, weights = ?, edition_id = ?, champion = ?, updated_at = ? WHERE id = ?`,
			m.Name, string(weights), m.EditionID, m.Champion, toMillis(m.UpdatedAt), m.ID)
	} else {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO models (id, owner_id, name, name_key, weights, edition_id, champion, is_public, slug, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, 0, NULL, ?, ?)`,
			m.ID, m.OwnerID, m.Name, key, string(weights), m.EditionID, m.Champion,
			toMillis(m.CreatedAt), toMillis(m.UpdatedAt))
	}
	if err != nil {
		return storage.Model{}, false, fmt.Errorf("write model: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return storage.Model{}, false, fmt.Errorf("commit save: %w", err)
	}
	return m, updated, nil
}

// Get implements storage.Store.
func (s *Store) Get(ctx context.Context, id string) (storage.Model, error) {
	return scanModel(s.db.QueryRowContext(ctx, `SELECT `+modelColumns+` FROM models WHERE id = ?`, id))
}

// List implements storage.Store.
func (s *Store) List(ctx context.Context, ownerID string) ([]storage.Model, error) {
	return s.queryModels(ctx,
		`SELECT `+modelColumns+` FROM models WHERE owner_id = ? ORDER BY updated_at DESC, id ASC`, ownerID)
}

// SetPublic implements storage.Store.
func (s *Store) SetPublic(ctx context.Context, ownerID, id string, public bool) (storage.Model, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storage.Model{}, fmt.Errorf("begin publish: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	m, err := scanModel(tx.QueryRowContext(ctx,
		`SELECT `+modelColumns+` FROM models WHERE id = ? AND owner_id = ?`, id, ownerID))
	if err != nil {
		return storage.Model{}, err
	}
	if public && m.Slug == "" {
		if m.Slug, err = storage.NewSlug(); err != nil {
			return storage.Model{}, fmt.Errorf("generate slug: %w", err)
		}
	}
	m.Public = public
	m.UpdatedAt = s.now().UTC()

	var slug any
	if m.Slug != "" {
		slug = m.Slug
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE models SET is_public = ?, slug = ?, updated_at = ? WHERE id = ?`,
		public, slug, toMillis(m.UpdatedAt), m.ID); err != nil {
		return storage.Model{}, fmt.Errorf("update visibility: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return storage.Model{}, fmt.Errorf("commit publish: %w", err)
	}
	return m, nil
}

// Delete implements storage.Store.
func (s *Store) Delete(ctx context.Context, ownerID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM models WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete model: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete model: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// GetBySlug implements storage.Store.
func (s *Store) GetBySlug(ctx context.Context, slug string) (storage.Model, error) {
	return scanModel(s.db.QueryRowContext(ctx,
		`SELECT `+modelColumns+` FROM models WHERE slug = ? AND is_public = 1`, slug))
}

// ListPublic implements storage.Store.
func (s *Store) ListPublic(ctx context.Context) ([]storage.Model, error) {
	return s.queryModels(ctx,
		`SELECT `+modelColumns+` FROM models WHERE is_public = 1 ORDER BY updated_at DESC, id ASC`)
}

// gooseLogger adapts the service logger to goose.Logger.
type gooseLogger struct {
	log logger.Logger
}

func (g gooseLogger) Printf(format string, v ...any) {
	if g.log != nil {
		g.log.Debug(context.Background(), strings.TrimSpace(fmt.Sprintf(format, v...)))
	}
}

func (g gooseLogger) Fatalf(format string, v ...any) {
	if g.log != nil {
		g.log.Fatal(context.Background(), strings.TrimSpace(fmt.Sprintf(format, v...)))
	}
	panic(fmt.Sprintf(format, v...))
}
