package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/pousadadobrejo/pousada-console/internal/model"
)

// State keys persisted in the app_state table. They play the role the
// browser's localStorage plays for the web console and are cleared
// together on logout.
const (
	StateCurrentUser = "current_user"
	StateMustChange  = "must_change_pwd"
	StateTheme       = "tema"
)

// ErrNotFound is returned when a requested state key has no value.
var ErrNotFound = errors.New("store: not found")

// StateStore persists console state in a local SQLite database:
// the signed-in profile snapshot, the mandatory password-change flag,
// the theme preference, and a cache of the last fetched notification
// page so the feed has content while a fetch is in flight.
type StateStore struct {
	db *sqlx.DB
}

// NewStateStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewStateStore(dbPath string) (*StateStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &StateStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *StateStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *StateStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// SetState stores a raw string value under key.
func (s *StateStore) SetState(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_state (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("setting state %q: %w", key, err)
	}
	return nil
}

// GetState retrieves the raw string value stored under key.
// Returns ErrNotFound when the key has no value.
func (s *StateStore) GetState(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.GetContext(ctx, &value, "SELECT value FROM app_state WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("getting state %q: %w", key, err)
	}
	return value, nil
}

// DeleteState removes a state key. Deleting an absent key is not an error.
func (s *StateStore) DeleteState(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM app_state WHERE key = ?", key)
	if err != nil {
		return fmt.Errorf("deleting state %q: %w", key, err)
	}
	return nil
}

// SaveCurrentUser persists the profile snapshot as JSON.
func (s *StateStore) SaveCurrentUser(ctx context.Context, u model.CurrentUser) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("marshaling current user: %w", err)
	}
	return s.SetState(ctx, StateCurrentUser, string(data))
}

// LoadCurrentUser reads the persisted profile snapshot.
// A corrupt snapshot is treated the same as an absent one.
func (s *StateStore) LoadCurrentUser(ctx context.Context) (model.CurrentUser, error) {
	raw, err := s.GetState(ctx, StateCurrentUser)
	if err != nil {
		return model.CurrentUser{}, err
	}

	var u model.CurrentUser
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return model.CurrentUser{}, ErrNotFound
	}
	return u, nil
}

// SaveMustChangeFlag persists the mandatory password-change marker.
func (s *StateStore) SaveMustChangeFlag(ctx context.Context, f model.MustChangeFlag) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshaling must-change flag: %w", err)
	}
	return s.SetState(ctx, StateMustChange, string(data))
}

// LoadMustChangeFlag reads the mandatory password-change marker.
func (s *StateStore) LoadMustChangeFlag(ctx context.Context) (model.MustChangeFlag, error) {
	raw, err := s.GetState(ctx, StateMustChange)
	if err != nil {
		return model.MustChangeFlag{}, err
	}

	var f model.MustChangeFlag
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		return model.MustChangeFlag{}, ErrNotFound
	}
	return f, nil
}

// ClearSession removes every state key tied to the signed-in user.
// The theme preference survives so the login screen keeps its look.
func (s *StateStore) ClearSession(ctx context.Context) error {
	for _, key := range []string{StateCurrentUser, StateMustChange} {
		if err := s.DeleteState(ctx, key); err != nil {
			return err
		}
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM notifications"); err != nil {
		return fmt.Errorf("clearing notification cache: %w", err)
	}
	return nil
}

// CacheNotifications upserts a fetched page into the local cache.
// The read flag is monotonic: a cached item already marked read is
// never flipped back to unread by a later fetch.
func (s *StateStore) CacheNotifications(ctx context.Context, items []model.NotificationItem) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	const query = `
		INSERT INTO notifications (
			id, title, message, url, cta, read,
			created_at, type, origin, reference_id, data_ref, fetched_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			message = excluded.message,
			url = excluded.url,
			cta = excluded.cta,
			read = MAX(notifications.read, excluded.read),
			type = excluded.type,
			origin = excluded.origin,
			reference_id = excluded.reference_id,
			data_ref = excluded.data_ref,
			fetched_at = excluded.fetched_at`

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing notification upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, n := range items {
		_, err = stmt.ExecContext(ctx,
			n.ID, n.Title, n.Message, n.URL, n.CTA, boolToInt(n.Read),
			n.CreatedAt.UTC(), n.Type, n.Origin, n.ReferenceID, n.DataRef, now,
		)
		if err != nil {
			return fmt.Errorf("caching notification %d: %w", n.ID, err)
		}
	}

	return tx.Commit()
}

// CachedNotifications returns the most recently created cached items.
func (s *StateStore) CachedNotifications(ctx context.Context, limit int) ([]model.NotificationItem, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryxContext(ctx,
		"SELECT * FROM notifications ORDER BY created_at DESC LIMIT ?", limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying cached notifications: %w", err)
	}
	defer rows.Close()

	var items []model.NotificationItem
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, n)
	}

	return items, rows.Err()
}

// MarkCachedRead flips a single cached item to read.
func (s *StateStore) MarkCachedRead(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, "UPDATE notifications SET read = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("marking cached notification %d read: %w", id, err)
	}
	return nil
}

// MarkAllCachedRead flips every cached item to read.
func (s *StateStore) MarkAllCachedRead(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "UPDATE notifications SET read = 1")
	if err != nil {
		return fmt.Errorf("marking cached notifications read: %w", err)
	}
	return nil
}

// scanNotification scans a cached row from a sqlx.Rows result set.
func scanNotification(rows *sqlx.Rows) (model.NotificationItem, error) {
	var (
		n         model.NotificationItem
		readInt   int
		createdAt time.Time
		fetchedAt time.Time
	)

	err := rows.Scan(
		&n.ID, &n.Title, &n.Message, &n.URL, &n.CTA, &readInt,
		&createdAt, &n.Type, &n.Origin, &n.ReferenceID, &n.DataRef, &fetchedAt,
	)
	if err != nil {
		return model.NotificationItem{}, fmt.Errorf("scanning notification row: %w", err)
	}

	n.Read = readInt != 0
	n.CreatedAt = createdAt

	return n, nil
}

// boolToInt converts a boolean to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
