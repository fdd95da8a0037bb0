// Package state is the client's local persistence: the auth token held
// across invocations and the session draft being edited. Everything lives
// in a single SQLite file under the user's home directory; the training
// data itself never lands here, the service owns it.
package state

import (
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/claude/pumplog/internal/models"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrNoToken is returned when no auth token is stored for a server.
var ErrNoToken = errors.New("state: no token stored")

// ErrNoDraft is returned when the requested draft does not exist, or no
// draft is currently selected.
var ErrNoDraft = errors.New("state: no such draft")

// DB is the local state database.
type DB struct {
	db *sql.DB
}

// Open opens (or creates) the state database at dir/state.db and applies
// pending schema migrations.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "state.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating state db: %w", err)
	}

	return &DB{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("creating migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// Close closes the state database.
func (s *DB) Close() error {
	return s.db.Close()
}

// --- Auth token ---

// SaveToken stores the bearer token issued for a server URL, replacing
// any previous one. Called after login and register.
func (s *DB) SaveToken(serverURL, token string) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO auth_tokens (server_url, token, saved_at) VALUES (?, ?, ?)`,
		serverURL, token, time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// LoadToken returns the stored bearer token for a server URL, or
// ErrNoToken when the user has not logged in against it.
func (s *DB) LoadToken(serverURL string) (string, error) {
	var token string
	err := s.db.QueryRow(
		`SELECT token FROM auth_tokens WHERE server_url = ?`, serverURL,
	).Scan(&token)
	if err == sql.ErrNoRows {
		return "", ErrNoToken
	}
	if err != nil {
		return "", err
	}
	return token, nil
}

// ClearToken removes the stored token for a server URL. Called on logout.
func (s *DB) ClearToken(serverURL string) error {
	_, err := s.db.Exec(`DELETE FROM auth_tokens WHERE server_url = ?`, serverURL)
	return err
}

// --- Session drafts ---

// Draft is an in-progress session edit persisted between CLI invocations.
// SessionID is empty for a new session and holds the service id when the
// draft was seeded from an existing record.
type Draft struct {
	ID        string
	SessionID string
	Values    models.FormValues
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateDraft stores a new draft and selects it as current.
func (s *DB) CreateDraft(sessionID string, values models.FormValues) (*Draft, error) {
	data, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("encoding draft: %w", err)
	}

	now := time.Now().UTC()
	d := &Draft{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Values:    values,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = s.db.Exec(
		`INSERT INTO drafts (id, session_id, form_values, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		d.ID, d.SessionID, string(data), now.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("storing draft: %w", err)
	}
	if err := s.setSetting("current_draft", d.ID); err != nil {
		return nil, err
	}
	return d, nil
}

// UpdateDraft replaces the stored form values of a draft.
func (s *DB) UpdateDraft(id string, values models.FormValues) error {
	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("encoding draft: %w", err)
	}
	res, err := s.db.Exec(
		`UPDATE drafts SET form_values = ?, updated_at = ? WHERE id = ?`,
		string(data), time.Now().UTC().Format(time.RFC3339), id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNoDraft
	}
	return nil
}

// GetDraft loads one draft by id.
func (s *DB) GetDraft(id string) (*Draft, error) {
	row := s.db.QueryRow(
		`SELECT id, session_id, form_values, created_at, updated_at FROM drafts WHERE id = ?`, id,
	)
	return scanDraft(row)
}

// CurrentDraft loads the draft currently being edited.
func (s *DB) CurrentDraft() (*Draft, error) {
	id, err := s.getSetting("current_draft")
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, ErrNoDraft
	}
	return s.GetDraft(id)
}

// DeleteDraft removes a draft; if it was current, the selection clears.
func (s *DB) DeleteDraft(id string) error {
	if _, err := s.db.Exec(`DELETE FROM drafts WHERE id = ?`, id); err != nil {
		return err
	}
	current, err := s.getSetting("current_draft")
	if err != nil {
		return err
	}
	if current == id {
		return s.setSetting("current_draft", "")
	}
	return nil
}

// ListDrafts returns all stored drafts, newest first.
func (s *DB) ListDrafts() ([]Draft, error) {
	rows, err := s.db.Query(
		`SELECT id, session_id, form_values, created_at, updated_at FROM drafts ORDER BY updated_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drafts []Draft
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, *d)
	}
	return drafts, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDraft(row scanner) (*Draft, error) {
	var d Draft
	var data, created, updated string
	err := row.Scan(&d.ID, &d.SessionID, &data, &created, &updated)
	if err == sql.ErrNoRows {
		return nil, ErrNoDraft
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(data), &d.Values); err != nil {
		return nil, fmt.Errorf("decoding draft %s: %w", d.ID, err)
	}
	d.CreatedAt, _ = time.Parse(time.RFC3339, created)
	d.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
	return &d, nil
}

func (s *DB) setSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`, key, value,
	)
	return err
}

func (s *DB) getSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}
