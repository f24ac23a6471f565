// Package archive is the on-disk backup store and the concrete
// transcript source: dialog, participant, and message rows live in
// SQLite, raw media payloads in a Pebble blob store beside it.
package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/tOgg1/scrollback/internal/backup"
)

// Not-found sentinels.
var (
	ErrBackupNotFound = errors.New("backup not found")
	ErrDialogNotFound = errors.New("dialog not found")
)

// Archive is one backup directory: backup.db plus blobs/.
type Archive struct {
	dir   string
	db    *sql.DB
	blobs *BlobStore
}

// Open opens an existing backup directory.
func Open(dir string) (*Archive, error) {
	if _, err := os.Stat(filepath.Join(dir, "backup.db")); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBackupNotFound, dir)
	}
	return open(dir)
}

// Create initializes a new backup directory, or opens it if it already
// exists (imports are resumable).
func Create(dir string) (*Archive, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create backup dir: %w", err)
	}
	return open(dir)
}

func open(dir string) (*Archive, error) {
	path := filepath.Join(dir, "backup.db")
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open backup database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect to backup database: %w", err)
	}

	a := &Archive{dir: dir, db: db}
	if err := a.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	blobs, err := OpenBlobs(filepath.Join(dir, "blobs"))
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	a.blobs = blobs
	return a, nil
}

// Dir returns the backup directory.
func (a *Archive) Dir() string {
	return a.dir
}

// Blobs returns the archive's blob store.
func (a *Archive) Blobs() *BlobStore {
	return a.blobs
}

// Close releases the database and blob store.
func (a *Archive) Close() error {
	if a == nil {
		return nil
	}
	var first error
	if a.blobs != nil {
		first = a.blobs.Close()
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (a *Archive) ensureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS backup_meta (
			id TEXT PRIMARY KEY,
			period_start INTEGER NOT NULL DEFAULT 0,
			period_end INTEGER NOT NULL DEFAULT 0,
			imported_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS dialogs (
			kind TEXT NOT NULL,
			id TEXT NOT NULL,
			name TEXT NOT NULL,
			PRIMARY KEY (kind, id)
		)`,
		`CREATE TABLE IF NOT EXISTS participants (
			dialog_kind TEXT NOT NULL,
			dialog_id TEXT NOT NULL,
			id TEXT NOT NULL,
			display_name TEXT NOT NULL,
			thumbnail BLOB,
			PRIMARY KEY (dialog_kind, dialog_id, id)
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			dialog_kind TEXT NOT NULL,
			dialog_id TEXT NOT NULL,
			id TEXT NOT NULL,
			sender_id TEXT NOT NULL DEFAULT '',
			ts INTEGER NOT NULL,
			body TEXT NOT NULL DEFAULT '',
			media_ref TEXT NOT NULL DEFAULT '',
			media_kind TEXT NOT NULL DEFAULT '',
			media_mime TEXT NOT NULL DEFAULT '',
			service TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (dialog_kind, dialog_id, id)
		)`,
		`CREATE INDEX IF NOT EXISTS messages_page_idx
			ON messages(dialog_kind, dialog_id, ts DESC, id DESC)`,
	}

	for _, stmt := range statements {
		if _, err := a.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("initialize backup schema: %w", err)
		}
	}
	return nil
}

// Meta is the backup-level metadata row.
type Meta struct {
	ID         string
	Period     backup.Period
	ImportedAt string
}

// SetMeta records the backup identifier and requested period. The row
// is written once per backup; re-imports keep the original.
func (a *Archive) SetMeta(ctx context.Context, meta Meta) error {
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO backup_meta (id, period_start, period_end, imported_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, meta.ID, meta.Period.Start, meta.Period.End, meta.ImportedAt)
	if err != nil {
		return fmt.Errorf("store backup meta: %w", err)
	}
	return nil
}

// Meta reads the backup metadata row.
func (a *Archive) Meta(ctx context.Context) (Meta, error) {
	var meta Meta
	err := a.db.QueryRowContext(ctx, `
		SELECT id, period_start, period_end, imported_at FROM backup_meta LIMIT 1
	`).Scan(&meta.ID, &meta.Period.Start, &meta.Period.End, &meta.ImportedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Meta{}, fmt.Errorf("%w: no metadata in %s", ErrBackupNotFound, a.dir)
	}
	if err != nil {
		return Meta{}, fmt.Errorf("read backup meta: %w", err)
	}
	return meta, nil
}
