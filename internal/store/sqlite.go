package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pbaille/oniria/internal/domain"
)

//go:embed schema.sql
var schema string

// SchemaVersion is the only schema this build understands.
const SchemaVersion = 1

// created_at is fixed width so text order is time order.
const layoutCreatedAt = "2006-01-02T15:04:05.000000000Z07:00"

// SQLite stores one row per entry with indexes on date and emotion.
type SQLite struct {
	db *sql.DB
}

var _ Backend = (*SQLite)(nil)

// NewSQLite opens (or creates) the database at dbPath
func NewSQLite(dbPath string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func initSchema(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version > SchemaVersion {
		return fmt.Errorf("unsupported schema version %d (want %d)", version, SchemaVersion)
	}

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}

	if version == 0 {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", SchemaVersion)); err != nil {
			return fmt.Errorf("set schema version: %w", err)
		}
	}
	return nil
}

// Close closes the database connection
func (s *SQLite) Close() error {
	return s.db.Close()
}

const selectColumns = "SELECT id, title, description, date, emotion, symbol, tags, created_at FROM dreams"

// ListAll returns entries newest-created first
func (s *SQLite) ListAll(ctx context.Context) ([]domain.Entry, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+" ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("list dreams: %w", err)
	}
	defer rows.Close()

	var entries []domain.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list dreams: %w", err)
	}

	return entries, nil
}

// Get retrieves an entry by ID
func (s *SQLite) Get(ctx context.Context, id string) (domain.Entry, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Entry{}, fmt.Errorf("get dream %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Entry{}, err
	}
	return e, nil
}

// Put inserts or replaces an entry in a single transaction
func (s *SQLite) Put(ctx context.Context, e domain.Entry) error {
	tags, err := json.Marshal(e.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin put: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO dreams (id, title, description, date, emotion, symbol, tags, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			date = excluded.date,
			emotion = excluded.emotion,
			symbol = excluded.symbol,
			tags = excluded.tags`,
		e.ID, e.Title, e.Description, e.Date.String(), string(e.Emotion), e.Symbol,
		string(tags), e.CreatedAt.UTC().Format(layoutCreatedAt),
	)
	if err != nil {
		return fmt.Errorf("put dream: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit put: %w", err)
	}
	return nil
}

// Delete removes an entry; deleting a missing id succeeds
func (s *SQLite) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM dreams WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete dream: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(r rowScanner) (domain.Entry, error) {
	var (
		e         domain.Entry
		date      string
		emotion   string
		tags      string
		createdAt string
	)
	if err := r.Scan(&e.ID, &e.Title, &e.Description, &date, &emotion, &e.Symbol, &tags, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return e, err
		}
		return e, fmt.Errorf("scan dream: %w", err)
	}

	d, err := domain.ParseDate(date)
	if err != nil {
		return e, fmt.Errorf("scan dream %s: %w", e.ID, err)
	}
	e.Date = d
	e.Emotion = domain.Emotion(emotion)

	if err := json.Unmarshal([]byte(tags), &e.Tags); err != nil {
		return e, fmt.Errorf("scan dream %s tags: %w", e.ID, err)
	}

	e.CreatedAt, err = time.Parse(layoutCreatedAt, createdAt)
	if err != nil {
		return e, fmt.Errorf("scan dream %s created_at: %w", e.ID, err)
	}
	return e, nil
}
