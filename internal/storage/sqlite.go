package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/matsen/talkportal/internal/talk"
	_ "modernc.org/sqlite"
)

// selectTalkFields contains the standard field list for SELECT queries.
const selectTalkFields = `title, description, posted_by, tags_json, date`

// firstByTitle selects the rowid of the first talk with an exact title.
const firstByTitle = `(SELECT rowid FROM talks WHERE title = ? ORDER BY rowid LIMIT 1)`

// SQLiteStore keeps talks in a single SQLite table.
// Tags are stored as a JSON array; rowid preserves insertion order.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates a SQLite database at the given path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// createSchema creates the talks table if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS talks (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			posted_by TEXT NOT NULL DEFAULT '',
			tags_json TEXT NOT NULL DEFAULT '[]',
			date TEXT NOT NULL
		);

		-- Title is the de facto key for every lookup
		CREATE INDEX IF NOT EXISTS idx_talks_title ON talks(title);
	`

	_, err := db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// FindAll returns all talks in insertion order.
func (s *SQLiteStore) FindAll(ctx context.Context) ([]talk.Talk, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+selectTalkFields+` FROM talks ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("listing talks: %w", err)
	}
	defer rows.Close()

	return scanTalks(rows)
}

// FindByTitle returns the first talk with exactly this title.
func (s *SQLiteStore) FindByTitle(ctx context.Context, title string) (*talk.Talk, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectTalkFields+` FROM talks WHERE title = ? ORDER BY rowid LIMIT 1`, title)
	return scanTalk(row)
}

// TitleExists reports whether a talk with this title exists, ignoring case.
// Titles are compared in Go because COLLATE NOCASE folds ASCII only.
func (s *SQLiteStore) TitleExists(ctx context.Context, title string) (bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT title FROM talks`)
	if err != nil {
		return false, fmt.Errorf("checking title: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var existing string
		if err := rows.Scan(&existing); err != nil {
			return false, fmt.Errorf("checking title: %w", err)
		}
		if strings.EqualFold(existing, title) {
			return true, nil
		}
	}
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("checking title: %w", err)
	}
	return false, nil
}

// Insert adds a talk with a fresh store identifier.
func (s *SQLiteStore) Insert(ctx context.Context, t talk.Talk) error {
	tagsJSON, err := json.Marshal(t.Normalize().Tags)
	if err != nil {
		return fmt.Errorf("marshaling tags for %q: %w", t.Title, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO talks (id, title, description, posted_by, tags_json, date)
		VALUES (?, ?, ?, ?, ?, ?)
	`, uuid.NewString(), t.Title, t.Description, t.PostedBy, string(tagsJSON), t.Date)
	if err != nil {
		return fmt.Errorf("inserting talk %q: %w", t.Title, err)
	}
	return nil
}

// UpdateFields patches the first talk with exactly this title.
func (s *SQLiteStore) UpdateFields(ctx context.Context, title string, p talk.Patch) error {
	sets := []string{"date = ?"}
	args := []any{p.Date}

	if p.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *p.Description)
	}
	if p.PostedBy != nil {
		sets = append(sets, "posted_by = ?")
		args = append(args, *p.PostedBy)
	}
	if p.Tags != nil {
		tagsJSON, err := json.Marshal(p.Tags)
		if err != nil {
			return fmt.Errorf("marshaling tags for %q: %w", title, err)
		}
		sets = append(sets, "tags_json = ?")
		args = append(args, string(tagsJSON))
	}
	args = append(args, title)

	query := `UPDATE talks SET ` + strings.Join(sets, ", ") + ` WHERE rowid = ` + firstByTitle
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("updating talk %q: %w", title, err)
	}
	return nil
}

// DeleteByTitle removes the first talk with exactly this title.
func (s *SQLiteStore) DeleteByTitle(ctx context.Context, title string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM talks WHERE rowid = `+firstByTitle, title)
	if err != nil {
		return false, fmt.Errorf("deleting talk %q: %w", title, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting talk %q: %w", title, err)
	}
	return n > 0, nil
}

// scanner interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanTalk(s scanner) (*talk.Talk, error) {
	var t talk.Talk
	var tagsJSON string

	err := s.Scan(&t.Title, &t.Description, &t.PostedBy, &tagsJSON, &t.Date)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if err := json.Unmarshal([]byte(tagsJSON), &t.Tags); err != nil {
		return nil, fmt.Errorf("parsing tags JSON for %q: %w", t.Title, err)
	}

	t = t.Normalize()
	return &t, nil
}

func scanTalks(rows *sql.Rows) ([]talk.Talk, error) {
	talks := []talk.Talk{}
	for rows.Next() {
		t, err := scanTalk(rows)
		if err != nil {
			return nil, err
		}
		if t != nil {
			talks = append(talks, *t)
		}
	}
	return talks, rows.Err()
}
