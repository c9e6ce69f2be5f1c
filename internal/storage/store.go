// Package storage persists tech talks in a document store.
//
// Three backends implement Store: MongoDB (the production document
// database), SQLite and a git-versionable JSONL file.
package storage

import (
	"context"
	"fmt"

	"github.com/matsen/talkportal/internal/config"
	"github.com/matsen/talkportal/internal/talk"
)

// Store is the persistence adapter for talk records, keyed by title.
type Store interface {
	// FindAll returns every record in insertion order.
	FindAll(ctx context.Context) ([]talk.Talk, error)

	// FindByTitle returns the first record whose title matches exactly
	// (case-sensitive), or nil if there is none.
	FindByTitle(ctx context.Context, title string) (*talk.Talk, error)

	// TitleExists reports whether any record has the title, ignoring case.
	TitleExists(ctx context.Context, title string) (bool, error)

	// Insert adds a new record.
	Insert(ctx context.Context, t talk.Talk) error

	// UpdateFields applies a patch to the first record with the exact title.
	// Updating a missing title is not an error.
	UpdateFields(ctx context.Context, title string, p talk.Patch) error

	// DeleteByTitle removes the first record with the exact title and
	// reports whether one was removed.
	DeleteByTitle(ctx context.Context, title string) (bool, error)

	// Close releases the connection or file handles.
	Close() error
}

// Open opens the store selected by cfg.Backend.
// Failure to reach the store is returned as a *talk.ConnectionError.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var (
		s   Store
		err error
	)
	switch cfg.Backend {
	case config.BackendMongo:
		s, err = OpenMongo(ctx, cfg.MongoURI, cfg.Database, cfg.Collection, cfg.ConnectTimeout)
	case config.BackendSQLite:
		s, err = OpenSQLite(cfg.SQLitePath())
	case config.BackendJSONL:
		s, err = OpenJSONL(cfg.JSONLPath())
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, talk.NewConnectionError(config.DisplayName(cfg.Backend), err)
	}
	return s, nil
}

// applyPatch applies p to t in place.
func applyPatch(t *talk.Talk, p talk.Patch) {
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.PostedBy != nil {
		t.PostedBy = *p.PostedBy
	}
	if p.Tags != nil {
		t.Tags = append([]string{}, p.Tags...)
	}
	t.Date = p.Date
}
