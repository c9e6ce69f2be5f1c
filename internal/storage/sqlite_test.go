package storage

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
)

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "talks.db")
	ctx := context.Background()

	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	for _, tk := range sampleTalks() {
		if err := s.Insert(ctx, tk); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopening: %v", err)
	}
	defer reopened.Close()

	talks, err := reopened.FindAll(ctx)
	if err != nil {
		t.Fatalf("FindAll() error = %v", err)
	}
	if !reflect.DeepEqual(talks, sampleTalks()) {
		t.Errorf("FindAll() after reopen = %+v, want %+v", talks, sampleTalks())
	}
}

func TestSQLiteStore_FindByTitleMissing(t *testing.T) {
	s, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	defer s.Close()

	got, err := s.FindByTitle(context.Background(), "nothing")
	if err != nil {
		t.Fatalf("FindByTitle() error = %v", err)
	}
	if got != nil {
		t.Errorf("FindByTitle() = %+v, want nil", got)
	}
}

func TestSQLiteStore_StoreAssignedIDs(t *testing.T) {
	s, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	for _, tk := range sampleTalks() {
		if err := s.Insert(ctx, tk); err != nil {
			t.Fatal(err)
		}
	}

	var distinct int
	if err := s.db.QueryRow(`SELECT COUNT(DISTINCT id) FROM talks`).Scan(&distinct); err != nil {
		t.Fatal(err)
	}
	if distinct != len(sampleTalks()) {
		t.Errorf("distinct ids = %d, want %d", distinct, len(sampleTalks()))
	}
}
