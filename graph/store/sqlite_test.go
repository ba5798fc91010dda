package store

import (
	"context"
	"path/filepath"
	"testing"
)

func TestSQLiteStore_Conformance(t *testing.T) {
	s, err := NewSQLiteStore[TestState](":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer s.Close()

	runStoreConformance(t, s)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "threads.db")

	s1, err := NewSQLiteStore[TestState](path)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	state := TestState{Messages: []string{"hi", "hello!"}, Turns: 1}
	if err := s1.Save(ctx, "default", state); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := s1.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	s2, err := NewSQLiteStore[TestState](path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s2.Close()

	loaded, err := s2.Load(ctx, "default")
	if err != nil {
		t.Fatalf("Load after reopen failed: %v", err)
	}
	if len(loaded.Messages) != 2 || loaded.Turns != 1 {
		t.Errorf("state lost across reopen: %+v", loaded)
	}
}

func TestSQLiteStore_Closed(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLiteStore[TestState](":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
	if err := s.Save(ctx, "t1", TestState{}); err == nil {
		t.Error("expected Save on closed store to fail")
	}
}

func TestSQLiteStore_Path(t *testing.T) {
	path := filepath.Join(t.TempDir(), "threads.db")
	s, err := NewSQLiteStore[TestState](path)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer s.Close()

	if s.Path() != path {
		t.Errorf("expected path %q, got %q", path, s.Path())
	}
}
