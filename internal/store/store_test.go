package store

import (
	"context"
	"path/filepath"
	"testing"
)

// kvContract exercises the KVStore contract against any implementation
func kvContract(t *testing.T, s KVStore) {
	t.Helper()
	ctx := context.Background()

	// Absent key
	_, found, err := s.Get(ctx, "missing")
	if err != nil {
		t.Fatalf("Get(missing) error = %v", err)
	}
	if found {
		t.Error("Get(missing) found = true")
	}

	// Set then get
	if err := s.Set(ctx, KeyAliases, `{"aliases":{}}`); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	value, found, err := s.Get(ctx, KeyAliases)
	if err != nil || !found {
		t.Fatalf("Get() = %v, %v, %v", value, found, err)
	}
	if value != `{"aliases":{}}` {
		t.Errorf("value = %q", value)
	}

	// Overwrite
	if err := s.Set(ctx, KeyAliases, `{"aliases":{"bal":"wallet balance"}}`); err != nil {
		t.Fatalf("Set() overwrite error = %v", err)
	}
	value, _, _ = s.Get(ctx, KeyAliases)
	if value != `{"aliases":{"bal":"wallet balance"}}` {
		t.Errorf("overwritten value = %q", value)
	}

	// Delete, including an absent key
	if err := s.Delete(ctx, KeyAliases); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, found, _ := s.Get(ctx, KeyAliases); found {
		t.Error("deleted key still found")
	}
	if err := s.Delete(ctx, "never-existed"); err != nil {
		t.Errorf("Delete(absent) error = %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	kvContract(t, s)
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")

	s, err := NewSQLiteStore(SQLiteConfig{Path: path, SessionID: "session-a"})
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	defer s.Close()

	kvContract(t, s)
}

func TestSQLiteStore_SessionIsolation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")
	ctx := context.Background()

	a, err := NewSQLiteStore(SQLiteConfig{Path: path, SessionID: "session-a"})
	if err != nil {
		t.Fatalf("NewSQLiteStore(a) error = %v", err)
	}
	defer a.Close()

	b, err := NewSQLiteStoreWithDB(a.db, "session-b")
	if err != nil {
		t.Fatalf("NewSQLiteStoreWithDB(b) error = %v", err)
	}

	if err := a.Set(ctx, KeyHistory, `{"history":["wallet status"]}`); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if _, found, _ := b.Get(ctx, KeyHistory); found {
		t.Error("session-b must not see session-a state")
	}
	if _, found, _ := a.Get(ctx, KeyHistory); !found {
		t.Error("session-a state missing")
	}
}

func TestSQLiteStore_RequiresSessionID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")

	if _, err := NewSQLiteStore(SQLiteConfig{Path: path}); err == nil {
		t.Error("NewSQLiteStore() should reject an empty session id")
	}
}
