package factory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mementodev/mementod/internal/store/jsonl"
	"github.com/mementodev/mementod/internal/store/sqlite"
	"github.com/mementodev/mementod/internal/types"
)

func withEnv(t *testing.T, key, value string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	os.Setenv(key, value)
	t.Cleanup(func() {
		if had {
			os.Setenv(key, old)
		} else {
			os.Unsetenv(key)
		}
	})
}

func TestChooseBackendDefaultsToJSONL(t *testing.T) {
	withEnv(t, envBackend, "")
	os.Unsetenv(envBackend)
	if got := ChooseBackend(); got != BackendJSONL {
		t.Fatalf("ChooseBackend() = %q, want %q", got, BackendJSONL)
	}
}

func TestChooseBackendHonorsSQLite(t *testing.T) {
	withEnv(t, envBackend, "sqlite")
	if got := ChooseBackend(); got != BackendSQLite {
		t.Fatalf("ChooseBackend() = %q, want %q", got, BackendSQLite)
	}
}

func TestOpenRepoStoreJSONL(t *testing.T) {
	dir := t.TempDir()
	os.Unsetenv(envBackend)
	withEnv(t, envRepoJSONL, filepath.Join(dir, "custom.jsonl"))

	s, err := OpenRepoStore(dir)
	if err != nil {
		t.Fatalf("OpenRepoStore() error = %v", err)
	}
	defer s.Close()

	if _, ok := s.(*jsonl.Store); !ok {
		t.Fatalf("OpenRepoStore() returned %T, want *jsonl.Store", s)
	}

	it := types.New(types.ScopeRepo, types.KindNote, "test", "hi")
	if err := s.Add(context.Background(), it); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "custom.jsonl")); err != nil {
		t.Fatalf("expected custom path to be used: %v", err)
	}
}

func TestOpenRepoStoreSQLite(t *testing.T) {
	dir := t.TempDir()
	withEnv(t, envBackend, "sqlite")
	withEnv(t, envRepoDB, filepath.Join(dir, "custom.db"))

	s, err := OpenRepoStore(dir)
	if err != nil {
		t.Fatalf("OpenRepoStore() error = %v", err)
	}
	defer s.Close()

	if _, ok := s.(*sqlite.Store); !ok {
		t.Fatalf("OpenRepoStore() returned %T, want *sqlite.Store", s)
	}
}

func TestOpenRepoStoreWithOverridesEnv(t *testing.T) {
	dir := t.TempDir()
	withEnv(t, envBackend, "jsonl")
	withEnv(t, envRepoDB, filepath.Join(dir, "explicit.db"))

	s, err := OpenRepoStoreWith(BackendSQLite, dir)
	if err != nil {
		t.Fatalf("OpenRepoStoreWith() error = %v", err)
	}
	defer s.Close()

	if _, ok := s.(*sqlite.Store); !ok {
		t.Fatalf("OpenRepoStoreWith(BackendSQLite) returned %T, want *sqlite.Store despite MEMENTOD_BACKEND=jsonl", s)
	}
}
