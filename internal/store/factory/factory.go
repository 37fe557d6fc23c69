// Package factory selects and opens a store.Store for a repo or global
// scope based on environment variables, mirroring the backend-registry
// pattern the rest of this codebase uses for pluggable storage.
package factory

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mementodev/mementod/internal/store"
	"github.com/mementodev/mementod/internal/store/jsonl"
	"github.com/mementodev/mementod/internal/store/sqlite"
)

// Backend names a storage implementation.
type Backend string

const (
	BackendJSONL  Backend = "jsonl"
	BackendSQLite Backend = "sqlite"
)

const (
	envBackend     = "MEMENTOD_BACKEND"
	envRepoJSONL   = "MEMENTOD_REPO_JSONL"
	envRepoDB      = "MEMENTOD_REPO_DB"
	envHomeJSONL   = "MEMENTOD_HOME_JSONL"
	envHomeDB      = "MEMENTOD_HOME_DB"
	defaultDataDir = ".mementod/memory"
)

// ChooseBackend reads MEMENTOD_BACKEND, defaulting to the append-only
// jsonl backend when unset or unrecognized.
func ChooseBackend() Backend {
	switch Backend(strings.ToLower(os.Getenv(envBackend))) {
	case BackendSQLite:
		return BackendSQLite
	default:
		return BackendJSONL
	}
}

// OpenRepoStore opens the store backing repoRoot's per-repository scope
// with the backend chosen from MEMENTOD_BACKEND, honoring
// MEMENTOD_REPO_JSONL / MEMENTOD_REPO_DB path overrides.
func OpenRepoStore(repoRoot string) (store.Store, error) {
	return OpenRepoStoreWith(ChooseBackend(), repoRoot)
}

// OpenRepoStoreWith is OpenRepoStore with an explicit backend selector,
// bypassing the environment variable.
func OpenRepoStoreWith(backend Backend, repoRoot string) (store.Store, error) {
	return open(backend,
		envOr(envRepoJSONL, filepath.Join(repoRoot, defaultDataDir, "memory.jsonl")),
		envOr(envRepoDB, filepath.Join(repoRoot, defaultDataDir, "memory.db")),
	)
}

// OpenGlobalStore opens the store backing the user's global scope with
// the backend chosen from MEMENTOD_BACKEND, honoring
// MEMENTOD_HOME_JSONL / MEMENTOD_HOME_DB path overrides.
func OpenGlobalStore(homeDir string) (store.Store, error) {
	return OpenGlobalStoreWith(ChooseBackend(), homeDir)
}

// OpenGlobalStoreWith is OpenGlobalStore with an explicit backend
// selector, bypassing the environment variable.
func OpenGlobalStoreWith(backend Backend, homeDir string) (store.Store, error) {
	return open(backend,
		envOr(envHomeJSONL, filepath.Join(homeDir, defaultDataDir, "memory.jsonl")),
		envOr(envHomeDB, filepath.Join(homeDir, defaultDataDir, "memory.db")),
	)
}

// RepoDataDir returns the data directory under repoRoot that backs the
// repo scope, i.e. where internal/config also looks for config.yaml.
func RepoDataDir(repoRoot string) string {
	return filepath.Join(repoRoot, defaultDataDir)
}

// HomeDataDir returns the data directory under homeDir that backs the
// global scope.
func HomeDataDir(homeDir string) string {
	return filepath.Join(homeDir, defaultDataDir)
}

func open(backend Backend, jsonlPath, dbPath string) (store.Store, error) {
	switch backend {
	case BackendSQLite:
		s, err := sqlite.New(dbPath)
		if err != nil {
			return nil, fmt.Errorf("factory: open sqlite backend: %w", err)
		}
		return s, nil
	case BackendJSONL:
		return jsonl.New(jsonlPath), nil
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", store.ErrUnsupported, backend)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
