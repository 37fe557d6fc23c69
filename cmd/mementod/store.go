package main

import (
	"fmt"
	"os"

	"github.com/mementodev/mementod/internal/config"
	"github.com/mementodev/mementod/internal/store"
	"github.com/mementodev/mementod/internal/store/factory"
)

// openRepoStore opens the store for the current working directory's
// repository scope, the default target for every command except
// migrate and compact (which name their paths explicitly).
func openRepoStore() (store.Store, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("determine working directory: %w", err)
	}
	s, err := factory.OpenRepoStore(cwd)
	if err != nil {
		return nil, fmt.Errorf("open repo store: %w", err)
	}
	return s, nil
}

// loadRepoConfig reads config.yaml (if any) from the current working
// directory's repo-scoped data directory, resolving recall weight
// overrides alongside MEMENTOD_RECALL_* environment variables.
func loadRepoConfig() (*config.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("determine working directory: %w", err)
	}
	cfg, err := config.Load(factory.RepoDataDir(cwd))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
