package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mementodev/mementod/internal/recall"
)

func TestLoadDefaultsWhenNoConfigFile(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, recall.DefaultWeights(), cfg.RecallWeights)
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := "recall:\n  half_life_days: 14\n  file_hint_bonus: 0.6\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, 14.0, cfg.RecallWeights.HalfLifeDays)
	require.Equal(t, 0.6, cfg.RecallWeights.FileHintBonus)
	require.Equal(t, recall.DefaultWeights().CrateHintBonus, cfg.RecallWeights.CrateHintBonus)
}

func TestLoadHonorsEnvironmentOverride(t *testing.T) {
	dir := t.TempDir()
	old, had := os.LookupEnv("MEMENTOD_RECALL_HALF_LIFE_DAYS")
	os.Setenv("MEMENTOD_RECALL_HALF_LIFE_DAYS", "3")
	t.Cleanup(func() {
		if had {
			os.Setenv("MEMENTOD_RECALL_HALF_LIFE_DAYS", old)
		} else {
			os.Unsetenv("MEMENTOD_RECALL_HALF_LIFE_DAYS")
		}
	})

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, 3.0, cfg.RecallWeights.HalfLifeDays)
}
