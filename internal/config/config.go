// Package config loads optional overrides for mementod's non-path
// settings, the recall ranking weights, from a per-scope config.yaml
// with MEMENTOD_-prefixed environment variables layered on top. Path
// resolution for the stores themselves stays plain os.Getenv (see
// internal/store/factory); this package only covers numeric knobs.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/mementodev/mementod/internal/recall"
)

// Config is the resolved set of non-path settings for one mementod
// invocation.
type Config struct {
	RecallWeights recall.Weights
}

// Load reads <dataRoot>/config.yaml if present and layers MEMENTOD_RECALL_*
// environment variables on top of it. A missing config file is not an
// error; every field keeps its default weight.
func Load(dataRoot string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(filepath.Join(dataRoot, "config.yaml"))
	v.SetEnvPrefix("MEMENTOD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := recall.DefaultWeights()
	v.SetDefault("recall.file_hint_bonus", def.FileHintBonus)
	v.SetDefault("recall.crate_hint_bonus", def.CrateHintBonus)
	v.SetDefault("recall.language_hint_bonus", def.LanguageHintBonus)
	v.SetDefault("recall.command_hint_bonus", def.CommandHintBonus)
	v.SetDefault("recall.frequency_step", def.FrequencyStep)
	v.SetDefault("recall.half_life_days", def.HalfLifeDays)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: read %s: %w", v.ConfigFileUsed(), err)
		}
	}

	return &Config{
		RecallWeights: recall.Weights{
			FileHintBonus:     v.GetFloat64("recall.file_hint_bonus"),
			CrateHintBonus:    v.GetFloat64("recall.crate_hint_bonus"),
			LanguageHintBonus: v.GetFloat64("recall.language_hint_bonus"),
			CommandHintBonus:  v.GetFloat64("recall.command_hint_bonus"),
			FrequencyStep:     v.GetFloat64("recall.frequency_step"),
			HalfLifeDays:      v.GetFloat64("recall.half_life_days"),
		},
	}, nil
}
