// Package recall ranks active items against a query and a contextual
// hint set, selects a token-budgeted subset, and persists the
// counter side effects of that selection.
package recall

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/mementodev/mementod/internal/store"
	"github.com/mementodev/mementod/internal/tokenize"
	"github.com/mementodev/mementod/internal/types"
)

// Context carries the query-time hints and budgets a recall call is
// evaluated against. Weights is the zero value by default, which Recall
// treats as "use DefaultWeights()" — callers that load overrides from
// internal/config only need to set the fields they actually override.
type Context struct {
	CurrentFile string
	CrateName   string
	Language    string
	Command     string
	Now         string
	ItemCap     int
	TokenCap    int
	Weights     Weights
}

// Weights holds the tunable constants of the scoring formula.
// internal/config may load overrides for these from config.yaml or the
// environment; every field left at zero falls back to DefaultWeights.
type Weights struct {
	FileHintBonus     float64
	CrateHintBonus    float64
	LanguageHintBonus float64
	CommandHintBonus  float64
	FrequencyStep     float64
	HalfLifeDays      float64
}

// DefaultWeights returns the scoring constants recall ships with.
func DefaultWeights() Weights {
	return Weights{
		FileHintBonus:     0.4,
		CrateHintBonus:    0.3,
		LanguageHintBonus: 0.2,
		CommandHintBonus:  0.1,
		FrequencyStep:     0.1,
		HalfLifeDays:      7.0,
	}
}

func resolveWeights(w Weights) Weights {
	d := DefaultWeights()
	fill := func(v *float64, def float64) {
		if *v == 0 {
			*v = def
		}
	}
	fill(&w.FileHintBonus, d.FileHintBonus)
	fill(&w.CrateHintBonus, d.CrateHintBonus)
	fill(&w.LanguageHintBonus, d.LanguageHintBonus)
	fill(&w.CommandHintBonus, d.CommandHintBonus)
	fill(&w.FrequencyStep, d.FrequencyStep)
	fill(&w.HalfLifeDays, d.HalfLifeDays)
	return w
}

type scored struct {
	item       *types.Item
	score      float64
	tokenCount int
}

// Recall ranks every active item in s against query and ctx, greedily
// selects up to ctx.ItemCap items without exceeding ctx.TokenCap
// cumulative whitespace-token count, bumps each selected item's
// used_count, last_used_at, and updated_at to ctx.Now, persists the
// update, and returns the selected items in ranked order. A zero item or
// token budget selects nothing.
func Recall(ctx context.Context, s store.Store, query string, rc Context) ([]*types.Item, error) {
	now, err := time.Parse(time.RFC3339, rc.Now)
	if err != nil {
		return nil, fmt.Errorf("recall: parse now %q: %w", rc.Now, err)
	}

	items, err := s.List(ctx, store.ListFilter{Status: types.StatusActive})
	if err != nil {
		return nil, fmt.Errorf("recall: list active items: %w", err)
	}

	weights := resolveWeights(rc.Weights)
	queryTokens := tokenize.Set(query)
	candidates := make([]scored, 0, len(items))
	for _, it := range items {
		sc := score(it, query, queryTokens, rc, weights, now)
		candidates = append(candidates, scored{
			item:       it,
			score:      sc,
			tokenCount: len(strings.Fields(it.Content)),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	selected := make([]*types.Item, 0, rc.ItemCap)
	if rc.ItemCap > 0 && rc.TokenCap > 0 {
		budget := rc.TokenCap
		for _, c := range candidates {
			if len(selected) >= rc.ItemCap {
				break
			}
			if c.tokenCount > budget {
				continue
			}
			budget -= c.tokenCount
			selected = append(selected, c.item)
		}
	}

	nowStr := rc.Now
	for _, it := range selected {
		updated := it.Clone()
		updated.Counters.UsedCount++
		updated.Counters.LastUsedAt = &nowStr
		updated.UpdatedAt = nowStr
		if err := s.Update(ctx, updated); err != nil {
			return nil, fmt.Errorf("recall: update counters for %s: %w", it.ID, err)
		}
		it.Counters.UsedCount = updated.Counters.UsedCount
		it.Counters.LastUsedAt = updated.Counters.LastUsedAt
		it.UpdatedAt = updated.UpdatedAt
	}

	return selected, nil
}

func score(it *types.Item, query string, queryTokens map[string]struct{}, rc Context, w Weights, now time.Time) float64 {
	contentTokens := tokenize.Set(it.Content)
	base := overlapScore(queryTokens, contentTokens)

	bonus := 0.0
	if rc.CurrentFile != "" {
		for _, f := range it.RelevanceHints.Files {
			if strings.HasSuffix(rc.CurrentFile, f) {
				bonus += w.FileHintBonus
				break
			}
		}
	}
	if rc.CrateName != "" {
		for _, c := range it.RelevanceHints.Crates {
			if c == rc.CrateName {
				bonus += w.CrateHintBonus
				break
			}
		}
	}
	if rc.Language != "" {
		for _, l := range it.RelevanceHints.Languages {
			if strings.EqualFold(l, rc.Language) {
				bonus += w.LanguageHintBonus
				break
			}
		}
	}
	if rc.Command != "" {
		for _, c := range it.RelevanceHints.Commands {
			if c == rc.Command {
				bonus += w.CommandHintBonus
				break
			}
		}
	}

	s := base + bonus
	s *= 1 + w.FrequencyStep*float64(it.Counters.UsedCount)
	s *= decay(it.Counters.LastUsedAt, now, w.HalfLifeDays)
	return s
}

func overlapScore(query, content map[string]struct{}) float64 {
	if len(query) == 0 || len(content) == 0 {
		return 0
	}
	overlap := tokenize.Overlap(query, content)
	return float64(overlap) / float64(len(query))
}

func decay(lastUsedAt *string, now time.Time, halfLifeDays float64) float64 {
	if lastUsedAt == nil || *lastUsedAt == "" {
		return 1
	}
	last, err := time.Parse(time.RFC3339, *lastUsedAt)
	if err != nil {
		return 1
	}
	ageDays := math.Floor(now.Sub(last).Hours() / 24)
	if ageDays < 0 {
		ageDays = 0
	}
	return math.Pow(0.5, ageDays/halfLifeDays)
}
