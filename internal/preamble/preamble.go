// Package preamble builds the short durable block of project preferences
// and facts prepended to assistant prompts, by recalling with an empty
// query and folding the durable items it returns into two capped,
// deduplicated sections.
package preamble

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mementodev/mementod/internal/recall"
	"github.com/mementodev/mementod/internal/store"
	"github.com/mementodev/mementod/internal/types"
)

const (
	itemCap     = 16
	prefsCap    = 8
	factsCap    = 6
	header      = "Context: The following project memory may be helpful.\n"
	footer      = "\nPlease follow these preferences and consider these facts."
	truncMarker = "\n…"
)

// Build recalls durable items from s and renders them into the fixed
// preamble format. It returns "", false when there is nothing durable to
// say.
func Build(ctx context.Context, s store.Store, now string, maxLen int) (string, bool, error) {
	rc := recall.Context{
		Now:      now,
		ItemCap:  itemCap,
		TokenCap: maxLen * 2,
	}
	items, err := recall.Recall(ctx, s, "", rc)
	if err != nil {
		return "", false, fmt.Errorf("preamble: recall: %w", err)
	}

	var prefs, facts []entry
	for _, it := range items {
		switch it.Kind {
		case types.KindPref:
			prefs = append(prefs, entry{content: it.Content, tags: it.Tags})
		case types.KindFact:
			facts = append(facts, entry{content: it.Content, tags: it.Tags})
		}
	}
	if len(prefs) == 0 && len(facts) == 0 {
		return "", false, nil
	}

	prefsOut := dedupe(prefs, prefsCap)
	factsOut := dedupe(facts, factsCap)

	var parts []string
	if len(prefsOut) > 0 {
		parts = append(parts, "Project preferences:\n- "+strings.Join(prefsOut, "\n- "))
	}
	if len(factsOut) > 0 {
		parts = append(parts, "Project facts:\n- "+strings.Join(factsOut, "\n- "))
	}

	body := strings.Join(parts, "\n\n")
	bodyCap := maxLen - len(header) - len(footer) - len(truncMarker)
	if bodyCap < 0 {
		bodyCap = 0
	}
	if len(body) > maxLen-len(header)-len(footer) {
		if len(body) > bodyCap {
			body = body[:bodyCap]
		}
		body += truncMarker
	}

	return header + body + footer, true, nil
}

type entry struct {
	content string
	tags    []string
}

type merged struct {
	tags  []string
	count int
}

// dedupe case-folds content, merges duplicate entries' tag lists, counts
// repeats, and renders each surviving entry as a single line capped to
// the first cap entries in lexicographic key order.
func dedupe(items []entry, cap int) []string {
	byKey := make(map[string]*merged)
	var keys []string
	for _, it := range items {
		key := strings.ToLower(it.content)
		m, ok := byKey[key]
		if !ok {
			m = &merged{}
			byKey[key] = m
			keys = append(keys, key)
		}
		for _, t := range it.tags {
			if !containsString(m.tags, t) {
				m.tags = append(m.tags, t)
			}
		}
		m.count++
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, key := range keys {
		m := byKey[key]
		switch {
		case m.count > 1 && len(m.tags) > 0:
			out = append(out, fmt.Sprintf("%s (tags: %s ×%d)", key, strings.Join(m.tags, ", "), m.count))
		case len(m.tags) > 0:
			out = append(out, fmt.Sprintf("%s (tags: %s)", key, strings.Join(m.tags, ", ")))
		default:
			out = append(out, key)
		}
	}
	if len(out) > cap {
		out = out[:cap]
	}
	return out
}

func containsString(haystack []string, needle string) bool {
	for _, h := range haystack {
		if h == needle {
			return true
		}
	}
	return false
}
