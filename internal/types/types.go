// Package types defines the Item record persisted by the memory store and
// its enumerated fields.
package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Scope selects the logical partition an item belongs to.
type Scope string

const (
	ScopeGlobal Scope = "global"
	ScopeRepo   Scope = "repo"
	ScopeDir    Scope = "dir"
)

// IsValid reports whether s is one of the recognized scopes.
func (s Scope) IsValid() bool {
	switch s {
	case ScopeGlobal, ScopeRepo, ScopeDir:
		return true
	}
	return false
}

// Status is the lifecycle state of an item. Only active items participate
// in recall.
type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

// IsValid reports whether s is one of the recognized statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusArchived:
		return true
	}
	return false
}

// Kind is the role of an item. Pref and Fact are the durable kinds
// surfaced in the preamble; the others are addressable but not promoted.
type Kind string

const (
	KindPref        Kind = "pref"
	KindFact        Kind = "fact"
	KindProfile     Kind = "profile"
	KindInstruction Kind = "instruction"
	KindNote        Kind = "note"
)

// IsValid reports whether k is one of the recognized kinds.
func (k Kind) IsValid() bool {
	switch k {
	case KindPref, KindFact, KindProfile, KindInstruction, KindNote:
		return true
	}
	return false
}

// IsDurable reports whether k is eligible for the preamble.
func (k Kind) IsDurable() bool {
	return k == KindPref || k == KindFact
}

// RelevanceHints raise a hit's recall score when the query context
// matches one of the entries.
type RelevanceHints struct {
	Files     []string `json:"files"`
	Crates    []string `json:"crates"`
	Languages []string `json:"languages"`
	Commands  []string `json:"commands"`
}

// Counters track how often an item has been seen and used by recall.
type Counters struct {
	SeenCount  int     `json:"seen_count"`
	UsedCount  int     `json:"used_count"`
	LastUsedAt *string `json:"last_used_at,omitempty"`
}

// Expiry is carried through for future use; the store does not enforce it.
type Expiry struct {
	TTLSeconds  *int64  `json:"ttl_seconds,omitempty"`
	ReviewAfter *string `json:"review_after,omitempty"`
}

// SchemaVersion is the current schema version stamped on freshly created items.
const SchemaVersion = 1

// Item is the only persisted entity. The JSON field names are the
// canonical encoding shared by both backends and the export/import
// stream, so changing a tag changes the on-disk format.
type Item struct {
	ID             string         `json:"id"`
	CreatedAt      string         `json:"created_at"`
	UpdatedAt      string         `json:"updated_at"`
	SchemaVersion  int            `json:"schema_version"`
	Source         string         `json:"source"`
	Scope          Scope          `json:"scope"`
	Status         Status         `json:"status"`
	Kind           Kind           `json:"kind"`
	Content        string         `json:"content"`
	Tags           []string       `json:"tags"`
	RelevanceHints RelevanceHints `json:"relevance_hints"`
	Counters       Counters       `json:"counters"`
	Expiry         *Expiry        `json:"expiry,omitempty"`
}

// NowRFC3339 returns the current instant formatted in the canonical
// Internet date-time encoding used for all timestamps in this package.
func NowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// New constructs a fresh active item with a random id and created_at ==
// updated_at set to the current time.
func New(scope Scope, kind Kind, source, content string) *Item {
	now := NowRFC3339()
	return &Item{
		ID:            uuid.New().String(),
		CreatedAt:     now,
		UpdatedAt:     now,
		SchemaVersion: SchemaVersion,
		Source:        source,
		Scope:         scope,
		Status:        StatusActive,
		Kind:          kind,
		Content:       content,
		Tags:          []string{},
		RelevanceHints: RelevanceHints{
			Files:     []string{},
			Crates:    []string{},
			Languages: []string{},
			Commands:  []string{},
		},
		Counters: Counters{},
	}
}

// Clone returns a deep copy so callers can mutate the result without
// aliasing the item a backend holds or just returned.
func (it *Item) Clone() *Item {
	if it == nil {
		return nil
	}
	c := *it
	c.Tags = append([]string(nil), it.Tags...)
	c.RelevanceHints = RelevanceHints{
		Files:     append([]string(nil), it.RelevanceHints.Files...),
		Crates:    append([]string(nil), it.RelevanceHints.Crates...),
		Languages: append([]string(nil), it.RelevanceHints.Languages...),
		Commands:  append([]string(nil), it.RelevanceHints.Commands...),
	}
	if it.Counters.LastUsedAt != nil {
		v := *it.Counters.LastUsedAt
		c.Counters.LastUsedAt = &v
	}
	if it.Expiry != nil {
		e := *it.Expiry
		if it.Expiry.TTLSeconds != nil {
			v := *it.Expiry.TTLSeconds
			e.TTLSeconds = &v
		}
		if it.Expiry.ReviewAfter != nil {
			v := *it.Expiry.ReviewAfter
			e.ReviewAfter = &v
		}
		c.Expiry = &e
	}
	return &c
}

// Validate checks the invariants an item must satisfy before it is
// persisted: valid enums and created_at <= updated_at.
func (it *Item) Validate() error {
	if it.ID == "" {
		return fmt.Errorf("item: id is required")
	}
	if !it.Scope.IsValid() {
		return fmt.Errorf("item: invalid scope %q", it.Scope)
	}
	if !it.Status.IsValid() {
		return fmt.Errorf("item: invalid status %q", it.Status)
	}
	if !it.Kind.IsValid() {
		return fmt.Errorf("item: invalid kind %q", it.Kind)
	}
	if it.CreatedAt != "" && it.UpdatedAt != "" && it.UpdatedAt < it.CreatedAt {
		return fmt.Errorf("item: updated_at %q precedes created_at %q", it.UpdatedAt, it.CreatedAt)
	}
	return nil
}
