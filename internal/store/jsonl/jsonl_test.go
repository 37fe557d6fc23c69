package jsonl

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mementodev/mementod/internal/store"
	"github.com/mementodev/mementod/internal/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	return New(filepath.Join(dir, "memory.jsonl"))
}

func TestAddGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	it := types.New(types.ScopeRepo, types.KindFact, "test", "uses pnpm not npm")
	if err := s.Add(ctx, it); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	got, err := s.Get(ctx, it.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Content != it.Content {
		t.Fatalf("Get().Content = %q, want %q", got.Content, it.Content)
	}
}

func TestAddConflict(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	it := types.New(types.ScopeRepo, types.KindNote, "test", "x")

	if err := s.Add(ctx, it); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := s.Add(ctx, it); err == nil {
		t.Fatalf("expected second Add() with same id to fail")
	}
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	if _, err := s.Get(ctx, "missing"); err == nil {
		t.Fatalf("expected ErrNotFound")
	} else if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdatePersistsCallerTimestamp(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	it := types.New(types.ScopeGlobal, types.KindPref, "test", "dark mode")
	if err := s.Add(ctx, it); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	it.Content = "light mode"
	it.UpdatedAt = "2026-06-01T00:00:00Z"
	if err := s.Update(ctx, it); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := s.Get(ctx, it.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Content != "light mode" {
		t.Fatalf("Get().Content = %q, want %q", got.Content, "light mode")
	}
	if got.UpdatedAt != "2026-06-01T00:00:00Z" {
		t.Fatalf("Get().UpdatedAt = %q, want the caller-set timestamp", got.UpdatedAt)
	}
}

func TestDeleteRemovesItem(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	it := types.New(types.ScopeRepo, types.KindNote, "test", "x")
	if err := s.Add(ctx, it); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := s.Delete(ctx, it.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get(ctx, it.ID); err == nil {
		t.Fatalf("expected item to be gone after Delete()")
	}
	if err := s.Delete(ctx, it.ID); err != nil {
		t.Fatalf("expected deleting a missing id to be a no-op, got %v", err)
	}
}

func TestArchiveUnarchive(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	it := types.New(types.ScopeRepo, types.KindNote, "test", "x")
	if err := s.Add(ctx, it); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := s.Archive(ctx, it.ID); err != nil {
		t.Fatalf("Archive() error = %v", err)
	}
	got, _ := s.Get(ctx, it.ID)
	if got.Status != types.StatusArchived {
		t.Fatalf("expected archived status, got %q", got.Status)
	}
	if err := s.Unarchive(ctx, it.ID); err != nil {
		t.Fatalf("Unarchive() error = %v", err)
	}
	got, _ = s.Get(ctx, it.ID)
	if got.Status != types.StatusActive {
		t.Fatalf("expected active status, got %q", got.Status)
	}
}

func TestListFiltersAndSortsByUpdatedAtDesc(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a := types.New(types.ScopeRepo, types.KindFact, "test", "a")
	a.UpdatedAt = "2026-01-01T00:00:00Z"
	b := types.New(types.ScopeRepo, types.KindFact, "test", "b")
	b.UpdatedAt = "2026-02-01T00:00:00Z"
	c := types.New(types.ScopeGlobal, types.KindFact, "test", "c")
	c.UpdatedAt = "2026-03-01T00:00:00Z"

	for _, it := range []*types.Item{a, b, c} {
		if err := s.Add(ctx, it); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}

	got, err := s.List(ctx, store.ListFilter{Scope: types.ScopeRepo})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("List() returned %d items, want 2", len(got))
	}
	if got[0].Content != "b" || got[1].Content != "a" {
		t.Fatalf("List() not sorted by updated_at desc: %v, %v", got[0].Content, got[1].Content)
	}
}

func TestReadAllSkipsMalformedLines(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "memory.jsonl")

	good := types.New(types.ScopeRepo, types.KindNote, "test", "valid")
	goodBytes, err := json.Marshal(good)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	goodLine := string(goodBytes)
	content := goodLine + "\n{not valid json\n\n" + goodLine + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	s := New(path)
	items, err := s.List(ctx, store.ListFilter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("List() returned %d items, want 2 (malformed line should be skipped)", len(items))
	}
}

func marshalLines(t *testing.T, items ...*types.Item) string {
	t.Helper()
	var b strings.Builder
	for _, it := range items {
		line, err := json.Marshal(it)
		if err != nil {
			t.Fatalf("json.Marshal() error = %v", err)
		}
		b.Write(line)
		b.WriteByte('\n')
	}
	return b.String()
}

func TestImportUpserts(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	it := types.New(types.ScopeRepo, types.KindNote, "test", "original")
	if err := s.Add(ctx, it); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	updated := it.Clone()
	updated.Content = "replaced"
	fresh := types.New(types.ScopeGlobal, types.KindFact, "test", "fresh")

	n, err := s.Import(ctx, strings.NewReader(marshalLines(t, updated, fresh)))
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if n != 2 {
		t.Fatalf("Import() wrote %d, want 2", n)
	}

	got, _ := s.Get(ctx, it.ID)
	if got.Content != "replaced" {
		t.Fatalf("Import() did not upsert existing id, got %q", got.Content)
	}
	if _, err := s.Get(ctx, fresh.ID); err != nil {
		t.Fatalf("Import() did not add new id: %v", err)
	}
}

func TestImportSkipsMalformedLines(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	valid := types.New(types.ScopeRepo, types.KindNote, "test", "kept")
	stream := marshalLines(t, valid) + "{not valid json\n"

	n, err := s.Import(ctx, strings.NewReader(stream))
	if err != nil {
		t.Fatalf("Import() error = %v, want nil (malformed lines should be skipped)", err)
	}
	if n != 1 {
		t.Fatalf("Import() wrote %d, want 1 (malformed line should not count)", n)
	}
	if _, err := s.Get(ctx, valid.ID); err != nil {
		t.Fatalf("Import() did not keep the valid line: %v", err)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newTestStore(t)

	a := types.New(types.ScopeRepo, types.KindPref, "test", "tabs over spaces")
	a.SchemaVersion = 3
	a.Tags = []string{"style"}
	ttl := int64(3600)
	b := types.New(types.ScopeGlobal, types.KindNote, "test", "ran the linter")
	b.Expiry = &types.Expiry{TTLSeconds: &ttl}

	for _, it := range []*types.Item{a, b} {
		if err := src.Add(ctx, it); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}
	if err := src.Archive(ctx, b.ID); err != nil {
		t.Fatalf("Archive() error = %v", err)
	}

	exported, err := src.Export(ctx)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	dst := newTestStore(t)
	n, err := dst.Import(ctx, strings.NewReader(marshalLines(t, exported...)))
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if n != 2 {
		t.Fatalf("Import() wrote %d, want 2", n)
	}

	for _, want := range exported {
		got, err := dst.Get(ctx, want.ID)
		if err != nil {
			t.Fatalf("Get(%s) after round trip: %v", want.ID, err)
		}
		if got.Content != want.Content || got.Status != want.Status || got.UpdatedAt != want.UpdatedAt {
			t.Fatalf("round trip changed %s: got %+v, want %+v", want.ID, got, want)
		}
		if got.SchemaVersion != want.SchemaVersion {
			t.Fatalf("round trip changed schema_version for %s: got %d, want %d", want.ID, got.SchemaVersion, want.SchemaVersion)
		}
	}
	gotB, err := dst.Get(ctx, b.ID)
	if err != nil {
		t.Fatalf("Get(%s) error = %v", b.ID, err)
	}
	if gotB.Expiry == nil || gotB.Expiry.TTLSeconds == nil || *gotB.Expiry.TTLSeconds != ttl {
		t.Fatalf("round trip dropped expiry: %+v", gotB.Expiry)
	}
}

func TestExportSortsByUpdatedAtDesc(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a := types.New(types.ScopeRepo, types.KindFact, "test", "a")
	a.UpdatedAt = "2026-01-01T00:00:00Z"
	b := types.New(types.ScopeRepo, types.KindFact, "test", "b")
	b.UpdatedAt = "2026-03-01T00:00:00Z"
	c := types.New(types.ScopeGlobal, types.KindFact, "test", "c")
	c.UpdatedAt = "2026-02-01T00:00:00Z"

	for _, it := range []*types.Item{a, b, c} {
		if err := s.Add(ctx, it); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}

	got, err := s.Export(ctx)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Export() returned %d items, want 3", len(got))
	}
	if got[0].Content != "b" || got[1].Content != "c" || got[2].Content != "a" {
		t.Fatalf("Export() not sorted by updated_at desc: %q, %q, %q", got[0].Content, got[1].Content, got[2].Content)
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	a := types.New(types.ScopeRepo, types.KindFact, "test", "a")
	b := types.New(types.ScopeGlobal, types.KindPref, "test", "b")
	if err := s.Add(ctx, a); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := s.Add(ctx, b); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := s.Archive(ctx, b.ID); err != nil {
		t.Fatalf("Archive() error = %v", err)
	}

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if st.TotalCount != 2 || st.ActiveCount != 1 || st.ArchivedCount != 1 {
		t.Fatalf("Stats() = %+v, unexpected counts", st)
	}
	if st.ByKind["fact"] != 1 || st.ByKind["pref"] != 1 {
		t.Fatalf("Stats().ByKind = %+v, unexpected", st.ByKind)
	}
}
