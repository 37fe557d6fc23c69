// Package jsonl implements the append-only file backend for the memory
// store: every Add appends a line to the file, while Update, Delete,
// Archive, Unarchive, and Import rewrite the file atomically through a
// temp-file-then-rename. Malformed lines are skipped rather than treated
// as fatal, since a hand-edited or partially-written file should not make
// the rest of the store unreadable.
package jsonl

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/mementodev/mementod/internal/store"
	"github.com/mementodev/mementod/internal/types"
)

// maxLineSize bounds how large a single JSONL record may be. Items are
// short free-text notes, but relevance hints or tags could push a record
// past bufio's default 64KB token size, so the scanner buffer is grown to
// this ceiling up front.
const maxLineSize = 8 * 1024 * 1024

// Store is a jsonl-backed store.Store. All methods are safe for
// concurrent use from a single process; cross-process safety relies on
// the atomic rename used for every rewrite.
type Store struct {
	mu   sync.Mutex
	path string
}

// New returns a Store reading and writing path. The file is created
// empty on first write if it does not already exist.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

func (s *Store) readAll() ([]*types.Item, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("jsonl: open %s: %w", s.path, err)
	}
	defer f.Close()

	var items []*types.Item
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var it types.Item
		if err := json.Unmarshal([]byte(line), &it); err != nil {
			continue
		}
		items = append(items, &it)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("jsonl: read %s: %w", s.path, err)
	}
	return items, nil
}

// writeAll rewrites the whole file from items via a temp-file-then-rename
// so a reader never observes a partially written file.
func (s *Store) writeAll(items []*types.Item) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("jsonl: mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".jsonl-tmp-*")
	if err != nil {
		return fmt.Errorf("jsonl: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	w := bufio.NewWriter(tmp)
	for _, it := range items {
		b, err := json.Marshal(it)
		if err != nil {
			tmp.Close()
			return fmt.Errorf("jsonl: marshal %s: %w", it.ID, err)
		}
		if _, err := w.Write(b); err != nil {
			tmp.Close()
			return fmt.Errorf("jsonl: write %s: %w", s.path, err)
		}
		if _, err := w.WriteString("\n"); err != nil {
			tmp.Close()
			return fmt.Errorf("jsonl: write %s: %w", s.path, err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("jsonl: flush %s: %w", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("jsonl: close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("jsonl: rename into %s: %w", s.path, err)
	}
	success = true
	return nil
}

// appendOne appends a single marshaled item without rewriting the file.
func (s *Store) appendOne(it *types.Item) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("jsonl: mkdir %s: %w", dir, err)
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("jsonl: open %s: %w", s.path, err)
	}
	defer f.Close()

	b, err := json.Marshal(it)
	if err != nil {
		return fmt.Errorf("jsonl: marshal %s: %w", it.ID, err)
	}
	b = append(b, '\n')
	if _, err := f.Write(b); err != nil {
		return fmt.Errorf("jsonl: append %s: %w", s.path, err)
	}
	return nil
}

func findIndex(items []*types.Item, id string) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// Add appends item. It returns store.ErrConflict if an item with the
// same id already exists anywhere in the file.
func (s *Store) Add(ctx context.Context, item *types.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.readAll()
	if err != nil {
		return err
	}
	if findIndex(items, item.ID) >= 0 {
		return store.Conflict(item.ID)
	}
	return s.appendOne(item)
}

// Get returns the most recently written record with the given id,
// since a rewrite may have replaced an earlier copy without truncating
// stale appended duplicates from before a crash.
func (s *Store) Get(ctx context.Context, id string) (*types.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.readAll()
	if err != nil {
		return nil, err
	}
	var found *types.Item
	for _, it := range items {
		if it.ID == id {
			found = it
		}
	}
	if found == nil {
		return nil, store.NotFound(id)
	}
	return found, nil
}

// Update rewrites the item with the same id, persisting it verbatim. The
// caller is responsible for setting updated_at.
func (s *Store) Update(ctx context.Context, item *types.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.readAll()
	if err != nil {
		return err
	}
	idx := findIndex(items, item.ID)
	if idx < 0 {
		return store.NotFound(item.ID)
	}
	items[idx] = item.Clone()
	return s.writeAll(items)
}

// Delete removes the item with the given id. Deleting an id that does not
// exist is a no-op, not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.readAll()
	if err != nil {
		return err
	}
	idx := findIndex(items, id)
	if idx < 0 {
		return nil
	}
	items = append(items[:idx], items[idx+1:]...)
	return s.writeAll(items)
}

// List returns items matching filter sorted by updated_at descending.
func (s *Store) List(ctx context.Context, filter store.ListFilter) ([]*types.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.readAll()
	if err != nil {
		return nil, err
	}
	out := make([]*types.Item, 0, len(items))
	for _, it := range items {
		if filter.Scope != "" && it.Scope != filter.Scope {
			continue
		}
		if filter.Status != "" && it.Status != filter.Status {
			continue
		}
		if filter.Kind != "" && it.Kind != filter.Kind {
			continue
		}
		out = append(out, it)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt > out[j].UpdatedAt
	})
	return out, nil
}

func (s *Store) setStatus(ctx context.Context, id string, status types.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.readAll()
	if err != nil {
		return err
	}
	idx := findIndex(items, id)
	if idx < 0 {
		return store.NotFound(id)
	}
	items[idx].Status = status
	items[idx].UpdatedAt = types.NowRFC3339()
	return s.writeAll(items)
}

// Archive sets the item's status to archived.
func (s *Store) Archive(ctx context.Context, id string) error {
	return s.setStatus(ctx, id, types.StatusArchived)
}

// Unarchive sets the item's status back to active.
func (s *Store) Unarchive(ctx context.Context, id string) error {
	return s.setStatus(ctx, id, types.StatusActive)
}

// Export returns every item in the file regardless of status, sorted by
// updated_at descending to match the relational backend's ordering.
func (s *Store) Export(ctx context.Context) ([]*types.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.readAll()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].UpdatedAt > items[j].UpdatedAt
	})
	return items, nil
}

// Import reads one JSON item per line from r and upserts each by id,
// rewriting the file once. A malformed line is skipped and counted against
// nothing; the rest of the stream still imports, since a hand-edited or
// partially-written input should not sink the well-formed lines around it.
func (s *Store) Import(ctx context.Context, r io.Reader) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.readAll()
	if err != nil {
		return 0, err
	}

	written := 0
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var in types.Item
		if err := json.Unmarshal([]byte(line), &in); err != nil {
			continue
		}
		idx := findIndex(items, in.ID)
		if idx >= 0 {
			items[idx] = &in
		} else {
			items = append(items, &in)
		}
		written++
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("jsonl: read import stream: %w", err)
	}

	if err := s.writeAll(items); err != nil {
		return 0, err
	}
	return written, nil
}

// Stats summarizes the file's contents.
func (s *Store) Stats(ctx context.Context) (store.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.readAll()
	if err != nil {
		return store.Stats{}, err
	}
	st := store.NewStats()
	for _, it := range items {
		st.TotalCount++
		if it.Status == types.StatusActive {
			st.ActiveCount++
		} else {
			st.ArchivedCount++
		}
		st.ByKind[string(it.Kind)]++
		st.ByScope[string(it.Scope)]++
	}
	return st, nil
}

// Close is a no-op; the backend opens and closes the file per operation.
func (s *Store) Close() error { return nil }

var _ store.Store = (*Store)(nil)
