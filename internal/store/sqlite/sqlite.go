// Package sqlite implements the relational backend for the memory store
// on top of a pure-Go, cgo-free SQLite driver. A single table holds every
// item; the list-valued and nested fields are stored as JSON columns so
// the schema does not need to track every future hint or counter shape.
package sqlite

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/mementodev/mementod/internal/store"
	"github.com/mementodev/mementod/internal/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS memory_items (
	id              TEXT PRIMARY KEY,
	created_at      TEXT NOT NULL,
	updated_at      TEXT NOT NULL,
	schema_version  INTEGER NOT NULL,
	source          TEXT NOT NULL,
	scope           TEXT NOT NULL,
	status          TEXT NOT NULL,
	kind            TEXT NOT NULL,
	content         TEXT NOT NULL,
	tags_json       TEXT NOT NULL DEFAULT '[]',
	relevance_hints_json TEXT NOT NULL DEFAULT '{}',
	counters_json   TEXT NOT NULL DEFAULT '{}',
	expiry_json     TEXT
);
CREATE INDEX IF NOT EXISTS idx_memory_items_scope_status ON memory_items (scope, status);
CREATE INDEX IF NOT EXISTS idx_memory_items_kind ON memory_items (kind);
CREATE INDEX IF NOT EXISTS idx_memory_items_updated_at ON memory_items (updated_at);
`

const selectColumns = `id, created_at, updated_at, schema_version, source, scope, status, kind,
	content, tags_json, relevance_hints_json, counters_json, expiry_json`

// Store is a SQLite-backed store.Store.
type Store struct {
	db   *sql.DB
	path string
	mu   sync.RWMutex
}

// New opens (creating if necessary) a SQLite database at path in WAL mode
// and ensures the schema exists. The connection pool is pinned to a
// single connection, since SQLite serializes writers and this store does
// its own locking around reads that must not race a concurrent rewrite.
func New(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("sqlite: create dir %s: %w", dir, err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping %s: %w", path, err)
	}

	s := &Store{db: db, path: path}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: init schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("exec schema statement: %w\nSQL: %s", err, stmt)
		}
	}
	return tx.Commit()
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// DB returns the underlying *sql.DB for direct SQL access.
func (s *Store) DB() *sql.DB { return s.db }

func marshalItem(it *types.Item) (tagsJSON, hintsJSON, countersJSON string, expiryJSON sql.NullString, err error) {
	tb, err := json.Marshal(it.Tags)
	if err != nil {
		return "", "", "", sql.NullString{}, fmt.Errorf("marshal tags: %w", err)
	}
	hb, err := json.Marshal(it.RelevanceHints)
	if err != nil {
		return "", "", "", sql.NullString{}, fmt.Errorf("marshal relevance hints: %w", err)
	}
	cb, err := json.Marshal(it.Counters)
	if err != nil {
		return "", "", "", sql.NullString{}, fmt.Errorf("marshal counters: %w", err)
	}
	if it.Expiry != nil {
		eb, err2 := json.Marshal(it.Expiry)
		if err2 != nil {
			return "", "", "", sql.NullString{}, fmt.Errorf("marshal expiry: %w", err2)
		}
		expiryJSON = sql.NullString{String: string(eb), Valid: true}
	}
	return string(tb), string(hb), string(cb), expiryJSON, nil
}

func scanItem(row interface{ Scan(dest ...any) error }) (*types.Item, error) {
	var it types.Item
	var tagsJSON, hintsJSON, countersJSON string
	var expiryJSON sql.NullString

	if err := row.Scan(
		&it.ID, &it.CreatedAt, &it.UpdatedAt, &it.SchemaVersion, &it.Source,
		&it.Scope, &it.Status, &it.Kind, &it.Content,
		&tagsJSON, &hintsJSON, &countersJSON, &expiryJSON,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(tagsJSON), &it.Tags); err != nil {
		return nil, fmt.Errorf("%w: tags for %s: %v", store.ErrParse, it.ID, err)
	}
	if err := json.Unmarshal([]byte(hintsJSON), &it.RelevanceHints); err != nil {
		return nil, fmt.Errorf("%w: relevance_hints for %s: %v", store.ErrParse, it.ID, err)
	}
	if err := json.Unmarshal([]byte(countersJSON), &it.Counters); err != nil {
		return nil, fmt.Errorf("%w: counters for %s: %v", store.ErrParse, it.ID, err)
	}
	if expiryJSON.Valid && expiryJSON.String != "" {
		var e types.Expiry
		if err := json.Unmarshal([]byte(expiryJSON.String), &e); err != nil {
			return nil, fmt.Errorf("%w: expiry for %s: %v", store.ErrParse, it.ID, err)
		}
		it.Expiry = &e
	}

	if !it.Scope.IsValid() {
		return nil, fmt.Errorf("%w: invalid scope %q for %s", store.ErrParse, it.Scope, it.ID)
	}
	if !it.Status.IsValid() {
		return nil, fmt.Errorf("%w: invalid status %q for %s", store.ErrParse, it.Status, it.ID)
	}
	if !it.Kind.IsValid() {
		return nil, fmt.Errorf("%w: invalid kind %q for %s", store.ErrParse, it.Kind, it.ID)
	}
	return &it, nil
}

// Add inserts item. It returns store.ErrConflict if id already exists.
func (s *Store) Add(ctx context.Context, item *types.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tagsJSON, hintsJSON, countersJSON, expiryJSON, err := marshalItem(item)
	if err != nil {
		return err
	}

	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM memory_items WHERE id = ?`, item.ID).Scan(&exists); err != nil {
		return fmt.Errorf("sqlite: check existing %s: %w", item.ID, err)
	}
	if exists > 0 {
		return store.Conflict(item.ID)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO memory_items (`+selectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.CreatedAt, item.UpdatedAt, item.SchemaVersion, item.Source,
		string(item.Scope), string(item.Status), string(item.Kind), item.Content,
		tagsJSON, hintsJSON, countersJSON, expiryJSON,
	)
	if err != nil {
		return fmt.Errorf("sqlite: insert %s: %w", item.ID, err)
	}
	return nil
}

// Get returns the item with the given id, or store.ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*types.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM memory_items WHERE id = ?`, id)
	it, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.NotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get %s: %w", id, err)
	}
	return it, nil
}

// Update replaces the stored item with the same id, persisting it
// verbatim. The caller is responsible for setting updated_at.
func (s *Store) Update(ctx context.Context, item *types.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tagsJSON, hintsJSON, countersJSON, expiryJSON, err := marshalItem(item)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE memory_items SET
			created_at = ?, updated_at = ?, schema_version = ?,
			source = ?, scope = ?, status = ?, kind = ?, content = ?,
			tags_json = ?, relevance_hints_json = ?, counters_json = ?, expiry_json = ?
		WHERE id = ?`,
		item.CreatedAt, item.UpdatedAt, item.SchemaVersion,
		item.Source, string(item.Scope), string(item.Status), string(item.Kind),
		item.Content, tagsJSON, hintsJSON, countersJSON, expiryJSON, item.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: update %s: %w", item.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected %s: %w", item.ID, err)
	}
	if n == 0 {
		return store.NotFound(item.ID)
	}
	return nil
}

// Delete removes the item permanently. Deleting an id that does not exist
// is a no-op, not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM memory_items WHERE id = ?`, id); err != nil {
		return fmt.Errorf("sqlite: delete %s: %w", id, err)
	}
	return nil
}

// List returns items matching filter, most recently updated first.
func (s *Store) List(ctx context.Context, filter store.ListFilter) ([]*types.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + selectColumns + ` FROM memory_items WHERE 1=1`
	var args []any
	if filter.Scope != "" {
		query += ` AND scope = ?`
		args = append(args, string(filter.Scope))
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(filter.Kind))
	}
	query += ` ORDER BY updated_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list: %w", err)
	}
	defer rows.Close()

	var items []*types.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan row: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list rows: %w", err)
	}
	return items, nil
}

func (s *Store) setStatus(ctx context.Context, id string, status types.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `UPDATE memory_items SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), types.NowRFC3339(), id)
	if err != nil {
		return fmt.Errorf("sqlite: set status %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected %s: %w", id, err)
	}
	if n == 0 {
		return store.NotFound(id)
	}
	return nil
}

// Archive sets status to archived.
func (s *Store) Archive(ctx context.Context, id string) error {
	return s.setStatus(ctx, id, types.StatusArchived)
}

// Unarchive sets status back to active.
func (s *Store) Unarchive(ctx context.Context, id string) error {
	return s.setStatus(ctx, id, types.StatusActive)
}

// Export returns every item in the database regardless of status.
func (s *Store) Export(ctx context.Context) ([]*types.Item, error) {
	return s.List(ctx, store.ListFilter{})
}

// Import reads one JSON item per line from r and upserts each by id inside
// a single transaction. Unlike the file backend, a malformed line aborts
// and rolls back the whole import rather than skipping it, since a
// relational import is expected to be all-or-nothing.
func (s *Store) Import(ctx context.Context, r io.Reader) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	written := 0
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 8*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var it types.Item
		if err := json.Unmarshal([]byte(line), &it); err != nil {
			return 0, fmt.Errorf("%w: import line: %v", store.ErrParse, err)
		}

		tagsJSON, hintsJSON, countersJSON, expiryJSON, err := marshalItem(&it)
		if err != nil {
			return 0, err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO memory_items (`+selectColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				created_at = excluded.created_at,
				updated_at = excluded.updated_at,
				schema_version = excluded.schema_version,
				source = excluded.source,
				scope = excluded.scope,
				status = excluded.status,
				kind = excluded.kind,
				content = excluded.content,
				tags_json = excluded.tags_json,
				relevance_hints_json = excluded.relevance_hints_json,
				counters_json = excluded.counters_json,
				expiry_json = excluded.expiry_json`,
			it.ID, it.CreatedAt, it.UpdatedAt, it.SchemaVersion, it.Source,
			string(it.Scope), string(it.Status), string(it.Kind), it.Content,
			tagsJSON, hintsJSON, countersJSON, expiryJSON,
		)
		if err != nil {
			return 0, fmt.Errorf("sqlite: import upsert %s: %w", it.ID, err)
		}
		written++
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("sqlite: read import stream: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit import: %w", err)
	}
	return written, nil
}

// Stats summarizes the database's contents.
func (s *Store) Stats(ctx context.Context) (store.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := store.NewStats()

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM memory_items`).Scan(&st.TotalCount); err != nil {
		return store.Stats{}, fmt.Errorf("sqlite: count: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM memory_items WHERE status = ?`, string(types.StatusActive)).Scan(&st.ActiveCount); err != nil {
		return store.Stats{}, fmt.Errorf("sqlite: count active: %w", err)
	}
	st.ArchivedCount = st.TotalCount - st.ActiveCount

	kindRows, err := s.db.QueryContext(ctx, `SELECT kind, COUNT(*) FROM memory_items GROUP BY kind`)
	if err != nil {
		return store.Stats{}, fmt.Errorf("sqlite: count by kind: %w", err)
	}
	defer kindRows.Close()
	for kindRows.Next() {
		var kind string
		var n int
		if err := kindRows.Scan(&kind, &n); err != nil {
			return store.Stats{}, fmt.Errorf("sqlite: scan kind count: %w", err)
		}
		st.ByKind[kind] = n
	}

	scopeRows, err := s.db.QueryContext(ctx, `SELECT scope, COUNT(*) FROM memory_items GROUP BY scope`)
	if err != nil {
		return store.Stats{}, fmt.Errorf("sqlite: count by scope: %w", err)
	}
	defer scopeRows.Close()
	for scopeRows.Next() {
		var scope string
		var n int
		if err := scopeRows.Scan(&scope, &n); err != nil {
			return store.Stats{}, fmt.Errorf("sqlite: scan scope count: %w", err)
		}
		st.ByScope[scope] = n
	}

	return st, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

var _ store.Store = (*Store)(nil)
