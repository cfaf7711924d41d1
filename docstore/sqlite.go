package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLite is a Store backed by a single SQLite database. Documents are stored
// as JSON blobs keyed by (collection, id); query predicates, ordering, and
// limits are pushed down to SQL via json_extract.
type SQLite struct {
	db  *sql.DB
	hub *hub
}

// Open opens (or creates) the database at path, ensures the data directory
// exists, and bootstraps the schema.
func Open(path string) (*SQLite, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL for concurrent read/write access, busy timeout so writers wait
	// instead of failing with SQLITE_BUSY, synchronous=NORMAL (safe with WAL),
	// larger cache and mmap to reduce disk I/O.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
		PRAGMA mmap_size=268435456;
	`); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &SQLite{db: db, hub: newHub()}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close stops all live subscriptions and closes the database.
func (s *SQLite) Close() error {
	s.hub.closeAll()
	return s.db.Close()
}

func (s *SQLite) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS documents (
    collection TEXT NOT NULL,
    id TEXT NOT NULL,
    data TEXT NOT NULL,
    PRIMARY KEY (collection, id)
);
`)
	return err
}

// FetchOnce executes the query once, pushing filters, order, and limit into SQL.
func (s *SQLite) FetchOnce(ctx context.Context, q Query) ([]Document, error) {
	var b strings.Builder
	b.WriteString(`SELECT id, data FROM documents WHERE collection = ?`)
	args := []any{q.Collection}
	for _, f := range q.Filters {
		op, err := sqlOp(f.Op)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&b, ` AND json_extract(data, '$.%s') %s ?`, f.Field, op)
		args = append(args, bindValue(f.Value))
	}
	if q.OrderField != "" {
		dir := "ASC"
		if q.Dir == Desc {
			dir = "DESC"
		}
		fmt.Fprintf(&b, ` ORDER BY json_extract(data, '$.%s') %s, id`, q.OrderField, dir)
	}
	if q.N > 0 {
		b.WriteString(` LIMIT ?`)
		args = append(args, q.N)
	}

	rows, err := s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("docstore: query %s: %w", q.Collection, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		doc, err := decodeDocument(id, raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// GetByID returns a single document by collection and id.
func (s *SQLite) GetByID(ctx context.Context, collection, id string) (Document, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = ? AND id = ?`, collection, id).Scan(&raw)
	if err == sql.ErrNoRows {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, err
	}
	return decodeDocument(id, raw)
}

// Put creates or replaces a document, assigning an id when none is given.
func (s *SQLite) Put(ctx context.Context, collection, id string, data map[string]any) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("docstore: encode document: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO documents (collection, id, data) VALUES (?, ?, ?)`,
		collection, id, string(raw))
	if err != nil {
		return "", err
	}
	s.hub.notify(collection)
	return id, nil
}

// Update merges fields into an existing document inside a transaction, so
// Inc values apply as atomic read-modify-write increments: concurrent
// increments from different readers never lose updates.
func (s *SQLite) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var raw string
	err = tx.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = ? AND id = ?`, collection, id).Scan(&raw)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	data := make(map[string]any)
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return fmt.Errorf("docstore: decode document %s/%s: %w", collection, id, err)
	}
	for k, v := range fields {
		if inc, ok := v.(Inc); ok {
			data[k] = asInt64(data[k]) + int64(inc)
			continue
		}
		data[k] = v
	}
	out, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("docstore: encode document: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE documents SET data = ? WHERE collection = ? AND id = ?`,
		string(out), collection, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.hub.notify(collection)
	return nil
}

// Delete removes a document; deleting an absent document is a no-op.
func (s *SQLite) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND id = ?`, collection, id)
	if err != nil {
		return err
	}
	s.hub.notify(collection)
	return nil
}

// Subscribe opens a live query backed by the hub; see Store.Subscribe.
func (s *SQLite) Subscribe(q Query, onSnapshot func([]Document), onError func(error)) (func(), error) {
	return s.hub.subscribe(q, s.FetchOnce, onSnapshot, onError)
}

func decodeDocument(id, raw string) (Document, error) {
	data := make(map[string]any)
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return Document{}, fmt.Errorf("docstore: decode document %s: %w", id, err)
	}
	return Document{ID: id, Data: data}, nil
}

func sqlOp(op Op) (string, error) {
	switch op {
	case Eq:
		return "=", nil
	case Gte:
		return ">=", nil
	case Lte:
		return "<=", nil
	}
	return "", fmt.Errorf("docstore: unsupported operator %q", op)
}

// bindValue converts filter values to what json_extract yields: JSON booleans
// surface as 0/1 integers, times as their millisecond representation.
func bindValue(v any) any {
	switch t := v.(type) {
	case bool:
		if t {
			return 1
		}
		return 0
	}
	return v
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	}
	return 0
}
