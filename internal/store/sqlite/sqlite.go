package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/loykin/nodecore/internal/store"
)

// DB implements store.Store for SQLite (modernc.org/sqlite driver, CGO-free).
// Path is a filesystem path to the database file. Use ":memory:" for in-memory.

type DB struct {
	db *sql.DB
}

// New opens a SQLite database at path.
func New(path string) (*DB, error) {
	p := strings.TrimSpace(path)
	if p == "" {
		return nil, errors.New("empty sqlite path")
	}
	d, err := sql.Open("sqlite", p)
	if err != nil {
		return nil, err
	}
	// busy timeout helps with short concurrent locks
	_, _ = d.Exec("PRAGMA busy_timeout=3000;")
	return &DB{db: d}, nil
}

func (s *DB) Close() error { return s.db.Close() }

// ApplySchema reads the schema file fully and executes it as one batch.
// The driver walks every statement in the string, so the file can carry the
// whole schema.
func (s *DB) ApplySchema(ctx context.Context, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read schema %s: %w", path, err)
	}
	if _, err := s.db.ExecContext(ctx, string(b)); err != nil {
		return fmt.Errorf("apply schema %s: %w", path, err)
	}
	return nil
}

func (s *DB) FindNode(ctx context.Context, uuid string) (store.Node, error) {
	var n store.Node
	var status sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, node_uuid, node, server_name, main_state, status
		FROM system WHERE node_uuid = ?;`, uuid).
		Scan(&n.ID, &n.UUID, &n.Role, &n.ServerName, &n.MainState, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Node{}, store.ErrNotFound
	}
	if err != nil {
		return store.Node{}, err
	}
	n.Status = status.String
	return n, nil
}

func (s *DB) InsertNode(ctx context.Context, n store.Node) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO system(node_uuid, node, server_name, main_state)
		VALUES(?, ?, ?, ?);`,
		n.UUID, n.Role, n.ServerName, n.MainState)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *DB) UpdateStatus(ctx context.Context, uuid, status string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE system SET status = ? WHERE node_uuid = ?;`, status, uuid)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *DB) AppendLog(ctx context.Context, e store.LogEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO logs(server_id, log_level, message, content)
		VALUES(?, ?, ?, ?);`,
		e.ServerID, e.Level, e.Message, e.Content)
	return err
}

func (s *DB) RecentLogs(ctx context.Context, limit int) ([]store.LogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, server_id, log_level, message, content
		FROM logs ORDER BY id DESC LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []store.LogEntry
	for rows.Next() {
		var e store.LogEntry
		if err := rows.Scan(&e.ID, &e.ServerID, &e.Level, &e.Message, &e.Content); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
