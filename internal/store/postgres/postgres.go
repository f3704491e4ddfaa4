package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/loykin/nodecore/internal/store"
)

// DB implements store.Store for PostgreSQL via the pgx stdlib driver.

type DB struct {
	db *sql.DB
}

func New(dsn string) (*DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("empty postgres DSN")
	}
	d, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	return &DB{db: d}, nil
}

func (p *DB) Close() error { return p.db.Close() }

// ApplySchema reads the schema file and executes its statements one by one.
// pgx uses the extended protocol, which rejects multi-statement strings, so
// the batch is split on statement terminators here.
func (p *DB) ApplySchema(ctx context.Context, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read schema %s: %w", path, err)
	}
	for _, stmt := range strings.Split(string(b), ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := p.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema %s: %w", path, err)
		}
	}
	return nil
}

func (p *DB) FindNode(ctx context.Context, uuid string) (store.Node, error) {
	var n store.Node
	var status sql.NullString
	err := p.db.QueryRowContext(ctx, `
		SELECT id, node_uuid, node, server_name, main_state, status
		FROM system WHERE node_uuid = $1;`, uuid).
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

func (p *DB) InsertNode(ctx context.Context, n store.Node) (int64, error) {
	var id int64
	err := p.db.QueryRowContext(ctx, `
		INSERT INTO system(node_uuid, node, server_name, main_state)
		VALUES($1, $2, $3, $4)
		RETURNING id;`,
		n.UUID, n.Role, n.ServerName, n.MainState).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (p *DB) UpdateStatus(ctx context.Context, uuid, status string) (int64, error) {
	res, err := p.db.ExecContext(ctx,
		`UPDATE system SET status = $1 WHERE node_uuid = $2;`, status, uuid)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (p *DB) AppendLog(ctx context.Context, e store.LogEntry) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO logs(server_id, log_level, message, content)
		VALUES($1, $2, $3, $4);`,
		e.ServerID, e.Level, e.Message, e.Content)
	return err
}

func (p *DB) RecentLogs(ctx context.Context, limit int) ([]store.LogEntry, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, server_id, log_level, message, content
		FROM logs ORDER BY id DESC LIMIT $1;`, limit)
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
