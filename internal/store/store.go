package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by FindNode when no row exists for a uuid.
var ErrNotFound = errors.New("node not found")

// Node is one row of the system table. ID is the surrogate key assigned by
// the store on insert and is the canonical node id handed to the rest of the
// process. MainState is a JSON snapshot captured at first registration and
// never rewritten; Status is the independently mutable lifecycle field.
type Node struct {
	ID         int64
	UUID       string
	Role       string
	ServerName string
	MainState  string
	Status     string
}

// LogEntry is one append-only row of the logs table. ServerID references
// system.id; Content is a JSON blob and defaults to "{}" upstream.
type LogEntry struct {
	ID       int64
	ServerID int64
	Level    string
	Message  string
	Content  string
}

// Store is the persistence boundary for node registration. Implementations
// must enforce uniqueness of Node.UUID so that a racing duplicate insert
// fails with a constraint violation instead of silently duplicating.
type Store interface {
	// ApplySchema reads the schema file at path and executes it as a batch.
	// Idempotence is a contract on the schema file (IF NOT EXISTS), not on
	// the store; calling it every boot must be safe.
	ApplySchema(ctx context.Context, path string) error
	// FindNode returns the row for uuid or ErrNotFound.
	FindNode(ctx context.Context, uuid string) (Node, error)
	// InsertNode inserts a new row and returns the assigned surrogate id.
	InsertNode(ctx context.Context, n Node) (int64, error)
	// UpdateStatus sets the status for uuid and reports how many rows were
	// touched. Zero rows is not an error at this layer.
	UpdateStatus(ctx context.Context, uuid, status string) (int64, error)
	// AppendLog inserts a log row. Rows are never mutated or deleted.
	AppendLog(ctx context.Context, e LogEntry) error
	// RecentLogs returns up to limit rows, newest first.
	RecentLogs(ctx context.Context, limit int) ([]LogEntry, error)
	Close() error
}
