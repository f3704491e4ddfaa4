package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/loykin/nodecore/internal/identity"
	"github.com/loykin/nodecore/internal/metrics"
	"github.com/loykin/nodecore/internal/node"
	"github.com/loykin/nodecore/internal/store"
)

// Registry records the lifecycle of this node in the shared store. It runs
// once at boot for registration and stays available to the HTTP surface for
// status transitions and event logging afterwards.
type Registry struct {
	store store.Store
	log   *slog.Logger
}

func New(s store.Store, log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{store: s, log: log}
}

// mainState is the snapshot persisted at first registration. It is never
// rewritten, even when version or server change across restarts.
type mainState struct {
	Version   string `json:"version"`
	Server    string `json:"server"`
	StartedAt string `json:"started_at"`
}

// Register ensures exactly one system row exists for id.UUID and returns its
// surrogate id. A previously seen uuid short-circuits with zero writes:
// first-write-wins, so the stored name and snapshot stay as they were at the
// original registration. The lookup-then-insert window is guarded by the
// store's uniqueness constraint on node_uuid; a racing duplicate insert
// surfaces as an error and is treated as fatal by the boot sequence.
func (r *Registry) Register(ctx context.Context, id identity.Identity) (int64, error) {
	role := node.Classify(id.Name, r.log)

	existing, err := r.store.FindNode(ctx, id.UUID)
	if err == nil {
		r.log.Info("node already registered, reusing",
			"name", existing.ServerName, "id", existing.ID)
		return existing.ID, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return 0, fmt.Errorf("look up node %s: %w", id.UUID, err)
	}

	state, err := json.Marshal(mainState{
		Version:   id.Version,
		Server:    id.Server,
		StartedAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return 0, fmt.Errorf("encode main state: %w", err)
	}

	nodeID, err := r.store.InsertNode(ctx, store.Node{
		UUID:       id.UUID,
		Role:       role.String(),
		ServerName: id.Name,
		MainState:  string(state),
	})
	if err != nil {
		return 0, fmt.Errorf("register node %s: %w", id.UUID, err)
	}
	r.log.Info("registered new node",
		"role", role.String(), "name", id.Name, "id", nodeID)
	metrics.IncRegistryEvent("register")
	return nodeID, nil
}

// SetStatus updates the mutable lifecycle field by natural key. An unknown
// uuid is still a success, but it is logged loudly instead of passing as an
// indistinguishable no-op.
func (r *Registry) SetStatus(ctx context.Context, uuid, status string) error {
	n, err := r.store.UpdateStatus(ctx, uuid, status)
	if err != nil {
		return fmt.Errorf("set status for %s: %w", uuid, err)
	}
	if n == 0 {
		r.log.Warn("status update matched no registered node", "uuid", uuid, "status", status)
		return nil
	}
	r.log.Info("node status set", "uuid", uuid, "status", status)
	metrics.IncRegistryEvent("status")
	return nil
}

// LogEvent appends one row to the logs table. Empty content defaults to the
// empty JSON object.
func (r *Registry) LogEvent(ctx context.Context, serverID int64, level, message, content string) error {
	if content == "" {
		content = "{}"
	}
	err := r.store.AppendLog(ctx, store.LogEntry{
		ServerID: serverID,
		Level:    level,
		Message:  message,
		Content:  content,
	})
	if err == nil {
		metrics.IncRegistryEvent("log")
	}
	return err
}

// RecentEvents returns up to limit log rows, newest first, for the viewer.
func (r *Registry) RecentEvents(ctx context.Context, limit int) ([]store.LogEntry, error) {
	return r.store.RecentLogs(ctx, limit)
}
