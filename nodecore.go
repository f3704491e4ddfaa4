package nodecore

import (
	"context"
	"log/slog"
	"net/http"

	cfg "github.com/loykin/nodecore/internal/config"
	"github.com/loykin/nodecore/internal/identity"
	"github.com/loykin/nodecore/internal/metrics"
	"github.com/loykin/nodecore/internal/node"
	"github.com/loykin/nodecore/internal/registry"
	"github.com/loykin/nodecore/internal/server"
	"github.com/loykin/nodecore/internal/store"
	"github.com/loykin/nodecore/internal/store/factory"
	"github.com/prometheus/client_golang/prometheus"
)

// Re-export core types for external consumers.
// These are aliases so conversions are zero-cost.

type Identity = identity.Identity

type Role = node.Role

const (
	RoleParent = node.RoleParent
	RoleChild  = node.RoleChild
)

type Store = store.Store

// ErrNotFound is returned by store lookups for unknown node uuids.
var ErrNotFound = store.ErrNotFound

// LoadIdentity reads the package metadata file and returns the node identity.
func LoadIdentity(path string) (Identity, error) { return identity.Load(path) }

// EnsureUUID generates and persists a uuid for an identity that has none.
func EnsureUUID(path string, id *Identity, log *slog.Logger) { identity.EnsureUUID(path, id, log) }

// Classify derives a node role from a package name.
func Classify(name string, log *slog.Logger) Role { return node.Classify(name, log) }

// OpenStore opens a store from a DSN: postgres://... for PostgreSQL,
// anything else is treated as a SQLite path.
func OpenStore(dsn string) (Store, error) { return factory.NewFromDSN(dsn) }

// Registry is a thin facade over internal/registry.Registry.
// It provides a stable public API for embedding.
type Registry struct{ inner *registry.Registry }

func NewRegistry(s Store, log *slog.Logger) *Registry {
	return &Registry{inner: registry.New(s, log)}
}

func (r *Registry) Register(ctx context.Context, id Identity) (int64, error) {
	return r.inner.Register(ctx, id)
}

func (r *Registry) SetStatus(ctx context.Context, uuid, status string) error {
	return r.inner.SetStatus(ctx, uuid, status)
}

func (r *Registry) LogEvent(ctx context.Context, serverID int64, level, message, content string) error {
	return r.inner.LogEvent(ctx, serverID, level, message, content)
}

// LoadConfig reads the TOML server config at path; empty path yields defaults.
func LoadConfig(path string) (*cfg.Config, error) { return cfg.Load(path) }

// Metrics helpers (public facade)

func RegisterMetrics(r prometheus.Registerer) error { return metrics.Register(r) }
func RegisterMetricsDefault() error                 { return metrics.Register(prometheus.DefaultRegisterer) }

// MetricsHandler returns an http.Handler serving Prometheus metrics for the
// default gatherer; wire it on whatever mux the embedding server uses.
func MetricsHandler() http.Handler { return metrics.Handler() }

// ServeOptions configures the embedded HTTP surface.
type ServeOptions struct {
	Identity  Identity
	NodeID    int64
	Role      Role
	StaticDir string
	LogsDir   string
	Metrics   bool
}

// NewHTTPServer builds the node HTTP surface bound to reg and returns an
// http.Server on addr. The caller owns ListenAndServe and Shutdown.
func NewHTTPServer(addr string, o ServeOptions, reg *Registry) *http.Server {
	rtr := server.NewRouter(server.Options{
		Identity:  o.Identity,
		NodeID:    o.NodeID,
		Role:      o.Role,
		Registry:  reg.inner,
		StaticDir: o.StaticDir,
		LogsDir:   o.LogsDir,
		Metrics:   o.Metrics,
	})
	return server.NewServer(addr, rtr)
}
