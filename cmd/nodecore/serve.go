package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/loykin/nodecore/internal/cache"
	"github.com/loykin/nodecore/internal/config"
	"github.com/loykin/nodecore/internal/identity"
	"github.com/loykin/nodecore/internal/logger"
	"github.com/loykin/nodecore/internal/metrics"
	"github.com/loykin/nodecore/internal/node"
	"github.com/loykin/nodecore/internal/registry"
	"github.com/loykin/nodecore/internal/server"
	"github.com/loykin/nodecore/internal/store/factory"
)

// createServeCommand creates the serve subcommand
func createServeCommand(globalFlags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve [config.toml]",
		Short: "Register this node and start the web server",
		Long: `Register this process in the shared store and serve HTTP.

The boot sequence is fail-fast: an unreadable package file, an inapplicable
schema or a registration error aborts startup with a non-zero exit.

Examples:
  nodecore serve                    # Defaults (package.toml, data/db/main.db)
  nodecore serve config.toml        # With a specific config file`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath := globalFlags.ConfigPath
			if len(args) > 0 {
				configPath = args[0]
			}
			return runServe(configPath)
		},
	}
}

func runServe(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	log := logger.New(cfg.Log)
	slog.SetDefault(log)

	ctx := context.Background()

	st, err := factory.NewFromDSN(cfg.Store.DSN)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = st.Close() }()

	log.Info("loading database schema", "path", cfg.Store.Schema)
	if err := st.ApplySchema(ctx, cfg.Store.Schema); err != nil {
		return fmt.Errorf("initialize schema: %w", err)
	}
	log.Info("database schema initialized")

	ident, err := identity.Load(cfg.Node.PackageFile)
	if err != nil {
		return fmt.Errorf("load identity: %w", err)
	}
	identity.EnsureUUID(cfg.Node.PackageFile, &ident, log)
	log.Info("package", "name", ident.Name, "version", ident.Version)
	log.Info("node uuid", "uuid", ident.UUID)

	reg := registry.New(st, log)
	nodeID, err := reg.Register(ctx, ident)
	if err != nil {
		return fmt.Errorf("register node: %w", err)
	}
	log.Info("node operational", "id", nodeID)

	// The role label comes back from the store row so a restart keeps the
	// label recorded at first registration.
	row, err := st.FindNode(ctx, ident.UUID)
	if err != nil {
		return fmt.Errorf("read back node row: %w", err)
	}

	if err := reg.SetStatus(ctx, ident.UUID, "running"); err != nil {
		return err
	}
	if err := reg.LogEvent(ctx, nodeID, "info", "node started", ""); err != nil {
		log.Error("failed to record start event", "error", err)
	}

	// Redis presence is best-effort; the store stays the system of record.
	presence, err := cache.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Error("redis presence unavailable, continuing without it", "error", err)
		presence = nil
	}
	defer func() { _ = presence.Close() }()

	if cfg.Metrics.Enabled {
		if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
			log.Warn("failed to register metrics", "error", err)
		}
		metrics.SetNodeInfo(ident.Name, ident.Version, row.Role)
		metrics.SetNodeUp(true)
	}

	rtr := server.NewRouter(server.Options{
		Identity:  ident,
		NodeID:    nodeID,
		Role:      node.Role(row.Role),
		Registry:  reg,
		Presence:  presence,
		StaticDir: cfg.Server.StaticDir,
		LogsDir:   cfg.Server.LogsDir,
		Metrics:   cfg.Metrics.Enabled,
	})
	srv := server.NewServer(cfg.Server.Listen, rtr)

	heartbeatCtx, stopHeartbeat := context.WithCancel(ctx)
	defer stopHeartbeat()
	go heartbeatLoop(heartbeatCtx, presence, ident.UUID, log)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	log.Info("server listening", "addr", cfg.Server.Listen)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutting down", "signal", sig.String())
	case err := <-errCh:
		log.Error("server failed", "error", err)
		shutdownNode(ctx, reg, presence, ident.UUID, nodeID, log)
		return err
	}

	metrics.SetNodeUp(false)
	stopHeartbeat()
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", "error", err)
	}
	shutdownNode(ctx, reg, presence, ident.UUID, nodeID, log)
	return nil
}

// shutdownNode records the stopped lifecycle state. Failures here are only
// logged: the process is exiting either way.
func shutdownNode(ctx context.Context, reg *registry.Registry, presence *cache.Presence, uuid string, nodeID int64, log *slog.Logger) {
	if err := presence.Forget(ctx, uuid); err != nil {
		log.Warn("failed to drop presence key", "error", err)
	}
	if err := reg.SetStatus(ctx, uuid, "stopped"); err != nil {
		log.Error("failed to set stopped status", "error", err)
	}
	if err := reg.LogEvent(ctx, nodeID, "info", "node stopped", ""); err != nil {
		log.Error("failed to record stop event", "error", err)
	}
}

func heartbeatLoop(ctx context.Context, presence *cache.Presence, uuid string, log *slog.Logger) {
	if presence == nil {
		return
	}
	if err := presence.Heartbeat(ctx, uuid); err != nil {
		log.Warn("presence heartbeat failed", "error", err)
	}
	t := time.NewTicker(10 * time.Second)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := presence.Heartbeat(ctx, uuid); err != nil {
				log.Warn("presence heartbeat failed", "error", err)
			}
		}
	}
}
