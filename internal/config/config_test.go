package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if c.Server.Listen != "0.0.0.0:8080" {
		t.Fatalf("unexpected listen default: %q", c.Server.Listen)
	}
	if c.Store.DSN != "data/db/main.db" || c.Store.Schema != "config/main.sql" {
		t.Fatalf("unexpected store defaults: %+v", c.Store)
	}
	if c.Node.PackageFile != "package.toml" {
		t.Fatalf("unexpected package file default: %q", c.Node.PackageFile)
	}
	if c.Redis.Addr != "" {
		t.Fatalf("redis should be disabled by default")
	}
	if !c.Metrics.Enabled {
		t.Fatalf("metrics should be enabled by default")
	}
	if c.Log.Level != "info" {
		t.Fatalf("unexpected log level default: %q", c.Log.Level)
	}
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nodecore.toml")
	content := `
[server]
listen = "127.0.0.1:9090"
static_dir = "/srv/static"

[store]
dsn = "postgres://user:pass@db/nodes"
schema = "/etc/nodecore/main.sql"

[node]
package_file = "/venv/package.toml"

[redis]
addr = "127.0.0.1:6379"
db = 2

[log]
level = "debug"
file = "/var/log/nodecore.log"

[metrics]
enabled = false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Server.Listen != "127.0.0.1:9090" || c.Server.StaticDir != "/srv/static" {
		t.Fatalf("unexpected server config: %+v", c.Server)
	}
	// Keys absent from the file keep their defaults.
	if c.Server.LogsDir != "data/logs" {
		t.Fatalf("expected logs_dir default, got %q", c.Server.LogsDir)
	}
	if c.Store.DSN != "postgres://user:pass@db/nodes" {
		t.Fatalf("unexpected dsn: %q", c.Store.DSN)
	}
	if c.Node.PackageFile != "/venv/package.toml" {
		t.Fatalf("unexpected package file: %q", c.Node.PackageFile)
	}
	if c.Redis.Addr != "127.0.0.1:6379" || c.Redis.DB != 2 {
		t.Fatalf("unexpected redis config: %+v", c.Redis)
	}
	if c.Log.Level != "debug" || c.Log.File != "/var/log/nodecore.log" {
		t.Fatalf("unexpected log config: %+v", c.Log)
	}
	if c.Metrics.Enabled {
		t.Fatalf("metrics should be disabled")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}
