package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/loykin/nodecore/internal/logger"
)

// Config is the top-level TOML structure for the server process. It only
// configures the plumbing around the node core; the node's own identity
// lives in the package metadata file referenced by Node.PackageFile.
type Config struct {
	Server  ServerConfig  `toml:"server" mapstructure:"server"`
	Store   StoreConfig   `toml:"store" mapstructure:"store"`
	Node    NodeConfig    `toml:"node" mapstructure:"node"`
	Redis   RedisConfig   `toml:"redis" mapstructure:"redis"`
	Log     logger.Config `toml:"log" mapstructure:"log"`
	Metrics MetricsConfig `toml:"metrics" mapstructure:"metrics"`
}

type ServerConfig struct {
	Listen    string `toml:"listen" mapstructure:"listen"`
	StaticDir string `toml:"static_dir" mapstructure:"static_dir"`
	LogsDir   string `toml:"logs_dir" mapstructure:"logs_dir"`
}

type StoreConfig struct {
	// DSN selects the backend: postgres://... for PostgreSQL, anything else
	// is treated as a SQLite path.
	DSN    string `toml:"dsn" mapstructure:"dsn"`
	Schema string `toml:"schema" mapstructure:"schema"`
}

type NodeConfig struct {
	// PackageFile is the metadata artifact scanned for name/version/uuid/server.
	PackageFile string `toml:"package_file" mapstructure:"package_file"`
}

type RedisConfig struct {
	// Addr empty disables the presence cache entirely.
	Addr     string `toml:"addr" mapstructure:"addr"`
	Password string `toml:"password" mapstructure:"password"`
	DB       int    `toml:"db" mapstructure:"db"`
}

type MetricsConfig struct {
	Enabled bool `toml:"enabled" mapstructure:"enabled"`
}

func defaults(v *viper.Viper) {
	v.SetDefault("server.listen", "0.0.0.0:8080")
	v.SetDefault("server.static_dir", "static")
	v.SetDefault("server.logs_dir", "data/logs")
	v.SetDefault("store.dsn", "data/db/main.db")
	v.SetDefault("store.schema", "config/main.sql")
	v.SetDefault("node.package_file", "package.toml")
	v.SetDefault("log.level", "info")
	v.SetDefault("metrics.enabled", true)
}

// Load reads a TOML config from path. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	defaults(v)
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &c, nil
}
