package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/zdziszkee/swiftcodes-api/internal/database"
	"github.com/zdziszkee/swiftcodes-api/internal/logging"
)

const envPrefix = "APP_"

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type ServerConfig struct {
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type DataConfig struct {
	SwiftCodesFile string        `koanf:"swift_codes_file"`
	AutoLoad       bool          `koanf:"auto_load"`
	BatchSize      int           `koanf:"batch_size"`
	LoadTimeout    time.Duration `koanf:"load_timeout"`
}

type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

type Config struct {
	AppName  string          `koanf:"app_name"`
	Server   ServerConfig    `koanf:"server"`
	Database database.Config `koanf:"database"`
	Log      LogConfig       `koanf:"log"`
	Data     DataConfig      `koanf:"data"`
	Metrics  MetricsConfig   `koanf:"metrics"`
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// EnableAutoLoad seeds from file at startup. A non-positive load timeout is
// replaced with the default so the seeding run stays bounded.
func (c *Config) EnableAutoLoad(file string) {
	c.Data.SwiftCodesFile = file
	c.Data.AutoLoad = true
	if c.Data.LoadTimeout <= 0 {
		c.Data.LoadTimeout = DefaultConfig().Data.LoadTimeout
	}
}

// DefaultConfig returns the default configuration for swift-codes
func DefaultConfig() *Config {
	return &Config{
		AppName: "swift-codes",
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: database.Config{
			Type:            string(database.DialectSQLite),
			DSN:             "swift_codes.db",
			Catalog:         "iceberg",
			Schema:          "swift",
			TableName:       "swift_banks",
			MaxOpenConns:    5,
			MaxIdleConns:    2,
			ConnMaxLifetime: time.Hour,
			ConnectTimeout:  30 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Data: DataConfig{
			SwiftCodesFile: "/app/swift_codes.csv",
			AutoLoad:       true,
			BatchSize:      1000,
			LoadTimeout:    5 * time.Minute,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Load loads the configuration from defaults, a TOML file and environment
// variables, in that order of precedence.
func Load(configPath string) (*Config, error) {
	var k = koanf.New(".")

	if err := k.Load(structs.Provider(DefaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("error loading default config: %w", err)
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
				return nil, fmt.Errorf("error loading TOML config file: %w", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("error checking config file: %w", err)
		}
	} else {
		commonPaths := []string{
			"./config.toml",
			"./config/config.toml",
			"/etc/swift-codes/config.toml",
		}
		for _, path := range commonPaths {
			if _, err := os.Stat(path); err == nil {
				if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
					return nil, fmt.Errorf("error loading TOML config file from %s: %w", path, err)
				}
				break
			}
		}
	}

	// APP_DATABASE__MAX_OPEN_CONNS -> database.max_open_conns
	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", err)
	}

	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &config, nil
}

func envKey(s string) string {
	parts := strings.Split(strings.TrimPrefix(s, envPrefix), "__")
	for i, part := range parts {
		parts[i] = strings.ToLower(part)
	}
	return strings.Join(parts, ".")
}

// validateConfig checks required fields.
func validateConfig(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("server port out of range: %d", config.Server.Port)
	}
	if config.Server.ReadTimeout < 0 || config.Server.WriteTimeout < 0 || config.Server.ShutdownTimeout < 0 {
		return errors.New("server timeouts cannot be negative")
	}

	if err := validateDatabase(&config.Database); err != nil {
		return err
	}

	if _, err := logging.ParseLevel(config.Log.Level); err != nil || config.Log.Level == "" {
		return errors.New("invalid log level: must be one of debug, info, warn, error")
	}
	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[strings.ToLower(config.Log.Format)] {
		return errors.New("invalid log format: must be text or json")
	}

	if config.Data.AutoLoad && config.Data.SwiftCodesFile == "" {
		return errors.New("data.swift_codes_file cannot be empty when auto_load is enabled")
	}
	if config.Data.BatchSize <= 0 {
		return errors.New("data.batch_size must be positive")
	}
	if config.Data.AutoLoad && config.Data.LoadTimeout <= 0 {
		return errors.New("data.load_timeout must be positive when auto_load is enabled")
	}

	if config.Metrics.Enabled && !strings.HasPrefix(config.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with '/', got '%s'", config.Metrics.Path)
	}

	return nil
}

func validateDatabase(db *database.Config) error {
	dialect, ok := database.ParseDialect(db.Type)
	if !ok {
		return fmt.Errorf("unsupported database type: %s", db.Type)
	}

	switch dialect {
	case database.DialectSQLite, database.DialectPostgres:
		if db.DSN == "" {
			return fmt.Errorf("database dsn cannot be empty for %s", dialect)
		}
	case database.DialectTrino:
		if db.ServerURI == "" {
			return errors.New("database server_uri cannot be empty")
		}
		if !strings.HasPrefix(db.ServerURI, "http://") && !strings.HasPrefix(db.ServerURI, "https://") {
			return fmt.Errorf("database server_uri must start with 'http://' or 'https://', got '%s'", db.ServerURI)
		}
		if db.Catalog == "" {
			return errors.New("database catalog cannot be empty")
		}
		if db.Schema == "" {
			return errors.New("database schema cannot be empty")
		}
	}

	if db.TableName != "" && !tableNamePattern.MatchString(db.TableName) {
		return fmt.Errorf("database table_name is not a valid identifier: %q", db.TableName)
	}

	if db.MaxOpenConns < 0 {
		return errors.New("max open connections cannot be negative")
	}
	if db.MaxIdleConns < 0 {
		return errors.New("max idle connections cannot be negative")
	}
	if db.ConnMaxLifetime < 0 {
		return errors.New("connection max lifetime cannot be negative")
	}
	if db.ConnectTimeout < 0 {
		return errors.New("connect timeout cannot be negative")
	}

	return nil
}
