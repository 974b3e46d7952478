package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	_ "github.com/lib/pq"                      // PostgreSQL driver
	"github.com/trinodb/trino-go-client/trino" // Trino driver
	_ "modernc.org/sqlite"                     // SQLite driver
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Config holds the connection settings for every supported backend
type Config struct {
	Type              string            `koanf:"type"`
	DSN               string            `koanf:"dsn"`
	ServerURI         string            `koanf:"server_uri"`
	Catalog           string            `koanf:"catalog"`
	Schema            string            `koanf:"schema"`
	TableName         string            `koanf:"table_name"`
	SchemaFile        string            `koanf:"schema_file"`
	MaxOpenConns      int               `koanf:"max_open_conns"`
	MaxIdleConns      int               `koanf:"max_idle_conns"`
	ConnMaxLifetime   time.Duration     `koanf:"conn_max_lifetime"`
	ConnectTimeout    time.Duration     `koanf:"connect_timeout"`
	SessionProperties map[string]string `koanf:"session_properties"`
}

// Database wraps a database/sql pool together with its dialect
type Database struct {
	*sql.DB
	Config  Config
	Dialect Dialect
}

// New opens the configured backend, waits for it to answer and applies the
// schema.
func New(ctx context.Context, config Config) (*Database, error) {
	dialect, ok := ParseDialect(config.Type)
	if !ok {
		return nil, fmt.Errorf("unsupported database type: %s", config.Type)
	}

	dsn, err := dataSourceName(dialect, config)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", dialect, err)
	}

	if dialect == DialectSQLite {
		// A single connection serializes writers and keeps :memory: databases alive.
		db.SetMaxOpenConns(1)
		db.SetConnMaxLifetime(0)
	} else {
		db.SetMaxOpenConns(config.MaxOpenConns)
		db.SetMaxIdleConns(config.MaxIdleConns)
		db.SetConnMaxLifetime(config.ConnMaxLifetime)
	}

	if err := waitForConnection(ctx, db, config.ConnectTimeout); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", dialect, err)
	}

	database := &Database{DB: db, Config: config, Dialect: dialect}

	if config.SchemaFile != "" {
		err = database.ExecuteSchemaFile(ctx, config.SchemaFile)
	} else {
		err = database.ExecuteEmbeddedSchema(ctx)
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to execute schema: %w", err)
	}

	return database, nil
}

// TableName returns the name queries should address the swift banks table by.
func (db *Database) TableName() string {
	table := db.Config.TableName
	if table == "" {
		table = "swift_banks"
	}
	if db.Dialect == DialectTrino && db.Config.Catalog != "" && db.Config.Schema != "" {
		return db.Config.Catalog + "." + db.Config.Schema + "." + table
	}
	return table
}

// ExecuteEmbeddedSchema applies the schema bundled for the current dialect.
func (db *Database) ExecuteEmbeddedSchema(ctx context.Context) error {
	schemaSQL, err := schemaFS.ReadFile("schema/" + string(db.Dialect) + ".sql")
	if err != nil {
		return fmt.Errorf("failed to read embedded schema: %w", err)
	}
	return db.ExecuteSchema(ctx, string(schemaSQL))
}

// ExecuteSchemaFile loads and executes a schema file from disk
func (db *Database) ExecuteSchemaFile(ctx context.Context, filePath string) error {
	slog.Info("executing schema", "file", filePath)

	schemaSQL, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}
	return db.ExecuteSchema(ctx, string(schemaSQL))
}

// ExecuteSchema runs each statement of schemaSQL separately, substituting
// {table} with the configured table name. Trino does not support
// multi-statement execution.
func (db *Database) ExecuteSchema(ctx context.Context, schemaSQL string) error {
	schemaSQL = strings.ReplaceAll(schemaSQL, "{table}", db.TableName())

	for _, query := range strings.Split(schemaSQL, ";") {
		query = strings.TrimSpace(query)
		if query == "" {
			continue
		}

		slog.Debug("executing schema statement", "query", query)
		if _, err := db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s, error: %w", query, err)
		}
	}

	slog.Info("schema successfully executed", "table", db.TableName())
	return nil
}

func dataSourceName(dialect Dialect, config Config) (string, error) {
	switch dialect {
	case DialectSQLite, DialectPostgres:
		if config.DSN == "" {
			return "", fmt.Errorf("database dsn is required for %s", dialect)
		}
		return config.DSN, nil
	case DialectTrino:
		trinoConfig := &trino.Config{
			ServerURI:         config.ServerURI,
			Catalog:           config.Catalog,
			Schema:            config.Schema,
			SessionProperties: config.SessionProperties,
		}
		dsn, err := trinoConfig.FormatDSN()
		if err != nil {
			return "", fmt.Errorf("failed to build trino dsn: %w", err)
		}
		return dsn, nil
	}
	return "", fmt.Errorf("unsupported database type: %s", dialect)
}

// waitForConnection pings until the backend answers or timeout elapses.
// Trino coordinators in particular take a while to accept queries after start.
func waitForConnection(ctx context.Context, db *sql.DB, timeout time.Duration) error {
	if timeout <= 0 {
		return db.PingContext(ctx)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		err := db.PingContext(ctx)
		if err == nil {
			return nil
		}
		slog.Warn("database not ready yet", "error", err)

		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-ticker.C:
		}
	}
}
