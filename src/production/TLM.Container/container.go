package container

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	config "gitlab.com/radixsense/tlm.sensor_server/src/production/TLM.Config"
	logger "gitlab.com/radixsense/tlm.sensor_server/src/production/TLM.Logger"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// schemaStatements create the two tables and their secondary indexes.
// The DDL sticks to the dialect subset shared by sqlite and postgres; the
// users surrogate id differs per engine.
var schemaStatements = map[string][]string{
	"sqlite3": {
		`CREATE TABLE IF NOT EXISTS sensor_readings (
			equipment_id TEXT NOT NULL,
			timestamp    DATETIME NOT NULL,
			value        FLOAT,
			created_at   DATETIME NOT NULL,
			PRIMARY KEY (equipment_id, timestamp)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_equipment_timestamp ON sensor_readings (equipment_id, timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_timestamp ON sensor_readings (timestamp)`,
		`CREATE TABLE IF NOT EXISTS users (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			name       TEXT NOT NULL,
			email      TEXT NOT NULL UNIQUE,
			password   TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	},
	"postgres": {
		`CREATE TABLE IF NOT EXISTS sensor_readings (
			equipment_id TEXT NOT NULL,
			timestamp    TIMESTAMPTZ NOT NULL,
			value        DOUBLE PRECISION,
			created_at   TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (equipment_id, timestamp)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_equipment_timestamp ON sensor_readings (equipment_id, timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_timestamp ON sensor_readings (timestamp)`,
		`CREATE TABLE IF NOT EXISTS users (
			id         BIGSERIAL PRIMARY KEY,
			name       TEXT NOT NULL,
			email      TEXT NOT NULL UNIQUE,
			password   TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	},
}

// Container manages dependencies and their lifecycle. It is constructed
// once at process start and passed by reference into request-scoped code;
// there is no ambient global store handle.
type Container struct {
	config *config.Config
	logger *logger.Logger
	db     *sql.DB

	mu sync.Mutex
}

// NewContainer creates a new dependency container
func NewContainer() (*Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.NewLogger(&cfg.Logging)

	return &Container{
		config: cfg,
		logger: log,
	}, nil
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.logger
}

// GetDatabase returns the pooled database handle, opening it on first use
func (c *Container) GetDatabase(ctx context.Context) (*sql.DB, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db != nil {
		return c.db, nil
	}

	db, err := sql.Open(c.config.Database.Driver, c.config.GetDatabaseDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(c.config.Database.MaxConns)
	db.SetMaxIdleConns(c.config.Database.MinConns)
	db.SetConnMaxLifetime(c.config.Database.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, c.config.Database.PoolTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	c.db = db
	return c.db, nil
}

// InitializeDatabase creates the schema when it does not exist yet
func (c *Container) InitializeDatabase(ctx context.Context) error {
	db, err := c.GetDatabase(ctx)
	if err != nil {
		return err
	}

	statements, ok := schemaStatements[c.config.Database.Driver]
	if !ok {
		return fmt.Errorf("no schema for driver %q", c.config.Database.Driver)
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create tables: %w", err)
		}
	}

	c.logger.Info("Database initialized successfully")
	return nil
}

// Shutdown gracefully shuts down the container and its dependencies
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			c.logger.ErrorWithError(err, "Error closing database connection")
			return err
		}
		c.db = nil
	}

	c.logger.Info("Container shutdown complete")
	return nil
}
