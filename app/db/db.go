package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/FACorreiaa/go-tourist-guide/config"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const (
	defaultRetries = 5
	dbFileName     = "app.db"
)

type DatabaseConfig struct {
	Path string
}

// NewDatabaseConfig resolves the SQLite file under the configured data
// directory, creating the directory if needed.
func NewDatabaseConfig(cfg *config.Config, logger *slog.Logger) (*DatabaseConfig, error) {
	if cfg == nil || cfg.App.DataDir == "" {
		errMsg := "data directory is not configured"
		logger.Error(errMsg)
		return nil, errors.New(errMsg)
	}
	if err := os.MkdirAll(cfg.App.DataDir, 0o755); err != nil {
		logger.Error("Failed to create data directory", slog.String("dir", cfg.App.DataDir), slog.Any("error", err))
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	path := filepath.Join(cfg.App.DataDir, dbFileName)
	logger.Info("Local database path resolved", slog.String("path", path))
	return &DatabaseConfig{Path: path}, nil
}

// WaitForDB pings the database with a linear backoff.
func WaitForDB(ctx context.Context, db *sql.DB, logger *slog.Logger) bool {
	maxAttempts := defaultRetries
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err := db.PingContext(ctx)
		if err == nil {
			logger.InfoContext(ctx, "Database connection successful")
			return true
		}

		waitDuration := time.Duration(attempts) * 200 * time.Millisecond
		logger.WarnContext(ctx, "Database ping failed, retrying...",
			slog.Int("attempt", attempts),
			slog.Int("max_attempts", maxAttempts),
			slog.Duration("wait_duration", waitDuration),
			slog.String("error", err.Error()),
		)
		if attempts < maxAttempts {
			time.Sleep(waitDuration)
		}
	}
	logger.ErrorContext(ctx, "Database connection failed after multiple retries")
	return false
}

// RunMigrations applies the embedded migrations to the SQLite file at path.
// The migrate driver opens and closes its own handle.
func RunMigrations(path string, logger *slog.Logger) error {
	logger.Info("Running database migrations...")

	sourceDriver, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		logger.Error("Failed to create migration source driver", slog.Any("error", err))
		return fmt.Errorf("failed to create migration source driver: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", sourceDriver, "sqlite://"+path)
	if err != nil {
		logger.Error("Failed to initialize migrate instance", slog.Any("error", err))
		return fmt.Errorf("failed to initialize migrate instance: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			logger.Warn("Error closing migration source", slog.Any("error", srcErr))
		}
		if dbErr != nil {
			logger.Warn("Error closing migration database connection", slog.Any("error", dbErr))
		}
	}()

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("Failed to apply migrations", slog.Any("error", err))
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	noChange := errors.Is(err, migrate.ErrNoChange)

	version, dirty, err := m.Version()
	switch {
	case err != nil:
		logger.Warn("Could not determine migration version", slog.Any("error", err))
	case dirty:
		logger.Error("DATABASE MIGRATION STATE IS DIRTY!", slog.Uint64("version", uint64(version)))
		return fmt.Errorf("database migration state is dirty at version %d", version)
	case noChange:
		logger.Info("No new migrations to apply.", slog.Uint64("current_version", uint64(version)))
	default:
		logger.Info("Database migrations applied successfully.", slog.Uint64("new_version", uint64(version)))
	}
	return nil
}

// Init opens the SQLite database. SQLite allows a single writer, so the
// handle is limited to one connection.
func Init(path string, logger *slog.Logger) (*sql.DB, error) {
	logger.Info("Opening local database...", slog.String("path", path))
	db, err := sql.Open("sqlite", path)
	if err != nil {
		logger.Error("Failed to open local database", slog.Any("error", err))
		return nil, fmt.Errorf("failed opening db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed configuring db: %w", err)
	}
	return db, nil
}

// Open resolves, migrates, and opens the local database in one step.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sql.DB, error) {
	dbConfig, err := NewDatabaseConfig(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := RunMigrations(dbConfig.Path, logger); err != nil {
		return nil, err
	}
	db, err := Init(dbConfig.Path, logger)
	if err != nil {
		return nil, err
	}
	if !WaitForDB(ctx, db, logger) {
		_ = db.Close()
		return nil, errors.New("database not ready after waiting")
	}
	return db, nil
}
