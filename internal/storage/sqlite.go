package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/digibook/digibook/internal/common"
	"github.com/digibook/digibook/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

// dbtx is satisfied by both *sql.DB and *sql.Tx so every query helper works
// inside and outside a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLiteStorage{db: db, dbPath: dbPath}

	// A database written by a newer build must not be silently downgraded.
	if err := s.checkSchemaVersion(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

func (s *SQLiteStorage) checkSchemaVersion(ctx context.Context) error {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if version > ExpectedSchemaVersion {
		return fmt.Errorf("%w: database is at version %d, this build supports up to %d",
			common.ErrSchemaTooNew, version, ExpectedSchemaVersion)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string {
	return s.dbPath
}

// NewBackupManager creates a backup manager for this storage instance.
func (s *SQLiteStorage) NewBackupManager(keep int) *BackupManager {
	return NewBackupManager(s, keep)
}

// BeginTx starts a new database transaction.
func (s *SQLiteStorage) BeginTx(ctx context.Context) (service.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrTransactionFailed, err)
	}

	return &sqliteTransaction{tx: tx, storage: s}, nil
}

// OpenWithRecovery opens the database, and on failure follows the emergency
// path: remove the database files, reinitialize a fresh instance, restore the
// newest checksum-valid backup if present, otherwise seed defaults via
// migration.
func OpenWithRecovery(ctx context.Context, dbPath string, keep int) (*SQLiteStorage, error) {
	store, err := NewSQLiteStorage(dbPath)
	if err == nil {
		if migErr := store.Migrate(ctx); migErr == nil {
			return store, nil
		} else if errors.Is(migErr, common.ErrSchemaTooNew) {
			_ = store.Close()
			return nil, migErr
		} else {
			err = migErr
			_ = store.Close()
		}
	}
	if errors.Is(err, common.ErrSchemaTooNew) {
		return nil, err
	}

	slog.Warn("database open failed, attempting emergency recovery", "path", dbPath, "error", err)

	for _, suffix := range []string{"", "-wal", "-shm"} {
		if rmErr := os.Remove(dbPath + suffix); rmErr != nil && !os.IsNotExist(rmErr) {
			return nil, fmt.Errorf("failed to remove corrupted database: %w", rmErr)
		}
	}

	store, err = NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to reinitialize database: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate fresh database: %w", err)
	}

	mgr := store.NewBackupManager(keep)
	if restored, restoreErr := mgr.RestoreLatest(ctx); restoreErr != nil {
		slog.Warn("no valid backup restored, continuing with seeded defaults", "error", restoreErr)
	} else if restored != "" {
		slog.Info("restored from backup", "key", restored)
	}

	return store, nil
}

// sqliteTransaction wraps sql.Tx to implement service.Transaction.
type sqliteTransaction struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTransaction) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTransaction) Rollback() error {
	return t.tx.Rollback()
}

func (t *sqliteTransaction) Migrate(_ context.Context) error {
	return fmt.Errorf("migrations cannot be run within a transaction")
}

func (t *sqliteTransaction) BeginTx(_ context.Context) (service.Transaction, error) {
	return nil, fmt.Errorf("nested transactions not supported")
}

func (t *sqliteTransaction) Close() error {
	return fmt.Errorf("transactions must be committed or rolled back, not closed")
}
