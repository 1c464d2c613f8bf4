package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/digibook/digibook/internal/model"
)

// ExpectedSchemaVersion is the latest schema version this build understands.
// A database reporting a higher version refuses to open.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Core ledger tables",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS accounts (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT NOT NULL,
					type TEXT NOT NULL,
					current_balance REAL NOT NULL DEFAULT 0,
					is_default INTEGER NOT NULL DEFAULT 0,
					created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE TABLE IF NOT EXISTS credit_cards (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT NOT NULL,
					balance REAL NOT NULL DEFAULT 0,
					credit_limit REAL NOT NULL,
					interest_rate REAL NOT NULL DEFAULT 0,
					due_date TEXT NOT NULL,
					statement_closing_date TEXT,
					minimum_payment REAL NOT NULL DEFAULT 0,
					created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE TABLE IF NOT EXISTS categories (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT NOT NULL UNIQUE COLLATE NOCASE,
					color TEXT NOT NULL DEFAULT '',
					icon TEXT NOT NULL DEFAULT '',
					is_default INTEGER NOT NULL DEFAULT 0,
					created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE TABLE IF NOT EXISTS fixed_expenses (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT NOT NULL,
					due_date TEXT,
					amount REAL NOT NULL,
					paid_amount REAL NOT NULL DEFAULT 0,
					status TEXT NOT NULL DEFAULT 'pending',
					category TEXT NOT NULL,
					source_kind TEXT NOT NULL,
					account_id INTEGER,
					credit_card_id INTEGER,
					target_credit_card_id INTEGER,
					is_auto_created INTEGER NOT NULL DEFAULT 0,
					created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE TABLE IF NOT EXISTS pending_transactions (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					account_id INTEGER NOT NULL,
					amount REAL NOT NULL,
					category TEXT NOT NULL DEFAULT '',
					description TEXT NOT NULL DEFAULT '',
					created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE TABLE IF NOT EXISTS paycheck_settings (
					id INTEGER PRIMARY KEY CHECK (id = 1),
					last_paycheck_date TEXT NOT NULL DEFAULT '',
					frequency TEXT NOT NULL DEFAULT 'biweekly'
				)`,
				`CREATE INDEX idx_expenses_due_date ON fixed_expenses(due_date)`,
				`CREATE INDEX idx_expenses_category ON fixed_expenses(category)`,
				`CREATE INDEX idx_pending_account ON pending_transactions(account_id)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Audit log and user preferences",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS audit_logs (
					id TEXT PRIMARY KEY,
					kind TEXT NOT NULL,
					expense_id INTEGER,
					before_amount REAL NOT NULL DEFAULT 0,
					after_amount REAL NOT NULL DEFAULT 0,
					delta REAL NOT NULL DEFAULT 0,
					participants TEXT NOT NULL DEFAULT '[]',
					created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_audit_expense ON audit_logs(expense_id)`,
				`CREATE TABLE IF NOT EXISTS user_preferences (
					component TEXT PRIMARY KEY,
					data TEXT NOT NULL DEFAULT '{}',
					updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
				)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Seed default categories",
		Up:          seedDefaultCategories,
	},
}

func seedDefaultCategories(tx *sql.Tx) error {
	for _, cat := range model.DefaultCategories {
		_, err := tx.Exec(`
			INSERT INTO categories (name, color, icon, is_default)
			SELECT ?, ?, ?, 1
			WHERE NOT EXISTS (SELECT 1 FROM categories WHERE name = ? COLLATE NOCASE)`,
			cat.Name, cat.Color, cat.Icon, cat.Name)
		if err != nil {
			return fmt.Errorf("failed to seed category %q: %w", cat.Name, err)
		}
	}
	return nil
}

// Migrate brings the database schema up to ExpectedSchemaVersion. Each
// migration runs in its own transaction and bumps PRAGMA user_version on
// success.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var current int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", m.Version, err)
		}

		if err := m.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Description, err)
		}

		// PRAGMA cannot be parameterized
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.Version)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to set schema version %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
		}

		slog.Info("Applied migration", "version", m.Version, "description", m.Description)
		current = m.Version
	}

	return nil
}
