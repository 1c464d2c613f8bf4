package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/digibook/digibook/internal/model"
)

// GetPreference returns one component's preference blob, or nil when unset.
func (s *SQLiteStorage) GetPreference(ctx context.Context, component string) (*model.UserPreference, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getPreference(ctx, s.db, component)
}

func (t *sqliteTransaction) GetPreference(ctx context.Context, component string) (*model.UserPreference, error) {
	return getPreference(ctx, t.tx, component)
}

func getPreference(ctx context.Context, q dbtx, component string) (*model.UserPreference, error) {
	if err := validateString(component, "component"); err != nil {
		return nil, err
	}

	var p model.UserPreference
	err := q.QueryRowContext(ctx, `
		SELECT component, data, updated_at FROM user_preferences WHERE component = ?`, component).
		Scan(&p.Component, &p.Data, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query preference: %w", err)
	}
	return &p, nil
}

// GetPreferences returns all stored preferences.
func (s *SQLiteStorage) GetPreferences(ctx context.Context) ([]model.UserPreference, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getPreferences(ctx, s.db)
}

func (t *sqliteTransaction) GetPreferences(ctx context.Context) ([]model.UserPreference, error) {
	return getPreferences(ctx, t.tx)
}

func getPreferences(ctx context.Context, q dbtx) ([]model.UserPreference, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT component, data, updated_at FROM user_preferences ORDER BY component`)
	if err != nil {
		return nil, fmt.Errorf("failed to query preferences: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var prefs []model.UserPreference
	for rows.Next() {
		var p model.UserPreference
		if err := rows.Scan(&p.Component, &p.Data, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan preference: %w", err)
		}
		prefs = append(prefs, p)
	}
	return prefs, rows.Err()
}

// SavePreference upserts one component's preference blob.
func (s *SQLiteStorage) SavePreference(ctx context.Context, pref *model.UserPreference) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return savePreference(ctx, s.db, pref)
}

func (t *sqliteTransaction) SavePreference(ctx context.Context, pref *model.UserPreference) error {
	return savePreference(ctx, t.tx, pref)
}

func savePreference(ctx context.Context, q dbtx, pref *model.UserPreference) error {
	if pref == nil {
		return fmt.Errorf("%w: preference", ErrNilParameter)
	}
	if err := validateString(pref.Component, "component"); err != nil {
		return err
	}
	pref.UpdatedAt = time.Now().UTC()

	_, err := q.ExecContext(ctx, `
		INSERT INTO user_preferences (component, data, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(component) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		pref.Component, pref.Data, pref.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save preference: %w", err)
	}
	return nil
}
