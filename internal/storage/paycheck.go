package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/digibook/digibook/internal/model"
)

// GetPaycheckSettings returns the singleton paycheck settings, lazily
// creating the row with empty defaults on first read.
func (s *SQLiteStorage) GetPaycheckSettings(ctx context.Context) (*model.PaycheckSettings, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getPaycheckSettings(ctx, s.db)
}

func (t *sqliteTransaction) GetPaycheckSettings(ctx context.Context) (*model.PaycheckSettings, error) {
	return getPaycheckSettings(ctx, t.tx)
}

func getPaycheckSettings(ctx context.Context, q dbtx) (*model.PaycheckSettings, error) {
	var p model.PaycheckSettings
	err := q.QueryRowContext(ctx, `
		SELECT last_paycheck_date, frequency FROM paycheck_settings WHERE id = 1`).
		Scan(&p.LastPaycheckDate, &p.Frequency)
	if errors.Is(err, sql.ErrNoRows) {
		p = model.PaycheckSettings{Frequency: model.PaycheckFrequencyBiweekly}
		if _, insErr := q.ExecContext(ctx, `
			INSERT INTO paycheck_settings (id, last_paycheck_date, frequency) VALUES (1, '', ?)`,
			p.Frequency); insErr != nil {
			return nil, fmt.Errorf("failed to initialize paycheck settings: %w", insErr)
		}
		return &p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query paycheck settings: %w", err)
	}
	return &p, nil
}

// SavePaycheckSettings persists the singleton paycheck settings.
func (s *SQLiteStorage) SavePaycheckSettings(ctx context.Context, settings *model.PaycheckSettings) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return savePaycheckSettings(ctx, s.db, settings)
}

func (t *sqliteTransaction) SavePaycheckSettings(ctx context.Context, settings *model.PaycheckSettings) error {
	return savePaycheckSettings(ctx, t.tx, settings)
}

func savePaycheckSettings(ctx context.Context, q dbtx, settings *model.PaycheckSettings) error {
	if settings == nil {
		return fmt.Errorf("%w: settings", ErrNilParameter)
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO paycheck_settings (id, last_paycheck_date, frequency)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET last_paycheck_date = excluded.last_paycheck_date, frequency = excluded.frequency`,
		settings.LastPaycheckDate.String(), settings.Frequency)
	if err != nil {
		return fmt.Errorf("failed to save paycheck settings: %w", err)
	}
	return nil
}
