package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/digibook/digibook/internal/model"

	"github.com/google/uuid"
)

// AppendAudit writes an immutable audit record. Records are never updated or
// deleted through the storage API.
func (s *SQLiteStorage) AppendAudit(ctx context.Context, record *model.AuditRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return appendAudit(ctx, s.db, record)
}

func (t *sqliteTransaction) AppendAudit(ctx context.Context, record *model.AuditRecord) error {
	return appendAudit(ctx, t.tx, record)
}

func appendAudit(ctx context.Context, q dbtx, record *model.AuditRecord) error {
	if record == nil {
		return fmt.Errorf("%w: audit record", ErrNilParameter)
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	participants, err := json.Marshal(record.Participants)
	if err != nil {
		return fmt.Errorf("failed to encode participants: %w", err)
	}

	_, err = q.ExecContext(ctx, `
		INSERT INTO audit_logs (id, kind, expense_id, before_amount, after_amount, delta, participants, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.Kind, record.ExpenseID, record.Before, record.After,
		record.Delta, string(participants), record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append audit record: %w", err)
	}
	return nil
}

// GetAuditRecords returns the newest audit records, up to limit (0 means all).
func (s *SQLiteStorage) GetAuditRecords(ctx context.Context, limit int) ([]model.AuditRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getAuditRecords(ctx, s.db, limit)
}

func (t *sqliteTransaction) GetAuditRecords(ctx context.Context, limit int) ([]model.AuditRecord, error) {
	return getAuditRecords(ctx, t.tx, limit)
}

func getAuditRecords(ctx context.Context, q dbtx, limit int) ([]model.AuditRecord, error) {
	query := `
		SELECT id, kind, expense_id, before_amount, after_amount, delta, participants, created_at
		FROM audit_logs ORDER BY created_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.AuditRecord
	for rows.Next() {
		var r model.AuditRecord
		var participants string
		if err := rows.Scan(&r.ID, &r.Kind, &r.ExpenseID, &r.Before, &r.After,
			&r.Delta, &participants, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit record: %w", err)
		}
		if err := json.Unmarshal([]byte(participants), &r.Participants); err != nil {
			return nil, fmt.Errorf("failed to decode participants: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
