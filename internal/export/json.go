// Package export serializes the ledger to JSON, CSV, and an encrypted
// container, and imports JSON payloads back.
package export

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/digibook/digibook/internal/common"
	"github.com/digibook/digibook/internal/model"
	"github.com/digibook/digibook/internal/storage"
	"github.com/digibook/digibook/internal/validation"
)

// ExportJSON serializes a complete snapshot of the store as indented JSON.
// Importing the result reproduces the store exactly.
func ExportJSON(ctx context.Context, store *storage.SQLiteStorage) ([]byte, error) {
	snap, err := store.CollectSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize export: %w", err)
	}
	return data, nil
}

// ImportJSON validates the payload and replaces the store contents with it.
// Validation failures are reported without touching the store.
func ImportJSON(ctx context.Context, store *storage.SQLiteStorage, payload []byte) (*model.Snapshot, error) {
	res := validation.ValidateImport(payload)
	if !res.OK {
		sentinel := common.ErrMalformed
		if res.Errors[0].Code == validation.CodeSchemaTooNew {
			sentinel = common.ErrSchemaTooNew
		}
		return nil, fmt.Errorf("%w: %s", sentinel, res.Errors[0].Message)
	}
	if err := store.ApplySnapshot(ctx, res.Snapshot); err != nil {
		return nil, err
	}
	return res.Snapshot, nil
}
